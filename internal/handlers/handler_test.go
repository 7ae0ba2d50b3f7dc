package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fathima-sithara/campus-service/internal/activity"
	"github.com/fathima-sithara/campus-service/internal/auth"
	"github.com/fathima-sithara/campus-service/internal/handlers"
	"github.com/fathima-sithara/campus-service/internal/mailer"
	"github.com/fathima-sithara/campus-service/internal/middleware"
	"github.com/fathima-sithara/campus-service/internal/models"
	"github.com/fathima-sithara/campus-service/internal/notify"
	"github.com/fathima-sithara/campus-service/internal/repository/memstore"
	"github.com/fathima-sithara/campus-service/internal/routes"
	"github.com/fathima-sithara/campus-service/internal/services"
)

type captureMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (m *captureMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

type stubMedia struct{}

func (stubMedia) HostImage(_ context.Context, ownerID, filename string, _ []byte) (string, error) {
	return "https://cdn.test/images/" + ownerID + "/" + filename, nil
}

func (stubMedia) HostDocument(_ context.Context, ownerID, filename, _ string, _ []byte) (string, error) {
	return "https://cdn.test/resumes/" + ownerID + "/" + filename, nil
}

func (stubMedia) Remove(context.Context, string) error { return nil }

type fixture struct {
	app    *fiber.App
	users  *memstore.Users
	otps   *memstore.OTPs
	tokens *auth.TokenManager
	hub    *notify.Hub
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zap.NewNop()
	f := &fixture{
		users:  memstore.NewUsers(),
		otps:   memstore.NewOTPs(),
		tokens: auth.NewTokenManager("test-secret", time.Hour),
		hub:    notify.NewHub(logger),
	}
	posts := memstore.NewPosts()
	events := memstore.NewEvents()
	comments := memstore.NewComments()
	mail := &captureMailer{}
	rec := activity.Nop{}

	svc := handlers.Services{
		Signup:       services.NewSignupService(f.users, f.otps, mail, rec, bcrypt.MinCost, 15*time.Minute, logger),
		Reset:        services.NewPasswordResetService(f.users, memstore.NewResets(), mail, bcrypt.MinCost, 15*time.Minute, logger),
		Auth:         services.NewAuthService(f.users, posts, f.tokens, logger),
		Profiles:     services.NewProfileService(f.users, posts, stubMedia{}, logger),
		Graph:        services.NewGraphService(f.users, rec, logger),
		Content:      services.NewContentService(f.users, posts, events, comments, stubMedia{}, rec, logger),
		Interactions: services.NewInteractionService(f.users, posts, events, comments, f.hub, logger),
	}
	h := handlers.NewHandler(svc, f.tokens, f.hub, handlers.Options{MaxUploadBytes: 1 << 20}, logger)

	f.app = fiber.New()
	routes.Setup(f.app, h, routes.Guards{
		Auth:  middleware.Auth(f.tokens),
		Roles: middleware.NewRoleGate(f.users, logger),
	})
	return f
}

func (f *fixture) seed(t *testing.T, handle string, role models.Role) (*models.User, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("Str0ng!pass"), bcrypt.MinCost)
	require.NoError(t, err)
	u := &models.User{
		Username:   handle,
		RollNumber: "roll-" + handle,
		Email:      handle + "@hnbgu.edu.in",
		FullName:   handle + " Test",
		Password:   string(hash),
		Role:       role,
		IsVerified: true,
	}
	require.NoError(t, f.users.Create(context.Background(), u))
	token, err := f.tokens.Issue(u.ID.Hex())
	require.NoError(t, err)
	return u, token
}

type response struct {
	status  int
	body    map[string]any
	cookies []*http.Cookie
}

func (f *fixture) do(t *testing.T, req *http.Request, token string) response {
	t.Helper()
	if token != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := response{status: resp.StatusCode, cookies: resp.Cookies()}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out.body), string(raw))
	}
	return out
}

func jsonRequest(method, path string, body any) *http.Request {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

func formRequest(t *testing.T, path string, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	return req
}

func TestSignupLoginLogout(t *testing.T) {
	f := newFixture(t)
	const email = "ravi_22011234567@hnbgu.edu.in"

	res := f.do(t, jsonRequest(http.MethodPost, "/api/v1/user/send-otp", map[string]any{
		"email":         email,
		"acceptedTerms": true,
		"firstname":     "Ravi",
		"lastname":      "Kumar",
		"department":    "CSE",
		"year":          2030,
		"password":      "Str0ng!pass",
	}), "")
	require.Equal(t, fiber.StatusOK, res.status, res.body)
	assert.Equal(t, "OTP sent successfully", res.body["message"])

	otp, err := f.otps.FindByEmail(context.Background(), email)
	require.NoError(t, err)

	res = f.do(t, jsonRequest(http.MethodPost, "/api/v1/user/register", map[string]any{
		"email": email,
		"otp":   otp.Code,
	}), "")
	require.Equal(t, fiber.StatusCreated, res.status, res.body)
	assert.Equal(t, true, res.body["success"])

	res = f.do(t, jsonRequest(http.MethodPost, "/api/v1/user/login", map[string]any{
		"email":    email,
		"password": "Str0ng!pass",
	}), "")
	require.Equal(t, fiber.StatusOK, res.status, res.body)
	assert.Equal(t, "Welcome back ravi4567", res.body["message"])
	require.Len(t, res.cookies, 1)
	assert.Equal(t, middleware.SessionCookie, res.cookies[0].Name)
	assert.True(t, res.cookies[0].HttpOnly)
	assert.NotEmpty(t, res.cookies[0].Value)

	user, ok := res.body["user"].(map[string]any)
	require.True(t, ok)
	assert.NotContains(t, user, "password")

	res = f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/user/logout", nil), "")
	assert.Equal(t, fiber.StatusOK, res.status)
	require.Len(t, res.cookies, 1)
	assert.Empty(t, res.cookies[0].Value)
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newFixture(t)
	u, _ := f.seed(t, "amit", models.RoleStudent)

	res := f.do(t, jsonRequest(http.MethodPost, "/api/v1/user/login", map[string]any{
		"email":    u.Email,
		"password": "nope",
	}), "")
	assert.Equal(t, fiber.StatusUnauthorized, res.status)
	assert.Equal(t, "Incorrect email or password", res.body["message"])
	assert.Empty(t, res.cookies)
}

func TestBodyValidation(t *testing.T) {
	f := newFixture(t)

	res := f.do(t, jsonRequest(http.MethodPost, "/api/v1/user/login", map[string]any{"email": "a@b.c"}), "")
	assert.Equal(t, fiber.StatusBadRequest, res.status)
	assert.Equal(t, false, res.body["success"])

	req := httptest.NewRequest(http.MethodPost, "/api/v1/user/login", strings.NewReader("{"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	res = f.do(t, req, "")
	assert.Equal(t, fiber.StatusBadRequest, res.status)
	assert.Equal(t, "Invalid request body", res.body["message"])
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	f := newFixture(t)
	for _, path := range []string{"/api/v1/post/all", "/api/v1/event/all", "/api/v1/user/suggested"} {
		res := f.do(t, httptest.NewRequest(http.MethodGet, path, nil), "")
		assert.Equal(t, fiber.StatusUnauthorized, res.status, path)
		assert.Equal(t, "User not authenticated", res.body["message"], path)
	}
}

func TestPostInteractions(t *testing.T) {
	f := newFixture(t)
	author, authorToken := f.seed(t, "amit", models.RoleStudent)
	_, readerToken := f.seed(t, "neha", models.RoleStudent)

	ws := notify.NewClient(author.ID.Hex(), 8)
	f.hub.Register(ws)
	defer f.hub.Unregister(ws)

	res := f.do(t, formRequest(t, "/api/v1/post/addpost", map[string]string{"caption": "hello campus"}), authorToken)
	require.Equal(t, fiber.StatusCreated, res.status, res.body)
	post := res.body["post"].(map[string]any)
	postID := post["_id"].(string)
	assert.Equal(t, "hello campus", post["caption"])

	res = f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/post/"+postID+"/like", nil), readerToken)
	require.Equal(t, fiber.StatusOK, res.status, res.body)
	assert.Equal(t, "Post liked", res.body["message"])

	res = f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/post/"+postID+"/like", nil), readerToken)
	assert.Equal(t, fiber.StatusConflict, res.status)
	assert.Equal(t, "Already liked", res.body["message"])

	select {
	case msg := <-ws.Send:
		assert.Contains(t, string(msg), "Your post was liked")
	default:
		t.Fatal("author should have been notified")
	}

	res = f.do(t, jsonRequest(http.MethodPost, "/api/v1/post/"+postID+"/comment", map[string]string{"text": "nice"}), readerToken)
	require.Equal(t, fiber.StatusCreated, res.status, res.body)
	commentID := res.body["comment"].(map[string]any)["_id"].(string)

	res = f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/post/"+postID+"/comment/all", nil), readerToken)
	require.Equal(t, fiber.StatusOK, res.status)
	assert.Len(t, res.body["comments"], 1)

	res = f.do(t, httptest.NewRequest(http.MethodDelete, "/api/v1/post/delete/"+postID, nil), readerToken)
	assert.Equal(t, fiber.StatusForbidden, res.status)

	res = f.do(t, httptest.NewRequest(http.MethodDelete, "/api/v1/post/"+postID+"/comment/"+commentID, nil), authorToken)
	assert.Equal(t, fiber.StatusOK, res.status, res.body)

	res = f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/post/"+postID+"/bookmark", nil), readerToken)
	require.Equal(t, fiber.StatusOK, res.status)
	assert.Equal(t, "saved", res.body["type"])

	res = f.do(t, httptest.NewRequest(http.MethodDelete, "/api/v1/post/delete/"+postID, nil), authorToken)
	assert.Equal(t, fiber.StatusOK, res.status, res.body)

	res = f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/post/all", nil), readerToken)
	require.Equal(t, fiber.StatusOK, res.status)
	assert.Empty(t, res.body["posts"])
}

func TestEventCreationIsFacultyOnly(t *testing.T) {
	f := newFixture(t)
	_, studentToken := f.seed(t, "amit", models.RoleStudent)
	_, facultyToken := f.seed(t, "prof", models.RoleFaculty)

	fields := map[string]string{
		"caption":   "Tech fest",
		"startDate": "2030-03-01",
		"endDate":   "2030-03-02",
	}
	res := f.do(t, formRequest(t, "/api/v1/event/add", fields), studentToken)
	assert.Equal(t, fiber.StatusForbidden, res.status)

	res = f.do(t, formRequest(t, "/api/v1/event/add", fields), facultyToken)
	assert.NotEqual(t, fiber.StatusForbidden, res.status)
}

func TestMalformedIDs(t *testing.T) {
	f := newFixture(t)
	_, token := f.seed(t, "amit", models.RoleStudent)

	res := f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/post/not-an-id/like", nil), token)
	assert.Equal(t, fiber.StatusBadRequest, res.status)

	res = f.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/user/followorunfollow/xyz", nil), token)
	assert.Equal(t, fiber.StatusBadRequest, res.status)
}

func TestFollowAndOnline(t *testing.T) {
	f := newFixture(t)
	me, token := f.seed(t, "amit", models.RoleStudent)
	other, _ := f.seed(t, "neha", models.RoleStudent)

	res := f.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/user/followorunfollow/"+other.ID.Hex(), nil), token)
	require.Equal(t, fiber.StatusOK, res.status, res.body)
	assert.Equal(t, true, res.body["following"])

	res = f.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/user/followorunfollow/"+other.ID.Hex(), nil), token)
	require.Equal(t, fiber.StatusOK, res.status)
	assert.Equal(t, "Unfollowed successfully", res.body["message"])

	c := notify.NewClient(me.ID.Hex(), 1)
	f.hub.Register(c)
	defer f.hub.Unregister(c)

	res = f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/user/online", nil), token)
	require.Equal(t, fiber.StatusOK, res.status)
	assert.Equal(t, []any{me.ID.Hex()}, res.body["onlineUsers"])
}

func TestWebsocketRequiresUpgrade(t *testing.T) {
	f := newFixture(t)
	_, token := f.seed(t, "amit", models.RoleStudent)

	res := f.do(t, httptest.NewRequest(http.MethodGet, "/ws", nil), token)
	assert.Equal(t, fiber.StatusUpgradeRequired, res.status)
}

func upgradeRequest() *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	req.Header.Set("Sec-WebSocket-Version", "13")
	req.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")
	return req
}

func TestWebsocketHandshakeAuth(t *testing.T) {
	f := newFixture(t)
	u, _ := f.seed(t, "amit", models.RoleStudent)

	expired, err := auth.NewTokenManager("test-secret", -time.Minute).Issue(u.ID.Hex())
	require.NoError(t, err)
	forged, err := auth.NewTokenManager("other-secret", time.Hour).Issue(u.ID.Hex())
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		msg   string
	}{
		{name: "no cookie", token: "", msg: "User not authenticated"},
		{name: "forged", token: forged, msg: "User not authenticated"},
		{name: "expired", token: expired, msg: "Session expired, please log in again"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := f.do(t, upgradeRequest(), tt.token)
			assert.Equal(t, fiber.StatusUnauthorized, res.status)
			assert.Equal(t, tt.msg, res.body["message"])
		})
	}
}

func TestListPostCommentsAcceptsPost(t *testing.T) {
	f := newFixture(t)
	_, token := f.seed(t, "amit", models.RoleStudent)

	res := f.do(t, formRequest(t, "/api/v1/post/addpost", map[string]string{"caption": "hi"}), token)
	require.Equal(t, fiber.StatusCreated, res.status, res.body)
	postID := res.body["post"].(map[string]any)["_id"].(string)

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		res = f.do(t, httptest.NewRequest(method, "/api/v1/post/"+postID+"/comment/all", nil), token)
		assert.Equal(t, fiber.StatusOK, res.status, method)
		assert.Empty(t, res.body["comments"], method)
	}
}
