package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fathima-sithara/campus-service/internal/auth"
	"github.com/fathima-sithara/campus-service/internal/models"
	"github.com/fathima-sithara/campus-service/internal/repository/memstore"
)

func newTestApp(tokens *auth.TokenManager, extra ...fiber.Handler) *fiber.App {
	app := fiber.New()
	handlers := append([]fiber.Handler{Auth(tokens)}, extra...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		return c.SendString(UserID(c))
	})
	app.Get("/me", handlers...)
	return app
}

func request(t *testing.T, app *fiber.App, token string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestAuth(t *testing.T) {
	tokens := auth.NewTokenManager("secret", time.Hour)
	app := newTestApp(tokens)

	valid, err := tokens.Issue("64b000000000000000000001")
	require.NoError(t, err)
	forged, err := auth.NewTokenManager("other", time.Hour).Issue("64b000000000000000000001")
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		status int
		body   string
	}{
		{"valid cookie", valid, fiber.StatusOK, "64b000000000000000000001"},
		{"missing cookie", "", fiber.StatusUnauthorized, "User not authenticated"},
		{"wrong secret", forged, fiber.StatusUnauthorized, "User not authenticated"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := request(t, app, tt.token)
			assert.Equal(t, tt.status, status)
			assert.Contains(t, body, tt.body)
		})
	}
}

func TestRoleGate(t *testing.T) {
	ctx := context.Background()
	tokens := auth.NewTokenManager("secret", time.Hour)
	users := memstore.NewUsers()
	prof := &models.User{Username: "prof", RollNumber: "r1", Email: "prof@x", Role: models.RoleFaculty}
	student := &models.User{Username: "asha", RollNumber: "r2", Email: "asha@x", Role: models.RoleStudent}
	require.NoError(t, users.Create(ctx, prof))
	require.NoError(t, users.Create(ctx, student))

	gate := NewRoleGate(users, zap.NewNop())
	facultyApp := newTestApp(tokens, gate.RequireFaculty())
	studentApp := newTestApp(tokens, gate.RequireNonFaculty())

	profToken, err := tokens.Issue(prof.ID.Hex())
	require.NoError(t, err)
	studentToken, err := tokens.Issue(student.ID.Hex())
	require.NoError(t, err)
	ghostToken, err := tokens.Issue("64b0000000000000000000ff")
	require.NoError(t, err)

	status, _ := request(t, facultyApp, profToken)
	assert.Equal(t, fiber.StatusOK, status)
	status, body := request(t, facultyApp, studentToken)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Contains(t, body, "Only faculty")

	status, _ = request(t, studentApp, studentToken)
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = request(t, studentApp, profToken)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = request(t, facultyApp, ghostToken)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestRateLimiter_PassesWithoutRedis(t *testing.T) {
	rl := NewRateLimiter(nil, "otp", 1, time.Minute, zap.NewNop())
	app := fiber.New()
	app.Post("/send-otp", rl.ByIP(), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/send-otp", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	}
}
