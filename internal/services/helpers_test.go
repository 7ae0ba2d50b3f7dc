package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fathima-sithara/campus-service/internal/activity"
	"github.com/fathima-sithara/campus-service/internal/mailer"
	"github.com/fathima-sithara/campus-service/internal/models"
	"github.com/fathima-sithara/campus-service/internal/repository/memstore"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type fakeMedia struct {
	hosted    []string
	removed   []string
	hostErr   error
	removeErr error
}

func (f *fakeMedia) HostImage(_ context.Context, ownerID, filename string, _ []byte) (string, error) {
	if f.hostErr != nil {
		return "", f.hostErr
	}
	url := "https://cdn.test/images/" + ownerID + "/" + filename
	f.hosted = append(f.hosted, url)
	return url, nil
}

func (f *fakeMedia) HostDocument(_ context.Context, ownerID, filename, _ string, _ []byte) (string, error) {
	if f.hostErr != nil {
		return "", f.hostErr
	}
	url := "https://cdn.test/resumes/" + ownerID + "/" + strings.ToLower(filename)
	f.hosted = append(f.hosted, url)
	return url, nil
}

func (f *fakeMedia) Remove(_ context.Context, url string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removed = append(f.removed, url)
	return nil
}

type sentNotification struct {
	recipient string
	payload   models.Notification
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (n *fakeNotifier) Notify(recipientID string, payload any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{recipient: recipientID, payload: payload.(models.Notification)})
}

type recordedEvents struct {
	mu     sync.Mutex
	events []activity.Event
}

func (r *recordedEvents) Record(_ context.Context, e activity.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordedEvents) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

// tickingClock starts at t0 and advances one second per call so creation
// order is reflected in timestamps.
func tickingClock(t0 time.Time) Clock {
	var mu sync.Mutex
	cur := t0
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		cur = cur.Add(time.Second)
		return cur
	}
}

func fixedClock(t time.Time) Clock { return func() time.Time { return t } }

var errBoom = errors.New("boom")

func seedUser(t *testing.T, users *memstore.Users, handle string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{
		Username:   handle,
		RollNumber: "roll-" + handle,
		Email:      handle + "@hnbgu.edu.in",
		FullName:   strings.ToUpper(handle[:1]) + handle[1:] + " Test",
		Department: "CSE",
		Role:       role,
		IsVerified: true,
	}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func mustFindUser(t *testing.T, users *memstore.Users, id primitive.ObjectID) *models.User {
	t.Helper()
	u, err := users.FindByID(context.Background(), id)
	require.NoError(t, err)
	return u
}
