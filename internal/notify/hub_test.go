package notify

import (
	"encoding/json"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fathima-sithara/campus-service/internal/metrics"
)

func TestHub_NotifyDeliversToEverySocket(t *testing.T) {
	h := NewHub(zap.NewNop())
	tab1 := NewClient("u1", 4)
	tab2 := NewClient("u1", 4)
	h.Register(tab1)
	h.Register(tab2)
	defer h.Unregister(tab1)
	defer h.Unregister(tab2)

	h.Notify("u1", map[string]string{"message": "hi"})

	for _, c := range []*Client{tab1, tab2} {
		select {
		case raw := <-c.Send:
			var env struct {
				Type    string            `json:"type"`
				Payload map[string]string `json:"payload"`
			}
			require.NoError(t, json.Unmarshal(raw, &env))
			assert.Equal(t, "notification", env.Type)
			assert.Equal(t, "hi", env.Payload["message"])
		default:
			t.Fatal("expected a queued notification")
		}
	}
}

func TestHub_OfflineRecipientIsDropped(t *testing.T) {
	h := NewHub(zap.NewNop())
	before := testutil.ToFloat64(metrics.NotificationsDropped.WithLabelValues("offline"))

	h.Notify("nobody", "x")

	after := testutil.ToFloat64(metrics.NotificationsDropped.WithLabelValues("offline"))
	assert.Equal(t, before+1, after)
}

func TestHub_FullBufferDoesNotBlock(t *testing.T) {
	h := NewHub(zap.NewNop())
	c := NewClient("u1", 1)
	h.Register(c)
	defer h.Unregister(c)

	before := testutil.ToFloat64(metrics.NotificationsDropped.WithLabelValues("slow_consumer"))
	h.Notify("u1", "first")
	h.Notify("u1", "second")

	assert.Len(t, c.Send, 1)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.NotificationsDropped.WithLabelValues("slow_consumer")))
}

func TestHub_UnregisterTwice(t *testing.T) {
	h := NewHub(zap.NewNop())
	c := NewClient("u1", 1)
	h.Register(c)

	h.Unregister(c)
	assert.NotPanics(t, func() { h.Unregister(c) })

	_, open := <-c.Send
	assert.False(t, open)
	assert.False(t, h.IsOnline("u1"))
}

func TestHub_Online(t *testing.T) {
	h := NewHub(zap.NewNop())
	b := NewClient("bravo", 1)
	a := NewClient("alpha", 1)
	a2 := NewClient("alpha", 1)
	h.Register(b)
	h.Register(a)
	h.Register(a2)

	assert.Equal(t, []string{"alpha", "bravo"}, h.Online())

	h.Unregister(a)
	assert.True(t, h.IsOnline("alpha"))
	h.Unregister(a2)
	h.Unregister(b)
	assert.Empty(t, h.Online())
}
