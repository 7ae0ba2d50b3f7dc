package notify

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fathima-sithara/campus-service/internal/metrics"
)

// Client is one live socket of a user.
type Client struct {
	UserID    string
	Send      chan []byte
	Connected time.Time
	closed    bool
}

func NewClient(userID string, buffer int) *Client {
	return &Client{
		UserID:    userID,
		Send:      make(chan []byte, buffer),
		Connected: time.Now().UTC(),
	}
}

// Hub tracks live sockets by user ID. A user may hold several sockets (tabs, devices).
type Hub struct {
	mu            sync.RWMutex
	clientsByUser map[string]map[*Client]struct{}
	logger        *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clientsByUser: make(map[string]map[*Client]struct{}),
		logger:        logger,
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clientsByUser[c.UserID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clientsByUser[c.UserID] = set
	}
	set[c] = struct{}{}
	metrics.Connections.Inc()
}

// Unregister removes the client and closes its send channel. Safe to call twice.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.closed {
		return
	}
	if set, ok := h.clientsByUser[c.UserID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clientsByUser, c.UserID)
		}
	}
	c.closed = true
	close(c.Send)
	metrics.Connections.Dec()
}

// Notify marshals payload once and offers it to every socket of the recipient.
// Sockets with a full buffer miss the message; nothing is queued for offline users.
func (h *Hub) Notify(recipientID string, payload any) {
	b, err := json.Marshal(Envelope{Type: "notification", Payload: payload})
	if err != nil {
		metrics.NotificationsDropped.WithLabelValues("marshal").Inc()
		h.logger.Warn("notification marshal failed", zap.String("recipient", recipientID), zap.Error(err))
		return
	}
	h.send(recipientID, b)
}

func (h *Hub) send(userID string, msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	set, ok := h.clientsByUser[userID]
	if !ok {
		metrics.NotificationsDropped.WithLabelValues("offline").Inc()
		return
	}
	for c := range set {
		select {
		case c.Send <- msg:
			metrics.NotificationsDelivered.Inc()
		default:
			metrics.NotificationsDropped.WithLabelValues("slow_consumer").Inc()
			h.logger.Debug("notification dropped for slow socket", zap.String("user_id", userID))
		}
	}
}

// Online returns the IDs of users with at least one live socket.
func (h *Hub) Online() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := make([]string, 0, len(h.clientsByUser))
	for id := range h.clientsByUser {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (h *Hub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clientsByUser[userID]
	return ok
}
