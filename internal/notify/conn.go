package notify

import (
	"encoding/json"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type ConnOptions struct {
	PingInterval   time.Duration
	WriteDeadline  time.Duration
	MaxMessageSize int64
	InboundRPS     int
	SendBuffer     int
}

// Serve registers the socket with the hub and pumps messages until the peer
// goes away. It blocks for the lifetime of the connection.
func Serve(h *Hub, conn *websocket.Conn, userID string, opts ConnOptions, logger *zap.Logger) {
	client := NewClient(userID, opts.SendBuffer)
	h.Register(client)
	logger.Info("websocket connected", zap.String("user_id", userID))

	done := make(chan struct{})
	go writePump(conn, client, opts, logger, done)

	readPump(conn, client, opts)

	h.Unregister(client)
	<-done
	_ = conn.Close()
	logger.Info("websocket disconnected", zap.String("user_id", userID))
}

func readPump(conn *websocket.Conn, client *Client, opts ConnOptions) {
	limiter := rate.NewLimiter(rate.Limit(opts.InboundRPS), opts.InboundRPS)
	readWait := opts.PingInterval * 2

	conn.SetReadLimit(opts.MaxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(readWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readWait))
	})

	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(readWait))
		if mt != websocket.TextMessage || !limiter.Allow() {
			continue
		}
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			continue
		}
		if env.Type == "ping" {
			select {
			case client.Send <- pong:
			default:
			}
		}
	}
}

var pong = []byte(`{"type":"pong"}`)

func writePump(conn *websocket.Conn, client *Client, opts ConnOptions, logger *zap.Logger, done chan<- struct{}) {
	ticker := time.NewTicker(opts.PingInterval)
	defer func() {
		ticker.Stop()
		close(done)
	}()
	for {
		select {
		case msg, ok := <-client.Send:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(opts.WriteDeadline))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Debug("websocket write failed", zap.String("user_id", client.UserID), zap.Error(err))
				_ = conn.Close()
				drain(client.Send)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(opts.WriteDeadline)); err != nil {
				_ = conn.Close()
				drain(client.Send)
				return
			}
		}
	}
}

// drain discards queued messages until the hub closes the channel.
func drain(ch <-chan []byte) {
	for range ch {
	}
}
