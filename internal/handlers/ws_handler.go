package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/fathima-sithara/campus-service/internal/auth"
	"github.com/fathima-sithara/campus-service/internal/middleware"
	"github.com/fathima-sithara/campus-service/internal/notify"
	"github.com/fathima-sithara/campus-service/internal/utils"
)

// WSUpgrade rejects plain HTTP requests to the websocket endpoint and
// authenticates the session cookie before the handshake. An expired session
// gets its own message so the client can send the user back to login.
func (h *Handler) WSUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return utils.JSONError(c, fiber.StatusUpgradeRequired, "Websocket upgrade required")
	}
	claims, err := h.tokens.Parse(c.Cookies(middleware.SessionCookie))
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return utils.JSONError(c, fiber.StatusUnauthorized, "Session expired, please log in again")
		}
		return utils.JSONError(c, fiber.StatusUnauthorized, "User not authenticated")
	}
	c.Locals("wsUserID", claims.UserID)
	return c.Next()
}

// WS registers the authenticated socket with the notification hub.
func (h *Handler) WS() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals("wsUserID").(string)
		if userID == "" {
			h.logger.Warn("websocket without user, closing")
			_ = conn.Close()
			return
		}
		notify.Serve(h.hub, conn, userID, h.opts.WS, h.logger.With(zap.String("component", "ws")))
	})
}
