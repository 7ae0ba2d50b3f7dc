package handlers

import (
	"errors"
	"io"

	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/fathima-sithara/campus-service/internal/auth"
	"github.com/fathima-sithara/campus-service/internal/middleware"
	"github.com/fathima-sithara/campus-service/internal/notify"
	"github.com/fathima-sithara/campus-service/internal/services"
	"github.com/fathima-sithara/campus-service/internal/utils"
)

// Services bundles the domain services the handlers call.
type Services struct {
	Signup       *services.SignupService
	Reset        *services.PasswordResetService
	Auth         *services.AuthService
	Profiles     *services.ProfileService
	Graph        *services.GraphService
	Content      *services.ContentService
	Interactions *services.InteractionService
}

// Presence reports which users hold a live socket.
type Presence interface {
	Online() []string
}

type Options struct {
	CookieSecure   bool
	MaxUploadBytes int64
	WS             notify.ConnOptions
}

type Handler struct {
	svc    Services
	tokens *auth.TokenManager
	hub    *notify.Hub
	online Presence
	opts   Options
	logger *zap.Logger
}

func NewHandler(svc Services, tokens *auth.TokenManager, hub *notify.Hub, opts Options, logger *zap.Logger) *Handler {
	h := &Handler{svc: svc, tokens: tokens, hub: hub, opts: opts, logger: logger}
	if hub != nil {
		h.online = hub
	}
	return h
}

var statusByKind = []struct {
	kind   error
	status int
}{
	{services.ErrValidation, fiber.StatusBadRequest},
	{services.ErrUnauthenticated, fiber.StatusUnauthorized},
	{services.ErrForbidden, fiber.StatusForbidden},
	{services.ErrNotFound, fiber.StatusNotFound},
	{services.ErrConflict, fiber.StatusConflict},
	{services.ErrDelivery, fiber.StatusBadGateway},
}

// writeError maps a service error onto its HTTP status. Unclassified errors
// become a generic 500 and are logged with their cause.
func (h *Handler) writeError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	for _, m := range statusByKind {
		if errors.Is(err, m.kind) {
			status = m.status
			break
		}
	}

	msg := "Internal server error"
	var se *services.Error
	if status != fiber.StatusInternalServerError && errors.As(err, &se) {
		msg = se.Msg
	}

	if status >= fiber.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Error(err),
		)
		if hub := sentryfiber.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
	}
	return utils.JSONError(c, status, msg)
}

// parseBody decodes and validates a JSON body into req.
func parseBody(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return &services.Error{Kind: services.ErrValidation, Msg: "Invalid request body", Cause: err}
	}
	if err := utils.ValidateStruct(req); err != nil {
		msg := utils.FirstValidationMessage(err)
		if msg == "" {
			msg = "Invalid request body"
		}
		return &services.Error{Kind: services.ErrValidation, Msg: msg, Cause: err}
	}
	return nil
}

func caller(c *fiber.Ctx) (primitive.ObjectID, bool) {
	return middleware.UserObjectID(c)
}

func (h *Handler) unauthenticated(c *fiber.Ctx) error {
	return utils.JSONError(c, fiber.StatusUnauthorized, "User not authenticated")
}

// pathID parses an ObjectID route parameter.
func pathID(c *fiber.Ctx, param, what string) (primitive.ObjectID, error) {
	return services.ParseID(c.Params(param), what)
}

// formUpload reads an optional multipart file. A missing field yields nil.
func (h *Handler) formUpload(c *fiber.Ctx, field string) (*services.Upload, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, nil
	}
	if h.opts.MaxUploadBytes > 0 && fh.Size > h.opts.MaxUploadBytes {
		return nil, &services.Error{Kind: services.ErrValidation, Msg: "File is too large"}
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &services.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Data:        data,
	}, nil
}
