package mailer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fathima-sithara/campus-service/internal/config"
)

// Message is a single transactional email.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Mailer delivers transactional email.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New builds the mailer selected by cfg.Provider.
func New(cfg config.EmailCfg, logger *zap.Logger) (Mailer, error) {
	switch cfg.Provider {
	case "brevo":
		return NewBrevo(cfg.BrevoAPIKey, cfg.FromEmail, cfg.FromName, logger), nil
	case "smtp":
		return NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.FromEmail, cfg.FromName), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}
