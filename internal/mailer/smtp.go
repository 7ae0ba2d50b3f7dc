package mailer

import (
	"context"

	"gopkg.in/gomail.v2"
)

// SMTP sends email through a plain SMTP relay.
type SMTP struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
}

func NewSMTP(host string, port int, user, password, from, fromName string) *SMTP {
	return &SMTP{
		dialer:   gomail.NewDialer(host, port, user, password),
		from:     from,
		fromName: fromName,
	}
}

func (s *SMTP) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, s.fromName)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	if msg.Text != "" {
		m.SetBody("text/plain", msg.Text)
		m.AddAlternative("text/html", msg.HTML)
	} else {
		m.SetBody("text/html", msg.HTML)
	}
	return s.dialer.DialAndSend(m)
}
