package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

// Purpose selects the wording of a passcode email.
type Purpose int

const (
	PurposeSignup Purpose = iota
	PurposePasswordReset
)

var codeTemplate = template.Must(template.New("code").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #e0e0e0; border-radius: 5px;">
  <h2 style="color: #4a5568; text-align: center;">{{.Heading}}</h2>
  <p>Hello,</p>
  <p>{{.Intro}}</p>
  <div style="text-align: center; padding: 10px; background: #f7fafc; font-size: 24px; font-weight: bold; letter-spacing: 5px; margin: 15px 0;">{{.Code}}</div>
  <p>This code will expire in {{.Minutes}} minutes.</p>
  <p style="font-size: 12px; color: #718096; margin-top: 30px;">If you didn't request this code, please ignore this email.</p>
</div>`))

type codeData struct {
	Heading string
	Intro   string
	Code    string
	Minutes int
}

// CodeMessage renders the passcode email for the given purpose.
func CodeMessage(to, code string, ttl time.Duration, purpose Purpose) (Message, error) {
	data := codeData{Code: code, Minutes: int(ttl.Minutes())}
	var subject, text string
	switch purpose {
	case PurposePasswordReset:
		subject = "Your HNB X Password Reset Code"
		data.Heading = "HNB X Password Reset"
		data.Intro = "Your password reset code for HNB X is:"
		text = fmt.Sprintf("Your HNB X password reset code is %s. This code will expire in %d minutes.", code, data.Minutes)
	default:
		subject = "Your HNB X Verification Code"
		data.Heading = "HNB X Account Verification"
		data.Intro = "Your verification code for HNB X is:"
		text = fmt.Sprintf("Your OTP for HNB X signup is %s. This code will expire in %d minutes.", code, data.Minutes)
	}

	var buf bytes.Buffer
	if err := codeTemplate.Execute(&buf, data); err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: subject, HTML: buf.String(), Text: text}, nil
}
