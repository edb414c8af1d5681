// Package mailer delivers transactional mail. Callers treat delivery as best
// effort: a failed send is logged and never fails the request that caused it.
package mailer

import (
	"context"
	"net/url"
	"strings"

	"github.com/spf-popaccueil/popaccueil-backend/config"
)

// PasswordResetMail is everything needed to render a reset message.
type PasswordResetMail struct {
	To        string `json:"to"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Token     string `json:"token"`
}

// Dispatcher sends mail.
type Dispatcher interface {
	SendPasswordReset(ctx context.Context, mail PasswordResetMail) error
}

// ResetLink builds the front-end URL a member follows to choose a new password.
func ResetLink(frontURL, token string) string {
	return strings.TrimRight(frontURL, "/") + "/reset-password?token=" + url.QueryEscape(token)
}

// NewDispatcher returns an SMTP dispatcher when SMTP is configured, otherwise
// one that only logs the message.
func NewDispatcher(cfg *config.MailConfig) Dispatcher {
	if cfg.SMTPConfigured() {
		return NewSMTPDispatcher(cfg)
	}
	return NewLogDispatcher(cfg.FrontURL)
}
