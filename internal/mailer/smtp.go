package mailer

import (
	"context"
	"fmt"

	"github.com/spf-popaccueil/popaccueil-backend/config"
	"github.com/spf-popaccueil/popaccueil-backend/internal/metrics"
	"github.com/spf-popaccueil/popaccueil-backend/pkg/logger"
	"gopkg.in/gomail.v2"
)

// SMTPDispatcher sends mail synchronously over SMTP.
type SMTPDispatcher struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
	frontURL string
}

func NewSMTPDispatcher(cfg *config.MailConfig) *SMTPDispatcher {
	return &SMTPDispatcher{
		dialer:   gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		from:     cfg.FromEmail,
		fromName: cfg.FromName,
		frontURL: cfg.FrontURL,
	}
}

func (d *SMTPDispatcher) SendPasswordReset(ctx context.Context, mail PasswordResetMail) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := d.buildPasswordReset(mail)
	if err != nil {
		return err
	}

	if err := d.dialer.DialAndSend(msg); err != nil {
		metrics.MailDispatchTotal.WithLabelValues("smtp", "error").Inc()
		return fmt.Errorf("send password reset mail: %w", err)
	}

	metrics.MailDispatchTotal.WithLabelValues("smtp", "sent").Inc()
	logger.Info("Password reset mail sent", map[string]interface{}{
		"to": mail.To,
	})
	return nil
}

func (d *SMTPDispatcher) buildPasswordReset(mail PasswordResetMail) (*gomail.Message, error) {
	if mail.To == "" {
		return nil, fmt.Errorf("empty recipient")
	}

	rendered, err := renderPasswordReset(mail, d.frontURL)
	if err != nil {
		return nil, err
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", d.from, d.fromName)
	m.SetHeader("To", mail.To)
	m.SetHeader("Subject", rendered.Subject)
	m.SetBody("text/plain", rendered.Text)
	m.AddAlternative("text/html", rendered.HTML)
	return m, nil
}
