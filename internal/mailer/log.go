package mailer

import (
	"context"

	"github.com/spf-popaccueil/popaccueil-backend/internal/metrics"
	"github.com/spf-popaccueil/popaccueil-backend/pkg/logger"
)

// LogDispatcher writes the message to the log instead of sending it.
// Used in development when no SMTP server is configured.
type LogDispatcher struct {
	frontURL string
}

func NewLogDispatcher(frontURL string) *LogDispatcher {
	return &LogDispatcher{frontURL: frontURL}
}

func (d *LogDispatcher) SendPasswordReset(ctx context.Context, mail PasswordResetMail) error {
	rendered, err := renderPasswordReset(mail, d.frontURL)
	if err != nil {
		return err
	}

	logger.Info("[DEV MODE] Password reset mail not sent", map[string]interface{}{
		"to":      mail.To,
		"subject": rendered.Subject,
		"link":    ResetLink(d.frontURL, mail.Token),
	})
	metrics.MailDispatchTotal.WithLabelValues("log", "sent").Inc()
	return nil
}
