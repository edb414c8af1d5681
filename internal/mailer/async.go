package mailer

import (
	"context"
	"sync"
	"time"

	"github.com/spf-popaccueil/popaccueil-backend/pkg/logger"
)

// AsyncDispatcher hands each message to a goroutine so that the caller's
// response time does not depend on the SMTP server. Failures are logged.
type AsyncDispatcher struct {
	next    Dispatcher
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewAsyncDispatcher(next Dispatcher, timeout time.Duration) *AsyncDispatcher {
	return &AsyncDispatcher{next: next, timeout: timeout}
}

func (a *AsyncDispatcher) SendPasswordReset(_ context.Context, mail PasswordResetMail) error {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		// The request context ends with the response; delivery must outlive it.
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		if err := a.next.SendPasswordReset(ctx, mail); err != nil {
			logger.Error("Asynchronous mail delivery failed", err, map[string]interface{}{
				"to": mail.To,
			})
		}
	}()
	return nil
}

// Wait blocks until every in-flight message has been handled.
func (a *AsyncDispatcher) Wait() {
	a.wg.Wait()
}
