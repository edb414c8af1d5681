package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf-popaccueil/popaccueil-backend/internal/metrics"
	"github.com/spf-popaccueil/popaccueil-backend/pkg/logger"
)

const (
	DefaultQueueKey    = "popaccueil:mail:outbox"
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = 30 * time.Second
	defaultPollTimeout = 5 * time.Second
	defaultDeferWait   = time.Second
	requeueTimeout     = 5 * time.Second
)

const kindPasswordReset = "password_reset"

type envelope struct {
	Kind          string             `json:"kind"`
	Attempts      int                `json:"attempts"`
	EnqueuedAt    time.Time          `json:"enqueuedAt"`
	NotBefore     time.Time          `json:"notBefore"`
	PasswordReset *PasswordResetMail `json:"passwordReset,omitempty"`
}

// QueueDispatcher pushes mail onto a Redis list; a Worker delivers it.
type QueueDispatcher struct {
	rdb *redis.Client
	key string
}

func NewQueueDispatcher(rdb *redis.Client, key string) *QueueDispatcher {
	if key == "" {
		key = DefaultQueueKey
	}
	return &QueueDispatcher{rdb: rdb, key: key}
}

func (q *QueueDispatcher) SendPasswordReset(ctx context.Context, mail PasswordResetMail) error {
	return q.push(ctx, envelope{
		Kind:          kindPasswordReset,
		EnqueuedAt:    time.Now(),
		PasswordReset: &mail,
	})
}

func (q *QueueDispatcher) push(ctx context.Context, env envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal mail envelope: %w", err)
	}
	if err := q.rdb.LPush(ctx, q.key, data).Err(); err != nil {
		metrics.MailDispatchTotal.WithLabelValues("queue", "error").Inc()
		return fmt.Errorf("lpush mail envelope: %w", err)
	}
	metrics.MailDispatchTotal.WithLabelValues("queue", "enqueued").Inc()
	return nil
}

// Worker drains the outbox into a downstream Dispatcher.
type Worker struct {
	queue       *QueueDispatcher
	next        Dispatcher
	maxAttempts int
	pollTimeout time.Duration
	// retryDelay grows linearly with the attempt count.
	retryDelay time.Duration
	deferWait  time.Duration
	now        func() time.Time
}

func NewWorker(queue *QueueDispatcher, next Dispatcher) *Worker {
	return &Worker{
		queue:       queue,
		next:        next,
		maxAttempts: DefaultMaxAttempts,
		pollTimeout: defaultPollTimeout,
		retryDelay:  DefaultRetryDelay,
		deferWait:   defaultDeferWait,
		now:         time.Now,
	}
}

// Run processes messages until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	logger.Info("Mail worker started", map[string]interface{}{
		"queue": w.queue.key,
	})
	for {
		if ctx.Err() != nil {
			logger.Info("Mail worker stopped")
			return
		}
		if _, err := w.ProcessOne(ctx); err != nil && ctx.Err() == nil {
			logger.Error("Mail worker poll failed", err)
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
		}
	}
}

// ProcessOne waits up to the poll timeout for one message and delivers it.
// It reports whether a message was taken off the queue. A message that is not
// due yet goes back to the tail and counts as not taken.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	result, err := w.queue.rdb.BRPop(ctx, w.pollTimeout, w.queue.key).Result()
	if errors.Is(err, redis.Nil) {
		w.updateDepth(ctx)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("brpop mail outbox: %w", err)
	}
	if len(result) < 2 {
		return false, fmt.Errorf("invalid brpop response: %v", result)
	}

	var env envelope
	if err := json.Unmarshal([]byte(result[1]), &env); err != nil {
		logger.Error("Dropping undecodable mail envelope", err)
		return true, nil
	}

	if wait := env.NotBefore.Sub(w.now()); wait > 0 {
		w.requeue(env, map[string]interface{}{"kind": env.Kind, "attempts": env.Attempts})
		if wait > w.deferWait {
			wait = w.deferWait
		}
		select {
		case <-ctx.Done():
		case <-time.After(wait):
		}
		return false, nil
	}

	if err := w.deliver(ctx, env); err != nil {
		w.retry(env, err)
	}
	w.updateDepth(ctx)
	return true, nil
}

func (w *Worker) deliver(ctx context.Context, env envelope) error {
	switch env.Kind {
	case kindPasswordReset:
		if env.PasswordReset == nil {
			return errors.New("password reset envelope without payload")
		}
		return w.next.SendPasswordReset(ctx, *env.PasswordReset)
	default:
		return fmt.Errorf("unknown mail kind %q", env.Kind)
	}
}

func (w *Worker) retry(env envelope, cause error) {
	env.Attempts++
	fields := map[string]interface{}{
		"kind":     env.Kind,
		"attempts": env.Attempts,
	}
	if env.Attempts >= w.maxAttempts {
		metrics.MailDispatchTotal.WithLabelValues("queue", "dropped").Inc()
		logger.Error("Mail delivery failed, giving up", cause, fields)
		return
	}

	env.NotBefore = w.now().Add(time.Duration(env.Attempts) * w.retryDelay)
	fields["not_before"] = env.NotBefore
	logger.Warn("Mail delivery failed, requeueing", fields)
	w.requeue(env, fields)
}

// requeue does not use the worker context so that a message popped during
// shutdown is not lost.
func (w *Worker) requeue(env envelope, fields map[string]interface{}) {
	ctx, cancel := context.WithTimeout(context.Background(), requeueTimeout)
	defer cancel()
	if err := w.queue.push(ctx, env); err != nil {
		logger.Error("Failed to requeue mail", err, fields)
	}
}

func (w *Worker) updateDepth(ctx context.Context) {
	if n, err := w.queue.rdb.LLen(ctx, w.queue.key).Result(); err == nil {
		metrics.MailQueueDepth.Set(float64(n))
	}
}
