package mailer

import (
	"context"
	"errors"
	"mime"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/spf-popaccueil/popaccueil-backend/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDispatcher struct {
	mu    sync.Mutex
	sent  []PasswordResetMail
	fails int
}

func (r *recordingDispatcher) SendPasswordReset(ctx context.Context, mail PasswordResetMail) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fails > 0 {
		r.fails--
		return errors.New("smtp unavailable")
	}
	r.sent = append(r.sent, mail)
	return nil
}

func TestResetLink(t *testing.T) {
	tests := []struct {
		name     string
		frontURL string
		token    string
		want     string
	}{
		{"Plain", "https://app.popaccueil.org", "abc.def.ghi", "https://app.popaccueil.org/reset-password?token=abc.def.ghi"},
		{"Trailing slash", "https://app.popaccueil.org/", "abc", "https://app.popaccueil.org/reset-password?token=abc"},
		{"Escaped", "http://localhost:3000", "a+b/c=", "http://localhost:3000/reset-password?token=a%2Bb%2Fc%3D"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResetLink(tt.frontURL, tt.token))
		})
	}
}

func TestRenderPasswordReset(t *testing.T) {
	rendered, err := renderPasswordReset(PasswordResetMail{
		To:        "jane@example.org",
		FirstName: "<Jane>",
		Token:     "tok",
	}, "https://app.popaccueil.org")
	require.NoError(t, err)

	assert.Equal(t, passwordResetSubject, rendered.Subject)
	assert.Contains(t, rendered.HTML, "https://app.popaccueil.org/reset-password?token=tok")
	assert.Contains(t, rendered.HTML, "&lt;Jane&gt;")
	assert.NotContains(t, rendered.HTML, "<Jane>")
	assert.Contains(t, rendered.Text, "https://app.popaccueil.org/reset-password?token=tok")
}

func TestSMTPDispatcher_BuildPasswordReset(t *testing.T) {
	d := NewSMTPDispatcher(&config.MailConfig{
		SMTPHost:  "smtp.example.org",
		SMTPPort:  587,
		FromEmail: "noreply@popaccueil.org",
		FromName:  "Pop Accueil",
		FrontURL:  "https://app.popaccueil.org",
	})

	msg, err := d.buildPasswordReset(PasswordResetMail{To: "jane@example.org", FirstName: "Jane", Token: "tok"})
	require.NoError(t, err)
	assert.Equal(t, []string{"jane@example.org"}, msg.GetHeader("To"))
	subject := msg.GetHeader("Subject")
	require.Len(t, subject, 1)
	decoded, err := new(mime.WordDecoder).DecodeHeader(subject[0])
	require.NoError(t, err)
	assert.Equal(t, passwordResetSubject, decoded)

	_, err = d.buildPasswordReset(PasswordResetMail{Token: "tok"})
	assert.Error(t, err)
}

func TestSMTPDispatcher_CancelledContext(t *testing.T) {
	d := NewSMTPDispatcher(&config.MailConfig{SMTPHost: "smtp.invalid", SMTPPort: 25, FromEmail: "a@b.org"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := d.SendPasswordReset(ctx, PasswordResetMail{To: "jane@example.org", Token: "tok"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewDispatcher(t *testing.T) {
	assert.IsType(t, &LogDispatcher{}, NewDispatcher(&config.MailConfig{}))
	assert.IsType(t, &SMTPDispatcher{}, NewDispatcher(&config.MailConfig{SMTPHost: "smtp.example.org", FromEmail: "a@b.org"}))
}

func TestLogDispatcher(t *testing.T) {
	d := NewLogDispatcher("http://localhost:3000")
	assert.NoError(t, d.SendPasswordReset(context.Background(), PasswordResetMail{To: "a@b.org", Token: "tok"}))
}

func setupQueue(t *testing.T) (*miniredis.Miniredis, *QueueDispatcher) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return mr, NewQueueDispatcher(rdb, "")
}

func TestQueueDispatcher_EnqueueAndDeliver(t *testing.T) {
	mr, queue := setupQueue(t)
	next := &recordingDispatcher{}
	worker := NewWorker(queue, next)
	ctx := context.Background()

	mail := PasswordResetMail{To: "jane@example.org", FirstName: "Jane", Token: "tok"}
	require.NoError(t, queue.SendPasswordReset(ctx, mail))

	items, err := mr.List(DefaultQueueKey)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	took, err := worker.ProcessOne(ctx)
	require.NoError(t, err)
	assert.True(t, took)
	require.Len(t, next.sent, 1)
	assert.Equal(t, mail, next.sent[0])
	assert.False(t, mr.Exists(DefaultQueueKey))
}

func TestWorker_RetriesThenDrops(t *testing.T) {
	mr, queue := setupQueue(t)
	next := &recordingDispatcher{fails: DefaultMaxAttempts}
	worker := NewWorker(queue, next)
	worker.retryDelay = 0
	ctx := context.Background()

	require.NoError(t, queue.SendPasswordReset(ctx, PasswordResetMail{To: "jane@example.org", Token: "tok"}))

	for i := 0; i < DefaultMaxAttempts; i++ {
		took, err := worker.ProcessOne(ctx)
		require.NoError(t, err)
		assert.True(t, took)
	}

	assert.Empty(t, next.sent)
	assert.False(t, mr.Exists(DefaultQueueKey), "message dropped after max attempts")
}

func TestWorker_RetrySucceeds(t *testing.T) {
	_, queue := setupQueue(t)
	next := &recordingDispatcher{fails: 1}
	worker := NewWorker(queue, next)
	worker.retryDelay = 0
	ctx := context.Background()

	require.NoError(t, queue.SendPasswordReset(ctx, PasswordResetMail{To: "jane@example.org", Token: "tok"}))

	_, err := worker.ProcessOne(ctx)
	require.NoError(t, err)
	_, err = worker.ProcessOne(ctx)
	require.NoError(t, err)

	assert.Len(t, next.sent, 1)
}

func TestWorker_RetryWaitsForBackoff(t *testing.T) {
	mr, queue := setupQueue(t)
	next := &recordingDispatcher{fails: 1}
	worker := NewWorker(queue, next)
	worker.deferWait = 10 * time.Millisecond
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	worker.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, queue.SendPasswordReset(ctx, PasswordResetMail{To: "jane@example.org", Token: "tok"}))

	took, err := worker.ProcessOne(ctx)
	require.NoError(t, err)
	assert.True(t, took)

	took, err = worker.ProcessOne(ctx)
	require.NoError(t, err)
	assert.False(t, took, "retry is not due yet")
	assert.Empty(t, next.sent)

	items, err := mr.List(DefaultQueueKey)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Contains(t, items[0], `"attempts":1`)

	now = now.Add(DefaultRetryDelay)
	took, err = worker.ProcessOne(ctx)
	require.NoError(t, err)
	assert.True(t, took)
	assert.Len(t, next.sent, 1)
	assert.False(t, mr.Exists(DefaultQueueKey))
}

type cancellingDispatcher struct {
	cancel context.CancelFunc
}

func (d *cancellingDispatcher) SendPasswordReset(ctx context.Context, mail PasswordResetMail) error {
	d.cancel()
	return ctx.Err()
}

func TestWorker_RequeueSurvivesShutdown(t *testing.T) {
	mr, queue := setupQueue(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	worker := NewWorker(queue, &cancellingDispatcher{cancel: cancel})

	require.NoError(t, queue.SendPasswordReset(context.Background(), PasswordResetMail{To: "jane@example.org", Token: "tok"}))

	took, err := worker.ProcessOne(ctx)
	require.NoError(t, err)
	assert.True(t, took)

	items, err := mr.List(DefaultQueueKey)
	require.NoError(t, err)
	assert.Len(t, items, 1, "failed message is requeued even though the worker context is done")
}

func TestWorker_DropsGarbage(t *testing.T) {
	mr, queue := setupQueue(t)
	worker := NewWorker(queue, &recordingDispatcher{})

	_, err := mr.Lpush(DefaultQueueKey, "{not json")
	require.NoError(t, err)

	took, err := worker.ProcessOne(context.Background())
	require.NoError(t, err)
	assert.True(t, took)
}

func TestWorker_RunStopsOnCancel(t *testing.T) {
	_, queue := setupQueue(t)
	next := &recordingDispatcher{}
	worker := NewWorker(queue, next)
	worker.pollTimeout = time.Second

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Run(ctx)
		close(done)
	}()

	require.NoError(t, queue.SendPasswordReset(context.Background(), PasswordResetMail{To: "a@b.org", Token: "tok"}))
	require.Eventually(t, func() bool {
		next.mu.Lock()
		defer next.mu.Unlock()
		return len(next.sent) == 1
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestAsyncDispatcher(t *testing.T) {
	next := &recordingDispatcher{fails: 1}
	async := NewAsyncDispatcher(next, time.Second)

	assert.NoError(t, async.SendPasswordReset(context.Background(), PasswordResetMail{To: "fails@b.org"}))
	async.Wait()
	assert.NoError(t, async.SendPasswordReset(context.Background(), PasswordResetMail{To: "ok@b.org"}))
	async.Wait()

	require.Len(t, next.sent, 1)
	assert.Equal(t, "ok@b.org", next.sent[0].To)
}
