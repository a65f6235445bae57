package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/medconsult/consultation-service/internal/notification"
	"github.com/medconsult/consultation-service/internal/observability"
)

type stubMailer struct {
	mu    sync.Mutex
	sent  []notification.Message
	fail  func(notification.Message) error
	calls int
}

func (s *stubMailer) Send(_ context.Context, msg notification.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.fail != nil {
		if err := s.fail(msg); err != nil {
			return err
		}
	}
	s.sent = append(s.sent, msg)
	return nil
}

func newQueue(t *testing.T) *notification.RedisQueue {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return notification.NewRedisQueue(client, "outbox", "dead")
}

func testConfig() NotificationWorkerConfig {
	return NotificationWorkerConfig{
		MaxAttempts:    3,
		PollTimeout:    50 * time.Millisecond,
		RetryBaseDelay: time.Millisecond,
		RetryMaxDelay:  4 * time.Millisecond,
	}
}

func (s *stubMailer) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestWorkerDeliversInOrder(t *testing.T) {
	ctx := context.Background()
	q := newQueue(t)
	mailer := &stubMailer{}
	w := NewNotificationWorker(q, mailer, testConfig(), zap.NewNop(), observability.NewMetrics())

	require.NoError(t, q.Enqueue(ctx, notification.Message{To: "first@x.com"}))
	require.NoError(t, q.Enqueue(ctx, notification.Message{To: "second@x.com"}))

	for i := 0; i < 2; i++ {
		handled, err := w.ProcessNext(ctx)
		require.NoError(t, err)
		assert.True(t, handled)
	}
	handled, err := w.ProcessNext(ctx)
	require.NoError(t, err)
	assert.False(t, handled)

	require.Len(t, mailer.sent, 2)
	assert.Equal(t, "first@x.com", mailer.sent[0].To)
	assert.Equal(t, 1, mailer.sent[0].Attempts)

	processing, scheduled, err := q.Pending(ctx)
	require.NoError(t, err)
	assert.Zero(t, processing)
	assert.Zero(t, scheduled)
}

func TestWorkerRetriesThenDeadLetters(t *testing.T) {
	ctx := context.Background()
	q := newQueue(t)
	mailer := &stubMailer{fail: func(notification.Message) error { return errors.New("connection refused") }}
	w := NewNotificationWorker(q, mailer, testConfig(), zap.NewNop(), nil)

	require.NoError(t, q.Enqueue(ctx, notification.Message{ID: "m1", To: "a@x.com"}))

	handled, err := w.ProcessNext(ctx)
	require.NoError(t, err)
	require.True(t, handled)
	processing, scheduled, err := q.Pending(ctx)
	require.NoError(t, err)
	assert.Zero(t, processing)
	assert.EqualValues(t, 1, scheduled)

	require.Eventually(t, func() bool {
		_, err := w.ProcessNext(ctx)
		return err == nil && mailer.callCount() == 3
	}, 5*time.Second, time.Millisecond)

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	processing, scheduled, err = q.Pending(ctx)
	require.NoError(t, err)
	assert.Zero(t, processing)
	assert.Zero(t, scheduled)

	dead, err := q.ListDeadLetters(ctx, 10)
	require.NoError(t, err)
	require.Len(t, dead, 1)
	assert.Equal(t, "m1", dead[0].Message.ID)
	assert.Equal(t, 3, dead[0].Message.Attempts)
	assert.Equal(t, "connection refused", dead[0].Error)
}

func TestWorkerWaitsBeforeRetrying(t *testing.T) {
	ctx := context.Background()
	q := newQueue(t)
	mailer := &stubMailer{fail: func(notification.Message) error { return errors.New("timeout") }}
	cfg := testConfig()
	cfg.RetryBaseDelay = time.Hour
	cfg.RetryMaxDelay = 2 * time.Hour
	w := NewNotificationWorker(q, mailer, cfg, zap.NewNop(), nil)

	require.NoError(t, q.Enqueue(ctx, notification.Message{ID: "m1", To: "a@x.com"}))
	_, err := w.ProcessNext(ctx)
	require.NoError(t, err)

	handled, err := w.ProcessNext(ctx)
	require.NoError(t, err)
	assert.False(t, handled)
	assert.Equal(t, 1, mailer.callCount())
}

func TestRetryDelayGrowsExponentially(t *testing.T) {
	w := NewNotificationWorker(nil, nil, NotificationWorkerConfig{
		RetryBaseDelay: time.Second,
		RetryMaxDelay:  10 * time.Second,
	}, zap.NewNop(), nil)

	within := func(d, want time.Duration) bool {
		spread := time.Duration(float64(want) * retryJitter)
		return d >= want-spread && d <= want+spread+time.Nanosecond
	}
	assert.True(t, within(w.retryDelay(1), time.Second))
	assert.True(t, within(w.retryDelay(2), 2*time.Second))
	assert.True(t, within(w.retryDelay(3), 4*time.Second))
	assert.True(t, within(w.retryDelay(6), 10*time.Second))
}

func TestWorkerRecoversUnackedMessages(t *testing.T) {
	ctx := context.Background()
	q := newQueue(t)
	require.NoError(t, q.Enqueue(ctx, notification.Message{ID: "m1", To: "a@x.com"}))

	// a worker that dies after dequeuing never settles the message
	msg, err := q.Dequeue(ctx, 50*time.Millisecond)
	require.NoError(t, err)
	require.NotNil(t, msg)
	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	mailer := &stubMailer{}
	w := NewNotificationWorker(q, mailer, testConfig(), zap.NewNop(), nil)
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		w.Run(runCtx)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
	}()

	assert.Eventually(t, func() bool {
		mailer.mu.Lock()
		defer mailer.mu.Unlock()
		return len(mailer.sent) == 1 && mailer.sent[0].ID == "m1"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWorkerDeadLettersPermanentFailureImmediately(t *testing.T) {
	ctx := context.Background()
	q := newQueue(t)
	mailer := &stubMailer{fail: func(notification.Message) error {
		return &notification.PermanentError{Err: errors.New("bad address")}
	}}
	w := NewNotificationWorker(q, mailer, testConfig(), zap.NewNop(), nil)

	require.NoError(t, q.Enqueue(ctx, notification.Message{ID: "m1", To: "nope"}))
	_, err := w.ProcessNext(ctx)
	require.NoError(t, err)

	dead, err := q.ListDeadLetters(ctx, 10)
	require.NoError(t, err)
	require.Len(t, dead, 1)
	assert.Equal(t, 1, mailer.calls)
}

func TestWorkerRunStopsOnCancel(t *testing.T) {
	q := newQueue(t)
	mailer := &stubMailer{}
	w := NewNotificationWorker(q, mailer, testConfig(), zap.NewNop(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, q.Enqueue(ctx, notification.Message{To: "a@x.com"}))

	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		mailer.mu.Lock()
		defer mailer.mu.Unlock()
		return len(mailer.sent) == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}
