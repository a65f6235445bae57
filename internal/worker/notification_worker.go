package worker

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/medconsult/consultation-service/internal/notification"
	"github.com/medconsult/consultation-service/internal/observability"
)

// NotificationWorkerConfig tunes the drain loop.
type NotificationWorkerConfig struct {
	MaxAttempts    int
	SendRatePerSec float64
	PollTimeout    time.Duration
	// RetryBaseDelay is the wait before the second attempt; each later one doubles it
	// up to RetryMaxDelay.
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
}

const retryJitter = 0.2

// NotificationWorker drains the outbox queue into the mailer.
type NotificationWorker struct {
	queue   notification.Queue
	mailer  notification.Mailer
	limiter *rate.Limiter
	cfg     NotificationWorkerConfig
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewNotificationWorker builds a worker. Zero config values fall back to defaults.
func NewNotificationWorker(queue notification.Queue, mailer notification.Mailer, cfg NotificationWorkerConfig, logger *zap.Logger, metrics *observability.Metrics) *NotificationWorker {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 5 * time.Second
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = 5 * time.Second
	}
	if cfg.RetryMaxDelay <= 0 {
		cfg.RetryMaxDelay = 5 * time.Minute
	}
	cfg.RetryMaxDelay = max(cfg.RetryMaxDelay, cfg.RetryBaseDelay)
	limit := rate.Inf
	if cfg.SendRatePerSec > 0 {
		limit = rate.Limit(cfg.SendRatePerSec)
	}
	return &NotificationWorker{
		queue:   queue,
		mailer:  mailer,
		limiter: rate.NewLimiter(limit, 1),
		cfg:     cfg,
		logger:  logger.With(zap.String("component", "notification_worker")),
		metrics: metrics,
	}
}

// Run processes messages until ctx is cancelled.
func (w *NotificationWorker) Run(ctx context.Context) {
	w.logger.Info("started", zap.Int("max_attempts", w.cfg.MaxAttempts))
	if n, err := w.queue.Recover(ctx); err != nil {
		w.logger.Warn("recover in-flight notifications", zap.Error(err))
	} else if n > 0 {
		w.logger.Info("requeued in-flight notifications", zap.Int("count", n))
	}
	for {
		if ctx.Err() != nil {
			w.logger.Info("stopped")
			return
		}
		if _, err := w.ProcessNext(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				continue
			}
			w.logger.Warn("outbox poll failed", zap.Error(err))
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
		}
	}
}

// ProcessNext handles at most one message. It reports whether a message was dequeued.
func (w *NotificationWorker) ProcessNext(ctx context.Context) (bool, error) {
	msg, err := w.queue.Dequeue(ctx, w.cfg.PollTimeout)
	if err != nil {
		return false, err
	}
	if msg == nil {
		return false, nil
	}

	if err := w.limiter.Wait(ctx); err != nil {
		// put it back so shutdown does not lose it
		_ = w.queue.Retry(context.WithoutCancel(ctx), *msg, 0)
		return true, err
	}

	msg.Attempts++
	sendErr := w.mailer.Send(ctx, *msg)
	// the outcome is recorded even when shutdown cancels ctx mid-send
	settle := context.WithoutCancel(ctx)
	if sendErr == nil {
		w.metrics.RecordNotification(string(msg.Kind), observability.NotificationSent)
		return true, w.queue.Ack(settle, *msg)
	}

	w.metrics.RecordNotification(string(msg.Kind), observability.NotificationFailed)
	log := w.logger.With(
		zap.String("id", msg.ID),
		zap.String("kind", string(msg.Kind)),
		zap.Int("attempt", msg.Attempts),
		zap.Error(sendErr),
	)

	if notification.IsPermanent(sendErr) || msg.Attempts >= w.cfg.MaxAttempts {
		log.Error("notification dead-lettered")
		w.metrics.RecordNotification(string(msg.Kind), observability.NotificationDeadLettered)
		return true, w.queue.DeadLetter(settle, *msg, sendErr)
	}

	delay := w.retryDelay(msg.Attempts)
	log.Warn("notification send failed; retry scheduled", zap.Duration("delay", delay))
	return true, w.queue.Retry(settle, *msg, delay)
}

// retryDelay returns the jittered exponential wait after the given failed attempt (1-based).
func (w *NotificationWorker) retryDelay(attempt int) time.Duration {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = w.cfg.RetryBaseDelay
	b.MaxInterval = w.cfg.RetryMaxDelay
	b.Multiplier = 2
	b.RandomizationFactor = retryJitter
	b.MaxElapsedTime = 0
	b.Reset()

	delay := b.InitialInterval
	for i := 0; i < attempt; i++ {
		delay = b.NextBackOff()
	}
	return delay
}
