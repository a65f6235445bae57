package main

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/medconsult/consultation-service/internal/config"
	"github.com/medconsult/consultation-service/internal/notification"
	"github.com/medconsult/consultation-service/internal/observability"
	"github.com/medconsult/consultation-service/internal/persistence"
	"github.com/medconsult/consultation-service/internal/storage"
	"github.com/medconsult/consultation-service/internal/worker"
)

// outboxSet is the configured notification driver plus whatever must be closed with it.
type outboxSet struct {
	Outbox      notification.Outbox
	DeadLetters notification.DeadLetterReader
	close       func()
}

func (o outboxSet) Close() {
	if o.close != nil {
		o.close()
	}
}

// newOutbox builds the outbox for cfg.Driver. The redis driver also starts the delivery worker on wg.
func newOutbox(ctx context.Context, wg *sync.WaitGroup, cfg config.NotificationConfig, redis *persistence.Redis, logger *zap.Logger, metrics *observability.Metrics) (outboxSet, error) {
	switch cfg.Driver {
	case "rabbitmq":
		pub, err := notification.NewAMQPOutbox(cfg.RabbitURL, cfg.RabbitExchange, logger)
		if err != nil {
			return outboxSet{}, err
		}
		return outboxSet{Outbox: pub, close: func() { _ = pub.Close() }}, nil
	case "none":
		return outboxSet{Outbox: notification.NewDiscardOutbox(logger)}, nil
	}

	queue := notification.NewRedisQueue(redis.Client, redis.Key(cfg.QueueKey), redis.Key(cfg.DeadLetterKey))
	w := worker.NewNotificationWorker(queue, newMailer(cfg, logger), worker.NotificationWorkerConfig{
		MaxAttempts:    cfg.MaxAttempts,
		SendRatePerSec: cfg.SendRatePerSec,
		PollTimeout:    time.Duration(cfg.PollTimeoutSec) * time.Second,
		RetryBaseDelay: cfg.RetryBase(),
		RetryMaxDelay:  cfg.RetryMax(),
	}, logger, metrics)

	wg.Add(1)
	go func() {
		defer wg.Done()
		w.Run(ctx)
	}()
	return outboxSet{Outbox: queue, DeadLetters: queue}, nil
}

func newMailer(cfg config.NotificationConfig, logger *zap.Logger) notification.Mailer {
	if cfg.SMTPHost == "" {
		logger.Warn("SMTP_HOST not set; notifications are logged instead of mailed")
		return notification.NewLogMailer(logger)
	}
	return notification.NewSMTPMailer(notification.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.EmailFrom,
		Timeout:  cfg.SMTPTimeout,
		Insecure: cfg.SMTPInsecure,
	}, logger)
}

func newFileStore(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (storage.FileStore, error) {
	if cfg.Driver == "s3" {
		store, err := storage.NewS3Store(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return store, nil
	}
	return storage.NewLocalStore(cfg.LocalDir)
}
