package notification

import (
	"context"

	"go.uber.org/zap"
)

// DiscardOutbox logs and drops every message. It backs NOTIFY_DRIVER=none.
type DiscardOutbox struct {
	logger *zap.Logger
}

// NewDiscardOutbox returns an outbox that never delivers.
func NewDiscardOutbox(logger *zap.Logger) *DiscardOutbox {
	return &DiscardOutbox{logger: logger.With(zap.String("component", "discard_outbox"))}
}

func (o *DiscardOutbox) Enqueue(_ context.Context, msg Message) error {
	o.logger.Info("notification dropped", zap.String("kind", string(msg.Kind)), zap.String("to", msg.To))
	return nil
}
