package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// SMTPConfig configures the SMTP mailer.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
	Insecure bool
}

// SMTPMailer sends plain-text mail through an SMTP relay.
type SMTPMailer struct {
	cfg    SMTPConfig
	logger *zap.Logger
}

// NewSMTPMailer builds a mailer. No connection is made until Send.
func NewSMTPMailer(cfg SMTPConfig, logger *zap.Logger) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, logger: logger.With(zap.String("component", "smtp_mailer"))}
}

func (s *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	m := mail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return &PermanentError{Err: fmt.Errorf("invalid from address: %w", err)}
	}
	if err := m.To(msg.To); err != nil {
		return &PermanentError{Err: fmt.Errorf("invalid to address: %w", err)}
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.TextBody)

	tlsPolicy := mail.TLSMandatory
	if s.cfg.Insecure {
		tlsPolicy = mail.TLSOpportunistic
	}
	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTLSPolicy(tlsPolicy),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return &PermanentError{Err: fmt.Errorf("smtp client init: %w", err)}
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		text := err.Error()
		if strings.Contains(text, "535") || strings.Contains(text, "5.7.8") {
			return &PermanentError{Err: fmt.Errorf("smtp auth failed: %w", err)}
		}
		return fmt.Errorf("smtp send: %w", err)
	}

	s.logger.Debug("mail sent", zap.String("kind", string(msg.Kind)), zap.String("to", msg.To))
	return nil
}

// LogMailer writes messages to the log instead of sending them. Used when SMTP_HOST is unset.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer returns a development mailer.
func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger.With(zap.String("component", "log_mailer"))}
}

func (l *LogMailer) Send(_ context.Context, msg Message) error {
	l.logger.Info("mail",
		zap.String("id", msg.ID),
		zap.String("kind", string(msg.Kind)),
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.TextBody),
	)
	return nil
}
