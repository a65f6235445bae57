// Package notification carries email notifications from the services to the mail transport
// through a durable outbox.
package notification

import (
	"context"
	"errors"
	"time"
)

// Kind identifies the template/purpose of a notification.
type Kind string

const (
	KindConsultationBookedPatient Kind = "consultation_booked_patient"
	KindConsultationBookedDoctor  Kind = "consultation_booked_doctor"
	KindConsultationStatus        Kind = "consultation_status_changed"
	KindDoctorApproved            Kind = "doctor_approved"
	KindDoctorRejected            Kind = "doctor_rejected"
)

// Message is one email waiting for delivery.
type Message struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	To         string    `json:"to"`
	Subject    string    `json:"subject"`
	TextBody   string    `json:"text_body"`
	Attempts   int       `json:"attempts"`
	EnqueuedAt time.Time `json:"enqueued_at"`

	// raw is the payload as dequeued, used to find the message in the processing list.
	raw string
}

// DeadLetter is a message that exhausted its delivery attempts.
type DeadLetter struct {
	Message  Message   `json:"message"`
	Error    string    `json:"error"`
	FailedAt time.Time `json:"failed_at"`
}

// ErrOutboxDisabled is returned by outboxes that drop messages.
var ErrOutboxDisabled = errors.New("notification outbox disabled")

// Outbox accepts messages for later delivery.
type Outbox interface {
	Enqueue(ctx context.Context, msg Message) error
}

// Queue is an outbox that can also be drained in-process.
type Queue interface {
	Outbox
	// Dequeue blocks up to timeout. It returns nil, nil when nothing arrived.
	Dequeue(ctx context.Context, timeout time.Duration) (*Message, error)
	// Ack confirms a dequeued message was delivered.
	Ack(ctx context.Context, msg Message) error
	// Retry hands a dequeued message back for another attempt after delay.
	Retry(ctx context.Context, msg Message, delay time.Duration) error
	DeadLetter(ctx context.Context, msg Message, cause error) error
	// Recover requeues messages a previous worker dequeued but never settled.
	Recover(ctx context.Context) (int, error)
}

// DeadLetterReader lists failed deliveries, newest first.
type DeadLetterReader interface {
	ListDeadLetters(ctx context.Context, limit int) ([]DeadLetter, error)
}

// Mailer delivers a single message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// PermanentError marks a delivery failure that retrying cannot fix.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return "permanent: " + e.Err.Error() }

func (e *PermanentError) Unwrap() error { return e.Err }

// IsPermanent reports whether err carries a PermanentError.
func IsPermanent(err error) bool {
	var p *PermanentError
	return errors.As(err, &p)
}
