package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/medconsult/consultation-service/internal/domain"
	"github.com/medconsult/consultation-service/internal/events"
	"github.com/medconsult/consultation-service/internal/notification"
	"github.com/medconsult/consultation-service/internal/observability"
	"github.com/medconsult/consultation-service/internal/repository"
)

const dateLayout = "Mon, 02 Jan 2006 15:04 MST"

// NotificationService turns domain events into outbox messages.
type NotificationService struct {
	dispatcher events.Dispatcher
	users      repository.UserRepository
	outbox     notification.Outbox
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, users repository.UserRepository, outbox notification.Outbox, logger *zap.Logger, metrics *observability.Metrics) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		users:      users,
		outbox:     outbox,
		logger:     logger.With(zap.String("component", "notification_service")),
		metrics:    metrics,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventConsultationBooked, n.handleConsultationBooked)
	n.dispatcher.Subscribe(events.EventConsultationStatusChanged, n.handleConsultationStatusChanged)
	n.dispatcher.Subscribe(events.EventDoctorDecided, n.handleDoctorDecided)
}

func (n *NotificationService) handleConsultationBooked(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ConsultationBookedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	c := payload.Consultation

	patient, err := n.users.GetByID(ctx, c.PatientID)
	if err != nil {
		return fmt.Errorf("load patient: %w", err)
	}
	doctor, err := n.users.GetByID(ctx, c.DoctorID)
	if err != nil {
		return fmt.Errorf("load doctor: %w", err)
	}

	when := c.Date.Format(dateLayout)
	if err := n.enqueue(ctx, notification.Message{
		Kind:     notification.KindConsultationBookedPatient,
		To:       patient.Email,
		Subject:  "Appointment Confirmed",
		TextBody: fmt.Sprintf("Your appointment with Dr. %s on %s is booked.", doctor.Name, when),
	}); err != nil {
		return err
	}
	return n.enqueue(ctx, notification.Message{
		Kind:     notification.KindConsultationBookedDoctor,
		To:       doctor.Email,
		Subject:  "New Appointment Scheduled",
		TextBody: fmt.Sprintf("You have a new appointment on %s with %s.\nReason: %s", when, patient.Name, c.Reason),
	})
}

func (n *NotificationService) handleConsultationStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ConsultationStatusChangedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	c := payload.Consultation

	patient, err := n.users.GetByID(ctx, c.PatientID)
	if err != nil {
		return fmt.Errorf("load patient: %w", err)
	}

	body := fmt.Sprintf("Your appointment on %s with Dr. %s is now %s.", c.Date.Format(dateLayout), event.Actor.Name, c.Status)
	if c.Notes != "" {
		body += "\nNotes: " + c.Notes
	}
	return n.enqueue(ctx, notification.Message{
		Kind:     notification.KindConsultationStatus,
		To:       patient.Email,
		Subject:  fmt.Sprintf("Appointment %s", c.Status),
		TextBody: body,
	})
}

func (n *NotificationService) handleDoctorDecided(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.DoctorDecidedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	doctor, err := n.users.GetByID(ctx, payload.DoctorID)
	if err != nil {
		return fmt.Errorf("load doctor: %w", err)
	}

	msg := notification.Message{
		Kind:     notification.KindDoctorApproved,
		To:       doctor.Email,
		Subject:  "Your account has been approved",
		TextBody: fmt.Sprintf("Hello Dr. %s, your account has been approved. You can now log in.", doctor.Name),
	}
	if payload.Status == domain.StatusRejected {
		msg.Kind = notification.KindDoctorRejected
		msg.Subject = "Your account application was rejected"
		msg.TextBody = fmt.Sprintf("Hello Dr. %s, your account application was not approved.", doctor.Name)
	}
	return n.enqueue(ctx, msg)
}

func (n *NotificationService) enqueue(ctx context.Context, msg notification.Message) error {
	if err := n.outbox.Enqueue(ctx, msg); err != nil {
		n.metrics.RecordNotification(string(msg.Kind), observability.NotificationEnqueueFailed)
		n.logger.Warn("enqueue notification failed", zap.String("kind", string(msg.Kind)), zap.Error(err))
		return fmt.Errorf("enqueue %s: %w", msg.Kind, err)
	}
	n.metrics.RecordNotification(string(msg.Kind), observability.NotificationEnqueued)
	return nil
}
