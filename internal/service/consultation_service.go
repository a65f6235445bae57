package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/medconsult/consultation-service/internal/domain"
	"github.com/medconsult/consultation-service/internal/events"
	"github.com/medconsult/consultation-service/internal/repository"
	apperrors "github.com/medconsult/consultation-service/pkg/util/errorutil"
)

// BookInput is a patient's booking request.
type BookInput struct {
	DoctorID string
	Date     time.Time
	Reason   string
}

// BookingResult reports the stored consultation and whether its notifications reached the outbox.
type BookingResult struct {
	Consultation        *domain.Consultation
	NotificationsQueued bool
}

// ConsultationService handles booking and the consultation lifecycle.
type ConsultationService struct {
	consultations repository.ConsultationRepository
	users         repository.UserRepository
	dispatcher    events.Dispatcher
	logger        *zap.Logger
}

// NewConsultationService builds the service.
func NewConsultationService(consultations repository.ConsultationRepository, users repository.UserRepository, dispatcher events.Dispatcher, logger *zap.Logger) *ConsultationService {
	return &ConsultationService{
		consultations: consultations,
		users:         users,
		dispatcher:    dispatcher,
		logger:        logger.With(zap.String("component", "consultation_service")),
	}
}

// AvailableDoctors lists approved doctors a patient can book.
func (s *ConsultationService) AvailableDoctors(ctx context.Context) ([]domain.UserSummary, error) {
	role, status := domain.RoleDoctor, domain.StatusApproved
	doctors, err := s.users.List(ctx, repository.UserFilter{Role: &role, Status: &status})
	if err != nil {
		return nil, mapRepoError(err, "Doctor")
	}
	result := make([]domain.UserSummary, 0, len(doctors))
	for i := range doctors {
		result = append(result, doctors[i].Summary())
	}
	return result, nil
}

// Book creates a pending consultation for the calling patient. The doctor must exist, be a doctor
// and be approved. A failed notification enqueue does not undo the booking.
func (s *ConsultationService) Book(ctx context.Context, patient domain.Identity, in BookInput) (*BookingResult, error) {
	reason := strings.TrimSpace(in.Reason)
	if in.DoctorID == "" || in.Date.IsZero() || reason == "" {
		return nil, apperrors.NewValidationError("Please provide doctor, date, and reason", nil)
	}

	doctor, err := s.users.GetByID(ctx, in.DoctorID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewInternalError(err)
	}
	if err != nil || doctor.Role != domain.RoleDoctor || doctor.Status != domain.StatusApproved {
		return nil, apperrors.NewNotFound("Doctor", nil)
	}

	consultation := &domain.Consultation{
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		Date:      in.Date.UTC(),
		Reason:    reason,
		Status:    domain.ConsultationPending,
	}
	if err := s.consultations.Create(ctx, consultation); err != nil {
		return nil, mapRepoError(err, "Consultation")
	}

	result := &BookingResult{Consultation: consultation, NotificationsQueued: true}
	if err := s.publish(ctx, events.Event{
		Type:    events.EventConsultationBooked,
		Actor:   patient,
		Payload: events.ConsultationBookedPayload{Consultation: *consultation},
	}); err != nil {
		s.logger.Warn("booking notifications not queued", zap.String("consultation_id", consultation.ID), zap.Error(err))
		result.NotificationsQueued = false
	}
	return result, nil
}

// List returns the caller's consultations with the other party attached.
func (s *ConsultationService) List(ctx context.Context, caller domain.Identity, status string) ([]domain.ConsultationView, error) {
	scope, err := repository.ScopeFor(caller)
	if err != nil {
		return nil, mapRepoError(err, "Consultation")
	}
	var filter repository.ConsultationFilter
	if strings.TrimSpace(status) != "" {
		st, err := domain.ParseConsultationStatus(status)
		if err != nil {
			return nil, parseEnumError(err)
		}
		filter.Status = &st
	}
	views, err := s.consultations.ListOwned(ctx, scope, filter)
	if err != nil {
		return nil, mapRepoError(err, "Consultation")
	}
	return views, nil
}

// UpdateStatus lets the assigned doctor move a consultation to any status. Notes replace the
// previous notes when supplied.
func (s *ConsultationService) UpdateStatus(ctx context.Context, doctor domain.Identity, id, status string, notes *string) (*domain.Consultation, error) {
	newStatus, err := domain.ParseConsultationStatus(status)
	if err != nil {
		return nil, parseEnumError(err)
	}
	scope, err := repository.ScopeFor(doctor)
	if err != nil {
		return nil, mapRepoError(err, "Consultation")
	}

	consultation, err := s.consultations.GetOwned(ctx, id, scope)
	if err != nil {
		return nil, mapRepoError(err, "Consultation")
	}

	oldStatus := consultation.Status
	consultation.Status = newStatus
	if notes != nil {
		consultation.Notes = strings.TrimSpace(*notes)
	}
	if err := s.consultations.Update(ctx, consultation); err != nil {
		return nil, mapRepoError(err, "Consultation")
	}

	if oldStatus != newStatus {
		if err := s.publish(ctx, events.Event{
			Type:    events.EventConsultationStatusChanged,
			Actor:   doctor,
			Payload: events.ConsultationStatusChangedPayload{Consultation: *consultation, OldStatus: oldStatus},
		}); err != nil {
			s.logger.Warn("status notification not queued", zap.String("consultation_id", consultation.ID), zap.Error(err))
		}
	}
	return consultation, nil
}

func (s *ConsultationService) publish(ctx context.Context, event events.Event) error {
	if s.dispatcher == nil {
		return nil
	}
	return s.dispatcher.Publish(ctx, event)
}
