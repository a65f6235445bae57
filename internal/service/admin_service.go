package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/medconsult/consultation-service/internal/domain"
	"github.com/medconsult/consultation-service/internal/events"
	"github.com/medconsult/consultation-service/internal/notification"
	"github.com/medconsult/consultation-service/internal/repository"
	apperrors "github.com/medconsult/consultation-service/pkg/util/errorutil"
)

// AdminService handles user oversight and doctor approval.
type AdminService struct {
	users       repository.UserRepository
	dispatcher  events.Dispatcher
	deadLetters notification.DeadLetterReader
	logger      *zap.Logger
}

// NewAdminService builds the service. deadLetters may be nil when the outbox driver keeps none.
func NewAdminService(users repository.UserRepository, dispatcher events.Dispatcher, deadLetters notification.DeadLetterReader, logger *zap.Logger) *AdminService {
	return &AdminService{
		users:       users,
		dispatcher:  dispatcher,
		deadLetters: deadLetters,
		logger:      logger.With(zap.String("component", "admin_service")),
	}
}

// ListUsers returns every account, optionally narrowed by role and status.
func (s *AdminService) ListUsers(ctx context.Context, role, status string) ([]domain.User, error) {
	var filter repository.UserFilter
	if strings.TrimSpace(role) != "" {
		r, err := domain.ParseRole(role)
		if err != nil {
			return nil, parseEnumError(err)
		}
		filter.Role = &r
	}
	if strings.TrimSpace(status) != "" {
		st, err := domain.ParseApprovalStatus(status)
		if err != nil {
			return nil, parseEnumError(err)
		}
		filter.Status = &st
	}
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, mapRepoError(err, "user")
	}
	return users, nil
}

// PendingDoctors lists doctors awaiting a decision.
func (s *AdminService) PendingDoctors(ctx context.Context) ([]domain.User, error) {
	return s.ListUsers(ctx, string(domain.RoleDoctor), string(domain.StatusPending))
}

// ApproveDoctor marks a doctor approved. Re-approving is allowed.
func (s *AdminService) ApproveDoctor(ctx context.Context, actor domain.Identity, id string) (*domain.User, error) {
	return s.decide(ctx, actor, id, domain.StatusApproved)
}

// RejectDoctor marks a doctor rejected. Re-rejecting is allowed.
func (s *AdminService) RejectDoctor(ctx context.Context, actor domain.Identity, id string) (*domain.User, error) {
	return s.decide(ctx, actor, id, domain.StatusRejected)
}

func (s *AdminService) decide(ctx context.Context, actor domain.Identity, id string, status domain.ApprovalStatus) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "Doctor")
	}
	if user.Role != domain.RoleDoctor {
		return nil, apperrors.NewNotFound("Doctor", nil)
	}

	user.Status = status
	if err := s.users.Update(ctx, user); err != nil {
		return nil, mapRepoError(err, "Doctor")
	}

	if s.dispatcher != nil {
		err := s.dispatcher.Publish(ctx, events.Event{
			Type:    events.EventDoctorDecided,
			Actor:   actor,
			Payload: events.DoctorDecidedPayload{DoctorID: user.ID, Status: status},
		})
		if err != nil {
			s.logger.Warn("doctor decision notification not queued", zap.String("doctor_id", user.ID), zap.Error(err))
		}
	}
	return user, nil
}

// FailedNotifications lists dead-lettered messages, newest first.
func (s *AdminService) FailedNotifications(ctx context.Context, limit int) ([]notification.DeadLetter, error) {
	if s.deadLetters == nil {
		return []notification.DeadLetter{}, nil
	}
	entries, err := s.deadLetters.ListDeadLetters(ctx, limit)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return entries, nil
}
