package service

import (
	"errors"

	"github.com/medconsult/consultation-service/internal/domain"
	"github.com/medconsult/consultation-service/internal/repository"
	apperrors "github.com/medconsult/consultation-service/pkg/util/errorutil"
)

// mapRepoError converts repository sentinels into client-facing errors. Ownership misses
// surface as not found, never as forbidden.
func mapRepoError(err error, resource string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound(resource, nil)
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.NewDuplicateEmail()
	case errors.Is(err, repository.ErrInvalidScope):
		return apperrors.NewForbidden("Forbidden: Insufficient permissions")
	default:
		var domainErr *apperrors.DomainError
		if errors.As(err, &domainErr) {
			return err
		}
		return apperrors.NewInternalError(err)
	}
}

func parseEnumError(err error) error {
	var enumErr *domain.ErrInvalidEnum
	if errors.As(err, &enumErr) {
		return apperrors.NewInvalidEnum(enumErr.Field, enumErr.Value)
	}
	return apperrors.NewValidationError(err.Error(), nil)
}
