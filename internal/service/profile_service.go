package service

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/medconsult/consultation-service/internal/domain"
	"github.com/medconsult/consultation-service/internal/repository"
	"github.com/medconsult/consultation-service/internal/storage"
	apperrors "github.com/medconsult/consultation-service/pkg/util/errorutil"
)

// ProfilePublicPrefix is the URL path under which profile pictures are served.
const ProfilePublicPrefix = "/uploads/"

// Upload is a file received from a multipart form.
type Upload struct {
	Reader       io.Reader
	Size         int64
	OriginalName string
	MimeType     string
}

// ProfileService reads and patches the caller's own account.
type ProfileService struct {
	users  repository.UserRepository
	files  storage.FileStore
	logger *zap.Logger
}

// NewProfileService builds the service.
func NewProfileService(users repository.UserRepository, files storage.FileStore, logger *zap.Logger) *ProfileService {
	return &ProfileService{users: users, files: files, logger: logger.With(zap.String("component", "profile_service"))}
}

// Get returns the caller's stored profile.
func (s *ProfileService) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "User")
	}
	return user, nil
}

// UpdatePatient applies a patient patch.
func (s *ProfileService) UpdatePatient(ctx context.Context, id string, patch domain.PatientProfilePatch) (*domain.User, error) {
	return s.update(ctx, id, patch.Apply)
}

// UpdateDoctor applies a doctor patch.
func (s *ProfileService) UpdateDoctor(ctx context.Context, id string, patch domain.DoctorProfilePatch) (*domain.User, error) {
	return s.update(ctx, id, patch.Apply)
}

func (s *ProfileService) update(ctx context.Context, id string, apply func(*domain.User) bool) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "User")
	}
	if apply(user) {
		if _, err := s.users.GetByEmail(ctx, user.Email); err == nil {
			return nil, apperrors.NewDuplicateEmail()
		}
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, mapRepoError(err, "User")
	}
	return user, nil
}

// SetProfilePicture stores an image and points the profile at it. The previous picture is removed.
func (s *ProfileService) SetProfilePicture(ctx context.Context, id string, upload Upload) (*domain.User, error) {
	if !strings.HasPrefix(upload.MimeType, "image/") {
		return nil, apperrors.NewValidationError("Profile picture must be an image", map[string]any{"mimetype": upload.MimeType})
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "User")
	}

	key := storage.NewKey(storage.PrefixProfile, upload.OriginalName)
	if err := s.files.Save(ctx, key, upload.Reader, upload.Size, upload.MimeType); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	previous := user.ProfilePicURL
	user.ProfilePicURL = ProfilePublicPrefix + key
	if err := s.users.Update(ctx, user); err != nil {
		_ = s.files.Delete(ctx, key)
		return nil, mapRepoError(err, "User")
	}

	if oldKey, ok := strings.CutPrefix(previous, ProfilePublicPrefix); ok {
		if err := s.files.Delete(ctx, oldKey); err != nil {
			s.logger.Warn("remove previous profile picture", zap.String("key", oldKey), zap.Error(err))
		}
	}
	return user, nil
}

// OpenProfilePicture streams a stored profile picture by key.
func (s *ProfileService) OpenProfilePicture(ctx context.Context, key string) (io.ReadCloser, error) {
	if path.Clean(key) != key || !strings.HasPrefix(key, storage.PrefixProfile+"/") {
		return nil, apperrors.NewNotFound("File", nil)
	}
	rc, err := s.files.Open(ctx, key)
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidKey) {
		return nil, apperrors.NewNotFound("File", nil)
	}
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return rc, nil
}
