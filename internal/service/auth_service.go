package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/medconsult/consultation-service/internal/auth"
	"github.com/medconsult/consultation-service/internal/domain"
	"github.com/medconsult/consultation-service/internal/repository"
	apperrors "github.com/medconsult/consultation-service/pkg/util/errorutil"
)

// RegisterInput carries a self-registration request.
type RegisterInput struct {
	Name           string
	Email          string
	Password       string
	Role           string
	Specialization string
	ContactNumber  string
}

// LoginResult is a freshly issued session.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(users repository.UserRepository, tokens *auth.TokenManager, bcryptCost int) *AuthService {
	return &AuthService{
		users:      users,
		tokenMgr:   tokens,
		bcryptCost: bcryptCost,
	}
}

// TokenManager exposes the token manager for middleware construction.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// Register creates an account. Doctors start pending; everyone else is approved immediately.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	name := strings.TrimSpace(in.Name)
	email := domain.NormalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, apperrors.NewValidationError("Please provide all required fields", nil)
	}

	role := domain.RolePatient
	if strings.TrimSpace(in.Role) != "" {
		parsed, err := domain.ParseRole(in.Role)
		if err != nil {
			return nil, parseEnumError(err)
		}
		role = parsed
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewDuplicateEmail()
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewInternalError(err)
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:          name,
		Email:         email,
		PasswordHash:  hash,
		Role:          role,
		Status:        domain.InitialStatus(role),
		ContactNumber: strings.TrimSpace(in.ContactNumber),
	}
	if role == domain.RoleDoctor {
		user.Specialization = strings.TrimSpace(in.Specialization)
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, mapRepoError(err, "user")
	}
	return user, nil
}

// Login verifies the password first, then the approval status, and issues a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, apperrors.NewValidationError("Please provide email and password", nil)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewInvalidCredentials()
	}
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewInvalidCredentials()
	}
	if !user.CanLogin() {
		return nil, apperrors.NewNotApproved("Doctor account is not approved yet")
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.Identity())
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &LoginResult{Token: token, ExpiresAt: exp, User: user}, nil
}
