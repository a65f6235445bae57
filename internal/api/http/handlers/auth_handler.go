package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/medconsult/consultation-service/internal/api/dto"
	"github.com/medconsult/consultation-service/internal/service"
	apperrors "github.com/medconsult/consultation-service/pkg/util/errorutil"
)

// AuthHandler exposes registration and login.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}

	user, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Name:           req.Name,
		Email:          req.Email,
		Password:       req.Password,
		Role:           req.Role,
		Specialization: req.Specialization,
		ContactNumber:  req.ContactNumber,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(dto.MessageResponse{
		Message: "User registered successfully. Doctor accounts require admin approval.",
		User:    user,
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := dto.Validate(&req); err != nil {
		return apperrors.NewValidationError("Please provide email and password", nil)
	}

	result, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(dto.LoginResponse{Token: result.Token, ExpiresAt: result.ExpiresAt, User: result.User})
}
