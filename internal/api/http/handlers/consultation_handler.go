package handlers

import (
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/medconsult/consultation-service/internal/api/dto"
	"github.com/medconsult/consultation-service/internal/service"
	apperrors "github.com/medconsult/consultation-service/pkg/util/errorutil"
)

// ConsultationHandler serves booking for patients and the lifecycle for doctors.
type ConsultationHandler struct {
	consultations *service.ConsultationService
}

// NewConsultationHandler constructs handler.
func NewConsultationHandler(consultations *service.ConsultationService) *ConsultationHandler {
	return &ConsultationHandler{consultations: consultations}
}

// Doctors handles GET /api/patient/doctors.
func (h *ConsultationHandler) Doctors(c *fiber.Ctx) error {
	doctors, err := h.consultations.AvailableDoctors(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(doctors)
}

// Book handles POST /api/patient/consultations.
func (h *ConsultationHandler) Book(c *fiber.Ctx) error {
	me, err := caller(c)
	if err != nil {
		return err
	}
	var req dto.BookConsultationRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := dto.Validate(&req); err != nil {
		return apperrors.NewValidationError("Please provide doctor, date, and reason", nil)
	}
	date, ok := req.ParsedDate()
	if !ok {
		return apperrors.NewValidationError("date must be RFC 3339 or YYYY-MM-DD", map[string]any{"date": req.Date})
	}

	result, err := h.consultations.Book(c.UserContext(), me, service.BookInput{
		DoctorID: req.Doctor,
		Date:     date,
		Reason:   req.Reason,
	})
	if err != nil {
		return err
	}

	message := "Consultation booked and emails sent"
	if !result.NotificationsQueued {
		message = "Consultation booked; email notifications could not be queued"
	}
	return c.Status(http.StatusCreated).JSON(dto.BookConsultationResponse{
		Message:             message,
		Consultation:        result.Consultation,
		NotificationsQueued: result.NotificationsQueued,
	})
}

// List handles GET /api/{doctor,patient}/consultations?status=.
func (h *ConsultationHandler) List(c *fiber.Ctx) error {
	me, err := caller(c)
	if err != nil {
		return err
	}
	views, err := h.consultations.List(c.UserContext(), me, c.Query("status"))
	if err != nil {
		return err
	}
	return c.JSON(views)
}

// UpdateStatus handles PATCH /api/doctor/consultations/:id/status.
func (h *ConsultationHandler) UpdateStatus(c *fiber.Ctx) error {
	me, err := caller(c)
	if err != nil {
		return err
	}
	var req dto.UpdateConsultationStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}

	consultation, err := h.consultations.UpdateStatus(c.UserContext(), me, c.Params("id"), req.Status, req.Notes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message":      fmt.Sprintf("Consultation status updated to %s", consultation.Status),
		"consultation": consultation,
	})
}
