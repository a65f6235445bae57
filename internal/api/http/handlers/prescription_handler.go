package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/medconsult/consultation-service/internal/api/dto"
	"github.com/medconsult/consultation-service/internal/service"
	apperrors "github.com/medconsult/consultation-service/pkg/util/errorutil"
)

// PrescriptionHandler serves prescription CRUD for doctors and listing and download for patients.
type PrescriptionHandler struct {
	prescriptions *service.PrescriptionService
}

// NewPrescriptionHandler constructs handler.
func NewPrescriptionHandler(prescriptions *service.PrescriptionService) *PrescriptionHandler {
	return &PrescriptionHandler{prescriptions: prescriptions}
}

// Create handles POST /api/doctor/prescriptions.
func (h *PrescriptionHandler) Create(c *fiber.Ctx) error {
	me, err := caller(c)
	if err != nil {
		return err
	}
	var req dto.CreatePrescriptionRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := dto.Validate(&req); err != nil {
		return apperrors.NewValidationError("Please provide patient, medication, and dosage", nil)
	}

	prescription, err := h.prescriptions.Create(c.UserContext(), me, service.CreatePrescriptionInput{
		PatientID:    req.Patient,
		Medication:   req.Medication,
		Dosage:       req.Dosage,
		Instructions: req.Instructions,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"message": "Prescription created", "prescription": prescription})
}

// List handles GET /api/{doctor,patient}/prescriptions.
func (h *PrescriptionHandler) List(c *fiber.Ctx) error {
	me, err := caller(c)
	if err != nil {
		return err
	}
	views, err := h.prescriptions.List(c.UserContext(), me)
	if err != nil {
		return err
	}
	return c.JSON(views)
}

// Update handles PATCH /api/doctor/prescriptions/:id.
func (h *PrescriptionHandler) Update(c *fiber.Ctx) error {
	me, err := caller(c)
	if err != nil {
		return err
	}
	var req dto.UpdatePrescriptionRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	prescription, err := h.prescriptions.Update(c.UserContext(), me, c.Params("id"), service.PrescriptionPatch{
		Medication:   req.Medication,
		Dosage:       req.Dosage,
		Instructions: req.Instructions,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Prescription updated", "prescription": prescription})
}

// Delete handles DELETE /api/doctor/prescriptions/:id.
func (h *PrescriptionHandler) Delete(c *fiber.Ctx) error {
	me, err := caller(c)
	if err != nil {
		return err
	}
	if err := h.prescriptions.Delete(c.UserContext(), me, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Prescription deleted"})
}

// Download handles GET /api/patient/prescriptions/:id/download.
func (h *PrescriptionHandler) Download(c *fiber.Ctx) error {
	me, err := caller(c)
	if err != nil {
		return err
	}
	id := c.Params("id")

	var buf bytes.Buffer
	if err := h.prescriptions.WritePDF(c.UserContext(), me, id, &buf); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=prescription_%s.pdf", id))
	return c.Send(buf.Bytes())
}
