package service

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/medconsult/consultation-service/internal/domain"
	"github.com/medconsult/consultation-service/internal/pdf"
	"github.com/medconsult/consultation-service/internal/repository"
	apperrors "github.com/medconsult/consultation-service/pkg/util/errorutil"
)

// CreatePrescriptionInput is a doctor's new prescription.
type CreatePrescriptionInput struct {
	PatientID    string
	Medication   string
	Dosage       string
	Instructions string
}

// PrescriptionPatch lists the fields a doctor may change. Nil or blank fields are left untouched.
type PrescriptionPatch struct {
	Medication   *string
	Dosage       *string
	Instructions *string
}

// PrescriptionService manages prescriptions and renders them for download.
type PrescriptionService struct {
	prescriptions repository.PrescriptionRepository
	users         repository.UserRepository
}

// NewPrescriptionService builds the service.
func NewPrescriptionService(prescriptions repository.PrescriptionRepository, users repository.UserRepository) *PrescriptionService {
	return &PrescriptionService{prescriptions: prescriptions, users: users}
}

// Create issues a prescription from the calling doctor to an existing patient.
func (s *PrescriptionService) Create(ctx context.Context, doctor domain.Identity, in CreatePrescriptionInput) (*domain.Prescription, error) {
	medication, dosage := strings.TrimSpace(in.Medication), strings.TrimSpace(in.Dosage)
	if in.PatientID == "" || medication == "" || dosage == "" {
		return nil, apperrors.NewValidationError("Please provide patient, medication, and dosage", nil)
	}

	patient, err := s.users.GetByID(ctx, in.PatientID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewInternalError(err)
	}
	if err != nil || patient.Role != domain.RolePatient {
		return nil, apperrors.NewNotFound("Patient", nil)
	}

	prescription := &domain.Prescription{
		PatientID:    patient.ID,
		DoctorID:     doctor.ID,
		Medication:   medication,
		Dosage:       dosage,
		Instructions: strings.TrimSpace(in.Instructions),
	}
	if err := s.prescriptions.Create(ctx, prescription); err != nil {
		return nil, mapRepoError(err, "Prescription")
	}
	return prescription, nil
}

// List returns the caller's prescriptions with the other party attached.
func (s *PrescriptionService) List(ctx context.Context, caller domain.Identity) ([]domain.PrescriptionView, error) {
	scope, err := repository.ScopeFor(caller)
	if err != nil {
		return nil, mapRepoError(err, "Prescription")
	}
	views, err := s.prescriptions.ListOwned(ctx, scope)
	if err != nil {
		return nil, mapRepoError(err, "Prescription")
	}
	return views, nil
}

// Update patches a prescription issued by the calling doctor.
func (s *PrescriptionService) Update(ctx context.Context, doctor domain.Identity, id string, patch PrescriptionPatch) (*domain.Prescription, error) {
	scope, err := repository.ScopeFor(doctor)
	if err != nil {
		return nil, mapRepoError(err, "Prescription")
	}
	prescription, err := s.prescriptions.GetOwned(ctx, id, scope)
	if err != nil {
		return nil, mapRepoError(err, "Prescription")
	}

	if v, ok := nonBlank(patch.Medication); ok {
		prescription.Medication = v
	}
	if v, ok := nonBlank(patch.Dosage); ok {
		prescription.Dosage = v
	}
	if v, ok := nonBlank(patch.Instructions); ok {
		prescription.Instructions = v
	}
	if err := s.prescriptions.Update(ctx, prescription); err != nil {
		return nil, mapRepoError(err, "Prescription")
	}
	return prescription, nil
}

// Delete removes a prescription issued by the calling doctor.
func (s *PrescriptionService) Delete(ctx context.Context, doctor domain.Identity, id string) error {
	scope, err := repository.ScopeFor(doctor)
	if err != nil {
		return mapRepoError(err, "Prescription")
	}
	return mapRepoError(s.prescriptions.DeleteOwned(ctx, id, scope), "Prescription")
}

// WritePDF renders one of the calling patient's prescriptions to w.
func (s *PrescriptionService) WritePDF(ctx context.Context, patient domain.Identity, id string, w io.Writer) error {
	scope, err := repository.ScopeFor(patient)
	if err != nil {
		return mapRepoError(err, "Prescription")
	}
	prescription, err := s.prescriptions.GetOwned(ctx, id, scope)
	if err != nil {
		return mapRepoError(err, "Prescription")
	}

	sheet := pdf.PrescriptionSheet{
		ID:           prescription.ID,
		PatientName:  patient.Name,
		Medication:   prescription.Medication,
		Dosage:       prescription.Dosage,
		Instructions: prescription.Instructions,
		IssuedAt:     prescription.IssuedAt,
	}
	if p, err := s.users.GetByID(ctx, prescription.PatientID); err == nil {
		sheet.PatientName = p.Name
	}
	if d, err := s.users.GetByID(ctx, prescription.DoctorID); err == nil {
		sheet.DoctorName = d.Name
		sheet.Specialization = d.Specialization
	}

	if err := pdf.RenderPrescription(w, sheet); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

func nonBlank(v *string) (string, bool) {
	if v == nil {
		return "", false
	}
	s := strings.TrimSpace(*v)
	return s, s != ""
}
