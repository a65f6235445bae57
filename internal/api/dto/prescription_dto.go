package dto

// CreatePrescriptionRequest payload for POST /api/doctor/prescriptions.
type CreatePrescriptionRequest struct {
	Patient      string `json:"patient" validate:"required"`
	Medication   string `json:"medication" validate:"required"`
	Dosage       string `json:"dosage" validate:"required"`
	Instructions string `json:"instructions"`
}

// UpdatePrescriptionRequest payload for PATCH /api/doctor/prescriptions/:id.
type UpdatePrescriptionRequest struct {
	Medication   *string `json:"medication"`
	Dosage       *string `json:"dosage"`
	Instructions *string `json:"instructions"`
}
