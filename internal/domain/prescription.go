package domain

import "time"

// Prescription is issued by a doctor to a patient.
type Prescription struct {
	ID           string    `json:"id"`
	PatientID    string    `json:"patient"`
	DoctorID     string    `json:"doctor"`
	Medication   string    `json:"medication"`
	Dosage       string    `json:"dosage"`
	Instructions string    `json:"instructions,omitempty"`
	IssuedAt     time.Time `json:"issuedAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PrescriptionView is a prescription with the other party's public profile attached.
type PrescriptionView struct {
	Prescription
	Counterpart UserSummary `json:"counterpart"`
}
