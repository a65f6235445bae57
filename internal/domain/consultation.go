package domain

import (
	"strings"
	"time"
)

// ConsultationStatus enumerates lifecycle states for consultations.
type ConsultationStatus string

const (
	ConsultationPending   ConsultationStatus = "pending"
	ConsultationConfirmed ConsultationStatus = "confirmed"
	ConsultationCompleted ConsultationStatus = "completed"
	ConsultationCancelled ConsultationStatus = "cancelled"
)

// ParseConsultationStatus maps a wire value to a ConsultationStatus.
func ParseConsultationStatus(v string) (ConsultationStatus, error) {
	switch s := ConsultationStatus(strings.TrimSpace(v)); s {
	case ConsultationPending, ConsultationConfirmed, ConsultationCompleted, ConsultationCancelled:
		return s, nil
	default:
		return "", &ErrInvalidEnum{Field: "status", Value: v}
	}
}

// Consultation is an appointment booked by a patient with a doctor.
type Consultation struct {
	ID        string             `json:"id"`
	PatientID string             `json:"patient"`
	DoctorID  string             `json:"doctor"`
	Date      time.Time          `json:"date"`
	Reason    string             `json:"reason"`
	Status    ConsultationStatus `json:"status"`
	Notes     string             `json:"notes,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// ConsultationView is a consultation with the other party's public profile attached.
type ConsultationView struct {
	Consultation
	Counterpart UserSummary `json:"counterpart"`
}
