package events

import (
	"time"

	"github.com/medconsult/consultation-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventConsultationBooked        EventType = "consultation_booked"
	EventConsultationStatusChanged EventType = "consultation_status_changed"
	EventDoctorDecided             EventType = "doctor_decided"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	Actor     domain.Identity `json:"actor"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   any             `json:"payload"`
}

// ConsultationBookedPayload payload.
type ConsultationBookedPayload struct {
	Consultation domain.Consultation `json:"consultation"`
}

// ConsultationStatusChangedPayload payload.
type ConsultationStatusChangedPayload struct {
	Consultation domain.Consultation       `json:"consultation"`
	OldStatus    domain.ConsultationStatus `json:"old_status"`
}

// DoctorDecidedPayload payload.
type DoctorDecidedPayload struct {
	DoctorID string                `json:"doctor_id"`
	Status   domain.ApprovalStatus `json:"status"`
}
