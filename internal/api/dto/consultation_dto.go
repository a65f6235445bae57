package dto

import (
	"strings"
	"time"

	"github.com/medconsult/consultation-service/internal/domain"
)

// dateOnly is accepted alongside RFC 3339 for booking dates.
const dateOnly = "2006-01-02"

// BookConsultationRequest payload for POST /api/patient/consultations.
type BookConsultationRequest struct {
	Doctor string `json:"doctor" validate:"required"`
	Date   string `json:"date" validate:"required"`
	Reason string `json:"reason" validate:"required"`
}

// ParsedDate returns the booking date, or false when it is in neither accepted layout.
func (r BookConsultationRequest) ParsedDate() (time.Time, bool) {
	raw := strings.TrimSpace(r.Date)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse(dateOnly, raw); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}

// BookConsultationResponse is returned with 201.
type BookConsultationResponse struct {
	Message             string               `json:"message"`
	Consultation        *domain.Consultation `json:"consultation"`
	NotificationsQueued bool                 `json:"notifications_queued"`
}

// UpdateConsultationStatusRequest payload for the doctor's status change.
type UpdateConsultationStatusRequest struct {
	Status string  `json:"status" validate:"required"`
	Notes  *string `json:"notes"`
}
