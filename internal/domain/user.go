package domain

import (
	"strings"
	"time"
)

// ApprovalStatus tracks doctor account approval. Patients and admins are approved on registration.
type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "pending"
	StatusApproved ApprovalStatus = "approved"
	StatusRejected ApprovalStatus = "rejected"
)

// ParseApprovalStatus maps a wire value to an ApprovalStatus.
func ParseApprovalStatus(v string) (ApprovalStatus, error) {
	switch s := ApprovalStatus(strings.TrimSpace(v)); s {
	case StatusPending, StatusApproved, StatusRejected:
		return s, nil
	default:
		return "", &ErrInvalidEnum{Field: "status", Value: v}
	}
}

// InitialStatus returns the status a freshly registered account starts in.
func InitialStatus(role Role) ApprovalStatus {
	if role == RoleDoctor {
		return StatusPending
	}
	return StatusApproved
}

// User is an account of any role.
type User struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Email          string         `json:"email"`
	PasswordHash   string         `json:"-"`
	Role           Role           `json:"role"`
	Status         ApprovalStatus `json:"status"`
	Specialization string         `json:"specialization,omitempty"`
	ProfilePicURL  string         `json:"profilePicUrl,omitempty"`
	About          string         `json:"about,omitempty"`
	ContactNumber  string         `json:"contactNumber,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// Identity projects the token-facing fields.
func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Role: u.Role, Name: u.Name, Email: u.Email}
}

// CanLogin reports whether the account passed approval. Only doctors can be unapproved.
func (u *User) CanLogin() bool {
	return u.Role != RoleDoctor || u.Status == StatusApproved
}

// UserSummary is the public slice of a user embedded in listings of related records.
type UserSummary struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email,omitempty"`
	ContactNumber  string `json:"contactNumber,omitempty"`
	ProfilePicURL  string `json:"profilePicUrl,omitempty"`
	Specialization string `json:"specialization,omitempty"`
}

// Summary returns the public slice of u.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		ContactNumber:  u.ContactNumber,
		ProfilePicURL:  u.ProfilePicURL,
		Specialization: u.Specialization,
	}
}

// NormalizeEmail lowercases and trims an address before storage or lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
