package domain

import (
	"fmt"
	"strings"
)

// Role is the closed set of account roles.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

// ErrInvalidEnum is returned by the Parse* helpers for values outside their set.
type ErrInvalidEnum struct {
	Field string
	Value string
}

func (e *ErrInvalidEnum) Error() string {
	return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
}

// ParseRole maps a wire value to a Role.
func ParseRole(v string) (Role, error) {
	switch r := Role(strings.TrimSpace(v)); r {
	case RolePatient, RoleDoctor, RoleAdmin:
		return r, nil
	default:
		return "", &ErrInvalidEnum{Field: "role", Value: v}
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// Identity is the caller reconstructed from a session token. It is never persisted.
type Identity struct {
	ID    string `json:"id"`
	Role  Role   `json:"role"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
