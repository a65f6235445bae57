package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, v := range []string{"patient", "doctor", "admin", " doctor "} {
		r, err := ParseRole(v)
		require.NoError(t, err, v)
		assert.True(t, r.Valid())
	}
	for _, v := range []string{"", "Admin", "nurse", "superuser"} {
		_, err := ParseRole(v)
		var enumErr *ErrInvalidEnum
		require.True(t, errors.As(err, &enumErr), v)
		assert.Equal(t, "role", enumErr.Field)
	}
	assert.False(t, Role("root").Valid())
}

func TestParseConsultationStatus(t *testing.T) {
	tests := []struct {
		in   string
		want ConsultationStatus
		ok   bool
	}{
		{"pending", ConsultationPending, true},
		{"confirmed", ConsultationConfirmed, true},
		{"completed", ConsultationCompleted, true},
		{"cancelled", ConsultationCancelled, true},
		{"canceled", "", false},
		{"done", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseConsultationStatus(tt.in)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseApprovalStatus(t *testing.T) {
	s, err := ParseApprovalStatus("rejected")
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, s)

	_, err = ParseApprovalStatus("approve")
	assert.Error(t, err)
}

func TestInitialStatusAndCanLogin(t *testing.T) {
	assert.Equal(t, StatusPending, InitialStatus(RoleDoctor))
	assert.Equal(t, StatusApproved, InitialStatus(RolePatient))
	assert.Equal(t, StatusApproved, InitialStatus(RoleAdmin))

	doctor := &User{Role: RoleDoctor, Status: StatusPending}
	assert.False(t, doctor.CanLogin())
	doctor.Status = StatusRejected
	assert.False(t, doctor.CanLogin())
	doctor.Status = StatusApproved
	assert.True(t, doctor.CanLogin())

	patient := &User{Role: RolePatient, Status: StatusPending}
	assert.True(t, patient.CanLogin())
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@x.com", NormalizeEmail("  A@X.com "))
}
