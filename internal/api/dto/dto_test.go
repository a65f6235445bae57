package dto

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/medconsult/consultation-service/pkg/util/errorutil"
)

func TestValidateRegister(t *testing.T) {
	req := &RegisterRequest{Name: "  ", Email: "a@x.com", Password: "pw"}
	err := Validate(req)

	var de *apperrors.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, http.StatusBadRequest, de.HTTPStatus)
	assert.Equal(t, "Please provide all required fields", de.Message)
	assert.Contains(t, de.Details, "name")

	req = &RegisterRequest{Name: "Ann", Email: "not-an-email", Password: "pw"}
	err = Validate(req)
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "email must be a valid email address", de.Message)

	req = &RegisterRequest{Name: " Ann ", Email: " a@x.com ", Password: "pw"}
	require.NoError(t, Validate(req))
	assert.Equal(t, "Ann", req.Name)
}

func TestValidateKeepsPasswordWhitespace(t *testing.T) {
	reg := &RegisterRequest{Name: "Ann", Email: " a@x.com ", Password: "  secret  "}
	require.NoError(t, Validate(reg))
	assert.Equal(t, "a@x.com", reg.Email)
	assert.Equal(t, "  secret  ", reg.Password)

	login := &LoginRequest{Email: "a@x.com", Password: " secret"}
	require.NoError(t, Validate(login))
	assert.Equal(t, " secret", login.Password)
}

func TestBookingDateLayouts(t *testing.T) {
	for _, raw := range []string{"2026-11-02T10:30:00Z", "2026-11-02T10:30:00+02:00", "2026-11-02"} {
		_, ok := BookConsultationRequest{Date: raw}.ParsedDate()
		assert.True(t, ok, raw)
	}
	for _, raw := range []string{"", "tomorrow", "02/11/2026"} {
		_, ok := BookConsultationRequest{Date: raw}.ParsedDate()
		assert.False(t, ok, raw)
	}
	got, _ := BookConsultationRequest{Date: "2026-11-02T10:30:00+02:00"}.ParsedDate()
	assert.Equal(t, 8, got.Hour())
}
