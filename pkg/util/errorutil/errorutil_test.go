package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"domain error passes through", NewNotFound("consultation", nil), CodeNotFound, http.StatusNotFound},
		{"wrapped domain error", fmt.Errorf("load: %w", NewDuplicateEmail()), CodeDuplicateEmail, http.StatusConflict},
		{"fiber error keeps status", fiber.NewError(http.StatusRequestEntityTooLarge, "too big"), "PAYLOAD_TOO_LARGE", http.StatusRequestEntityTooLarge},
		{"fiber not found", fiber.ErrNotFound, CodeNotFound, http.StatusNotFound},
		{"unknown error is internal", errors.New("db down"), CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			de := ToDomainError(tt.err)
			require.NotNil(t, de)
			assert.Equal(t, tt.code, de.Code)
			assert.Equal(t, tt.status, de.HTTPStatus)
		})
	}

	assert.Nil(t, ToDomainError(nil))
}

func TestInternalErrorHidesCause(t *testing.T) {
	de := ToDomainError(errors.New("password=hunter2 connection refused"))
	assert.Equal(t, "internal server error", de.Message)
	assert.ErrorContains(t, de, "connection refused")
}

func TestIs(t *testing.T) {
	assert.True(t, Is(NewInvalidEnum("status", "done"), CodeInvalidEnum))
	assert.False(t, Is(NewForbidden("nope"), CodeInvalidEnum))
	assert.False(t, Is(errors.New("plain"), CodeInvalidEnum))
}
