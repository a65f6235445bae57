package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPrescription(t *testing.T) {
	var buf bytes.Buffer
	err := RenderPrescription(&buf, PrescriptionSheet{
		ID:           "rx-1",
		PatientName:  "José Álvarez",
		DoctorName:   "Grey",
		Medication:   "Amoxicillin",
		Dosage:       "500mg three times daily",
		Instructions: "Take with food",
		IssuedAt:     time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
	assert.Greater(t, buf.Len(), 500)
}
