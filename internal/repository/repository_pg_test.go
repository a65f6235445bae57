package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medconsult/consultation-service/internal/domain"
)

func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	ddl, err := os.ReadFile(filepath.Join("..", "..", "migrations", "001_init.sql"))
	require.NoError(t, err)
	_, err = pool.Exec(ctx, string(ddl))
	require.NoError(t, err)
	return pool
}

func TestPostgresRepositories(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	repos := NewPostgres(pool)
	suffix := uuid.NewString()[:8]

	patient := &domain.User{Name: "Pat", Email: "Pat-" + suffix + "@Example.com", PasswordHash: "h", Role: domain.RolePatient, Status: domain.StatusApproved}
	require.NoError(t, repos.Users.Create(ctx, patient))
	doctor := &domain.User{Name: "Doc", Email: "doc-" + suffix + "@example.com", PasswordHash: "h", Role: domain.RoleDoctor, Status: domain.StatusPending, Specialization: "Cardiology"}
	require.NoError(t, repos.Users.Create(ctx, doctor))

	dup := &domain.User{Name: "Dup", Email: "PAT-" + suffix + "@example.com", PasswordHash: "h", Role: domain.RolePatient, Status: domain.StatusApproved}
	assert.ErrorIs(t, repos.Users.Create(ctx, dup), ErrDuplicate)

	found, err := repos.Users.GetByEmail(ctx, "pat-"+suffix+"@example.com")
	require.NoError(t, err)
	assert.Equal(t, patient.ID, found.ID)

	_, err = repos.Users.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	c := &domain.Consultation{PatientID: patient.ID, DoctorID: doctor.ID, Date: time.Now().Add(24 * time.Hour).UTC(), Reason: "checkup"}
	require.NoError(t, repos.Consultations.Create(ctx, c))

	views, err := repos.Consultations.ListOwned(ctx, Scope{Field: OwnerDoctor, OwnerID: doctor.ID}, ConsultationFilter{})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Pat", views[0].Counterpart.Name)

	_, err = repos.Consultations.GetOwned(ctx, c.ID, Scope{Field: OwnerPatient, OwnerID: doctor.ID})
	assert.ErrorIs(t, err, ErrNotFound)

	rx := &domain.Prescription{PatientID: patient.ID, DoctorID: doctor.ID, Medication: "Ibuprofen", Dosage: "200mg"}
	require.NoError(t, repos.Prescriptions.Create(ctx, rx))
	rxViews, err := repos.Prescriptions.ListOwned(ctx, Scope{Field: OwnerPatient, OwnerID: patient.ID})
	require.NoError(t, err)
	require.Len(t, rxViews, 1)
	assert.Equal(t, "Cardiology", rxViews[0].Counterpart.Specialization)
	require.NoError(t, repos.Prescriptions.DeleteOwned(ctx, rx.ID, Scope{Field: OwnerDoctor, OwnerID: doctor.ID}))

	doc := &domain.Document{OwnerID: patient.ID, Filename: "f.pdf", OriginalName: "labs.pdf", Path: "f.pdf", MimeType: "application/pdf", Size: 3}
	require.NoError(t, repos.Documents.Create(ctx, doc))
	assert.ErrorIs(t, repos.Documents.DeleteOwned(ctx, doc.ID, UploaderScope(doctor.ID)), ErrNotFound)
	require.NoError(t, repos.Documents.DeleteOwned(ctx, doc.ID, UploaderScope(patient.ID)))
}
