package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medconsult/consultation-service/internal/domain"
	"github.com/medconsult/consultation-service/internal/repository"
)

func seedUser(t *testing.T, repos repository.Repositories, name string, role domain.Role) *domain.User {
	t.Helper()
	u := &domain.User{Name: name, Email: name + "@example.com", Role: role, Status: domain.InitialStatus(role)}
	require.NoError(t, repos.Users.Create(context.Background(), u))
	return u
}

func TestUserEmailUniqueness(t *testing.T) {
	ctx := context.Background()
	repos := New().Repositories()

	first := &domain.User{Name: "A", Email: " Alice@Example.com ", Role: domain.RolePatient}
	require.NoError(t, repos.Users.Create(ctx, first))
	assert.Equal(t, "alice@example.com", first.Email)
	assert.NotEmpty(t, first.ID)

	dup := &domain.User{Name: "B", Email: "ALICE@example.com", Role: domain.RoleDoctor}
	assert.ErrorIs(t, repos.Users.Create(ctx, dup), repository.ErrDuplicate)

	found, err := repos.Users.GetByEmail(ctx, "alice@EXAMPLE.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)

	other := seedUser(t, repos, "bob", domain.RolePatient)
	other.Email = "alice@example.com"
	assert.ErrorIs(t, repos.Users.Update(ctx, other), repository.ErrDuplicate)
}

func TestUserListFilter(t *testing.T) {
	ctx := context.Background()
	repos := New().Repositories()
	seedUser(t, repos, "p1", domain.RolePatient)
	seedUser(t, repos, "d1", domain.RoleDoctor)
	d2 := seedUser(t, repos, "d2", domain.RoleDoctor)
	d2.Status = domain.StatusApproved
	require.NoError(t, repos.Users.Update(ctx, d2))

	doctor, pending := domain.RoleDoctor, domain.StatusPending
	got, err := repos.Users.List(ctx, repository.UserFilter{Role: &doctor, Status: &pending})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "d1", got[0].Name)

	all, err := repos.Users.List(ctx, repository.UserFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestConsultationOwnershipScope(t *testing.T) {
	ctx := context.Background()
	repos := New().Repositories()
	p1 := seedUser(t, repos, "p1", domain.RolePatient)
	p2 := seedUser(t, repos, "p2", domain.RolePatient)
	d1 := seedUser(t, repos, "d1", domain.RoleDoctor)

	c := &domain.Consultation{PatientID: p1.ID, DoctorID: d1.ID, Date: time.Now().Add(time.Hour), Reason: "checkup"}
	require.NoError(t, repos.Consultations.Create(ctx, c))
	assert.Equal(t, domain.ConsultationPending, c.Status)

	p1Scope := repository.Scope{Field: repository.OwnerPatient, OwnerID: p1.ID}
	p2Scope := repository.Scope{Field: repository.OwnerPatient, OwnerID: p2.ID}
	d1Scope := repository.Scope{Field: repository.OwnerDoctor, OwnerID: d1.ID}

	_, err := repos.Consultations.GetOwned(ctx, c.ID, p1Scope)
	require.NoError(t, err)
	_, err = repos.Consultations.GetOwned(ctx, c.ID, d1Scope)
	require.NoError(t, err)
	_, err = repos.Consultations.GetOwned(ctx, c.ID, p2Scope)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = repos.Consultations.GetOwned(ctx, "not-a-uuid", p1Scope)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	views, err := repos.Consultations.ListOwned(ctx, d1Scope, repository.ConsultationFilter{})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "p1", views[0].Counterpart.Name)

	views, err = repos.Consultations.ListOwned(ctx, p1Scope, repository.ConsultationFilter{})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "d1", views[0].Counterpart.Name)

	views, err = repos.Consultations.ListOwned(ctx, p2Scope, repository.ConsultationFilter{})
	require.NoError(t, err)
	assert.Empty(t, views)

	confirmed := domain.ConsultationConfirmed
	views, err = repos.Consultations.ListOwned(ctx, d1Scope, repository.ConsultationFilter{Status: &confirmed})
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestScopeRejectsEmptyOrForeignAxis(t *testing.T) {
	ctx := context.Background()
	repos := New().Repositories()

	_, err := repos.Consultations.ListOwned(ctx, repository.Scope{Field: repository.OwnerPatient}, repository.ConsultationFilter{})
	assert.ErrorIs(t, err, repository.ErrInvalidScope)

	_, err = repos.Documents.ListOwned(ctx, repository.Scope{Field: repository.OwnerPatient, OwnerID: uuid.NewString()})
	assert.ErrorIs(t, err, repository.ErrInvalidScope)

	_, err = repos.Prescriptions.ListOwned(ctx, repository.UploaderScope(uuid.NewString()))
	assert.ErrorIs(t, err, repository.ErrInvalidScope)
}

func TestPrescriptionDeleteOwned(t *testing.T) {
	ctx := context.Background()
	repos := New().Repositories()
	p1 := seedUser(t, repos, "p1", domain.RolePatient)
	d1 := seedUser(t, repos, "d1", domain.RoleDoctor)
	d2 := seedUser(t, repos, "d2", domain.RoleDoctor)

	rx := &domain.Prescription{PatientID: p1.ID, DoctorID: d1.ID, Medication: "Amoxicillin", Dosage: "500mg"}
	require.NoError(t, repos.Prescriptions.Create(ctx, rx))

	err := repos.Prescriptions.DeleteOwned(ctx, rx.ID, repository.Scope{Field: repository.OwnerDoctor, OwnerID: d2.ID})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, repos.Prescriptions.DeleteOwned(ctx, rx.ID, repository.Scope{Field: repository.OwnerDoctor, OwnerID: d1.ID}))
	_, err = repos.Prescriptions.GetOwned(ctx, rx.ID, repository.Scope{Field: repository.OwnerPatient, OwnerID: p1.ID})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDocumentsScopedToUploader(t *testing.T) {
	ctx := context.Background()
	repos := New().Repositories()
	a := seedUser(t, repos, "a", domain.RolePatient)
	b := seedUser(t, repos, "b", domain.RolePatient)

	doc := &domain.Document{OwnerID: a.ID, Filename: "x.pdf", OriginalName: "labs.pdf", MimeType: "application/pdf", Size: 10}
	require.NoError(t, repos.Documents.Create(ctx, doc))

	_, err := repos.Documents.GetOwned(ctx, doc.ID, repository.UploaderScope(b.ID))
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, repos.Documents.DeleteOwned(ctx, doc.ID, repository.UploaderScope(b.ID)), repository.ErrNotFound)

	docs, err := repos.Documents.ListOwned(ctx, repository.UploaderScope(a.ID))
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}
