// Package memory provides in-process implementations of the repository interfaces.
// It backs local development without POSTGRES_DSN and the service and handler tests.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/medconsult/consultation-service/internal/domain"
	"github.com/medconsult/consultation-service/internal/repository"
)

// Store holds every collection behind one lock so joined views stay consistent.
type Store struct {
	mu            sync.RWMutex
	now           func() time.Time
	users         map[string]domain.User
	consultations map[string]domain.Consultation
	prescriptions map[string]domain.Prescription
	documents     map[string]domain.Document
}

// New returns an empty store.
func New() *Store {
	return &Store{
		now:           func() time.Time { return time.Now().UTC() },
		users:         map[string]domain.User{},
		consultations: map[string]domain.Consultation{},
		prescriptions: map[string]domain.Prescription{},
		documents:     map[string]domain.Document{},
	}
}

// Repositories exposes the store through the repository interfaces.
func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		Users:         &userRepo{s},
		Consultations: &consultationRepo{s},
		Prescriptions: &prescriptionRepo{s},
		Documents:     &documentRepo{s},
	}
}

// ownerMatches applies a scope to a record with the given patient/doctor/uploader ids.
func ownerMatches(scope repository.Scope, allowed map[repository.OwnerField]string) (bool, error) {
	fields := make([]repository.OwnerField, 0, len(allowed))
	for f := range allowed {
		fields = append(fields, f)
	}
	if err := scope.Validate(fields...); err != nil {
		return false, err
	}
	return allowed[scope.Field] == scope.OwnerID, nil
}

func newID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (s *Store) summary(id string) domain.UserSummary {
	u, ok := s.users[id]
	if !ok {
		return domain.UserSummary{ID: id}
	}
	return u.Summary()
}

func sortByTimeDesc[T any](items []T, at func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool { return at(items[i]).After(at(items[j])) })
}
