package memory

import (
	"context"
	"time"

	"github.com/medconsult/consultation-service/internal/domain"
	"github.com/medconsult/consultation-service/internal/repository"
)

type consultationRepo struct{ s *Store }

func consultationOwners(c domain.Consultation) map[repository.OwnerField]string {
	return map[repository.OwnerField]string{
		repository.OwnerPatient: c.PatientID,
		repository.OwnerDoctor:  c.DoctorID,
	}
}

func (r *consultationRepo) Create(_ context.Context, c *domain.Consultation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c.ID = newID(c.ID)
	if c.Status == "" {
		c.Status = domain.ConsultationPending
	}
	c.CreatedAt = r.s.now()
	c.UpdatedAt = c.CreatedAt
	r.s.consultations[c.ID] = *c
	return nil
}

func (r *consultationRepo) Update(_ context.Context, c *domain.Consultation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.consultations[c.ID]
	if !ok {
		return repository.ErrNotFound
	}
	existing.Date = c.Date
	existing.Reason = c.Reason
	existing.Status = c.Status
	existing.Notes = c.Notes
	existing.UpdatedAt = r.s.now()
	r.s.consultations[c.ID] = existing
	*c = existing
	return nil
}

func (r *consultationRepo) GetOwned(_ context.Context, id string, scope repository.Scope) (*domain.Consultation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.consultations[id]
	match, err := ownerMatches(scope, consultationOwners(c))
	if err != nil {
		return nil, err
	}
	if !ok || !validID(id) || !match {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r *consultationRepo) ListOwned(_ context.Context, scope repository.Scope, filter repository.ConsultationFilter) ([]domain.ConsultationView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if err := scope.Validate(repository.OwnerPatient, repository.OwnerDoctor); err != nil {
		return nil, err
	}
	result := []domain.ConsultationView{}
	for _, c := range r.s.consultations {
		if match, _ := ownerMatches(scope, consultationOwners(c)); !match {
			continue
		}
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		counterpart := c.DoctorID
		if scope.Field == repository.OwnerDoctor {
			counterpart = c.PatientID
		}
		result = append(result, domain.ConsultationView{Consultation: c, Counterpart: r.s.summary(counterpart)})
	}
	sortByTimeDesc(result, func(v domain.ConsultationView) time.Time { return v.Date })
	return result, nil
}
