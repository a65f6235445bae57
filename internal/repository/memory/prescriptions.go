package memory

import (
	"context"
	"time"

	"github.com/medconsult/consultation-service/internal/domain"
	"github.com/medconsult/consultation-service/internal/repository"
)

type prescriptionRepo struct{ s *Store }

func prescriptionOwners(p domain.Prescription) map[repository.OwnerField]string {
	return map[repository.OwnerField]string{
		repository.OwnerPatient: p.PatientID,
		repository.OwnerDoctor:  p.DoctorID,
	}
}

func (r *prescriptionRepo) Create(_ context.Context, p *domain.Prescription) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p.ID = newID(p.ID)
	p.IssuedAt = r.s.now()
	p.UpdatedAt = p.IssuedAt
	r.s.prescriptions[p.ID] = *p
	return nil
}

func (r *prescriptionRepo) Update(_ context.Context, p *domain.Prescription) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.prescriptions[p.ID]
	if !ok {
		return repository.ErrNotFound
	}
	existing.Medication = p.Medication
	existing.Dosage = p.Dosage
	existing.Instructions = p.Instructions
	existing.UpdatedAt = r.s.now()
	r.s.prescriptions[p.ID] = existing
	*p = existing
	return nil
}

func (r *prescriptionRepo) GetOwned(_ context.Context, id string, scope repository.Scope) (*domain.Prescription, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.prescriptions[id]
	match, err := ownerMatches(scope, prescriptionOwners(p))
	if err != nil {
		return nil, err
	}
	if !ok || !validID(id) || !match {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *prescriptionRepo) DeleteOwned(_ context.Context, id string, scope repository.Scope) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.prescriptions[id]
	match, err := ownerMatches(scope, prescriptionOwners(p))
	if err != nil {
		return err
	}
	if !ok || !match {
		return repository.ErrNotFound
	}
	delete(r.s.prescriptions, id)
	return nil
}

func (r *prescriptionRepo) ListOwned(_ context.Context, scope repository.Scope) ([]domain.PrescriptionView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if err := scope.Validate(repository.OwnerPatient, repository.OwnerDoctor); err != nil {
		return nil, err
	}
	result := []domain.PrescriptionView{}
	for _, p := range r.s.prescriptions {
		if match, _ := ownerMatches(scope, prescriptionOwners(p)); !match {
			continue
		}
		counterpart := p.DoctorID
		if scope.Field == repository.OwnerDoctor {
			counterpart = p.PatientID
		}
		result = append(result, domain.PrescriptionView{Prescription: p, Counterpart: r.s.summary(counterpart)})
	}
	sortByTimeDesc(result, func(v domain.PrescriptionView) time.Time { return v.IssuedAt })
	return result, nil
}
