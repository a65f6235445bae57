package memory

import (
	"context"
	"time"

	"github.com/medconsult/consultation-service/internal/domain"
	"github.com/medconsult/consultation-service/internal/repository"
)

type documentRepo struct{ s *Store }

func documentOwners(d domain.Document) map[repository.OwnerField]string {
	return map[repository.OwnerField]string{repository.OwnerUploader: d.OwnerID}
}

func (r *documentRepo) Create(_ context.Context, doc *domain.Document) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	doc.ID = newID(doc.ID)
	doc.UploadedAt = r.s.now()
	r.s.documents[doc.ID] = *doc
	return nil
}

func (r *documentRepo) GetOwned(_ context.Context, id string, scope repository.Scope) (*domain.Document, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	doc, ok := r.s.documents[id]
	match, err := ownerMatches(scope, documentOwners(doc))
	if err != nil {
		return nil, err
	}
	if !ok || !match {
		return nil, repository.ErrNotFound
	}
	return &doc, nil
}

func (r *documentRepo) DeleteOwned(_ context.Context, id string, scope repository.Scope) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	doc, ok := r.s.documents[id]
	match, err := ownerMatches(scope, documentOwners(doc))
	if err != nil {
		return err
	}
	if !ok || !match {
		return repository.ErrNotFound
	}
	delete(r.s.documents, id)
	return nil
}

func (r *documentRepo) ListOwned(_ context.Context, scope repository.Scope) ([]domain.Document, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if err := scope.Validate(repository.OwnerUploader); err != nil {
		return nil, err
	}
	result := []domain.Document{}
	for _, doc := range r.s.documents {
		if doc.OwnerID == scope.OwnerID {
			result = append(result, doc)
		}
	}
	sortByTimeDesc(result, func(d domain.Document) time.Time { return d.UploadedAt })
	return result, nil
}
