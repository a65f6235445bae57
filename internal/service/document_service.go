package service

import (
	"context"
	"errors"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/medconsult/consultation-service/internal/domain"
	"github.com/medconsult/consultation-service/internal/repository"
	"github.com/medconsult/consultation-service/internal/storage"
	apperrors "github.com/medconsult/consultation-service/pkg/util/errorutil"
)

// DocumentService stores uploads and their metadata, scoped to the uploader.
type DocumentService struct {
	documents repository.DocumentRepository
	files     storage.FileStore
	logger    *zap.Logger
}

// NewDocumentService builds the service.
func NewDocumentService(documents repository.DocumentRepository, files storage.FileStore, logger *zap.Logger) *DocumentService {
	return &DocumentService{documents: documents, files: files, logger: logger.With(zap.String("component", "document_service"))}
}

// Upload saves the file and records it for owner.
func (s *DocumentService) Upload(ctx context.Context, owner domain.Identity, upload Upload, description string) (*domain.Document, error) {
	if upload.Reader == nil {
		return nil, apperrors.NewValidationError("No file uploaded", nil)
	}
	mimeType := upload.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	key := storage.NewKey(storage.PrefixDocuments, upload.OriginalName)
	if err := s.files.Save(ctx, key, upload.Reader, upload.Size, mimeType); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	doc := &domain.Document{
		OwnerID:      owner.ID,
		Filename:     strings.TrimPrefix(key, storage.PrefixDocuments+"/"),
		OriginalName: upload.OriginalName,
		Path:         key,
		MimeType:     mimeType,
		Size:         upload.Size,
		Description:  strings.TrimSpace(description),
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		_ = s.files.Delete(ctx, key)
		return nil, mapRepoError(err, "Document")
	}
	return doc, nil
}

// List returns the caller's documents, newest first.
func (s *DocumentService) List(ctx context.Context, owner domain.Identity) ([]domain.Document, error) {
	docs, err := s.documents.ListOwned(ctx, repository.UploaderScope(owner.ID))
	if err != nil {
		return nil, mapRepoError(err, "Document")
	}
	return docs, nil
}

// Open returns the caller's document metadata and a reader over its content. The caller closes the reader.
func (s *DocumentService) Open(ctx context.Context, owner domain.Identity, id string) (*domain.Document, io.ReadCloser, error) {
	doc, err := s.documents.GetOwned(ctx, id, repository.UploaderScope(owner.ID))
	if err != nil {
		return nil, nil, mapRepoError(err, "Document")
	}
	rc, err := s.files.Open(ctx, doc.Path)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, apperrors.NewNotFound("Document", nil)
	}
	if err != nil {
		return nil, nil, apperrors.NewInternalError(err)
	}
	return doc, rc, nil
}

// Delete removes the record, then the stored file. A file that cannot be removed is only logged.
func (s *DocumentService) Delete(ctx context.Context, owner domain.Identity, id string) error {
	scope := repository.UploaderScope(owner.ID)
	doc, err := s.documents.GetOwned(ctx, id, scope)
	if err != nil {
		return mapRepoError(err, "Document")
	}
	if err := s.documents.DeleteOwned(ctx, id, scope); err != nil {
		return mapRepoError(err, "Document")
	}
	if err := s.files.Delete(ctx, doc.Path); err != nil {
		s.logger.Warn("remove stored document", zap.String("path", doc.Path), zap.Error(err))
	}
	return nil
}
