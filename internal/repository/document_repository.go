package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medconsult/consultation-service/internal/domain"
)

// DocumentRepository persists upload metadata. Documents are scoped to their uploader only.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetOwned(ctx context.Context, id string, scope Scope) (*domain.Document, error)
	DeleteOwned(ctx context.Context, id string, scope Scope) error
	ListOwned(ctx context.Context, scope Scope) ([]domain.Document, error)
}

type documentRepository struct {
	pool *pgxpool.Pool
}

// NewDocumentRepository instantiates repository.
func NewDocumentRepository(pool *pgxpool.Pool) DocumentRepository {
	return &documentRepository{pool: pool}
}

const documentColumns = `id, owner_id, filename, original_name, path, mime_type, size_bytes, description, uploaded_at`

func (r *documentRepository) Create(ctx context.Context, doc *domain.Document) error {
	const query = `
        INSERT INTO documents (id, owner_id, filename, original_name, path, mime_type, size_bytes, description)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING uploaded_at`

	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	err := r.pool.QueryRow(ctx, query,
		doc.ID,
		doc.OwnerID,
		doc.Filename,
		doc.OriginalName,
		doc.Path,
		doc.MimeType,
		doc.Size,
		doc.Description,
	).Scan(&doc.UploadedAt)
	return translateError(err)
}

func (r *documentRepository) GetOwned(ctx context.Context, id string, scope Scope) (*domain.Document, error) {
	col, err := scope.column(documentOwners)
	if err != nil {
		return nil, err
	}
	if !validID(id) {
		return nil, ErrNotFound
	}

	query := fmt.Sprintf(`SELECT %s FROM documents WHERE id=$1 AND %s=$2`, documentColumns, col)
	var doc domain.Document
	if err := r.pool.QueryRow(ctx, query, id, scope.OwnerID).Scan(documentDest(&doc)...); err != nil {
		return nil, translateError(err)
	}
	return &doc, nil
}

func (r *documentRepository) DeleteOwned(ctx context.Context, id string, scope Scope) error {
	col, err := scope.column(documentOwners)
	if err != nil {
		return err
	}
	if !validID(id) {
		return ErrNotFound
	}

	cmd, err := r.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM documents WHERE id=$1 AND %s=$2`, col), id, scope.OwnerID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *documentRepository) ListOwned(ctx context.Context, scope Scope) ([]domain.Document, error) {
	col, err := scope.column(documentOwners)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM documents WHERE %s=$1 ORDER BY uploaded_at DESC`, documentColumns, col)
	rows, err := r.pool.Query(ctx, query, scope.OwnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Document{}
	for rows.Next() {
		var doc domain.Document
		if err := rows.Scan(documentDest(&doc)...); err != nil {
			return nil, err
		}
		result = append(result, doc)
	}
	return result, rows.Err()
}

func documentDest(d *domain.Document) []any {
	return []any{&d.ID, &d.OwnerID, &d.Filename, &d.OriginalName, &d.Path, &d.MimeType, &d.Size, &d.Description, &d.UploadedAt}
}
