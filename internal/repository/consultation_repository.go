package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medconsult/consultation-service/internal/domain"
)

// ConsultationFilter narrows an owned listing. The owner axis always comes from the Scope.
type ConsultationFilter struct {
	Status *domain.ConsultationStatus
}

// ConsultationRepository encapsulates consultation persistence.
type ConsultationRepository interface {
	Create(ctx context.Context, consultation *domain.Consultation) error
	Update(ctx context.Context, consultation *domain.Consultation) error
	GetOwned(ctx context.Context, id string, scope Scope) (*domain.Consultation, error)
	ListOwned(ctx context.Context, scope Scope, filter ConsultationFilter) ([]domain.ConsultationView, error)
}

type consultationRepository struct {
	pool *pgxpool.Pool
}

// NewConsultationRepository instantiates repository.
func NewConsultationRepository(pool *pgxpool.Pool) ConsultationRepository {
	return &consultationRepository{pool: pool}
}

const consultationColumns = `c.id, c.patient_id, c.doctor_id, c.date, c.reason, c.status, c.notes, c.created_at, c.updated_at`

const summaryColumns = `u.id, u.name, u.email, u.contact_number, u.profile_pic_url, u.specialization`

func (r *consultationRepository) Create(ctx context.Context, c *domain.Consultation) error {
	const query = `
        INSERT INTO consultations (id, patient_id, doctor_id, date, reason, status, notes)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING created_at, updated_at`

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = domain.ConsultationPending
	}
	err := r.pool.QueryRow(ctx, query,
		c.ID,
		c.PatientID,
		c.DoctorID,
		c.Date,
		c.Reason,
		c.Status,
		c.Notes,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	return translateError(err)
}

func (r *consultationRepository) Update(ctx context.Context, c *domain.Consultation) error {
	const query = `
        UPDATE consultations SET date=$1, reason=$2, status=$3, notes=$4, updated_at=NOW()
        WHERE id=$5
        RETURNING updated_at`

	if !validID(c.ID) {
		return ErrNotFound
	}
	err := r.pool.QueryRow(ctx, query, c.Date, c.Reason, c.Status, c.Notes, c.ID).Scan(&c.UpdatedAt)
	return translateError(err)
}

func (r *consultationRepository) GetOwned(ctx context.Context, id string, scope Scope) (*domain.Consultation, error) {
	col, err := scope.column(consultationOwners)
	if err != nil {
		return nil, err
	}
	if !validID(id) {
		return nil, ErrNotFound
	}

	query := fmt.Sprintf(`SELECT %s FROM consultations c WHERE c.id=$1 AND %s=$2`, consultationColumns, col)
	var c domain.Consultation
	if err := scanConsultation(r.pool.QueryRow(ctx, query, id, scope.OwnerID), &c); err != nil {
		return nil, translateError(err)
	}
	return &c, nil
}

func (r *consultationRepository) ListOwned(ctx context.Context, scope Scope, filter ConsultationFilter) ([]domain.ConsultationView, error) {
	col, err := scope.column(consultationOwners)
	if err != nil {
		return nil, err
	}

	args := []any{scope.OwnerID}
	clauses := []string{fmt.Sprintf("%s=$1", col)}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("c.status=$%d", len(args)))
	}

	query := fmt.Sprintf(`
        SELECT %s, %s
        FROM consultations c
        JOIN users u ON u.id = %s
        WHERE %s
        ORDER BY c.date DESC`,
		consultationColumns, summaryColumns, counterpartColumn(scope, "c"), strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.ConsultationView{}
	for rows.Next() {
		var v domain.ConsultationView
		if err := rows.Scan(append(consultationDest(&v.Consultation), summaryDest(&v.Counterpart)...)...); err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, rows.Err()
}

func consultationDest(c *domain.Consultation) []any {
	return []any{&c.ID, &c.PatientID, &c.DoctorID, &c.Date, &c.Reason, &c.Status, &c.Notes, &c.CreatedAt, &c.UpdatedAt}
}

func summaryDest(s *domain.UserSummary) []any {
	return []any{&s.ID, &s.Name, &s.Email, &s.ContactNumber, &s.ProfilePicURL, &s.Specialization}
}

func scanConsultation(row pgx.Row, c *domain.Consultation) error {
	return row.Scan(consultationDest(c)...)
}
