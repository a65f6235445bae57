package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medconsult/consultation-service/internal/domain"
)

// PrescriptionRepository encapsulates prescription persistence.
type PrescriptionRepository interface {
	Create(ctx context.Context, prescription *domain.Prescription) error
	Update(ctx context.Context, prescription *domain.Prescription) error
	GetOwned(ctx context.Context, id string, scope Scope) (*domain.Prescription, error)
	DeleteOwned(ctx context.Context, id string, scope Scope) error
	ListOwned(ctx context.Context, scope Scope) ([]domain.PrescriptionView, error)
}

type prescriptionRepository struct {
	pool *pgxpool.Pool
}

// NewPrescriptionRepository instantiates repository.
func NewPrescriptionRepository(pool *pgxpool.Pool) PrescriptionRepository {
	return &prescriptionRepository{pool: pool}
}

const prescriptionColumns = `p.id, p.patient_id, p.doctor_id, p.medication, p.dosage, p.instructions, p.issued_at, p.updated_at`

func (r *prescriptionRepository) Create(ctx context.Context, p *domain.Prescription) error {
	const query = `
        INSERT INTO prescriptions (id, patient_id, doctor_id, medication, dosage, instructions)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING issued_at, updated_at`

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	err := r.pool.QueryRow(ctx, query,
		p.ID,
		p.PatientID,
		p.DoctorID,
		p.Medication,
		p.Dosage,
		p.Instructions,
	).Scan(&p.IssuedAt, &p.UpdatedAt)
	return translateError(err)
}

func (r *prescriptionRepository) Update(ctx context.Context, p *domain.Prescription) error {
	const query = `
        UPDATE prescriptions SET medication=$1, dosage=$2, instructions=$3, updated_at=NOW()
        WHERE id=$4
        RETURNING updated_at`

	if !validID(p.ID) {
		return ErrNotFound
	}
	err := r.pool.QueryRow(ctx, query, p.Medication, p.Dosage, p.Instructions, p.ID).Scan(&p.UpdatedAt)
	return translateError(err)
}

func (r *prescriptionRepository) GetOwned(ctx context.Context, id string, scope Scope) (*domain.Prescription, error) {
	col, err := scope.column(prescriptionOwners)
	if err != nil {
		return nil, err
	}
	if !validID(id) {
		return nil, ErrNotFound
	}

	query := fmt.Sprintf(`SELECT %s FROM prescriptions p WHERE p.id=$1 AND %s=$2`, prescriptionColumns, col)
	var p domain.Prescription
	if err := r.pool.QueryRow(ctx, query, id, scope.OwnerID).Scan(prescriptionDest(&p)...); err != nil {
		return nil, translateError(err)
	}
	return &p, nil
}

func (r *prescriptionRepository) DeleteOwned(ctx context.Context, id string, scope Scope) error {
	col, err := scope.column(prescriptionOwners)
	if err != nil {
		return err
	}
	if !validID(id) {
		return ErrNotFound
	}

	query := fmt.Sprintf(`DELETE FROM prescriptions p WHERE p.id=$1 AND %s=$2`, col)
	cmd, err := r.pool.Exec(ctx, query, id, scope.OwnerID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *prescriptionRepository) ListOwned(ctx context.Context, scope Scope) ([]domain.PrescriptionView, error) {
	col, err := scope.column(prescriptionOwners)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
        SELECT %s, %s
        FROM prescriptions p
        JOIN users u ON u.id = %s
        WHERE %s=$1
        ORDER BY p.issued_at DESC`,
		prescriptionColumns, summaryColumns, counterpartColumn(scope, "p"), col)

	rows, err := r.pool.Query(ctx, query, scope.OwnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.PrescriptionView{}
	for rows.Next() {
		var v domain.PrescriptionView
		if err := rows.Scan(append(prescriptionDest(&v.Prescription), summaryDest(&v.Counterpart)...)...); err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, rows.Err()
}

func prescriptionDest(p *domain.Prescription) []any {
	return []any{&p.ID, &p.PatientID, &p.DoctorID, &p.Medication, &p.Dosage, &p.Instructions, &p.IssuedAt, &p.UpdatedAt}
}
