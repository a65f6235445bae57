package repository

import "github.com/jackc/pgx/v5/pgxpool"

// Repositories bundles every store the services depend on.
type Repositories struct {
	Users         UserRepository
	Consultations ConsultationRepository
	Prescriptions PrescriptionRepository
	Documents     DocumentRepository
}

// NewPostgres wires the pgx-backed repositories onto one pool.
func NewPostgres(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Users:         NewUserRepository(pool),
		Consultations: NewConsultationRepository(pool),
		Prescriptions: NewPrescriptionRepository(pool),
		Documents:     NewDocumentRepository(pool),
	}
}
