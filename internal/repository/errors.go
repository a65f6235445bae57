package repository

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned for missing records and for records outside the caller's scope.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint (user email) is violated.
	ErrDuplicate = errors.New("duplicate record")
	// ErrInvalidScope is returned when an owner scope is empty or names a field the collection lacks.
	ErrInvalidScope = errors.New("invalid owner scope")
)

const uniqueViolation = "23505"

func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return err
}

// validID reports whether id can name a stored record.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
