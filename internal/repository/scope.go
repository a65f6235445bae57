package repository

import (
	"github.com/medconsult/consultation-service/internal/domain"
)

// OwnerField names the access-control axis of an owned collection.
type OwnerField string

const (
	OwnerPatient  OwnerField = "patient"
	OwnerDoctor   OwnerField = "doctor"
	OwnerUploader OwnerField = "owner"
)

// Scope restricts a query or mutation to records whose owner field equals OwnerID.
type Scope struct {
	Field   OwnerField
	OwnerID string
}

// ScopeFor returns the consultation/prescription scope of a caller. Admins have no owner axis.
func ScopeFor(id domain.Identity) (Scope, error) {
	switch id.Role {
	case domain.RolePatient:
		return Scope{Field: OwnerPatient, OwnerID: id.ID}, nil
	case domain.RoleDoctor:
		return Scope{Field: OwnerDoctor, OwnerID: id.ID}, nil
	default:
		return Scope{}, ErrInvalidScope
	}
}

// UploaderScope scopes documents to their uploader.
func UploaderScope(ownerID string) Scope {
	return Scope{Field: OwnerUploader, OwnerID: ownerID}
}

// column resolves the scope against a collection's allowed owner columns.
func (s Scope) column(columns map[OwnerField]string) (string, error) {
	if s.OwnerID == "" || !validID(s.OwnerID) {
		return "", ErrInvalidScope
	}
	col, ok := columns[s.Field]
	if !ok {
		return "", ErrInvalidScope
	}
	return col, nil
}

// Validate checks the scope against the owner fields a collection supports.
func (s Scope) Validate(allowed ...OwnerField) error {
	columns := make(map[OwnerField]string, len(allowed))
	for _, f := range allowed {
		columns[f] = string(f)
	}
	_, err := s.column(columns)
	return err
}

var (
	consultationOwners = map[OwnerField]string{OwnerPatient: "c.patient_id", OwnerDoctor: "c.doctor_id"}
	prescriptionOwners = map[OwnerField]string{OwnerPatient: "p.patient_id", OwnerDoctor: "p.doctor_id"}
	documentOwners     = map[OwnerField]string{OwnerUploader: "owner_id"}
)

// counterpartColumn returns the join column for the other party of a two-sided record.
func counterpartColumn(s Scope, alias string) string {
	if s.Field == OwnerPatient {
		return alias + ".doctor_id"
	}
	return alias + ".patient_id"
}
