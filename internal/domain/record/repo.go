package record

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the clinical-record store contract. ReplaceAppointments is
// the single mutation primitive for embedded appointments: callers rewrite
// the whole list and the store applies it as one row update.
type Repository interface {
	Create(ctx context.Context, r *Record) error
	GetByID(ctx context.Context, id uuid.UUID) (*Record, error)
	GetByPatient(ctx context.Context, patientID uuid.UUID) (*Record, error)
	List(ctx context.Context) ([]*Record, error)
	ListByPatients(ctx context.Context, patientIDs []uuid.UUID) ([]*Record, error)
	UpdateMedicalRecord(ctx context.Context, id uuid.UUID, text string) error
	ReplaceAppointments(ctx context.Context, id uuid.UUID, apps []Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByPatient(ctx context.Context, patientID uuid.UUID) error
}
