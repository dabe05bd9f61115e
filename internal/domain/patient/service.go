package patient

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/HectorRP3/PhysioCareApi/internal/domain/record"
	"github.com/HectorRP3/PhysioCareApi/internal/platform/apperr"
)

// Records is the slice of the clinical-record manager the patient directory
// needs: open a record when a patient joins, drop it when the patient leaves,
// and read the appointments shown on the profile detail view.
type Records interface {
	CreateForPatient(ctx context.Context, patientID uuid.UUID) error
	DeleteByPatient(ctx context.Context, patientID uuid.UUID) error
	AppointmentsByPatient(ctx context.Context, patientID uuid.UUID, filter record.Filter) ([]record.Appointment, error)
}

// Detail is a profile plus the appointments gathered from the patient's
// clinical record, as returned by GET /patients/:id.
type Detail struct {
	*Patient
	Appointments []record.Appointment `json:"appointments"`
}

type Service struct {
	repo    Repository
	records Records
	log     zerolog.Logger
}

func NewService(repo Repository, records Records, log zerolog.Logger) *Service {
	return &Service{repo: repo, records: records, log: log}
}

// Create registers a patient and opens an empty clinical record for them.
// Record creation is best-effort: a failure is logged but the patient is
// still created, matching the historical two-step behavior. The record can
// be opened later through POST /records.
func (s *Service) Create(ctx context.Context, p *Patient) (*Patient, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	if err := s.records.CreateForPatient(ctx, p.ID); err != nil {
		s.log.Error().Err(err).Str("patient_id", p.ID.String()).Msg("could not open clinical record for new patient")
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

// Detail returns a patient with the appointments from their clinical record.
// A patient without a record (the best-effort create failed and nobody opened
// one since) still resolves, with an empty appointment list.
func (s *Service) Detail(ctx context.Context, id uuid.UUID) (*Detail, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	apps, err := s.records.AppointmentsByPatient(ctx, id, record.FilterAll)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	if apps == nil {
		apps = []record.Appointment{}
	}
	return &Detail{Patient: p, Appointments: apps}, nil
}

func (s *Service) GetByUserID(ctx context.Context, userID uuid.UUID) (*Patient, error) {
	return s.repo.GetByUserID(ctx, userID)
}

// IDByUserID resolves the profile id linked to a login credential. Used at
// login time to stamp the token subject.
func (s *Service) IDByUserID(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	p, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return uuid.Nil, err
	}
	return p.ID, nil
}

// Find lists patients, optionally filtered by surname substring. An empty
// result is an empty list, not an error.
func (s *Service) Find(ctx context.Context, surname string) ([]*Patient, error) {
	surname = strings.TrimSpace(surname)
	var (
		out []*Patient
		err error
	)
	if surname == "" {
		out, err = s.repo.List(ctx)
	} else {
		out, err = s.repo.FindBySurname(ctx, surname)
	}
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*Patient{}
	}
	return out, nil
}

// IDsBySurname returns the ids of patients whose surname contains the given
// substring. The record manager uses it for surname-scoped record search.
func (s *Service) IDsBySurname(ctx context.Context, surname string) ([]uuid.UUID, error) {
	list, err := s.repo.FindBySurname(ctx, surname)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(list))
	for _, p := range list {
		ids = append(ids, p.ID)
	}
	return ids, nil
}

func (s *Service) Update(ctx context.Context, p *Patient) (*Patient, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a patient and their clinical record. The record goes first
// so a crash between the two steps never leaves a record without its owner
// pointing at nothing; a missing record is fine.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.records.DeleteByPatient(ctx, id); err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}
	return p, nil
}
