package physio

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AppointmentPurger removes every appointment that references a physio
// across all clinical records. The record manager satisfies it.
type AppointmentPurger interface {
	DeleteAppointmentsForPhysio(ctx context.Context, physioID uuid.UUID) (int, error)
}

type Service struct {
	repo   Repository
	purger AppointmentPurger
	log    zerolog.Logger
}

func NewService(repo Repository, purger AppointmentPurger, log zerolog.Logger) *Service {
	return &Service{repo: repo, purger: purger, log: log}
}

func (s *Service) Create(ctx context.Context, p *Physio) (*Physio, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Physio, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByUserID(ctx context.Context, userID uuid.UUID) (*Physio, error) {
	return s.repo.GetByUserID(ctx, userID)
}

// IDByUserID resolves the profile id linked to a login credential.
func (s *Service) IDByUserID(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	p, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return uuid.Nil, err
	}
	return p.ID, nil
}

// Find lists physios, optionally filtered by specialty substring.
func (s *Service) Find(ctx context.Context, specialty string) ([]*Physio, error) {
	specialty = strings.TrimSpace(specialty)
	var (
		out []*Physio
		err error
	)
	if specialty == "" {
		out, err = s.repo.List(ctx)
	} else {
		out, err = s.repo.FindBySpecialty(ctx, specialty)
	}
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*Physio{}
	}
	return out, nil
}

func (s *Service) Update(ctx context.Context, p *Physio) (*Physio, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a physio after purging their appointments from every
// clinical record, so no record keeps a dangling physio reference.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) (*Physio, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	removed, err := s.purger.DeleteAppointmentsForPhysio(ctx, id)
	if err != nil {
		return nil, err
	}
	if removed > 0 {
		s.log.Info().Str("physio_id", id.String()).Int("appointments_removed", removed).
			Msg("purged appointments before physio delete")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}
	return p, nil
}
