package physio

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the physio directory store contract.
type Repository interface {
	Create(ctx context.Context, p *Physio) error
	GetByID(ctx context.Context, id uuid.UUID) (*Physio, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Physio, error)
	List(ctx context.Context) ([]*Physio, error)
	FindBySpecialty(ctx context.Context, specialty string) ([]*Physio, error)
	Update(ctx context.Context, p *Physio) error
	Delete(ctx context.Context, id uuid.UUID) error
}
