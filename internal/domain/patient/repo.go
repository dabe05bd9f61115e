package patient

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the patient directory store contract.
type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Patient, error)
	List(ctx context.Context) ([]*Patient, error)
	FindBySurname(ctx context.Context, surname string) ([]*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
}
