package user

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the credential store contract.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByLogin(ctx context.Context, login string) (*User, error)
	UpdatePushToken(ctx context.Context, id uuid.UUID, pushToken string) error
}
