package user

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/HectorRP3/PhysioCareApi/internal/platform/apperr"
	"github.com/HectorRP3/PhysioCareApi/internal/platform/auth"
)

// User is a login credential. Profiles (Patient, Physio) reference a User
// through their user_id column; a User is never deleted when its profile is.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Login        string    `db:"login" json:"login"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         auth.Role `db:"rol" json:"rol"`
	PushToken    string    `db:"push_token" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Validate checks the credential fields at the data-model boundary.
func (u *User) Validate() error {
	u.Login = strings.TrimSpace(u.Login)
	if len(u.Login) < 4 {
		return apperr.E(apperr.ErrValidation, "login must have at least 4 characters")
	}
	if _, err := auth.ParseRole(string(u.Role)); err != nil {
		return err
	}
	return nil
}
