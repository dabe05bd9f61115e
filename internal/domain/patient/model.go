package patient

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/HectorRP3/PhysioCareApi/internal/platform/apperr"
)

const defaultAvatar = "https://olexanderg.net/img/logomiguel.jpg"

var insuranceNumberRe = regexp.MustCompile(`^[a-zA-Z0-9]{9}$`)

// Patient is a directory profile. UserID links the profile to its login
// credential; it is nil for profiles created before self-service signup.
type Patient struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	Name            string     `db:"name" json:"name"`
	Surname         string     `db:"surname" json:"surname"`
	BirthDate       time.Time  `db:"birth_date" json:"birthDate"`
	Address         string     `db:"address" json:"address,omitempty"`
	InsuranceNumber string     `db:"insurance_number" json:"insuranceNumber"`
	Email           string     `db:"email" json:"email"`
	UserID          *uuid.UUID `db:"user_id" json:"userID,omitempty"`
	Avatar          string     `db:"avatar" json:"avatar"`
	Lat             float64    `db:"lat" json:"lat"`
	Lng             float64    `db:"lng" json:"lng"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// Validate enforces the schema constraints. The first failing field's
// message is what reaches the client.
func (p *Patient) Validate() error {
	p.Name = strings.TrimSpace(p.Name)
	p.Surname = strings.TrimSpace(p.Surname)
	p.Address = strings.TrimSpace(p.Address)

	if len(p.Name) < 3 {
		return apperr.E(apperr.ErrValidation, "El nombre debe tener al menos 3 caracteres")
	}
	if len(p.Name) > 50 {
		return apperr.E(apperr.ErrValidation, "El nombre no puede tener más de 50 caracteres")
	}
	if len(p.Surname) < 3 {
		return apperr.E(apperr.ErrValidation, "El apellido debe tener al menos 3 caracteres")
	}
	if len(p.Surname) > 50 {
		return apperr.E(apperr.ErrValidation, "El apellido no puede tener más de 50 caracteres")
	}
	if p.BirthDate.IsZero() {
		return apperr.E(apperr.ErrValidation, "La fecha de nacimiento es obligatoria")
	}
	if len(p.Address) > 100 {
		return apperr.E(apperr.ErrValidation, "La dirección no puede tener más de 100 caracteres")
	}
	if !insuranceNumberRe.MatchString(p.InsuranceNumber) {
		return apperr.E(apperr.ErrValidation, "El número de seguro debe tener 9 caracteres alfanuméricos")
	}
	if p.Email == "" {
		return apperr.E(apperr.ErrValidation, "El email es obligatorio")
	}
	if p.Avatar == "" {
		p.Avatar = defaultAvatar
	}
	return nil
}
