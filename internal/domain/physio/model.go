package physio

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/HectorRP3/PhysioCareApi/internal/platform/apperr"
)

// Specialty is the clinical area a physio works in.
type Specialty string

const (
	SpecialtySports       Specialty = "Sports"
	SpecialtyNeurological Specialty = "Neurological"
	SpecialtyPediatric    Specialty = "Pediatric"
	SpecialtyGeriatric    Specialty = "Geriatric"
	SpecialtyOncological  Specialty = "Oncological"
)

var specialties = map[Specialty]bool{
	SpecialtySports:       true,
	SpecialtyNeurological: true,
	SpecialtyPediatric:    true,
	SpecialtyGeriatric:    true,
	SpecialtyOncological:  true,
}

const defaultAvatar = "https://olexanderg.net/img/physio-default.jpg"

var licenseNumberRe = regexp.MustCompile(`^[a-zA-Z0-9]{8}$`)

type Physio struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	Name          string     `db:"name" json:"name"`
	Surname       string     `db:"surname" json:"surname"`
	Specialty     Specialty  `db:"specialty" json:"specialty"`
	LicenseNumber string     `db:"license_number" json:"licenseNumber"`
	Email         string     `db:"email" json:"email"`
	UserID        *uuid.UUID `db:"user_id" json:"userID,omitempty"`
	Avatar        string     `db:"avatar" json:"avatar"`
	Rating        int        `db:"rating" json:"rating"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

func (p *Physio) Validate() error {
	p.Name = strings.TrimSpace(p.Name)
	p.Surname = strings.TrimSpace(p.Surname)

	if len(p.Name) < 2 {
		return apperr.E(apperr.ErrValidation, "El nombre debe tener al menos 2 caracteres")
	}
	if len(p.Name) > 50 {
		return apperr.E(apperr.ErrValidation, "El nombre no puede tener más de 50 caracteres")
	}
	if len(p.Surname) < 2 {
		return apperr.E(apperr.ErrValidation, "El apellido debe tener al menos 2 caracteres")
	}
	if len(p.Surname) > 50 {
		return apperr.E(apperr.ErrValidation, "El apellido no puede tener más de 50 caracteres")
	}
	if !specialties[p.Specialty] {
		return apperr.Ef(apperr.ErrValidation, "%s no es una especialidad válida", p.Specialty)
	}
	if !licenseNumberRe.MatchString(p.LicenseNumber) {
		return apperr.E(apperr.ErrValidation, "El número de licencia debe tener 8 caracteres alfanuméricos")
	}
	if p.Email == "" {
		return apperr.E(apperr.ErrValidation, "El email es obligatorio")
	}
	if p.Avatar == "" {
		p.Avatar = defaultAvatar
	}
	if p.Rating == 0 {
		p.Rating = 1
	}
	if p.Rating < 1 {
		return apperr.E(apperr.ErrValidation, "Las estrellas deben ser un número positivo")
	}
	if p.Rating > 5 {
		return apperr.E(apperr.ErrValidation, "Las estrellas no pueden ser más de 5")
	}
	return nil
}
