package record

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/HectorRP3/PhysioCareApi/internal/platform/apperr"
)

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

var statuses = map[Status]bool{
	StatusPending:   true,
	StatusCompleted: true,
	StatusCancelled: true,
}

// Filter selects a temporal slice of an appointment listing.
type Filter string

const (
	FilterAll       Filter = ""
	FilterPast      Filter = "past"
	FilterFuture    Filter = "future"
	FilterCompleted Filter = "completed"
)

// ParseFilter maps the ?filter= query value to a Filter. Empty and "all"
// both mean no filtering.
func ParseFilter(s string) (Filter, error) {
	switch Filter(strings.ToLower(strings.TrimSpace(s))) {
	case FilterAll, Filter("all"):
		return FilterAll, nil
	case FilterPast:
		return FilterPast, nil
	case FilterFuture:
		return FilterFuture, nil
	case FilterCompleted:
		return FilterCompleted, nil
	default:
		return FilterAll, apperr.Ef(apperr.ErrValidation, "%s no es un filtro válido", s)
	}
}

// Appointment is embedded in its owning Record; it has no lifecycle of its
// own. PatientID always mirrors the owning Record's PatientID so that
// physio-scoped and patient-scoped listings never need a join.
type Appointment struct {
	ID           uuid.UUID `json:"id"`
	Date         time.Time `json:"date"`
	PhysioID     uuid.UUID `json:"physio"`
	PatientID    uuid.UUID `json:"patient"`
	Diagnosis    string    `json:"diagnosis"`
	Treatment    string    `json:"treatment"`
	Observations string    `json:"observations,omitempty"`
	Status       Status    `json:"status"`
}

func (a *Appointment) Validate() error {
	a.Diagnosis = strings.TrimSpace(a.Diagnosis)
	a.Treatment = strings.TrimSpace(a.Treatment)
	a.Observations = strings.TrimSpace(a.Observations)

	if a.Date.IsZero() {
		return apperr.E(apperr.ErrValidation, "La fecha de la cita es obligatoria")
	}
	if a.PhysioID == uuid.Nil {
		return apperr.E(apperr.ErrValidation, "El fisioterapeuta es obligatorio")
	}
	if len(a.Diagnosis) < 10 {
		return apperr.E(apperr.ErrValidation, "El diagnóstico debe tener al menos 10 caracteres")
	}
	if len(a.Diagnosis) > 500 {
		return apperr.E(apperr.ErrValidation, "El diagnóstico no puede tener más de 500 caracteres")
	}
	if a.Treatment == "" {
		return apperr.E(apperr.ErrValidation, "El tratamiento es obligatorio")
	}
	if len(a.Observations) > 500 {
		return apperr.E(apperr.ErrValidation, "Las observaciones no pueden tener más de 500 caracteres")
	}
	if a.Status == "" {
		a.Status = StatusPending
	}
	if !statuses[a.Status] {
		return apperr.Ef(apperr.ErrValidation, "%s no es un estado válido", a.Status)
	}
	return nil
}

// Record is the unit of storage: one clinical record per patient, with its
// appointments embedded. Every appointment mutation rewrites the whole
// embedded list in a single-row update, which is what makes each mutation
// atomic per record.
type Record struct {
	ID            uuid.UUID     `json:"id"`
	PatientID     uuid.UUID     `json:"patient"`
	MedicalRecord string        `json:"medicalRecord"`
	Appointments  []Appointment `json:"appointments"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func (r *Record) Validate() error {
	if r.PatientID == uuid.Nil {
		return apperr.E(apperr.ErrValidation, "El paciente es obligatorio")
	}
	if len(r.MedicalRecord) > 1000 {
		return apperr.E(apperr.ErrValidation, "El expediente médico no puede tener más de 1000 caracteres")
	}
	return nil
}

// sortByDateDesc orders appointments newest-first, the canonical order for
// every listing.
func sortByDateDesc(apps []Appointment) {
	sort.SliceStable(apps, func(i, j int) bool {
		return apps[i].Date.After(apps[j].Date)
	})
}

func filterAppointments(apps []Appointment, f Filter, now time.Time) []Appointment {
	out := make([]Appointment, 0, len(apps))
	for _, a := range apps {
		switch f {
		case FilterPast:
			if !a.Date.Before(now) {
				continue
			}
		case FilterFuture:
			if !a.Date.After(now) {
				continue
			}
		case FilterCompleted:
			if a.Status != StatusCompleted {
				continue
			}
		}
		out = append(out, a)
	}
	return out
}
