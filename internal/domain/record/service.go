package record

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/HectorRP3/PhysioCareApi/internal/platform/apperr"
	"github.com/HectorRP3/PhysioCareApi/internal/platform/push"
)

// PatientRef is the slice of a patient profile the record manager needs:
// identity for existence checks, name for notification text, UserID to find
// the device to notify.
type PatientRef struct {
	ID      uuid.UUID
	Name    string
	Surname string
	UserID  *uuid.UUID
}

type PhysioRef struct {
	ID      uuid.UUID
	Name    string
	Surname string
	UserID  *uuid.UUID
}

// PatientDirectory and PhysioDirectory are satisfied by thin adapters over
// the directory repositories, wired in main.
type PatientDirectory interface {
	Ref(ctx context.Context, id uuid.UUID) (*PatientRef, error)
	IDsBySurname(ctx context.Context, surname string) ([]uuid.UUID, error)
}

type PhysioDirectory interface {
	Ref(ctx context.Context, id uuid.UUID) (*PhysioRef, error)
}

// PushTokens resolves a user's registered device token; empty means the
// user has no device to notify.
type PushTokens interface {
	PushToken(ctx context.Context, userID uuid.UUID) (string, error)
}

type Service struct {
	repo     Repository
	patients PatientDirectory
	physios  PhysioDirectory
	tokens   PushTokens
	push     push.Dispatcher
	log      zerolog.Logger
	now      func() time.Time
}

func NewService(repo Repository, patients PatientDirectory, physios PhysioDirectory,
	tokens PushTokens, dispatcher push.Dispatcher, log zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		patients: patients,
		physios:  physios,
		tokens:   tokens,
		push:     dispatcher,
		log:      log,
		now:      time.Now,
	}
}

// Create opens a clinical record, normally carrying initial appointments
// imported from a previous practice. Caller-supplied patient ids on the
// appointments are overwritten with the record's own.
func (s *Service) Create(ctx context.Context, rec *Record) (*Record, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.patients.Ref(ctx, rec.PatientID); err != nil {
		return nil, err
	}
	for i := range rec.Appointments {
		rec.Appointments[i].ID = uuid.New()
		rec.Appointments[i].PatientID = rec.PatientID
		if err := rec.Appointments[i].Validate(); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// CreateForPatient opens the empty record that accompanies a new patient.
func (s *Service) CreateForPatient(ctx context.Context, patientID uuid.UUID) error {
	return s.repo.Create(ctx, &Record{PatientID: patientID})
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByPatient(ctx context.Context, patientID uuid.UUID) (*Record, error) {
	return s.repo.GetByPatient(ctx, patientID)
}

func (s *Service) List(ctx context.Context) ([]*Record, error) {
	out, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*Record{}
	}
	return out, nil
}

// FindBySurname lists the records whose owning patient's surname contains
// the given substring. Empty surname lists everything.
func (s *Service) FindBySurname(ctx context.Context, surname string) ([]*Record, error) {
	if surname == "" {
		return s.List(ctx)
	}
	ids, err := s.patients.IDsBySurname(ctx, surname)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*Record{}, nil
	}
	out, err := s.repo.ListByPatients(ctx, ids)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*Record{}
	}
	return out, nil
}

// UpdateMedicalRecord replaces the free-text part of a record. Appointments
// are managed exclusively through the appointment operations.
func (s *Service) UpdateMedicalRecord(ctx context.Context, id uuid.UUID, text string) (*Record, error) {
	if len(text) > 1000 {
		return nil, apperr.E(apperr.ErrValidation, "El expediente médico no puede tener más de 1000 caracteres")
	}
	if err := s.repo.UpdateMedicalRecord(ctx, id, text); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) (*Record, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Service) DeleteByPatient(ctx context.Context, patientID uuid.UUID) error {
	return s.repo.DeleteByPatient(ctx, patientID)
}

// collect flattens, filters, and orders appointments from a set of records.
// Descending by date is the canonical order for every listing.
func (s *Service) collect(recs []*Record, f Filter) []Appointment {
	var apps []Appointment
	for _, rec := range recs {
		apps = append(apps, rec.Appointments...)
	}
	apps = filterAppointments(apps, f, s.now())
	sortByDateDesc(apps)
	return apps
}

// Appointments lists every appointment across all records.
func (s *Service) Appointments(ctx context.Context, f Filter) ([]Appointment, error) {
	recs, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.collect(recs, f), nil
}

// AppointmentsByRecord lists one record's appointments.
func (s *Service) AppointmentsByRecord(ctx context.Context, recordID uuid.UUID, f Filter) ([]Appointment, error) {
	rec, err := s.repo.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	return s.collect([]*Record{rec}, f), nil
}

// AppointmentsByPatient lists a patient's appointments. The patient must
// exist; a patient without a record just has none.
func (s *Service) AppointmentsByPatient(ctx context.Context, patientID uuid.UUID, f Filter) ([]Appointment, error) {
	if _, err := s.patients.Ref(ctx, patientID); err != nil {
		return nil, apperr.Ef(apperr.ErrNotFound, "No existe paciente con id %s", patientID)
	}
	rec, err := s.repo.GetByPatient(ctx, patientID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return []Appointment{}, nil
		}
		return nil, err
	}
	return s.collect([]*Record{rec}, f), nil
}

// AppointmentsByPhysio scans every record and keeps the appointments
// assigned to the given physio. The denormalized patient id on each entry
// is what lets the result stand alone without a join. No profile lookup:
// after a physio is deleted their purged id simply matches nothing, so the
// listing stays reachable and empty.
func (s *Service) AppointmentsByPhysio(ctx context.Context, physioID uuid.UUID, f Filter) ([]Appointment, error) {
	recs, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	all := s.collect(recs, f)
	out := make([]Appointment, 0, len(all))
	for _, a := range all {
		if a.PhysioID == physioID {
			out = append(out, a)
		}
	}
	return out, nil
}

// GetAppointment scans all records for the appointment with the given
// sub-id.
func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	_, app, _, err := s.locate(ctx, id)
	if err != nil {
		return nil, err
	}
	return app, nil
}

// locate finds the record containing an appointment sub-id and the entry's
// position in it.
func (s *Service) locate(ctx context.Context, id uuid.UUID) (*Record, *Appointment, int, error) {
	recs, err := s.repo.List(ctx)
	if err != nil {
		return nil, nil, 0, err
	}
	for _, rec := range recs {
		for i := range rec.Appointments {
			if rec.Appointments[i].ID == id {
				return rec, &rec.Appointments[i], i, nil
			}
		}
	}
	return nil, nil, 0, apperr.Ef(apperr.ErrNotFound, "No existe appointment con id %s", id)
}

// AddAppointment appends an appointment to a record. The entry's patient id
// is forced to the owning record's, whatever the caller sent. Both the
// assigned physio and the owning patient get a best-effort push
// notification; a failed send never fails the write.
func (s *Service) AddAppointment(ctx context.Context, recordID uuid.UUID, app *Appointment) (*Appointment, error) {
	rec, err := s.repo.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	app.ID = uuid.New()
	app.PatientID = rec.PatientID
	if err := app.Validate(); err != nil {
		return nil, err
	}
	apps := append(rec.Appointments, *app)
	if err := s.repo.ReplaceAppointments(ctx, rec.ID, apps); err != nil {
		return nil, err
	}

	s.notify(ctx, app, "Nueva cita", "Tienes una nueva cita el "+app.Date.Format("02/01/2006 15:04"))
	return app, nil
}

// UpdateAppointment replaces an appointment's fields in place, wherever it
// lives. Sub-id and patient linkage are immutable.
func (s *Service) UpdateAppointment(ctx context.Context, id uuid.UUID, fields *Appointment) (*Appointment, error) {
	rec, current, pos, err := s.locate(ctx, id)
	if err != nil {
		return nil, err
	}
	updated := *fields
	updated.ID = current.ID
	updated.PatientID = rec.PatientID
	if err := updated.Validate(); err != nil {
		return nil, err
	}
	rec.Appointments[pos] = updated
	if err := s.repo.ReplaceAppointments(ctx, rec.ID, rec.Appointments); err != nil {
		return nil, err
	}

	s.notify(ctx, &updated, "Cita modificada", "Tu cita ha cambiado al "+updated.Date.Format("02/01/2006 15:04"))
	return &updated, nil
}

// DeleteAppointment removes an appointment from whichever record contains
// it. Losing a race with a concurrent delete reports NotFound.
func (s *Service) DeleteAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	rec, current, pos, err := s.locate(ctx, id)
	if err != nil {
		return nil, err
	}
	removed := *current
	apps := append(rec.Appointments[:pos], rec.Appointments[pos+1:]...)
	if err := s.repo.ReplaceAppointments(ctx, rec.ID, apps); err != nil {
		return nil, err
	}

	s.notify(ctx, &removed, "Cita cancelada", "Tu cita del "+removed.Date.Format("02/01/2006 15:04")+" ha sido cancelada")
	return &removed, nil
}

// DeleteAppointmentsForPhysio removes every appointment assigned to a
// physio across all records, returning how many went. It runs before the
// physio profile itself is deleted. Safe to retry: records already purged
// simply contribute zero.
func (s *Service) DeleteAppointmentsForPhysio(ctx context.Context, physioID uuid.UUID) (int, error) {
	recs, err := s.repo.List(ctx)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, rec := range recs {
		kept := rec.Appointments[:0:0]
		for _, a := range rec.Appointments {
			if a.PhysioID == physioID {
				removed++
				continue
			}
			kept = append(kept, a)
		}
		if len(kept) == len(rec.Appointments) {
			continue
		}
		if err := s.repo.ReplaceAppointments(ctx, rec.ID, kept); err != nil {
			return removed, err
		}
	}
	return removed, nil
}

// notify pushes to the appointment's physio and patient, through their
// linked users. Awaited so test ordering is deterministic, but strictly
// best-effort: every failure is logged and swallowed.
func (s *Service) notify(ctx context.Context, app *Appointment, title, body string) {
	targets := make([]*uuid.UUID, 0, 2)
	if ref, err := s.physios.Ref(ctx, app.PhysioID); err == nil {
		targets = append(targets, ref.UserID)
	}
	if ref, err := s.patients.Ref(ctx, app.PatientID); err == nil {
		targets = append(targets, ref.UserID)
	}
	for _, userID := range targets {
		if userID == nil {
			continue
		}
		token, err := s.tokens.PushToken(ctx, *userID)
		if err != nil || token == "" {
			continue
		}
		if err := s.push.Send(ctx, token, title, body); err != nil {
			s.log.Warn().Err(err).Str("appointment_id", app.ID.String()).Msg("push notification failed")
		}
	}
}
