package patient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/HectorRP3/PhysioCareApi/internal/domain/record"
	"github.com/HectorRP3/PhysioCareApi/internal/platform/apperr"
)

// -- Mock patient repository --

type mockRepo struct {
	patients map[uuid.UUID]*Patient
}

func newMockRepo() *mockRepo {
	return &mockRepo{patients: make(map[uuid.UUID]*Patient)}
}

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	for _, existing := range m.patients {
		if existing.InsuranceNumber == p.InsuranceNumber {
			return apperr.E(apperr.ErrConflict, "El número de seguro ya existe")
		}
	}
	p.ID = uuid.New()
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, apperr.E(apperr.ErrNotFound, "No se ha encontrado el paciente")
	}
	return p, nil
}

func (m *mockRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*Patient, error) {
	for _, p := range m.patients {
		if p.UserID != nil && *p.UserID == userID {
			return p, nil
		}
	}
	return nil, apperr.E(apperr.ErrNotFound, "No se ha encontrado el paciente")
}

func (m *mockRepo) List(_ context.Context) ([]*Patient, error) {
	var out []*Patient
	for _, p := range m.patients {
		out = append(out, p)
	}
	return out, nil
}

func (m *mockRepo) FindBySurname(_ context.Context, surname string) ([]*Patient, error) {
	var out []*Patient
	for _, p := range m.patients {
		if surname == "" || containsFold(p.Surname, surname) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockRepo) Update(_ context.Context, p *Patient) error {
	if _, ok := m.patients[p.ID]; !ok {
		return apperr.E(apperr.ErrNotFound, "No se ha encontrado el paciente")
	}
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.patients[id]; !ok {
		return apperr.E(apperr.ErrNotFound, "No se ha encontrado el paciente")
	}
	delete(m.patients, id)
	return nil
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// -- Mock record manager --

type mockRecords struct {
	created    []uuid.UUID
	deleted    []uuid.UUID
	failCreate bool
}

func (m *mockRecords) CreateForPatient(_ context.Context, patientID uuid.UUID) error {
	if m.failCreate {
		return fmt.Errorf("store down")
	}
	m.created = append(m.created, patientID)
	return nil
}

func (m *mockRecords) DeleteByPatient(_ context.Context, patientID uuid.UUID) error {
	for _, id := range m.created {
		if id == patientID {
			m.deleted = append(m.deleted, patientID)
			return nil
		}
	}
	return apperr.E(apperr.ErrNotFound, "Record not found")
}

func (m *mockRecords) AppointmentsByPatient(_ context.Context, patientID uuid.UUID, _ record.Filter) ([]record.Appointment, error) {
	for _, id := range m.created {
		if id == patientID {
			return []record.Appointment{}, nil
		}
	}
	return nil, apperr.E(apperr.ErrNotFound, "Record not found")
}

func seedPatient(t *testing.T, svc *Service, surname, insurance string) *Patient {
	t.Helper()
	p := &Patient{
		Name:            "María",
		Surname:         surname,
		BirthDate:       time.Date(1990, 5, 12, 0, 0, 0, 0, time.UTC),
		InsuranceNumber: insurance,
		Email:           "maria@example.com",
	}
	if _, err := svc.Create(context.Background(), p); err != nil {
		t.Fatalf("seed patient: %v", err)
	}
	return p
}

func TestCreateOpensRecord(t *testing.T) {
	records := &mockRecords{}
	svc := NewService(newMockRepo(), records, zerolog.Nop())

	p := seedPatient(t, svc, "González", "ABC123456")
	if len(records.created) != 1 || records.created[0] != p.ID {
		t.Errorf("record not opened for patient, created = %v", records.created)
	}
}

func TestCreateSurvivesRecordFailure(t *testing.T) {
	records := &mockRecords{failCreate: true}
	svc := NewService(newMockRepo(), records, zerolog.Nop())

	p := seedPatient(t, svc, "González", "ABC123456")
	if _, err := svc.GetByID(context.Background(), p.ID); err != nil {
		t.Errorf("patient rolled back on record failure: %v", err)
	}
}

func TestCreateDuplicateInsurance(t *testing.T) {
	svc := NewService(newMockRepo(), &mockRecords{}, zerolog.Nop())
	seedPatient(t, svc, "González", "ABC123456")

	p := &Patient{
		Name:            "Otra",
		Surname:         "Persona",
		BirthDate:       time.Date(1985, 1, 1, 0, 0, 0, 0, time.UTC),
		InsuranceNumber: "ABC123456",
		Email:           "otra@example.com",
	}
	if _, err := svc.Create(context.Background(), p); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("err = %v, want conflict", err)
	}
}

func TestFindBySurname(t *testing.T) {
	svc := NewService(newMockRepo(), &mockRecords{}, zerolog.Nop())
	seedPatient(t, svc, "González", "ABC123456")
	seedPatient(t, svc, "Martínez", "DEF123456")

	out, err := svc.Find(context.Background(), "gonz")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(out) != 1 || out[0].Surname != "González" {
		t.Errorf("find result = %v", out)
	}
}

func TestFindEmptyResultIsEmptyList(t *testing.T) {
	svc := NewService(newMockRepo(), &mockRecords{}, zerolog.Nop())
	out, err := svc.Find(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if out == nil || len(out) != 0 {
		t.Errorf("out = %v, want empty list", out)
	}
}

func TestDeleteCascadesRecord(t *testing.T) {
	records := &mockRecords{}
	svc := NewService(newMockRepo(), records, zerolog.Nop())
	p := seedPatient(t, svc, "González", "ABC123456")

	if _, err := svc.Delete(context.Background(), p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(records.deleted) != 1 || records.deleted[0] != p.ID {
		t.Errorf("record not cascaded, deleted = %v", records.deleted)
	}
	if _, err := svc.GetByID(context.Background(), p.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Error("patient still present after delete")
	}
}

func TestDeleteToleratesMissingRecord(t *testing.T) {
	// The best-effort create can leave a patient without a record; deleting
	// that patient must still work.
	records := &mockRecords{failCreate: true}
	svc := NewService(newMockRepo(), records, zerolog.Nop())
	p := seedPatient(t, svc, "González", "ABC123456")

	if _, err := svc.Delete(context.Background(), p.ID); err != nil {
		t.Errorf("Delete: %v", err)
	}
}

func TestIDByUserID(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, &mockRecords{}, zerolog.Nop())
	p := seedPatient(t, svc, "González", "ABC123456")
	userID := uuid.New()
	p.UserID = &userID

	got, err := svc.IDByUserID(context.Background(), userID)
	if err != nil {
		t.Fatalf("IDByUserID: %v", err)
	}
	if got != p.ID {
		t.Errorf("id = %s, want %s", got, p.ID)
	}

	if _, err := svc.IDByUserID(context.Background(), uuid.New()); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}
