package record

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/HectorRP3/PhysioCareApi/internal/platform/apperr"
	"github.com/HectorRP3/PhysioCareApi/internal/platform/auth"
)

func getAs(t *testing.T, handler echo.HandlerFunc, target, path string, identity auth.Identity, paramID uuid.UUID) (error, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req = req.WithContext(auth.WithIdentity(req.Context(), identity))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath(path)
	c.SetParamNames("id")
	c.SetParamValues(paramID.String())
	return handler(c), rec
}

func TestGetRecordSelfAccessDenied(t *testing.T) {
	f := newFixture(t)
	rec := f.openRecord(t)
	h := NewHandler(f.svc, auth.NewTokenService("test-secret"))

	identity := auth.Identity{Login: "otro", Role: auth.RolePatient, SubjectID: uuid.New()}
	err, _ := getAs(t, h.Get, "/records/"+rec.ID.String(), "/records/:id", identity, rec.ID)
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("err = %v, want forbidden", err)
	}
	if msg := apperr.Message(err); msg != "Only the patient can see his/her own data" {
		t.Errorf("message = %q", msg)
	}
}

func TestGetRecordSelfAccessAllowed(t *testing.T) {
	f := newFixture(t)
	rec := f.openRecord(t)
	h := NewHandler(f.svc, auth.NewTokenService("test-secret"))

	identity := auth.Identity{Login: "maria", Role: auth.RolePatient, SubjectID: f.patientID}
	err, w := getAs(t, h.Get, "/records/"+rec.ID.String(), "/records/:id", identity, rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
}

func TestGetRecordStaffAccess(t *testing.T) {
	f := newFixture(t)
	rec := f.openRecord(t)
	h := NewHandler(f.svc, auth.NewTokenService("test-secret"))

	for _, role := range []auth.Role{auth.RoleAdmin, auth.RolePhysio} {
		identity := auth.Identity{Login: "staff", Role: role, SubjectID: uuid.New()}
		if err, _ := getAs(t, h.Get, "/records/"+rec.ID.String(), "/records/:id", identity, rec.ID); err != nil {
			t.Errorf("role %s denied: %v", role, err)
		}
	}
}

func TestAppointmentsByPatientSelfAccess(t *testing.T) {
	f := newFixture(t)
	f.openRecord(t)
	h := NewHandler(f.svc, auth.NewTokenService("test-secret"))

	// A patient listing someone else's appointments is rejected before any
	// lookup happens.
	other := auth.Identity{Login: "otro", Role: auth.RolePatient, SubjectID: uuid.New()}
	err, _ := getAs(t, h.AppointmentsByPatient, "/records/appointments/patients/x", "/records/appointments/patients/:id", other, f.patientID)
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("err = %v, want forbidden", err)
	}

	self := auth.Identity{Login: "maria", Role: auth.RolePatient, SubjectID: f.patientID}
	err, w := getAs(t, h.AppointmentsByPatient, "/records/appointments/patients/x", "/records/appointments/patients/:id", self, f.patientID)
	if err != nil {
		t.Fatalf("self access: %v", err)
	}
	if w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
}

func TestAppointmentsInvalidFilter(t *testing.T) {
	f := newFixture(t)
	f.openRecord(t)
	h := NewHandler(f.svc, auth.NewTokenService("test-secret"))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/records/appointments?filter=yesterday", nil)
	req = req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{Role: auth.RoleAdmin}))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Appointments(c)
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("err = %v, want validation", err)
	}
}

func TestGetRecordBadID(t *testing.T) {
	f := newFixture(t)
	h := NewHandler(f.svc, auth.NewTokenService("test-secret"))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/records/not-a-uuid", nil)
	req = req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{Role: auth.RoleAdmin}))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	if err := h.Get(c); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}
