package physio

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/HectorRP3/PhysioCareApi/internal/platform/apperr"
	"github.com/HectorRP3/PhysioCareApi/internal/platform/auth"
)

func newTestHandler(t *testing.T) (*Handler, *Service) {
	t.Helper()
	svc := NewService(newMockRepo(), &mockPurger{}, zerolog.Nop())
	return NewHandler(svc, auth.NewTokenService("test-secret")), svc
}

func seedPhysio(t *testing.T, svc *Service, license string, userID *uuid.UUID) *Physio {
	t.Helper()
	p := validPhysio()
	p.LicenseNumber = license
	p.UserID = userID
	out, err := svc.Create(context.Background(), p)
	if err != nil {
		t.Fatalf("seed physio: %v", err)
	}
	return out
}

func requestAs(t *testing.T, identity auth.Identity, paramID string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(auth.WithIdentity(req.Context(), identity))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if paramID != "" {
		c.SetParamNames("id")
		c.SetParamValues(paramID)
	}
	return c, rec
}

func TestMeResolvesTokenSubject(t *testing.T) {
	h, svc := newTestHandler(t)
	p := seedPhysio(t, svc, "LIC11111", nil)

	identity := auth.Identity{Login: "ana", Role: auth.RolePhysio, SubjectID: p.ID}
	c, rec := requestAs(t, identity, "")
	if err := h.Me(c); err != nil {
		t.Fatalf("Me: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), p.ID.String()) {
		t.Errorf("body does not carry own profile: %s", rec.Body.String())
	}
}

func TestMeDeletedProfile(t *testing.T) {
	h, _ := newTestHandler(t)

	// Valid token whose subject no longer resolves to a profile.
	identity := auth.Identity{Login: "ana", Role: auth.RolePhysio, SubjectID: uuid.New()}
	c, _ := requestAs(t, identity, "")
	if err := h.Me(c); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestGetByUserResolvesLinkedProfile(t *testing.T) {
	h, svc := newTestHandler(t)
	userID := uuid.New()
	p := seedPhysio(t, svc, "LIC22222", &userID)

	identity := auth.Identity{Login: "admin", Role: auth.RoleAdmin}
	c, rec := requestAs(t, identity, userID.String())
	if err := h.GetByUser(c); err != nil {
		t.Fatalf("GetByUser: %v", err)
	}
	if !strings.Contains(rec.Body.String(), p.ID.String()) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestGetByUserUnlinkedUser(t *testing.T) {
	h, svc := newTestHandler(t)
	seedPhysio(t, svc, "LIC33333", nil)

	identity := auth.Identity{Login: "admin", Role: auth.RoleAdmin}
	c, _ := requestAs(t, identity, uuid.New().String())
	if err := h.GetByUser(c); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestGetByUserMalformedID(t *testing.T) {
	h, _ := newTestHandler(t)

	identity := auth.Identity{Login: "admin", Role: auth.RoleAdmin}
	c, _ := requestAs(t, identity, "not-a-uuid")
	err := h.GetByUser(c)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
	if msg := apperr.Message(err); msg != "No se ha encontrado el fisioterapeuta" {
		t.Errorf("message = %q", msg)
	}
}
