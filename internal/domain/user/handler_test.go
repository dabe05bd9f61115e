package user

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/HectorRP3/PhysioCareApi/internal/platform/auth"
)

func postLogin(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.Login(c); err != nil {
		t.Fatalf("Login handler: %v", err)
	}
	return rec
}

func TestLoginHandlerSuccess(t *testing.T) {
	repo := newMockRepo()
	seedUser(t, repo, "hector2", "1234", auth.RoleAdmin)
	svc := newTestService(repo, nil, nil)
	h := NewHandler(svc, auth.NewTokenService("test-secret"))

	rec := postLogin(t, h, `{"login":"hector2","password":"1234"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["ok"] != true {
		t.Errorf("ok = %v", body["ok"])
	}
	if body["token"] == "" || body["token"] == nil {
		t.Error("missing token")
	}
	if body["rol"] != "admin" {
		t.Errorf("rol = %v", body["rol"])
	}
}

func TestLoginHandlerFailureEnvelope(t *testing.T) {
	repo := newMockRepo()
	seedUser(t, repo, "hector2", "1234", auth.RoleAdmin)
	svc := newTestService(repo, nil, nil)
	h := NewHandler(svc, auth.NewTokenService("test-secret"))

	rec := postLogin(t, h, `{"login":"hector2","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// The failure contract uses "resultado", not "error".
	if body["ok"] != false || body["resultado"] != "Login incorrecto" {
		t.Errorf("body = %v", body)
	}
}

func TestLoginHandlerLegacyFirebaseTokenField(t *testing.T) {
	repo := newMockRepo()
	u := seedUser(t, repo, "hector2", "1234", auth.RoleAdmin)
	svc := newTestService(repo, nil, nil)
	h := NewHandler(svc, auth.NewTokenService("test-secret"))

	rec := postLogin(t, h, `{"login":"hector2","password":"1234","firebaseToken":"legacy-tok"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if u.PushToken != "legacy-tok" {
		t.Errorf("push token = %q, want legacy-tok", u.PushToken)
	}
}

func TestValidateTokenHandler(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, nil, nil)
	tokens := auth.NewTokenService("test-secret")
	h := NewHandler(svc, tokens)

	e := echo.New()

	// Valid token.
	token, _ := tokens.Issue("hector2", auth.RoleAdmin, uuid.Nil)
	req := httptest.NewRequest(http.MethodGet, "/auth/validarToken", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	if err := h.ValidateToken(e.NewContext(req, rec)); err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}

	// Missing header.
	req = httptest.NewRequest(http.MethodGet, "/auth/validarToken", nil)
	rec = httptest.NewRecorder()
	if err := h.ValidateToken(e.NewContext(req, rec)); err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
