package patient

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/HectorRP3/PhysioCareApi/internal/platform/apperr"
	"github.com/HectorRP3/PhysioCareApi/internal/platform/auth"
	"github.com/HectorRP3/PhysioCareApi/internal/platform/httpx"
)

type Handler struct {
	svc    *Service
	tokens *auth.TokenService
}

func NewHandler(svc *Service, tokens *auth.TokenService) *Handler {
	return &Handler{svc: svc, tokens: tokens}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	staff := auth.Protect(h.tokens, auth.RoleAdmin, auth.RolePhysio)
	any := auth.Protect(h.tokens, auth.RoleAdmin, auth.RolePhysio, auth.RolePatient)

	g.GET("", h.List, staff)
	g.GET("/find", h.Find, staff)
	g.GET("/user/:id", h.GetByUser, any)
	g.GET("/:id", h.Get, any)
	g.POST("", h.Create, staff)
	g.PUT("/:id", h.Update, staff)
	g.DELETE("/:id", h.Delete, staff)
}

type patientRequest struct {
	Name            string     `json:"name"`
	Surname         string     `json:"surname"`
	BirthDate       string     `json:"birthDate"`
	Address         string     `json:"address"`
	InsuranceNumber string     `json:"insuranceNumber"`
	Email           string     `json:"email"`
	UserID          *uuid.UUID `json:"userID"`
	Avatar          string     `json:"avatar"`
	Lat             float64    `json:"lat"`
	Lng             float64    `json:"lng"`
}

// parseDate accepts both plain dates and full timestamps; the web client
// sends the former, the mobile client the latter.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func (req *patientRequest) toModel() (*Patient, error) {
	p := &Patient{
		Name:            req.Name,
		Surname:         req.Surname,
		Address:         req.Address,
		InsuranceNumber: req.InsuranceNumber,
		Email:           req.Email,
		UserID:          req.UserID,
		Avatar:          req.Avatar,
		Lat:             req.Lat,
		Lng:             req.Lng,
	}
	if req.BirthDate != "" {
		t, err := parseDate(req.BirthDate)
		if err != nil {
			return nil, apperr.E(apperr.ErrValidation, "La fecha de nacimiento no es válida")
		}
		p.BirthDate = t
	}
	return p, nil
}

func (h *Handler) List(c echo.Context) error {
	out, err := h.svc.Find(c.Request().Context(), "")
	if err != nil {
		return err
	}
	return httpx.OK(c, out)
}

func (h *Handler) Find(c echo.Context) error {
	out, err := h.svc.Find(c.Request().Context(), c.QueryParam("surname"))
	if err != nil {
		return err
	}
	return httpx.OK(c, out)
}

// Get returns one patient with their appointments. Patients may only fetch
// their own profile.
func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.E(apperr.ErrNotFound, "No se ha encontrado el paciente")
	}
	identity, _ := auth.IdentityFromContext(c.Request().Context())
	if identity.Role == auth.RolePatient && identity.SubjectID != id {
		return apperr.E(apperr.ErrForbidden, "Only the patient can see his/her own data")
	}
	out, err := h.svc.Detail(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return httpx.OK(c, out)
}

// GetByUser resolves a patient profile from a user id. The mobile app uses
// it right after login. Patients may only resolve their own credential.
func (h *Handler) GetByUser(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.E(apperr.ErrNotFound, "No se ha encontrado el paciente")
	}
	p, err := h.svc.GetByUserID(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	identity, _ := auth.IdentityFromContext(c.Request().Context())
	if identity.Role == auth.RolePatient && identity.SubjectID != p.ID {
		return apperr.E(apperr.ErrForbidden, "Only the patient can see his/her own data")
	}
	return httpx.OK(c, p)
}

func (h *Handler) Create(c echo.Context) error {
	var req patientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := req.toModel()
	if err != nil {
		return err
	}
	out, err := h.svc.Create(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return httpx.OK(c, out)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.E(apperr.ErrNotFound, "No se ha encontrado el paciente")
	}
	var req patientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := req.toModel()
	if err != nil {
		return err
	}
	p.ID = id
	out, err := h.svc.Update(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return httpx.OK(c, out)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.E(apperr.ErrNotFound, "No se ha encontrado el paciente")
	}
	out, err := h.svc.Delete(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return httpx.OK(c, out)
}
