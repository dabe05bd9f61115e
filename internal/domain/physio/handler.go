package physio

import (
	"net/http"

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
	admin := auth.Protect(h.tokens, auth.RoleAdmin)
	any := auth.Protect(h.tokens, auth.RoleAdmin, auth.RolePhysio, auth.RolePatient)

	g.GET("", h.List, any)
	g.GET("/find", h.Find, any)
	g.GET("/me", h.Me, auth.Protect(h.tokens, auth.RolePhysio))
	g.GET("/user/:id", h.GetByUser, any)
	g.GET("/:id", h.Get, any)
	g.POST("", h.Create, admin)
	g.PUT("/:id", h.Update, admin)
	g.DELETE("/:id", h.Delete, admin)
}

type physioRequest struct {
	Name          string     `json:"name"`
	Surname       string     `json:"surname"`
	Specialty     Specialty  `json:"specialty"`
	LicenseNumber string     `json:"licenseNumber"`
	Email         string     `json:"email"`
	UserID        *uuid.UUID `json:"userID"`
	Avatar        string     `json:"avatar"`
	Rating        int        `json:"rating"`
}

func (req *physioRequest) toModel() *Physio {
	return &Physio{
		Name:          req.Name,
		Surname:       req.Surname,
		Specialty:     req.Specialty,
		LicenseNumber: req.LicenseNumber,
		Email:         req.Email,
		UserID:        req.UserID,
		Avatar:        req.Avatar,
		Rating:        req.Rating,
	}
}

func (h *Handler) List(c echo.Context) error {
	out, err := h.svc.Find(c.Request().Context(), "")
	if err != nil {
		return err
	}
	return httpx.OK(c, out)
}

func (h *Handler) Find(c echo.Context) error {
	out, err := h.svc.Find(c.Request().Context(), c.QueryParam("specialty"))
	if err != nil {
		return err
	}
	return httpx.OK(c, out)
}

// Me returns the calling physio's own profile, resolved from the token
// subject.
func (h *Handler) Me(c echo.Context) error {
	identity, _ := auth.IdentityFromContext(c.Request().Context())
	out, err := h.svc.GetByID(c.Request().Context(), identity.SubjectID)
	if err != nil {
		return err
	}
	return httpx.OK(c, out)
}

func (h *Handler) GetByUser(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.E(apperr.ErrNotFound, "No se ha encontrado el fisioterapeuta")
	}
	out, err := h.svc.GetByUserID(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return httpx.OK(c, out)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.E(apperr.ErrNotFound, "No se ha encontrado el fisioterapeuta")
	}
	out, err := h.svc.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return httpx.OK(c, out)
}

func (h *Handler) Create(c echo.Context) error {
	var req physioRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	out, err := h.svc.Create(c.Request().Context(), req.toModel())
	if err != nil {
		return err
	}
	return httpx.OK(c, out)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.E(apperr.ErrNotFound, "No se ha encontrado el fisioterapeuta")
	}
	var req physioRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p := req.toModel()
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
		return apperr.E(apperr.ErrNotFound, "No se ha encontrado el fisioterapeuta")
	}
	out, err := h.svc.Delete(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return httpx.OK(c, out)
}
