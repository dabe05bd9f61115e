package record

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

	// Appointment sub-resource. Registered before /:id so the static
	// segment wins the route match.
	g.GET("/appointments", h.Appointments, staff)
	g.GET("/appointments/patients/:id", h.AppointmentsByPatient, any)
	g.GET("/appointments/physio/:id", h.AppointmentsByPhysio, staff)
	g.GET("/appointments/:id", h.GetAppointment, staff)
	g.POST("/appointments/:recordId", h.AddAppointment, staff)
	g.PUT("/appointments/:id", h.UpdateAppointment, staff)
	g.DELETE("/appointments/:id", h.DeleteAppointment, staff)

	g.GET("/:id", h.Get, any)
	g.GET("/:id/appointments", h.AppointmentsByRecord, staff)
	g.POST("", h.Create, staff)
	g.PUT("/:id", h.Update, staff)
	g.DELETE("/:id", h.Delete, staff)
}

func parseID(c echo.Context, param, msg string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		return uuid.Nil, apperr.E(apperr.ErrNotFound, msg)
	}
	return id, nil
}

func parseFilterParam(c echo.Context) (Filter, error) {
	return ParseFilter(c.QueryParam("filter"))
}

func (h *Handler) List(c echo.Context) error {
	out, err := h.svc.List(c.Request().Context())
	if err != nil {
		return err
	}
	return httpx.OK(c, out)
}

func (h *Handler) Find(c echo.Context) error {
	out, err := h.svc.FindBySurname(c.Request().Context(), c.QueryParam("surname"))
	if err != nil {
		return err
	}
	return httpx.OK(c, out)
}

// Get returns one record. Patients may only fetch the record they own.
func (h *Handler) Get(c echo.Context) error {
	id, err := parseID(c, "id", "Record not found")
	if err != nil {
		return err
	}
	rec, err := h.svc.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	identity, _ := auth.IdentityFromContext(c.Request().Context())
	if identity.Role == auth.RolePatient && identity.SubjectID != rec.PatientID {
		return apperr.E(apperr.ErrForbidden, "Only the patient can see his/her own data")
	}
	return httpx.OK(c, rec)
}

type recordRequest struct {
	Patient       uuid.UUID     `json:"patient"`
	MedicalRecord string        `json:"medicalRecord"`
	Appointments  []Appointment `json:"appointments"`
}

func (h *Handler) Create(c echo.Context) error {
	var req recordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rec := &Record{
		PatientID:     req.Patient,
		MedicalRecord: req.MedicalRecord,
		Appointments:  req.Appointments,
	}
	out, err := h.svc.Create(c.Request().Context(), rec)
	if err != nil {
		return err
	}
	return httpx.OK(c, out)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := parseID(c, "id", "Record not found")
	if err != nil {
		return err
	}
	var req recordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	out, err := h.svc.UpdateMedicalRecord(c.Request().Context(), id, req.MedicalRecord)
	if err != nil {
		return err
	}
	return httpx.OK(c, out)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := parseID(c, "id", "Record not found")
	if err != nil {
		return err
	}
	out, err := h.svc.Delete(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return httpx.OK(c, out)
}

func (h *Handler) Appointments(c echo.Context) error {
	f, err := parseFilterParam(c)
	if err != nil {
		return err
	}
	out, err := h.svc.Appointments(c.Request().Context(), f)
	if err != nil {
		return err
	}
	return httpx.OK(c, out)
}

func (h *Handler) AppointmentsByRecord(c echo.Context) error {
	id, err := parseID(c, "id", "Record not found")
	if err != nil {
		return err
	}
	f, err := parseFilterParam(c)
	if err != nil {
		return err
	}
	out, err := h.svc.AppointmentsByRecord(c.Request().Context(), id, f)
	if err != nil {
		return err
	}
	return httpx.OK(c, out)
}

// AppointmentsByPatient lists a patient's appointments. Patients may only
// list their own.
func (h *Handler) AppointmentsByPatient(c echo.Context) error {
	id, err := parseID(c, "id", "No existe paciente con ese id")
	if err != nil {
		return err
	}
	identity, _ := auth.IdentityFromContext(c.Request().Context())
	if identity.Role == auth.RolePatient && identity.SubjectID != id {
		return apperr.E(apperr.ErrForbidden, "Only the patient can see his/her own data")
	}
	f, err := parseFilterParam(c)
	if err != nil {
		return err
	}
	out, err := h.svc.AppointmentsByPatient(c.Request().Context(), id, f)
	if err != nil {
		return err
	}
	return httpx.OK(c, out)
}

func (h *Handler) AppointmentsByPhysio(c echo.Context) error {
	id, err := parseID(c, "id", "No existe physio con ese id")
	if err != nil {
		return err
	}
	f, err := parseFilterParam(c)
	if err != nil {
		return err
	}
	out, err := h.svc.AppointmentsByPhysio(c.Request().Context(), id, f)
	if err != nil {
		return err
	}
	return httpx.OK(c, out)
}

func (h *Handler) GetAppointment(c echo.Context) error {
	id, err := parseID(c, "id", "No existe appointment con ese id")
	if err != nil {
		return err
	}
	out, err := h.svc.GetAppointment(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return httpx.OK(c, out)
}

type appointmentRequest struct {
	Date         string    `json:"date"`
	Physio       uuid.UUID `json:"physio"`
	Diagnosis    string    `json:"diagnosis"`
	Treatment    string    `json:"treatment"`
	Observations string    `json:"observations"`
	Status       Status    `json:"status"`
}

func (req *appointmentRequest) toModel() (*Appointment, error) {
	a := &Appointment{
		PhysioID:     req.Physio,
		Diagnosis:    req.Diagnosis,
		Treatment:    req.Treatment,
		Observations: req.Observations,
		Status:       req.Status,
	}
	if req.Date != "" {
		t, err := time.Parse(time.RFC3339, req.Date)
		if err != nil {
			t, err = time.Parse("2006-01-02", req.Date)
		}
		if err != nil {
			return nil, apperr.E(apperr.ErrValidation, "La fecha de la cita no es válida")
		}
		a.Date = t
	}
	return a, nil
}

func (h *Handler) AddAppointment(c echo.Context) error {
	recordID, err := parseID(c, "recordId", "Record not found")
	if err != nil {
		return err
	}
	var req appointmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	app, err := req.toModel()
	if err != nil {
		return err
	}
	out, err := h.svc.AddAppointment(c.Request().Context(), recordID, app)
	if err != nil {
		return err
	}
	return httpx.OK(c, out)
}

func (h *Handler) UpdateAppointment(c echo.Context) error {
	id, err := parseID(c, "id", "No existe appointment con ese id")
	if err != nil {
		return err
	}
	var req appointmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	app, err := req.toModel()
	if err != nil {
		return err
	}
	out, err := h.svc.UpdateAppointment(c.Request().Context(), id, app)
	if err != nil {
		return err
	}
	return httpx.OK(c, out)
}

func (h *Handler) DeleteAppointment(c echo.Context) error {
	id, err := parseID(c, "id", "No existe appointment con ese id")
	if err != nil {
		return err
	}
	out, err := h.svc.DeleteAppointment(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return httpx.OK(c, out)
}
