package user

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

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
	g.POST("/login", h.Login)
	g.GET("/validarToken", h.ValidateToken)
	g.GET("/logout", h.Logout, auth.Protect(h.tokens, auth.RoleAdmin, auth.RolePhysio, auth.RolePatient))
	g.POST("/register", h.Register, auth.Protect(h.tokens, auth.RoleAdmin))
}

type loginRequest struct {
	Login     string `json:"login"`
	Password  string `json:"password"`
	PushToken string `json:"pushToken"`
	// FirebaseToken is the legacy field name still sent by older mobile
	// clients.
	FirebaseToken string `json:"firebaseToken"`
}

// Login handles POST /auth/login. Failures use the legacy envelope with a
// "resultado" message and status 401, which the mobile clients depend on.
func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]interface{}{"ok": false, "resultado": "Login incorrecto"})
	}
	pushToken := req.PushToken
	if pushToken == "" {
		pushToken = req.FirebaseToken
	}

	res, err := h.svc.Login(c.Request().Context(), req.Login, req.Password, pushToken)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]interface{}{"ok": false, "resultado": "Login incorrecto"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"ok":    true,
		"token": res.Token,
		"rol":   res.Role,
		"id":    res.SubjectID,
	})
}

// ValidateToken handles GET /auth/validarToken: token introspection for
// clients that want to check a stored token before using it.
func (h *Handler) ValidateToken(c echo.Context) error {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return c.JSON(http.StatusUnauthorized, map[string]interface{}{"ok": false, "resultado": "Token no valido"})
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return c.JSON(http.StatusUnauthorized, map[string]interface{}{"ok": false, "resultado": "Token no valido"})
	}
	identity, err := h.tokens.Verify(parts[1])
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]interface{}{"ok": false, "resultado": "Token no valido"})
	}
	return httpx.OK(c, identity)
}

// Logout clears the caller's stored push token.
func (h *Handler) Logout(c echo.Context) error {
	identity, _ := auth.IdentityFromContext(c.Request().Context())
	if err := h.svc.Logout(c.Request().Context(), identity); err != nil {
		return err
	}
	return httpx.OK(c, "logged out")
}

type registerRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
	Rol      string `json:"rol"`
}

// Register handles POST /auth/register (admin only).
func (h *Handler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	u := &User{Login: req.Login, Role: auth.Role(req.Rol)}
	if err := h.svc.Register(c.Request().Context(), u, req.Password); err != nil {
		return err
	}
	return httpx.OK(c, u)
}
