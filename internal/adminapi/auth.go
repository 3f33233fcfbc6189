package adminapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/riverhouse-belgrade/riverhouse/internal/auth"
	"github.com/riverhouse-belgrade/riverhouse/internal/webserver"
)

type loginPayload struct {
	Username string `json:"username" validate:"required,max=128"`
	Password string `json:"password" validate:"required,max=256"`
}

type sessionResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func registerAuthRoutes() {
	webserver.ApiPOST("/admin/login", Login, webserver.LoginLimit())
	webserver.ApiPOST("/admin/logout", Logout)
	webserver.ApiGET("/admin/session", CurrentSession, sessionRequired())
}

// Login verifies operator credentials and sets the session cookie
// @Summary operator login
// @Tags Admin
// @Param body body loginPayload true "credentials"
// @Success 200 {object} sessionResponse
// @Router /api/admin/login [post]
func Login(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse login parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_INPUT", "Username and password are required", nil)
	}

	appCtx := GetAppContext(c)
	sessions := appCtx.Sessions()
	token, opr, err := sessions.Issue(c.Request().Context(), payload.Username, payload.Password)
	if errors.Is(err, auth.ErrNoSecret) {
		zap.L().Error("admin login attempted without a session secret")
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Login is not configured", nil)
	} else if err != nil {
		return failErr(c, err, "login")
	}

	c.SetCookie(sessions.Cookie(token, appCtx.Config().Web.SecureCookie))

	claims, err := sessions.Verify(token)
	if err != nil {
		return failErr(c, err, "login")
	}
	c.Set(auth.ContextKey, claims)
	logOperation(c, "login", "operator login")

	return ok(c, sessionResponse{
		ID:        claims.Subject,
		Username:  opr.Username,
		ExpiresAt: claims.ExpiresAt.Time,
	})
}

// Logout clears the session cookie. Issued tokens stay valid until expiry.
func Logout(c echo.Context) error {
	c.SetCookie(auth.ClearCookie(GetAppContext(c).Config().Web.SecureCookie))
	return okFlag(c)
}

// CurrentSession returns the operator behind the session cookie
func CurrentSession(c echo.Context) error {
	claims, found := auth.FromContext(c)
	if !found {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
	}
	resp := sessionResponse{ID: claims.Subject, Username: claims.Username}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Time
	}
	return ok(c, resp)
}
