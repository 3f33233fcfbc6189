package adminapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/riverhouse-belgrade/riverhouse/internal/app"
	"github.com/riverhouse-belgrade/riverhouse/internal/auth"
	"github.com/riverhouse-belgrade/riverhouse/internal/media"
	"github.com/riverhouse-belgrade/riverhouse/internal/store"
	"github.com/riverhouse-belgrade/riverhouse/internal/webserver"
)

// ListResponse paged list envelope
type ListResponse struct {
	Data     interface{} `json:"data"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"pageSize"`
}

// Init registers every route on the global web server
func Init() {
	registerAuthRoutes()
	registerSiteConfigRoutes()
	registerCategoryRoutes()
	registerPriceRoutes()
	registerReviewRoutes()
	registerRegistrationRoutes()
	registerMediaRoutes()
	registerPlacesRoutes()
	registerSystemRoutes()
}

func GetAppContext(c echo.Context) app.AppContext {
	return c.Get(webserver.AppCtxKey).(app.AppContext)
}

func GetDB(c echo.Context) *gorm.DB {
	return GetAppContext(c).DB()
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

func okFlag(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

func paged(c echo.Context, items interface{}, total int64, page, pageSize int) error {
	return c.JSON(http.StatusOK, ListResponse{Data: items, Total: total, Page: page, PageSize: pageSize})
}

func fail(c echo.Context, status int, code, message string, detail interface{}) error {
	return c.JSON(status, webserver.ErrorResponse{Error: message, Code: code, Detail: detail})
}

// failErr maps service errors onto the response taxonomy
func failErr(c echo.Context, err error, action string) error {
	switch {
	case errors.Is(err, store.ErrInvalidInput):
		return fail(c, http.StatusBadRequest, "INVALID_INPUT", err.Error(), nil)
	case errors.Is(err, store.ErrNotFound):
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	case errors.Is(err, auth.ErrInvalidCredentials):
		return fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid credentials", nil)
	case errors.Is(err, auth.ErrUnauthorized):
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
	case errors.Is(err, media.ErrInvalidImage), errors.Is(err, media.ErrInvalidName):
		return fail(c, http.StatusBadRequest, "INVALID_INPUT", err.Error(), nil)
	case errors.Is(err, media.ErrUpstream), errors.Is(err, media.ErrNotConfigured):
		zap.L().Error(action, zap.Error(err))
		return fail(c, http.StatusInternalServerError, "UPSTREAM_ERROR", err.Error(), nil)
	default:
		zap.L().Error(action, zap.Error(err))
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to "+action, nil)
	}
}

func handleValidationError(c echo.Context, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[strings.ToLower(fe.Field()[:1])+fe.Field()[1:]] = fe.Tag()
		}
		return fail(c, http.StatusBadRequest, "INVALID_INPUT", "Invalid request parameters", fields)
	}
	return fail(c, http.StatusBadRequest, "INVALID_INPUT", err.Error(), nil)
}

func parsePagination(c echo.Context) (int, int) {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.QueryParam("pageSize"))
	if pageSize < 1 {
		pageSize, _ = strconv.Atoi(c.QueryParam("perPage"))
	}
	if pageSize < 1 || pageSize > 500 {
		pageSize = 20
	}
	return page, pageSize
}

// flexID an id sent either as a JSON string or a JSON number
type flexID int64

func (f *flexID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return errors.Wrap(err, "invalid id")
	}
	*f = flexID(id)
	return nil
}

func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// requestID reads the target id from ?id=, falling back to the body id
func requestID(c echo.Context, body flexID) (int64, bool) {
	if q := c.QueryParam("id"); q != "" {
		return parseID(q)
	}
	if body > 0 {
		return int64(body), true
	}
	return 0, false
}

// logOperation records an operator action; failures are only logged
func logOperation(c echo.Context, action, desc string) {
	name := ""
	if claims, ok := auth.FromContext(c); ok {
		name = claims.Username
	}
	ops := store.NewOperatorStore(GetDB(c))
	if err := ops.AddLog(c.Request().Context(), name, c.RealIP(), action, desc); err != nil {
		zap.L().Warn("write operator log failed", zap.String("action", action), zap.Error(err))
	}
}

func sessionRequired() echo.MiddlewareFunc {
	return webserver.SessionRequired()
}
