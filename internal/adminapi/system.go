package adminapi

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/riverhouse-belgrade/riverhouse/internal/app"
	"github.com/riverhouse-belgrade/riverhouse/internal/domain"
	"github.com/riverhouse-belgrade/riverhouse/internal/store"
	"github.com/riverhouse-belgrade/riverhouse/internal/webserver"
)

type statusResponse struct {
	app.SystemStatus
	MediaProvider string           `json:"mediaProvider"`
	Counts        map[string]int64 `json:"counts"`
}

func registerSystemRoutes() {
	webserver.ApiGET("/health", Health)
	webserver.ApiGET("/admin/status", SystemStatus, sessionRequired())
	webserver.ApiGET("/admin/logs", ListOperatorLogs, sessionRequired())
}

// Health reports liveness and database reachability
// @Summary health check
// @Tags System
// @Success 200 {object} map[string]string
// @Router /api/health [get]
func Health(c echo.Context) error {
	dbStatus := "ok"
	sqlDB, err := GetDB(c).DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request().Context())
	}
	if err != nil {
		zap.L().Warn("health check database ping failed", zap.Error(err))
		dbStatus = "error"
	}
	return ok(c, map[string]string{"status": "ok", "db": dbStatus})
}

// SystemStatus process and host usage plus record counts
func SystemStatus(c echo.Context) error {
	appCtx := GetAppContext(c)
	db := GetDB(c).WithContext(c.Request().Context())

	queries := map[string]*gorm.DB{
		"categories":     db.Model(&domain.GalleryCategory{}),
		"reviews":        db.Model(&domain.Review{}),
		"pendingReviews": db.Model(&domain.Review{}).Where("approved = ?", false),
		"registrations":  db.Model(&domain.Registration{}),
		"failedEmails":   db.Model(&domain.MailOutbox{}).Where("status = ?", domain.MailStatusFailed),
	}
	counts := make(map[string]int64, len(queries))
	for name, q := range queries {
		var n int64
		if err := q.Count(&n).Error; err != nil {
			return failErr(c, err, "query status")
		}
		counts[name] = n
	}

	resp := statusResponse{SystemStatus: appCtx.SystemStatus(), Counts: counts}
	if gw := appCtx.Media(); gw != nil {
		resp.MediaProvider = gw.Name()
	}
	return ok(c, resp)
}

// ListOperatorLogs pages through the operator action log
func ListOperatorLogs(c echo.Context) error {
	page, pageSize := parsePagination(c)
	items, total, err := store.NewOperatorStore(GetDB(c)).ListLogs(c.Request().Context(), page, pageSize)
	if err != nil {
		return failErr(c, err, "query operator logs")
	}
	if items == nil {
		items = []domain.SysOprLog{}
	}
	return paged(c, items, total, page, pageSize)
}
