package webserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"github.com/riverhouse-belgrade/riverhouse/internal/app"
	"github.com/riverhouse-belgrade/riverhouse/internal/media"
)

const (
	ApiPrefix    = "/api"
	AppCtxKey    = "appCtx"
	rateWindow   = time.Minute
	bodyLimit    = "12M"
	readTimeout  = 30 * time.Second
	writeTimeout = 60 * time.Second
)

var server *AdminServer

// AdminServer the echo instance serving the public site API and the admin panel
type AdminServer struct {
	root        *echo.Echo
	api         *echo.Group
	appCtx      app.AppContext
	session     echo.MiddlewareFunc
	loginLimit  echo.MiddlewareFunc
	publicLimit echo.MiddlewareFunc
}

// Init builds the global server. Routes are registered afterwards through
// the Api* helpers.
func Init(appCtx app.AppContext) {
	server = NewAdminServer(appCtx)
}

func NewAdminServer(appCtx app.AppContext) *AdminServer {
	cfg := appCtx.Config()
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetLevel(log.OFF)
	e.JSONSerializer = new(JSONSerializer)
	e.Validator = &CustomValidator{validator: validator.New()}
	e.HTTPErrorHandler = httpErrorHandler
	e.Server.ReadTimeout = readTimeout
	e.Server.WriteTimeout = writeTimeout

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		Skipper: func(c echo.Context) bool {
			return c.Path() == ApiPrefix+"/health"
		},
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			zap.L().Info("request", fields...)
			return nil
		},
	}))
	e.Use(middleware.BodyLimit(bodyLimit))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Web.CorsOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
		AllowCredentials: !allowsAnyOrigin(cfg.Web.CorsOrigins),
	}))
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(AppCtxKey, appCtx)
			return next(c)
		}
	})

	if fs, ok := appCtx.Media().(*media.Filesystem); ok {
		e.Static(fs.URLPrefix(), fs.Root())
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	s := &AdminServer{
		root:        e,
		api:         e.Group(ApiPrefix),
		appCtx:      appCtx,
		loginLimit:  rateLimit(cfg.Web.LoginRate),
		publicLimit: rateLimit(cfg.Web.PublicRate),
	}
	s.session = appCtx.Sessions().Middleware(func(c echo.Context, err error) error {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	})
	return s
}

func allowsAnyOrigin(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return len(origins) == 0
}

// rateLimit limits requests per minute per client IP; n <= 0 disables it
func rateLimit(n int) echo.MiddlewareFunc {
	if n <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	limiter := httprate.Limit(n, rateWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSONCharsetUTF8)
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"Too many requests","code":"RATE_LIMITED"}`))
		}))
	return echo.WrapMiddleware(limiter)
}

// Handler exposes the root handler, mainly for tests
func Handler() http.Handler {
	return server.root
}

// Listen starts serving on the configured address and blocks
func Listen() error {
	cfg := server.appCtx.Config()
	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
	zap.S().Infof("Start web server %s", addr)
	err := server.root.Start(addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests
func Shutdown(ctx context.Context) error {
	if server == nil {
		return nil
	}
	return server.root.Shutdown(ctx)
}

// SessionRequired rejects requests without a valid admin session
func SessionRequired() echo.MiddlewareFunc {
	return server.session
}

// LoginLimit rate limits login attempts per client IP
func LoginLimit() echo.MiddlewareFunc {
	return server.loginLimit
}

// PublicLimit rate limits anonymous writes per client IP
func PublicLimit() echo.MiddlewareFunc {
	return server.publicLimit
}

func ApiGET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.GET(path, h, m...)
}

func ApiPOST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.POST(path, h, m...)
}

func ApiPUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.PUT(path, h, m...)
}

func ApiDELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.DELETE(path, h, m...)
}
