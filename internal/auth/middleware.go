package auth

import (
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

const ContextKey = "admin_session"

// Middleware rejects requests without a valid session cookie through onError
func (m *SessionManager) Middleware(onError func(c echo.Context, err error) error) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		TokenLookup: "cookie:" + CookieName,
		ContextKey:  ContextKey,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return m.Verify(token)
		},
		ErrorHandler: onError,
	})
}

// FromContext returns the claims stored by Middleware
func FromContext(c echo.Context) (*Claims, bool) {
	claims, ok := c.Get(ContextKey).(*Claims)
	return claims, ok && claims != nil
}

// Optional verifies the session cookie if one is present, for public routes
// whose output widens for operators.
func (m *SessionManager) Optional(c echo.Context) (*Claims, bool) {
	if claims, ok := FromContext(c); ok {
		return claims, true
	}
	cookie, err := c.Cookie(CookieName)
	if err != nil {
		return nil, false
	}
	claims, err := m.Verify(cookie.Value)
	if err != nil {
		return nil, false
	}
	return claims, true
}
