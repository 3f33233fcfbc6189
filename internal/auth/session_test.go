package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riverhouse-belgrade/riverhouse/internal/domain"
	"github.com/riverhouse-belgrade/riverhouse/internal/store"
)

type memCredentials struct {
	mu      sync.Mutex
	byName  map[string]*domain.SysOpr
	nextID  int64
	touched int
}

func newMemCredentials() *memCredentials {
	return &memCredentials{byName: map[string]*domain.SysOpr{}}
}

func (m *memCredentials) GetByUsername(_ context.Context, username string) (*domain.SysOpr, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	opr, ok := m.byName[username]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *opr
	return &cp, nil
}

func (m *memCredentials) Create(_ context.Context, opr *domain.SysOpr) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	opr.ID = m.nextID
	cp := *opr
	m.byName[opr.Username] = &cp
	return nil
}

func (m *memCredentials) TouchLogin(context.Context, int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touched++
	return nil
}

func TestIssueBootstrapsOperator(t *testing.T) {
	t.Parallel()
	creds := newMemCredentials()
	m := NewSessionManager(creds, "secret", Bootstrap{Username: "admin", Password: "changeme"})

	token, opr, err := m.Issue(context.Background(), "admin", "changeme")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, "admin", opr.Username)

	stored, err := creds.GetByUsername(context.Background(), "admin")
	require.NoError(t, err)
	assert.NotEqual(t, "changeme", stored.Password)
	assert.True(t, CheckPassword(stored.Password, "changeme"))

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, strconv.FormatInt(opr.ID, 10), claims.Subject)
	assert.WithinDuration(t, time.Now().Add(SessionTTL), claims.ExpiresAt.Time, time.Minute)
	assert.Equal(t, 1, creds.touched)
}

func TestIssueBootstrapWrongPassword(t *testing.T) {
	t.Parallel()
	m := NewSessionManager(newMemCredentials(), "secret", Bootstrap{Username: "admin", Password: "changeme"})

	_, _, err := m.Issue(context.Background(), "admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// provisioned account keeps working with the right password
	_, _, err = m.Issue(context.Background(), "admin", "changeme")
	assert.NoError(t, err)
}

func TestIssueNoEnumeration(t *testing.T) {
	t.Parallel()
	creds := newMemCredentials()
	hash, err := HashPassword("correct")
	require.NoError(t, err)
	require.NoError(t, creds.Create(context.Background(), &domain.SysOpr{Username: "ana", Password: hash}))

	m := NewSessionManager(creds, "secret", Bootstrap{})

	_, _, unknownErr := m.Issue(context.Background(), "nobody", "whatever")
	_, _, wrongErr := m.Issue(context.Background(), "ana", "whatever")
	assert.ErrorIs(t, unknownErr, ErrInvalidCredentials)
	assert.ErrorIs(t, wrongErr, ErrInvalidCredentials)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())

	_, err = creds.GetByUsername(context.Background(), "nobody")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestIssueDisabledOperator(t *testing.T) {
	t.Parallel()
	creds := newMemCredentials()
	hash, err := HashPassword("pw")
	require.NoError(t, err)
	require.NoError(t, creds.Create(context.Background(), &domain.SysOpr{
		Username: "old", Password: hash, Status: domain.OprStatusDisabled,
	}))
	m := NewSessionManager(creds, "secret", Bootstrap{})

	_, _, err = m.Issue(context.Background(), "old", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestIssueWithoutSecret(t *testing.T) {
	t.Parallel()
	m := NewSessionManager(newMemCredentials(), "", Bootstrap{Username: "admin", Password: "changeme"})
	_, _, err := m.Issue(context.Background(), "admin", "changeme")
	assert.ErrorIs(t, err, ErrNoSecret)

	_, err = m.Verify("anything")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestVerifyRejects(t *testing.T) {
	t.Parallel()
	creds := newMemCredentials()
	m := NewSessionManager(creds, "secret", Bootstrap{Username: "admin", Password: "changeme"})
	token, _, err := m.Issue(context.Background(), "admin", "changeme")
	require.NoError(t, err)

	other := NewSessionManager(creds, "other-secret", Bootstrap{})
	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = m.Verify("")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = m.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrUnauthorized)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.Verify(unsigned)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestVerifyExpired(t *testing.T) {
	t.Parallel()
	m := NewSessionManager(newMemCredentials(), "secret", Bootstrap{Username: "admin", Password: "changeme"})
	m.now = func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }
	token, _, err := m.Issue(context.Background(), "admin", "changeme")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Verify(token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestCookies(t *testing.T) {
	t.Parallel()
	m := NewSessionManager(newMemCredentials(), "secret", Bootstrap{})
	c := m.Cookie("tok", true)
	assert.Equal(t, CookieName, c.Name)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, int(SessionTTL.Seconds()), c.MaxAge)

	cleared := ClearCookie(false)
	assert.Equal(t, -1, cleared.MaxAge)
	assert.Empty(t, cleared.Value)
}

func TestMiddleware(t *testing.T) {
	t.Parallel()
	m := NewSessionManager(newMemCredentials(), "secret", Bootstrap{Username: "admin", Password: "changeme"})
	token, _, err := m.Issue(context.Background(), "admin", "changeme")
	require.NoError(t, err)

	e := echo.New()
	onError := func(c echo.Context, err error) error {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	e.GET("/private", func(c echo.Context) error {
		claims, ok := FromContext(c)
		require.True(t, ok)
		return c.String(http.StatusOK, claims.Username)
	}, m.Middleware(onError))
	e.GET("/public", func(c echo.Context) error {
		if claims, ok := m.Optional(c); ok {
			return c.String(http.StatusOK, "hello "+claims.Username)
		}
		return c.String(http.StatusOK, "hello guest")
	})

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.AddCookie(m.Cookie(token, false))
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/public", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "garbage"})
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "hello guest", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/public", nil)
	req.AddCookie(m.Cookie(token, false))
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "hello admin", rec.Body.String())
}
