package auth

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/riverhouse-belgrade/riverhouse/internal/domain"
	"github.com/riverhouse-belgrade/riverhouse/internal/store"
)

const (
	CookieName = "admin_token"
	SessionTTL = 7 * 24 * time.Hour
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNoSecret           = errors.New("session secret is not configured")
)

// Claims carried by the session token. Subject holds the operator id.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

// Credentials is the operator lookup the session manager depends on
type Credentials interface {
	GetByUsername(ctx context.Context, username string) (*domain.SysOpr, error)
	Create(ctx context.Context, opr *domain.SysOpr) error
	TouchLogin(ctx context.Context, id int64) error
}

// Bootstrap credentials used to provision the first operator on login
type Bootstrap struct {
	Username string
	Password string
}

func (b Bootstrap) configured() bool {
	return b.Username != "" && b.Password != ""
}

// SessionManager issues and verifies stateless signed session tokens
type SessionManager struct {
	creds     Credentials
	secret    []byte
	ttl       time.Duration
	bootstrap Bootstrap
	now       func() time.Time
}

func NewSessionManager(creds Credentials, secret string, bootstrap Bootstrap) *SessionManager {
	return &SessionManager{
		creds:     creds,
		secret:    []byte(secret),
		ttl:       SessionTTL,
		bootstrap: bootstrap,
		now:       time.Now,
	}
}

var (
	dummyHash     []byte
	dummyHashOnce sync.Once
)

// burnCompare spends the same bcrypt effort as a real comparison
func burnCompare(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("riverhouse-placeholder"), bcrypt.DefaultCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Issue checks the credentials and signs a session token. Unknown users and
// wrong passwords both yield ErrInvalidCredentials.
func (m *SessionManager) Issue(ctx context.Context, username, password string) (string, *domain.SysOpr, error) {
	if len(m.secret) == 0 {
		return "", nil, ErrNoSecret
	}
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		burnCompare(password)
		return "", nil, ErrInvalidCredentials
	}

	opr, err := m.lookup(ctx, username)
	if err != nil {
		return "", nil, err
	}
	if opr == nil || opr.Status == domain.OprStatusDisabled {
		burnCompare(password)
		return "", nil, ErrInvalidCredentials
	}
	if !CheckPassword(opr.Password, password) {
		return "", nil, ErrInvalidCredentials
	}

	if err := m.creds.TouchLogin(ctx, opr.ID); err != nil {
		zap.L().Warn("update operator last login failed", zap.String("username", opr.Username), zap.Error(err))
	}

	token, err := m.sign(opr)
	if err != nil {
		return "", nil, err
	}
	return token, opr, nil
}

// lookup finds the operator, provisioning the bootstrap account when the
// store has no record for the bootstrap username. A nil operator means unknown.
func (m *SessionManager) lookup(ctx context.Context, username string) (*domain.SysOpr, error) {
	opr, err := m.creds.GetByUsername(ctx, username)
	if err == nil {
		return opr, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if !m.bootstrap.configured() ||
		subtle.ConstantTimeCompare([]byte(username), []byte(m.bootstrap.Username)) != 1 {
		return nil, nil
	}

	hash, err := HashPassword(m.bootstrap.Password)
	if err != nil {
		return nil, err
	}
	opr = &domain.SysOpr{Username: username, Password: hash, Status: domain.OprStatusEnabled}
	if err := m.creds.Create(ctx, opr); err != nil {
		// another login may have provisioned it concurrently
		existing, getErr := m.creds.GetByUsername(ctx, username)
		if getErr != nil {
			return nil, err
		}
		return existing, nil
	}
	zap.L().Info("initialized bootstrap operator account", zap.String("username", username))
	return opr, nil
}

func (m *SessionManager) sign(opr *domain.SysOpr) (string, error) {
	now := m.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(opr.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		Username: opr.Username,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign session token")
	}
	return token, nil
}

// Verify checks signature and expiry. Every failure, including a missing
// secret, is reported as ErrUnauthorized.
func (m *SessionManager) Verify(token string) (*Claims, error) {
	if len(m.secret) == 0 || token == "" {
		return nil, ErrUnauthorized
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, errors.Wrap(ErrUnauthorized, err.Error())
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, ErrUnauthorized
	}
	return claims, nil
}

// Cookie wraps a token into the session cookie
func (m *SessionManager) Cookie(token string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		Expires:  m.now().Add(m.ttl),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearCookie expires the session cookie on the client
func ClearCookie(secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
