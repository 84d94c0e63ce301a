// Package auth issues and verifies the signed session tokens that carry a
// user's identity between requests.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"daylog/internal/domain"
)

// ErrMissingToken is returned when no session token was presented.
var ErrMissingToken = errors.New("missing session token")

// ErrInvalidToken wraps parsing/validation errors.
var ErrInvalidToken = errors.New("invalid session token")

type Config struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// Claims is the identity recovered from a valid token.
type Claims struct {
	UserID    int64
	Username  string
	ExpiresAt time.Time
}

// Viewer converts the claims into the per-request viewer.
func (c *Claims) Viewer() domain.Viewer {
	if c == nil {
		return domain.Anonymous()
	}
	return domain.AuthenticatedViewer(c.UserID)
}

type sessionClaims struct {
	Username string `json:"usr"`
	jwt.RegisteredClaims
}

// Manager signs tokens with HS256.
type Manager struct {
	cfg Config
	now func() time.Time
}

func NewManager(cfg Config) *Manager {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "daylog"
	}
	return &Manager{cfg: cfg, now: time.Now}
}

func (m *Manager) TTL() time.Duration {
	return m.cfg.TTL
}

// Issue signs a token for user and returns it together with its expiry.
func (m *Manager) Issue(user *domain.User) (string, time.Time, error) {
	if user == nil || user.ID <= 0 {
		return "", time.Time{}, fmt.Errorf("issue token: user id is required")
	}
	now := m.now()
	expires := now.Add(m.cfg.TTL)

	claims := sessionClaims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			Issuer:    m.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.cfg.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

// Parse validates token and returns its claims.
func (m *Manager) Parse(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}

	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(m.cfg.Secret), nil
	},
		jwt.WithIssuer(m.cfg.Issuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}

	return &Claims{
		UserID:    userID,
		Username:  claims.Username,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
