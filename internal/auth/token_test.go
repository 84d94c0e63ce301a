package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"daylog/internal/domain"
)

func TestIssueAndParse(t *testing.T) {
	m := NewManager(Config{Secret: "test-secret", TTL: time.Hour})

	token, expires, err := m.Issue(&domain.User{ID: 42, Username: "alice"})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	require.Equal(t, int64(42), claims.UserID)
	require.Equal(t, "alice", claims.Username)
	require.WithinDuration(t, expires, claims.ExpiresAt, time.Second)
	require.Equal(t, domain.AuthenticatedViewer(42), claims.Viewer())
}

func TestParseRejects(t *testing.T) {
	m := NewManager(Config{Secret: "test-secret"})
	valid, _, err := m.Issue(&domain.User{ID: 1, Username: "alice"})
	require.NoError(t, err)

	expiredManager := NewManager(Config{Secret: "test-secret", TTL: time.Hour})
	expiredManager.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	expired, _, err := expiredManager.Issue(&domain.User{ID: 1, Username: "alice"})
	require.NoError(t, err)

	otherSecret, _, err := NewManager(Config{Secret: "other-secret"}).Issue(&domain.User{ID: 1})
	require.NoError(t, err)

	otherIssuer, _, err := NewManager(Config{Secret: "test-secret", Issuer: "elsewhere"}).Issue(&domain.User{ID: 1})
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "1",
		Issuer:  "daylog",
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alice",
		Issuer:    "daylog",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "expired", token: expired},
		{name: "wrong secret", token: otherSecret},
		{name: "wrong issuer", token: otherIssuer},
		{name: "missing expiry", token: noExpiry},
		{name: "non numeric subject", token: badSubject},
		{name: "tampered", token: valid + "x"},
		{name: "garbage", token: "not.a.token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Parse(tt.token)
			require.ErrorIs(t, err, ErrInvalidToken)
		})
	}

	_, err = m.Parse("   ")
	require.ErrorIs(t, err, ErrMissingToken)
}

func TestIssueRequiresUser(t *testing.T) {
	m := NewManager(Config{Secret: "test-secret"})

	_, _, err := m.Issue(nil)
	require.Error(t, err)
	_, _, err = m.Issue(&domain.User{Username: "ghost"})
	require.Error(t, err)
}

func TestNilClaimsAreAnonymous(t *testing.T) {
	var claims *Claims
	require.Equal(t, domain.Anonymous(), claims.Viewer())
	require.Equal(t, 24*time.Hour, NewManager(Config{}).TTL())
}
