package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "a1",
		"exp": exp.Unix(),
	}).SignedString([]byte("platform-secret"))
	require.NoError(t, err)
	return tok
}

func TestTokenTTL(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		token string
		want  time.Duration
	}{
		{"opaque token", "not-a-jwt", 24 * time.Hour},
		{"exp before max", signedToken(t, now.Add(2*time.Hour)), 2 * time.Hour},
		{"exp after max", signedToken(t, now.Add(72*time.Hour)), 24 * time.Hour},
		{"already expired", signedToken(t, now.Add(-time.Hour)), time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TokenTTL(tt.token, 24*time.Hour, now))
		})
	}
}
