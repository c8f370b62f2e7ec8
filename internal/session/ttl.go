package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// minTTL keeps an already-expired token persisted just long enough for the
// next restore to reject it.
const minTTL = time.Second

// TokenTTL returns how long a token should stay persisted: max, shortened to
// the token's exp claim when the token is a JWT. The token is treated as
// opaque otherwise; its signature is never checked here.
func TokenTTL(token string, max time.Duration, now time.Time) time.Duration {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return max
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return max
	}

	ttl := exp.Sub(now)
	if ttl < minTTL {
		return minTTL
	}
	if ttl > max {
		return max
	}
	return ttl
}
