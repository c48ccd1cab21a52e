package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"fleetops/vanlist/internal/constants"
)

// SessionCookie is the cookie browsers carry between page loads. API clients
// use a Bearer header instead; both paths yield the same token.
const SessionCookie = "access_token"

// TokenClaims is the JWT payload: the username in sub plus the role snapshot
// at issue time. The role is re-read from the user row on every request, so a
// stale role claim cannot widen access.
type TokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// CreateAccessToken signs an HS256 token for the user.
func CreateAccessToken(secret, username string, role constants.Role, expiry time.Duration) (string, error) {
	claims := TokenClaims{
		Role: role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseAccessToken validates the signature and expiry and returns the claims.
func ParseAccessToken(secret, tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// ExtractToken pulls the JWT from the session cookie or, failing that, the
// Authorization header.
func ExtractToken(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}
