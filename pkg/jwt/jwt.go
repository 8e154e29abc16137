package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Claims represents the signed token payload. The username is the only
// identity the rest of the application trusts.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

// Manager signs and verifies identity tokens.
type Manager struct {
	secret   []byte
	lifetime time.Duration
	issuer   string
}

// NewManager creates a token manager. A zero lifetime means issued tokens
// never expire.
func NewManager(secret string, lifetime time.Duration, issuer string) *Manager {
	return &Manager{
		secret:   []byte(secret),
		lifetime: lifetime,
		issuer:   issuer,
	}
}

// Issue creates a signed token embedding the username.
func (m *Manager) Issue(username string) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   m.issuer,
			Subject:  username,
			IssuedAt: jwt.NewNumericDate(now),
		},
		Username: username,
	}
	if m.lifetime > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(m.lifetime))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify validates a token string and returns its claims.
func (m *Manager) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Username == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
