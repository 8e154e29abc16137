package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hzj010427/YACA/pkg/jwt"
	"github.com/hzj010427/YACA/pkg/response"
)

const (
	UsernameKey   = "username"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// AuthMiddleware validates identity tokens.
type AuthMiddleware struct {
	tokens *jwt.Manager
}

// NewAuthMiddleware creates a new auth middleware.
func NewAuthMiddleware(tokens *jwt.Manager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// RequireAuth returns a Gin middleware that rejects requests without a valid
// bearer token and stores the authenticated username in the context.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" || !strings.HasPrefix(authHeader, BearerPrefix) {
			response.Fail(c, response.NewAuthError("MissingToken",
				"A token is missing and is required for authorization"))
			c.Abort()
			return
		}

		claims, err := m.tokens.Verify(strings.TrimPrefix(authHeader, BearerPrefix))
		if err != nil {
			response.Fail(c, response.NewAuthError("InvalidToken", "The token is invalid"))
			c.Abort()
			return
		}

		c.Set(UsernameKey, claims.Username)
		c.Next()
	}
}

// GetUsername extracts the authenticated username from the Gin context.
func GetUsername(c *gin.Context) string {
	if v, exists := c.Get(UsernameKey); exists {
		return v.(string)
	}
	return ""
}

// IdentityMatches reports whether the declared author matches the
// authenticated identity. Requests that mutate state on behalf of an author
// must pass this check.
func IdentityMatches(c *gin.Context, author string) bool {
	return GetUsername(c) == author
}
