package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type contextKey string

const userContextKey contextKey = "khancloudUser"

// ContextUser represents the authenticated principal stored in the request context.
type ContextUser struct {
	ID   string
	Role string
}

// Middleware validates bearer tokens and injects the authenticated user.
// It short-circuits with 401 before any downstream handler runs.
func Middleware(tokens *TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := authenticateRequest(c, tokens)
		if err != nil {
			message := "Invalid token"
			if errors.Is(err, ErrMissingToken) {
				message = "No token provided"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": message})
			return
		}

		c.Set(string(userContextKey), ContextUser{
			ID:   claims.SubjectID,
			Role: claims.Role,
		})

		c.Next()
	}
}

// authenticateRequest extracts and verifies the bearer token, reporting
// the failure class through the package sentinels.
func authenticateRequest(c *gin.Context, tokens *TokenService) (Claims, error) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if token == "" {
		return Claims{}, ErrMissingToken
	}
	return tokens.Verify(token)
}

// CurrentUser extracts the authenticated user from the context.
func CurrentUser(c *gin.Context) (ContextUser, bool) {
	value, exists := c.Get(string(userContextKey))
	if !exists {
		return ContextUser{}, false
	}
	user, ok := value.(ContextUser)
	return user, ok
}

func extractBearerToken(header string) string {
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
