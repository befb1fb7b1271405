package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dwiyanpr/product-catalog-api/internal/application"
	"github.com/dwiyanpr/product-catalog-api/pkg/response"
)

// Context keys set by Auth on success.
const (
	CtxUserIDKey    = "userID"
	CtxUserNameKey  = "userName"
	CtxUserEmailKey = "userEmail"
)

// BearerToken extracts the bearer credential from the Authorization
// header. Returns "" when absent or malformed.
func BearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Auth resolves the bearer token to a user identity and injects it into
// the Gin context. Handlers behind this middleware can trust
// CtxUserIDKey without re-validating anything.
func Auth(svc *application.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			response.AbortFail(c, http.StatusUnauthorized, "Missing bearer token", nil)
			return
		}
		u, err := svc.ResolveToken(c.Request.Context(), token)
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, "Invalid or expired token", nil)
			return
		}
		c.Set(CtxUserIDKey, u.ID)
		c.Set(CtxUserNameKey, u.Name)
		c.Set(CtxUserEmailKey, u.Email)
		c.Next()
	}
}
