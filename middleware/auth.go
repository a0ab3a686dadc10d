package middleware

import (
	"net/http"
	"strings"

	"fixline/utils"

	"github.com/gin-gonic/gin"
)

// Context keys set by the auth middleware.
const (
	CtxCallerID   = "callerID"
	CtxCallerRole = "callerRole"
)

// JWTAuthMiddleware extracts the opaque caller identity from the bearer token
// and rejects requests whose role is not in allowedRoles. Token issuance is
// out of scope here; any valid token from the identity service works.
func JWTAuthMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Insufficient authorization",
			})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		callerID, role, err := utils.ExtractIdentityFromToken(tokenString)
		if err != nil || callerID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Insufficient authorization",
			})
			return
		}

		if len(allowedRoles) > 0 && !roleAllowed(role, allowedRoles) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Access denied for role",
			})
			return
		}

		c.Set(CtxCallerID, callerID)
		c.Set(CtxCallerRole, role)
		c.Next()
	}
}

func roleAllowed(role string, allowed []string) bool {
	for _, a := range allowed {
		if a == role {
			return true
		}
	}
	return false
}

// CallerID returns the authenticated caller id set by JWTAuthMiddleware.
func CallerID(c *gin.Context) string {
	return c.GetString(CtxCallerID)
}
