package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// getClientIP resolves the address rate limiting is keyed by. Gin's ClientIP
// already walks X-Forwarded-For against the engine's trusted proxy list, so it
// is preferred; the header and remote-address fallbacks only matter for
// requests that bypass the engine configuration (tests, raw contexts).
func getClientIP(c *gin.Context) string {
	if ip := c.ClientIP(); ip != "" {
		return ip
	}

	if xri := c.GetHeader("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}
	return host
}
