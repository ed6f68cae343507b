package pkg

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

const unknownClient = "unknown"

// GetClientIP returns the first parseable address from X-Forwarded-For, then X-Real-IP,
// then the socket. Rate limiting and request metadata key on it.
func GetClientIP(c *gin.Context) string {
	for _, hop := range strings.Split(c.GetHeader("X-Forwarded-For"), ",") {
		if ip := parseIP(hop); ip != "" {
			return ip
		}
	}

	if ip := parseIP(c.GetHeader("X-Real-IP")); ip != "" {
		return ip
	}

	if ip := c.ClientIP(); ip != "" {
		return ip
	}

	return unknownClient
}

func parseIP(value string) string {
	ip := net.ParseIP(strings.TrimSpace(value))

	if ip == nil {
		return ""
	}

	return ip.String()
}
