package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

const clientIPKey = "client_ip"

// proxyHeaders are consulted in order before falling back to RemoteAddr.
var proxyHeaders = []string{"X-Real-Ip", "CF-Connecting-IP", "X-Forwarded"}

// AuditMiddleware stores the caller's IP so lifecycle audit entries can
// record it.
func AuditMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(clientIPKey, clientIP(c))
		c.Next()
	}
}

func clientIP(c *gin.Context) string {
	// X-Forwarded-For may hold a chain; the first hop is the client.
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if net.ParseIP(first) != nil {
			return first
		}
	}
	for _, h := range proxyHeaders {
		if v := c.GetHeader(h); v != "" && net.ParseIP(v) != nil {
			return v
		}
	}
	host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}
	return host
}

// GetIPFromContext returns the IP stored by AuditMiddleware, resolving it
// on the spot when the middleware did not run.
func GetIPFromContext(c *gin.Context) string {
	if ip, ok := c.Get(clientIPKey); ok {
		if s, ok := ip.(string); ok {
			return s
		}
	}
	return clientIP(c)
}
