package middlewares

import (
	"github.com/gin-gonic/gin"
	"net"
	"net/http"
)

// LocalOnly rejects requests that do not come from a loopback address.
func (m *Middlewares) LocalOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
		if err != nil {
			host = c.Request.RemoteAddr
		}

		ip := net.ParseIP(host)
		if ip == nil || !ip.IsLoopback() {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}
