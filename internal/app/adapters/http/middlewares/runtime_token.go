package middlewares

import (
	"crypto/subtle"
	"github.com/gin-gonic/gin"
	"net/http"
	"strings"
)

// RuntimeToken admits a UI runtime presenting token either as a bearer
// Authorization header or as the token query parameter. QML and browser
// websocket clients cannot set headers on the upgrade request.
func (m *Middlewares) RuntimeToken(token string) gin.HandlerFunc {
	want := []byte(token)

	return func(c *gin.Context) {
		got, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok {
			got = c.Query("token")
		}

		if got == "" || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "runtime token required"})
			return
		}
		c.Next()
	}
}
