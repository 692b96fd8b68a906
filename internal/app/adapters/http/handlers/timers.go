package handlers

import (
	"github.com/gin-gonic/gin"
	"net/http"
	"strings"
)

// TimersHandler lists active timeouts; ?caller= filters by registering
// caller.
func (h *Handlers) TimersHandler(c *gin.Context) {
	timers := h.cron.Timers()

	if caller := strings.TrimSpace(c.Query("caller")); caller != "" {
		filtered := timers[:0]
		for _, t := range timers {
			if t.Caller == caller {
				filtered = append(filtered, t)
			}
		}
		timers = filtered
	}

	c.JSON(http.StatusOK, gin.H{
		"backend": h.cron.Backend(),
		"timers":  timers,
	})
}

func (h *Handlers) AuditHandler(c *gin.Context) {
	if h.auditor == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "audit is disabled"})
		return
	}
	c.JSON(http.StatusOK, h.auditor.Report())
}

func (h *Handlers) BridgeHandler(c *gin.Context) {
	if h.bridge == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "ui bridge is not active for backend " + h.cron.Backend()})
		return
	}
	h.bridge.ServeHTTP(c.Writer, c.Request)
}
