package handlers

import (
	"github.com/gin-gonic/gin"
	"navcron/internal/app/infrastructure/config"
	"net/http"
	"strings"
)

type logLevelRequest struct {
	Level string `json:"level" binding:"required"`
}

// LogLevelHandler switches the log level of the running process and saves
// it to config.json so it survives a restart.
func (h *Handlers) LogLevelHandler(c *gin.Context) {
	var req logLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	level := strings.ToLower(strings.TrimSpace(req.Level))

	if err := h.manager.Update(func(cfg *config.Config) {
		cfg.App.LogLevel = level
	}); err != nil {
		h.log.Warn("Log level change rejected", "level", level, "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.log.SetLogLevel(level)
	h.log.Info("Log level changed", "level", level)
	c.JSON(http.StatusOK, gin.H{"level": h.log.GetLogLevel()})
}
