package handlers

import (
	"github.com/gin-gonic/gin"
	"navcron/internal/app/adapters/audit"
	"navcron/internal/app/infrastructure/config"
	"navcron/internal/app/ports"
	"navcron/pkg/logger"
	"net/http"
)

type Handlers struct {
	log     logger.Logger
	manager *config.Manager
	cron    ports.CronPort
	auditor *audit.Auditor
	bridge  http.Handler
}

// New wires the diagnostic handlers. auditor and bridge may be nil when the
// audit is disabled or the toolkit does not use the UI bridge.
func New(log logger.Logger, manager *config.Manager, cron ports.CronPort, auditor *audit.Auditor, bridge http.Handler) *Handlers {
	return &Handlers{
		log:     log,
		manager: manager,
		cron:    cron,
		auditor: auditor,
		bridge:  bridge,
	}
}

func (h *Handlers) IndexHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"backend": h.cron.Backend(),
		"timers":  len(h.cron.Timers()),
	})
}
