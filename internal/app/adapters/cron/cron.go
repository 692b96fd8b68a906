// Package cron picks the registry implementation for the active toolkit.
// The choice is made once at startup and lasts for the process lifetime.
package cron

import (
	"navcron/internal/app/adapters/cron/bridge"
	"navcron/internal/app/adapters/cron/glib"
	"navcron/internal/app/adapters/cron/noop"
	"navcron/internal/app/adapters/cron/qtimer"
	"navcron/internal/app/adapters/metrics"
	"navcron/internal/app/domain/timer"
	"navcron/internal/app/ports"
	"navcron/pkg/logger"
	"strings"
)

// Backends carries the native primitives available in this process. Only
// the one matching the toolkit is used.
type Backends struct {
	Sources ports.SourceLoop
	Timers  ports.TimerFactory
	Bridge  ports.BridgeChannel
}

// New returns the registry for toolkit, matched case-insensitively:
// "gtk" uses a source loop, "qml" timer objects and "qt5" the UI bridge.
// Anything else, or a toolkit whose backend is missing, yields the no-op
// registry so callers never need to check for nil.
func New(toolkit string, log logger.Logger, backends Backends, observer timer.Observer) ports.CronPort {
	c := choose(strings.ToLower(strings.TrimSpace(toolkit)), log, backends, observer)
	if c.Backend() == noop.Backend {
		log.Warn("unsupported toolkit, timers are disabled", "toolkit", toolkit)
	} else {
		log.Info("timer backend selected", "toolkit", toolkit, "backend", c.Backend())
	}

	metrics.Backend.WithLabelValues(c.Backend()).Set(1)
	return c
}

func choose(toolkit string, log logger.Logger, backends Backends, observer timer.Observer) ports.CronPort {
	switch toolkit {
	case glib.Backend:
		if backends.Sources != nil {
			return glib.New(logger.NewTagged(log, "backend", glib.Backend), backends.Sources, observer)
		}
	case qtimer.Backend:
		if backends.Timers != nil {
			return qtimer.New(logger.NewTagged(log, "backend", qtimer.Backend), backends.Timers, observer)
		}
	case bridge.Backend:
		if backends.Bridge != nil {
			return bridge.New(logger.NewTagged(log, "backend", bridge.Backend), backends.Bridge, observer)
		}
	}
	return noop.New()
}
