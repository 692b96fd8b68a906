package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

func (m *Manager) validate(cfg *Config) error {
	// app
	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}
	if cfg.App.LogLevel != "" && !validLevels[cfg.App.LogLevel] {
		return fmt.Errorf("app.log_level must be one of trace, debug, info, warn, error; got %s", cfg.App.LogLevel)
	}

	validModes := map[string]bool{"debug": true, "release": true, "test": true}
	if cfg.App.GinMode != "" && !validModes[cfg.App.GinMode] {
		return fmt.Errorf("app.gin_mode must be one of debug, release, test; got %s", cfg.App.GinMode)
	}

	if strings.TrimSpace(cfg.App.Toolkit) == "" {
		return errors.New("app.toolkit is required")
	}

	if cfg.App.HTTPAddr != "" {
		if _, _, err := net.SplitHostPort(cfg.App.HTTPAddr); err != nil {
			return fmt.Errorf("app.http_addr: %w", err)
		}
	}

	// bridge
	if cfg.Bridge.QueueSize < 1 || cfg.Bridge.QueueSize > 1<<16 {
		return errors.New("bridge.queue_size must be 1..65536")
	}
	if cfg.Bridge.WriteTimeout <= 0 {
		return errors.New("bridge.write_timeout must be > 0")
	}
	if cfg.Bridge.PingPeriod < time.Second {
		return errors.New("bridge.ping_period must be >= 1s")
	}

	// audit
	if !cfg.Audit.Enabled {
		return nil
	}
	if cfg.Audit.FiresPerMinute < 1 {
		return errors.New("audit.fires_per_minute must be >= 1")
	}
	if cfg.Audit.Burst < 1 {
		return errors.New("audit.burst must be >= 1")
	}
	if cfg.Audit.IdleExpiry < time.Second {
		return errors.New("audit.idle_expiry must be >= 1s")
	}
	if cfg.Audit.ReportInterval < time.Second {
		return errors.New("audit.report_interval must be >= 1s")
	}
	if cfg.Audit.MaxCallers < 1 {
		return errors.New("audit.max_callers must be >= 1")
	}

	return nil
}
