package config

import "time"

func (m *Manager) GetDefault() *Config {
	return &Config{
		App: App{
			LogLevel: "info",
			LogFile:  "logs/navcron.log",
			GinMode:  "release",
			Toolkit:  "GTK",
			HTTPAddr: "127.0.0.1:8089",
		},
		Bridge: Bridge{
			QueueSize:    1024,
			WriteTimeout: 5 * time.Second,
			PingPeriod:   30 * time.Second,
			LocalOnly:    true,
		},
		Audit: Audit{
			Enabled:        true,
			FiresPerMinute: 600,
			Burst:          60,
			IdleExpiry:     10 * time.Minute,
			ReportInterval: time.Minute,
			MaxCallers:     1024,
		},
	}
}
