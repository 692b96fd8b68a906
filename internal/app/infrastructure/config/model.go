package config

import "time"

type Config struct {
	App    App    `json:"app"`
	Bridge Bridge `json:"bridge"`
	Audit  Audit  `json:"audit"`
}

type App struct {
	LogLevel string `json:"log_level"`
	LogFile  string `json:"log_file"`
	GinMode  string `json:"gin_mode"`
	// Toolkit names the active GUI toolkit: GTK, QML or qt5.
	Toolkit   string `json:"toolkit"`
	HTTPAddr  string `json:"http_addr"`
	AuthToken string `json:"auth_token"`
}

type Bridge struct {
	QueueSize    int           `json:"queue_size"`
	WriteTimeout time.Duration `json:"write_timeout"`
	PingPeriod   time.Duration `json:"ping_period"`
	// LocalOnly rejects UI runtimes connecting from anything but loopback.
	LocalOnly bool `json:"local_only"`
}

type Audit struct {
	Enabled bool `json:"enabled"`
	// FiresPerMinute is the budget a single caller may spend across all of
	// its timers before it is reported as runaway.
	FiresPerMinute int           `json:"fires_per_minute"`
	Burst          int           `json:"burst"`
	IdleExpiry     time.Duration `json:"idle_expiry"`
	ReportInterval time.Duration `json:"report_interval"`
	MaxCallers     int           `json:"max_callers"`
}
