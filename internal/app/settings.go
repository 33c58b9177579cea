package app

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"confgate/internal/config"
)

// Settings holds the process knobs that live outside the schema. The
// envconfig fields are read from CONFGATE_* variables; the rest are filled
// from schema keys by NewApplication.
type Settings struct {
	Host            string        `envconfig:"HOST" default:""`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	ReadyTimeout    time.Duration `envconfig:"READY_TIMEOUT" default:"5s"`

	RateLimitEnabled bool    `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	RateLimitRPS     float64 `envconfig:"RATE_LIMIT_RPS" default:"100"`
	RateLimitBurst   int     `envconfig:"RATE_LIMIT_BURST" default:"200"`

	// RequiredKeys gate readiness. Their absence does not stop startup.
	RequiredKeys []string `envconfig:"REQUIRED_KEYS" default:"DATABASE_URL,ADMIN_CLIENT_ID,ADMIN_CLIENT_SECRET"`
	RequireHTTPS bool     `envconfig:"REQUIRE_HTTPS" default:"true"`
	IncludeStack bool     `envconfig:"INCLUDE_STACK" default:"false"`

	Port              int    `ignored:"true"`
	OtherAPIURL       string `ignored:"true"`
	AdminClientID     string `ignored:"true"`
	AdminClientSecret string `ignored:"true"`
	FeatureFlipping   bool   `ignored:"true"`
}

// LoadSettings reads the CONFGATE_* process settings from the environment
func LoadSettings() (*Settings, error) {
	var s Settings
	if err := envconfig.Process(config.EnvPrefix, &s); err != nil {
		return nil, fmt.Errorf("failed to load settings from env: %w", err)
	}
	if s.ShutdownTimeout <= 0 {
		s.ShutdownTimeout = config.DefaultShutdownTimeout
	}
	if s.ReadyTimeout <= 0 {
		s.ReadyTimeout = config.DefaultReadyTimeout
	}
	return &s, nil
}

// Addr is the host:port the server binds to. Port 0 picks a free port.
func (s *Settings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
