package config

import "time"

// Application constants
const (
	AppName    = "confgate"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces the process knobs that are not part of the schema.
	EnvPrefix = "CONFGATE"
)

// Schema keys read from the environment
const (
	KeyPort              = "PORT"
	KeyLogLevel          = "LOG_LEVEL"
	KeyDatabaseURL       = "DATABASE_URL"
	KeyOtherAPIURL       = "OTHER_API_URL"
	KeyAdminClientID     = "ADMIN_CLIENT_ID"
	KeyAdminClientSecret = "ADMIN_CLIENT_SECRET"
	KeyFeatureFlipping   = "FEATURE_FLIPPING"
)

// Log levels accepted by LOG_LEVEL, most severe first
var LogLevels = []string{"fatal", "error", "warn", "info", "debug", "trace"}

// Defaults
const (
	DefaultLogLevel    = "debug"
	DefaultOtherAPIURL = "https://url.com"

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultReadyTimeout    = 5 * time.Second
)

// Endpoints
const (
	APIBasePath     = "/api"
	HealthEndpoint  = "/api/health"
	ReadyEndpoint   = "/api/health/ready"
	SchemaEndpoint  = "/api/config/schema"
	MetricsEndpoint = "/metrics"
)

// SecretKeys lists keys whose values must never be printed.
var SecretKeys = map[string]bool{
	KeyAdminClientSecret: true,
	KeyDatabaseURL:       true,
}
