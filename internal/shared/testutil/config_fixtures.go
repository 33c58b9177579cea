package testutil

import (
	"confgate/internal/config"
)

// Secret values used by fixtures. Tests assert they never appear in output.
const (
	FixtureDatabaseURL  = "postgres://app:fixture-db-password@db:5432/app"
	FixtureClientSecret = "fixture-client-secret"
)

// ValidEnvironment returns variables that satisfy every rule in
// config.DefaultRules, including the keys without defaults.
func ValidEnvironment() map[string]string {
	return map[string]string{
		config.KeyPort:              "8080",
		config.KeyLogLevel:          "info",
		config.KeyDatabaseURL:       FixtureDatabaseURL,
		config.KeyOtherAPIURL:       "https://partner.example.com",
		config.KeyAdminClientID:     "admin",
		config.KeyAdminClientSecret: FixtureClientSecret,
		config.KeyFeatureFlipping:   "on",
	}
}

// InvalidEnvironment returns variables that each violate their rule.
func InvalidEnvironment() map[string]string {
	return map[string]string{
		config.KeyPort:            "http",
		config.KeyLogLevel:        "loud",
		config.KeyDatabaseURL:     "mysql://db/app",
		config.KeyOtherAPIURL:     "not a url",
		config.KeyFeatureFlipping: "maybe",
	}
}

// NewTestService builds a service over the default rules and env. The map is
// copied so later changes to env do not leak into the service.
func NewTestService(env map[string]string) *config.Service {
	source := make(config.MapSource, len(env))
	for k, v := range env {
		source[k] = v
	}
	return config.NewService(config.DefaultRegistry(), source)
}

// With returns a copy of env with the given key set to value.
func With(env map[string]string, key, value string) map[string]string {
	out := make(map[string]string, len(env)+1)
	for k, v := range env {
		out[k] = v
	}
	out[key] = value
	return out
}

// Without returns a copy of env with the given keys removed.
func Without(env map[string]string, keys ...string) map[string]string {
	out := make(map[string]string, len(env))
	for k, v := range env {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}
