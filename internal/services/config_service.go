package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"confgate/internal/config"
	"confgate/internal/infrastructure"
)

// KeyState is the resolution state of one key
type KeyState string

const (
	StateOK      KeyState = "ok"
	StateDefault KeyState = "default"
	StateUnset   KeyState = "unset"
	StateInvalid KeyState = "invalid"
)

// Redacted replaces secret values in reports
const Redacted = "[REDACTED]"

// KeyReport describes how one key resolved
type KeyReport struct {
	Key      string   `json:"key" yaml:"key"`
	Type     string   `json:"type" yaml:"type"`
	State    KeyState `json:"state" yaml:"state"`
	Required bool     `json:"required,omitempty" yaml:"required,omitempty"`
	Reason   string   `json:"reason,omitempty" yaml:"reason,omitempty"`
	Value    string   `json:"value,omitempty" yaml:"value,omitempty"`
}

// Failed reports whether the key blocks a check. Optional unset keys do not.
func (r KeyReport) Failed() bool {
	return r.State == StateInvalid || (r.Required && r.State == StateUnset)
}

// ConfigService exposes the schema and per-key resolution state
type ConfigService struct {
	config *config.Service
	logger *slog.Logger
}

// NewConfigService creates a config service over cfg
func NewConfigService(cfg *config.Service, logger *slog.Logger) *ConfigService {
	return &ConfigService{
		config: cfg,
		logger: infrastructure.WithComponent(logger, "config_service"),
	}
}

// Describe returns the description of every registered key
func (s *ConfigService) Describe() []config.KeyDescription {
	return s.config.Registry().Describe()
}

// DescribeKey returns the description of one registered key
func (s *ConfigService) DescribeKey(key string) (config.KeyDescription, error) {
	for _, d := range s.Describe() {
		if d.Key == key {
			return d, nil
		}
	}
	return config.KeyDescription{}, fmt.Errorf("%s: %w", key, ErrUnknownKey)
}

// Check resolves keys, or every registered key and every required key when
// keys is empty. Keys in required are resolved with Require semantics so an
// absent value fails. Values are included only when withValues is set, and
// secret keys are always redacted.
func (s *ConfigService) Check(ctx context.Context, keys, required []string, withValues bool) []KeyReport {
	if len(keys) == 0 {
		keys = s.config.Registry().Keys()
		for _, key := range required {
			if !slices.Contains(keys, key) {
				keys = append(keys, key)
			}
		}
	}

	reports := make([]KeyReport, 0, len(keys))
	for _, key := range keys {
		report := s.check(ctx, key, slices.Contains(required, key))
		if !withValues {
			report.Value = ""
		}
		reports = append(reports, report)
	}
	return reports
}

func (s *ConfigService) check(ctx context.Context, key string, required bool) KeyReport {
	report := KeyReport{
		Key:      key,
		Type:     s.config.Registry().Lookup(key).Kind.String(),
		Required: required,
	}

	var (
		value any
		err   error
	)
	if required {
		value, err = s.config.Require(key).Await(ctx)
	} else {
		value, err = s.config.Get(key)
	}

	var invalid *config.InvalidConfigurationError
	switch {
	case errors.As(err, &invalid):
		report.State = StateInvalid
		report.Reason = invalid.Cause.Reason
	case config.IsMissing(err), err == nil && value == nil:
		report.State = StateUnset
	case err != nil:
		report.State = StateInvalid
		report.Reason = err.Error()
	case s.config.IsSet(key):
		report.State = StateOK
		report.Value = formatValue(key, value)
	default:
		report.State = StateDefault
		report.Value = formatValue(key, value)
	}

	s.logger.DebugContext(ctx, "key checked",
		slog.String("key", key),
		slog.String("state", string(report.State)),
		slog.Bool("required", required))
	return report
}

func formatValue(key string, value any) string {
	if config.SecretKeys[key] {
		return Redacted
	}
	return fmt.Sprint(value)
}
