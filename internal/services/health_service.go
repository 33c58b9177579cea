package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"confgate/internal/config"
	"confgate/internal/infrastructure"
	"confgate/pkg/contracts"
)

// HealthService provides health check functionality
type HealthService struct {
	version      string
	config       *config.Service
	required     []string
	readyTimeout time.Duration
	startTime    time.Time
	logger       *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string   `json:"status"`
	Message string   `json:"message,omitempty"`
	Keys    []string `json:"keys,omitempty"`
}

// NewHealthService creates a health service. required lists the keys that
// must resolve before the service reports ready.
func NewHealthService(version string, cfg *config.Service, required []string, readyTimeout time.Duration, logger *slog.Logger) *HealthService {
	if readyTimeout <= 0 {
		readyTimeout = config.DefaultReadyTimeout
	}

	return &HealthService{
		version:      version,
		config:       cfg,
		required:     append([]string(nil), required...),
		readyTimeout: readyTimeout,
		startTime:    time.Now(),
		logger:       infrastructure.WithComponent(logger, "health_service"),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck resolves every required key. It returns the joined
// configuration errors when any key is missing or invalid.
func (hs *HealthService) ReadinessCheck(ctx context.Context) (HealthStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, hs.readyTimeout)
	defer cancel()

	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  make(map[string]interface{}),
	}

	_, err := config.RequireAll(ctx, hs.config, hs.required...)
	if err != nil {
		status.Status = "not_ready"
		status.Services["config"] = ServiceHealth{
			Status:  "not_ready",
			Message: err.Error(),
		}

		hs.logger.WarnContext(ctx, "readiness check failed",
			slog.Int("required_keys", len(hs.required)),
			slog.String("error", err.Error()))

		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return status, err
		}
		return status, fmt.Errorf("%w: %w", ErrNotReady, err)
	}

	status.Services["config"] = ServiceHealth{
		Status: "ready",
		Keys:   append([]string(nil), hs.required...),
	}
	return status, nil
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() contracts.VersionInfo {
	return contracts.GetVersionInfo(config.AppName, hs.version, hs.startTime)
}

// RequiredKeys returns the keys readiness depends on
func (hs *HealthService) RequiredKeys() []string {
	return append([]string(nil), hs.required...)
}
