package http

import (
	"context"

	"confgate/internal/config"
	"confgate/internal/services"
	"confgate/pkg/contracts"
)

// HealthChecker is the health service as seen by HealthHandler
type HealthChecker interface {
	HealthCheck(ctx context.Context) services.HealthStatus
	ReadinessCheck(ctx context.Context) (services.HealthStatus, error)
	LivenessCheck(ctx context.Context) services.HealthStatus
	Version() contracts.VersionInfo
}

// ConfigInspector is the config service as seen by ConfigHandler
type ConfigInspector interface {
	Describe() []config.KeyDescription
	DescribeKey(key string) (config.KeyDescription, error)
	Check(ctx context.Context, keys, required []string, withValues bool) []services.KeyReport
}
