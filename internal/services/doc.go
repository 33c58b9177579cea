// Package services implements the logic behind confgate's HTTP handlers and
// CLI commands. Services wrap a *config.Service and never expose raw values
// of secret keys.
//
// HealthService answers liveness and readiness. Readiness resolves the
// required keys through config.RequireAll so one request reports every
// missing or invalid key at once.
//
// ConfigService describes the schema and reports the resolution state of
// each key:
//
//	svc := services.NewConfigService(cfg, logger)
//	for _, report := range svc.Check(ctx, keys, required, true) {
//	    fmt.Println(report.Key, report.State)
//	}
package services
