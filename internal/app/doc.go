// Package app wires the configuration service, logging, telemetry and the
// HTTP server together and manages their lifecycle.
//
// # Initialization Flow
//
//  1. Load CONFGATE_* process settings with envconfig
//  2. Resolve LOG_LEVEL and initialize the logger
//  3. Initialize OpenTelemetry tracing and Prometheus metrics
//  4. Resolve every schema key once, recording the outcome per key
//  5. Build the router, middleware and HTTP server
//
// An invalid value for any schema key stops step 4 with an AppError of type
// CONFIG that lists every offending key. Keys that are required but absent
// do not stop startup; they fail GET /api/health/ready instead.
//
// # Usage
//
//	application, err := app.NewApplication(config.NewEnvService())
//	if err != nil {
//	    return err
//	}
//	return application.Run(ctx)
//
// # Graceful Shutdown
//
// Run returns after SIGINT, SIGTERM or cancellation of its context. Active
// requests get ShutdownTimeout to complete before telemetry is flushed.
package app
