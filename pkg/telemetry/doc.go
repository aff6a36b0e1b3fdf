// Package telemetry provides observability instrumentation for weaveconfig.
//
// It integrates structured logging (zerolog), distributed tracing
// (OpenTelemetry), and metrics (Prometheus) into a unified system for
// monitoring weaveconfig's discover/parse/graph/resolve/emit pipeline.
//
// # Usage
//
// Initialize telemetry at application startup:
//
//	cfg := telemetry.DefaultConfig()
//	tel, err := telemetry.NewTelemetry(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tel.Shutdown(context.Background())
//
//	if err := tel.StartMetricsServer(); err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx = tel.WithContext(ctx)
//
// # Structured Logging
//
//	logger := tel.Logger.NewComponentLogger("resolver")
//	logger = logger.WithRunID(runID).WithSpace("services/api")
//	logger.Info("resolving space")
//	logger.WithError(err).Error("resolution failed")
//
// Log levels: trace, debug, info, warn, error, fatal.
//
// # Tracing and Metrics
//
// WithRunContext/EndRunContext bracket a full run; WithStageContext/
// EndStageContext bracket one pipeline stage; WithSpaceContext/
// EndSpaceContext bracket work on a single space. Each pair records a
// trace span; the run and stage pairs also record a metrics observation.
//
// Supported trace exporters: "stdout" (development), "none" (disabled).
package telemetry
