package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/weaveconfig/weaveconfig/pkg/pipeline"
	"github.com/weaveconfig/weaveconfig/pkg/resolver"
	"github.com/weaveconfig/weaveconfig/pkg/telemetry"
	"github.com/weaveconfig/weaveconfig/pkg/wcerror"
)

var (
	sharedTelemetry     *telemetry.Telemetry
	sharedTelemetryOnce sync.Once
	sharedTelemetryErr  error
)

// buildTelemetry assembles a telemetry.Telemetry from global flags:
// configuration drives a constructed component rather than touching
// zerolog/otel globals directly. It is built once per process
// (sync.Once) so `dev`'s rerun loop does not try to bind --metrics-addr
// a second time.
func buildTelemetry() (*telemetry.Telemetry, error) {
	sharedTelemetryOnce.Do(func() {
		cfg := telemetry.DefaultConfig()
		cfg.Logging.Level = logLevel
		cfg.Logging.Format = logFormat
		cfg.Tracing.Enabled = enableTraces
		cfg.Metrics.Enabled = metricsAddr != ""
		cfg.Metrics.ListenAddress = metricsAddr

		t, err := telemetry.NewTelemetry(cfg)
		if err != nil {
			sharedTelemetryErr = fmt.Errorf("build telemetry: %w", err)
			return
		}
		if cfg.Metrics.Enabled {
			go func() {
				if serveErr := t.Metrics.StartMetricsServer(); serveErr != nil {
					log.Warn().Err(serveErr).Msg("metrics server stopped")
				}
			}()
		}
		sharedTelemetry = t
	})
	return sharedTelemetry, sharedTelemetryErr
}

// runPipeline resolves rootPath to an absolute path and runs
// pipeline.Run with the given emit flag, reporting errors in the
// `<path>: <kind>: <message>` format and returning a *pipelineError on
// any non-empty error list so ExitCode maps it to 1.
func runPipeline(ctx context.Context, emit bool) (*pipeline.Result, error) {
	abs, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, &usageError{err: fmt.Errorf("resolve root %q: %w", rootPath, err)}
	}

	t, err := buildTelemetry()
	if err != nil {
		return nil, err
	}

	result, errs := pipeline.Run(ctx, pipeline.Options{
		Fs:        afero.NewOsFs(),
		Root:      abs,
		Emit:      emit,
		Features:  resolver.Features{},
		Telemetry: t,
	})

	if !errs.Empty() {
		reportErrors(errs)
		return nil, &pipelineError{err: errs.Err()}
	}
	return result, nil
}

// reportErrors writes one line per error to stderr in the
// `<path>: <kind>: <message>` format (or JSON lines with --json).
func reportErrors(errs *wcerror.List) {
	if jsonOutput {
		for _, e := range errs.Errors() {
			fmt.Fprintf(os.Stderr, `{"path":%q,"kind":%q,"code":%q,"message":%q}`+"\n",
				e.Path, e.Kind, e.Code, e.Error())
		}
		return
	}
	for _, line := range errs.Lines() {
		fmt.Fprintln(os.Stderr, line)
	}
}
