// Package pipeline wires discovery, parsing, graph construction,
// resolution, and emission into the five-stage run the CLI commands
// drive. It is the one place that owns an afero.Fs end to end
// and instruments each stage with telemetry.
package pipeline
