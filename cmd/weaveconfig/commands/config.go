package commands

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// toolConfig is weaveconfig's own optional tool settings, distinct from
// the per-space _space.jsonc/_*.env.jsonc files, which are always
// JSONC regardless of this file's presence. Written by `init` and read
// after cobra parses the command line, to fill any global flag that was
// not set explicitly.
type toolConfig struct {
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	MetricsAddr string `yaml:"metrics_addr"`
	Traces      bool   `yaml:"traces"`
}

const toolConfigFileName = "weaveconfig.yaml"

// loadToolConfig reads weaveconfig.yaml from root, if present. A
// missing file is not an error — defaults already cover every field.
func loadToolConfig(root string) (*toolConfig, error) {
	raw, err := os.ReadFile(filepath.Join(root, toolConfigFileName))
	if os.IsNotExist(err) {
		return &toolConfig{}, nil
	}
	if err != nil {
		return nil, err
	}

	cfg := &toolConfig{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults seeds any unset global flag from cfg, so weaveconfig.yaml
// acts as a default that an explicit CLI flag still overrides. sawFlag
// reports whether a persistent flag was set explicitly on the command
// line (via cmd.Flags().Changed).
func (cfg *toolConfig) applyDefaults(sawFlag func(name string) bool) {
	if cfg.LogLevel != "" && !sawFlag("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !sawFlag("log-format") {
		logFormat = cfg.LogFormat
	}
	if cfg.MetricsAddr != "" && !sawFlag("metrics-addr") {
		metricsAddr = cfg.MetricsAddr
	}
	if cfg.Traces && !sawFlag("traces") {
		enableTraces = true
	}
}

const defaultToolConfigTemplate = `# weaveconfig tool configuration (optional).
# This file configures weaveconfig's own CLI behavior; it has no effect
# on per-space _space.jsonc/_*.env.jsonc files, which are always JSONC.
log_level: info
log_format: console
metrics_addr: ""
traces: false
`
