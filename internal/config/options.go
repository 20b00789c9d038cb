package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// RuntimeOptions are the ambient process knobs that sit outside the mock
// server document itself: logging shape and the management port serving
// /metrics. They follow the env>default precedence the rest of the stack
// uses, scoped to an env-prefix so they never collide with the document
// loaded by Loader.
type RuntimeOptions struct {
	LogLevel    string `koanf:"logLevel"`
	LogFormat   string `koanf:"logFormat"`
	Verbose     bool   `koanf:"verbose"`
	MetricsAddr string `koanf:"metricsAddr"`
	MetricsPort int    `koanf:"metricsPort"`
}

// DefaultRuntimeOptions mirrors the documented ambient defaults.
func DefaultRuntimeOptions() RuntimeOptions {
	return RuntimeOptions{
		LogLevel:    "info",
		LogFormat:   "json",
		Verbose:     false,
		MetricsAddr: "0.0.0.0",
		MetricsPort: 9090,
	}
}

// LoadRuntimeOptions overlays environment variables under envPrefix onto the
// defaults. It never touches the filesystem: these are process-level knobs,
// not part of the declarative document.
func LoadRuntimeOptions(envPrefix string) (RuntimeOptions, error) {
	defaults := DefaultRuntimeOptions()
	k := koanf.New(".")

	flat := map[string]any{
		"loglevel":    defaults.LogLevel,
		"logformat":   defaults.LogFormat,
		"verbose":     defaults.Verbose,
		"metricsaddr": defaults.MetricsAddr,
		"metricsport": defaults.MetricsPort,
	}
	if err := k.Load(confmap.Provider(flat, "."), nil); err != nil {
		return RuntimeOptions{}, fmt.Errorf("config: load runtime defaults: %w", err)
	}

	if envPrefix != "" {
		prefix := envPrefix + "_"
		transform := func(s string) string {
			return strings.ToLower(strings.TrimPrefix(s, prefix))
		}
		if err := k.Load(env.Provider(prefix, ".", transform), nil); err != nil {
			return RuntimeOptions{}, fmt.Errorf("config: load runtime env: %w", err)
		}
	}

	opts := defaults
	if k.Exists("loglevel") {
		opts.LogLevel = k.String("loglevel")
	}
	if k.Exists("logformat") {
		opts.LogFormat = k.String("logformat")
	}
	if k.Exists("verbose") {
		opts.Verbose = k.Bool("verbose")
	}
	if k.Exists("metricsaddr") {
		opts.MetricsAddr = k.String("metricsaddr")
	}
	if k.Exists("metricsport") {
		opts.MetricsPort = k.Int("metricsport")
	}
	return opts, nil
}
