// Package logging shapes the process's structured log output.
package logging

import (
	"fmt"
	"os"
	"strings"

	"log/slog"

	"github.com/dsaferreira/doppelganger-go/internal/config"
)

// New builds the process logger from the ambient runtime options.
func New(opts config.RuntimeOptions) (*slog.Logger, error) {
	var level slog.Level
	switch strings.ToLower(opts.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info", "":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, fmt.Errorf("logging: unsupported level %q", opts.LogLevel)
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch strings.ToLower(opts.LogFormat) {
	case "json", "":
		handler = slog.NewJSONHandler(os.Stdout, handlerOpts)
	case "text":
		handler = slog.NewTextHandler(os.Stdout, handlerOpts)
	default:
		return nil, fmt.Errorf("logging: unsupported format %q", opts.LogFormat)
	}

	return slog.New(handler).With(slog.String("component", "doppelganger")), nil
}
