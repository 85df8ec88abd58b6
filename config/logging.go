package config

import (
	"io"
	"os"
	"path/filepath"

	"github.com/openmirror/landingzone/pkg/errors"
	"github.com/rs/zerolog"
)

// NewLogger builds a zerolog logger from the log configuration,
// combining console and file output as configured.
func NewLogger(cfg LogConfig) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var writers []io.Writer
	if cfg.Console {
		if cfg.Format == "json" {
			writers = append(writers, os.Stderr)
		} else {
			writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr})
		}
	}

	if cfg.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
			return zerolog.Nop(), errors.New(ErrLogSetupFailed, "failed to create log directory", err).AddContext("path", cfg.FilePath)
		}
		file, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return zerolog.Nop(), errors.New(ErrLogSetupFailed, "failed to open log file", err).AddContext("path", cfg.FilePath)
		}
		writers = append(writers, file)
	}

	if len(writers) == 0 {
		return zerolog.Nop(), nil
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Str("app", "lzmirror").
		Logger()
	return logger, nil
}
