package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/openmirror/landingzone/cli"
	"github.com/openmirror/landingzone/config"
	"github.com/rs/zerolog"
)

func main() {
	logger := setupLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = cli.WithLogger(ctx, logger)

	if err := cli.ExecuteWithContext(ctx); err != nil {
		logger.Error().Str("cmd", "main").Err(err).Msg("CLI execution failed")
		os.Exit(1)
	}
}

// setupLogger builds the startup logger before the config file is
// read; commands rebuild their logger from configuration.
func setupLogger() zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger, err := config.NewLogger(config.LogConfig{
		Level:   "info",
		Format:  "console",
		Console: true,
	})
	if err != nil {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	return logger
}
