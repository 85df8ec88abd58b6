package cli

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Context key types to avoid collisions
type contextKey string

const loggerKey contextKey = "logger"

var rootCmd = &cobra.Command{
	Use:   "lzmirror",
	Short: "Client for open-mirroring landing zones",
	Long: `lzmirror feeds a downstream mirroring service by writing change
and snapshot files into a landing zone on a hierarchical object store.

It creates the per-table key-column descriptor, writes sequence-numbered
data files under the landing-zone folder convention, and reclaims storage
the ingestion side has already consumed.`,
	Version: "0.1.0",
}

var cfgFile string

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteWithContext runs the root command with context containing the logger
func ExecuteWithContext(ctx context.Context) error {
	rootCmd.SetContext(ctx)
	return rootCmd.Execute()
}

// WithLogger stores the logger in the context for subcommands.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// getLoggerFromContext retrieves the logger from context
func getLoggerFromContext(ctx context.Context) zerolog.Logger {
	if logger, ok := ctx.Value(loggerKey).(zerolog.Logger); ok {
		return logger
	}
	return zerolog.Nop()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default lzmirror.yml in the working directory)")
}
