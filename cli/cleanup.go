package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/openmirror/landingzone/config"
	"github.com/openmirror/landingzone/mirror"
	"github.com/spf13/cobra"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup <table> [table...]",
	Short: "Reclaim landing-zone storage the ingestion side has consumed",
	Long: `Delete every object under the _ProcessedFiles and _FilesReadyToDelete
folders of the given tables. Tables that do not exist are skipped without
error. With --watch the cleanup repeats on the configured interval until
interrupted.

Examples:
  lzmirror cleanup Orders
  lzmirror cleanup Orders LineItems --watch`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCleanup,
}

var cleanupWatch bool

func init() {
	rootCmd.AddCommand(cleanupCmd)
	cleanupCmd.Flags().BoolVar(&cleanupWatch, "watch", false, "run periodically instead of once")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := cfg.Storage.OpenStore()
	if err != nil {
		return err
	}
	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	janitor := mirror.NewJanitor(st, logger)

	ids := make([]mirror.TableID, len(args))
	for i, table := range args {
		ids[i] = cfg.TableID(table)
	}

	if cleanupWatch {
		interval := time.Duration(cfg.Mirror.CleanupIntervalSecs) * time.Second
		fmt.Printf("Cleaning %d table(s) every %s, press Ctrl-C to stop\n", len(ids), interval)
		if err := janitor.Run(cmd.Context(), interval, ids...); err != nil && !stderrors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}

	for _, id := range ids {
		if err := janitor.CleanUpTable(cmd.Context(), id); err != nil {
			return err
		}
	}
	fmt.Printf("Cleaned %d table(s)\n", len(ids))
	return nil
}
