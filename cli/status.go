package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <table>",
	Short: "Show a table's landing-zone state",
	Long: `Report whether the table exists and which sequence number the next
data file will be written under.

Examples:
  lzmirror status Orders`,
	Args: cobra.ExactArgs(1),
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	_, writer, err := openMirror(cfg)
	if err != nil {
		return err
	}

	id := cfg.TableID(args[0])
	exists, err := writer.TableExists(cmd.Context(), id)
	if err != nil {
		return err
	}
	if !exists {
		fmt.Printf("Table %s does not exist\n", id)
		return nil
	}

	next, err := writer.NextSequenceNumber(cmd.Context(), id)
	if err != nil {
		return err
	}
	fmt.Printf("Table %s exists, next sequence number: %d\n", id, next)
	return nil
}
