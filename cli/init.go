package cli

import (
	"fmt"
	"os"

	"github.com/openmirror/landingzone/config"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default lzmirror.yml in the working directory",
	Long: `Create a starter configuration file.

The generated file selects the filesystem backend rooted at ./landingzone;
edit it to point at your S3 bucket before use.

Examples:
  lzmirror init --database Sales
  lzmirror init --database Sales --config ./sales.yml`,
	RunE: runInit,
}

var initDatabase string

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initDatabase, "database", "", "mirrored database (item) name to seed the config with")
	if err := initCmd.MarkFlagRequired("database"); err != nil {
		panic(fmt.Sprintf("Failed to mark database flag as required: %v", err))
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if path == "" {
		path = config.DefaultFileName
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("refusing to overwrite existing config %s", path)
	}

	cfg := config.LoadDefaultConfig()
	cfg.Mirror.Database = initDatabase

	if err := config.SaveConfig(cfg, path); err != nil {
		return err
	}

	fmt.Printf("Wrote %s\n", path)
	return nil
}
