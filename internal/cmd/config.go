package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/streakd/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", path)
	return cfg.Write(cmd.OutOrStdout())
}
