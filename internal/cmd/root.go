// Package cmd holds the streakd command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is overridden at build time with -ldflags.
var Version = "dev"

var (
	configPath string

	rootCmd = &cobra.Command{
		Use:   "streakd",
		Short: "Daily task streak tracker",
		Long: `streakd tracks a fixed list of daily tasks over a tracking period.

Define your tasks on day 1, check them off every day and close the day
before the cutoff (23:58 by default) to keep your streak going. Days you
skip are archived as missed the next time you sign in.

Running streakd with no subcommand opens the terminal UI.`,
		RunE:          runTUI,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/streakd/config.toml)")
}

// Execute runs the root command and reports errors on stderr.
func Execute() error {
	rootCmd.Version = Version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
