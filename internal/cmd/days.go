package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var daysCmd = &cobra.Command{
	Use:   "days <n>",
	Short: "Set the tracking period length",
	Args:  cobra.ExactArgs(1),
	RunE:  runDays,
}

func init() {
	rootCmd.AddCommand(daysCmd)
}

func runDays(cmd *cobra.Command, args []string) error {
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid day count %q", args[0])
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	sess, logger, err := openSession(cmd.Context(), cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer closeSession(sess, logger)

	patch, err := sess.Engine.SetTrackingLength(n)
	if err != nil {
		return err
	}
	if err := sess.Store.Patch(cmd.Context(), sess.Identity.UID, patch); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "tracking period set to %d days\n", sess.Engine.TrackingLength())
	return nil
}
