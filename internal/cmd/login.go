package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and create your record if needed",
	Args:  cobra.NoArgs,
	RunE:  runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	sess, logger, err := openSession(cmd.Context(), cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer closeSession(sess, logger)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "signed in as %s (%s)\n", displayName(sess.Identity), sess.Identity.UID)
	if sess.Created {
		fmt.Fprintln(out, "created a new record, add tasks on day 1")
	}
	if sess.Reconciled {
		fmt.Fprintln(out, "archived days missed while away")
	}
	if sess.StartupErr != nil {
		fmt.Fprintln(out, "warning:", sess.StartupErr)
	}
	return nil
}
