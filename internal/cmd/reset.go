package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Undo the last completed day",
	Long: `Reset steps the current day back by one and clears the streak,
today's completions and notes and the archived day records. The last
active date moves to yesterday so today opens again.`,
	Args: cobra.NoArgs,
	RunE: runReset,
}

func init() {
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	sess, logger, err := openSession(cmd.Context(), cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer closeSession(sess, logger)

	if !resetYes {
		if !isTerminal(cmd.InOrStdin()) {
			return errors.New("reset needs --yes when stdin is not a terminal")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Reset progress to day %d? [y/N] ", max(sess.Engine.CurrentDay()-1, 1))
		answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
			fmt.Fprintln(cmd.OutOrStdout(), "cancelled")
			return nil
		}
	}

	if err := sess.Store.Patch(cmd.Context(), sess.Identity.UID, sess.Engine.Reset()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "progress reset: day %d, streak %d\n", sess.Engine.CurrentDay(), sess.Engine.Streak())
	return nil
}
