package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sandeepkv93/streakd/internal/views"
)

var recordsRaw bool

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Print the completed-day history",
	Long: `Print one row per archived day with the outcome of every task.

Output is rendered markdown on a terminal and plain markdown otherwise.
Use --raw to always print plain markdown.`,
	Args: cobra.NoArgs,
	RunE: runRecords,
}

func init() {
	recordsCmd.Flags().BoolVar(&recordsRaw, "raw", false, "print markdown without terminal rendering")
	rootCmd.AddCommand(recordsCmd)
}

func runRecords(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	sess, logger, err := openSession(cmd.Context(), cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer closeSession(sess, logger)

	md := views.RecordsMarkdown(views.RecordsData(sess.Engine.Record().DailyRecords))
	if !recordsRaw && isTerminal(cmd.OutOrStdout()) {
		md = views.RenderMarkdown(md)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), md)
	return err
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
