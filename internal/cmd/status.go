package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/streakd/internal/daycycle"
	"github.com/sandeepkv93/streakd/internal/views"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print today's tasks and streak",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	sess, logger, err := openSession(cmd.Context(), cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer closeSession(sess, logger)

	_, err = fmt.Fprintln(cmd.OutOrStdout(), statusText(sess.Engine))
	return err
}

func statusText(e *daycycle.Engine) string {
	tasks := e.Tasks()
	rows := make([]views.TaskRowData, 0, len(tasks))
	for _, task := range tasks {
		rows = append(rows, views.TaskRowData{ID: task.ID, Text: task.Text, Completed: e.IsCompleted(task.ID)})
	}
	stats := e.Stats()
	p := e.Progress()
	return views.RenderTodayPanel(views.TodayPanelData{
		Tasks:          rows,
		Completed:      stats.Completed,
		Total:          stats.Total,
		Percentage:     stats.Percentage,
		CurrentDay:     p.CurrentDay,
		TrackingLength: p.Length,
		Remaining:      p.Remaining,
		Final:          p.Final,
		Streak:         e.Streak(),
		Closed:         e.Closed(),
		CanEdit:        e.CanEditTasks(),
	})
}
