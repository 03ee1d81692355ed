package cmd

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/streakd/internal/scheduler"
	"github.com/sandeepkv93/streakd/internal/update"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the terminal UI (default)",
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	sess, logger, err := openSession(cmd.Context(), cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer closeSession(sess, logger)

	sched := scheduler.NewEngine(cfg.SchedulerBuffer)
	sched.Start()
	defer sched.Stop()

	var notifier update.DesktopNotifier = update.NoopDesktopNotifier{}
	if cfg.DesktopNotifications {
		notifier = update.ExecDesktopNotifier{}
	}
	m := update.NewModel(update.Deps{
		Engine:    sess.Engine,
		Writer:    sess.Writer,
		Scheduler: sched,
		Notifier:  notifier,
		Logger:    logger,
		Config:    update.RuntimeConfigFrom(cfg),
		User:      displayName(sess.Identity),
	})
	switch {
	case sess.StartupErr != nil:
		m.Status = update.StatusBar{Text: "sync failed: " + sess.StartupErr.Error(), IsError: true}
	case sess.Reconciled:
		m.Status = update.StatusBar{Text: "archived days missed while away", IsError: false}
	case sess.Created:
		m.Status = update.StatusBar{Text: "welcome! press [a] to add your first task", IsError: false}
	}

	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	_, err = program.Run()
	return err
}
