package commands

import (
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/studytrack/internal/analytics"
	"github.com/sadopc/studytrack/internal/notify"
	"github.com/sadopc/studytrack/internal/store"
	"github.com/sadopc/studytrack/internal/tui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Env is what every command works against. main builds it once.
type Env struct {
	Store    *store.Store
	Engine   *analytics.Engine
	Notifier notify.Notifier
	Log      *slog.Logger

	// ExportDir is where export writes when --out is not given.
	ExportDir string
	Now       func() time.Time
}

func (e Env) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

// NewRoot builds the command tree. With no subcommand it opens the TUI.
func NewRoot(env Env) *cobra.Command {
	root := &cobra.Command{
		Use:   "studytrack",
		Short: "A terminal study tracker",
		Long: `studytrack tracks study sessions, habits and tasks from the terminal.
Run it without arguments for the interactive dashboard, or use the
subcommands for quick reports and exports.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(env)
		},
	}

	root.AddCommand(newReportCmd(env))
	root.AddCommand(newExportCmd(env))
	root.AddCommand(newHabitCmd(env))
	root.AddCommand(newVersionCmd())
	return root
}

// Execute runs the root command
func Execute(env Env) error {
	return NewRoot(env).Execute()
}

func runTUI(env Env) error {
	p := tea.NewProgram(tui.NewApp(env.Store, env.Engine, env.Notifier, env.Log), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "studytrack %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}
