package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadopc/studytrack/internal/analytics"
)

func newReportCmd(env Env) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print study, habit and task analytics",
		Long:  "Print the same figures the Analytics screen shows, as text or as JSON with --json",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := buildReport(env)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			printReport(out, report)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	return cmd
}

func buildReport(env Env) (analytics.Report, error) {
	snap, err := env.Store.Snapshot()
	if err != nil {
		return analytics.Report{}, fmt.Errorf("load data: %w", err)
	}
	report, err := env.Engine.Report(snap)
	if err != nil {
		return analytics.Report{}, fmt.Errorf("build report: %w", err)
	}
	return report, nil
}

func section(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n%s\n", title, strings.Repeat("-", len(title)))
}

func printReport(w io.Writer, r analytics.Report) {
	fmt.Fprintf(w, "studytrack report for %s\n", r.Today)
	if r.Empty {
		fmt.Fprintln(w, "No data yet. Open studytrack and start a session, check in a habit or add a task.")
		return
	}

	st := r.Study
	section(w, "Study")
	fmt.Fprintf(w, "Total:        %s\n", analytics.FormatMinutes(st.TotalMinutes))
	fmt.Fprintf(w, "Today:        %s\n", analytics.FormatMinutes(st.TodayMinutes))
	fmt.Fprintf(w, "Most focused: %s\n", st.MostFocused)
	fmt.Fprintf(w, "Best day:     %s\n", st.BestDay)
	if len(st.Subjects) > 0 {
		fmt.Fprintf(w, "\n%-24s %-10s %-10s %s\n", "SUBJECT", "TOTAL", "TODAY", "LEVEL")
		for _, s := range st.Subjects {
			fmt.Fprintf(w, "%-24s %-10s %-10s %d %s\n",
				clip(s.Name, 24),
				analytics.FormatMinutes(s.TotalMinutes),
				analytics.FormatMinutes(s.TodayMinutes),
				s.Level.Level, s.Level.Title)
		}
	}

	if habits := r.Habits.Habits; len(habits) > 0 {
		section(w, "Habits")
		for _, h := range habits {
			mark := " "
			if h.DoneToday {
				mark = "x"
			}
			fmt.Fprintf(w, "[%s] %-24s streak %-4d rate %d%%\n", mark, clip(h.Name, 24), h.Streak, h.CompletionRate)
		}
	}

	t := r.Tasks
	section(w, "Tasks")
	fmt.Fprintf(w, "Completed: %d/%d (%d%%)\n", t.Completed, t.Total, t.CompletionRate)
	fmt.Fprintf(w, "Overdue:   %d\n", t.Overdue)
	fmt.Fprintf(w, "Board:     %d in progress, %d active, %d done\n", r.Kanban.WIP, r.Kanban.Active, r.Kanban.Done)

	p := r.Planning
	section(w, "Planning")
	fmt.Fprintf(w, "Planned today: %d, done: %d, focus accuracy %d%%\n", p.Planned, p.Actual, p.FocusAccuracy)
	for _, a := range p.EstimateAccuracy {
		fmt.Fprintf(w, "  %-28s est %-8s actual %-8s %d%%\n",
			clip(a.Title, 28), analytics.FormatMinutes(a.Estimate), analytics.FormatMinutes(a.Actual), a.Accuracy)
	}
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
