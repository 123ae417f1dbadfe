package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadopc/studytrack/internal/analytics"
	"github.com/sadopc/studytrack/internal/model"
	"github.com/sadopc/studytrack/internal/store"
)

func newHabitCmd(env Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "habit",
		Short: "List habits or check one in",
	}
	cmd.AddCommand(newHabitListCmd(env))
	cmd.AddCommand(newHabitLogCmd(env))
	return cmd
}

func newHabitListCmd(env Env) *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List habits with streak and completion rate",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			habits, err := env.Store.ListHabits()
			if err != nil {
				return fmt.Errorf("list habits: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(habits) == 0 {
				fmt.Fprintln(out, "No habits yet. Open studytrack and press 3 to add one.")
				return nil
			}
			logs, err := env.Store.ListHabitLogs("")
			if err != nil {
				return fmt.Errorf("list habit logs: %w", err)
			}

			today := env.Engine.Today()
			fmt.Fprintf(out, "%-3s %-24s %-8s %-8s %-6s %s\n", "", "HABIT", "METRIC", "STREAK", "RATE", "ID")
			fmt.Fprintln(out, strings.Repeat("-", 80))
			for _, h := range habits {
				rate, err := env.Engine.HabitCompletionRate(logs, h.ID)
				if err != nil {
					return err
				}
				mark := "[ ]"
				for _, l := range logs {
					if l.HabitID == h.ID && l.Date == today {
						mark = "[x]"
						break
					}
				}
				fmt.Fprintf(out, "%-3s %-24s %-8s %-8d %-6s %s\n",
					mark, clip(h.Name, 24), h.MetricType, env.Engine.HabitStreak(logs, h.ID),
					fmt.Sprintf("%d%%", rate), h.ID)
			}
			return nil
		},
	}
}

func newHabitLogCmd(env Env) *cobra.Command {
	var (
		day   string
		value float64
		note  string
		undo  bool
	)

	cmd := &cobra.Command{
		Use:   "log [habit name or id]",
		Short: "Check a habit in for today or another day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := findHabit(env.Store, args[0])
			if err != nil {
				return err
			}
			if day == "" {
				day = env.Engine.Today()
			}
			if _, err := analytics.ParseDay("date", day); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if undo {
				if err := env.Store.UnlogHabit(h.ID, day); err != nil {
					return err
				}
				fmt.Fprintf(out, "Cleared %s on %s\n", h.Name, day)
				return nil
			}

			if value <= 0 {
				return fmt.Errorf("value must be above 0, got %g", value)
			}
			var notePtr *string
			if note != "" {
				notePtr = &note
			}
			l, err := env.Store.LogHabit(h.ID, day, value, notePtr)
			if err != nil {
				return err
			}
			if h.MetricType == model.MetricBinary {
				fmt.Fprintf(out, "Checked in %s on %s\n", h.Name, l.Date)
			} else {
				fmt.Fprintf(out, "Logged %g %s for %s on %s\n", l.Value, h.MetricType, h.Name, l.Date)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&day, "date", "d", "", "Day to log, YYYY-MM-DD (default: today)")
	cmd.Flags().Float64VarP(&value, "value", "v", 1, "Amount for count or minutes habits")
	cmd.Flags().StringVarP(&note, "note", "n", "", "Optional note")
	cmd.Flags().BoolVar(&undo, "undo", false, "Remove the log for that day instead")
	return cmd
}

// findHabit resolves an exact ID first, then a case-insensitive name.
func findHabit(s *store.Store, ref string) (model.Habit, error) {
	h, err := s.GetHabit(ref)
	if err == nil {
		return *h, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return model.Habit{}, err
	}

	habits, err := s.ListHabits()
	if err != nil {
		return model.Habit{}, fmt.Errorf("list habits: %w", err)
	}
	var matches []model.Habit
	for _, h := range habits {
		if strings.EqualFold(h.Name, ref) {
			matches = append(matches, h)
		}
	}
	switch len(matches) {
	case 0:
		return model.Habit{}, fmt.Errorf("no habit named %q", ref)
	case 1:
		return matches[0], nil
	}
	return model.Habit{}, fmt.Errorf("%d habits are named %q, use the ID from 'studytrack habit ls'", len(matches), ref)
}
