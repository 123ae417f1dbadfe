package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/studytrack/internal/analytics"
	"github.com/sadopc/studytrack/internal/model"
	"github.com/sadopc/studytrack/internal/store"
)

type habitRow struct {
	habit  model.Habit
	streak int
	rate   int
	week   []bool // last 7 days, oldest first
	today  *model.HabitLog
}

type habitsModel struct {
	store  *store.Store
	engine *analytics.Engine
	width  int
	height int

	rows   []habitRow
	cursor int

	formActive bool
	form       *huh.Form
	formType   string // "habit" or "value"

	formName   *string
	formMetric *string
	formTarget *string
	formColor  *string
	formIcon   *string
	formValue  *string

	confirmDelete bool
}

func newHabitsModel(s *store.Store, e *analytics.Engine) habitsModel {
	name, metric, target, color, icon, value := "", string(model.MetricBinary), "", subjectColors[1], "", ""
	return habitsModel{
		store:      s,
		engine:     e,
		formName:   &name,
		formMetric: &metric,
		formTarget: &target,
		formColor:  &color,
		formIcon:   &icon,
		formValue:  &value,
	}
}

func (h *habitsModel) setSize(w, ht int) {
	h.width = w
	h.height = ht
}

type habitsDataMsg struct {
	rows []habitRow
}

func (h habitsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		habits, err := h.store.ListHabits()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Load error: %v", err), isError: true}
		}
		logs, err := h.store.ListHabitLogs("")
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Load error: %v", err), isError: true}
		}

		today := h.engine.Today()
		days := h.engine.LastNDays(7)
		rows := make([]habitRow, len(habits))
		for i, hb := range habits {
			rate, err := h.engine.HabitCompletionRate(logs, hb.ID)
			if err != nil {
				return statusMsg{text: err.Error(), isError: true}
			}
			row := habitRow{
				habit:  hb,
				streak: h.engine.HabitStreak(logs, hb.ID),
				rate:   rate,
				week:   make([]bool, len(days)),
			}
			for _, l := range logs {
				if l.HabitID != hb.ID {
					continue
				}
				for j, d := range days {
					if l.Date == d.Format(model.DayLayout) {
						row.week[j] = true
					}
				}
				if l.Date == today {
					row.today = &l
				}
			}
			rows[i] = row
		}
		return habitsDataMsg{rows: rows}
	}
}

func (h habitsModel) update(msg tea.Msg) (habitsModel, tea.Cmd) {
	if h.formActive && h.form != nil {
		return h.updateForm(msg)
	}

	switch msg := msg.(type) {
	case habitsDataMsg:
		h.rows = msg.rows
		if h.cursor >= len(h.rows) {
			h.cursor = max(0, len(h.rows)-1)
		}
		return h, nil

	case tea.KeyMsg:
		if h.confirmDelete {
			h.confirmDelete = false
			if msg.String() == "y" && h.cursor < len(h.rows) {
				hb := h.rows[h.cursor].habit
				if err := h.store.DeleteHabit(hb.ID); err != nil {
					return h, errStatus("Delete failed", err)
				}
				return h, tea.Batch(h.refresh(), status("Deleted "+hb.Name))
			}
			return h, nil
		}

		switch {
		case key.Matches(msg, keys.Up):
			if h.cursor > 0 {
				h.cursor--
			}
		case key.Matches(msg, keys.Down):
			if h.cursor < len(h.rows)-1 {
				h.cursor++
			}
		case key.Matches(msg, keys.Pause), key.Matches(msg, keys.Enter):
			if len(h.rows) == 0 {
				return h, nil
			}
			row := h.rows[h.cursor]
			if row.habit.MetricType == model.MetricBinary || row.today != nil {
				return h, h.toggleToday(row.habit)
			}
			return h.showValueForm()
		case key.Matches(msg, keys.New):
			return h.showHabitForm()
		case key.Matches(msg, keys.Delete):
			if len(h.rows) > 0 {
				h.confirmDelete = true
			}
		}
	}
	return h, nil
}

// toggleToday checks a habit in for today, or clears today's check-in.
func (h habitsModel) toggleToday(hb model.Habit) tea.Cmd {
	logged, err := h.store.ToggleHabit(hb.ID, h.engine.Today())
	if err != nil {
		return errStatus("Check-in failed", err)
	}
	msg := "Cleared " + hb.Name
	if logged {
		msg = "Checked in " + hb.Name
	}
	return tea.Batch(h.refresh(), status(msg))
}

func validateNumber(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if v, err := strconv.ParseFloat(s, 64); err != nil || v < 0 {
		return fmt.Errorf("enter a non-negative number")
	}
	return nil
}

func (h habitsModel) showHabitForm() (habitsModel, tea.Cmd) {
	*h.formName = ""
	*h.formMetric = string(model.MetricBinary)
	*h.formTarget = ""
	*h.formColor = subjectColors[1]
	*h.formIcon = ""
	h.formType = "habit"

	colorOptions := make([]huh.Option[string], len(subjectColors))
	for i, c := range subjectColors {
		colorOptions[i] = huh.NewOption(fmt.Sprintf("● %s", c), c)
	}

	h.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Habit Name").Value(h.formName).Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("name is required")
				}
				return nil
			}),
			huh.NewSelect[string]().Title("Metric").Options(
				huh.NewOption("Done / not done", string(model.MetricBinary)),
				huh.NewOption("Count", string(model.MetricCount)),
				huh.NewOption("Minutes", string(model.MetricMinutes)),
			).Value(h.formMetric),
			huh.NewInput().Title("Daily target (optional)").Value(h.formTarget).Validate(validateNumber),
			huh.NewSelect[string]().Title("Color").Options(colorOptions...).Value(h.formColor),
			huh.NewInput().Title("Icon (optional)").CharLimit(2).Value(h.formIcon),
		),
	).WithShowHelp(true).WithShowErrors(true)

	h.formActive = true
	return h, h.form.Init()
}

func (h habitsModel) showValueForm() (habitsModel, tea.Cmd) {
	hb := h.rows[h.cursor].habit
	*h.formValue = ""
	h.formType = "value"

	title := "Count for today"
	if hb.MetricType == model.MetricMinutes {
		title = "Minutes for today"
	}
	h.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title(title).Value(h.formValue).Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("value is required")
				}
				return validateNumber(s)
			}),
		),
	).WithShowHelp(true).WithShowErrors(true)

	h.formActive = true
	return h, h.form.Init()
}

func (h habitsModel) updateForm(msg tea.Msg) (habitsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		h.formActive = false
		h.form = nil
		return h, nil
	}

	form, cmd := h.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		h.form = f
	}
	if h.form.State != huh.StateCompleted {
		return h, cmd
	}
	h.formActive = false

	switch h.formType {
	case "value":
		hb := h.rows[h.cursor].habit
		v, _ := strconv.ParseFloat(strings.TrimSpace(*h.formValue), 64)
		if _, err := h.store.LogHabit(hb.ID, h.engine.Today(), v, nil); err != nil {
			return h, errStatus("Check-in failed", err)
		}
		return h, tea.Batch(h.refresh(), status("Logged "+hb.Name))
	default:
		var target *float64
		if v, err := strconv.ParseFloat(strings.TrimSpace(*h.formTarget), 64); err == nil {
			target = &v
		}
		name := strings.TrimSpace(*h.formName)
		_, err := h.store.CreateHabit(name, model.MetricType(*h.formMetric), target, *h.formColor, *h.formIcon)
		if err != nil {
			return h, errStatus("Create failed", err)
		}
		return h, tea.Batch(h.refresh(), status("Created "+name))
	}
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (h habitsModel) view() string {
	w := h.width - 4

	if h.formActive && h.form != nil {
		title := titleStyle.Render("New Habit")
		if h.formType == "value" {
			title = titleStyle.Render("Log " + h.rows[h.cursor].habit.Name)
		}
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", h.form.View()))
	}

	title := titleStyle.Render("Habits")
	if len(h.rows) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", mutedStyle.Render("No habits yet. Press n to create one."),
		))
	}

	var dayHeader strings.Builder
	for _, d := range h.engine.LastNDays(7) {
		dayHeader.WriteString(d.Format("Mon")[:1] + " ")
	}

	rows := []string{title, ""}
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("    %-24s %-14s %-8s %-6s %s",
		"Name", dayHeader.String(), "Streak", "Rate", "Today")))

	for i, r := range h.rows {
		cursor, style := cursorPrefix(i == h.cursor)

		var week strings.Builder
		for _, done := range r.week {
			if done {
				week.WriteString(successStyle.Render("■") + " ")
			} else {
				week.WriteString(mutedStyle.Render("□") + " ")
			}
		}

		today := mutedStyle.Render("-")
		if r.today != nil {
			today = successStyle.Render("✓")
			if r.habit.MetricType != model.MetricBinary {
				today = successStyle.Render(formatValue(r.today.Value))
				if r.habit.TargetValue != nil {
					today += mutedStyle.Render("/" + formatValue(*r.habit.TargetValue))
				}
			}
		}

		name := r.habit.Name
		if r.habit.Icon != "" {
			name = r.habit.Icon + " " + name
		}
		line := style.Render(fmt.Sprintf("%s%s %-24s ", cursor, colorDot(r.habit.Color), truncate(name, 24)))
		line += week.String() + style.Render(fmt.Sprintf("%-8s %-6s ", fmt.Sprintf("%dd", r.streak), fmt.Sprintf("%d%%", r.rate)))
		line += today
		rows = append(rows, line)
	}

	rows = append(rows, "")
	if h.confirmDelete {
		rows = append(rows, warningStyle.Render(fmt.Sprintf(
			"  Delete %q and all its check-ins? (y/n)", h.rows[h.cursor].habit.Name)))
	} else {
		rows = append(rows, mutedStyle.Render("  space: check in  n: new  d: delete"))
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
