package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/studytrack/internal/analytics"
	"github.com/sadopc/studytrack/internal/store"
)

type analyticsTab int

const (
	tabStudy analyticsTab = iota
	tabTasks
	tabKanban
	tabPlanning
	tabCalendar
)

var analyticsTabNames = []string{"Study", "Tasks", "Kanban", "Planning", "Calendar"}

type analyticsModel struct {
	store  *store.Store
	engine *analytics.Engine
	width  int
	height int

	tab      analyticsTab
	report   analytics.Report
	calendar []analytics.CalendarDay
	loaded   bool

	chart barchart.Model
}

func newAnalyticsModel(s *store.Store, e *analytics.Engine) analyticsModel {
	return analyticsModel{
		store:  s,
		engine: e,
		chart:  barchart.New(60, 12),
	}
}

func (a *analyticsModel) setSize(w, h int) {
	a.width = w
	a.height = h
	a.buildChart()
}

type analyticsDataMsg struct {
	report   analytics.Report
	calendar []analytics.CalendarDay
}

func (a analyticsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		snap, err := a.store.Snapshot()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Load error: %v", err), isError: true}
		}
		report, err := a.engine.Report(snap)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Analytics error: %v", err), isError: true}
		}
		month := a.engine.LastNDays(1)[0]
		return analyticsDataMsg{
			report:   report,
			calendar: a.engine.ActivityCalendar(snap.Tasks, snap.HabitLogs, snap.Habits, month),
		}
	}
}

func (a analyticsModel) update(msg tea.Msg) (analyticsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case analyticsDataMsg:
		a.report = msg.report
		a.calendar = msg.calendar
		a.loaded = true
		a.buildChart()
		return a, nil

	case sessionSavedMsg:
		return a, a.refresh()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			a.tab = (a.tab + analyticsTab(len(analyticsTabNames)) - 1) % analyticsTab(len(analyticsTabNames))
			a.buildChart()
		case key.Matches(msg, keys.Right):
			a.tab = (a.tab + 1) % analyticsTab(len(analyticsTabNames))
			a.buildChart()
		}
	}
	return a, nil
}

func barStyle(color string) lipgloss.Style {
	if color == "" {
		return lipgloss.NewStyle().Foreground(colorPrimary)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

// buildChart redraws the bar chart for the active sub-tab.
func (a *analyticsModel) buildChart() {
	chartWidth := max(20, a.width-8)
	chartHeight := 10
	if a.height > 30 {
		chartHeight = 14
	}
	a.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	switch a.tab {
	case tabStudy:
		for _, d := range a.report.Study.Weekly {
			bars = append(bars, barchart.BarData{
				Label:  d.Day,
				Values: []barchart.BarValue{{Name: "minutes", Value: float64(d.Minutes), Style: barStyle("")}},
			})
		}
	case tabTasks:
		for _, d := range a.report.Tasks.PerDay {
			bars = append(bars, barchart.BarData{
				Label:  d.Day,
				Values: []barchart.BarValue{{Name: "done", Value: float64(d.Completed), Style: successStyle}},
			})
		}
	case tabKanban:
		for _, w := range a.report.Kanban.PerWeek {
			bars = append(bars, barchart.BarData{
				Label:  w.Week,
				Values: []barchart.BarValue{{Name: "cards", Value: float64(w.Completed), Style: barStyle(string(colorSecondary))}},
			})
		}
	case tabPlanning:
		p := a.report.Planning
		bars = []barchart.BarData{
			{Label: "Planned", Values: []barchart.BarValue{{Name: "planned", Value: float64(p.Planned), Style: highlightStyle}}},
			{Label: "Done", Values: []barchart.BarValue{{Name: "done", Value: float64(p.Actual), Style: successStyle}}},
		}
	}
	if len(bars) == 0 {
		return
	}

	a.chart.PushAll(bars)
	a.chart.Draw()
}

func (a analyticsModel) view() string {
	w := a.width - 4

	var tabs []string
	for i, name := range analyticsTabNames {
		if analyticsTab(i) == a.tab {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		append([]string{titleStyle.Render("Analytics"), "  "}, tabs...)...,
	)
	if a.loaded {
		header = lipgloss.JoinHorizontal(lipgloss.Bottom, header, "  ", subtitleStyle.Render("as of "+a.report.Today))
	}

	var body string
	switch {
	case !a.loaded:
		body = mutedStyle.Render("Loading...")
	case a.report.Empty && a.tab != tabCalendar:
		body = mutedStyle.Render("No data yet. Study, check in a habit or add a task to see analytics.")
	default:
		switch a.tab {
		case tabStudy:
			body = a.renderStudy(w)
		case tabTasks:
			body = a.renderTasks()
		case tabKanban:
			body = a.renderKanban()
		case tabPlanning:
			body = a.renderPlanning()
		case tabCalendar:
			body = a.renderCalendar()
		}
	}

	nav := mutedStyle.Render("  h/l: switch tab")
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", nav))
}

func stat(label, value string) string {
	return mutedStyle.Render(label+" ") + highlightStyle.Render(value)
}

func statLine(stats ...string) string {
	return "  " + strings.Join(stats, mutedStyle.Render("  ·  "))
}

func (a analyticsModel) renderStudy(w int) string {
	st := a.report.Study
	rows := []string{
		statLine(
			stat("Total", analytics.FormatMinutes(st.TotalMinutes)),
			stat("Today", analytics.FormatMinutes(st.TodayMinutes)),
			stat("Most focused (7d)", st.MostFocused),
			stat("Best day", st.BestDay),
		),
		statLine(
			stat("Best streak", fmt.Sprintf("%dd", a.report.Habits.BestStreak)),
			stat("Active habits", fmt.Sprintf("%d", a.report.Habits.Active)),
		),
		"",
		mutedStyle.Render("  Minutes studied, last 7 days"),
		a.chart.View(),
	}

	total := 0
	for _, d := range st.Distribution {
		total += d.Value
	}
	if total > 0 {
		rows = append(rows, "", mutedStyle.Render("  Subject share"))
		barWidth := min(30, max(10, w-40))
		for _, d := range st.Distribution {
			n := d.Value * barWidth / total
			rows = append(rows, fmt.Sprintf("  %s %-18s %s %s",
				colorDot(d.Color), truncate(d.Name, 18),
				barStyle(d.Color).Render(strings.Repeat("█", n))+mutedStyle.Render(strings.Repeat("░", barWidth-n)),
				analytics.FormatMinutes(d.Value),
			))
		}
	}
	return strings.Join(rows, "\n")
}

func (a analyticsModel) renderTasks() string {
	t := a.report.Tasks
	rows := []string{
		statLine(
			stat("Completion", fmt.Sprintf("%d%%", t.CompletionRate)),
			stat("Done", fmt.Sprintf("%d/%d", t.Completed, t.Total)),
			stat("Overdue", fmt.Sprintf("%d", t.Overdue)),
		),
		"",
		mutedStyle.Render("  Tasks completed, last 7 days"),
		a.chart.View(),
	}
	if len(t.TimePerTask) > 0 {
		rows = append(rows, "", mutedStyle.Render("  Time per task"))
		for _, tm := range t.TimePerTask {
			rows = append(rows, fmt.Sprintf("  %-30s %s", truncate(tm.Title, 30), analytics.FormatMinutes(tm.Minutes)))
		}
	}
	return strings.Join(rows, "\n")
}

func (a analyticsModel) renderKanban() string {
	k := a.report.Kanban
	rows := []string{
		statLine(
			stat("In progress", fmt.Sprintf("%d", k.WIP)),
			stat("Active", fmt.Sprintf("%d", k.Active)),
			stat("Done", fmt.Sprintf("%d", k.Done)),
		),
		"",
		mutedStyle.Render("  Cards completed per week"),
		a.chart.View(),
		"",
		mutedStyle.Render("  Time per column"),
	}
	for _, c := range k.TimePerColumn {
		rows = append(rows, fmt.Sprintf("  %-14s %s", c.Column, analytics.FormatMinutes(c.Minutes)))
	}
	return strings.Join(rows, "\n")
}

func (a analyticsModel) renderPlanning() string {
	p := a.report.Planning
	rows := []string{
		statLine(
			stat("Planned", fmt.Sprintf("%d", p.Planned)),
			stat("Done", fmt.Sprintf("%d", p.Actual)),
			stat("Focus accuracy", fmt.Sprintf("%d%%", p.FocusAccuracy)),
		),
		"",
		a.chart.View(),
	}
	if len(p.EstimateAccuracy) > 0 {
		rows = append(rows, "", mutedStyle.Render(fmt.Sprintf("  %-28s %9s %9s %9s", "Task", "Estimate", "Actual", "Accuracy")))
		for _, e := range p.EstimateAccuracy {
			style := successStyle
			if e.Accuracy > 125 || e.Accuracy < 75 {
				style = warningStyle
			}
			rows = append(rows, fmt.Sprintf("  %-28s %9s %9s %s",
				truncate(e.Title, 28),
				analytics.FormatMinutes(e.Estimate),
				analytics.FormatMinutes(e.Actual),
				style.Render(fmt.Sprintf("%8d%%", e.Accuracy)),
			))
		}
	}
	return strings.Join(rows, "\n")
}

// renderCalendar lays the month out as a Monday-first grid of heat cells.
func (a analyticsModel) renderCalendar() string {
	if len(a.calendar) == 0 {
		return mutedStyle.Render("  No calendar data")
	}
	first, err := time.Parse("2006-01-02", a.calendar[0].Date)
	if err != nil {
		return errorStyle.Render(err.Error())
	}

	rows := []string{
		titleStyle.Render("  " + first.Format("January 2006")),
		mutedStyle.Render("  Mo Tu We Th Fr Sa Su"),
	}
	lead := (int(first.Weekday()) + 6) % 7
	line := "  " + strings.Repeat("   ", lead)
	col := lead
	for _, d := range a.calendar {
		cell := lipgloss.NewStyle().Foreground(heatColors[d.Intensity]).Render(fmt.Sprintf("%2s", d.Date[8:]))
		if d.Date == a.report.Today {
			cell = selectedItemStyle.Render(fmt.Sprintf("%2s", d.Date[8:]))
		}
		line += cell + " "
		col++
		if col == 7 {
			rows = append(rows, line)
			line = "  "
			col = 0
		}
	}
	if col > 0 {
		rows = append(rows, line)
	}

	var legend []string
	for i, c := range heatColors {
		legend = append(legend, lipgloss.NewStyle().Foreground(c).Render("■")+mutedStyle.Render(fmt.Sprintf(" %d", i)))
	}
	rows = append(rows, "", "  "+strings.Join(legend, "  "))
	return strings.Join(rows, "\n")
}
