package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/studytrack/internal/analytics"
	"github.com/sadopc/studytrack/internal/model"
	"github.com/sadopc/studytrack/internal/store"
)

type dashboardModel struct {
	store  *store.Store
	engine *analytics.Engine
	timer  timerModel
	width  int
	height int

	report    analytics.Report
	dailyGoal int // minutes
	subjects  []model.Subject
	overdue   []model.Task

	// Subject picker state
	picking      bool
	pickerCursor int
}

func newDashboardModel(s *store.Store, e *analytics.Engine) dashboardModel {
	return dashboardModel{
		store:     s,
		engine:    e,
		timer:     newTimerModel(s),
		dailyGoal: 120,
	}
}

func (d dashboardModel) Init() tea.Cmd {
	return d.loadData()
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

func (d dashboardModel) isRunning() bool { return d.timer.running() }
func (d dashboardModel) isPaused() bool  { return d.timer.paused() }
func (d dashboardModel) elapsed() time.Duration {
	return d.timer.currentElapsed()
}

type dashboardDataMsg struct {
	report    analytics.Report
	dailyGoal int
	subjects  []model.Subject
	overdue   []model.Task
}

func (d dashboardModel) loadData() tea.Cmd {
	return func() tea.Msg {
		snap, err := d.store.Snapshot()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Load error: %v", err), isError: true}
		}
		report, err := d.engine.Report(snap)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Analytics error: %v", err), isError: true}
		}
		return dashboardDataMsg{
			report:    report,
			dailyGoal: d.store.GetIntSetting(store.SettingDailyGoal, 120),
			subjects:  snap.Subjects,
			overdue:   d.engine.OverdueTodos(snap.Tasks),
		}
	}
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		d.report = msg.report
		d.dailyGoal = msg.dailyGoal
		d.subjects = msg.subjects
		d.overdue = msg.overdue
		return d, nil

	case sessionSavedMsg:
		return d, d.loadData()

	case tickMsg:
		d.timer.tick()
		return d, nil

	case tea.KeyMsg:
		d.timer.recordActivity()

		if d.picking {
			return d.updatePicker(msg)
		}

		switch {
		case key.Matches(msg, keys.Start):
			if d.timer.running() {
				return d, nil
			}
			if len(d.subjects) == 0 {
				return d, func() tea.Msg {
					return statusMsg{text: "No subjects yet. Press 2 to go to Subjects and create one.", isError: true}
				}
			}
			if len(d.subjects) == 1 {
				return d.startTimer(d.subjects[0])
			}
			d.picking = true
			d.pickerCursor = 0
			return d, nil

		case key.Matches(msg, keys.Stop):
			return d.stopTimer()

		case key.Matches(msg, keys.Pause):
			d.timer.toggle()
			return d, nil
		}
	}
	return d, nil
}

func (d dashboardModel) updatePicker(msg tea.KeyMsg) (dashboardModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if d.pickerCursor > 0 {
			d.pickerCursor--
		}
	case key.Matches(msg, keys.Down):
		if d.pickerCursor < len(d.subjects)-1 {
			d.pickerCursor++
		}
	case key.Matches(msg, keys.Enter):
		d.picking = false
		return d.startTimer(d.subjects[d.pickerCursor])
	case key.Matches(msg, keys.Back):
		d.picking = false
	}
	return d, nil
}

func (d dashboardModel) startTimer(sub model.Subject) (dashboardModel, tea.Cmd) {
	d.timer.start(sub, nil)
	return d, func() tea.Msg { return timerStartedMsg{} }
}

func (d dashboardModel) stopTimer() (dashboardModel, tea.Cmd) {
	if !d.timer.running() {
		return d, nil
	}
	session, err := d.timer.stop()
	if err != nil {
		return d, errStatus("Error", err)
	}
	if session == nil {
		return d, status("Under a minute, nothing recorded")
	}
	return d, tea.Batch(
		func() tea.Msg { return sessionSavedMsg{session: session} },
		status("Logged "+analytics.FormatMinutes(session.DurationMinutes)+" of "+d.timer.subjectName),
	)
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}

	contentWidth := d.width - 4

	timerPanel := d.renderTimerPanel(contentWidth)
	summaryPanel := d.renderTodayPanel(contentWidth)

	var bottomPanel string
	if d.picking {
		bottomPanel = d.renderSubjectPicker(contentWidth)
	} else {
		half := contentWidth/2 - 1
		bottomPanel = lipgloss.JoinHorizontal(lipgloss.Top,
			d.renderHabitsPanel(half),
			" ",
			d.renderOverduePanel(contentWidth-half-1),
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left, timerPanel, summaryPanel, bottomPanel)
}

func (d dashboardModel) renderTimerPanel(w int) string {
	if d.timer.running() {
		timeStr := formatDuration(d.timer.currentElapsed())

		var timeDisplay, indicator string
		if d.timer.paused() {
			timeDisplay = timerPausedStyle.Width(w - 6).Render(timeStr)
			if d.timer.isIdle {
				indicator = warningStyle.Render("⏸  IDLE")
			} else {
				indicator = warningStyle.Render("⏸  PAUSED")
			}
		} else {
			timeDisplay = timerRunningStyle.Width(w - 6).Render(timeStr)
			indicator = successStyle.Render("●  STUDYING")
		}

		subjectLine := highlightStyle.Render(d.timer.subjectName)
		if d.timer.taskTitle != "" {
			subjectLine += mutedStyle.Render(" / " + d.timer.taskTitle)
		}

		return activePanelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Center, timeDisplay, indicator, subjectLine),
		)
	}

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Center,
		timerStyle.Width(w-6).Render("00:00:00"),
		mutedStyle.Render("■  STOPPED"),
		mutedStyle.Render("Press s to start studying"),
	))
}

func (d dashboardModel) renderTodayPanel(w int) string {
	st := d.report.Study
	title := titleStyle.Render("Today")
	total := highlightStyle.Render(analytics.FormatMinutes(st.TodayMinutes))
	goal := mutedStyle.Render(fmt.Sprintf(" / %s goal", analytics.FormatMinutes(d.dailyGoal)))
	header := fmt.Sprintf("%s  %s%s", title, total, goal)

	rows := []string{header, renderGoalBar(st.TodayMinutes, d.dailyGoal, min(w-8, 40))}
	rows = append(rows, mutedStyle.Render(fmt.Sprintf(
		"Best streak %d days  ·  Most focused %s  ·  Best day %s",
		d.report.Habits.BestStreak, st.MostFocused, st.BestDay,
	)))

	for _, s := range st.Subjects {
		if s.TodayMinutes == 0 {
			continue
		}
		rows = append(rows, fmt.Sprintf("  %s %-20s %s",
			colorDot(s.Color), truncate(s.Name, 20), analytics.FormatMinutes(s.TodayMinutes)))
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

// renderGoalBar draws today's progress toward the daily goal.
func renderGoalBar(minutes, goal, width int) string {
	if width < 4 {
		width = 4
	}
	filled := 0
	if goal > 0 {
		filled = min(width, minutes*width/goal)
	}
	bar := successStyle.Render(strings.Repeat("█", filled)) + mutedStyle.Render(strings.Repeat("░", width-filled))
	pct := 0
	if goal > 0 {
		pct = minutes * 100 / goal
	}
	return fmt.Sprintf("%s %d%%", bar, pct)
}

func (d dashboardModel) renderHabitsPanel(w int) string {
	title := titleStyle.Render("Habits")
	habits := d.report.Habits.Habits
	if len(habits) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, mutedStyle.Render("No habits yet"),
		))
	}

	rows := []string{title}
	for _, h := range habits {
		mark := mutedStyle.Render("○")
		if h.DoneToday {
			mark = successStyle.Render("●")
		}
		rows = append(rows, fmt.Sprintf("  %s %-18s %s", mark, truncate(h.Name, 18),
			mutedStyle.Render(fmt.Sprintf("%dd", h.Streak))))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderOverduePanel(w int) string {
	title := titleStyle.Render("Overdue")
	if len(d.overdue) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, successStyle.Render("Nothing overdue"),
		))
	}

	rows := []string{title}
	for _, t := range d.overdue {
		rows = append(rows, fmt.Sprintf("  %s %s", errorStyle.Render(*t.ScheduledDate), truncate(t.Title, w-18)))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderSubjectPicker(w int) string {
	rows := []string{titleStyle.Render("Select Subject")}
	for i, s := range d.subjects {
		cursor, style := cursorPrefix(i == d.pickerCursor)
		rows = append(rows, style.Render(fmt.Sprintf("%s%s %s", cursor, colorDot(s.Color), s.Name)))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: select  esc: cancel"))

	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
