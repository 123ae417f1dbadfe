package tui

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/studytrack/internal/analytics"
	"github.com/sadopc/studytrack/internal/export"
	"github.com/sadopc/studytrack/internal/notify"
	"github.com/sadopc/studytrack/internal/store"
)

// App is the root Bubble Tea model.
type App struct {
	store  *store.Store
	engine *analytics.Engine
	log    *slog.Logger
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int
	exportDir     string

	dashboard dashboardModel
	subjects  subjectsModel
	habits    habitsModel
	tasks     tasksModel
	analytics analyticsModel
	pomodoro  pomodoroModel
	settings  settingsModel

	help      help.Model
	status    string
	statusErr bool
}

func NewApp(s *store.Store, e *analytics.Engine, n notify.Notifier, log *slog.Logger) App {
	h := help.New()
	h.ShowAll = false

	dir, err := os.UserHomeDir()
	if err != nil {
		dir = "."
	}

	return App{
		store:      s,
		engine:     e,
		log:        log,
		activeView: viewDashboard,
		exportDir:  dir,
		dashboard:  newDashboardModel(s, e),
		subjects:   newSubjectsModel(s, e),
		habits:     newHabitsModel(s, e),
		tasks:      newTasksModel(s, e),
		analytics:  newAnalyticsModel(s, e),
		pomodoro:   newPomodoroModel(s, n, log),
		settings:   newSettingsModel(s),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.dashboard.Init(),
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.dashboard.setSize(a.width, contentHeight)
		a.subjects.setSize(a.width, contentHeight)
		a.habits.setSize(a.width, contentHeight)
		a.tasks.setSize(a.width, contentHeight)
		a.analytics.setSize(a.width, contentHeight)
		a.pomodoro.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (form or picker), delegate first.
		if a.isCapturing() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a.quit()
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			return a.switchTo(viewDashboard)
		case key.Matches(msg, keys.Tab2):
			return a.switchTo(viewSubjects)
		case key.Matches(msg, keys.Tab3):
			return a.switchTo(viewHabits)
		case key.Matches(msg, keys.Tab4):
			return a.switchTo(viewTasks)
		case key.Matches(msg, keys.Tab5):
			return a.switchTo(viewAnalytics)
		case key.Matches(msg, keys.Tab6):
			return a.switchTo(viewPomodoro)
		case key.Matches(msg, keys.Tab7):
			return a.switchTo(viewSettings)
		case key.Matches(msg, keys.Tab):
			return a.switchTo((a.activeView + 1) % viewState(len(viewNames)))
		}

	case tickMsg:
		cmds = append(cmds, tickCmd())
		// Both timers run regardless of the visible view.
		var cmd tea.Cmd
		a.dashboard, cmd = a.dashboard.update(msg)
		cmds = append(cmds, cmd)
		a.pomodoro, cmd = a.pomodoro.update(msg)
		cmds = append(cmds, cmd)
		return a, tea.Batch(cmds...)

	case sessionSavedMsg:
		// Every view showing totals reloads, visible or not.
		var cmd tea.Cmd
		a.dashboard, cmd = a.dashboard.update(msg)
		cmds = append(cmds, cmd)
		a.subjects, cmd = a.subjects.update(msg)
		cmds = append(cmds, cmd)
		a.tasks, cmd = a.tasks.update(msg)
		cmds = append(cmds, cmd)
		a.analytics, cmd = a.analytics.update(msg)
		cmds = append(cmds, cmd)
		return a, tea.Batch(cmds...)

	case statusMsg:
		a.status = msg.text
		a.statusErr = msg.isError
		if msg.isError {
			a.log.Warn("ui error", slog.String("status", msg.text))
		}
		return a, nil

	case timerStartedMsg:
		a.status = "Timer started"
		a.statusErr = false
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.statusErr = false
		a.exportPicking = false
		a.log.Info("export written", slog.String("path", msg.path))
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) switchTo(v viewState) (tea.Model, tea.Cmd) {
	a.activeView = v
	return a, a.refreshCurrentView()
}

// quit records a running stopwatch before exiting so the time is not lost.
func (a App) quit() (tea.Model, tea.Cmd) {
	if a.dashboard.isRunning() {
		if session, err := a.dashboard.timer.stop(); err != nil {
			a.log.Error("save running timer on quit", slog.String("error", err.Error()))
		} else if session != nil {
			a.log.Info("saved running timer on quit",
				slog.String("session", session.ID),
				slog.Int("minutes", session.DurationMinutes),
			)
		}
	}
	return a, tea.Quit
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.update(msg)
	case viewSubjects:
		a.subjects, cmd = a.subjects.update(msg)
	case viewHabits:
		a.habits, cmd = a.habits.update(msg)
	case viewTasks:
		a.tasks, cmd = a.tasks.update(msg)
	case viewAnalytics:
		a.analytics, cmd = a.analytics.update(msg)
	case viewPomodoro:
		a.pomodoro, cmd = a.pomodoro.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

// isCapturing reports whether the active view wants every key, so global
// bindings like tab switching must not fire.
func (a App) isCapturing() bool {
	switch a.activeView {
	case viewDashboard:
		return a.dashboard.picking
	case viewSubjects:
		return a.subjects.formActive || a.subjects.confirmDelete
	case viewHabits:
		return a.habits.formActive || a.habits.confirmDelete
	case viewTasks:
		return a.tasks.formActive || a.tasks.confirmDelete
	case viewPomodoro:
		return a.pomodoro.picking()
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewDashboard:
		return a.dashboard.loadData()
	case viewSubjects:
		return a.subjects.refresh()
	case viewHabits:
		return a.habits.refresh()
	case viewTasks:
		return a.tasks.refresh()
	case viewAnalytics:
		return a.analytics.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewDashboard:
		content = a.dashboard.view()
	case viewSubjects:
		content = a.subjects.view()
	case viewHabits:
		content = a.habits.view()
	case viewTasks:
		content = a.tasks.view()
	case viewAnalytics:
		content = a.analytics.view()
	case viewPomodoro:
		content = a.pomodoro.view()
	case viewSettings:
		content = a.settings.view()
	}

	contentHeight := max(1, a.height-lipgloss.Height(header)-lipgloss.Height(footer))

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(label))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("studytrack")
	gap := max(1, a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		if a.statusErr {
			status = errorStyle.Render(" " + a.status)
		} else {
			status = mutedStyle.Render(" " + a.status)
		}
	}

	timerInfo := ""
	if a.dashboard.isRunning() {
		elapsed := a.dashboard.elapsed()
		timerInfo = successStyle.Render(" ● " + formatDuration(elapsed))
		if a.dashboard.isPaused() {
			timerInfo = warningStyle.Render(" ⏸ " + formatDuration(elapsed))
		}
	}
	if a.pomodoro.active() && a.activeView != viewPomodoro {
		timerInfo += accentStyle.Render(" 🍅 " + formatPomodoroTime(a.pomodoro.remaining))
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := max(1, a.width-lipgloss.Width(left)-lipgloss.Width(right)-2)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	rows := []string{titleStyle.Render("Export Format"), ""}
	for i, f := range export.Formats {
		cursor, style := cursorPrefix(i == a.exportCursor)
		rows = append(rows, style.Render(cursor+strings.ToUpper(string(f))))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: export  esc: cancel"))
	rows = append(rows, mutedStyle.Render("  to "+a.exportDir))

	return activePanelStyle.Width(a.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(export.Formats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(export.Formats[a.exportCursor])
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(f export.Format) tea.Cmd {
	return func() tea.Msg {
		snap, err := a.store.Snapshot()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		report, err := a.engine.Report(snap)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}

		path := export.DefaultPath(a.exportDir, f, time.Now())
		if err := export.Snapshot(f, snap, report, path); err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}
