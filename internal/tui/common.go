package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/studytrack/internal/model"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewSubjects
	viewHabits
	viewTasks
	viewAnalytics
	viewPomodoro
	viewSettings
)

var viewNames = []string{"Dashboard", "Subjects", "Habits", "Tasks", "Analytics", "Pomodoro", "Settings"}

// --- Messages ---

// sessionSavedMsg is sent whenever a study session is written, so views
// showing totals can reload.
type sessionSavedMsg struct {
	session *model.SessionLog
}

type timerStartedMsg struct{}

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

func errStatus(prefix string, err error) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: fmt.Sprintf("%s: %v", prefix, err), isError: true}
	}
}

func status(text string) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text} }
}

// --- Helpers ---

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func colorDot(color string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("●")
}

func cursorPrefix(selected bool) (string, lipgloss.Style) {
	if selected {
		return "> ", selectedItemStyle
	}
	return "  ", normalItemStyle
}

// truncate shortens s to n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
