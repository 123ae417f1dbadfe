package tui

import "github.com/charmbracelet/lipgloss"

// Palette. Subject and habit colors come from the data; these are the
// chrome around them.
var (
	colorPrimary   = lipgloss.Color("#5E81F4")
	colorSecondary = lipgloss.Color("#22B8A7")
	colorAccent    = lipgloss.Color("#F2667E")
	colorMuted     = lipgloss.Color("#6B7089")
	colorSuccess   = lipgloss.Color("#3DBE74")
	colorWarning   = lipgloss.Color("#E9A23B")
	colorError     = lipgloss.Color("#E5534B")
	colorFg        = lipgloss.Color("#D4D8E8")
	colorSubtle    = lipgloss.Color("#3B3F55")
	colorHighlight = lipgloss.Color("#8FB0FF")
)

// Styles
var (
	// Tabs
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(colorPrimary).
			Padding(0, 1)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Padding(0, 1)

	// Panels
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Padding(1, 2)

	// Stopwatch and pomodoro countdown
	timerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Align(lipgloss.Center)

	timerRunningStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorSuccess).
				Align(lipgloss.Center)

	timerPausedStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorWarning).
				Align(lipgloss.Center)

	// Text
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorFg)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	accentStyle = lipgloss.NewStyle().
			Foreground(colorAccent)

	successStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	highlightStyle = lipgloss.NewStyle().
			Foreground(colorHighlight)

	// Header/footer
	headerStyle = lipgloss.NewStyle().
			Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)

	// List items
	selectedItemStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	normalItemStyle = lipgloss.NewStyle().
			Foreground(colorFg)

	// Board columns
	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(0, 1)

	activeColumnStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorSecondary).
				Padding(0, 1)
)

// heatColors shade activity calendar cells by intensity 0-3.
var heatColors = []lipgloss.Color{colorSubtle, lipgloss.Color("#1F6F5C"), colorSecondary, colorSuccess}

// priorityStyles colors task priorities on the board.
var priorityStyles = map[string]lipgloss.Style{
	"high":   errorStyle,
	"medium": warningStyle,
	"low":    mutedStyle,
}
