package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/studytrack/internal/analytics"
	"github.com/sadopc/studytrack/internal/model"
	"github.com/sadopc/studytrack/internal/notify"
	"github.com/sadopc/studytrack/internal/store"
)

type pomodoroPhase int

const (
	pomodoroIdle pomodoroPhase = iota
	pomodoroWork
	pomodoroShortBreak
	pomodoroLongBreak
	pomodoroCompleted
)

var phaseNames = map[pomodoroPhase]string{
	pomodoroIdle:       "IDLE",
	pomodoroWork:       "WORK",
	pomodoroShortBreak: "SHORT BREAK",
	pomodoroLongBreak:  "LONG BREAK",
	pomodoroCompleted:  "COMPLETED",
}

// pickStep walks the subject then task choice made before a cycle starts.
type pickStep int

const (
	pickNone pickStep = iota
	pickSubject
	pickTask
)

type pomodoroModel struct {
	store    *store.Store
	notifier notify.Notifier
	log      *slog.Logger
	now      func() time.Time
	width    int
	height   int

	phase          pomodoroPhase
	completedCount int
	targetCount    int

	remaining  time.Duration
	phaseStart time.Time
	phaseEnd   time.Time

	// Durations from settings
	workDuration      time.Duration
	breakDuration     time.Duration
	longBreakDuration time.Duration
	notifyEnabled     bool

	subject *model.Subject
	task    *model.Task

	step       pickStep
	cursor     int
	subjects   []model.Subject
	candidates []model.Task
}

func newPomodoroModel(s *store.Store, n notify.Notifier, log *slog.Logger) pomodoroModel {
	m := pomodoroModel{
		store:       s,
		notifier:    n,
		log:         log,
		now:         time.Now,
		phase:       pomodoroIdle,
		targetCount: 4,
	}
	m.loadSettings()
	return m
}

func (p *pomodoroModel) loadSettings() {
	p.workDuration = time.Duration(p.store.GetIntSetting(store.SettingPomodoroWork, 1500)) * time.Second
	p.breakDuration = time.Duration(p.store.GetIntSetting(store.SettingPomodoroBreak, 300)) * time.Second
	p.longBreakDuration = time.Duration(p.store.GetIntSetting(store.SettingPomodoroLongBreak, 900)) * time.Second
	p.targetCount = max(1, p.store.GetIntSetting(store.SettingPomodoroCount, 4))

	v, err := p.store.GetSetting(store.SettingNotify)
	p.notifyEnabled = err != nil || v != "false"
}

func (p *pomodoroModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

func (p pomodoroModel) active() bool {
	return p.phase == pomodoroWork || p.phase == pomodoroShortBreak || p.phase == pomodoroLongBreak
}

func (p pomodoroModel) picking() bool { return p.step != pickNone }

type pomodoroPickMsg struct {
	subjects []model.Subject
	tasks    []model.Task
}

func (p pomodoroModel) loadChoices() tea.Cmd {
	return func() tea.Msg {
		subjects, err := p.store.ListSubjects()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Load error: %v", err), isError: true}
		}
		tasks, err := p.store.ListTasks()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Load error: %v", err), isError: true}
		}
		return pomodoroPickMsg{subjects: subjects, tasks: tasks}
	}
}

func (p pomodoroModel) update(msg tea.Msg) (pomodoroModel, tea.Cmd) {
	switch msg := msg.(type) {
	case pomodoroPickMsg:
		if len(msg.subjects) == 0 {
			p.step = pickNone
			return p, func() tea.Msg {
				return statusMsg{text: "No subjects yet. Press 2 to go to Subjects and create one.", isError: true}
			}
		}
		p.subjects = msg.subjects
		p.candidates = msg.tasks
		p.step = pickSubject
		p.cursor = 0
		return p, nil

	case tickMsg:
		if p.active() {
			p.remaining = p.phaseEnd.Sub(p.now())
			if p.remaining <= 0 {
				return p.advancePhase()
			}
		}
		return p, nil

	case tea.KeyMsg:
		if p.picking() {
			return p.updatePicker(msg)
		}
		switch {
		case key.Matches(msg, keys.Start):
			if p.phase == pomodoroIdle || p.phase == pomodoroCompleted {
				return p, p.loadChoices()
			}
		case key.Matches(msg, keys.Stop):
			if p.phase != pomodoroIdle {
				return p.cancelSession()
			}
		case key.Matches(msg, keys.Pause):
			// Skip break
			if p.phase == pomodoroShortBreak || p.phase == pomodoroLongBreak {
				return p.startWorkPhase()
			}
		}
	}
	return p, nil
}

// openTasks lists unfinished tasks that belong to the subject or to none.
func openTasks(tasks []model.Task, subjectID string) []model.Task {
	var out []model.Task
	for _, t := range tasks {
		if t.Status == model.StatusDone {
			continue
		}
		if t.SubjectID == nil || *t.SubjectID == subjectID {
			out = append(out, t)
		}
	}
	return out
}

func (p pomodoroModel) updatePicker(msg tea.KeyMsg) (pomodoroModel, tea.Cmd) {
	limit := len(p.subjects)
	if p.step == pickTask {
		// row 0 is "no task"
		limit = len(p.candidates) + 1
	}

	switch {
	case key.Matches(msg, keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(msg, keys.Down):
		if p.cursor < limit-1 {
			p.cursor++
		}
	case key.Matches(msg, keys.Back):
		p.step = pickNone
	case key.Matches(msg, keys.Enter):
		if p.step == pickSubject {
			sub := p.subjects[p.cursor]
			p.subject = &sub
			p.task = nil
			p.candidates = openTasks(p.candidates, sub.ID)
			if len(p.candidates) == 0 {
				p.step = pickNone
				return p.startSession()
			}
			p.step = pickTask
			p.cursor = 0
			return p, nil
		}
		if p.cursor > 0 {
			t := p.candidates[p.cursor-1]
			p.task = &t
		}
		p.step = pickNone
		return p.startSession()
	}
	return p, nil
}

func (p pomodoroModel) startSession() (pomodoroModel, tea.Cmd) {
	p.completedCount = 0
	p.loadSettings()
	p.log.Info("pomodoro started",
		slog.String("subject", p.subject.Name),
		slog.Int("work_seconds", int(p.workDuration.Seconds())),
		slog.Int("target", p.targetCount),
	)
	np, _ := p.startWorkPhase()
	return np, func() tea.Msg { return timerStartedMsg{} }
}

func (p pomodoroModel) startWorkPhase() (pomodoroModel, tea.Cmd) {
	p.phase = pomodoroWork
	p.phaseStart = p.now()
	p.remaining = p.workDuration
	p.phaseEnd = p.phaseStart.Add(p.workDuration)
	return p, nil
}

func (p pomodoroModel) startBreak(phase pomodoroPhase, d time.Duration) pomodoroModel {
	p.phase = phase
	p.phaseStart = p.now()
	p.remaining = d
	p.phaseEnd = p.phaseStart.Add(d)
	return p
}

func (p pomodoroModel) notify(title, message string) {
	if !p.notifyEnabled {
		return
	}
	if err := p.notifier.Notify(title, message); err != nil {
		p.log.Warn("notify failed", slog.String("error", err.Error()))
	}
}

// advancePhase ends the current phase. A finished work phase is recorded as
// a session; the last one of the cycle leads into the long break.
func (p pomodoroModel) advancePhase() (pomodoroModel, tea.Cmd) {
	switch p.phase {
	case pomodoroWork:
		p.completedCount++

		var taskID *string
		if p.task != nil {
			taskID = &p.task.ID
		}
		session, err := p.store.AddSession(p.subject.ID, taskID, p.phaseStart, p.phaseEnd)
		saved := func() tea.Msg { return sessionSavedMsg{session: session} }
		switch {
		case errors.Is(err, store.ErrTooShort):
			// sub-minute work setting: the cycle goes on, nothing is stored
			p.log.Warn("pomodoro too short to record", slog.Duration("work", p.workDuration))
			saved = nil
		case err != nil:
			p.log.Error("record pomodoro", slog.String("error", err.Error()))
			p.phase = pomodoroIdle
			return p, errStatus("Could not record session", err)
		default:
			p.log.Info("pomodoro recorded",
				slog.String("session", session.ID),
				slog.Int("minutes", session.DurationMinutes),
				slog.Int("completed", p.completedCount),
			)
		}

		if p.completedCount >= p.targetCount {
			p = p.startBreak(pomodoroLongBreak, p.longBreakDuration)
			p.notify("Long break", fmt.Sprintf("%d pomodoros done. Take %s.", p.completedCount, analytics.FormatMinutes(int(p.longBreakDuration.Minutes()))))
			return p, tea.Batch(saved, status("Cycle finished, long break!"))
		}
		p = p.startBreak(pomodoroShortBreak, p.breakDuration)
		p.notify("Break time", fmt.Sprintf("Pomodoro %d/%d done.", p.completedCount, p.targetCount))
		return p, tea.Batch(saved, status("Break time!"))

	case pomodoroShortBreak:
		p.notify("Back to work", p.subject.Name)
		return p.startWorkPhase()

	case pomodoroLongBreak:
		p.phase = pomodoroCompleted
		p.remaining = 0
		p.notify("Pomodoro complete", fmt.Sprintf("%d pomodoros of %s.", p.completedCount, p.subject.Name))
		return p, status("Pomodoro cycle complete!")
	}
	return p, nil
}

// cancelSession drops the phase in progress; finished work phases are
// already recorded.
func (p pomodoroModel) cancelSession() (pomodoroModel, tea.Cmd) {
	p.log.Info("pomodoro cancelled", slog.Int("completed", p.completedCount))
	p.phase = pomodoroIdle
	p.remaining = 0
	return p, status("Pomodoro cancelled")
}

func (p pomodoroModel) view() string {
	w := p.width - 4

	if p.picking() {
		return p.renderPicker(w)
	}

	title := titleStyle.Render("Pomodoro Timer")

	var timeDisplay, phaseLabel, indicator string
	big := func(s lipgloss.Style, text string) string {
		return s.Bold(true).Width(w - 6).Align(lipgloss.Center).Render(text)
	}

	switch p.phase {
	case pomodoroIdle:
		timeDisplay = timerStyle.Width(w - 6).Render(formatPomodoroTime(p.workDuration))
		phaseLabel = mutedStyle.Render("Ready to start")
		indicator = mutedStyle.Render("Press s to pick a subject and begin")
	case pomodoroWork:
		timeDisplay = big(accentStyle, formatPomodoroTime(p.remaining))
		phaseLabel = accentStyle.Bold(true).Render(phaseNames[p.phase])
		indicator = p.renderProgress()
	case pomodoroShortBreak:
		timeDisplay = big(successStyle, formatPomodoroTime(p.remaining))
		phaseLabel = successStyle.Bold(true).Render(phaseNames[p.phase])
		indicator = p.renderProgress()
	case pomodoroLongBreak:
		timeDisplay = big(highlightStyle, formatPomodoroTime(p.remaining))
		phaseLabel = highlightStyle.Bold(true).Render(phaseNames[p.phase])
		indicator = p.renderProgress()
	case pomodoroCompleted:
		timeDisplay = big(successStyle, "Done!")
		phaseLabel = successStyle.Bold(true).Render("CYCLE COMPLETE")
		indicator = p.renderProgress()
	}

	var focus string
	if p.subject != nil && p.phase != pomodoroIdle {
		focus = colorDot(p.subject.Color) + " " + highlightStyle.Render(p.subject.Name)
		if p.task != nil {
			focus += mutedStyle.Render(" / " + p.task.Title)
		}
	}

	var controls string
	switch p.phase {
	case pomodoroIdle, pomodoroCompleted:
		controls = mutedStyle.Render("s: start")
	case pomodoroWork:
		controls = mutedStyle.Render("x: cancel")
	case pomodoroShortBreak, pomodoroLongBreak:
		controls = mutedStyle.Render("space: skip break  x: cancel")
	}

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Center,
		title, "", timeDisplay, phaseLabel, focus, "", indicator, "", controls,
	))
}

func (p pomodoroModel) renderPicker(w int) string {
	var rows []string
	if p.step == pickSubject {
		rows = append(rows, titleStyle.Render("Select Subject"))
		for i, s := range p.subjects {
			cursor, style := cursorPrefix(i == p.cursor)
			rows = append(rows, style.Render(fmt.Sprintf("%s%s %s", cursor, colorDot(s.Color), s.Name)))
		}
	} else {
		rows = append(rows, titleStyle.Render("Select Task"))
		cursor, style := cursorPrefix(p.cursor == 0)
		rows = append(rows, style.Render(cursor+"(no task)"))
		for i, t := range p.candidates {
			cursor, style := cursorPrefix(i+1 == p.cursor)
			rows = append(rows, style.Render(cursor+t.Title))
		}
	}
	rows = append(rows, "", mutedStyle.Render("  enter: select  esc: cancel"))
	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (p pomodoroModel) renderProgress() string {
	var parts []string
	for i := 0; i < p.targetCount; i++ {
		switch {
		case i < p.completedCount:
			parts = append(parts, successStyle.Render("●"))
		case i == p.completedCount && p.phase == pomodoroWork:
			parts = append(parts, accentStyle.Render("◐"))
		default:
			parts = append(parts, mutedStyle.Render("○"))
		}
	}
	counter := mutedStyle.Render(fmt.Sprintf("  %d/%d", p.completedCount, p.targetCount))
	return strings.Join(parts, " ") + counter
}

func formatPomodoroTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d", m, s)
}
