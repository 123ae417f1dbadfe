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
	"github.com/sadopc/studytrack/internal/store"
)

type settingsModel struct {
	store  *store.Store
	width  int
	height int

	settings   []store.Setting
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	pomodoroWork      *string
	pomodoroBreak     *string
	pomodoroLongBreak *string
	pomodoroCount     *string
	dailyGoal         *string
	notify            *bool
}

func newSettingsModel(s *store.Store) settingsModel {
	pw, pb, plb, pc, dg := "", "", "", "", ""
	n := true
	return settingsModel{
		store:             s,
		pomodoroWork:      &pw,
		pomodoroBreak:     &pb,
		pomodoroLongBreak: &plb,
		pomodoroCount:     &pc,
		dailyGoal:         &dg,
		notify:            &n,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, err := s.store.GetAllSettings()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Load error: %v", err), isError: true}
		}
		return settingsDataMsg{settings: settings}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Edit):
			return s.showForm()
		}
	}
	return s, nil
}

func positiveInt(v string) error {
	if n, err := strconv.Atoi(strings.TrimSpace(v)); err != nil || n <= 0 {
		return fmt.Errorf("enter a whole number above 0")
	}
	return nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.pomodoroWork = secsToMin(s.getVal(store.SettingPomodoroWork, "1500"))
	*s.pomodoroBreak = secsToMin(s.getVal(store.SettingPomodoroBreak, "300"))
	*s.pomodoroLongBreak = secsToMin(s.getVal(store.SettingPomodoroLongBreak, "900"))
	*s.pomodoroCount = s.getVal(store.SettingPomodoroCount, "4")
	*s.dailyGoal = s.getVal(store.SettingDailyGoal, "120")
	*s.notify = s.getVal(store.SettingNotify, "true") != "false"

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Pomodoro work (min)").Value(s.pomodoroWork).Validate(positiveInt),
			huh.NewInput().Title("Pomodoro break (min)").Value(s.pomodoroBreak).Validate(positiveInt),
			huh.NewInput().Title("Long break (min)").Value(s.pomodoroLongBreak).Validate(positiveInt),
			huh.NewInput().Title("Pomodoros before long break").Value(s.pomodoroCount).Validate(positiveInt),
		).Title("Pomodoro"),
		huh.NewGroup(
			huh.NewInput().Title("Daily study goal (min)").Value(s.dailyGoal).Validate(positiveInt),
			huh.NewConfirm().Title("Desktop notifications").Affirmative("On").Negative("Off").Value(s.notify),
		).Title("General"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		s.formActive = false
		s.form = nil
		return s, nil
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		if err := s.saveSettings(); err != nil {
			return s, errStatus("Save failed", err)
		}
		return s, tea.Batch(s.refresh(), status("Settings saved"))
	}

	return s, cmd
}

func (s settingsModel) saveSettings() error {
	values := []store.Setting{
		{Key: store.SettingPomodoroWork, Value: minToSecs(*s.pomodoroWork)},
		{Key: store.SettingPomodoroBreak, Value: minToSecs(*s.pomodoroBreak)},
		{Key: store.SettingPomodoroLongBreak, Value: minToSecs(*s.pomodoroLongBreak)},
		{Key: store.SettingPomodoroCount, Value: strings.TrimSpace(*s.pomodoroCount)},
		{Key: store.SettingDailyGoal, Value: strings.TrimSpace(*s.dailyGoal)},
		{Key: store.SettingNotify, Value: strconv.FormatBool(*s.notify)},
	}
	for _, v := range values {
		if err := s.store.SetSetting(v.Key, v.Value); err != nil {
			return fmt.Errorf("save %s: %w", v.Key, err)
		}
	}
	return nil
}

func (s settingsModel) getVal(k, fallback string) string {
	v, err := s.store.GetSetting(k)
	if err != nil {
		return fallback
	}
	return v
}

var settingLabels = map[string]string{
	store.SettingPomodoroWork:      "Pomodoro work",
	store.SettingPomodoroBreak:     "Pomodoro break",
	store.SettingPomodoroLongBreak: "Long break",
	store.SettingPomodoroCount:     "Pomodoros per cycle",
	store.SettingDailyGoal:         "Daily study goal",
	store.SettingNotify:            "Notifications",
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Settings"), "", s.form.View()),
		)
	}

	rows := []string{titleStyle.Render("Settings"), ""}
	for _, setting := range s.settings {
		name, ok := settingLabels[setting.Key]
		if !ok {
			name = setting.Key
		}
		label := lipgloss.NewStyle().Width(24).Render(name)
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}
	rows = append(rows, "", mutedStyle.Render("Press enter to edit settings"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatSettingValue(k, v string) string {
	switch k {
	case store.SettingPomodoroWork, store.SettingPomodoroBreak, store.SettingPomodoroLongBreak:
		if secs, err := strconv.Atoi(v); err == nil {
			return fmt.Sprintf("%d min", secs/60)
		}
	case store.SettingDailyGoal:
		if mins, err := strconv.Atoi(v); err == nil {
			return analytics.FormatMinutes(mins)
		}
	case store.SettingNotify:
		if v == "false" {
			return "off"
		}
		return "on"
	}
	return v
}

func secsToMin(s string) string {
	if secs, err := strconv.Atoi(s); err == nil {
		return strconv.Itoa(secs / 60)
	}
	return s
}

func minToSecs(s string) string {
	if mins, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		return strconv.Itoa(mins * 60)
	}
	return s
}
