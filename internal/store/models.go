package store

import "errors"

// ErrNotFound is wrapped by lookups that match no row.
var ErrNotFound = errors.New("not found")

// ErrTooShort is returned by AddSession when a span rounds to zero minutes.
var ErrTooShort = errors.New("session shorter than a minute")

type Setting struct {
	Key   string
	Value string
}

// Setting keys seeded by the first migration.
const (
	SettingPomodoroWork      = "pomodoro_work"       // seconds
	SettingPomodoroBreak     = "pomodoro_break"      // seconds
	SettingPomodoroLongBreak = "pomodoro_long_break" // seconds
	SettingPomodoroCount     = "pomodoro_count"
	SettingDailyGoal         = "daily_goal" // minutes
	SettingNotify            = "notify"
)

// SessionFilter narrows ListSessions. From and To are inclusive
// YYYY-MM-DD days.
type SessionFilter struct {
	SubjectID *string
	TaskID    *string
	From      string
	To        string
	Limit     int
}

