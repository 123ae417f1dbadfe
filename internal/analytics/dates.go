package analytics

import (
	"time"

	"github.com/sadopc/studytrack/internal/model"
)

// Clock supplies the current instant. "Today" is the local calendar day of
// whatever Now returns.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always reports the same instant.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

// Order selects how multi-window results are presented.
type Order int

const (
	OldestFirst Order = iota
	NewestFirst
)

// Window is an inclusive range of calendar days.
type Window struct {
	Start string
	End   string
	From  time.Time
}

// Contains reports whether day falls inside the window, bounds included.
func (w Window) Contains(day string) bool {
	return day >= w.Start && day <= w.End
}

// Engine evaluates analytics queries against a Clock.
type Engine struct {
	clock Clock
}

// New returns an Engine reading "today" from c. A nil Clock means the
// system clock.
func New(c Clock) *Engine {
	if c == nil {
		c = SystemClock{}
	}
	return &Engine{clock: c}
}

// midnight returns the start of the current local day.
func (e *Engine) midnight() time.Time {
	now := e.clock.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

func (e *Engine) daysAgo(n int) time.Time {
	return e.midnight().AddDate(0, 0, -n)
}

// Today returns the current local calendar day as YYYY-MM-DD.
func (e *Engine) Today() string {
	return dayKey(e.midnight())
}

// LastNDays returns exactly n consecutive local midnights ending today,
// oldest first.
func (e *Engine) LastNDays(n int) []time.Time {
	if n <= 0 {
		return nil
	}
	days := make([]time.Time, n)
	for i := 0; i < n; i++ {
		days[i] = e.daysAgo(n - 1 - i)
	}
	return days
}

// TrailingWeeks returns n non-overlapping 7-day windows, the most recent
// ending today.
func (e *Engine) TrailingWeeks(n int, order Order) []Window {
	if n <= 0 {
		return nil
	}
	weeks := make([]Window, 0, n)
	for i := 0; i < n; i++ {
		start := e.daysAgo(i*7 + 6)
		weeks = append(weeks, Window{
			Start: dayKey(start),
			End:   dayKey(e.daysAgo(i * 7)),
			From:  start,
		})
	}
	if order == OldestFirst {
		for i, j := 0, len(weeks)-1; i < j; i, j = i+1, j-1 {
			weeks[i], weeks[j] = weeks[j], weeks[i]
		}
	}
	return weeks
}

// ParseDay parses a YYYY-MM-DD calendar day. field names the offending
// record field in the returned *DataFormatError.
func ParseDay(field, value string) (time.Time, error) {
	t, err := time.Parse(model.DayLayout, value)
	if err != nil {
		return time.Time{}, &DataFormatError{Field: field, Value: value, Err: err}
	}
	return t, nil
}

// daysBetween counts calendar days from a to b, ignoring time of day and zone.
func daysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

func dayKey(t time.Time) string {
	return t.Format(model.DayLayout)
}
