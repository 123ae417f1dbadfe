package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/sadopc/studytrack/internal/model"
)

// maxStreakScan bounds the backward walk in HabitStreak.
const maxStreakScan = 365

// HabitDay is one bucket of WeeklyHabitData.
type HabitDay struct {
	Day       string `json:"day"`
	Date      string `json:"date"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
}

// CalendarDay is one cell of ActivityCalendar.
type CalendarDay struct {
	Date            string `json:"date"`
	CompletedTasks  int    `json:"completed_tasks"`
	CompletedHabits int    `json:"completed_habits"`
	TotalTasks      int    `json:"total_tasks"`
	Total           int    `json:"total"`
	Intensity       int    `json:"intensity"`
}

// loggedDays collects the distinct days a habit was checked in.
func loggedDays(logs []model.HabitLog, habitID string) map[string]bool {
	days := make(map[string]bool)
	for _, l := range logs {
		if l.HabitID == habitID {
			days[l.Date] = true
		}
	}
	return days
}

// HabitStreak counts consecutive logged days walking back from today. A
// missing log for today does not break the streak; counting then starts at
// yesterday.
func (e *Engine) HabitStreak(logs []model.HabitLog, habitID string) int {
	days := loggedDays(logs, habitID)
	if len(days) == 0 {
		return 0
	}

	streak := 0
	check := e.midnight()
	for i := 0; i < maxStreakScan; i++ {
		if days[dayKey(check)] {
			streak++
			check = check.AddDate(0, 0, -1)
			continue
		}
		if i == 0 {
			check = check.AddDate(0, 0, -1)
			continue
		}
		break
	}
	return streak
}

// HabitCompletionRate is the percentage of days, from the first log through
// today, on which the habit was logged at least once.
func (e *Engine) HabitCompletionRate(logs []model.HabitLog, habitID string) (int, error) {
	set := loggedDays(logs, habitID)
	if len(set) == 0 {
		return 0, nil
	}
	days := make([]string, 0, len(set))
	for d := range set {
		days = append(days, d)
	}
	sort.Strings(days)

	first, err := ParseDay("habit log date", days[0])
	if err != nil {
		return 0, err
	}
	total := daysBetween(first, e.midnight()) + 1
	if total < 1 {
		// every log is dated in the future
		total = 1
	}
	return min(percent(len(days), total), 100), nil
}

// BestStreak is the longest current streak across habits.
func (e *Engine) BestStreak(logs []model.HabitLog, habits []model.Habit) int {
	best := 0
	for _, h := range habits {
		if s := e.HabitStreak(logs, h.ID); s > best {
			best = s
		}
	}
	return best
}

// WeeklyHabitData reports, for each of the last 7 days, how many habits were
// logged at least once.
func (e *Engine) WeeklyHabitData(logs []model.HabitLog, habits []model.Habit) []HabitDay {
	days := e.LastNDays(7)
	out := make([]HabitDay, len(days))
	for i, d := range days {
		key := dayKey(d)
		out[i] = HabitDay{
			Day:   d.Format("Mon"),
			Date:  key,
			Total: len(habits),
		}
		for _, h := range habits {
			if habitLoggedOn(logs, h.ID, key) {
				out[i].Completed++
			}
		}
	}
	return out
}

// ActivityCalendar summarizes completed tasks and habits for every day of
// the month containing month.
func (e *Engine) ActivityCalendar(tasks []model.Task, logs []model.HabitLog, habits []model.Habit, month time.Time) []CalendarDay {
	start := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, month.Location())
	end := start.AddDate(0, 1, 0)

	var out []CalendarDay
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		key := dayKey(d)
		cd := CalendarDay{Date: key}
		for _, t := range tasks {
			if t.ScheduledDate == nil || *t.ScheduledDate != key {
				continue
			}
			cd.TotalTasks++
			if t.Status == model.StatusDone {
				cd.CompletedTasks++
			}
		}
		for _, h := range habits {
			if habitLoggedOn(logs, h.ID, key) {
				cd.CompletedHabits++
			}
		}
		cd.Total = cd.CompletedTasks + cd.CompletedHabits
		cd.Intensity = intensity(cd.Total)
		out = append(out, cd)
	}
	return out
}

func habitLoggedOn(logs []model.HabitLog, habitID, day string) bool {
	for _, l := range logs {
		if l.HabitID == habitID && l.Date == day {
			return true
		}
	}
	return false
}

// intensity buckets a day's activity count into four heat levels.
func intensity(total int) int {
	switch {
	case total == 0:
		return 0
	case total <= 2:
		return 1
	case total <= 5:
		return 2
	default:
		return 3
	}
}

// percent rounds 100*n/d to the nearest integer; 0 when d is 0.
func percent(n, d int) int {
	if d == 0 {
		return 0
	}
	return int(math.Round(100 * float64(n) / float64(d)))
}
