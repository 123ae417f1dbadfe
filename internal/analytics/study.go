package analytics

import (
	"fmt"

	"github.com/sadopc/studytrack/internal/model"
)

// DayMinutes is one bucket of WeeklyStudyData.
type DayMinutes struct {
	Day     string `json:"day"`
	Date    string `json:"date"`
	Minutes int    `json:"minutes"`
}

// LabelMinutes is one bucket of DailyStudyData.
type LabelMinutes struct {
	Label   string `json:"date"`
	Minutes int    `json:"minutes"`
}

// DistributionSlice is one subject's share of all study time.
type DistributionSlice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

// Level is a mastery tier derived from total study minutes.
type Level struct {
	Level int    `json:"level"`
	Title string `json:"title"`
}

// levels is evaluated top-down; the first threshold reached wins.
var levels = []struct {
	minMinutes int
	Level
}{
	{6000, Level{10, "Master"}},
	{3000, Level{8, "Expert"}},
	{1500, Level{6, "Advanced"}},
	{600, Level{4, "Intermediate"}},
	{120, Level{2, "Beginner"}},
}

func sumMinutes(logs []model.SessionLog, keep func(model.SessionLog) bool) int {
	total := 0
	for _, l := range logs {
		if keep(l) {
			total += l.DurationMinutes
		}
	}
	return total
}

// TodayStudyMinutes sums today's sessions across all subjects.
func (e *Engine) TodayStudyMinutes(logs []model.SessionLog) int {
	today := e.Today()
	return sumMinutes(logs, func(l model.SessionLog) bool { return l.Date == today })
}

// SubjectTotalMinutes sums every session logged against subjectID.
func SubjectTotalMinutes(logs []model.SessionLog, subjectID string) int {
	return sumMinutes(logs, func(l model.SessionLog) bool { return l.SubjectID == subjectID })
}

// SubjectTodayMinutes sums today's sessions for subjectID.
func (e *Engine) SubjectTodayMinutes(logs []model.SessionLog, subjectID string) int {
	today := e.Today()
	return sumMinutes(logs, func(l model.SessionLog) bool {
		return l.SubjectID == subjectID && l.Date == today
	})
}

// WeeklyStudyData buckets study minutes over the last 7 days, oldest first.
// Subjects are accepted for call-site symmetry; every session counts.
func (e *Engine) WeeklyStudyData(logs []model.SessionLog, _ []model.Subject) []DayMinutes {
	days := e.LastNDays(7)
	out := make([]DayMinutes, len(days))
	for i, d := range days {
		key := dayKey(d)
		out[i] = DayMinutes{
			Day:     d.Format("Mon"),
			Date:    key,
			Minutes: sumMinutes(logs, func(l model.SessionLog) bool { return l.Date == key }),
		}
	}
	return out
}

// DailyStudyData buckets study minutes over the last 30 days, oldest first,
// labelled for display ("Jan 2").
func (e *Engine) DailyStudyData(logs []model.SessionLog) []LabelMinutes {
	days := e.LastNDays(30)
	out := make([]LabelMinutes, len(days))
	for i, d := range days {
		key := dayKey(d)
		out[i] = LabelMinutes{
			Label:   d.Format("Jan 2"),
			Minutes: sumMinutes(logs, func(l model.SessionLog) bool { return l.Date == key }),
		}
	}
	return out
}

// SubjectDistribution returns total minutes per subject in input order,
// omitting subjects with no time.
func SubjectDistribution(logs []model.SessionLog, subjects []model.Subject) []DistributionSlice {
	var out []DistributionSlice
	for _, s := range subjects {
		total := SubjectTotalMinutes(logs, s.ID)
		if total <= 0 {
			continue
		}
		out = append(out, DistributionSlice{Name: s.Name, Value: total, Color: s.Color})
	}
	return out
}

// MostFocusedSubject returns the subject with the most minutes since
// today-7 days (inclusive, so the window spans 8 calendar days). Among tied
// subjects the later one in input order wins. Nil when nothing qualifies.
func (e *Engine) MostFocusedSubject(logs []model.SessionLog, subjects []model.Subject) *model.Subject {
	cutoff := dayKey(e.daysAgo(7))
	var recent []model.SessionLog
	for _, l := range logs {
		if l.Date >= cutoff {
			recent = append(recent, l)
		}
	}
	if len(recent) == 0 || len(subjects) == 0 {
		return nil
	}

	best, bestMinutes := 0, SubjectTotalMinutes(recent, subjects[0].ID)
	for i := 1; i < len(subjects); i++ {
		if m := SubjectTotalMinutes(recent, subjects[i].ID); m >= bestMinutes {
			best, bestMinutes = i, m
		}
	}
	if bestMinutes <= 0 {
		return nil
	}
	s := subjects[best]
	return &s
}

// BestDayOfWeek returns the weekday with the highest mean session length
// over all history, or "N/A" without data. Ties go to the weekday first
// seen in log order.
func BestDayOfWeek(logs []model.SessionLog) (string, error) {
	type group struct {
		sum, n int
	}
	groups := make(map[string]*group)
	var order []string
	for _, l := range logs {
		d, err := ParseDay("session date", l.Date)
		if err != nil {
			return "", err
		}
		name := d.Weekday().String()
		g, ok := groups[name]
		if !ok {
			g = &group{}
			groups[name] = g
			order = append(order, name)
		}
		g.sum += l.DurationMinutes
		g.n++
	}

	best, bestAvg := "N/A", 0.0
	for _, name := range order {
		g := groups[name]
		avg := float64(g.sum) / float64(g.n)
		if avg > bestAvg {
			best, bestAvg = name, avg
		}
	}
	return best, nil
}

// SubjectLevel maps total study minutes onto the mastery table.
func SubjectLevel(totalMinutes int) Level {
	for _, l := range levels {
		if totalMinutes >= l.minMinutes {
			return l.Level
		}
	}
	return Level{1, "Novice"}
}

// FormatMinutes renders minutes as "45m" or "2h 5m".
func FormatMinutes(minutes int) string {
	h := minutes / 60
	m := minutes % 60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}
