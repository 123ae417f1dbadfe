package analytics

import (
	"github.com/sadopc/studytrack/internal/model"
)

// SubjectStat is one subject's study totals and mastery level.
type SubjectStat struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Color        string `json:"color"`
	TotalMinutes int    `json:"total_minutes"`
	TodayMinutes int    `json:"today_minutes"`
	Level        Level  `json:"level"`
}

// HabitStat is one habit's streak and completion rate.
type HabitStat struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Streak         int    `json:"streak"`
	CompletionRate int    `json:"completion_rate"`
	DoneToday      bool   `json:"done_today"`
}

// StudyReport holds study-time totals, charts and per-subject figures.
type StudyReport struct {
	TotalMinutes int                 `json:"total_minutes"`
	TodayMinutes int                 `json:"today_minutes"`
	MostFocused  string              `json:"most_focused"`
	BestDay      string              `json:"best_day"`
	Weekly       []DayMinutes        `json:"weekly"`
	Daily        []LabelMinutes      `json:"daily"`
	Distribution []DistributionSlice `json:"distribution"`
	Subjects     []SubjectStat       `json:"subjects"`
}

// HabitReport holds per-habit streaks and the weekly check-in chart.
type HabitReport struct {
	Weekly     []HabitDay  `json:"weekly"`
	Habits     []HabitStat `json:"habits"`
	BestStreak int         `json:"best_streak"`
	Active     int         `json:"active"`
}

// TaskReport holds task completion figures.
type TaskReport struct {
	CompletionRate int           `json:"completion_rate"`
	Total          int           `json:"total"`
	Completed      int           `json:"completed"`
	Overdue        int           `json:"overdue"`
	PerDay         []DayCount    `json:"per_day"`
	TimePerTask    []TaskMinutes `json:"time_per_task"`
}

// KanbanReport holds board throughput and time per column.
type KanbanReport struct {
	WIP           int             `json:"wip"`
	Done          int             `json:"done"`
	Active        int             `json:"active"`
	PerWeek       []WeekCount     `json:"per_week"`
	TimePerColumn []ColumnMinutes `json:"time_per_column"`
}

// PlanningReport compares today's plan with what got done.
type PlanningReport struct {
	PlannedActual
	FocusAccuracy    int            `json:"focus_accuracy"`
	EstimateAccuracy []TaskAccuracy `json:"estimate_accuracy"`
}

// Report gathers every figure the analytics screen shows.
type Report struct {
	Today    string         `json:"today"`
	Empty    bool           `json:"empty"`
	Study    StudyReport    `json:"study"`
	Habits   HabitReport    `json:"habits"`
	Tasks    TaskReport     `json:"tasks"`
	Kanban   KanbanReport   `json:"kanban"`
	Planning PlanningReport `json:"planning"`
}

// Report evaluates all queries against one snapshot. It fails only when a
// record carries a malformed calendar day.
func (e *Engine) Report(s model.Snapshot) (Report, error) {
	r := Report{
		Today: e.Today(),
		Empty: len(s.SessionLogs) == 0 && len(s.HabitLogs) == 0 && len(s.Tasks) == 0,
	}

	bestDay, err := BestDayOfWeek(s.SessionLogs)
	if err != nil {
		return Report{}, err
	}
	r.Study = StudyReport{
		TotalMinutes: sumMinutes(s.SessionLogs, func(model.SessionLog) bool { return true }),
		TodayMinutes: e.TodayStudyMinutes(s.SessionLogs),
		MostFocused:  "N/A",
		BestDay:      bestDay,
		Weekly:       e.WeeklyStudyData(s.SessionLogs, s.Subjects),
		Daily:        e.DailyStudyData(s.SessionLogs),
		Distribution: SubjectDistribution(s.SessionLogs, s.Subjects),
	}
	if mf := e.MostFocusedSubject(s.SessionLogs, s.Subjects); mf != nil {
		r.Study.MostFocused = mf.Name
	}
	for _, sub := range s.Subjects {
		total := SubjectTotalMinutes(s.SessionLogs, sub.ID)
		r.Study.Subjects = append(r.Study.Subjects, SubjectStat{
			ID:           sub.ID,
			Name:         sub.Name,
			Color:        sub.Color,
			TotalMinutes: total,
			TodayMinutes: e.SubjectTodayMinutes(s.SessionLogs, sub.ID),
			Level:        SubjectLevel(total),
		})
	}
	r.Habits = HabitReport{
		Weekly:     e.WeeklyHabitData(s.HabitLogs, s.Habits),
		BestStreak: e.BestStreak(s.HabitLogs, s.Habits),
		Active:     len(s.Habits),
	}
	today := e.Today()
	for _, h := range s.Habits {
		rate, err := e.HabitCompletionRate(s.HabitLogs, h.ID)
		if err != nil {
			return Report{}, err
		}
		r.Habits.Habits = append(r.Habits.Habits, HabitStat{
			ID:             h.ID,
			Name:           h.Name,
			Streak:         e.HabitStreak(s.HabitLogs, h.ID),
			CompletionRate: rate,
			DoneToday:      habitLoggedOn(s.HabitLogs, h.ID, today),
		})
	}

	done := 0
	for _, t := range s.Tasks {
		if isDone(t) {
			done++
		}
	}
	r.Tasks = TaskReport{
		CompletionRate: TodoCompletionRate(s.Tasks),
		Total:          len(s.Tasks),
		Completed:      done,
		Overdue:        len(e.OverdueTodos(s.Tasks)),
		PerDay:         e.TodosCompletedPerDay(s.Tasks),
		TimePerTask:    TimePerTask(s.SessionLogs, s.Tasks),
	}
	r.Kanban = KanbanReport{
		WIP:           WIPCount(s.Tasks),
		Done:          done,
		Active:        len(s.Tasks) - done,
		PerWeek:       e.CardsCompletedPerWeek(s.Tasks),
		TimePerColumn: TimePerColumn(s.SessionLogs, s.Tasks),
	}
	r.Planning = PlanningReport{
		PlannedActual:    PlannedVsActual(s.Tasks),
		FocusAccuracy:    FocusAccuracy(s.Tasks),
		EstimateAccuracy: EstimateAccuracy(s.Tasks),
	}
	return r, nil
}
