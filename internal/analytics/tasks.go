package analytics

import (
	"github.com/sadopc/studytrack/internal/model"
)

// TaskMinutes is the study time logged against one task.
type TaskMinutes struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Minutes int    `json:"minutes"`
}

// DayCount is one bucket of TodosCompletedPerDay.
type DayCount struct {
	Day       string `json:"day"`
	Completed int    `json:"completed"`
}

// WeekCount is one bucket of CardsCompletedPerWeek.
type WeekCount struct {
	Week      string `json:"week"`
	Completed int    `json:"completed"`
}

// ColumnMinutes is the study time of tasks currently in one board column.
type ColumnMinutes struct {
	Column  string `json:"column"`
	Minutes int    `json:"minutes"`
}

// PlannedActual counts today's scheduled tasks and how many are done.
type PlannedActual struct {
	Planned int `json:"planned"`
	Actual  int `json:"actual"`
}

// TaskAccuracy is actual against estimated minutes for one task, in percent.
type TaskAccuracy struct {
	Title    string `json:"title"`
	Estimate int    `json:"estimate"`
	Actual   int    `json:"actual"`
	Accuracy int    `json:"accuracy"`
}

// ColumnLabels names the board columns in display order.
var ColumnLabels = map[model.TaskStatus]string{
	model.StatusTodo:       "To Do",
	model.StatusInProgress: "In Progress",
	model.StatusDone:       "Done",
}

func isDone(t model.Task) bool { return t.Status == model.StatusDone }

func scheduledOn(t model.Task, day string) bool {
	return t.ScheduledDate != nil && *t.ScheduledDate == day
}

// TimePerTask sums linked session minutes per task, in task order, leaving
// out tasks with no time.
func TimePerTask(logs []model.SessionLog, tasks []model.Task) []TaskMinutes {
	var out []TaskMinutes
	for _, t := range tasks {
		minutes := sumMinutes(logs, func(l model.SessionLog) bool {
			return l.TaskID != nil && *l.TaskID == t.ID
		})
		if minutes > 0 {
			out = append(out, TaskMinutes{ID: t.ID, Title: t.Title, Minutes: minutes})
		}
	}
	return out
}

// TodosCompletedPerDay counts done tasks scheduled on each of the last 7
// days. Tasks carry no completion timestamp, so the scheduled day stands in.
func (e *Engine) TodosCompletedPerDay(tasks []model.Task) []DayCount {
	days := e.LastNDays(7)
	out := make([]DayCount, len(days))
	for i, d := range days {
		key := dayKey(d)
		out[i].Day = d.Format("Mon")
		for _, t := range tasks {
			if isDone(t) && scheduledOn(t, key) {
				out[i].Completed++
			}
		}
	}
	return out
}

// TodoCompletionRate is the percentage of tasks that are done.
func TodoCompletionRate(tasks []model.Task) int {
	done := 0
	for _, t := range tasks {
		if isDone(t) {
			done++
		}
	}
	return percent(done, len(tasks))
}

// OverdueTodos returns unfinished tasks scheduled strictly before today.
func (e *Engine) OverdueTodos(tasks []model.Task) []model.Task {
	today := e.Today()
	var out []model.Task
	for _, t := range tasks {
		if !isDone(t) && t.ScheduledDate != nil && *t.ScheduledDate < today {
			out = append(out, t)
		}
	}
	return out
}

// CardsCompletedPerWeek counts done tasks per trailing week, oldest week
// first, labelled by each week's first day.
func (e *Engine) CardsCompletedPerWeek(tasks []model.Task) []WeekCount {
	weeks := e.TrailingWeeks(4, OldestFirst)
	out := make([]WeekCount, len(weeks))
	for i, w := range weeks {
		out[i].Week = w.From.Format("Jan 2")
		for _, t := range tasks {
			if isDone(t) && t.ScheduledDate != nil && w.Contains(*t.ScheduledDate) {
				out[i].Completed++
			}
		}
	}
	return out
}

// WIPCount counts tasks in the in-progress column.
func WIPCount(tasks []model.Task) int {
	n := 0
	for _, t := range tasks {
		if t.Status == model.StatusInProgress {
			n++
		}
	}
	return n
}

// TimePerColumn sums linked session minutes by each task's current column.
// Time logged while a task was in progress moves with the task once it is
// done.
func TimePerColumn(logs []model.SessionLog, tasks []model.Task) []ColumnMinutes {
	byID := make(map[string]model.TaskStatus, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t.Status
	}
	sums := make(map[model.TaskStatus]int, len(model.Statuses))
	for _, l := range logs {
		if l.TaskID == nil {
			continue
		}
		if status, ok := byID[*l.TaskID]; ok {
			sums[status] += l.DurationMinutes
		}
	}

	out := make([]ColumnMinutes, len(model.Statuses))
	for i, s := range model.Statuses {
		out[i] = ColumnMinutes{Column: ColumnLabels[s], Minutes: sums[s]}
	}
	return out
}

// PlannedVsActual totals estimates (missing counts as zero) and actual
// minutes across all tasks.
func PlannedVsActual(tasks []model.Task) PlannedActual {
	var pa PlannedActual
	for _, t := range tasks {
		if t.EstimateMinutes != nil {
			pa.Planned += *t.EstimateMinutes
		}
		pa.Actual += t.ActualMinutes
	}
	return pa
}

// FocusAccuracy is actual time as a percentage of planned time.
func FocusAccuracy(tasks []model.Task) int {
	pa := PlannedVsActual(tasks)
	return percent(pa.Actual, pa.Planned)
}

// EstimateAccuracy compares actual to estimated minutes for tasks that have
// both. Accuracy exceeds 100 when a task ran over.
func EstimateAccuracy(tasks []model.Task) []TaskAccuracy {
	var out []TaskAccuracy
	for _, t := range tasks {
		if t.EstimateMinutes == nil || *t.EstimateMinutes <= 0 || t.ActualMinutes <= 0 {
			continue
		}
		out = append(out, TaskAccuracy{
			Title:    t.Title,
			Estimate: *t.EstimateMinutes,
			Actual:   t.ActualMinutes,
			Accuracy: percent(t.ActualMinutes, *t.EstimateMinutes),
		})
	}
	return out
}
