package model

import "time"

// DayLayout is the canonical calendar-day key used by every dated record.
const DayLayout = "2006-01-02"

type Category string

const (
	CategoryStudy Category = "study"
	CategorySkill Category = "skill"
)

type MetricType string

const (
	MetricBinary  MetricType = "binary"
	MetricCount   MetricType = "count"
	MetricMinutes MetricType = "minutes"
)

type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusDone       TaskStatus = "done"
)

// Statuses lists the board columns in display order.
var Statuses = []TaskStatus{StatusTodo, StatusInProgress, StatusDone}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type Recurrence string

const (
	RecurrenceNone   Recurrence = ""
	RecurrenceDaily  Recurrence = "daily"
	RecurrenceWeekly Recurrence = "weekly"
)

type Subject struct {
	ID        string
	Name      string
	Category  Category
	GoalHours *float64
	Color     string
	CreatedAt time.Time
}

type Habit struct {
	ID          string
	Name        string
	MetricType  MetricType
	TargetValue *float64
	Color       string
	Icon        string
	CreatedAt   time.Time
}

type HabitLog struct {
	ID      string
	HabitID string
	Value   float64 // 1 for binary habits
	Date    string  // YYYY-MM-DD
	Note    *string
}

type SessionLog struct {
	ID              string
	SubjectID       string
	TaskID          *string
	DurationMinutes int
	StartedAt       time.Time
	CompletedAt     time.Time
	Date            string // YYYY-MM-DD the session counts toward
}

type Task struct {
	ID              string
	Title           string
	Description     *string
	Status          TaskStatus
	ScheduledDate   *string // YYYY-MM-DD
	Deadline        *string // YYYY-MM-DD
	StartTime       *string // HH:MM
	EndTime         *string // HH:MM
	Priority        Priority
	Position        int
	Recurrence      Recurrence
	SubjectID       *string
	EstimateMinutes *int
	ActualMinutes   int
	CreatedAt       time.Time
}

// Snapshot bundles the record collections handed to one analytics call.
type Snapshot struct {
	Subjects    []Subject
	Habits      []Habit
	HabitLogs   []HabitLog
	SessionLogs []SessionLog
	Tasks       []Task
}

// StringPtr and IntPtr help build records with optional fields.
func StringPtr(s string) *string { return &s }

func IntPtr(n int) *int { return &n }

func FloatPtr(f float64) *float64 { return &f }
