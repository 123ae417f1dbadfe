package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/sadopc/studytrack/internal/model"
)

const habitColumns = `id, name, metric_type, target_value, color, icon, created_at`

func scanHabit(r scanner) (model.Habit, error) {
	var h model.Habit
	var metric, createdAt string
	var target sql.NullFloat64
	if err := r.Scan(&h.ID, &h.Name, &metric, &target, &h.Color, &h.Icon, &createdAt); err != nil {
		return model.Habit{}, err
	}
	h.MetricType = model.MetricType(metric)
	h.TargetValue = floatPtr(target)
	h.CreatedAt = parseTime(createdAt)
	return h, nil
}

func (s *Store) CreateHabit(name string, metric model.MetricType, target *float64, color, icon string) (*model.Habit, error) {
	if metric == "" {
		metric = model.MetricBinary
	}
	id := newID()
	_, err := s.db.Exec(
		`INSERT INTO habits (id, name, metric_type, target_value, color, icon, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, name, string(metric), target, color, icon, nowString(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert habit: %w", err)
	}
	return s.GetHabit(id)
}

func (s *Store) GetHabit(id string) (*model.Habit, error) {
	h, err := scanHabit(s.db.QueryRow(`SELECT `+habitColumns+` FROM habits WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get habit %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get habit %s: %w", id, err)
	}
	return &h, nil
}

// ListHabits returns habits in creation order.
func (s *Store) ListHabits() ([]model.Habit, error) {
	rows, err := s.db.Query(`SELECT ` + habitColumns + ` FROM habits ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	defer rows.Close()

	var habits []model.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

func (s *Store) UpdateHabit(h model.Habit) error {
	res, err := s.db.Exec(
		`UPDATE habits SET name = ?, metric_type = ?, target_value = ?, color = ?, icon = ? WHERE id = ?`,
		h.Name, string(h.MetricType), h.TargetValue, h.Color, h.Icon, h.ID,
	)
	if err != nil {
		return fmt.Errorf("update habit: %w", err)
	}
	return requireRow(res, "habit", h.ID)
}

// DeleteHabit removes the habit and, by cascade, its logs.
func (s *Store) DeleteHabit(id string) error {
	res, err := s.db.Exec(`DELETE FROM habits WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete habit: %w", err)
	}
	return requireRow(res, "habit", id)
}

// ============================================================
// Habit logs
// ============================================================

// LogHabit records value for habitID on date, replacing any earlier log for
// that day.
func (s *Store) LogHabit(habitID, date string, value float64, note *string) (*model.HabitLog, error) {
	_, err := s.db.Exec(
		`INSERT INTO habit_logs (id, habit_id, value, date, note) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(habit_id, date) DO UPDATE SET value = excluded.value, note = excluded.note`,
		newID(), habitID, value, date, note,
	)
	if err != nil {
		return nil, fmt.Errorf("log habit: %w", err)
	}
	return s.getHabitLog(habitID, date)
}

// UnlogHabit removes the log for habitID on date, if any.
func (s *Store) UnlogHabit(habitID, date string) error {
	_, err := s.db.Exec(`DELETE FROM habit_logs WHERE habit_id = ? AND date = ?`, habitID, date)
	if err != nil {
		return fmt.Errorf("unlog habit: %w", err)
	}
	return nil
}

// ToggleHabit flips a binary check-in and reports whether the habit is now
// logged for date.
func (s *Store) ToggleHabit(habitID, date string) (bool, error) {
	_, err := s.getHabitLog(habitID, date)
	switch {
	case err == nil:
		return false, s.UnlogHabit(habitID, date)
	case errors.Is(err, ErrNotFound):
		if _, err := s.LogHabit(habitID, date, 1, nil); err != nil {
			return false, err
		}
		return true, nil
	default:
		return false, err
	}
}

func (s *Store) getHabitLog(habitID, date string) (*model.HabitLog, error) {
	l, err := scanHabitLog(s.db.QueryRow(
		`SELECT id, habit_id, value, date, note FROM habit_logs WHERE habit_id = ? AND date = ?`, habitID, date,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("habit log %s/%s: %w", habitID, date, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get habit log: %w", err)
	}
	return &l, nil
}

func scanHabitLog(r scanner) (model.HabitLog, error) {
	var l model.HabitLog
	var note sql.NullString
	if err := r.Scan(&l.ID, &l.HabitID, &l.Value, &l.Date, &note); err != nil {
		return model.HabitLog{}, err
	}
	l.Note = stringPtr(note)
	return l, nil
}

// ListHabitLogs returns every habit log, oldest day first. An empty habitID
// lists logs for all habits.
func (s *Store) ListHabitLogs(habitID string) ([]model.HabitLog, error) {
	query := `SELECT id, habit_id, value, date, note FROM habit_logs`
	var args []any
	if habitID != "" {
		query += ` WHERE habit_id = ?`
		args = append(args, habitID)
	}
	query += ` ORDER BY date, rowid`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list habit logs: %w", err)
	}
	defer rows.Close()

	var logs []model.HabitLog
	for rows.Next() {
		l, err := scanHabitLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
