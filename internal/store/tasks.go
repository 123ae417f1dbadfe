package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/sadopc/studytrack/internal/model"
)

const taskColumns = `id, title, description, status, scheduled_date, deadline, start_time, end_time,
	priority, position, recurrence, subject_id, estimate_minutes, actual_minutes, created_at`

func scanTask(r scanner) (model.Task, error) {
	var t model.Task
	var status, priority, recurrence, createdAt string
	var desc, scheduled, deadline, start, end, subjectID sql.NullString
	var estimate sql.NullInt64
	err := r.Scan(&t.ID, &t.Title, &desc, &status, &scheduled, &deadline, &start, &end,
		&priority, &t.Position, &recurrence, &subjectID, &estimate, &t.ActualMinutes, &createdAt)
	if err != nil {
		return model.Task{}, err
	}
	t.Description = stringPtr(desc)
	t.Status = model.TaskStatus(status)
	t.ScheduledDate = stringPtr(scheduled)
	t.Deadline = stringPtr(deadline)
	t.StartTime = stringPtr(start)
	t.EndTime = stringPtr(end)
	t.Priority = model.Priority(priority)
	t.Recurrence = model.Recurrence(recurrence)
	t.SubjectID = stringPtr(subjectID)
	t.EstimateMinutes = intPtr(estimate)
	t.CreatedAt = parseTime(createdAt)
	return t, nil
}

// nextPosition is one past the last card in the status column.
func nextPosition(q interface {
	QueryRow(string, ...any) *sql.Row
}, status model.TaskStatus) (int, error) {
	var pos int
	err := q.QueryRow(`SELECT COALESCE(MAX(position) + 1, 0) FROM tasks WHERE status = ?`, string(status)).Scan(&pos)
	if err != nil {
		return 0, fmt.Errorf("next position: %w", err)
	}
	return pos, nil
}

// CreateTask inserts t at the bottom of its column. ID, Position,
// ActualMinutes and CreatedAt are assigned by the store.
func (s *Store) CreateTask(t model.Task) (*model.Task, error) {
	if t.Status == "" {
		t.Status = model.StatusTodo
	}
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
	pos, err := nextPosition(s.db, t.Status)
	if err != nil {
		return nil, err
	}
	id := newID()
	_, err = s.db.Exec(
		`INSERT INTO tasks (id, title, description, status, scheduled_date, deadline, start_time, end_time,
			priority, position, recurrence, subject_id, estimate_minutes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, t.Title, t.Description, string(t.Status), t.ScheduledDate, t.Deadline, t.StartTime, t.EndTime,
		string(t.Priority), pos, string(t.Recurrence), t.SubjectID, t.EstimateMinutes, nowString(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return s.GetTask(id)
}

func (s *Store) GetTask(id string) (*model.Task, error) {
	t, err := scanTask(s.db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get task %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get task %s: %w", id, err)
	}
	return &t, nil
}

// ListTasks returns tasks grouped by board column (to do, in progress,
// done), each column in position order.
func (s *Store) ListTasks() ([]model.Task, error) {
	rows, err := s.db.Query(`SELECT ` + taskColumns + ` FROM tasks
		ORDER BY CASE status WHEN 'todo' THEN 0 WHEN 'in_progress' THEN 1 ELSE 2 END, position, rowid`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// UpdateTask saves the editable fields of t. Status and position change
// only through MoveTask; actual minutes only through sessions.
func (s *Store) UpdateTask(t model.Task) error {
	res, err := s.db.Exec(
		`UPDATE tasks SET title = ?, description = ?, scheduled_date = ?, deadline = ?, start_time = ?, end_time = ?,
			priority = ?, recurrence = ?, subject_id = ?, estimate_minutes = ?
		 WHERE id = ?`,
		t.Title, t.Description, t.ScheduledDate, t.Deadline, t.StartTime, t.EndTime,
		string(t.Priority), string(t.Recurrence), t.SubjectID, t.EstimateMinutes, t.ID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return requireRow(res, "task", t.ID)
}

// MoveTask puts the task at the bottom of the status column. Moving within
// the same column is a no-op.
func (s *Store) MoveTask(id string, status model.TaskStatus) error {
	switch status {
	case model.StatusTodo, model.StatusInProgress, model.StatusDone:
	default:
		return fmt.Errorf("move task: unknown status %q", status)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRow(`SELECT status FROM tasks WHERE id = ?`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("move task %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("move task: %w", err)
	}
	if model.TaskStatus(current) == status {
		return nil
	}

	pos, err := nextPosition(tx, status)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`UPDATE tasks SET status = ?, position = ? WHERE id = ?`, string(status), pos, id); err != nil {
		return fmt.Errorf("move task: %w", err)
	}
	return tx.Commit()
}

func (s *Store) DeleteTask(id string) error {
	res, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return requireRow(res, "task", id)
}
