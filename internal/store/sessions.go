package store

import (
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/sadopc/studytrack/internal/model"
)

// AddSession records a finished study session. Duration is rounded to whole
// minutes and the session counts toward the local day it completed on. When
// taskID is set the minutes are also added to the task's actual time.
// Spans that round to zero minutes are not stored and return ErrTooShort.
func (s *Store) AddSession(subjectID string, taskID *string, started, completed time.Time) (*model.SessionLog, error) {
	if completed.Before(started) {
		return nil, fmt.Errorf("add session: completed %s before started %s",
			completed.Format(time.RFC3339), started.Format(time.RFC3339))
	}
	minutes := int(math.Round(completed.Sub(started).Minutes()))
	if minutes < 1 {
		return nil, fmt.Errorf("add session of %s: %w", completed.Sub(started), ErrTooShort)
	}
	l := model.SessionLog{
		ID:              newID(),
		SubjectID:       subjectID,
		TaskID:          taskID,
		DurationMinutes: minutes,
		StartedAt:       started.UTC().Truncate(time.Second),
		CompletedAt:     completed.UTC().Truncate(time.Second),
		Date:            completed.Local().Format(model.DayLayout),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO session_logs (id, subject_id, task_id, duration_minutes, started_at, completed_at, date)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.SubjectID, taskID, l.DurationMinutes,
		l.StartedAt.Format(time.RFC3339), l.CompletedAt.Format(time.RFC3339), l.Date,
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	if taskID != nil {
		res, err := tx.Exec(
			`UPDATE tasks SET actual_minutes = actual_minutes + ? WHERE id = ?`,
			l.DurationMinutes, *taskID,
		)
		if err != nil {
			return nil, fmt.Errorf("update task time: %w", err)
		}
		if err := requireRow(res, "task", *taskID); err != nil {
			return nil, fmt.Errorf("add session: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit session: %w", err)
	}
	return &l, nil
}

func scanSession(r scanner) (model.SessionLog, error) {
	var l model.SessionLog
	var startedAt, completedAt string
	var taskID sql.NullString
	if err := r.Scan(&l.ID, &l.SubjectID, &taskID, &l.DurationMinutes, &startedAt, &completedAt, &l.Date); err != nil {
		return model.SessionLog{}, err
	}
	l.TaskID = stringPtr(taskID)
	l.StartedAt = parseTime(startedAt)
	l.CompletedAt = parseTime(completedAt)
	return l, nil
}

// ListSessions returns sessions matching f, most recent first.
func (s *Store) ListSessions(f SessionFilter) ([]model.SessionLog, error) {
	query := `SELECT id, subject_id, task_id, duration_minutes, started_at, completed_at, date FROM session_logs WHERE 1=1`
	var args []any

	if f.SubjectID != nil {
		query += ` AND subject_id = ?`
		args = append(args, *f.SubjectID)
	}
	if f.TaskID != nil {
		query += ` AND task_id = ?`
		args = append(args, *f.TaskID)
	}
	if f.From != "" {
		query += ` AND date >= ?`
		args = append(args, f.From)
	}
	if f.To != "" {
		query += ` AND date <= ?`
		args = append(args, f.To)
	}
	query += ` ORDER BY completed_at DESC, rowid DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var logs []model.SessionLog
	for rows.Next() {
		l, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// DeleteSession removes a session and takes its minutes back off the linked
// task.
func (s *Store) DeleteSession(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var minutes int
	var taskID sql.NullString
	err = tx.QueryRow(`SELECT duration_minutes, task_id FROM session_logs WHERE id = ?`, id).Scan(&minutes, &taskID)
	if err == sql.ErrNoRows {
		return fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM session_logs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if taskID.Valid {
		_, err := tx.Exec(
			`UPDATE tasks SET actual_minutes = MAX(actual_minutes - ?, 0) WHERE id = ?`,
			minutes, taskID.String,
		)
		if err != nil {
			return fmt.Errorf("update task time: %w", err)
		}
	}
	return tx.Commit()
}
