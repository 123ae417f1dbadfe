package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/sadopc/studytrack/internal/model"
)

const subjectColumns = `id, name, category, goal_hours, color, created_at`

func scanSubject(r scanner) (model.Subject, error) {
	var sub model.Subject
	var category, createdAt string
	var goal sql.NullFloat64
	if err := r.Scan(&sub.ID, &sub.Name, &category, &goal, &sub.Color, &createdAt); err != nil {
		return model.Subject{}, err
	}
	sub.Category = model.Category(category)
	sub.GoalHours = floatPtr(goal)
	sub.CreatedAt = parseTime(createdAt)
	return sub, nil
}

func (s *Store) CreateSubject(name string, category model.Category, goalHours *float64, color string) (*model.Subject, error) {
	id := newID()
	_, err := s.db.Exec(
		`INSERT INTO subjects (id, name, category, goal_hours, color, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, name, string(category), goalHours, color, nowString(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert subject: %w", err)
	}
	return s.GetSubject(id)
}

func (s *Store) GetSubject(id string) (*model.Subject, error) {
	sub, err := scanSubject(s.db.QueryRow(`SELECT `+subjectColumns+` FROM subjects WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get subject %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get subject %s: %w", id, err)
	}
	return &sub, nil
}

// ListSubjects returns subjects in creation order.
func (s *Store) ListSubjects() ([]model.Subject, error) {
	rows, err := s.db.Query(`SELECT ` + subjectColumns + ` FROM subjects ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	defer rows.Close()

	var subjects []model.Subject
	for rows.Next() {
		sub, err := scanSubject(rows)
		if err != nil {
			return nil, err
		}
		subjects = append(subjects, sub)
	}
	return subjects, rows.Err()
}

func (s *Store) UpdateSubject(sub model.Subject) error {
	res, err := s.db.Exec(
		`UPDATE subjects SET name = ?, category = ?, goal_hours = ?, color = ? WHERE id = ?`,
		sub.Name, string(sub.Category), sub.GoalHours, sub.Color, sub.ID,
	)
	if err != nil {
		return fmt.Errorf("update subject: %w", err)
	}
	return requireRow(res, "subject", sub.ID)
}

// DeleteSubject removes the subject. Its session logs are kept.
func (s *Store) DeleteSubject(id string) error {
	res, err := s.db.Exec(`DELETE FROM subjects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete subject: %w", err)
	}
	return requireRow(res, "subject", id)
}

func requireRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}
