package store

import (
	"fmt"

	"github.com/sadopc/studytrack/internal/model"
)

// Snapshot loads every collection the analytics engine reads. Sessions come
// back oldest first so weekday grouping follows log order.
func (s *Store) Snapshot() (model.Snapshot, error) {
	var snap model.Snapshot
	var err error

	if snap.Subjects, err = s.ListSubjects(); err != nil {
		return model.Snapshot{}, fmt.Errorf("snapshot: %w", err)
	}
	if snap.Habits, err = s.ListHabits(); err != nil {
		return model.Snapshot{}, fmt.Errorf("snapshot: %w", err)
	}
	if snap.HabitLogs, err = s.ListHabitLogs(""); err != nil {
		return model.Snapshot{}, fmt.Errorf("snapshot: %w", err)
	}
	if snap.SessionLogs, err = s.ListSessions(SessionFilter{}); err != nil {
		return model.Snapshot{}, fmt.Errorf("snapshot: %w", err)
	}
	for i, j := 0, len(snap.SessionLogs)-1; i < j; i, j = i+1, j-1 {
		snap.SessionLogs[i], snap.SessionLogs[j] = snap.SessionLogs[j], snap.SessionLogs[i]
	}
	if snap.Tasks, err = s.ListTasks(); err != nil {
		return model.Snapshot{}, fmt.Errorf("snapshot: %w", err)
	}
	return snap, nil
}
