package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sadopc/studytrack/internal/analytics"
	"github.com/sadopc/studytrack/internal/model"
)

func subjectNames(subjects []model.Subject) map[string]string {
	names := make(map[string]string, len(subjects))
	for _, s := range subjects {
		names[s.ID] = s.Name
	}
	return names
}

func subjectName(names map[string]string, id string) string {
	if n, ok := names[id]; ok {
		return n
	}
	return "Unknown"
}

// ToCSV writes one row per study session.
func ToCSV(sessions []model.SessionLog, subjects []model.Subject, tasks []model.Task, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"ID", "Date", "Subject", "Task", "Started", "Completed", "Minutes", "Duration"}); err != nil {
		return err
	}

	names := subjectNames(subjects)
	titles := make(map[string]string, len(tasks))
	for _, t := range tasks {
		titles[t.ID] = t.Title
	}

	for _, s := range sessions {
		task := ""
		if s.TaskID != nil {
			task = titles[*s.TaskID]
		}
		row := []string{
			s.ID,
			s.Date,
			subjectName(names, s.SubjectID),
			task,
			s.StartedAt.Local().Format(time.RFC3339),
			s.CompletedAt.Local().Format(time.RFC3339),
			strconv.Itoa(s.DurationMinutes),
			analytics.FormatMinutes(s.DurationMinutes),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
