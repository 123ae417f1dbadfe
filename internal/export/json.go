package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/studytrack/internal/analytics"
	"github.com/sadopc/studytrack/internal/model"
)

type jsonExport struct {
	ExportedAt string           `json:"exported_at"`
	Report     analytics.Report `json:"report"`
	Count      int              `json:"count"`
	Sessions   []jsonSession    `json:"sessions"`
}

type jsonSession struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Subject     string `json:"subject"`
	SubjectID   string `json:"subject_id"`
	TaskID      string `json:"task_id,omitempty"`
	StartedAt   string `json:"started_at"`
	CompletedAt string `json:"completed_at"`
	Minutes     int    `json:"minutes"`
	Duration    string `json:"duration"`
}

// ToJSON writes the report together with the raw session list.
func ToJSON(report analytics.Report, sessions []model.SessionLog, subjects []model.Subject, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Report:     report,
		Count:      len(sessions),
		Sessions:   []jsonSession{},
	}

	names := subjectNames(subjects)
	for _, s := range sessions {
		js := jsonSession{
			ID:          s.ID,
			Date:        s.Date,
			Subject:     subjectName(names, s.SubjectID),
			SubjectID:   s.SubjectID,
			StartedAt:   s.StartedAt.Local().Format(time.RFC3339),
			CompletedAt: s.CompletedAt.Local().Format(time.RFC3339),
			Minutes:     s.DurationMinutes,
			Duration:    analytics.FormatMinutes(s.DurationMinutes),
		}
		if s.TaskID != nil {
			js.TaskID = *s.TaskID
		}
		export.Sessions = append(export.Sessions, js)
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
