package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sadopc/studytrack/internal/analytics"
	"github.com/sadopc/studytrack/internal/model"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// Formats lists the export formats in picker order.
var Formats = []Format{FormatCSV, FormatJSON}

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown export format %q (want csv or json)", s)
}

// DefaultPath names an export file in dir, stamped with the day of now.
func DefaultPath(dir string, f Format, now time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("studytrack-export-%s.%s", now.Format(model.DayLayout), f))
}

// Snapshot writes snap in format f. The report is only used by JSON.
func Snapshot(f Format, snap model.Snapshot, report analytics.Report, path string) error {
	switch f {
	case FormatCSV:
		return ToCSV(snap.SessionLogs, snap.Subjects, snap.Tasks, path)
	case FormatJSON:
		return ToJSON(report, snap.SessionLogs, snap.Subjects, path)
	}
	return fmt.Errorf("unknown export format %q", f)
}
