// Package notify raises desktop alerts when a pomodoro phase ends.
package notify

import (
	"log/slog"

	"github.com/gen2brain/beeep"
)

// Notifier delivers a short message to the user.
type Notifier interface {
	Notify(title, message string) error
}

// Desktop sends native notifications through beeep.
type Desktop struct {
	log *slog.Logger
}

// NewDesktop sets the application name shown by the OS and returns a
// Desktop notifier. Delivery failures are logged and otherwise ignored.
func NewDesktop(log *slog.Logger) *Desktop {
	beeep.AppName = "studytrack"
	return &Desktop{log: log}
}

func (d *Desktop) Notify(title, message string) error {
	if err := beeep.Alert(title, message, ""); err != nil {
		d.log.Warn("desktop notification failed", slog.String("title", title), slog.String("error", err.Error()))
		return err
	}
	d.log.Debug("notification sent", slog.String("title", title))
	return nil
}

// Nop drops every notification.
type Nop struct{}

func (Nop) Notify(string, string) error { return nil }

// Recorder keeps notifications in memory.
type Recorder struct {
	Sent []Message
}

type Message struct {
	Title   string
	Message string
}

func (r *Recorder) Notify(title, message string) error {
	r.Sent = append(r.Sent, Message{Title: title, Message: message})
	return nil
}

// New picks Desktop when enabled, Nop otherwise.
func New(enabled bool, log *slog.Logger) Notifier {
	if !enabled {
		return Nop{}
	}
	return NewDesktop(log)
}
