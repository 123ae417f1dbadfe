package tui

import (
	"errors"
	"time"

	"github.com/sadopc/studytrack/internal/model"
	"github.com/sadopc/studytrack/internal/store"
)

// timerState tracks the current state of the study stopwatch.
type timerState int

const (
	timerStopped timerState = iota
	timerRunning
	timerPaused
)

// timerModel is the free-running study stopwatch on the dashboard. Nothing
// is written until stop, which records the unpaused time as one session.
type timerModel struct {
	store *store.Store
	now   func() time.Time

	state     timerState
	startTime time.Time
	elapsed   time.Duration
	pausedAt  time.Time
	pauseGap  time.Duration

	subjectID   string
	subjectName string
	taskID      *string
	taskTitle   string

	// Idle detection
	lastActivity time.Time
	idleTimeout  time.Duration
	isIdle       bool
}

func newTimerModel(s *store.Store) timerModel {
	return timerModel{
		store:        s,
		now:          time.Now,
		state:        timerStopped,
		lastActivity: time.Now(),
		idleTimeout:  5 * time.Minute,
	}
}

func (t *timerModel) start(subject model.Subject, task *model.Task) {
	now := t.now()
	t.state = timerRunning
	t.startTime = now
	t.elapsed = 0
	t.pauseGap = 0
	t.subjectID = subject.ID
	t.subjectName = subject.Name
	t.taskID = nil
	t.taskTitle = ""
	if task != nil {
		id := task.ID
		t.taskID = &id
		t.taskTitle = task.Title
	}
	t.lastActivity = now
	t.isIdle = false
}

// stop records the session and resets the stopwatch. A stopped timer, or
// one with less than a minute of active time, records nothing and returns
// nil, nil.
func (t *timerModel) stop() (*model.SessionLog, error) {
	if t.state == timerStopped {
		return nil, nil
	}
	active := t.currentElapsed()
	end := t.now()
	t.state = timerStopped
	t.elapsed = 0
	session, err := t.store.AddSession(t.subjectID, t.taskID, end.Add(-active), end)
	if errors.Is(err, store.ErrTooShort) {
		return nil, nil
	}
	return session, err
}

func (t *timerModel) pause() {
	if t.state != timerRunning {
		return
	}
	t.state = timerPaused
	t.pausedAt = t.now()
}

func (t *timerModel) resume() {
	if t.state != timerPaused {
		return
	}
	t.pauseGap += t.now().Sub(t.pausedAt)
	t.state = timerRunning
	t.isIdle = false
	t.lastActivity = t.now()
}

func (t *timerModel) toggle() {
	switch t.state {
	case timerRunning:
		t.pause()
	case timerPaused:
		t.resume()
	}
}

func (t *timerModel) tick() {
	if t.state == timerRunning {
		t.elapsed = t.now().Sub(t.startTime) - t.pauseGap

		if t.now().Sub(t.lastActivity) > t.idleTimeout && !t.isIdle {
			t.isIdle = true
			t.pause()
		}
	}
}

func (t *timerModel) recordActivity() {
	t.lastActivity = t.now()
	if t.isIdle && t.state == timerPaused {
		t.resume()
		t.isIdle = false
	}
}

func (t timerModel) running() bool {
	return t.state != timerStopped
}

func (t timerModel) paused() bool {
	return t.state == timerPaused
}

func (t timerModel) currentElapsed() time.Duration {
	switch t.state {
	case timerStopped:
		return 0
	case timerPaused:
		return t.pausedAt.Sub(t.startTime) - t.pauseGap
	}
	return t.now().Sub(t.startTime) - t.pauseGap
}
