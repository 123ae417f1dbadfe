package tui

import (
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/studytrack/internal/analytics"
	"github.com/sadopc/studytrack/internal/logging"
	"github.com/sadopc/studytrack/internal/model"
	"github.com/sadopc/studytrack/internal/notify"
	"github.com/sadopc/studytrack/internal/store"
)

// base is the fixed "now" for every test: Friday 2024-01-05, 10:00 local.
var base = time.Date(2024, 1, 5, 10, 0, 0, 0, time.Local)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testEngine() *analytics.Engine {
	return analytics.New(analytics.FixedClock{T: base})
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time            { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock { return &fakeClock{t: base} }

func mustSubject(t *testing.T, s *store.Store, name string) model.Subject {
	t.Helper()
	sub, err := s.CreateSubject(name, model.CategoryStudy, nil, "#6C63FF")
	if err != nil {
		t.Fatalf("create subject: %v", err)
	}
	return *sub
}

func mustTask(t *testing.T, s *store.Store, task model.Task) model.Task {
	t.Helper()
	created, err := s.CreateTask(task)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return *created
}

func sessions(t *testing.T, s *store.Store) []model.SessionLog {
	t.Helper()
	list, err := s.ListSessions(store.SessionFilter{})
	if err != nil {
		t.Fatal(err)
	}
	return list
}

func press(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// ============================================================
// Stopwatch
// ============================================================

func newTestTimer(s *store.Store, c *fakeClock) timerModel {
	tm := newTimerModel(s)
	tm.now = c.now
	return tm
}

func TestTimerStartStopRecordsSession(t *testing.T) {
	s := newTestStore(t)
	c := newClock()
	sub := mustSubject(t, s, "Calculus")

	tm := newTestTimer(s, c)
	if tm.running() {
		t.Fatal("timer should start stopped")
	}

	tm.start(sub, nil)
	if !tm.running() || tm.paused() {
		t.Fatal("timer should be running after start")
	}
	if tm.subjectID != sub.ID || tm.subjectName != "Calculus" {
		t.Fatal("subject info not set")
	}

	c.advance(25 * time.Minute)
	session, err := tm.stop()
	if err != nil {
		t.Fatal(err)
	}
	if session == nil {
		t.Fatal("stop should return the recorded session")
	}
	if session.DurationMinutes != 25 || session.SubjectID != sub.ID || session.Date != "2024-01-05" {
		t.Fatalf("unexpected session: %+v", session)
	}
	if tm.running() {
		t.Fatal("timer should be stopped")
	}
	if got := sessions(t, s); len(got) != 1 {
		t.Fatalf("expected 1 stored session, got %d", len(got))
	}
}

func TestTimerStopWhenStopped(t *testing.T) {
	s := newTestStore(t)
	tm := newTestTimer(s, newClock())

	session, err := tm.stop()
	if err != nil {
		t.Fatal(err)
	}
	if session != nil {
		t.Fatal("stop on stopped timer should return nil")
	}
}

func TestTimerPausedTimeIsExcluded(t *testing.T) {
	s := newTestStore(t)
	c := newClock()
	sub := mustSubject(t, s, "Calculus")

	tm := newTestTimer(s, c)
	tm.start(sub, nil)
	c.advance(10 * time.Minute)
	tm.pause()
	c.advance(30 * time.Minute)
	if got := tm.currentElapsed(); got != 10*time.Minute {
		t.Fatalf("elapsed while paused = %v, want 10m", got)
	}
	tm.resume()
	c.advance(5 * time.Minute)

	session, err := tm.stop()
	if err != nil {
		t.Fatal(err)
	}
	if session.DurationMinutes != 15 {
		t.Fatalf("minutes = %d, want 15", session.DurationMinutes)
	}
	if !session.CompletedAt.Equal(c.now()) {
		t.Fatalf("completed at %v, want %v", session.CompletedAt, c.now())
	}
}

func TestTimerSubMinuteStopRecordsNothing(t *testing.T) {
	s := newTestStore(t)
	c := newClock()
	sub := mustSubject(t, s, "Calculus")

	tm := newTestTimer(s, c)
	tm.start(sub, nil)
	c.advance(20 * time.Second)

	session, err := tm.stop()
	if err != nil {
		t.Fatal(err)
	}
	if session != nil {
		t.Fatalf("sub-minute stop should record nothing, got %+v", session)
	}
	if tm.running() {
		t.Fatal("timer should be stopped")
	}
	if got := sessions(t, s); len(got) != 0 {
		t.Fatalf("expected no stored sessions, got %+v", got)
	}
}

func TestTimerToggle(t *testing.T) {
	s := newTestStore(t)
	sub := mustSubject(t, s, "Calculus")

	tm := newTestTimer(s, newClock())
	tm.toggle() // stopped: no-op
	if tm.running() {
		t.Fatal("toggle should not start the timer")
	}

	tm.start(sub, nil)
	tm.toggle()
	if !tm.paused() {
		t.Fatal("toggle should pause")
	}
	if !tm.running() {
		t.Fatal("paused timer is still running (not stopped)")
	}
	tm.toggle()
	if tm.paused() {
		t.Fatal("toggle should resume")
	}
}

func TestTimerTick(t *testing.T) {
	s := newTestStore(t)
	c := newClock()
	sub := mustSubject(t, s, "Calculus")

	tm := newTestTimer(s, c)
	tm.tick()
	if tm.elapsed != 0 {
		t.Fatal("tick on stopped timer should not change elapsed")
	}

	tm.start(sub, nil)
	c.advance(90 * time.Second)
	tm.tick()
	if tm.elapsed != 90*time.Second {
		t.Fatalf("elapsed = %v, want 90s", tm.elapsed)
	}
}

func TestTimerIdleDetection(t *testing.T) {
	s := newTestStore(t)
	c := newClock()
	sub := mustSubject(t, s, "Calculus")

	tm := newTestTimer(s, c)
	tm.start(sub, nil)

	c.advance(4 * time.Minute)
	tm.tick()
	if tm.isIdle {
		t.Fatal("should not be idle before the timeout")
	}

	c.advance(2 * time.Minute)
	tm.tick()
	if !tm.isIdle || !tm.paused() {
		t.Fatal("timer should auto-pause when idle")
	}

	c.advance(10 * time.Minute)
	tm.recordActivity()
	if tm.isIdle || tm.paused() {
		t.Fatal("activity should resume an idle timer")
	}

	c.advance(time.Minute)
	session, err := tm.stop()
	if err != nil {
		t.Fatal(err)
	}
	// 6 minutes before the idle pause plus 1 after
	if session.DurationMinutes != 7 {
		t.Fatalf("minutes = %d, want 7", session.DurationMinutes)
	}
}

func TestTimerWithTaskAddsActualMinutes(t *testing.T) {
	s := newTestStore(t)
	c := newClock()
	sub := mustSubject(t, s, "Calculus")
	task := mustTask(t, s, model.Task{Title: "Problem set"})

	tm := newTestTimer(s, c)
	tm.start(sub, &task)
	if tm.taskID == nil || *tm.taskID != task.ID || tm.taskTitle != "Problem set" {
		t.Fatal("task info not set")
	}
	c.advance(40 * time.Minute)
	if _, err := tm.stop(); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetTask(task.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ActualMinutes != 40 {
		t.Fatalf("actual minutes = %d, want 40", got.ActualMinutes)
	}
}

// ============================================================
// Helper functions
// ============================================================

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{time.Second, "00:00:01"},
		{time.Minute, "00:01:00"},
		{time.Hour + time.Minute + time.Second, "01:01:01"},
		{25 * time.Hour, "25:00:00"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"Linear Algebra", 8, "Linear …"},
		{"über", 2, "ü…"},
		{"abc", 1, "…"},
		{"abc", 0, "abc"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestRenderGoalBar(t *testing.T) {
	if got := renderGoalBar(60, 120, 10); !strings.Contains(got, "50%") {
		t.Fatalf("goal bar = %q, want 50%%", got)
	}
	if got := renderGoalBar(300, 120, 10); !strings.Contains(got, "250%") {
		t.Fatalf("goal bar past goal = %q", got)
	}
	if got := renderGoalBar(30, 0, 10); !strings.Contains(got, "0%") {
		t.Fatalf("goal bar without goal = %q", got)
	}
}

func TestParseGoal(t *testing.T) {
	if g := parseGoal("12.5"); g == nil || *g != 12.5 {
		t.Fatalf("parseGoal(12.5) = %v", g)
	}
	for _, in := range []string{"", "abc", "0", "-3"} {
		if g := parseGoal(in); g != nil {
			t.Errorf("parseGoal(%q) = %v, want nil", in, *g)
		}
	}
	if validateGoal("") != nil || validateGoal("4") != nil {
		t.Fatal("empty and positive goals are valid")
	}
	if validateGoal("nope") == nil || validateGoal("0") == nil {
		t.Fatal("non-numeric and zero goals are invalid")
	}
}

func TestFormValidators(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) error
		in   string
		ok   bool
	}{
		{"day empty", validateDay, "", true},
		{"day valid", validateDay, "2024-02-29", true},
		{"day invalid", validateDay, "2024-02-30", false},
		{"day wrong layout", validateDay, "05/01/2024", false},
		{"minutes empty", validateMinutes, "", true},
		{"minutes valid", validateMinutes, "45", true},
		{"minutes zero", validateMinutes, "0", false},
		{"minutes fraction", validateMinutes, "1.5", false},
		{"number valid", validateNumber, "2.5", true},
		{"number negative", validateNumber, "-1", false},
		{"positive int", positiveInt, "4", true},
		{"positive int zero", positiveInt, "0", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fn(tt.in)
			if (err == nil) != tt.ok {
				t.Fatalf("validate(%q) = %v, want ok=%v", tt.in, err, tt.ok)
			}
		})
	}
}

// ============================================================
// View state
// ============================================================

func TestViewNames(t *testing.T) {
	expected := []string{"Dashboard", "Subjects", "Habits", "Tasks", "Analytics", "Pomodoro", "Settings"}
	if len(viewNames) != len(expected) {
		t.Fatalf("expected %d view names, got %d", len(expected), len(viewNames))
	}
	for i, name := range expected {
		if viewNames[i] != name {
			t.Fatalf("viewNames[%d] = %q, want %q", i, viewNames[i], name)
		}
	}
	if viewSettings != viewState(len(viewNames)-1) {
		t.Fatal("view state constants out of order")
	}
}

// ============================================================
// Dashboard model
// ============================================================

func newTestDashboard(t *testing.T, s *store.Store, c *fakeClock) dashboardModel {
	t.Helper()
	d := newDashboardModel(s, testEngine())
	d.timer.now = c.now
	d.setSize(120, 40)
	msg := d.loadData()()
	d, _ = d.update(msg)
	return d
}

func TestDashboardInit(t *testing.T) {
	s := newTestStore(t)
	d := newTestDashboard(t, s, newClock())

	if d.isRunning() || d.isPaused() || d.elapsed() != 0 {
		t.Fatal("dashboard timer should be idle initially")
	}
	if d.dailyGoal != 120 {
		t.Fatalf("daily goal = %d, want 120", d.dailyGoal)
	}
}

func TestDashboardStartWithoutSubjects(t *testing.T) {
	s := newTestStore(t)
	d := newTestDashboard(t, s, newClock())

	d, cmd := d.update(press("s"))
	if d.isRunning() {
		t.Fatal("timer should not start without subjects")
	}
	msg, ok := cmd().(statusMsg)
	if !ok || !msg.isError {
		t.Fatalf("expected error status, got %#v", msg)
	}
}

func TestDashboardSingleSubjectSkipsPicker(t *testing.T) {
	s := newTestStore(t)
	c := newClock()
	mustSubject(t, s, "Solo")
	d := newTestDashboard(t, s, c)

	d, _ = d.update(press("s"))
	if d.picking {
		t.Fatal("a single subject should not open the picker")
	}
	if !d.isRunning() || d.timer.subjectName != "Solo" {
		t.Fatal("timer should run for the only subject")
	}

	c.advance(30 * time.Minute)
	d, _ = d.update(press("x"))
	if d.isRunning() {
		t.Fatal("x should stop the timer")
	}
	if got := sessions(t, s); len(got) != 1 || got[0].DurationMinutes != 30 {
		t.Fatalf("unexpected sessions: %+v", got)
	}
}

func TestDashboardSubMinuteStop(t *testing.T) {
	s := newTestStore(t)
	c := newClock()
	mustSubject(t, s, "Solo")
	d := newTestDashboard(t, s, c)

	d, _ = d.update(press("s"))
	c.advance(10 * time.Second)
	d, cmd := d.update(press("x"))
	if d.isRunning() {
		t.Fatal("x should stop the timer")
	}
	msg, ok := cmd().(statusMsg)
	if !ok || msg.isError || !strings.Contains(msg.text, "nothing recorded") {
		t.Fatalf("expected a nothing-recorded status, got %#v", msg)
	}
	if got := sessions(t, s); len(got) != 0 {
		t.Fatalf("expected no stored sessions, got %+v", got)
	}
}

func TestDashboardPicker(t *testing.T) {
	s := newTestStore(t)
	mustSubject(t, s, "Calculus")
	mustSubject(t, s, "Spanish")
	d := newTestDashboard(t, s, newClock())

	d, _ = d.update(press("s"))
	if !d.picking {
		t.Fatal("two subjects should open the picker")
	}
	if !strings.Contains(d.view(), "Select Subject") {
		t.Fatal("picker should render")
	}

	d, _ = d.update(press("down"))
	d, _ = d.update(press("enter"))
	if d.picking || !d.isRunning() {
		t.Fatal("enter should start the timer")
	}
	if d.timer.subjectName != "Spanish" {
		t.Fatalf("started %q, want Spanish", d.timer.subjectName)
	}
}

func TestDashboardPickerCancel(t *testing.T) {
	s := newTestStore(t)
	mustSubject(t, s, "Calculus")
	mustSubject(t, s, "Spanish")
	d := newTestDashboard(t, s, newClock())

	d, _ = d.update(press("s"))
	d, _ = d.update(press("esc"))
	if d.picking || d.isRunning() {
		t.Fatal("esc should close the picker without starting")
	}
}

func TestDashboardShowsOverdueAndGoal(t *testing.T) {
	s := newTestStore(t)
	s.SetSetting(store.SettingDailyGoal, "90")
	mustTask(t, s, model.Task{Title: "Late essay", ScheduledDate: model.StringPtr("2024-01-02")})
	mustTask(t, s, model.Task{Title: "Future quiz", ScheduledDate: model.StringPtr("2024-01-09")})

	d := newTestDashboard(t, s, newClock())
	if d.dailyGoal != 90 {
		t.Fatalf("daily goal = %d, want 90", d.dailyGoal)
	}
	if len(d.overdue) != 1 || d.overdue[0].Title != "Late essay" {
		t.Fatalf("overdue = %+v", d.overdue)
	}
	if view := d.view(); !strings.Contains(view, "Late essay") || strings.Contains(view, "Future quiz") {
		t.Fatal("dashboard should list only overdue tasks")
	}
}

// ============================================================
// Subjects model
// ============================================================

func loadSubjects(t *testing.T, s *store.Store) subjectsModel {
	t.Helper()
	p := newSubjectsModel(s, testEngine())
	p.setSize(120, 40)
	p, _ = p.update(p.refresh()())
	return p
}

func TestSubjectsRows(t *testing.T) {
	s := newTestStore(t)
	sub := mustSubject(t, s, "Calculus")
	if _, err := s.AddSession(sub.ID, nil, base.Add(-3*time.Hour), base.Add(-time.Hour)); err != nil {
		t.Fatal(err)
	}

	p := loadSubjects(t, s)
	if len(p.rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(p.rows))
	}
	r := p.rows[0]
	if r.total != 120 || r.today != 120 || r.level.Title != "Beginner" {
		t.Fatalf("unexpected row: %+v", r)
	}
	if !strings.Contains(p.view(), "Calculus") {
		t.Fatal("view should list the subject")
	}
}

func TestSubjectsDeleteNeedsConfirmation(t *testing.T) {
	s := newTestStore(t)
	mustSubject(t, s, "Calculus")
	p := loadSubjects(t, s)

	p, _ = p.update(press("d"))
	if !p.confirmDelete {
		t.Fatal("d should ask for confirmation")
	}
	p, _ = p.update(press("n"))
	if p.confirmDelete {
		t.Fatal("any other key cancels")
	}
	if list, _ := s.ListSubjects(); len(list) != 1 {
		t.Fatal("subject should survive a cancelled delete")
	}

	p, _ = p.update(press("d"))
	p, _ = p.update(press("y"))
	if list, _ := s.ListSubjects(); len(list) != 0 {
		t.Fatal("subject should be deleted after y")
	}
}

func TestSubjectsFormOpens(t *testing.T) {
	s := newTestStore(t)
	p := loadSubjects(t, s)

	p, _ = p.update(press("n"))
	if !p.formActive || p.editingID != "" {
		t.Fatal("n should open the create form")
	}
	p, _ = p.update(press("esc"))
	if p.formActive {
		t.Fatal("esc should close the form")
	}
}

// ============================================================
// Habits model
// ============================================================

func loadHabits(t *testing.T, s *store.Store) habitsModel {
	t.Helper()
	h := newHabitsModel(s, testEngine())
	h.setSize(120, 40)
	h, _ = h.update(h.refresh()())
	return h
}

func TestHabitsRows(t *testing.T) {
	s := newTestStore(t)
	hb, err := s.CreateHabit("Read", model.MetricBinary, nil, "#2EC4B6", "")
	if err != nil {
		t.Fatal(err)
	}
	for _, day := range []string{"2024-01-03", "2024-01-04", "2024-01-05"} {
		if _, err := s.LogHabit(hb.ID, day, 1, nil); err != nil {
			t.Fatal(err)
		}
	}

	h := loadHabits(t, s)
	r := h.rows[0]
	if r.streak != 3 || r.rate != 100 || r.today == nil {
		t.Fatalf("unexpected row: streak=%d rate=%d today=%v", r.streak, r.rate, r.today)
	}
	want := []bool{false, false, false, false, true, true, true}
	for i := range want {
		if r.week[i] != want[i] {
			t.Fatalf("week = %v, want %v", r.week, want)
		}
	}
}

func TestHabitsSpaceTogglesToday(t *testing.T) {
	s := newTestStore(t)
	hb, _ := s.CreateHabit("Read", model.MetricBinary, nil, "#2EC4B6", "")
	h := loadHabits(t, s)

	h, _ = h.update(press(" "))
	logs, _ := s.ListHabitLogs(hb.ID)
	if len(logs) != 1 || logs[0].Date != "2024-01-05" {
		t.Fatalf("space should check in today, logs = %+v", logs)
	}

	h, _ = h.update(press(" "))
	if logs, _ := s.ListHabitLogs(hb.ID); len(logs) != 0 {
		t.Fatal("second space should clear today's check-in")
	}
}

func TestHabitsCountMetricAsksForValue(t *testing.T) {
	s := newTestStore(t)
	s.CreateHabit("Pages", model.MetricCount, model.FloatPtr(20), "#2EC4B6", "")
	h := loadHabits(t, s)

	h, _ = h.update(press("enter"))
	if !h.formActive || h.formType != "value" {
		t.Fatal("a count habit should open the value form")
	}
}

// ============================================================
// Task board
// ============================================================

func loadBoard(t *testing.T, s *store.Store) tasksModel {
	t.Helper()
	b := newTasksModel(s, testEngine())
	b.setSize(120, 40)
	b, _ = b.update(b.refresh()())
	return b
}

func TestBoardColumns(t *testing.T) {
	s := newTestStore(t)
	mustTask(t, s, model.Task{Title: "A"})
	mustTask(t, s, model.Task{Title: "B", Status: model.StatusInProgress})
	mustTask(t, s, model.Task{Title: "C", Status: model.StatusDone})
	mustTask(t, s, model.Task{Title: "D"})

	b := loadBoard(t, s)
	sizes := []int{len(b.columns[0]), len(b.columns[1]), len(b.columns[2])}
	if sizes[0] != 2 || sizes[1] != 1 || sizes[2] != 1 {
		t.Fatalf("column sizes = %v, want [2 1 1]", sizes)
	}
	if view := b.view(); !strings.Contains(view, "To Do") || !strings.Contains(view, "In Progress") {
		t.Fatal("board should render column headers")
	}
}

func TestBoardMoveCard(t *testing.T) {
	s := newTestStore(t)
	task := mustTask(t, s, model.Task{Title: "Essay"})
	b := loadBoard(t, s)

	b, _ = b.update(press("left"))
	if got, _ := s.GetTask(task.ID); got.Status != model.StatusTodo {
		t.Fatal("moving left from the first column is a no-op")
	}

	b, cmd := b.update(press("right"))
	if got, _ := s.GetTask(task.ID); got.Status != model.StatusInProgress {
		t.Fatalf("status = %q, want in_progress", got.Status)
	}
	if b.column != 1 {
		t.Fatalf("focus should follow the card, column = %d", b.column)
	}
	b, _ = b.update(cmd())
	if sel, ok := b.selected(); !ok || sel.ID != task.ID {
		t.Fatal("moved card should stay selected")
	}
}

func TestBoardColumnFocus(t *testing.T) {
	s := newTestStore(t)
	b := loadBoard(t, s)

	b, _ = b.update(press("h"))
	if b.column != 0 {
		t.Fatal("h at the first column stays put")
	}
	b, _ = b.update(press("l"))
	b, _ = b.update(press("l"))
	b, _ = b.update(press("l"))
	if b.column != 2 {
		t.Fatalf("column = %d, want 2", b.column)
	}
}

func TestBoardDelete(t *testing.T) {
	s := newTestStore(t)
	mustTask(t, s, model.Task{Title: "Essay"})
	b := loadBoard(t, s)

	b, _ = b.update(press("d"))
	b, _ = b.update(press("y"))
	if list, _ := s.ListTasks(); len(list) != 0 {
		t.Fatal("task should be deleted")
	}
}

func TestOpenTasks(t *testing.T) {
	sub := "sub-1"
	other := "sub-2"
	tasks := []model.Task{
		{ID: "a", Status: model.StatusTodo, SubjectID: &sub},
		{ID: "b", Status: model.StatusDone, SubjectID: &sub},
		{ID: "c", Status: model.StatusInProgress},
		{ID: "d", Status: model.StatusTodo, SubjectID: &other},
	}
	got := openTasks(tasks, sub)
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Fatalf("openTasks = %+v", got)
	}
}

// ============================================================
// Analytics model
// ============================================================

func TestAnalyticsTabs(t *testing.T) {
	s := newTestStore(t)
	sub := mustSubject(t, s, "Calculus")
	s.AddSession(sub.ID, nil, base.Add(-time.Hour), base)
	mustTask(t, s, model.Task{Title: "Essay", ScheduledDate: model.StringPtr("2024-01-05"), EstimateMinutes: model.IntPtr(30)})

	a := newAnalyticsModel(s, testEngine())
	a.setSize(120, 40)
	a, _ = a.update(a.refresh()())
	if !a.loaded || a.report.Study.TotalMinutes != 60 {
		t.Fatalf("report not loaded: %+v", a.report.Study)
	}

	wants := []string{"Most focused", "Completion", "In progress", "Focus accuracy", "January 2024"}
	for i, want := range wants {
		if a.tab != analyticsTab(i) {
			t.Fatalf("tab = %d, want %d", a.tab, i)
		}
		if view := a.view(); !strings.Contains(view, want) {
			t.Fatalf("%s tab should contain %q", analyticsTabNames[i], want)
		}
		a, _ = a.update(press("l"))
	}
	if a.tab != tabStudy {
		t.Fatal("tabs should wrap around")
	}
	a, _ = a.update(press("h"))
	if a.tab != tabCalendar {
		t.Fatal("h should wrap to the last tab")
	}
}

func TestAnalyticsEmpty(t *testing.T) {
	s := newTestStore(t)
	a := newAnalyticsModel(s, testEngine())
	a.setSize(120, 40)
	if !strings.Contains(a.view(), "Loading") {
		t.Fatal("unloaded view should say loading")
	}
	a, _ = a.update(a.refresh()())
	if !strings.Contains(a.view(), "No data yet") {
		t.Fatal("empty report should show the empty state")
	}
}

// ============================================================
// Pomodoro model
// ============================================================

func newTestPomodoro(t *testing.T, s *store.Store, c *fakeClock) (pomodoroModel, *notify.Recorder) {
	t.Helper()
	rec := &notify.Recorder{}
	pm := newPomodoroModel(s, rec, logging.Discard())
	pm.now = c.now
	pm.setSize(120, 40)
	return pm, rec
}

func startPomodoro(pm pomodoroModel, sub model.Subject, task *model.Task) pomodoroModel {
	pm.subject = &sub
	pm.task = task
	pm, _ = pm.startSession()
	return pm
}

func TestPomodoroInit(t *testing.T) {
	s := newTestStore(t)
	pm, _ := newTestPomodoro(t, s, newClock())

	if pm.phase != pomodoroIdle {
		t.Fatalf("expected idle phase, got %d", pm.phase)
	}
	if pm.workDuration != 25*time.Minute || pm.breakDuration != 5*time.Minute || pm.longBreakDuration != 15*time.Minute {
		t.Fatalf("unexpected durations: %v %v %v", pm.workDuration, pm.breakDuration, pm.longBreakDuration)
	}
	if pm.targetCount != 4 || !pm.notifyEnabled {
		t.Fatal("unexpected defaults")
	}
}

func TestPomodoroLoadsSettings(t *testing.T) {
	s := newTestStore(t)
	s.SetSetting(store.SettingPomodoroWork, "600")
	s.SetSetting(store.SettingPomodoroBreak, "120")
	s.SetSetting(store.SettingPomodoroLongBreak, "600")
	s.SetSetting(store.SettingPomodoroCount, "2")
	s.SetSetting(store.SettingNotify, "false")

	pm, _ := newTestPomodoro(t, s, newClock())
	if pm.workDuration != 10*time.Minute || pm.breakDuration != 2*time.Minute || pm.longBreakDuration != 10*time.Minute {
		t.Fatal("durations not loaded")
	}
	if pm.targetCount != 2 || pm.notifyEnabled {
		t.Fatal("count/notify not loaded")
	}
}

func TestPomodoroStartWithoutSubjects(t *testing.T) {
	s := newTestStore(t)
	pm, _ := newTestPomodoro(t, s, newClock())

	pm, cmd := pm.update(press("s"))
	pm, cmd = pm.update(cmd())
	if pm.picking() {
		t.Fatal("picker should not open without subjects")
	}
	if msg, ok := cmd().(statusMsg); !ok || !msg.isError {
		t.Fatal("expected an error status")
	}
}

func TestPomodoroPicker(t *testing.T) {
	s := newTestStore(t)
	sub := mustSubject(t, s, "Calculus")
	mustTask(t, s, model.Task{Title: "Problem set", SubjectID: &sub.ID})
	mustTask(t, s, model.Task{Title: "Finished", SubjectID: &sub.ID, Status: model.StatusDone})
	pm, _ := newTestPomodoro(t, s, newClock())

	pm, cmd := pm.update(press("s"))
	pm, _ = pm.update(cmd())
	if pm.step != pickSubject {
		t.Fatal("s should open the subject picker")
	}

	pm, _ = pm.update(press("enter"))
	if pm.step != pickTask || len(pm.candidates) != 1 {
		t.Fatalf("expected task step with 1 candidate, got step=%d candidates=%d", pm.step, len(pm.candidates))
	}

	pm, _ = pm.update(press("down"))
	pm, _ = pm.update(press("enter"))
	if pm.phase != pomodoroWork {
		t.Fatal("choosing a task should start work")
	}
	if pm.task == nil || pm.task.Title != "Problem set" {
		t.Fatal("task not selected")
	}
}

func TestPomodoroWorkPhaseRecordsSession(t *testing.T) {
	s := newTestStore(t)
	c := newClock()
	sub := mustSubject(t, s, "Calculus")
	task := mustTask(t, s, model.Task{Title: "Problem set"})
	pm, rec := newTestPomodoro(t, s, c)
	pm = startPomodoro(pm, sub, &task)

	c.advance(25 * time.Minute)
	pm, cmd := pm.update(tickMsg(c.now()))
	if cmd == nil {
		t.Fatal("finishing a work phase should emit commands")
	}
	if pm.phase != pomodoroShortBreak || pm.completedCount != 1 {
		t.Fatalf("phase=%d count=%d, want short break after 1", pm.phase, pm.completedCount)
	}

	got := sessions(t, s)
	if len(got) != 1 || got[0].DurationMinutes != 25 || got[0].TaskID == nil || *got[0].TaskID != task.ID {
		t.Fatalf("unexpected sessions: %+v", got)
	}
	if updated, _ := s.GetTask(task.ID); updated.ActualMinutes != 25 {
		t.Fatalf("task actual minutes = %d, want 25", updated.ActualMinutes)
	}
	if len(rec.Sent) != 1 || rec.Sent[0].Title != "Break time" {
		t.Fatalf("notifications = %+v", rec.Sent)
	}
}

func TestPomodoroSubMinuteWorkContinuesCycle(t *testing.T) {
	s := newTestStore(t)
	s.SetSetting(store.SettingPomodoroWork, "20")
	c := newClock()
	pm, rec := newTestPomodoro(t, s, c)
	pm = startPomodoro(pm, mustSubject(t, s, "Calculus"), nil)

	c.advance(20 * time.Second)
	pm, _ = pm.update(tickMsg(c.now()))
	if pm.phase != pomodoroShortBreak || pm.completedCount != 1 {
		t.Fatalf("phase=%d count=%d, want short break after 1", pm.phase, pm.completedCount)
	}
	if got := sessions(t, s); len(got) != 0 {
		t.Fatalf("a 20s work phase should not be stored, got %+v", got)
	}
	if len(rec.Sent) != 1 || rec.Sent[0].Title != "Break time" {
		t.Fatalf("notifications = %+v", rec.Sent)
	}
}

func TestPomodoroTickBeforeEnd(t *testing.T) {
	s := newTestStore(t)
	c := newClock()
	pm, _ := newTestPomodoro(t, s, c)
	pm = startPomodoro(pm, mustSubject(t, s, "Calculus"), nil)

	c.advance(10 * time.Minute)
	pm, _ = pm.update(tickMsg(c.now()))
	if pm.phase != pomodoroWork || pm.remaining != 15*time.Minute {
		t.Fatalf("phase=%d remaining=%v", pm.phase, pm.remaining)
	}
}

func TestPomodoroFullCycle(t *testing.T) {
	s := newTestStore(t)
	s.SetSetting(store.SettingPomodoroCount, "2")
	c := newClock()
	pm, rec := newTestPomodoro(t, s, c)
	pm = startPomodoro(pm, mustSubject(t, s, "Calculus"), nil)

	pm, _ = pm.advancePhase() // work 1 -> short break
	if pm.phase != pomodoroShortBreak {
		t.Fatalf("after work 1: phase=%d", pm.phase)
	}
	pm, _ = pm.advancePhase() // -> work 2
	if pm.phase != pomodoroWork {
		t.Fatal("should go back to work after break")
	}
	pm, _ = pm.advancePhase() // work 2 -> long break
	if pm.phase != pomodoroLongBreak || pm.completedCount != 2 {
		t.Fatalf("expected long break after 2, got phase=%d count=%d", pm.phase, pm.completedCount)
	}
	pm, _ = pm.advancePhase() // -> completed
	if pm.phase != pomodoroCompleted {
		t.Fatalf("expected completed, got %d", pm.phase)
	}

	if got := sessions(t, s); len(got) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(got))
	}
	titles := make([]string, len(rec.Sent))
	for i, m := range rec.Sent {
		titles[i] = m.Title
	}
	want := "Break time,Back to work,Long break,Pomodoro complete"
	if strings.Join(titles, ",") != want {
		t.Fatalf("notifications = %v, want %s", titles, want)
	}
}

func TestPomodoroNotificationsDisabled(t *testing.T) {
	s := newTestStore(t)
	s.SetSetting(store.SettingNotify, "false")
	pm, rec := newTestPomodoro(t, s, newClock())
	pm = startPomodoro(pm, mustSubject(t, s, "Calculus"), nil)

	pm.advancePhase()
	if len(rec.Sent) != 0 {
		t.Fatalf("notifications should be off, got %+v", rec.Sent)
	}
}

func TestPomodoroSkipBreak(t *testing.T) {
	s := newTestStore(t)
	pm, _ := newTestPomodoro(t, s, newClock())
	pm = startPomodoro(pm, mustSubject(t, s, "Calculus"), nil)
	pm, _ = pm.advancePhase()

	pm, _ = pm.update(press(" "))
	if pm.phase != pomodoroWork {
		t.Fatal("space should skip the break")
	}
}

func TestPomodoroCancelDiscardsPhase(t *testing.T) {
	s := newTestStore(t)
	c := newClock()
	pm, _ := newTestPomodoro(t, s, c)
	pm = startPomodoro(pm, mustSubject(t, s, "Calculus"), nil)

	c.advance(20 * time.Minute)
	pm, _ = pm.update(press("x"))
	if pm.phase != pomodoroIdle {
		t.Fatal("should be idle after cancel")
	}
	if got := sessions(t, s); len(got) != 0 {
		t.Fatal("a cancelled work phase is not recorded")
	}
}

func TestPomodoroPhaseNames(t *testing.T) {
	phases := []pomodoroPhase{pomodoroIdle, pomodoroWork, pomodoroShortBreak, pomodoroLongBreak, pomodoroCompleted}
	for _, p := range phases {
		if phaseNames[p] == "" {
			t.Fatalf("missing phase name for %d", p)
		}
	}
}

func TestFormatPomodoroTime(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00"},
		{time.Second, "00:01"},
		{25 * time.Minute, "25:00"},
		{5*time.Minute + 30*time.Second, "05:30"},
		{-time.Second, "00:00"},
	}
	for _, tt := range tests {
		if got := formatPomodoroTime(tt.d); got != tt.want {
			t.Errorf("formatPomodoroTime(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

// ============================================================
// Settings helpers
// ============================================================

func TestSecsToMin(t *testing.T) {
	tests := []struct{ in, want string }{
		{"1500", "25"},
		{"300", "5"},
		{"0", "0"},
		{"invalid", "invalid"},
	}
	for _, tt := range tests {
		if got := secsToMin(tt.in); got != tt.want {
			t.Errorf("secsToMin(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMinToSecs(t *testing.T) {
	tests := []struct{ in, want string }{
		{"25", "1500"},
		{" 5 ", "300"},
		{"0", "0"},
		{"invalid", "invalid"},
	}
	for _, tt := range tests {
		if got := minToSecs(tt.in); got != tt.want {
			t.Errorf("minToSecs(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatSettingValue(t *testing.T) {
	tests := []struct{ key, val, want string }{
		{store.SettingPomodoroWork, "1500", "25 min"},
		{store.SettingPomodoroBreak, "300", "5 min"},
		{store.SettingDailyGoal, "150", "2h 30m"},
		{store.SettingNotify, "true", "on"},
		{store.SettingNotify, "false", "off"},
		{store.SettingPomodoroCount, "4", "4"},
		{store.SettingPomodoroWork, "invalid", "invalid"},
	}
	for _, tt := range tests {
		if got := formatSettingValue(tt.key, tt.val); got != tt.want {
			t.Errorf("formatSettingValue(%q, %q) = %q, want %q", tt.key, tt.val, got, tt.want)
		}
	}
}

func TestSettingsView(t *testing.T) {
	s := newTestStore(t)
	m := newSettingsModel(s)
	m.setSize(120, 40)
	m, _ = m.update(m.refresh()())
	if len(m.settings) != 6 {
		t.Fatalf("settings = %d, want 6", len(m.settings))
	}
	if view := m.view(); !strings.Contains(view, "Daily study goal") || !strings.Contains(view, "2h 0m") {
		t.Fatal("settings view should label the daily goal")
	}

	m, _ = m.update(press("enter"))
	if !m.formActive {
		t.Fatal("enter should open the settings form")
	}
	if *m.dailyGoal != "120" || *m.pomodoroWork != "25" || !*m.notify {
		t.Fatal("form should be filled from stored settings")
	}
}

// ============================================================
// App model
// ============================================================

func newTestApp(t *testing.T) (App, *store.Store) {
	t.Helper()
	s := newTestStore(t)
	app := NewApp(s, testEngine(), notify.Nop{}, logging.Discard())
	app.exportDir = t.TempDir()
	m, _ := app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m.(App), s
}

func update(t *testing.T, app App, msg tea.Msg) (App, tea.Cmd) {
	t.Helper()
	m, cmd := app.Update(msg)
	return m.(App), cmd
}

func TestNewApp(t *testing.T) {
	app, _ := newTestApp(t)

	if app.activeView != viewDashboard {
		t.Fatal("default view should be dashboard")
	}
	if app.showHelp || app.exportPicking {
		t.Fatal("help and export picker should be hidden by default")
	}
	if app.isCapturing() {
		t.Fatal("nothing should capture input initially")
	}
}

func TestAppLoadingState(t *testing.T) {
	s := newTestStore(t)
	app := NewApp(s, testEngine(), notify.Nop{}, logging.Discard())
	if out := app.View(); out != "Loading..." {
		t.Fatalf("expected 'Loading...', got %q", out)
	}
}

func TestAppViewStates(t *testing.T) {
	app, _ := newTestApp(t)

	for v := range viewNames {
		app.activeView = viewState(v)
		if app.View() == "" {
			t.Fatalf("view %d rendered empty", v)
		}
	}
}

func TestAppNumberKeysSwitchViews(t *testing.T) {
	app, _ := newTestApp(t)

	for i := range viewNames {
		var cmd tea.Cmd
		app, cmd = update(t, app, press(string(rune('1'+i))))
		if app.activeView != viewState(i) {
			t.Fatalf("key %d: view = %d", i+1, app.activeView)
		}
		if viewState(i) != viewPomodoro && cmd == nil {
			t.Fatalf("key %d should refresh the view", i+1)
		}
	}
}

func TestAppTabCycles(t *testing.T) {
	app, _ := newTestApp(t)
	for range viewNames {
		app, _ = update(t, app, press("tab"))
	}
	if app.activeView != viewDashboard {
		t.Fatalf("tab should wrap to dashboard, got %d", app.activeView)
	}
}

func TestAppFormCapturesKeys(t *testing.T) {
	app, _ := newTestApp(t)
	app, _ = update(t, app, press("2"))
	app, _ = update(t, app, press("n"))
	if !app.isCapturing() {
		t.Fatal("subject form should capture input")
	}
	app, _ = update(t, app, press("3"))
	if app.activeView != viewSubjects {
		t.Fatal("number keys must go to the form while it is open")
	}
}

func TestAppRenderHeaderContainsAllTabs(t *testing.T) {
	app, _ := newTestApp(t)
	header := app.renderHeader()
	if !strings.Contains(header, "studytrack") {
		t.Fatal("header should carry the app name")
	}
	for _, name := range viewNames {
		if !strings.Contains(header, name) {
			t.Fatalf("header missing tab %q", name)
		}
	}
}

func TestAppStatusMessage(t *testing.T) {
	app, _ := newTestApp(t)
	app, _ = update(t, app, statusMsg{text: "test status"})
	if !strings.Contains(app.renderFooter(), "test status") {
		t.Fatal("footer should contain status message")
	}
}

func TestAppExport(t *testing.T) {
	app, s := newTestApp(t)
	sub := mustSubject(t, s, "Calculus")
	s.AddSession(sub.ID, nil, base.Add(-time.Hour), base)

	app, _ = update(t, app, press("E"))
	if !app.exportPicking {
		t.Fatal("E should open the export picker")
	}
	app, _ = update(t, app, press("down"))
	app, cmd := update(t, app, press("enter"))
	if app.exportPicking || cmd == nil {
		t.Fatal("enter should close the picker and export")
	}

	done, ok := cmd().(exportDoneMsg)
	if !ok {
		t.Fatal("export should finish with exportDoneMsg")
	}
	if !strings.HasSuffix(done.path, ".json") {
		t.Fatalf("second option should be JSON, got %s", done.path)
	}
	if _, err := os.Stat(done.path); err != nil {
		t.Fatalf("export file missing: %v", err)
	}
}

func TestAppQuitSavesRunningTimer(t *testing.T) {
	app, s := newTestApp(t)
	mustSubject(t, s, "Calculus")
	c := newClock()
	app.dashboard.timer.now = c.now

	app, _ = update(t, app, app.dashboard.loadData()())
	app, _ = update(t, app, press("s"))
	if !app.dashboard.isRunning() {
		t.Fatal("timer should be running")
	}
	c.advance(12 * time.Minute)

	_, cmd := update(t, app, press("q"))
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if got := sessions(t, s); len(got) != 1 || got[0].DurationMinutes != 12 {
		t.Fatalf("running timer should be saved on quit, got %+v", got)
	}
}

// ============================================================
// Key bindings and styles
// ============================================================

func TestKeyMapHelp(t *testing.T) {
	if len(keys.ShortHelp()) == 0 {
		t.Fatal("short help should have bindings")
	}
	for i, g := range keys.FullHelp() {
		if len(g) == 0 {
			t.Fatalf("full help group %d is empty", i)
		}
	}
}

func TestStylesRender(t *testing.T) {
	styles := map[string]func() string{
		"activeTab":    func() string { return activeTabStyle.Render("test") },
		"panel":        func() string { return panelStyle.Render("test") },
		"column":       func() string { return columnStyle.Render("test") },
		"activeColumn": func() string { return activeColumnStyle.Render("test") },
		"timerRunning": func() string { return timerRunningStyle.Render("test") },
		"subtitle":     func() string { return subtitleStyle.Render("test") },
		"selectedItem": func() string { return selectedItemStyle.Render("test") },
	}
	for name, fn := range styles {
		if fn() == "" {
			t.Fatalf("style %q rendered empty", name)
		}
	}
	if len(heatColors) != 4 {
		t.Fatalf("heat colors = %d, want one per intensity level", len(heatColors))
	}
	for _, p := range []model.Priority{model.PriorityHigh, model.PriorityMedium, model.PriorityLow} {
		if _, ok := priorityStyles[string(p)]; !ok {
			t.Fatalf("no style for priority %q", p)
		}
	}
}
