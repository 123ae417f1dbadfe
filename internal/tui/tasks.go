package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/studytrack/internal/analytics"
	"github.com/sadopc/studytrack/internal/model"
	"github.com/sadopc/studytrack/internal/store"
)

// taskForm holds the board form's field values behind pointers so they
// survive model copies.
type taskForm struct {
	title       string
	description string
	priority    string
	scheduled   string
	deadline    string
	estimate    string
	subjectID   string
	recurrence  string
}

type tasksModel struct {
	store  *store.Store
	engine *analytics.Engine
	width  int
	height int

	columns  [][]model.Task // indexed like model.Statuses
	subjects []model.Subject
	column   int
	cursors  []int

	formActive bool
	form       *huh.Form
	fields     *taskForm
	editing    *model.Task

	confirmDelete bool
}

func newTasksModel(s *store.Store, e *analytics.Engine) tasksModel {
	return tasksModel{
		store:   s,
		engine:  e,
		columns: make([][]model.Task, len(model.Statuses)),
		cursors: make([]int, len(model.Statuses)),
		fields:  &taskForm{},
	}
}

func (t *tasksModel) setSize(w, h int) {
	t.width = w
	t.height = h
}

type tasksDataMsg struct {
	tasks    []model.Task
	subjects []model.Subject
}

func (t tasksModel) refresh() tea.Cmd {
	return func() tea.Msg {
		tasks, err := t.store.ListTasks()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Load error: %v", err), isError: true}
		}
		subjects, err := t.store.ListSubjects()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Load error: %v", err), isError: true}
		}
		return tasksDataMsg{tasks: tasks, subjects: subjects}
	}
}

func columnIndex(s model.TaskStatus) int {
	for i, st := range model.Statuses {
		if st == s {
			return i
		}
	}
	return 0
}

// selected returns the card under the cursor in the focused column.
func (t tasksModel) selected() (model.Task, bool) {
	col := t.columns[t.column]
	if len(col) == 0 {
		return model.Task{}, false
	}
	return col[t.cursors[t.column]], true
}

func (t tasksModel) update(msg tea.Msg) (tasksModel, tea.Cmd) {
	if t.formActive && t.form != nil {
		return t.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tasksDataMsg:
		t.subjects = msg.subjects
		t.columns = make([][]model.Task, len(model.Statuses))
		for _, task := range msg.tasks {
			i := columnIndex(task.Status)
			t.columns[i] = append(t.columns[i], task)
		}
		for i := range t.cursors {
			if t.cursors[i] >= len(t.columns[i]) {
				t.cursors[i] = max(0, len(t.columns[i])-1)
			}
		}
		return t, nil

	case sessionSavedMsg:
		return t, t.refresh()

	case tea.KeyMsg:
		if t.confirmDelete {
			t.confirmDelete = false
			if task, ok := t.selected(); ok && msg.String() == "y" {
				if err := t.store.DeleteTask(task.ID); err != nil {
					return t, errStatus("Delete failed", err)
				}
				return t, tea.Batch(t.refresh(), status("Deleted "+task.Title))
			}
			return t, nil
		}

		switch {
		case key.Matches(msg, keys.Left):
			if t.column > 0 {
				t.column--
			}
		case key.Matches(msg, keys.Right):
			if t.column < len(model.Statuses)-1 {
				t.column++
			}
		case key.Matches(msg, keys.Up):
			if t.cursors[t.column] > 0 {
				t.cursors[t.column]--
			}
		case key.Matches(msg, keys.Down):
			if t.cursors[t.column] < len(t.columns[t.column])-1 {
				t.cursors[t.column]++
			}
		case key.Matches(msg, keys.MoveLeft):
			return t.move(-1)
		case key.Matches(msg, keys.MoveRight):
			return t.move(1)
		case key.Matches(msg, keys.New):
			return t.showForm(nil)
		case key.Matches(msg, keys.Edit):
			if task, ok := t.selected(); ok {
				return t.showForm(&task)
			}
		case key.Matches(msg, keys.Delete):
			if _, ok := t.selected(); ok {
				t.confirmDelete = true
			}
		}
	}
	return t, nil
}

// move shifts the selected card one column and keeps focus on it.
func (t tasksModel) move(dir int) (tasksModel, tea.Cmd) {
	task, ok := t.selected()
	if !ok {
		return t, nil
	}
	target := t.column + dir
	if target < 0 || target >= len(model.Statuses) {
		return t, nil
	}
	if err := t.store.MoveTask(task.ID, model.Statuses[target]); err != nil {
		return t, errStatus("Move failed", err)
	}
	t.column = target
	// Moved cards land at the bottom of the column.
	t.cursors[target] = len(t.columns[target])
	return t, t.refresh()
}

func validateDay(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := time.Parse(model.DayLayout, s); err != nil {
		return fmt.Errorf("use YYYY-MM-DD")
	}
	return nil
}

func validateMinutes(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if n, err := strconv.Atoi(s); err != nil || n <= 0 {
		return fmt.Errorf("enter whole minutes")
	}
	return nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func (t tasksModel) showForm(task *model.Task) (tasksModel, tea.Cmd) {
	f := t.fields
	*f = taskForm{
		priority:  string(model.PriorityMedium),
		scheduled: t.engine.Today(),
	}
	t.editing = task
	if task != nil {
		*f = taskForm{
			title:       task.Title,
			description: deref(task.Description),
			priority:    string(task.Priority),
			scheduled:   deref(task.ScheduledDate),
			deadline:    deref(task.Deadline),
			subjectID:   deref(task.SubjectID),
			recurrence:  string(task.Recurrence),
		}
		if task.EstimateMinutes != nil {
			f.estimate = strconv.Itoa(*task.EstimateMinutes)
		}
	}

	subjectOptions := []huh.Option[string]{huh.NewOption("None", "")}
	for _, s := range t.subjects {
		subjectOptions = append(subjectOptions, huh.NewOption(s.Name, s.ID))
	}

	t.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(&f.title).Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("title is required")
				}
				return nil
			}),
			huh.NewText().Title("Description").Lines(3).Value(&f.description),
			huh.NewSelect[string]().Title("Priority").Options(
				huh.NewOption("High", string(model.PriorityHigh)),
				huh.NewOption("Medium", string(model.PriorityMedium)),
				huh.NewOption("Low", string(model.PriorityLow)),
			).Value(&f.priority),
			huh.NewSelect[string]().Title("Subject").Options(subjectOptions...).Value(&f.subjectID),
		),
		huh.NewGroup(
			huh.NewInput().Title("Scheduled (YYYY-MM-DD)").Value(&f.scheduled).Validate(validateDay),
			huh.NewInput().Title("Deadline (YYYY-MM-DD)").Value(&f.deadline).Validate(validateDay),
			huh.NewInput().Title("Estimate (minutes)").Value(&f.estimate).Validate(validateMinutes),
			huh.NewSelect[string]().Title("Repeat").Options(
				huh.NewOption("Never", string(model.RecurrenceNone)),
				huh.NewOption("Daily", string(model.RecurrenceDaily)),
				huh.NewOption("Weekly", string(model.RecurrenceWeekly)),
			).Value(&f.recurrence),
		),
	).WithShowHelp(true).WithShowErrors(true)

	t.formActive = true
	return t, t.form.Init()
}

func (t tasksModel) updateForm(msg tea.Msg) (tasksModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		t.formActive = false
		t.form = nil
		return t, nil
	}

	form, cmd := t.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		t.form = f
	}
	if t.form.State != huh.StateCompleted {
		return t, cmd
	}
	t.formActive = false

	f := t.fields
	task := model.Task{
		Title:         strings.TrimSpace(f.title),
		Description:   optional(f.description),
		Priority:      model.Priority(f.priority),
		ScheduledDate: optional(f.scheduled),
		Deadline:      optional(f.deadline),
		SubjectID:     optional(f.subjectID),
		Recurrence:    model.Recurrence(f.recurrence),
	}
	if n, err := strconv.Atoi(strings.TrimSpace(f.estimate)); err == nil {
		task.EstimateMinutes = &n
	}

	if t.editing == nil {
		if _, err := t.store.CreateTask(task); err != nil {
			return t, errStatus("Create failed", err)
		}
		t.column = 0
		return t, tea.Batch(t.refresh(), status("Added "+task.Title))
	}

	task.ID = t.editing.ID
	task.StartTime = t.editing.StartTime
	task.EndTime = t.editing.EndTime
	if err := t.store.UpdateTask(task); err != nil {
		return t, errStatus("Update failed", err)
	}
	return t, tea.Batch(t.refresh(), status("Updated "+task.Title))
}

func (t tasksModel) view() string {
	w := t.width - 4

	if t.formActive && t.form != nil {
		title := titleStyle.Render("New Task")
		if t.editing != nil {
			title = titleStyle.Render("Edit Task")
		}
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", t.form.View()))
	}

	colWidth := max(18, w/len(model.Statuses)-2)
	cols := make([]string, len(model.Statuses))
	for i, st := range model.Statuses {
		cols[i] = t.renderColumn(i, st, colWidth)
	}
	board := lipgloss.JoinHorizontal(lipgloss.Top, cols...)

	footer := mutedStyle.Render("  h/l: column  ↑/↓: card  ←/→: move  n: new  e: edit  d: delete")
	if t.confirmDelete {
		if task, ok := t.selected(); ok {
			footer = warningStyle.Render(fmt.Sprintf("  Delete %q? (y/n)", task.Title))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, board, footer)
}

func (t tasksModel) renderColumn(i int, st model.TaskStatus, width int) string {
	style := columnStyle
	if i == t.column {
		style = activeColumnStyle
	}

	cards := t.columns[i]
	rows := []string{titleStyle.Render(fmt.Sprintf("%s (%d)", analytics.ColumnLabels[st], len(cards))), ""}
	if len(cards) == 0 {
		rows = append(rows, mutedStyle.Render("empty"))
	}

	today := t.engine.Today()
	for j, task := range cards {
		selected := i == t.column && j == t.cursors[i]
		cursor, itemStyle := cursorPrefix(selected)

		prio := priorityStyles[string(task.Priority)].Render("●")
		rows = append(rows, prio+" "+itemStyle.Render(cursor+truncate(task.Title, width-6)))

		var meta []string
		if task.ScheduledDate != nil {
			day := *task.ScheduledDate
			if task.Status != model.StatusDone && day < today {
				meta = append(meta, errorStyle.Render(day))
			} else {
				meta = append(meta, mutedStyle.Render(day))
			}
		}
		if task.EstimateMinutes != nil || task.ActualMinutes > 0 {
			est := "-"
			if task.EstimateMinutes != nil {
				est = analytics.FormatMinutes(*task.EstimateMinutes)
			}
			meta = append(meta, mutedStyle.Render(analytics.FormatMinutes(task.ActualMinutes)+"/"+est))
		}
		if task.Recurrence != model.RecurrenceNone {
			meta = append(meta, accentStyle.Render("↻"))
		}
		if len(meta) > 0 {
			rows = append(rows, "    "+strings.Join(meta, " "))
		}
	}

	return style.Width(width).Render(strings.Join(rows, "\n"))
}
