package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/studytrack/internal/analytics"
	"github.com/sadopc/studytrack/internal/model"
	"github.com/sadopc/studytrack/internal/store"
)

var subjectColors = []string{"#6C63FF", "#2EC4B6", "#FF6B6B", "#F39C12", "#2ECC71", "#E74C3C", "#9B59B6", "#3498DB"}

type subjectRow struct {
	subject model.Subject
	total   int
	today   int
	level   analytics.Level
}

type subjectsModel struct {
	store  *store.Store
	engine *analytics.Engine
	width  int
	height int

	rows   []subjectRow
	cursor int

	formActive bool
	form       *huh.Form
	editingID  string // empty when creating

	// Form field pointers (survive value copies)
	formName     *string
	formCategory *string
	formGoal     *string
	formColor    *string

	confirmDelete bool
}

func newSubjectsModel(s *store.Store, e *analytics.Engine) subjectsModel {
	name, cat, goal, color := "", string(model.CategoryStudy), "", subjectColors[0]
	return subjectsModel{
		store:        s,
		engine:       e,
		formName:     &name,
		formCategory: &cat,
		formGoal:     &goal,
		formColor:    &color,
	}
}

func (p *subjectsModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

type subjectsDataMsg struct {
	rows []subjectRow
}

func (p subjectsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		subjects, err := p.store.ListSubjects()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Load error: %v", err), isError: true}
		}
		sessions, err := p.store.ListSessions(store.SessionFilter{})
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Load error: %v", err), isError: true}
		}
		rows := make([]subjectRow, len(subjects))
		for i, sub := range subjects {
			total := analytics.SubjectTotalMinutes(sessions, sub.ID)
			rows[i] = subjectRow{
				subject: sub,
				total:   total,
				today:   p.engine.SubjectTodayMinutes(sessions, sub.ID),
				level:   analytics.SubjectLevel(total),
			}
		}
		return subjectsDataMsg{rows: rows}
	}
}

func (p subjectsModel) update(msg tea.Msg) (subjectsModel, tea.Cmd) {
	if p.formActive && p.form != nil {
		return p.updateForm(msg)
	}

	switch msg := msg.(type) {
	case subjectsDataMsg:
		p.rows = msg.rows
		if p.cursor >= len(p.rows) {
			p.cursor = max(0, len(p.rows)-1)
		}
		return p, nil

	case sessionSavedMsg:
		return p, p.refresh()

	case tea.KeyMsg:
		if p.confirmDelete {
			p.confirmDelete = false
			if msg.String() == "y" && p.cursor < len(p.rows) {
				sub := p.rows[p.cursor].subject
				if err := p.store.DeleteSubject(sub.ID); err != nil {
					return p, errStatus("Delete failed", err)
				}
				return p, tea.Batch(p.refresh(), status("Deleted "+sub.Name))
			}
			return p, nil
		}

		switch {
		case key.Matches(msg, keys.Up):
			if p.cursor > 0 {
				p.cursor--
			}
		case key.Matches(msg, keys.Down):
			if p.cursor < len(p.rows)-1 {
				p.cursor++
			}
		case key.Matches(msg, keys.New):
			return p.showForm(nil)
		case key.Matches(msg, keys.Edit):
			if len(p.rows) > 0 {
				sub := p.rows[p.cursor].subject
				return p.showForm(&sub)
			}
		case key.Matches(msg, keys.Delete):
			if len(p.rows) > 0 {
				p.confirmDelete = true
			}
		}
	}
	return p, nil
}

func validateGoal(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return fmt.Errorf("enter a positive number of hours")
	}
	return nil
}

func parseGoal(s string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v <= 0 {
		return nil
	}
	return &v
}

func (p subjectsModel) showForm(sub *model.Subject) (subjectsModel, tea.Cmd) {
	*p.formName = ""
	*p.formCategory = string(model.CategoryStudy)
	*p.formGoal = ""
	*p.formColor = subjectColors[0]
	p.editingID = ""
	if sub != nil {
		p.editingID = sub.ID
		*p.formName = sub.Name
		*p.formCategory = string(sub.Category)
		*p.formColor = sub.Color
		if sub.GoalHours != nil {
			*p.formGoal = strconv.FormatFloat(*sub.GoalHours, 'f', -1, 64)
		}
	}

	colorOptions := make([]huh.Option[string], len(subjectColors))
	for i, c := range subjectColors {
		colorOptions[i] = huh.NewOption(fmt.Sprintf("● %s", c), c)
	}

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Subject Name").Value(p.formName).Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("name is required")
				}
				return nil
			}),
			huh.NewSelect[string]().Title("Category").Options(
				huh.NewOption("Study", string(model.CategoryStudy)),
				huh.NewOption("Skill", string(model.CategorySkill)),
			).Value(p.formCategory),
			huh.NewInput().Title("Goal (hours, optional)").Value(p.formGoal).Validate(validateGoal),
			huh.NewSelect[string]().Title("Color").Options(colorOptions...).Value(p.formColor),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p subjectsModel) updateForm(msg tea.Msg) (subjectsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		p.formActive = false
		p.form = nil
		return p, nil
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	if p.form.State != huh.StateCompleted {
		return p, cmd
	}
	p.formActive = false

	name := strings.TrimSpace(*p.formName)
	category := model.Category(*p.formCategory)
	goal := parseGoal(*p.formGoal)

	if p.editingID == "" {
		if _, err := p.store.CreateSubject(name, category, goal, *p.formColor); err != nil {
			return p, errStatus("Create failed", err)
		}
		return p, tea.Batch(p.refresh(), status("Created "+name))
	}

	err := p.store.UpdateSubject(model.Subject{
		ID:        p.editingID,
		Name:      name,
		Category:  category,
		GoalHours: goal,
		Color:     *p.formColor,
	})
	if err != nil {
		return p, errStatus("Update failed", err)
	}
	return p, tea.Batch(p.refresh(), status("Updated "+name))
}

func (p subjectsModel) view() string {
	w := p.width - 4

	if p.formActive && p.form != nil {
		title := titleStyle.Render("New Subject")
		if p.editingID != "" {
			title = titleStyle.Render("Edit Subject")
		}
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", p.form.View()))
	}

	title := titleStyle.Render("Subjects")
	if len(p.rows) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", mutedStyle.Render("No subjects yet. Press n to create one."),
		))
	}

	rows := []string{title, ""}
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("    %-22s %-7s %-9s %-9s %-18s %s",
		"Name", "Type", "Total", "Today", "Level", "Goal")))

	for i, r := range p.rows {
		cursor, style := cursorPrefix(i == p.cursor)
		goal := "-"
		if r.subject.GoalHours != nil {
			g := *r.subject.GoalHours
			goal = fmt.Sprintf("%d%% of %gh", percentOf(r.total, int(g*60)), g)
		}
		line := fmt.Sprintf("%s%s %-22s %-7s %-9s %-9s %-18s %s",
			cursor, colorDot(r.subject.Color), truncate(r.subject.Name, 22),
			r.subject.Category,
			analytics.FormatMinutes(r.total),
			analytics.FormatMinutes(r.today),
			fmt.Sprintf("Lv %d %s", r.level.Level, r.level.Title),
			goal,
		)
		rows = append(rows, style.Render(line))
	}

	rows = append(rows, "")
	if p.confirmDelete {
		rows = append(rows, warningStyle.Render(fmt.Sprintf(
			"  Delete %q? Its sessions stay in history. (y/n)", p.rows[p.cursor].subject.Name)))
	} else {
		rows = append(rows, mutedStyle.Render("  n: new  e: edit  d: delete"))
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func percentOf(n, d int) int {
	if d <= 0 {
		return 0
	}
	return n * 100 / d
}
