package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"taskflow/internal/config"
	"taskflow/internal/task"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B47E0"))
	groupStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
	cursorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B47E0"))
	doneStyle     = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	overdueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5484D"))
	todayStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F5A524"))
	chipStyle     = lipgloss.NewStyle().Faint(true)
	activeChip    = lipgloss.NewStyle().Bold(true).Reverse(true)
	statusStyle   = lipgloss.NewStyle().Italic(true)
	emptyStyle    = lipgloss.NewStyle().Faint(true).Italic(true)
	errorStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E5484D"))
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), true, false, false, false)
	priorityStyle = map[task.Priority]lipgloss.Style{
		task.High:   lipgloss.NewStyle().Foreground(lipgloss.Color("#E5484D")),
		task.Medium: lipgloss.NewStyle().Foreground(lipgloss.Color("#F5A524")),
		task.Low:    lipgloss.NewStyle().Foreground(lipgloss.Color("#30A46C")),
	}
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderFilterBar())
	b.WriteString("\n\n")

	switch {
	case !m.loaded:
		b.WriteString(emptyStyle.Render("Loading tasks..."))
	case m.loadErr != nil:
		b.WriteString(errorStyle.Render(fmt.Sprintf("Could not load tasks: %v", m.loadErr)))
		b.WriteString("\n")
		b.WriteString(emptyStyle.Render(fmt.Sprintf("Press '%s' to try again or '%s' to quit.", m.cfg.Keys.Reload, m.cfg.Keys.Quit)))
	case m.view.Counts.Total == 0:
		b.WriteString(emptyStyle.Render(fmt.Sprintf("No tasks yet. Press '%s' to add one.", m.cfg.Keys.Add)))
	case m.view.Matched == 0:
		b.WriteString(emptyStyle.Render(fmt.Sprintf("No tasks match your filters. Press '%s' to clear them.", m.cfg.Keys.ClearFilters)))
	default:
		b.WriteString(m.renderTaskList())
	}
	b.WriteString("\n")

	var panel strings.Builder
	switch {
	case m.meta != nil:
		heading := "Edit task"
		if m.meta.creating() {
			heading = "New task"
		}
		panel.WriteString(heading + " (tab/shift+tab to move, enter to save/next, esc to cancel)\n\n")
		panel.WriteString(m.renderMetaBox())
		panel.WriteString("\nField: " + m.meta.currentLabel() + "\n")
		panel.WriteString(m.input.View())
	case m.mode != modeList:
		panel.WriteString(m.input.View())
	default:
		panel.WriteString(m.renderMetadataPanel())
	}
	b.WriteString(panelStyle.Render(panel.String()))

	b.WriteString("\n\n")
	b.WriteString(statusStyle.Render(m.status))
	b.WriteString("\n")
	b.WriteString(renderHelp(m.cfg.Keys))

	return b.String()
}

func (m Model) renderHeader() string {
	c := m.view.Counts
	summary := fmt.Sprintf("%d tasks · %d done · %d due today · %d%% complete",
		c.Total, c.Completed, c.Today, c.CompletionPercent())
	return titleStyle.Render("Taskflow") + "  " + summary
}

// renderFilterBar shows every chip with its count over the whole collection.
func (m Model) renderFilterBar() string {
	c := m.view.Counts
	status := statusOrAll(m.criteria.Status)

	chips := make([]string, 0, len(task.Statuses()))
	for _, s := range task.Statuses() {
		chips = append(chips, chip(fmt.Sprintf("%s %d", s, c.ForStatus(s)), s == status))
	}
	line := "Status: " + strings.Join(chips, " ")

	prios := []string{chip("any", m.criteria.Priority == "")}
	for _, p := range task.Priorities() {
		prios = append(prios, chip(fmt.Sprintf("%s %d", p, c.ForPriority(p)), m.criteria.Priority == p))
	}
	line += "\nPriority: " + strings.Join(prios, " ")
	line += fmt.Sprintf("\nCategory: %s · Group: %s", orAny(m.criteria.Category), m.group)
	if q := strings.TrimSpace(m.criteria.Search); q != "" {
		line += fmt.Sprintf(" · Search: %q (%d)", q, m.view.Matched)
	}
	return line
}

func chip(label string, active bool) string {
	if active {
		return activeChip.Render("[" + label + "]")
	}
	return chipStyle.Render(label)
}

func (m Model) renderTaskList() string {
	var b strings.Builder
	now := m.now()
	row := 0
	showLabels := len(m.view.Groups) > 1 || m.group != task.GroupNone
	for _, g := range m.view.Groups {
		if showLabels && g.Label != "" {
			b.WriteString(groupStyle.Render(fmt.Sprintf("%s (%d)", g.Label, len(g.Tasks))))
			b.WriteString("\n")
		}
		for _, t := range g.Tasks {
			cursor := " "
			if m.cursor == row && m.mode == modeList && m.meta == nil {
				cursor = cursorStyle.Render(">")
			}
			b.WriteString(cursor + " " + m.renderRow(t, now) + "\n")
			row++
		}
	}
	return b.String()
}

func (m Model) renderRow(t task.Task, now time.Time) string {
	checkbox := "[ ]"
	title := t.Title
	if t.Completed {
		checkbox = "[x]"
		title = doneStyle.Render(title)
	}
	parts := []string{checkbox, title, priorityStyle[t.Priority.Normalize()].Render(string(t.Priority.Normalize()))}

	if t.DueDate != nil {
		label := task.DueLabel(t.DueDate, t.Completed, now)
		switch {
		case task.IsOverdue(t.DueDate, t.Completed, now):
			label = overdueStyle.Render(label)
		case task.IsDueToday(t.DueDate, now):
			label = todayStyle.Render(label)
		}
		parts = append(parts, label)
	}
	if t.Category != "" {
		parts = append(parts, m.categoryStyle(t.Category).Render("#"+t.Category))
	}
	return strings.Join(parts, "  ")
}

func (m Model) categoryStyle(name string) lipgloss.Style {
	color := task.DefaultColor
	if c, ok := m.svc.CategoryByName(name); ok && c.Color != "" {
		color = c.Color
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

func (m Model) renderMetaBox() string {
	if m.meta == nil {
		return ""
	}
	values := m.meta.values()
	var b strings.Builder
	for i, name := range metaFields() {
		prefix := " "
		if i == m.meta.index {
			prefix = ">"
		}
		val := values[i]
		if strings.TrimSpace(val) == "" {
			val = "(empty)"
		}
		b.WriteString(fmt.Sprintf("%s %-26s : %s\n", prefix, name, val))
	}
	return b.String()
}

func (m Model) renderMetadataPanel() string {
	t, ok := m.selected()
	if !ok {
		return "No task selected"
	}
	due := "(none)"
	if t.DueDate != nil {
		due = task.FormatDueDate(t.DueDate) + " (" + task.DueLabel(t.DueDate, t.Completed, m.now()) + ")"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Title    : %s\n", t.Title))
	b.WriteString(fmt.Sprintf("Done     : %s\n", humanDone(t.Completed)))
	b.WriteString(fmt.Sprintf("Priority : %s\n", t.Priority.Label()))
	b.WriteString(fmt.Sprintf("Due      : %s\n", due))
	b.WriteString(fmt.Sprintf("Category : %s\n", emptyPlaceholder(t.Category)))
	b.WriteString(fmt.Sprintf("Created  : %s", t.CreatedAt.Local().Format("2006-01-02 15:04")))
	return b.String()
}

func renderHelp(k config.Keymap) string {
	return chipStyle.Render(fmt.Sprintf(
		"%s/%s move • %s add (tab for details) • %s toggle • %s delete • %s edit • %s search • %s status • %s priority • %s category • %s group • %s clear • %s new category • %s reload • %s quit",
		k.Up, k.Down, k.Add, keyName(k.Toggle), k.Delete, k.Edit, k.Search,
		k.CycleStatus, k.CyclePriority, k.CycleCategory, k.CycleGroup, k.ClearFilters, k.NewCategory, k.Reload, k.Quit))
}

func keyName(k string) string {
	if k == " " {
		return "space"
	}
	return k
}

func emptyPlaceholder(v string) string {
	if strings.TrimSpace(v) == "" {
		return "(none)"
	}
	return v
}
