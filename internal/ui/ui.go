package ui

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"taskflow/internal/config"
	"taskflow/internal/service"
	"taskflow/internal/task"
)

type mode int

const (
	modeList mode = iota
	modeAdd
	modeSearch
	modeMetadata
	modeCategory
)

// storeTimeout bounds a single record store call issued from the UI.
const storeTimeout = 5 * time.Second

type metaState struct {
	taskID   int64
	title    string
	priority string
	due      string
	category string
	index    int
}

// loadedMsg reports the result of a full reload.
type loadedMsg struct {
	err error
}

// mutatedMsg reports the result of a single store mutation.
type mutatedMsg struct {
	op     string
	done   string
	taskID int64
	err    error
}

type Model struct {
	svc *service.Service
	cfg config.Config
	log *zap.Logger
	now func() time.Time

	criteria    task.Criteria
	group       task.Dimension
	groupPinned bool
	view        task.View
	rows        []task.Task

	cursor     int
	mode       mode
	input      textinput.Model
	status     string
	confirmDel bool
	pendingDel *task.Task
	meta       *metaState
	loaded     bool
	loadErr    error
}

// New builds the model. Tasks are loaded by the command returned from Init.
func New(svc *service.Service, cfg config.Config) Model {
	ti := textinput.New()
	ti.Placeholder = "Task title"
	ti.CharLimit = 256
	ti.Width = 40

	status := task.ParseStatus(cfg.DefaultFilter)
	group := task.ParseDimension(cfg.DefaultGroup)
	if strings.TrimSpace(cfg.DefaultGroup) == "" {
		group = task.DefaultDimension(status)
	}

	m := Model{
		svc:         svc,
		cfg:         cfg,
		log:         zap.L(),
		now:         time.Now,
		criteria:    task.Criteria{Status: status},
		group:       group,
		groupPinned: strings.TrimSpace(cfg.DefaultGroup) != "",
		input:       ti,
		mode:        modeList,
		status:      "Loading tasks...",
	}
	m.refresh()
	return m
}

func Run(svc *service.Service, cfg config.Config) error {
	program := tea.NewProgram(New(svc, cfg), tea.WithAltScreen())
	_, err := program.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return m.load()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.loaded = true
		m.loadErr = msg.err
		if msg.err != nil {
			m.status = fmt.Sprintf("load failed: %v", msg.err)
			m.log.Error("load failed", zap.Error(msg.err))
		} else {
			m.status = fmt.Sprintf("Press '%s' to add, '%s' to search, '%s' to quit.", m.cfg.Keys.Add, m.cfg.Keys.Search, m.cfg.Keys.Quit)
		}
		m.refresh()
		return m, nil
	case mutatedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("%s failed: %v", msg.op, msg.err)
			m.log.Warn("mutation failed", zap.String("op", msg.op), zap.Int64("task_id", msg.taskID), zap.Error(msg.err))
			return m, nil
		}
		m.status = msg.done
		m.refresh()
		if msg.taskID != 0 {
			m.focus(msg.taskID)
		}
		return m, nil
	case tea.KeyMsg:
		if m.meta != nil {
			return m.updateMetadataMode(msg.String(), msg)
		}
		if m.confirmDel {
			return m.updateDeleteConfirm(msg.String())
		}
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.input.Width = max(msg.Width-10, 10)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch m.mode {
	case modeAdd:
		return m.updateAddMode(key, msg)
	case modeSearch:
		return m.updateSearchMode(key, msg)
	case modeCategory:
		return m.updateCategoryMode(key, msg)
	}
	return m.updateListMode(key)
}

func (m Model) updateAddMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel:
		m = m.leaveInput()
		m.status = "Cancelled"
		return m, nil
	case m.cfg.Keys.Confirm:
		in := task.NewTask{Title: m.input.Value()}
		if err := in.Validate(); err != nil {
			m.status = err.Error()
			return m, nil
		}
		m = m.leaveInput()
		m.status = "Saving..."
		svc := m.svc
		return m, m.mutate("add", func(ctx context.Context) (int64, string, error) {
			created, err := svc.CreateTask(ctx, in)
			return created.ID, "Added task", err
		})
	case "tab":
		title := m.input.Value()
		m = m.leaveInput()
		return m.startMetadataEdit(task.Task{Title: title, Priority: task.Medium})
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

// updateSearchMode filters as the query is typed. Confirm keeps the query,
// cancel drops it.
func (m Model) updateSearchMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel:
		m = m.leaveInput()
		m.criteria.Search = ""
		m.refresh()
		m.status = "Search cleared"
		return m, nil
	case m.cfg.Keys.Confirm:
		m = m.leaveInput()
		m.status = fmt.Sprintf("%d matching", m.view.Matched)
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.criteria.Search = m.input.Value()
		m.refresh()
		return m, cmd
	}
}

func (m Model) updateCategoryMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel:
		m = m.leaveInput()
		m.status = "Cancelled"
		return m, nil
	case m.cfg.Keys.Confirm:
		in := task.NewCategory{Name: m.input.Value()}
		if err := in.Validate(); err != nil {
			m.status = err.Error()
			return m, nil
		}
		m = m.leaveInput()
		svc := m.svc
		return m, m.mutate("create category", func(ctx context.Context) (int64, string, error) {
			created, err := svc.CreateCategory(ctx, in)
			return 0, fmt.Sprintf("Created category %q", created.Name), err
		})
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	k := m.cfg.Keys
	if m.loadErr != nil {
		return m.updateLoadFailed(key)
	}
	switch key {
	case "ctrl+c", k.Quit:
		return m, tea.Quit
	case k.Down, "down":
		if len(m.rows) == 0 {
			return m, nil
		}
		m.cursor = clampCursor(m.cursor+1, len(m.rows))
	case k.Up, "up":
		if m.cursor > 0 {
			m.cursor = clampCursor(m.cursor-1, len(m.rows))
		}
	case k.Add:
		m = m.enterInput(modeAdd, "Task title", "")
		m.status = "Add mode: type a title and press Enter, or tab for details"
	case k.Search:
		m = m.enterInput(modeSearch, "Search title or category", m.criteria.Search)
		m.status = "Search: type to filter, Enter to keep, Esc to clear"
	case k.NewCategory:
		m = m.enterInput(modeCategory, "Category name", "")
		m.status = "New category: type a name and press Enter"
	case k.Toggle:
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		svc := m.svc
		return m, m.mutate("toggle", func(ctx context.Context) (int64, string, error) {
			updated, err := svc.ToggleComplete(ctx, t.ID)
			return updated.ID, fmt.Sprintf("Marked %q %s", t.Title, humanDone(updated.Completed)), err
		})
	case k.Delete:
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.confirmDel = true
		m.pendingDel = &t
		m.status = fmt.Sprintf("Delete \"%s\"? y/n", t.Title)
	case k.Detail:
		t, ok := m.selected()
		if !ok {
			m.status = "No tasks"
			return m, nil
		}
		m.status = m.describe(t)
	case k.Edit:
		t, ok := m.selected()
		if !ok {
			m.status = "No tasks to edit"
			return m, nil
		}
		return m.startMetadataEdit(t)
	case k.CycleStatus:
		m.criteria.Status = next(task.Statuses(), statusOrAll(m.criteria.Status))
		if !m.groupPinned {
			m.group = task.DefaultDimension(m.criteria.Status)
		}
		m.refresh()
		m.status = "Status: " + string(m.criteria.Status)
	case k.CyclePriority:
		m.criteria.Priority = next(append([]task.Priority{""}, task.Priorities()...), m.criteria.Priority)
		m.refresh()
		m.status = "Priority: " + orAny(string(m.criteria.Priority))
	case k.CycleCategory:
		names := []string{""}
		for _, c := range m.svc.Categories() {
			names = append(names, c.Name)
		}
		m.criteria.Category = next(names, m.criteria.Category)
		m.refresh()
		m.status = "Category: " + orAny(m.criteria.Category)
	case k.CycleGroup:
		m.group = next(task.Dimensions(), m.group)
		m.groupPinned = true
		m.refresh()
		m.status = "Group by: " + string(m.group)
	case k.Reload:
		m.status = "Reloading..."
		return m, m.load()
	case k.ClearFilters:
		m.criteria = task.Criteria{Status: task.StatusAll}
		m.group = task.DefaultDimension(task.StatusAll)
		m.groupPinned = false
		m.refresh()
		m.status = "Filters cleared"
	}
	return m, nil
}

// updateLoadFailed only allows reloading or quitting, so nothing is written on
// top of a snapshot the store never confirmed.
func (m Model) updateLoadFailed(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c", m.cfg.Keys.Quit:
		return m, tea.Quit
	case m.cfg.Keys.Reload:
		m.status = "Reloading..."
		return m, m.load()
	}
	return m, nil
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n", "N", m.cfg.Keys.Cancel:
		m.status = "Delete cancelled"
		m.confirmDel = false
		m.pendingDel = nil
		return m, nil
	case "y", "Y":
		if m.pendingDel == nil {
			m.status = "Nothing to delete"
			m.confirmDel = false
			return m, nil
		}
		t := *m.pendingDel
		m.confirmDel = false
		m.pendingDel = nil
		svc := m.svc
		return m, m.mutate("delete", func(ctx context.Context) (int64, string, error) {
			return 0, "Deleted task", svc.DeleteTask(ctx, t.ID)
		})
	default:
		return m, nil
	}
}

func (m Model) startMetadataEdit(t task.Task) (tea.Model, tea.Cmd) {
	m.meta = &metaState{
		taskID:   t.ID,
		title:    t.Title,
		priority: string(t.Priority.Normalize()),
		due:      task.FormatDueDate(t.DueDate),
		category: t.Category,
		index:    0,
	}
	m.input.SetValue(m.meta.currentValue())
	m.input.Placeholder = m.meta.currentLabel()
	m.input.Focus()
	m.mode = modeMetadata
	m.status = "Edit task: tab to move, enter to save/next, esc to cancel"
	if m.meta.creating() {
		m.status = "New task: tab to move, enter to save/next, esc to cancel"
	}
	return m, nil
}

func (m Model) updateMetadataMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		m.meta = nil
		m = m.leaveInput()
		m.status = "Edit cancelled"
		return m, nil
	case "tab", "down":
		m.meta.setCurrentValue(m.input.Value())
		m.meta.index = wrapIndex(m.meta.index+1, len(metaFields()))
		m.input.SetValue(m.meta.currentValue())
		m.input.Placeholder = m.meta.currentLabel()
		m.status = m.metaPrompt()
		return m, nil
	case "shift+tab", "up":
		m.meta.setCurrentValue(m.input.Value())
		m.meta.index = wrapIndex(m.meta.index-1, len(metaFields()))
		m.input.SetValue(m.meta.currentValue())
		m.input.Placeholder = m.meta.currentLabel()
		m.status = m.metaPrompt()
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		m.meta.setCurrentValue(m.input.Value())
		if m.meta.index >= len(metaFields())-1 {
			return m.saveMetadata()
		}
		m.meta.index++
		m.input.SetValue(m.meta.currentValue())
		m.input.Placeholder = m.meta.currentLabel()
		m.status = m.metaPrompt()
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

// saveMetadata turns the edited fields into a patch. Nothing is sent to the
// store while any field is invalid.
func (m Model) saveMetadata() (tea.Model, tea.Cmd) {
	p, err := m.meta.patch(m.svc)
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	if err := p.Validate(); err != nil {
		m.status = err.Error()
		return m, nil
	}
	id, creating := m.meta.taskID, m.meta.creating()
	m.meta = nil
	m = m.leaveInput()
	m.status = "Saving..."
	svc := m.svc
	if creating {
		in := task.NewTask{Title: *p.Title, Priority: *p.Priority, DueDate: p.DueDate, CategoryID: p.CategoryID}
		return m, m.mutate("add", func(ctx context.Context) (int64, string, error) {
			created, err := svc.CreateTask(ctx, in)
			return created.ID, "Added task", err
		})
	}
	return m, m.mutate("edit", func(ctx context.Context) (int64, string, error) {
		updated, err := svc.UpdateTask(ctx, id, p)
		return updated.ID, "Task saved", err
	})
}

func (ms metaState) patch(svc *service.Service) (task.Patch, error) {
	title := ms.title
	priority, err := task.ParsePriority(ms.priority)
	if err != nil {
		return task.Patch{}, err
	}
	p := task.Patch{Title: &title, Priority: &priority, DueDateSet: true, CategoryIDSet: true}

	if due := strings.TrimSpace(ms.due); due != "" {
		parsed, err := time.ParseInLocation("2006-01-02", due, time.Local)
		if err != nil {
			return task.Patch{}, &task.ValidationError{Field: "due date", Reason: "use YYYY-MM-DD"}
		}
		p.DueDate = &parsed
	}
	if name := strings.TrimSpace(ms.category); name != "" {
		c, ok := svc.CategoryByName(name)
		if !ok {
			return task.Patch{}, &task.ValidationError{Field: "category", Reason: fmt.Sprintf("%q does not exist", name)}
		}
		id := c.ID
		p.CategoryID = &id
	}
	return p, nil
}

// creating reports whether the editor fills in a task that is not stored yet.
func (ms metaState) creating() bool {
	return ms.taskID == 0
}

func metaFields() []string {
	return []string{"title", "priority (low/medium/high)", "due date (YYYY-MM-DD)", "category"}
}

func (ms metaState) currentLabel() string {
	return metaFields()[ms.index]
}

func (ms metaState) currentValue() string {
	switch ms.index {
	case 0:
		return ms.title
	case 1:
		return ms.priority
	case 2:
		return ms.due
	case 3:
		return ms.category
	default:
		return ""
	}
}

func (ms *metaState) setCurrentValue(v string) {
	switch ms.index {
	case 0:
		ms.title = v
	case 1:
		ms.priority = v
	case 2:
		ms.due = v
	case 3:
		ms.category = v
	}
}

func (ms metaState) values() []string {
	return []string{ms.title, ms.priority, ms.due, ms.category}
}

func (m Model) metaPrompt() string {
	if m.meta == nil {
		return ""
	}
	return fmt.Sprintf("Editing %s (field %d of %d). Enter to advance, Esc to cancel, tab to move.",
		m.meta.currentLabel(), m.meta.index+1, len(metaFields()))
}

func (m Model) load() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		return loadedMsg{err: svc.Load(ctx)}
	}
}

// mutate runs fn off the update loop and reports back with a mutatedMsg.
func (m Model) mutate(op string, fn func(ctx context.Context) (int64, string, error)) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		id, done, err := fn(ctx)
		return mutatedMsg{op: op, done: done, taskID: id, err: err}
	}
}

// refresh re-derives the visible rows from the current snapshot.
func (m *Model) refresh() {
	m.view = task.Derive(m.svc.Tasks(), m.criteria, m.group, m.now())
	m.rows = m.view.Rows()
	m.cursor = clampCursor(m.cursor, len(m.rows))
}

func (m *Model) focus(id int64) {
	if i := slices.IndexFunc(m.rows, func(t task.Task) bool { return t.ID == id }); i >= 0 {
		m.cursor = i
	}
}

func (m Model) selected() (task.Task, bool) {
	if len(m.rows) == 0 {
		return task.Task{}, false
	}
	return m.rows[clampCursor(m.cursor, len(m.rows))], true
}

func (m Model) enterInput(md mode, placeholder, value string) Model {
	m.mode = md
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.Focus()
	return m
}

func (m Model) leaveInput() Model {
	m.mode = modeList
	m.input.SetValue("")
	m.input.Blur()
	return m
}

func (m Model) describe(t task.Task) string {
	info := fmt.Sprintf("Task #%d • %s • %s • %s", t.ID, t.Title, humanDone(t.Completed), t.Priority.Label())
	if t.DueDate != nil {
		info += " • due:" + task.DueLabel(t.DueDate, t.Completed, m.now())
	}
	if t.Category != "" {
		info += " • category:" + t.Category
	}
	return info
}

// next returns the element after cur, wrapping around. Unknown values start
// from the first element.
func next[T comparable](options []T, cur T) T {
	i := slices.Index(options, cur)
	return options[wrapIndex(i+1, len(options))]
}

func statusOrAll(s task.Status) task.Status {
	if s == "" {
		return task.StatusAll
	}
	return s
}

func orAny(v string) string {
	if v == "" {
		return "any"
	}
	return v
}

func wrapIndex(idx, n int) int {
	if n <= 0 {
		return 0
	}
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}

func humanDone(done bool) string {
	if done {
		return "done"
	}
	return "pending"
}
