// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"taskflow/internal/task"
)

// FakeStore is an in-memory implementation of service.Store for testing.
type FakeStore struct {
	mu         sync.RWMutex
	tasks      []task.Task
	categories []task.Category
	nextID     int64
	now        func() time.Time

	// Error injection for testing
	ListTasksErr      error
	GetTaskErr        error
	CreateTaskErr     error
	UpdateTaskErr     error
	DeleteTaskErr     error
	ListCategoriesErr error
	CreateCatErr      error
	UpdateCatErr      error
	DeleteCatErr      error

	// Calls counts every method invocation by name.
	Calls map[string]int
}

// NewFakeStore creates an empty FakeStore whose clock starts at start and
// advances one minute per created task.
func NewFakeStore(start time.Time) *FakeStore {
	clock := start
	return &FakeStore{
		nextID: 1,
		now: func() time.Time {
			clock = clock.Add(time.Minute)
			return clock
		},
		Calls: make(map[string]int),
	}
}

// SeedCategory adds a category without going through CreateCategory.
func (f *FakeStore) SeedCategory(name string) task.Category {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := task.Category{ID: f.nextID, Name: name, Color: task.DefaultColor}
	f.nextID++
	f.categories = append(f.categories, c)
	return c
}

// SeedTask adds a task without going through CreateTask. Zero CreatedAt and
// Order values are filled from the fake clock.
func (f *FakeStore) SeedTask(t task.Task) task.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	t.ID = f.nextID
	f.nextID++
	if t.CreatedAt.IsZero() {
		t.CreatedAt = f.now()
	}
	if t.Order == 0 {
		t.Order = t.CreatedAt.UnixMilli()
	}
	if t.Priority == "" {
		t.Priority = task.Medium
	}
	f.tasks = append(f.tasks, t)
	return f.resolve(t)
}

// Snapshot returns the stored tasks without counting a call.
func (f *FakeStore) Snapshot() []task.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]task.Task, 0, len(f.tasks))
	for _, t := range f.tasks {
		out = append(out, f.resolve(t))
	}
	return out
}

func (f *FakeStore) ListTasks(ctx context.Context) ([]task.Task, error) {
	f.count("ListTasks")
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	out := f.Snapshot()
	slices.SortStableFunc(out, func(a, b task.Task) int {
		switch {
		case a.Order < b.Order:
			return -1
		case a.Order > b.Order:
			return 1
		}
		return 0
	})
	return out, nil
}

func (f *FakeStore) GetTask(ctx context.Context, id int64) (task.Task, error) {
	f.count("GetTask")
	if f.GetTaskErr != nil {
		return task.Task{}, f.GetTaskErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	i := f.taskIndex(id)
	if i < 0 {
		return task.Task{}, task.ErrTaskNotFound
	}
	return f.resolve(f.tasks[i]), nil
}

func (f *FakeStore) CreateTask(ctx context.Context, in task.NewTask) (task.Task, error) {
	f.count("CreateTask")
	if f.CreateTaskErr != nil {
		return task.Task{}, f.CreateTaskErr
	}
	if err := in.Validate(); err != nil {
		return task.Task{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if in.CategoryID != nil && f.categoryIndex(*in.CategoryID) < 0 {
		return task.Task{}, task.ErrCategoryNotFound
	}
	now := f.now()
	t := task.Task{
		ID:         f.nextID,
		Title:      in.Title,
		Priority:   in.Priority,
		DueDate:    in.DueDate,
		CategoryID: in.CategoryID,
		CreatedAt:  now,
		Order:      now.UnixMilli(),
	}
	f.nextID++
	f.tasks = append(f.tasks, t)
	return f.resolve(t), nil
}

func (f *FakeStore) UpdateTask(ctx context.Context, id int64, p task.Patch) (task.Task, error) {
	f.count("UpdateTask")
	if f.UpdateTaskErr != nil {
		return task.Task{}, f.UpdateTaskErr
	}
	if err := p.Validate(); err != nil {
		return task.Task{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.taskIndex(id)
	if i < 0 {
		return task.Task{}, task.ErrTaskNotFound
	}
	if p.CategoryIDSet && p.CategoryID != nil && f.categoryIndex(*p.CategoryID) < 0 {
		return task.Task{}, task.ErrCategoryNotFound
	}
	f.tasks[i] = p.Apply(f.tasks[i])
	return f.resolve(f.tasks[i]), nil
}

func (f *FakeStore) DeleteTask(ctx context.Context, id int64) error {
	f.count("DeleteTask")
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.taskIndex(id)
	if i < 0 {
		return task.ErrTaskNotFound
	}
	f.tasks = slices.Delete(f.tasks, i, i+1)
	return nil
}

func (f *FakeStore) ListCategories(ctx context.Context) ([]task.Category, error) {
	f.count("ListCategories")
	if f.ListCategoriesErr != nil {
		return nil, f.ListCategoriesErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]task.Category, 0, len(f.categories))
	for _, c := range f.categories {
		out = append(out, f.withCount(c))
	}
	slices.SortFunc(out, func(a, b task.Category) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (f *FakeStore) CreateCategory(ctx context.Context, in task.NewCategory) (task.Category, error) {
	f.count("CreateCategory")
	if f.CreateCatErr != nil {
		return task.Category{}, f.CreateCatErr
	}
	if err := in.Validate(); err != nil {
		return task.Category{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.nameTaken(in.Name, 0) {
		return task.Category{}, task.ErrCategoryExists
	}
	c := task.Category{ID: f.nextID, Name: in.Name, Color: in.Color}
	f.nextID++
	f.categories = append(f.categories, c)
	return c, nil
}

func (f *FakeStore) UpdateCategory(ctx context.Context, id int64, p task.CategoryPatch) (task.Category, error) {
	f.count("UpdateCategory")
	if f.UpdateCatErr != nil {
		return task.Category{}, f.UpdateCatErr
	}
	if err := p.Validate(); err != nil {
		return task.Category{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.categoryIndex(id)
	if i < 0 {
		return task.Category{}, task.ErrCategoryNotFound
	}
	if p.Name != nil {
		if f.nameTaken(*p.Name, id) {
			return task.Category{}, task.ErrCategoryExists
		}
		f.categories[i].Name = *p.Name
	}
	if p.Color != nil {
		f.categories[i].Color = *p.Color
	}
	return f.withCount(f.categories[i]), nil
}

func (f *FakeStore) DeleteCategory(ctx context.Context, id int64) error {
	f.count("DeleteCategory")
	if f.DeleteCatErr != nil {
		return f.DeleteCatErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.categoryIndex(id)
	if i < 0 {
		return task.ErrCategoryNotFound
	}
	f.categories = slices.Delete(f.categories, i, i+1)
	for j := range f.tasks {
		if f.tasks[j].CategoryID != nil && *f.tasks[j].CategoryID == id {
			f.tasks[j].CategoryID = nil
		}
	}
	return nil
}

func (f *FakeStore) count(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls[name]++
}

func (f *FakeStore) taskIndex(id int64) int {
	return slices.IndexFunc(f.tasks, func(t task.Task) bool { return t.ID == id })
}

func (f *FakeStore) categoryIndex(id int64) int {
	return slices.IndexFunc(f.categories, func(c task.Category) bool { return c.ID == id })
}

func (f *FakeStore) nameTaken(name string, except int64) bool {
	for _, c := range f.categories {
		if c.ID != except && c.Name == name {
			return true
		}
	}
	return false
}

// resolve fills the category name the way a join would.
func (f *FakeStore) resolve(t task.Task) task.Task {
	t.Category = ""
	if t.CategoryID != nil {
		if i := f.categoryIndex(*t.CategoryID); i >= 0 {
			t.Category = f.categories[i].Name
		}
	}
	return t
}

func (f *FakeStore) withCount(c task.Category) task.Category {
	c.TaskCount = 0
	for _, t := range f.tasks {
		if t.CategoryID != nil && *t.CategoryID == c.ID {
			c.TaskCount++
		}
	}
	return c
}
