// Package service owns the in-memory task collection and routes every
// mutation through the record store.
package service

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"taskflow/internal/task"
)

// Store is the record store contract. Implementations return the sentinels
// from package task for missing records and duplicate category names.
type Store interface {
	// ListTasks returns every task ordered by Order ascending.
	ListTasks(ctx context.Context) ([]task.Task, error)
	GetTask(ctx context.Context, id int64) (task.Task, error)
	// CreateTask assigns the id, creation time and order.
	CreateTask(ctx context.Context, in task.NewTask) (task.Task, error)
	UpdateTask(ctx context.Context, id int64, p task.Patch) (task.Task, error)
	DeleteTask(ctx context.Context, id int64) error

	// ListCategories returns every category ordered by name.
	ListCategories(ctx context.Context) ([]task.Category, error)
	CreateCategory(ctx context.Context, in task.NewCategory) (task.Category, error)
	UpdateCategory(ctx context.Context, id int64, p task.CategoryPatch) (task.Category, error)
	// DeleteCategory removes the category; tasks referencing it lose the
	// reference.
	DeleteCategory(ctx context.Context, id int64) error
}

// Service holds the last known snapshot of tasks and categories. The
// snapshot only changes after the store confirms a write, and a failed call
// leaves it exactly as it was.
type Service struct {
	store Store
	log   *zap.Logger

	mu         sync.RWMutex
	tasks      []task.Task
	categories []task.Category
	version    uint64
}

func New(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, log: logger}
}

// Load replaces the snapshot with the store's current contents.
func (s *Service) Load(ctx context.Context) error {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		return s.fail("list tasks", err)
	}
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return s.fail("list categories", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = tasks
	s.categories = categories
	s.version++
	s.log.Debug("snapshot loaded",
		zap.Int("tasks", len(tasks)),
		zap.Int("categories", len(categories)),
		zap.Uint64("version", s.version))
	return nil
}

// Tasks returns a copy of the snapshot in store order.
func (s *Service) Tasks() []task.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]task.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Categories returns a copy of the categories ordered by name.
func (s *Service) Categories() []task.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]task.Category, len(s.categories))
	copy(out, s.categories)
	return out
}

// Version increases on every successful mutation or reload.
func (s *Service) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *Service) Task(id int64) (task.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.taskIndex(id)
	if i < 0 {
		return task.Task{}, false
	}
	return s.tasks[i], true
}

// CategoryByName looks a category up by case-insensitive name.
func (s *Service) CategoryByName(name string) (task.Category, bool) {
	name = strings.TrimSpace(name)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.categories {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return task.Category{}, false
}

func (s *Service) CreateTask(ctx context.Context, in task.NewTask) (task.Task, error) {
	if err := in.Validate(); err != nil {
		return task.Task{}, err
	}
	created, err := s.store.CreateTask(ctx, in)
	if err != nil {
		return task.Task{}, s.fail("create task", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(slices.Clip(s.tasks), created)
	s.recount()
	s.version++
	s.log.Info("task created", zap.Int64("task_id", created.ID))
	return created, nil
}

func (s *Service) UpdateTask(ctx context.Context, id int64, p task.Patch) (task.Task, error) {
	if err := p.Validate(); err != nil {
		return task.Task{}, err
	}
	updated, err := s.store.UpdateTask(ctx, id, p)
	if err != nil {
		return task.Task{}, s.fail("update task", err, zap.Int64("task_id", id))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceTask(updated)
	s.recount()
	s.version++
	s.log.Info("task updated", zap.Int64("task_id", id))
	return updated, nil
}

// ToggleComplete flips the completion flag of a task in the snapshot.
func (s *Service) ToggleComplete(ctx context.Context, id int64) (task.Task, error) {
	current, ok := s.Task(id)
	if !ok {
		return task.Task{}, task.ErrTaskNotFound
	}
	done := !current.Completed
	return s.UpdateTask(ctx, id, task.Patch{Completed: &done})
}

// Reorder sets the manual order value of a task.
func (s *Service) Reorder(ctx context.Context, id int64, order int64) (task.Task, error) {
	return s.UpdateTask(ctx, id, task.Patch{Order: &order})
}

func (s *Service) DeleteTask(ctx context.Context, id int64) error {
	if err := s.store.DeleteTask(ctx, id); err != nil {
		return s.fail("delete task", err, zap.Int64("task_id", id))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = slices.DeleteFunc(slices.Clone(s.tasks), func(t task.Task) bool { return t.ID == id })
	s.recount()
	s.version++
	s.log.Info("task deleted", zap.Int64("task_id", id))
	return nil
}

func (s *Service) CreateCategory(ctx context.Context, in task.NewCategory) (task.Category, error) {
	if err := in.Validate(); err != nil {
		return task.Category{}, err
	}
	created, err := s.store.CreateCategory(ctx, in)
	if err != nil {
		return task.Category{}, s.fail("create category", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = append(slices.Clip(s.categories), created)
	s.sortCategories()
	s.recount()
	s.version++
	s.log.Info("category created", zap.Int64("category_id", created.ID), zap.String("name", created.Name))
	return created, nil
}

// UpdateCategory renames or recolors a category. Tasks in the snapshot pick
// up the new name immediately.
func (s *Service) UpdateCategory(ctx context.Context, id int64, p task.CategoryPatch) (task.Category, error) {
	if err := p.Validate(); err != nil {
		return task.Category{}, err
	}
	updated, err := s.store.UpdateCategory(ctx, id, p)
	if err != nil {
		return task.Category{}, s.fail("update category", err, zap.Int64("category_id", id))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	categories := slices.Clone(s.categories)
	if i := slices.IndexFunc(categories, func(c task.Category) bool { return c.ID == id }); i >= 0 {
		categories[i] = updated
	} else {
		categories = append(categories, updated)
	}
	s.categories = categories

	tasks := slices.Clone(s.tasks)
	for i := range tasks {
		if tasks[i].CategoryID != nil && *tasks[i].CategoryID == id {
			tasks[i].Category = updated.Name
		}
	}
	s.tasks = tasks
	s.sortCategories()
	s.recount()
	s.version++
	s.log.Info("category updated", zap.Int64("category_id", id))
	return updated, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return s.fail("delete category", err, zap.Int64("category_id", id))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = slices.DeleteFunc(slices.Clone(s.categories), func(c task.Category) bool { return c.ID == id })
	clearRef := task.Patch{CategoryIDSet: true}
	tasks := slices.Clone(s.tasks)
	for i := range tasks {
		if tasks[i].CategoryID != nil && *tasks[i].CategoryID == id {
			tasks[i] = clearRef.Apply(tasks[i])
		}
	}
	s.tasks = tasks
	s.version++
	s.log.Info("category deleted", zap.Int64("category_id", id))
	return nil
}

// fail classifies a store error. Validation, missing-record and duplicate
// errors pass through unchanged; anything else becomes a TransportError.
func (s *Service) fail(op string, err error, fields ...zap.Field) error {
	fields = append(fields, zap.String("op", op), zap.Error(err))
	var verr *task.ValidationError
	if errors.As(err, &verr) || task.IsNotFound(err) || errors.Is(err, task.ErrCategoryExists) {
		s.log.Debug("store rejected request", fields...)
		return err
	}
	s.log.Error("store call failed", fields...)
	return &task.TransportError{Op: op, Err: err}
}

// The helpers below expect s.mu to be held for writing. They never mutate
// slices that may have been handed out.

func (s *Service) taskIndex(id int64) int {
	return slices.IndexFunc(s.tasks, func(t task.Task) bool { return t.ID == id })
}

func (s *Service) replaceTask(t task.Task) {
	tasks := slices.Clone(s.tasks)
	if i := slices.IndexFunc(tasks, func(x task.Task) bool { return x.ID == t.ID }); i >= 0 {
		tasks[i] = t
	} else {
		tasks = append(tasks, t)
	}
	slices.SortStableFunc(tasks, func(a, b task.Task) int {
		switch {
		case a.Order < b.Order:
			return -1
		case a.Order > b.Order:
			return 1
		}
		return 0
	})
	s.tasks = tasks
}

func (s *Service) sortCategories() {
	slices.SortFunc(s.categories, func(a, b task.Category) int {
		return strings.Compare(a.Name, b.Name)
	})
}

// recount derives each category's TaskCount from the task snapshot.
func (s *Service) recount() {
	counts := make(map[int64]int, len(s.categories))
	for _, t := range s.tasks {
		if t.CategoryID != nil {
			counts[*t.CategoryID]++
		}
	}
	categories := slices.Clone(s.categories)
	for i := range categories {
		categories[i].TaskCount = counts[categories[i].ID]
	}
	s.categories = categories
}
