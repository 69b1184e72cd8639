// Package task holds the task and category records and the pure read-side
// engine that filters, sorts, groups and counts them.
package task

import (
	"strings"
	"time"
)

// Priority is the urgency of a task. Stored values outside the three known
// levels are tolerated and treated as Low by Normalize.
type Priority string

const (
	Low    Priority = "low"
	Medium Priority = "medium"
	High   Priority = "high"
)

// DefaultColor is used for categories created without a color.
const DefaultColor = "#5B47E0"

// Valid reports whether p is one of the three known levels.
func (p Priority) Valid() bool {
	switch p {
	case Low, Medium, High:
		return true
	}
	return false
}

// Normalize maps p onto a known level. Unrecognized values become Low.
func (p Priority) Normalize() Priority {
	if p.Valid() {
		return p
	}
	return Low
}

// Rank orders priorities: high=3, medium=2, low and unknown=1.
func (p Priority) Rank() int {
	switch p.Normalize() {
	case High:
		return 3
	case Medium:
		return 2
	default:
		return 1
	}
}

// Label is the display form, e.g. "High".
func (p Priority) Label() string {
	s := string(p.Normalize())
	return strings.ToUpper(s[:1]) + s[1:]
}

// ParsePriority accepts any casing; empty input yields Medium.
func ParsePriority(s string) (Priority, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Medium, nil
	}
	p := Priority(s)
	if !p.Valid() {
		return "", &ValidationError{Field: "priority", Reason: "must be low, medium or high"}
	}
	return p, nil
}

// Priorities lists the known levels from highest to lowest.
func Priorities() []Priority {
	return []Priority{High, Medium, Low}
}

type Task struct {
	ID         int64
	Title      string
	Completed  bool
	Priority   Priority
	DueDate    *time.Time
	CategoryID *int64
	Category   string
	CreatedAt  time.Time
	Order      int64
}

type Category struct {
	ID        int64
	Name      string
	Color     string
	TaskCount int
}

// NewTask carries the caller-supplied fields for task creation. The store
// assigns the id, creation time and order.
type NewTask struct {
	Title      string
	Priority   Priority
	DueDate    *time.Time
	CategoryID *int64
}

// Validate trims the title and fills the default priority.
func (n *NewTask) Validate() error {
	n.Title = strings.TrimSpace(n.Title)
	if n.Title == "" {
		return &ValidationError{Field: "title", Reason: "cannot be empty"}
	}
	if n.Priority == "" {
		n.Priority = Medium
	}
	if !n.Priority.Valid() {
		return &ValidationError{Field: "priority", Reason: "must be low, medium or high"}
	}
	return nil
}

// Patch lists the mutable task fields. Nil pointers are left untouched.
// DueDate and CategoryID are nullable, so clearing them is signalled by the
// *Set flag with a nil value.
type Patch struct {
	Title         *string
	Completed     *bool
	Priority      *Priority
	DueDate       *time.Time
	DueDateSet    bool
	CategoryID    *int64
	CategoryIDSet bool
	Order         *int64
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Title == nil &&
		p.Completed == nil &&
		p.Priority == nil &&
		!p.DueDateSet &&
		!p.CategoryIDSet &&
		p.Order == nil
}

// Validate trims the title when present and rejects empty titles and unknown
// priorities.
func (p *Patch) Validate() error {
	if p.Empty() {
		return &ValidationError{Field: "patch", Reason: "has no fields"}
	}
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return &ValidationError{Field: "title", Reason: "cannot be empty"}
		}
		p.Title = &title
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return &ValidationError{Field: "priority", Reason: "must be low, medium or high"}
	}
	return nil
}

// Apply returns a copy of t with the patch applied. Category names are not
// resolved here; the store owns that lookup.
func (p Patch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.DueDateSet {
		t.DueDate = p.DueDate
	}
	if p.CategoryIDSet {
		t.CategoryID = p.CategoryID
		if p.CategoryID == nil {
			t.Category = ""
		}
	}
	if p.Order != nil {
		t.Order = *p.Order
	}
	return t
}

type NewCategory struct {
	Name  string
	Color string
}

func (n *NewCategory) Validate() error {
	n.Name = strings.TrimSpace(n.Name)
	if n.Name == "" {
		return &ValidationError{Field: "name", Reason: "cannot be empty"}
	}
	n.Color = strings.TrimSpace(n.Color)
	if n.Color == "" {
		n.Color = DefaultColor
	}
	return nil
}

type CategoryPatch struct {
	Name  *string
	Color *string
}

func (p *CategoryPatch) Validate() error {
	if p.Name == nil && p.Color == nil {
		return &ValidationError{Field: "patch", Reason: "has no fields"}
	}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return &ValidationError{Field: "name", Reason: "cannot be empty"}
		}
		p.Name = &name
	}
	return nil
}
