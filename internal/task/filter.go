package task

import (
	"strings"
	"time"
)

// Status selects tasks by completion or due-date class.
type Status string

const (
	StatusAll       Status = "all"
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusToday     Status = "today"
	StatusOverdue   Status = "overdue"
)

// Statuses lists the filter chips in display order.
func Statuses() []Status {
	return []Status{StatusAll, StatusPending, StatusCompleted, StatusToday, StatusOverdue}
}

// ParseStatus maps unknown or empty input to StatusAll.
func ParseStatus(s string) Status {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Statuses() {
		if st == known {
			return st
		}
	}
	return StatusAll
}

// Criteria are combined with AND. Zero-valued fields match everything.
type Criteria struct {
	Search   string
	Status   Status
	Priority Priority
	Category string
}

// IsZero reports whether the criteria select every task.
func (c Criteria) IsZero() bool {
	return strings.TrimSpace(c.Search) == "" &&
		(c.Status == "" || c.Status == StatusAll) &&
		c.Priority == "" &&
		c.Category == ""
}

// Filter returns the tasks matching c in their input order. The input slice is
// never modified.
func Filter(tasks []Task, c Criteria, now time.Time) []Task {
	search := strings.ToLower(strings.TrimSpace(c.Search))
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if search != "" && !matchesSearch(t, search) {
			continue
		}
		if !matchesStatus(t, c.Status, now) {
			continue
		}
		if c.Priority != "" && t.Priority != c.Priority {
			continue
		}
		if c.Category != "" && t.Category != c.Category {
			continue
		}
		out = append(out, t)
	}
	return out
}

func matchesSearch(t Task, search string) bool {
	if strings.Contains(strings.ToLower(t.Title), search) {
		return true
	}
	return t.Category != "" && strings.Contains(strings.ToLower(t.Category), search)
}

func matchesStatus(t Task, s Status, now time.Time) bool {
	switch s {
	case StatusPending:
		return !t.Completed
	case StatusCompleted:
		return t.Completed
	case StatusToday:
		return IsDueToday(t.DueDate, now)
	case StatusOverdue:
		return IsOverdue(t.DueDate, t.Completed, now)
	default:
		return true
	}
}
