package task

import (
	"math"
	"time"
)

// Counts summarizes the full task collection, independent of any filter.
type Counts struct {
	Total     int
	Completed int
	Pending   int
	Today     int
	Overdue   int
	High      int
	Medium    int
	Low       int
}

// Aggregate counts every task once per summary. Priorities are normalized so
// High+Medium+Low always equals Total.
func Aggregate(all []Task, now time.Time) Counts {
	var c Counts
	for _, t := range all {
		c.Total++
		if t.Completed {
			c.Completed++
		}
		if IsDueToday(t.DueDate, now) {
			c.Today++
		}
		if IsOverdue(t.DueDate, t.Completed, now) {
			c.Overdue++
		}
		switch t.Priority.Normalize() {
		case High:
			c.High++
		case Medium:
			c.Medium++
		default:
			c.Low++
		}
	}
	c.Pending = c.Total - c.Completed
	return c
}

// CompletionPercent is Completed/Total rounded to a whole percent.
func (c Counts) CompletionPercent() int {
	if c.Total == 0 {
		return 0
	}
	return int(math.Round(float64(c.Completed) / float64(c.Total) * 100))
}

// ForStatus returns the count shown on a status filter chip.
func (c Counts) ForStatus(s Status) int {
	switch s {
	case StatusPending:
		return c.Pending
	case StatusCompleted:
		return c.Completed
	case StatusToday:
		return c.Today
	case StatusOverdue:
		return c.Overdue
	default:
		return c.Total
	}
}

// ForPriority returns the count shown on a priority filter chip.
func (c Counts) ForPriority(p Priority) int {
	switch p.Normalize() {
	case High:
		return c.High
	case Medium:
		return c.Medium
	default:
		return c.Low
	}
}
