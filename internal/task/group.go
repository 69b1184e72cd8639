package task

import (
	"slices"
	"strings"
)

// Dimension is the attribute a task list is partitioned by.
type Dimension string

const (
	GroupNone     Dimension = "none"
	GroupPriority Dimension = "priority"
	GroupStatus   Dimension = "status"
	GroupCategory Dimension = "category"
)

// NoCategory labels tasks without a category. It sorts by its literal value.
const NoCategory = "No Category"

const (
	pendingLabel   = "Pending"
	completedLabel = "Completed"
)

func Dimensions() []Dimension {
	return []Dimension{GroupNone, GroupPriority, GroupStatus, GroupCategory}
}

// ParseDimension maps unknown or empty input to GroupNone.
func ParseDimension(s string) Dimension {
	d := Dimension(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Dimensions() {
		if d == known {
			return d
		}
	}
	return GroupNone
}

// DefaultDimension groups the unfiltered list by priority and any narrowed
// status view as a flat list.
func DefaultDimension(s Status) Dimension {
	if s == "" || s == StatusAll {
		return GroupPriority
	}
	return GroupNone
}

// Group is a labelled slice of tasks. The single group produced by GroupNone
// has an empty label.
type Group struct {
	Label string
	Tasks []Task
}

func priorityLabel(p Priority) string {
	return p.Label() + " Priority"
}

// GroupBy partitions already sorted tasks. Task order inside each group is
// kept; empty groups are dropped, except that GroupNone always returns exactly
// one group.
func GroupBy(sorted []Task, d Dimension) []Group {
	switch d {
	case GroupPriority:
		order := make([]string, 0, 3)
		for _, p := range Priorities() {
			order = append(order, priorityLabel(p))
		}
		return partition(sorted, order, func(t Task) string {
			return priorityLabel(t.Priority)
		})
	case GroupStatus:
		return partition(sorted, []string{pendingLabel, completedLabel}, func(t Task) string {
			if t.Completed {
				return completedLabel
			}
			return pendingLabel
		})
	case GroupCategory:
		buckets := bucket(sorted, categoryKey)
		keys := make([]string, 0, len(buckets))
		for k := range buckets {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		return collect(buckets, keys)
	default:
		return []Group{{Tasks: slices.Clone(sorted)}}
	}
}

func categoryKey(t Task) string {
	if t.Category == "" {
		return NoCategory
	}
	return t.Category
}

func partition(sorted []Task, order []string, key func(Task) string) []Group {
	return collect(bucket(sorted, key), order)
}

func bucket(sorted []Task, key func(Task) string) map[string][]Task {
	buckets := make(map[string][]Task)
	for _, t := range sorted {
		k := key(t)
		buckets[k] = append(buckets[k], t)
	}
	return buckets
}

func collect(buckets map[string][]Task, order []string) []Group {
	groups := make([]Group, 0, len(order))
	for _, label := range order {
		tasks, ok := buckets[label]
		if !ok || len(tasks) == 0 {
			continue
		}
		groups = append(groups, Group{Label: label, Tasks: tasks})
	}
	return groups
}
