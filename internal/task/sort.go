package task

import "slices"

// Compare orders incomplete tasks first, then by normalized priority from
// high to low, then newest first. It returns 0 for genuine ties.
func Compare(a, b Task) int {
	if a.Completed != b.Completed {
		if a.Completed {
			return 1
		}
		return -1
	}
	if ra, rb := a.Priority.Rank(), b.Priority.Rank(); ra != rb {
		return rb - ra
	}
	return b.CreatedAt.Compare(a.CreatedAt)
}

// Sort returns a stably sorted copy of tasks.
func Sort(tasks []Task) []Task {
	out := slices.Clone(tasks)
	slices.SortStableFunc(out, Compare)
	return out
}
