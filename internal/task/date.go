package task

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseDueDate reads a stored due date. Date-only values are placed at local
// midnight; timestamps keep their instant. Anything unparsable is treated as
// no due date.
func ParseDueDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if t, err := time.ParseInLocation(dateLayout, s, time.Local); err == nil {
		return &t
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return &t
		}
	}
	return nil
}

// FormatDueDate renders a due date in the date-only form used by inputs.
func FormatDueDate(due *time.Time) string {
	if due == nil {
		return ""
	}
	return due.Format(dateLayout)
}

// startOfDay truncates t to midnight in loc.
func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// dueDay places due on a calendar day in loc. A value at midnight in its own
// zone is a date-only deadline and keeps its year, month and day; any other
// instant is converted to loc first.
func dueDay(due time.Time, loc *time.Location) time.Time {
	if h, m, s := due.Clock(); h == 0 && m == 0 && s == 0 && due.Nanosecond() == 0 {
		y, mo, d := due.Date()
		return time.Date(y, mo, d, 0, 0, 0, 0, loc)
	}
	return startOfDay(due, loc)
}

// IsDueToday reports whether due falls on the same calendar day as now.
func IsDueToday(due *time.Time, now time.Time) bool {
	if due == nil {
		return false
	}
	loc := now.Location()
	return dueDay(*due, loc).Equal(startOfDay(now, loc))
}

// IsOverdue reports whether an incomplete task was due before today. A task
// due earlier today is due today, not overdue.
func IsOverdue(due *time.Time, completed bool, now time.Time) bool {
	if due == nil || completed {
		return false
	}
	loc := now.Location()
	return dueDay(*due, loc).Before(startOfDay(now, loc))
}

// DueLabel is the short text shown next to a task: "Today", "Overdue · Jan 2"
// or "Jan 2". Tasks without a due date get an empty label.
func DueLabel(due *time.Time, completed bool, now time.Time) string {
	if due == nil {
		return ""
	}
	switch {
	case IsDueToday(due, now):
		return "Today"
	case IsOverdue(due, completed, now):
		return "Overdue · " + dueDay(*due, now.Location()).Format("Jan 2")
	default:
		return dueDay(*due, now.Location()).Format("Jan 2")
	}
}
