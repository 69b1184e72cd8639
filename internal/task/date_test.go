package task_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/task"
)

func localDate(y int, m time.Month, d, h, min int) *time.Time {
	t := time.Date(y, m, d, h, min, 0, 0, time.Local)
	return &t
}

func TestParseDueDate_DateOnly(t *testing.T) {
	got := task.ParseDueDate("2024-01-01")
	require.NotNil(t, got)
	y, m, d := got.Date()
	assert.Equal(t, 2024, y)
	assert.Equal(t, time.January, m)
	assert.Equal(t, 1, d)
	assert.Equal(t, 0, got.Hour())
}

func TestParseDueDate_Timestamp(t *testing.T) {
	got := task.ParseDueDate("2024-03-05T10:20:30Z")
	require.NotNil(t, got)
	assert.True(t, got.Equal(time.Date(2024, 3, 5, 10, 20, 30, 0, time.UTC)))
}

func TestParseDueDate_Unparsable(t *testing.T) {
	assert.Nil(t, task.ParseDueDate(""))
	assert.Nil(t, task.ParseDueDate("   "))
	assert.Nil(t, task.ParseDueDate("next tuesday"))
	assert.Nil(t, task.ParseDueDate("2024-13-45"))
}

func TestIsOverdue_PastIncomplete(t *testing.T) {
	now := *localDate(2024, time.June, 1, 12, 0)
	due := task.ParseDueDate("2024-01-01")

	assert.True(t, task.IsOverdue(due, false, now))
	assert.False(t, task.IsOverdue(due, true, now))
}

func TestIsOverdue_FalseForAnyTimeToday(t *testing.T) {
	now := *localDate(2024, time.June, 1, 23, 59)
	for _, due := range []*time.Time{
		localDate(2024, time.June, 1, 0, 0),
		localDate(2024, time.June, 1, 8, 30),
		localDate(2024, time.June, 1, 23, 59),
	} {
		assert.False(t, task.IsOverdue(due, false, now), due.String())
		assert.True(t, task.IsDueToday(due, now), due.String())
	}
}

func TestIsOverdue_FalseForFuture(t *testing.T) {
	now := *localDate(2024, time.June, 1, 9, 0)
	due := localDate(2024, time.June, 2, 0, 0)

	assert.False(t, task.IsOverdue(due, false, now))
	assert.False(t, task.IsDueToday(due, now))
}

func TestClassifier_NilDueDate(t *testing.T) {
	now := time.Now()
	assert.False(t, task.IsDueToday(nil, now))
	assert.False(t, task.IsOverdue(nil, false, now))
	assert.Equal(t, "", task.DueLabel(nil, false, now))
}

func TestIsDueToday_TimestampNormalizedToNowLocation(t *testing.T) {
	now := time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC)
	lateYesterday := time.Date(2024, time.May, 31, 23, 30, 0, 0, time.UTC)
	earlyToday := time.Date(2024, time.June, 1, 0, 15, 0, 0, time.UTC)

	assert.False(t, task.IsDueToday(&lateYesterday, now))
	assert.True(t, task.IsOverdue(&lateYesterday, false, now))
	assert.True(t, task.IsDueToday(&earlyToday, now))
}

func TestClassifier_DateOnlyKeepsCalendarDayAcrossZones(t *testing.T) {
	east := time.FixedZone("east", 9*60*60)
	west := time.FixedZone("west", -7*60*60)
	due := time.Date(2024, time.June, 1, 0, 0, 0, 0, east)
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, west)

	assert.True(t, task.IsDueToday(&due, now))
	assert.False(t, task.IsOverdue(&due, false, now))
	assert.Equal(t, "Today", task.DueLabel(&due, false, now))

	tomorrow := now.AddDate(0, 0, 1)
	assert.True(t, task.IsOverdue(&due, false, tomorrow))
	assert.Equal(t, "Overdue · Jun 1", task.DueLabel(&due, false, tomorrow))
}

func TestDueLabel(t *testing.T) {
	now := *localDate(2024, time.June, 10, 9, 0)

	assert.Equal(t, "Today", task.DueLabel(localDate(2024, time.June, 10, 0, 0), false, now))
	assert.Equal(t, "Overdue · Jun 2", task.DueLabel(localDate(2024, time.June, 2, 0, 0), false, now))
	assert.Equal(t, "Jun 2", task.DueLabel(localDate(2024, time.June, 2, 0, 0), true, now))
	assert.Equal(t, "Jul 4", task.DueLabel(localDate(2024, time.July, 4, 0, 0), false, now))
}

func TestFormatDueDate(t *testing.T) {
	assert.Equal(t, "", task.FormatDueDate(nil))
	assert.Equal(t, "2024-02-29", task.FormatDueDate(localDate(2024, time.February, 29, 0, 0)))
}
