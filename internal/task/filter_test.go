package task_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/task"
)

func TestFilter_EmptyCriteriaReturnsAllInInputOrder(t *testing.T) {
	tasks := sampleTasks()

	got := task.Filter(tasks, task.Criteria{}, fixtureNow)
	assert.Equal(t, tasks, got)

	got = task.Filter(tasks, task.Criteria{Status: task.StatusAll}, fixtureNow)
	assert.Equal(t, tasks, got)
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	tasks := sampleTasks()
	before := sampleTasks()

	got := task.Filter(tasks, task.Criteria{Status: task.StatusPending}, fixtureNow)
	require.NotEmpty(t, got)
	got[0].Title = "changed"

	assert.Equal(t, before, tasks)
}

func TestFilter_Search(t *testing.T) {
	tasks := sampleTasks()

	cases := []struct {
		name   string
		search string
		want   []string
	}{
		{"title case-insensitive", "REPORT", []string{"Write report"}},
		{"category name", "home", []string{"Buy milk", "Plan trip"}},
		{"substring", "a", []string{"Renew passport", "Plan trip", "File taxes"}},
		{"whitespace only", "   ", titles(tasks)},
		{"no match", "zzz", []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := task.Filter(tasks, task.Criteria{Search: tc.search}, fixtureNow)
			assert.Equal(t, tc.want, titles(got))
		})
	}
}

func TestFilter_Status(t *testing.T) {
	tasks := sampleTasks()

	cases := []struct {
		status task.Status
		want   []string
	}{
		{task.StatusPending, []string{"Write report", "Renew passport", "Plan trip"}},
		{task.StatusCompleted, []string{"Buy milk", "File taxes"}},
		{task.StatusToday, []string{"Write report"}},
		{task.StatusOverdue, []string{"Renew passport"}},
		{task.Status("bogus"), titles(tasks)},
	}
	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			got := task.Filter(tasks, task.Criteria{Status: tc.status}, fixtureNow)
			assert.Equal(t, tc.want, titles(got))
		})
	}
}

func TestFilter_TodayWithNoMatchesIsEmpty(t *testing.T) {
	tasks := []task.Task{
		{ID: 1, Title: "A"},
		{ID: 2, Title: "B", DueDate: task.ParseDueDate("2020-01-01")},
	}

	got := task.Filter(tasks, task.Criteria{Status: task.StatusToday}, fixtureNow)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFilter_PriorityAndCategoryExactMatch(t *testing.T) {
	tasks := sampleTasks()

	got := task.Filter(tasks, task.Criteria{Priority: task.High}, fixtureNow)
	assert.Equal(t, []string{"Write report", "File taxes"}, titles(got))

	got = task.Filter(tasks, task.Criteria{Category: "Work"}, fixtureNow)
	assert.Equal(t, []string{"Write report", "File taxes"}, titles(got))

	got = task.Filter(tasks, task.Criteria{Category: "work"}, fixtureNow)
	assert.Empty(t, got)
}

func TestFilter_CombinesWithAnd(t *testing.T) {
	got := task.Filter(sampleTasks(), task.Criteria{
		Status:   task.StatusPending,
		Priority: task.Medium,
		Category: "Home",
	}, fixtureNow)

	assert.Equal(t, []string{"Plan trip"}, titles(got))
}

func TestParseStatus(t *testing.T) {
	assert.Equal(t, task.StatusOverdue, task.ParseStatus(" Overdue "))
	assert.Equal(t, task.StatusAll, task.ParseStatus(""))
	assert.Equal(t, task.StatusAll, task.ParseStatus("later"))
}

func TestCriteria_IsZero(t *testing.T) {
	assert.True(t, task.Criteria{}.IsZero())
	assert.True(t, task.Criteria{Status: task.StatusAll, Search: " "}.IsZero())
	assert.False(t, task.Criteria{Category: "Work"}.IsZero())
	assert.False(t, task.Criteria{Status: task.StatusToday}.IsZero())
}
