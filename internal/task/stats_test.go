package task_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"taskflow/internal/task"
)

func TestAggregate_SampleTasks(t *testing.T) {
	got := task.Aggregate(sampleTasks(), fixtureNow)

	assert.Equal(t, task.Counts{
		Total:     5,
		Completed: 2,
		Pending:   3,
		Today:     1,
		Overdue:   1,
		High:      2,
		Medium:    2,
		Low:       1,
	}, got)
}

func TestAggregate_ThreeCompletedTwoPending(t *testing.T) {
	tasks := []task.Task{
		{Title: "a", Completed: true, Priority: task.High},
		{Title: "b", Completed: true, Priority: task.Medium},
		{Title: "c", Completed: true, Priority: task.Low},
		{Title: "d", Priority: task.Medium},
		{Title: "e", Priority: task.Priority("")},
	}

	got := task.Aggregate(tasks, fixtureNow)
	assert.Equal(t, 5, got.Total)
	assert.Equal(t, 3, got.Completed)
	assert.Equal(t, 2, got.Pending)
	assert.Equal(t, 0, got.Today)
	assert.Equal(t, 0, got.Overdue)
	assert.Equal(t, 1, got.High)
	assert.Equal(t, 2, got.Medium)
	assert.Equal(t, 2, got.Low, "unknown priority counts as low")
}

func TestAggregate_Invariants(t *testing.T) {
	tasks := append(sampleTasks(), task.Task{Title: "odd", Priority: task.Priority("urgent")})

	got := task.Aggregate(tasks, fixtureNow)
	assert.Equal(t, got.Total, got.Completed+got.Pending)
	assert.Equal(t, got.Total, got.High+got.Medium+got.Low)
}

func TestAggregate_IgnoresFilterState(t *testing.T) {
	all := sampleTasks()
	view := task.Derive(all, task.Criteria{Status: task.StatusCompleted}, task.GroupNone, fixtureNow)

	assert.Equal(t, task.Aggregate(all, fixtureNow), view.Counts)
	assert.Equal(t, 2, view.Matched)
}

func TestAggregate_Empty(t *testing.T) {
	got := task.Aggregate(nil, fixtureNow)
	assert.Equal(t, task.Counts{}, got)
	assert.Equal(t, 0, got.CompletionPercent())
}

func TestCounts_CompletionPercent(t *testing.T) {
	assert.Equal(t, 67, task.Counts{Total: 3, Completed: 2}.CompletionPercent())
	assert.Equal(t, 100, task.Counts{Total: 4, Completed: 4}.CompletionPercent())
}

func TestCounts_ChipCounts(t *testing.T) {
	c := task.Aggregate(sampleTasks(), fixtureNow)

	assert.Equal(t, 5, c.ForStatus(task.StatusAll))
	assert.Equal(t, 3, c.ForStatus(task.StatusPending))
	assert.Equal(t, 1, c.ForStatus(task.StatusOverdue))
	assert.Equal(t, 2, c.ForPriority(task.High))
	assert.Equal(t, 1, c.ForPriority(task.Low))
}
