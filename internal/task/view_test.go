package task_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/task"
)

func TestDerive_PendingGroupedByPriority(t *testing.T) {
	all := sampleTasks()

	v := task.Derive(all, task.Criteria{Status: task.StatusPending}, task.GroupPriority, fixtureNow)

	assert.Equal(t, 3, v.Matched)
	assert.Equal(t, []string{"High Priority", "Medium Priority"}, groupLabels(v.Groups))
	assert.Equal(t, []string{"Plan trip", "Renew passport"}, titles(v.Groups[1].Tasks))
	assert.Equal(t, []string{"Write report", "Plan trip", "Renew passport"}, titles(v.Rows()))
	assert.Equal(t, sampleTasks(), all)
}

func TestDerive_NoMatches(t *testing.T) {
	v := task.Derive(sampleTasks(), task.Criteria{Search: "nothing like this"}, task.GroupCategory, fixtureNow)

	assert.Equal(t, 0, v.Matched)
	assert.Empty(t, v.Groups)
	assert.Empty(t, v.Rows())
	assert.Equal(t, 5, v.Counts.Total)
}

func TestDerive_NoneGroupingMatchesSortedFilter(t *testing.T) {
	all := sampleTasks()
	c := task.Criteria{Category: "Home"}

	v := task.Derive(all, c, task.GroupNone, fixtureNow)
	require.Len(t, v.Groups, 1)
	assert.Equal(t, task.Sort(task.Filter(all, c, fixtureNow)), v.Groups[0].Tasks)
}
