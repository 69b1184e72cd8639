package task_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/task"
)

func TestGroupBy_NoneYieldsSingleGroupInSortOrder(t *testing.T) {
	sorted := task.Sort(sampleTasks())

	groups := task.GroupBy(sorted, task.GroupNone)
	require.Len(t, groups, 1)
	assert.Equal(t, "", groups[0].Label)
	assert.Equal(t, sorted, groups[0].Tasks)
}

func TestGroupBy_NoneOnEmptyInput(t *testing.T) {
	groups := task.GroupBy(nil, task.GroupNone)
	require.Len(t, groups, 1)
	assert.Empty(t, groups[0].Tasks)
}

func TestGroupBy_PriorityFixedOrder(t *testing.T) {
	tasks := []task.Task{
		{Title: "l", Priority: task.Low},
		{Title: "h", Priority: task.High},
		{Title: "x", Priority: task.Priority("someday")},
		{Title: "m", Priority: task.Medium},
	}

	groups := task.GroupBy(tasks, task.GroupPriority)
	assert.Equal(t, []string{"High Priority", "Medium Priority", "Low Priority"}, groupLabels(groups))
	assert.Equal(t, []string{"l", "x"}, titles(groups[2].Tasks))
}

func TestGroupBy_PriorityOmitsEmptyGroups(t *testing.T) {
	tasks := []task.Task{
		{Title: "l", Priority: task.Low},
		{Title: "h", Priority: task.High},
	}

	groups := task.GroupBy(tasks, task.GroupPriority)
	assert.Equal(t, []string{"High Priority", "Low Priority"}, groupLabels(groups))
}

func TestGroupBy_Status(t *testing.T) {
	tasks := []task.Task{
		{Title: "done", Completed: true},
		{Title: "open"},
	}

	groups := task.GroupBy(tasks, task.GroupStatus)
	assert.Equal(t, []string{"Pending", "Completed"}, groupLabels(groups))

	groups = task.GroupBy(tasks[:1], task.GroupStatus)
	assert.Equal(t, []string{"Completed"}, groupLabels(groups))
}

func TestGroupBy_CategoryAlphabeticalWithSentinel(t *testing.T) {
	tasks := []task.Task{
		{Title: "w", Category: "Work"},
		{Title: "h", Category: "Home"},
		{Title: "n"},
		{Title: "a", Category: "Admin"},
		{Title: "z", Category: "Zoo"},
	}

	groups := task.GroupBy(tasks, task.GroupCategory)
	assert.Equal(t, []string{"Admin", "Home", "No Category", "Work", "Zoo"}, groupLabels(groups))
}

func TestGroupBy_CategoryScenario(t *testing.T) {
	tasks := []task.Task{
		{Title: "w", Category: "Work"},
		{Title: "h", Category: "Home"},
		{Title: "n"},
	}

	groups := task.GroupBy(tasks, task.GroupCategory)
	assert.Equal(t, []string{"Home", "No Category", "Work"}, groupLabels(groups))
}

func TestGroupBy_KeepsSortOrderWithinGroups(t *testing.T) {
	sorted := task.Sort(sampleTasks())

	for _, d := range task.Dimensions() {
		var flattened []task.Task
		for _, g := range task.GroupBy(sorted, d) {
			require.NotEmpty(t, g.Tasks)
			for i := 1; i < len(g.Tasks); i++ {
				assert.LessOrEqual(t, task.Compare(g.Tasks[i-1], g.Tasks[i]), 0, "dimension %s", d)
			}
			flattened = append(flattened, g.Tasks...)
		}
		assert.Len(t, flattened, len(sorted), "dimension %s", d)
	}
}

func TestParseDimension(t *testing.T) {
	assert.Equal(t, task.GroupCategory, task.ParseDimension("Category"))
	assert.Equal(t, task.GroupNone, task.ParseDimension("owner"))
}

func TestDefaultDimension(t *testing.T) {
	assert.Equal(t, task.GroupPriority, task.DefaultDimension(task.StatusAll))
	assert.Equal(t, task.GroupPriority, task.DefaultDimension(""))
	assert.Equal(t, task.GroupNone, task.DefaultDimension(task.StatusToday))
}
