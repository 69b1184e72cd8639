package task_test

import (
	"time"

	"taskflow/internal/task"
)

var fixtureNow = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.Local)

func created(minutes int) time.Time {
	return time.Date(2024, time.May, 1, 0, 0, 0, 0, time.Local).Add(time.Duration(minutes) * time.Minute)
}

func titles(tasks []task.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Title)
	}
	return out
}

func groupLabels(groups []task.Group) []string {
	out := make([]string, 0, len(groups))
	for _, g := range groups {
		out = append(out, g.Label)
	}
	return out
}

// sampleTasks covers every filter dimension relative to fixtureNow.
func sampleTasks() []task.Task {
	today := time.Date(2024, time.June, 1, 8, 0, 0, 0, time.Local)
	past := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.Local)
	future := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.Local)
	return []task.Task{
		{ID: 1, Title: "Write report", Priority: task.High, DueDate: &today, Category: "Work", CreatedAt: created(1)},
		{ID: 2, Title: "Buy milk", Priority: task.Low, Completed: true, Category: "Home", CreatedAt: created(2)},
		{ID: 3, Title: "Renew passport", Priority: task.Medium, DueDate: &past, CreatedAt: created(3)},
		{ID: 4, Title: "Plan trip", Priority: task.Medium, DueDate: &future, Category: "Home", CreatedAt: created(4)},
		{ID: 5, Title: "File taxes", Priority: task.High, DueDate: &past, Completed: true, Category: "Work", CreatedAt: created(5)},
	}
}
