package careplan

import (
	"time"

	"pflanzen-manager/internal/model"
)

// CompletionResult carries the outcome of a completion toggle: the updated
// task and, for recurring tasks, the next instance of the chain. Spawned has
// no ID yet.
type CompletionResult struct {
	Updated model.Task
	Spawned *model.Task
}

// Complete toggles a task's done state at the given time.
//
// Completing (done was false) appends a history entry and, for recurring
// tasks, spawns the successor instance due one adjusted interval after the
// completion date. Un-completing (done was true) only flips the flag back:
// no history entry, no spawn, so an accidental tap can be undone cleanly.
func Complete(task model.Task, completedAt time.Time) CompletionResult {
	if task.Done {
		task.Done = false
		return CompletionResult{Updated: task}
	}

	task.Done = true
	task.CompletionHistory = append(task.CompletionHistory, model.Completion{
		TaskID: task.ID,
		Date:   completedAt,
	})

	if !task.Recurring {
		return CompletionResult{Updated: task}
	}

	next := model.Task{
		PlantID:       task.PlantID,
		Type:          task.Type,
		DueDate:       completedAt.Add(nextInterval(task, completedAt)),
		Notes:         task.Notes,
		Recurring:     true,
		RecurInterval: task.RecurInterval,
		RecurUnit:     task.RecurUnit,
		RecurSeasonal: task.RecurSeasonal,
		ParentTaskID:  &task.ID,
		CreatedAt:     completedAt,
	}
	return CompletionResult{Updated: task, Spawned: &next}
}

func nextInterval(task model.Task, completedAt time.Time) time.Duration {
	if task.RecurInterval < 1 || task.RecurUnit == "" {
		// A recurring task without a usable pattern should never block the
		// user from completing it: fall back to one week.
		return Duration(7, model.UnitDays)
	}
	adjusted := AdjustInterval(task.RecurInterval, task.Type, completedAt, task.RecurSeasonal)
	return Duration(adjusted, task.RecurUnit)
}
