package careplan

import (
	"strings"
	"time"

	"pflanzen-manager/internal/model"
)

// PhotoReminderNote is the fixed note on the periodic progress-photo task.
const PhotoReminderNote = "Neues Foto erstellen, um den Fortschritt zu dokumentieren."

// GenerateTasks builds the initial set of care tasks for a plant from one AI
// analysis. Watering and fertilizing tasks are emitted only when their tip
// carries a parsable interval; a vague tip simply produces no reminder for
// that category. The returned order is deterministic: watering, fertilizing,
// repotting, cleaning, photo. IDs are unassigned, persistence is the caller's
// job.
func GenerateTasks(plantID uint, tips model.CareTips, now time.Time) []model.Task {
	var tasks []model.Task

	if iv, ok := ParseInterval(tips.Watering); ok {
		tasks = append(tasks, recurringTask(plantID, model.TaskWatering, tips.Watering, iv, true, now))
	}

	if iv, ok := ParseInterval(tips.Fertilizing); ok {
		tasks = append(tasks, recurringTask(plantID, model.TaskFertilizing, tips.Fertilizing, iv, true, now))
	}

	if needsRepotting(tips.Repotting) {
		iv, ok := ParseInterval(tips.Repotting)
		if !ok {
			iv = Interval{Min: 2, Max: 2, Unit: model.UnitWeeks}
		}
		// Repotting is a one-shot task.
		tasks = append(tasks, model.Task{
			PlantID:   plantID,
			Type:      model.TaskRepotting,
			DueDate:   now.Add(Duration(iv.Min, iv.Unit)),
			Notes:     tips.Repotting,
			CreatedAt: now,
		})
	}

	if needsCleaning(tips.Health) {
		tasks = append(tasks, model.Task{
			PlantID:       plantID,
			Type:          model.TaskCleaning,
			DueDate:       now.Add(Duration(3, model.UnitDays)),
			Notes:         tips.Health,
			Recurring:     true,
			RecurInterval: 2,
			RecurUnit:     model.UnitWeeks,
			CreatedAt:     now,
		})
	}

	// A progress photo is always scheduled, independent of tip content.
	tasks = append(tasks, model.Task{
		PlantID:       plantID,
		Type:          model.TaskPhoto,
		DueDate:       now.Add(Duration(4, model.UnitWeeks)),
		Notes:         PhotoReminderNote,
		Recurring:     true,
		RecurInterval: 4,
		RecurUnit:     model.UnitWeeks,
		CreatedAt:     now,
	})

	return tasks
}

func recurringTask(plantID uint, typ model.TaskType, notes string, iv Interval, seasonal bool, now time.Time) model.Task {
	// The first due date uses the lower bound of a parsed range.
	return model.Task{
		PlantID:       plantID,
		Type:          typ,
		DueDate:       now.Add(Duration(iv.Min, iv.Unit)),
		Notes:         notes,
		Recurring:     true,
		RecurInterval: iv.Min,
		RecurUnit:     iv.Unit,
		RecurSeasonal: seasonal,
		CreatedAt:     now,
	}
}

// repottingNegations are the phrasings that veto a repotting task. Substring
// matching only; reordered or synonymous phrasing is not understood.
var repottingNegations = []string{"nicht umtopfen", "kein umtopfen"}

func needsRepotting(text string) bool {
	lower := strings.ToLower(text)
	if !strings.Contains(lower, "umtopfen") {
		return false
	}
	for _, negation := range repottingNegations {
		if strings.Contains(lower, negation) {
			return false
		}
	}
	return true
}

var cleaningKeywords = []string{"schädling", "reinig", "staub"}

func needsCleaning(text string) bool {
	lower := strings.ToLower(text)
	for _, keyword := range cleaningKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
