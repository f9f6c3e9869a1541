package careplan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pflanzen-manager/internal/model"
)

var genNow = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

func TestGenerateTasksFullTips(t *testing.T) {
	tips := model.CareTips{
		Watering:    "Gießen Sie alle 5 Tage",
		Fertilizing: "Düngen alle 2 Wochen",
		Repotting:   "Im Frühjahr umtopfen",
		Health:      "Blätter regelmäßig von Staub befreien",
		Spraying:    "Täglich besprühen",
	}

	tasks := GenerateTasks(42, tips, genNow)
	require.Len(t, tasks, 5)

	watering := tasks[0]
	assert.Equal(t, model.TaskWatering, watering.Type)
	assert.Equal(t, uint(42), watering.PlantID)
	assert.Equal(t, genNow.Add(5*24*time.Hour), watering.DueDate)
	assert.True(t, watering.Recurring)
	assert.Equal(t, 5, watering.RecurInterval)
	assert.Equal(t, model.UnitDays, watering.RecurUnit)
	assert.True(t, watering.RecurSeasonal)
	assert.Equal(t, tips.Watering, watering.Notes)
	assert.False(t, watering.Done)
	assert.Empty(t, watering.CompletionHistory)

	fertilizing := tasks[1]
	assert.Equal(t, model.TaskFertilizing, fertilizing.Type)
	assert.Equal(t, genNow.Add(14*24*time.Hour), fertilizing.DueDate)
	assert.True(t, fertilizing.RecurSeasonal)

	repotting := tasks[2]
	assert.Equal(t, model.TaskRepotting, repotting.Type)
	assert.False(t, repotting.Recurring)
	// No interval in the repotting tip: two-week default.
	assert.Equal(t, genNow.Add(14*24*time.Hour), repotting.DueDate)

	cleaning := tasks[3]
	assert.Equal(t, model.TaskCleaning, cleaning.Type)
	assert.Equal(t, genNow.Add(3*24*time.Hour), cleaning.DueDate)
	assert.True(t, cleaning.Recurring)
	assert.Equal(t, 2, cleaning.RecurInterval)
	assert.Equal(t, model.UnitWeeks, cleaning.RecurUnit)
	assert.False(t, cleaning.RecurSeasonal)

	photo := tasks[4]
	assert.Equal(t, model.TaskPhoto, photo.Type)
	assert.Equal(t, genNow.Add(4*7*24*time.Hour), photo.DueDate)
	assert.True(t, photo.Recurring)
	assert.Equal(t, 4, photo.RecurInterval)
	assert.Equal(t, model.UnitWeeks, photo.RecurUnit)
	assert.False(t, photo.RecurSeasonal)
	assert.Equal(t, PhotoReminderNote, photo.Notes)
}

func TestGenerateTasksNegatedRepottingAndHealthyPlant(t *testing.T) {
	tips := model.CareTips{
		Watering:    "Gießen Sie alle 5 Tage",
		Fertilizing: "Düngen alle 2 Wochen",
		Repotting:   "Kein Umtopfen nötig... nicht umtopfen in diesem Jahr",
		Health:      "Pflanze gesund",
		Spraying:    "Gelegentlich besprühen",
	}

	tasks := GenerateTasks(1, tips, genNow)
	require.Len(t, tasks, 3)
	assert.Equal(t, model.TaskWatering, tasks[0].Type)
	assert.Equal(t, genNow.Add(5*24*time.Hour), tasks[0].DueDate)
	assert.Equal(t, model.TaskFertilizing, tasks[1].Type)
	assert.Equal(t, genNow.Add(2*7*24*time.Hour), tasks[1].DueDate)
	assert.Equal(t, model.TaskPhoto, tasks[2].Type)
}

func TestGenerateTasksUnparseableTipsYieldOnlyPhoto(t *testing.T) {
	tips := model.CareTips{
		Watering:    "Mäßig gießen, die Erde sollte antrocknen.",
		Fertilizing: "Im Winter gar nicht düngen.",
		Repotting:   "Kein Umtopfen nötig.",
		Health:      "Sieht gut aus.",
	}

	tasks := GenerateTasks(7, tips, genNow)
	require.Len(t, tasks, 1)
	assert.Equal(t, model.TaskPhoto, tasks[0].Type)
}

func TestGenerateTasksRepottingWithExplicitInterval(t *testing.T) {
	tips := model.CareTips{
		Repotting: "Umtopfen alle 12 Monate empfohlen",
	}

	tasks := GenerateTasks(3, tips, genNow)
	require.Len(t, tasks, 2)
	assert.Equal(t, model.TaskRepotting, tasks[0].Type)
	assert.Equal(t, genNow.Add(12*30*24*time.Hour), tasks[0].DueDate)
	assert.False(t, tasks[0].Recurring)
}

func TestGenerateTasksRangeUsesMinimum(t *testing.T) {
	tips := model.CareTips{
		Watering: "alle 7-10 Tage gießen",
	}

	tasks := GenerateTasks(9, tips, genNow)
	require.Len(t, tasks, 2)
	assert.Equal(t, genNow.Add(7*24*time.Hour), tasks[0].DueDate)
	assert.Equal(t, 7, tasks[0].RecurInterval)
}

func TestNeedsCleaningKeywords(t *testing.T) {
	assert.True(t, needsCleaning("Leichter Schädlingsbefall an den Blättern"))
	assert.True(t, needsCleaning("Blätter reinigen"))
	assert.True(t, needsCleaning("Viel Staub auf den Blättern"))
	assert.False(t, needsCleaning("Pflanze gesund"))
}
