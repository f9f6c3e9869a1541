package careplan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pflanzen-manager/internal/model"
)

func weeklyWateringTask() model.Task {
	return model.Task{
		ID:            11,
		PlantID:       3,
		Type:          model.TaskWatering,
		DueDate:       time.Date(2025, time.March, 1, 8, 0, 0, 0, time.UTC),
		Notes:         "Gießen Sie alle 7 Tage",
		Recurring:     true,
		RecurInterval: 7,
		RecurUnit:     model.UnitDays,
	}
}

func TestCompleteRecurringSpawnsSuccessor(t *testing.T) {
	task := weeklyWateringTask()
	completedAt := time.Date(2025, time.March, 2, 18, 30, 0, 0, time.UTC)

	res := Complete(task, completedAt)

	assert.True(t, res.Updated.Done)
	require.Len(t, res.Updated.CompletionHistory, 1)
	assert.Equal(t, completedAt, res.Updated.CompletionHistory[0].Date)

	require.NotNil(t, res.Spawned)
	spawned := *res.Spawned
	assert.Equal(t, completedAt.Add(7*24*time.Hour), spawned.DueDate)
	require.NotNil(t, spawned.ParentTaskID)
	assert.Equal(t, task.ID, *spawned.ParentTaskID)
	assert.Equal(t, task.PlantID, spawned.PlantID)
	assert.Equal(t, task.Type, spawned.Type)
	assert.Equal(t, task.Notes, spawned.Notes)
	assert.True(t, spawned.Recurring)
	// The stored pattern is copied unmodified; adjustment only shifts the
	// computed due date.
	assert.Equal(t, task.RecurInterval, spawned.RecurInterval)
	assert.Equal(t, task.RecurUnit, spawned.RecurUnit)
	assert.Equal(t, task.RecurSeasonal, spawned.RecurSeasonal)
	assert.False(t, spawned.Done)
	assert.Empty(t, spawned.CompletionHistory)
	assert.Equal(t, completedAt, spawned.CreatedAt)
}

func TestCompleteNonRecurringNeverSpawns(t *testing.T) {
	task := model.Task{
		ID:      5,
		PlantID: 3,
		Type:    model.TaskRepotting,
		DueDate: time.Date(2025, time.April, 1, 8, 0, 0, 0, time.UTC),
	}
	completedAt := time.Date(2025, time.April, 2, 10, 0, 0, 0, time.UTC)

	res := Complete(task, completedAt)

	assert.True(t, res.Updated.Done)
	require.Len(t, res.Updated.CompletionHistory, 1)
	assert.Nil(t, res.Spawned)
}

func TestCompleteTogglesBackWithoutHistoryOrSpawn(t *testing.T) {
	task := weeklyWateringTask()
	task.Done = true
	task.CompletionHistory = []model.Completion{
		{TaskID: task.ID, Date: time.Date(2025, time.March, 2, 18, 30, 0, 0, time.UTC)},
	}

	res := Complete(task, time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC))

	assert.False(t, res.Updated.Done)
	assert.Len(t, res.Updated.CompletionHistory, 1)
	assert.Nil(t, res.Spawned)
}

func TestCompleteSeasonalAdjustmentShiftsDueDate(t *testing.T) {
	task := weeklyWateringTask()
	task.RecurInterval = 10
	task.RecurSeasonal = true

	// June: watering interval shortens to floor(10*0.7) = 7 days.
	june := time.Date(2025, time.June, 10, 8, 0, 0, 0, time.UTC)
	res := Complete(task, june)
	require.NotNil(t, res.Spawned)
	assert.Equal(t, june.Add(7*24*time.Hour), res.Spawned.DueDate)
	assert.Equal(t, 10, res.Spawned.RecurInterval)

	// December: it stretches to ceil(10*1.3) = 13 days.
	december := time.Date(2025, time.December, 10, 8, 0, 0, 0, time.UTC)
	res = Complete(task, december)
	require.NotNil(t, res.Spawned)
	assert.Equal(t, december.Add(13*24*time.Hour), res.Spawned.DueDate)
}

func TestCompleteMalformedPatternFallsBackToOneWeek(t *testing.T) {
	completedAt := time.Date(2025, time.March, 2, 8, 0, 0, 0, time.UTC)

	broken := weeklyWateringTask()
	broken.RecurInterval = 0
	broken.RecurUnit = ""

	res := Complete(broken, completedAt)
	require.NotNil(t, res.Spawned)
	assert.Equal(t, completedAt.Add(7*24*time.Hour), res.Spawned.DueDate)
}

func TestCompleteSuccessorDueAfterCompletion(t *testing.T) {
	task := weeklyWateringTask()
	task.RecurInterval = 1
	task.RecurSeasonal = true

	// Even with the summer shortening of a 1-day interval, the successor must
	// be due strictly after the completion date.
	july := time.Date(2025, time.July, 1, 8, 0, 0, 0, time.UTC)
	res := Complete(task, july)
	require.NotNil(t, res.Spawned)
	assert.True(t, res.Spawned.DueDate.After(july))
}

func TestCompleteChainProducesIncreasingDueDates(t *testing.T) {
	task := weeklyWateringTask()
	task.RecurSeasonal = false

	current := task
	completedAt := time.Date(2025, time.March, 2, 8, 0, 0, 0, time.UTC)
	var dueDates []time.Time

	for i := 0; i < 5; i++ {
		res := Complete(current, completedAt)
		require.NotNil(t, res.Spawned)
		dueDates = append(dueDates, res.Spawned.DueDate)

		current = *res.Spawned
		current.ID = uint(100 + i)
		completedAt = res.Spawned.DueDate
	}

	for i := 1; i < len(dueDates); i++ {
		assert.True(t, dueDates[i].After(dueDates[i-1]))
		assert.Equal(t, 7*24*time.Hour, dueDates[i].Sub(dueDates[i-1]))
	}
}
