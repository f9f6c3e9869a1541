package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"pflanzen-manager/internal/model"
	"pflanzen-manager/internal/repository"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := repository.NewDB(dsn)
	require.NoError(t, err)
	return db
}

type testEnv struct {
	db       *gorm.DB
	user     *model.User
	plants   *PlantService
	tasks    *TaskService
	watering *WateringService
	reminder *ReminderService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	ctx := context.Background()

	userRepo := repository.NewUserRepository(db)
	user, err := userRepo.UpsertFromTelegram(ctx, 1001, "Tina", "Test", "tinatest")
	require.NoError(t, err)

	plantRepo := repository.NewPlantRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	photoRepo := repository.NewPhotoRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	tipRepo := repository.NewTipRepository(db)

	return &testEnv{
		db:       db,
		user:     user,
		plants:   NewPlantService(plantRepo, roomRepo, photoRepo),
		tasks:    NewTaskService(taskRepo, tipRepo, zap.NewNop()),
		watering: NewWateringService(taskRepo),
		reminder: NewReminderService(plantRepo, taskRepo),
	}
}

func (e *testEnv) newPlant(t *testing.T, name, room string) *model.Plant {
	t.Helper()
	plant, err := e.plants.CreatePlant(context.Background(), e.user, PlantInput{Name: name, Room: room})
	require.NoError(t, err)
	return plant
}

var analysisTips = model.CareTips{
	Watering:    "Gießen Sie alle 5 Tage",
	Fertilizing: "Düngen alle 2 Wochen",
	Repotting:   "Kein Umtopfen nötig",
	Location:    "Heller Standort",
	Health:      "Pflanze gesund",
	Spraying:    "Gelegentlich besprühen",
}

func TestRecordAnalysisPersistsTipAndTasks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

	plant := env.newPlant(t, "Monstera", "Wohnzimmer")

	tip, tasks, err := env.tasks.RecordAnalysis(ctx, plant, analysisTips, now)
	require.NoError(t, err)
	assert.NotZero(t, tip.ID)
	assert.Equal(t, analysisTips.Watering, tip.Tips.Watering)

	// Watering, fertilizing and the unconditional photo task.
	require.Len(t, tasks, 3)
	for _, task := range tasks {
		assert.NotZero(t, task.ID)
		assert.Equal(t, plant.ID, task.PlantID)
	}

	stored, err := env.tasks.ListForPlant(ctx, plant.ID)
	require.NoError(t, err)
	require.Len(t, stored, 3)

	latest, err := env.tasks.LatestTip(ctx, plant.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, tip.ID, latest.ID)
}

func TestCompletePersistsHistoryAndSuccessor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

	plant := env.newPlant(t, "Monstera", "")
	_, tasks, err := env.tasks.RecordAnalysis(ctx, plant, analysisTips, now)
	require.NoError(t, err)

	watering := tasks[0]
	require.Equal(t, model.TaskWatering, watering.Type)

	completedAt := now.Add(5 * 24 * time.Hour)
	res, err := env.tasks.Complete(ctx, env.user, watering.ID, completedAt)
	require.NoError(t, err)

	assert.True(t, res.Updated.Done)
	require.NotNil(t, res.Spawned)
	assert.NotZero(t, res.Spawned.ID)
	assert.Equal(t, completedAt.Add(5*24*time.Hour), res.Spawned.DueDate)

	// Reload through the repository: history entry and successor persisted.
	reloaded, err := env.tasks.GetTask(ctx, env.user, watering.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.Done)
	require.Len(t, reloaded.CompletionHistory, 1)
	assert.WithinDuration(t, completedAt, reloaded.CompletionHistory[0].Date, time.Second)

	successor, err := env.tasks.GetTask(ctx, env.user, res.Spawned.ID)
	require.NoError(t, err)
	require.NotNil(t, successor.ParentTaskID)
	assert.Equal(t, watering.ID, *successor.ParentTaskID)
	assert.False(t, successor.Done)
	assert.Empty(t, successor.CompletionHistory)
}

func TestCompleteToggleBackLeavesHistoryAndSpawnsNothing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

	plant := env.newPlant(t, "Ficus", "")
	_, tasks, err := env.tasks.RecordAnalysis(ctx, plant, analysisTips, now)
	require.NoError(t, err)
	watering := tasks[0]

	_, err = env.tasks.Complete(ctx, env.user, watering.ID, now.Add(24*time.Hour))
	require.NoError(t, err)

	// Second toggle: undo.
	res, err := env.tasks.Complete(ctx, env.user, watering.ID, now.Add(25*time.Hour))
	require.NoError(t, err)
	assert.False(t, res.Updated.Done)
	assert.Nil(t, res.Spawned)

	reloaded, err := env.tasks.GetTask(ctx, env.user, watering.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.Done)
	assert.Len(t, reloaded.CompletionHistory, 1, "undo must not append or remove history")

	all, err := env.tasks.ListForPlant(ctx, plant.ID)
	require.NoError(t, err)
	assert.Len(t, all, 4, "only the first completion spawned a successor")
}

func TestCompleteForeignTaskIsRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

	plant := env.newPlant(t, "Monstera", "")
	_, tasks, err := env.tasks.RecordAnalysis(ctx, plant, analysisTips, now)
	require.NoError(t, err)

	stranger := &model.User{ID: env.user.ID + 99}
	_, err = env.tasks.Complete(ctx, stranger, tasks[0].ID, now)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListOpenSkipsArchivedPlants(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

	keep := env.newPlant(t, "Monstera", "")
	bury := env.newPlant(t, "Basilikum", "")

	_, _, err := env.tasks.RecordAnalysis(ctx, keep, analysisTips, now)
	require.NoError(t, err)
	_, _, err = env.tasks.RecordAnalysis(ctx, bury, analysisTips, now)
	require.NoError(t, err)

	open, err := env.tasks.ListOpen(ctx, env.user)
	require.NoError(t, err)
	assert.Len(t, open, 6)

	_, err = env.plants.Archive(ctx, env.user, bury.ID, now)
	require.NoError(t, err)

	open, err = env.tasks.ListOpen(ctx, env.user)
	require.NoError(t, err)
	assert.Len(t, open, 3)
	for _, task := range open {
		assert.Equal(t, keep.ID, task.PlantID)
	}
}

func TestDeleteForeverCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

	plant := env.newPlant(t, "Monstera", "Küche")
	_, _, err := env.tasks.RecordAnalysis(ctx, plant, analysisTips, now)
	require.NoError(t, err)
	_, err = env.plants.AddPhoto(ctx, plant, "file-123", "", now)
	require.NoError(t, err)

	require.NoError(t, env.plants.DeleteForever(ctx, env.user, plant.ID))

	_, err = env.plants.GetPlant(ctx, env.user, plant.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	tasks, err := env.tasks.ListForPlant(ctx, plant.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	tip, err := env.tasks.LatestTip(ctx, plant.ID)
	require.NoError(t, err)
	assert.Nil(t, tip)

	photos, err := env.plants.ListPhotos(ctx, plant.ID)
	require.NoError(t, err)
	assert.Empty(t, photos)
}

func TestRoomNamesAreScopedPerUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	other, err := repository.NewUserRepository(env.db).UpsertFromTelegram(ctx, 2002, "Omar", "Other", "omarother")
	require.NoError(t, err)

	first, err := env.plants.CreatePlant(ctx, env.user, PlantInput{Name: "Monstera", Room: "Küche"})
	require.NoError(t, err)
	second, err := env.plants.CreatePlant(ctx, other, PlantInput{Name: "Basilikum", Room: "Küche"})
	require.NoError(t, err)

	require.NotNil(t, first.RoomID)
	require.NotNil(t, second.RoomID)
	assert.NotEqual(t, *first.RoomID, *second.RoomID, "each user gets their own room row")

	rooms, err := env.plants.ListRooms(ctx, other)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "Küche", rooms[0].Name)
	assert.Equal(t, other.ID, rooms[0].UserID)
}

func TestDeleteRoomRemovesPlantsIncludingArchived(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

	inRoom := env.newPlant(t, "Monstera", "Balkon")
	buried := env.newPlant(t, "Basilikum", "Balkon")
	elsewhere := env.newPlant(t, "Ficus", "Küche")

	_, err := env.plants.Archive(ctx, env.user, buried.ID, now)
	require.NoError(t, err)

	rooms, err := env.plants.ListRooms(ctx, env.user)
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	var balkon *model.Room
	for i := range rooms {
		if rooms[i].Name == "Balkon" {
			balkon = &rooms[i]
		}
	}
	require.NotNil(t, balkon)

	require.NoError(t, env.plants.DeleteRoom(ctx, env.user, balkon.ID))

	_, err = env.plants.GetPlant(ctx, env.user, inRoom.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	_, err = env.plants.GetPlant(ctx, env.user, buried.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// The other room and its plant are untouched.
	_, err = env.plants.GetPlant(ctx, env.user, elsewhere.ID)
	require.NoError(t, err)
	rooms, err = env.plants.ListRooms(ctx, env.user)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "Küche", rooms[0].Name)
}
