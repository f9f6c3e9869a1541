package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"pflanzen-manager/internal/careplan"
	"pflanzen-manager/internal/model"
	"pflanzen-manager/internal/repository"
)

// TaskService wraps the scheduling core with persistence: it stores analysis
// results, generates the initial task set and advances recurring chains.
type TaskService struct {
	taskRepo *repository.TaskRepository
	tipRepo  *repository.TipRepository
	logger   *zap.Logger
}

func NewTaskService(taskRepo *repository.TaskRepository, tipRepo *repository.TipRepository, logger *zap.Logger) *TaskService {
	return &TaskService{taskRepo: taskRepo, tipRepo: tipRepo, logger: logger}
}

// RecordAnalysis stores one AI analysis for a plant and generates its initial
// care tasks. Categories without a parsable interval yield no task.
func (s *TaskService) RecordAnalysis(ctx context.Context, plant *model.Plant, tips model.CareTips, now time.Time) (*model.Tip, []model.Task, error) {
	tip := model.Tip{PlantID: plant.ID, Tips: tips, CreatedAt: now}
	if err := s.tipRepo.Create(ctx, &tip); err != nil {
		return nil, nil, err
	}

	tasks, err := s.taskRepo.CreateBatch(ctx, careplan.GenerateTasks(plant.ID, tips, now))
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("care tasks generated",
		zap.Uint("plant_id", plant.ID),
		zap.Int("tasks", len(tasks)),
	)
	return &tip, tasks, nil
}

// Complete toggles a task's done state and persists the outcome. Completing a
// recurring task spawns and persists the successor instance.
func (s *TaskService) Complete(ctx context.Context, user *model.User, taskID uint, completedAt time.Time) (*careplan.CompletionResult, error) {
	task, err := s.taskRepo.FindForUser(ctx, user.ID, taskID)
	if err != nil {
		return nil, err
	}

	res := careplan.Complete(*task, completedAt)
	if err := s.taskRepo.ApplyCompletion(ctx, &res); err != nil {
		return nil, err
	}

	if res.Spawned != nil {
		s.logger.Info("recurring task advanced",
			zap.Uint("task_id", res.Updated.ID),
			zap.Uint("next_id", res.Spawned.ID),
			zap.Time("next_due", res.Spawned.DueDate),
		)
	}
	return &res, nil
}

func (s *TaskService) GetTask(ctx context.Context, user *model.User, taskID uint) (*model.Task, error) {
	return s.taskRepo.FindForUser(ctx, user.ID, taskID)
}

// ListOpen returns the user's unfinished tasks across all active plants,
// soonest first.
func (s *TaskService) ListOpen(ctx context.Context, user *model.User) ([]model.Task, error) {
	return s.taskRepo.ListOpenForUser(ctx, user.ID)
}

func (s *TaskService) ListForPlant(ctx context.Context, plantID uint) ([]model.Task, error) {
	return s.taskRepo.ListByPlant(ctx, plantID)
}

func (s *TaskService) LatestTip(ctx context.Context, plantID uint) (*model.Tip, error) {
	return s.tipRepo.Latest(ctx, plantID)
}

// DeleteTask removes a task and its completion history.
func (s *TaskService) DeleteTask(ctx context.Context, user *model.User, taskID uint) error {
	return s.taskRepo.Delete(ctx, user.ID, taskID)
}
