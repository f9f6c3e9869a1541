package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"pflanzen-manager/internal/careplan"
	"pflanzen-manager/internal/model"
)

// TaskRepository handles CRUD for care tasks and their completion history.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// CreateBatch persists a freshly generated task set in one transaction,
// preserving order.
func (r *TaskRepository) CreateBatch(ctx context.Context, tasks []model.Task) ([]model.Task, error) {
	if len(tasks) == 0 {
		return nil, nil
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range tasks {
			if err := tx.Create(&tasks[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create tasks: %w", err)
	}
	return tasks, nil
}

// FindForUser loads a task with its completion history, scoped through the
// owning plant so users can only touch their own tasks.
func (r *TaskRepository) FindForUser(ctx context.Context, userID, taskID uint) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).
		Preload("CompletionHistory", func(db *gorm.DB) *gorm.DB { return db.Order("date") }).
		Joins("JOIN plants ON plants.id = tasks.plant_id").
		Where("plants.user_id = ? AND tasks.id = ?", userID, taskID).
		First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) ListByPlant(ctx context.Context, plantID uint) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Preload("CompletionHistory", func(db *gorm.DB) *gorm.DB { return db.Order("date") }).
		Where("plant_id = ?", plantID).
		Order("due_date").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// ListOpenForUser returns every unfinished task of the user's active plants,
// soonest first.
func (r *TaskRepository) ListOpenForUser(ctx context.Context, userID uint) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Joins("JOIN plants ON plants.id = tasks.plant_id").
		Where("plants.user_id = ? AND plants.archived = ? AND tasks.done = ?", userID, false, false).
		Order("tasks.due_date").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("list open tasks: %w", err)
	}
	return tasks, nil
}

// ApplyCompletion persists the outcome of a completion toggle atomically:
// the updated task (with any appended history entry) and the spawned
// successor, if there is one. Nothing else is touched.
func (r *TaskRepository) ApplyCompletion(ctx context.Context, res *careplan.CompletionResult) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(&res.Updated).Error; err != nil {
			return err
		}
		if res.Spawned != nil {
			if err := tx.Create(res.Spawned).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("apply completion: %w", err)
	}
	return nil
}

// Delete removes a task and its history for the given user.
func (r *TaskRepository) Delete(ctx context.Context, userID, taskID uint) error {
	task, err := r.FindForUser(ctx, userID, taskID)
	if err != nil {
		return err
	}
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", task.ID).Delete(&model.Completion{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Task{}, task.ID).Error
	})
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}
