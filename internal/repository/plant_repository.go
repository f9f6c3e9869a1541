package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"pflanzen-manager/internal/model"
)

// PlantRepository handles CRUD for plants, including the archive ("cemetery").
type PlantRepository struct {
	db *gorm.DB
}

func NewPlantRepository(db *gorm.DB) *PlantRepository {
	return &PlantRepository{db: db}
}

func (r *PlantRepository) Create(ctx context.Context, plant *model.Plant) error {
	if err := r.db.WithContext(ctx).Create(plant).Error; err != nil {
		return fmt.Errorf("create plant: %w", err)
	}
	return nil
}

func (r *PlantRepository) Save(ctx context.Context, plant *model.Plant) error {
	if err := r.db.WithContext(ctx).Save(plant).Error; err != nil {
		return fmt.Errorf("save plant: %w", err)
	}
	return nil
}

func (r *PlantRepository) FindByID(ctx context.Context, userID, plantID uint) (*model.Plant, error) {
	var plant model.Plant
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, plantID).First(&plant).Error; err != nil {
		return nil, err
	}
	return &plant, nil
}

// ListActive returns the user's plants that are not in the cemetery.
func (r *PlantRepository) ListActive(ctx context.Context, userID uint) ([]model.Plant, error) {
	var plants []model.Plant
	if err := r.db.WithContext(ctx).Where("user_id = ? AND archived = ?", userID, false).
		Order("name").Find(&plants).Error; err != nil {
		return nil, fmt.Errorf("list plants: %w", err)
	}
	return plants, nil
}

func (r *PlantRepository) ListByRoom(ctx context.Context, userID, roomID uint) ([]model.Plant, error) {
	var plants []model.Plant
	if err := r.db.WithContext(ctx).Where("user_id = ? AND room_id = ? AND archived = ?", userID, roomID, false).
		Order("name").Find(&plants).Error; err != nil {
		return nil, fmt.Errorf("list plants by room: %w", err)
	}
	return plants, nil
}

// ListArchived returns the cemetery.
func (r *PlantRepository) ListArchived(ctx context.Context, userID uint) ([]model.Plant, error) {
	var plants []model.Plant
	if err := r.db.WithContext(ctx).Where("user_id = ? AND archived = ?", userID, true).
		Order("archived_at DESC").Find(&plants).Error; err != nil {
		return nil, fmt.Errorf("list archived plants: %w", err)
	}
	return plants, nil
}

// Archive moves a plant to the cemetery. Its tasks, tips and photos stay.
func (r *PlantRepository) Archive(ctx context.Context, plant *model.Plant, at time.Time) error {
	plant.Archived = true
	plant.ArchivedAt = &at
	if err := r.db.WithContext(ctx).Save(plant).Error; err != nil {
		return fmt.Errorf("archive plant: %w", err)
	}
	return nil
}

// Restore brings a plant back from the cemetery.
func (r *PlantRepository) Restore(ctx context.Context, plant *model.Plant) error {
	updates := map[string]interface{}{
		"archived":    false,
		"archived_at": nil,
	}
	if err := r.db.WithContext(ctx).Model(plant).Updates(updates).Error; err != nil {
		return fmt.Errorf("restore plant: %w", err)
	}
	plant.Archived = false
	plant.ArchivedAt = nil
	return nil
}

// PermanentDelete removes a plant and everything attached to it: photos,
// tips, tasks and their completion history.
func (r *PlantRepository) PermanentDelete(ctx context.Context, plantID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taskIDs []uint
		if err := tx.Model(&model.Task{}).Where("plant_id = ?", plantID).Pluck("id", &taskIDs).Error; err != nil {
			return err
		}
		if len(taskIDs) > 0 {
			if err := tx.Where("task_id IN ?", taskIDs).Delete(&model.Completion{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("plant_id = ?", plantID).Delete(&model.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("plant_id = ?", plantID).Delete(&model.Tip{}).Error; err != nil {
			return err
		}
		if err := tx.Where("plant_id = ?", plantID).Delete(&model.Photo{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Plant{}, plantID).Error
	})
	if err != nil {
		return fmt.Errorf("delete plant: %w", err)
	}
	return nil
}
