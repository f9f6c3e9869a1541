package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"pflanzen-manager/internal/model"
)

// PhotoRepository stores photo references per plant.
type PhotoRepository struct {
	db *gorm.DB
}

func NewPhotoRepository(db *gorm.DB) *PhotoRepository {
	return &PhotoRepository{db: db}
}

func (r *PhotoRepository) Create(ctx context.Context, photo *model.Photo) error {
	if err := r.db.WithContext(ctx).Create(photo).Error; err != nil {
		return fmt.Errorf("create photo: %w", err)
	}
	return nil
}

func (r *PhotoRepository) ListByPlant(ctx context.Context, plantID uint) ([]model.Photo, error) {
	var photos []model.Photo
	if err := r.db.WithContext(ctx).Where("plant_id = ?", plantID).
		Order("taken_at DESC").Find(&photos).Error; err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}
	return photos, nil
}

// Latest returns the newest photo of a plant, or nil if none exists.
func (r *PhotoRepository) Latest(ctx context.Context, plantID uint) (*model.Photo, error) {
	var photo model.Photo
	err := r.db.WithContext(ctx).Where("plant_id = ?", plantID).
		Order("taken_at DESC").First(&photo).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest photo: %w", err)
	}
	return &photo, nil
}
