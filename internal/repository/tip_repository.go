package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"pflanzen-manager/internal/model"
)

// TipRepository stores AI analysis results per plant.
type TipRepository struct {
	db *gorm.DB
}

func NewTipRepository(db *gorm.DB) *TipRepository {
	return &TipRepository{db: db}
}

func (r *TipRepository) Create(ctx context.Context, tip *model.Tip) error {
	if err := r.db.WithContext(ctx).Create(tip).Error; err != nil {
		return fmt.Errorf("create tip: %w", err)
	}
	return nil
}

func (r *TipRepository) ListByPlant(ctx context.Context, plantID uint) ([]model.Tip, error) {
	var tips []model.Tip
	if err := r.db.WithContext(ctx).Where("plant_id = ?", plantID).
		Order("created_at DESC").Find(&tips).Error; err != nil {
		return nil, fmt.Errorf("list tips: %w", err)
	}
	return tips, nil
}

// Latest returns the newest analysis for a plant, or nil if none exists.
func (r *TipRepository) Latest(ctx context.Context, plantID uint) (*model.Tip, error) {
	var tip model.Tip
	err := r.db.WithContext(ctx).Where("plant_id = ?", plantID).
		Order("created_at DESC").First(&tip).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest tip: %w", err)
	}
	return &tip, nil
}
