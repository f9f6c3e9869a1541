package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"pflanzen-manager/internal/model"
)

// RoomRepository handles CRUD for rooms.
type RoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// GetOrCreate returns the user's room with the given name, creating it on
// first use. Empty names yield no room.
func (r *RoomRepository) GetOrCreate(ctx context.Context, userID uint, name string) (*model.Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	var room model.Room
	db := r.db.WithContext(ctx)
	err := db.Where("user_id = ? AND name = ?", userID, name).First(&room).Error
	switch {
	case err == nil:
		return &room, nil
	case err == gorm.ErrRecordNotFound:
		room = model.Room{UserID: userID, Name: name}
		if err := db.Create(&room).Error; err != nil {
			return nil, fmt.Errorf("create room: %w", err)
		}
		return &room, nil
	default:
		return nil, fmt.Errorf("find room: %w", err)
	}
}

func (r *RoomRepository) ListByUser(ctx context.Context, userID uint) ([]model.Room, error) {
	var rooms []model.Room
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("name").Find(&rooms).Error; err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

func (r *RoomRepository) FindByID(ctx context.Context, userID, roomID uint) (*model.Room, error) {
	var room model.Room
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, roomID).First(&room).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

// Delete removes the room row only; cascading to plants is the service's job.
func (r *RoomRepository) Delete(ctx context.Context, userID, roomID uint) error {
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, roomID).
		Delete(&model.Room{}).Error; err != nil {
		return fmt.Errorf("delete room: %w", err)
	}
	return nil
}
