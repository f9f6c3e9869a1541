package model

import "time"

// Room groups plants by location (living room, balcony, office, etc.).
type Room struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index:idx_user_room_name,unique"`
	Name      string `gorm:"index:idx_user_room_name,unique"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Plants    []Plant `gorm:"foreignKey:RoomID"`
}
