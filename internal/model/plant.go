package model

import "time"

// Plant is a tracked houseplant. Plants are archived ("cemetery") instead of
// deleted, so their photo and care history survives until a permanent delete.
type Plant struct {
	ID         uint  `gorm:"primaryKey"`
	UserID     uint  `gorm:"index"`
	RoomID     *uint `gorm:"index"`
	Name       string
	Species    string
	Notes      string
	Archived   bool `gorm:"default:false"`
	ArchivedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
