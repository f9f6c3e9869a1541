package model

import "time"

// Photo records one photo of a plant. Only the Telegram file reference is
// stored; image bytes stay with Telegram.
type Photo struct {
	ID             uint `gorm:"primaryKey"`
	PlantID        uint `gorm:"index"`
	TelegramFileID string
	Caption        string
	TakenAt        time.Time
	CreatedAt      time.Time
}
