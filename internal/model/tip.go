package model

import "time"

// CareTips is the record produced by one AI analysis: six free-text fields in
// German. The scheduling code treats every field as unstructured natural
// language; this struct is the versioned boundary towards the AI service.
type CareTips struct {
	Watering    string
	Fertilizing string
	Repotting   string
	Location    string
	Health      string
	Spraying    string
}

// Tip is one stored analysis result for a plant.
type Tip struct {
	ID        uint     `gorm:"primaryKey"`
	PlantID   uint     `gorm:"index"`
	Tips      CareTips `gorm:"embedded;embeddedPrefix:tip_"`
	CreatedAt time.Time
}
