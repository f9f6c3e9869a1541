package model

import "time"

// TaskType classifies care tasks. The set is closed; the seasonal policy
// switches exhaustively over it, so a new type must declare its behavior there.
type TaskType string

const (
	TaskWatering    TaskType = "watering"
	TaskFertilizing TaskType = "fertilizing"
	TaskRepotting   TaskType = "repotting"
	TaskCleaning    TaskType = "cleaning"
	TaskPhoto       TaskType = "photo"
)

// Label returns the German display name of the task type.
func (t TaskType) Label() string {
	switch t {
	case TaskWatering:
		return "Gießen"
	case TaskFertilizing:
		return "Düngen"
	case TaskRepotting:
		return "Umtopfen"
	case TaskCleaning:
		return "Reinigen"
	case TaskPhoto:
		return "Foto"
	default:
		return string(t)
	}
}

// Icon returns the emoji shown next to the task type.
func (t TaskType) Icon() string {
	switch t {
	case TaskWatering:
		return "💧"
	case TaskFertilizing:
		return "🧪"
	case TaskRepotting:
		return "🪴"
	case TaskCleaning:
		return "🧹"
	case TaskPhoto:
		return "📷"
	default:
		return "🌱"
	}
}

// Unit of a recurrence interval.
type Unit string

const (
	UnitDays   Unit = "days"
	UnitWeeks  Unit = "weeks"
	UnitMonths Unit = "months"
)

// Task is a single care obligation instance. Recurring care is modeled as a
// chain of one-shot instances: completing an instance spawns the next one,
// linked back through ParentTaskID. The chain keeps per-instance completion
// history and can be walked backwards for the full lineage.
type Task struct {
	ID      uint     `gorm:"primaryKey"`
	PlantID uint     `gorm:"index"`
	Type    TaskType `gorm:"index"`
	DueDate time.Time
	Done    bool `gorm:"default:false"`
	Notes   string

	Recurring bool `gorm:"default:false"`
	// Recurrence pattern; meaningful only while Recurring is set. The stored
	// base interval is never mutated by seasonal adjustment.
	RecurInterval int
	RecurUnit     Unit
	RecurSeasonal bool

	ParentTaskID *uint `gorm:"index"`

	CreatedAt time.Time
	UpdatedAt time.Time

	CompletionHistory []Completion `gorm:"foreignKey:TaskID"`
}

// Completion is one history entry of a task being marked done. Entries are
// append-only and never reordered.
type Completion struct {
	ID     uint `gorm:"primaryKey"`
	TaskID uint `gorm:"index"`
	Date   time.Time
	Notes  string
}
