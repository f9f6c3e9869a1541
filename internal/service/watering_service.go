package service

import (
	"context"
	"sort"
	"time"

	"pflanzen-manager/internal/model"
	"pflanzen-manager/internal/repository"
)

// defaultWateringFrequencyDays is assumed when a plant has no recurring
// watering task to derive a cadence from.
const defaultWateringFrequencyDays = 7

// WateringEntry is one row of a plant's watering history, assembled from the
// completion entries across its watering-task lineage.
type WateringEntry struct {
	TaskID uint
	Date   time.Time
	Notes  string
}

// WateringService derives watering state (history, cadence, next date) from a
// plant's tasks and records manual watering entries.
type WateringService struct {
	taskRepo *repository.TaskRepository
}

func NewWateringService(taskRepo *repository.TaskRepository) *WateringService {
	return &WateringService{taskRepo: taskRepo}
}

// History returns all watering completions of a plant, newest first.
func (s *WateringService) History(ctx context.Context, plantID uint) ([]WateringEntry, error) {
	tasks, err := s.taskRepo.ListByPlant(ctx, plantID)
	if err != nil {
		return nil, err
	}

	var entries []WateringEntry
	for _, task := range tasks {
		if task.Type != model.TaskWatering {
			continue
		}
		for _, completion := range task.CompletionHistory {
			entries = append(entries, WateringEntry{
				TaskID: task.ID,
				Date:   completion.Date,
				Notes:  completion.Notes,
			})
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Date.After(entries[j].Date)
	})
	return entries, nil
}

// LogWatering records a manual "watered now" entry. It is stored as an
// already-completed one-shot watering task so the history derivation and the
// recurring schedule stay untouched.
func (s *WateringService) LogWatering(ctx context.Context, plantID uint, at time.Time, notes string) error {
	task := model.Task{
		PlantID:   plantID,
		Type:      model.TaskWatering,
		DueDate:   at,
		Done:      true,
		Notes:     notes,
		CreatedAt: at,
		CompletionHistory: []model.Completion{
			{Date: at, Notes: notes},
		},
	}
	return s.taskRepo.Create(ctx, &task)
}

// LastWatered returns the date of the most recent watering completion, or nil
// if the plant was never watered.
func (s *WateringService) LastWatered(ctx context.Context, plantID uint) (*time.Time, error) {
	entries, err := s.History(ctx, plantID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0].Date, nil
}

// FrequencyDays derives the watering cadence in days from the plant's
// recurring watering task, falling back to a week.
func FrequencyDays(tasks []model.Task) int {
	for _, task := range tasks {
		if task.Type != model.TaskWatering || !task.Recurring || task.RecurInterval < 1 {
			continue
		}
		switch task.RecurUnit {
		case model.UnitWeeks:
			return task.RecurInterval * 7
		case model.UnitMonths:
			return task.RecurInterval * 30
		default:
			return task.RecurInterval
		}
	}
	return defaultWateringFrequencyDays
}

// NextWatering estimates when the plant needs water next: the last completion
// plus the derived cadence. Nil when there is no watering history yet.
func (s *WateringService) NextWatering(ctx context.Context, plantID uint) (*time.Time, error) {
	tasks, err := s.taskRepo.ListByPlant(ctx, plantID)
	if err != nil {
		return nil, err
	}

	var last *time.Time
	for _, task := range tasks {
		if task.Type != model.TaskWatering {
			continue
		}
		for _, completion := range task.CompletionHistory {
			if last == nil || completion.Date.After(*last) {
				date := completion.Date
				last = &date
			}
		}
	}
	if last == nil {
		return nil, nil
	}

	next := last.Add(time.Duration(FrequencyDays(tasks)) * 24 * time.Hour)
	return &next, nil
}
