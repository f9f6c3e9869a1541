package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"pflanzen-manager/internal/model"
	"pflanzen-manager/internal/repository"
)

// upcomingWindow is how far ahead the report looks beyond already-due tasks.
const upcomingWindow = 3 * 24 * time.Hour

// ReminderService builds human-readable care summaries for notifications.
type ReminderService struct {
	plantRepo *repository.PlantRepository
	taskRepo  *repository.TaskRepository
}

func NewReminderService(plantRepo *repository.PlantRepository, taskRepo *repository.TaskRepository) *ReminderService {
	return &ReminderService{plantRepo: plantRepo, taskRepo: taskRepo}
}

// CareSummary renders the user's due and upcoming care tasks grouped by
// plant, as Telegram HTML.
func (s *ReminderService) CareSummary(ctx context.Context, user model.User, now time.Time) (string, error) {
	plants, err := s.plantRepo.ListActive(ctx, user.ID)
	if err != nil {
		return "", err
	}
	plantNames := make(map[uint]string, len(plants))
	for _, plant := range plants {
		plantNames[plant.ID] = plant.Name
	}

	tasks, err := s.taskRepo.ListOpenForUser(ctx, user.ID)
	if err != nil {
		return "", err
	}

	var due, upcoming []model.Task
	for _, task := range tasks {
		switch {
		case !task.DueDate.After(now):
			due = append(due, task)
		case task.DueDate.Sub(now) <= upcomingWindow:
			upcoming = append(upcoming, task)
		}
	}

	var builder strings.Builder
	builder.WriteString("🌿 <b>Pflanzenpflege-Bericht</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", now.Format("02.01.2006")))

	builder.WriteString("❗️ <b>Fällige Aufgaben</b>\n")
	if len(due) == 0 {
		builder.WriteString("— alle Pflanzen sind versorgt\n")
	} else {
		for _, task := range due {
			builder.WriteString(formatReportTask(task, plantNames, now))
		}
	}

	if len(upcoming) > 0 {
		builder.WriteString("\n⏳ <b>Demnächst fällig</b>\n")
		for _, task := range upcoming {
			builder.WriteString(formatReportTask(task, plantNames, now))
		}
	}

	return strings.TrimSpace(builder.String()), nil
}

// HasDueTasks reports whether the user has anything due at all, so empty
// reports can be skipped.
func (s *ReminderService) HasDueTasks(ctx context.Context, user model.User, now time.Time) (bool, error) {
	tasks, err := s.taskRepo.ListOpenForUser(ctx, user.ID)
	if err != nil {
		return false, err
	}
	for _, task := range tasks {
		if !task.DueDate.After(now) {
			return true, nil
		}
	}
	return false, nil
}

func formatReportTask(task model.Task, plantNames map[uint]string, now time.Time) string {
	var sb strings.Builder

	plantName := plantNames[task.PlantID]
	if plantName == "" {
		plantName = fmt.Sprintf("Pflanze #%d", task.PlantID)
	}

	sb.WriteString(fmt.Sprintf("%s <b>#%d</b> %s · %s",
		task.Type.Icon(), task.ID, task.Type.Label(), html.EscapeString(plantName)))

	if now.After(task.DueDate) {
		overdueDays := int(now.Sub(task.DueDate).Hours() / 24)
		if overdueDays >= 1 {
			sb.WriteString(fmt.Sprintf("\n   ⚠️ überfällig seit %d Tg.", overdueDays))
		} else {
			sb.WriteString("\n   ⏰ heute fällig")
		}
	} else {
		daysLeft := int(task.DueDate.Sub(now).Hours()/24) + 1
		sb.WriteString(fmt.Sprintf("\n   ⏰ fällig am %s · in ≈%d Tg.", task.DueDate.Format("02.01.2006"), daysLeft))
	}

	sb.WriteByte('\n')
	return sb.String()
}
