package bot

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"pflanzen-manager/internal/service"
)

const maxPhotoBytes = 20 << 20

// handlePhoto attaches the photo to the plant of a running creation dialog,
// or starts a fresh plant from the photo alone. With an OpenAI key the photo
// is analyzed and a care plan is generated.
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	// Telegram sends several sizes, the last one is the largest.
	fileID := msg.Photo[len(msg.Photo)-1].FileID
	now := time.Now()

	var plantID uint
	if state := b.getConversation(msg.From.ID); state != nil && state.stage == stagePlantPhoto {
		plantID = state.plantID
		b.clearConversation(msg.From.ID)
	} else {
		name := strings.TrimSpace(msg.Caption)
		if name == "" {
			name = "Unbekannte Pflanze"
		}
		plant, err := b.plantSvc.CreatePlant(ctx, user, service.PlantInput{Name: name})
		if err != nil {
			return b.sendText(msg.Chat.ID, fmt.Sprintf("Pflanze konnte nicht angelegt werden: %s", escape(err.Error())))
		}
		plantID = plant.ID
		b.logger.Info("plant created from photo",
			zap.Uint("plant_id", plant.ID),
			zap.Uint("user_id", user.ID),
		)
	}

	plant, err := b.plantSvc.GetPlant(ctx, user, plantID)
	if err != nil {
		return err
	}
	if _, err := b.plantSvc.AddPhoto(ctx, plant, fileID, msg.Caption, now); err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Foto konnte nicht gespeichert werden: %s", escape(err.Error())))
	}

	if !b.aiClient.Enabled() {
		return b.sendTextWithRemove(msg.Chat.ID, fmt.Sprintf(
			"📷 Foto für <b>%s</b> gespeichert.\nOhne OpenAI-Schlüssel kann ich die Pflanze nicht analysieren.",
			escape(normalizeName(plant.Name))))
	}

	if err := b.sendTextWithRemove(msg.Chat.ID, "🔍 Ich schaue mir das Foto an, einen Moment…"); err != nil {
		return err
	}

	dataURL, err := b.fetchPhotoDataURL(ctx, fileID)
	if err != nil {
		b.logger.Error("fetch photo", zap.Error(err))
		return b.sendText(msg.Chat.ID, "Das Foto konnte nicht geladen werden. Versuch es bitte noch einmal.")
	}

	analysis, err := b.aiClient.AnalyzePlant(ctx, dataURL)
	if err != nil {
		b.logger.Error("analyze plant", zap.Uint("plant_id", plant.ID), zap.Error(err))
		return b.sendText(msg.Chat.ID, "Die Analyse ist fehlgeschlagen. Das Foto ist gespeichert, versuch es später erneut.")
	}

	// A placeholder name gets replaced by the identified species.
	if plant.Name == "Unbekannte Pflanze" {
		if err := b.plantSvc.SetName(ctx, plant, analysis.Name, analysis.Name); err != nil {
			return err
		}
	} else if plant.Species == "" {
		if err := b.plantSvc.SetName(ctx, plant, plant.Name, analysis.Name); err != nil {
			return err
		}
	}

	tip, tasks, err := b.taskSvc.RecordAnalysis(ctx, plant, analysis.Tips, now)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Pflegeplan konnte nicht gespeichert werden: %s", escape(err.Error())))
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("🌿 <b>%s</b> erkannt!\n\n", escape(normalizeName(plant.Name))))
	builder.WriteString(formatTips(tip.Tips))
	builder.WriteString(fmt.Sprintf("\n\n📋 %d Pflegeaufgabe(n) angelegt:\n", len(tasks)))
	for _, task := range tasks {
		builder.WriteString(fmt.Sprintf("%s %s · fällig am %s\n", task.Type.Icon(), task.Type.Label(), task.DueDate.Format("02.01.2006")))
	}
	builder.WriteString("\nMit /aufgaben siehst du alles im Überblick.")

	return b.sendText(msg.Chat.ID, strings.TrimSpace(builder.String()))
}

// fetchPhotoDataURL downloads the Telegram photo and wraps it into a base64
// data URL, so the file server URL with the bot token never leaves us.
func (b *Bot) fetchPhotoDataURL(ctx context.Context, fileID string) (string, error) {
	fileURL, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return "", fmt.Errorf("resolve file url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download photo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download photo: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes))
	if err != nil {
		return "", fmt.Errorf("read photo: %w", err)
	}

	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data), nil
}
