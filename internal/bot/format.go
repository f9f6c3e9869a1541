package bot

import (
	"fmt"
	"html"
	"strings"
	"time"
	"unicode"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"pflanzen-manager/internal/model"
)

const (
	btnSkip         = "⏭️ Überspringen"
	btnConfirm      = "✅ Bestätigen"
	btnCancel       = "↩️ Abbrechen"
	btnCancelDialog = "⏪ Eingabe abbrechen"
	noRoom          = "Ohne Raum"
	iconDefault     = "🟢"
	iconDue         = "⏳"
	iconOverdue     = "⚠️"
	iconRecurring   = "♻️"
	menuLabelNew    = "➕ Neue Pflanze"
	menuLabelPlants = "🌱 Pflanzen"
	menuLabelTasks  = "📋 Aufgaben"
	menuLabelHelp   = "ℹ️ Hilfe"
)

func escape(s string) string {
	return html.EscapeString(s)
}

func normalizeName(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	runes := []rune(value)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func shortName(name string, maxLen int) string {
	clean := strings.TrimSpace(strings.ReplaceAll(name, "\n", " "))
	clean = normalizeName(clean)
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

// formatTask renders one open task line for the task list.
func formatTask(task model.Task, plantName string, now time.Time) string {
	var b strings.Builder

	icon := iconDefault
	switch {
	case now.After(task.DueDate):
		icon = iconOverdue
	case task.DueDate.Sub(now) <= 48*time.Hour:
		icon = iconDue
	}
	if task.Recurring {
		icon = icon + iconRecurring
	}

	b.WriteString(fmt.Sprintf("%s <b>#%d</b> %s · %s\n", icon, task.ID, task.Type.Label(), escape(normalizeName(plantName))))
	if now.After(task.DueDate) {
		b.WriteString(fmt.Sprintf("   ⏰ Fällig seit %s — <b>überfällig</b>\n", task.DueDate.Format("02.01.2006")))
	} else {
		daysLeft := int(task.DueDate.Sub(now).Hours()/24) + 1
		b.WriteString(fmt.Sprintf("   ⏰ Fällig am %s · in ≈%d Tg.\n", task.DueDate.Format("02.01.2006"), daysLeft))
	}
	if task.Recurring && task.RecurInterval > 0 {
		b.WriteString(fmt.Sprintf("   🔄 Wiederholt sich alle %d %s\n", task.RecurInterval, unitLabel(task.RecurUnit, task.RecurInterval)))
	}
	if task.Notes != "" {
		b.WriteString(fmt.Sprintf("   📝 %s\n", escape(task.Notes)))
	}
	return b.String()
}

func unitLabel(unit model.Unit, n int) string {
	switch unit {
	case model.UnitWeeks:
		if n == 1 {
			return "Woche"
		}
		return "Wochen"
	case model.UnitMonths:
		if n == 1 {
			return "Monat"
		}
		return "Monate"
	default:
		if n == 1 {
			return "Tag"
		}
		return "Tage"
	}
}

// wateringStatus renders a short line about when the plant needs water.
func wateringStatus(last, next *time.Time, now time.Time) string {
	if last == nil {
		return "💧 Noch nie gegossen"
	}
	line := fmt.Sprintf("💧 Zuletzt gegossen: %s", last.Format("02.01.2006"))
	if next == nil {
		return line
	}
	switch {
	case now.After(*next):
		overdue := int(now.Sub(*next).Hours() / 24)
		if overdue >= 1 {
			line += fmt.Sprintf("\n⚠️ Gießen überfällig seit %d Tg.", overdue)
		} else {
			line += "\n⏰ Heute gießen"
		}
	case next.Sub(now) < 24*time.Hour:
		line += "\n⏰ Heute gießen"
	default:
		line += fmt.Sprintf("\n⏳ Nächstes Gießen: %s", next.Format("02.01.2006"))
	}
	return line
}

// formatTips renders the stored care tips of a plant.
func formatTips(tips model.CareTips) string {
	var b strings.Builder
	write := func(icon, label, value string) {
		if strings.TrimSpace(value) == "" {
			return
		}
		b.WriteString(fmt.Sprintf("%s <b>%s:</b> %s\n", icon, label, escape(value)))
	}
	write("💧", "Gießen", tips.Watering)
	write("🧪", "Düngen", tips.Fertilizing)
	write("🪴", "Umtopfen", tips.Repotting)
	write("☀️", "Standort", tips.Location)
	write("🩺", "Gesundheit", tips.Health)
	write("💨", "Besprühen", tips.Spraying)
	return strings.TrimSpace(b.String())
}

func confirmKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnConfirm),
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelNew),
			tgbotapi.NewKeyboardButton(menuLabelPlants),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelTasks),
			tgbotapi.NewKeyboardButton(menuLabelHelp),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = false
	return kb
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func skipKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSkip),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

// roomKeyboard offers the user's existing rooms plus skip.
func roomKeyboard(rooms []model.Room) tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	var row []tgbotapi.KeyboardButton
	for _, room := range rooms {
		row = append(row, tgbotapi.NewKeyboardButton(room.Name))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(btnSkip),
		tgbotapi.NewKeyboardButton(btnCancelDialog),
	))
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func isSkipInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == "-" || value == strings.ToLower(btnSkip) || value == "überspringen" || value == "skip"
}

func isConfirmInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnConfirm) || value == "bestätigen" || value == "ja"
}

func isCancelInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnCancel) || value == "abbrechen" || value == "nein"
}

func isCancelDialogInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnCancelDialog) || value == "eingabe abbrechen" || value == "abbruch"
}
