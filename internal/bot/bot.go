package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"pflanzen-manager/internal/ai"
	"pflanzen-manager/internal/model"
	"pflanzen-manager/internal/repository"
	"pflanzen-manager/internal/service"
)

type conversationStage int

const (
	stageNone conversationStage = iota
	stagePlantName
	stagePlantRoom
	stagePlantNotes
	stagePlantPhoto
)

const (
	cbCompletePrefix = "erledigt:"
	cbPlantPrefix    = "pflanze:"
	cbWaterPrefix    = "giessen:"
	cbBuryPrefix     = "friedhof:"
	cbRestorePrefix  = "zurueck:"
	cbDeletePrefix   = "loeschen:"
	cbDropRoomPrefix = "raumweg:"
)

type conversationState struct {
	stage   conversationStage
	input   service.PlantInput
	plantID uint
}

type confirmationAction int

const (
	actionDeletePlant confirmationAction = iota
	actionDeleteRoom
)

type confirmationRequest struct {
	action confirmationAction
	id     uint
}

// Bot aggregates the Telegram API with the plant-care services.
type Bot struct {
	api           *tgbotapi.BotAPI
	userRepo      *repository.UserRepository
	plantSvc      *service.PlantService
	taskSvc       *service.TaskService
	wateringSvc   *service.WateringService
	reminderSvc   *service.ReminderService
	aiClient      *ai.Client
	logger        *zap.Logger
	conversations map[int64]*conversationState
	confirmations map[int64]confirmationRequest
	mu            sync.Mutex
}

func New(token string, userRepo *repository.UserRepository, plantSvc *service.PlantService, taskSvc *service.TaskService, wateringSvc *service.WateringService, reminderSvc *service.ReminderService, aiClient *ai.Client, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	logger.Info("bot authorized", zap.String("account", api.Self.UserName))

	return &Bot{
		api:           api,
		userRepo:      userRepo,
		plantSvc:      plantSvc,
		taskSvc:       taskSvc,
		wateringSvc:   wateringSvc,
		reminderSvc:   reminderSvc,
		aiClient:      aiClient,
		logger:        logger,
		conversations: make(map[int64]*conversationState),
		confirmations: make(map[int64]confirmationRequest),
	}, nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	b.logger.Info("start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				b.logger.Error("handle callback", zap.Error(err))
			}
		case update.Message != nil:
			if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				b.logger.Error("handle message", zap.Error(err))
			}
		}
	}

	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if !msg.IsCommand() && isCancelDialogInput(msg.Text) {
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Eingabe abgebrochen. Du kannst jederzeit neu starten.")
	}

	if !msg.IsCommand() {
		if handled, err := b.handleMenuAlias(ctx, msg); handled {
			return err
		}
	}

	if msg.IsCommand() {
		b.logger.Info("command",
			zap.Int64("user", msg.From.ID),
			zap.String("command", msg.Command()),
		)
		return b.handleCommand(ctx, msg)
	}

	if len(msg.Photo) > 0 {
		return b.handlePhoto(ctx, msg)
	}

	if pending, ok := b.getConfirmation(msg.From.ID); ok {
		return b.handleConfirmationResponse(ctx, msg, pending)
	}

	if b.hasConversation(msg.From.ID) {
		return b.handleConversation(ctx, msg)
	}

	return b.sendText(msg.Chat.ID, "Das habe ich nicht verstanden. Schick mir ein Pflanzenfoto, nutze /neuepflanze oder /hilfe für alle Befehle.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	case "hilfe", "help":
		return b.handleHelp(msg)
	case "neuepflanze":
		return b.startNewPlantConversation(ctx, msg)
	case "pflanzen":
		return b.handleListPlants(ctx, msg)
	case "pflanze":
		return b.handleShowPlant(ctx, msg)
	case "aufgaben":
		return b.handleListTasks(ctx, msg)
	case "erledigt":
		return b.handleComplete(ctx, msg)
	case "giessen":
		return b.handleLogWatering(ctx, msg)
	case "raeume":
		return b.handleListRooms(ctx, msg)
	case "friedhof":
		return b.handleCemetery(ctx, msg)
	case "bericht":
		return b.handleReport(ctx, msg)
	case "abbrechen":
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Eingabe abgebrochen.")
	default:
		return b.sendText(msg.Chat.ID, "Diesen Befehl kenne ich nicht. Schau in /hilfe.")
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.ensureUser(ctx, msg.From); err != nil {
		return err
	}

	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "Pflanzenfreund"
	}

	text := fmt.Sprintf(
		"👋 Hallo, %s!\n<b>Ich bin dein Pflanzen-Manager: ich erkenne deine Pflanzen und erinnere dich ans Gießen, Düngen und Umtopfen.</b>\n\n"+
			"Schick mir einfach ein Foto einer Pflanze, dann lege ich sie an und erstelle einen Pflegeplan.\n\n"+
			"Befehle:\n"+
			"• /neuepflanze — Pflanze Schritt für Schritt anlegen\n"+
			"• /pflanzen — deine Pflanzen anzeigen\n"+
			"• /aufgaben — offene Pflegeaufgaben\n"+
			"• /erledigt &lt;id&gt; — Aufgabe abhaken\n"+
			"• /giessen &lt;id&gt; — Gießen einer Pflanze protokollieren\n"+
			"• /friedhof — archivierte Pflanzen\n"+
			"• /bericht — Pflegebericht sofort erhalten\n"+
			"• /hilfe — alle Befehle",
		escape(name),
	)

	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	text := "ℹ️ <b>Hilfe</b>\n" +
		"• Foto senden — Pflanze erkennen und Pflegeplan erstellen\n" +
		"• /neuepflanze — Pflanze Schritt für Schritt anlegen\n" +
		"• /pflanzen — deine Pflanzen mit Details\n" +
		"• /pflanze &lt;id&gt; — Steckbrief einer Pflanze\n" +
		"• /aufgaben — offene Aufgaben abhaken\n" +
		"• /erledigt &lt;id&gt; — Aufgabe per Nummer abhaken (erneut: rückgängig)\n" +
		"• /giessen &lt;id&gt; — Gießen außer der Reihe protokollieren\n" +
		"• /raeume — deine Räume\n" +
		"• /friedhof — archivierte Pflanzen ansehen und zurückholen\n" +
		"• /bericht — Pflegebericht sofort erhalten\n" +
		"• /abbrechen — aktuelle Eingabe abbrechen"
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleReport(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	text, err := b.reminderSvc.CareSummary(ctx, *user, time.Now())
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Bericht konnte nicht erstellt werden: %s", escape(err.Error())))
	}
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) startNewPlantConversation(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.ensureUser(ctx, msg.From); err != nil {
		return err
	}
	b.setConversation(msg.From.ID, &conversationState{stage: stagePlantName})
	return b.sendWithReplyMarkup(msg.Chat.ID, "🆕 Neue Pflanze.\n<b>Schritt 1:</b> Wie heißt sie?", cancelKeyboard())
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message) error {
	state := b.getConversation(msg.From.ID)
	if state == nil {
		return nil
	}

	text := strings.TrimSpace(msg.Text)
	switch state.stage {
	case stagePlantName:
		if text == "" {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Der Name darf nicht leer sein. Wie heißt die Pflanze?", cancelKeyboard())
		}
		state.input.Name = text
		state.stage = stagePlantRoom
		user, err := b.ensureUser(ctx, msg.From)
		if err != nil {
			return err
		}
		rooms, _ := b.plantSvc.ListRooms(ctx, user)
		return b.sendWithReplyMarkup(msg.Chat.ID, "🚪 In welchem Raum steht sie? (oder «Überspringen»)", roomKeyboard(rooms))
	case stagePlantRoom:
		if !isSkipInput(text) {
			state.input.Room = text
		}
		state.stage = stagePlantNotes
		return b.sendWithReplyMarkup(msg.Chat.ID, "✏️ Noch eine Notiz zur Pflanze? (oder «Überspringen»)", skipKeyboard())
	case stagePlantNotes:
		if !isSkipInput(text) {
			state.input.Notes = text
		}
		user, err := b.ensureUser(ctx, msg.From)
		if err != nil {
			return err
		}
		plant, err := b.plantSvc.CreatePlant(ctx, user, state.input)
		if err != nil {
			b.clearConversation(msg.From.ID)
			return b.sendText(msg.Chat.ID, fmt.Sprintf("Pflanze konnte nicht gespeichert werden: %s", escape(err.Error())))
		}
		b.logger.Info("plant created",
			zap.Uint("plant_id", plant.ID),
			zap.Uint("user_id", user.ID),
		)
		state.stage = stagePlantPhoto
		state.plantID = plant.ID
		return b.sendWithReplyMarkup(msg.Chat.ID,
			fmt.Sprintf("✅ <b>%s</b> ist angelegt (#%d).\n📸 Schick mir jetzt ein Foto, dann erkenne ich die Art und erstelle den Pflegeplan. (oder «Überspringen»)",
				escape(normalizeName(plant.Name)), plant.ID),
			skipKeyboard())
	case stagePlantPhoto:
		if isSkipInput(text) {
			b.clearConversation(msg.From.ID)
			return b.sendTextWithRemove(msg.Chat.ID, "Alles klar, kein Foto. Du kannst später jederzeit eines schicken.")
		}
		return b.sendWithReplyMarkup(msg.Chat.ID, "Ich warte auf ein Foto der Pflanze (oder «Überspringen»).", skipKeyboard())
	default:
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Dialog zurückgesetzt. Starte neu mit /neuepflanze.")
	}
}

func (b *Bot) handleListPlants(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	return b.sendPlantList(ctx, msg.Chat.ID, user)
}

func (b *Bot) sendPlantList(ctx context.Context, chatID int64, user *model.User) error {
	plants, err := b.plantSvc.ListPlants(ctx, user)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Pflanzen konnten nicht geladen werden: %s", escape(err.Error())))
	}
	if len(plants) == 0 {
		return b.sendText(chatID, "Du hast noch keine Pflanzen. Schick mir ein Foto oder nutze /neuepflanze.")
	}

	rooms, _ := b.plantSvc.ListRooms(ctx, user)
	roomNames := make(map[uint]string, len(rooms))
	for _, room := range rooms {
		roomNames[room.ID] = room.Name
	}

	var builder strings.Builder
	builder.WriteString("🌱 <b>Deine Pflanzen</b>\nTippe auf eine Pflanze für den Steckbrief.\n\n")

	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, plant := range plants {
		room := noRoom
		if plant.RoomID != nil {
			if name, ok := roomNames[*plant.RoomID]; ok {
				room = name
			}
		}
		builder.WriteString(fmt.Sprintf("🌿 <b>#%d</b> %s · %s\n", plant.ID, escape(normalizeName(plant.Name)), escape(room)))
		if plant.Species != "" {
			builder.WriteString(fmt.Sprintf("   🔖 %s\n", escape(plant.Species)))
		}
		buttons = append(buttons, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("🌿 #%d · %s", plant.ID, shortName(plant.Name, 24)),
				fmt.Sprintf("%s%d", cbPlantPrefix, plant.ID)),
		})
	}

	reply := tgbotapi.NewMessage(chatID, strings.TrimSpace(builder.String()))
	reply.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	reply.ParseMode = tgbotapi.ModeHTML
	_, err = b.api.Send(reply)
	return err
}

func (b *Bot) handleShowPlant(ctx context.Context, msg *tgbotapi.Message) error {
	plantID, err := parseIDArgument(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Gib die Nummer der Pflanze an: /pflanze 3")
	}
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	return b.sendPlantCard(ctx, msg.Chat.ID, user, plantID)
}

// sendPlantCard renders one plant with tips, watering state and actions.
func (b *Bot) sendPlantCard(ctx context.Context, chatID int64, user *model.User, plantID uint) error {
	plant, err := b.plantSvc.GetPlant(ctx, user, plantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return b.sendText(chatID, "Pflanze nicht gefunden.")
		}
		return err
	}

	now := time.Now()
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("🌿 <b>%s</b> (#%d)\n", escape(normalizeName(plant.Name)), plant.ID))
	if plant.Species != "" {
		builder.WriteString(fmt.Sprintf("🔖 %s\n", escape(plant.Species)))
	}
	if plant.Notes != "" {
		builder.WriteString(fmt.Sprintf("📝 %s\n", escape(plant.Notes)))
	}

	last, _ := b.wateringSvc.LastWatered(ctx, plant.ID)
	next, _ := b.wateringSvc.NextWatering(ctx, plant.ID)
	builder.WriteString("\n")
	builder.WriteString(wateringStatus(last, next, now))
	builder.WriteString("\n")

	if tip, err := b.taskSvc.LatestTip(ctx, plant.ID); err == nil && tip != nil {
		builder.WriteString("\n🧾 <b>Pflegehinweise</b>\n")
		builder.WriteString(formatTips(tip.Tips))
		builder.WriteString("\n")
	}

	if photos, err := b.plantSvc.ListPhotos(ctx, plant.ID); err == nil && len(photos) > 0 {
		builder.WriteString(fmt.Sprintf("\n📷 %d Foto(s), zuletzt vom %s\n", len(photos), photos[0].TakenAt.Format("02.01.2006")))
	}

	buttons := [][]tgbotapi.InlineKeyboardButton{
		{
			tgbotapi.NewInlineKeyboardButtonData("💧 Jetzt gegossen", fmt.Sprintf("%s%d", cbWaterPrefix, plant.ID)),
			tgbotapi.NewInlineKeyboardButtonData("🪦 In den Friedhof", fmt.Sprintf("%s%d", cbBuryPrefix, plant.ID)),
		},
	}

	reply := tgbotapi.NewMessage(chatID, strings.TrimSpace(builder.String()))
	reply.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	reply.ParseMode = tgbotapi.ModeHTML
	_, err = b.api.Send(reply)
	return err
}

func (b *Bot) handleListTasks(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	return b.sendTaskList(ctx, msg.Chat.ID, user)
}

func (b *Bot) sendTaskList(ctx context.Context, chatID int64, user *model.User) error {
	tasks, err := b.taskSvc.ListOpen(ctx, user)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Aufgaben konnten nicht geladen werden: %s", escape(err.Error())))
	}
	if len(tasks) == 0 {
		return b.sendText(chatID, "Keine offenen Aufgaben. Deine Pflanzen sind versorgt. 🌿")
	}

	plants, _ := b.plantSvc.ListPlants(ctx, user)
	plantNames := make(map[uint]string, len(plants))
	for _, plant := range plants {
		plantNames[plant.ID] = plant.Name
	}

	now := time.Now()
	var builder strings.Builder
	builder.WriteString("📋 <b>Offene Pflegeaufgaben</b>\nTippe auf eine Aufgabe, um sie abzuhaken.\n\n")

	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, task := range tasks {
		plantName := plantNames[task.PlantID]
		if plantName == "" {
			plantName = fmt.Sprintf("Pflanze #%d", task.PlantID)
		}
		builder.WriteString(formatTask(task, plantName, now))
		builder.WriteByte('\n')
		buttons = append(buttons, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("✅ #%d · %s %s", task.ID, task.Type.Label(), shortName(plantName, 16)),
				fmt.Sprintf("%s%d", cbCompletePrefix, task.ID)),
		})
	}

	reply := tgbotapi.NewMessage(chatID, strings.TrimSpace(builder.String()))
	reply.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	reply.ParseMode = tgbotapi.ModeHTML
	_, err = b.api.Send(reply)
	return err
}

func (b *Bot) handleComplete(ctx context.Context, msg *tgbotapi.Message) error {
	taskID, err := parseIDArgument(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Gib die Nummer der Aufgabe an: /erledigt 12")
	}
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	return b.completeTask(ctx, msg.Chat.ID, user, taskID)
}

func (b *Bot) completeTask(ctx context.Context, chatID int64, user *model.User, taskID uint) error {
	res, err := b.taskSvc.Complete(ctx, user, taskID, time.Now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return b.sendText(chatID, "Aufgabe nicht gefunden.")
		}
		return b.sendText(chatID, fmt.Sprintf("Fehler: %s", escape(err.Error())))
	}

	if !res.Updated.Done {
		return b.sendText(chatID, fmt.Sprintf("↩️ Aufgabe #%d (%s) ist wieder offen.", res.Updated.ID, res.Updated.Type.Label()))
	}

	info := fmt.Sprintf("✅ Aufgabe #%d (%s) erledigt.", res.Updated.ID, res.Updated.Type.Label())
	if res.Spawned != nil {
		info += fmt.Sprintf("\n♻️ Nächstes Mal fällig am %s (#%d).", res.Spawned.DueDate.Format("02.01.2006"), res.Spawned.ID)
	}
	return b.sendText(chatID, info)
}

func (b *Bot) handleLogWatering(ctx context.Context, msg *tgbotapi.Message) error {
	plantID, err := parseIDArgument(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Gib die Nummer der Pflanze an: /giessen 3")
	}
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	return b.logWatering(ctx, msg.Chat.ID, user, plantID)
}

func (b *Bot) logWatering(ctx context.Context, chatID int64, user *model.User, plantID uint) error {
	plant, err := b.plantSvc.GetPlant(ctx, user, plantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return b.sendText(chatID, "Pflanze nicht gefunden.")
		}
		return err
	}
	if err := b.wateringSvc.LogWatering(ctx, plant.ID, time.Now(), ""); err != nil {
		return b.sendText(chatID, fmt.Sprintf("Gießen konnte nicht gespeichert werden: %s", escape(err.Error())))
	}
	return b.sendText(chatID, fmt.Sprintf("💧 Gießen von <b>%s</b> notiert.", escape(normalizeName(plant.Name))))
}

func (b *Bot) handleListRooms(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	rooms, err := b.plantSvc.ListRooms(ctx, user)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Räume konnten nicht geladen werden: %s", escape(err.Error())))
	}
	if len(rooms) == 0 {
		return b.sendText(msg.Chat.ID, "Noch keine Räume. Räume entstehen automatisch beim Anlegen einer Pflanze.")
	}

	var builder strings.Builder
	builder.WriteString("🚪 <b>Deine Räume</b>\n")
	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, room := range rooms {
		plants, err := b.plantSvc.ListByRoom(ctx, user, room.ID)
		if err != nil {
			return err
		}
		builder.WriteString(fmt.Sprintf("• %s — %d Pflanze(n)\n", escape(room.Name), len(plants)))
		buttons = append(buttons, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("🗑 %s auflösen", shortName(room.Name, 20)),
				fmt.Sprintf("%s%d", cbDropRoomPrefix, room.ID)),
		})
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, strings.TrimSpace(builder.String()))
	reply.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	reply.ParseMode = tgbotapi.ModeHTML
	_, err = b.api.Send(reply)
	return err
}

func (b *Bot) handleCemetery(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	plants, err := b.plantSvc.ListCemetery(ctx, user)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Friedhof konnte nicht geladen werden: %s", escape(err.Error())))
	}
	if len(plants) == 0 {
		return b.sendText(msg.Chat.ID, "Der Friedhof ist leer. 🌱")
	}

	var builder strings.Builder
	builder.WriteString("🪦 <b>Pflanzen-Friedhof</b>\nZurückholen oder endgültig löschen:\n\n")

	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, plant := range plants {
		builder.WriteString(fmt.Sprintf("🥀 <b>#%d</b> %s", plant.ID, escape(normalizeName(plant.Name))))
		if plant.ArchivedAt != nil {
			builder.WriteString(fmt.Sprintf(" · seit %s", plant.ArchivedAt.Format("02.01.2006")))
		}
		builder.WriteByte('\n')
		buttons = append(buttons, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("↩️ #%d zurückholen", plant.ID),
				fmt.Sprintf("%s%d", cbRestorePrefix, plant.ID)),
			tgbotapi.NewInlineKeyboardButtonData("🗑 Löschen",
				fmt.Sprintf("%s%d", cbDeletePrefix, plant.ID)),
		})
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, strings.TrimSpace(builder.String()))
	reply.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	reply.ParseMode = tgbotapi.ModeHTML
	_, err = b.api.Send(reply)
	return err
}

func (b *Bot) handleConfirmationResponse(ctx context.Context, msg *tgbotapi.Message, req confirmationRequest) error {
	text := strings.TrimSpace(msg.Text)
	switch {
	case isConfirmInput(text):
		b.clearConfirmation(msg.From.ID)
		if req.action == actionDeleteRoom {
			return b.deleteRoomForever(ctx, msg.Chat.ID, msg.From, req.id)
		}
		return b.deletePlantForever(ctx, msg.Chat.ID, msg.From, req.id)
	case isCancelInput(text):
		b.clearConfirmation(msg.From.ID)
		return b.sendTextWithRemove(msg.Chat.ID, "Löschen abgebrochen.")
	default:
		return b.sendWithReplyMarkup(msg.Chat.ID, "Bestätige oder brich das endgültige Löschen ab.", confirmKeyboard())
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil {
		return nil
	}

	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.logger.Warn("callback ack", zap.Error(err))
	}

	user, err := b.ensureUser(ctx, cb.From)
	if err != nil {
		return err
	}
	chatID := cb.Message.Chat.ID
	data := cb.Data

	switch {
	case strings.HasPrefix(data, cbCompletePrefix):
		taskID, err := parseCallbackID(data, cbCompletePrefix)
		if err != nil {
			return nil
		}
		if err := b.completeTask(ctx, chatID, user, taskID); err != nil {
			return err
		}
		return b.sendTaskList(ctx, chatID, user)
	case strings.HasPrefix(data, cbPlantPrefix):
		plantID, err := parseCallbackID(data, cbPlantPrefix)
		if err != nil {
			return nil
		}
		return b.sendPlantCard(ctx, chatID, user, plantID)
	case strings.HasPrefix(data, cbWaterPrefix):
		plantID, err := parseCallbackID(data, cbWaterPrefix)
		if err != nil {
			return nil
		}
		return b.logWatering(ctx, chatID, user, plantID)
	case strings.HasPrefix(data, cbBuryPrefix):
		plantID, err := parseCallbackID(data, cbBuryPrefix)
		if err != nil {
			return nil
		}
		plant, err := b.plantSvc.Archive(ctx, user, plantID, time.Now())
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return b.sendText(chatID, "Pflanze nicht gefunden.")
			}
			return err
		}
		b.logger.Info("plant archived", zap.Uint("plant_id", plant.ID), zap.Uint("user_id", user.ID))
		return b.sendText(chatID, fmt.Sprintf("🪦 <b>%s</b> ist jetzt im Friedhof. Mit /friedhof kannst du sie zurückholen.", escape(normalizeName(plant.Name))))
	case strings.HasPrefix(data, cbRestorePrefix):
		plantID, err := parseCallbackID(data, cbRestorePrefix)
		if err != nil {
			return nil
		}
		plant, err := b.plantSvc.Restore(ctx, user, plantID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return b.sendText(chatID, "Pflanze nicht gefunden.")
			}
			return err
		}
		return b.sendText(chatID, fmt.Sprintf("🌱 <b>%s</b> ist zurück aus dem Friedhof.", escape(normalizeName(plant.Name))))
	case strings.HasPrefix(data, cbDeletePrefix):
		plantID, err := parseCallbackID(data, cbDeletePrefix)
		if err != nil {
			return nil
		}
		return b.askDeleteConfirmation(ctx, chatID, user, cb.From.ID, plantID)
	case strings.HasPrefix(data, cbDropRoomPrefix):
		roomID, err := parseCallbackID(data, cbDropRoomPrefix)
		if err != nil {
			return nil
		}
		return b.askDropRoomConfirmation(ctx, chatID, user, cb.From.ID, roomID)
	default:
		return nil
	}
}

func (b *Bot) askDeleteConfirmation(ctx context.Context, chatID int64, user *model.User, telegramID int64, plantID uint) error {
	plant, err := b.plantSvc.GetPlant(ctx, user, plantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return b.sendText(chatID, "Pflanze nicht gefunden.")
		}
		return err
	}

	text := fmt.Sprintf("Pflanze «%s» (#%d) samt Fotos, Aufgaben und Verlauf <b>endgültig</b> löschen?", escape(normalizeName(plant.Name)), plant.ID)
	b.setConfirmation(telegramID, confirmationRequest{action: actionDeletePlant, id: plant.ID})
	return b.sendWithReplyMarkup(chatID, text, confirmKeyboard())
}

func (b *Bot) askDropRoomConfirmation(ctx context.Context, chatID int64, user *model.User, telegramID int64, roomID uint) error {
	room, err := b.plantSvc.GetRoom(ctx, user, roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return b.sendText(chatID, "Raum nicht gefunden.")
		}
		return err
	}

	text := fmt.Sprintf("Raum «%s» auflösen? Alle Pflanzen darin werden <b>endgültig</b> gelöscht, auch die im Friedhof.", escape(room.Name))
	b.setConfirmation(telegramID, confirmationRequest{action: actionDeleteRoom, id: room.ID})
	return b.sendWithReplyMarkup(chatID, text, confirmKeyboard())
}

func (b *Bot) deleteRoomForever(ctx context.Context, chatID int64, from *tgbotapi.User, roomID uint) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}

	room, err := b.plantSvc.GetRoom(ctx, user, roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return b.sendTextWithRemove(chatID, "Raum nicht gefunden oder schon gelöscht.")
		}
		return b.sendTextWithRemove(chatID, fmt.Sprintf("Fehler: %s", escape(err.Error())))
	}

	if err := b.plantSvc.DeleteRoom(ctx, user, roomID); err != nil {
		return b.sendTextWithRemove(chatID, fmt.Sprintf("Löschen fehlgeschlagen: %s", escape(err.Error())))
	}

	b.logger.Info("room deleted", zap.Uint("room_id", room.ID), zap.Uint("user_id", user.ID))
	return b.sendTextWithRemove(chatID, fmt.Sprintf("🗑 Raum «%s» wurde aufgelöst.", escape(room.Name)))
}

func (b *Bot) deletePlantForever(ctx context.Context, chatID int64, from *tgbotapi.User, plantID uint) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}

	plant, err := b.plantSvc.GetPlant(ctx, user, plantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return b.sendTextWithRemove(chatID, "Pflanze nicht gefunden oder schon gelöscht.")
		}
		return b.sendTextWithRemove(chatID, fmt.Sprintf("Fehler: %s", escape(err.Error())))
	}

	if err := b.plantSvc.DeleteForever(ctx, user, plantID); err != nil {
		return b.sendTextWithRemove(chatID, fmt.Sprintf("Löschen fehlgeschlagen: %s", escape(err.Error())))
	}

	b.logger.Info("plant deleted", zap.Uint("plant_id", plant.ID), zap.Uint("user_id", user.ID))
	return b.sendTextWithRemove(chatID, fmt.Sprintf("🗑 Pflanze «%s» wurde endgültig gelöscht.", escape(normalizeName(plant.Name))))
}

// SendCareReports sends the care summary to every user with due tasks.
func (b *Bot) SendCareReports(ctx context.Context) error {
	users, err := b.userRepo.ListAll(ctx)
	if err != nil {
		return err
	}
	now := time.Now()
	for _, user := range users {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		due, err := b.reminderSvc.HasDueTasks(ctx, user, now)
		if err != nil {
			b.logger.Error("check due tasks", zap.Int64("telegram_id", user.TelegramID), zap.Error(err))
			continue
		}
		if !due {
			continue
		}
		text, err := b.reminderSvc.CareSummary(ctx, user, now)
		if err != nil {
			b.logger.Error("build care summary", zap.Int64("telegram_id", user.TelegramID), zap.Error(err))
			continue
		}
		if err := b.sendText(user.TelegramID, text); err != nil {
			b.logger.Error("send care summary", zap.Int64("telegram_id", user.TelegramID), zap.Error(err))
		}
	}
	return nil
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	text := strings.TrimSpace(strings.ToLower(msg.Text))
	switch text {
	case strings.ToLower(menuLabelNew):
		return true, b.startNewPlantConversation(ctx, msg)
	case strings.ToLower(menuLabelPlants):
		return true, b.handleListPlants(ctx, msg)
	case strings.ToLower(menuLabelTasks):
		return true, b.handleListTasks(ctx, msg)
	case strings.ToLower(menuLabelHelp):
		return true, b.handleHelp(msg)
	default:
		return false, nil
	}
}

func (b *Bot) ensureUser(ctx context.Context, from *tgbotapi.User) (*model.User, error) {
	return b.userRepo.UpsertFromTelegram(ctx, from.ID, from.FirstName, from.LastName, from.UserName)
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendTextWithRemove(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	if _, err := b.api.Send(msg); err != nil {
		return err
	}
	return b.sendMenuPlaceholder(chatID)
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendMenuPlaceholder(chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, "🔹 Hauptmenü")
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) getConfirmation(userID int64) (confirmationRequest, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	req, ok := b.confirmations[userID]
	return req, ok
}

func (b *Bot) setConfirmation(userID int64, req confirmationRequest) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.confirmations[userID] = req
}

func (b *Bot) clearConfirmation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.confirmations, userID)
}

func (b *Bot) setConversation(userID int64, state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations[userID] = state
}

func (b *Bot) getConversation(userID int64) *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[userID]
}

func (b *Bot) hasConversation(userID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.conversations[userID]
	return ok
}

func (b *Bot) clearConversation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, userID)
}

func parseIDArgument(args string) (uint, error) {
	raw := strings.TrimSpace(args)
	if raw == "" {
		return 0, fmt.Errorf("missing id")
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(value), nil
}

func parseCallbackID(data, prefix string) (uint, error) {
	raw := strings.TrimPrefix(data, prefix)
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(value), nil
}
