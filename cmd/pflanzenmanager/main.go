package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"pflanzen-manager/internal/ai"
	"pflanzen-manager/internal/bot"
	"pflanzen-manager/internal/config"
	"pflanzen-manager/internal/repository"
	"pflanzen-manager/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("db", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	plantRepo := repository.NewPlantRepository(db)
	photoRepo := repository.NewPhotoRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	tipRepo := repository.NewTipRepository(db)

	plantSvc := service.NewPlantService(plantRepo, roomRepo, photoRepo)
	taskSvc := service.NewTaskService(taskRepo, tipRepo, logger)
	wateringSvc := service.NewWateringService(taskRepo)
	reminderSvc := service.NewReminderService(plantRepo, taskRepo)

	aiClient := ai.NewClient(cfg.OpenAIKey, cfg.OpenAIModel, logger)
	if !aiClient.Enabled() {
		logger.Warn("no OpenAI API key set, photo analysis disabled")
	}

	telegramBot, err := bot.New(cfg.TelegramToken, userRepo, plantSvc, taskSvc, wateringSvc, reminderSvc, aiClient, logger)
	if err != nil {
		logger.Fatal("bot", zap.Error(err))
	}

	scheduler := service.NewSchedulerService(time.Local)
	sendReports := func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := telegramBot.SendCareReports(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("care reports", zap.Error(err))
		}
	}
	if cfg.ReportInterval > 0 {
		if _, err := scheduler.ScheduleInterval(cfg.ReportInterval, sendReports); err != nil {
			logger.Fatal("schedule reports", zap.Error(err))
		}
	} else {
		if _, err := scheduler.ScheduleDaily(cfg.ReminderTime, sendReports); err != nil {
			logger.Fatal("schedule reports", zap.Error(err))
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	logger.Info("plant manager bot started")
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("bot stopped", zap.Error(err))
	}
	logger.Info("shutdown complete")
}
