package main

import (
	"context"
	"log"
	"os"

	"go.uber.org/zap"

	"raidbot/internal/adapters/discord"
	"raidbot/internal/adapters/web"
	"raidbot/internal/application"
	"raidbot/internal/config"
	"raidbot/internal/infrastructure/database"
	"raidbot/internal/infrastructure/i18n"
	"raidbot/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}
	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer pool.Close()

	eventRepo := database.NewEventRepository(pool)
	partyRepo := database.NewPartyRepository(pool)
	profileRepo := database.NewProfileRepository(pool)
	formationRepo := database.NewFormationRepository(pool)
	rewardRepo := database.NewRewardRepository(pool)

	translator := i18n.NewTranslator(cfg.DefaultLocale)

	eventSvc := application.NewEventService(eventRepo, cfg.ReminderOffset, cfg.CloseGrace, logger)
	rsvpSvc := application.NewRSVPService(eventRepo, cfg.SignupOffset, logger)
	attendanceSvc := application.NewAttendanceService(eventRepo, rewardRepo, logger)
	formationSvc := application.NewFormationService(eventRepo, partyRepo, profileRepo, formationRepo, cfg.PartyMinSize, logger)

	tokens := web.NewTokenStore(cfg.EditTokenTTL)

	bot, err := discord.NewBot(cfg, eventSvc, rsvpSvc, attendanceSvc, formationSvc, translator, tokens, logger)
	if err != nil {
		logger.Fatal("bot init failed", zap.Error(err))
	}

	server := web.NewServer(
		cfg.DashboardAddr,
		tokens,
		eventSvc,
		formationSvc,
		bot.Dispatcher(translator),
		bot.Refresher(),
		logger,
	)
	go func() {
		if err := server.Start(); err != nil {
			logger.Error("dashboard server failed", zap.Error(err))
		}
	}()

	if err := bot.Start(); err != nil {
		logger.Error("bot stopped with error", zap.Error(err))
		os.Exit(1)
	}
	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("dashboard shutdown failed", zap.Error(err))
	}
}
