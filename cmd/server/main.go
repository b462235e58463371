package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Freeeeeet/trainer_scheduler/internal/api"
	"github.com/Freeeeeet/trainer_scheduler/internal/app"
	"github.com/Freeeeeet/trainer_scheduler/internal/config"
	"github.com/Freeeeeet/trainer_scheduler/internal/controller"
	"github.com/Freeeeeet/trainer_scheduler/internal/notify"
	"github.com/Freeeeeet/trainer_scheduler/internal/repository"
	"github.com/Freeeeeet/trainer_scheduler/internal/service"
	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	logger.Sugar().Infow("Starting trainer scheduler",
		"environment", cfg.Environment,
		"http_addr", cfg.HTTPAddr,
		"telegram_enabled", cfg.TelegramToken != "",
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Application failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	pool, err := pgxpool.New(ctx, cfg.GetDBDSN())
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath, logger)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	if err := migrator.Run(ctx); err != nil {
		migrator.Close()
		return fmt.Errorf("run migrations: %w", err)
	}
	migrator.Close()

	store := repository.NewStore(pool)
	roster := store.Repos().Users

	// Telegram опционален: без токена уведомления пишутся в лог
	var (
		notifier notify.Notifier = notify.NewLogNotifier(logger)
		tgBot    *bot.Bot
	)
	if cfg.TelegramToken != "" {
		tgBot, err = bot.New(cfg.TelegramToken)
		if err != nil {
			return fmt.Errorf("create telegram bot: %w", err)
		}
		notifier = notify.NewTelegramNotifier(tgBot, logger)
	}

	availability := service.NewAvailabilityService(store, roster, logger)
	holds := service.NewHoldService(store, notifier, logger)
	reminders := service.NewReminderService(store, notifier, cfg.CourseReminderDays, logger)

	handler := api.NewHandler(api.Services{
		Availability: availability,
		Occupancy:    service.NewOccupancyCalculator(store, roster, logger),
		Commitments:  service.NewCommitmentService(store, logger),
		Schedule:     service.NewScheduleService(store),
		Holds:        holds,
	}, logger)
	server := api.NewServer(cfg.HTTPAddr, api.NewRouter(handler, logger), logger)

	scheduler := app.NewScheduler(holds, reminders, cfg.HoldHistoryRetention, logger)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	if tgBot != nil {
		botController := controller.NewBotController(tgBot, service.NewUserService(roster, logger), availability, holds, logger)
		if err := botController.RegisterHandlers(ctx); err != nil {
			logger.Warn("Bot commands were not registered", zap.Error(err))
		}
		go botController.Start(ctx)
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
