package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"kassa/internal/amqp"
	"kassa/internal/config"
	"kassa/internal/core"
	"kassa/internal/services"
	"kassa/internal/sheets"
	"kassa/internal/storage"
	"kassa/internal/telegram"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting kassa")

	// Load configuration
	cfg := config.Load()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	loc, err := cfg.Location()
	if err != nil {
		logger.Error("Failed to load timezone", "error", err, "tz", cfg.Timezone)
		os.Exit(1)
	}

	// Load the chat allow-list and trigger vocabulary (built-in defaults
	// unless the operator supplied JSON overrides)
	chats, err := config.LoadChats(cfg.ChatsFile)
	if err != nil {
		logger.Error("Failed to load chat allow-list", "error", err, "path", cfg.ChatsFile)
		os.Exit(1)
	}

	triggerValues, err := config.LoadTriggers(cfg.TriggersFile)
	if err != nil {
		logger.Error("Failed to load trigger table", "error", err, "path", cfg.TriggersFile)
		os.Exit(1)
	}
	if triggerValues == nil {
		triggerValues = core.DefaultTriggers()
	}
	table, err := core.NewTriggerTable(triggerValues)
	if err != nil {
		logger.Error("Invalid trigger table", "error", err)
		os.Exit(1)
	}

	// Initialize SQLite repository
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize AMQP client for publishing ledger events (optional)
	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without event fan-out", "error", err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	} else {
		logger.Info("AMQP disabled - ledger events will not be published")
	}

	// Initialize Google Sheets mirror for activity-log entries (optional)
	var mirror services.EntryMirror
	if cfg.GoogleSpreadsheetID != "" {
		sheetsClient, err := sheets.NewClient(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName, loc)
		if err != nil {
			logger.Warn("Failed to initialize Google Sheets client, continuing without mirror", "error", err)
		} else {
			mirror = sheetsClient
			logger.Info("Google Sheets mirror initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
		}
	} else {
		logger.Info("Google Sheets disabled - entries will not be mirrored")
	}

	// Wire the pipeline: bot -> intake filter -> pending queue -> processor.
	// The bot connects before the processor starts so the restart backlog's
	// notifications have a live notifier from the very first sweep.
	intake := services.NewIntakeFilter(chats, repo, cfg.ProcessDelay)
	bot := telegram.NewBot(cfg.TelegramToken, cfg.AdminID, intake)
	if err := bot.Connect(ctx); err != nil {
		logger.Error("Failed to connect Telegram bot", "error", err)
		os.Exit(1)
	}

	if backlog, err := repo.PendingBacklog(ctx); err != nil {
		logger.Warn("Failed to count pending backlog", "error", err)
	} else if backlog > 0 {
		logger.Info("Unprocessed messages carried over from previous run", "count", backlog)
	}

	processor := services.NewDueProcessor(
		repo, repo, repo, bot,
		mirror, publisher,
		table, chats, loc,
		services.ProcessorConfig{
			ScanInterval:     cfg.ScanInterval,
			TriggerWarnCount: cfg.TriggerWarnCount,
		},
	)
	if err := processor.Start(ctx); err != nil {
		logger.Error("Failed to start due processor", "error", err)
		os.Exit(1)
	}

	// Schedule the daily report in the configured timezone
	reporter := services.NewDailyReporter(repo, bot, publisher, loc)
	schedule := cron.New(cron.WithLocation(loc))
	if _, err := schedule.AddFunc(cfg.ReportCron, func() {
		if err := reporter.Run(ctx); err != nil {
			logger.Error("Daily report failed", "error", err)
		}
	}); err != nil {
		logger.Error("Invalid report schedule", "error", err, "cron", cfg.ReportCron)
		os.Exit(1)
	}
	schedule.Start()

	logger.Info("Pipeline running",
		"chats", len(chats),
		"delay", cfg.ProcessDelay,
		"scan_interval", cfg.ScanInterval,
		"report_cron", cfg.ReportCron,
		"tz", cfg.Timezone)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return bot.Start(gctx)
	})

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-gctx.Done():
		logger.Info("Bot stopped")
	}

	// Graceful shutdown: stop the schedule, drain the processor, stop the bot
	cronCtx := schedule.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := processor.Stop(shutdownCtx); err != nil {
		logger.Warn("Due processor shutdown", "error", err)
	}
	select {
	case <-cronCtx.Done():
	case <-shutdownCtx.Done():
		logger.Warn("Shutdown timeout reached waiting for scheduled jobs")
	}

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("Bot exited with error", "error", err)
	}

	logger.Info("Shutdown complete")
}
