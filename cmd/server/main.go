package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/web3-frozen/dividend-monitor/internal/alert"
	"github.com/web3-frozen/dividend-monitor/internal/collector"
	"github.com/web3-frozen/dividend-monitor/internal/config"
	"github.com/web3-frozen/dividend-monitor/internal/dedup"
	"github.com/web3-frozen/dividend-monitor/internal/enrich"
	"github.com/web3-frozen/dividend-monitor/internal/handler"
	"github.com/web3-frozen/dividend-monitor/internal/middleware"
	"github.com/web3-frozen/dividend-monitor/internal/pipeline"
	"github.com/web3-frozen/dividend-monitor/internal/quote"
	"github.com/web3-frozen/dividend-monitor/internal/source"
	"github.com/web3-frozen/dividend-monitor/internal/store"
	"github.com/web3-frozen/dividend-monitor/internal/telegram"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	cfg := config.Load()

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	if cfg.TelegramToken == "" {
		logger.Error("TELEGRAM_BOT_TOKEN is required")
		os.Exit(1)
	}
	if cfg.TelegramChatID == 0 {
		logger.Error("TELEGRAM_CHAT_ID is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	logger.Info("database connected and migrated")

	// Telegram bot
	bot := telegram.NewBot(cfg.TelegramToken, db, logger)

	// Redis dedup (retry up to 30s for ExternalSecret to sync)
	var dd *dedup.Deduplicator
	for i := 0; i < 6; i++ {
		dd, err = dedup.New(cfg.RedisURL, cfg.RedisPassword)
		if err == nil {
			break
		}
		logger.Warn("redis not ready, retrying...", "attempt", i+1, "error", err)
		time.Sleep(5 * time.Second)
	}
	if err != nil {
		logger.Error("failed to connect to redis after retries", "error", err)
		os.Exit(1)
	}
	defer dd.Close()
	logger.Info("redis connected for alert dedup")

	// Event source: JSON endpoint by default, calendar scrape as fallback
	// deployment mode when the endpoint is walled off.
	var src source.Source
	if cfg.UseScraper {
		src = source.NewScraper(cfg.EventBaseURL, logger)
	} else {
		src = source.NewAPI(cfg.EventBaseURL, logger)
	}
	logger.Info("event source selected", "source", src.Name())

	oracle := quote.NewVCI(cfg.QuoteBaseURL, logger)
	enricher := enrich.New(oracle, enrich.Options{
		LeadTimeDays: cfg.LeadTimeDays,
		Scale:        cfg.QuoteScale,
		Location:     cfg.Location(),
	}, logger)
	notifier := alert.NewNotifier(bot.SendMessage, cfg.TelegramChatID, dd, logger)

	engine := pipeline.NewEngine(
		collector.New(src, cfg.PageDelay, logger),
		enricher,
		notifier,
		db,
		pipeline.Options{
			WindowDays:    cfg.WindowDays,
			MaxPages:      cfg.MaxPages,
			RunHour:       cfg.RunHour,
			RetentionDays: cfg.RetentionDays,
			Location:      cfg.Location(),
			CSVPath:       cfg.CSVPath,
			Exchange:      cfg.ExchangeID,
			Group:         cfg.GroupID,
			PageSize:      cfg.PageSize,
			Thresholds: alert.Thresholds{
				PriceCeiling: cfg.PriceCeiling,
				PercentFloor: cfg.PercentFloor,
				MinLeadDays:  cfg.MinLeadDays,
			},
		},
		logger,
	)

	// Start background goroutines
	go bot.Run(ctx)
	go engine.Run(ctx)

	// HTTP routes
	r := chi.NewRouter()
	r.Use(middleware.Recover(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg.FrontendOrigin))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", handler.Health())
	r.Get("/readyz", handler.Ready(db))

	r.Route("/api", func(r chi.Router) {
		r.Get("/events", handler.ListEvents(db))
		r.Get("/runs/latest", handler.LatestRun(engine))
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down gracefully")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}
