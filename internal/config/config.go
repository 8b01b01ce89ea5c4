package config

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"time"

	infisical "github.com/infisical/go-sdk"
)

type Config struct {
	Port        string
	DatabaseURL string

	TelegramToken  string
	TelegramChatID int64

	RedisURL      string
	RedisPassword string

	// Event collection
	EventBaseURL string
	QuoteBaseURL string
	ExchangeID   int
	GroupID      int
	WindowDays   int // collection window: today .. today+WindowDays
	PageSize     int
	MaxPages     int
	PageDelay    time.Duration // mandatory between scraped pages
	UseScraper   bool          // scrape the calendar page instead of the JSON endpoint

	// Enrichment
	LeadTimeDays int
	QuoteScale   int64
	Timezone     string

	// Alerting
	PriceCeiling int64
	PercentFloor int
	MinLeadDays  int

	// Schedule, retention, export
	RunHour       int // exchange-local hour of the daily run
	RetentionDays int // persisted events older than this are pruned
	CSVPath       string

	FrontendOrigin string
}

func Load() Config {
	cfg := Config{
		Port:        envOr("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		TelegramToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID: envInt64("TELEGRAM_CHAT_ID", 0),

		RedisURL:      envOr("REDIS_URL", "redis://localhost:6379/0"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		EventBaseURL: envOr("EVENT_BASE_URL", "https://finance.vietstock.vn"),
		QuoteBaseURL: envOr("QUOTE_BASE_URL", "https://quote.vietcap.com.vn"),
		ExchangeID:   envInt("EXCHANGE_ID", 5),
		GroupID:      envInt("GROUP_ID", 13),
		WindowDays:   envInt("WINDOW_DAYS", 30),
		PageSize:     envInt("PAGE_SIZE", 50),
		MaxPages:     envInt("MAX_PAGES", 10),
		PageDelay:    time.Duration(envInt("PAGE_DELAY_SECONDS", 2)) * time.Second,
		UseScraper:   envBool("USE_SCRAPER", false),

		LeadTimeDays: envInt("LEAD_TIME_DAYS", 3),
		QuoteScale:   envInt64("QUOTE_SCALE", 1000),
		Timezone:     envOr("TIMEZONE", "Asia/Ho_Chi_Minh"),

		PriceCeiling: envInt64("PRICE_CEILING", 30000),
		PercentFloor: envInt("PERCENT_FLOOR", 7),
		MinLeadDays:  envInt("MIN_LEAD_DAYS", 2),

		RunHour:       envInt("RUN_HOUR", 8),
		RetentionDays: envInt("RETENTION_DAYS", 90),
		CSVPath:       envOr("CSV_PATH", "dividend_events.csv"),

		FrontendOrigin: envOr("FRONTEND_ORIGIN", "*"),
	}

	// If Infisical credentials are available, fetch secrets from Infisical
	clientID := os.Getenv("INFISICAL_CLIENT_ID")
	clientSecret := os.Getenv("INFISICAL_CLIENT_SECRET")
	if clientID != "" && clientSecret != "" {
		loadFromInfisical(&cfg, clientID, clientSecret)
	}

	return cfg
}

func loadFromInfisical(cfg *Config, clientID, clientSecret string) {
	siteURL := envOr("INFISICAL_SITE_URL", "https://app.infisical.com")
	projectID := os.Getenv("INFISICAL_PROJECT_ID")
	envSlug := envOr("INFISICAL_ENV", "prod")

	if projectID == "" {
		slog.Warn("INFISICAL_PROJECT_ID not set, skipping Infisical")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := infisical.NewInfisicalClient(ctx, infisical.Config{
		SiteUrl:          siteURL,
		AutoTokenRefresh: false,
	})

	_, err := client.Auth().UniversalAuthLogin(clientID, clientSecret)
	if err != nil {
		slog.Error("infisical auth failed", "error", err)
		return
	}

	secrets := map[string]*string{
		"TELEGRAM_BOT_TOKEN": &cfg.TelegramToken,
		"REDIS_PASSWORD":     &cfg.RedisPassword,
	}

	for key, target := range secrets {
		if *target != "" {
			continue // env var already set, skip
		}
		secret, err := client.Secrets().Retrieve(infisical.RetrieveSecretOptions{
			SecretKey:   key,
			Environment: envSlug,
			ProjectID:   projectID,
			SecretPath:  "/",
		})
		if err != nil {
			slog.Warn("failed to retrieve secret from infisical", "key", key, "error", err)
			continue
		}
		*target = secret.SecretValue
		slog.Info("loaded secret from infisical", "key", key)
	}
}

// Location resolves the configured timezone, reverting to UTC when unknown.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		slog.Warn("unknown timezone, using UTC", "timezone", c.Timezone)
		return time.UTC
	}
	return loc
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		slog.Warn("invalid integer in env, using fallback", "key", key, "value", v)
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
		slog.Warn("invalid integer in env, using fallback", "key", key, "value", v)
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		slog.Warn("invalid boolean in env, using fallback", "key", key, "value", v)
	}
	return fallback
}
