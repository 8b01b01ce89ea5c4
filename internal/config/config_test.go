package config

import (
	"os"
	"testing"
	"time"
)

func TestEnvOr(t *testing.T) {
	// Unset key returns fallback
	os.Unsetenv("TEST_ENVOR_KEY")
	if got := envOr("TEST_ENVOR_KEY", "default"); got != "default" {
		t.Errorf("envOr unset key = %q, want %q", got, "default")
	}

	// Set key returns value
	os.Setenv("TEST_ENVOR_KEY", "custom")
	defer os.Unsetenv("TEST_ENVOR_KEY")
	if got := envOr("TEST_ENVOR_KEY", "default"); got != "custom" {
		t.Errorf("envOr set key = %q, want %q", got, "custom")
	}

	// Empty string returns fallback
	os.Setenv("TEST_ENVOR_KEY", "")
	if got := envOr("TEST_ENVOR_KEY", "fallback"); got != "fallback" {
		t.Errorf("envOr empty key = %q, want %q", got, "fallback")
	}
}

func TestEnvInt(t *testing.T) {
	os.Unsetenv("TEST_ENVINT_KEY")
	if got := envInt("TEST_ENVINT_KEY", 7); got != 7 {
		t.Errorf("envInt unset = %d, want 7", got)
	}

	os.Setenv("TEST_ENVINT_KEY", "42")
	defer os.Unsetenv("TEST_ENVINT_KEY")
	if got := envInt("TEST_ENVINT_KEY", 7); got != 42 {
		t.Errorf("envInt set = %d, want 42", got)
	}

	os.Setenv("TEST_ENVINT_KEY", "not-a-number")
	if got := envInt("TEST_ENVINT_KEY", 7); got != 7 {
		t.Errorf("envInt garbage = %d, want fallback 7", got)
	}
}

func TestEnvBool(t *testing.T) {
	os.Unsetenv("TEST_ENVBOOL_KEY")
	if got := envBool("TEST_ENVBOOL_KEY", true); got != true {
		t.Errorf("envBool unset = %v, want true", got)
	}

	os.Setenv("TEST_ENVBOOL_KEY", "false")
	defer os.Unsetenv("TEST_ENVBOOL_KEY")
	if got := envBool("TEST_ENVBOOL_KEY", true); got != false {
		t.Errorf("envBool set = %v, want false", got)
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"EXCHANGE_ID", "GROUP_ID", "WINDOW_DAYS", "MAX_PAGES",
		"LEAD_TIME_DAYS", "QUOTE_SCALE", "PRICE_CEILING", "PERCENT_FLOOR",
		"PAGE_DELAY_SECONDS", "TIMEZONE", "INFISICAL_CLIENT_ID",
	} {
		os.Unsetenv(key)
	}

	cfg := Load()
	if cfg.ExchangeID != 5 || cfg.GroupID != 13 {
		t.Errorf("exchange/group = %d/%d, want 5/13", cfg.ExchangeID, cfg.GroupID)
	}
	if cfg.WindowDays != 30 {
		t.Errorf("WindowDays = %d, want 30", cfg.WindowDays)
	}
	if cfg.LeadTimeDays != 3 {
		t.Errorf("LeadTimeDays = %d, want 3", cfg.LeadTimeDays)
	}
	if cfg.QuoteScale != 1000 {
		t.Errorf("QuoteScale = %d, want 1000", cfg.QuoteScale)
	}
	if cfg.PageDelay != 2*time.Second {
		t.Errorf("PageDelay = %v, want 2s", cfg.PageDelay)
	}
	if cfg.Timezone != "Asia/Ho_Chi_Minh" {
		t.Errorf("Timezone = %q", cfg.Timezone)
	}
}

func TestLocationFallsBackToUTC(t *testing.T) {
	cfg := Config{Timezone: "Not/AZone"}
	if loc := cfg.Location(); loc != time.UTC {
		t.Errorf("Location() = %v, want UTC", loc)
	}
}
