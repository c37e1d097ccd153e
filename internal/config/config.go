// Package config loads settings from the environment, with an optional .env
// file for local runs.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

type Config struct {
	BotToken     string
	APIBaseURL   string
	HTTPTimeout  time.Duration
	PollInterval time.Duration
	FireCooldown time.Duration
	Timezone     string
	DatabasePath string
	// WeekRefreshCron re-fetches the rotation week number on a cron schedule.
	// Empty disables the refresh and running notifiers keep the week number
	// they were started with.
	WeekRefreshCron string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		BotToken:        strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")),
		APIBaseURL:      envOrDefault("SCHEDULE_API_URL", "https://iis.bsuir.by/api/v1"),
		HTTPTimeout:     durationEnvOrDefault("HTTP_TIMEOUT", 10*time.Second),
		PollInterval:    durationEnvOrDefault("POLL_EVERY", time.Minute),
		FireCooldown:    durationEnvOrDefault("FIRE_COOLDOWN", 61*time.Second),
		Timezone:        envOrDefault("TZ_LOCATION", "Europe/Minsk"),
		DatabasePath:    envOrDefault("DATABASE_PATH", "data/bot.db"),
		WeekRefreshCron: strings.TrimSpace(os.Getenv("WEEK_REFRESH_CRON")),
	}
	if cfg.BotToken == "" {
		return Config{}, errors.New("TELEGRAM_BOT_TOKEN is required")
	}
	if cfg.PollInterval <= 0 {
		return Config{}, errors.New("POLL_EVERY must be positive")
	}
	if cfg.FireCooldown <= cfg.PollInterval {
		return Config{}, errors.New("FIRE_COOLDOWN must exceed POLL_EVERY")
	}
	if cfg.WeekRefreshCron != "" {
		if _, err := cron.ParseStandard(cfg.WeekRefreshCron); err != nil {
			return Config{}, fmt.Errorf("invalid WEEK_REFRESH_CRON: %w", err)
		}
	}
	return cfg, nil
}

func envOrDefault(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func durationEnvOrDefault(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
