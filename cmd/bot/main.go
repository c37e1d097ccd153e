package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"bot_uni_schedule/internal/bot"
	"bot_uni_schedule/internal/config"
	"bot_uni_schedule/internal/iis"
	"bot_uni_schedule/internal/notifier"
	"bot_uni_schedule/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer logger.Sync()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Fatal("invalid timezone", zap.String("tz", cfg.Timezone), zap.Error(err))
	}

	profiles, err := storage.Open(cfg.DatabasePath, logger)
	if err != nil {
		logger.Fatal("storage init failed", zap.Error(err))
	}

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		logger.Fatal("telegram bot init failed", zap.Error(err))
	}
	logger.Info("authorized", zap.String("bot", api.Self.UserName))

	schedules := iis.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout, logger)
	sender := bot.NewSender(api, logger)
	notifiers := notifier.NewRegistry(notifier.Options{
		Sender:   sender,
		Logger:   logger,
		Location: loc,
		Interval: cfg.PollInterval,
		Cooldown: cfg.FireCooldown,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.WeekRefreshCron != "" {
		c := cron.New()
		if _, err := c.AddFunc(cfg.WeekRefreshCron, func() {
			week, err := schedules.CurrentWeek(ctx)
			if err != nil {
				logger.Warn("week refresh failed", zap.Error(err))
				return
			}
			notifiers.UpdateWeek(week)
		}); err != nil {
			logger.Fatal("invalid week refresh cron", zap.Error(err))
		}
		c.Start()
		defer c.Stop()
		logger.Info("week refresh enabled", zap.String("cron", cfg.WeekRefreshCron))
	}

	b := bot.New(api, sender, profiles, schedules, notifiers, logger, loc)
	logger.Info("bot started")
	b.Run(ctx)

	notifiers.StopAll()
	logger.Info("bot stopped")
}
