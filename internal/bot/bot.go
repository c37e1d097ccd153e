// Package bot wires Telegram updates to the schedule and reminder core.
package bot

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"bot_uni_schedule/internal/iis"
	"bot_uni_schedule/internal/notifier"
	"bot_uni_schedule/internal/storage"
)

const (
	btnSettings   = "⚙ Настройки"
	btnSchedule   = "📅 Расписание"
	btnOtherGroup = "🔍 Расписание другой группы"
	btnExport     = "📥 Экспорт (.ics)"

	btnChangeGroup = "📚 Изменить группу"
	btnReminders   = "⏰ Напоминания"
	btnFormat      = "📋 Формат расписания"
	btnBack        = "↩ Назад"

	btnEnable  = "Включить"
	btnDisable = "Выключить"

	btnFormatFull  = "Полное"
	btnFormatToday = "Только сегодня"

	btnNoSubgroup = "Нет подгруппы"
)

type Bot struct {
	api       *tgbotapi.BotAPI
	sender    *Sender
	profiles  *storage.Profiles
	schedules *iis.Client
	notifiers *notifier.Registry
	states    *inputStates
	log       *zap.Logger
	loc       *time.Location
}

func New(api *tgbotapi.BotAPI, sender *Sender, profiles *storage.Profiles, schedules *iis.Client,
	notifiers *notifier.Registry, log *zap.Logger, loc *time.Location) *Bot {
	return &Bot{
		api:       api,
		sender:    sender,
		profiles:  profiles,
		schedules: schedules,
		notifiers: notifiers,
		states:    newInputStates(),
		log:       log,
		loc:       loc,
	}
}

// Run consumes long-polling updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) mainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSettings),
			tgbotapi.NewKeyboardButton(btnSchedule),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnOtherGroup),
			tgbotapi.NewKeyboardButton(btnExport),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func (b *Bot) settingsKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnChangeGroup),
			tgbotapi.NewKeyboardButton(btnReminders),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnFormat),
			tgbotapi.NewKeyboardButton(btnBack),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func (b *Bot) subgroupKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("1"),
			tgbotapi.NewKeyboardButton("2"),
			tgbotapi.NewKeyboardButton(btnNoSubgroup),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func (b *Bot) sendKeyboard(chatID int64, text string, kb tgbotapi.ReplyKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("keyboard send failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
