package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"bot_uni_schedule/internal/iis"
	"bot_uni_schedule/internal/schedule"
)

const (
	msgGroupFirst      = "⚠ Сначала настройте группу в ⚙ Настройки"
	msgScheduleMissing = "📌 Расписание не найдено!"
	msgScheduleFailed  = "⚠ Произошла ошибка при получении расписания"
	msgWeekFailed      = "⚠ Ошибка при получении номера недели!"
)

func (b *Bot) handleMessage(ctx context.Context, m *tgbotapi.Message) {
	chatID := m.Chat.ID
	text := strings.TrimSpace(m.Text)

	switch text {
	case "/start":
		b.handleStart(chatID)
		return
	case "/schedule", btnSchedule:
		b.states.clear(chatID)
		b.handleSchedule(ctx, chatID)
		return
	case btnSettings:
		b.sendKeyboard(chatID, "⚙ Выберите, что настроить:", b.settingsKeyboard())
		return
	case btnChangeGroup:
		b.states.set(chatID, inputState{mode: modeGroup})
		b.sender.Send(chatID, "📂 Введите номер группы:")
		return
	case btnReminders:
		b.states.set(chatID, inputState{mode: modeReminders})
		kb := tgbotapi.NewReplyKeyboard(tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnEnable),
			tgbotapi.NewKeyboardButton(btnDisable),
		))
		kb.ResizeKeyboard = true
		kb.OneTimeKeyboard = true
		b.sendKeyboard(chatID, "⏰ Выберите статус напоминаний:", kb)
		return
	case btnFormat:
		b.states.set(chatID, inputState{mode: modeFormat})
		kb := tgbotapi.NewReplyKeyboard(tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnFormatFull),
			tgbotapi.NewKeyboardButton(btnFormatToday),
		))
		kb.ResizeKeyboard = true
		kb.OneTimeKeyboard = true
		b.sendKeyboard(chatID, "📋 Выберите формат расписания:", kb)
		return
	case btnBack:
		b.states.clear(chatID)
		b.handleStart(chatID)
		return
	case btnOtherGroup:
		b.states.set(chatID, inputState{mode: modeOtherGroup})
		b.sender.Send(chatID, "📂 Введите номер группы, расписание которой хотите посмотреть:")
		return
	case btnExport:
		b.states.clear(chatID)
		b.handleExport(ctx, chatID)
		return
	}

	switch st := b.states.get(chatID); st.mode {
	case modeGroup:
		b.handleGroupInput(chatID, text)
	case modeSubgroup:
		b.handleSubgroupInput(chatID, text)
	case modeReminders:
		b.handleRemindersInput(chatID, text)
	case modeFormat:
		b.handleFormatInput(chatID, text)
	case modeOtherGroup:
		b.states.set(chatID, inputState{mode: modeOtherSubgroup, group: strings.ToUpper(text)})
		b.sendKeyboard(chatID, fmt.Sprintf("🔍 Вы выбрали группу: %s\n📂 Выберите подгруппу:", strings.ToUpper(text)),
			b.subgroupKeyboard())
	case modeOtherSubgroup:
		b.handleOtherSubgroupInput(ctx, chatID, st.group, text)
	default:
		b.sender.Send(chatID, "🤔 Не понял сообщение. Используйте кнопки или отправьте /start.")
	}
}

func (b *Bot) handleStart(chatID int64) {
	if _, err := b.profiles.Get(chatID); err != nil {
		b.log.Error("profile init failed", zap.Int64("chat_id", chatID), zap.Error(err))
		b.sender.Send(chatID, "⚠ Произошла ошибка, попробуйте позже")
		return
	}
	b.sendKeyboard(chatID, "Привет! 👋 Я помогу тебе с расписанием. Выбери действие:", b.mainKeyboard())
}

func (b *Bot) handleGroupInput(chatID int64, text string) {
	group := strings.ToUpper(text)
	if err := b.profiles.SetGroup(chatID, group); err != nil {
		b.log.Error("set group failed", zap.Int64("chat_id", chatID), zap.Error(err))
		b.sender.Send(chatID, "⚠ Не удалось сохранить группу, попробуйте позже")
		return
	}
	b.states.set(chatID, inputState{mode: modeSubgroup})
	b.sendKeyboard(chatID, fmt.Sprintf("✅ Вы выбрали группу: %s\n📂 Теперь выберите подгруппу:", group),
		b.subgroupKeyboard())
}

func (b *Bot) handleSubgroupInput(chatID int64, text string) {
	subgroup, ok := parseSubgroup(text)
	if !ok {
		b.sender.Send(chatID, "❌ Выберите подгруппу из предложенных вариантов.")
		return
	}
	if err := b.profiles.SetSubgroup(chatID, subgroup); err != nil {
		b.log.Error("set subgroup failed", zap.Int64("chat_id", chatID), zap.Error(err))
		b.sender.Send(chatID, "⚠ Не удалось сохранить подгруппу, попробуйте позже")
		return
	}
	b.states.clear(chatID)
	b.sender.Send(chatID, "✅ Подгруппа выбрана: "+text)
	b.handleStart(chatID)
}

func (b *Bot) handleRemindersInput(chatID int64, text string) {
	switch text {
	case btnEnable:
		if err := b.profiles.SetReminders(chatID, true); err != nil {
			b.log.Error("enable reminders failed", zap.Int64("chat_id", chatID), zap.Error(err))
			return
		}
		b.sender.Send(chatID, "✅ Напоминания включены")
	case btnDisable:
		if err := b.profiles.SetReminders(chatID, false); err != nil {
			b.log.Error("disable reminders failed", zap.Int64("chat_id", chatID), zap.Error(err))
			return
		}
		// A disabled session must stop notifying within one polling interval.
		b.notifiers.Stop(chatID)
		b.sender.Send(chatID, "✅ Напоминания выключены")
	default:
		b.sender.Send(chatID, "❌ Выберите вариант из предложенных.")
		return
	}
	b.states.clear(chatID)
	b.handleStart(chatID)
}

func (b *Bot) handleFormatInput(chatID int64, text string) {
	var format schedule.Format
	switch text {
	case btnFormatFull:
		format = schedule.FormatFull
	case btnFormatToday:
		format = schedule.FormatToday
	default:
		b.sender.Send(chatID, "❌ Выберите вариант из предложенных.")
		return
	}
	if err := b.profiles.SetFormat(chatID, format); err != nil {
		b.log.Error("set format failed", zap.Int64("chat_id", chatID), zap.Error(err))
		return
	}
	if format == schedule.FormatFull {
		b.sender.Send(chatID, "✅ Выбран полный формат расписания")
	} else {
		b.sender.Send(chatID, "✅ Выбран формат только на сегодня")
	}
	b.states.clear(chatID)
	b.handleStart(chatID)
}

// handleSchedule renders the user's own timetable and (re)starts their
// reminder loop on a fresh snapshot.
func (b *Bot) handleSchedule(ctx context.Context, chatID int64) {
	profile, err := b.profiles.Get(chatID)
	if err != nil {
		b.log.Error("profile load failed", zap.Int64("chat_id", chatID), zap.Error(err))
		b.sender.Send(chatID, "⚠ Произошла ошибка, попробуйте позже")
		return
	}
	if profile.GroupName == "" {
		b.sender.Send(chatID, msgGroupFirst)
		return
	}

	doc, week, ok := b.fetch(ctx, chatID, profile.GroupName)
	if !ok {
		return
	}

	now := time.Now().In(b.loc)
	b.sender.Send(chatID, schedule.Render(doc, week, profile.Subgroup, schedule.Format(profile.Format), now))

	if profile.Reminders {
		b.notifiers.StartOrReplace(chatID, doc, week, profile.Subgroup)
	}
}

func (b *Bot) handleOtherSubgroupInput(ctx context.Context, chatID int64, group, text string) {
	subgroup, ok := parseSubgroup(text)
	if !ok {
		b.sender.Send(chatID, "❌ Выберите подгруппу из предложенных вариантов.")
		return
	}
	b.states.clear(chatID)

	doc, week, fetched := b.fetch(ctx, chatID, group)
	if !fetched {
		return
	}

	format := schedule.FormatFull
	if profile, err := b.profiles.Get(chatID); err == nil && profile.Format != "" {
		format = schedule.Format(profile.Format)
	}
	now := time.Now().In(b.loc)
	// Lookups for another group never start a notifier.
	b.sender.Send(chatID, schedule.Render(doc, week, subgroup, format, now))
	b.handleStart(chatID)
}

// handleExport sends the timetable as an .ics attachment.
func (b *Bot) handleExport(ctx context.Context, chatID int64) {
	profile, err := b.profiles.Get(chatID)
	if err != nil || profile.GroupName == "" {
		b.sender.Send(chatID, msgGroupFirst)
		return
	}
	doc, week, ok := b.fetch(ctx, chatID, profile.GroupName)
	if !ok {
		return
	}
	data, err := schedule.ExportICS(doc, week, profile.Subgroup, time.Now().In(b.loc))
	if err != nil {
		b.log.Error("ics export failed", zap.Int64("chat_id", chatID), zap.Error(err))
		b.sender.Send(chatID, "⚠ Не удалось подготовить файл расписания")
		return
	}
	if err := b.sendICS(chatID, profile.GroupName, data); err != nil {
		b.log.Error("ics send failed", zap.Int64("chat_id", chatID), zap.Error(err))
		b.sender.Send(chatID, "⚠ Не удалось отправить файл расписания")
	}
}

func (b *Bot) sendICS(chatID int64, group string, data []byte) error {
	name := fmt.Sprintf("raspisanie-%s.ics", strings.ToLower(group))
	return b.sender.SendDocument(chatID, name, data, "📅 Расписание в формате iCalendar")
}

// fetch loads the timetable and current week, translating failures into the
// user-facing messages. Session state is never touched on failure.
func (b *Bot) fetch(ctx context.Context, chatID int64, group string) (iis.Schedule, int, bool) {
	doc, err := b.schedules.Schedule(ctx, group)
	if err != nil {
		if errors.Is(err, iis.ErrNotFound) {
			b.sender.Send(chatID, msgScheduleMissing)
		} else {
			b.sender.Send(chatID, msgScheduleFailed)
		}
		return nil, 0, false
	}
	week, err := b.schedules.CurrentWeek(ctx)
	if err != nil {
		b.sender.Send(chatID, msgWeekFailed)
		return nil, 0, false
	}
	return doc, week, true
}

func parseSubgroup(text string) (int, bool) {
	switch text {
	case "1":
		return 1, true
	case "2":
		return 2, true
	case btnNoSubgroup:
		return 0, true
	}
	return 0, false
}
