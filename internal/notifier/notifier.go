// Package notifier runs per-chat background reminder loops and the registry
// that owns them.
package notifier

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"bot_uni_schedule/internal/iis"
	"bot_uni_schedule/internal/schedule"
)

// Sender delivers reminder text to a chat. Delivery is best-effort; errors
// are logged by the notifier and never stop the loop.
type Sender interface {
	SendMessage(chatID int64, text string) error
}

// Notifier watches one chat's timetable snapshot and fires at most one
// reminder per lesson occurrence. It holds the document it was started with;
// a schedule refresh replaces the whole notifier via the registry.
type Notifier struct {
	chatID   int64
	doc      iis.Schedule
	subgroup int
	week     atomic.Int32

	sender   Sender
	log      *zap.Logger
	loc      *time.Location
	interval time.Duration
	cooldown time.Duration
	window   time.Duration
	now      func() time.Time
}

// Run polls the clock until ctx is cancelled. Cancellation is honored between
// ticks and during the post-fire cooldown, so stop latency is bounded by the
// shorter of the two sleeps.
func (n *Notifier) Run(ctx context.Context) {
	ticker := time.NewTicker(n.interval)
	defer ticker.Stop()

	n.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n.tick(ctx)
		}
	}
}

// tick scans today's active lessons once. A failure inside one pass must not
// kill reminders for the rest of the day.
func (n *Notifier) tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			n.log.Error("reminder tick failed", zap.Int64("chat_id", n.chatID), zap.Any("panic", r))
		}
	}()

	now := n.now().In(n.loc)
	today := schedule.WeekdayName(now)
	week := int(n.week.Load())

	for _, l := range schedule.ActiveLessons(n.doc, today, week, n.subgroup) {
		start, err := schedule.LessonStartAt(l, now)
		if err != nil {
			n.log.Warn("skipping malformed lesson", zap.Int64("chat_id", n.chatID), zap.Error(err))
			continue
		}
		instant, err := schedule.NotificationInstant(n.doc, today, l, week, n.subgroup, now)
		if err != nil {
			continue
		}
		if !schedule.WindowOpen(instant, start, now, n.window) {
			continue
		}
		if ctx.Err() != nil {
			return
		}
		if err := n.sender.SendMessage(n.chatID, reminderText(l)); err != nil {
			n.log.Error("reminder send failed", zap.Int64("chat_id", n.chatID),
				zap.String("subject", l.Subject), zap.Error(err))
		} else {
			n.log.Info("reminder sent", zap.Int64("chat_id", n.chatID),
				zap.String("subject", l.Subject), zap.String("start", l.StartTime))
		}
		// Sleep past the rest of this lesson's window so the next pass
		// cannot fire it again.
		if !sleepCtx(ctx, n.cooldown) {
			return
		}
	}
}

func reminderText(l iis.Lesson) string {
	return fmt.Sprintf("⏰ Напоминание: Скоро начнется пара!\n"+
		"📚 Предмет: *%s*\n"+
		"🕒 Время: %s\n"+
		"🏫 Аудитория: %s\n"+
		"👨‍🏫 Преподаватель: %s",
		l.Subject, l.StartTime, schedule.Auditories(l), schedule.Instructors(l))
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
