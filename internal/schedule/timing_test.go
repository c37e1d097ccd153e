package schedule

import (
	"testing"
	"time"

	"bot_uni_schedule/internal/iis"
)

func dayAt(hour, min int) time.Time {
	return time.Date(2024, 9, 2, hour, min, 0, 0, time.UTC)
}

func TestPrecedingLessonEndNone(t *testing.T) {
	day := dayAt(8, 0)

	if _, ok := PrecedingLessonEnd(iis.Schedule{}, "Понедельник", "10:00", 1, 1, day); ok {
		t.Error("empty day should have no preceding lesson")
	}

	doc := iis.Schedule{
		"Понедельник": {
			lesson("Поздняя", "12:25", "13:45", nil, 0),
		},
	}
	if _, ok := PrecedingLessonEnd(doc, "Понедельник", "10:00", 1, 1, day); ok {
		t.Error("lesson ending after start must not count as preceding")
	}
}

func TestPrecedingLessonEndLatestStrictlyBefore(t *testing.T) {
	doc := iis.Schedule{
		"Понедельник": {
			lesson("Вторая", "10:35", "11:55", nil, 0),
			lesson("Первая", "08:00", "09:20", nil, 0),
			lesson("Утренняя", "06:30", "07:50", nil, 0),
		},
	}
	day := dayAt(8, 0)

	end, ok := PrecedingLessonEnd(doc, "Понедельник", "10:35", 1, 1, day)
	if !ok {
		t.Fatal("expected a preceding lesson")
	}
	if want := dayAt(9, 20); !end.Equal(want) {
		t.Errorf("end = %v, want %v", end, want)
	}

	// A lesson ending exactly at the start is not strictly before.
	doc["Понедельник"] = append(doc["Понедельник"], lesson("Впритык", "09:30", "10:35", nil, 0))
	end, ok = PrecedingLessonEnd(doc, "Понедельник", "10:35", 1, 1, day)
	if !ok || !end.Equal(dayAt(9, 20)) {
		t.Errorf("end = %v ok=%v, want 09:20", end, ok)
	}
}

func TestPrecedingLessonEndRespectsFilters(t *testing.T) {
	doc := iis.Schedule{
		"Понедельник": {
			lesson("Чужая подгруппа", "08:00", "09:20", nil, 2),
			lesson("Чужая неделя", "08:00", "09:20", []int{3}, 0),
		},
	}
	if _, ok := PrecedingLessonEnd(doc, "Понедельник", "10:00", 1, 1, dayAt(8, 0)); ok {
		t.Error("filtered-out lessons must not anchor the reminder")
	}
}

func TestNotificationInstant(t *testing.T) {
	day := dayAt(8, 0)
	first := lesson("Первая", "10:00", "11:20", nil, 0)

	// No preceding lesson: one hour before start.
	doc := iis.Schedule{"Понедельник": {first}}
	got, err := NotificationInstant(doc, "Понедельник", first, 1, 1, day)
	if err != nil {
		t.Fatal(err)
	}
	if want := dayAt(9, 0); !got.Equal(want) {
		t.Errorf("instant = %v, want %v", got, want)
	}

	// Preceding lesson ends 09:30, next starts 11:00: instant is 09:30, not 10:00.
	second := lesson("Вторая", "11:00", "12:20", nil, 0)
	doc = iis.Schedule{"Понедельник": {
		lesson("Первая", "08:10", "09:30", nil, 0),
		second,
	}}
	got, err = NotificationInstant(doc, "Понедельник", second, 1, 1, day)
	if err != nil {
		t.Fatal(err)
	}
	if want := dayAt(9, 30); !got.Equal(want) {
		t.Errorf("instant = %v, want %v", got, want)
	}
}

func TestNotificationInstantBadTime(t *testing.T) {
	bad := lesson("Сломанная", "25:99", "11:20", nil, 0)
	if _, err := NotificationInstant(iis.Schedule{}, "Понедельник", bad, 1, 1, dayAt(8, 0)); err == nil {
		t.Error("expected error for malformed start time")
	}
}

func TestWindowOpenBoundaries(t *testing.T) {
	instant := dayAt(9, 0)
	start := dayAt(10, 0)

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"before instant", dayAt(8, 59).Add(30 * time.Second), false},
		{"at instant", instant, false},
		{"inside window", dayAt(9, 0).Add(15 * time.Second), true},
		{"window edge", dayAt(9, 1), true},
		{"past window", dayAt(9, 1).Add(15 * time.Second), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WindowOpen(instant, start, tt.now, time.Minute); got != tt.want {
				t.Errorf("WindowOpen(now=%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestWindowClosedOnceLessonStarted(t *testing.T) {
	instant := dayAt(9, 59).Add(30 * time.Second)
	start := dayAt(10, 0)
	now := dayAt(10, 0).Add(10 * time.Second)
	if WindowOpen(instant, start, now, time.Minute) {
		t.Error("window must close when the lesson has started")
	}
}

func TestWindowOpenExactlyOncePerTickSequence(t *testing.T) {
	instant := dayAt(9, 0).Add(20 * time.Second)
	start := dayAt(10, 0)

	open := 0
	for tick := dayAt(8, 58); tick.Before(dayAt(9, 5)); tick = tick.Add(time.Minute) {
		if WindowOpen(instant, start, tick, time.Minute) {
			open++
		}
	}
	if open != 1 {
		t.Errorf("window open on %d ticks, want exactly 1", open)
	}
}
