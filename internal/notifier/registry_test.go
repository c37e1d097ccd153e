package notifier

import (
	"strings"
	"testing"
	"time"

	"bot_uni_schedule/internal/iis"
)

func docWithSubject(subject string) iis.Schedule {
	return iis.Schedule{
		"Понедельник": {{Subject: subject, StartTime: "10:00", EndTime: "11:20"}},
	}
}

func TestStartOrReplaceKeepsSingleNotifier(t *testing.T) {
	// Frozen clock inside the firing window: both notifiers would fire on
	// every tick if left running.
	clock := &steppingClock{t: monday(9, 0, 30), step: 0}
	sender := &recordingSender{}
	reg := testRegistry(sender, clock.now)
	defer reg.StopAll()

	reg.StartOrReplace(1, docWithSubject("Старая"), 1, 0)
	waitFor(t, func() bool { return len(sender.snapshot()) >= 1 })

	reg.StartOrReplace(1, docWithSubject("Новая"), 1, 0)
	if !reg.Running(1) {
		t.Fatal("replacement notifier not registered")
	}
	waitFor(t, func() bool {
		for _, text := range sender.snapshot() {
			if strings.Contains(text, "Новая") {
				return true
			}
		}
		return false
	})

	// Everything sent from here on must come from the replacement.
	before := len(sender.snapshot())
	waitFor(t, func() bool { return len(sender.snapshot()) >= before+5 })
	for _, text := range sender.snapshot()[before:] {
		if strings.Contains(text, "Старая") {
			t.Fatalf("superseded notifier still firing: %q", text)
		}
	}
}

func TestStopRemovesNotifier(t *testing.T) {
	clock := &steppingClock{t: monday(9, 0, 30), step: 0}
	sender := &recordingSender{}
	reg := testRegistry(sender, clock.now)
	defer reg.StopAll()

	reg.StartOrReplace(7, docWithSubject("Пара"), 1, 0)
	if !reg.Running(7) {
		t.Fatal("notifier should be running")
	}
	if !reg.Stop(7) {
		t.Fatal("stop should report success")
	}
	if reg.Running(7) {
		t.Fatal("notifier still registered after stop")
	}
	if reg.Stop(7) {
		t.Fatal("second stop should report nothing to do")
	}

	// Give the cancelled loop a moment, then verify it went quiet.
	time.Sleep(20 * time.Millisecond)
	before := len(sender.snapshot())
	time.Sleep(50 * time.Millisecond)
	if after := len(sender.snapshot()); after != before {
		t.Fatalf("stopped notifier sent %d more reminders", after-before)
	}
}

func TestUpdateWeekAffectsRunningNotifier(t *testing.T) {
	doc := iis.Schedule{
		"Понедельник": {{
			Subject:     "Нечетная",
			StartTime:   "10:00",
			EndTime:     "11:20",
			WeekNumbers: []int{2},
		}},
	}
	clock := &steppingClock{t: monday(9, 0, 30), step: 0}
	sender := &recordingSender{}
	reg := testRegistry(sender, clock.now)
	defer reg.StopAll()

	// Started on week 1 the lesson is filtered out and nothing fires.
	reg.StartOrReplace(1, doc, 1, 0)
	time.Sleep(30 * time.Millisecond)
	if got := len(sender.snapshot()); got != 0 {
		t.Fatalf("lesson fired on wrong week: %d sends", got)
	}

	reg.UpdateWeek(2)
	waitFor(t, func() bool { return len(sender.snapshot()) >= 1 })
}
