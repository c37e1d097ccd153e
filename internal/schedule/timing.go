package schedule

import (
	"fmt"
	"sort"
	"time"

	"bot_uni_schedule/internal/iis"
)

// DefaultWindow is the width of a lesson's firing window. The notifier's
// polling period matches it so every open window is observed exactly once.
const DefaultWindow = time.Minute

// LessonStartAt combines a lesson's "HH:MM" start with the given day's date.
func LessonStartAt(l iis.Lesson, day time.Time) (time.Time, error) {
	return atClock(l.StartTime, day)
}

func atClock(clock string, day time.Time) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad lesson time %q: %w", clock, err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location()), nil
}

// PrecedingLessonEnd finds the end instant of the latest lesson on the day
// that ends strictly before lessonStart. Reports false for the first lesson
// of the day.
func PrecedingLessonEnd(doc iis.Schedule, weekday, lessonStart string, week, subgroup int, day time.Time) (time.Time, bool) {
	lessons := ActiveLessons(doc, weekday, week, subgroup)
	sort.SliceStable(lessons, func(i, j int) bool { return lessons[i].EndTime < lessons[j].EndTime })

	start, err := atClock(lessonStart, day)
	if err != nil {
		return time.Time{}, false
	}
	var best time.Time
	found := false
	for _, l := range lessons {
		end, err := atClock(l.EndTime, day)
		if err != nil {
			continue
		}
		if end.Before(start) {
			best = end
			found = true
		}
	}
	return best, found
}

// NotificationInstant computes when a lesson's reminder becomes due: the end
// of the immediately preceding lesson, or one hour before the lesson starts
// when it opens the day.
func NotificationInstant(doc iis.Schedule, weekday string, l iis.Lesson, week, subgroup int, day time.Time) (time.Time, error) {
	start, err := LessonStartAt(l, day)
	if err != nil {
		return time.Time{}, err
	}
	if end, ok := PrecedingLessonEnd(doc, weekday, l.StartTime, week, subgroup, day); ok {
		return end, nil
	}
	return start.Add(-time.Hour), nil
}

// WindowOpen reports whether a reminder is currently due: the instant lies
// within (0, window] in the past and the lesson has not started yet.
func WindowOpen(instant, lessonStart, now time.Time, window time.Duration) bool {
	if window <= 0 {
		window = DefaultWindow
	}
	since := now.Sub(instant)
	return since > 0 && since <= window && lessonStart.After(now)
}
