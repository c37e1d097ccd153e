// Package schedule resolves and renders weekly timetables and computes
// reminder instants for individual lessons.
package schedule

import (
	"fmt"
	"strings"
	"time"

	"bot_uni_schedule/internal/iis"
)

// Format selects how much of the week a render covers.
type Format string

const (
	FormatFull  Format = "full"
	FormatToday Format = "today"
)

const (
	noAuditory    = "Не указано"
	noInstructor  = "Преподаватель не указан"
	noSubject     = "Без названия"
	noLessonsLine = "🔸 Нет занятий\n"
	renderErrText = "⚠ Ошибка при обработке расписания"
)

// Weekdays lists day names in timetable order, Monday first.
var Weekdays = [7]string{
	"Понедельник", "Вторник", "Среда", "Четверг", "Пятница", "Суббота", "Воскресенье",
}

// WeekdayName maps a wall-clock moment to the timetable's day key.
func WeekdayName(t time.Time) string {
	return Weekdays[(int(t.Weekday())+6)%7]
}

// ActiveLessons filters a day's lessons down to those matching the rotation
// week and the user's subgroup. Source order is preserved; callers needing
// chronological order sort themselves.
func ActiveLessons(doc iis.Schedule, weekday string, week, subgroup int) []iis.Lesson {
	day, ok := doc[weekday]
	if !ok {
		return nil
	}
	out := make([]iis.Lesson, 0, len(day))
	for _, l := range day {
		if !weekMatches(l, week) {
			continue
		}
		if l.Subgroup != 0 && l.Subgroup != subgroup {
			continue
		}
		out = append(out, l)
	}
	return out
}

func weekMatches(l iis.Lesson, week int) bool {
	if len(l.WeekNumbers) == 0 {
		return true
	}
	for _, w := range l.WeekNumbers {
		if w == week {
			return true
		}
	}
	return false
}

// Render formats the timetable as Telegram markdown. Day dates are taken from
// the real current calendar week; the rotation week number only filters
// content. A broken document degrades to a single error line instead of
// reaching the caller.
func Render(doc iis.Schedule, week, subgroup int, format Format, now time.Time) (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = renderErrText
		}
	}()
	if doc == nil {
		return renderErrText
	}

	monday := now.AddDate(0, 0, -((int(now.Weekday()) + 6) % 7))
	dates := make(map[string]string, len(Weekdays))
	for i, day := range Weekdays {
		dates[day] = monday.AddDate(0, 0, i).Format("02.01")
	}

	var b strings.Builder
	var days []string
	if format == FormatToday {
		today := WeekdayName(now)
		fmt.Fprintf(&b, "📅 *Расписание на %s (%s):*\n\n", today, dates[today])
		days = []string{today}
	} else {
		fmt.Fprintf(&b, "📅 *Расписание (%s - %s):*\n\n", dates[Weekdays[0]], dates[Weekdays[6]])
		days = Weekdays[:]
	}

	for _, day := range days {
		fmt.Fprintf(&b, "📌 *%s, %s:*\n", day, dates[day])
		lessons := ActiveLessons(doc, day, week, subgroup)
		if len(lessons) == 0 {
			b.WriteString(noLessonsLine)
		} else {
			lines := make([]string, 0, len(lessons))
			for _, l := range lessons {
				lines = append(lines, formatLessonLine(l))
			}
			b.WriteString(strings.Join(lines, "\n"))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatLessonLine(l iis.Lesson) string {
	return fmt.Sprintf("🕒 %s - %s | %s (%s)\n🏫 %s\n👨‍🏫 %s\n",
		l.StartTime, l.EndTime, subjectOf(l), l.LessonType, Auditories(l), Instructors(l))
}

func subjectOf(l iis.Lesson) string {
	if strings.TrimSpace(l.Subject) == "" {
		return noSubject
	}
	return l.Subject
}

// Auditories joins a lesson's rooms, with a placeholder when none are listed.
func Auditories(l iis.Lesson) string {
	if len(l.Auditories) == 0 {
		return noAuditory
	}
	return strings.Join(l.Auditories, ", ")
}

// Instructors renders the employee list as "Last First Middle" entries.
func Instructors(l iis.Lesson) string {
	parts := make([]string, 0, len(l.Employees))
	for _, e := range l.Employees {
		full := strings.TrimSpace(fmt.Sprintf("%s %s %s", e.LastName, e.FirstName, e.MiddleName))
		if full != "" {
			parts = append(parts, full)
		}
	}
	if len(parts) == 0 {
		return noInstructor
	}
	return strings.Join(parts, ", ")
}
