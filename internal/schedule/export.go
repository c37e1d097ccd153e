package schedule

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"bot_uni_schedule/internal/iis"
)

const (
	rotationWeeks = 4
	// exportWeeks bounds how far the exported recurrences extend.
	exportWeeks = 16
)

// ExportICS renders the timetable as an iCalendar document. Each lesson
// produces one recurring event per applicable rotation week, anchored on that
// week's next occurrence relative to now; lessons without a week restriction
// recur weekly.
func ExportICS(doc iis.Schedule, week, subgroup int, now time.Time) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("empty schedule document")
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//bot_uni_schedule//RU")

	monday := now.AddDate(0, 0, -((int(now.Weekday()) + 6) % 7))
	seq := 0
	for i, dayName := range Weekdays {
		for _, l := range doc[dayName] {
			if l.Subgroup != 0 && l.Subgroup != subgroup {
				continue
			}
			weeks := l.WeekNumbers
			interval := rotationWeeks
			count := exportWeeks / rotationWeeks
			if len(weeks) == 0 {
				weeks = []int{week}
				interval = 1
				count = exportWeeks
			}
			for _, w := range weeks {
				day := monday.AddDate(0, 0, i+7*((w-week+rotationWeeks)%rotationWeeks))
				start, err := atClock(l.StartTime, day)
				if err != nil {
					continue
				}
				end, err := atClock(l.EndTime, day)
				if err != nil {
					end = start.Add(time.Hour)
				}
				rule, err := rrule.NewRRule(rrule.ROption{
					Freq:     rrule.WEEKLY,
					Interval: interval,
					Count:    count,
					Dtstart:  start,
				})
				if err != nil {
					return nil, fmt.Errorf("build recurrence: %w", err)
				}

				seq++
				ev := cal.AddEvent(fmt.Sprintf("lesson-%d-%d-%s@bot-uni-schedule", seq, w, l.StartTime))
				ev.SetDtStampTime(now)
				ev.SetStartAt(start)
				ev.SetEndAt(end)
				ev.SetSummary(fmt.Sprintf("%s (%s)", subjectOf(l), l.LessonType))
				ev.SetLocation(Auditories(l))
				ev.SetDescription(Instructors(l))
				ev.SetProperty(ical.ComponentPropertyRrule, rule.String())
			}
		}
	}
	return []byte(cal.Serialize()), nil
}
