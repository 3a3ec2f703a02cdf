package service

import "time"

// CountChargedDays counts the calendar days in [start, end] that are charged.
// Saturdays and Sundays are skipped unless their include flag is set. Only
// the date part is used and end is read in start's location.
func CountChargedDays(start, end time.Time, includeSaturday, includeSunday bool) int {
	first := civilDate(start, start.Location())
	last := civilDate(end, start.Location())
	if last.Before(first) {
		return 0
	}

	span := int(dayIndex(last)-dayIndex(first)) + 1
	if includeSaturday && includeSunday {
		return span
	}

	charged := func(day time.Weekday) bool {
		switch day {
		case time.Saturday:
			return includeSaturday
		case time.Sunday:
			return includeSunday
		default:
			return true
		}
	}

	perWeek := 0
	for day := time.Sunday; day <= time.Saturday; day++ {
		if charged(day) {
			perWeek++
		}
	}

	// Whole weeks contribute perWeek each; the remainder starts on the same
	// weekday as first.
	count := (span / 7) * perWeek
	weekday := int(first.Weekday())
	for i := 0; i < span%7; i++ {
		if charged(time.Weekday((weekday + i) % 7)) {
			count++
		}
	}
	return count
}

// dayIndex numbers civil dates from the Unix epoch. time.Duration saturates
// after about 292 years, so spans are taken from day indices instead.
func dayIndex(civil time.Time) int64 {
	return civil.Unix() / secondsPerDay
}

const secondsPerDay = 24 * 60 * 60

// civilDate drops the clock so day arithmetic is immune to DST shifts.
func civilDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
