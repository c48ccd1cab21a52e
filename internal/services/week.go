package services

import "time"

// WeekBase is the Sunday the schedule's week numbering is anchored to.
// Week 1 runs 2025-12-28 through 2026-01-03.
var WeekBase = time.Date(2025, time.December, 28, 0, 0, 0, 0, time.UTC)

// DateOnly truncates a timestamp to a UTC calendar date. Assignment dates are
// always stored and compared in this form.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekNumber returns the schedule week for a date. Weeks before the base are
// negative or zero, which is fine for historical data.
func WeekNumber(d time.Time) int {
	delta := int(DateOnly(d).Sub(WeekBase).Hours() / 24)
	if delta < 0 {
		// Go integer division truncates toward zero; week math needs floor.
		return (delta-6)/7 + 1
	}
	return delta/7 + 1
}

// WeekDates returns the first and last date of a week.
func WeekDates(weekNumber int) (time.Time, time.Time) {
	start := WeekBase.AddDate(0, 0, (weekNumber-1)*7)
	end := start.AddDate(0, 0, 6)
	return start, end
}

// WeekDays returns all seven dates of a week in order.
func WeekDays(weekNumber int) []time.Time {
	start, _ := WeekDates(weekNumber)
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}

// CurrentWeekNumber returns the week containing today.
func CurrentWeekNumber() int {
	return WeekNumber(time.Now().UTC())
}
