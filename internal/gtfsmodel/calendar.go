package gtfsmodel

import "time"

// RunsOn answers whether service runs on date (a YYYYMMDD integer,
// e.g. 20260731). Resolution order: an exception for the date wins
// over the weekly pattern (Added = true, Removed = false); absent an
// exception, the weekly bit decides; a service with neither a weekly
// pattern nor an exception for the date is assumed to run.
func RunsOn(svc Service, date int) bool {
	if exc, ok := svc.Exceptions[date]; ok {
		return exc == ExceptionAdded
	}
	if svc.HasWeekly {
		return svc.WeekBits[weekdayIndex(date)]
	}
	return true
}

// weekdayIndex converts a YYYYMMDD date into the calendar.txt column
// index (0 = Monday ... 6 = Sunday).
func weekdayIndex(date int) int {
	y := date / 10000
	m := (date / 100) % 100
	d := date % 100
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	// time.Weekday: Sunday=0 ... Saturday=6. Shift to Monday=0.
	wd := int(t.Weekday())
	return (wd + 6) % 7
}
