package shared

import "time"

// DateLayout is the calendar-day key format used in analytics series and export file names.
const DateLayout = "2006-01-02"

// StartOfDay truncates t to midnight in t's own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// AddDays moves t by n calendar days, keeping the wall clock time across DST changes.
func AddDays(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+n, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// CalendarDaysBetween returns the number of calendar days from a to b in loc.
//
// Two instants on the same date yield 0; yesterday-to-today yields 1 regardless of the hour.
func CalendarDaysBetween(a, b time.Time, loc *time.Location) int {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	// Noon UTC avoids DST-length days skewing the division.
	from := time.Date(ay, am, ad, 12, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 12, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

// DayKey formats t as a YYYY-MM-DD key in t's location.
func DayKey(t time.Time) string {
	return t.Format(DateLayout)
}
