package clock

import "time"

// Clock supplies "now" in the reporting timezone. Compliance and dashboard
// calculations take one so tests can fix time and the timezone is never
// hardcoded in the aggregation logic.
type Clock interface {
	Now() time.Time
}

type systemClock struct {
	loc *time.Location
}

func (c systemClock) Now() time.Time { return time.Now().In(c.loc) }

// System returns a clock reading the wall clock in loc. A nil location
// falls back to time.Local.
func System(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return systemClock{loc: loc}
}

type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time { return c.t }

// Fixed returns a clock frozen at t, for tests.
func Fixed(t time.Time) Clock { return fixedClock{t: t} }

// StartOfDay truncates t to local midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59.999 of t's calendar day in t's location.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// DaysBetween counts whole calendar days from a to b in a's location.
// Negative when b is before a.
func DaysBetween(a, b time.Time) int {
	a = StartOfDay(a)
	b = StartOfDay(b.In(a.Location()))
	return int(b.Sub(a).Hours() / 24)
}

// Millis converts t to UTC epoch milliseconds, the storage representation.
func Millis(t time.Time) int64 { return t.UnixMilli() }

// FromMillis converts stored epoch milliseconds into loc.
func FromMillis(ms int64, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.UnixMilli(ms).In(loc)
}
