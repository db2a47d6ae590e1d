// Package timeutil holds the calendar arithmetic shared by the study
// engines. All day and week boundaries are computed in the location of the
// reference time, never by subtracting wall-clock durations.
package timeutil

import "time"

// StartOfDay returns local midnight of t's calendar day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable instant of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// DayKey identifies t's calendar day in loc.
func DayKey(t time.Time, loc *time.Location) time.Time {
	return StartOfDay(t.In(loc))
}

// SameDay reports whether a and b fall on the same calendar day in a's location.
func SameDay(a, b time.Time) bool {
	return StartOfDay(a).Equal(DayKey(b, a.Location()))
}

// DaysBetween returns the number of calendar days from a to b (b - a),
// counted in a's location. DST shifts do not affect the result.
func DaysBetween(a, b time.Time) int {
	loc := a.Location()
	ay, am, ad := a.Date()
	by, bm, bd := b.In(loc).Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// StartOfISOWeek returns Monday 00:00 of t's ISO week.
func StartOfISOWeek(t time.Time) time.Time {
	day := StartOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// EndOfISOWeek returns the last instant of Sunday of t's ISO week.
func EndOfISOWeek(t time.Time) time.Time {
	return StartOfISOWeek(t).AddDate(0, 0, 7).Add(-time.Nanosecond)
}

// SameISOWeek reports whether a and b fall in the same Monday-start week,
// evaluated in a's location.
func SameISOWeek(a, b time.Time) bool {
	ay, aw := a.ISOWeek()
	by, bw := b.In(a.Location()).ISOWeek()
	return ay == by && aw == bw
}

// Window is an inclusive [Start, End] time range.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// ThisWeek returns [Monday 00:00, now].
func ThisWeek(now time.Time) Window {
	return Window{Start: StartOfISOWeek(now), End: now}
}

// LastWeek returns the full ISO week before now's week.
func LastWeek(now time.Time) Window {
	start := StartOfISOWeek(now).AddDate(0, 0, -7)
	return Window{Start: start, End: EndOfISOWeek(start)}
}

// ISOWeek returns the full ISO week containing t.
func ISOWeek(t time.Time) Window {
	return Window{Start: StartOfISOWeek(t), End: EndOfISOWeek(t)}
}

// ParseClock parses "HH:MM" and anchors it to day's date and location.
func ParseClock(day time.Time, clock string) (time.Time, bool) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, false
	}
	d := StartOfDay(day)
	return d.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute), true
}
