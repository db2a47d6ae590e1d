// Package schedule suggests a focus-session slot for one day given the
// day's busy intervals and the user's preferences.
package schedule

import (
	"sort"
	"time"

	"github.com/yungbote/studypulse-backend/internal/domain/study"
	"github.com/yungbote/studypulse-backend/internal/modules/study/timeutil"
)

const (
	FallbackMinutes = 15

	// UrgentHorizon is how far ahead an open deadline counts as urgent.
	UrgentHorizon = 48 * time.Hour
)

type Reason string

const (
	ReasonPreferredWindow Reason = "preferred_window"
	ReasonBeforeDeadline  Reason = "before_deadline"
	ReasonLargestGap      Reason = "largest_gap"
	ReasonFallback15      Reason = "fallback_15"
)

// Interval is a half-open [Start, End) range.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (i Interval) Duration() time.Duration { return i.End.Sub(i.Start) }

func (i Interval) contains(o Interval) bool {
	return !o.Start.Before(i.Start) && !o.End.After(i.End)
}

type Request struct {
	DayStart    time.Time
	DayEnd      time.Time
	Busy        []Interval
	MinMinutes  int
	Preferred   *Interval
	UrgentCount int
}

type Suggestion struct {
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Minutes    int       `json:"minutes"`
	Confidence float64   `json:"confidence"`
	Reason     Reason    `json:"reason"`
}

// Merge clips busy intervals to [dayStart, dayEnd] and unions overlapping or
// touching ones. The input is not modified.
func Merge(busy []Interval, dayStart, dayEnd time.Time) []Interval {
	clipped := make([]Interval, 0, len(busy))
	for _, b := range busy {
		if b.Start.Before(dayStart) {
			b.Start = dayStart
		}
		if b.End.After(dayEnd) {
			b.End = dayEnd
		}
		if !b.End.After(b.Start) {
			continue
		}
		clipped = append(clipped, b)
	}
	sort.Slice(clipped, func(i, j int) bool { return clipped[i].Start.Before(clipped[j].Start) })

	merged := make([]Interval, 0, len(clipped))
	for _, b := range clipped {
		if n := len(merged); n > 0 && !b.Start.After(merged[n-1].End) {
			if b.End.After(merged[n-1].End) {
				merged[n-1].End = b.End
			}
			continue
		}
		merged = append(merged, b)
	}
	return merged
}

// Gaps returns every non-empty gap between merged busy intervals inside the
// day, including before the first and after the last.
func Gaps(merged []Interval, dayStart, dayEnd time.Time) []Interval {
	out := []Interval{}
	cursor := dayStart
	for _, b := range merged {
		if b.Start.After(cursor) {
			out = append(out, Interval{Start: cursor, End: b.Start})
		}
		if b.End.After(cursor) {
			cursor = b.End
		}
	}
	if dayEnd.After(cursor) {
		out = append(out, Interval{Start: cursor, End: dayEnd})
	}
	return out
}

// FreeWindows returns the gaps that are at least minMinutes long.
func FreeWindows(busy []Interval, dayStart, dayEnd time.Time, minMinutes int) []Interval {
	minDur := time.Duration(minMinutes) * time.Minute
	out := []Interval{}
	for _, g := range Gaps(Merge(busy, dayStart, dayEnd), dayStart, dayEnd) {
		if g.Duration() >= minDur {
			out = append(out, g)
		}
	}
	return out
}

func suggestion(start time.Time, minutes int, confidence float64, reason Reason) *Suggestion {
	return &Suggestion{
		Start:      start,
		End:        start.Add(time.Duration(minutes) * time.Minute),
		Minutes:    minutes,
		Confidence: confidence,
		Reason:     reason,
	}
}

// Suggest picks a slot. Rules apply in order: preferred window, earliest
// window when deadlines are urgent, largest gap, then a 15 minute fallback.
// It returns nil when no gap of 15 minutes exists.
func Suggest(req Request) *Suggestion {
	if !req.DayEnd.After(req.DayStart) {
		return nil
	}
	minMinutes := req.MinMinutes
	if minMinutes <= 0 {
		minMinutes = FallbackMinutes
	}
	minDur := time.Duration(minMinutes) * time.Minute

	gaps := Gaps(Merge(req.Busy, req.DayStart, req.DayEnd), req.DayStart, req.DayEnd)
	var free []Interval
	for _, g := range gaps {
		if g.Duration() >= minDur {
			free = append(free, g)
		}
	}

	if p := req.Preferred; p != nil && p.Duration() >= minDur {
		for _, w := range free {
			if w.contains(*p) {
				return suggestion(p.Start, minMinutes, 0.9, ReasonPreferredWindow)
			}
		}
	}

	if req.UrgentCount > 0 && len(free) > 0 {
		return suggestion(free[0].Start, minMinutes, 0.8, ReasonBeforeDeadline)
	}

	if len(gaps) == 0 {
		return nil
	}
	largest := gaps[0]
	for _, g := range gaps[1:] {
		if g.Duration() > largest.Duration() {
			largest = g
		}
	}
	if largest.Duration() >= minDur {
		reason := ReasonLargestGap
		if minMinutes == FallbackMinutes {
			reason = ReasonFallback15
		}
		return suggestion(largest.Start, minMinutes, 0.7, reason)
	}
	if largest.Duration() >= FallbackMinutes*time.Minute {
		return suggestion(largest.Start, FallbackMinutes, 0.6, ReasonFallback15)
	}
	return nil
}

// BusyFromRecords collects the intervals that overlap day from personal
// events and focus sessions. Sessions without an end last Duration minutes.
func BusyFromRecords(events []study.PersonalEvent, sessions []study.FocusSession, day time.Time) []Interval {
	start := timeutil.StartOfDay(day)
	end := start.AddDate(0, 0, 1)
	overlaps := func(i Interval) bool { return i.Start.Before(end) && i.End.After(start) }

	out := []Interval{}
	for _, e := range events {
		i := Interval{Start: e.Start, End: e.End}
		if overlaps(i) {
			out = append(out, i)
		}
	}
	for _, s := range sessions {
		i := Interval{Start: s.StartTime, End: s.StartTime.Add(time.Duration(s.Duration) * time.Minute)}
		if s.EndTime != nil {
			i.End = *s.EndTime
		}
		if overlaps(i) {
			out = append(out, i)
		}
	}
	return out
}

// UrgentCount counts open deadlines due within horizon after now.
func UrgentCount(deadlines []study.SchoolDeadline, now time.Time, horizon time.Duration) int {
	limit := now.Add(horizon)
	n := 0
	for _, d := range deadlines {
		if d.Active() && d.Deadline.After(now) && !d.Deadline.After(limit) {
			n++
		}
	}
	return n
}

// RequestFor builds a request for day from preferences. Unparseable clock
// values fall back to the defaults.
func RequestFor(day time.Time, prefs study.Preferences, busy []Interval, urgent int) Request {
	def := study.DefaultPreferences()
	clock := func(v, fallback string) time.Time {
		if t, ok := timeutil.ParseClock(day, v); ok {
			return t
		}
		t, _ := timeutil.ParseClock(day, fallback)
		return t
	}
	req := Request{
		DayStart:    clock(prefs.StudyWindowStart, def.StudyWindowStart),
		DayEnd:      clock(prefs.StudyWindowEnd, def.StudyWindowEnd),
		Busy:        busy,
		MinMinutes:  prefs.FocusMinutes,
		UrgentCount: urgent,
	}
	if req.MinMinutes <= 0 {
		req.MinMinutes = def.FocusMinutes
	}
	ps, okStart := timeutil.ParseClock(day, prefs.PreferredStart)
	pe, okEnd := timeutil.ParseClock(day, prefs.PreferredEnd)
	if okStart && okEnd && pe.After(ps) {
		req.Preferred = &Interval{Start: ps, End: pe}
	}
	return req
}
