package schedule

import (
	"testing"
	"time"

	"github.com/yungbote/studypulse-backend/internal/domain/study"
)

var day = time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func iv(h1, m1, h2, m2 int) Interval {
	return Interval{Start: at(h1, m1), End: at(h2, m2)}
}

func TestMerge(t *testing.T) {
	got := Merge([]Interval{iv(13, 0, 14, 0), iv(9, 0, 10, 0), iv(9, 30, 11, 0), iv(11, 0, 11, 30), iv(6, 0, 8, 30)}, at(8, 0), at(22, 0))
	want := []Interval{iv(8, 0, 8, 30), iv(9, 0, 11, 30), iv(13, 0, 14, 0)}
	if len(got) != len(want) {
		t.Fatalf("Merge=%v, want %v", got, want)
	}
	for i := range want {
		if !got[i].Start.Equal(want[i].Start) || !got[i].End.Equal(want[i].End) {
			t.Fatalf("Merge[%d]=%v, want %v", i, got[i], want[i])
		}
	}
}

func TestFreeWindows(t *testing.T) {
	busy := []Interval{iv(8, 0, 9, 0), iv(12, 0, 12, 20), iv(12, 30, 22, 0)}
	got := FreeWindows(busy, at(8, 0), at(22, 0), 25)
	if len(got) != 1 || !got[0].Start.Equal(at(9, 0)) || !got[0].End.Equal(at(12, 0)) {
		t.Fatalf("FreeWindows=%v", got)
	}
}

func TestSuggest(t *testing.T) {
	pref := iv(9, 0, 10, 0)
	cases := []struct {
		name   string
		req    Request
		start  time.Time
		mins   int
		reason Reason
		conf   float64
	}{
		{
			name:   "preferred_window",
			req:    Request{DayStart: at(9, 0), DayEnd: at(12, 0), MinMinutes: 25, Preferred: &pref},
			start:  at(9, 0),
			mins:   25,
			reason: ReasonPreferredWindow,
			conf:   0.9,
		},
		{
			name:   "urgent_takes_earliest",
			req:    Request{DayStart: at(8, 0), DayEnd: at(22, 0), Busy: []Interval{iv(8, 0, 9, 30), iv(10, 0, 18, 0)}, MinMinutes: 25, UrgentCount: 2},
			start:  at(9, 30),
			mins:   25,
			reason: ReasonBeforeDeadline,
			conf:   0.8,
		},
		{
			name:   "largest_gap",
			req:    Request{DayStart: at(8, 0), DayEnd: at(22, 0), Busy: []Interval{iv(8, 0, 9, 30), iv(10, 0, 18, 0)}, MinMinutes: 25},
			start:  at(18, 0),
			mins:   25,
			reason: ReasonLargestGap,
			conf:   0.7,
		},
		{
			name:   "largest_gap_at_15_is_labelled_fallback",
			req:    Request{DayStart: at(8, 0), DayEnd: at(9, 0), Busy: []Interval{iv(8, 20, 9, 0)}, MinMinutes: 15},
			start:  at(8, 0),
			mins:   15,
			reason: ReasonFallback15,
			conf:   0.7,
		},
		{
			name:   "fallback_15",
			req:    Request{DayStart: at(8, 0), DayEnd: at(9, 0), Busy: []Interval{iv(8, 20, 8, 30)}, MinMinutes: 45},
			start:  at(8, 30),
			mins:   15,
			reason: ReasonFallback15,
			conf:   0.6,
		},
		{
			name:   "preferred_blocked_falls_through",
			req:    Request{DayStart: at(9, 0), DayEnd: at(12, 0), Busy: []Interval{iv(9, 30, 9, 40)}, MinMinutes: 25, Preferred: &pref},
			start:  at(9, 40),
			mins:   25,
			reason: ReasonLargestGap,
			conf:   0.7,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Suggest(tc.req)
			if got == nil {
				t.Fatalf("Suggest returned nil")
			}
			if !got.Start.Equal(tc.start) || got.Minutes != tc.mins || got.Reason != tc.reason || got.Confidence != tc.conf {
				t.Fatalf("Suggest=%+v, want start=%v mins=%d reason=%s conf=%v", got, tc.start, tc.mins, tc.reason, tc.conf)
			}
		})
	}
}

func TestSuggestNoRoom(t *testing.T) {
	req := Request{DayStart: at(8, 0), DayEnd: at(9, 0), Busy: []Interval{iv(8, 10, 8, 50)}, MinMinutes: 25}
	if got := Suggest(req); got != nil {
		t.Fatalf("Suggest=%+v, want nil", got)
	}
	if got := Suggest(Request{DayStart: at(9, 0), DayEnd: at(9, 0)}); got != nil {
		t.Fatalf("empty day should give nil")
	}
}

func TestBusyFromRecordsAndUrgent(t *testing.T) {
	end := at(11, 0)
	events := []study.PersonalEvent{
		{Start: at(9, 0), End: at(10, 0)},
		{Start: day.AddDate(0, 0, -2), End: day.AddDate(0, 0, -1)},
	}
	sessions := []study.FocusSession{
		{StartTime: at(10, 30), EndTime: &end},
		{StartTime: at(14, 0), Duration: 25},
	}
	busy := BusyFromRecords(events, sessions, at(12, 0))
	if len(busy) != 3 {
		t.Fatalf("BusyFromRecords=%v", busy)
	}
	if !busy[2].End.Equal(at(14, 25)) {
		t.Fatalf("open session end=%v", busy[2].End)
	}

	now := at(12, 0)
	deadlines := []study.SchoolDeadline{
		{Status: study.DeadlineOnTrack, Deadline: now.Add(24 * time.Hour)},
		{Status: study.DeadlineAtRisk, Deadline: now.Add(48 * time.Hour)},
		{Status: study.DeadlineCompleted, Deadline: now.Add(time.Hour)},
		{Status: study.DeadlineOnTrack, Deadline: now.Add(72 * time.Hour)},
		{Status: study.DeadlineOnTrack, Deadline: now.Add(-time.Hour)},
	}
	if got := UrgentCount(deadlines, now, UrgentHorizon); got != 2 {
		t.Fatalf("UrgentCount=%d, want 2", got)
	}
}

func TestRequestFor(t *testing.T) {
	prefs := study.Preferences{PreferredStart: "09:00", PreferredEnd: "10:00", StudyWindowStart: "bad"}
	req := RequestFor(at(15, 0), prefs, nil, 0)
	if !req.DayStart.Equal(at(8, 0)) || !req.DayEnd.Equal(at(22, 0)) || req.MinMinutes != 25 {
		t.Fatalf("RequestFor=%+v", req)
	}
	if req.Preferred == nil || !req.Preferred.Start.Equal(at(9, 0)) {
		t.Fatalf("preferred=%v", req.Preferred)
	}
}
