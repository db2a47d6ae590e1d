package objectives

import (
	"errors"
	"testing"
	"time"

	"github.com/yungbote/studypulse-backend/internal/domain/study"
)

var now = time.Date(2025, 3, 12, 9, 30, 0, 0, time.UTC)

func TestGenerate(t *testing.T) {
	s := Generate(now, "")
	if len(s.Objectives) != 3 {
		t.Fatalf("got %d objectives, want 3", len(s.Objectives))
	}
	if !s.Date.Equal(time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("date=%v", s.Date)
	}
	if s.MomentumMode != study.ModeStable || s.AllCompleted || s.BonusXPAwarded {
		t.Fatalf("unexpected fresh state %+v", s)
	}
}

func TestIsStaleUsesCalendarDays(t *testing.T) {
	cases := []struct {
		name  string
		date  time.Time
		at    time.Time
		stale bool
	}{
		{"same_day", now, now.Add(10 * time.Hour), false},
		{"just_after_midnight", time.Date(2025, 3, 12, 23, 59, 0, 0, time.UTC), time.Date(2025, 3, 13, 0, 1, 0, 0, time.UTC), true},
		{"over_24h_same_day_start", time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC), time.Date(2025, 3, 12, 23, 59, 0, 0, time.UTC), false},
		{"zero", time.Time{}, now, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := study.DailyObjectivesState{Date: tc.date}
			if got := IsStale(s, tc.at); got != tc.stale {
				t.Fatalf("IsStale=%v, want %v", got, tc.stale)
			}
		})
	}
}

func TestProgressAndBonusOnce(t *testing.T) {
	s := Generate(now, study.ModeStable)
	logs := []study.StudyLog{
		{Date: now, Minutes: 30},
		{Date: now.Add(time.Hour), Minutes: 20},
		{Date: now.AddDate(0, 0, -1), Minutes: 500},
	}
	sessions := []study.FocusSession{
		{StartTime: now, Completed: true},
		{StartTime: now.Add(time.Hour), Completed: true},
		{StartTime: now.Add(2 * time.Hour), Completed: false},
	}

	got, bonus := Progress(s, logs, sessions)
	if bonus != 0 || got.AllCompleted {
		t.Fatalf("deadline review must stay manual: bonus=%d state=%+v", bonus, got)
	}
	if got.Objectives[0].Current != 2 || got.Objectives[1].Current != 50 {
		t.Fatalf("objectives=%+v", got.Objectives)
	}
	if s.Objectives[0].Current != 0 {
		t.Fatalf("input state mutated")
	}

	got, err := MarkComplete(got, study.ObjectiveDeadlineReview)
	if err != nil {
		t.Fatalf("MarkComplete: %v", err)
	}
	got, bonus = Progress(got, logs, sessions)
	if bonus != BonusXP || !got.AllCompleted || !got.BonusXPAwarded {
		t.Fatalf("bonus=%d state=%+v", bonus, got)
	}
	again, bonus := Progress(got, logs, sessions)
	if bonus != 0 || !again.BonusXPAwarded {
		t.Fatalf("bonus awarded twice: %d", bonus)
	}
}

func TestMarkCompleteRejectsAutomatic(t *testing.T) {
	s := Generate(now, "")
	if _, err := MarkComplete(s, study.ObjectiveFocusSessions); !errors.Is(err, ErrNotManual) {
		t.Fatalf("err=%v, want ErrNotManual", err)
	}
	if _, err := MarkComplete(s, "bogus"); !errors.Is(err, ErrUnknownObjective) {
		t.Fatalf("err=%v, want ErrUnknownObjective", err)
	}
}

func TestMode(t *testing.T) {
	day := func(n int, rate float64) study.DayCompletion {
		return study.DayCompletion{Date: now.AddDate(0, 0, -n), Rate: rate}
	}
	third, twoThirds := 1.0/3, 2.0/3
	cases := []struct {
		name    string
		history []study.DayCompletion
		want    study.MomentumMode
	}{
		{"empty", nil, study.ModeStable},
		{"recovery", []study.DayCompletion{day(1, 0), day(2, third), day(3, third)}, study.ModeRecovery},
		{"performance", []study.DayCompletion{day(1, 1), day(2, 1), day(3, twoThirds)}, study.ModePerformance},
		{"stable", []study.DayCompletion{day(1, twoThirds), day(2, twoThirds), day(3, twoThirds)}, study.ModeStable},
		{"only_recent_three", []study.DayCompletion{day(1, 1), day(2, 1), day(3, 1), day(4, 0), day(5, 0)}, study.ModePerformance},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Mode(tc.history); got != tc.want {
				t.Fatalf("Mode=%q, want %q", got, tc.want)
			}
		})
	}
}

func TestRollover(t *testing.T) {
	yesterday := Generate(now.AddDate(0, 0, -1), study.ModeStable)
	yesterday.Objectives[0].Completed = true

	next, hist, rolled := Rollover(yesterday, nil, now)
	if !rolled {
		t.Fatalf("expected rollover")
	}
	if len(hist) != 1 || hist[0].Rate != 1.0/3 {
		t.Fatalf("history=%+v", hist)
	}
	if next.MomentumMode != study.ModeRecovery {
		t.Fatalf("mode=%q, want recovery", next.MomentumMode)
	}
	if !IsStale(yesterday, now) || IsStale(next, now) {
		t.Fatalf("staleness wrong after rollover")
	}

	same, hist2, rolled := Rollover(next, hist, now)
	if rolled || len(hist2) != 1 || !same.Date.Equal(next.Date) {
		t.Fatalf("second rollover on same day changed state")
	}
}
