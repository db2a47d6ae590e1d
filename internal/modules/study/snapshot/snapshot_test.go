package snapshot

import (
	"testing"
	"time"

	"gorm.io/datatypes"

	"github.com/yungbote/studypulse-backend/internal/domain/study"
	"github.com/yungbote/studypulse-backend/internal/modules/study/challenge"
	"github.com/yungbote/studypulse-backend/internal/modules/study/objectives"
	"github.com/yungbote/studypulse-backend/internal/modules/study/pipeline"
)

var now = time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)

func TestEncodeDecodeKeepsState(t *testing.T) {
	s := pipeline.State{
		TotalXP:    240,
		Objectives: objectives.Generate(now, study.ModePerformance),
		Challenge:  challenge.New(now),
		History:    []study.DayCompletion{{Date: now.AddDate(0, 0, -1), Rate: 1}},
	}
	prefs := study.Preferences{PreferredStart: "09:00", PreferredEnd: "10:30", FocusMinutes: 50}
	var p study.UserProgress
	if err := Encode(&p, s, &prefs); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	d := Decode(p)
	if len(d.Problems) != 0 {
		t.Fatalf("problems=%v", d.Problems)
	}
	if d.State.TotalXP != 240 || d.State.Objectives.MomentumMode != study.ModePerformance || len(d.State.History) != 1 {
		t.Fatalf("state=%+v", d.State)
	}
	if !d.State.Challenge.WeekStart.Equal(s.Challenge.WeekStart) {
		t.Fatalf("week start=%v", d.State.Challenge.WeekStart)
	}
	if d.Preferences.FocusMinutes != 50 || d.Preferences.StudyWindowStart != "08:00" {
		t.Fatalf("prefs=%+v", d.Preferences)
	}
}

func TestDecodeRejectsInvalidBlobs(t *testing.T) {
	cases := []struct {
		name  string
		p     study.UserProgress
		field string
	}{
		{"malformed_json", study.UserProgress{Objectives: datatypes.JSON(`{"date":`)}, "objectives"},
		{"missing_date", study.UserProgress{Objectives: datatypes.JSON(`{"objectives":[{"type":"focus_sessions","target":2}]}`)}, "objectives"},
		{"bad_objective_type", study.UserProgress{Objectives: datatypes.JSON(`{"date":"2025-03-12T00:00:00Z","objectives":[{"type":"nap","target":2}]}`)}, "objectives"},
		{"bad_challenge_type", study.UserProgress{Challenge: datatypes.JSON(`{"type":"pushups","target":5,"week_start":"2025-03-10T00:00:00Z"}`)}, "challenge"},
		{"zero_target", study.UserProgress{Challenge: datatypes.JSON(`{"type":"focus_sessions","target":0,"week_start":"2025-03-10T00:00:00Z"}`)}, "challenge"},
		{"rate_out_of_range", study.UserProgress{ObjectiveHistory: datatypes.JSON(`[{"date":"2025-03-11T00:00:00Z","rate":3}]`)}, "objective_history"},
		{"bad_clock", study.UserProgress{Preferences: datatypes.JSON(`{"preferred_start":"9am"}`)}, "preferences"},
		{"negative_xp", study.UserProgress{TotalXP: -5}, "total_xp"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Decode(tc.p)
			if len(d.Problems) != 1 || d.Problems[0].Field != tc.field {
				t.Fatalf("problems=%v, want one for %s", d.Problems, tc.field)
			}
		})
	}
}

func TestDecodeEmptyBlobs(t *testing.T) {
	d := Decode(study.UserProgress{Objectives: datatypes.JSON("null"), Challenge: datatypes.JSON("{}")})
	if len(d.Problems) != 0 {
		t.Fatalf("problems=%v", d.Problems)
	}
	if !d.State.Objectives.Date.IsZero() || d.Preferences != study.DefaultPreferences() {
		t.Fatalf("decoded=%+v", d)
	}
}
