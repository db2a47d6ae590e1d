// Package snapshot decodes and validates persisted progress blobs before
// they reach the engines. A blob that fails to decode or validate is
// dropped and reported, so the pipeline regenerates it from scratch.
package snapshot

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"gorm.io/datatypes"

	"github.com/yungbote/studypulse-backend/internal/domain/study"
	"github.com/yungbote/studypulse-backend/internal/modules/study/pipeline"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Problem names a blob that was rejected and why.
type Problem struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (p Problem) String() string { return p.Field + ": " + p.Reason }

type Decoded struct {
	State       pipeline.State
	Preferences study.Preferences
	Problems    []Problem
}

func empty(raw datatypes.JSON) bool {
	s := string(raw)
	return len(raw) == 0 || s == "null" || s == "{}"
}

// Decode turns a stored UserProgress into pipeline state. Missing blobs are
// left at their zero value; invalid ones are dropped with a Problem.
func Decode(p study.UserProgress) Decoded {
	d := Decoded{
		State:       pipeline.State{TotalXP: p.TotalXP},
		Preferences: study.DefaultPreferences(),
	}
	if p.TotalXP < 0 {
		d.State.TotalXP = 0
		d.Problems = append(d.Problems, Problem{Field: "total_xp", Reason: "negative"})
	}

	if !empty(p.Objectives) {
		var v study.DailyObjectivesState
		if err := decodeStruct(p.Objectives, &v); err != nil {
			d.Problems = append(d.Problems, Problem{Field: "objectives", Reason: err.Error()})
		} else {
			d.State.Objectives = v
		}
	}
	if !empty(p.Challenge) {
		var v study.WeeklyChallenge
		if err := decodeStruct(p.Challenge, &v); err != nil {
			d.Problems = append(d.Problems, Problem{Field: "challenge", Reason: err.Error()})
		} else {
			d.State.Challenge = v
		}
	}
	if !empty(p.ObjectiveHistory) {
		var v []study.DayCompletion
		if err := json.Unmarshal(p.ObjectiveHistory, &v); err != nil {
			d.Problems = append(d.Problems, Problem{Field: "objective_history", Reason: err.Error()})
		} else if err := validate.Var(v, "dive"); err != nil {
			d.Problems = append(d.Problems, Problem{Field: "objective_history", Reason: err.Error()})
		} else {
			d.State.History = v
		}
	}
	if !empty(p.Preferences) {
		var v study.Preferences
		if err := decodeStruct(p.Preferences, &v); err != nil {
			d.Problems = append(d.Problems, Problem{Field: "preferences", Reason: err.Error()})
		} else {
			d.Preferences = MergePreferences(d.Preferences, v)
		}
	}
	return d
}

func decodeStruct(raw datatypes.JSON, out any) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if err := validate.Struct(out); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	return nil
}

// ValidatePreferences checks user-supplied preferences at the API boundary.
func ValidatePreferences(p study.Preferences) error {
	return validate.Struct(p)
}

// MergePreferences overlays the set fields of override on base.
func MergePreferences(base, override study.Preferences) study.Preferences {
	if override.StudyWindowStart != "" {
		base.StudyWindowStart = override.StudyWindowStart
	}
	if override.StudyWindowEnd != "" {
		base.StudyWindowEnd = override.StudyWindowEnd
	}
	if override.PreferredStart != "" {
		base.PreferredStart = override.PreferredStart
	}
	if override.PreferredEnd != "" {
		base.PreferredEnd = override.PreferredEnd
	}
	if override.FocusMinutes > 0 {
		base.FocusMinutes = override.FocusMinutes
	}
	return base
}

// Encode writes state back onto p. Preferences are stored as given.
func Encode(p *study.UserProgress, s pipeline.State, prefs *study.Preferences) error {
	obj, err := json.Marshal(s.Objectives)
	if err != nil {
		return fmt.Errorf("encode objectives: %w", err)
	}
	ch, err := json.Marshal(s.Challenge)
	if err != nil {
		return fmt.Errorf("encode challenge: %w", err)
	}
	hist := s.History
	if hist == nil {
		hist = []study.DayCompletion{}
	}
	h, err := json.Marshal(hist)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	p.TotalXP = s.TotalXP
	p.Objectives = datatypes.JSON(obj)
	p.Challenge = datatypes.JSON(ch)
	p.ObjectiveHistory = datatypes.JSON(h)
	if prefs != nil {
		raw, err := json.Marshal(prefs)
		if err != nil {
			return fmt.Errorf("encode preferences: %w", err)
		}
		p.Preferences = datatypes.JSON(raw)
	}
	return nil
}
