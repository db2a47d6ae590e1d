// Package xp converts cumulative experience points into levels.
//
// The cost of reaching level N from N-1 is floor(BaseXP * Multiplier^(N-2))
// for N >= 2. Level 1 is free. Every function here is pure: callers own the
// one-time side effects of a level-up.
package xp

import (
	"math"

	"github.com/yungbote/studypulse-backend/internal/domain/study"
)

const (
	BaseXP     = 100
	Multiplier = 1.15

	// maxLevel bounds the level walk; the cost curve passes MaxInt long
	// before this.
	maxLevel = 10000
)

// LevelCost returns the XP needed to go from level-1 to level.
func LevelCost(level int) int {
	if level < 2 {
		return 0
	}
	return int(math.Floor(BaseXP * math.Pow(Multiplier, float64(level-2))))
}

// CalculateLevel returns the highest level reachable with totalXP.
func CalculateLevel(totalXP int) int {
	level, _ := walk(totalXP)
	return level
}

func walk(totalXP int) (level, remaining int) {
	level, remaining = 1, totalXP
	if remaining < 0 {
		remaining = 0
	}
	for level < maxLevel {
		cost := LevelCost(level + 1)
		if cost > remaining {
			break
		}
		remaining -= cost
		level++
	}
	return level, remaining
}

// State derives the full XP view from a total.
func State(totalXP int) study.XPState {
	if totalXP < 0 {
		totalXP = 0
	}
	level, remaining := walk(totalXP)
	return study.XPState{
		TotalXP:           totalXP,
		Level:             level,
		XPForCurrentLevel: remaining,
		XPForNextLevel:    LevelCost(level + 1),
	}
}

// Progress returns the fraction (0..1) of the way to the next level.
func Progress(s study.XPState) float64 {
	if s.XPForNextLevel <= 0 {
		return 0
	}
	return float64(s.XPForCurrentLevel) / float64(s.XPForNextLevel)
}

type AwardResult struct {
	State        study.XPState `json:"state"`
	Previous     study.XPState `json:"previous"`
	LeveledUp    bool          `json:"leveled_up"`
	LevelsGained int           `json:"levels_gained"`
}

// Award adds amount to totalXP. Non-positive amounts leave the total
// unchanged so totals never decrease outside Reset.
func Award(totalXP, amount int) AwardResult {
	prev := State(totalXP)
	next := prev
	if amount > 0 {
		next = State(prev.TotalXP + amount)
	}
	return AwardResult{
		State:        next,
		Previous:     prev,
		LeveledUp:    next.Level > prev.Level,
		LevelsGained: next.Level - prev.Level,
	}
}

// Reset is the only operation allowed to lower the total.
func Reset() study.XPState {
	return State(0)
}
