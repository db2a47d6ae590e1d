// Package streak derives consecutive-study-day streaks from study logs.
package streak

import (
	"sort"
	"time"

	"github.com/yungbote/studypulse-backend/internal/domain/study"
	"github.com/yungbote/studypulse-backend/internal/modules/study/timeutil"
)

// StudyDays collapses logs into unique local calendar days (in now's
// location), most recent first. Days after now are ignored.
func StudyDays(logs []study.StudyLog, now time.Time) []time.Time {
	loc := now.Location()
	today := timeutil.StartOfDay(now)
	seen := make(map[time.Time]struct{}, len(logs))
	days := make([]time.Time, 0, len(logs))
	for _, l := range logs {
		d := timeutil.DayKey(l.Date, loc)
		if d.After(today) {
			continue
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })
	return days
}

// Calculate returns the current and longest streak as of now.
func Calculate(logs []study.StudyLog, now time.Time) study.StreakState {
	days := StudyDays(logs, now)
	if len(days) == 0 {
		return study.StreakState{}
	}
	last := days[0]
	state := study.StreakState{LastStudyDate: &last}

	// the chain is only alive if the most recent day is today or yesterday
	if timeutil.DaysBetween(last, now) <= 1 {
		state.CurrentStreak = 1
		for i := 1; i < len(days); i++ {
			if timeutil.DaysBetween(days[i], days[i-1]) != 1 {
				break
			}
			state.CurrentStreak++
		}
	}

	state.LongestStreak = longestRun(days)
	if state.CurrentStreak > state.LongestStreak {
		state.LongestStreak = state.CurrentStreak
	}
	return state
}

func longestRun(days []time.Time) int {
	if len(days) == 0 {
		return 0
	}
	best, run := 1, 1
	for i := 1; i < len(days); i++ {
		if timeutil.DaysBetween(days[i], days[i-1]) == 1 {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
	}
	return best
}

// AsOf computes the streak as it stood at the end of the given instant,
// ignoring logs recorded afterwards.
func AsOf(logs []study.StudyLog, at time.Time) study.StreakState {
	filtered := make([]study.StudyLog, 0, len(logs))
	for _, l := range logs {
		if !l.Date.After(at) {
			filtered = append(filtered, l)
		}
	}
	return Calculate(filtered, at)
}
