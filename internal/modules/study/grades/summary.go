package grades

import (
	"math"
	"regexp"
	"strings"

	"github.com/yungbote/studypulse-backend/internal/domain/study"
)

const (
	DefaultTarget = 5.5

	// percentWeightAbove marks a course's weights as percentages when the
	// largest one exceeds it.
	percentWeightAbove = 1.5
)

type Summary struct {
	Course    string   `json:"course"`
	Slug      string   `json:"slug"`
	Predicted *float64 `json:"predicted"`
	Required  *float64 `json:"required"`
	Target    float64  `json:"target"`
	Count     int      `json:"count"`
	Graded    int      `json:"graded"`
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

// CalculateGradeSummaries summarizes assessments per course in first-seen
// order. Predicted is the weighted average of scored items. Required is the
// average needed on the unscored weight to reach target; it is nil when
// nothing is scored or nothing remains. target <= 0 means DefaultTarget.
func CalculateGradeSummaries(items []study.Assessment, target float64) []Summary {
	if target <= 0 {
		target = DefaultTarget
	}
	order := []string{}
	byCourse := map[string][]study.Assessment{}
	for _, a := range items {
		if _, ok := byCourse[a.Course]; !ok {
			order = append(order, a.Course)
		}
		byCourse[a.Course] = append(byCourse[a.Course], a)
	}

	out := make([]Summary, 0, len(order))
	for _, course := range order {
		out = append(out, summarize(course, byCourse[course], target))
	}
	return out
}

func summarize(course string, items []study.Assessment, target float64) Summary {
	maxWeight := 0.0
	for _, a := range items {
		maxWeight = math.Max(maxWeight, a.EffectiveWeight())
	}
	scale := 1.0
	if maxWeight > percentWeightAbove {
		scale = 100
	}

	var total, done, doneWeighted, remaining float64
	graded := 0
	for _, a := range items {
		w := a.EffectiveWeight() / scale
		total += w
		if !a.Scored() {
			remaining += w
			continue
		}
		graded++
		done += w
		doneWeighted += *a.Score * w
	}

	s := Summary{Course: course, Slug: SlugifyCourse(course), Target: target, Count: len(items), Graded: graded}
	if done > 0 {
		p := round2(doneWeighted / done)
		s.Predicted = &p
		if remaining > 0 {
			r := round2((target*total - doneWeighted) / remaining)
			s.Required = &r
		}
	}
	return s
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// SlugifyCourse lowercases, collapses runs of other characters into one
// hyphen and trims hyphens at both ends.
func SlugifyCourse(course string) string {
	s := nonAlnum.ReplaceAllString(strings.ToLower(course), "-")
	return strings.Trim(s, "-")
}
