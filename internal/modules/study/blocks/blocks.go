// Package blocks aggregates assessments per block (course term).
package blocks

import (
	"math"
	"sort"
	"strings"

	"github.com/yungbote/studypulse-backend/internal/domain/study"
)

func blockOf(a study.Assessment) (string, bool) {
	if a.BlockID == nil {
		return "", false
	}
	id := strings.TrimSpace(*a.BlockID)
	return id, id != ""
}

// IDs lists distinct block ids in descending lexical order so the most
// recent looking block comes first. Assessments without a block are skipped.
func IDs(items []study.Assessment) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, a := range items {
		id, ok := blockOf(a)
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out
}

// Summarize counts statuses for one block.
func Summarize(items []study.Assessment, blockID string) study.BlockProgress {
	p := study.BlockProgress{BlockID: blockID}
	for _, a := range items {
		if id, ok := blockOf(a); !ok || id != blockID {
			continue
		}
		p.Total++
		switch a.Status {
		case study.AssessmentPassed:
			p.Passed++
		case study.AssessmentFailed:
			p.Failed++
		default:
			p.Pending++
		}
	}
	if p.Total > 0 {
		p.PercentPassed = int(math.Round(float64(p.Passed) / float64(p.Total) * 100))
	}
	return p
}

// SummarizeAll returns one summary per block, in IDs order.
func SummarizeAll(items []study.Assessment) []study.BlockProgress {
	ids := IDs(items)
	out := make([]study.BlockProgress, 0, len(ids))
	for _, id := range ids {
		out = append(out, Summarize(items, id))
	}
	return out
}

// Todo returns the block's assessments that are not passed, sorted by item
// name.
func Todo(items []study.Assessment, blockID string) []study.Assessment {
	out := []study.Assessment{}
	for _, a := range items {
		if id, ok := blockOf(a); !ok || id != blockID {
			continue
		}
		if a.Status == study.AssessmentPassed {
			continue
		}
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Item) < strings.ToLower(out[j].Item)
	})
	return out
}
