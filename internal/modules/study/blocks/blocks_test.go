package blocks

import (
	"reflect"
	"testing"

	"github.com/yungbote/studypulse-backend/internal/domain/study"
)

func a(block, item string, status study.AssessmentStatus) study.Assessment {
	out := study.Assessment{Item: item, Status: status}
	if block != "" {
		out.BlockID = &block
	}
	return out
}

var fixture = []study.Assessment{
	a("2024-B1", "Essay", study.AssessmentPassed),
	a("2024-B1", "Quiz", study.AssessmentFailed),
	a("2024-B1", "Exam", study.AssessmentPending),
	a("2024-B2", "Lab report", study.AssessmentPending),
	a("2024-B2", "analysis", study.AssessmentFailed),
	a("2024-B2", "Poster", study.AssessmentPassed),
	a("", "Loose item", study.AssessmentFailed),
}

func TestIDsDescending(t *testing.T) {
	got := IDs(fixture)
	want := []string{"2024-B2", "2024-B1"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("IDs=%v, want %v", got, want)
	}
}

func TestSummarize(t *testing.T) {
	got := Summarize(fixture, "2024-B1")
	want := study.BlockProgress{BlockID: "2024-B1", Total: 3, Passed: 1, Failed: 1, Pending: 1, PercentPassed: 33}
	if got != want {
		t.Fatalf("Summarize=%+v, want %+v", got, want)
	}
	empty := Summarize(fixture, "missing")
	if empty.Total != 0 || empty.PercentPassed != 0 {
		t.Fatalf("empty block=%+v", empty)
	}
	if all := SummarizeAll(fixture); len(all) != 2 || all[0].BlockID != "2024-B2" {
		t.Fatalf("SummarizeAll=%+v", all)
	}
}

func TestTodoSortedByItem(t *testing.T) {
	got := Todo(fixture, "2024-B2")
	var items []string
	for _, x := range got {
		items = append(items, x.Item)
	}
	want := []string{"analysis", "Lab report"}
	if !reflect.DeepEqual(items, want) {
		t.Fatalf("Todo items=%v, want %v", items, want)
	}
}
