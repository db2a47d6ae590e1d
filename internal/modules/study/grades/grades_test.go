package grades

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/studypulse-backend/internal/domain/study"
)

var user = uuid.MustParse("00000000-0000-0000-0000-000000000001")

func f(v float64) *float64 { return &v }

func TestParseCSV(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want [][]string
	}{
		{"comma", "a,b,c\n1,2,3\n", [][]string{{"a", "b", "c"}, {"1", "2", "3"}}},
		{"semicolon_crlf", "a;b\r\n1;2", [][]string{{"a", "b"}, {"1", "2"}}},
		{"escaped_quote", `"say ""hi""",x`, [][]string{{`say "hi"`, "x"}}},
		{"quoted_delimiters", `"8,5";"a;b"`, [][]string{{"8,5", "a;b"}}},
		{"blank_lines", "a,b\n\n  \n,\n1,2\n", [][]string{{"a", "b"}, {"1", "2"}}},
		{"quoted_newline", "\"line1\nline2\",z", [][]string{{"line1\nline2", "z"}}},
		{"trims", " a , b ", [][]string{{"a", "b"}}},
		{"empty", "", [][]string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParseCSV(tc.in); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("ParseCSV(%q)=%q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestGuessMapping(t *testing.T) {
	if m := GuessMapping([]string{"Course", "Item"}); m != nil {
		t.Fatalf("GuessMapping without score=%+v, want nil", m)
	}
	m := GuessMapping([]string{"Vak", "Toets", "Cijfer", "Weging", "Datum", "Blok"})
	if m == nil {
		t.Fatalf("GuessMapping(dutch)=nil")
	}
	want := ColumnMapping{Course: 0, Item: 1, Score: 2, Weight: 3, Date: 4, Status: -1, Block: 5}
	if *m != want {
		t.Fatalf("GuessMapping=%+v, want %+v", *m, want)
	}
	if m := GuessMapping([]string{" Course Name ", "TITLE", "Grade"}); m == nil || m.Course != 0 {
		t.Fatalf("whitespace in headers not normalized: %+v", m)
	}
}

func TestMapRowsToAssessments(t *testing.T) {
	m := ColumnMapping{Course: 0, Item: 1, Score: 2, Weight: 3, Date: 4, Status: 5, Block: 6}
	rows := [][]string{
		{"Math", "Test1", "8,5", "50", "2025-01-20", "passed", "B1"},
		{"Math", "Test2", "null", "", "", "", ""},
		{"Math", "Test3", "", "25", "20-01-2025", "FAILED", ""},
		{"", "orphan", "7", "", "", "", ""},
		{"Math", "Short"},
		{"Math", "Test4", "NaN", "Inf", "", "", ""},
		{"Math", "Test5", "+Inf", "-inf", "", "", ""},
	}
	got := MapRowsToAssessments(user, rows, m)
	if len(got) != 6 {
		t.Fatalf("got %d assessments, want 6", len(got))
	}
	for _, a := range got[4:] {
		if a.Score != nil || a.Weight != nil {
			t.Fatalf("%s: score=%v weight=%v, want nil for non-finite cells", a.Item, a.Score, a.Weight)
		}
	}
	if got[0].Score == nil || *got[0].Score != 8.5 {
		t.Fatalf("score=%v, want 8.5", got[0].Score)
	}
	if got[0].Status != study.AssessmentPassed || got[0].BlockID == nil || *got[0].BlockID != "B1" || got[0].Date == nil {
		t.Fatalf("row0=%+v", got[0])
	}
	if got[1].Score != nil || got[1].Weight != nil || got[1].Status != study.AssessmentPending {
		t.Fatalf("row1=%+v", got[1])
	}
	if got[2].Status != study.AssessmentFailed || got[2].Date == nil {
		t.Fatalf("row2=%+v", got[2])
	}
	if got[0].Source != study.AssessmentSourceCSV || got[0].ID == got[1].ID {
		t.Fatalf("ids/source wrong: %+v", got[0])
	}
}

func TestCalculateGradeSummaries(t *testing.T) {
	items := []study.Assessment{
		{Course: "Math", Score: f(8), Weight: f(50)},
		{Course: "Math", Score: f(6), Weight: f(50)},
	}
	got := CalculateGradeSummaries(items, 0)
	if len(got) != 1 || got[0].Course != "Math" {
		t.Fatalf("summaries=%+v", got)
	}
	if got[0].Predicted == nil || *got[0].Predicted != 7 {
		t.Fatalf("predicted=%v, want 7", got[0].Predicted)
	}
	if got[0].Required != nil {
		t.Fatalf("required=%v, want nil with no remaining weight", *got[0].Required)
	}

	items = []study.Assessment{
		{Course: "Math", Score: f(8), Weight: f(50)},
		{Course: "Math", Weight: f(50)},
	}
	got = CalculateGradeSummaries(items, 6.0)
	if got[0].Required == nil || *got[0].Required != 4 {
		t.Fatalf("required=%v, want 4", got[0].Required)
	}
}

func TestCalculateGradeSummariesFractionalAndUngraded(t *testing.T) {
	items := []study.Assessment{
		{Course: "Bio", Score: f(5), Weight: f(0.25)},
		{Course: "Bio", Weight: f(0.75)},
		{Course: "Art"},
	}
	got := CalculateGradeSummaries(items, 0)
	if len(got) != 2 || got[0].Course != "Bio" || got[1].Course != "Art" {
		t.Fatalf("order=%+v", got)
	}
	// (5.5*1 - 1.25) / 0.75
	if got[0].Required == nil || *got[0].Required != 5.67 {
		t.Fatalf("required=%v, want 5.67", got[0].Required)
	}
	if got[1].Predicted != nil || got[1].Required != nil {
		t.Fatalf("ungraded course should have nil predicted and required: %+v", got[1])
	}
}

func TestImportCSVScenario(t *testing.T) {
	text := "Course,Item,Score,Weight\nMath,Test1,8,50\nMath,Test2,6,50\n"
	items, m, ierr := ImportCSV(user, text)
	if ierr != nil || m == nil {
		t.Fatalf("ImportCSV error=%v", ierr)
	}
	sums := CalculateGradeSummaries(items, 0)
	if len(sums) != 1 || sums[0].Course != "Math" || *sums[0].Predicted != 7 || sums[0].Required != nil {
		t.Fatalf("summaries=%+v", sums)
	}

	if _, _, ierr := ImportCSV(user, "Course,Item\nMath,Test1\n"); ierr == nil || ierr.Kind != study.ImportMissingColumns {
		t.Fatalf("err=%v, want MISSING_COLUMNS", ierr)
	}
	if _, _, ierr := ImportCSV(user, "\n\n"); ierr == nil || ierr.Kind != study.ImportEmptyInput {
		t.Fatalf("err=%v, want EMPTY_INPUT", ierr)
	}
}

func TestImportCSVNonFiniteScore(t *testing.T) {
	items, _, ierr := ImportCSV(user, "Course,Item,Score,Weight\nMath,Test1,NaN,50\nMath,Test2,8,50\n")
	if ierr != nil || len(items) != 2 {
		t.Fatalf("ImportCSV items=%d err=%v, want 2 rows", len(items), ierr)
	}
	sums := CalculateGradeSummaries(items, 0)
	if len(sums) != 1 || sums[0].Predicted == nil || *sums[0].Predicted != 8 {
		t.Fatalf("summaries=%+v, want predicted 8", sums)
	}
	if sums[0].Required == nil || *sums[0].Required != 3 {
		t.Fatalf("required=%v, want 3", sums[0].Required)
	}
	if _, err := json.Marshal(sums); err != nil {
		t.Fatalf("json.Marshal(summaries): %v", err)
	}

	// Rows stored before parsing rejected non-finite numbers.
	stored := []study.Assessment{
		{Course: "Math", Score: f(math.NaN()), Weight: f(math.Inf(1))},
		{Course: "Math", Score: f(6), Weight: f(1)},
	}
	sums = CalculateGradeSummaries(stored, 0)
	if p := sums[0].Predicted; p == nil || *p != 6 {
		t.Fatalf("predicted=%v, want 6", p)
	}
	if _, err := json.Marshal(sums); err != nil {
		t.Fatalf("json.Marshal(stored summaries): %v", err)
	}
}

func TestDuplicateItemsGetDistinctIDs(t *testing.T) {
	items, _, ierr := ImportCSV(user, "Course,Item,Score\nMath,Tentamen,4\nMath,Tentamen,6.5\nBio,Tentamen,7\n")
	if ierr != nil || len(items) != 3 {
		t.Fatalf("ImportCSV items=%d err=%v", len(items), ierr)
	}
	if items[0].ID == items[1].ID || items[0].ID == items[2].ID {
		t.Fatalf("ids collide: %s %s %s", items[0].ID, items[1].ID, items[2].ID)
	}
	if want := study.ImportID(user, "csv", "math", "Tentamen"); items[0].ID != want {
		t.Fatalf("first id=%s, want %s", items[0].ID, want)
	}

	pdf := ToAssessments(user, []ParsedRow{
		{Course: "Statistics", Item: "Assignment 1", Status: study.AssessmentFailed},
		{Course: "Statistics", Item: "Assignment 1", Status: study.AssessmentPassed},
	})
	if pdf[0].ID == pdf[1].ID {
		t.Fatalf("pdf ids collide: %s", pdf[0].ID)
	}
}

func TestSlugifyCourse(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Math", "math"},
		{"  Intro to C++ (2024) ", "intro-to-c-2024"},
		{"Biologie & Chemie", "biologie-chemie"},
		{"---", ""},
	}
	for _, tc := range cases {
		if got := SlugifyCourse(tc.in); got != tc.want {
			t.Fatalf("SlugifyCourse(%q)=%q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseProgressSummary(t *testing.T) {
	text := `Progress Summary
Printed on 12-03-2025
Course: Statistics 1
Assignment   1
Voldaan
Assignment 2
Niet voldaan
Final exam
Cursus: Biology
Lab report Passed
Status: not passed
Poster
Page 2 of 3
2 / 3
`
	res := ParseProgressSummary(text)
	want := []ParsedRow{
		{Course: "Statistics 1", Item: "Assignment 1", Status: study.AssessmentPassed},
		{Course: "Statistics 1", Item: "Assignment 2", Status: study.AssessmentFailed},
		{Course: "Statistics 1", Item: "Final exam", Status: study.AssessmentPending},
		{Course: "Biology", Item: "Lab report", Status: study.AssessmentPassed},
		{Course: "Biology", Item: "Poster", Status: study.AssessmentPending},
	}
	if !reflect.DeepEqual(res.Rows, want) {
		t.Fatalf("rows=%+v\nwant %+v", res.Rows, want)
	}
	if !reflect.DeepEqual(res.Warnings, []string{WarningOrphanStatus}) {
		t.Fatalf("warnings=%v", res.Warnings)
	}
}

func TestParseProgressSummaryEmpty(t *testing.T) {
	res := ParseProgressSummary("   \n ")
	if res.Error == nil || res.Error.Kind != study.ImportEmptyInput {
		t.Fatalf("error=%v, want EMPTY_INPUT", res.Error)
	}
	res = ParseProgressSummary("Progress summary\nPage 1\n")
	if res.Error != nil || len(res.Rows) != 0 {
		t.Fatalf("res=%+v", res)
	}
	if !reflect.DeepEqual(res.Warnings, []string{WarningNoItems}) {
		t.Fatalf("warnings=%v", res.Warnings)
	}
}

func TestToAssessments(t *testing.T) {
	rows := []ParsedRow{{Course: "Biology", Item: "Poster", Status: study.AssessmentPending}}
	got := ToAssessments(user, rows)
	if len(got) != 1 || got[0].Source != study.AssessmentSourcePDF || got[0].Score != nil {
		t.Fatalf("ToAssessments=%+v", got)
	}
	if again := ToAssessments(user, rows); again[0].ID != got[0].ID {
		t.Fatalf("ids not stable")
	}
}
