package calendar

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/studypulse-backend/internal/domain/study"
)

var now = time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)

func stamp(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

func vevent(uid, summary, description, dtstart string) string {
	var b strings.Builder
	b.WriteString("BEGIN:VEVENT\r\n")
	fmt.Fprintf(&b, "UID:%s\r\n", uid)
	b.WriteString("DTSTAMP:20250101T000000Z\r\n")
	if dtstart != "" {
		fmt.Fprintf(&b, "DTSTART%s\r\n", dtstart)
	}
	if summary != "" {
		fmt.Fprintf(&b, "SUMMARY:%s\r\n", summary)
	}
	if description != "" {
		fmt.Fprintf(&b, "DESCRIPTION:%s\r\n", description)
	}
	b.WriteString("END:VEVENT\r\n")
	return b.String()
}

func calendar(events ...string) string {
	return "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//test//EN\r\n" + strings.Join(events, "") + "END:VCALENDAR\r\n"
}

func TestParseNoVEvent(t *testing.T) {
	res := Parse(calendar(), now)
	if res.Error == nil || res.Error.Kind != study.ImportNoVEvent {
		t.Fatalf("error=%v, want NO_VEVENT", res.Error)
	}
	if len(res.Events) != 0 {
		t.Fatalf("events=%d, want 0", len(res.Events))
	}
}

func TestParseGarbageIsParseFailure(t *testing.T) {
	res := Parse("this is not a calendar", now)
	if res.Error == nil || res.Error.Kind != study.ImportParseFailure {
		t.Fatalf("error=%v, want PARSE_FAILURE", res.Error)
	}
	if len(res.Error.Details) == 0 {
		t.Fatalf("expected parser diagnostics")
	}
}

func TestParseWindowAndCounts(t *testing.T) {
	text := calendar(
		vevent("a", "Lecture", "", ":"+stamp(now.Add(24*time.Hour))),
		vevent("b", "Old thing", "", ":"+stamp(now.Add(-15*24*time.Hour))),
		vevent("c", "Far thing", "", ":"+stamp(now.Add(121*24*time.Hour))),
		vevent("d", "No start", "", ""),
		vevent("e", "Bad start", "", ":notadate"),
		vevent("f", "Edge past", "", ":"+stamp(now.Add(-14*24*time.Hour))),
	)
	res := Parse(text, now)
	if res.Error != nil {
		t.Fatalf("unexpected error %v", res.Error)
	}
	d := res.Debug
	if d.VeventCount != 6 || d.PastDroppedCount != 1 || d.OutOfRangeCount != 1 || d.InvalidDates != 2 {
		t.Fatalf("debug=%+v", d)
	}
	if len(res.Events) != d.KeptTotal || d.KeptTotal != 2 {
		t.Fatalf("events=%d kept=%d", len(res.Events), d.KeptTotal)
	}
	if d.VeventCount < len(res.Events) {
		t.Fatalf("vevent count below kept events")
	}
	if got := res.Events[0].End.Sub(res.Events[0].Start); got != time.Hour {
		t.Fatalf("default end offset=%v, want 1h", got)
	}
}

func TestParseAllFilteredReportsParseFailure(t *testing.T) {
	text := calendar(vevent("old", "Old", "", ":"+stamp(now.AddDate(0, -2, 0))))
	res := Parse(text, now)
	if res.Error == nil || res.Error.Kind != study.ImportParseFailure {
		t.Fatalf("error=%v, want PARSE_FAILURE", res.Error)
	}
	if res.Debug.PastDroppedCount != 1 || res.Debug.VeventCount != 1 {
		t.Fatalf("debug=%+v", res.Debug)
	}
}

func TestParseAllDayAndTitleFallback(t *testing.T) {
	day := now.AddDate(0, 0, 3).Format("20060102")
	text := calendar(
		vevent("x", "", `Hand in essay\nsecond line`, ";VALUE=DATE:"+day),
		vevent("y", "", "", ":"+stamp(now.Add(time.Hour))),
	)
	res := Parse(text, now)
	if len(res.Events) != 2 {
		t.Fatalf("events=%+v err=%v", res.Events, res.Error)
	}
	ad := res.Events[0]
	if !ad.AllDay || ad.Title != "Hand in essay" {
		t.Fatalf("all-day event=%+v", ad)
	}
	if got := ad.End.Sub(ad.Start); got != 24*time.Hour {
		t.Fatalf("all-day duration=%v", got)
	}
	if ad.Start.Location() != time.UTC {
		t.Fatalf("floating date not anchored to now's location: %v", ad.Start.Location())
	}
	if res.Events[1].Title != UntitledEvent {
		t.Fatalf("title=%q, want placeholder", res.Events[1].Title)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		ev   Event
		want Kind
	}{
		{"timed_keyword", Event{Title: "Statistics exam"}, KindDeadline},
		{"dutch_keyword", Event{Title: "Inleveren verslag"}, KindDeadline},
		{"description_keyword", Event{Title: "Week 3", Description: "Submission portal closes"}, KindDeadline},
		{"all_day_without_due", Event{Title: "Tentamenweek", AllDay: true}, KindPersonal},
		{"all_day_with_due", Event{Title: "Essay due", AllDay: true}, KindDeadline},
		{"no_keyword", Event{Title: "Football practice"}, KindPersonal},
		// timed events with a keyword count as deadlines
		{"review_session", Event{Title: "Quiz review session"}, KindDeadline},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.ev); got != tc.want {
				t.Fatalf("Classify(%q)=%q, want %q", tc.ev.Title, got, tc.want)
			}
		})
	}
}

func TestToRecords(t *testing.T) {
	user := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	loc := "Room 1"
	events := []Event{
		{UID: "soon", Title: "Quiz", Start: now.Add(24 * time.Hour), Kind: KindDeadline},
		{UID: "later", Title: "Exam", Start: now.Add(96 * time.Hour), Kind: KindDeadline},
		{UID: "gym", Title: "Gym", Start: now, End: now.Add(time.Hour), Location: loc, Kind: KindPersonal},
	}
	deadlines, personal := ToRecords(user, events, now)
	if len(deadlines) != 2 || len(personal) != 1 {
		t.Fatalf("deadlines=%d personal=%d", len(deadlines), len(personal))
	}
	if deadlines[0].Status != study.DeadlineAtRisk || deadlines[1].Status != study.DeadlineOnTrack {
		t.Fatalf("statuses=%s,%s", deadlines[0].Status, deadlines[1].Status)
	}
	if deadlines[0].Source != study.DeadlineSourceLTI || deadlines[0].XP != ImportedDeadlineXP {
		t.Fatalf("deadline=%+v", deadlines[0])
	}
	if personal[0].Source != study.EventSourceICS || personal[0].Location == nil || *personal[0].Location != loc {
		t.Fatalf("personal=%+v", personal[0])
	}
	again, _ := ToRecords(user, events, now)
	if again[0].ID != deadlines[0].ID {
		t.Fatalf("ids not stable across imports")
	}
}

func TestRecurrenceOverridesKeepDistinctIDs(t *testing.T) {
	base := now.Add(48 * time.Hour)
	override := strings.Replace(
		vevent("lab-1", "Lab deadline", "", ":"+stamp(base.Add(7*24*time.Hour))),
		"END:VEVENT", "RECURRENCE-ID:"+stamp(base.Add(7*24*time.Hour))+"\r\nEND:VEVENT", 1)
	res := Parse(calendar(vevent("lab-1", "Lab deadline", "", ":"+stamp(base)), override), now)
	if res.Error != nil || len(res.Events) != 2 {
		t.Fatalf("events=%d err=%v, want 2", len(res.Events), res.Error)
	}
	if res.Events[0].RecurrenceID != "" || res.Events[1].RecurrenceID == "" {
		t.Fatalf("recurrence ids=%q,%q", res.Events[0].RecurrenceID, res.Events[1].RecurrenceID)
	}
}

func TestToRecordsDuplicateKeys(t *testing.T) {
	user := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	events := []Event{
		{UID: "lab-1", Title: "Lab", Start: now.Add(72 * time.Hour), Kind: KindDeadline},
		{UID: "lab-1", RecurrenceID: "20250322T120000Z", Title: "Lab", Start: now.Add(240 * time.Hour), Kind: KindDeadline},
		{UID: "lab-1", Title: "Lab resubmit", Start: now.Add(300 * time.Hour), Kind: KindDeadline},
	}
	deadlines, _ := ToRecords(user, events, now)
	seen := map[uuid.UUID]bool{}
	for _, d := range deadlines {
		if seen[d.ID] {
			t.Fatalf("duplicate id %s in %+v", d.ID, deadlines)
		}
		seen[d.ID] = true
	}
	if want := study.ImportID(user, "ics-deadline", "lab-1"); deadlines[0].ID != want {
		t.Fatalf("first id=%s, want %s", deadlines[0].ID, want)
	}
}
