package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/studypulse-backend/internal/domain/study"
)

var now = time.Date(2024, 3, 6, 10, 0, 0, 0, time.UTC)

func decode(t *testing.T, buf *bytes.Buffer) map[string]json.RawMessage {
	t.Helper()
	var out map[string]json.RawMessage
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	return out
}

func TestRunImportICS(t *testing.T) {
	ics := "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//test//EN\r\n" +
		"BEGIN:VEVENT\r\nUID:quiz-1\r\nDTSTAMP:20240101T000000Z\r\nDTSTART:20240307T090000Z\r\nSUMMARY:Quiz chemistry\r\nEND:VEVENT\r\n" +
		"END:VCALENDAR\r\n"
	var buf bytes.Buffer
	if err := runImport(&buf, "ics", []byte(ics), uuid.New(), true, now); err != nil {
		t.Fatalf("runImport(ics): %v", err)
	}
	out := decode(t, &buf)
	var deadlines []study.SchoolDeadline
	if err := json.Unmarshal(out["deadlines"], &deadlines); err != nil || len(deadlines) != 1 {
		t.Fatalf("deadlines=%s err=%v, want 1", out["deadlines"], err)
	}
	if _, ok := out["error"]; ok {
		t.Fatalf("unexpected error field: %s", out["error"])
	}
}

func TestRunImportICSWithoutEvents(t *testing.T) {
	var buf bytes.Buffer
	err := runImport(&buf, "ics", []byte("BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//test//EN\r\nEND:VCALENDAR\r\n"), uuid.Nil, false, now)
	var impErr *study.ImportError
	if !errors.As(err, &impErr) || impErr.Kind != study.ImportNoVEvent {
		t.Fatalf("runImport(empty calendar) err=%v, want NO_VEVENT", err)
	}
	if _, ok := decode(t, &buf)["error"]; !ok {
		t.Fatalf("error not printed: %s", buf.String())
	}
}

func TestRunImportCSV(t *testing.T) {
	var buf bytes.Buffer
	text := "Course;Item;Score;Block\nMath;Exam 1;7;B1\nMath;Exam 2;;B1\n"
	if err := runImport(&buf, "csv", []byte(text), uuid.Nil, true, now); err != nil {
		t.Fatalf("runImport(csv): %v", err)
	}
	out := decode(t, &buf)
	var items []study.Assessment
	if err := json.Unmarshal(out["assessments"], &items); err != nil || len(items) != 2 {
		t.Fatalf("assessments=%s err=%v, want 2", out["assessments"], err)
	}
	var summaries []struct {
		Predicted *float64 `json:"predicted"`
	}
	if err := json.Unmarshal(out["summaries"], &summaries); err != nil || len(summaries) != 1 {
		t.Fatalf("summaries=%s err=%v", out["summaries"], err)
	}
	if p := summaries[0].Predicted; p == nil || *p != 7 {
		t.Fatalf("predicted=%v, want 7", p)
	}

	buf.Reset()
	err := runImport(&buf, "csv", []byte("Foo,Bar\n1,2\n"), uuid.Nil, false, now)
	var impErr *study.ImportError
	if !errors.As(err, &impErr) || impErr.Kind != study.ImportMissingColumns {
		t.Fatalf("runImport(bad header) err=%v, want MISSING_COLUMNS", err)
	}
}

func TestRunImportPDFText(t *testing.T) {
	var buf bytes.Buffer
	text := "Course: Statistics\nAssignment 1\nPassed\nAssignment 2\nNot passed\n"
	if err := runImport(&buf, "pdf", []byte(text), uuid.Nil, true, now); err != nil {
		t.Fatalf("runImport(pdf text): %v", err)
	}
	out := decode(t, &buf)
	var rows []struct {
		Course string `json:"course"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(out["rows"], &rows); err != nil || len(rows) != 2 {
		t.Fatalf("rows=%s err=%v, want 2", out["rows"], err)
	}
	if rows[0].Course != "Statistics" || rows[0].Status != string(study.AssessmentPassed) || rows[1].Status != string(study.AssessmentFailed) {
		t.Fatalf("rows=%+v", rows)
	}
}

func TestRunImportErrors(t *testing.T) {
	var buf bytes.Buffer
	if err := runImport(&buf, "xlsx", []byte("x"), uuid.Nil, false, now); err == nil {
		t.Fatalf("runImport(xlsx) succeeded, want error")
	}
	if err := runImport(&buf, "pdf", []byte("%PDF-1.4 truncated"), uuid.Nil, false, now); err == nil {
		t.Fatalf("runImport(broken pdf) succeeded, want error")
	}
}
