package grades

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/yungbote/studypulse-backend/internal/domain/study"
)

// ColumnMapping holds header indexes. Optional columns are -1 when absent.
type ColumnMapping struct {
	Course int `json:"course"`
	Item   int `json:"item"`
	Score  int `json:"score"`
	Weight int `json:"weight"`
	Date   int `json:"date"`
	Status int `json:"status"`
	Block  int `json:"block"`
}

var synonyms = map[string][]string{
	"course": {"course", "vak", "cursus", "module", "subject", "coursename", "vaknaam"},
	"item":   {"item", "assessment", "toets", "onderdeel", "opdracht", "test", "name", "naam", "title", "titel"},
	"score":  {"score", "grade", "cijfer", "result", "resultaat", "mark"},
	"weight": {"weight", "weging", "gewicht", "weighting", "percentage"},
	"date":   {"date", "datum"},
	"status": {"status"},
	"block":  {"block", "blok", "period", "periode", "term"},
}

var dateLayouts = []string{"2006-01-02", "02-01-2006", "02/01/2006", "2006/01/02"}

// normalizeHeader lowercases and drops all whitespace.
func normalizeHeader(h string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, h)
}

func find(headers []string, field string) int {
	for i, h := range headers {
		n := normalizeHeader(h)
		for _, s := range synonyms[field] {
			if n == s {
				return i
			}
		}
	}
	return -1
}

// GuessMapping matches headers against known English and Dutch names. It
// returns nil when course, item or score cannot be found.
func GuessMapping(headers []string) *ColumnMapping {
	m := &ColumnMapping{
		Course: find(headers, "course"),
		Item:   find(headers, "item"),
		Score:  find(headers, "score"),
		Weight: find(headers, "weight"),
		Date:   find(headers, "date"),
		Status: find(headers, "status"),
		Block:  find(headers, "block"),
	}
	if m.Course < 0 || m.Item < 0 || m.Score < 0 {
		return nil
	}
	return m
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// ParseNumber accepts comma or dot decimals. "", "null" and non-finite
// values such as "NaN" or "Inf" are nil.
func ParseNumber(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "null" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// ParseStatus maps "passed" and "failed"; everything else is pending.
func ParseStatus(s string) study.AssessmentStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "passed":
		return study.AssessmentPassed
	case "failed":
		return study.AssessmentFailed
	default:
		return study.AssessmentPending
	}
}

func parseDate(s string) *time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// MapRowsToAssessments converts data rows (header excluded). Rows without a
// course or item are skipped.
func MapRowsToAssessments(userID uuid.UUID, rows [][]string, m ColumnMapping) []study.Assessment {
	out := []study.Assessment{}
	keys := study.ImportKeys{}
	for _, row := range rows {
		course := cell(row, m.Course)
		item := cell(row, m.Item)
		if course == "" || item == "" {
			continue
		}
		a := study.Assessment{
			UserID: userID,
			Course: course,
			Item:   item,
			Score:  ParseNumber(cell(row, m.Score)),
			Weight: ParseNumber(cell(row, m.Weight)),
			Date:   parseDate(cell(row, m.Date)),
			Status: ParseStatus(cell(row, m.Status)),
			Source: study.AssessmentSourceCSV,
		}
		if b := cell(row, m.Block); b != "" {
			a.BlockID = &b
		}
		a.ID = study.ImportID(userID, "csv", keys.Next(SlugifyCourse(course)+"|"+item))
		out = append(out, a)
	}
	return out
}

// ImportCSV runs the whole CSV path: tokenize, map headers, convert rows.
// Returned errors are EMPTY_INPUT or MISSING_COLUMNS.
func ImportCSV(userID uuid.UUID, text string) ([]study.Assessment, *ColumnMapping, *study.ImportError) {
	rows := ParseCSV(text)
	if len(rows) == 0 {
		return nil, nil, &study.ImportError{Kind: study.ImportEmptyInput, Details: []string{"no rows"}}
	}
	m := GuessMapping(rows[0])
	if m == nil {
		return nil, nil, &study.ImportError{
			Kind:    study.ImportMissingColumns,
			Details: []string{"need course, item and score columns", "headers: " + strings.Join(rows[0], ", ")},
		}
	}
	return MapRowsToAssessments(userID, rows[1:], *m), m, nil
}
