package grades

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/studypulse-backend/internal/domain/study"
)

const (
	UnknownCourse = "Unknown course"

	WarningNoItems       = "no_items_detected"
	WarningOrphanStatus  = "status_without_item"
	WarningNoCourseFound = "no_course_marker"
)

type ParsedRow struct {
	Course string                 `json:"course"`
	Item   string                 `json:"item"`
	Status study.AssessmentStatus `json:"status"`
}

type PDFResult struct {
	Rows     []ParsedRow        `json:"rows"`
	Warnings []string           `json:"warnings"`
	Error    *study.ImportError `json:"error,omitempty"`
}

var noisePrefixes = []string{"progress summary", "page", "printed", "date", "brightspace"}

var (
	courseMarker = regexp.MustCompile(`(?i)^(course|cursus)\s*:\s*(.+)$`)
	pageNumber   = regexp.MustCompile(`^\d+(\s*(/|of|van)\s*\d+)?$`)
	statusPrefix = regexp.MustCompile(`(?i)^status\s*:\s*`)
)

// statusTokens is ordered so negative phrases match before the positive
// words they contain.
var statusTokens = []struct {
	token  string
	status study.AssessmentStatus
}{
	{"niet voldaan", study.AssessmentFailed},
	{"not passed", study.AssessmentFailed},
	{"failed", study.AssessmentFailed},
	{"voldaan", study.AssessmentPassed},
	{"passed", study.AssessmentPassed},
}

func normalizeLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func isNoise(line string) bool {
	lower := strings.ToLower(line)
	for _, p := range noisePrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return pageNumber.MatchString(line)
}

// matchStatus reports the status when the whole line is a status token.
func matchStatus(line string) (study.AssessmentStatus, bool) {
	lower := strings.ToLower(statusPrefix.ReplaceAllString(line, ""))
	for _, st := range statusTokens {
		if lower == st.token {
			return st.status, true
		}
	}
	return "", false
}

// splitStatusSuffix handles item lines that end in a status token, such as
// "Essay 1 Voldaan".
func splitStatusSuffix(line string) (string, study.AssessmentStatus, bool) {
	lower := strings.ToLower(line)
	for _, st := range statusTokens {
		if !strings.HasSuffix(lower, " "+st.token) {
			continue
		}
		item := strings.TrimSpace(line[:len(line)-len(st.token)])
		item = strings.TrimSpace(strings.TrimSuffix(strings.TrimSuffix(item, ":"), "-"))
		if item == "" {
			return "", "", false
		}
		return item, st.status, true
	}
	return "", "", false
}

// ParseProgressSummary reads the text of a progress summary line by line.
// A course marker sets the course for following items. A status line closes
// the buffered item. A new item line flushes the previous one as pending.
func ParseProgressSummary(text string) PDFResult {
	res := PDFResult{Rows: []ParsedRow{}, Warnings: []string{}}
	if strings.TrimSpace(text) == "" {
		res.Error = &study.ImportError{Kind: study.ImportEmptyInput, Details: []string{"no text extracted"}}
		res.Warnings = append(res.Warnings, WarningNoItems)
		return res
	}

	course := ""
	sawCourse := false
	pending := ""
	orphans := 0

	emit := func(item string, status study.AssessmentStatus) {
		c := course
		if c == "" {
			c = UnknownCourse
		}
		res.Rows = append(res.Rows, ParsedRow{Course: c, Item: item, Status: status})
	}
	flush := func() {
		if pending != "" {
			emit(pending, study.AssessmentPending)
			pending = ""
		}
	}

	for _, raw := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line := normalizeLine(raw)
		if len(line) < 2 || isNoise(line) {
			continue
		}
		if m := courseMarker.FindStringSubmatch(line); m != nil {
			flush()
			course = strings.TrimSpace(m[2])
			sawCourse = true
			continue
		}
		if st, ok := matchStatus(line); ok {
			if pending == "" {
				orphans++
				continue
			}
			emit(pending, st)
			pending = ""
			continue
		}
		if item, st, ok := splitStatusSuffix(line); ok {
			flush()
			emit(item, st)
			continue
		}
		flush()
		pending = line
	}
	flush()

	if len(res.Rows) == 0 {
		res.Warnings = append(res.Warnings, WarningNoItems)
	}
	if orphans > 0 {
		res.Warnings = append(res.Warnings, WarningOrphanStatus)
	}
	if !sawCourse && len(res.Rows) > 0 {
		res.Warnings = append(res.Warnings, WarningNoCourseFound)
	}
	return res
}

// ToAssessments converts parsed rows into unscored assessments.
func ToAssessments(userID uuid.UUID, rows []ParsedRow) []study.Assessment {
	out := make([]study.Assessment, 0, len(rows))
	keys := study.ImportKeys{}
	for _, r := range rows {
		out = append(out, study.Assessment{
			ID:     study.ImportID(userID, "pdf", keys.Next(SlugifyCourse(r.Course)+"|"+r.Item)),
			UserID: userID,
			Course: r.Course,
			Item:   r.Item,
			Status: r.Status,
			Source: study.AssessmentSourcePDF,
		})
	}
	return out
}
