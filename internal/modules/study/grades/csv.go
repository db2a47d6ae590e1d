// Package grades parses grade exports (CSV and extracted PDF text) into
// assessments and summarizes them per course.
package grades

import "strings"

// ParseCSV splits text into rows of trimmed fields. Comma and semicolon are
// both field separators outside quotes. Quoted fields may contain either
// separator, newlines and "" for a literal quote. Blank lines are skipped.
func ParseCSV(text string) [][]string {
	rows := [][]string{}
	var (
		row      []string
		field    strings.Builder
		inQuotes bool
	)
	endField := func() {
		row = append(row, strings.TrimSpace(field.String()))
		field.Reset()
	}
	endRow := func() {
		endField()
		if !blank(row) {
			rows = append(rows, row)
		}
		row = nil
	}

	text = strings.TrimPrefix(text, "\ufeff")
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inQuotes {
			switch {
			case c == '"' && i+1 < len(text) && text[i+1] == '"':
				field.WriteByte('"')
				i++
			case c == '"':
				inQuotes = false
			default:
				field.WriteByte(c)
			}
			continue
		}
		switch c {
		case '"':
			inQuotes = true
		case ',', ';':
			endField()
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			endRow()
		case '\n':
			endRow()
		default:
			field.WriteByte(c)
		}
	}
	if field.Len() > 0 || len(row) > 0 {
		endRow()
	}
	return rows
}

func blank(row []string) bool {
	for _, f := range row {
		if f != "" {
			return false
		}
	}
	return true
}
