package study

import "errors"

var (
	// ErrInvalidTransition is returned for a backward or unknown status change.
	ErrInvalidTransition = errors.New("invalid status transition")
)

type ImportErrorKind string

const (
	ImportNoVEvent       ImportErrorKind = "NO_VEVENT"
	ImportParseFailure   ImportErrorKind = "PARSE_FAILURE"
	ImportEmptyInput     ImportErrorKind = "EMPTY_INPUT"
	ImportMissingColumns ImportErrorKind = "MISSING_COLUMNS"
)

// ImportError is returned as a value by the parsers, never raised.
type ImportError struct {
	Kind    ImportErrorKind `json:"kind"`
	Details []string        `json:"details,omitempty"`
}

func (e *ImportError) Error() string {
	if e == nil {
		return ""
	}
	if len(e.Details) == 0 {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Details[0]
}
