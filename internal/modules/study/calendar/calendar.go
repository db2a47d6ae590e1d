// Package calendar turns ICS text into normalized events and classifies
// them as school deadlines or personal events.
package calendar

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/yungbote/studypulse-backend/internal/domain/study"
)

const (
	PastWindow   = 14 * 24 * time.Hour
	FutureWindow = 120 * 24 * time.Hour

	UntitledEvent = "Untitled event"
)

// deadlineKeywords are matched as substrings of the lowercased title and
// description, in English and Dutch.
var deadlineKeywords = []string{
	"deadline",
	"due",
	"assignment",
	"opdracht",
	"inlever",
	"quiz",
	"exam",
	"tentamen",
	"toets",
	"submission",
}

type Kind string

const (
	KindDeadline Kind = "deadline"
	KindPersonal Kind = "personal"
)

type Event struct {
	UID          string    `json:"uid,omitempty"`
	RecurrenceID string    `json:"recurrence_id,omitempty"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Location     string    `json:"location,omitempty"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	AllDay       bool      `json:"all_day"`
	Kind         Kind      `json:"kind"`
}

type Debug struct {
	VeventCount      int `json:"vevent_count"`
	InvalidDates     int `json:"invalid_dates"`
	PastDroppedCount int `json:"past_dropped_count"`
	OutOfRangeCount  int `json:"out_of_range_count"`
	KeptTotal        int `json:"kept_total"`
	DeadlineCount    int `json:"deadline_count"`
	PersonalCount    int `json:"personal_count"`
}

type Result struct {
	Events []Event            `json:"events"`
	Error  *study.ImportError `json:"error,omitempty"`
	Debug  Debug              `json:"debug"`
}

// Parse reads ICS text and keeps the events starting within
// [now-14d, now+120d]. Floating times are read in now's location. Parse
// never panics: grammar errors come back as PARSE_FAILURE.
func Parse(text string, now time.Time) (res Result) {
	res.Events = []Event{}
	defer func() {
		if r := recover(); r != nil {
			res = Result{Events: []Event{}, Debug: res.Debug, Error: &study.ImportError{
				Kind:    study.ImportParseFailure,
				Details: []string{fmt.Sprintf("parser panic: %v", r)},
			}}
		}
	}()

	cal, err := ics.ParseCalendarWithOptions(
		strings.NewReader(text),
		ics.WithUnknownPropertyHandler(ics.AcceptUnknownPropertyHandler),
	)
	if err != nil {
		res.Error = &study.ImportError{Kind: study.ImportParseFailure, Details: []string{err.Error()}}
		return res
	}

	vevents := cal.Events()
	res.Debug.VeventCount = len(vevents)
	if len(vevents) == 0 {
		res.Error = &study.ImportError{Kind: study.ImportNoVEvent, Details: []string{"no VEVENT blocks found"}}
		return res
	}

	from, to := now.Add(-PastWindow), now.Add(FutureWindow)
	for _, ve := range vevents {
		ev, ok := normalize(ve, now.Location())
		if !ok {
			res.Debug.InvalidDates++
			continue
		}
		switch {
		case ev.Start.Before(from):
			res.Debug.PastDroppedCount++
			continue
		case ev.Start.After(to):
			res.Debug.OutOfRangeCount++
			continue
		}
		ev.Kind = Classify(ev)
		if ev.Kind == KindDeadline {
			res.Debug.DeadlineCount++
		} else {
			res.Debug.PersonalCount++
		}
		res.Events = append(res.Events, ev)
	}
	res.Debug.KeptTotal = len(res.Events)

	if len(res.Events) == 0 {
		res.Error = &study.ImportError{
			Kind: study.ImportParseFailure,
			Details: []string{
				"no events within the import window",
				fmt.Sprintf("vevents=%d invalid_dates=%d past_dropped=%d out_of_range=%d",
					res.Debug.VeventCount, res.Debug.InvalidDates, res.Debug.PastDroppedCount, res.Debug.OutOfRangeCount),
			},
		}
	}
	return res
}

func normalize(ve *ics.VEvent, loc *time.Location) (Event, bool) {
	startProp := ve.GetProperty(ics.ComponentPropertyDtStart)
	if startProp == nil {
		return Event{}, false
	}
	allDay := isDateOnly(startProp)

	var start time.Time
	var err error
	if allDay {
		start, err = ve.GetAllDayStartAt()
	} else {
		start, err = ve.GetStartAt()
	}
	if err != nil {
		return Event{}, false
	}
	start = anchor(startProp, start, loc)

	var end time.Time
	if endProp := ve.GetProperty(ics.ComponentPropertyDtEnd); endProp != nil {
		var endErr error
		if isDateOnly(endProp) {
			end, endErr = ve.GetAllDayEndAt()
		} else {
			end, endErr = ve.GetEndAt()
		}
		if endErr == nil {
			end = anchor(endProp, end, loc)
		} else {
			end = time.Time{}
		}
	}
	if end.IsZero() || !end.After(start) {
		if allDay {
			end = start.AddDate(0, 0, 1)
		} else {
			end = start.Add(time.Hour)
		}
	}

	ev := Event{
		UID:          ve.Id(),
		RecurrenceID: propText(ve, ics.ComponentPropertyRecurrenceId),
		Description:  propText(ve, ics.ComponentPropertyDescription),
		Location:     propText(ve, ics.ComponentPropertyLocation),
		Start:        start,
		End:          end,
		AllDay:       allDay,
	}
	ev.Title = resolveTitle(propText(ve, ics.ComponentPropertySummary), ev.Description)
	return ev, true
}

func isDateOnly(p *ics.IANAProperty) bool {
	if v, ok := p.ICalParameters["VALUE"]; ok && len(v) > 0 && strings.EqualFold(v[0], "DATE") {
		return true
	}
	return len(strings.TrimSpace(p.Value)) == 8
}

// anchor moves floating values (no Z suffix, no TZID), which the ICS
// library reads in time.Local, onto the same wall clock in loc.
func anchor(p *ics.IANAProperty, t time.Time, loc *time.Location) time.Time {
	if _, ok := p.ICalParameters["TZID"]; ok {
		return t
	}
	if strings.HasSuffix(strings.ToUpper(strings.TrimSpace(p.Value)), "Z") {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), 0, loc)
}

func propText(ve *ics.VEvent, p ics.ComponentProperty) string {
	if prop := ve.GetProperty(p); prop != nil {
		return strings.TrimSpace(prop.Value)
	}
	return ""
}

func resolveTitle(summary, description string) string {
	if summary != "" {
		return summary
	}
	if description != "" {
		if i := strings.IndexByte(description, '\n'); i > 0 {
			return strings.TrimSpace(description[:i])
		}
		return description
	}
	return UntitledEvent
}

// Classify marks an event as a deadline when a deadline keyword appears and
// it is a due moment: the text says "due" or the event has a time of day.
func Classify(ev Event) Kind {
	text := strings.ToLower(ev.Title + " " + ev.Description)
	if !hasKeyword(text) {
		return KindPersonal
	}
	if strings.Contains(text, "due") || !ev.AllDay {
		return KindDeadline
	}
	return KindPersonal
}

func hasKeyword(text string) bool {
	for _, k := range deadlineKeywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
