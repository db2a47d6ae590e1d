package calendar

import (
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/studypulse-backend/internal/domain/study"
)

const (
	ImportedDeadlineXP = 50
	AtRiskWithin       = 48 * time.Hour
)

// naturalKey is the UID, qualified by RECURRENCE-ID for an overridden
// instance of a recurring event.
func naturalKey(ev Event) string {
	switch {
	case ev.UID != "" && ev.RecurrenceID != "":
		return ev.UID + "|" + ev.RecurrenceID
	case ev.UID != "":
		return ev.UID
	}
	return ev.Title + "@" + ev.Start.UTC().Format(time.RFC3339)
}

// ToRecords converts kept events into domain records owned by userID.
// Deadlines due within 48h of now start at-risk. Ids are derived from the
// event UID so a re-import overwrites instead of duplicating. Events that
// share a key within one file still get distinct ids.
func ToRecords(userID uuid.UUID, events []Event, now time.Time) ([]study.SchoolDeadline, []study.PersonalEvent) {
	deadlines := []study.SchoolDeadline{}
	personal := []study.PersonalEvent{}
	keys := study.ImportKeys{}
	for _, ev := range events {
		key := keys.Next(naturalKey(ev))
		if ev.Kind == KindDeadline {
			status := study.DeadlineOnTrack
			if !ev.Start.After(now.Add(AtRiskWithin)) {
				status = study.DeadlineAtRisk
			}
			deadlines = append(deadlines, study.SchoolDeadline{
				ID:       study.ImportID(userID, "ics-deadline", key),
				UserID:   userID,
				Title:    ev.Title,
				Deadline: ev.Start,
				Status:   status,
				XP:       ImportedDeadlineXP,
				Source:   study.DeadlineSourceLTI,
			})
			continue
		}
		pe := study.PersonalEvent{
			ID:     study.ImportID(userID, "ics-event", key),
			UserID: userID,
			Title:  ev.Title,
			Start:  ev.Start,
			End:    ev.End,
			Source: study.EventSourceICS,
		}
		if ev.Location != "" {
			loc := ev.Location
			pe.Location = &loc
		}
		personal = append(personal, pe)
	}
	return deadlines, personal
}
