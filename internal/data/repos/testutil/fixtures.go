package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/studypulse-backend/internal/domain/study"
)

func SeedStudyLog(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, date time.Time, minutes int) *types.StudyLog {
	tb.Helper()
	l := &types.StudyLog{
		ID:        uuid.New(),
		UserID:    userID,
		Date:      date,
		Minutes:   minutes,
		XPAwarded: minutes,
	}
	if err := tx.WithContext(ctx).Create(l).Error; err != nil {
		tb.Fatalf("seed study log: %v", err)
	}
	return l
}

func SeedFocusSession(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, start time.Time, minutes int, completed bool) *types.FocusSession {
	tb.Helper()
	s := &types.FocusSession{
		ID:        uuid.New(),
		UserID:    userID,
		StartTime: start,
		Duration:  minutes,
		Completed: completed,
	}
	if completed {
		end := start.Add(time.Duration(minutes) * time.Minute)
		s.EndTime = &end
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed focus session: %v", err)
	}
	return s
}

func SeedDeadline(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, title string, due time.Time, status types.DeadlineStatus) *types.SchoolDeadline {
	tb.Helper()
	d := &types.SchoolDeadline{
		ID:       uuid.New(),
		UserID:   userID,
		Title:    title,
		Deadline: due,
		Status:   status,
		XP:       50,
		Source:   types.DeadlineSourceManual,
	}
	if err := tx.WithContext(ctx).Create(d).Error; err != nil {
		tb.Fatalf("seed deadline: %v", err)
	}
	return d
}

func SeedAssessment(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, course, item string, score *float64, status types.AssessmentStatus, blockID *string) *types.Assessment {
	tb.Helper()
	a := &types.Assessment{
		ID:      uuid.New(),
		UserID:  userID,
		Course:  course,
		Item:    item,
		Score:   score,
		Status:  status,
		BlockID: blockID,
		Source:  types.AssessmentSourceManual,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed assessment: %v", err)
	}
	return a
}
