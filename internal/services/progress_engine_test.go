package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"

	"github.com/yungbote/studypulse-backend/internal/modules/study/pipeline"
	"github.com/yungbote/studypulse-backend/internal/observability"
	"github.com/yungbote/studypulse-backend/internal/platform/dbctx"
	"github.com/yungbote/studypulse-backend/internal/platform/logger"
	"github.com/yungbote/studypulse-backend/internal/realtime/bus"
)

func TestConcurrentLogStudyKeepsEveryAward(t *testing.T) {
	f := newFixture(t)

	type outcome struct {
		total int
		err   error
	}
	results := make(chan outcome, 2)
	for _, minutes := range []int{30, 20} {
		go func(minutes int) {
			_, res, err := f.study.LogStudy(f.ctx, LogStudyInput{Minutes: minutes})
			results <- outcome{total: res.State.TotalXP, err: err}
		}(minutes)
	}
	highest := 0
	for i := 0; i < 2; i++ {
		o := <-results
		if o.err != nil {
			t.Fatalf("LogStudy: %v", o.err)
		}
		if o.total > highest {
			highest = o.total
		}
	}

	row, err := f.repos.Progress.GetByUserID(dbctx.Context{Ctx: f.ctx}, f.userID)
	if err != nil || row == nil {
		t.Fatalf("GetByUserID=%v err=%v", row, err)
	}
	if row.TotalXP < 50 || row.TotalXP != highest {
		t.Fatalf("TotalXP=%d (last result %d), want both awards kept", row.TotalXP, highest)
	}
}

func TestApplyCreatesLockedRowForNewUser(t *testing.T) {
	f := newFixture(t)
	user := uuid.New()
	err := f.db.WithContext(f.ctx).Transaction(func(tx *gorm.DB) error {
		_, err := f.engine.Apply(dbctx.Context{Ctx: f.ctx, Tx: tx}, user, 15, nil)
		return err
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	row, err := f.repos.Progress.GetByUserID(dbctx.Context{Ctx: f.ctx}, user)
	if err != nil || row == nil || row.TotalXP != 15 || row.CreatedAt.IsZero() {
		t.Fatalf("row=%+v err=%v, want total 15", row, err)
	}
}

func TestPublishLeavesLoggingToConsumers(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := &logger.Logger{SugaredLogger: zap.New(core).Sugar()}
	b := bus.NewMemoryBus(log)
	rec := &recorder{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := b.StartForwarder(ctx, rec.add); err != nil {
		t.Fatalf("StartForwarder: %v", err)
	}

	e := NewProgressEngine(nil, log, Repos{}, b, Settings{Metrics: observability.New()})
	e.Publish(ctx, uuid.New(), []pipeline.Transition{{Kind: pipeline.LevelUp, Level: 2}})

	if got := rec.kinds(); len(got) != 1 || got[0] != string(pipeline.LevelUp) {
		t.Fatalf("delivered=%v, want [level_up]", got)
	}
	if n := logs.FilterMessage("Progress transition").Len(); n != 0 {
		t.Fatalf("Publish logged %d transition lines, want 0", n)
	}
}
