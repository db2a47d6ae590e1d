package rollover

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yungbote/studypulse-backend/internal/observability"
	"github.com/yungbote/studypulse-backend/internal/platform/logger"
)

type fakeRefresher struct {
	calls atomic.Int32
	n     int
	err   error
	panic bool
}

func (f *fakeRefresher) RefreshAll(ctx context.Context) (int, error) {
	f.calls.Add(1)
	if f.panic {
		panic("boom")
	}
	return f.n, f.err
}

func TestRunOnce(t *testing.T) {
	cases := []struct {
		name    string
		r       *fakeRefresher
		wantN   int
		wantErr bool
	}{
		{"ok", &fakeRefresher{n: 3}, 3, false},
		{"error", &fakeRefresher{n: 1, err: errors.New("db down")}, 1, true},
		{"panic", &fakeRefresher{panic: true}, 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := New(logger.Nop(), tc.r, "", time.UTC, observability.New())
			n, err := s.RunOnce(context.Background())
			if n != tc.wantN || (err != nil) != tc.wantErr {
				t.Fatalf("RunOnce()=(%d,%v), want (%d, err=%v)", n, err, tc.wantN, tc.wantErr)
			}
		})
	}
}

func TestStartRejectsBadSpec(t *testing.T) {
	s := New(logger.Nop(), &fakeRefresher{}, "not a spec", time.UTC, nil)
	if err := s.Start(context.Background()); err == nil {
		t.Fatalf("Start with bad spec succeeded")
	}
}

func TestStartAndStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := &fakeRefresher{}
	s := New(logger.Nop(), r, "@every 1h", time.UTC, nil)
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Start(ctx); err == nil {
		t.Fatalf("second Start succeeded")
	}
	s.Stop()
	s.Stop()
	if got := r.calls.Load(); got != 0 {
		t.Fatalf("refresher called %d times, want 0", got)
	}
}
