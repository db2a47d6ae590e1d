package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yungbote/studypulse-backend/internal/platform/logger"
)

// Metrics holds the process counters served at /metrics. Every method is a
// no-op on a nil receiver so callers never need to check for it.
type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge

	transitions *CounterVec
	imports     *CounterVec
	rollovers   *CounterVec

	redisUp   *Gauge
	redisPing *Gauge
}

var (
	initOnce sync.Once
	instance *Metrics
)

// Init returns the process metrics, or nil when enabled is false.
func Init(enabled bool) *Metrics {
	if !enabled {
		return nil
	}
	initOnce.Do(func() { instance = New() })
	return instance
}

// New builds an unregistered set of metrics, e.g. for tests.
func New() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("sp_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"sp_api_request_duration_seconds",
			"API request latency in seconds by method/route.",
			[]string{"method", "route"},
			[]float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		),
		apiInflight: NewGauge("sp_api_inflight_requests", "In-flight API requests."),
		transitions: NewCounterVec("sp_progress_transitions_total", "Progress transitions by kind.", []string{"kind"}),
		imports:     NewCounterVec("sp_imports_total", "Imports by format and outcome.", []string{"format", "outcome"}),
		rollovers:   NewCounterVec("sp_rollover_runs_total", "Scheduled rollover runs by outcome.", []string{"outcome"}),
		redisUp:     NewGauge("sp_redis_up", "1 when the last redis ping succeeded."),
		redisPing:   NewGauge("sp_redis_ping_seconds", "Latency of the last redis ping."),
	}
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route)
}

func (m *Metrics) APIInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Add(1)
}

func (m *Metrics) APIInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Add(-1)
}

func (m *Metrics) IncTransition(kind string) {
	if m == nil {
		return
	}
	m.transitions.Inc(kind)
}

func (m *Metrics) IncImport(format, outcome string) {
	if m == nil {
		return
	}
	m.imports.Inc(format, outcome)
}

func (m *Metrics) IncRollover(outcome string) {
	if m == nil {
		return
	}
	m.rollovers.Inc(outcome)
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	writers := []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests,
		m.apiLatency,
		m.apiInflight,
		m.transitions,
		m.imports,
		m.rollovers,
		m.redisUp,
		m.redisPing,
	}
	for _, mw := range writers {
		if err := mw.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

// StartRedisCollector pings addr every interval until ctx is done.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, addr string, interval time.Duration) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				_ = rdb.Close()
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}
