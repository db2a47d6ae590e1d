package observability

import (
	"bytes"
	"context"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestParseHeaders(t *testing.T) {
	cases := []struct {
		in   string
		want map[string]string
	}{
		{"", nil},
		{"a=1", map[string]string{"a": "1"}},
		{" a = 1 , b=2,broken,=x,c=", map[string]string{"a": "1", "b": "2"}},
	}
	for _, tc := range cases {
		if got := ParseHeaders(tc.in); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("ParseHeaders(%q)=%v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestClampRatio(t *testing.T) {
	cases := map[float64]float64{0: 0.1, -1: 0, 2: 1, 0.5: 0.5}
	for in, want := range cases {
		if got := clampRatio(in); got != want {
			t.Fatalf("clampRatio(%v)=%v, want %v", in, got, want)
		}
	}
}

func TestInitOTelDisabledIsNoop(t *testing.T) {
	shutdown := InitOTel(context.Background(), nil, OtelConfig{})
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestMetricsExposition(t *testing.T) {
	m := New()
	m.ObserveAPI("GET", "/api/dashboard", "200", 30*time.Millisecond)
	m.ObserveAPI("GET", "/api/dashboard", "200", 2*time.Second)
	m.IncTransition("level_up")
	m.IncImport("csv", "ok")
	m.APIInflightInc()
	m.APIInflightDec()

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`sp_api_requests_total{method="GET",route="/api/dashboard",status="200"} 2`,
		`sp_api_request_duration_seconds_bucket{method="GET",route="/api/dashboard",le="0.05"} 1`,
		`sp_api_request_duration_seconds_bucket{method="GET",route="/api/dashboard",le="+Inf"} 2`,
		`sp_progress_transitions_total{kind="level_up"} 1`,
		`sp_imports_total{format="csv",outcome="ok"} 1`,
		`sp_api_inflight_requests 0`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("exposition missing %q:\n%s", want, out)
		}
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/", "200", time.Millisecond)
	m.IncTransition("x")
	m.IncRollover("ok")
	if err := m.WritePrometheus(&bytes.Buffer{}); err != nil {
		t.Fatalf("WritePrometheus on nil: %v", err)
	}
}

func TestLabelEscaping(t *testing.T) {
	got := labelString([]string{"a", "b"}, []string{`x"y`})
	want := `{a="x\"y",b="unknown"}`
	if got != want {
		t.Fatalf("labelString=%q, want %q", got, want)
	}
}
