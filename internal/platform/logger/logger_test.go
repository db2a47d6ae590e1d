package logger

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func enableRedaction(t *testing.T) {
	t.Helper()
	redactOnce.Do(func() {})
	redactionEnabled = true
	hashSalt = ""
}

func TestSanitizeKVs(t *testing.T) {
	enableRedaction(t)
	user := uuid.MustParse("7d5c1c84-1111-2222-3333-444455556666")

	out := sanitizeKVs([]interface{}{
		"access_token", "abc",
		"user_id", user,
		"minutes", 30,
		"text", "BEGIN:VCALENDAR",
		"dangling",
	})
	if len(out) != 9 {
		t.Fatalf("len(out)=%d, want 9", len(out))
	}
	if out[1] != "[REDACTED]" {
		t.Fatalf("access_token=%v, want [REDACTED]", out[1])
	}
	hashed, _ := out[3].(string)
	if !strings.HasPrefix(hashed, "hash:") || len(hashed) != len("hash:")+12 {
		t.Fatalf("user_id=%q, want hash:<12 hex>", hashed)
	}
	if again := sanitizeKVs([]interface{}{"user_id", user.String()}); again[1] != hashed {
		t.Fatalf("hash of uuid and its string differ: %v vs %v", again[1], hashed)
	}
	if out[5] != 30 {
		t.Fatalf("minutes=%v, want 30", out[5])
	}
	if out[7] != "[15 bytes]" {
		t.Fatalf("text=%v, want [15 bytes]", out[7])
	}
	if out[8] != "dangling" {
		t.Fatalf("dangling key=%v", out[8])
	}
}

func TestSanitizeNested(t *testing.T) {
	enableRedaction(t)
	jwtLike := strings.Repeat("a", 20) + "." + strings.Repeat("b", 20) + ".sig"
	out := sanitizeKVs([]interface{}{
		"request", map[string]interface{}{"authorization": "Bearer x", "route": "/api/dashboard"},
		"header", jwtLike,
	})
	m, ok := out[1].(map[string]interface{})
	if !ok || m["authorization"] != "[REDACTED]" || m["route"] != "/api/dashboard" {
		t.Fatalf("nested=%v", out[1])
	}
	if out[3] != "[REDACTED]" {
		t.Fatalf("jwt-like value=%v, want [REDACTED]", out[3])
	}
}

func TestNewTestModeIsNop(t *testing.T) {
	log, err := New("test")
	if err != nil {
		t.Fatalf("New(test) err=%v", err)
	}
	log.Info("discarded", "k", "v")
	log.With("service", "x").Debug("discarded")
	log.Sync()
}

func TestLevelFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	if got := levelFromEnv(0); got.String() != "warn" {
		t.Fatalf("levelFromEnv()=%v, want warn", got)
	}
	t.Setenv("LOG_LEVEL", "bogus")
	if got := levelFromEnv(0); got.String() != "info" {
		t.Fatalf("levelFromEnv()=%v, want info", got)
	}
}
