package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync"
)

type action int

const (
	keep action = iota
	redact
	hash
	summarize
)

// keyRules are matched by substring against the lowercased key, first hit
// wins. Import bodies and study notes are personal and unbounded, so only
// their length is logged.
var keyRules = []struct {
	fragment string
	action   action
}{
	{"token", redact},
	{"authorization", redact},
	{"password", redact},
	{"secret", redact},
	{"dsn", redact},
	{"cookie", redact},
	{"api_key", redact},
	{"user_id", hash},
	{"session_id", hash},
	{"notes", summarize},
	{"text", summarize},
	{"body", summarize},
}

var (
	redactOnce       sync.Once
	redactionEnabled bool
	hashSalt         string
)

func redactionOn() bool {
	redactOnce.Do(func() {
		switch strings.ToLower(strings.TrimSpace(os.Getenv("LOG_REDACTION_ENABLED"))) {
		case "0", "false", "no", "off":
			redactionEnabled = false
		default:
			redactionEnabled = true
		}
		hashSalt = strings.TrimSpace(os.Getenv("LOG_HASH_SALT"))
	})
	return redactionEnabled
}

func sanitizeKVs(kv []interface{}) []interface{} {
	if len(kv) == 0 || !redactionOn() {
		return kv
	}
	out := make([]interface{}, len(kv))
	copy(out, kv)
	for i := 0; i+1 < len(out); i += 2 {
		out[i+1] = sanitize(ruleFor(fmt.Sprint(out[i])), out[i+1])
	}
	return out
}

func ruleFor(key string) action {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, r := range keyRules {
		if strings.Contains(key, r.fragment) {
			return r.action
		}
	}
	return keep
}

func sanitize(a action, val interface{}) interface{} {
	switch a {
	case redact:
		return "[REDACTED]"
	case hash:
		return hashValue(val)
	case summarize:
		return fmt.Sprintf("[%d bytes]", len(stringOf(val)))
	}
	switch v := val.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, inner := range v {
			out[k] = sanitize(ruleFor(k), inner)
		}
		return out
	case string:
		if looksLikeJWT(v) {
			return "[REDACTED]"
		}
	}
	return val
}

func hashValue(val interface{}) string {
	raw := stringOf(val)
	if raw == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(hashSalt + raw))
	return "hash:" + hex.EncodeToString(sum[:6])
}

func looksLikeJWT(s string) bool {
	parts := strings.Split(s, ".")
	return len(parts) == 3 && len(parts[0]) > 10 && len(parts[1]) > 10
}

func stringOf(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
