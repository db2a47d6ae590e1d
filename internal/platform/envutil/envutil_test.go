package envutil

import (
	"testing"
	"time"
)

func TestReaders(t *testing.T) {
	t.Setenv("SP_INT", "42")
	t.Setenv("SP_BAD_INT", "x")
	t.Setenv("SP_FLOAT", "6.5")
	t.Setenv("SP_NAN", "NaN")
	t.Setenv("SP_BOOL", "off")
	t.Setenv("SP_DUR", "90s")
	t.Setenv("SP_DUR_SECS", "30")
	t.Setenv("SP_LIST", " a, ,b ")

	if got := Int("SP_INT", 1); got != 42 {
		t.Fatalf("Int(SP_INT)=%d, want 42", got)
	}
	if got := Int("SP_BAD_INT", 1); got != 1 {
		t.Fatalf("Int(SP_BAD_INT)=%d, want 1", got)
	}
	if got := Float("SP_FLOAT", 0); got != 6.5 {
		t.Fatalf("Float(SP_FLOAT)=%v, want 6.5", got)
	}
	if got := Float("SP_NAN", 5.5); got != 5.5 {
		t.Fatalf("Float(SP_NAN)=%v, want default 5.5", got)
	}
	if got := Bool("SP_BOOL", true); got {
		t.Fatalf("Bool(SP_BOOL)=%v, want false", got)
	}
	if got := Bool("SP_MISSING", true); !got {
		t.Fatalf("Bool(SP_MISSING)=%v, want true", got)
	}
	if got := Duration("SP_DUR", 0); got != 90*time.Second {
		t.Fatalf("Duration(SP_DUR)=%v, want 90s", got)
	}
	if got := Duration("SP_DUR_SECS", 0); got != 30*time.Second {
		t.Fatalf("Duration(SP_DUR_SECS)=%v, want 30s", got)
	}
	if got := String("SP_MISSING", "def"); got != "def" {
		t.Fatalf("String(SP_MISSING)=%q, want def", got)
	}
	got := List("SP_LIST", nil)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("List(SP_LIST)=%v, want [a b]", got)
	}
}
