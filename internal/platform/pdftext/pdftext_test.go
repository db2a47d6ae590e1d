package pdftext

import (
	"errors"
	"testing"
)

func TestExtractRejectsEmpty(t *testing.T) {
	if _, err := Extract(nil); !errors.Is(err, ErrEmptyDocument) {
		t.Fatalf("Extract(nil) err=%v, want ErrEmptyDocument", err)
	}
}

func TestExtractRejectsGarbage(t *testing.T) {
	if _, err := Extract([]byte("definitely not a pdf")); err == nil {
		t.Fatalf("Extract(garbage) err=nil, want error")
	}
}
