package parser

import (
	"bytes"
	"go/format"
	"os"
	"testing"
)

func TestDiagnosticsSourceIsFormatted(t *testing.T) {
	src, err := os.ReadFile("diagnostics.go")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	formatted, err := format.Source(src)
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if !bytes.Equal(src, formatted) {
		t.Fatalf("diagnostics.go is not gofmt formatted")
	}
}
