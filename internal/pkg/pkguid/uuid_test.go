package pkguid

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDGenerate(t *testing.T) {
	gen := NewUUID()
	id := gen.Generate()
	parsed, err := uuid.Parse(id)
	if err != nil {
		t.Fatalf("expected valid uuid, got %q", id)
	}
	if parsed.Version() != 7 {
		t.Fatalf("expected version 7, got %d", parsed.Version())
	}
}

func TestUUIDGenerateUnique(t *testing.T) {
	gen := NewUUID()
	if a, b := gen.Generate(), gen.Generate(); a == b {
		t.Fatalf("expected unique ids, got %q twice", a)
	}
}

func TestStatic(t *testing.T) {
	var gen StringID = Static("fixed")
	if got := gen.Generate(); got != "fixed" {
		t.Fatalf("expected fixed, got %q", got)
	}
}
