package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestMemorySlotGetSet(t *testing.T) {
	s := New()
	if _, ok, err := s.Get(context.Background()); ok || err != nil {
		t.Fatalf("fresh slot should be empty: ok=%v err=%v", ok, err)
	}

	in := []byte(`[]`)
	if err := s.Set(context.Background(), in); err != nil {
		t.Fatalf("set: %v", err)
	}
	in[0] = 'x'

	got, ok, err := s.Get(context.Background())
	if err != nil || !ok || string(got) != "[]" {
		t.Fatalf("unexpected get: %q ok=%v err=%v", got, ok, err)
	}
}

func TestNewFromFile(t *testing.T) {
	dir := t.TempDir()
	if _, ok, _ := NewFromFile(filepath.Join(dir, "missing.json")).Get(context.Background()); ok {
		t.Fatalf("missing seed should leave slot empty")
	}

	path := filepath.Join(dir, "seed.json")
	if err := os.WriteFile(path, []byte(`[{"id":1}]`), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	got, ok, _ := NewFromFile(path).Get(context.Background())
	if !ok || string(got) != `[{"id":1}]` {
		t.Fatalf("unexpected seeded value %q", got)
	}
}
