package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"kakeibo/internal/config"
	"kakeibo/internal/core"
	"kakeibo/internal/log"
)

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Error("expected error for unknown backend")
	}

	got, err := FromAppConfig(&config.Config{DataBackend: "file", SlotKey: "k", SlotDir: "/tmp/x"})
	if err != nil {
		t.Fatalf("FromAppConfig() error = %v", err)
	}
	if got.Type != FileBackend || got.SlotKey != "k" || got.SlotDir != "/tmp/x" {
		t.Errorf("FromAppConfig() = %+v", got)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"file", Config{Type: FileBackend, SlotDir: "data"}, false},
		{"file without dir", Config{Type: FileBackend}, true},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: "x.db"}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"unknown", Config{Type: "sheets"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFactory_RoundTripPerBackend(t *testing.T) {
	dir := t.TempDir()
	configs := map[string]Config{
		"memory": {Type: MemoryBackend},
		"file":   {Type: FileBackend, SlotDir: dir},
		"sqlite": {Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "kakeibo.db")},
	}

	entries := []core.Entry{{
		ID: 7, Date: "2024-05-01", Member: "Alice", Type: core.Income,
		Category: "給与", Description: "May", Amount: core.Yen(300000),
	}}

	factory := NewFactory(log.Discard().Logger)
	for name, cfg := range configs {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			res, err := factory.CreateBackend(ctx, cfg)
			if err != nil {
				t.Fatalf("CreateBackend() error = %v", err)
			}
			defer res.Close()

			loaded, err := res.Persister.Load(ctx)
			if err != nil || len(loaded) != 0 {
				t.Fatalf("fresh Load() = %v, %v; want empty", loaded, err)
			}
			if err := res.Persister.Save(ctx, entries); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			loaded, err = res.Persister.Load(ctx)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if len(loaded) != 1 || loaded[0].ID != 7 || !loaded[0].Amount.Equal(core.Yen(300000)) {
				t.Errorf("Load() = %+v", loaded)
			}
		})
	}
}

func TestFactory_MemorySeedFile(t *testing.T) {
	seed := filepath.Join(t.TempDir(), "seed.json")
	data := `[{"id":1,"date":"2024-01-01","member":"Bob","type":"expense","category":"食費","description":"rice","amount":2000}]`
	if err := os.WriteFile(seed, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: MemoryBackend, SeedFile: seed})
	if err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}
	loaded, err := res.Persister.Load(context.Background())
	if err != nil || len(loaded) != 1 || loaded[0].Member != "Bob" {
		t.Errorf("Load() = %+v, %v", loaded, err)
	}
}

func TestGetBackendTypeStrings(t *testing.T) {
	got := GetBackendTypeStrings()
	want := []string{"memory", "file", "sqlite"}
	if len(got) != len(want) {
		t.Fatalf("GetBackendTypeStrings() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("GetBackendTypeStrings()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
