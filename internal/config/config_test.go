package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}

	cat, err := cfg.BuildCatalog()
	if err != nil {
		t.Fatalf("default catalogue failed to build: %v", err)
	}
	if cat.Len() != 36 {
		t.Errorf("default catalogue has %d items, want 36", cat.Len())
	}
	if cat.PoolSize() != 240 {
		t.Errorf("default pool size = %d, want 240", cat.PoolSize())
	}

	params := cfg.Params()
	if params.BoardCount != 15 || params.BoardSize != 16 || params.MaxAttempts != 1000 {
		t.Errorf("unexpected default params: %+v", params)
	}
}

func TestBuildCatalogConvertsTierBounds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Catalog.Items = []string{"A", "B", "C"}
	cfg.Catalog.Tiers = []TierConfig{
		{First: 1, Last: 2, Count: 3},
		{First: 3, Last: 3, Count: 1},
	}

	cat, err := cfg.BuildCatalog()
	if err != nil {
		t.Fatalf("failed to build catalogue: %v", err)
	}
	if got := cat.TargetCount("A"); got != 3 {
		t.Errorf("TargetCount(A) = %d, want 3", got)
	}
	if got := cat.TargetCount("C"); got != 1 {
		t.Errorf("TargetCount(C) = %d, want 1", got)
	}
	if cat.PoolSize() != 7 {
		t.Errorf("pool size = %d, want 7", cat.PoolSize())
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{
			name:   "zero board count",
			mutate: func(c *Config) { c.Boards.Count = 0 },
			want:   "board count",
		},
		{
			name:   "negative board size",
			mutate: func(c *Config) { c.Boards.Size = -1 },
			want:   "board size",
		},
		{
			name:   "grid does not match size",
			mutate: func(c *Config) { c.Boards.Rows = 3 },
			want:   "grid",
		},
		{
			name:   "zero max attempts",
			mutate: func(c *Config) { c.Boards.MaxAttempts = 0 },
			want:   "max attempts",
		},
		{
			name: "pool does not fill boards",
			mutate: func(c *Config) {
				// 35 items at the old counts leave the pool short.
				c.Catalog.Items = c.Catalog.Items[:35]
				c.Catalog.Tiers = []TierConfig{
					{First: 1, Last: 24, Count: 7},
					{First: 25, Last: 35, Count: 6},
				}
			},
			want: "tokens",
		},
		{
			name:   "empty game name",
			mutate: func(c *Config) { c.Export.GameName = "" },
			want:   "game name",
		},
		{
			name:   "bad poll interval",
			mutate: func(c *Config) { c.Watch.PollInterval = "soon" },
			want:   "poll interval",
		},
		{
			name:   "bad tier bounds",
			mutate: func(c *Config) { c.Catalog.Tiers[0].First = 2 },
			want:   "tier",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestSaveAndLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := DefaultConfig()
	cfg.Boards.MaxAttempts = 250
	cfg.Export.GameName = "Test Lotería"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Boards.MaxAttempts != 250 {
		t.Errorf("max attempts = %d, want 250", loaded.Boards.MaxAttempts)
	}
	if loaded.Export.GameName != "Test Lotería" {
		t.Errorf("game name = %q, want Test Lotería", loaded.Export.GameName)
	}
	if len(loaded.Catalog.Items) != 36 {
		t.Errorf("loaded %d items, want 36", len(loaded.Catalog.Items))
	}
	if err := loaded.Validate(); err != nil {
		t.Errorf("round-tripped config failed validation: %v", err)
	}
}

func TestLoadHonorsEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")
	cfg := DefaultConfig()
	cfg.Boards.MaxAttempts = 77
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	t.Setenv(EnvConfigPath, path)

	loaded, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Boards.MaxAttempts != 77 {
		t.Errorf("max attempts = %d, want 77 from override file", loaded.Boards.MaxAttempts)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv(EnvConfigPath, filepath.Join(t.TempDir(), "absent.toml"))

	loaded, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Boards.Count != 15 {
		t.Errorf("expected default board count, got %d", loaded.Boards.Count)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := os.Stat("nope.toml"); err == nil {
		t.Error("load must not create the file")
	}
}
