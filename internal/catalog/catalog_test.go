package catalog

import (
	"testing"
)

func TestNewValidation(t *testing.T) {
	items := []Item{"A", "B", "C", "D"}

	tests := []struct {
		name    string
		items   []Item
		tiers   []Tier
		wantErr bool
	}{
		{
			name:    "valid single tier",
			items:   items,
			tiers:   []Tier{{First: 0, Last: 4, Count: 2}},
			wantErr: false,
		},
		{
			name:    "valid two tiers",
			items:   items,
			tiers:   []Tier{{First: 0, Last: 2, Count: 3}, {First: 2, Last: 4, Count: 1}},
			wantErr: false,
		},
		{
			name:    "empty catalogue",
			items:   nil,
			tiers:   []Tier{{First: 0, Last: 1, Count: 1}},
			wantErr: true,
		},
		{
			name:    "empty item label",
			items:   []Item{"A", ""},
			tiers:   []Tier{{First: 0, Last: 2, Count: 1}},
			wantErr: true,
		},
		{
			name:    "duplicate item",
			items:   []Item{"A", "B", "A"},
			tiers:   []Tier{{First: 0, Last: 3, Count: 1}},
			wantErr: true,
		},
		{
			name:    "no tiers",
			items:   items,
			tiers:   nil,
			wantErr: true,
		},
		{
			name:    "gap between tiers",
			items:   items,
			tiers:   []Tier{{First: 0, Last: 2, Count: 1}, {First: 3, Last: 4, Count: 1}},
			wantErr: true,
		},
		{
			name:    "overlapping tiers",
			items:   items,
			tiers:   []Tier{{First: 0, Last: 3, Count: 1}, {First: 2, Last: 4, Count: 1}},
			wantErr: true,
		},
		{
			name:    "tier beyond catalogue",
			items:   items,
			tiers:   []Tier{{First: 0, Last: 5, Count: 1}},
			wantErr: true,
		},
		{
			name:    "tiers stop short of catalogue end",
			items:   items,
			tiers:   []Tier{{First: 0, Last: 3, Count: 1}},
			wantErr: true,
		},
		{
			name:    "empty tier range",
			items:   items,
			tiers:   []Tier{{First: 0, Last: 0, Count: 1}, {First: 0, Last: 4, Count: 1}},
			wantErr: true,
		},
		{
			name:    "zero count",
			items:   items,
			tiers:   []Tier{{First: 0, Last: 4, Count: 0}},
			wantErr: true,
		},
		{
			name:    "negative count",
			items:   items,
			tiers:   []Tier{{First: 0, Last: 4, Count: -3}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.items, tt.tiers)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !IsConfigError(err) {
					t.Errorf("expected *ConfigError, got %T: %v", err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestTargetCounts(t *testing.T) {
	cat, err := New(
		[]Item{"A", "B", "C"},
		[]Tier{{First: 0, Last: 2, Count: 4}, {First: 2, Last: 3, Count: 2}},
	)
	if err != nil {
		t.Fatalf("failed to build catalogue: %v", err)
	}

	if got := cat.TargetCount("A"); got != 4 {
		t.Errorf("TargetCount(A) = %d, want 4", got)
	}
	if got := cat.TargetCount("C"); got != 2 {
		t.Errorf("TargetCount(C) = %d, want 2", got)
	}
	if got := cat.TargetCount("unknown"); got != 0 {
		t.Errorf("TargetCount(unknown) = %d, want 0", got)
	}

	if got := cat.PoolSize(); got != 10 {
		t.Errorf("PoolSize() = %d, want 10", got)
	}

	counts := cat.TargetCounts()
	if len(counts) != 3 {
		t.Errorf("TargetCounts() has %d entries, want 3", len(counts))
	}

	// Mutating the returned map must not affect the catalogue.
	counts["A"] = 99
	if got := cat.TargetCount("A"); got != 4 {
		t.Errorf("TargetCount(A) after map mutation = %d, want 4", got)
	}
}

func TestMasterPool(t *testing.T) {
	cat, err := New(
		[]Item{"A", "B", "C"},
		[]Tier{{First: 0, Last: 1, Count: 3}, {First: 1, Last: 3, Count: 1}},
	)
	if err != nil {
		t.Fatalf("failed to build catalogue: %v", err)
	}

	pool := cat.MasterPool()
	if len(pool) != 5 {
		t.Fatalf("pool has %d tokens, want 5", len(pool))
	}

	counts := make(map[Item]int)
	for _, item := range pool {
		counts[item]++
	}
	if counts["A"] != 3 || counts["B"] != 1 || counts["C"] != 1 {
		t.Errorf("pool counts = %v, want A:3 B:1 C:1", counts)
	}

	// Tokens for the same item are adjacent and items follow catalogue order.
	want := []Item{"A", "A", "A", "B", "C"}
	for i, item := range pool {
		if item != want[i] {
			t.Errorf("pool[%d] = %q, want %q", i, item, want[i])
		}
	}

	// Mutating the returned pool must not affect later calls.
	pool[0] = "X"
	if again := cat.MasterPool(); again[0] != "A" {
		t.Errorf("MasterPool() after mutation starts with %q, want A", again[0])
	}
}

func TestReference(t *testing.T) {
	cat := Reference()

	if got := cat.Len(); got != 36 {
		t.Errorf("reference catalogue has %d items, want 36", got)
	}
	if got := cat.PoolSize(); got != 240 {
		t.Errorf("reference pool size = %d, want 240", got)
	}

	items := cat.Items()
	for i, item := range items {
		want := 7
		if i >= 24 {
			want = 6
		}
		if got := cat.TargetCount(item); got != want {
			t.Errorf("TargetCount(%q) = %d, want %d", item, got, want)
		}
	}

	if len(cat.MasterPool()) != 240 {
		t.Errorf("reference master pool has %d tokens, want 240", len(cat.MasterPool()))
	}
}
