package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/loteria-tools/tablero/internal/boardgen"
	"github.com/loteria-tools/tablero/internal/catalog"
)

// setupTestDB creates a migrated database in a temp directory.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")

	config := DefaultConfig(dbPath)
	config.AutoMigrate = true

	db, err := Open(config)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

// sampleBoardSet builds a small in-memory set for repository tests.
func sampleBoardSet() *boardgen.BoardSet {
	return &boardgen.BoardSet{
		Boards: []boardgen.Board{
			{catalog.Item("A"), catalog.Item("B"), catalog.Item("C"), catalog.Item("D")},
			{catalog.Item("A"), catalog.Item("B"), catalog.Item("E"), catalog.Item("F")},
			{catalog.Item("C"), catalog.Item("D"), catalog.Item("E"), catalog.Item("F")},
		},
		Seed:      42,
		Attempts:  1,
		BoardSize: 4,
		CreatedAt: time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC),
	}
}

// saveSampleSet persists a sample set and returns its stored ID.
func saveSampleSet(t *testing.T, repo *BoardSetRepository, name string) string {
	t.Helper()

	record, err := repo.Save(context.Background(), name, "Test Game", sampleBoardSet())
	if err != nil {
		t.Fatalf("Failed to save board set: %v", err)
	}
	return record.ID
}
