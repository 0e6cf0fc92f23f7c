package storage

import (
	"database/sql"
	"path/filepath"
	"testing"
)

func TestMigrationManager_Up(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migration-test.db")

	mgr, err := NewMigrationManager(dbPath)
	if err != nil {
		t.Fatalf("Failed to create migration manager: %v", err)
	}

	if err := mgr.Up(); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	// Up on an already migrated database is a no-op.
	if err := mgr.Up(); err != nil {
		t.Fatalf("Second Up should not fail: %v", err)
	}

	if err := mgr.Close(); err != nil {
		t.Fatalf("Failed to close migration manager: %v", err)
	}

	mgr2, err := NewMigrationManager(dbPath)
	if err != nil {
		t.Fatalf("Failed to reopen migration manager: %v", err)
	}
	defer mgr2.Close()

	version, dirty, err := mgr2.Version()
	if err != nil {
		t.Fatalf("Failed to get migration version: %v", err)
	}

	if dirty {
		t.Error("Database is in dirty state after migrations")
	}
	if version < 1 {
		t.Errorf("Expected migration version >= 1, got %d", version)
	}
}

func TestMigrationManager_Schema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "schema-test.db")

	config := DefaultConfig(dbPath)
	config.AutoMigrate = true

	db, err := Open(config)
	if err != nil {
		t.Fatalf("Failed to open database with migrations: %v", err)
	}
	defer db.Close()

	// Verify board_sets columns.
	setColumns := []string{
		"id", "name", "game", "seed", "attempts",
		"board_count", "board_size", "created_at",
	}
	for _, col := range setColumns {
		var name string
		err := db.Conn().QueryRow(`
			SELECT name FROM pragma_table_info('board_sets') WHERE name = ?
		`, col).Scan(&name)
		if err == sql.ErrNoRows {
			t.Errorf("Column '%s' does not exist in board_sets table", col)
			continue
		}
		if err != nil {
			t.Errorf("Failed to query column info for '%s': %v", col, err)
		}
	}

	// Verify boards columns.
	boardColumns := []string{"id", "board_set_id", "position", "cells"}
	for _, col := range boardColumns {
		var name string
		err := db.Conn().QueryRow(`
			SELECT name FROM pragma_table_info('boards') WHERE name = ?
		`, col).Scan(&name)
		if err == sql.ErrNoRows {
			t.Errorf("Column '%s' does not exist in boards table", col)
			continue
		}
		if err != nil {
			t.Errorf("Failed to query column info for '%s': %v", col, err)
		}
	}

	// Verify indexes.
	indexes := []string{
		"idx_boards_board_set_id",
		"idx_board_sets_created_at",
	}
	for _, idx := range indexes {
		var name string
		err := db.Conn().QueryRow(`
			SELECT name FROM sqlite_master
			WHERE type='index' AND name = ?
		`, idx).Scan(&name)
		if err == sql.ErrNoRows {
			t.Errorf("Index '%s' does not exist", idx)
			continue
		}
		if err != nil {
			t.Errorf("Failed to query index '%s': %v", idx, err)
		}
	}
}

func TestMigrationManager_Down(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migration-down-test.db")

	mgr, err := NewMigrationManager(dbPath)
	if err != nil {
		t.Fatalf("Failed to create migration manager: %v", err)
	}
	defer mgr.Close()

	if err := mgr.Up(); err != nil {
		t.Fatalf("Failed to run migrations up: %v", err)
	}

	versionBefore, _, err := mgr.Version()
	if err != nil {
		t.Fatalf("Failed to get version before down: %v", err)
	}

	if err := mgr.Steps(-1); err != nil {
		t.Fatalf("Failed to run migration down: %v", err)
	}

	versionAfter, dirty, err := mgr.Version()
	if err != nil {
		t.Fatalf("Failed to get version after down: %v", err)
	}

	if dirty {
		t.Error("Database is in dirty state after rollback")
	}
	if versionAfter >= versionBefore {
		t.Errorf("Version should decrease after down migration: before=%d, after=%d", versionBefore, versionAfter)
	}
}

func TestMigrationManager_Version(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "version-test.db")

	mgr, err := NewMigrationManager(dbPath)
	if err != nil {
		t.Fatalf("Failed to create migration manager: %v", err)
	}
	defer mgr.Close()

	version, dirty, err := mgr.Version()
	if err != nil {
		t.Fatalf("Failed to get version: %v", err)
	}

	if dirty {
		t.Error("Fresh database should not be dirty")
	}
	if version != 0 {
		t.Errorf("Fresh database should report version 0, got %d", version)
	}
}

func TestMigrationManager_Goto(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "goto-test.db")

	mgr, err := NewMigrationManager(dbPath)
	if err != nil {
		t.Fatalf("Failed to create migration manager: %v", err)
	}
	defer mgr.Close()

	if err := mgr.Goto(1); err != nil {
		t.Fatalf("Failed to migrate to version 1: %v", err)
	}

	version, _, err := mgr.Version()
	if err != nil {
		t.Fatalf("Failed to get version: %v", err)
	}
	if version != 1 {
		t.Errorf("Expected version 1, got %d", version)
	}
}
