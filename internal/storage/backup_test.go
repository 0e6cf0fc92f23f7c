package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// setupBackupSource creates a migrated database holding one saved set and
// returns its path.
func setupBackupSource(t *testing.T) string {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")

	config := DefaultConfig(dbPath)
	config.AutoMigrate = true
	db, err := Open(config)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	repo := NewBoardSetRepository(db)
	saveSampleSet(t, repo, "backup source")

	if err := db.Close(); err != nil {
		t.Fatalf("Failed to close test database: %v", err)
	}

	return dbPath
}

func TestBackupManager_Backup(t *testing.T) {
	dbPath := setupBackupSource(t)
	backupMgr := NewBackupManager(dbPath)

	backupPath, err := backupMgr.Backup(DefaultBackupConfig())
	if err != nil {
		t.Fatalf("Failed to create backup: %v", err)
	}

	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		t.Fatalf("Backup file was not created: %s", backupPath)
	}

	if err := backupMgr.VerifyBackup(backupPath); err != nil {
		t.Fatalf("Backup verification failed: %v", err)
	}
}

func TestBackupManager_BackupWithCustomName(t *testing.T) {
	dbPath := setupBackupSource(t)
	backupMgr := NewBackupManager(dbPath)

	config := DefaultBackupConfig()
	config.BackupName = "custom-backup"

	backupPath, err := backupMgr.Backup(config)
	if err != nil {
		t.Fatalf("Failed to create backup: %v", err)
	}

	if filepath.Base(backupPath) != "custom-backup.db" {
		t.Errorf("Expected backup name custom-backup.db, got %s", filepath.Base(backupPath))
	}
}

func TestBackupManager_Compressed(t *testing.T) {
	dbPath := setupBackupSource(t)
	backupMgr := NewBackupManager(dbPath)

	config := DefaultBackupConfig()
	config.Compress = true

	backupPath, err := backupMgr.Backup(config)
	if err != nil {
		t.Fatalf("Failed to create compressed backup: %v", err)
	}

	if !strings.HasSuffix(backupPath, ".db.gz") {
		t.Errorf("Expected .db.gz suffix, got %s", backupPath)
	}

	compressed, err := isGzipFile(backupPath)
	if err != nil {
		t.Fatalf("Failed to inspect backup: %v", err)
	}
	if !compressed {
		t.Error("Compressed backup does not start with the gzip magic bytes")
	}

	// The plain copy must not be left behind.
	plainPath := strings.TrimSuffix(backupPath, ".gz")
	if _, err := os.Stat(plainPath); !os.IsNotExist(err) {
		t.Errorf("Uncompressed copy still exists: %s", plainPath)
	}
}

func TestBackupManager_Encrypted(t *testing.T) {
	dbPath := setupBackupSource(t)
	backupMgr := NewBackupManager(dbPath)

	config := DefaultBackupConfig()
	config.EncryptionPassword = "topsecret"

	backupPath, err := backupMgr.Backup(config)
	if err != nil {
		t.Fatalf("Failed to create encrypted backup: %v", err)
	}

	if !strings.HasSuffix(backupPath, ".db.enc") {
		t.Errorf("Expected .db.enc suffix, got %s", backupPath)
	}

	encrypted, err := IsEncrypted(backupPath)
	if err != nil {
		t.Fatalf("Failed to inspect backup: %v", err)
	}
	if !encrypted {
		t.Error("Encrypted backup is missing the magic header")
	}
}

func TestBackupManager_RestoreRoundTrip(t *testing.T) {
	dbPath := setupBackupSource(t)
	backupMgr := NewBackupManager(dbPath)

	backupPath, err := backupMgr.Backup(DefaultBackupConfig())
	if err != nil {
		t.Fatalf("Failed to create backup: %v", err)
	}

	// Lose the original database.
	if err := os.Remove(dbPath); err != nil {
		t.Fatalf("Failed to remove database: %v", err)
	}

	if err := backupMgr.Restore(backupPath, ""); err != nil {
		t.Fatalf("Failed to restore backup: %v", err)
	}

	db, err := Open(DefaultConfig(dbPath))
	if err != nil {
		t.Fatalf("Failed to open restored database: %v", err)
	}
	defer db.Close()

	repo := NewBoardSetRepository(db)
	records, err := repo.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("Failed to list restored sets: %v", err)
	}
	if len(records) != 1 || records[0].Name != "backup source" {
		t.Errorf("Restored database does not hold the saved set: %+v", records)
	}
}

func TestBackupManager_RestoreCompressedEncrypted(t *testing.T) {
	dbPath := setupBackupSource(t)
	backupMgr := NewBackupManager(dbPath)

	config := DefaultBackupConfig()
	config.Compress = true
	config.EncryptionPassword = "layered"

	backupPath, err := backupMgr.Backup(config)
	if err != nil {
		t.Fatalf("Failed to create backup: %v", err)
	}

	if !strings.HasSuffix(backupPath, ".db.gz.enc") {
		t.Errorf("Expected .db.gz.enc suffix, got %s", backupPath)
	}

	if err := os.Remove(dbPath); err != nil {
		t.Fatalf("Failed to remove database: %v", err)
	}

	if err := backupMgr.Restore(backupPath, "layered"); err != nil {
		t.Fatalf("Failed to restore layered backup: %v", err)
	}

	db, err := Open(DefaultConfig(dbPath))
	if err != nil {
		t.Fatalf("Failed to open restored database: %v", err)
	}
	defer db.Close()

	repo := NewBoardSetRepository(db)
	records, err := repo.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("Failed to list restored sets: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("Expected 1 restored set, got %d", len(records))
	}
}

func TestBackupManager_RestoreWrongPassword(t *testing.T) {
	dbPath := setupBackupSource(t)
	backupMgr := NewBackupManager(dbPath)

	config := DefaultBackupConfig()
	config.EncryptionPassword = "right"

	backupPath, err := backupMgr.Backup(config)
	if err != nil {
		t.Fatalf("Failed to create backup: %v", err)
	}

	if err := backupMgr.Restore(backupPath, "wrong"); err == nil {
		t.Error("Restore with the wrong password should fail")
	}
	if err := backupMgr.Restore(backupPath, ""); err == nil {
		t.Error("Restore without a password should fail for encrypted backups")
	}
}

func TestBackupManager_RestoreMissingFile(t *testing.T) {
	dbPath := setupBackupSource(t)
	backupMgr := NewBackupManager(dbPath)

	if err := backupMgr.Restore(filepath.Join(t.TempDir(), "nope.db"), ""); err == nil {
		t.Error("Restore of a missing file should fail")
	}
}

func TestBackupManager_VerifyBackupInvalid(t *testing.T) {
	dbPath := setupBackupSource(t)
	backupMgr := NewBackupManager(dbPath)

	junkPath := filepath.Join(t.TempDir(), "junk.db")
	if err := os.WriteFile(junkPath, []byte("this is not a database"), 0o600); err != nil {
		t.Fatalf("Failed to write junk file: %v", err)
	}

	if err := backupMgr.VerifyBackup(junkPath); err == nil {
		t.Error("Verification of a junk file should fail")
	}
}

func TestBackupManager_ListBackups(t *testing.T) {
	dbPath := setupBackupSource(t)
	backupMgr := NewBackupManager(dbPath)

	plain := DefaultBackupConfig()
	plain.BackupName = "plain"
	if _, err := backupMgr.Backup(plain); err != nil {
		t.Fatalf("Failed to create plain backup: %v", err)
	}

	compressed := DefaultBackupConfig()
	compressed.BackupName = "squeezed"
	compressed.Compress = true
	if _, err := backupMgr.Backup(compressed); err != nil {
		t.Fatalf("Failed to create compressed backup: %v", err)
	}

	encrypted := DefaultBackupConfig()
	encrypted.BackupName = "sealed"
	encrypted.EncryptionPassword = "pw"
	if _, err := backupMgr.Backup(encrypted); err != nil {
		t.Fatalf("Failed to create encrypted backup: %v", err)
	}

	backups, err := backupMgr.ListBackups("")
	if err != nil {
		t.Fatalf("Failed to list backups: %v", err)
	}
	if len(backups) != 3 {
		t.Fatalf("Expected 3 backups, got %d", len(backups))
	}

	byName := make(map[string]BackupInfo, len(backups))
	for _, b := range backups {
		byName[b.Name] = b
		if b.Checksum == "" || b.Checksum == "unknown" {
			t.Errorf("Backup %s has no checksum", b.Name)
		}
		if b.Size == 0 {
			t.Errorf("Backup %s reports zero size", b.Name)
		}
	}

	if info, ok := byName["squeezed.db.gz"]; !ok || !info.Compressed {
		t.Errorf("Compressed backup not flagged: %+v", byName)
	}
	if info, ok := byName["sealed.db.enc"]; !ok || !info.Encrypted {
		t.Errorf("Encrypted backup not flagged: %+v", byName)
	}
	if info, ok := byName["plain.db"]; !ok || info.Compressed || info.Encrypted {
		t.Errorf("Plain backup wrongly flagged: %+v", byName)
	}
}

func TestBackupManager_ListBackupsEmptyDir(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	backupMgr := NewBackupManager(dbPath)

	backups, err := backupMgr.ListBackups("")
	if err != nil {
		t.Fatalf("ListBackups on a missing directory should not fail: %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("Expected no backups, got %d", len(backups))
	}
}
