package storage

import (
	"compress/gzip"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// BackupManager handles database backup and restore operations.
type BackupManager struct {
	dbPath string
}

// NewBackupManager creates a new backup manager for the given database path.
func NewBackupManager(dbPath string) *BackupManager {
	return &BackupManager{
		dbPath: dbPath,
	}
}

// BackupConfig holds configuration for backup operations.
type BackupConfig struct {
	// BackupDir is the directory where backups will be stored.
	// If empty, defaults to a "backups" subdirectory in the database directory.
	BackupDir string

	// BackupName is the name of the backup file (without extension).
	// If empty, a timestamp-based name will be generated.
	BackupName string

	// VerifyBackup indicates whether to verify the backup after creation.
	VerifyBackup bool

	// Compress gzips the backup after verification. The file gets a .gz
	// suffix.
	Compress bool

	// EncryptionPassword, when non-empty, encrypts the backup after
	// verification (and compression). The file gets a .enc suffix.
	EncryptionPassword string
}

// DefaultBackupConfig returns a BackupConfig with sensible defaults.
func DefaultBackupConfig() *BackupConfig {
	return &BackupConfig{
		BackupDir:    "",
		BackupName:   "",
		VerifyBackup: true,
	}
}

// Backup creates a backup of the database and returns the backup file path.
// The copy itself uses VACUUM INTO, which is atomic and needs no exclusive
// lock. Compression and encryption run afterwards on the copied file, so
// verification always sees a plain SQLite database.
func (bm *BackupManager) Backup(config *BackupConfig) (string, error) {
	if config == nil {
		config = DefaultBackupConfig()
	}

	backupDir := config.BackupDir
	if backupDir == "" {
		backupDir = bm.GetBackupDir()
	}

	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	backupName := config.BackupName
	if backupName == "" {
		timestamp := time.Now().Format("20060102_150405")
		backupName = fmt.Sprintf("backup_%s", timestamp)
	}
	backupPath := filepath.Join(backupDir, backupName+".db")

	sourceDB, err := sql.Open("sqlite", bm.dbPath)
	if err != nil {
		return "", fmt.Errorf("failed to open source database: %w", err)
	}
	defer func() { _ = sourceDB.Close() }() //nolint:errcheck // Ignore error on cleanup

	// VACUUM INTO needs SQLite 3.27+; fall back to a raw file copy without it.
	vacuumSQL := fmt.Sprintf("VACUUM INTO %q", backupPath)
	if _, err := sourceDB.Exec(vacuumSQL); err != nil {
		if _, copyErr := bm.backupByCopy(backupPath); copyErr != nil {
			return "", copyErr
		}
	}

	if config.VerifyBackup {
		if err := bm.VerifyBackup(backupPath); err != nil {
			_ = os.Remove(backupPath)
			return "", fmt.Errorf("backup verification failed: %w", err)
		}
	}

	if config.Compress {
		compressedPath := backupPath + ".gz"
		if err := compressFile(backupPath, compressedPath); err != nil {
			_ = os.Remove(compressedPath)
			return "", fmt.Errorf("failed to compress backup: %w", err)
		}
		if err := os.Remove(backupPath); err != nil {
			return "", fmt.Errorf("failed to remove uncompressed backup: %w", err)
		}
		backupPath = compressedPath
	}

	if config.EncryptionPassword != "" {
		encryptedPath := backupPath + ".enc"
		encConfig := DefaultEncryptionConfig(config.EncryptionPassword)
		if err := EncryptFile(backupPath, encryptedPath, encConfig); err != nil {
			_ = os.Remove(encryptedPath)
			return "", fmt.Errorf("failed to encrypt backup: %w", err)
		}
		if err := os.Remove(backupPath); err != nil {
			return "", fmt.Errorf("failed to remove unencrypted backup: %w", err)
		}
		backupPath = encryptedPath
	}

	return backupPath, nil
}

// backupByCopy creates a backup by copying the database file.
// This is a fallback method if VACUUM INTO is not available.
func (bm *BackupManager) backupByCopy(backupPath string) (string, error) {
	if err := copyFile(bm.dbPath, backupPath); err != nil {
		_ = os.Remove(backupPath)
		return "", fmt.Errorf("failed to copy database file: %w", err)
	}
	return backupPath, nil
}

// Restore restores the database from a backup file, peeling encryption and
// compression layers as needed. Pass the encryption password for encrypted
// backups and "" otherwise.
// WARNING: This will overwrite the current database. The caller must close
// any open database connections first.
func (bm *BackupManager) Restore(backupPath, password string) error {
	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		return fmt.Errorf("backup file does not exist: %s", backupPath)
	}

	workPath := backupPath
	var intermediates []string
	defer func() {
		for _, p := range intermediates {
			_ = os.Remove(p)
		}
	}()

	encrypted, err := IsEncrypted(workPath)
	if err != nil {
		return fmt.Errorf("failed to inspect backup file: %w", err)
	}
	if encrypted {
		if password == "" {
			return fmt.Errorf("backup is encrypted but no password was given")
		}
		decryptedPath := bm.dbPath + ".decrypt.tmp"
		encConfig := DefaultEncryptionConfig(password)
		if err := DecryptFile(workPath, decryptedPath, encConfig); err != nil {
			_ = os.Remove(decryptedPath)
			return fmt.Errorf("failed to decrypt backup: %w", err)
		}
		intermediates = append(intermediates, decryptedPath)
		workPath = decryptedPath
	}

	compressed, err := isGzipFile(workPath)
	if err != nil {
		return fmt.Errorf("failed to inspect backup file: %w", err)
	}
	if compressed {
		decompressedPath := bm.dbPath + ".decompress.tmp"
		if err := decompressFile(workPath, decompressedPath); err != nil {
			_ = os.Remove(decompressedPath)
			return fmt.Errorf("failed to decompress backup: %w", err)
		}
		intermediates = append(intermediates, decompressedPath)
		workPath = decompressedPath
	}

	if err := bm.VerifyBackup(workPath); err != nil {
		return fmt.Errorf("backup verification failed: %w", err)
	}

	tempPath := bm.dbPath + ".restore.tmp"
	if err := copyFile(workPath, tempPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to stage restored database: %w", err)
	}

	if err := bm.VerifyBackup(tempPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("restored database verification failed: %w", err)
	}

	// Keep the current database aside before replacing it.
	if _, err := os.Stat(bm.dbPath); err == nil {
		oldBackupPath := bm.dbPath + ".old." + time.Now().Format("20060102_150405")
		if err := os.Rename(bm.dbPath, oldBackupPath); err != nil {
			_ = os.Remove(tempPath)
			return fmt.Errorf("failed to set aside current database: %w", err)
		}
	}

	if err := os.Rename(tempPath, bm.dbPath); err != nil {
		return fmt.Errorf("failed to replace database with restored backup: %w", err)
	}

	return nil
}

// VerifyBackup verifies that a backup file is a valid SQLite database.
func (bm *BackupManager) VerifyBackup(backupPath string) error {
	db, err := sql.Open("sqlite", backupPath)
	if err != nil {
		return fmt.Errorf("failed to open backup as database: %w", err)
	}
	defer func() { _ = db.Close() }() //nolint:errcheck // Ignore error on cleanup

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping backup database: %w", err)
	}

	var version string
	if err := db.QueryRow("SELECT sqlite_version()").Scan(&version); err != nil {
		return fmt.Errorf("failed to query backup database: %w", err)
	}

	return nil
}

// ListBackups returns a list of all backup files in the backup directory.
func (bm *BackupManager) ListBackups(backupDir string) ([]BackupInfo, error) {
	if backupDir == "" {
		backupDir = bm.GetBackupDir()
	}

	if _, err := os.Stat(backupDir); os.IsNotExist(err) {
		return []BackupInfo{}, nil
	}

	entries, err := os.ReadDir(backupDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var backups []BackupInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !isBackupFile(entry.Name()) {
			continue
		}

		backupPath := filepath.Join(backupDir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			continue
		}

		checksum, err := calculateChecksum(backupPath)
		if err != nil {
			checksum = "unknown"
		}

		encrypted, _ := IsEncrypted(backupPath)
		compressed := strings.HasSuffix(entry.Name(), ".gz") ||
			strings.Contains(entry.Name(), ".gz.")

		backups = append(backups, BackupInfo{
			Path:       backupPath,
			Name:       entry.Name(),
			Size:       info.Size(),
			ModTime:    info.ModTime(),
			Checksum:   checksum,
			Compressed: compressed,
			Encrypted:  encrypted,
		})
	}

	return backups, nil
}

// BackupInfo contains information about a backup file.
type BackupInfo struct {
	Path       string
	Name       string
	Size       int64
	ModTime    time.Time
	Checksum   string
	Compressed bool
	Encrypted  bool
}

// GetBackupDir returns the default backup directory path.
func (bm *BackupManager) GetBackupDir() string {
	dbDir := filepath.Dir(bm.dbPath)
	return filepath.Join(dbDir, "backups")
}

// isBackupFile reports whether a file name looks like one of our backups.
func isBackupFile(name string) bool {
	switch filepath.Ext(name) {
	case ".db", ".gz", ".enc":
		return true
	}
	return false
}

// copyFile copies src to dst, truncating dst if it exists.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer func() { _ = sourceFile.Close() }() //nolint:errcheck // Ignore error on cleanup

	destFile, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		_ = destFile.Close()
		return fmt.Errorf("failed to copy to %s: %w", dst, err)
	}

	return destFile.Close()
}

// compressFile gzips src into dst.
func compressFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer func() { _ = sourceFile.Close() }() //nolint:errcheck // Ignore error on cleanup

	destFile, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}

	gw := gzip.NewWriter(destFile)
	if _, err := io.Copy(gw, sourceFile); err != nil {
		_ = gw.Close()
		_ = destFile.Close()
		return fmt.Errorf("failed to compress %s: %w", src, err)
	}
	if err := gw.Close(); err != nil {
		_ = destFile.Close()
		return fmt.Errorf("failed to finish compression: %w", err)
	}

	return destFile.Close()
}

// decompressFile gunzips src into dst.
func decompressFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer func() { _ = sourceFile.Close() }() //nolint:errcheck // Ignore error on cleanup

	gr, err := gzip.NewReader(sourceFile)
	if err != nil {
		return fmt.Errorf("failed to read gzip stream: %w", err)
	}
	defer func() { _ = gr.Close() }() //nolint:errcheck // Ignore error on cleanup

	destFile, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}

	if _, err := io.Copy(destFile, gr); err != nil { //nolint:gosec // Backups are trusted local files
		_ = destFile.Close()
		return fmt.Errorf("failed to decompress %s: %w", src, err)
	}

	return destFile.Close()
}

// isGzipFile reports whether the file starts with the gzip magic bytes.
func isGzipFile(path string) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer func() { _ = file.Close() }() //nolint:errcheck // Ignore error on cleanup

	header := make([]byte, 2)
	n, err := file.Read(header)
	if err != nil && err != io.EOF {
		return false, err
	}

	return n == 2 && header[0] == 0x1f && header[1] == 0x8b, nil
}

// calculateChecksum calculates the SHA-256 checksum of a file.
func calculateChecksum(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer func() { _ = file.Close() }() //nolint:errcheck // Ignore error on cleanup

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}
