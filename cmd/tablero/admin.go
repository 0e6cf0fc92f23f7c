package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/loteria-tools/tablero/internal/storage"
)

func runMigrationCommand() {
	if len(os.Args) < 3 {
		printMigrationUsage()
		os.Exit(1)
	}

	dbPath := getDBPath(nil)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		log.Fatalf("Error creating database directory: %v", err)
	}

	mgr, err := storage.NewMigrationManager(dbPath)
	if err != nil {
		log.Fatalf("Error creating migration manager: %v", err)
	}
	defer func() {
		if err := mgr.Close(); err != nil {
			log.Printf("Error closing migration manager: %v", err)
		}
	}()

	printVersion := func() {
		version, dirty, err := mgr.Version()
		if err != nil {
			log.Fatalf("Error getting version: %v", err)
		}
		if dirty {
			fmt.Printf("Current version: %d (dirty)\n", version)
		} else {
			fmt.Printf("Current version: %d\n", version)
		}
	}

	switch os.Args[2] {
	case "up":
		fmt.Println("Applying all pending migrations...")
		if err := mgr.Up(); err != nil {
			log.Fatalf("Error applying migrations: %v", err)
		}
		printVersion()
		fmt.Println("All migrations applied successfully!")

	case "down":
		fmt.Println("Rolling back last migration...")
		if err := mgr.Steps(-1); err != nil {
			log.Fatalf("Error rolling back migration: %v", err)
		}
		printVersion()
		fmt.Println("Migration rolled back successfully!")

	case "status", "version":
		version, dirty, err := mgr.Version()
		if err != nil {
			log.Fatalf("Error getting version: %v", err)
		}
		if dirty {
			fmt.Printf("Current version: %d (dirty - migration failed or interrupted)\n", version)
			fmt.Println("Use 'migrate force <version>' to recover")
		} else {
			fmt.Printf("Current version: %d\n", version)
		}

	case "goto":
		if len(os.Args) < 4 {
			fmt.Println("Error: goto command requires a version number")
			fmt.Println("Usage: tablero migrate goto <version>")
			os.Exit(1)
		}
		version, err := strconv.ParseUint(os.Args[3], 10, 32)
		if err != nil {
			log.Fatalf("Invalid version number: %v", err)
		}
		fmt.Printf("Migrating to version %d...\n", version)
		if err := mgr.Goto(uint(version)); err != nil {
			log.Fatalf("Error migrating to version %d: %v", version, err)
		}
		fmt.Println("Migration successful!")

	case "force":
		if len(os.Args) < 4 {
			fmt.Println("Error: force command requires a version number")
			fmt.Println("Usage: tablero migrate force <version>")
			os.Exit(1)
		}
		version, err := strconv.Atoi(os.Args[3])
		if err != nil {
			log.Fatalf("Invalid version number: %v", err)
		}
		fmt.Printf("Forcing migration version to %d...\n", version)
		fmt.Println("WARNING: This does not run migrations, only sets the version.")
		if err := mgr.Force(version); err != nil {
			log.Fatalf("Error forcing version: %v", err)
		}
		fmt.Println("Version forced successfully!")

	default:
		fmt.Printf("Unknown migration command: %s\n\n", os.Args[2])
		printMigrationUsage()
		os.Exit(1)
	}
}

func printMigrationUsage() {
	fmt.Println("Tablero - Database Migration Tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  tablero migrate <command> [args]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  up                Apply all pending migrations")
	fmt.Println("  down              Rollback the last migration")
	fmt.Println("  status            Show current migration version")
	fmt.Println("  version           Show current migration version (alias for status)")
	fmt.Println("  goto <version>    Migrate to a specific version")
	fmt.Println("  force <version>   Force set migration version (use with caution)")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  TABLERO_DB_PATH   Override default database path")
	fmt.Println("                    (default: ~/.tablero/tablero.db)")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  tablero migrate up")
	fmt.Println("  tablero migrate status")
	fmt.Println("  TABLERO_DB_PATH=/tmp/test.db tablero migrate up")
}

func runBackupCommand() {
	if len(os.Args) < 3 {
		printBackupUsage()
		os.Exit(1)
	}

	dbPath := getDBPath(nil)
	command := os.Args[2]

	// Everything except list and verify reads or replaces the live database.
	if command != "list" && command != "ls" && command != "verify" {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) && command != "restore" {
			log.Fatalf("Database file does not exist: %s", dbPath)
		}
	}

	backupMgr := storage.NewBackupManager(dbPath)

	switch command {
	case "create":
		createFlags := flag.NewFlagSet("create", flag.ExitOnError)
		backupDir := createFlags.String("dir", os.Getenv("TABLERO_BACKUP_DIR"), "Backup directory")
		backupName := createFlags.String("name", "", "Backup name (default: auto-generated timestamp)")
		compress := createFlags.Bool("compress", false, "Compress backup with gzip")
		passwordEnv := createFlags.String("password-env", "", "Environment variable containing encryption password")
		verify := createFlags.Bool("verify", true, "Verify backup after creation")

		if err := createFlags.Parse(os.Args[3:]); err != nil {
			log.Fatalf("Error parsing flags: %v", err)
		}

		config := storage.DefaultBackupConfig()
		config.BackupDir = *backupDir
		config.BackupName = *backupName
		config.VerifyBackup = *verify
		config.Compress = *compress

		if *passwordEnv != "" {
			password := os.Getenv(*passwordEnv)
			if password == "" {
				log.Fatalf("Error: environment variable %s is not set or empty", *passwordEnv)
			}
			config.EncryptionPassword = password
		}

		fmt.Println("Creating backup...")
		fmt.Printf("  Database: %s\n", dbPath)
		if *compress {
			fmt.Println("  Compression: enabled")
		}
		if config.EncryptionPassword != "" {
			fmt.Println("  Encryption: enabled")
		}

		backupPath, err := backupMgr.Backup(config)
		if err != nil {
			log.Fatalf("Error creating backup: %v", err)
		}

		fmt.Printf("\n✓ Backup created successfully: %s\n", backupPath)
		if info, err := os.Stat(backupPath); err == nil {
			fmt.Printf("  Size: %.2f MB\n", float64(info.Size())/(1024*1024))
		}

	case "restore":
		restoreFlags := flag.NewFlagSet("restore", flag.ExitOnError)
		passwordEnv := restoreFlags.String("password-env", "", "Environment variable containing decryption password")
		noConfirm := restoreFlags.Bool("yes", false, "Skip confirmation prompt")

		if err := restoreFlags.Parse(os.Args[3:]); err != nil {
			log.Fatalf("Error parsing flags: %v", err)
		}

		if restoreFlags.NArg() < 1 {
			fmt.Println("Error: restore command requires a backup file path")
			fmt.Println("Usage: tablero backup restore <backup-file> [flags]")
			fmt.Println("\nFlags:")
			restoreFlags.PrintDefaults()
			os.Exit(1)
		}
		backupPath := restoreFlags.Arg(0)

		if _, err := os.Stat(backupPath); os.IsNotExist(err) {
			log.Fatalf("Backup file does not exist: %s", backupPath)
		}

		if !*noConfirm {
			fmt.Println("WARNING: This will overwrite the current database!")
			fmt.Printf("Database: %s\n", dbPath)
			fmt.Printf("Backup:   %s\n", backupPath)
			fmt.Print("\nAre you sure you want to continue? (yes/no): ")

			var response string
			if _, err := fmt.Scanln(&response); err != nil {
				log.Fatalf("Error reading input: %v", err)
			}
			if response != "yes" && response != "y" {
				fmt.Println("Restore cancelled.")
				return
			}
		}

		var password string
		if *passwordEnv != "" {
			password = os.Getenv(*passwordEnv)
			if password == "" {
				log.Fatalf("Error: environment variable %s is not set or empty", *passwordEnv)
			}
		}

		fmt.Println("\nRestoring database from backup...")
		if err := backupMgr.Restore(backupPath, password); err != nil {
			log.Fatalf("Error restoring backup: %v", err)
		}
		fmt.Println("✓ Database restored successfully!")

	case "list", "ls":
		listFlags := flag.NewFlagSet("list", flag.ExitOnError)
		format := listFlags.String("format", "table", "Output format: 'table' or 'json'")
		backupDir := listFlags.String("dir", os.Getenv("TABLERO_BACKUP_DIR"), "Backup directory")

		if err := listFlags.Parse(os.Args[3:]); err != nil {
			log.Fatalf("Error parsing flags: %v", err)
		}

		if *backupDir == "" {
			*backupDir = backupMgr.GetBackupDir()
		}

		backups, err := backupMgr.ListBackups(*backupDir)
		if err != nil {
			log.Fatalf("Error listing backups: %v", err)
		}

		if len(backups) == 0 {
			fmt.Println("No backups found.")
			return
		}

		switch *format {
		case "json":
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(backups); err != nil {
				log.Fatalf("Error encoding JSON: %v", err)
			}
		case "table":
			fmt.Printf("\nFound %d backup(s) in %s:\n\n", len(backups), *backupDir)
			for i, backup := range backups {
				fmt.Printf("%d. %s\n", i+1, backup.Name)
				fmt.Printf("   Path:     %s\n", backup.Path)
				fmt.Printf("   Size:     %.2f MB\n", float64(backup.Size)/(1024*1024))
				fmt.Printf("   Modified: %s\n", backup.ModTime.Format("2006-01-02 15:04:05"))
				if backup.Checksum != "" {
					fmt.Printf("   Checksum: %s\n", backup.Checksum)
				}
				if backup.Compressed {
					fmt.Println("   Compressed: yes")
				}
				if backup.Encrypted {
					fmt.Println("   Encrypted: yes")
				}
				fmt.Println()
			}
		default:
			log.Fatalf("Invalid format: %s (must be 'table' or 'json')", *format)
		}

	case "verify":
		verifyFlags := flag.NewFlagSet("verify", flag.ExitOnError)
		if err := verifyFlags.Parse(os.Args[3:]); err != nil {
			log.Fatalf("Error parsing flags: %v", err)
		}

		if verifyFlags.NArg() < 1 {
			fmt.Println("Error: verify command requires a backup file path")
			fmt.Println("Usage: tablero backup verify <backup-file>")
			os.Exit(1)
		}
		backupPath := verifyFlags.Arg(0)

		fmt.Printf("Verifying backup: %s\n", backupPath)
		if err := backupMgr.VerifyBackup(backupPath); err != nil {
			log.Fatalf("Backup verification failed: %v", err)
		}
		fmt.Println("✓ Backup verification successful!")

	case "schedule":
		scheduleFlags := flag.NewFlagSet("schedule", flag.ExitOnError)
		interval := scheduleFlags.Duration("interval", 24*time.Hour, "Time between backups")
		backupDir := scheduleFlags.String("dir", os.Getenv("TABLERO_BACKUP_DIR"), "Backup directory")
		compress := scheduleFlags.Bool("compress", false, "Compress backups with gzip")
		passwordEnv := scheduleFlags.String("password-env", "", "Environment variable containing encryption password")
		immediate := scheduleFlags.Bool("immediate", true, "Run a backup as soon as the scheduler starts")

		if err := scheduleFlags.Parse(os.Args[3:]); err != nil {
			log.Fatalf("Error parsing flags: %v", err)
		}

		backupConfig := storage.DefaultBackupConfig()
		backupConfig.BackupDir = *backupDir
		backupConfig.Compress = *compress
		if *passwordEnv != "" {
			password := os.Getenv(*passwordEnv)
			if password == "" {
				log.Fatalf("Error: environment variable %s is not set or empty", *passwordEnv)
			}
			backupConfig.EncryptionPassword = password
		}

		scheduler := storage.NewBackupScheduler(backupMgr, &storage.SchedulerConfig{
			Interval:         *interval,
			BackupConfig:     backupConfig,
			StartImmediately: *immediate,
		})
		if err := scheduler.Start(); err != nil {
			log.Fatalf("Failed to start backup scheduler: %v", err)
		}

		fmt.Printf("Backup scheduler running (every %s). Press Ctrl+C to stop.\n", *interval)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		fmt.Println()
		fmt.Println("Shutting down...")
		if err := scheduler.Stop(); err != nil {
			log.Printf("Error stopping scheduler: %v", err)
		}
		fmt.Println(scheduler.Status().String())

	default:
		fmt.Printf("Unknown backup command: %s\n\n", command)
		printBackupUsage()
		os.Exit(1)
	}
}

func printBackupUsage() {
	fmt.Println("Tablero - Database Backup Management")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  tablero backup <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  create     Create a new database backup")
	fmt.Println("  restore    Restore database from backup")
	fmt.Println("  list, ls   List all available backups")
	fmt.Println("  verify     Verify backup integrity")
	fmt.Println("  schedule   Run periodic backups until interrupted")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  # Create a backup")
	fmt.Println("  tablero backup create")
	fmt.Println()
	fmt.Println("  # Create a compressed, encrypted backup")
	fmt.Println("  export BACKUP_PWD=mypassword")
	fmt.Println("  tablero backup create -compress -password-env BACKUP_PWD")
	fmt.Println()
	fmt.Println("  # Restore from an encrypted backup")
	fmt.Println("  tablero backup restore backup.db.enc -password-env BACKUP_PWD")
	fmt.Println()
	fmt.Println("  # List backups in JSON format")
	fmt.Println("  tablero backup list -format json")
	fmt.Println()
	fmt.Println("  # Back up every six hours until stopped")
	fmt.Println("  tablero backup schedule -interval 6h -compress")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  TABLERO_DB_PATH     Path to database file (default: ~/.tablero/tablero.db)")
	fmt.Println("  TABLERO_BACKUP_DIR  Backup directory (default: <db dir>/backups)")
}
