package storage

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// BackupScheduler runs automatic backups at a fixed interval.
type BackupScheduler struct {
	manager       *BackupManager
	config        *SchedulerConfig
	logger        *slog.Logger
	ticker        *time.Ticker
	stopChan      chan struct{}
	mu            sync.RWMutex
	running       bool
	lastBackup    time.Time
	lastError     error
	backupCount   int
	failureCount  int
	backupHandler func(backupPath string, err error)
}

// SchedulerConfig holds configuration for the backup scheduler.
type SchedulerConfig struct {
	// Interval is how often to run backups.
	Interval time.Duration

	// BackupConfig is the configuration to use for each backup.
	BackupConfig *BackupConfig

	// StartImmediately runs a backup as soon as the scheduler starts.
	StartImmediately bool

	// OnBackupComplete is called after each backup attempt (success or failure).
	OnBackupComplete func(backupPath string, err error)

	// Logger for backup results. Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultSchedulerConfig returns a scheduler config with daily backups.
func DefaultSchedulerConfig() *SchedulerConfig {
	return &SchedulerConfig{
		Interval:     24 * time.Hour,
		BackupConfig: DefaultBackupConfig(),
	}
}

// NewBackupScheduler creates a new backup scheduler.
func NewBackupScheduler(manager *BackupManager, config *SchedulerConfig) *BackupScheduler {
	if config == nil {
		config = DefaultSchedulerConfig()
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &BackupScheduler{
		manager:       manager,
		config:        config,
		logger:        logger,
		stopChan:      make(chan struct{}),
		backupHandler: config.OnBackupComplete,
	}
}

// Start starts the backup scheduler.
// Returns an error if the scheduler is already running.
func (s *BackupScheduler) Start() error {
	s.mu.Lock()

	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler is already running")
	}

	s.ticker = time.NewTicker(s.config.Interval)
	s.running = true
	ticker := s.ticker
	s.mu.Unlock()

	s.logger.Info("Backup scheduler started", "interval", s.config.Interval)

	if s.config.StartImmediately {
		go s.runBackup()
	}

	go s.run(ticker)

	return nil
}

// Stop stops the backup scheduler.
func (s *BackupScheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler is not running")
	}
	s.mu.Unlock()

	close(s.stopChan)

	s.mu.Lock()
	if s.ticker != nil {
		s.ticker.Stop()
		s.ticker = nil
	}
	s.running = false
	s.mu.Unlock()

	// Fresh stop channel so the scheduler can be restarted.
	s.stopChan = make(chan struct{})

	s.logger.Info("Backup scheduler stopped")

	return nil
}

// run is the main scheduler loop.
func (s *BackupScheduler) run(ticker *time.Ticker) {
	for {
		select {
		case <-ticker.C:
			s.runBackup()
		case <-s.stopChan:
			return
		}
	}
}

// runBackup executes a backup and updates statistics.
func (s *BackupScheduler) runBackup() {
	start := time.Now()
	backupPath, err := s.manager.Backup(s.config.BackupConfig)

	s.mu.Lock()
	s.lastBackup = time.Now()
	s.lastError = err
	if err != nil {
		s.failureCount++
	} else {
		s.backupCount++
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("Scheduled backup failed", "error", err)
	} else {
		s.logger.Info("Scheduled backup complete", "path", backupPath, "took", time.Since(start).Round(time.Millisecond))
	}

	if s.backupHandler != nil {
		s.backupHandler(backupPath, err)
	}
}

// IsRunning returns whether the scheduler is currently running.
func (s *BackupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Status returns the current scheduler status.
func (s *BackupScheduler) Status() *SchedulerStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var nextBackup time.Time
	if s.running && !s.lastBackup.IsZero() {
		nextBackup = s.lastBackup.Add(s.config.Interval)
	}

	return &SchedulerStatus{
		Running:      s.running,
		Interval:     s.config.Interval,
		LastBackup:   s.lastBackup,
		NextBackup:   nextBackup,
		BackupCount:  s.backupCount,
		FailureCount: s.failureCount,
		LastError:    s.lastError,
	}
}

// SchedulerStatus contains information about the scheduler state.
type SchedulerStatus struct {
	Running      bool
	Interval     time.Duration
	LastBackup   time.Time
	NextBackup   time.Time
	BackupCount  int
	FailureCount int
	LastError    error
}

// String returns a human-readable representation of the scheduler status.
func (s *SchedulerStatus) String() string {
	if !s.Running {
		return "Scheduler: Stopped"
	}

	status := "Scheduler: Running\n"
	status += fmt.Sprintf("  Interval: %s\n", s.Interval)
	status += fmt.Sprintf("  Total Backups: %d\n", s.BackupCount)
	status += fmt.Sprintf("  Failures: %d\n", s.FailureCount)

	if !s.LastBackup.IsZero() {
		status += fmt.Sprintf("  Last Backup: %s\n", s.LastBackup.Format(time.RFC3339))
	}
	if !s.NextBackup.IsZero() {
		status += fmt.Sprintf("  Next Backup: %s\n", s.NextBackup.Format(time.RFC3339))
	}
	if s.LastError != nil {
		status += fmt.Sprintf("  Last Error: %v\n", s.LastError)
	}

	return status
}
