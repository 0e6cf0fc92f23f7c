package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/loteria-tools/tablero/internal/boardgen"
	"github.com/loteria-tools/tablero/internal/config"
	"github.com/loteria-tools/tablero/internal/export"
	"github.com/loteria-tools/tablero/internal/storage"
	"github.com/loteria-tools/tablero/internal/validate"
	"github.com/loteria-tools/tablero/internal/watch"
)

func runWatchCommand() {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	configPath := fs.String("config", "", "Config file to watch (default: ~/.tablero/config.toml)")
	outputDir := fs.String("output", "", "Directory for regenerated exports (default: the configured output dir)")
	format := fs.String("format", "json", "Export format: 'json', 'csv' or 'md'")
	save := fs.Bool("save", false, "Save each regenerated set to the database")
	interval := fs.Duration("interval", 0, "Override the fallback polling interval (0 = keep config value)")

	fs.Usage = func() {
		fmt.Println("Usage: tablero watch [options]")
		fmt.Println()
		fmt.Println("Watch the config file and regenerate the board set every time it")
		fmt.Println("changes. Each regeneration is validated and exported with a fresh")
		fmt.Println("timestamped filename. Runs until interrupted.")
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  # Iterate on the default config")
		fmt.Println("  tablero watch -output ./boards")
		fmt.Println()
		fmt.Println("  # Watch an explicit config, storing every result")
		fmt.Println("  tablero watch -config ./config.toml -save")
	}

	if err := fs.Parse(os.Args[2:]); err != nil {
		log.Fatalf("Error parsing flags: %v", err)
	}

	exportFormat := parseExportFormat(*format)

	path := *configPath
	if path == "" {
		var err error
		path, err = config.Path()
		if err != nil {
			log.Fatalf("Failed to resolve config path: %v", err)
		}
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Fatalf("Config file does not exist: %s (run 'tablero config init' first)", path)
	}

	cfg, err := config.LoadFile(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	pollInterval, err := cfg.GetPollInterval()
	if err != nil {
		log.Fatalf("Invalid poll interval: %v", err)
	}
	if *interval > 0 {
		pollInterval = *interval
	}
	minInterval, err := cfg.GetMinInterval()
	if err != nil {
		log.Fatalf("Invalid min interval: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	regenerate := func(p string) error {
		cfg, err := config.LoadFile(p)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		cat, err := cfg.BuildCatalog()
		if err != nil {
			return err
		}

		set, err := boardgen.Allocate(cat, cfg.Params(), 0)
		if err != nil {
			return err
		}
		if err := validate.BoardSet(cat, set, cfg.Params()).Err(); err != nil {
			return err
		}

		doc, err := export.BuildDocument(set, cfg.Export.GameName, cfg.Boards.Columns)
		if err != nil {
			return err
		}
		dir := *outputDir
		if dir == "" {
			dir = cfg.Export.OutputDir
		}
		outPath := filepath.Join(dir, export.GenerateFilename("boards", exportFormat))
		exporter := export.NewExporter(export.Options{
			Format:     exportFormat,
			FilePath:   outPath,
			PrettyJSON: cfg.Export.PrettyJSON,
			Overwrite:  true,
		})
		if err := exporter.Export(doc); err != nil {
			return err
		}

		logger.Info("Boards regenerated", "seed", set.Seed, "attempts", set.Attempts, "output", outPath)

		if *save {
			storageConfig := storage.DefaultConfig(getDBPath(cfg))
			storageConfig.AutoMigrate = true
			db, err := storage.Open(storageConfig)
			if err != nil {
				return err
			}
			name := fmt.Sprintf("watch-%s", time.Now().Format("20060102-150405"))
			record, saveErr := storage.NewBoardSetRepository(db).Save(context.Background(), name, cfg.Export.GameName, set)
			if closeErr := db.Close(); closeErr != nil && saveErr == nil {
				saveErr = closeErr
			}
			if saveErr != nil {
				return saveErr
			}
			logger.Info("Board set saved", "name", record.Name, "id", record.ID)
		}

		return nil
	}

	watcher, err := watch.New(watch.Config{
		Path:         path,
		OnChange:     regenerate,
		PollInterval: pollInterval,
		MinInterval:  minInterval,
		Logger:       logger,
	})
	if err != nil {
		log.Fatalf("Failed to create watcher: %v", err)
	}

	// Generate once up front; a broken config is reported but still watched,
	// so fixing the file triggers a clean run.
	if err := regenerate(path); err != nil {
		logger.Error("Initial generation failed", "error", err)
	}

	if err := watcher.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start watcher: %v", err)
	}

	fmt.Println("Watching config for changes. Press Ctrl+C to stop.")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	fmt.Println()
	fmt.Println("Shutting down...")
	watcher.Stop()

	stats := watcher.Stats()
	fmt.Printf("Handled %d change(s), %d failure(s).\n", stats.Changes, stats.Failures)
}
