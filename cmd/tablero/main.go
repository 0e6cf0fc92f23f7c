package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/loteria-tools/tablero/internal/boardgen"
	"github.com/loteria-tools/tablero/internal/charts"
	"github.com/loteria-tools/tablero/internal/config"
	"github.com/loteria-tools/tablero/internal/display"
	"github.com/loteria-tools/tablero/internal/export"
	"github.com/loteria-tools/tablero/internal/storage"
	"github.com/loteria-tools/tablero/internal/validate"
	"github.com/loteria-tools/tablero/internal/version"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "generate", "gen":
		runGenerateCommand()
	case "show":
		runShowCommand()
	case "history", "list", "ls":
		runHistoryCommand()
	case "export":
		runExportCommand()
	case "delete", "rm":
		runDeleteCommand()
	case "validate":
		runValidateCommand()
	case "chart":
		runChartCommand()
	case "watch":
		runWatchCommand()
	case "config":
		runConfigCommand()
	case "migrate":
		runMigrationCommand()
	case "backup":
		runBackupCommand()
	case "version", "--version", "-v":
		fmt.Printf("tablero %s\n", version.GetVersion())
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Tablero - Lotería Board Set Generator")
	fmt.Println("=====================================")
	fmt.Println()
	fmt.Println("Usage: tablero <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  generate   - Generate a board set from the configuration")
	fmt.Println("  show       - Print a stored board set")
	fmt.Println("  history    - List stored board sets")
	fmt.Println("  export     - Re-export a stored board set to JSON, CSV or Markdown")
	fmt.Println("  delete     - Delete a stored board set")
	fmt.Println("  validate   - Re-check a stored board set against the generation guarantees")
	fmt.Println("  chart      - Render HTML charts for a stored board set")
	fmt.Println("  watch      - Regenerate boards whenever the config file changes")
	fmt.Println("  config     - Create or inspect the configuration file")
	fmt.Println("  migrate    - Run database migrations")
	fmt.Println("  backup     - Create and manage database backups")
	fmt.Println("  version    - Print the application version")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  tablero generate -seed 42 -save")
	fmt.Println("  tablero history -limit 10")
	fmt.Println("  tablero export <set-id> -format csv")
	fmt.Println("  tablero backup create -compress")
	fmt.Println("  tablero watch -output ./boards")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  TABLERO_CONFIG    Config file path (default: ~/.tablero/config.toml)")
	fmt.Println("  TABLERO_DB_PATH   Database path (default: ~/.tablero/tablero.db)")
	fmt.Println()
	fmt.Println("For command-specific help:")
	fmt.Println("  tablero <command> --help")
}

// getDBPath resolves the database path: environment override first, then the
// config file, then the default location under the home directory.
func getDBPath(cfg *config.Config) string {
	if path := os.Getenv("TABLERO_DB_PATH"); path != "" {
		return path
	}
	if cfg != nil && cfg.Storage.Path != "" {
		return cfg.Storage.Path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Error getting home directory: %v", err)
	}
	return filepath.Join(home, ".tablero", "tablero.db")
}

// loadConfigOrDie loads the config from an explicit path, or from the default
// location when path is empty.
func loadConfigOrDie(path string) *config.Config {
	var cfg *config.Config
	var err error
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

// openDatabase opens the board set database, applying pending migrations.
func openDatabase(cfg *config.Config) *storage.DB {
	storageConfig := storage.DefaultConfig(getDBPath(cfg))
	storageConfig.AutoMigrate = true
	if cfg != nil {
		storageConfig.AutoMigrate = cfg.Storage.AutoMigrate
	}
	db, err := storage.Open(storageConfig)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	return db
}

func closeDatabase(db *storage.DB) {
	if err := db.Close(); err != nil {
		log.Printf("Error closing database: %v", err)
	}
}

// parseExportFormat validates a format flag value.
func parseExportFormat(value string) export.Format {
	switch value {
	case "json":
		return export.FormatJSON
	case "csv":
		return export.FormatCSV
	case "md", "markdown":
		return export.FormatMarkdown
	default:
		log.Fatalf("Invalid format: %s (must be 'json', 'csv' or 'md')", value)
		return ""
	}
}

func runGenerateCommand() {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	configPath := fs.String("config", "", "Config file path (default: ~/.tablero/config.toml)")
	seed := fs.Int64("seed", 0, "PRNG seed; 0 picks a random one")
	maxAttempts := fs.Int("max-attempts", 0, "Override the configured attempt budget (0 = keep config value)")
	name := fs.String("name", "", "Name for the stored set (default: auto-generated timestamp)")
	save := fs.Bool("save", false, "Save the generated set to the database")
	output := fs.String("output", "", "Export file path (default: auto-generated in the configured output dir)")
	format := fs.String("format", "json", "Export format: 'json', 'csv' or 'md'")
	toStdout := fs.Bool("stdout", false, "Write the export to stdout instead of a file")
	overwrite := fs.Bool("overwrite", false, "Replace the export file if it already exists")
	quiet := fs.Bool("quiet", false, "Skip printing the boards")
	skipChecks := fs.Bool("skip-checks", false, "Skip post-generation validation")
	chartsDir := fs.String("charts-dir", "", "Also render HTML charts into this directory")

	fs.Usage = func() {
		fmt.Println("Usage: tablero generate [options]")
		fmt.Println()
		fmt.Println("Generate a complete board set from the configured catalogue and")
		fmt.Println("frequency tiers, print it, and export it.")
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  # Generate with a random seed")
		fmt.Println("  tablero generate")
		fmt.Println()
		fmt.Println("  # Reproduce a previous run")
		fmt.Println("  tablero generate -seed 42")
		fmt.Println()
		fmt.Println("  # Generate, store in the database and export as CSV")
		fmt.Println("  tablero generate -save -format csv")
	}

	if err := fs.Parse(os.Args[2:]); err != nil {
		log.Fatalf("Error parsing flags: %v", err)
	}

	exportFormat := parseExportFormat(*format)

	cfg := loadConfigOrDie(*configPath)
	if *maxAttempts > 0 {
		cfg.Boards.MaxAttempts = *maxAttempts
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	cat, err := cfg.BuildCatalog()
	if err != nil {
		log.Fatalf("Invalid catalogue: %v", err)
	}

	set, err := boardgen.Allocate(cat, cfg.Params(), *seed)
	if err != nil {
		if boardgen.IsExhausted(err) {
			fmt.Fprintf(os.Stderr, "Generation failed: %v\n", err)
			fmt.Fprintln(os.Stderr, "Raise boards.max_attempts or loosen the frequency tiers and try again.")
			os.Exit(1)
		}
		log.Fatalf("Generation failed: %v", err)
	}

	if !*skipChecks {
		report := validate.BoardSet(cat, set, cfg.Params())
		if !report.OK() {
			display.NewReportDisplayer(os.Stderr).DisplayReport(report)
			os.Exit(1)
		}
	}

	displayer := display.NewBoardDisplayer(os.Stdout, cfg.Boards.Columns)
	if !*quiet {
		displayer.DisplayBoardSet(set)
	}
	displayer.DisplaySummary(set)

	doc, err := export.BuildDocument(set, cfg.Export.GameName, cfg.Boards.Columns)
	if err != nil {
		log.Fatalf("Failed to build export document: %v", err)
	}

	if *toStdout {
		if err := export.ExportToWriter(os.Stdout, exportFormat, doc, cfg.Export.PrettyJSON); err != nil {
			log.Fatalf("Failed to export boards: %v", err)
		}
	} else {
		outPath := *output
		if outPath == "" {
			outPath = filepath.Join(cfg.Export.OutputDir, export.GenerateFilename("boards", exportFormat))
		}
		exporter := export.NewExporter(export.Options{
			Format:     exportFormat,
			FilePath:   outPath,
			PrettyJSON: cfg.Export.PrettyJSON,
			Overwrite:  *overwrite || *output == "",
		})
		if err := exporter.Export(doc); err != nil {
			log.Fatalf("Failed to export boards: %v", err)
		}
		fmt.Printf("✓ Boards exported to %s\n", outPath)
	}

	if *chartsDir != "" {
		freqConfig := charts.DefaultChartConfig()
		freqConfig.Title = fmt.Sprintf("%s - Item Frequencies", cfg.Export.GameName)
		freqConfig.Subtitle = fmt.Sprintf("Achieved vs target across %d boards (seed %d)", len(set.Boards), set.Seed)
		freqPath := filepath.Join(*chartsDir, "frequency.html")
		if err := charts.RenderFrequencyChart(cat, set, freqConfig, freqPath); err != nil {
			log.Fatalf("Failed to render frequency chart: %v", err)
		}

		overlapConfig := charts.DefaultChartConfig()
		overlapConfig.Title = fmt.Sprintf("%s - Board Overlap", cfg.Export.GameName)
		overlapConfig.Subtitle = "Distinct items shared by board pairs"
		overlapPath := filepath.Join(*chartsDir, "overlap.html")
		if err := charts.RenderOverlapChart(set, overlapConfig, overlapPath); err != nil {
			log.Fatalf("Failed to render overlap chart: %v", err)
		}
		fmt.Printf("✓ Charts written to %s\n", *chartsDir)
	}

	if *save {
		setName := *name
		if setName == "" {
			setName = fmt.Sprintf("boards-%s", time.Now().Format("20060102-150405"))
		}

		db := openDatabase(cfg)
		defer closeDatabase(db)

		repo := storage.NewBoardSetRepository(db)
		record, err := repo.Save(context.Background(), setName, cfg.Export.GameName, set)
		if err != nil {
			log.Fatalf("Failed to save board set: %v", err)
		}
		fmt.Printf("✓ Saved as %q (ID: %s)\n", record.Name, record.ID)
	}
}

func runConfigCommand() {
	if len(os.Args) < 3 {
		printConfigUsage()
		os.Exit(1)
	}

	switch os.Args[2] {
	case "init":
		fs := flag.NewFlagSet("init", flag.ExitOnError)
		path := fs.String("path", "", "Where to write the config file (default: ~/.tablero/config.toml)")
		force := fs.Bool("force", false, "Overwrite an existing config file")

		if err := fs.Parse(os.Args[3:]); err != nil {
			log.Fatalf("Error parsing flags: %v", err)
		}

		target := *path
		if target == "" {
			var err error
			target, err = config.Path()
			if err != nil {
				log.Fatalf("Failed to resolve config path: %v", err)
			}
		}

		if _, err := os.Stat(target); err == nil && !*force {
			log.Fatalf("Config file already exists: %s (use -force to overwrite)", target)
		}

		if err := config.DefaultConfig().SaveTo(target); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		fmt.Printf("✓ Config written to %s\n", target)

	case "show":
		fs := flag.NewFlagSet("show", flag.ExitOnError)
		configPath := fs.String("config", "", "Config file path (default: ~/.tablero/config.toml)")

		if err := fs.Parse(os.Args[3:]); err != nil {
			log.Fatalf("Error parsing flags: %v", err)
		}

		cfg := loadConfigOrDie(*configPath)
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: config is invalid: %v\n\n", err)
		}

		data, err := toml.Marshal(cfg)
		if err != nil {
			log.Fatalf("Failed to render config: %v", err)
		}
		if _, err := os.Stdout.Write(data); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}

	case "check":
		fs := flag.NewFlagSet("check", flag.ExitOnError)
		configPath := fs.String("config", "", "Config file path (default: ~/.tablero/config.toml)")

		if err := fs.Parse(os.Args[3:]); err != nil {
			log.Fatalf("Error parsing flags: %v", err)
		}

		cfg := loadConfigOrDie(*configPath)
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "✗ Config is invalid: %v\n", err)
			os.Exit(1)
		}

		cat, err := cfg.BuildCatalog()
		if err != nil {
			fmt.Fprintf(os.Stderr, "✗ Config is invalid: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("✓ Config is valid: %d items, %d tokens over %d boards of %d cells\n",
			cat.Len(), cat.PoolSize(), cfg.Boards.Count, cfg.Boards.Size)

	default:
		fmt.Printf("Unknown config command: %s\n\n", os.Args[2])
		printConfigUsage()
		os.Exit(1)
	}
}

func printConfigUsage() {
	fmt.Println("Tablero - Configuration Management")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  tablero config <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  init    Write the default configuration file")
	fmt.Println("  show    Print the effective configuration")
	fmt.Println("  check   Validate the configuration")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  tablero config init")
	fmt.Println("  tablero config init -path ./config.toml")
	fmt.Println("  tablero config check -config ./config.toml")
}
