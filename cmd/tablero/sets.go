package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/loteria-tools/tablero/internal/boardgen"
	"github.com/loteria-tools/tablero/internal/charts"
	"github.com/loteria-tools/tablero/internal/display"
	"github.com/loteria-tools/tablero/internal/export"
	"github.com/loteria-tools/tablero/internal/storage"
	"github.com/loteria-tools/tablero/internal/storage/models"
	"github.com/loteria-tools/tablero/internal/validate"
)

// loadStoredSet fetches a stored board set and rebuilds its domain form.
func loadStoredSet(ctx context.Context, repo *storage.BoardSetRepository, id string) (*models.BoardSet, *boardgen.BoardSet) {
	record, err := repo.GetByID(ctx, id)
	if err != nil {
		if storage.IsNotFound(err) {
			log.Fatalf("No board set with ID %s", id)
		}
		log.Fatalf("Failed to load board set: %v", err)
	}

	boards, err := repo.BoardsFor(ctx, id)
	if err != nil {
		log.Fatalf("Failed to load boards: %v", err)
	}

	set, err := storage.ToBoardSet(record, boards)
	if err != nil {
		log.Fatalf("Failed to rebuild board set: %v", err)
	}

	return record, set
}

func runShowCommand() {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	configPath := fs.String("config", "", "Config file path (default: ~/.tablero/config.toml)")

	fs.Usage = func() {
		fmt.Println("Usage: tablero show <set-id> [options]")
		fmt.Println()
		fmt.Println("Print a stored board set. Find IDs with 'tablero history'.")
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(os.Args[2:]); err != nil {
		log.Fatalf("Error parsing flags: %v", err)
	}
	if fs.NArg() < 1 {
		fmt.Println("Error: show command requires a board set ID")
		fmt.Println("Usage: tablero show <set-id>")
		os.Exit(1)
	}
	id := fs.Arg(0)

	cfg := loadConfigOrDie(*configPath)
	db := openDatabase(cfg)
	defer closeDatabase(db)

	repo := storage.NewBoardSetRepository(db)
	record, set := loadStoredSet(context.Background(), repo, id)

	fmt.Printf("%s (%s)\n", record.Name, record.Game)
	fmt.Printf("  ID:       %s\n", record.ID)
	fmt.Printf("  Seed:     %d\n", record.Seed)
	fmt.Printf("  Attempts: %d\n", record.Attempts)
	fmt.Printf("  Boards:   %d of %d cells\n", record.BoardCount, record.BoardSize)
	fmt.Printf("  Created:  %s\n", record.CreatedAt.Format("2006-01-02 15:04:05"))

	display.NewBoardDisplayer(os.Stdout, cfg.Boards.Columns).DisplayBoardSet(set)
}

func runHistoryCommand() {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	configPath := fs.String("config", "", "Config file path (default: ~/.tablero/config.toml)")
	limit := fs.Int("limit", 20, "Maximum number of sets to list (0 = all)")
	format := fs.String("format", "table", "Output format: 'table' or 'json'")

	if err := fs.Parse(os.Args[2:]); err != nil {
		log.Fatalf("Error parsing flags: %v", err)
	}

	cfg := loadConfigOrDie(*configPath)
	db := openDatabase(cfg)
	defer closeDatabase(db)

	repo := storage.NewBoardSetRepository(db)
	records, err := repo.List(context.Background(), *limit)
	if err != nil {
		log.Fatalf("Failed to list board sets: %v", err)
	}

	if len(records) == 0 {
		fmt.Println("No board sets stored yet. Generate one with 'tablero generate -save'.")
		return
	}

	switch *format {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(records); err != nil {
			log.Fatalf("Error encoding JSON: %v", err)
		}
	case "table":
		fmt.Printf("\nFound %d board set(s):\n\n", len(records))
		for i, record := range records {
			fmt.Printf("%d. %s\n", i+1, record.Name)
			fmt.Printf("   ID:      %s\n", record.ID)
			fmt.Printf("   Game:    %s\n", record.Game)
			fmt.Printf("   Seed:    %d\n", record.Seed)
			fmt.Printf("   Boards:  %d of %d cells\n", record.BoardCount, record.BoardSize)
			fmt.Printf("   Created: %s\n", record.CreatedAt.Format("2006-01-02 15:04:05"))
			fmt.Println()
		}
	default:
		log.Fatalf("Invalid format: %s (must be 'table' or 'json')", *format)
	}
}

func runExportCommand() {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	configPath := fs.String("config", "", "Config file path (default: ~/.tablero/config.toml)")
	format := fs.String("format", "json", "Export format: 'json', 'csv' or 'md'")
	output := fs.String("out", "", "Output file path (default: auto-generated in the configured output dir)")
	toStdout := fs.Bool("stdout", false, "Write to stdout instead of a file")
	overwrite := fs.Bool("overwrite", false, "Replace the output file if it already exists")

	fs.Usage = func() {
		fmt.Println("Usage: tablero export <set-id> [options]")
		fmt.Println()
		fmt.Println("Re-export a stored board set.")
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  tablero export <set-id> -format csv -out boards.csv")
		fmt.Println("  tablero export <set-id> -stdout | jq '.boards[0]'")
	}

	if err := fs.Parse(os.Args[2:]); err != nil {
		log.Fatalf("Error parsing flags: %v", err)
	}
	if fs.NArg() < 1 {
		fmt.Println("Error: export command requires a board set ID")
		fmt.Println("Usage: tablero export <set-id> [options]")
		os.Exit(1)
	}
	id := fs.Arg(0)

	exportFormat := parseExportFormat(*format)

	cfg := loadConfigOrDie(*configPath)
	db := openDatabase(cfg)
	defer closeDatabase(db)

	repo := storage.NewBoardSetRepository(db)
	record, set := loadStoredSet(context.Background(), repo, id)

	doc, err := export.BuildDocument(set, record.Game, cfg.Boards.Columns)
	if err != nil {
		log.Fatalf("Failed to build export document: %v", err)
	}

	if *toStdout {
		if err := export.ExportToWriter(os.Stdout, exportFormat, doc, cfg.Export.PrettyJSON); err != nil {
			log.Fatalf("Failed to export boards: %v", err)
		}
		return
	}

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

func runDeleteCommand() {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	configPath := fs.String("config", "", "Config file path (default: ~/.tablero/config.toml)")
	noConfirm := fs.Bool("yes", false, "Skip confirmation prompt")

	if err := fs.Parse(os.Args[2:]); err != nil {
		log.Fatalf("Error parsing flags: %v", err)
	}
	if fs.NArg() < 1 {
		fmt.Println("Error: delete command requires a board set ID")
		fmt.Println("Usage: tablero delete <set-id> [-yes]")
		os.Exit(1)
	}
	id := fs.Arg(0)

	cfg := loadConfigOrDie(*configPath)
	db := openDatabase(cfg)
	defer closeDatabase(db)

	repo := storage.NewBoardSetRepository(db)
	ctx := context.Background()

	record, err := repo.GetByID(ctx, id)
	if err != nil {
		if storage.IsNotFound(err) {
			log.Fatalf("No board set with ID %s", id)
		}
		log.Fatalf("Failed to load board set: %v", err)
	}

	if !*noConfirm {
		fmt.Printf("This will delete %q (%d boards) permanently.\n", record.Name, record.BoardCount)
		fmt.Print("Are you sure you want to continue? (yes/no): ")

		reader := bufio.NewReader(os.Stdin)
		response, err := reader.ReadString('\n')
		if err != nil {
			log.Fatalf("Error reading input: %v", err)
		}

		response = strings.TrimSpace(strings.ToLower(response))
		if response != "yes" && response != "y" {
			fmt.Println("Delete cancelled.")
			return
		}
	}

	if err := repo.Delete(ctx, id); err != nil {
		log.Fatalf("Failed to delete board set: %v", err)
	}
	fmt.Printf("✓ Deleted %q\n", record.Name)
}

func runValidateCommand() {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	configPath := fs.String("config", "", "Config file path (default: ~/.tablero/config.toml)")

	fs.Usage = func() {
		fmt.Println("Usage: tablero validate <set-id> [options]")
		fmt.Println()
		fmt.Println("Re-check a stored board set against the generation guarantees:")
		fmt.Println("exact per-item frequencies, no duplicates within a board, and no")
		fmt.Println("two identical boards. Frequencies are checked against the current")
		fmt.Println("config's catalogue.")
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(os.Args[2:]); err != nil {
		log.Fatalf("Error parsing flags: %v", err)
	}
	if fs.NArg() < 1 {
		fmt.Println("Error: validate command requires a board set ID")
		fmt.Println("Usage: tablero validate <set-id>")
		os.Exit(1)
	}
	id := fs.Arg(0)

	cfg := loadConfigOrDie(*configPath)
	cat, err := cfg.BuildCatalog()
	if err != nil {
		log.Fatalf("Invalid catalogue: %v", err)
	}

	db := openDatabase(cfg)
	defer closeDatabase(db)

	repo := storage.NewBoardSetRepository(db)
	record, set := loadStoredSet(context.Background(), repo, id)

	params := boardgen.Params{
		BoardCount: record.BoardCount,
		BoardSize:  record.BoardSize,
	}
	report := validate.BoardSet(cat, set, params)
	display.NewReportDisplayer(os.Stdout).DisplayReport(report)

	if !report.OK() {
		os.Exit(1)
	}
}

func runChartCommand() {
	fs := flag.NewFlagSet("chart", flag.ExitOnError)
	configPath := fs.String("config", "", "Config file path (default: ~/.tablero/config.toml)")
	outputDir := fs.String("out", "", "Directory for chart files (default: <output dir>/charts)")
	openBrowser := fs.Bool("open", false, "Open the frequency chart in the default browser")

	fs.Usage = func() {
		fmt.Println("Usage: tablero chart <set-id> [options]")
		fmt.Println()
		fmt.Println("Render interactive HTML charts for a stored board set: per-item")
		fmt.Println("frequencies against their targets, and the spread of pairwise")
		fmt.Println("board overlaps.")
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(os.Args[2:]); err != nil {
		log.Fatalf("Error parsing flags: %v", err)
	}
	if fs.NArg() < 1 {
		fmt.Println("Error: chart command requires a board set ID")
		fmt.Println("Usage: tablero chart <set-id> [options]")
		os.Exit(1)
	}
	id := fs.Arg(0)

	cfg := loadConfigOrDie(*configPath)
	cat, err := cfg.BuildCatalog()
	if err != nil {
		log.Fatalf("Invalid catalogue: %v", err)
	}

	db := openDatabase(cfg)
	defer closeDatabase(db)

	repo := storage.NewBoardSetRepository(db)
	record, set := loadStoredSet(context.Background(), repo, id)

	dir := *outputDir
	if dir == "" {
		dir = filepath.Join(cfg.Export.OutputDir, "charts")
	}

	freqConfig := charts.DefaultChartConfig()
	freqConfig.Title = fmt.Sprintf("%s - Item Frequencies", record.Name)
	freqConfig.Subtitle = fmt.Sprintf("Achieved vs target across %d boards", record.BoardCount)
	freqPath := filepath.Join(dir, "frequency.html")
	if err := charts.RenderFrequencyChart(cat, set, freqConfig, freqPath); err != nil {
		log.Fatalf("Failed to render frequency chart: %v", err)
	}
	fmt.Printf("✓ Frequency chart written to %s\n", freqPath)

	overlapConfig := charts.DefaultChartConfig()
	overlapConfig.Title = fmt.Sprintf("%s - Board Overlap", record.Name)
	overlapConfig.Subtitle = "Distinct items shared by board pairs"
	overlapPath := filepath.Join(dir, "overlap.html")
	if err := charts.RenderOverlapChart(set, overlapConfig, overlapPath); err != nil {
		log.Fatalf("Failed to render overlap chart: %v", err)
	}
	fmt.Printf("✓ Overlap chart written to %s\n", overlapPath)

	if *openBrowser {
		if err := charts.OpenInBrowser(freqPath); err != nil {
			log.Printf("Failed to open browser: %v", err)
		}
	}
}
