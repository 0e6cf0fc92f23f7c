// Package export serializes board set documents to JSON, CSV and Markdown,
// writing to files or streams.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Format represents the export format.
type Format string

const (
	// FormatJSON represents JSON export format.
	FormatJSON Format = "json"
	// FormatCSV represents CSV export format.
	FormatCSV Format = "csv"
	// FormatMarkdown represents Markdown export format.
	FormatMarkdown Format = "md"
)

// Options holds configuration for export operations.
type Options struct {
	Format     Format
	FilePath   string
	PrettyJSON bool
	Overwrite  bool
}

// Exporter writes board set documents to files.
type Exporter struct {
	opts Options
}

// NewExporter creates a new Exporter with the given options.
func NewExporter(opts Options) *Exporter {
	return &Exporter{opts: opts}
}

// Export writes the document in the configured format.
func (e *Exporter) Export(doc Document) error {
	switch e.opts.Format {
	case FormatJSON:
		return e.exportJSON(doc)
	case FormatCSV:
		return e.exportCSV(doc)
	case FormatMarkdown:
		return e.exportMarkdown(doc)
	default:
		return fmt.Errorf("unsupported export format: %s", e.opts.Format)
	}
}

func (e *Exporter) exportJSON(doc Document) error {
	var output []byte
	var err error

	if e.opts.PrettyJSON {
		output, err = json.MarshalIndent(doc, "", "  ")
	} else {
		output, err = json.Marshal(doc)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	return e.writeToFile(output)
}

func (e *Exporter) exportCSV(doc Document) (err error) {
	file, fileErr := e.createFile()
	if fileErr != nil {
		return fileErr
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return writeCSV(file, doc)
}

func (e *Exporter) exportMarkdown(doc Document) error {
	return e.writeToFile(renderMarkdown(doc))
}

// writeCSV emits one row per board: the board number followed by every cell
// in draw order.
func writeCSV(w io.Writer, doc Document) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := make([]string, 0, doc.ItemsPerBoard+1)
	header = append(header, "board_number")
	for i := 1; i <= doc.ItemsPerBoard; i++ {
		header = append(header, fmt.Sprintf("cell_%d", i))
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, board := range doc.Boards {
		row := make([]string, 0, len(header))
		row = append(row, fmt.Sprintf("%d", board.BoardNumber))
		row = append(row, board.Items...)
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row for board %d: %w", board.BoardNumber, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

// renderMarkdown lays each board out as a pipe table under its own heading,
// suitable for printing.
func renderMarkdown(doc Document) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", doc.Game))
	buf.WriteString(fmt.Sprintf("**Boards:** %d\n\n", doc.TotalBoards))
	buf.WriteString(fmt.Sprintf("**Board Size:** %s (%d items)\n\n", doc.BoardSize, doc.ItemsPerBoard))

	for _, board := range doc.Boards {
		buf.WriteString(fmt.Sprintf("## Board %d\n\n", board.BoardNumber))
		if len(board.Grid) == 0 {
			continue
		}

		columns := len(board.Grid[0])
		for i := 0; i < columns; i++ {
			buf.WriteString("| ")
		}
		buf.WriteString("|\n")
		for i := 0; i < columns; i++ {
			buf.WriteString("|---")
		}
		buf.WriteString("|\n")

		for _, row := range board.Grid {
			for _, cell := range row {
				buf.WriteString(fmt.Sprintf("| %s ", cell))
			}
			buf.WriteString("|\n")
		}
		buf.WriteString("\n")
	}

	return buf.Bytes()
}

// writeToFile writes data to the configured file path.
func (e *Exporter) writeToFile(data []byte) (err error) {
	file, fileErr := e.createFile()
	if fileErr != nil {
		return fileErr
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	_, err = file.Write(data)
	if err != nil {
		return fmt.Errorf("failed to write to file: %w", err)
	}

	return nil
}

// createFile creates the output file, handling overwrite settings.
func (e *Exporter) createFile() (*os.File, error) {
	dir := filepath.Dir(e.opts.FilePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	if _, err := os.Stat(e.opts.FilePath); err == nil && !e.opts.Overwrite {
		return nil, fmt.Errorf("file already exists: %s (use overwrite option to replace)", e.opts.FilePath)
	}

	file, err := os.Create(e.opts.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	return file, nil
}

// ExportToWriter exports a document to an io.Writer instead of a file.
// Useful for writing to stdout or other streams.
func ExportToWriter(w io.Writer, format Format, doc Document, prettyJSON bool) error {
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		if prettyJSON {
			encoder.SetIndent("", "  ")
		}
		return encoder.Encode(doc)
	case FormatCSV:
		return writeCSV(w, doc)
	case FormatMarkdown:
		_, err := w.Write(renderMarkdown(doc))
		return err
	default:
		return fmt.Errorf("unsupported export format: %s", format)
	}
}

// GenerateFilename generates a default filename based on a prefix and format.
func GenerateFilename(prefix string, format Format) string {
	timestamp := time.Now().Format("20060102_150405")
	return fmt.Sprintf("%s_%s.%s", prefix, timestamp, format)
}
