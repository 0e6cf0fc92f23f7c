package export

import (
	"fmt"
	"io"
)

// Builder provides a fluent API for configuring and executing an export.
//
// Example usage:
//
//	err := NewBuilder().
//	    WithFormat(FormatJSON).
//	    WithFilePath("boards.json").
//	    WithPrettyJSON(true).
//	    Export(doc)
type Builder struct {
	format     Format
	filePath   string
	prettyJSON bool
	overwrite  bool
	writer     io.Writer
	useWriter  bool
}

// NewBuilder creates a Builder with JSON output and no destination set.
func NewBuilder() *Builder {
	return &Builder{format: FormatJSON}
}

// WithFormat sets the export format.
func (b *Builder) WithFormat(format Format) *Builder {
	b.format = format
	return b
}

// WithFilePath sets the output file path. The directory is created on
// demand when the export runs.
func (b *Builder) WithFilePath(filePath string) *Builder {
	b.filePath = filePath
	b.useWriter = false
	return b
}

// WithWriter directs output to an io.Writer instead of a file.
func (b *Builder) WithWriter(w io.Writer) *Builder {
	b.writer = w
	b.useWriter = true
	return b
}

// WithPrettyJSON enables indentation for JSON exports.
func (b *Builder) WithPrettyJSON(pretty bool) *Builder {
	b.prettyJSON = pretty
	return b
}

// WithOverwrite allows replacing an existing output file.
func (b *Builder) WithOverwrite(overwrite bool) *Builder {
	b.overwrite = overwrite
	return b
}

// WithDefaultFilename derives a timestamped filename from the prefix, e.g.
// "boards_20240101_120000.json".
func (b *Builder) WithDefaultFilename(prefix string) *Builder {
	b.filePath = GenerateFilename(prefix, b.format)
	b.useWriter = false
	return b
}

// Build creates an Options struct from the builder's configuration.
func (b *Builder) Build() Options {
	return Options{
		Format:     b.format,
		FilePath:   b.filePath,
		PrettyJSON: b.prettyJSON,
		Overwrite:  b.overwrite,
	}
}

// Export runs the export with the configured settings.
func (b *Builder) Export(doc Document) error {
	if err := b.validate(); err != nil {
		return err
	}

	if b.useWriter {
		return ExportToWriter(b.writer, b.format, doc, b.prettyJSON)
	}

	return NewExporter(b.Build()).Export(doc)
}

func (b *Builder) validate() error {
	if !b.useWriter && b.filePath == "" {
		return fmt.Errorf("either file path or writer must be set")
	}

	switch b.format {
	case FormatJSON, FormatCSV, FormatMarkdown:
	default:
		return fmt.Errorf("unsupported export format: %s", b.format)
	}

	return nil
}
