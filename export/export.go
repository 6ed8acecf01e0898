// Package export renders converted documents as JSON, HTML or plain text.
//
// The renderers only read the tree produced by docx.Convert; they never
// modify it. Use [NewExporter] for the defaults or [NewExporterWithConfig]
// to choose the format and what is included.
package export

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/tsawler/wordtree/docx"
)

// Format defines the available export formats
type Format int

const (
	// FormatJSON exports the document tree and its side tables as JSON
	FormatJSON Format = iota
	// FormatHTML exports an HTML document
	FormatHTML
	// FormatText exports plain text, one block per line
	FormatText
)

// String returns a human-readable representation of the format
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatHTML:
		return "html"
	case FormatText:
		return "text"
	default:
		return "unknown"
	}
}

// FileExtension returns the typical file extension for this format
func (f Format) FileExtension() string {
	switch f {
	case FormatJSON:
		return ".json"
	case FormatHTML:
		return ".html"
	default:
		return ".txt"
	}
}

// ParseFormat is the inverse of Format.String. "txt" is accepted for text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "html", "htm":
		return FormatHTML, nil
	case "text", "txt":
		return FormatText, nil
	}
	return 0, fmt.Errorf("export: unknown format %q", s)
}

// Config holds configuration options for export
type Config struct {
	// Format specifies the export format
	Format Format

	// PrettyPrint indents JSON output
	PrettyPrint bool

	// IncludeRaw keeps the source XML fragments stored on nodes and marks
	// in JSON output. They are only needed to export the tree back to DOCX.
	IncludeRaw bool

	// IncludeHeaders renders headers and footers around the body
	IncludeHeaders bool

	// IncludeNotes appends footnotes and endnotes after the body
	IncludeNotes bool

	// IncludeComments appends comments after the body (HTML and text)
	IncludeComments bool

	// Fragment renders only the body content in HTML, without html/head/body
	Fragment bool

	// Title is the HTML document title
	Title string
}

// DefaultConfig returns sensible defaults for export configuration
func DefaultConfig() Config {
	return Config{
		Format:       FormatJSON,
		PrettyPrint:  true,
		IncludeNotes: true,
	}
}

// HTMLConfig returns a config for standalone HTML documents
func HTMLConfig() Config {
	config := DefaultConfig()
	config.Format = FormatHTML
	config.IncludeHeaders = true
	config.IncludeComments = true
	return config
}

// TextConfig returns a config for plain text
func TextConfig() Config {
	config := DefaultConfig()
	config.Format = FormatText
	return config
}

// Exporter renders conversion results
type Exporter struct {
	config Config
}

// NewExporter creates a new exporter with default configuration
func NewExporter() *Exporter {
	return &Exporter{config: DefaultConfig()}
}

// NewExporterWithConfig creates an exporter with custom configuration
func NewExporterWithConfig(config Config) *Exporter {
	return &Exporter{config: config}
}

// Config returns the exporter configuration
func (e *Exporter) Config() Config { return e.config }

// Export writes res to w in the configured format
func (e *Exporter) Export(w io.Writer, res *docx.Result) error {
	if res == nil || res.Document == nil {
		return fmt.Errorf("export: nothing to export")
	}
	switch e.config.Format {
	case FormatJSON:
		return writeJSON(w, res, e.config)
	case FormatHTML:
		return writeHTML(w, res, e.config)
	case FormatText:
		_, err := io.WriteString(w, plainText(res, e.config))
		return err
	default:
		return fmt.Errorf("export: unsupported format %v", e.config.Format)
	}
}

// ExportToString renders res and returns the output
func (e *Exporter) ExportToString(res *docx.Result) (string, error) {
	var buf bytes.Buffer
	if err := e.Export(&buf, res); err != nil {
		return "", err
	}
	return buf.String(), nil
}
