package wordtree

import (
	"bytes"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/tsawler/wordtree/container"
	"github.com/tsawler/wordtree/docx"
	"github.com/tsawler/wordtree/export"
	"github.com/tsawler/wordtree/model"
)

// Extractor provides a fluent interface for converting DOCX packages.
// Each configuration method returns a new Extractor instance, making it
// safe for concurrent use and allowing method chaining.
type Extractor struct {
	// Source
	filename string
	data     []byte
	pkg      *container.Package

	// Configuration
	options ExtractOptions
	log     *zap.Logger
}

// clone creates a shallow copy of the Extractor with a deep copy of options.
func (e *Extractor) clone() *Extractor {
	return &Extractor{
		filename: e.filename,
		data:     e.data,
		pkg:      e.pkg,
		options:  e.options.clone(),
		log:      e.log,
	}
}

// open returns the package, reading it from the source if needed.
func (e *Extractor) open() (*container.Package, error) {
	if e.pkg != nil {
		return e.pkg, nil
	}
	var opts []container.Option
	if e.log != nil {
		opts = append(opts, container.WithLogger(e.log))
	}
	switch {
	case e.filename != "":
		pkg, err := container.Open(e.filename, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to open DOCX: %w", err)
		}
		return pkg, nil
	case e.data != nil:
		pkg, err := container.ReadBytes(e.data, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to read DOCX: %w", err)
		}
		return pkg, nil
	default:
		return nil, fmt.Errorf("no filename specified")
	}
}

// ============================================================================
// Configuration Methods (return new Extractor instance)
// ============================================================================

// IncludeHeaders renders headers and footers around the body.
//
// Example:
//
//	text, _, err := wordtree.Open("doc.docx").IncludeHeaders().Text()
func (e *Extractor) IncludeHeaders() *Extractor {
	newExt := e.clone()
	newExt.options.includeHeaders = true
	return newExt
}

// IncludeComments appends the comments after the body.
func (e *Extractor) IncludeComments() *Extractor {
	newExt := e.clone()
	newExt.options.includeComments = true
	return newExt
}

// ExcludeNotes leaves footnotes and endnotes out of the output.
func (e *Extractor) ExcludeNotes() *Extractor {
	newExt := e.clone()
	newExt.options.excludeNotes = true
	return newExt
}

// KeepRaw keeps the source XML fragments in JSON output.
func (e *Extractor) KeepRaw() *Extractor {
	newExt := e.clone()
	newExt.options.keepRaw = true
	return newExt
}

// Fragment renders HTML without the html, head and body wrapper.
//
// Example:
//
//	body, _, err := wordtree.Open("doc.docx").Fragment().HTML()
func (e *Extractor) Fragment() *Extractor {
	newExt := e.clone()
	newExt.options.fragment = true
	return newExt
}

// Title sets the HTML document title. Without it the title property of the
// package is used.
func (e *Extractor) Title(title string) *Extractor {
	newExt := e.clone()
	newExt.options.title = title
	return newExt
}

// DropUnknown drops elements the converter does not understand instead of
// keeping them as passthrough nodes.
func (e *Extractor) DropUnknown() *Extractor {
	newExt := e.clone()
	newExt.options.dropUnknown = true
	return newExt
}

// Ignore replaces the list of elements skipped during conversion.
// Multiple calls are cumulative.
//
// Example:
//
//	res, _, err := wordtree.Open("doc.docx").Ignore("w:proofErr", "w:lastRenderedPageBreak").Result()
func (e *Extractor) Ignore(elements ...string) *Extractor {
	newExt := e.clone()
	newExt.options.ignored = append(newExt.options.ignored, elements...)
	return newExt
}

// WithLogger sets the logger used while reading and converting.
func (e *Extractor) WithLogger(l *zap.Logger) *Extractor {
	newExt := e.clone()
	newExt.log = l
	return newExt
}

// ============================================================================
// Terminal Operations
// ============================================================================

// Result converts the package and returns the full conversion result.
// Warnings are the diagnostics the converter recorded.
func (e *Extractor) Result() (*docx.Result, []Warning, error) {
	_, res, err := e.convert()
	if err != nil {
		return nil, nil, err
	}
	return res, res.Diagnostics, nil
}

// Document converts the package and returns the main document tree.
func (e *Extractor) Document() (*model.Node, []Warning, error) {
	res, warnings, err := e.Result()
	if err != nil {
		return nil, nil, err
	}
	return res.Document, warnings, nil
}

// Text converts the package and returns its plain text, one line per
// paragraph.
//
// Example:
//
//	text, warnings, err := wordtree.Open("document.docx").Text()
func (e *Extractor) Text() (string, []Warning, error) {
	return e.render(export.FormatText)
}

// HTML converts the package and renders it as HTML.
func (e *Extractor) HTML() (string, []Warning, error) {
	return e.render(export.FormatHTML)
}

// JSON converts the package and returns the conversion result as JSON.
func (e *Extractor) JSON() (string, []Warning, error) {
	return e.render(export.FormatJSON)
}

// Metadata returns the document properties of the package.
func (e *Extractor) Metadata() (container.Metadata, error) {
	pkg, err := e.open()
	if err != nil {
		return container.Metadata{}, err
	}
	return pkg.Metadata(), nil
}

// RoundTrip converts the package, exports the tree back to
// WordprocessingML and writes the resulting package to w. Parts the
// converter does not handle are copied unchanged.
func (e *Extractor) RoundTrip(w io.Writer) ([]Warning, error) {
	pkg, res, err := e.convert()
	if err != nil {
		return nil, err
	}
	replaced, err := pkg.ExportResult(res, e.docxOptions()...)
	if err != nil {
		return nil, err
	}
	if err := container.Write(w, pkg, replaced); err != nil {
		return nil, err
	}
	return res.Diagnostics, nil
}

func (e *Extractor) docxOptions() []docx.Option {
	opts := e.options.docxOptions()
	if e.log != nil {
		opts = append(opts, docx.WithLogger(e.log))
	}
	return opts
}

func (e *Extractor) convert() (*container.Package, *docx.Result, error) {
	pkg, err := e.open()
	if err != nil {
		return nil, nil, err
	}
	res, err := pkg.Convert(e.docxOptions()...)
	if err != nil {
		return nil, nil, err
	}
	return pkg, res, nil
}

func (e *Extractor) render(format export.Format) (string, []Warning, error) {
	pkg, res, err := e.convert()
	if err != nil {
		return "", nil, err
	}
	cfg := e.options.exportConfig(format)
	if cfg.Title == "" {
		cfg.Title = pkg.Metadata().Title
	}
	var buf bytes.Buffer
	if err := export.NewExporterWithConfig(cfg).Export(&buf, res); err != nil {
		return "", nil, err
	}
	return buf.String(), res.Diagnostics, nil
}
