// Package wordtree provides a fluent API for converting DOCX files into a
// document tree and rendering that tree as text, HTML or JSON.
//
// Basic usage:
//
//	text, warnings, err := wordtree.Open("report.docx").Text()
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", wordtree.FormatWarnings(warnings))
//	}
//
// With options:
//
//	html, _, err := wordtree.Open("report.docx").
//	    IncludeHeaders().
//	    IncludeComments().
//	    HTML()
//
// For lower-level access use the container, docx and export packages.
package wordtree

import (
	"strings"

	"github.com/tsawler/wordtree/container"
	"github.com/tsawler/wordtree/docx"
)

// Warning is a non-fatal problem reported by the converter.
type Warning = docx.Diagnostic

// Open returns an Extractor for a DOCX file. The file is read by the first
// terminal operation, such as Text.
//
// Example:
//
//	text, warnings, err := wordtree.Open("document.docx").Text()
func Open(filename string) *Extractor {
	return &Extractor{
		filename: filename,
		options:  defaultOptions(),
	}
}

// FromBytes returns an Extractor for a DOCX package held in memory.
func FromBytes(data []byte) *Extractor {
	return &Extractor{
		data:    data,
		options: defaultOptions(),
	}
}

// FromPackage returns an Extractor for an already opened package.
//
// Example:
//
//	pkg, err := container.Open("document.docx")
//	if err != nil {
//	    // handle error
//	}
//	html, _, err := wordtree.FromPackage(pkg).HTML()
func FromPackage(pkg *container.Package) *Extractor {
	return &Extractor{
		pkg:     pkg,
		options: defaultOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	meta := wordtree.Must(wordtree.Open("document.docx").Metadata())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustText is a helper that wraps a call to Text, HTML or JSON and panics
// if the error is non-nil. It discards warnings and returns just the value.
//
// Example:
//
//	text := wordtree.MustText(wordtree.Open("document.docx").Text())
func MustText[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// FormatWarnings renders warnings one per line.
func FormatWarnings(warnings []Warning) string {
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}
