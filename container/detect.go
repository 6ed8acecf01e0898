package container

import (
	"errors"
	"io"
	"path/filepath"
	"strings"
)

// ErrNotPackage is returned for input that is not a ZIP archive.
var ErrNotPackage = errors.New("container: not a ZIP archive")

// ErrNotWordprocessing is returned for OOXML packages of another kind, such
// as spreadsheets and presentations.
var ErrNotWordprocessing = errors.New("container: not a wordprocessing package")

// DocumentType represents the kind of WordprocessingML package.
type DocumentType int

const (
	// Unknown indicates an unrecognized package.
	Unknown DocumentType = iota
	// Document indicates a Word document (.docx).
	Document
	// MacroDocument indicates a macro-enabled Word document (.docm).
	MacroDocument
	// Template indicates a Word template (.dotx).
	Template
	// MacroTemplate indicates a macro-enabled Word template (.dotm).
	MacroTemplate
)

// String returns the string representation of the type.
func (d DocumentType) String() string {
	switch d {
	case Document:
		return "DOCX"
	case MacroDocument:
		return "DOCM"
	case Template:
		return "DOTX"
	case MacroTemplate:
		return "DOTM"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the type.
func (d DocumentType) Extension() string {
	switch d {
	case Document:
		return ".docx"
	case MacroDocument:
		return ".docm"
	case Template:
		return ".dotx"
	case MacroTemplate:
		return ".dotm"
	default:
		return ""
	}
}

// Content types of the main document part.
var mainContentTypes = map[string]DocumentType{
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml": Document,
	"application/vnd.ms-word.document.macroEnabled.main+xml":                           MacroDocument,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.template.main+xml": Template,
	"application/vnd.ms-word.template.macroEnabledTemplate.main+xml":                   MacroTemplate,
}

// Detect determines the document type from a filename extension.
func Detect(filename string) DocumentType {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".docx":
		return Document
	case ".docm":
		return MacroDocument
	case ".dotx":
		return Template
	case ".dotm":
		return MacroTemplate
	default:
		return Unknown
	}
}

// IsZip checks the local file header magic PK\x03\x04.
func IsZip(data []byte) bool {
	return len(data) >= 4 && data[0] == 0x50 && data[1] == 0x4B && data[2] == 0x03 && data[3] == 0x04
}

// sniff rejects input that does not start like a ZIP archive.
func sniff(r io.ReaderAt) error {
	magic := make([]byte, 4)
	n, err := r.ReadAt(magic, 0)
	if err != nil && err != io.EOF {
		return err
	}
	if !IsZip(magic[:n]) {
		return ErrNotPackage
	}
	return nil
}

// detectType reads the content type of the main part. Any other main part
// content type is rejected; a missing override means a plain document.
func (p *Package) detectType() (DocumentType, error) {
	types := p.parts[contentTypesPath]
	want := "/" + p.MainPart
	for _, o := range types.ChildrenNamed("Override") {
		if !strings.EqualFold(o.AttrOr("PartName", ""), want) {
			continue
		}
		ct := o.AttrOr("ContentType", "")
		if t, ok := mainContentTypes[ct]; ok {
			return t, nil
		}
		return Unknown, ErrNotWordprocessing
	}
	return Document, nil
}
