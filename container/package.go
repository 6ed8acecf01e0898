// Package container reads and writes DOCX packages.
//
// A [Package] holds every file of the zip archive in archive order, the
// parsed XML parts, and the relationships between them. [Package.Parts]
// produces the input of docx.Convert and [Package.Relationships] the
// resolver for the main document.
package container

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tsawler/wordtree/docx"
	"github.com/tsawler/wordtree/xmlnode"
)

// ErrMissingPart is returned when a required package part is absent.
var ErrMissingPart = errors.New("container: missing required part")

const (
	contentTypesPath = "[Content_Types].xml"
	rootRelsPath     = "_rels/.rels"
	defaultMainPart  = "word/document.xml"
)

// Relationship type suffixes of the parts the conversion core consumes.
var auxiliaryParts = map[string]string{
	"/styles":           docx.PartStyles,
	"/numbering":        docx.PartNumbering,
	"/comments":         docx.PartComments,
	"/commentsExtended": docx.PartCommentsExtended,
	"/footnotes":        docx.PartFootnotes,
	"/endnotes":         docx.PartEndnotes,
}

type file struct {
	name     string
	method   uint16
	modified time.Time
	data     []byte
}

// Package is an opened DOCX package.
type Package struct {
	// MainPart is the path of the main document part.
	MainPart string
	// Type is the document type declared for the main part.
	Type DocumentType

	files     []file
	index     map[string]int
	parts     map[string]*xmlnode.Element
	canonical map[string]string
	log       *zap.Logger
}

// Option configures how a package is read.
type Option func(*Package)

// WithLogger sets the logger used for recoverable problems such as
// unparsable optional parts.
func WithLogger(l *zap.Logger) Option {
	return func(p *Package) {
		if l != nil {
			p.log = l
		}
	}
}

// Open opens a DOCX file.
func Open(filename string, opts ...Option) (*Package, error) {
	zr, err := zip.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("opening ZIP archive: %w", err)
	}
	defer zr.Close()
	return load(&zr.Reader, opts)
}

// Read reads a DOCX package from r.
func Read(r io.ReaderAt, size int64, opts ...Option) (*Package, error) {
	if err := sniff(r); err != nil {
		return nil, fmt.Errorf("opening ZIP archive: %w", err)
	}
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("opening ZIP archive: %w", err)
	}
	return load(zr, opts)
}

// ReadBytes reads a DOCX package held in memory.
func ReadBytes(data []byte, opts ...Option) (*Package, error) {
	return Read(bytes.NewReader(data), int64(len(data)), opts...)
}

func load(zr *zip.Reader, opts []Option) (*Package, error) {
	p := &Package{
		index:     make(map[string]int),
		parts:     make(map[string]*xmlnode.Element),
		canonical: make(map[string]string),
		log:       zap.NewNop(),
	}
	for _, o := range opts {
		o(p)
	}

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		data, err := readFile(f)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f.Name, err)
		}
		p.index[f.Name] = len(p.files)
		p.files = append(p.files, file{name: f.Name, method: f.Method, modified: f.Modified, data: data})
	}

	if err := p.validate(); err != nil {
		return nil, err
	}

	for _, f := range p.files {
		if !isXMLPart(f.name) {
			continue
		}
		el, err := xmlnode.Parse(f.data)
		if err != nil {
			p.log.Warn("skipping unparsable part", zap.String("part", f.name), zap.Error(err))
			continue
		}
		p.parts[f.name] = el
	}

	p.MainPart = p.mainPart()
	typ, err := p.detectType()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.MainPart, err)
	}
	p.Type = typ
	if _, ok := p.parts[p.MainPart]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingPart, p.MainPart)
	}
	p.mapAuxiliaryParts()
	return p, nil
}

func readFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// validate checks that the archive is an OPC package.
func (p *Package) validate() error {
	if _, ok := p.index[contentTypesPath]; !ok {
		return fmt.Errorf("%w: %s", ErrMissingPart, contentTypesPath)
	}
	return nil
}

func isXMLPart(name string) bool {
	return strings.HasSuffix(name, ".xml") || strings.HasSuffix(name, ".rels")
}

// mainPart follows the officeDocument relationship of the package root.
func (p *Package) mainPart() string {
	for _, rel := range p.RelationshipsFor("").All() {
		if strings.HasSuffix(rel.Type, "/officeDocument") && !rel.External {
			return rel.Path
		}
	}
	return defaultMainPart
}

// mapAuxiliaryParts locates styles, numbering, comments and notes through
// the main document's relationships, falling back to the conventional paths.
func (p *Package) mapAuxiliaryParts() {
	p.canonical[docx.PartDocument] = p.MainPart
	for _, rel := range p.Relationships().All() {
		if rel.External {
			continue
		}
		for suffix, canonical := range auxiliaryParts {
			if strings.HasSuffix(rel.Type, suffix) {
				p.canonical[canonical] = rel.Path
			}
		}
	}
	for _, canonical := range auxiliaryParts {
		if _, ok := p.canonical[canonical]; ok {
			continue
		}
		if _, ok := p.parts[canonical]; ok {
			p.canonical[canonical] = canonical
		}
	}
}

// Names returns the file names of the archive in archive order.
func (p *Package) Names() []string {
	out := make([]string, len(p.files))
	for i, f := range p.files {
		out[i] = f.name
	}
	return out
}

// Data returns the raw bytes of a file.
func (p *Package) Data(name string) ([]byte, bool) {
	i, ok := p.index[name]
	if !ok {
		return nil, false
	}
	return p.files[i].data, true
}

// Part returns the parsed root of an XML part, or nil.
func (p *Package) Part(name string) *xmlnode.Element {
	return p.parts[name]
}

// Path returns the archive path of a part known to the conversion core by
// its conventional name, such as docx.PartStyles.
func (p *Package) Path(canonical string) (string, bool) {
	name, ok := p.canonical[canonical]
	return name, ok
}

// Parts returns the parts consumed by docx.Convert keyed by their
// conventional names.
func (p *Package) Parts() map[string]*xmlnode.Element {
	out := make(map[string]*xmlnode.Element, len(p.canonical))
	for canonical, name := range p.canonical {
		if el := p.parts[name]; el != nil {
			out[canonical] = el
		}
	}
	return out
}

// Relationships returns the relationships of the main document part.
func (p *Package) Relationships() *Relationships {
	return p.RelationshipsFor(p.MainPart)
}

// Convert converts the package with docx.Convert.
func (p *Package) Convert(opts ...docx.Option) (*docx.Result, error) {
	res, err := docx.Convert(p.Parts(), p.Relationships(), opts...)
	if err != nil {
		return nil, fmt.Errorf("converting %s: %w", p.MainPart, err)
	}
	return res, nil
}

// relsPath returns the relationships part of source, e.g.
// word/document.xml -> word/_rels/document.xml.rels. The package root is "".
func relsPath(source string) string {
	if source == "" {
		return rootRelsPath
	}
	return path.Join(path.Dir(source), "_rels", path.Base(source)+".rels")
}
