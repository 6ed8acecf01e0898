package container

import (
	"archive/zip"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/tsawler/wordtree/docx"
	"github.com/tsawler/wordtree/model"
	"github.com/tsawler/wordtree/xmlnode"
)

// Write writes original to w with the parts in replaced serialized in place
// of their original content. Files keep their archive order; replaced parts
// that did not exist are appended in name order.
func Write(w io.Writer, original *Package, replaced map[string]*xmlnode.Element) error {
	zw := zip.NewWriter(w)

	written := make(map[string]bool, len(replaced))
	for _, f := range original.files {
		data := f.data
		if el, ok := replaced[f.name]; ok {
			b, err := xmlnode.Marshal(el)
			if err != nil {
				return fmt.Errorf("serializing %s: %w", f.name, err)
			}
			data = b
			written[f.name] = true
		}
		if err := writeFile(zw, f.name, f.method, f.modified, data); err != nil {
			return err
		}
	}

	var added []string
	for name := range replaced {
		if !written[name] {
			added = append(added, name)
		}
	}
	sort.Strings(added)
	for _, name := range added {
		b, err := xmlnode.Marshal(replaced[name])
		if err != nil {
			return fmt.Errorf("serializing %s: %w", name, err)
		}
		if err := writeFile(zw, name, zip.Deflate, time.Time{}, b); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finishing ZIP archive: %w", err)
	}
	return nil
}

func writeFile(zw *zip.Writer, name string, method uint16, modified time.Time, data []byte) error {
	hdr := &zip.FileHeader{Name: name, Method: method, Modified: modified}
	fw, err := zw.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	if _, err := fw.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// ExportResult decodes a converted, possibly edited, result back into the
// parts it came from. Comments, notes, headers and footers are only
// replaced when the package already has the part.
func (p *Package) ExportResult(res *docx.Result, opts ...docx.Option) (map[string]*xmlnode.Element, error) {
	x := docx.NewExporter(res.Styles, opts...)
	out := make(map[string]*xmlnode.Element)

	doc, err := x.Document(res.Document)
	if err != nil {
		return nil, fmt.Errorf("exporting %s: %w", p.MainPart, err)
	}
	out[p.MainPart] = doc

	if name, ok := p.Path(docx.PartComments); ok {
		comments, extended, err := x.ExportComments(res.Comments)
		if err != nil {
			return nil, fmt.Errorf("exporting %s: %w", name, err)
		}
		out[name] = comments
		if ext, ok := p.Path(docx.PartCommentsExtended); ok {
			out[ext] = extended
		}
	}

	for _, notes := range []struct {
		canonical string
		entries   []docx.NoteEntry
		endnotes  bool
	}{
		{docx.PartFootnotes, res.Footnotes, false},
		{docx.PartEndnotes, res.Endnotes, true},
	} {
		name, ok := p.Path(notes.canonical)
		if !ok {
			continue
		}
		root, err := x.ExportNotes(notes.entries, notes.endnotes)
		if err != nil {
			return nil, fmt.Errorf("exporting %s: %w", name, err)
		}
		out[name] = root
	}

	for _, parts := range []map[string]*model.Node{res.Headers, res.Footers} {
		for _, n := range parts {
			name := n.Attrs.String("path")
			if _, ok := p.parts[name]; !ok {
				continue
			}
			root, err := x.Part(n)
			if err != nil {
				return nil, fmt.Errorf("exporting %s: %w", name, err)
			}
			out[name] = root
		}
	}
	return out, nil
}
