package docx

import (
	"github.com/tsawler/wordtree/model"
	"github.com/tsawler/wordtree/xmlnode"
)

// NoteEntry is one footnote or endnote.
type NoteEntry struct {
	ID      string        `json:"id"`
	Type    string        `json:"type,omitempty"`
	Content []*model.Node `json:"content,omitempty"`
}

// parseNotes converts the w:footnote or w:endnote children of a notes part.
// Separator notes are layout furniture and are skipped.
func (c *Context) parseNotes(root *xmlnode.Element, part, tag string) []NoteEntry {
	if root == nil {
		return nil
	}
	nc := c.withPart(part, c.partRels(part))
	var out []NoteEntry
	for _, n := range root.ChildrenNamed(tag) {
		typ := n.AttrOr("w:type", "normal")
		if typ == "separator" || typ == "continuationSeparator" || typ == "continuationNotice" {
			continue
		}
		out = append(out, NoteEntry{
			ID:      n.AttrOr("w:id", ""),
			Type:    typ,
			Content: nc.encode(n.ElementChildren()),
		})
	}
	return out
}

// noteReferenceTranslator handles w:footnoteReference and w:endnoteReference.
type noteReferenceTranslator struct{}

func (noteReferenceTranslator) Name() string     { return "noteReference" }
func (noteReferenceTranslator) Kind() model.Kind { return model.KindFootnoteReference }

func (noteReferenceTranslator) Encode(c *Context, elems []*xmlnode.Element) (Encoded, error) {
	el := elems[0]
	kind := model.KindFootnoteReference
	if el.Name == "w:endnoteReference" {
		kind = model.KindEndnoteReference
	}
	attrs := model.Attrs{"id": el.AttrOr("w:id", "")}
	if v, ok := el.Attr("w:customMarkFollows"); ok {
		attrs["customMarkFollows"] = v
	}
	c.advance(1)
	return single(model.NewNode(kind, attrs)), nil
}

func (noteReferenceTranslator) Decode(_ *Exporter, n *model.Node) ([]*xmlnode.Element, error) {
	name := "w:footnoteReference"
	if n.Kind == model.KindEndnoteReference {
		name = "w:endnoteReference"
	}
	attrs := map[string]string{"w:id": n.Attrs.String("id")}
	if v := n.Attrs.String("customMarkFollows"); v != "" {
		attrs["w:customMarkFollows"] = v
	}
	return []*xmlnode.Element{xmlnode.New(name, attrs)}, nil
}

// ExportNotes decodes note entries into a w:footnotes or w:endnotes part.
// The separator notes Word expects are regenerated with ids -1 and 0.
func (x *Exporter) ExportNotes(entries []NoteEntry, endnotes bool) (*xmlnode.Element, error) {
	root, tag := "w:footnotes", "w:footnote"
	if endnotes {
		root, tag = "w:endnotes", "w:endnote"
	}
	children := []*xmlnode.Element{
		separatorNote(tag, "-1", "separator", "w:separator"),
		separatorNote(tag, "0", "continuationSeparator", "w:continuationSeparator"),
	}
	for _, e := range entries {
		content, err := x.DecodeNodes(e.Content)
		if err != nil {
			return nil, err
		}
		attrs := map[string]string{"w:id": e.ID}
		if e.Type != "" && e.Type != "normal" {
			attrs["w:type"] = e.Type
		}
		children = append(children, xmlnode.New(tag, attrs, content...))
	}
	return xmlnode.New(root, defaultNamespaces, children...), nil
}

func separatorNote(tag, id, typ, marker string) *xmlnode.Element {
	return xmlnode.New(tag, map[string]string{"w:id": id, "w:type": typ},
		xmlnode.New("w:p", nil, xmlnode.New("w:r", nil, xmlnode.New(marker, nil))))
}
