package docx

import (
	"github.com/tsawler/wordtree/model"
	"github.com/tsawler/wordtree/xmlnode"
)

// hyperlinkTranslator handles w:hyperlink. The target of r:id is resolved
// through the part's relationships; every inline leaf below gets a link mark.
type hyperlinkTranslator struct{}

func (hyperlinkTranslator) Name() string     { return "hyperlink" }
func (hyperlinkTranslator) Kind() model.Kind { return model.KindHyperlink }

func (hyperlinkTranslator) Encode(c *Context, elems []*xmlnode.Element) (Encoded, error) {
	el := elems[0]
	attrs := model.Attrs{}
	link := model.Attrs{}

	if rID, ok := el.Attr("r:id"); ok && rID != "" {
		attrs["rId"] = rID
		link["rId"] = rID
		if target, _, ok := c.rels.Target(rID); ok {
			attrs["href"] = target
			link["href"] = target
		} else {
			c.malformed(el, "hyperlink relationship "+rID+" not found")
		}
	}
	if anchor, ok := el.Attr("w:anchor"); ok {
		attrs["anchor"] = anchor
		link["anchor"] = anchor
		if !attrs.Has("href") {
			link["href"] = "#" + anchor
		}
	}
	if tip, ok := el.Attr("w:tooltip"); ok {
		attrs["tooltip"] = tip
		link["tooltip"] = tip
	}
	if v, ok := el.Attr("w:history"); ok {
		attrs["history"] = v
	}
	if v, ok := el.Attr("w:docLocation"); ok {
		attrs["docLocation"] = v
	}

	content := c.encode(el.ElementChildren())
	mark := model.Mark{Type: model.MarkLink, Attrs: link}
	for i, n := range content {
		content[i] = n.AddMarks(mark)
	}
	return single(model.NewNode(model.KindHyperlink, attrs, content...)), nil
}

func (hyperlinkTranslator) Decode(x *Exporter, n *model.Node) ([]*xmlnode.Element, error) {
	children, err := x.insideLink().DecodeNodes(n.Content)
	if err != nil {
		return nil, err
	}
	attrs := map[string]string{}
	for key, tag := range map[string]string{
		"rId":         "r:id",
		"anchor":      "w:anchor",
		"tooltip":     "w:tooltip",
		"history":     "w:history",
		"docLocation": "w:docLocation",
	} {
		if v := n.Attrs.String(key); v != "" {
			attrs[tag] = v
		}
	}
	return []*xmlnode.Element{xmlnode.New("w:hyperlink", attrs, children...)}, nil
}

// linkAttrs builds w:hyperlink attributes from a link mark. Marks without a
// relationship id or anchor produce a wrapper with neither; the caller's
// relationship writer owns new external targets.
func linkAttrs(m model.Attrs) map[string]string {
	attrs := map[string]string{}
	if v := m.String("rId"); v != "" {
		attrs["r:id"] = v
	}
	if v := m.String("anchor"); v != "" {
		attrs["w:anchor"] = v
	}
	if v := m.String("tooltip"); v != "" {
		attrs["w:tooltip"] = v
	}
	if v := m.String("history"); v != "" {
		attrs["w:history"] = v
	}
	return attrs
}
