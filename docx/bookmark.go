package docx

import (
	"github.com/tsawler/wordtree/model"
	"github.com/tsawler/wordtree/xmlnode"
)

// bookmarkTranslator handles w:bookmarkStart. A start immediately followed by
// its own end collapses into one bookmark node.
type bookmarkTranslator struct{}

func (bookmarkTranslator) Name() string     { return "bookmarkStart" }
func (bookmarkTranslator) Kind() model.Kind { return model.KindBookmarkStart }

func (bookmarkTranslator) Encode(c *Context, elems []*xmlnode.Element) (Encoded, error) {
	start := elems[0]
	id := start.AttrOr("w:id", "")
	attrs := model.Attrs{
		"id":   id,
		"name": start.AttrOr("w:name", ""),
	}
	if v, ok := start.Attr("w:colFirst"); ok {
		attrs["colFirst"] = v
	}
	if v, ok := start.Attr("w:colLast"); ok {
		attrs["colLast"] = v
	}
	if len(start.Attrs) > 0 {
		attrs["xmlAttributes"] = start.Attrs
	}

	if len(elems) > 1 && elems[1].Is("w:bookmarkEnd") && elems[1].AttrOr("w:id", "") == id {
		return Encoded{Nodes: []*model.Node{model.NewNode(model.KindBookmark, attrs)}, Consumed: 2}, nil
	}
	return single(model.NewNode(model.KindBookmarkStart, attrs)), nil
}

func (bookmarkTranslator) Decode(_ *Exporter, n *model.Node) ([]*xmlnode.Element, error) {
	attrs := stringMap(n.Attrs["xmlAttributes"])
	attrs = withStringAttr(attrs, "w:id", n.Attrs.String("id"))
	attrs["w:name"] = n.Attrs.String("name")
	for _, k := range []string{"colFirst", "colLast"} {
		if v := n.Attrs.String(k); v != "" {
			attrs["w:"+k] = v
		}
	}
	out := []*xmlnode.Element{xmlnode.New("w:bookmarkStart", attrs)}
	if n.Kind == model.KindBookmark {
		out = append(out, xmlnode.New("w:bookmarkEnd", map[string]string{"w:id": n.Attrs.String("id")}))
	}
	return out, nil
}

// bookmarkEndTranslator handles a w:bookmarkEnd not adjacent to its start.
type bookmarkEndTranslator struct{}

func (bookmarkEndTranslator) Name() string     { return "bookmarkEnd" }
func (bookmarkEndTranslator) Kind() model.Kind { return model.KindBookmarkEnd }

func (bookmarkEndTranslator) Encode(_ *Context, elems []*xmlnode.Element) (Encoded, error) {
	return single(model.NewNode(model.KindBookmarkEnd, model.Attrs{"id": elems[0].AttrOr("w:id", "")})), nil
}

func (bookmarkEndTranslator) Decode(_ *Exporter, n *model.Node) ([]*xmlnode.Element, error) {
	return []*xmlnode.Element{xmlnode.New("w:bookmarkEnd", map[string]string{"w:id": n.Attrs.String("id")})}, nil
}
