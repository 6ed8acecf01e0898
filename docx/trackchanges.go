package docx

import (
	"github.com/tsawler/wordtree/model"
	"github.com/tsawler/wordtree/xmlnode"
)

// trackChangeTranslator handles w:ins, w:del, w:moveTo and w:moveFrom. The
// wrapper disappears; its children are re-dispatched and every inline leaf
// below receives a trackInsert or trackDelete mark. Runs and marker nodes
// (field chars, bookmarks, references) keep the change under trackKey.
type trackChangeTranslator struct{}

func (trackChangeTranslator) Name() string     { return "trackChange" }
func (trackChangeTranslator) Kind() model.Kind { return model.KindUnknown }

func (trackChangeTranslator) Encode(c *Context, elems []*xmlnode.Element) (Encoded, error) {
	el := elems[0]
	markType := model.MarkTrackInsert
	if el.Name == "w:del" || el.Name == "w:moveFrom" {
		markType = model.MarkTrackDelete
	}
	attrs := model.Attrs{
		"id":     el.AttrOr("w:id", ""),
		"author": el.AttrOr("w:author", ""),
		"date":   el.AttrOr("w:date", ""),
	}
	if el.Name == "w:moveTo" || el.Name == "w:moveFrom" {
		attrs["tag"] = el.Name
	}
	mark := model.Mark{Type: markType, Attrs: attrs}

	content := c.encode(el.ElementChildren())
	for i, n := range content {
		content[i] = applyTrack(n, mark)
	}
	return Encoded{Nodes: content, Consumed: 1}, nil
}

// trackKey is the attribute holding a tracked change on nodes that cannot
// carry marks.
const trackKey = "trackChange"

func applyTrack(n *model.Node, m model.Mark) *model.Node {
	switch {
	case n.Kind.IsInlineLeaf():
		return n.AddMarks(m)
	case n.Kind == model.KindRun:
		return n.WithAttrs(n.Attrs.With(trackKey, trackValue(m))).AddMarks(m)
	case len(n.Content) == 0:
		if n.Kind.IsBlock() {
			return n
		}
		return n.WithAttrs(n.Attrs.With(trackKey, trackValue(m)))
	}
	content := make([]*model.Node, len(n.Content))
	for i, ch := range n.Content {
		content[i] = applyTrack(ch, m)
	}
	return n.WithContent(content...)
}

func trackValue(m model.Mark) model.Attrs {
	return m.Attrs.With("type", string(m.Type))
}

// trackOf returns the tracked change stored on a node under trackKey.
func trackOf(n *model.Node) (model.Mark, bool) {
	v := n.Attrs.Map(trackKey)
	if v == nil {
		return model.Mark{}, false
	}
	switch t := model.MarkType(v.String("type")); t {
	case model.MarkTrackInsert, model.MarkTrackDelete:
		return model.Mark{Type: t, Attrs: v.Without("type")}, true
	}
	return model.Mark{}, false
}

// hasTrack reports whether marks already describe a tracked change.
func hasTrack(marks []model.Mark) bool {
	return model.HasMark(marks, model.MarkTrackInsert) || model.HasMark(marks, model.MarkTrackDelete)
}

// wrapTrack wraps decoded elements in the wrapper of m.
func wrapTrack(els []*xmlnode.Element, m model.Mark) []*xmlnode.Element {
	if len(els) == 0 {
		return els
	}
	def := "w:ins"
	if m.Type == model.MarkTrackDelete {
		def = "w:del"
	}
	return []*xmlnode.Element{xmlnode.New(trackTag(m, def), trackAttrs(m), els...)}
}

func (trackChangeTranslator) Decode(*Exporter, *model.Node) ([]*xmlnode.Element, error) {
	return nil, nil
}

// trackTag returns the wrapper name of a track mark.
func trackTag(m model.Mark, def string) string {
	if t := m.Attrs.String("tag"); t != "" {
		return t
	}
	return def
}

func trackAttrs(m model.Mark) map[string]string {
	attrs := map[string]string{}
	for key, tag := range map[string]string{"id": "w:id", "author": "w:author", "date": "w:date"} {
		if v := m.Attrs.String(key); v != "" {
			attrs[tag] = v
		}
	}
	return attrs
}
