package docx

import (
	"strings"
	"unicode/utf8"

	"github.com/tsawler/wordtree/model"
	"github.com/tsawler/wordtree/xmlnode"
)

// runTranslator handles w:r. Inline formatting becomes marks on the leaves;
// style-derived values are kept on the run under "resolved".
type runTranslator struct{}

func (runTranslator) Name() string     { return "run" }
func (runTranslator) Kind() model.Kind { return model.KindRun }

func (runTranslator) Encode(c *Context, elems []*xmlnode.Element) (Encoded, error) {
	r := elems[0]
	rPr := r.Child("w:rPr")
	inline := ParseRunProps(rPr)
	charStyle, _ := rPr.ChildVal("w:rStyle")

	marks := inline.Marks()
	if inline.Change != nil {
		marks = append(marks, trackFormatMark(inline.Change, marks))
	}

	attrs := model.Attrs{}
	if rPr != nil {
		attrs["runProperties"] = rPr
	}
	if charStyle != "" {
		attrs["styleId"] = charStyle
	}
	if sa := c.styles.ResolveRun(inline, charStyle, c.paraStyle).StyleAttrs(); sa != nil {
		attrs["resolved"] = sa
	}
	if len(r.Attrs) > 0 {
		attrs["xmlAttributes"] = r.Attrs
	}

	var children []*xmlnode.Element
	for _, ch := range r.ElementChildren() {
		if ch.Name != "w:rPr" {
			children = append(children, ch)
		}
	}
	content := c.encode(children)
	for i, n := range content {
		content[i] = n.AddMarks(marks...)
	}
	return single(model.NewNode(model.KindRun, attrs, content...)), nil
}

// runGroup is a slice of run content sharing one mark set.
type runGroup struct {
	marks   []model.Mark
	content []*model.Node
	leaves  bool
}

// groupRunContent splits run content into groups of equal marks. Content
// that cannot carry marks joins the current group.
func groupRunContent(content []*model.Node, fallback []model.Mark) []runGroup {
	var groups []runGroup
	for _, n := range content {
		if !n.Kind.IsInlineLeaf() {
			if len(groups) == 0 {
				groups = append(groups, runGroup{marks: fallback})
			}
			g := &groups[len(groups)-1]
			g.content = append(g.content, n)
			continue
		}
		if len(groups) > 0 {
			g := &groups[len(groups)-1]
			if !g.leaves {
				g.marks, g.leaves = n.Marks, true
				g.content = append(g.content, n)
				continue
			}
			if model.MarksEqual(g.marks, n.Marks) {
				g.content = append(g.content, n)
				continue
			}
		}
		groups = append(groups, runGroup{marks: n.Marks, content: []*model.Node{n}, leaves: true})
	}
	if len(groups) == 0 {
		groups = append(groups, runGroup{marks: fallback})
	}
	return groups
}

// formatMarks keeps the marks that belong in w:rPr.
func formatMarks(marks []model.Mark) []model.Mark {
	var out []model.Mark
	for _, m := range marks {
		switch m.Type {
		case model.MarkLink, model.MarkTrackInsert, model.MarkTrackDelete, model.MarkCommentRange:
			continue
		}
		out = append(out, m)
	}
	return out
}

func (runTranslator) Decode(x *Exporter, n *model.Node) ([]*xmlnode.Element, error) {
	stored := n.Attrs.Raw("runProperties")
	styleID := n.Attrs.String("styleId")
	fallback := ParseRunProps(stored).Marks()
	xmlAttrs := stringMap(n.Attrs["xmlAttributes"])

	track, tracked := trackOf(n)

	var out []*xmlnode.Element
	for _, g := range groupRunContent(n.Content, fallback) {
		if tracked && !hasTrack(g.marks) {
			g.marks = model.SetMark(model.CloneMarks(g.marks), track)
		}
		_, deleted := model.FindMark(g.marks, model.MarkTrackDelete)
		var children []*xmlnode.Element
		if rPr := x.BuildRunProps(stored, formatMarks(g.marks), styleID); rPr != nil {
			children = append(children, rPr)
		}
		for _, c := range g.content {
			els, err := x.runChild(c, deleted)
			if err != nil {
				return nil, err
			}
			children = append(children, els...)
		}
		out = append(out, x.wrapInline(xmlnode.New("w:r", xmlAttrs, children...), g.marks))
	}
	return out, nil
}

// runChild renders one node inside a w:r.
func (x *Exporter) runChild(n *model.Node, deleted bool) ([]*xmlnode.Element, error) {
	switch n.Kind {
	case model.KindText:
		return []*xmlnode.Element{textElement(n.Text, deleted)}, nil
	case model.KindTab:
		if el := n.Attrs.Raw("element"); el != nil {
			return []*xmlnode.Element{el}, nil
		}
		return []*xmlnode.Element{xmlnode.New("w:tab", nil)}, nil
	case model.KindLineBreak:
		return []*xmlnode.Element{breakElement(n)}, nil
	case model.KindFieldInstruction:
		name := "w:instrText"
		if deleted {
			name = "w:delInstrText"
		}
		return []*xmlnode.Element{preserved(name, n.Attrs.String("instruction"))}, nil
	}
	return x.DecodeNode(n)
}

func textElement(text string, deleted bool) *xmlnode.Element {
	name := "w:t"
	if deleted {
		name = "w:delText"
	}
	return preserved(name, text)
}

// preserved builds a text-bearing element, marking significant whitespace.
func preserved(name, text string) *xmlnode.Element {
	var attrs map[string]string
	if text != strings.TrimSpace(text) {
		attrs = map[string]string{"xml:space": "preserve"}
	}
	if text == "" {
		return xmlnode.New(name, attrs)
	}
	return xmlnode.New(name, attrs, xmlnode.NewText(text))
}

// wrapInline wraps a decoded run in the track-change and hyperlink wrappers
// its marks ask for. Adjacent equal wrappers are merged by DecodeNodes.
func (x *Exporter) wrapInline(r *xmlnode.Element, marks []model.Mark) *xmlnode.Element {
	out := r
	if m, ok := model.FindMark(marks, model.MarkTrackInsert); ok {
		out = xmlnode.New(trackTag(m, "w:ins"), trackAttrs(m), out)
	} else if m, ok := model.FindMark(marks, model.MarkTrackDelete); ok {
		out = xmlnode.New(trackTag(m, "w:del"), trackAttrs(m), out)
	}
	if !x.inLink {
		if m, ok := model.FindMark(marks, model.MarkLink); ok {
			out = xmlnode.New("w:hyperlink", linkAttrs(m.Attrs), out)
		}
	}
	return out
}

// textTranslator handles w:t and w:delText.
type textTranslator struct{}

func (textTranslator) Name() string     { return "text" }
func (textTranslator) Kind() model.Kind { return model.KindText }

func (textTranslator) Encode(c *Context, elems []*xmlnode.Element) (Encoded, error) {
	text := elems[0].TextContent()
	c.advance(utf8.RuneCountInString(text))
	if text == "" {
		return Encoded{Consumed: 1}, nil
	}
	return single(model.NewText(text)), nil
}

// Decode of a bare inline leaf produces a whole run.
func (textTranslator) Decode(x *Exporter, n *model.Node) ([]*xmlnode.Element, error) {
	return runT.Decode(x, model.NewNode(model.KindRun, nil, n))
}

// tabTranslator handles w:tab and w:ptab inside runs.
type tabTranslator struct{}

func (tabTranslator) Name() string     { return "tab" }
func (tabTranslator) Kind() model.Kind { return model.KindTab }

func (tabTranslator) Encode(c *Context, elems []*xmlnode.Element) (Encoded, error) {
	el := elems[0]
	c.advance(1)
	var attrs model.Attrs
	if el.Name != "w:tab" || len(el.Attrs) > 0 {
		attrs = model.Attrs{"element": el}
	}
	return single(model.NewNode(model.KindTab, attrs)), nil
}

func (tabTranslator) Decode(x *Exporter, n *model.Node) ([]*xmlnode.Element, error) {
	return runT.Decode(x, model.NewNode(model.KindRun, nil, n))
}

// breakTranslator handles w:br and w:cr.
type breakTranslator struct{}

func (breakTranslator) Name() string     { return "lineBreak" }
func (breakTranslator) Kind() model.Kind { return model.KindLineBreak }

func (breakTranslator) Encode(c *Context, elems []*xmlnode.Element) (Encoded, error) {
	el := elems[0]
	c.advance(1)
	attrs := model.Attrs{}
	if el.Name == "w:cr" {
		attrs["lineBreakType"] = "textWrapping"
		attrs["tag"] = "w:cr"
	} else {
		if t, ok := el.Attr("w:type"); ok {
			attrs["lineBreakType"] = t
		}
		if cl, ok := el.Attr("w:clear"); ok {
			attrs["clear"] = cl
		}
	}
	return single(model.NewNode(model.KindLineBreak, attrs)), nil
}

func (breakTranslator) Decode(x *Exporter, n *model.Node) ([]*xmlnode.Element, error) {
	return runT.Decode(x, model.NewNode(model.KindRun, nil, n))
}

func breakElement(n *model.Node) *xmlnode.Element {
	if n.Attrs.String("tag") == "w:cr" {
		return xmlnode.New("w:cr", nil)
	}
	attrs := map[string]string{}
	if t := n.Attrs.String("lineBreakType"); t != "" && t != "textWrapping" {
		attrs["w:type"] = t
	}
	if cl := n.Attrs.String("clear"); cl != "" {
		attrs["w:clear"] = cl
	}
	return xmlnode.New("w:br", attrs)
}

// stringMap reads a stored attribute map, which is map[string]string when
// freshly converted and map[string]any after a JSON round trip.
func stringMap(v any) map[string]string {
	switch m := v.(type) {
	case map[string]string:
		return m
	case map[string]any:
		out := make(map[string]string, len(m))
		for k, val := range m {
			if s, ok := val.(string); ok {
				out[k] = s
			}
		}
		return out
	case model.Attrs:
		return stringMap(map[string]any(m))
	}
	return nil
}
