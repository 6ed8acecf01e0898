package docx

import (
	"github.com/tsawler/wordtree/model"
	"github.com/tsawler/wordtree/units"
	"github.com/tsawler/wordtree/xmlnode"
)

// paragraphTranslator handles w:p.
type paragraphTranslator struct{}

func (paragraphTranslator) Name() string     { return "paragraph" }
func (paragraphTranslator) Kind() model.Kind { return model.KindParagraph }

func (paragraphTranslator) Encode(c *Context, elems []*xmlnode.Element) (Encoded, error) {
	return single(c.encodeParagraph(elems[0], nil)), nil
}

// encodeParagraph converts a w:p. When children is non-nil it replaces the
// paragraph's own content (used by the TOC translator for partial paragraphs).
func (c *Context) encodeParagraph(p *xmlnode.Element, children []*xmlnode.Element) *model.Node {
	pPr := p.Child("w:pPr")
	attrs := ParseParagraphProps(pPr)
	if pPr != nil {
		attrs["paragraphProperties"] = pPr
		if pPr.Child("w:sectPr") != nil {
			attrs["sectionBreak"] = true
		}
	}
	if len(p.Attrs) > 0 {
		attrs["xmlAttributes"] = p.Attrs
	}
	if id, ok := p.Attr("w14:paraId"); ok {
		attrs["paraId"] = id
	}

	styleID := attrs.String("styleId")
	effective := styleID
	if effective == "" {
		effective = c.styles.DefaultStyle(StyleTypeParagraph)
	}

	// Heading level: style first, then inline outline level
	if level := c.styles.HeadingLevel(effective); level > 0 {
		attrs["headingLevel"] = level
	} else if ol, ok := attrs.Int("outlineLevel"); ok && ol >= 0 && ol <= 8 {
		attrs["headingLevel"] = ol + 1
	}

	// Numbering: inline numPr, else the style chain
	numID, ilvl, hasNum := "", 0, false
	if np := attrs.Map("numberingProperties"); np != nil {
		numID = np.String("numId")
		ilvl, _ = np.Int("ilvl")
		hasNum = true
	} else {
		numID, ilvl, hasNum = c.styleNumbering(effective)
	}
	if hasNum {
		if lr, ok := c.listRendering(numID, ilvl); ok {
			attrs["listRendering"] = lr
		}
	}

	if children == nil {
		for _, ch := range p.ElementChildren() {
			if ch.Name != "w:pPr" {
				children = append(children, ch)
			}
		}
	}
	content := c.withParagraphStyle(effective).encode(children)
	c.advance(1)
	return model.NewNode(model.KindParagraph, attrs, content...)
}

// styleNumbering finds a w:numPr in the paragraph style chain.
func (c *Context) styleNumbering(styleID string) (string, int, bool) {
	var numID string
	ilvl, found := 0, false
	for _, def := range c.styles.Chain(styleID) {
		numPr := def.PPr.Child("w:numPr")
		if numPr == nil {
			continue
		}
		if v, ok := numPr.ChildVal("w:numId"); ok {
			numID, found = v, true
		}
		if v, ok := numPr.ChildVal("w:ilvl"); ok {
			if n, ok := units.ParseInt(v); ok {
				ilvl = n
			}
		}
	}
	return numID, ilvl, found
}

func (paragraphTranslator) Decode(x *Exporter, n *model.Node) ([]*xmlnode.Element, error) {
	children, err := x.DecodeNodes(n.Content)
	if err != nil {
		return nil, err
	}
	attrs := stringMap(n.Attrs["xmlAttributes"])
	if id := n.Attrs.String("paraId"); id != "" {
		attrs = withStringAttr(attrs, "w14:paraId", id)
	}
	pPr := BuildParagraphProps(n.Attrs.Raw("paragraphProperties"), n.Attrs)
	return []*xmlnode.Element{xmlnode.New("w:p", attrs, append([]*xmlnode.Element{pPr}, children...)...)}, nil
}

func withStringAttr(m map[string]string, k, v string) map[string]string {
	out := make(map[string]string, len(m)+1)
	for key, val := range m {
		out[key] = val
	}
	out[k] = v
	return out
}
