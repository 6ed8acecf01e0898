package docx

import (
	"strings"

	"go.uber.org/zap"

	"github.com/tsawler/wordtree/model"
	"github.com/tsawler/wordtree/xmlnode"
)

// A table of contents is a TOC field spanning several paragraphs. Each entry
// paragraph holds a PAGEREF field whose result is the page number.
//
//	Idle ──begin(TOC)──▶ WrapperOpen ──separate──▶ CollectingEntries ──end──▶ Closed
type tocState int

const (
	tocIdle tocState = iota
	tocWrapperOpen
	tocCollecting
	tocClosed
)

type tocPieceKind int

const (
	pieceContent tocPieceKind = iota
	pieceField
	pieceInstr
)

// tocPiece is one item of a flattened paragraph: a field marker, a piece of
// instruction text, or a run (or other inline element) with visible content.
type tocPiece struct {
	kind  tocPieceKind
	field string
	instr string
	el    *xmlnode.Element
	// link is the w:hyperlink the piece was found in.
	link *xmlnode.Element
}

// flattenPieces splits runs around their field markers and unwraps
// hyperlinks.
func flattenPieces(children []*xmlnode.Element, link *xmlnode.Element) []tocPiece {
	var out []tocPiece
	for _, ch := range children {
		switch ch.Name {
		case "w:pPr":
		case "w:hyperlink":
			out = append(out, flattenPieces(ch.ElementChildren(), ch)...)
		case "w:r":
			rPr := ch.Child("w:rPr")
			var pending []*xmlnode.Element
			flush := func() {
				if len(pending) > 0 {
					run := xmlnode.New("w:r", ch.Attrs, append([]*xmlnode.Element{rPr}, pending...)...)
					out = append(out, tocPiece{kind: pieceContent, el: run, link: link})
					pending = nil
				}
			}
			for _, rc := range ch.ElementChildren() {
				switch rc.Name {
				case "w:rPr":
				case "w:fldChar":
					flush()
					out = append(out, tocPiece{kind: pieceField, field: rc.AttrOr("w:fldCharType", ""), link: link})
				case "w:instrText":
					flush()
					out = append(out, tocPiece{kind: pieceInstr, instr: rc.TextContent(), link: link})
				default:
					pending = append(pending, rc)
				}
			}
			flush()
		default:
			out = append(out, tocPiece{kind: pieceContent, el: ch, link: link})
		}
	}
	return out
}

// opensTOC reports whether the first top-level field of p is a TOC field.
func opensTOC(p *xmlnode.Element) bool {
	var instr strings.Builder
	begun := false
	for _, pc := range flattenPieces(p.ElementChildren(), nil) {
		switch pc.kind {
		case pieceField:
			if !begun {
				if pc.field != fieldBegin {
					return false
				}
				begun = true
				continue
			}
			return fieldName(instr.String()) == "TOC"
		case pieceInstr:
			if begun {
				instr.WriteString(pc.instr)
			}
		}
	}
	return begun && fieldName(instr.String()) == "TOC"
}

type tocFrame struct {
	instr     strings.Builder
	separated bool
}

func (f *tocFrame) name() string { return fieldName(f.instr.String()) }

// tocSegment collects the pieces of one paragraph while entries are read.
type tocSegment struct {
	title      []*xmlnode.Element
	page       []*xmlnode.Element
	pageref    *tocFrame
	link       *xmlnode.Element
	linkAnchor string
}

func (s *tocSegment) empty() bool {
	return s.pageref == nil && len(s.title) == 0 && len(s.page) == 0
}

type tocParser struct {
	c       *Context
	state   tocState
	stack   []*tocFrame
	wrapper *tocFrame
	content []*model.Node
	before  []*model.Node
	after   []*model.Node
}

// tocTranslator recognizes a TOC field starting in the first paragraph and
// consumes every paragraph up to the one closing it.
type tocTranslator struct{}

func (tocTranslator) Name() string     { return "toc" }
func (tocTranslator) Kind() model.Kind { return model.KindTocWrapper }

func (tocTranslator) Encode(c *Context, elems []*xmlnode.Element) (Encoded, error) {
	if !opensTOC(elems[0]) {
		return Encoded{}, nil
	}
	t := &tocParser{c: c}
	consumed := 0
	for _, el := range elems {
		if t.state == tocClosed {
			break
		}
		consumed++
		if el.Name != "w:p" {
			t.content = append(t.content, c.encode([]*xmlnode.Element{el})...)
			continue
		}
		t.paragraph(el)
	}
	if t.state != tocClosed {
		c.log.Warn("table of contents has no end marker", zap.Int("paragraphs", consumed))
		c.report(StructuralInconsistency, 0, elems[0], "table of contents field closed at end of sibling list")
	}

	wrapper := model.NewNode(model.KindTocWrapper, model.Attrs{
		"instruction": strings.TrimSpace(t.wrapper.instr.String()),
	}, t.content...)
	nodes := append(append(t.before, wrapper), t.after...)
	return Encoded{Nodes: nodes, Consumed: consumed}, nil
}

// paragraph feeds one paragraph through the state machine.
func (t *tocParser) paragraph(p *xmlnode.Element) {
	var (
		prefix, suffix []*xmlnode.Element
		seg            = &tocSegment{}
		collected      = t.state == tocCollecting
	)
	for _, pc := range flattenPieces(p.ElementChildren(), nil) {
		switch t.state {
		case tocIdle:
			if pc.kind == pieceField && pc.field == fieldBegin {
				t.wrapper = &tocFrame{}
				t.stack = []*tocFrame{t.wrapper}
				t.state = tocWrapperOpen
			} else if pc.kind == pieceContent {
				prefix = append(prefix, pc.el)
			}

		case tocWrapperOpen:
			switch {
			case pc.kind == pieceInstr:
				t.top().instr.WriteString(pc.instr)
			case pc.kind == pieceField && pc.field == fieldBegin:
				t.stack = append(t.stack, &tocFrame{})
			case pc.kind == pieceField && pc.field == fieldSeparate && len(t.stack) == 1:
				t.wrapper.separated = true
				t.state = tocCollecting
				collected = true
			case pc.kind == pieceField && pc.field == fieldEnd:
				if len(t.stack) == 1 {
					t.state = tocClosed
				} else {
					t.stack = t.stack[:len(t.stack)-1]
				}
			}

		case tocCollecting:
			t.collect(seg, pc)

		case tocClosed:
			if pc.kind == pieceContent {
				suffix = append(suffix, pc.el)
			}
		}
	}

	if len(prefix) > 0 {
		t.before = append(t.before, t.c.encodeParagraph(p, prefix))
	}
	switch {
	case !collected:
	case seg.pageref != nil:
		t.content = append(t.content, t.entry(p, seg))
	case !seg.empty():
		t.content = append(t.content, t.c.encodeParagraph(p, append(seg.title, seg.page...)))
	default:
		t.c.advance(1)
	}
	if len(suffix) > 0 {
		t.after = append(t.after, t.c.encodeParagraph(p, suffix))
	}
}

func (t *tocParser) top() *tocFrame { return t.stack[len(t.stack)-1] }

// collect routes one piece of an entry paragraph: content before the
// PAGEREF field is the title, its result is the page number.
func (t *tocParser) collect(seg *tocSegment, pc tocPiece) {
	if pc.link != nil && seg.link == nil {
		seg.link = pc.link
	}
	switch pc.kind {
	case pieceInstr:
		if len(t.stack) > 1 {
			t.top().instr.WriteString(pc.instr)
		}
	case pieceField:
		switch pc.field {
		case fieldBegin:
			t.stack = append(t.stack, &tocFrame{})
		case fieldSeparate:
			f := t.top()
			f.separated = true
			switch f.name() {
			case "PAGEREF":
				seg.pageref = f
			case "HYPERLINK":
				if a := hyperlinkFieldAnchor(f.instr.String()); a != "" {
					seg.linkAnchor = a
				}
			}
		case fieldEnd:
			if len(t.stack) == 1 {
				t.state = tocClosed
				return
			}
			t.stack = t.stack[:len(t.stack)-1]
		}
	case pieceContent:
		if seg.pageref == nil {
			seg.title = append(seg.title, pc.el)
		} else {
			seg.page = append(seg.page, pc.el)
		}
	}
}

// hyperlinkFieldAnchor returns the \l bookmark of a HYPERLINK field.
func hyperlinkFieldAnchor(instr string) string {
	toks := fieldTokens(instr)
	for i := 1; i+1 < len(toks); i++ {
		if strings.EqualFold(toks[i], `\l`) {
			return toks[i+1]
		}
	}
	return ""
}

// entry builds a tocEntry. A single tab run always separates the title from
// the page number; tabs the title ended with are dropped.
func (t *tocParser) entry(p *xmlnode.Element, seg *tocSegment) *model.Node {
	instr := strings.TrimSpace(seg.pageref.instr.String())
	anchor := fieldArgument(instr)
	pPr := p.Child("w:pPr")
	styleID, _ := pPr.ChildVal("w:pStyle")

	linkAnchor := anchor
	if a, ok := seg.link.Attr("w:anchor"); ok && a != "" {
		linkAnchor = a
	} else if seg.linkAnchor != "" {
		linkAnchor = seg.linkAnchor
	}
	hyperlinked := hasFieldSwitch(instr, `\h`) || seg.link != nil || seg.linkAnchor != "" ||
		hasFieldSwitch(t.wrapper.instr.String(), `\h`)

	var page strings.Builder
	for _, el := range seg.page {
		page.WriteString(el.TextContent())
	}

	attrs := model.Attrs{
		"instruction": instr,
		"anchor":      anchor,
		"hyperlink":   hyperlinked,
		"pageNumber":  strings.TrimSpace(page.String()),
	}
	if styleID != "" {
		attrs["styleId"] = styleID
	}
	if level := t.c.styles.tocLevel(styleID); level > 0 {
		attrs["level"] = level
	}
	if pPr != nil {
		attrs["paragraphProperties"] = pPr
	}
	if len(p.Attrs) > 0 {
		attrs["xmlAttributes"] = p.Attrs
	}

	effective := styleID
	if effective == "" {
		effective = t.c.styles.DefaultStyle(StyleTypeParagraph)
	}
	pc := t.c.withParagraphStyle(effective)
	content := pc.encode(trimTrailingTabs(seg.title))
	content = append(content, model.NewNode(model.KindRun, model.Attrs{"tocSeparator": true}, model.NewNode(model.KindTab, nil)))
	content = append(content, pc.encode(seg.page)...)

	if hyperlinked && linkAnchor != "" {
		mark := model.NewMark(model.MarkLink, model.Attrs{"anchor": linkAnchor, "href": "#" + linkAnchor})
		for i, n := range content {
			content[i] = n.AddMarks(mark)
		}
	}
	t.c.advance(1)
	return model.NewNode(model.KindTocEntry, attrs, content...)
}

func isTab(el *xmlnode.Element) bool {
	return el.Name == "w:tab" || el.Name == "w:ptab"
}

// trimTrailingTabs removes tab content at the end of the title runs.
func trimTrailingTabs(els []*xmlnode.Element) []*xmlnode.Element {
	out := append([]*xmlnode.Element(nil), els...)
	for len(out) > 0 {
		last := out[len(out)-1]
		if last.Name != "w:r" {
			break
		}
		kids := last.ElementChildren()
		end := len(kids)
		for end > 0 && isTab(kids[end-1]) {
			end--
		}
		if end == len(kids) {
			break
		}
		hasContent := false
		for _, k := range kids[:end] {
			if k.Name != "w:rPr" {
				hasContent = true
			}
		}
		if hasContent {
			out[len(out)-1] = last.WithChildren(kids[:end]...)
			break
		}
		out = out[:len(out)-1]
	}
	return out
}

func fieldRun(typ string) *xmlnode.Element {
	return xmlnode.New("w:r", nil, fldChar(typ))
}

func instrRun(instr string) *xmlnode.Element {
	return xmlnode.New("w:r", nil, preserved("w:instrText", " "+instr+" "))
}

// Decode writes the wrapper as an opening paragraph (begin, instruction,
// separate), the entries, and a closing paragraph holding the end marker.
func (tocTranslator) Decode(x *Exporter, n *model.Node) ([]*xmlnode.Element, error) {
	body, err := x.DecodeNodes(n.Content)
	if err != nil {
		return nil, err
	}
	out := []*xmlnode.Element{xmlnode.New("w:p", nil,
		fieldRun(fieldBegin), instrRun(n.Attrs.String("instruction")), fieldRun(fieldSeparate))}
	out = append(out, body...)
	return append(out, xmlnode.New("w:p", nil, fieldRun(fieldEnd))), nil
}

// tocEntryTranslator decodes tocEntry nodes. Entries are only created by the
// TOC translator, so Encode always declines.
type tocEntryTranslator struct{}

func (tocEntryTranslator) Name() string     { return "tocEntry" }
func (tocEntryTranslator) Kind() model.Kind { return model.KindTocEntry }

func (tocEntryTranslator) Encode(*Context, []*xmlnode.Element) (Encoded, error) {
	return Encoded{}, nil
}

func (tocEntryTranslator) Decode(x *Exporter, n *model.Node) ([]*xmlnode.Element, error) {
	anchor := n.Attrs.String("anchor")
	instr := n.Attrs.String("instruction")
	if instr == "" {
		instr = "PAGEREF " + anchor + ` \h`
	}
	hyperlinked := n.Attrs.Bool("hyperlink")
	inner := x
	if hyperlinked {
		inner = x.insideLink()
	}

	var title, page []*model.Node
	sep := false
	for _, c := range n.Content {
		if c.Kind == model.KindRun && c.Attrs.Bool("tocSeparator") {
			sep = true
			continue
		}
		if sep {
			page = append(page, c)
		} else {
			title = append(title, c)
		}
	}
	titleEls, err := inner.DecodeNodes(title)
	if err != nil {
		return nil, err
	}
	pageEls, err := inner.DecodeNodes(page)
	if err != nil {
		return nil, err
	}

	runs := append(titleEls, xmlnode.New("w:r", nil, xmlnode.New("w:tab", nil)))
	runs = append(runs, fieldRun(fieldBegin), instrRun(instr), fieldRun(fieldSeparate))
	runs = append(runs, pageEls...)
	runs = append(runs, fieldRun(fieldEnd))
	if hyperlinked && anchor != "" {
		runs = []*xmlnode.Element{xmlnode.New("w:hyperlink", map[string]string{
			"w:anchor":  anchor,
			"w:history": "1",
		}, runs...)}
	}

	pPr := n.Attrs.Raw("paragraphProperties")
	return []*xmlnode.Element{xmlnode.New("w:p", stringMap(n.Attrs["xmlAttributes"]), append([]*xmlnode.Element{pPr}, runs...)...)}, nil
}
