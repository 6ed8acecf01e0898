package export

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/tsawler/wordtree/docx"
	"github.com/tsawler/wordtree/model"
)

var headingAtoms = [...]atom.Atom{atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

// htmlRenderer builds an x/net/html tree from a converted document.
type htmlRenderer struct {
	cfg    Config
	inLink bool
}

func writeHTML(w io.Writer, res *docx.Result, cfg Config) error {
	r := &htmlRenderer{cfg: cfg}
	body := element(atom.Body)

	if cfg.IncludeHeaders {
		for _, n := range sortedParts(res.Headers) {
			hdr := element(atom.Header)
			r.blocks(hdr, n.Content)
			body.AppendChild(hdr)
		}
	}

	main := element(atom.Main)
	r.blocks(main, res.Document.Content)
	body.AppendChild(main)

	if cfg.IncludeNotes {
		r.notes(body, "footnotes", "fn-", res.Footnotes)
		r.notes(body, "endnotes", "en-", res.Endnotes)
	}
	if cfg.IncludeComments {
		r.comments(body, res.Comments)
	}
	if cfg.IncludeHeaders {
		for _, n := range sortedParts(res.Footers) {
			ftr := element(atom.Footer)
			r.blocks(ftr, n.Content)
			body.AppendChild(ftr)
		}
	}

	if cfg.Fragment {
		for c := main.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(w, c); err != nil {
				return fmt.Errorf("export: rendering html: %w", err)
			}
		}
		return nil
	}

	head := element(atom.Head)
	head.AppendChild(element(atom.Meta, attr("charset", "utf-8")))
	if cfg.Title != "" {
		title := element(atom.Title)
		title.AppendChild(textNode(cfg.Title))
		head.AppendChild(title)
	}
	root := element(atom.Html)
	root.AppendChild(head)
	root.AppendChild(body)

	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	doc.AppendChild(root)
	if err := html.Render(w, doc); err != nil {
		return fmt.Errorf("export: rendering html: %w", err)
	}
	return nil
}

// sortedParts orders headers or footers by relationship id.
func sortedParts(m map[string]*model.Node) []*model.Node {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]*model.Node, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

func (r *htmlRenderer) blocks(parent *html.Node, nodes []*model.Node) {
	for _, n := range nodes {
		r.block(parent, n)
	}
}

func (r *htmlRenderer) block(parent *html.Node, n *model.Node) {
	switch n.Kind {
	case model.KindParagraph:
		parent.AppendChild(r.paragraph(n))
	case model.KindTable:
		parent.AppendChild(r.table(n))
	case model.KindTocWrapper:
		nav := element(atom.Nav, attr("class", "toc"))
		r.blocks(nav, n.Content)
		parent.AppendChild(nav)
	case model.KindTocEntry:
		level, _ := n.Attrs.Int("level")
		p := element(atom.P, attr("class", "toc-entry toc-level-"+strconv.Itoa(level)))
		r.inline(p, n.Content)
		parent.AppendChild(p)
	case model.KindStructuredContent:
		div := element(atom.Div, attr("class", "sdt"))
		if tag := n.Attrs.String("tag"); tag != "" {
			div.Attr = append(div.Attr, attr("data-tag", tag))
		}
		r.blocks(div, n.Content)
		parent.AppendChild(div)
	case model.KindPassthrough, model.KindFieldChar, model.KindFieldInstruction:
	default:
		r.inline(parent, []*model.Node{n})
	}
}

func (r *htmlRenderer) paragraph(n *model.Node) *html.Node {
	tag := atom.P
	if level, ok := n.Attrs.Int("headingLevel"); ok && level >= 1 && level <= len(headingAtoms) {
		tag = headingAtoms[level-1]
	}
	p := element(tag)
	if style := n.Attrs.String("styleId"); style != "" {
		p.Attr = append(p.Attr, attr("data-style", style))
	}
	if lr := n.Attrs.Map("listRendering"); lr != nil {
		level, _ := lr.Int("level")
		p.Attr = append(p.Attr, attr("class", "list-item list-level-"+strconv.Itoa(level)))
		if marker := lr.String("markerText"); marker != "" {
			span := element(atom.Span, attr("class", "list-marker"))
			span.AppendChild(textNode(marker))
			p.AppendChild(span)
			p.AppendChild(textNode(" "))
		}
	}
	r.inline(p, n.Content)
	return p
}

func (r *htmlRenderer) table(n *model.Node) *html.Node {
	t := element(atom.Table)
	tbody := element(atom.Tbody)
	for _, row := range n.Content {
		if row.Kind != model.KindTableRow {
			continue
		}
		tr := element(atom.Tr)
		for _, cell := range row.Content {
			if cell.Kind != model.KindTableCell || cell.Attrs.Bool("continueMerge") {
				continue
			}
			td := element(atom.Td)
			if span, ok := cell.Attrs.Int("colspan"); ok && span > 1 {
				td.Attr = append(td.Attr, attr("colspan", strconv.Itoa(span)))
			}
			if span, ok := cell.Attrs.Int("rowspan"); ok && span > 1 {
				td.Attr = append(td.Attr, attr("rowspan", strconv.Itoa(span)))
			}
			r.blocks(td, cell.Content)
			tr.AppendChild(td)
		}
		tbody.AppendChild(tr)
	}
	t.AppendChild(tbody)
	return t
}

func (r *htmlRenderer) inline(parent *html.Node, nodes []*model.Node) {
	for _, n := range nodes {
		switch n.Kind {
		case model.KindRun, model.KindStructuredContent:
			r.inline(parent, n.Content)
		case model.KindText:
			parent.AppendChild(r.marked(textNode(n.Text), n.Marks))
		case model.KindTab:
			parent.AppendChild(r.marked(textNode("\t"), n.Marks))
		case model.KindLineBreak:
			parent.AppendChild(element(atom.Br))
		case model.KindHyperlink:
			a := element(atom.A, attr("href", linkHref(n.Attrs)))
			prev := r.inLink
			r.inLink = true
			r.inline(a, n.Content)
			r.inLink = prev
			parent.AppendChild(a)
		case model.KindBookmark, model.KindBookmarkStart:
			if name := n.Attrs.String("name"); name != "" {
				parent.AppendChild(element(atom.A, attr("id", name)))
			}
		case model.KindFootnoteReference, model.KindEndnoteReference:
			prefix := "fn-"
			if n.Kind == model.KindEndnoteReference {
				prefix = "en-"
			}
			id := n.Attrs.String("id")
			sup := element(atom.Sup)
			a := element(atom.A, attr("href", "#"+prefix+id))
			a.AppendChild(textNode(id))
			sup.AppendChild(a)
			parent.AppendChild(sup)
		case model.KindParagraph, model.KindTable, model.KindTocWrapper, model.KindTocEntry:
			r.block(parent, n)
		}
	}
}

func linkHref(a model.Attrs) string {
	if href := a.String("href"); href != "" {
		return href
	}
	if anchor := a.String("anchor"); anchor != "" {
		return "#" + anchor
	}
	return ""
}

// marked wraps n in the elements of its active marks, the first mark
// outermost.
func (r *htmlRenderer) marked(n *html.Node, marks []model.Mark) *html.Node {
	cur := n
	for i := len(marks) - 1; i >= 0; i-- {
		wrap := r.markElement(marks[i])
		if wrap == nil {
			continue
		}
		wrap.AppendChild(cur)
		cur = wrap
	}
	return cur
}

func (r *htmlRenderer) markElement(m model.Mark) *html.Node {
	if !m.Active() {
		return nil
	}
	switch m.Type {
	case model.MarkBold:
		return element(atom.Strong)
	case model.MarkItalic:
		return element(atom.Em)
	case model.MarkUnderline:
		return element(atom.U)
	case model.MarkStrike:
		return element(atom.S)
	case model.MarkHighlight:
		if c := m.Attrs.String("color"); c != "" {
			return element(atom.Mark, attr("style", "background-color: "+c))
		}
		return element(atom.Mark)
	case model.MarkTextStyle:
		if style := textStyleCSS(m.Attrs); style != "" {
			return element(atom.Span, attr("style", style))
		}
	case model.MarkLink:
		if !r.inLink {
			return element(atom.A, attr("href", linkHref(m.Attrs)))
		}
	case model.MarkTrackInsert:
		return element(atom.Ins)
	case model.MarkTrackDelete:
		return element(atom.Del)
	}
	return nil
}

func textStyleCSS(a model.Attrs) string {
	var parts []string
	if c := a.String("color"); c != "" {
		parts = append(parts, "color: "+c)
	}
	if size, ok := a.Float("fontSize"); ok && size > 0 {
		parts = append(parts, "font-size: "+strconv.FormatFloat(size, 'f', -1, 64)+"pt")
	}
	if f := a.String("fontFamily"); f != "" {
		parts = append(parts, "font-family: "+f)
	}
	return strings.Join(parts, "; ")
}

func (r *htmlRenderer) notes(parent *html.Node, class, prefix string, entries []docx.NoteEntry) {
	if len(entries) == 0 {
		return
	}
	section := element(atom.Section, attr("class", class))
	ol := element(atom.Ol)
	for _, e := range entries {
		li := element(atom.Li, attr("id", prefix+e.ID))
		r.blocks(li, e.Content)
		ol.AppendChild(li)
	}
	section.AppendChild(ol)
	parent.AppendChild(section)
}

func (r *htmlRenderer) comments(parent *html.Node, entries []docx.CommentEntry) {
	if len(entries) == 0 {
		return
	}
	aside := element(atom.Aside, attr("class", "comments"))
	for _, e := range entries {
		attrs := []html.Attribute{attr("class", "comment"), attr("id", "comment-"+e.ID)}
		if e.ParentID != "" {
			attrs = append(attrs, attr("data-parent", "comment-"+e.ParentID))
		}
		if e.Author != "" {
			attrs = append(attrs, attr("data-author", e.Author))
		}
		art := element(atom.Article, attrs...)
		r.blocks(art, e.Content)
		aside.AppendChild(art)
	}
	parent.AppendChild(aside)
}
