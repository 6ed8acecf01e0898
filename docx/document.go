package docx

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/tsawler/wordtree/model"
	"github.com/tsawler/wordtree/units"
	"github.com/tsawler/wordtree/xmlnode"
)

// Package paths of the parts a conversion reads.
const (
	PartDocument         = "word/document.xml"
	PartStyles           = "word/styles.xml"
	PartNumbering        = "word/numbering.xml"
	PartComments         = "word/comments.xml"
	PartCommentsExtended = "word/commentsExtended.xml"
	PartFootnotes        = "word/footnotes.xml"
	PartEndnotes         = "word/endnotes.xml"
)

// PageSize is the page extent in inches.
type PageSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// PageMargins are the section margins in inches.
type PageMargins struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
	Header float64 `json:"header"`
	Footer float64 `json:"footer"`
	Gutter float64 `json:"gutter"`
}

// PageColumns describes text columns. Space is in inches.
type PageColumns struct {
	Count      int     `json:"count"`
	Space      float64 `json:"space"`
	EqualWidth bool    `json:"equalWidth"`
}

// DocGrid is the document grid. LinePitch is in points.
type DocGrid struct {
	Type      string  `json:"type,omitempty"`
	LinePitch float64 `json:"linePitch,omitempty"`
	CharSpace int     `json:"charSpace,omitempty"`
}

// PageStyle holds the page setup of the final body section.
type PageStyle struct {
	PageSize    *PageSize    `json:"pageSize,omitempty"`
	Margins     *PageMargins `json:"margins,omitempty"`
	Columns     *PageColumns `json:"columns,omitempty"`
	DocGrid     *DocGrid     `json:"docGrid,omitempty"`
	Orientation string       `json:"orientation,omitempty"`
}

// Result is the outcome of converting one document package.
type Result struct {
	Document *model.Node `json:"document"`
	// Headers and Footers are keyed by relationship id.
	Headers     map[string]*model.Node `json:"headers,omitempty"`
	Footers     map[string]*model.Node `json:"footers,omitempty"`
	Comments    []CommentEntry         `json:"comments,omitempty"`
	Footnotes   []NoteEntry            `json:"footnotes,omitempty"`
	Endnotes    []NoteEntry            `json:"endnotes,omitempty"`
	PageStyle   PageStyle              `json:"pageStyle"`
	Diagnostics []Diagnostic           `json:"diagnostics,omitempty"`

	Styles    *StyleTable     `json:"-"`
	Numbering *NumberingTable `json:"-"`
}

// Convert turns the parsed parts of a package into a document tree. parts is
// keyed by package path; only word/document.xml is required. rels resolves
// the relationship ids of the main document and may be nil.
//
// Element-level problems never fail the conversion; they are returned as
// diagnostics. Convert fails with ErrNoBody when there is no body, and with
// an error wrapping ErrPanic when the conversion itself breaks down.
func Convert(parts map[string]*xmlnode.Element, rels PartResolver, opts ...Option) (res *Result, err error) {
	o := buildOptions(opts)
	root := parts[PartDocument]
	body := root.Child("w:body")
	if body == nil {
		return nil, ErrNoBody
	}

	defer func() {
		if r := recover(); r != nil {
			o.Logger.Error("conversion aborted", zap.Any("panic", r))
			res, err = nil, fmt.Errorf("docx: conversion aborted: %w: %v", ErrPanic, r)
		}
	}()

	styles := NewStyleTable(parts[PartStyles])
	numbering := NewNumberingTable(parts[PartNumbering], styles)
	c := newContext(styles, numbering, rels, o)

	var (
		elems  []*xmlnode.Element
		sectPr *xmlnode.Element
	)
	for _, el := range body.ElementChildren() {
		if el.Name == "w:sectPr" {
			sectPr = el
			continue
		}
		elems = append(elems, el)
	}

	docAttrs := model.Attrs{}
	if len(root.Attrs) > 0 {
		docAttrs["xmlAttributes"] = root.Attrs
	}
	if sectPr != nil {
		docAttrs["sectionProperties"] = sectPr
	}
	doc := model.NewNode(model.KindDocument, docAttrs, c.encode(elems)...)
	docEnd := c.state.pos

	res = &Result{
		Document:  doc,
		PageStyle: parsePageStyle(sectPr),
		Styles:    styles,
		Numbering: numbering,
	}
	res.Headers, res.Footers = c.convertHeadersFooters(sections(body, sectPr))

	comments := c.parseComments(parts[PartComments])
	res.Comments = threadComments(comments, parseCommentsExtended(parts[PartCommentsExtended]), c.state.ranges, docEnd)
	res.Footnotes = c.parseNotes(parts[PartFootnotes], PartFootnotes, "w:footnote")
	res.Endnotes = c.parseNotes(parts[PartEndnotes], PartEndnotes, "w:endnote")
	res.Diagnostics = c.Diagnostics()

	c.log.Debug("conversion finished",
		zap.Int("blocks", len(doc.Content)),
		zap.Int("comments", len(res.Comments)),
		zap.Int("diagnostics", len(res.Diagnostics)))
	return res, nil
}

// sections returns every section properties element of the body: those
// ending a section inside paragraph properties, then the final one.
func sections(body, final *xmlnode.Element) []*xmlnode.Element {
	var out []*xmlnode.Element
	for _, p := range body.ChildrenNamed("w:p") {
		if s := p.Child("w:pPr").Child("w:sectPr"); s != nil {
			out = append(out, s)
		}
	}
	if final != nil {
		out = append(out, final)
	}
	return out
}

// convertHeadersFooters converts each header and footer part referenced by
// the sections once.
func (c *Context) convertHeadersFooters(sects []*xmlnode.Element) (headers, footers map[string]*model.Node) {
	headers = make(map[string]*model.Node)
	footers = make(map[string]*model.Node)
	for _, s := range sects {
		for _, ref := range s.ElementChildren() {
			var (
				kind   model.Kind
				target map[string]*model.Node
			)
			switch ref.Name {
			case "w:headerReference":
				kind, target = model.KindHeader, headers
			case "w:footerReference":
				kind, target = model.KindFooter, footers
			default:
				continue
			}
			relID := ref.AttrOr("r:id", "")
			if _, done := target[relID]; done {
				continue
			}
			path, root, ok := c.rels.Part(relID)
			if !ok || root == nil {
				c.malformed(ref, "header or footer relationship "+relID+" not found")
				continue
			}
			pc := c.withPart(path, c.partRels(path))
			attrs := model.Attrs{
				"type": ref.AttrOr("w:type", "default"),
				"rId":  relID,
				"path": path,
			}
			if len(root.Attrs) > 0 {
				attrs["xmlAttributes"] = root.Attrs
			}
			target[relID] = model.NewNode(kind, attrs, pc.encode(root.ElementChildren())...)
		}
	}
	return headers, footers
}

func twipsInches(el *xmlnode.Element, attr string) float64 {
	v, _ := units.ParseNumber(el.AttrOr(attr, ""))
	return units.TwipsToInches(v)
}

// parsePageStyle reads page size, margins, columns and grid of a section.
func parsePageStyle(sectPr *xmlnode.Element) PageStyle {
	var ps PageStyle
	if sectPr == nil {
		return ps
	}
	if pgSz := sectPr.Child("w:pgSz"); pgSz != nil {
		ps.PageSize = &PageSize{
			Width:  twipsInches(pgSz, "w:w"),
			Height: twipsInches(pgSz, "w:h"),
		}
		ps.Orientation = pgSz.AttrOr("w:orient", "portrait")
	}
	if m := sectPr.Child("w:pgMar"); m != nil {
		ps.Margins = &PageMargins{
			Top:    twipsInches(m, "w:top"),
			Right:  twipsInches(m, "w:right"),
			Bottom: twipsInches(m, "w:bottom"),
			Left:   twipsInches(m, "w:left"),
			Header: twipsInches(m, "w:header"),
			Footer: twipsInches(m, "w:footer"),
			Gutter: twipsInches(m, "w:gutter"),
		}
	}
	if cols := sectPr.Child("w:cols"); cols != nil {
		count, ok := units.ParseInt(cols.AttrOr("w:num", ""))
		if !ok || count < 1 {
			count = 1
		}
		ps.Columns = &PageColumns{
			Count:      count,
			Space:      twipsInches(cols, "w:space"),
			EqualWidth: units.ParseBool(cols.AttrOr("w:equalWidth", ""), true),
		}
	}
	if g := sectPr.Child("w:docGrid"); g != nil {
		grid := &DocGrid{Type: g.AttrOr("w:type", "")}
		if v, ok := units.ParseNumber(g.AttrOr("w:linePitch", "")); ok {
			grid.LinePitch = units.TwipsToPoints(v)
		}
		grid.CharSpace, _ = units.ParseInt(g.AttrOr("w:charSpace", ""))
		ps.DocGrid = grid
	}
	return ps
}
