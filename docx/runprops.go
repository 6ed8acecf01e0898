package docx

import (
	"sort"

	"go.uber.org/zap"

	"github.com/tsawler/wordtree/model"
	"github.com/tsawler/wordtree/units"
	"github.com/tsawler/wordtree/xmlnode"
)

// Underline is the value of w:u.
type Underline struct {
	Type       string
	Color      string
	ThemeColor string
}

// Fonts is the value of w:rFonts.
type Fonts struct {
	ASCII      string
	HAnsi      string
	EastAsia   string
	CS         string
	ASCIITheme string
}

// Family returns the font family used for Latin text.
func (f Fonts) Family() string {
	switch {
	case f.ASCII != "":
		return f.ASCII
	case f.HAnsi != "":
		return f.HAnsi
	case f.ASCIITheme != "":
		return units.ThemePrefix + f.ASCIITheme
	case f.EastAsia != "":
		return f.EastAsia
	default:
		return f.CS
	}
}

// RunProps holds the parsed inline values of one w:rPr. Absent axes are zero.
type RunProps struct {
	Bold      units.Toggle
	Italic    units.Toggle
	Strike    units.Toggle
	Caps      units.Toggle
	SmallCaps units.Toggle
	Underline *Underline
	Highlight string // tree color or "transparent"
	Color     string // "#RRGGBB", "auto" or "theme:<name>"
	Fonts     *Fonts
	Size      float64 // points
	Lang      string
	VertAlign string

	// Change is the w:rPrChange element, if any.
	Change *xmlnode.Element

	raw map[string]*xmlnode.Element
}

// Tags whose value is carried by marks. Decoding removes them from the stored
// fragment and rebuilds them from the marks.
var markControlledTags = []string{
	"w:rStyle", "w:b", "w:i", "w:strike", "w:u", "w:highlight",
	"w:color", "w:rFonts", "w:sz", "w:lang", "w:rPrChange",
}

// textStyle keys and the rPr tag each one comes from.
var textStyleTags = []struct {
	key string
	tag string
}{
	{"fontFamily", "w:rFonts"},
	{"color", "w:color"},
	{"fontSize", "w:sz"},
	{"lang", "w:lang"},
}

// ParseRunProps reads a w:rPr element. A nil element yields empty props.
func ParseRunProps(rPr *xmlnode.Element) RunProps {
	p := RunProps{raw: make(map[string]*xmlnode.Element)}
	if rPr == nil {
		return p
	}
	for _, el := range rPr.ElementChildren() {
		val, hasVal := el.Attr("w:val")
		switch el.Name {
		case "w:b":
			p.Bold = units.ParseToggle(val, hasVal, true)
		case "w:i":
			p.Italic = units.ParseToggle(val, hasVal, true)
		case "w:strike":
			p.Strike = units.ParseToggle(val, hasVal, true)
		case "w:caps":
			p.Caps = units.ParseToggle(val, hasVal, true)
		case "w:smallCaps":
			p.SmallCaps = units.ParseToggle(val, hasVal, true)
		case "w:u":
			u := &Underline{Type: "single"}
			if hasVal {
				u.Type = val
			}
			if c, ok := el.Attr("w:color"); ok {
				u.Color, _ = normalizeColorAttr(c)
			}
			u.ThemeColor = el.AttrOr("w:themeColor", "")
			p.Underline = u
		case "w:highlight":
			if c, ok := units.HighlightToColor(val); ok {
				p.Highlight = c
			}
		case "w:color":
			if theme, ok := el.Attr("w:themeColor"); ok {
				p.Color = units.ThemeColor(theme)
			} else if c, ok := normalizeColorAttr(val); ok {
				p.Color = c
			}
		case "w:rFonts":
			p.Fonts = &Fonts{
				ASCII:      el.AttrOr("w:ascii", ""),
				HAnsi:      el.AttrOr("w:hAnsi", ""),
				EastAsia:   el.AttrOr("w:eastAsia", ""),
				CS:         el.AttrOr("w:cs", ""),
				ASCIITheme: el.AttrOr("w:asciiTheme", ""),
			}
		case "w:sz":
			if hp, ok := units.ParseNumber(val); ok {
				p.Size = units.HalfPointsToPoints(hp)
			}
		case "w:lang":
			if val != "" {
				p.Lang, _ = units.NormalizeLang(val)
			}
		case "w:vertAlign":
			p.VertAlign = val
		case "w:rPrChange":
			p.Change = el
		}
		p.raw[el.Name] = el
	}
	return p
}

func normalizeColorAttr(val string) (string, bool) {
	if val == units.ColorAuto {
		return units.ColorAuto, true
	}
	return units.NormalizeColor(val)
}

// Raw returns the inline element of a tag.
func (p RunProps) Raw(tag string) *xmlnode.Element {
	return p.raw[tag]
}

// Marks returns the marks of the inline axes. Explicit OFF toggles yield a
// mark with value "0". Every mark carries its source fragment under "raw".
func (p RunProps) Marks() []model.Mark {
	var marks []model.Mark
	toggle := func(t model.MarkType, v units.Toggle, tag string) {
		if !v.Set() {
			return
		}
		attrs := model.Attrs{model.RawKey: p.raw[tag]}
		if v == units.ToggleOff {
			attrs["value"] = model.OffValue
		}
		marks = append(marks, model.Mark{Type: t, Attrs: attrs})
	}
	toggle(model.MarkBold, p.Bold, "w:b")
	toggle(model.MarkItalic, p.Italic, "w:i")
	if p.Underline != nil {
		attrs := model.Attrs{"underlineType": p.Underline.Type, model.RawKey: p.raw["w:u"]}
		if p.Underline.Color != "" {
			attrs["underlineColor"] = p.Underline.Color
		}
		marks = append(marks, model.Mark{Type: model.MarkUnderline, Attrs: attrs})
	}
	toggle(model.MarkStrike, p.Strike, "w:strike")
	if p.Highlight != "" {
		marks = append(marks, model.Mark{Type: model.MarkHighlight, Attrs: model.Attrs{
			"color":      p.Highlight,
			model.RawKey: p.raw["w:highlight"],
		}})
	}
	if ts, ok := p.textStyle(); ok {
		marks = append(marks, ts)
	}
	return marks
}

func (p RunProps) textStyle() (model.Mark, bool) {
	attrs := model.Attrs{}
	var rawChildren []*xmlnode.Element
	for _, ts := range textStyleTags {
		if el := p.raw[ts.tag]; el != nil {
			rawChildren = append(rawChildren, el)
		}
	}
	if len(rawChildren) == 0 {
		return model.Mark{}, false
	}
	if p.Fonts != nil {
		if f := p.Fonts.Family(); f != "" {
			attrs["fontFamily"] = f
		}
	}
	if p.Color != "" {
		attrs["color"] = p.Color
	}
	if p.Size > 0 {
		attrs["fontSize"] = p.Size
	}
	if p.Lang != "" {
		attrs["lang"] = p.Lang
	}
	attrs[model.RawKey] = xmlnode.New("w:rPr", nil, rawChildren...)
	return model.Mark{Type: model.MarkTextStyle, Attrs: attrs}, true
}

// trackFormatMark converts a w:rPrChange into a trackFormat mark holding the
// marks before and after the change.
func trackFormatMark(change *xmlnode.Element, after []model.Mark) model.Mark {
	before := ParseRunProps(change.Child("w:rPr")).Marks()
	return model.Mark{Type: model.MarkTrackFormat, Attrs: model.Attrs{
		"id":         change.AttrOr("w:id", ""),
		"author":     change.AttrOr("w:author", ""),
		"date":       change.AttrOr("w:date", ""),
		"before":     before,
		"after":      stripRaw(after),
		model.RawKey: change,
	}}
}

func stripRaw(marks []model.Mark) []model.Mark {
	out := make([]model.Mark, 0, len(marks))
	for _, m := range marks {
		out = append(out, m.WithoutRaw())
	}
	return out
}

// markElements renders a formatting mark as rPr children. The stored raw
// fragment is reused when the mark still describes it.
func (x *Exporter) markElements(m model.Mark) []*xmlnode.Element {
	raw := m.Attrs.Raw(model.RawKey)
	switch m.Type {
	case model.MarkBold, model.MarkItalic, model.MarkStrike:
		if raw != nil && rawStillMatches(m, raw) {
			return []*xmlnode.Element{raw}
		}
		tag := map[model.MarkType]string{
			model.MarkBold:   "w:b",
			model.MarkItalic: "w:i",
			model.MarkStrike: "w:strike",
		}[m.Type]
		if !m.Active() {
			return []*xmlnode.Element{xmlnode.Val(tag, "0")}
		}
		return []*xmlnode.Element{xmlnode.New(tag, nil)}

	case model.MarkUnderline:
		if raw != nil && rawStillMatches(m, raw) {
			return []*xmlnode.Element{raw}
		}
		attrs := map[string]string{"w:val": m.Attrs.String("underlineType")}
		if attrs["w:val"] == "" {
			attrs["w:val"] = "single"
		}
		if c := m.Attrs.String("underlineColor"); c != "" {
			attrs["w:color"] = units.DenormalizeColor(c)
		}
		return []*xmlnode.Element{xmlnode.New("w:u", attrs)}

	case model.MarkHighlight:
		if raw != nil && rawStillMatches(m, raw) {
			return []*xmlnode.Element{raw}
		}
		if name, ok := units.ColorToHighlight(m.Attrs.String("color")); ok {
			return []*xmlnode.Element{xmlnode.Val("w:highlight", name)}
		}
		x.log.Debug("highlight color outside the palette dropped", zap.String("color", m.Attrs.String("color")))
		return nil

	case model.MarkTextStyle:
		return textStyleElements(m, raw)

	case model.MarkTrackFormat:
		if raw != nil && rawStillMatches(m, raw) {
			return []*xmlnode.Element{raw}
		}
		var before []*xmlnode.Element
		for _, bm := range m.Attrs.Marks("before") {
			before = append(before, x.markElements(bm)...)
		}
		return []*xmlnode.Element{xmlnode.New("w:rPrChange", map[string]string{
			"w:id":     m.Attrs.String("id"),
			"w:author": m.Attrs.String("author"),
			"w:date":   m.Attrs.String("date"),
		}, xmlnode.New("w:rPr", nil, sortBySchema(before, rPrOrder)...))}
	}
	return nil
}

// rawStillMatches reports whether parsing raw again yields the mark.
func rawStillMatches(m model.Mark, raw *xmlnode.Element) bool {
	var derived []model.Mark
	if m.Type == model.MarkTrackFormat {
		derived = []model.Mark{trackFormatMark(raw, nil)}
		want := m.Attrs.Without(model.RawKey, "after")
		got := derived[0].Attrs.Without(model.RawKey, "after")
		return want.Equal(got)
	}
	derived = ParseRunProps(xmlnode.New("w:rPr", nil, raw)).Marks()
	d, ok := model.FindMark(derived, m.Type)
	return ok && d.WithoutRaw().Equal(m.WithoutRaw())
}

// textStyleElements renders the textStyle mark key by key so untouched raw
// children (theme fonts, w:lang eastAsia) survive edits to other keys.
func textStyleElements(m model.Mark, raw *xmlnode.Element) []*xmlnode.Element {
	var out []*xmlnode.Element
	for _, ts := range textStyleTags {
		cur, hasCur := m.Attrs[ts.key]
		rawChild := raw.Child(ts.tag)
		if rawChild != nil {
			derived, _ := ParseRunProps(xmlnode.New("w:rPr", nil, rawChild)).textStyle()
			old, hasOld := derived.Attrs[ts.key]
			if hasCur == hasOld && (!hasCur || model.Attrs{"v": cur}.Equal(model.Attrs{"v": old})) {
				out = append(out, rawChild)
				continue
			}
		}
		if !hasCur {
			continue
		}
		if el := textStyleElement(ts.key, m.Attrs); el != nil {
			out = append(out, el)
		}
	}
	return out
}

func textStyleElement(key string, attrs model.Attrs) *xmlnode.Element {
	switch key {
	case "fontFamily":
		f := attrs.String(key)
		if f == "" {
			return nil
		}
		if theme, ok := units.IsThemeColor(f); ok {
			return xmlnode.New("w:rFonts", map[string]string{"w:asciiTheme": theme, "w:hAnsiTheme": theme})
		}
		return xmlnode.New("w:rFonts", map[string]string{"w:ascii": f, "w:hAnsi": f, "w:cs": f})
	case "color":
		c := attrs.String(key)
		if theme, ok := units.IsThemeColor(c); ok {
			return xmlnode.New("w:color", map[string]string{"w:val": "000000", "w:themeColor": theme})
		}
		if c == "" {
			return nil
		}
		return xmlnode.Val("w:color", units.DenormalizeColor(c))
	case "fontSize":
		pt, ok := attrs.Float(key)
		if !ok || pt <= 0 {
			return nil
		}
		return xmlnode.Val("w:sz", units.FormatInt(units.PointsToHalfPoints(pt)))
	case "lang":
		if l := attrs.String(key); l != "" {
			return xmlnode.Val("w:lang", l)
		}
	}
	return nil
}

// Schema order of CT_RPr children.
var rPrOrder = []string{
	"w:rStyle", "w:rFonts", "w:b", "w:bCs", "w:i", "w:iCs", "w:caps", "w:smallCaps",
	"w:strike", "w:dstrike", "w:outline", "w:shadow", "w:emboss", "w:imprint", "w:noProof",
	"w:snapToGrid", "w:vanish", "w:webHidden", "w:color", "w:spacing", "w:w", "w:kern",
	"w:position", "w:sz", "w:szCs", "w:highlight", "w:u", "w:effect", "w:bdr", "w:shd",
	"w:fitText", "w:vertAlign", "w:rtl", "w:cs", "w:em", "w:lang", "w:eastAsianLayout",
	"w:specVanish", "w:oMath", "w:rPrChange",
}

// Schema order of CT_PPr children.
var pPrOrder = []string{
	"w:pStyle", "w:keepNext", "w:keepLines", "w:pageBreakBefore", "w:framePr",
	"w:widowControl", "w:numPr", "w:suppressLineNumbers", "w:pBdr", "w:shd", "w:tabs",
	"w:suppressAutoHyphens", "w:kinsoku", "w:wordWrap", "w:overflowPunct", "w:topLinePunct",
	"w:autoSpaceDE", "w:autoSpaceDN", "w:bidi", "w:adjustRightInd", "w:snapToGrid",
	"w:spacing", "w:ind", "w:contextualSpacing", "w:mirrorIndents", "w:suppressOverlap",
	"w:jc", "w:textDirection", "w:textAlignment", "w:textboxTightWrap", "w:outlineLvl",
	"w:divId", "w:cnfStyle", "w:rPr", "w:sectPr", "w:pPrChange",
}

// sortBySchema orders children by their position in order. Unknown tags keep
// their relative order and go last.
func sortBySchema(children []*xmlnode.Element, order []string) []*xmlnode.Element {
	rank := make(map[string]int, len(order))
	for i, n := range order {
		rank[n] = i
	}
	out := append([]*xmlnode.Element(nil), children...)
	sort.SliceStable(out, func(i, j int) bool {
		ri, iok := rank[out[i].Name]
		rj, jok := rank[out[j].Name]
		if !iok {
			ri = len(order)
		}
		if !jok {
			rj = len(order)
		}
		return ri < rj
	})
	return out
}

// BuildRunProps rebuilds a w:rPr for decoding. It starts from the stored
// fragment, drops every mark-controlled axis, re-adds the axes from marks and
// re-injects the toggles implied by always-bold/always-italic style aliases.
// It returns nil when nothing remains.
func (x *Exporter) BuildRunProps(stored *xmlnode.Element, marks []model.Mark, styleID string) *xmlnode.Element {
	var children []*xmlnode.Element
	if stored != nil {
		children = stored.WithoutChildren(markControlledTags...).ElementChildren()
	}
	if styleID != "" {
		children = append(children, xmlnode.Val("w:rStyle", styleID))
	}
	for _, m := range model.SortMarks(marks) {
		children = append(children, x.markElements(m)...)
	}

	if styleID != "" {
		if containsString(x.opts.BoldStyleAliases, styleID) && x.shouldInject(marks, model.MarkBold, styleID, "w:b") {
			children = append(children, xmlnode.New("w:b", nil))
		}
		if containsString(x.opts.ItalicStyleAliases, styleID) && x.shouldInject(marks, model.MarkItalic, styleID, "w:i") {
			children = append(children, xmlnode.New("w:i", nil))
		}
	}

	if len(children) == 0 {
		return nil
	}
	name := "w:rPr"
	var attrs map[string]string
	if stored != nil {
		attrs = stored.Attrs
	}
	return xmlnode.New(name, attrs, sortBySchema(children, rPrOrder)...)
}

// shouldInject reports whether a style-alias toggle must be written inline:
// the marks carry no value for it and no style in the chain turns it off.
func (x *Exporter) shouldInject(marks []model.Mark, t model.MarkType, styleID, tag string) bool {
	if _, ok := model.FindMark(marks, t); ok {
		return false
	}
	for _, def := range x.styles.Chain(styleID) {
		if el := def.RPr.Child(tag); el != nil {
			val, hasVal := el.Attr("w:val")
			if units.ParseToggle(val, hasVal, true) == units.ToggleOff {
				return false
			}
		}
	}
	return true
}
