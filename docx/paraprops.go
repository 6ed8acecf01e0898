package docx

import (
	"github.com/tsawler/wordtree/model"
	"github.com/tsawler/wordtree/units"
	"github.com/tsawler/wordtree/xmlnode"
)

// propertyAxis maps one property element to a semantic node attribute.
type propertyAxis struct {
	key   string
	tag   string
	parse func(el *xmlnode.Element) (any, bool)
	build func(v any) *xmlnode.Element
}

var paragraphAxes = []propertyAxis{
	{"styleId", "w:pStyle", parseValAttr, buildValAttr("w:pStyle")},
	{"justification", "w:jc", parseValAttr, buildValAttr("w:jc")},
	{"keepNext", "w:keepNext", parseOnOff, buildOnOff("w:keepNext")},
	{"keepLines", "w:keepLines", parseOnOff, buildOnOff("w:keepLines")},
	{"pageBreakBefore", "w:pageBreakBefore", parseOnOff, buildOnOff("w:pageBreakBefore")},
	{"numberingProperties", "w:numPr", parseNumPr, buildNumPr},
	{"spacing", "w:spacing", parseSpacing, buildSpacing},
	{"indent", "w:ind", parseIndent, buildIndent},
	{"outlineLevel", "w:outlineLvl", parseIntVal, buildIntVal("w:outlineLvl")},
}

func parseValAttr(el *xmlnode.Element) (any, bool) {
	v, ok := el.Attr("w:val")
	return v, ok && v != ""
}

func buildValAttr(tag string) func(any) *xmlnode.Element {
	return func(v any) *xmlnode.Element {
		s, _ := v.(string)
		if s == "" {
			return nil
		}
		return xmlnode.Val(tag, s)
	}
}

func parseOnOff(el *xmlnode.Element) (any, bool) {
	val, hasVal := el.Attr("w:val")
	return units.ParseToggle(val, hasVal, true) == units.ToggleOn, true
}

func buildOnOff(tag string) func(any) *xmlnode.Element {
	return func(v any) *xmlnode.Element {
		if b, _ := v.(bool); b {
			return xmlnode.New(tag, nil)
		}
		return xmlnode.Val(tag, "0")
	}
}

func parseIntVal(el *xmlnode.Element) (any, bool) {
	return units.ParseInt(el.AttrOr("w:val", ""))
}

func buildIntVal(tag string) func(any) *xmlnode.Element {
	return func(v any) *xmlnode.Element {
		n, ok := model.Attrs{"v": v}.Int("v")
		if !ok {
			return nil
		}
		return xmlnode.Val(tag, units.FormatInt(n))
	}
}

func parseNumPr(el *xmlnode.Element) (any, bool) {
	numID, ok := el.ChildVal("w:numId")
	if !ok {
		return nil, false
	}
	ilvl := 0
	if v, ok := el.ChildVal("w:ilvl"); ok {
		ilvl, _ = units.ParseInt(v)
	}
	return model.Attrs{"numId": numID, "ilvl": ilvl}, true
}

func buildNumPr(v any) *xmlnode.Element {
	a := model.Attrs{"v": v}.Map("v")
	if a == nil || a.String("numId") == "" {
		return nil
	}
	ilvl, _ := a.Int("ilvl")
	return xmlnode.New("w:numPr", nil,
		xmlnode.Val("w:ilvl", units.FormatInt(ilvl)),
		xmlnode.Val("w:numId", a.String("numId")),
	)
}

// Spacing: before/after in px; line is a multiplier for lineRule "auto" and
// px otherwise.
func parseSpacing(el *xmlnode.Element) (any, bool) {
	out := model.Attrs{}
	if v, ok := units.TwipsAttrToPixels(el.AttrOr("w:before", "")); ok {
		out["lineSpaceBefore"] = v
	}
	if v, ok := units.TwipsAttrToPixels(el.AttrOr("w:after", "")); ok {
		out["lineSpaceAfter"] = v
	}
	rule := el.AttrOr("w:lineRule", "")
	if line, ok := units.ParseNumber(el.AttrOr("w:line", "")); ok {
		if rule == "" || rule == "auto" {
			out["line"] = units.Round(line / 240)
		} else {
			out["line"] = units.TwipsToPixels(line)
		}
	}
	if rule != "" {
		out["lineRule"] = rule
	}
	if units.ParseBool(el.AttrOr("w:beforeAutospacing", ""), false) {
		out["beforeAutospacing"] = true
	}
	if units.ParseBool(el.AttrOr("w:afterAutospacing", ""), false) {
		out["afterAutospacing"] = true
	}
	return out, len(out) > 0
}

func buildSpacing(v any) *xmlnode.Element {
	a := model.Attrs{"v": v}.Map("v")
	if len(a) == 0 {
		return nil
	}
	attrs := map[string]string{}
	if px, ok := a.Float("lineSpaceBefore"); ok {
		attrs["w:before"] = units.FormatInt(units.PixelsToTwips(px))
	}
	if px, ok := a.Float("lineSpaceAfter"); ok {
		attrs["w:after"] = units.FormatInt(units.PixelsToTwips(px))
	}
	rule := a.String("lineRule")
	if line, ok := a.Float("line"); ok {
		if rule == "" || rule == "auto" {
			attrs["w:line"] = units.FormatInt(int(line*240 + 0.5))
		} else {
			attrs["w:line"] = units.FormatInt(units.PixelsToTwips(line))
		}
	}
	if rule != "" {
		attrs["w:lineRule"] = rule
	}
	if a.Bool("beforeAutospacing") {
		attrs["w:beforeAutospacing"] = "1"
	}
	if a.Bool("afterAutospacing") {
		attrs["w:afterAutospacing"] = "1"
	}
	return xmlnode.New("w:spacing", attrs)
}

var indentAttrs = []struct {
	key  string
	tags []string
}{
	{"left", []string{"w:left", "w:start"}},
	{"right", []string{"w:right", "w:end"}},
	{"firstLine", []string{"w:firstLine"}},
	{"hanging", []string{"w:hanging"}},
}

func parseIndent(el *xmlnode.Element) (any, bool) {
	out := model.Attrs{}
	for _, ia := range indentAttrs {
		for _, tag := range ia.tags {
			if v, ok := units.TwipsAttrToPixels(el.AttrOr(tag, "")); ok {
				out[ia.key] = v
				break
			}
		}
	}
	return out, len(out) > 0
}

func buildIndent(v any) *xmlnode.Element {
	a := model.Attrs{"v": v}.Map("v")
	attrs := map[string]string{}
	for _, ia := range indentAttrs {
		if px, ok := a.Float(ia.key); ok {
			attrs[ia.tags[0]] = units.FormatInt(units.PixelsToTwips(px))
		}
	}
	if len(attrs) == 0 {
		return nil
	}
	return xmlnode.New("w:ind", attrs)
}

// ParseParagraphProps reads the semantic values of a w:pPr element.
func ParseParagraphProps(pPr *xmlnode.Element) model.Attrs {
	return parseAxes(pPr, paragraphAxes)
}

func parseAxes(props *xmlnode.Element, axes []propertyAxis) model.Attrs {
	out := model.Attrs{}
	if props == nil {
		return out
	}
	for _, ax := range axes {
		if el := props.Child(ax.tag); el != nil {
			if v, ok := ax.parse(el); ok {
				out[ax.key] = v
			}
		}
	}
	return out
}

// BuildParagraphProps writes the semantic paragraph attrs over the stored
// w:pPr. Children whose value is unchanged are kept verbatim; edited ones are
// regenerated and removed ones dropped. It returns nil when nothing remains.
func BuildParagraphProps(stored *xmlnode.Element, attrs model.Attrs) *xmlnode.Element {
	props := buildAxes(stored, attrs, paragraphAxes, "w:pPr", pPrOrder)
	return props
}

func buildAxes(stored *xmlnode.Element, attrs model.Attrs, axes []propertyAxis, name string, order []string) *xmlnode.Element {
	controlled := make(map[string]bool, len(axes))
	for _, ax := range axes {
		controlled[ax.tag] = true
	}

	var children []*xmlnode.Element
	for _, c := range stored.ElementChildren() {
		if !controlled[c.Name] {
			children = append(children, c)
		}
	}

	for _, ax := range axes {
		cur, hasCur := attrs[ax.key]
		hasCur = hasCur && cur != nil
		if rawChild := stored.Child(ax.tag); rawChild != nil {
			old, hasOld := ax.parse(rawChild)
			if hasOld == hasCur && (!hasCur || (model.Attrs{"v": old}).Equal(model.Attrs{"v": cur})) {
				children = append(children, rawChild)
				continue
			}
		}
		if !hasCur {
			continue
		}
		if el := ax.build(cur); el != nil {
			children = append(children, el)
		}
	}

	if len(children) == 0 {
		return nil
	}
	var rootAttrs map[string]string
	if stored != nil {
		rootAttrs = stored.Attrs
	}
	return xmlnode.New(name, rootAttrs, sortBySchema(children, order)...)
}
