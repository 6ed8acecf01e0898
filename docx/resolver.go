package docx

import (
	"github.com/tsawler/wordtree/model"
	"github.com/tsawler/wordtree/units"
)

// Source tells which cascade level supplied a resolved value.
type Source int

const (
	SourceNone Source = iota
	SourceDefaults
	SourceParagraphStyle
	SourceCharacterStyle
	SourceInline
)

func (s Source) String() string {
	switch s {
	case SourceDefaults:
		return "defaults"
	case SourceParagraphStyle:
		return "paragraphStyle"
	case SourceCharacterStyle:
		return "characterStyle"
	case SourceInline:
		return "inline"
	default:
		return "none"
	}
}

// Resolved is one winning value of the cascade.
type Resolved[T any] struct {
	Value  T
	Source Source
}

// Set reports whether any level supplied the value.
func (r Resolved[T]) Set() bool { return r.Source != SourceNone }

// FromStyle reports whether the value came from a style or the defaults.
func (r Resolved[T]) FromStyle() bool { return r.Set() && r.Source != SourceInline }

// ResolvedRun contains the effective run properties and where each came from.
type ResolvedRun struct {
	Bold       Resolved[units.Toggle]
	Italic     Resolved[units.Toggle]
	Strike     Resolved[units.Toggle]
	Underline  Resolved[Underline]
	Highlight  Resolved[string]
	Color      Resolved[string]
	FontFamily Resolved[string]
	FontSize   Resolved[float64]
	Lang       Resolved[string]
}

// apply overlays the axes a layer sets.
func (r *ResolvedRun) apply(p RunProps, src Source) {
	if p.Bold.Set() {
		r.Bold = Resolved[units.Toggle]{p.Bold, src}
	}
	if p.Italic.Set() {
		r.Italic = Resolved[units.Toggle]{p.Italic, src}
	}
	if p.Strike.Set() {
		r.Strike = Resolved[units.Toggle]{p.Strike, src}
	}
	if p.Underline != nil {
		r.Underline = Resolved[Underline]{*p.Underline, src}
	}
	if p.Highlight != "" {
		r.Highlight = Resolved[string]{p.Highlight, src}
	}
	if p.Color != "" {
		r.Color = Resolved[string]{p.Color, src}
	}
	if p.Fonts != nil {
		if f := p.Fonts.Family(); f != "" {
			r.FontFamily = Resolved[string]{f, src}
		}
	}
	if p.Size > 0 {
		r.FontSize = Resolved[float64]{p.Size, src}
	}
	if p.Lang != "" {
		r.Lang = Resolved[string]{p.Lang, src}
	}
}

// ResolveRun resolves run properties through the cascade: document defaults,
// then the paragraph style chain, then the character style chain, then inline
// formatting. An empty paraStyleID falls back to the default paragraph style.
func (st *StyleTable) ResolveRun(inline RunProps, charStyleID, paraStyleID string) ResolvedRun {
	var r ResolvedRun

	r.apply(ParseRunProps(st.DefaultRunProps()), SourceDefaults)

	if paraStyleID == "" {
		paraStyleID = st.DefaultStyle(StyleTypeParagraph)
	}
	for _, def := range st.Chain(paraStyleID) {
		r.apply(ParseRunProps(def.RPr), SourceParagraphStyle)
	}
	for _, def := range st.Chain(charStyleID) {
		r.apply(ParseRunProps(def.RPr), SourceCharacterStyle)
	}

	r.apply(inline, SourceInline)
	return r
}

// StyleAttrs returns the values supplied by styles and defaults, for
// renderers. Inline values are carried by marks instead. It returns nil when
// no style contributes anything.
func (r ResolvedRun) StyleAttrs() model.Attrs {
	out := model.Attrs{}
	toggle := func(key string, v Resolved[units.Toggle]) {
		if v.FromStyle() {
			out[key] = v.Value == units.ToggleOn
		}
	}
	toggle("bold", r.Bold)
	toggle("italic", r.Italic)
	toggle("strike", r.Strike)
	if r.Underline.FromStyle() {
		out["underline"] = r.Underline.Value.Type
	}
	str := func(key string, v Resolved[string]) {
		if v.FromStyle() {
			out[key] = v.Value
		}
	}
	str("highlight", r.Highlight)
	str("color", r.Color)
	str("fontFamily", r.FontFamily)
	str("lang", r.Lang)
	if r.FontSize.FromStyle() {
		out["fontSize"] = r.FontSize.Value
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
