package model

import "sort"

// MarkType names a formatting annotation.
type MarkType string

const (
	MarkBold         MarkType = "bold"
	MarkItalic       MarkType = "italic"
	MarkUnderline    MarkType = "underline"
	MarkStrike       MarkType = "strike"
	MarkHighlight    MarkType = "highlight"
	MarkTextStyle    MarkType = "textStyle"
	MarkLink         MarkType = "link"
	MarkTrackInsert  MarkType = "trackInsert"
	MarkTrackDelete  MarkType = "trackDelete"
	MarkTrackFormat  MarkType = "trackFormat"
	MarkCommentRange MarkType = "commentRange"
)

// Canonical serialization order. Unknown types sort last by name.
var markOrder = map[MarkType]int{
	MarkTrackInsert:  0,
	MarkTrackDelete:  1,
	MarkLink:         2,
	MarkBold:         3,
	MarkItalic:       4,
	MarkUnderline:    5,
	MarkStrike:       6,
	MarkHighlight:    7,
	MarkTextStyle:    8,
	MarkTrackFormat:  9,
	MarkCommentRange: 10,
}

// OffValue is the value attribute of an explicit OFF toggle mark.
const OffValue = "0"

// Mark is a formatting annotation on inline content.
type Mark struct {
	Type  MarkType `json:"type"`
	Attrs Attrs    `json:"attrs,omitempty"`
}

// NewMark creates a mark with a copy of attrs.
func NewMark(t MarkType, attrs Attrs) Mark {
	return Mark{Type: t, Attrs: attrs.Clone()}
}

// IsToggle reports whether the mark type is an on/off property.
func (m Mark) IsToggle() bool {
	switch m.Type {
	case MarkBold, MarkItalic, MarkStrike:
		return true
	default:
		return false
	}
}

// Active reports whether the mark applies its formatting. Toggle marks with an
// explicit OFF value and underlines of type "none" are inactive.
func (m Mark) Active() bool {
	if m.IsToggle() && m.Attrs.String("value") == OffValue {
		return false
	}
	if m.Type == MarkUnderline && m.Attrs.String("underlineType") == "none" {
		return false
	}
	return true
}

// Equal compares type and attributes.
func (m Mark) Equal(o Mark) bool {
	return m.Type == o.Type && m.Attrs.Equal(o.Attrs)
}

// Clone returns a deep copy.
func (m Mark) Clone() Mark {
	return Mark{Type: m.Type, Attrs: m.Attrs.Clone()}
}

// FindMark returns the mark of the given type.
func FindMark(marks []Mark, t MarkType) (Mark, bool) {
	for _, m := range marks {
		if m.Type == t {
			return m, true
		}
	}
	return Mark{}, false
}

// HasMark reports whether an active mark of the given type is present.
func HasMark(marks []Mark, t MarkType) bool {
	m, ok := FindMark(marks, t)
	return ok && m.Active()
}

// SetMark returns a new list where m replaces any mark of the same type,
// keeping its position, or is appended.
func SetMark(marks []Mark, m Mark) []Mark {
	out := make([]Mark, 0, len(marks)+1)
	replaced := false
	for _, existing := range marks {
		if existing.Type == m.Type {
			out = append(out, m)
			replaced = true
			continue
		}
		out = append(out, existing)
	}
	if !replaced {
		out = append(out, m)
	}
	return out
}

// RemoveMark returns a new list without marks of type t.
func RemoveMark(marks []Mark, t MarkType) []Mark {
	out := make([]Mark, 0, len(marks))
	for _, m := range marks {
		if m.Type != t {
			out = append(out, m)
		}
	}
	return out
}

// MergeMarks applies extra on top of base with SetMark semantics.
func MergeMarks(base []Mark, extra ...Mark) []Mark {
	out := CloneMarks(base)
	for _, m := range extra {
		out = SetMark(out, m)
	}
	return out
}

// CloneMarks deep-copies a mark list.
func CloneMarks(marks []Mark) []Mark {
	if marks == nil {
		return nil
	}
	out := make([]Mark, len(marks))
	for i, m := range marks {
		out[i] = m.Clone()
	}
	return out
}

// SortMarks returns a copy ordered canonically.
func SortMarks(marks []Mark) []Mark {
	out := CloneMarks(marks)
	sort.SliceStable(out, func(i, j int) bool {
		oi, iok := markOrder[out[i].Type]
		oj, jok := markOrder[out[j].Type]
		switch {
		case iok && jok:
			return oi < oj
		case iok:
			return true
		case jok:
			return false
		default:
			return out[i].Type < out[j].Type
		}
	})
	return out
}

// MarksEqual compares two mark lists as sets keyed by type.
func MarksEqual(a, b []Mark) bool {
	if len(a) != len(b) {
		return false
	}
	for _, m := range a {
		o, ok := FindMark(b, m.Type)
		if !ok || !m.Equal(o) {
			return false
		}
	}
	return true
}
