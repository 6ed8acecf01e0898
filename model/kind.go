package model

import (
	"encoding/json"
	"fmt"
)

// Kind identifies the semantic role of a Node.
type Kind int

const (
	KindUnknown Kind = iota
	KindDocument
	KindHeader
	KindFooter
	KindParagraph
	KindRun
	KindText
	KindTab
	KindLineBreak
	KindTable
	KindTableRow
	KindTableCell
	KindBookmark
	KindBookmarkStart
	KindBookmarkEnd
	KindTocWrapper
	KindTocEntry
	KindHyperlink
	KindFieldChar
	KindFieldInstruction
	KindCommentRangeStart
	KindCommentRangeEnd
	KindCommentReference
	KindFootnoteReference
	KindEndnoteReference
	KindStructuredContent
	KindPassthrough

	kindCount
)

var kindNames = [...]string{
	KindUnknown:           "unknown",
	KindDocument:          "document",
	KindHeader:            "header",
	KindFooter:            "footer",
	KindParagraph:         "paragraph",
	KindRun:               "run",
	KindText:              "text",
	KindTab:               "tab",
	KindLineBreak:         "lineBreak",
	KindTable:             "table",
	KindTableRow:          "tableRow",
	KindTableCell:         "tableCell",
	KindBookmark:          "bookmark",
	KindBookmarkStart:     "bookmarkStart",
	KindBookmarkEnd:       "bookmarkEnd",
	KindTocWrapper:        "tocWrapper",
	KindTocEntry:          "tocEntry",
	KindHyperlink:         "hyperlink",
	KindFieldChar:         "fieldChar",
	KindFieldInstruction:  "fieldInstruction",
	KindCommentRangeStart: "commentRangeStart",
	KindCommentRangeEnd:   "commentRangeEnd",
	KindCommentReference:  "commentReference",
	KindFootnoteReference: "footnoteReference",
	KindEndnoteReference:  "endnoteReference",
	KindStructuredContent: "structuredContent",
	KindPassthrough:       "passthrough",
}

func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return "unknown"
	}
	return kindNames[k]
}

// Kinds returns every defined kind except KindUnknown.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount-1)
	for k := KindUnknown + 1; k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for k := KindUnknown + 1; k < kindCount; k++ {
		if kindNames[k] == s {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("unknown node kind %q", s)
}

// IsInlineLeaf reports whether nodes of this kind may carry text-level marks.
func (k Kind) IsInlineLeaf() bool {
	switch k {
	case KindText, KindTab, KindLineBreak, KindFieldInstruction:
		return true
	default:
		return false
	}
}

// IsLeaf reports whether nodes of this kind never have content.
func (k Kind) IsLeaf() bool {
	switch k {
	case KindText, KindTab, KindLineBreak, KindBookmark, KindBookmarkStart, KindBookmarkEnd,
		KindFieldChar, KindFieldInstruction, KindCommentRangeStart, KindCommentRangeEnd,
		KindCommentReference, KindFootnoteReference, KindEndnoteReference, KindPassthrough:
		return true
	default:
		return false
	}
}

// IsBlock reports whether the kind appears at block level (body, cell, header).
func (k Kind) IsBlock() bool {
	switch k {
	case KindParagraph, KindTable, KindTocWrapper, KindTocEntry, KindStructuredContent:
		return true
	default:
		return false
	}
}

// MarshalJSON encodes the kind by name.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON decodes a kind name.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
