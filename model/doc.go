// Package model provides the document tree produced by the docx converter.
//
// A document is a tree of [Node] values. Every node has a [Kind], an
// attribute map ([Attrs]), child content, and a list of [Mark] values:
//
//	doc := model.NewNode(model.KindDocument, nil,
//		model.NewNode(model.KindParagraph, model.Attrs{"styleId": "Heading1"},
//			model.NewText("Title", model.NewMark(model.MarkBold, nil)),
//		),
//	)
//
// # Kinds
//
// Block kinds (paragraphs, tables, table of contents wrappers and structured
// content) hold inline kinds (runs, text, tabs, breaks, hyperlinks,
// bookmarks, fields and note references). [Kind.IsBlock] and
// [Kind.IsInlineLeaf] classify them. Kinds marshal to JSON by name.
//
// # Marks
//
// Marks annotate inline content with formatting such as bold, text style,
// highlight or tracked changes. Toggle marks (bold, italic, strike and the
// like) are tri-state: an explicit off value is kept so that export can
// reproduce it. A mark decoded from WordprocessingML keeps its source
// fragment under [RawKey].
//
// # Attrs
//
// [Attrs] is a JSON-shaped map with typed accessors. Values may be nested
// Attrs, mark lists, or raw XML fragments ([Attrs.Raw]).
package model
