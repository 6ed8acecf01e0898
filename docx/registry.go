package docx

import (
	"github.com/tsawler/wordtree/model"
	"github.com/tsawler/wordtree/xmlnode"
)

// Translator converts one kind of XML element into tree nodes and back.
//
// Encode looks at the head of a sibling list. It returns Consumed == 0 and no
// nodes to decline, letting the next candidate try. Decode turns a node of
// Kind back into XML elements.
type Translator interface {
	Name() string
	Kind() model.Kind
	Encode(c *Context, elems []*xmlnode.Element) (Encoded, error)
	Decode(x *Exporter, n *model.Node) ([]*xmlnode.Element, error)
}

var (
	paragraphT      = paragraphTranslator{}
	runT            = runTranslator{}
	textT           = textTranslator{}
	tabT            = tabTranslator{}
	breakT          = breakTranslator{}
	tableT          = tableTranslator{}
	rowT            = tableRowTranslator{}
	cellT           = tableCellTranslator{}
	bookmarkT       = bookmarkTranslator{}
	bookmarkEndT    = bookmarkEndTranslator{}
	tocT            = tocTranslator{}
	tocEntryT       = tocEntryTranslator{}
	hyperlinkT      = hyperlinkTranslator{}
	fieldCharT      = fieldCharTranslator{}
	instrTextT      = instrTextTranslator{}
	fldSimpleT      = fldSimpleTranslator{}
	commentRangeT   = commentRangeTranslator{}
	commentRefT     = commentReferenceTranslator{}
	noteRefT        = noteReferenceTranslator{}
	trackChangeT    = trackChangeTranslator{}
	sdtT            = sdtTranslator{}
	unwrapT         = unwrapTranslator{}
	passthroughT    = passthroughTranslator{}
	paragraphChoice = []Translator{tocT, paragraphT, passthroughT}
)

// candidates returns the ordered translators for a tag. The passthrough
// translator is always last.
func candidates(name string) []Translator {
	switch name {
	case "w:p":
		return paragraphChoice
	case "w:r":
		return []Translator{runT, passthroughT}
	case "w:t", "w:delText":
		return []Translator{textT, passthroughT}
	case "w:tab", "w:ptab":
		return []Translator{tabT, passthroughT}
	case "w:br", "w:cr":
		return []Translator{breakT, passthroughT}
	case "w:tbl":
		return []Translator{tableT, passthroughT}
	case "w:tr":
		return []Translator{rowT, passthroughT}
	case "w:tc":
		return []Translator{cellT, passthroughT}
	case "w:bookmarkStart":
		return []Translator{bookmarkT, passthroughT}
	case "w:bookmarkEnd":
		return []Translator{bookmarkEndT, passthroughT}
	case "w:hyperlink":
		return []Translator{hyperlinkT, passthroughT}
	case "w:fldChar":
		return []Translator{fieldCharT, passthroughT}
	case "w:instrText", "w:delInstrText":
		return []Translator{instrTextT, passthroughT}
	case "w:fldSimple":
		return []Translator{fldSimpleT, passthroughT}
	case "w:commentRangeStart", "w:commentRangeEnd":
		return []Translator{commentRangeT, passthroughT}
	case "w:commentReference":
		return []Translator{commentRefT, passthroughT}
	case "w:footnoteReference", "w:endnoteReference":
		return []Translator{noteRefT, passthroughT}
	case "w:ins", "w:del", "w:moveTo", "w:moveFrom":
		return []Translator{trackChangeT, passthroughT}
	case "w:sdt":
		return []Translator{sdtT, passthroughT}
	case "w:smartTag", "w:customXml":
		return []Translator{unwrapT, passthroughT}
	default:
		return []Translator{passthroughT}
	}
}

// decoderFor returns the translator decoding nodes of kind k. Document,
// header and footer roots are decoded by the Exporter itself.
func decoderFor(k model.Kind) (Translator, bool) {
	switch k {
	case model.KindParagraph:
		return paragraphT, true
	case model.KindRun:
		return runT, true
	case model.KindText:
		return textT, true
	case model.KindTab:
		return tabT, true
	case model.KindLineBreak:
		return breakT, true
	case model.KindTable:
		return tableT, true
	case model.KindTableRow:
		return rowT, true
	case model.KindTableCell:
		return cellT, true
	case model.KindBookmark, model.KindBookmarkStart:
		return bookmarkT, true
	case model.KindBookmarkEnd:
		return bookmarkEndT, true
	case model.KindTocWrapper:
		return tocT, true
	case model.KindTocEntry:
		return tocEntryT, true
	case model.KindHyperlink:
		return hyperlinkT, true
	case model.KindFieldChar:
		return fieldCharT, true
	case model.KindFieldInstruction:
		return instrTextT, true
	case model.KindCommentRangeStart, model.KindCommentRangeEnd:
		return commentRangeT, true
	case model.KindCommentReference:
		return commentRefT, true
	case model.KindFootnoteReference, model.KindEndnoteReference:
		return noteRefT, true
	case model.KindStructuredContent:
		return sdtT, true
	case model.KindPassthrough:
		return passthroughT, true
	default:
		return nil, false
	}
}

// passthroughTranslator keeps unknown elements verbatim.
type passthroughTranslator struct{}

func (passthroughTranslator) Name() string     { return "passthrough" }
func (passthroughTranslator) Kind() model.Kind { return model.KindPassthrough }

func (passthroughTranslator) Encode(c *Context, elems []*xmlnode.Element) (Encoded, error) {
	el := elems[0]
	if c.opts.DropUnknown || c.opts.ignored(el.Name) {
		return Encoded{}, nil
	}
	return single(model.NewNode(model.KindPassthrough, model.Attrs{"element": el, "tag": el.Name})), nil
}

func (passthroughTranslator) Decode(_ *Exporter, n *model.Node) ([]*xmlnode.Element, error) {
	if el := n.Attrs.Raw("element"); el != nil {
		return []*xmlnode.Element{el}, nil
	}
	return nil, nil
}

// unwrapTranslator drops a semantic-only wrapper and keeps its children.
type unwrapTranslator struct{}

func (unwrapTranslator) Name() string     { return "unwrap" }
func (unwrapTranslator) Kind() model.Kind { return model.KindUnknown }

func (unwrapTranslator) Encode(c *Context, elems []*xmlnode.Element) (Encoded, error) {
	children := elems[0].ElementChildren()
	var content []*xmlnode.Element
	for _, ch := range children {
		if ch.Name == "w:smartTagPr" || ch.Name == "w:customXmlPr" {
			continue
		}
		content = append(content, ch)
	}
	return Encoded{Nodes: c.encode(content), Consumed: 1}, nil
}

func (unwrapTranslator) Decode(*Exporter, *model.Node) ([]*xmlnode.Element, error) {
	return nil, nil
}
