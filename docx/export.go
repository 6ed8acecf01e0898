package docx

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/tsawler/wordtree/model"
	"github.com/tsawler/wordtree/xmlnode"
)

// Namespaces written on a regenerated w:document root when the converted
// tree does not carry the original declarations.
var defaultNamespaces = map[string]string{
	"xmlns:w":   "http://schemas.openxmlformats.org/wordprocessingml/2006/main",
	"xmlns:r":   "http://schemas.openxmlformats.org/officeDocument/2006/relationships",
	"xmlns:w14": "http://schemas.microsoft.com/office/word/2010/wordml",
	"xmlns:w15": "http://schemas.microsoft.com/office/word/2012/wordml",
	"xmlns:mc":  "http://schemas.openxmlformats.org/markup-compatibility/2006",
}

// Exporter decodes tree nodes back into WordprocessingML.
type Exporter struct {
	opts   Options
	log    *zap.Logger
	styles *StyleTable
	inLink bool
}

// NewExporter creates an exporter. styles is used to decide whether style
// alias toggles must be re-injected and may be nil.
func NewExporter(styles *StyleTable, opts ...Option) *Exporter {
	o := buildOptions(opts)
	if styles == nil {
		styles = NewStyleTable(nil)
	}
	return &Exporter{opts: o, log: o.Logger, styles: styles}
}

// Export decodes a document tree into a w:document element.
func Export(doc *model.Node, opts ...Option) (*xmlnode.Element, error) {
	return NewExporter(nil, opts...).Document(doc)
}

// DecodeNode decodes a single node with default options.
func DecodeNode(n *model.Node) ([]*xmlnode.Element, error) {
	return NewExporter(nil).DecodeNode(n)
}

func (x *Exporter) insideLink() *Exporter {
	cp := *x
	cp.inLink = true
	return &cp
}

// Document decodes a document node into w:document.
func (x *Exporter) Document(doc *model.Node) (*xmlnode.Element, error) {
	if doc == nil || doc.Kind != model.KindDocument {
		return nil, fmt.Errorf("docx: export expects a document node, got %v", kindOf(doc))
	}
	body, err := x.DecodeNodes(doc.Content)
	if err != nil {
		return nil, err
	}
	if sect := doc.Attrs.Raw("sectionProperties"); sect != nil {
		body = append(body, sect)
	}

	attrs := stringMap(doc.Attrs["xmlAttributes"])
	if len(attrs) == 0 {
		attrs = defaultNamespaces
	}
	return xmlnode.New("w:document", attrs, xmlnode.New("w:body", nil, body...)), nil
}

// Part decodes a header or footer node into w:hdr or w:ftr.
func (x *Exporter) Part(n *model.Node) (*xmlnode.Element, error) {
	var name string
	switch kindOf(n) {
	case model.KindHeader:
		name = "w:hdr"
	case model.KindFooter:
		name = "w:ftr"
	default:
		return nil, fmt.Errorf("docx: export expects a header or footer node, got %v", kindOf(n))
	}
	children, err := x.DecodeNodes(n.Content)
	if err != nil {
		return nil, err
	}
	attrs := stringMap(n.Attrs["xmlAttributes"])
	if len(attrs) == 0 {
		attrs = defaultNamespaces
	}
	return xmlnode.New(name, attrs, children...), nil
}

func kindOf(n *model.Node) model.Kind {
	if n == nil {
		return model.KindUnknown
	}
	return n.Kind
}

// DecodeNode decodes one node. Unknown kinds fail with ErrUnknownKind.
func (x *Exporter) DecodeNode(n *model.Node) ([]*xmlnode.Element, error) {
	if n == nil {
		return nil, nil
	}
	t, ok := decoderFor(n.Kind)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, n.Kind)
	}
	els, err := t.Decode(x, n)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", n.Kind, err)
	}
	if n.Kind != model.KindRun {
		if m, ok := trackOf(n); ok {
			els = wrapTrack(els, m)
		}
	}
	return els, nil
}

// DecodeNodes decodes a sibling list and merges adjacent wrappers created
// for marks (tracked changes, hyperlinks) that describe the same change.
func (x *Exporter) DecodeNodes(nodes []*model.Node) ([]*xmlnode.Element, error) {
	var out []*xmlnode.Element
	for _, n := range nodes {
		els, err := x.DecodeNode(n)
		if err != nil {
			return nil, err
		}
		out = append(out, els...)
	}
	return mergeWrappers(out), nil
}

var mergeableWrappers = map[string]bool{
	"w:ins":       true,
	"w:del":       true,
	"w:moveTo":    true,
	"w:moveFrom":  true,
	"w:hyperlink": true,
}

// mergeWrappers joins consecutive wrapper elements with identical names and
// attributes into one.
func mergeWrappers(els []*xmlnode.Element) []*xmlnode.Element {
	if len(els) < 2 {
		return els
	}
	out := make([]*xmlnode.Element, 0, len(els))
	for _, el := range els {
		if len(out) > 0 {
			prev := out[len(out)-1]
			if mergeableWrappers[el.Name] && prev.Name == el.Name && sameAttrs(prev, el) {
				merged := prev.AppendChildren(el.Children...)
				out[len(out)-1] = merged.WithChildren(mergeWrappers(merged.Children)...)
				continue
			}
		}
		out = append(out, el)
	}
	return out
}

func sameAttrs(a, b *xmlnode.Element) bool {
	if len(a.Attrs) != len(b.Attrs) {
		return false
	}
	for k, v := range a.Attrs {
		if b.Attrs[k] != v {
			return false
		}
	}
	return true
}
