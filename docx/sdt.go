package docx

import (
	"github.com/tsawler/wordtree/model"
	"github.com/tsawler/wordtree/xmlnode"
)

// sdtTranslator handles structured document tags. The content is
// re-dispatched, so a TOC inside a docPart gallery is recognized as well.
type sdtTranslator struct{}

func (sdtTranslator) Name() string     { return "structuredContent" }
func (sdtTranslator) Kind() model.Kind { return model.KindStructuredContent }

func (sdtTranslator) Encode(c *Context, elems []*xmlnode.Element) (Encoded, error) {
	el := elems[0]
	sdtPr := el.Child("w:sdtPr")
	attrs := model.Attrs{}
	if sdtPr != nil {
		attrs["sdtProperties"] = sdtPr
		if v, ok := sdtPr.ChildVal("w:tag"); ok {
			attrs["tag"] = v
		}
		if v, ok := sdtPr.ChildVal("w:alias"); ok {
			attrs["alias"] = v
		}
		if v, ok := sdtPr.ChildVal("w:id"); ok {
			attrs["id"] = v
		}
		if g, ok := sdtPr.Child("w:docPartObj").ChildVal("w:docPartGallery"); ok {
			attrs["docPartGallery"] = g
		}
	}
	if endPr := el.Child("w:sdtEndPr"); endPr != nil {
		attrs["sdtEndProperties"] = endPr
	}
	content := c.encode(el.Child("w:sdtContent").ElementChildren())
	return single(model.NewNode(model.KindStructuredContent, attrs, content...)), nil
}

func (sdtTranslator) Decode(x *Exporter, n *model.Node) ([]*xmlnode.Element, error) {
	children, err := x.DecodeNodes(n.Content)
	if err != nil {
		return nil, err
	}
	return []*xmlnode.Element{xmlnode.New("w:sdt", nil,
		n.Attrs.Raw("sdtProperties"),
		n.Attrs.Raw("sdtEndProperties"),
		xmlnode.New("w:sdtContent", nil, children...),
	)}, nil
}
