package xmlnode

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// Elements whose character data is significant even when it is only whitespace.
var textBearing = map[string]bool{
	"t":            true,
	"delText":      true,
	"instrText":    true,
	"delInstrText": true,
}

// Parse parses an XML document and returns its root element.
func Parse(data []byte) (*Element, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parsing xml: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("parsing xml: document has no root element")
	}
	return fromEtree(root), nil
}

// MustParse is like Parse but panics on error. It is intended for tests and
// static fixtures.
func MustParse(s string) *Element {
	el, err := Parse([]byte(s))
	if err != nil {
		panic(err)
	}
	return el
}

func fromEtree(src *etree.Element) *Element {
	el := &Element{Name: src.FullTag()}
	if len(src.Attr) > 0 {
		el.Attrs = make(map[string]string, len(src.Attr))
		for _, a := range src.Attr {
			el.Attrs[a.FullKey()] = a.Value
		}
	}

	keepSpace := textBearing[src.Tag] || el.Attrs["xml:space"] == "preserve"
	for _, tok := range src.Child {
		switch t := tok.(type) {
		case *etree.Element:
			el.Children = append(el.Children, fromEtree(t))
		case *etree.CharData:
			if !keepSpace && strings.TrimSpace(t.Data) == "" {
				continue
			}
			el.Children = append(el.Children, NewText(t.Data))
		}
	}
	return el
}

// Marshal serializes the element as a standalone XML document.
func Marshal(root *Element) ([]byte, error) {
	if root == nil || root.IsText() {
		return nil, fmt.Errorf("marshal: root must be an element")
	}
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	toEtree(doc.CreateElement(root.Name), root)
	return doc.WriteToBytes()
}

// MarshalFragment serializes the element without an XML declaration.
func MarshalFragment(el *Element) (string, error) {
	if el == nil {
		return "", nil
	}
	if el.IsText() {
		doc := etree.NewDocument()
		doc.CreateText(el.Text)
		return doc.WriteToString()
	}
	doc := etree.NewDocument()
	toEtree(doc.CreateElement(el.Name), el)
	return doc.WriteToString()
}

func toEtree(dst *etree.Element, src *Element) {
	for _, k := range src.AttrKeys() {
		dst.CreateAttr(k, src.Attrs[k])
	}
	for _, c := range src.Children {
		if c.IsText() {
			dst.CreateText(c.Text)
			continue
		}
		toEtree(dst.CreateElement(c.Name), c)
	}
}
