package docx

import (
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/tsawler/wordtree/xmlnode"
)

const stylesFixture = `<w:styles>
  <w:docDefaults>
    <w:rPrDefault><w:rPr><w:sz w:val="22"/></w:rPr></w:rPrDefault>
  </w:docDefaults>
  <w:style w:type="paragraph" w:default="1" w:styleId="Normal">
    <w:name w:val="Normal"/>
    <w:rPr><w:color w:val="00FF00"/></w:rPr>
  </w:style>
  <w:style w:type="paragraph" w:styleId="Heading1">
    <w:name w:val="heading 1"/>
    <w:basedOn w:val="Normal"/>
    <w:rPr><w:b/></w:rPr>
  </w:style>
  <w:style w:type="character" w:styleId="Emph">
    <w:name w:val="Emph"/>
    <w:rPr><w:color w:val="FF0000"/><w:i/></w:rPr>
  </w:style>
  <w:style w:type="table" w:styleId="Grid">
    <w:name w:val="Table Grid"/>
    <w:tblPr>
      <w:tblBorders><w:top w:val="single" w:sz="4" w:color="000000"/></w:tblBorders>
    </w:tblPr>
  </w:style>
  <w:style w:type="paragraph" w:styleId="TOC1">
    <w:name w:val="toc 1"/>
  </w:style>
</w:styles>`

// children parses a fragment and returns the element children of its root.
func children(s string) []*xmlnode.Element {
	return xmlnode.MustParse(s).ElementChildren()
}

func testContext(t *testing.T, stylesXML string, opts ...Option) *Context {
	t.Helper()
	var styles *StyleTable
	if stylesXML != "" {
		styles = NewStyleTable(xmlnode.MustParse(stylesXML))
	}
	opts = append([]Option{WithLogger(zaptest.NewLogger(t))}, opts...)
	return NewContext(styles, nil, nil, opts...)
}

// fakeRels resolves relationship ids from fixed maps.
type fakeRels struct {
	targets map[string]string
	parts   map[string]*xmlnode.Element
	paths   map[string]string
	scoped  map[string]*fakeRels
}

func (r *fakeRels) Target(id string) (string, bool, bool) {
	t, ok := r.targets[id]
	return t, true, ok
}

func (r *fakeRels) Part(id string) (string, *xmlnode.Element, bool) {
	root, ok := r.parts[id]
	return r.paths[id], root, ok
}

func (r *fakeRels) ForPart(path string) PartResolver {
	if s, ok := r.scoped[path]; ok {
		return s
	}
	return noRels{}
}
