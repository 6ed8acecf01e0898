package docx

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/wordtree/model"
)

const tocBody = `<w:body>
<w:p>
  <w:r><w:fldChar w:fldCharType="begin"/></w:r>
  <w:r><w:instrText xml:space="preserve"> TOC \o "1-3" \h \z \u </w:instrText></w:r>
  <w:r><w:fldChar w:fldCharType="separate"/></w:r>
</w:p>
<w:p>
  <w:pPr><w:pStyle w:val="TOC1"/></w:pPr>
  <w:hyperlink w:anchor="A" w:history="1">
    <w:r><w:t>Introduction</w:t></w:r>
    <w:r><w:tab/></w:r>
    <w:r><w:fldChar w:fldCharType="begin"/></w:r>
    <w:r><w:instrText xml:space="preserve"> PAGEREF A \h </w:instrText></w:r>
    <w:r><w:fldChar w:fldCharType="separate"/></w:r>
    <w:r><w:t>5</w:t></w:r>
    <w:r><w:fldChar w:fldCharType="end"/></w:r>
  </w:hyperlink>
</w:p>
<w:p>
  <w:r><w:fldChar w:fldCharType="end"/></w:r>
</w:p>
<w:p><w:r><w:t>After</w:t></w:r></w:p>
</w:body>`

func TestTOC_CollectsEntries(t *testing.T) {
	c := testContext(t, stylesFixture)
	elems := children(tocBody)

	res := c.EncodeNodes(elems)

	assert.Equal(t, len(elems), res.Processed)
	require.Len(t, res.Nodes, 2)
	wrapper := res.Nodes[0]
	require.Equal(t, model.KindTocWrapper, wrapper.Kind)
	assert.Equal(t, `TOC \o "1-3" \h \z \u`, wrapper.Attrs.String("instruction"))
	assert.Equal(t, model.KindParagraph, res.Nodes[1].Kind)

	require.Len(t, wrapper.Content, 1)
	entry := wrapper.Content[0]
	assert.Equal(t, model.KindTocEntry, entry.Kind)
	assert.Equal(t, "5", entry.Attrs.String("pageNumber"))
	assert.Equal(t, "A", entry.Attrs.String("anchor"))
	assert.True(t, entry.Attrs.Bool("hyperlink"))
	assert.Equal(t, 1, entry.Attrs["level"])
	assert.Equal(t, "TOC1", entry.Attrs.String("styleId"))
	assert.Equal(t, "Introduction\t5", entry.TextContent())

	require.Len(t, entry.Content, 3)
	assert.True(t, entry.Content[1].Attrs.Bool("tocSeparator"))
	link, ok := model.FindMark(entry.Content[0].Content[0].Marks, model.MarkLink)
	require.True(t, ok)
	assert.Equal(t, "A", link.Attrs.String("anchor"))

	assert.Empty(t, c.Diagnostics())
}

func TestTOC_OrdinaryFieldIsNotTOC(t *testing.T) {
	c := testContext(t, "")
	res := c.EncodeNodes(children(`<w:body><w:p>
		<w:r><w:fldChar w:fldCharType="begin"/></w:r>
		<w:r><w:instrText> PAGE </w:instrText></w:r>
		<w:r><w:fldChar w:fldCharType="separate"/></w:r>
		<w:r><w:t>3</w:t></w:r>
		<w:r><w:fldChar w:fldCharType="end"/></w:r>
	</w:p></w:body>`))

	require.Len(t, res.Nodes, 1)
	assert.Equal(t, model.KindParagraph, res.Nodes[0].Kind)
	assert.Len(t, res.Nodes[0].FindAll(model.KindFieldChar), 3)
}

func TestTOC_UnclosedWrapperIsReported(t *testing.T) {
	c := testContext(t, "")
	body := strings.Replace(tocBody, `<w:p>
  <w:r><w:fldChar w:fldCharType="end"/></w:r>
</w:p>`, "", 1)
	elems := children(body)

	res := c.EncodeNodes(elems)

	assert.Equal(t, len(elems), res.Processed)
	require.Len(t, res.Nodes, 1)
	assert.Equal(t, model.KindTocWrapper, res.Nodes[0].Kind)
	diags := c.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, StructuralInconsistency, diags[0].Kind)
}

func TestTOC_DecodeWritesFieldParagraphs(t *testing.T) {
	c := testContext(t, stylesFixture)
	nodes := c.encode(children(tocBody))

	out, err := NewExporter(c.Styles()).DecodeNode(nodes[0])
	require.NoError(t, err)
	require.Len(t, out, 3)

	open := out[0].ChildrenNamed("w:r")
	require.Len(t, open, 3)
	assert.Equal(t, "begin", open[0].Child("w:fldChar").AttrOr("w:fldCharType", ""))
	assert.Contains(t, open[1].Child("w:instrText").TextContent(), `TOC \o "1-3"`)

	entry := out[1]
	assert.Equal(t, "TOC1", entry.Child("w:pPr").Child("w:pStyle").AttrOr("w:val", ""))
	link := entry.Child("w:hyperlink")
	require.NotNil(t, link)
	assert.Equal(t, "A", link.AttrOr("w:anchor", ""))
	assert.Nil(t, link.Child("w:hyperlink"), "entry runs are not wrapped twice")

	var instr string
	for _, r := range link.ChildrenNamed("w:r") {
		if it := r.Child("w:instrText"); it != nil {
			instr = it.TextContent()
		}
	}
	assert.Equal(t, ` PAGEREF A \h `, instr)

	closing := out[2].ChildrenNamed("w:r")
	require.Len(t, closing, 1)
	assert.Equal(t, "end", closing[0].Child("w:fldChar").AttrOr("w:fldCharType", ""))
}

func TestFieldArgument(t *testing.T) {
	assert.Equal(t, "_Toc123", fieldArgument(`PAGEREF _Toc123 \h`))
	assert.Equal(t, "", fieldArgument(`TOC \o "1-3" \h`))
	assert.Equal(t, "http://x", fieldArgument(`HYPERLINK "http://x"`))
	assert.Equal(t, "A", hyperlinkFieldAnchor(`HYPERLINK \l "A"`))
	assert.True(t, hasFieldSwitch(`PAGEREF x \H`, `\h`))
}
