package docx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/wordtree/model"
	"github.com/tsawler/wordtree/xmlnode"
)

const fourColumnGrid = `<w:tblGrid><w:gridCol w:w="1440"/><w:gridCol w:w="1440"/><w:gridCol w:w="1440"/><w:gridCol w:w="1440"/></w:tblGrid>`

func encodeTable(t *testing.T, c *Context, xml string) *model.Node {
	t.Helper()
	nodes := c.encode([]*xmlnode.Element{xmlnode.MustParse(xml)})
	require.Len(t, nodes, 1)
	require.Equal(t, model.KindTable, nodes[0].Kind)
	return nodes[0]
}

func cellAttr(cells []*model.Node, key string) []int {
	var out []int
	for _, c := range cells {
		v, _ := c.Attrs.Int(key)
		out = append(out, v)
	}
	return out
}

func TestTable_ColumnIndexesFollowSpans(t *testing.T) {
	c := testContext(t, "")
	tbl := encodeTable(t, c, `<w:tbl>
		<w:tblPr><w:tblBorders><w:insideH w:val="single" w:sz="8" w:color="ff0000"/></w:tblBorders></w:tblPr>
		`+fourColumnGrid+`
		<w:tr>
			<w:tc><w:p/></w:tc>
			<w:tc><w:tcPr><w:gridSpan w:val="2"/></w:tcPr><w:p/></w:tc>
			<w:tc><w:p/></w:tc>
		</w:tr>
	</w:tbl>`)

	require.Len(t, tbl.Content, 1)
	row := tbl.Content[0]
	require.Len(t, row.Content, 3)
	assert.Equal(t, []int{0, 1, 3}, cellAttr(row.Content, "colIndex"))
	assert.Equal(t, []int{1, 2, 1}, cellAttr(row.Content, "colspan"))
	assert.Equal(t, []float64{96, 96}, row.Content[1].Attrs["colwidth"])
	assert.Equal(t, []float64{96, 96, 96, 96}, tbl.Attrs["grid"])

	bottom := row.Attrs.Map("borders").Map("bottom")
	require.NotNil(t, bottom)
	assert.Equal(t, "single", bottom.String("val"))
	assert.Equal(t, "#FF0000", bottom.String("color"))
}

func TestTable_GridBeforeShiftsCursor(t *testing.T) {
	c := testContext(t, "")
	tbl := encodeTable(t, c, `<w:tbl>`+fourColumnGrid+`
		<w:tr><w:trPr><w:gridBefore w:val="1"/><w:trHeight w:val="720" w:hRule="exact"/></w:trPr>
			<w:tc><w:p/></w:tc><w:tc><w:p/></w:tc>
		</w:tr>
	</w:tbl>`)

	row := tbl.Content[0]
	assert.Equal(t, []int{1, 2}, cellAttr(row.Content, "colIndex"))
	h, ok := row.Attrs.Float("rowHeight")
	require.True(t, ok)
	assert.Equal(t, 48.0, h)
	assert.Equal(t, "exact", row.Attrs.String("heightRule"))
}

func TestTable_VerticalMergeSetsRowspan(t *testing.T) {
	c := testContext(t, "")
	tbl := encodeTable(t, c, `<w:tbl>`+fourColumnGrid+`
		<w:tr><w:tc><w:tcPr><w:vMerge w:val="restart"/></w:tcPr><w:p/></w:tc><w:tc><w:p/></w:tc></w:tr>
		<w:tr><w:tc><w:tcPr><w:vMerge/></w:tcPr><w:p/></w:tc><w:tc><w:p/></w:tc></w:tr>
		<w:tr><w:tc><w:tcPr><w:vMerge w:val="continue"/></w:tcPr><w:p/></w:tc><w:tc><w:p/></w:tc></w:tr>
		<w:tr><w:tc><w:p/></w:tc><w:tc><w:p/></w:tc></w:tr>
	</w:tbl>`)

	require.Len(t, tbl.Content, 4)
	origin := tbl.Content[0].Content[0]
	rs, _ := origin.Attrs.Int("rowspan")
	assert.Equal(t, 3, rs)
	assert.True(t, tbl.Content[1].Content[0].Attrs.Bool("continueMerge"))
	assert.True(t, tbl.Content[2].Content[0].Attrs.Bool("continueMerge"))
	rs, _ = tbl.Content[3].Content[0].Attrs.Int("rowspan")
	assert.Equal(t, 1, rs)
}

func TestTable_StyleInheritance(t *testing.T) {
	c := testContext(t, stylesFixture)
	tbl := encodeTable(t, c, `<w:tbl>
		<w:tblPr><w:tblStyle w:val="Grid"/><w:tblBorders><w:bottom w:val="double"/></w:tblBorders></w:tblPr>
		`+fourColumnGrid+`
		<w:tr><w:tc><w:p/></w:tc></w:tr>
	</w:tbl>`)

	borders := tbl.Attrs.Map("borders")
	require.NotNil(t, borders)
	assert.Equal(t, "single", borders.Map("top").String("val"), "from the style")
	assert.Equal(t, "double", borders.Map("bottom").String("val"), "inline")
	assert.Empty(t, c.Diagnostics())

	// Decoding writes only the inline edge.
	x := NewExporter(c.Styles())
	out, err := x.DecodeNode(tbl)
	require.NoError(t, err)
	tblBorders := out[0].Child("w:tblPr").Child("w:tblBorders")
	require.NotNil(t, tblBorders)
	assert.Nil(t, tblBorders.Child("w:top"))
	assert.NotNil(t, tblBorders.Child("w:bottom"))
}

func TestTable_MissingStyleIsReported(t *testing.T) {
	c := testContext(t, stylesFixture)
	encodeTable(t, c, `<w:tbl><w:tblPr><w:tblStyle w:val="Nope"/></w:tblPr><w:tr><w:tc><w:p/></w:tc></w:tr></w:tbl>`)

	diags := c.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, MalformedReference, diags[0].Kind)
}

func TestTable_DecodeRoundTrip(t *testing.T) {
	src := xmlnode.MustParse(`<w:tbl><w:tblPr><w:tblW w:w="5000" w:type="pct"/></w:tblPr>` + fourColumnGrid +
		`<w:tr><w:tc><w:tcPr><w:gridSpan w:val="2"/></w:tcPr><w:p/></w:tc><w:tc><w:p/></w:tc><w:tc><w:p/></w:tc></w:tr></w:tbl>`)
	c := testContext(t, "")
	tbl := c.encode([]*xmlnode.Element{src})[0]
	assert.Equal(t, 100.0, tbl.Attrs.Map("tableWidth")["width"])

	out, err := NewExporter(nil).DecodeNode(tbl)
	require.NoError(t, err)
	assert.True(t, src.Equal(out[0]), "decoded table differs from source")
}

func TestTableCell_DecodeRegeneratesMergeAndParagraph(t *testing.T) {
	cell := model.NewNode(model.KindTableCell, model.Attrs{"colspan": 2, "rowspan": 3, "background": "#FFFF00"})

	out, err := NewExporter(nil).DecodeNode(cell)
	require.NoError(t, err)
	require.Len(t, out, 1)

	tcPr := out[0].Child("w:tcPr")
	require.NotNil(t, tcPr)
	assert.Equal(t, "2", tcPr.Child("w:gridSpan").AttrOr("w:val", ""))
	assert.Equal(t, "restart", tcPr.Child("w:vMerge").AttrOr("w:val", ""))
	assert.Equal(t, "FFFF00", tcPr.Child("w:shd").AttrOr("w:fill", ""))

	kids := out[0].ElementChildren()
	assert.Equal(t, "w:p", kids[len(kids)-1].Name)

	cont := model.NewNode(model.KindTableCell, model.Attrs{"continueMerge": true})
	out, err = NewExporter(nil).DecodeNode(cont)
	require.NoError(t, err)
	vm := out[0].Child("w:tcPr").Child("w:vMerge")
	require.NotNil(t, vm)
	_, hasVal := vm.Attr("w:val")
	assert.False(t, hasVal)
}

func TestTable_BuiltinCellMargins(t *testing.T) {
	c := testContext(t, "")
	tbl := encodeTable(t, c, `<w:tbl><w:tblPr><w:tblCellMar><w:left w:w="216" w:type="dxa"/></w:tblCellMar></w:tblPr>`+
		fourColumnGrid+`<w:tr><w:tc><w:p/></w:tc></w:tr></w:tbl>`)

	margins := tbl.Attrs.Map("cellMargins")
	require.NotNil(t, margins)
	assert.Equal(t, 14.4, margins["left"], "inline")
	assert.Equal(t, 7.2, margins["right"], "built-in")
	assert.Equal(t, 0.0, margins["top"], "built-in")

	// Only the inline side is written back.
	out, err := NewExporter(nil).DecodeNode(tbl)
	require.NoError(t, err)
	cellMar := out[0].Child("w:tblPr").Child("w:tblCellMar")
	require.NotNil(t, cellMar)
	assert.Equal(t, "216", cellMar.Child("w:left").AttrOr("w:w", ""))
	assert.Nil(t, cellMar.Child("w:right"))
	assert.Nil(t, cellMar.Child("w:top"))
}
