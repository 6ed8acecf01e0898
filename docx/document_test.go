package docx

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/tsawler/wordtree/model"
	"github.com/tsawler/wordtree/xmlnode"
)

const documentFixture = `<w:document xmlns:w="urn:w" xmlns:r="urn:r">
<w:body>
  <w:p>
    <w:commentRangeStart w:id="0"/>
    <w:r><w:t>abc</w:t></w:r>
    <w:commentRangeEnd w:id="0"/>
    <w:r><w:commentReference w:id="0"/></w:r>
    <w:r><w:footnoteReference w:id="1"/></w:r>
  </w:p>
  <w:sectPr>
    <w:headerReference w:type="default" r:id="rIdH"/>
    <w:footerReference w:type="default" r:id="rIdMissing"/>
    <w:pgSz w:w="12240" w:h="15840"/>
    <w:pgMar w:top="1440" w:right="1440" w:bottom="1440" w:left="1440" w:header="720" w:footer="720" w:gutter="0"/>
    <w:cols w:space="720"/>
  </w:sectPr>
</w:body>
</w:document>`

const commentsFixture = `<w:comments>
  <w:comment w:id="0" w:author="Ann" w:initials="A" w:date="2024-05-01T10:00:00Z">
    <w:p w14:paraId="AAAA0001"><w:r><w:t>first</w:t></w:r></w:p>
  </w:comment>
  <w:comment w:id="1" w:author="Bob" w:date="2024-05-01T11:00:00Z">
    <w:p><w:r><w:t>reply</w:t></w:r></w:p>
  </w:comment>
</w:comments>`

const footnotesFixture = `<w:footnotes>
  <w:footnote w:type="separator" w:id="-1"><w:p><w:r><w:separator/></w:r></w:p></w:footnote>
  <w:footnote w:id="1"><w:p><w:r><w:t>note</w:t></w:r></w:p></w:footnote>
</w:footnotes>`

const headerFixture = `<w:hdr><w:p><w:hyperlink r:id="rIdL"><w:r><w:t>Header text</w:t></w:r></w:hyperlink></w:p></w:hdr>`

func convertFixture(t *testing.T) *Result {
	t.Helper()
	parts := map[string]*xmlnode.Element{
		PartDocument:  xmlnode.MustParse(documentFixture),
		PartComments:  xmlnode.MustParse(commentsFixture),
		PartFootnotes: xmlnode.MustParse(footnotesFixture),
	}
	rels := &fakeRels{
		parts: map[string]*xmlnode.Element{"rIdH": xmlnode.MustParse(headerFixture)},
		paths: map[string]string{"rIdH": "word/header1.xml"},
		scoped: map[string]*fakeRels{
			"word/header1.xml": {targets: map[string]string{"rIdL": "https://header.example"}},
		},
	}
	res, err := Convert(parts, rels, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	return res
}

func TestConvert_NoBody(t *testing.T) {
	_, err := Convert(nil, nil)
	assert.True(t, errors.Is(err, ErrNoBody))

	_, err = Convert(map[string]*xmlnode.Element{PartDocument: xmlnode.MustParse(`<w:document/>`)}, nil)
	assert.True(t, errors.Is(err, ErrNoBody))
}

func TestConvert_Document(t *testing.T) {
	res := convertFixture(t)

	doc := res.Document
	require.Equal(t, model.KindDocument, doc.Kind)
	require.Len(t, doc.Content, 1)
	assert.NotNil(t, doc.Attrs.Raw("sectionProperties"))
	assert.Equal(t, "abc", doc.TextContent())
	assert.Len(t, doc.FindAll(model.KindFootnoteReference), 1)
	assert.Len(t, doc.FindAll(model.KindCommentReference), 1)
}

func TestConvert_ConcurrentCallsShareInputs(t *testing.T) {
	parts := map[string]*xmlnode.Element{
		PartDocument:  xmlnode.MustParse(documentFixture),
		PartComments:  xmlnode.MustParse(commentsFixture),
		PartFootnotes: xmlnode.MustParse(footnotesFixture),
	}
	before := parts[PartDocument].Clone()

	const workers = 8
	results := make([]*Result, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = Convert(parts, &fakeRels{})
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "abc", results[i].Document.TextContent())
		assert.Len(t, results[i].Comments, 2)
		assert.Len(t, results[i].Footnotes, 1)
	}
	assert.True(t, before.Equal(parts[PartDocument]), "inputs are not modified")
}

func TestConvert_PageStyle(t *testing.T) {
	ps := convertFixture(t).PageStyle

	require.NotNil(t, ps.PageSize)
	assert.Equal(t, 8.5, ps.PageSize.Width)
	assert.Equal(t, 11.0, ps.PageSize.Height)
	assert.Equal(t, "portrait", ps.Orientation)
	require.NotNil(t, ps.Margins)
	assert.Equal(t, 1.0, ps.Margins.Top)
	assert.Equal(t, 0.5, ps.Margins.Header)
	require.NotNil(t, ps.Columns)
	assert.Equal(t, 1, ps.Columns.Count)
	assert.Equal(t, 0.5, ps.Columns.Space)
	assert.True(t, ps.Columns.EqualWidth)
	assert.Nil(t, ps.DocGrid)
}

func TestConvert_HeadersUsePartRelationships(t *testing.T) {
	res := convertFixture(t)

	require.Len(t, res.Headers, 1)
	hdr := res.Headers["rIdH"]
	require.NotNil(t, hdr)
	assert.Equal(t, model.KindHeader, hdr.Kind)
	assert.Equal(t, "word/header1.xml", hdr.Attrs.String("path"))
	assert.Equal(t, "default", hdr.Attrs.String("type"))
	assert.Equal(t, "Header text", hdr.TextContent())

	links := hdr.FindAll(model.KindHyperlink)
	require.Len(t, links, 1)
	assert.Equal(t, "https://header.example", links[0].Attrs.String("href"))

	assert.Empty(t, res.Footers)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, MalformedReference, res.Diagnostics[0].Kind)
	assert.Equal(t, "w:footerReference", res.Diagnostics[0].Tag)
}

func TestConvert_CommentsAndNotes(t *testing.T) {
	res := convertFixture(t)

	require.Len(t, res.Comments, 2)
	first, reply := res.Comments[0], res.Comments[1]
	assert.Equal(t, "Ann", first.Author)
	assert.Equal(t, 0, first.RangeStart)
	assert.Equal(t, 3, first.RangeEnd)
	assert.Equal(t, []string{"AAAA0001"}, first.ParaIDs)
	assert.NotEmpty(t, first.InternalID)
	assert.Equal(t, "first", first.Content[0].TextContent())

	assert.False(t, reply.HasRange())
	assert.Equal(t, "0", reply.ParentID)
	assert.Equal(t, ThreadMissingRange, reply.ThreadSource)

	require.Len(t, res.Footnotes, 1)
	assert.Equal(t, "1", res.Footnotes[0].ID)
	assert.Equal(t, "note", res.Footnotes[0].Content[0].TextContent())
	assert.Empty(t, res.Endnotes)
}

func TestExport_DocumentKeepsSectionAndNamespaces(t *testing.T) {
	res := convertFixture(t)

	root, err := Export(res.Document)
	require.NoError(t, err)

	assert.Equal(t, "urn:w", root.AttrOr("xmlns:w", ""))
	kids := root.Child("w:body").ElementChildren()
	require.Len(t, kids, 2)
	assert.Equal(t, "w:p", kids[0].Name)
	assert.Equal(t, "w:sectPr", kids[1].Name)

	hdr, err := NewExporter(res.Styles).Part(res.Headers["rIdH"])
	require.NoError(t, err)
	assert.Equal(t, "w:hdr", hdr.Name)
	assert.NotNil(t, hdr.Child("w:p").Child("w:hyperlink"))

	_, err = Export(model.NewNode(model.KindParagraph, nil))
	assert.Error(t, err)
}

func TestExportComments_ThreadsThroughParaIDs(t *testing.T) {
	res := convertFixture(t)

	comments, ext, err := NewExporter(nil).ExportComments(res.Comments)
	require.NoError(t, err)

	cs := comments.ChildrenNamed("w:comment")
	require.Len(t, cs, 2)
	assert.Equal(t, "Ann", cs[0].AttrOr("w:author", ""))
	assert.Equal(t, "AAAA0001", cs[0].Child("w:p").AttrOr("w14:paraId", ""))

	exs := ext.ChildrenNamed("w15:commentEx")
	require.Len(t, exs, 2)
	assert.Equal(t, "AAAA0001", exs[0].AttrOr("w15:paraId", ""))
	assert.Equal(t, "10000001", exs[1].AttrOr("w15:paraId", ""))
	assert.Equal(t, "AAAA0001", exs[1].AttrOr("w15:paraIdParent", ""))
	assert.Equal(t, "0", exs[1].AttrOr("w15:done", ""))
}

func TestExportNotes_RegeneratesSeparators(t *testing.T) {
	res := convertFixture(t)

	root, err := NewExporter(nil).ExportNotes(res.Footnotes, false)
	require.NoError(t, err)

	notes := root.ChildrenNamed("w:footnote")
	require.Len(t, notes, 3)
	assert.Equal(t, "separator", notes[0].AttrOr("w:type", ""))
	assert.Equal(t, "continuationSeparator", notes[1].AttrOr("w:type", ""))
	assert.Equal(t, "1", notes[2].AttrOr("w:id", ""))

	end, err := NewExporter(nil).ExportNotes(nil, true)
	require.NoError(t, err)
	assert.Equal(t, "w:endnotes", end.Name)
	assert.Len(t, end.ChildrenNamed("w:endnote"), 2)
}
