package export

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/wordtree/docx"
	"github.com/tsawler/wordtree/xmlnode"
)

const sampleDocument = `<w:document xmlns:w="urn:w">
<w:body>
  <w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Title</w:t></w:r></w:p>
  <w:p>
    <w:r><w:rPr><w:b/></w:rPr><w:t>Bold</w:t></w:r>
    <w:r><w:t xml:space="preserve"> plain </w:t></w:r>
    <w:r><w:rPr><w:i/><w:color w:val="FF0000"/></w:rPr><w:t>red</w:t></w:r>
  </w:p>
  <w:p><w:hyperlink w:anchor="x"><w:r><w:t>jump</w:t></w:r></w:hyperlink></w:p>
  <w:tbl>
    <w:tblGrid><w:gridCol w:w="1440"/><w:gridCol w:w="1440"/></w:tblGrid>
    <w:tr><w:tc><w:tcPr><w:gridSpan w:val="2"/></w:tcPr><w:p><w:r><w:t>A</w:t></w:r></w:p></w:tc></w:tr>
    <w:tr>
      <w:tc><w:p><w:r><w:t>B</w:t></w:r></w:p></w:tc>
      <w:tc><w:p><w:r><w:t>C</w:t></w:r></w:p></w:tc>
    </w:tr>
  </w:tbl>
  <w:p>
    <w:del w:id="1" w:author="Ann"><w:r><w:delText>gone</w:delText></w:r></w:del>
    <w:r><w:t>kept</w:t></w:r>
    <w:r><w:footnoteReference w:id="1"/></w:r>
  </w:p>
</w:body>
</w:document>`

const sampleStyles = `<w:styles>
  <w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/></w:style>
</w:styles>`

const sampleFootnotes = `<w:footnotes>
  <w:footnote w:id="1"><w:p><w:r><w:t>note</w:t></w:r></w:p></w:footnote>
</w:footnotes>`

func sampleResult(t *testing.T) *docx.Result {
	t.Helper()
	res, err := docx.Convert(map[string]*xmlnode.Element{
		docx.PartDocument:  xmlnode.MustParse(sampleDocument),
		docx.PartStyles:    xmlnode.MustParse(sampleStyles),
		docx.PartFootnotes: xmlnode.MustParse(sampleFootnotes),
	}, nil)
	require.NoError(t, err)
	return res
}

func TestFormat(t *testing.T) {
	for _, f := range []Format{FormatJSON, FormatHTML, FormatText} {
		parsed, err := ParseFormat(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, parsed)
	}
	f, err := ParseFormat(" TXT ")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)
	assert.Equal(t, ".html", FormatHTML.FileExtension())

	_, err = ParseFormat("pdf")
	assert.Error(t, err)
}

func TestExport_Nothing(t *testing.T) {
	_, err := NewExporter().ExportToString(nil)
	assert.Error(t, err)
}

func TestHTML_Document(t *testing.T) {
	out, err := NewExporterWithConfig(HTMLConfig()).ExportToString(sampleResult(t))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, `<meta charset="utf-8"/>`)
	assert.Contains(t, out, `>Title</h1>`)
	assert.Contains(t, out, `<strong>Bold</strong> plain <em><span style="color: #FF0000">red</span></em>`)
	assert.Contains(t, out, `<a href="#x">jump</a>`)
	assert.NotContains(t, out, `<a href="#x"><a`, "link marks inside a hyperlink are not nested")
	assert.Contains(t, out, `<td colspan="2"><p>A</p></td>`)
	assert.Contains(t, out, `<tr><td><p>B</p></td><td><p>C</p></td></tr>`)
	assert.Contains(t, out, `<del>gone</del>kept<sup><a href="#fn-1">1</a></sup>`)
	assert.Contains(t, out, `<section class="footnotes"><ol><li id="fn-1"><p>note</p></li></ol></section>`)
}

func TestHTML_Fragment(t *testing.T) {
	cfg := HTMLConfig()
	cfg.Fragment = true
	out, err := NewExporterWithConfig(cfg).ExportToString(sampleResult(t))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "<h1"))
	assert.NotContains(t, out, "<html")
	assert.NotContains(t, out, "footnotes")
}

func TestText(t *testing.T) {
	out, err := NewExporterWithConfig(TextConfig()).ExportToString(sampleResult(t))
	require.NoError(t, err)

	assert.Equal(t, "Title\nBold plain red\njump\nA\nB\tC\nkept\n[1] note\n", out)
}

func TestJSON_StripsRawFragments(t *testing.T) {
	res := sampleResult(t)

	out, err := NewExporter().ExportToString(res)
	require.NoError(t, err)
	assert.NotContains(t, out, `"raw"`)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	doc := decoded["document"].(map[string]any)
	assert.Equal(t, "document", doc["type"])
	assert.Len(t, doc["content"], 5)

	cfg := DefaultConfig()
	cfg.IncludeRaw = true
	cfg.PrettyPrint = false
	out, err = NewExporterWithConfig(cfg).ExportToString(res)
	require.NoError(t, err)
	assert.Contains(t, out, `"raw"`)
	assert.Equal(t, 1, strings.Count(strings.TrimSpace(out), "\n")+1, "compact output is one line")

	bold := res.Document.Content[1].Content[0].Content[0]
	require.NotEmpty(t, bold.Marks)
	assert.NotNil(t, bold.Marks[0].Attrs.Raw("raw"), "stripping works on a copy")
}
