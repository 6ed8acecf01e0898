package wordtree

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/tsawler/wordtree/container"
	"github.com/tsawler/wordtree/docx"
	"github.com/tsawler/wordtree/model"
)

const (
	testContentTypes = `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`
	testCore         = `<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:title>Field Notes</dc:title><dc:creator>A. Writer</dc:creator></cp:coreProperties>`
	testBody         = `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>%s</w:body></w:document>`
	simpleBody       = `<w:p><w:r><w:t>First</w:t></w:r></w:p><w:p><w:r><w:rPr><w:b/></w:rPr><w:t>Second</w:t></w:r></w:p>`
	unknownBody      = `<w:p><w:r><w:t>Kept</w:t></w:r></w:p><w:customThing w:a="1"/>`
)

// testDocx builds a package around body.
func testDocx(t *testing.T, body string) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	for _, e := range []struct{ name, data string }{
		{"[Content_Types].xml", testContentTypes},
		{"docProps/core.xml", testCore},
		{"word/document.xml", strings.Replace(testBody, "%s", body, 1)},
	} {
		w, err := zw.Create(e.name)
		require.NoError(t, err)
		_, err = w.Write([]byte(e.data))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestOpen(t *testing.T) {
	_, _, err := Open("nonexistent.docx").Text()
	assert.Error(t, err)

	_, _, err = (&Extractor{}).Text()
	assert.EqualError(t, err, "no filename specified")
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.docx")
	require.NoError(t, os.WriteFile(path, testDocx(t, simpleBody), 0o644))

	text, warnings, err := Open(path).Text()
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, "First\nSecond\n", text)
}

func TestFromBytes_Text(t *testing.T) {
	text := MustText(FromBytes(testDocx(t, simpleBody)).Text())
	assert.Equal(t, "First\nSecond\n", text)
}

func TestHTML(t *testing.T) {
	data := testDocx(t, simpleBody)

	html, _, err := FromBytes(data).Fragment().HTML()
	require.NoError(t, err)
	assert.Equal(t, "<p>First</p><p><strong>Second</strong></p>", html)

	page, _, err := FromBytes(data).HTML()
	require.NoError(t, err)
	assert.Contains(t, page, "<title>Field Notes</title>")

	page, _, err = FromBytes(data).Title("Override").HTML()
	require.NoError(t, err)
	assert.Contains(t, page, "<title>Override</title>")
}

func TestJSON(t *testing.T) {
	out, _, err := FromBytes(testDocx(t, simpleBody)).JSON()
	require.NoError(t, err)
	assert.NotContains(t, out, `"raw"`)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Contains(t, decoded, "document")

	out, _, err = FromBytes(testDocx(t, simpleBody)).KeepRaw().JSON()
	require.NoError(t, err)
	assert.Contains(t, out, `"raw"`)
}

func TestDocument(t *testing.T) {
	doc, _, err := FromBytes(testDocx(t, simpleBody)).Document()
	require.NoError(t, err)
	assert.Equal(t, model.KindDocument, doc.Kind)
	assert.Len(t, doc.FindAll(model.KindParagraph), 2)
	assert.Equal(t, "FirstSecond", doc.TextContent())
}

func TestDropUnknown(t *testing.T) {
	data := testDocx(t, unknownBody)

	doc, warnings, err := FromBytes(data).WithLogger(zaptest.NewLogger(t)).Document()
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Len(t, doc.FindAll(model.KindPassthrough), 1)

	doc, warnings, err = FromBytes(data).DropUnknown().Document()
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, docx.UnhandledElement, warnings[0].Kind)
	assert.Empty(t, doc.FindAll(model.KindPassthrough))
	assert.Contains(t, FormatWarnings(warnings), "w:customThing")

	doc, warnings, err = FromBytes(data).DropUnknown().Ignore("w:customThing").Document()
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Len(t, doc.Content, 1)
}

func TestChainImmutability(t *testing.T) {
	base := FromBytes(testDocx(t, simpleBody))
	withHeaders := base.IncludeHeaders().Ignore("w:a")
	withMore := withHeaders.Ignore("w:b")

	assert.False(t, base.options.includeHeaders)
	assert.True(t, withHeaders.options.includeHeaders)
	assert.Equal(t, []string{"w:a"}, withHeaders.options.ignored)
	assert.Equal(t, []string{"w:a", "w:b"}, withMore.options.ignored)
}

func TestExportConfig(t *testing.T) {
	opts := defaultOptions()
	cfg := opts.exportConfig(0)
	assert.True(t, cfg.IncludeNotes)
	assert.False(t, cfg.IncludeHeaders)

	opts.excludeNotes = true
	opts.includeComments = true
	cfg = opts.exportConfig(0)
	assert.False(t, cfg.IncludeNotes)
	assert.True(t, cfg.IncludeComments)
}

func TestMetadata(t *testing.T) {
	meta := Must(FromBytes(testDocx(t, simpleBody)).Metadata())
	assert.Equal(t, "Field Notes", meta.Title)
	assert.Equal(t, "A. Writer", meta.Author)
}

func TestMust(t *testing.T) {
	assert.Panics(t, func() { Must(Open("nonexistent.docx").Metadata()) })
	assert.Panics(t, func() { MustText(Open("nonexistent.docx").Text()) })
}

func TestRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	_, err := FromBytes(testDocx(t, simpleBody)).RoundTrip(&buf)
	require.NoError(t, err)

	pkg, err := container.ReadBytes(buf.Bytes())
	require.NoError(t, err)
	text := MustText(FromPackage(pkg).Text())
	assert.Equal(t, "First\nSecond\n", text)
	assert.Equal(t, "Field Notes", pkg.Metadata().Title)
}
