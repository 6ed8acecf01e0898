package container

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/tsawler/wordtree/docx"
	"github.com/tsawler/wordtree/model"
	"github.com/tsawler/wordtree/xmlnode"
)

type entry struct{ name, body string }

func buildZip(t *testing.T, entries ...entry) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)
	for _, e := range entries {
		f, err := w.Create(e.name)
		require.NoError(t, err)
		_, err = f.Write([]byte(e.body))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

const (
	contentTypes = `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`
	rootRels     = `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`
	documentXML = `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
<w:body>
  <w:p><w:hyperlink r:id="rId1"><w:r><w:t>link</w:t></w:r></w:hyperlink></w:p>
  <w:sectPr><w:headerReference w:type="default" r:id="rId2"/></w:sectPr>
</w:body>
</w:document>`
	documentRels = `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink" Target="https://example.com" TargetMode="External"/>
  <Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/header" Target="header1.xml"/>
  <Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="/word/styles.xml"/>
</Relationships>`
	headerXML  = `<w:hdr xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"><w:p><w:hyperlink r:id="rIdL"><w:r><w:t>Header</w:t></w:r></w:hyperlink></w:p></w:hdr>`
	headerRels = `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rIdL" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink" Target="https://header.example" TargetMode="External"/>
</Relationships>`
	stylesXML = `<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/></w:style></w:styles>`
	mediaData = "\x89PNG fake image bytes"
)

func samplePackage(t *testing.T) []byte {
	return buildZip(t,
		entry{contentTypesPath, contentTypes},
		entry{rootRelsPath, rootRels},
		entry{"word/document.xml", documentXML},
		entry{"word/_rels/document.xml.rels", documentRels},
		entry{"word/header1.xml", headerXML},
		entry{"word/_rels/header1.xml.rels", headerRels},
		entry{"word/styles.xml", stylesXML},
		entry{"word/media/image1.png", mediaData},
	)
}

func TestRead_Errors(t *testing.T) {
	_, err := ReadBytes([]byte("not a zip file"))
	assert.Error(t, err)

	_, err = ReadBytes(buildZip(t, entry{"word/document.xml", documentXML}))
	assert.True(t, errors.Is(err, ErrMissingPart))

	_, err = ReadBytes(buildZip(t, entry{contentTypesPath, contentTypes}))
	assert.True(t, errors.Is(err, ErrMissingPart))
}

func TestRead_PartsAndRelationships(t *testing.T) {
	pkg, err := ReadBytes(samplePackage(t), WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)

	assert.Equal(t, "word/document.xml", pkg.MainPart)
	assert.Len(t, pkg.Names(), 8)
	data, ok := pkg.Data("word/media/image1.png")
	require.True(t, ok)
	assert.Equal(t, mediaData, string(data))
	assert.Nil(t, pkg.Part("word/media/image1.png"))

	parts := pkg.Parts()
	assert.Len(t, parts, 2)
	assert.Equal(t, "w:document", parts[docx.PartDocument].Name)
	assert.Equal(t, "w:styles", parts[docx.PartStyles].Name)

	rels := pkg.Relationships()
	assert.Equal(t, 3, rels.Len())
	target, external, ok := rels.Target("rId1")
	assert.True(t, ok)
	assert.True(t, external)
	assert.Equal(t, "https://example.com", target)

	target, external, ok = rels.Target("rId3")
	assert.True(t, ok)
	assert.False(t, external)
	assert.Equal(t, "word/styles.xml", target)

	path, root, ok := rels.Part("rId2")
	require.True(t, ok)
	assert.Equal(t, "word/header1.xml", path)
	assert.Equal(t, "w:hdr", root.Name)

	_, _, ok = rels.Part("rId1")
	assert.False(t, ok, "external targets are not parts")
	_, _, ok = rels.Target("rId9")
	assert.False(t, ok)

	target, _, ok = rels.ForPart("word/header1.xml").Target("rIdL")
	assert.True(t, ok)
	assert.Equal(t, "https://header.example", target)
}

func TestPackage_Convert(t *testing.T) {
	pkg, err := ReadBytes(samplePackage(t))
	require.NoError(t, err)

	res, err := pkg.Convert(docx.WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)

	assert.Equal(t, "link", res.Document.TextContent())
	links := res.Document.FindAll(model.KindHyperlink)
	require.Len(t, links, 1)
	assert.Equal(t, "https://example.com", links[0].Attrs.String("href"))

	hdr := res.Headers["rId2"]
	require.NotNil(t, hdr)
	links = hdr.FindAll(model.KindHyperlink)
	require.Len(t, links, 1)
	assert.Equal(t, "https://header.example", links[0].Attrs.String("href"))
	assert.Empty(t, res.Diagnostics)
}

func TestWrite_RoundTrip(t *testing.T) {
	pkg, err := ReadBytes(samplePackage(t))
	require.NoError(t, err)
	res, err := pkg.Convert()
	require.NoError(t, err)

	replaced, err := pkg.ExportResult(res)
	require.NoError(t, err)
	assert.Contains(t, replaced, "word/document.xml")
	assert.Contains(t, replaced, "word/header1.xml")
	assert.NotContains(t, replaced, "word/comments.xml", "absent parts are not created")

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, pkg, replaced))

	again, err := ReadBytes(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, pkg.Names(), again.Names())
	data, _ := again.Data("word/media/image1.png")
	assert.Equal(t, mediaData, string(data))

	res2, err := again.Convert()
	require.NoError(t, err)
	assert.Equal(t, res.Document.TextContent(), res2.Document.TextContent())
	assert.Equal(t, "Header", res2.Headers["rId2"].TextContent())
}

func TestWrite_AppendsNewParts(t *testing.T) {
	pkg, err := ReadBytes(samplePackage(t))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, pkg, map[string]*xmlnode.Element{
		"word/extra.xml": pkg.Part("word/styles.xml"),
	}))

	again, err := ReadBytes(buf.Bytes())
	require.NoError(t, err)
	names := again.Names()
	assert.Equal(t, "word/extra.xml", names[len(names)-1])
	assert.Equal(t, "w:styles", again.Part("word/extra.xml").Name)
}

func TestTargetResolution(t *testing.T) {
	assert.Equal(t, "word/header1.xml", resolveTarget("word/document.xml", "header1.xml"))
	assert.Equal(t, "word/media/a.png", resolveTarget("word/document.xml", "media/a.png"))
	assert.Equal(t, "customXml/item1.xml", resolveTarget("word/document.xml", "../customXml/item1.xml"))
	assert.Equal(t, "word/styles.xml", resolveTarget("word/document.xml", "/word/styles.xml"))
	assert.Equal(t, "word/document.xml", resolveTarget("", "word/document.xml"))

	assert.Equal(t, "_rels/.rels", relsPath(""))
	assert.Equal(t, "word/_rels/document.xml.rels", relsPath("word/document.xml"))
}
