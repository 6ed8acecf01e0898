package container

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	coreXML = `<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/">
  <dc:title>Quarterly Report</dc:title>
  <dc:subject>Finance</dc:subject>
  <dc:creator>J. Doe</dc:creator>
  <cp:keywords>budget, q3 ,, forecast</cp:keywords>
  <cp:revision>4</cp:revision>
  <dcterms:created>2024-01-02T03:04:05Z</dcterms:created>
</cp:coreProperties>`
	appXML = `<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties">
  <Application>Microsoft Office Word</Application>
  <Pages>3</Pages>
  <Words>812</Words>
  <Company>Acme</Company>
</Properties>`
)

func TestMetadata(t *testing.T) {
	pkg, err := ReadBytes(buildZip(t,
		entry{contentTypesPath, contentTypes},
		entry{"word/document.xml", documentXML},
		entry{corePropsPath, coreXML},
		entry{appPropsPath, appXML},
	))
	require.NoError(t, err)

	meta := pkg.Metadata()
	assert.Equal(t, "Quarterly Report", meta.Title)
	assert.Equal(t, "Finance", meta.Subject)
	assert.Equal(t, "J. Doe", meta.Author)
	assert.Equal(t, []string{"budget", "q3", "forecast"}, meta.Keywords)
	assert.Equal(t, "4", meta.Revision)
	assert.Equal(t, "2024-01-02T03:04:05Z", meta.Created)
	assert.Equal(t, "Microsoft Office Word", meta.Application)
	assert.Equal(t, "Acme", meta.Company)
	assert.Equal(t, 3, meta.Pages)
	assert.Equal(t, 812, meta.Words)
}

func TestMetadata_Missing(t *testing.T) {
	pkg, err := ReadBytes(samplePackage(t))
	require.NoError(t, err)
	assert.Equal(t, Metadata{}, pkg.Metadata())
}
