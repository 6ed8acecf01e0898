package cli

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/wordtree/container"
)

const (
	testContentTypes = `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`
	testDocument     = `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
  <w:p><w:r><w:t>Hello world</w:t></w:r></w:p>
  <w:p><w:r><w:t>Second</w:t></w:r><w:r><w:commentReference w:id="7"/></w:r></w:p>
</w:body>
</w:document>`
)

// writeDocx creates a minimal package and returns its path.
func writeDocx(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, body := range map[string]string{
		"[Content_Types].xml": testContentTypes,
		"word/document.xml":   testDocument,
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand("test", "abc", "today")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestText(t *testing.T) {
	out, err := run(t, "text", writeDocx(t))
	require.NoError(t, err)
	assert.Equal(t, "Hello world\nSecond\n", out)
}

func TestJSON(t *testing.T) {
	out, err := run(t, "json", "--compact", writeDocx(t))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	doc := decoded["document"].(map[string]any)
	assert.Equal(t, "document", doc["type"])
	assert.Equal(t, 1, strings.Count(strings.TrimSpace(out), "\n")+1)
}

func TestHTML_ToFile(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.html")
	out, err := run(t, "html", "--fragment", "-o", dst, writeDocx(t))
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "<p>Hello world</p><p>Second</p>", string(data))
}

func TestInspect(t *testing.T) {
	path := writeDocx(t)

	out, err := run(t, "inspect", path)
	require.NoError(t, err)
	assert.Contains(t, out, "word/document.xml")
	assert.Contains(t, out, "Blocks")
	assert.Contains(t, out, "Nodes: paragraph")
	assert.Contains(t, out, "No diagnostics.")
}

func TestInspect_Strict(t *testing.T) {
	out, err := run(t, "inspect", "--strict", writeDocx(t))
	require.NoError(t, err, out)
}

func TestRoundTrip(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.docx")
	out, err := run(t, "roundtrip", writeDocx(t), dst)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+dst)

	pkg, err := container.Open(dst)
	require.NoError(t, err)
	res, err := pkg.Convert()
	require.NoError(t, err)
	assert.Equal(t, "Hello worldSecond", res.Document.TextContent())
}

func TestErrors(t *testing.T) {
	_, err := run(t, "text")
	assert.Error(t, err)

	_, err = run(t, "text", filepath.Join(t.TempDir(), "missing.docx"))
	assert.Error(t, err)

	_, err = run(t, "text", "--config", filepath.Join(t.TempDir(), "missing.yaml"), writeDocx(t))
	assert.Error(t, err)

	assert.False(t, errors.Is(err, errDiagnostics))
}
