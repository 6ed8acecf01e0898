package xmlnode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_PreservesOrderAndPrefixes(t *testing.T) {
	el, err := Parse([]byte(`<w:p xmlns:w="urn:w"><w:pPr><w:jc w:val="center"/></w:pPr><w:r><w:t xml:space="preserve"> hi </w:t></w:r><w:r><w:tab/></w:r></w:p>`))
	require.NoError(t, err)

	assert.Equal(t, "w:p", el.Name)
	assert.Equal(t, "p", el.Local())
	assert.Equal(t, "w", el.Prefix())
	require.Len(t, el.Children, 3)
	assert.Equal(t, "w:pPr", el.Children[0].Name)

	val, ok := el.Child("w:pPr").ChildVal("w:jc")
	assert.True(t, ok)
	assert.Equal(t, "center", val)

	text := el.ChildrenNamed("w:r")[0].Child("w:t")
	require.NotNil(t, text)
	assert.Equal(t, " hi ", text.TextContent())
	assert.Equal(t, "preserve", text.AttrOr("xml:space", ""))
}

func TestParse_DropsIndentationWhitespace(t *testing.T) {
	el := MustParse("<w:body>\n  <w:p/>\n  <w:p/>\n</w:body>")
	assert.Len(t, el.Children, 2)
	for _, c := range el.Children {
		assert.False(t, c.IsText())
	}
}

func TestParse_KeepsWhitespaceInText(t *testing.T) {
	el := MustParse(`<w:t> </w:t>`)
	assert.Equal(t, " ", el.TextContent())
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("<w:p>"))
	assert.Error(t, err)
}

func TestWithAttr_DoesNotMutate(t *testing.T) {
	orig := New("w:b", map[string]string{"w:val": "1"})
	changed := orig.WithAttr("w:val", "0")

	assert.Equal(t, "1", orig.AttrOr("w:val", ""))
	assert.Equal(t, "0", changed.AttrOr("w:val", ""))
}

func TestWithoutChildren(t *testing.T) {
	rpr := New("w:rPr", nil, New("w:b", nil), New("w:i", nil), New("w:lang", nil))
	out := rpr.WithoutChildren("w:b", "w:i")

	require.Len(t, out.Children, 1)
	assert.Equal(t, "w:lang", out.Children[0].Name)
	assert.Len(t, rpr.Children, 3)
}

func TestMarshal_RoundTrip(t *testing.T) {
	src := New("w:p", map[string]string{"w14:paraId": "1A"},
		New("w:r", nil, New("w:t", map[string]string{"xml:space": "preserve"}, NewText("a & b "))),
	)
	data, err := Marshal(src)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "<?xml"))
	assert.Contains(t, string(data), "a &amp; b ")

	back, err := Parse(data)
	require.NoError(t, err)
	assert.True(t, src.Equal(back))
}

func TestMarshal_SortsAttributes(t *testing.T) {
	el := New("w:pgSz", map[string]string{"w:w": "12240", "w:h": "15840", "w:orient": "portrait"})
	s, err := MarshalFragment(el)
	require.NoError(t, err)
	assert.Equal(t, `<w:pgSz w:h="15840" w:orient="portrait" w:w="12240"/>`, s)
}

func TestFindAndClone(t *testing.T) {
	el := MustParse(`<a><b><c x="1"/></b></a>`)
	found := el.Find(func(e *Element) bool { return e.Name == "c" })
	require.NotNil(t, found)
	assert.Equal(t, "1", found.AttrOr("x", ""))

	cp := el.Clone()
	assert.True(t, el.Equal(cp))
	cp.Children[0].Name = "z"
	assert.Equal(t, "b", el.Children[0].Name)
}
