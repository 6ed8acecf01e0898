package docx

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/wordtree/model"
	"github.com/tsawler/wordtree/xmlnode"
)

func TestEncodeNodes_ProcessedCoversEveryElement(t *testing.T) {
	c := testContext(t, "")
	elems := children(`<w:body><w:p/><w:proofErr w:type="spellStart"/><w:customThing/><w:p/></w:body>`)

	res := c.EncodeNodes(elems)

	assert.Equal(t, len(elems), res.Processed)
	assert.Equal(t, []int{1}, res.Ignored)
	assert.Empty(t, res.Unhandled)
	require.Len(t, res.Nodes, 3)
	assert.Equal(t, model.KindParagraph, res.Nodes[0].Kind)
	assert.Equal(t, model.KindPassthrough, res.Nodes[1].Kind)
	assert.Equal(t, "w:customThing", res.Nodes[1].Attrs.String("tag"))
	assert.Empty(t, c.Diagnostics())
}

func TestEncodeNodes_DropUnknownReportsUnhandled(t *testing.T) {
	c := testContext(t, "", WithDropUnknown(true))
	elems := children(`<w:body><w:p/><w:customThing w:a="1"/></w:body>`)

	res := c.EncodeNodes(elems)

	assert.Equal(t, 2, res.Processed)
	assert.Equal(t, []int{1}, res.Unhandled)
	require.Len(t, res.Nodes, 1)

	diags := c.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, UnhandledElement, diags[0].Kind)
	assert.Equal(t, "w:customThing", diags[0].Tag)
	assert.Equal(t, 1, diags[0].Index)
	assert.Equal(t, "1", diags[0].Attrs["w:a"])
	assert.Equal(t, PartDocument, diags[0].Part)
}

func TestEncodeNodes_CustomIgnoreList(t *testing.T) {
	c := testContext(t, "", WithIgnoredElements("w:customThing"))
	res := c.EncodeNodes(children(`<w:body><w:customThing/><w:p/></w:body>`))

	assert.Equal(t, 2, res.Processed)
	assert.Equal(t, []int{0}, res.Ignored)
	assert.Len(t, res.Nodes, 1)
}

func TestEncodeNodes_CollapsedBookmarkConsumesTwo(t *testing.T) {
	c := testContext(t, "")
	res := c.EncodeNodes(children(`<w:p><w:bookmarkStart w:id="3" w:name="_Toc1"/><w:bookmarkEnd w:id="3"/><w:bookmarkEnd w:id="9"/></w:p>`))

	assert.Equal(t, 3, res.Processed)
	require.Len(t, res.Nodes, 2)
	assert.Equal(t, model.KindBookmark, res.Nodes[0].Kind)
	assert.Equal(t, "_Toc1", res.Nodes[0].Attrs.String("name"))
	assert.Equal(t, model.KindBookmarkEnd, res.Nodes[1].Kind)
}

func TestEncodeNodes_UnwrapsSmartTags(t *testing.T) {
	c := testContext(t, "")
	res := c.EncodeNodes(children(`<w:p><w:smartTag w:element="place"><w:smartTagPr/><w:r><w:t>Paris</w:t></w:r></w:smartTag></w:p>`))

	require.Len(t, res.Nodes, 1)
	assert.Equal(t, model.KindRun, res.Nodes[0].Kind)
	assert.Equal(t, "Paris", res.Nodes[0].TextContent())
}

type panicTranslator struct{}

func (panicTranslator) Name() string     { return "panics" }
func (panicTranslator) Kind() model.Kind { return model.KindUnknown }
func (panicTranslator) Encode(*Context, []*xmlnode.Element) (Encoded, error) {
	panic("boom")
}
func (panicTranslator) Decode(*Exporter, *model.Node) ([]*xmlnode.Element, error) {
	return nil, nil
}

func TestEncodeNodes_ContinuesPastFailingElement(t *testing.T) {
	lookup = func(name string) []Translator {
		if name == "w:broken" {
			return []Translator{panicTranslator{}, passthroughT}
		}
		return candidates(name)
	}
	t.Cleanup(func() { lookup = candidates })

	c := testContext(t, "")
	elems := children(`<w:body><w:p><w:r><w:t>before</w:t></w:r></w:p><w:broken w:a="1"/><w:p><w:r><w:t>after</w:t></w:r></w:p></w:body>`)

	res := c.EncodeNodes(elems)

	assert.Equal(t, 3, res.Processed)
	assert.Equal(t, []int{1}, res.Unhandled)
	require.Len(t, res.Nodes, 2)
	assert.Equal(t, "before", res.Nodes[0].TextContent())
	assert.Equal(t, "after", res.Nodes[1].TextContent())

	diags := c.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, TranslatorFailure, diags[0].Kind)
	assert.Equal(t, "w:broken", diags[0].Tag)
	assert.Equal(t, 1, diags[0].Index)
	assert.Contains(t, diags[0].Message, "boom")
}

func TestSafeEncode_RecoversPanic(t *testing.T) {
	c := testContext(t, "")
	_, err := c.safeEncode(panicTranslator{}, children(`<w:p><w:r/></w:p>`))

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPanic))
	assert.Contains(t, err.Error(), "boom")
}

func TestTranslatorError_Unwraps(t *testing.T) {
	err := error(&TranslatorError{Translator: "run", Index: 4, Tag: "w:r", Err: ErrPanic})

	assert.True(t, errors.Is(err, ErrPanic))
	var te *TranslatorError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, 4, te.Index)
	assert.Contains(t, err.Error(), "w:r")
}

func TestCandidates_PassthroughIsLast(t *testing.T) {
	for _, tag := range []string{"w:p", "w:r", "w:tbl", "w:hyperlink", "w:sdt", "w:unknown"} {
		list := candidates(tag)
		require.NotEmpty(t, list, tag)
		assert.Equal(t, "passthrough", list[len(list)-1].Name(), tag)
	}
	assert.Equal(t, "toc", candidates("w:p")[0].Name())
}

func TestDecoderFor_CoversEveryKind(t *testing.T) {
	for _, k := range model.Kinds() {
		switch k {
		case model.KindDocument, model.KindHeader, model.KindFooter:
			continue
		}
		tr, ok := decoderFor(k)
		require.True(t, ok, "no decoder for %s", k)
		assert.NotNil(t, tr)
	}
}

func TestDecodeNode_UnknownKind(t *testing.T) {
	_, err := NewExporter(nil).DecodeNode(model.NewNode(model.KindDocument, nil))
	assert.True(t, errors.Is(err, ErrUnknownKind))
}

func TestDiagnosticKind_String(t *testing.T) {
	assert.Equal(t, "unhandled-element", UnhandledElement.String())
	assert.Equal(t, "translator-failure", TranslatorFailure.String())
	assert.Equal(t, "malformed-reference", MalformedReference.String())
	assert.Equal(t, "structural-inconsistency", StructuralInconsistency.String())
}
