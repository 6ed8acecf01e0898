package docx

import (
	"strings"

	"github.com/tsawler/wordtree/model"
	"github.com/tsawler/wordtree/xmlnode"
)

// Field marker types of w:fldChar/@w:fldCharType.
const (
	fieldBegin    = "begin"
	fieldSeparate = "separate"
	fieldEnd      = "end"
)

// fieldCharTranslator handles w:fldChar in ordinary paragraphs.
type fieldCharTranslator struct{}

func (fieldCharTranslator) Name() string     { return "fieldChar" }
func (fieldCharTranslator) Kind() model.Kind { return model.KindFieldChar }

func (fieldCharTranslator) Encode(_ *Context, elems []*xmlnode.Element) (Encoded, error) {
	el := elems[0]
	attrs := model.Attrs{"fieldCharType": el.AttrOr("w:fldCharType", "")}
	if len(el.Children) > 0 || len(el.Attrs) > 1 {
		attrs["element"] = el
	}
	return single(model.NewNode(model.KindFieldChar, attrs)), nil
}

func (fieldCharTranslator) Decode(_ *Exporter, n *model.Node) ([]*xmlnode.Element, error) {
	typ := n.Attrs.String("fieldCharType")
	if el := n.Attrs.Raw("element"); el != nil && el.AttrOr("w:fldCharType", "") == typ {
		return []*xmlnode.Element{el}, nil
	}
	return []*xmlnode.Element{fldChar(typ)}, nil
}

func fldChar(typ string) *xmlnode.Element {
	return xmlnode.New("w:fldChar", map[string]string{"w:fldCharType": typ})
}

// instrTextTranslator handles w:instrText and w:delInstrText.
type instrTextTranslator struct{}

func (instrTextTranslator) Name() string     { return "fieldInstruction" }
func (instrTextTranslator) Kind() model.Kind { return model.KindFieldInstruction }

func (instrTextTranslator) Encode(_ *Context, elems []*xmlnode.Element) (Encoded, error) {
	n := model.NewNode(model.KindFieldInstruction, model.Attrs{"instruction": elems[0].TextContent()})
	return single(n), nil
}

func (instrTextTranslator) Decode(x *Exporter, n *model.Node) ([]*xmlnode.Element, error) {
	return runT.Decode(x, model.NewNode(model.KindRun, nil, n))
}

// fldSimpleTranslator expands w:fldSimple into the complex-field form: runs
// holding begin, instruction and separate markers, the result runs, and an
// end marker.
type fldSimpleTranslator struct{}

func (fldSimpleTranslator) Name() string     { return "fldSimple" }
func (fldSimpleTranslator) Kind() model.Kind { return model.KindUnknown }

func (fldSimpleTranslator) Encode(c *Context, elems []*xmlnode.Element) (Encoded, error) {
	el := elems[0]
	marker := func(typ string) *model.Node {
		return model.NewNode(model.KindRun, nil, model.NewNode(model.KindFieldChar, model.Attrs{"fieldCharType": typ}))
	}
	nodes := []*model.Node{
		marker(fieldBegin),
		model.NewNode(model.KindRun, nil,
			model.NewNode(model.KindFieldInstruction, model.Attrs{"instruction": " " + strings.TrimSpace(el.AttrOr("w:instr", "")) + " "})),
		marker(fieldSeparate),
	}
	nodes = append(nodes, c.encode(el.ElementChildren())...)
	nodes = append(nodes, marker(fieldEnd))
	return Encoded{Nodes: nodes, Consumed: 1}, nil
}

func (fldSimpleTranslator) Decode(*Exporter, *model.Node) ([]*xmlnode.Element, error) {
	return nil, nil
}

// fieldTokens splits a field instruction into words, honoring double quotes.
func fieldTokens(instr string) []string {
	var (
		out     []string
		cur     strings.Builder
		inQuote bool
		has     bool
	)
	flush := func() {
		if has {
			out = append(out, cur.String())
			cur.Reset()
			has = false
		}
	}
	for _, r := range instr {
		switch {
		case r == '"':
			inQuote = !inQuote
			has = true
		case !inQuote && (r == ' ' || r == '\t' || r == '\n' || r == '\r'):
			flush()
		default:
			cur.WriteRune(r)
			has = true
		}
	}
	flush()
	return out
}

// fieldName returns the upper-cased field keyword of an instruction.
func fieldName(instr string) string {
	toks := fieldTokens(instr)
	if len(toks) == 0 {
		return ""
	}
	return strings.ToUpper(toks[0])
}

// fieldArgument returns the first non-switch argument after the keyword.
func fieldArgument(instr string) string {
	toks := fieldTokens(instr)
	for i := 1; i < len(toks); i++ {
		if strings.HasPrefix(toks[i], `\`) {
			// switches with an argument (\o "1-3", \t "...") skip it
			if len(toks[i]) == 2 && strings.ContainsAny(toks[i][1:], "obflstcd") && i+1 < len(toks) && !strings.HasPrefix(toks[i+1], `\`) {
				i++
			}
			continue
		}
		return toks[i]
	}
	return ""
}

// hasFieldSwitch reports whether the instruction carries a switch such as \h.
func hasFieldSwitch(instr, sw string) bool {
	for _, t := range fieldTokens(instr) {
		if strings.EqualFold(t, sw) {
			return true
		}
	}
	return false
}
