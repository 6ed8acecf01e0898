package docx

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/tsawler/wordtree/model"
	"github.com/tsawler/wordtree/xmlnode"
)

// Encoded is what a translator returns for the head of a sibling list.
// Consumed is the number of sibling elements the nodes were built from.
type Encoded struct {
	Nodes    []*model.Node
	Consumed int
}

// single wraps one node built from one element.
func single(n *model.Node) Encoded {
	return Encoded{Nodes: []*model.Node{n}, Consumed: 1}
}

// DispatchResult is the outcome of encoding a sibling list.
type DispatchResult struct {
	Nodes []*model.Node
	// Unhandled and Ignored hold indexes into the input list.
	Unhandled []int
	Ignored   []int
	// Processed counts consumed, ignored and unhandled elements. It always
	// equals the input length.
	Processed int
}

// EncodeNodes converts an ordered list of sibling elements. Each position is
// offered to the candidate translators of its tag in order; the first one
// that consumes elements wins. Failures are logged and recorded, and the loop
// moves past the failing element.
func (c *Context) EncodeNodes(elems []*xmlnode.Element) DispatchResult {
	var res DispatchResult
	i := 0
	for i < len(elems) {
		el := elems[i]
		if el == nil || el.IsText() {
			res.Ignored = append(res.Ignored, i)
			res.Processed++
			i++
			continue
		}

		r, handled, err := c.encodeAt(elems, i)
		switch {
		case err != nil:
			c.log.Warn("translator failed",
				zap.Int("index", i),
				zap.String("tag", el.Name),
				zap.Any("attrs", el.Attrs),
				zap.Error(err))
			c.report(TranslatorFailure, i, el, err.Error())
			res.Unhandled = append(res.Unhandled, i)
			res.Processed++
			i++
		case handled:
			res.Nodes = append(res.Nodes, r.Nodes...)
			res.Processed += r.Consumed
			i += r.Consumed
		case c.opts.ignored(el.Name):
			c.log.Debug("ignored element", zap.Int("index", i), zap.String("tag", el.Name))
			res.Ignored = append(res.Ignored, i)
			res.Processed++
			i++
		default:
			c.log.Warn("unhandled element",
				zap.Int("index", i),
				zap.String("tag", el.Name),
				zap.Any("attrs", el.Attrs))
			c.report(UnhandledElement, i, el, "no translator accepted the element")
			res.Unhandled = append(res.Unhandled, i)
			res.Processed++
			i++
		}
	}
	return res
}

// encode is EncodeNodes returning only the nodes.
func (c *Context) encode(elems []*xmlnode.Element) []*model.Node {
	return c.EncodeNodes(elems).Nodes
}

// lookup resolves the candidate translators of a tag.
var lookup = candidates

// encodeAt runs the candidates for elems[i]. handled is false when every
// candidate declined.
func (c *Context) encodeAt(elems []*xmlnode.Element, i int) (Encoded, bool, error) {
	rest := elems[i:]
	for _, t := range lookup(rest[0].Name) {
		r, err := c.safeEncode(t, rest)
		if err != nil {
			return Encoded{}, false, &TranslatorError{Translator: t.Name(), Index: i, Tag: rest[0].Name, Err: err}
		}
		if r.Consumed == 0 {
			if len(r.Nodes) > 0 {
				return Encoded{}, false, &TranslatorError{Translator: t.Name(), Index: i, Tag: rest[0].Name, Err: ErrZeroConsumed}
			}
			continue
		}
		if r.Consumed > len(rest) {
			return Encoded{}, false, &TranslatorError{Translator: t.Name(), Index: i, Tag: rest[0].Name, Err: ErrOverConsumed}
		}
		return r, true, nil
	}
	return Encoded{}, false, nil
}

// safeEncode turns a translator panic into an error.
func (c *Context) safeEncode(t Translator, elems []*xmlnode.Element) (res Encoded, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = Encoded{}
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return t.Encode(c, elems)
}
