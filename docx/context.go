package docx

import (
	"go.uber.org/zap"

	"github.com/tsawler/wordtree/xmlnode"
)

// PartResolver resolves relationship ids of the part being converted.
type PartResolver interface {
	// Target returns the relationship target and whether it is external.
	Target(relID string) (target string, external bool, ok bool)
	// Part returns the package path and parsed root of an internal target.
	Part(relID string) (path string, root *xmlnode.Element, ok bool)
}

// PartScoped is implemented by resolvers that can also resolve the
// relationships of other parts (headers, comments, notes).
type PartScoped interface {
	ForPart(path string) PartResolver
}

type noRels struct{}

func (noRels) Target(string) (string, bool, bool)            { return "", false, false }
func (noRels) Part(string) (string, *xmlnode.Element, bool) { return "", nil, false }

// rangeEvent is a comment range marker seen in the body at a text position.
type rangeEvent struct {
	ID    string
	Start bool
	Pos   int
}

// conversionState is shared by every Context derived from one conversion.
type conversionState struct {
	diagnostics []Diagnostic
	lists       *listCounters
	ranges      []rangeEvent
	pos         int
	rangePart   string
}

// Context carries the per-conversion state through the translators. Derived
// contexts (another part, another paragraph style) share the same state.
type Context struct {
	opts      Options
	log       *zap.Logger
	styles    *StyleTable
	numbering *NumberingTable
	rels      PartResolver
	part      string
	paraStyle string
	table     *tableScope
	state     *conversionState
}

// NewContext creates a conversion context. styles, numbering and rels may be nil.
func NewContext(styles *StyleTable, numbering *NumberingTable, rels PartResolver, opts ...Option) *Context {
	o := buildOptions(opts)
	return newContext(styles, numbering, rels, o)
}

func newContext(styles *StyleTable, numbering *NumberingTable, rels PartResolver, o Options) *Context {
	if styles == nil {
		styles = NewStyleTable(nil)
	}
	if numbering == nil {
		numbering = NewNumberingTable(nil, styles)
	}
	if rels == nil {
		rels = noRels{}
	}
	return &Context{
		opts:      o,
		log:       o.Logger,
		styles:    styles,
		numbering: numbering,
		rels:      rels,
		part:      PartDocument,
		state: &conversionState{
			lists:     newListCounters(),
			rangePart: PartDocument,
		},
	}
}

// Styles returns the style table of the conversion.
func (c *Context) Styles() *StyleTable { return c.styles }

// Diagnostics returns a copy of the diagnostics recorded so far.
func (c *Context) Diagnostics() []Diagnostic {
	return append([]Diagnostic(nil), c.state.diagnostics...)
}

func (c *Context) derive() *Context {
	cp := *c
	return &cp
}

// withPart returns a context converting another package part.
func (c *Context) withPart(part string, rels PartResolver) *Context {
	cp := c.derive()
	cp.part = part
	cp.paraStyle = ""
	cp.table = nil
	if rels != nil {
		cp.rels = rels
	}
	cp.log = c.opts.Logger.With(zap.String("part", part))
	return cp
}

// partRels returns the resolver for another part, or nil when the document
// resolver cannot provide one.
func (c *Context) partRels(path string) PartResolver {
	if s, ok := c.rels.(PartScoped); ok {
		return s.ForPart(path)
	}
	return nil
}

// withParagraphStyle returns a context for the runs of a paragraph.
func (c *Context) withParagraphStyle(id string) *Context {
	if id == c.paraStyle {
		return c
	}
	cp := c.derive()
	cp.paraStyle = id
	return cp
}

func (c *Context) report(kind DiagnosticKind, index int, el *xmlnode.Element, msg string) {
	d := Diagnostic{
		Kind:    kind,
		Part:    c.part,
		Index:   index,
		Message: msg,
	}
	if el != nil {
		d.Tag = el.Name
		d.Attrs = el.Attrs
	}
	c.state.diagnostics = append(c.state.diagnostics, d)
}

// malformed logs and records an unresolvable reference.
func (c *Context) malformed(el *xmlnode.Element, msg string) {
	fields := []zap.Field{zap.String("reason", msg)}
	if el != nil {
		fields = append(fields, zap.String("tag", el.Name), zap.Any("attrs", el.Attrs))
	}
	c.log.Warn("malformed reference", fields...)
	c.report(MalformedReference, -1, el, msg)
}

// advance moves the running text position used to place comment ranges.
func (c *Context) advance(n int) {
	if c.part == c.state.rangePart {
		c.state.pos += n
	}
}

func (c *Context) recordRange(id string, start bool) {
	if c.part != c.state.rangePart {
		return
	}
	c.state.ranges = append(c.state.ranges, rangeEvent{ID: id, Start: start, Pos: c.state.pos})
}
