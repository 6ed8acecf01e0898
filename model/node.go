package model

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/tsawler/wordtree/xmlnode"
)

// RawKey is the attribute under which marks keep their source XML fragment.
const RawKey = "raw"

// Attrs holds semantic attribute values of nodes and marks. Values are
// strings, numbers, bools, slices, nested maps, mark lists or raw
// *xmlnode.Element fragments kept for lossless decoding.
type Attrs map[string]any

// Clone returns a copy of the map. Nested values are shared; they are
// treated as immutable.
func (a Attrs) Clone() Attrs {
	if a == nil {
		return nil
	}
	out := make(Attrs, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// With returns a copy with key set to v.
func (a Attrs) With(key string, v any) Attrs {
	out := a.Clone()
	if out == nil {
		out = Attrs{}
	}
	out[key] = v
	return out
}

// Without returns a copy without the given keys.
func (a Attrs) Without(keys ...string) Attrs {
	out := a.Clone()
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// Has reports whether key is set to a non-nil value.
func (a Attrs) Has(key string) bool {
	v, ok := a[key]
	return ok && v != nil
}

// String returns the string value of key, or "".
func (a Attrs) String(key string) string {
	if s, ok := a[key].(string); ok {
		return s
	}
	return ""
}

// Float returns a numeric value of key.
func (a Attrs) Float(key string) (float64, bool) {
	switch v := a[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

// Int returns an integer value of key.
func (a Attrs) Int(key string) (int, bool) {
	f, ok := a.Float(key)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// Bool returns the boolean value of key.
func (a Attrs) Bool(key string) bool {
	b, _ := a[key].(bool)
	return b
}

// Map returns a nested attribute map.
func (a Attrs) Map(key string) Attrs {
	switch v := a[key].(type) {
	case Attrs:
		return v
	case map[string]any:
		return Attrs(v)
	}
	return nil
}

// Raw returns a stored XML fragment.
func (a Attrs) Raw(key string) *xmlnode.Element {
	el, _ := a[key].(*xmlnode.Element)
	return el
}

// Marks returns a stored mark list (used by trackFormat snapshots).
func (a Attrs) Marks(key string) []Mark {
	m, _ := a[key].([]Mark)
	return m
}

// Equal compares two attribute maps deeply.
func (a Attrs) Equal(o Attrs) bool {
	if len(a) == 0 && len(o) == 0 {
		return true
	}
	return reflect.DeepEqual(a, o)
}

// Node is one unit of the converted document tree.
type Node struct {
	Kind    Kind    `json:"type"`
	Attrs   Attrs   `json:"attrs,omitempty"`
	Content []*Node `json:"content,omitempty"`
	Marks   []Mark  `json:"marks,omitempty"`
	Text    string  `json:"text,omitempty"`
}

// NewNode creates a node. Marks are only kept for inline leaf kinds.
func NewNode(kind Kind, attrs Attrs, content ...*Node) *Node {
	n := &Node{Kind: kind, Attrs: attrs}
	if len(content) > 0 {
		n.Content = compactNodes(content)
	}
	return n
}

// NewText creates a text leaf.
func NewText(text string, marks ...Mark) *Node {
	return &Node{Kind: KindText, Text: text, Marks: CloneMarks(marks)}
}

func compactNodes(nodes []*Node) []*Node {
	out := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

// Clone returns a deep copy of the node and its content.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	cp := &Node{
		Kind:  n.Kind,
		Attrs: n.Attrs.Clone(),
		Marks: CloneMarks(n.Marks),
		Text:  n.Text,
	}
	if n.Content != nil {
		cp.Content = make([]*Node, len(n.Content))
		for i, c := range n.Content {
			cp.Content[i] = c.Clone()
		}
	}
	return cp
}

func (n *Node) shallow() *Node {
	cp := *n
	return &cp
}

// WithMarks returns a copy carrying marks. Non inline kinds never carry marks.
func (n *Node) WithMarks(marks []Mark) *Node {
	cp := n.shallow()
	if n.Kind.IsInlineLeaf() {
		cp.Marks = CloneMarks(marks)
	} else {
		cp.Marks = nil
	}
	return cp
}

// AddMarks returns a copy with marks merged over the existing ones. Content
// nodes are visited recursively so wrappers can mark every inline leaf below.
func (n *Node) AddMarks(marks ...Mark) *Node {
	if n.Kind.IsInlineLeaf() {
		return n.WithMarks(MergeMarks(n.Marks, marks...))
	}
	if len(n.Content) == 0 {
		return n
	}
	cp := n.shallow()
	cp.Content = make([]*Node, len(n.Content))
	for i, c := range n.Content {
		cp.Content[i] = c.AddMarks(marks...)
	}
	return cp
}

// WithAttrs returns a copy with its attributes replaced.
func (n *Node) WithAttrs(attrs Attrs) *Node {
	cp := n.shallow()
	cp.Attrs = attrs
	return cp
}

// WithContent returns a copy with its content replaced.
func (n *Node) WithContent(content ...*Node) *Node {
	cp := n.shallow()
	cp.Content = compactNodes(content)
	return cp
}

// TextContent concatenates the text of all descendants. Tabs and line breaks
// are rendered as \t and \n.
func (n *Node) TextContent() string {
	var sb strings.Builder
	n.writeText(&sb)
	return sb.String()
}

func (n *Node) writeText(sb *strings.Builder) {
	if n == nil {
		return
	}
	switch n.Kind {
	case KindText:
		sb.WriteString(n.Text)
		return
	case KindTab:
		sb.WriteString("\t")
		return
	case KindLineBreak:
		sb.WriteString("\n")
		return
	}
	for _, c := range n.Content {
		c.writeText(sb)
	}
}

// Walk visits n and its descendants depth-first. Returning false from fn
// skips the children of the visited node.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Content {
		c.Walk(fn)
	}
}

// FindAll returns all descendants (including n) of the given kind.
func (n *Node) FindAll(kind Kind) []*Node {
	var out []*Node
	n.Walk(func(c *Node) bool {
		if c.Kind == kind {
			out = append(out, c)
		}
		return true
	})
	return out
}

// WithoutRaw returns a copy of the mark without its raw XML fragment.
func (m Mark) WithoutRaw() Mark {
	return Mark{Type: m.Type, Attrs: m.Attrs.Without(RawKey)}
}
