// Package xmlnode provides the immutable XML element value exchanged with the
// conversion core.
//
// An [Element] is a prefixed tag name, an attribute map and an ordered list of
// children. Text content is represented by leaf elements named [TextName].
// Elements are never mutated after construction: every helper that "changes"
// an element returns a new value and shares the untouched parts.
//
// Parsing and serialization go through github.com/beevik/etree, see [Parse]
// and [Marshal].
package xmlnode

import (
	"sort"
	"strings"
)

// TextName is the reserved name of character-data leaves.
const TextName = "#text"

// Element is a parsed XML element.
type Element struct {
	Name     string            `json:"name"`
	Attrs    map[string]string `json:"attributes,omitempty"`
	Children []*Element        `json:"elements,omitempty"`
	Text     string            `json:"text,omitempty"`
}

// New creates an element with a copy of the given attributes.
func New(name string, attrs map[string]string, children ...*Element) *Element {
	el := &Element{Name: name}
	if len(attrs) > 0 {
		el.Attrs = make(map[string]string, len(attrs))
		for k, v := range attrs {
			el.Attrs[k] = v
		}
	}
	if len(children) > 0 {
		el.Children = compact(children)
	}
	return el
}

// NewText creates a character-data leaf.
func NewText(text string) *Element {
	return &Element{Name: TextName, Text: text}
}

// Val is shorthand for an element with a single w:val attribute.
func Val(name, val string) *Element {
	return New(name, map[string]string{"w:val": val})
}

func compact(children []*Element) []*Element {
	out := make([]*Element, 0, len(children))
	for _, c := range children {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

// IsText reports whether the element is a character-data leaf.
func (e *Element) IsText() bool {
	return e != nil && e.Name == TextName
}

// Local returns the tag name without its namespace prefix.
func (e *Element) Local() string {
	if e == nil {
		return ""
	}
	if i := strings.IndexByte(e.Name, ':'); i >= 0 {
		return e.Name[i+1:]
	}
	return e.Name
}

// Prefix returns the namespace prefix of the tag, or "".
func (e *Element) Prefix() string {
	if e == nil {
		return ""
	}
	if i := strings.IndexByte(e.Name, ':'); i >= 0 {
		return e.Name[:i]
	}
	return ""
}

// Is reports whether the element has the given name.
func (e *Element) Is(name string) bool {
	return e != nil && e.Name == name
}

// Attr returns the attribute value and whether it is present.
func (e *Element) Attr(key string) (string, bool) {
	if e == nil || e.Attrs == nil {
		return "", false
	}
	v, ok := e.Attrs[key]
	return v, ok
}

// AttrOr returns the attribute value or def when absent.
func (e *Element) AttrOr(key, def string) string {
	if v, ok := e.Attr(key); ok {
		return v
	}
	return def
}

// AttrKeys returns attribute keys in sorted order.
func (e *Element) AttrKeys() []string {
	if e == nil {
		return nil
	}
	keys := make([]string, 0, len(e.Attrs))
	for k := range e.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Child returns the first child element with the given name.
func (e *Element) Child(name string) *Element {
	if e == nil {
		return nil
	}
	for _, c := range e.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ChildVal returns the w:val attribute of the named child.
func (e *Element) ChildVal(name string) (string, bool) {
	c := e.Child(name)
	if c == nil {
		return "", false
	}
	return c.Attr("w:val")
}

// ChildrenNamed returns all child elements with the given name.
func (e *Element) ChildrenNamed(name string) []*Element {
	if e == nil {
		return nil
	}
	var out []*Element
	for _, c := range e.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// ElementChildren returns the children that are not text leaves.
func (e *Element) ElementChildren() []*Element {
	if e == nil {
		return nil
	}
	out := make([]*Element, 0, len(e.Children))
	for _, c := range e.Children {
		if !c.IsText() {
			out = append(out, c)
		}
	}
	return out
}

// Find returns the first descendant (depth-first, including e) matching fn.
func (e *Element) Find(fn func(*Element) bool) *Element {
	if e == nil {
		return nil
	}
	if fn(e) {
		return e
	}
	for _, c := range e.Children {
		if found := c.Find(fn); found != nil {
			return found
		}
	}
	return nil
}

// TextContent concatenates all character data below the element.
func (e *Element) TextContent() string {
	if e == nil {
		return ""
	}
	if e.IsText() {
		return e.Text
	}
	var sb strings.Builder
	for _, c := range e.Children {
		sb.WriteString(c.TextContent())
	}
	return sb.String()
}

// WithAttr returns a copy of e with the attribute set.
func (e *Element) WithAttr(key, value string) *Element {
	cp := e.shallow()
	cp.Attrs = make(map[string]string, len(e.Attrs)+1)
	for k, v := range e.Attrs {
		cp.Attrs[k] = v
	}
	cp.Attrs[key] = value
	return cp
}

// WithoutAttr returns a copy of e without the attribute.
func (e *Element) WithoutAttr(key string) *Element {
	if _, ok := e.Attr(key); !ok {
		return e
	}
	cp := e.shallow()
	cp.Attrs = make(map[string]string, len(e.Attrs))
	for k, v := range e.Attrs {
		if k != key {
			cp.Attrs[k] = v
		}
	}
	return cp
}

// WithChildren returns a copy of e with its children replaced.
func (e *Element) WithChildren(children ...*Element) *Element {
	cp := e.shallow()
	cp.Children = compact(children)
	return cp
}

// WithoutChildren returns a copy of e with every child named in names removed.
func (e *Element) WithoutChildren(names ...string) *Element {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	cp := e.shallow()
	cp.Children = make([]*Element, 0, len(e.Children))
	for _, c := range e.Children {
		if !drop[c.Name] {
			cp.Children = append(cp.Children, c)
		}
	}
	return cp
}

// AppendChildren returns a copy of e with children appended.
func (e *Element) AppendChildren(children ...*Element) *Element {
	cp := e.shallow()
	cp.Children = make([]*Element, 0, len(e.Children)+len(children))
	cp.Children = append(cp.Children, e.Children...)
	cp.Children = append(cp.Children, compact(children)...)
	return cp
}

func (e *Element) shallow() *Element {
	if e == nil {
		return &Element{}
	}
	cp := *e
	return &cp
}

// Clone returns a deep copy.
func (e *Element) Clone() *Element {
	if e == nil {
		return nil
	}
	cp := New(e.Name, e.Attrs)
	cp.Text = e.Text
	if len(e.Children) > 0 {
		cp.Children = make([]*Element, len(e.Children))
		for i, c := range e.Children {
			cp.Children[i] = c.Clone()
		}
	}
	return cp
}

// Equal reports structural equality (attribute order is irrelevant).
func (e *Element) Equal(o *Element) bool {
	if e == nil || o == nil {
		return e == o
	}
	if e.Name != o.Name || e.Text != o.Text || len(e.Attrs) != len(o.Attrs) || len(e.Children) != len(o.Children) {
		return false
	}
	for k, v := range e.Attrs {
		if ov, ok := o.Attrs[k]; !ok || ov != v {
			return false
		}
	}
	for i := range e.Children {
		if !e.Children[i].Equal(o.Children[i]) {
			return false
		}
	}
	return true
}
