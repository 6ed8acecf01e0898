package docx

import (
	"strconv"
	"strings"

	"github.com/tsawler/wordtree/units"
	"github.com/tsawler/wordtree/xmlnode"
)

// Style types of w:style/@w:type.
const (
	StyleTypeParagraph = "paragraph"
	StyleTypeCharacter = "character"
	StyleTypeTable     = "table"
	StyleTypeNumbering = "numbering"
)

// StyleDef is one w:style definition of styles.xml.
type StyleDef struct {
	ID      string
	Name    string
	Type    string
	BasedOn string
	Link    string
	Next    string
	Default bool

	PPr   *xmlnode.Element
	RPr   *xmlnode.Element
	TblPr *xmlnode.Element
	TcPr  *xmlnode.Element

	// chain holds the ids from the root ancestor down to this style.
	chain        []string
	headingLevel int
}

// StyleTable is the style table of one document. Inheritance chains are
// resolved when the table is built; afterwards it is read-only and may be
// shared between conversions.
type StyleTable struct {
	styles     map[string]*StyleDef
	defaultRPr *xmlnode.Element
	defaultPPr *xmlnode.Element

	// defaults per style type (w:default="1")
	defaults map[string]string
}

// NewStyleTable builds the table from the root of word/styles.xml. A nil
// root yields an empty table.
func NewStyleTable(root *xmlnode.Element) *StyleTable {
	st := &StyleTable{
		styles:   make(map[string]*StyleDef),
		defaults: make(map[string]string),
	}
	if root == nil {
		return st
	}

	// Document defaults
	if dd := root.Child("w:docDefaults"); dd != nil {
		st.defaultRPr = dd.Child("w:rPrDefault").Child("w:rPr")
		st.defaultPPr = dd.Child("w:pPrDefault").Child("w:pPr")
	}

	// Build style map
	for _, s := range root.ChildrenNamed("w:style") {
		id := s.AttrOr("w:styleId", "")
		if id == "" {
			continue
		}
		def := &StyleDef{
			ID:      id,
			Type:    s.AttrOr("w:type", StyleTypeParagraph),
			Default: units.ParseBool(s.AttrOr("w:default", ""), false),
			PPr:     s.Child("w:pPr"),
			RPr:     s.Child("w:rPr"),
			TblPr:   s.Child("w:tblPr"),
			TcPr:    s.Child("w:tcPr"),
		}
		def.Name, _ = s.ChildVal("w:name")
		def.BasedOn, _ = s.ChildVal("w:basedOn")
		def.Link, _ = s.ChildVal("w:link")
		def.Next, _ = s.ChildVal("w:next")
		st.styles[id] = def
		if def.Default {
			if _, seen := st.defaults[def.Type]; !seen {
				st.defaults[def.Type] = id
			}
		}
	}

	// Resolve chains eagerly so lookups never walk basedOn again.
	for id, def := range st.styles {
		def.chain = st.buildInheritanceChain(id)
		def.headingLevel = st.detectHeading(def)
	}
	return st
}

// buildInheritanceChain returns style IDs from base to derived. A basedOn
// cycle stops at the first repeated id.
func (st *StyleTable) buildInheritanceChain(styleID string) []string {
	var chain []string
	visited := make(map[string]bool)

	current := styleID
	for current != "" && !visited[current] {
		visited[current] = true
		def, ok := st.styles[current]
		if !ok {
			break
		}
		chain = append([]string{current}, chain...)
		current = def.BasedOn
	}
	return chain
}

// Style returns the definition of a style id.
func (st *StyleTable) Style(id string) (*StyleDef, bool) {
	if st == nil {
		return nil, false
	}
	def, ok := st.styles[id]
	return def, ok
}

// Len returns the number of styles.
func (st *StyleTable) Len() int {
	if st == nil {
		return 0
	}
	return len(st.styles)
}

// Chain returns the definitions from the root ancestor down to id. Unknown
// ids give an empty chain.
func (st *StyleTable) Chain(id string) []*StyleDef {
	def, ok := st.Style(id)
	if !ok {
		return nil
	}
	out := make([]*StyleDef, 0, len(def.chain))
	for _, sid := range def.chain {
		out = append(out, st.styles[sid])
	}
	return out
}

// DefaultStyle returns the default style id for a style type.
func (st *StyleTable) DefaultStyle(styleType string) string {
	if st == nil {
		return ""
	}
	return st.defaults[styleType]
}

// DefaultRunProps returns w:docDefaults/w:rPrDefault/w:rPr.
func (st *StyleTable) DefaultRunProps() *xmlnode.Element {
	if st == nil {
		return nil
	}
	return st.defaultRPr
}

// DefaultParagraphProps returns w:docDefaults/w:pPrDefault/w:pPr.
func (st *StyleTable) DefaultParagraphProps() *xmlnode.Element {
	if st == nil {
		return nil
	}
	return st.defaultPPr
}

// HeadingLevel returns 1-9 for heading styles and 0 otherwise. Ids missing
// from the table are checked against Word's built-in heading ids.
func (st *StyleTable) HeadingLevel(id string) int {
	if id == "" {
		return 0
	}
	if def, ok := st.Style(id); ok {
		return def.headingLevel
	}
	_, level := detectBuiltInHeading(id)
	return level
}

// detectHeading determines if a style represents a heading.
func (st *StyleTable) detectHeading(def *StyleDef) int {
	if def.Type != StyleTypeParagraph {
		return 0
	}

	// Built-in heading style ID
	if isHeading, level := detectBuiltInHeading(def.ID); isHeading {
		return level
	}

	// Style name such as "heading 2"
	name := strings.ToLower(def.Name)
	if strings.HasPrefix(name, "heading") {
		for i := 1; i <= 9; i++ {
			if strings.Contains(name, strconv.Itoa(i)) {
				return i
			}
		}
		return 1
	}

	// Outline level anywhere in the chain, nearest wins
	for i := len(def.chain) - 1; i >= 0; i-- {
		if v, ok := st.styles[def.chain[i]].PPr.ChildVal("w:outlineLvl"); ok {
			if level, ok := parseOutlineLevel(v); ok {
				return level
			}
			break
		}
	}
	return 0
}

// parseOutlineLevel converts a 0-based w:outlineLvl into a heading level.
// Level 9 means body text.
func parseOutlineLevel(v string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 || n > 8 {
		return 0, false
	}
	return n + 1, true
}

// detectBuiltInHeading checks for Word's built-in heading style IDs.
func detectBuiltInHeading(styleID string) (bool, int) {
	id := strings.ToLower(styleID)

	headingMap := map[string]int{
		"heading1": 1, "heading2": 2, "heading3": 3,
		"heading4": 4, "heading5": 5, "heading6": 6,
		"heading7": 7, "heading8": 8, "heading9": 9,
		"title": 1, "subtitle": 2,
	}

	if level, ok := headingMap[id]; ok {
		return true, level
	}
	return false, 0
}

// tocLevel returns n for the TOC entry styles "TOC1".."TOC9" (also by name
// "toc 1").
func (st *StyleTable) tocLevel(id string) int {
	names := []string{id}
	if def, ok := st.Style(id); ok {
		names = append(names, strings.ReplaceAll(def.Name, " ", ""))
	}
	for _, c := range names {
		lc := strings.ToLower(c)
		if !strings.HasPrefix(lc, "toc") {
			continue
		}
		if n, err := strconv.Atoi(lc[3:]); err == nil && n >= 1 && n <= 9 {
			return n
		}
	}
	return 0
}
