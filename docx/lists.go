package docx

import (
	"strconv"
	"strings"

	"github.com/tsawler/wordtree/model"
	"github.com/tsawler/wordtree/units"
	"github.com/tsawler/wordtree/xmlnode"
)

// ListLevel is one w:lvl of an abstract numbering definition.
type ListLevel struct {
	Level   int
	Start   int
	NumFmt  string
	LvlText string
	Jc      string
	PPr     *xmlnode.Element
	RPr     *xmlnode.Element
}

// Ordered reports whether the level renders numbers rather than bullets.
func (l ListLevel) Ordered() bool {
	return l.NumFmt != "bullet" && l.NumFmt != "none" && l.NumFmt != ""
}

type abstractNum struct {
	id           string
	levels       map[int]ListLevel
	numStyleLink string
}

type numDef struct {
	abstractID string
	overrides  map[int]levelOverride
}

type levelOverride struct {
	start    int
	hasStart bool
	level    *ListLevel
}

// NumberingTable holds the definitions of word/numbering.xml. It is
// read-only after construction.
type NumberingTable struct {
	abstractNums map[string]*abstractNum // abstractNumId -> definition
	nums         map[string]*numDef      // numId -> instance
	styles       *StyleTable
}

// NewNumberingTable builds the table from the root of word/numbering.xml.
// styles resolves numStyleLink indirections and may be nil.
func NewNumberingTable(root *xmlnode.Element, styles *StyleTable) *NumberingTable {
	nt := &NumberingTable{
		abstractNums: make(map[string]*abstractNum),
		nums:         make(map[string]*numDef),
		styles:       styles,
	}
	if root == nil {
		return nt
	}

	// Build abstract numbering map
	for _, an := range root.ChildrenNamed("w:abstractNum") {
		def := &abstractNum{
			id:     an.AttrOr("w:abstractNumId", ""),
			levels: make(map[int]ListLevel),
		}
		def.numStyleLink, _ = an.ChildVal("w:numStyleLink")
		for _, lvl := range an.ChildrenNamed("w:lvl") {
			l := parseListLevel(lvl)
			def.levels[l.Level] = l
		}
		nt.abstractNums[def.id] = def
	}

	// Build num -> abstractNum mapping with level overrides
	for _, num := range root.ChildrenNamed("w:num") {
		nd := &numDef{overrides: make(map[int]levelOverride)}
		nd.abstractID, _ = num.ChildVal("w:abstractNumId")
		for _, ov := range num.ChildrenNamed("w:lvlOverride") {
			ilvl, _ := units.ParseInt(ov.AttrOr("w:ilvl", "0"))
			var o levelOverride
			if v, ok := ov.ChildVal("w:startOverride"); ok {
				o.start, o.hasStart = units.ParseInt(v)
			}
			if lvl := ov.Child("w:lvl"); lvl != nil {
				l := parseListLevel(lvl)
				o.level = &l
			}
			nd.overrides[ilvl] = o
		}
		nt.nums[num.AttrOr("w:numId", "")] = nd
	}
	return nt
}

func parseListLevel(lvl *xmlnode.Element) ListLevel {
	l := ListLevel{Start: 1, NumFmt: "decimal"}
	l.Level, _ = units.ParseInt(lvl.AttrOr("w:ilvl", "0"))
	if v, ok := lvl.ChildVal("w:start"); ok {
		if s, ok := units.ParseInt(v); ok {
			l.Start = s
		}
	}
	if v, ok := lvl.ChildVal("w:numFmt"); ok {
		l.NumFmt = v
	}
	l.LvlText, _ = lvl.ChildVal("w:lvlText")
	l.Jc, _ = lvl.ChildVal("w:lvlJc")
	l.PPr = lvl.Child("w:pPr")
	l.RPr = lvl.Child("w:rPr")
	return l
}

// abstractFor follows numId -> abstractNum, including one numStyleLink hop
// through a numbering style.
func (nt *NumberingTable) abstractFor(numID string) (*abstractNum, *numDef, bool) {
	nd, ok := nt.nums[numID]
	if !ok {
		return nil, nil, false
	}
	an, ok := nt.abstractNums[nd.abstractID]
	if !ok {
		return nil, nd, false
	}
	if an.numStyleLink != "" && len(an.levels) == 0 {
		if def, ok := nt.styles.Style(an.numStyleLink); ok {
			if linked, ok := def.PPr.Child("w:numPr").ChildVal("w:numId"); ok && linked != numID {
				if lan, _, ok := nt.abstractFor(linked); ok {
					return lan, nd, true
				}
			}
		}
	}
	return an, nd, true
}

// Level returns the effective definition of a level of a num instance.
func (nt *NumberingTable) Level(numID string, ilvl int) (ListLevel, bool) {
	an, nd, ok := nt.abstractFor(numID)
	if !ok {
		return ListLevel{}, false
	}
	l, ok := an.levels[ilvl]
	if o, has := nd.overrides[ilvl]; has {
		if o.level != nil {
			l, ok = *o.level, true
		}
		if o.hasStart {
			l.Start = o.start
		}
	}
	return l, ok
}

// listCounters tracks running list numbers within one conversion.
type listCounters struct {
	counts map[string][]int // numId -> count per level
}

func newListCounters() *listCounters {
	return &listCounters{counts: make(map[string][]int)}
}

// next advances the counter of numID at ilvl and returns the path of counts
// from level 0 to ilvl. Deeper levels restart.
func (lc *listCounters) next(nt *NumberingTable, numID string, ilvl int) []int {
	counts := lc.counts[numID]
	if len(counts) < 9 {
		grown := make([]int, 9)
		copy(grown, counts)
		counts = grown
	}
	if ilvl < 0 || ilvl > 8 {
		ilvl = 0
	}
	for lvl := 0; lvl < ilvl; lvl++ {
		if counts[lvl] == 0 {
			counts[lvl] = startOf(nt, numID, lvl)
		}
	}
	if counts[ilvl] == 0 {
		counts[ilvl] = startOf(nt, numID, ilvl)
	} else {
		counts[ilvl]++
	}
	for lvl := ilvl + 1; lvl < len(counts); lvl++ {
		counts[lvl] = 0
	}
	lc.counts[numID] = counts
	return append([]int(nil), counts[:ilvl+1]...)
}

func startOf(nt *NumberingTable, numID string, ilvl int) int {
	if l, ok := nt.Level(numID, ilvl); ok {
		return l.Start
	}
	return 1
}

// listRendering computes the marker of a list paragraph and advances the
// counters. ok is false for numId 0, which removes numbering.
func (c *Context) listRendering(numID string, ilvl int) (model.Attrs, bool) {
	if numID == "" || numID == "0" {
		return nil, false
	}
	level, ok := c.numbering.Level(numID, ilvl)
	if !ok {
		c.malformed(nil, "numbering definition not found for numId "+numID)
		return nil, false
	}
	path := c.state.lists.next(c.numbering, numID, ilvl)

	pathAttr := make([]any, len(path))
	for i, n := range path {
		pathAttr[i] = n
	}
	return model.Attrs{
		"markerText":    c.numbering.markerText(numID, level, path),
		"numFmt":        level.NumFmt,
		"justification": level.Jc,
		"level":         ilvl,
		"numId":         numID,
		"path":          pathAttr,
	}, true
}

// markerText expands the %N placeholders of lvlText.
func (nt *NumberingTable) markerText(numID string, level ListLevel, path []int) string {
	if level.NumFmt == "bullet" {
		return getBulletChar(level.LvlText, level.Level)
	}
	if level.NumFmt == "none" {
		return ""
	}
	text := level.LvlText
	if text == "" {
		text = "%" + strconv.Itoa(level.Level+1) + "."
	}
	for i := len(path); i >= 1; i-- {
		ph := "%" + strconv.Itoa(i)
		if !strings.Contains(text, ph) {
			continue
		}
		fmtName := level.NumFmt
		if i-1 != level.Level {
			if l, ok := nt.Level(numID, i-1); ok {
				fmtName = l.NumFmt
			}
		}
		text = strings.ReplaceAll(text, ph, formatNumber(path[i-1], fmtName))
	}
	return text
}

// formatNumber renders n in a w:numFmt format.
func formatNumber(n int, numFmt string) string {
	switch numFmt {
	case "lowerLetter":
		return letters(n, false)
	case "upperLetter":
		return letters(n, true)
	case "lowerRoman":
		return strings.ToLower(roman(n))
	case "upperRoman":
		return roman(n)
	case "decimalZero":
		if n < 10 {
			return "0" + strconv.Itoa(n)
		}
		return strconv.Itoa(n)
	case "ordinal":
		return strconv.Itoa(n) + ordinalSuffix(n)
	default:
		return strconv.Itoa(n)
	}
}

// letters renders 1..26 as a..z, 27 as aa, 28 as bb (Word repeats the letter).
func letters(n int, upper bool) string {
	if n < 1 {
		return ""
	}
	base := byte('a')
	if upper {
		base = 'A'
	}
	ch := string(rune(base + byte((n-1)%26)))
	return strings.Repeat(ch, (n-1)/26+1)
}

func roman(n int) string {
	if n < 1 || n > 3999 {
		return strconv.Itoa(n)
	}
	vals := []int{1000, 900, 500, 400, 100, 90, 50, 40, 10, 9, 5, 4, 1}
	syms := []string{"M", "CM", "D", "CD", "C", "XC", "L", "XL", "X", "IX", "V", "IV", "I"}
	var sb strings.Builder
	for i, v := range vals {
		for n >= v {
			sb.WriteString(syms[i])
			n -= v
		}
	}
	return sb.String()
}

func ordinalSuffix(n int) string {
	if n%100 >= 11 && n%100 <= 13 {
		return "th"
	}
	switch n % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

// getBulletChar returns the appropriate bullet character for the level.
func getBulletChar(lvlText string, level int) string {
	// Common Word bullet characters (standard Unicode)
	bullets := []string{"•", "○", "■", "□", "▪", "▫", "►", "◦"}

	// If lvlText specifies a character, check if it's usable
	if lvlText != "" && !strings.Contains(lvlText, "%") {
		if isRenderableBullet(lvlText) {
			return lvlText
		}
	}

	// Default based on level
	if level >= 0 && level < len(bullets) {
		return bullets[level]
	}
	return "•"
}

// isRenderableBullet checks if a bullet character will render properly.
// Symbol and Wingdings bullets live in the Private Use Area (U+E000-U+F8FF).
func isRenderableBullet(s string) bool {
	for _, r := range s {
		if r >= 0xE000 && r <= 0xF8FF {
			return false
		}
		if r < 0x20 {
			return false
		}
	}
	return len(s) > 0
}
