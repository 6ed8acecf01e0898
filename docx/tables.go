package docx

import (
	"strings"

	"github.com/tsawler/wordtree/model"
	"github.com/tsawler/wordtree/units"
	"github.com/tsawler/wordtree/xmlnode"
)

// tableScope is the grid state shared by the rows and cells of one table.
type tableScope struct {
	grid    []float64
	borders model.Attrs
	// cursor is the grid column of the next cell in the current row.
	cursor *int
}

// widths returns the grid widths covered by a cell, or nil when the grid
// does not describe those columns.
func (s *tableScope) widths(col, span int) []float64 {
	if col < 0 || col+span > len(s.grid) {
		return nil
	}
	return append([]float64(nil), s.grid[col:col+span]...)
}

func (c *Context) withTable(s *tableScope) *Context {
	cp := c.derive()
	cp.table = s
	return cp
}

// tableScope returns the scope of the enclosing row, creating a detached
// one for cells found outside a table.
func (c *Context) tableScope() *tableScope {
	if c.table != nil && c.table.cursor != nil {
		return c.table
	}
	col := 0
	return &tableScope{cursor: &col}
}

var tableAxes = []propertyAxis{
	{"tableStyleId", "w:tblStyle", parseValAttr, buildValAttr("w:tblStyle")},
	{"tableWidth", "w:tblW", parseTableWidth, buildTableWidth("w:tblW")},
	{"justification", "w:jc", parseValAttr, buildValAttr("w:jc")},
	{"tableIndent", "w:tblInd", parseTableWidth, buildTableWidth("w:tblInd")},
	{"borders", "w:tblBorders", parseBorders, buildBorders("w:tblBorders")},
	{"tableLayout", "w:tblLayout", parseLayout, buildLayout},
	{"cellMargins", "w:tblCellMar", parseMargins, buildMargins("w:tblCellMar")},
}

// Table axes whose values merge entry by entry across style tiers.
var mergedTableAxes = map[string]bool{"borders": true, "cellMargins": true}

var rowAxes = []propertyAxis{
	{"gridBefore", "w:gridBefore", parseIntVal, buildIntVal("w:gridBefore")},
	{"gridAfter", "w:gridAfter", parseIntVal, buildIntVal("w:gridAfter")},
	{"cantSplit", "w:cantSplit", parseOnOff, buildOnOff("w:cantSplit")},
	{"trHeight", "w:trHeight", parseRowHeight, buildRowHeight},
	{"tableHeader", "w:tblHeader", parseOnOff, buildOnOff("w:tblHeader")},
}

var cellAxes = []propertyAxis{
	{"colspan", "w:gridSpan", parseIntVal, buildGridSpan},
	{"vMerge", "w:vMerge", parseVMerge, buildVMerge},
	{"borders", "w:tcBorders", parseBorders, buildBorders("w:tcBorders")},
	{"background", "w:shd", parseShading, buildShading},
	{"verticalAlign", "w:vAlign", parseValAttr, buildValAttr("w:vAlign")},
}

var tblPrOrder = []string{
	"w:tblStyle", "w:tblpPr", "w:tblOverlap", "w:bidiVisual", "w:tblStyleRowBandSize",
	"w:tblStyleColBandSize", "w:tblW", "w:jc", "w:tblCellSpacing", "w:tblInd", "w:tblBorders",
	"w:shd", "w:tblLayout", "w:tblCellMar", "w:tblLook", "w:tblCaption", "w:tblDescription",
	"w:tblPrChange",
}

var trPrOrder = []string{
	"w:cnfStyle", "w:divId", "w:gridBefore", "w:gridAfter", "w:wBefore", "w:wAfter",
	"w:cantSplit", "w:trHeight", "w:tblHeader", "w:tblCellSpacing", "w:jc", "w:hidden",
	"w:ins", "w:del", "w:trPrChange",
}

var tcPrOrder = []string{
	"w:cnfStyle", "w:tcW", "w:gridSpan", "w:hMerge", "w:vMerge", "w:tcBorders", "w:shd",
	"w:noWrap", "w:tcMar", "w:textDirection", "w:tcFitText", "w:vAlign", "w:hideMark",
	"w:headers", "w:cellIns", "w:cellDel", "w:cellMerge", "w:tcPrChange",
}

// Border edges in output order. start/end are read as left/right.
var borderEdges = []string{"top", "left", "bottom", "right", "insideH", "insideV"}

var edgeAliases = map[string]string{"w:start": "left", "w:end": "right"}

func parseBorders(el *xmlnode.Element) (any, bool) {
	out := model.Attrs{}
	for _, b := range el.ElementChildren() {
		edge, ok := edgeAliases[b.Name]
		if !ok {
			edge = b.Local()
		}
		line := model.Attrs{"val": b.AttrOr("w:val", "nil")}
		if sz, ok := units.ParseNumber(b.AttrOr("w:sz", "")); ok {
			line["size"] = units.EighthPointsToPixels(sz)
		}
		if sp, ok := units.ParseInt(b.AttrOr("w:space", "")); ok {
			line["space"] = sp
		}
		if col, ok := units.NormalizeColor(b.AttrOr("w:color", "")); ok {
			line["color"] = col
		}
		if theme, ok := b.Attr("w:themeColor"); ok {
			line["themeColor"] = theme
		}
		out[edge] = line
	}
	return out, len(out) > 0
}

func buildBorders(tag string) func(any) *xmlnode.Element {
	return func(v any) *xmlnode.Element {
		a := model.Attrs{"v": v}.Map("v")
		var edges []*xmlnode.Element
		for _, edge := range borderEdges {
			line := a.Map(edge)
			if line == nil {
				continue
			}
			attrs := map[string]string{"w:val": line.String("val")}
			if attrs["w:val"] == "" {
				attrs["w:val"] = "single"
			}
			if px, ok := line.Float("size"); ok {
				attrs["w:sz"] = units.FormatInt(units.PixelsToEighthPoints(px))
			}
			if sp, ok := line.Int("space"); ok {
				attrs["w:space"] = units.FormatInt(sp)
			}
			if col := line.String("color"); col != "" {
				attrs["w:color"] = units.DenormalizeColor(col)
			}
			if theme := line.String("themeColor"); theme != "" {
				attrs["w:themeColor"] = theme
			}
			edges = append(edges, xmlnode.New("w:"+edge, attrs))
		}
		if len(edges) == 0 {
			return nil
		}
		return xmlnode.New(tag, nil, edges...)
	}
}

// Widths are pixels for dxa, percent for pct and raw numbers otherwise.
func parseTableWidth(el *xmlnode.Element) (any, bool) {
	typ := el.AttrOr("w:type", "dxa")
	out := model.Attrs{"type": typ}
	raw := el.AttrOr("w:w", "")
	if v, ok := units.ParseNumber(raw); ok {
		switch typ {
		case "dxa":
			out["width"] = units.TwipsToPixels(v)
		case "pct":
			if strings.HasSuffix(raw, "%") {
				out["width"] = v
			} else {
				out["width"] = units.Round(v / 50)
			}
		default:
			out["width"] = v
		}
	}
	return out, true
}

func buildTableWidth(tag string) func(any) *xmlnode.Element {
	return func(v any) *xmlnode.Element {
		a := model.Attrs{"v": v}.Map("v")
		if a == nil {
			return nil
		}
		typ := a.String("type")
		if typ == "" {
			typ = "dxa"
		}
		attrs := map[string]string{"w:type": typ}
		if w, ok := a.Float("width"); ok {
			switch typ {
			case "dxa":
				attrs["w:w"] = units.FormatInt(units.PixelsToTwips(w))
			case "pct":
				attrs["w:w"] = units.FormatInt(int(w*50 + 0.5))
			default:
				attrs["w:w"] = units.FormatFloat(w)
			}
		}
		return xmlnode.New(tag, attrs)
	}
}

func parseLayout(el *xmlnode.Element) (any, bool) {
	v, ok := el.Attr("w:type")
	return v, ok && v != ""
}

func buildLayout(v any) *xmlnode.Element {
	s, _ := v.(string)
	if s == "" {
		return nil
	}
	return xmlnode.New("w:tblLayout", map[string]string{"w:type": s})
}

func parseMargins(el *xmlnode.Element) (any, bool) {
	out := model.Attrs{}
	for _, m := range el.ElementChildren() {
		side, ok := edgeAliases[m.Name]
		if !ok {
			side = m.Local()
		}
		if px, ok := units.TwipsAttrToPixels(m.AttrOr("w:w", "")); ok {
			out[side] = px
		}
	}
	return out, len(out) > 0
}

func buildMargins(tag string) func(any) *xmlnode.Element {
	return func(v any) *xmlnode.Element {
		a := model.Attrs{"v": v}.Map("v")
		var sides []*xmlnode.Element
		for _, side := range []string{"top", "left", "bottom", "right"} {
			if px, ok := a.Float(side); ok {
				sides = append(sides, xmlnode.New("w:"+side, map[string]string{
					"w:w":    units.FormatInt(units.PixelsToTwips(px)),
					"w:type": "dxa",
				}))
			}
		}
		if len(sides) == 0 {
			return nil
		}
		return xmlnode.New(tag, nil, sides...)
	}
}

func parseRowHeight(el *xmlnode.Element) (any, bool) {
	px, ok := units.TwipsAttrToPixels(el.AttrOr("w:val", ""))
	if !ok {
		return nil, false
	}
	out := model.Attrs{"value": px}
	if rule, ok := el.Attr("w:hRule"); ok {
		out["rule"] = rule
	}
	return out, true
}

func buildRowHeight(v any) *xmlnode.Element {
	a := model.Attrs{"v": v}.Map("v")
	px, ok := a.Float("value")
	if !ok {
		return nil
	}
	attrs := map[string]string{"w:val": units.FormatInt(units.PixelsToTwips(px))}
	if rule := a.String("rule"); rule != "" {
		attrs["w:hRule"] = rule
	}
	return xmlnode.New("w:trHeight", attrs)
}

func buildGridSpan(v any) *xmlnode.Element {
	n, ok := model.Attrs{"v": v}.Int("v")
	if !ok || n <= 1 {
		return nil
	}
	return xmlnode.Val("w:gridSpan", units.FormatInt(n))
}

// A w:vMerge without a value continues the merge above.
func parseVMerge(el *xmlnode.Element) (any, bool) {
	v := el.AttrOr("w:val", "continue")
	if v == "" {
		v = "continue"
	}
	return v, true
}

func buildVMerge(v any) *xmlnode.Element {
	switch s, _ := v.(string); s {
	case "restart":
		return xmlnode.Val("w:vMerge", "restart")
	case "continue":
		return xmlnode.New("w:vMerge", nil)
	}
	return nil
}

func parseShading(el *xmlnode.Element) (any, bool) {
	fill, ok := units.NormalizeColor(el.AttrOr("w:fill", ""))
	if !ok || fill == units.ColorAuto {
		return nil, false
	}
	return fill, true
}

func buildShading(v any) *xmlnode.Element {
	s, _ := v.(string)
	if s == "" {
		return nil
	}
	return xmlnode.New("w:shd", map[string]string{
		"w:val":   "clear",
		"w:color": "auto",
		"w:fill":  units.DenormalizeColor(s),
	})
}

func parseGrid(tblGrid *xmlnode.Element) []float64 {
	var grid []float64
	for _, col := range tblGrid.ChildrenNamed("w:gridCol") {
		px, _ := units.TwipsAttrToPixels(col.AttrOr("w:w", "0"))
		grid = append(grid, px)
	}
	return grid
}

// floatSlice reads a stored width list, which is []any after a JSON round trip.
func floatSlice(v any) []float64 {
	switch s := v.(type) {
	case []float64:
		return s
	case []any:
		out := make([]float64, 0, len(s))
		for _, e := range s {
			f, _ := model.Attrs{"v": e}.Float("v")
			out = append(out, f)
		}
		return out
	}
	return nil
}

// Word's cell margins when neither the table nor any style sets them, in
// twips.
const (
	defaultCellMarginTop    = 0
	defaultCellMarginSide   = 108
	defaultCellMarginBottom = 0
)

// builtinTableAttrs is the lowest tier of table properties.
func builtinTableAttrs() model.Attrs {
	return model.Attrs{
		"cellMargins": model.Attrs{
			"top":    units.TwipsToPixels(defaultCellMarginTop),
			"left":   units.TwipsToPixels(defaultCellMarginSide),
			"bottom": units.TwipsToPixels(defaultCellMarginBottom),
			"right":  units.TwipsToPixels(defaultCellMarginSide),
		},
	}
}

// tableInherited merges the built-in defaults, the table properties of the
// default table style and then of styleID's chain, base first.
func (st *StyleTable) tableInherited(styleID string) model.Attrs {
	chain := st.Chain(st.DefaultStyle(StyleTypeTable))
	if styleID != "" {
		chain = append(chain, st.Chain(styleID)...)
	}
	out := builtinTableAttrs()
	for _, def := range chain {
		mergeTableAttrs(out, parseAxes(def.TblPr, tableAxes))
	}
	delete(out, "tableStyleId")
	return out
}

func mergeTableAttrs(dst, src model.Attrs) {
	for k, v := range src {
		if !mergedTableAxes[k] {
			dst[k] = v
			continue
		}
		merged := dst.Map(k).Clone()
		if merged == nil {
			merged = model.Attrs{}
		}
		for entry, ev := range src.Map(k) {
			merged[entry] = ev
		}
		dst[k] = merged
	}
}

func sameValue(a, b any) bool {
	return model.Attrs{"v": a}.Equal(model.Attrs{"v": b})
}

// ownTableAttrs drops the values the node only has because its style
// provides them, so decode writes inline properties alone.
func ownTableAttrs(attrs, inherited, inline model.Attrs) model.Attrs {
	out := attrs.Clone()
	for _, ax := range tableAxes {
		inh, ok := inherited[ax.key]
		if !ok {
			continue
		}
		if !mergedTableAxes[ax.key] {
			if _, isInline := inline[ax.key]; !isInline && sameValue(out[ax.key], inh) {
				delete(out, ax.key)
			}
			continue
		}
		cur, inhMap, inMap := out.Map(ax.key), model.Attrs{"v": inh}.Map("v"), inline.Map(ax.key)
		own := model.Attrs{}
		for entry, v := range cur {
			if _, isInline := inMap[entry]; !isInline && sameValue(v, inhMap[entry]) {
				continue
			}
			own[entry] = v
		}
		if len(own) == 0 {
			delete(out, ax.key)
		} else {
			out[ax.key] = own
		}
	}
	return out
}

// tableTranslator handles w:tbl. Properties resolve inline over the
// referenced style chain over the default table style.
type tableTranslator struct{}

func (tableTranslator) Name() string     { return "table" }
func (tableTranslator) Kind() model.Kind { return model.KindTable }

func (tableTranslator) Encode(c *Context, elems []*xmlnode.Element) (Encoded, error) {
	tbl := elems[0]
	tblPr := tbl.Child("w:tblPr")
	tblGrid := tbl.Child("w:tblGrid")
	inline := parseAxes(tblPr, tableAxes)

	styleID := inline.String("tableStyleId")
	if _, ok := c.styles.Style(styleID); styleID != "" && !ok {
		c.malformed(tbl, "table style "+styleID+" not found")
	}
	attrs := c.styles.tableInherited(styleID)
	mergeTableAttrs(attrs, inline)

	grid := parseGrid(tblGrid)
	if grid != nil {
		attrs["grid"] = grid
	}
	if tblPr != nil {
		attrs["tableProperties"] = tblPr
	}
	if tblGrid != nil {
		attrs["tableGrid"] = tblGrid
	}
	if len(tbl.Attrs) > 0 {
		attrs["xmlAttributes"] = tbl.Attrs
	}

	var children []*xmlnode.Element
	for _, ch := range tbl.ElementChildren() {
		if ch.Name != "w:tblPr" && ch.Name != "w:tblGrid" {
			children = append(children, ch)
		}
	}
	scope := &tableScope{grid: grid, borders: attrs.Map("borders")}
	rows := foldVerticalMerges(c.withTable(scope).encode(children))
	return single(model.NewNode(model.KindTable, attrs, rows...)), nil
}

// foldVerticalMerges sets rowspan on each cell that starts a vertical merge
// to the number of rows it covers. Continuation cells are kept.
func foldVerticalMerges(rows []*model.Node) []*model.Node {
	type cellPos struct{ row, cell int }
	origin := make(map[int]cellPos)
	spans := make(map[cellPos]int)

	for ri, row := range rows {
		if row.Kind != model.KindTableRow {
			continue
		}
		for ci, cell := range row.Content {
			if cell.Kind != model.KindTableCell {
				continue
			}
			col, _ := cell.Attrs.Int("colIndex")
			switch cell.Attrs.String("vMerge") {
			case "restart":
				origin[col] = cellPos{ri, ci}
				spans[cellPos{ri, ci}] = 1
			case "continue":
				if o, ok := origin[col]; ok {
					spans[o]++
				}
			default:
				delete(origin, col)
			}
		}
	}

	out := make([]*model.Node, len(rows))
	copy(out, rows)
	for pos, span := range spans {
		if span <= 1 {
			continue
		}
		row := out[pos.row]
		content := append([]*model.Node(nil), row.Content...)
		cell := content[pos.cell]
		content[pos.cell] = cell.WithAttrs(cell.Attrs.With("rowspan", span))
		out[pos.row] = row.WithContent(content...)
	}
	return out
}

func (tableTranslator) Decode(x *Exporter, n *model.Node) ([]*xmlnode.Element, error) {
	stored := n.Attrs.Raw("tableProperties")
	inherited := x.styles.tableInherited(n.Attrs.String("tableStyleId"))
	own := ownTableAttrs(n.Attrs, inherited, parseAxes(stored, tableAxes))
	tblPr := buildAxes(stored, own, tableAxes, "w:tblPr", tblPrOrder)
	if tblPr == nil {
		tblPr = xmlnode.New("w:tblPr", nil)
	}

	rows, err := x.DecodeNodes(n.Content)
	if err != nil {
		return nil, err
	}
	children := append([]*xmlnode.Element{tblPr, tableGridElement(n.Attrs)}, rows...)
	return []*xmlnode.Element{xmlnode.New("w:tbl", stringMap(n.Attrs["xmlAttributes"]), children...)}, nil
}

// tableGridElement keeps the stored grid when the widths are unchanged.
func tableGridElement(attrs model.Attrs) *xmlnode.Element {
	grid := floatSlice(attrs["grid"])
	stored := attrs.Raw("tableGrid")
	if stored != nil && sameValue(parseGrid(stored), grid) {
		return stored
	}
	cols := make([]*xmlnode.Element, 0, len(grid))
	for _, w := range grid {
		cols = append(cols, xmlnode.New("w:gridCol", map[string]string{"w:w": units.FormatInt(units.PixelsToTwips(w))}))
	}
	return xmlnode.New("w:tblGrid", nil, cols...)
}

// tableRowTranslator handles w:tr. Row borders come from the table's
// inside edges.
type tableRowTranslator struct{}

func (tableRowTranslator) Name() string     { return "tableRow" }
func (tableRowTranslator) Kind() model.Kind { return model.KindTableRow }

func (tableRowTranslator) Encode(c *Context, elems []*xmlnode.Element) (Encoded, error) {
	tr := elems[0]
	trPr := tr.Child("w:trPr")
	attrs := parseAxes(trPr, rowAxes)
	if h := attrs.Map("trHeight"); h != nil {
		attrs["rowHeight"], _ = h.Float("value")
		if rule := h.String("rule"); rule != "" {
			attrs["heightRule"] = rule
		}
		delete(attrs, "trHeight")
	}
	if trPr != nil {
		attrs["rowProperties"] = trPr
	}
	if ex := tr.Child("w:tblPrEx"); ex != nil {
		attrs["tablePropertyExceptions"] = ex
	}
	if len(tr.Attrs) > 0 {
		attrs["xmlAttributes"] = tr.Attrs
	}

	var parent tableScope
	if c.table != nil {
		parent = *c.table
	}
	if b := rowBorders(parent.borders); b != nil {
		attrs["borders"] = b
	}

	cursor, _ := attrs.Int("gridBefore")
	scope := &tableScope{grid: parent.grid, borders: parent.borders, cursor: &cursor}

	var children []*xmlnode.Element
	for _, ch := range tr.ElementChildren() {
		if ch.Name != "w:trPr" && ch.Name != "w:tblPrEx" {
			children = append(children, ch)
		}
	}
	cells := c.withTable(scope).encode(children)
	return single(model.NewNode(model.KindTableRow, attrs, cells...)), nil
}

func rowBorders(table model.Attrs) model.Attrs {
	out := model.Attrs{}
	if b := table.Map("insideH"); b != nil {
		out["bottom"] = b
	}
	if b := table.Map("insideV"); b != nil {
		out["right"] = b
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (tableRowTranslator) Decode(x *Exporter, n *model.Node) ([]*xmlnode.Element, error) {
	attrs := n.Attrs.Without("rowHeight", "heightRule", "borders")
	if h, ok := n.Attrs.Float("rowHeight"); ok {
		height := model.Attrs{"value": h}
		if rule := n.Attrs.String("heightRule"); rule != "" {
			height["rule"] = rule
		}
		attrs["trHeight"] = height
	}
	var children []*xmlnode.Element
	if ex := n.Attrs.Raw("tablePropertyExceptions"); ex != nil {
		children = append(children, ex)
	}
	if trPr := buildAxes(n.Attrs.Raw("rowProperties"), attrs, rowAxes, "w:trPr", trPrOrder); trPr != nil {
		children = append(children, trPr)
	}
	cells, err := x.DecodeNodes(n.Content)
	if err != nil {
		return nil, err
	}
	children = append(children, cells...)
	return []*xmlnode.Element{xmlnode.New("w:tr", stringMap(n.Attrs["xmlAttributes"]), children...)}, nil
}

// tableCellTranslator handles w:tc and advances the row's column cursor.
type tableCellTranslator struct{}

func (tableCellTranslator) Name() string     { return "tableCell" }
func (tableCellTranslator) Kind() model.Kind { return model.KindTableCell }

func (tableCellTranslator) Encode(c *Context, elems []*xmlnode.Element) (Encoded, error) {
	tc := elems[0]
	tcPr := tc.Child("w:tcPr")
	attrs := parseAxes(tcPr, cellAxes)

	span, ok := attrs.Int("colspan")
	if !ok || span < 1 {
		span = 1
	}
	scope := c.tableScope()
	col := *scope.cursor
	*scope.cursor += span

	attrs["colIndex"] = col
	attrs["colspan"] = span
	attrs["rowspan"] = 1
	if w := scope.widths(col, span); w != nil {
		attrs["colwidth"] = w
	}
	if attrs.String("vMerge") == "continue" {
		attrs["continueMerge"] = true
	}
	if tcPr != nil {
		attrs["cellProperties"] = tcPr
	}
	if len(tc.Attrs) > 0 {
		attrs["xmlAttributes"] = tc.Attrs
	}

	var children []*xmlnode.Element
	for _, ch := range tc.ElementChildren() {
		if ch.Name != "w:tcPr" {
			children = append(children, ch)
		}
	}
	content := c.withTable(nil).encode(children)
	return single(model.NewNode(model.KindTableCell, attrs, content...)), nil
}

func (tableCellTranslator) Decode(x *Exporter, n *model.Node) ([]*xmlnode.Element, error) {
	attrs := n.Attrs
	if attrs.String("vMerge") == "" {
		if attrs.Bool("continueMerge") {
			attrs = attrs.With("vMerge", "continue")
		} else if rs, _ := attrs.Int("rowspan"); rs > 1 {
			attrs = attrs.With("vMerge", "restart")
		}
	}

	var children []*xmlnode.Element
	if tcPr := buildAxes(n.Attrs.Raw("cellProperties"), attrs, cellAxes, "w:tcPr", tcPrOrder); tcPr != nil {
		children = append(children, tcPr)
	}
	content, err := x.DecodeNodes(n.Content)
	if err != nil {
		return nil, err
	}
	// A cell must end with a paragraph.
	if len(content) == 0 || !content[len(content)-1].Is("w:p") {
		content = append(content, xmlnode.New("w:p", nil))
	}
	children = append(children, content...)
	return []*xmlnode.Element{xmlnode.New("w:tc", stringMap(n.Attrs["xmlAttributes"]), children...)}, nil
}
