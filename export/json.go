package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/tsawler/wordtree/docx"
	"github.com/tsawler/wordtree/model"
	"github.com/tsawler/wordtree/xmlnode"
)

func writeJSON(w io.Writer, res *docx.Result, cfg Config) error {
	out := *res
	if !cfg.IncludeRaw {
		out = stripResult(res)
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if cfg.PrettyPrint {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(&out); err != nil {
		return fmt.Errorf("export: encoding json: %w", err)
	}
	return nil
}

// stripResult returns a copy of res without stored XML fragments.
func stripResult(res *docx.Result) docx.Result {
	out := *res
	out.Document = stripNode(res.Document)
	out.Headers = stripNodeMap(res.Headers)
	out.Footers = stripNodeMap(res.Footers)

	out.Comments = make([]docx.CommentEntry, len(res.Comments))
	for i, c := range res.Comments {
		c.Content = stripNodes(c.Content)
		out.Comments[i] = c
	}
	out.Footnotes = stripNotes(res.Footnotes)
	out.Endnotes = stripNotes(res.Endnotes)
	return out
}

func stripNotes(entries []docx.NoteEntry) []docx.NoteEntry {
	if entries == nil {
		return nil
	}
	out := make([]docx.NoteEntry, len(entries))
	for i, e := range entries {
		e.Content = stripNodes(e.Content)
		out[i] = e
	}
	return out
}

func stripNodeMap(m map[string]*model.Node) map[string]*model.Node {
	if m == nil {
		return nil
	}
	out := make(map[string]*model.Node, len(m))
	for k, n := range m {
		out[k] = stripNode(n)
	}
	return out
}

func stripNodes(nodes []*model.Node) []*model.Node {
	if nodes == nil {
		return nil
	}
	out := make([]*model.Node, len(nodes))
	for i, n := range nodes {
		out[i] = stripNode(n)
	}
	return out
}

func stripNode(n *model.Node) *model.Node {
	if n == nil {
		return nil
	}
	return &model.Node{
		Kind:    n.Kind,
		Attrs:   stripAttrs(n.Attrs),
		Content: stripNodes(n.Content),
		Marks:   stripMarks(n.Marks),
		Text:    n.Text,
	}
}

func stripMarks(marks []model.Mark) []model.Mark {
	if marks == nil {
		return nil
	}
	out := make([]model.Mark, len(marks))
	for i, m := range marks {
		out[i] = model.Mark{Type: m.Type, Attrs: stripAttrs(m.Attrs)}
	}
	return out
}

// stripAttrs drops XML fragments, including those nested in maps and mark
// snapshots. Source attribute maps are kept; they are plain strings.
func stripAttrs(a model.Attrs) model.Attrs {
	if a == nil {
		return nil
	}
	out := make(model.Attrs, len(a))
	for k, v := range a {
		switch t := v.(type) {
		case *xmlnode.Element:
			continue
		case model.Attrs:
			v = stripAttrs(t)
		case map[string]any:
			v = stripAttrs(model.Attrs(t))
		case []model.Mark:
			v = stripMarks(t)
		}
		out[k] = v
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
