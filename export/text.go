package export

import (
	"sort"
	"strings"

	"github.com/tsawler/wordtree/docx"
	"github.com/tsawler/wordtree/model"
)

// plainText renders one line per paragraph. Table rows are one line with
// cells separated by tabs; deleted tracked text is left out.
func plainText(res *docx.Result, cfg Config) string {
	var lines []string
	if cfg.IncludeHeaders {
		for _, n := range sortedParts(res.Headers) {
			lines = appendBlocks(lines, n.Content)
		}
	}
	lines = appendBlocks(lines, res.Document.Content)
	if cfg.IncludeHeaders {
		for _, n := range sortedParts(res.Footers) {
			lines = appendBlocks(lines, n.Content)
		}
	}

	if cfg.IncludeNotes {
		for _, notes := range [][]docx.NoteEntry{res.Footnotes, res.Endnotes} {
			for _, e := range notes {
				lines = append(lines, "["+e.ID+"] "+blocksText(e.Content, " "))
			}
		}
	}
	if cfg.IncludeComments {
		for _, e := range sortedComments(res.Comments) {
			lines = append(lines, "Comment "+e.ID+" ("+e.Author+"): "+blocksText(e.Content, " "))
		}
	}

	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

func appendBlocks(lines []string, nodes []*model.Node) []string {
	for _, n := range nodes {
		switch n.Kind {
		case model.KindTable:
			for _, row := range n.Content {
				var cells []string
				for _, cell := range row.Content {
					if cell.Kind != model.KindTableCell || cell.Attrs.Bool("continueMerge") {
						continue
					}
					cells = append(cells, blocksText(cell.Content, " "))
				}
				lines = append(lines, strings.Join(cells, "\t"))
			}
		case model.KindTocWrapper, model.KindStructuredContent:
			lines = appendBlocks(lines, n.Content)
		case model.KindParagraph:
			line := inlineText(n)
			if lr := n.Attrs.Map("listRendering"); lr != nil {
				if marker := lr.String("markerText"); marker != "" {
					line = marker + " " + line
				}
			}
			lines = append(lines, line)
		default:
			lines = append(lines, inlineText(n))
		}
	}
	return lines
}

func blocksText(nodes []*model.Node, sep string) string {
	return strings.Join(appendBlocks(nil, nodes), sep)
}

// inlineText is the text of n without deleted tracked text.
func inlineText(n *model.Node) string {
	var sb strings.Builder
	n.Walk(func(c *model.Node) bool {
		switch c.Kind {
		case model.KindText:
			if !deleted(c.Marks) {
				sb.WriteString(c.Text)
			}
		case model.KindTab:
			sb.WriteString("\t")
		case model.KindLineBreak:
			sb.WriteString("\n")
		}
		return true
	})
	return sb.String()
}

func deleted(marks []model.Mark) bool {
	return model.HasMark(marks, model.MarkTrackDelete)
}

// sortedComments orders comments by range start, unanchored comments last.
func sortedComments(entries []docx.CommentEntry) []docx.CommentEntry {
	out := append([]docx.CommentEntry(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.HasRange() != b.HasRange() {
			return a.HasRange()
		}
		return a.RangeStart < b.RangeStart
	})
	return out
}
