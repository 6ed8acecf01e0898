package docx

import (
	"fmt"
	"time"

	"github.com/tsawler/wordtree/model"
	"github.com/tsawler/wordtree/xmlnode"
)

// ThreadSource tells which rule assigned a comment's parent.
type ThreadSource string

const (
	ThreadNone         ThreadSource = ""
	ThreadExtended     ThreadSource = "extended"
	ThreadNested       ThreadSource = "nestedRange"
	ThreadSharedStart  ThreadSource = "sharedStart"
	ThreadMissingRange ThreadSource = "missingRange"
)

// CommentEntry is one comment of word/comments.xml joined with its range in
// the body.
type CommentEntry struct {
	ID         string        `json:"id"`
	InternalID string        `json:"internalId"`
	Author     string        `json:"author,omitempty"`
	Initials   string        `json:"initials,omitempty"`
	Date       string        `json:"date,omitempty"`
	CreatedAt  time.Time     `json:"createdAt,omitempty"`
	Done       bool          `json:"done,omitempty"`
	ParaIDs    []string      `json:"paraIds,omitempty"`
	ParentID   string        `json:"parentId,omitempty"`
	Content    []*model.Node `json:"content,omitempty"`

	// RangeStart and RangeEnd are text positions in the body, -1 when the
	// comment has no range markers.
	RangeStart   int          `json:"rangeStart"`
	RangeEnd     int          `json:"rangeEnd"`
	ThreadSource ThreadSource `json:"threadSource,omitempty"`
}

// HasRange reports whether range markers were found for the comment.
func (e CommentEntry) HasRange() bool { return e.RangeStart >= 0 }

// commentExtended is one w15:commentEx of word/commentsExtended.xml.
type commentExtended struct {
	ParaID       string
	ParentParaID string
	Done         bool
}

// Word writes comment dates without a zone; newer versions add one.
var commentDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
}

func parseCommentDate(s string) time.Time {
	for _, layout := range commentDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// parseComments converts the w:comment children of word/comments.xml.
func (c *Context) parseComments(root *xmlnode.Element) []CommentEntry {
	if root == nil {
		return nil
	}
	cc := c.withPart(PartComments, c.partRels(PartComments))
	var out []CommentEntry
	for _, cm := range root.ChildrenNamed("w:comment") {
		e := CommentEntry{
			ID:         cm.AttrOr("w:id", ""),
			InternalID: c.opts.NewID(),
			Author:     cm.AttrOr("w:author", ""),
			Initials:   cm.AttrOr("w:initials", ""),
			Date:       cm.AttrOr("w:date", ""),
			RangeStart: -1,
			RangeEnd:   -1,
		}
		e.CreatedAt = parseCommentDate(e.Date)
		for _, p := range cm.ChildrenNamed("w:p") {
			if id, ok := p.Attr("w14:paraId"); ok && id != "" {
				e.ParaIDs = append(e.ParaIDs, id)
			}
		}
		e.Content = cc.encode(cm.ElementChildren())
		out = append(out, e)
	}
	return out
}

// parseCommentsExtended reads word/commentsExtended.xml.
func parseCommentsExtended(root *xmlnode.Element) []commentExtended {
	if root == nil {
		return nil
	}
	var out []commentExtended
	for _, ex := range root.ChildrenNamed("w15:commentEx") {
		out = append(out, commentExtended{
			ParaID:       ex.AttrOr("w15:paraId", ""),
			ParentParaID: ex.AttrOr("w15:paraIdParent", ""),
			Done:         ex.AttrOr("w15:done", "") == "1",
		})
	}
	return out
}

// commentRangeTranslator handles w:commentRangeStart and w:commentRangeEnd.
// Their text positions are recorded for threading.
type commentRangeTranslator struct{}

func (commentRangeTranslator) Name() string     { return "commentRange" }
func (commentRangeTranslator) Kind() model.Kind { return model.KindCommentRangeStart }

func (commentRangeTranslator) Encode(c *Context, elems []*xmlnode.Element) (Encoded, error) {
	el := elems[0]
	id := el.AttrOr("w:id", "")
	start := el.Name == "w:commentRangeStart"
	c.recordRange(id, start)
	kind := model.KindCommentRangeEnd
	if start {
		kind = model.KindCommentRangeStart
	}
	return single(model.NewNode(kind, model.Attrs{"id": id})), nil
}

func (commentRangeTranslator) Decode(_ *Exporter, n *model.Node) ([]*xmlnode.Element, error) {
	name := "w:commentRangeEnd"
	if n.Kind == model.KindCommentRangeStart {
		name = "w:commentRangeStart"
	}
	return []*xmlnode.Element{xmlnode.New(name, map[string]string{"w:id": n.Attrs.String("id")})}, nil
}

// commentReferenceTranslator handles w:commentReference inside runs.
type commentReferenceTranslator struct{}

func (commentReferenceTranslator) Name() string     { return "commentReference" }
func (commentReferenceTranslator) Kind() model.Kind { return model.KindCommentReference }

func (commentReferenceTranslator) Encode(_ *Context, elems []*xmlnode.Element) (Encoded, error) {
	return single(model.NewNode(model.KindCommentReference, model.Attrs{"id": elems[0].AttrOr("w:id", "")})), nil
}

func (commentReferenceTranslator) Decode(_ *Exporter, n *model.Node) ([]*xmlnode.Element, error) {
	return []*xmlnode.Element{xmlnode.New("w:commentReference", map[string]string{"w:id": n.Attrs.String("id")})}, nil
}

// ExportComments decodes comment entries into the w:comments part and the
// w15:commentsEx part carrying threading and done state.
func (x *Exporter) ExportComments(entries []CommentEntry) (*xmlnode.Element, *xmlnode.Element, error) {
	paraOf := make(map[string]string, len(entries))
	for i, e := range entries {
		paraOf[e.ID] = commentParaID(e, i)
	}

	var comments, extended []*xmlnode.Element
	for _, e := range entries {
		content, err := x.DecodeNodes(e.Content)
		if err != nil {
			return nil, nil, err
		}
		if len(content) == 0 {
			content = []*xmlnode.Element{xmlnode.New("w:p", nil)}
		}
		// The last paragraph carries the id commentsEx refers to.
		for j := len(content) - 1; j >= 0; j-- {
			if content[j].Is("w:p") {
				content[j] = content[j].WithAttr("w14:paraId", paraOf[e.ID])
				break
			}
		}

		attrs := map[string]string{"w:id": e.ID}
		if e.Author != "" {
			attrs["w:author"] = e.Author
		}
		if e.Initials != "" {
			attrs["w:initials"] = e.Initials
		}
		switch {
		case e.Date != "":
			attrs["w:date"] = e.Date
		case !e.CreatedAt.IsZero():
			attrs["w:date"] = e.CreatedAt.UTC().Format(time.RFC3339)
		}
		comments = append(comments, xmlnode.New("w:comment", attrs, content...))

		ex := map[string]string{"w15:paraId": paraOf[e.ID], "w15:done": "0"}
		if e.Done {
			ex["w15:done"] = "1"
		}
		if parent, ok := paraOf[e.ParentID]; ok && e.ParentID != "" {
			ex["w15:paraIdParent"] = parent
		}
		extended = append(extended, xmlnode.New("w15:commentEx", ex))
	}

	return xmlnode.New("w:comments", defaultNamespaces, comments...),
		xmlnode.New("w15:commentsEx", defaultNamespaces, extended...), nil
}

// commentParaID returns the paragraph id used to link a comment in
// commentsExtended, generating a stable one when the source had none.
func commentParaID(e CommentEntry, index int) string {
	if n := len(e.ParaIDs); n > 0 {
		return e.ParaIDs[n-1]
	}
	return fmt.Sprintf("%08X", 0x10000000+index)
}
