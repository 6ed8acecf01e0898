package container

import (
	"path"
	"strings"

	"github.com/tsawler/wordtree/docx"
	"github.com/tsawler/wordtree/xmlnode"
)

// Relationship is one entry of a relationships part.
type Relationship struct {
	ID     string
	Type   string
	Target string
	// External reports TargetMode="External"; Path is empty then.
	External bool
	// Path is the archive path of an internal target.
	Path string
}

// Relationships resolves the relationship ids of one source part. It
// implements docx.PartResolver and docx.PartScoped.
type Relationships struct {
	pkg    *Package
	source string
	byID   map[string]Relationship
	order  []string
}

// RelationshipsFor returns the relationships of the part at source. A part
// without a relationships part has an empty set.
func (p *Package) RelationshipsFor(source string) *Relationships {
	r := &Relationships{pkg: p, source: source, byID: make(map[string]Relationship)}
	for _, el := range p.parts[relsPath(source)].ChildrenNamed("Relationship") {
		rel := Relationship{
			ID:       el.AttrOr("Id", ""),
			Type:     el.AttrOr("Type", ""),
			Target:   el.AttrOr("Target", ""),
			External: strings.EqualFold(el.AttrOr("TargetMode", ""), "External"),
		}
		if rel.ID == "" {
			continue
		}
		if !rel.External {
			rel.Path = resolveTarget(source, rel.Target)
		}
		if _, dup := r.byID[rel.ID]; !dup {
			r.order = append(r.order, rel.ID)
		}
		r.byID[rel.ID] = rel
	}
	return r
}

// resolveTarget resolves a relationship target against its source part.
func resolveTarget(source, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Join(path.Dir(source), target)
}

// Source returns the path of the part the relationships belong to.
func (r *Relationships) Source() string { return r.source }

// Len returns the number of relationships.
func (r *Relationships) Len() int { return len(r.order) }

// All returns the relationships in document order.
func (r *Relationships) All() []Relationship {
	out := make([]Relationship, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// Get returns the relationship with the given id.
func (r *Relationships) Get(relID string) (Relationship, bool) {
	rel, ok := r.byID[relID]
	return rel, ok
}

// Target returns the target of a relationship. Internal targets are
// returned as archive paths.
func (r *Relationships) Target(relID string) (string, bool, bool) {
	rel, ok := r.byID[relID]
	if !ok {
		return "", false, false
	}
	if rel.External {
		return rel.Target, true, true
	}
	return rel.Path, false, true
}

// Part returns the archive path and parsed root of an internal target.
func (r *Relationships) Part(relID string) (string, *xmlnode.Element, bool) {
	rel, ok := r.byID[relID]
	if !ok || rel.External {
		return "", nil, false
	}
	root := r.pkg.parts[rel.Path]
	if root == nil {
		return rel.Path, nil, false
	}
	return rel.Path, root, true
}

// ForPart returns the relationships of another part of the same package.
func (r *Relationships) ForPart(source string) docx.PartResolver {
	return r.pkg.RelationshipsFor(source)
}
