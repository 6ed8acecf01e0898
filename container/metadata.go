package container

import (
	"strconv"
	"strings"

	"github.com/tsawler/wordtree/xmlnode"
)

const (
	corePropsPath = "docProps/core.xml"
	appPropsPath  = "docProps/app.xml"
)

// Metadata holds the document properties of docProps/core.xml (Dublin Core)
// and docProps/app.xml.
type Metadata struct {
	Title          string
	Subject        string
	Author         string
	Keywords       []string
	Description    string
	LastModifiedBy string
	Revision       string
	Created        string
	Modified       string
	Category       string

	Application string
	Template    string
	Company     string
	Pages       int
	Words       int
}

// Metadata returns the document properties. Missing parts leave the
// corresponding fields empty.
func (p *Package) Metadata() Metadata {
	var meta Metadata
	if core := p.parts[corePropsPath]; core != nil {
		props := localValues(core)
		meta.Title = props["title"]
		meta.Subject = props["subject"]
		meta.Author = props["creator"]
		meta.Description = props["description"]
		meta.LastModifiedBy = props["lastModifiedBy"]
		meta.Revision = props["revision"]
		meta.Created = props["created"]
		meta.Modified = props["modified"]
		meta.Category = props["category"]
		if kw := props["keywords"]; kw != "" {
			for _, k := range strings.Split(kw, ",") {
				if k = strings.TrimSpace(k); k != "" {
					meta.Keywords = append(meta.Keywords, k)
				}
			}
		}
	}
	if app := p.parts[appPropsPath]; app != nil {
		props := localValues(app)
		meta.Application = props["Application"]
		meta.Template = props["Template"]
		meta.Company = props["Company"]
		meta.Pages, _ = strconv.Atoi(props["Pages"])
		meta.Words, _ = strconv.Atoi(props["Words"])
	}
	return meta
}

// localValues maps the local names of root's child elements to their text.
func localValues(root *xmlnode.Element) map[string]string {
	out := make(map[string]string)
	for _, c := range root.ElementChildren() {
		out[c.Local()] = strings.TrimSpace(c.TextContent())
	}
	return out
}
