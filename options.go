package wordtree

import (
	"github.com/tsawler/wordtree/docx"
	"github.com/tsawler/wordtree/export"
)

// ExtractOptions holds configuration for conversion and rendering.
type ExtractOptions struct {
	// Rendering
	includeHeaders  bool
	includeComments bool
	excludeNotes    bool
	keepRaw         bool
	fragment        bool
	title           string

	// Conversion
	dropUnknown bool
	ignored     []string
}

// defaultOptions returns the default extraction options.
func defaultOptions() ExtractOptions {
	return ExtractOptions{}
}

// clone creates a deep copy of ExtractOptions.
func (o ExtractOptions) clone() ExtractOptions {
	newOpts := o
	if o.ignored != nil {
		newOpts.ignored = append([]string(nil), o.ignored...)
	}
	return newOpts
}

// exportConfig applies the options to the defaults of format.
func (o ExtractOptions) exportConfig(format export.Format) export.Config {
	cfg := export.DefaultConfig()
	cfg.Format = format
	cfg.IncludeHeaders = o.includeHeaders
	cfg.IncludeComments = o.includeComments
	cfg.IncludeNotes = !o.excludeNotes
	cfg.IncludeRaw = o.keepRaw
	cfg.Fragment = o.fragment
	cfg.Title = o.title
	return cfg
}

func (o ExtractOptions) docxOptions() []docx.Option {
	opts := []docx.Option{docx.WithDropUnknown(o.dropUnknown)}
	if len(o.ignored) > 0 {
		opts = append(opts, docx.WithIgnoredElements(o.ignored...))
	}
	return opts
}
