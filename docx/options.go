package docx

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Options holds configuration for a conversion.
type Options struct {
	// Logger receives element-level warnings. Defaults to a no-op logger.
	Logger *zap.Logger

	// DropUnknown records unknown elements as unhandled instead of keeping
	// them as passthrough nodes.
	DropUnknown bool

	// IgnoredElements are structural noise: dropped without a diagnostic.
	IgnoredElements []string

	// Character styles that always imply bold/italic. Decoding re-injects the
	// inline toggle for runs using them unless an explicit OFF exists.
	BoldStyleAliases   []string
	ItalicStyleAliases []string

	// NewID generates internal ids for comments.
	NewID func() string
}

// Option configures a conversion.
type Option func(*Options)

var defaultIgnoredElements = []string{
	"w:sectPr",
	"w:proofErr",
	"w:lastRenderedPageBreak",
	"w:permStart",
	"w:permEnd",
}

// defaultOptions returns the default conversion options.
func defaultOptions() Options {
	return Options{
		Logger:             zap.NewNop(),
		IgnoredElements:    append([]string(nil), defaultIgnoredElements...),
		BoldStyleAliases:   []string{"Strong"},
		ItalicStyleAliases: []string{"Emphasis", "SubtleEmphasis", "IntenseEmphasis"},
		NewID:              uuid.NewString,
	}
}

func buildOptions(opts []Option) Options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	return o
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithDropUnknown drops unknown elements instead of passing them through.
func WithDropUnknown(drop bool) Option {
	return func(o *Options) { o.DropUnknown = drop }
}

// WithIgnoredElements replaces the structural-noise ignore list.
func WithIgnoredElements(names ...string) Option {
	return func(o *Options) { o.IgnoredElements = append([]string(nil), names...) }
}

// WithStyleAliases sets the always-bold and always-italic character styles.
func WithStyleAliases(bold, italic []string) Option {
	return func(o *Options) {
		o.BoldStyleAliases = append([]string(nil), bold...)
		o.ItalicStyleAliases = append([]string(nil), italic...)
	}
}

// WithIDGenerator sets the generator for internal comment ids.
func WithIDGenerator(fn func() string) Option {
	return func(o *Options) { o.NewID = fn }
}

// WithOptions applies a complete Options value, e.g. one loaded from a
// configuration file. Zero-valued fields keep their defaults.
func WithOptions(src Options) Option {
	return func(o *Options) {
		if src.Logger != nil {
			o.Logger = src.Logger
		}
		o.DropUnknown = src.DropUnknown
		if src.IgnoredElements != nil {
			o.IgnoredElements = append([]string(nil), src.IgnoredElements...)
		}
		if src.BoldStyleAliases != nil {
			o.BoldStyleAliases = append([]string(nil), src.BoldStyleAliases...)
		}
		if src.ItalicStyleAliases != nil {
			o.ItalicStyleAliases = append([]string(nil), src.ItalicStyleAliases...)
		}
		if src.NewID != nil {
			o.NewID = src.NewID
		}
	}
}

func (o Options) ignored(name string) bool {
	for _, n := range o.IgnoredElements {
		if n == name {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
