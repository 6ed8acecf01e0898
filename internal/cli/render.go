package cli

import (
	"github.com/spf13/cobra"

	"github.com/tsawler/wordtree/export"
)

// renderFlags override the export section of the configuration when set.
type renderFlags struct {
	raw      bool
	headers  bool
	comments bool
	fragment bool
	compact  bool
	title    string
}

func (r *renderFlags) apply(cmd *cobra.Command, ec *export.Config) {
	fs := cmd.Flags()
	if fs.Changed("raw") {
		ec.IncludeRaw = r.raw
	}
	if fs.Changed("headers") {
		ec.IncludeHeaders = r.headers
	}
	if fs.Changed("comments") {
		ec.IncludeComments = r.comments
	}
	if fs.Changed("fragment") {
		ec.Fragment = r.fragment
	}
	if fs.Changed("compact") {
		ec.PrettyPrint = !r.compact
	}
	if fs.Changed("title") {
		ec.Title = r.title
	}
}

func newJSONCommand(flags *globalFlags) *cobra.Command {
	rf := &renderFlags{}
	cmd := newRenderCommand(flags, rf, export.FormatJSON, "Print the document tree as JSON")
	cmd.Flags().BoolVar(&rf.raw, "raw", false, "keep source XML fragments needed for export")
	cmd.Flags().BoolVar(&rf.compact, "compact", false, "write JSON on a single line")
	return cmd
}

func newHTMLCommand(flags *globalFlags) *cobra.Command {
	rf := &renderFlags{}
	cmd := newRenderCommand(flags, rf, export.FormatHTML, "Render the document as HTML")
	cmd.Flags().BoolVar(&rf.fragment, "fragment", false, "render only the body content")
	cmd.Flags().StringVar(&rf.title, "title", "", "HTML document title (defaults to the document's title property)")
	cmd.Flags().BoolVar(&rf.headers, "headers", false, "include headers and footers")
	cmd.Flags().BoolVar(&rf.comments, "comments", false, "include comments")
	return cmd
}

func newTextCommand(flags *globalFlags) *cobra.Command {
	rf := &renderFlags{}
	cmd := newRenderCommand(flags, rf, export.FormatText, "Extract plain text")
	cmd.Flags().BoolVar(&rf.headers, "headers", false, "include headers and footers")
	cmd.Flags().BoolVar(&rf.comments, "comments", false, "include comments")
	return cmd
}

func newRenderCommand(flags *globalFlags, rf *renderFlags, format export.Format, short string) *cobra.Command {
	return &cobra.Command{
		Use:   format.String() + " <file.docx>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := flags.session()
			if err != nil {
				return err
			}
			defer s.close()

			pkg, res, err := s.convert(args[0])
			if err != nil {
				return err
			}

			ec := s.cfg.ExportConfig(format)
			if ec.Title == "" {
				ec.Title = pkg.Metadata().Title
			}
			rf.apply(cmd, &ec)

			w, closeOut, err := flags.writer(cmd)
			if err != nil {
				return err
			}
			if err := export.NewExporterWithConfig(ec).Export(w, res); err != nil {
				_ = closeOut()
				return err
			}
			return closeOut()
		},
	}
}
