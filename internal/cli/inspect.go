package cli

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/tsawler/wordtree/container"
	"github.com/tsawler/wordtree/docx"
	"github.com/tsawler/wordtree/model"
)

// errDiagnostics is returned by inspect --strict when the conversion
// reported anything.
var errDiagnostics = errors.New("conversion reported diagnostics")

func newInspectCommand(flags *globalFlags) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "inspect <file.docx>",
		Short: "Summarize the package and list conversion diagnostics",
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

			w, closeOut, err := flags.writer(cmd)
			if err != nil {
				return err
			}
			renderSummary(w, args[0], pkg, res)
			renderDiagnostics(w, res.Diagnostics)
			if err := closeOut(); err != nil {
				return err
			}

			if strict && len(res.Diagnostics) > 0 {
				return fmt.Errorf("%w: %d", errDiagnostics, len(res.Diagnostics))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when the conversion reports diagnostics")
	return cmd
}

func renderSummary(w io.Writer, name string, pkg *container.Package, res *docx.Result) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetTitle(name)
	tw.AppendHeader(table.Row{"Item", "Value"})
	tw.AppendRow(table.Row{"Type", pkg.Type.String()})
	tw.AppendRow(table.Row{"Main part", pkg.MainPart})
	tw.AppendRow(table.Row{"Files", len(pkg.Names())})
	tw.AppendRow(table.Row{"Relationships", pkg.Relationships().Len()})
	meta := pkg.Metadata()
	for _, row := range []struct{ name, value string }{
		{"Title", meta.Title},
		{"Author", meta.Author},
		{"Application", meta.Application},
	} {
		if row.value != "" {
			tw.AppendRow(table.Row{row.name, row.value})
		}
	}
	tw.AppendSeparator()
	tw.AppendRow(table.Row{"Blocks", len(res.Document.Content)})
	tw.AppendRow(table.Row{"Headers", len(res.Headers)})
	tw.AppendRow(table.Row{"Footers", len(res.Footers)})
	tw.AppendRow(table.Row{"Comments", len(res.Comments)})
	tw.AppendRow(table.Row{"Footnotes", len(res.Footnotes)})
	tw.AppendRow(table.Row{"Endnotes", len(res.Endnotes)})

	counts := kindCounts(res.Document)
	if len(counts) > 0 {
		tw.AppendSeparator()
		kinds := make([]model.Kind, 0, len(counts))
		for k := range counts {
			kinds = append(kinds, k)
		}
		sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
		for _, k := range kinds {
			tw.AppendRow(table.Row{"Nodes: " + k.String(), counts[k]})
		}
	}

	tw.SetStyle(table.StyleLight)
	tw.Render()
}

// kindCounts counts the nodes below the document root by kind.
func kindCounts(doc *model.Node) map[model.Kind]int {
	counts := make(map[model.Kind]int)
	doc.Walk(func(n *model.Node) bool {
		if n != doc {
			counts[n.Kind]++
		}
		return true
	})
	return counts
}

func renderDiagnostics(w io.Writer, diags []docx.Diagnostic) {
	if len(diags) == 0 {
		fmt.Fprintln(w, "No diagnostics.")
		return
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetTitle("Diagnostics")
	tw.AppendHeader(table.Row{"#", "Kind", "Part", "Index", "Element", "Message"})
	for i, d := range diags {
		tw.AppendRow(table.Row{i + 1, d.Kind.String(), d.Part, d.Index, d.Tag, d.Message})
	}
	tw.SetStyle(table.StyleLight)
	tw.Render()
}
