package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tsawler/wordtree/container"
)

func newRoundTripCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "roundtrip <in.docx> <out.docx>",
		Short: "Convert a package and export the tree back into a copy of it",
		Long: `roundtrip converts the document, comments, notes, headers and footers of
a package and decodes them back into WordprocessingML. Every other file of
the package is copied unchanged.`,
		Args: cobra.ExactArgs(2),
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
			replaced, err := pkg.ExportResult(res, s.cfg.DocxOptions()...)
			if err != nil {
				return err
			}

			out, err := os.Create(args[1])
			if err != nil {
				return fmt.Errorf("creating output: %w", err)
			}
			if err := container.Write(out, pkg, replaced); err != nil {
				_ = out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return err
			}

			s.log.Info("package written", zap.String("file", args[1]), zap.Int("parts", len(replaced)))
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d parts regenerated, %d diagnostics)\n",
				args[1], len(replaced), len(res.Diagnostics))
			return nil
		},
	}
}
