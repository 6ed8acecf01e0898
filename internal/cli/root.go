// Package cli implements the wordtree command line tool.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tsawler/wordtree/container"
	"github.com/tsawler/wordtree/docx"
	"github.com/tsawler/wordtree/internal/config"
	"github.com/tsawler/wordtree/internal/logging"
)

// globalFlags are the persistent flags of the root command.
type globalFlags struct {
	cfgFile  string
	debug    bool
	jsonLogs bool
	output   string
}

// NewRootCommand creates the root command with all subcommands.
func NewRootCommand(version, commit, buildDate string) *cobra.Command {
	flags := &globalFlags{}
	rootCmd := &cobra.Command{
		Use:   "wordtree",
		Short: "Convert Word documents to a structured document tree and back",
		Long: `wordtree reads .docx packages and converts their WordprocessingML into a
document tree of blocks, inline content and formatting marks. The tree can be
rendered as JSON, HTML or plain text, inspected for conversion diagnostics, or
written back into the package.

Configuration is read from wordtree.yaml (or --config) and WORDTREE_*
environment variables.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.cfgFile, "config", "", "config file (default ./wordtree.yaml)")
	pf.BoolVar(&flags.debug, "debug", false, "enable debug logging")
	pf.BoolVar(&flags.jsonLogs, "json-logs", false, "write logs as JSON")
	pf.StringVarP(&flags.output, "output", "o", "", "write output to a file instead of stdout")

	rootCmd.AddCommand(
		newJSONCommand(flags),
		newHTMLCommand(flags),
		newTextCommand(flags),
		newInspectCommand(flags),
		newRoundTripCommand(flags),
	)
	return rootCmd
}

// session is the loaded configuration and logger of one command run.
type session struct {
	cfg *config.Config
	log *zap.Logger
}

func (f *globalFlags) session() (*session, error) {
	cfg, err := config.Load(f.cfgFile)
	if err != nil {
		return nil, err
	}

	var log *zap.Logger
	switch {
	case f.jsonLogs:
		log, err = logging.New(f.debug)
	case f.debug:
		log, err = logging.NewConsole(zapcore.DebugLevel)
	default:
		level, _ := logging.ParseLevel(cfg.LogLevel)
		log, err = logging.NewConsole(level)
	}
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, log: log}, nil
}

func (s *session) close() {
	_ = s.log.Sync()
}

// convert opens and converts a package.
func (s *session) convert(path string) (*container.Package, *docx.Result, error) {
	pkg, err := container.Open(path, container.WithLogger(s.log))
	if err != nil {
		return nil, nil, err
	}
	if byExt := container.Detect(path); byExt != container.Unknown && byExt != pkg.Type {
		s.log.Warn("file extension does not match package content type",
			zap.String("file", path),
			zap.Stringer("extension", byExt),
			zap.Stringer("content_type", pkg.Type))
	}
	opts := append(s.cfg.DocxOptions(), docx.WithLogger(s.log.With(zap.String("file", path))))
	res, err := pkg.Convert(opts...)
	if err != nil {
		return nil, nil, err
	}
	s.log.Debug("converted",
		zap.String("file", path),
		zap.Int("blocks", len(res.Document.Content)),
		zap.Int("diagnostics", len(res.Diagnostics)))
	return pkg, res, nil
}

// writer returns the output destination and a function closing it.
func (f *globalFlags) writer(cmd *cobra.Command) (io.Writer, func() error, error) {
	if f.output == "" || f.output == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	file, err := os.Create(f.output)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output: %w", err)
	}
	return file, file.Close, nil
}
