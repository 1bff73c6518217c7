package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/streamplot/pkg/config"
	"github.com/ccollicutt/streamplot/pkg/parser"
)

// ExtractOptions holds command-line options for the extract command.
type ExtractOptions struct {
	ConfigFile string
	Verbose    bool
}

// NewExtractCommand creates the extract command.
func NewExtractCommand() *cobra.Command {
	opts := &ExtractOptions{}

	cmd := &cobra.Command{
		Use:   "extract <stream-file>...",
		Short: "Print stream records as comma-separated rows",
		Long: `Extract records from one or more stream files and print one row per record:

  input_type,user,input_value,last_update,confidence,start_unix,end_unix

Comment and blank lines are skipped. Several files (or globs) are merged by
start time. The first malformed line stops extraction with exit code 1.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigFile, "config", "c", "", "Configuration file (optional)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Debug logging")

	return cmd
}

func runExtract(cmd *cobra.Command, args []string, opts *ExtractOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)

	cfg, err := config.Load(ctx, opts.ConfigFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	files, err := parser.ExpandGlobs(args)
	if err != nil {
		return fmt.Errorf("expanding streams: %w", err)
	}

	source := parser.OpenSources(files, parser.NewExtractor(cfg.ExtractorOptions()...))
	defer source.Close()

	n, err := parser.WriteRows(ctx, source, cmd.OutOrStdout())
	if err != nil {
		logger.Error("extraction failed", "rows", n, "error", err)
		ExitCode = 1
		return nil
	}

	logger.Debug("extraction complete", "files", len(files), "rows", n)
	return nil
}
