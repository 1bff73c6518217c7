package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/streamplot/pkg/config"
	"github.com/ccollicutt/streamplot/pkg/parser"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate a streamplot configuration file without plotting.

Checks:
  - YAML syntax
  - Required fields
  - Timezone name
  - Field layout positions
  - Render and webhook settings
  - Stream file existence (warning only)`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Validating %s...\n", configPath)

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Fprintf(w, "\nConfiguration valid!\n")
	fmt.Fprintf(w, "  Input streams:    %d pattern(s)\n", len(cfg.Inputs.Input))
	fmt.Fprintf(w, "  Activity streams: %d pattern(s)\n", len(cfg.Inputs.Activity))
	fmt.Fprintf(w, "  Activity tag:     %s\n", cfg.ActivityTag)
	fmt.Fprintf(w, "  Time offset:      %s\n", cfg.TimeOffset)
	fmt.Fprintf(w, "  Timezone:         %s\n", cfg.Location())
	fmt.Fprintf(w, "  Format:           %s\n", cfg.Render.Format)
	fmt.Fprintf(w, "  Webhooks:         %d\n", len(cfg.Webhooks))

	reportStreams(w, "Input", cfg.Inputs.Input)
	reportStreams(w, "Activity", cfg.Inputs.Activity)

	return nil
}

// reportStreams lists matched files. Missing files are warnings only.
func reportStreams(w io.Writer, kind string, patterns []string) {
	files, err := parser.ExpandGlobs(patterns)
	if err != nil {
		fmt.Fprintf(w, "\nWarning: Error expanding %s stream patterns: %v\n", kind, err)
		return
	}

	fmt.Fprintf(w, "\n%s streams:\n", kind)
	for _, f := range files {
		if fileExists(f) {
			fmt.Fprintf(w, "  - %s\n", f)
		} else {
			fmt.Fprintf(w, "  - %s (Warning: not found)\n", f)
		}
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
