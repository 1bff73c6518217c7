package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ccollicutt/streamplot/internal/cli/viewer"
	"github.com/ccollicutt/streamplot/pkg/analyzer"
	"github.com/ccollicutt/streamplot/pkg/config"
	"github.com/ccollicutt/streamplot/pkg/output"
	"github.com/ccollicutt/streamplot/pkg/parser"
	"github.com/ccollicutt/streamplot/pkg/webhook"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// PlotOptions holds command-line options for the plot command.
type PlotOptions struct {
	ConfigFile string
	Input      []string
	Activity   []string
	Only       string
	Format     string
	OutputDir  string
	Since      string
	Until      string
	Open       bool
	Verbose    bool
	Quiet      bool
	Color      string

	// Webhook options
	WebhookURL     string
	WebhookToken   string
	WebhookTrigger string
}

// NewPlotCommand creates the plot command.
func NewPlotCommand() *cobra.Command {
	opts := &PlotOptions{}

	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Plot the input and activity streams",
		Long: `Plot a low-level input stream and a high-level activity stream.

The two pipelines run in parallel and independently: a failure in one does
not stop the other. Each writes its own output file once its plot is
complete.

  input     one dot per event, one lane per (type, value)
  activity  one bar per activity instance, longest interval per start time

Without a config file the streams default to ../input.stream and
../hla_output.stream.

Exit codes:
  0 - Both plots written
  1 - At least one pipeline failed
  2 - Configuration or usage error`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlot(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigFile, "config", "c", "", "Configuration file (optional)")
	cmd.Flags().StringSliceVar(&opts.Input, "input", nil, "Input stream path or glob (overrides config)")
	cmd.Flags().StringSliceVar(&opts.Activity, "activity", nil, "Activity stream path or glob (overrides config)")
	cmd.Flags().StringVar(&opts.Only, "only", "", "Run a single pipeline (input|activity)")
	cmd.Flags().StringVarP(&opts.Format, "output", "o", "", "Output format (svg|text|json)")
	cmd.Flags().StringVar(&opts.OutputDir, "output-dir", "", "Directory for svg and json files")
	cmd.Flags().StringVar(&opts.Since, "since", "", "Drop records starting before this RFC3339 time")
	cmd.Flags().StringVar(&opts.Until, "until", "", "Drop records starting after this RFC3339 time")
	cmd.Flags().BoolVar(&opts.Open, "open", false, "Open each plot in a viewer and wait for it to close")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Debug logging and per-record detail")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no details")
	cmd.Flags().StringVar(&opts.Color, "color", colorAuto, "Colour text output (auto|always|never)")

	// Webhook flags
	cmd.Flags().StringVar(&opts.WebhookURL, "webhook-url", "", "Webhook endpoint URL")
	cmd.Flags().StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for webhook auth")
	cmd.Flags().StringVar(&opts.WebhookTrigger, "webhook-trigger", "always", "When to fire webhook (always|on_failure|never)")

	return cmd
}

// pipeline is one independent stream-to-plot run.
type pipeline struct {
	mode     analyzer.Mode
	patterns []string
}

// plotRun is the state shared read-only by both pipelines.
type plotRun struct {
	runID      string
	configFile string
	cfg        *config.Config
	formatter  output.Formatter
	since      time.Time
	until      time.Time
	open       bool
	targets    []webhook.Target
	logger     *slog.Logger

	// stdoutMu serializes whole text reports on stdout.
	stdoutMu sync.Mutex
	stdout   io.Writer
}

func runPlot(cmd *cobra.Command, opts *PlotOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(ctx, opts.ConfigFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := applyPlotFlags(cfg, opts); err != nil {
		return err
	}

	pipelines, err := selectPipelines(cfg, opts.Only)
	if err != nil {
		return err
	}

	run, err := newPlotRun(cmd, cfg, opts)
	if err != nil {
		return err
	}

	errs := make([]error, len(pipelines))
	var g errgroup.Group
	for i, p := range pipelines {
		g.Go(func() error {
			errs[i] = run.execute(ctx, p)
			return errs[i]
		})
	}
	_ = g.Wait()

	for i, err := range errs {
		if err != nil {
			run.logger.Error("pipeline failed", "pipeline", pipelines[i].mode, "error", err)
			ExitCode = 1
		}
	}

	return nil
}

// applyPlotFlags lets command-line flags override the loaded config.
func applyPlotFlags(cfg *config.Config, opts *PlotOptions) error {
	if len(opts.Input) > 0 {
		cfg.Inputs.Input = opts.Input
	}
	if len(opts.Activity) > 0 {
		cfg.Inputs.Activity = opts.Activity
	}
	if opts.Format != "" {
		cfg.Render.Format = opts.Format
	}
	if opts.OutputDir != "" {
		cfg.Render.OutputDir = opts.OutputDir
	}
	if opts.Open {
		cfg.Viewer.Open = true
	}
	if opts.WebhookURL != "" {
		cfg.Webhooks = append(cfg.Webhooks, config.WebhookConfig{
			Name:    "cli",
			URL:     opts.WebhookURL,
			Token:   opts.WebhookToken,
			Trigger: config.WebhookTrigger(opts.WebhookTrigger),
		})
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}

func selectPipelines(cfg *config.Config, only string) ([]pipeline, error) {
	all := []pipeline{
		{mode: analyzer.ModeInput, patterns: cfg.Inputs.Input},
		{mode: analyzer.ModeActivity, patterns: cfg.Inputs.Activity},
	}

	switch analyzer.Mode(only) {
	case "":
		return all, nil
	case analyzer.ModeInput:
		return all[:1], nil
	case analyzer.ModeActivity:
		return all[1:], nil
	default:
		return nil, fmt.Errorf("invalid --only %q (use input or activity)", only)
	}
}

func newPlotRun(cmd *cobra.Command, cfg *config.Config, opts *PlotOptions) (*plotRun, error) {
	since, err := parseBound("since", opts.Since)
	if err != nil {
		return nil, err
	}
	until, err := parseBound("until", opts.Until)
	if err != nil {
		return nil, err
	}
	if !since.IsZero() && !until.IsZero() && until.Before(since) {
		return nil, fmt.Errorf("--until %s is before --since %s", opts.Until, opts.Since)
	}

	stdout := cmd.OutOrStdout()
	renderer, err := newRenderer(stdout, opts.Color)
	if err != nil {
		return nil, err
	}

	formatter, err := output.NewFormatter(cfg.Render.Format, output.FormatOptions{
		Verbose:      opts.Verbose,
		Quiet:        opts.Quiet,
		Width:        cfg.Render.Width,
		Height:       cfg.Render.Height,
		Palette:      output.Palette(cfg.Render.Palette),
		TickInterval: cfg.Render.TickInterval,
		Renderer:     renderer,
	})
	if err != nil {
		return nil, err
	}

	return &plotRun{
		runID:      output.NewRunID(),
		configFile: opts.ConfigFile,
		cfg:        cfg,
		formatter:  formatter,
		since:      since,
		until:      until,
		open:       cfg.Viewer.Open,
		targets:    webhookTargets(cfg.Webhooks),
		logger:     newLogger(cmd.ErrOrStderr(), opts.Verbose),
		stdout:     stdout,
	}, nil
}

func parseBound(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s %q: %w", name, value, err)
	}
	return t, nil
}

func webhookTargets(hooks []config.WebhookConfig) []webhook.Target {
	targets := make([]webhook.Target, 0, len(hooks))
	for _, wh := range hooks {
		targets = append(targets, webhook.Target{
			Name:    wh.Name,
			URL:     wh.URL,
			Token:   wh.Token,
			Trigger: string(wh.Trigger),
			Timeout: wh.Timeout,
		})
	}
	return targets
}

// execute runs one pipeline end to end. It owns its source, engine and
// output file; nothing is written unless the whole dataset was built.
func (r *plotRun) execute(ctx context.Context, p pipeline) error {
	started := time.Now()
	logger := r.logger.With("pipeline", p.mode)

	report, err := r.analyze(ctx, p, logger, started)
	if err != nil {
		failed := output.NewFailedReport(r.runID, p.mode, p.patterns, err, r.configFile, started).
			WithTimeRange(r.since, r.until)
		r.notify(ctx, failed, logger)
		return err
	}

	var buf bytes.Buffer
	if err := r.formatter.Format(ctx, report, &buf); err != nil {
		err = fmt.Errorf("rendering %s plot: %w", p.mode, err)
		r.notify(ctx, output.NewFailedReport(r.runID, p.mode, report.Metadata.Sources, err, r.configFile, started), logger)
		return err
	}

	if r.formatter.Name() == config.FormatText {
		r.stdoutMu.Lock()
		_, err = r.stdout.Write(buf.Bytes())
		r.stdoutMu.Unlock()
		if err != nil {
			return fmt.Errorf("writing %s report: %w", p.mode, err)
		}
		r.notify(ctx, report, logger)
		return nil
	}

	path := filepath.Join(r.cfg.Render.OutputDir, string(p.mode)+output.Extension(r.formatter.Name()))
	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return fmt.Errorf("writing %s plot: %w", p.mode, err)
	}
	report.Metadata.Output = path
	logger.Info("plot written", "path", path, "rows", report.Dataset.Stats.Rows)

	r.notify(ctx, report, logger)

	if r.open {
		r.view(ctx, path, logger)
	}
	return nil
}

func (r *plotRun) analyze(ctx context.Context, p pipeline, logger *slog.Logger, started time.Time) (*output.Report, error) {
	files, err := parser.ExpandGlobs(p.patterns)
	if err != nil {
		return nil, fmt.Errorf("expanding %s streams: %w", p.mode, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no %s streams matched patterns: %v", p.mode, p.patterns)
	}
	logger.Debug("streams resolved", "files", files)

	extractor := parser.NewExtractor(r.cfg.ExtractorOptions()...)
	source := parser.OpenSources(files, extractor)
	defer source.Close()

	engine, err := analyzer.NewEngine(p.mode, r.cfg.ActivityTag)
	if err != nil {
		return nil, err
	}
	a, err := analyzer.NewAnalyzer(engine,
		analyzer.WithTimeRange(r.since, r.until),
		analyzer.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	ds, err := a.Analyze(ctx, source)
	if err != nil {
		return nil, err
	}

	return output.NewReport(r.runID, ds, r.configFile, started).WithTimeRange(r.since, r.until), nil
}

func (r *plotRun) notify(ctx context.Context, report *output.Report, logger *slog.Logger) {
	if len(r.targets) == 0 {
		return
	}
	webhook.NewClient().Notify(ctx, report, r.targets, logger)
}

// view opens path and waits for the viewer to exit. Viewer problems are
// logged; the plot file is already on disk.
func (r *plotRun) view(ctx context.Context, path string, logger *slog.Logger) {
	v, err := viewer.New(r.cfg.Viewer.Command, r.cfg.Viewer.Args)
	if err != nil {
		logger.Warn("cannot open plot", "path", path, "error", err)
		if errors.Is(err, viewer.ErrViewerNotFound) {
			logger.Debug(viewer.NotFoundMessage(r.cfg.Viewer.Command))
		}
		return
	}

	logger.Debug("opening plot", "viewer", v.Path, "path", path)
	if err := v.Open(ctx, path); err != nil {
		logger.Warn("viewer exited with error", "path", path, "error", err)
	}
}

// writeFileAtomic writes data to a temporary file beside path and renames it
// into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
