package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/gramtest/internal/checker"
	"github.com/roach88/gramtest/internal/fixture"
	"github.com/roach88/gramtest/internal/harness"
	"github.com/roach88/gramtest/internal/migrate"
	"github.com/roach88/gramtest/internal/pipespec"
	"github.com/roach88/gramtest/internal/report"
	"github.com/roach88/gramtest/internal/store"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Output     string        // presentation style
	Silent     bool          // hide all output; exit code only
	HidePasses bool          // suppress passing cases
	Spec       string        // pipeline spec override
	Variant    string        // variant override
	Total      bool          // merge the .notfixed companion
	Color      string        // auto | always | never
	Checker    string        // checker binary
	Timeout    time.Duration // per-sentence checker timeout
	NoMove     bool          // skip FAIL to PASS migration
	History    string        // sqlite history database
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test [flags] FILE...",
		Short: "Test error marked up sentences",
		Long: `Run every sentence of the given YAML fixtures through the grammar
checker and classify the result as tp, fp1, fp2, fn1 or fn2.

The first file is primary: its Config selects the pipeline and, when its
name contains FAIL, sentences that now pass are moved to the PASS sibling.
Further files only contribute tests.

Exit codes:
  0   - All cases passed
  1   - One or more cases failed
  2   - Command error (bad flags, unreadable spec, checker failure)
  3   - Fixture parse error
  5   - Requested variant not available
  130 - Interrupted

Examples:
  gramtest test tests/se-FAIL.yaml
  gramtest test -t -o compact tests/se-FAIL.yaml
  gramtest test -V smegram-dev --spec build/se.zcheck tests/*.yaml`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTest(cmd, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", string(report.StyleNormal), "output style (normal|compact|terse|final)")
	cmd.Flags().BoolVarP(&opts.Silent, "silent", "q", false, "hide all output; exit code only")
	cmd.Flags().BoolVarP(&opts.HidePasses, "hide-passes", "p", false, "suppress passes to make finding fails easier")
	cmd.Flags().StringVarP(&opts.Spec, "spec", "s", "", "path to the pipeline spec, overriding Config.Spec")
	cmd.Flags().StringVarP(&opts.Variant, "variant", "V", "", "pipeline variant, overriding Config.Variants")
	cmd.Flags().BoolVarP(&opts.Total, "total", "t", false, "merge tests from x.yaml and x.notfixed.yaml")
	cmd.Flags().StringVar(&opts.Color, "color", report.ColorAuto, "colour output (auto|always|never)")
	cmd.Flags().StringVar(&opts.Checker, "checker", checker.DefaultBinary, "grammar checker binary")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", checker.DefaultTimeout, "per-sentence checker timeout (0 disables)")
	cmd.Flags().BoolVar(&opts.NoMove, "no-move", false, "do not move passing cases out of FAIL fixtures")
	cmd.Flags().StringVar(&opts.History, "history", "", "record the run in this SQLite database")

	return cmd
}

func runTest(cmd *cobra.Command, opts *TestOptions, files []string) error {
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)

	style, err := report.ParseStyle(opts.Output)
	if err != nil || style == report.StyleSilent {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("invalid output style %q: must be one of %v", opts.Output, report.Styles))
	}
	if opts.Silent {
		style = report.StyleSilent
	}
	if !slices.Contains(report.ValidColorModes, opts.Color) {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("invalid color mode %q: must be one of %v", opts.Color, report.ValidColorModes))
	}
	if opts.Timeout < 0 {
		return NewExitError(ExitCommandError, "timeout must not be negative")
	}

	cfg, err := fixture.Load(fixture.Options{
		Files:   files,
		Total:   opts.Total,
		Spec:    opts.Spec,
		Variant: opts.Variant,
	}, logger)
	if err != nil {
		var parseErr *fixture.ParseError
		if errors.As(err, &parseErr) {
			return WrapExitError(ExitFixtureParseError, "invalid fixture", err)
		}
		return WrapExitError(ExitCommandError, "failed to load fixtures", err)
	}
	for _, m := range cfg.Malformed {
		fmt.Fprintln(cmd.ErrOrStderr(), m.String())
	}

	spec, err := pipespec.Locate(cfg.Spec)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read pipeline spec", err)
	}
	variant, err := pipespec.Resolve(spec, cfg.Variants)
	if err != nil {
		return WrapExitError(ExitVariantUnavailable, "variant not available", err)
	}
	logger.Debug("resolved variant", "spec", cfg.Spec, "variant", variant, "available", spec.Available)

	inv := checker.NewInvoker(checker.ForSpec(opts.Checker, spec, variant), logger)
	inv.Timeout = opts.Timeout

	out := cmd.OutOrStdout()
	renderer, err := report.New(style, out, report.Options{
		Palette:    report.NewPalette(report.UseColor(opts.Color, out)),
		HidePasses: opts.HidePasses,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create renderer", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	runner := harness.New(inv, logger,
		harness.WithVariant(variant),
		harness.WithCaseHook(renderer.Case),
	)
	result, err := runner.Run(ctx, cfg)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return WrapExitError(ExitInterrupted, "interrupted", err)
		}
		return WrapExitError(ExitCommandError, "test run aborted", err)
	}
	renderer.Summary(result)

	if !opts.NoMove {
		moveRecovered(logger, result)
	}
	if opts.History != "" {
		recordHistory(ctx, logger, opts.History, result)
	}

	if !result.AllPassed() {
		return &ExitError{Code: ExitFailure}
	}
	return nil
}

// moveRecovered migrates the primary file's passing cases. Failures are
// logged and leave the verdict alone.
func moveRecovered(logger *slog.Logger, result *harness.Result) {
	res, err := migrate.New(logger).Migrate(result.File, result.PassingFrom(result.File))
	if err != nil {
		logger.Error("failed to move passing cases", "file", result.File, "error", err)
		return
	}
	if res != nil {
		logger.Info("moved passing cases",
			"from", res.FailPath,
			"to", res.PassPath,
			"moved", len(res.Moved),
			"appended", len(res.Appended))
	}
}

func recordHistory(ctx context.Context, logger *slog.Logger, path string, result *harness.Result) {
	st, err := store.Open(path)
	if err != nil {
		logger.Error("failed to open history database", "path", path, "error", err)
		return
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing history database", "error", closeErr)
		}
	}()

	id, err := st.RecordRun(ctx, result)
	if err != nil {
		logger.Error("failed to record run", "path", path, "error", err)
		return
	}
	logger.Debug("recorded run", "id", id, "path", path)
}
