package harness

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/gramtest/internal/checker"
	"github.com/roach88/gramtest/internal/compare"
	"github.com/roach88/gramtest/internal/errormarkup"
	"github.com/roach88/gramtest/internal/fixture"
)

// Checker sends one plain sentence to the grammar checker.
type Checker interface {
	Check(ctx context.Context, text string) (*checker.Response, error)
}

// CaseHook observes each case as soon as it is classified.
type CaseHook func(c CaseResult, total int)

// Runner checks test cases sequentially.
type Runner struct {
	checker Checker
	logger  *slog.Logger
	onCase  CaseHook
	variant string
}

// Option configures a Runner.
type Option func(*Runner)

// WithCaseHook streams each case to hook.
func WithCaseHook(hook CaseHook) Option {
	return func(r *Runner) {
		r.onCase = hook
	}
}

// WithVariant records the resolved variant on results.
func WithVariant(variant string) Option {
	return func(r *Runner) {
		r.variant = variant
	}
}

// New creates a Runner.
func New(c Checker, logger *slog.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Runner{checker: c, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run checks every case in cfg in order.
//
// Markup and checker failures are recorded on the case and the run goes
// on. Cancellation of ctx stops the run; the partial result is returned
// along with the context error.
func (r *Runner) Run(ctx context.Context, cfg *fixture.Config) (*Result, error) {
	result := &Result{
		File:    cfg.File,
		Spec:    cfg.Spec,
		Variant: r.variant,
		Cases:   make([]CaseResult, 0, len(cfg.Tests)),
	}

	for i, tc := range cfg.Tests {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		cr := r.runCase(ctx, i, tc)
		if cr.Err != nil && ctx.Err() != nil {
			return result, ctx.Err()
		}

		result.Cases = append(result.Cases, cr)
		result.Counts.Add(cr.Classifications)
		if r.onCase != nil {
			r.onCase(cr, len(cfg.Tests))
		}
	}

	r.logger.Debug("run complete",
		"file", cfg.File,
		"cases", len(result.Cases),
		"passed", result.Passed(),
		"failed", result.Failed())

	return result, nil
}

func (r *Runner) runCase(ctx context.Context, index int, tc fixture.TestCase) CaseResult {
	cr := CaseResult{Index: index, Test: tc}

	sentence, err := errormarkup.Parse(tc.Text)
	if err != nil {
		r.logger.Warn("invalid error markup", "file", tc.Source, "line", tc.Line, "error", err)
		cr.Err = fmt.Errorf("%s:%d: %w", tc.Source, tc.Line, err)
		return cr
	}
	cr.Sentence = sentence

	resp, err := r.checker.Check(ctx, sentence.Text)
	if err != nil {
		r.logger.Warn("checker failed", "file", tc.Source, "line", tc.Line, "error", err)
		cr.Err = err
		return cr
	}
	cr.Response = resp
	cr.Classifications = compare.Classify(sentence, resp)

	r.logger.Debug("case classified",
		"index", index,
		"outcome", string(cr.Outcome()),
		"passed", cr.Passed())

	return cr
}
