// Package report prints run results in one of a closed set of styles.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/roach88/gramtest/internal/compare"
	"github.com/roach88/gramtest/internal/harness"
)

// Style selects how results are printed.
type Style string

const (
	StyleNormal  Style = "normal"
	StyleTerse   Style = "terse"
	StyleCompact Style = "compact"
	StyleFinal   Style = "final"
	StyleSilent  Style = "silent"
)

// Styles lists the styles selectable with --output.
var Styles = []Style{StyleNormal, StyleCompact, StyleTerse, StyleFinal}

// ParseStyle validates a style name.
func ParseStyle(s string) (Style, error) {
	switch st := Style(s); st {
	case StyleNormal, StyleCompact, StyleTerse, StyleFinal, StyleSilent:
		return st, nil
	}
	return "", fmt.Errorf("invalid output style %q: must be one of %v", s, Styles)
}

// Renderer prints cases as they complete and a summary at the end.
type Renderer interface {
	Case(c harness.CaseResult, total int)
	Summary(r *harness.Result)
}

// Options tune a renderer.
type Options struct {
	Palette Palette

	// HidePasses suppresses passing cases in normal and compact style.
	HidePasses bool
}

// New creates the renderer for style.
func New(style Style, w io.Writer, opts Options) (Renderer, error) {
	p := opts.Palette
	if p.zero() {
		p = NewPalette(false)
	}
	base := renderer{w: w, p: p, hidePasses: opts.HidePasses}
	switch style {
	case StyleNormal:
		return &normal{base}, nil
	case StyleTerse:
		return &terse{base}, nil
	case StyleCompact:
		return &compact{base}, nil
	case StyleFinal:
		return &final{base}, nil
	case StyleSilent:
		return silent{}, nil
	}
	return nil, fmt.Errorf("invalid output style %q", style)
}

type renderer struct {
	w          io.Writer
	p          Palette
	hidePasses bool
}

func (r renderer) totals(res *harness.Result) {
	fmt.Fprintf(r.w, "%d passed, %d failed, %d total\n", res.Passed(), res.Failed(), len(res.Cases))
}

// outcomes lists each outcome count next to what it means.
func (r renderer) outcomes(c compare.Counts) {
	for _, o := range compare.Outcomes {
		code := r.p.Outcome(o, fmt.Sprintf("%-4s", string(o)+":"))
		fmt.Fprintf(r.w, "%s %d  %s\n", code, c.Get(o), r.p.Dim(o.Explanation()))
	}
}

func (r renderer) scores(c compare.Counts) {
	fmt.Fprintf(r.w, "Precision: %.1f%%  Recall: %.1f%%  F1: %.1f%%\n",
		100*c.Precision(), 100*c.Recall(), 100*c.F1())
}

type normal struct{ renderer }

func (r *normal) Case(c harness.CaseResult, total int) {
	if r.hidePasses && c.Passed() {
		return
	}
	fmt.Fprintf(r.w, "[%d/%d] %s %s\n", c.Index+1, total, r.p.Status(c.Passed()), c.Test.Text)
	if c.Err != nil {
		fmt.Fprintf(r.w, "    error: %v\n", c.Err)
		return
	}
	for _, cl := range c.Classifications {
		code := r.p.Outcome(cl.Outcome, fmt.Sprintf("%-3s", cl.Outcome))
		fmt.Fprintf(r.w, "    %s %s\n", code, describe(cl))
	}
}

func (r *normal) Summary(res *harness.Result) {
	fmt.Fprintln(r.w)
	fmt.Fprint(r.w, "Test summary: ")
	r.totals(res)
	r.outcomes(res.Counts)
	r.scores(res.Counts)
}

type terse struct{ renderer }

func (r *terse) Case(c harness.CaseResult, total int) {
	if c.Passed() {
		fmt.Fprint(r.w, r.p.Outcome(compare.TP, "."))
		return
	}
	fmt.Fprint(r.w, r.p.Outcome(c.Outcome(), "F"))
}

func (r *terse) Summary(res *harness.Result) {
	fmt.Fprintln(r.w)
	r.totals(res)
}

type compact struct{ renderer }

func (r *compact) Case(c harness.CaseResult, total int) {
	if r.hidePasses && c.Passed() {
		return
	}
	loc := r.p.Dim(fmt.Sprintf("%s:%d", c.Test.Source, c.Test.Line))
	if c.Passed() {
		fmt.Fprintf(r.w, "%s %s %s\n", r.p.Status(true), loc, c.Test.Text)
		return
	}
	fmt.Fprintf(r.w, "%s %s %s [%s]\n", r.p.Status(false), loc, c.Test.Text, r.failures(c))
}

func (r *compact) failures(c harness.CaseResult) string {
	if c.Err != nil {
		return "error"
	}
	var codes []string
	for _, cl := range c.Classifications {
		if cl.Outcome != compare.TP {
			codes = append(codes, r.p.Outcome(cl.Outcome, string(cl.Outcome)))
		}
	}
	return strings.Join(codes, " ")
}

func (r *compact) Summary(res *harness.Result) {
	r.totals(res)
}

type final struct{ renderer }

func (r *final) Case(harness.CaseResult, int) {}

func (r *final) Summary(res *harness.Result) {
	r.totals(res)
	r.outcomes(res.Counts)
	r.scores(res.Counts)
}

type silent struct{}

func (silent) Case(harness.CaseResult, int) {}
func (silent) Summary(*harness.Result)      {}

// describe renders one classification as "form -> expected [suggestions]".
func describe(cl compare.Classification) string {
	var b strings.Builder
	switch {
	case cl.Expected != nil:
		b.WriteString(cl.Expected.Form)
		b.WriteString(" -> ")
		if len(cl.Expected.Corrections) == 0 {
			b.WriteString("(no correction)")
		} else {
			b.WriteString(strings.Join(cl.Expected.Corrections, ", "))
		}
	case cl.Found != nil:
		b.WriteString(cl.Found.Form)
	}

	switch {
	case cl.Found == nil:
		b.WriteString(" (not found)")
	case cl.Expected == nil:
		fmt.Fprintf(&b, " [%s] (not marked up)", strings.Join(cl.Found.Suggestions, ", "))
	default:
		fmt.Fprintf(&b, " [%s]", strings.Join(cl.Found.Suggestions, ", "))
	}
	return b.String()
}
