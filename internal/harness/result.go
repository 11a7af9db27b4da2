package harness

import (
	"github.com/roach88/gramtest/internal/checker"
	"github.com/roach88/gramtest/internal/compare"
	"github.com/roach88/gramtest/internal/errormarkup"
	"github.com/roach88/gramtest/internal/fixture"
)

// CaseResult is one test case together with its outcome.
type CaseResult struct {
	// Index is the position in the merged test list, starting at 0.
	Index int

	Test fixture.TestCase

	// Sentence is nil when the markup could not be parsed.
	Sentence *errormarkup.Sentence

	// Response is nil when the checker was not reached or failed.
	Response *checker.Response

	Classifications []compare.Classification

	// Err records a markup or checker failure. The case counts as failing.
	Err error
}

// Passed reports whether the case is a clean tp.
func (c CaseResult) Passed() bool {
	return c.Err == nil && compare.Passed(c.Classifications)
}

// Outcome is the worst classification of the case. Failed invocations
// report fn2: the checker did not find anything.
func (c CaseResult) Outcome() compare.Outcome {
	if c.Err != nil {
		return compare.FN2
	}
	return compare.Worst(c.Classifications)
}

// Result is the outcome of one run.
type Result struct {
	// File is the primary fixture.
	File string

	// Spec and Variant identify the checker pipeline.
	Spec    string
	Variant string

	Cases  []CaseResult
	Counts compare.Counts
}

// Passed counts passing cases.
func (r *Result) Passed() int {
	n := 0
	for _, c := range r.Cases {
		if c.Passed() {
			n++
		}
	}
	return n
}

// Failed counts failing cases.
func (r *Result) Failed() int {
	return len(r.Cases) - r.Passed()
}

// AllPassed reports whether every case passed.
func (r *Result) AllPassed() bool {
	return r.Failed() == 0
}

// PassingFrom returns the texts of passing cases read from source, in run
// order.
func (r *Result) PassingFrom(source string) []string {
	var out []string
	for _, c := range r.Cases {
		if c.Test.Source == source && c.Passed() {
			out = append(out, c.Test.Text)
		}
	}
	return out
}
