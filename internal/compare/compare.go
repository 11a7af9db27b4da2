// Package compare classifies checker responses against annotated sentences.
package compare

import (
	"github.com/roach88/gramtest/internal/checker"
	"github.com/roach88/gramtest/internal/errormarkup"
)

// Outcome is one of the five classification codes.
type Outcome string

const (
	TP  Outcome = "tp"
	FP1 Outcome = "fp1"
	FP2 Outcome = "fp2"
	FN1 Outcome = "fn1"
	FN2 Outcome = "fn2"
)

// Outcomes lists the codes in reporting order.
var Outcomes = []Outcome{TP, FP1, FP2, FN1, FN2}

var explanations = map[Outcome]string{
	TP:  "GramDivvun found marked up error and has the suggested correction",
	FP1: "GramDivvun found manually marked up error, but corrected wrongly",
	FP2: "GramDivvun found error which is not manually marked up",
	FN1: "GramDivvun found manually marked up error, but has no correction",
	FN2: "GramDivvun did not find manually marked up error",
}

// Explanation describes the outcome for humans.
func (o Outcome) Explanation() string {
	return explanations[o]
}

// Classification pairs an outcome with the errors that produced it.
// Expected is nil for fp2, Found is nil for fn2.
type Classification struct {
	Outcome  Outcome
	Expected *errormarkup.Error
	Found    *checker.Error
}

// Classify compares the annotated errors in sentence with the errors the
// checker reported.
//
// An expected error is matched to the checker error covering the same span,
// falling back to one with the same form. Unmatched checker errors are fp2.
func Classify(sentence *errormarkup.Sentence, resp *checker.Response) []Classification {
	var found []checker.Error
	if resp != nil {
		found = resp.Errs
	}
	used := make([]bool, len(found))

	result := make([]Classification, 0, len(sentence.Errors)+len(found))
	for i := range sentence.Errors {
		expected := &sentence.Errors[i]

		match := -1
		for j, d := range found {
			if !used[j] && d.Start == expected.Start && d.End == expected.End {
				match = j
				break
			}
		}
		if match < 0 {
			for j, d := range found {
				if !used[j] && d.Form == expected.Form {
					match = j
					break
				}
			}
		}

		if match < 0 {
			result = append(result, Classification{Outcome: FN2, Expected: expected})
			continue
		}

		used[match] = true
		d := &found[match]
		result = append(result, Classification{
			Outcome:  outcomeFor(expected, d),
			Expected: expected,
			Found:    d,
		})
	}

	for j := range found {
		if !used[j] {
			result = append(result, Classification{Outcome: FP2, Found: &found[j]})
		}
	}

	return result
}

func outcomeFor(expected *errormarkup.Error, found *checker.Error) Outcome {
	if len(found.Suggestions) == 0 {
		if len(expected.Corrections) == 0 {
			return TP
		}
		return FN1
	}
	for _, s := range found.Suggestions {
		if expected.HasCorrection(s) {
			return TP
		}
	}
	return FP1
}

// Passed reports whether every classification is tp. A sentence without
// annotated or reported errors passes.
func Passed(cls []Classification) bool {
	return Worst(cls) == TP
}

// Worst returns the first non-tp outcome in reporting order, or tp.
func Worst(cls []Classification) Outcome {
	worst := TP
	rank := func(o Outcome) int {
		for i, x := range Outcomes {
			if x == o {
				return i
			}
		}
		return 0
	}
	for _, c := range cls {
		if c.Outcome != TP && (worst == TP || rank(c.Outcome) < rank(worst)) {
			worst = c.Outcome
		}
	}
	return worst
}
