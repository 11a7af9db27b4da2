package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/gramtest/internal/compare"
	"github.com/roach88/gramtest/internal/errormarkup"
	"github.com/roach88/gramtest/internal/fixture"
	"github.com/roach88/gramtest/internal/harness"
	"github.com/roach88/gramtest/internal/testutil"
)

// createTestStore opens a store in a temp dir with deterministic ids and
// timestamps.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path,
		WithIDGenerator(testutil.NewSequenceIDGenerator("run")),
		WithClock(testutil.NewDeterministicClock()),
	)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestResult builds a run with one passing and one failing case.
func createTestResult(file string, passing, failing string) *harness.Result {
	expected := &errormarkup.Error{Form: "x", Start: 0, End: 1, Corrections: []string{"y"}}
	res := &harness.Result{
		File:    file,
		Spec:    "pipespec.xml",
		Variant: "smegram",
		Cases: []harness.CaseResult{
			{
				Index: 0,
				Test:  fixture.TestCase{Text: passing, Source: file, Line: 3},
			},
			{
				Index: 1,
				Test:  fixture.TestCase{Text: failing, Source: file, Line: 4},
				Classifications: []compare.Classification{
					{Outcome: compare.FN2, Expected: expected},
				},
			},
		},
	}
	for _, c := range res.Cases {
		res.Counts.Add(c.Classifications)
	}
	return res
}
