package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gramtest/internal/compare"
	"github.com/roach88/gramtest/internal/fixture"
	"github.com/roach88/gramtest/internal/harness"
	"github.com/roach88/gramtest/internal/testutil"
)

func TestRecordRun_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	id, err := s.RecordRun(ctx, createTestResult("se-FAIL.yaml", "Mun boađán.", "{a}${b}"))
	require.NoError(t, err)
	assert.Equal(t, "run-1", id)

	run, err := s.ReadRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "se-FAIL.yaml", run.File)
	assert.Equal(t, "pipespec.xml", run.Spec)
	assert.Equal(t, "smegram", run.Variant)
	assert.Equal(t, 2, run.Total)
	assert.Equal(t, 1, run.Passed)
	assert.Equal(t, 1, run.Failed())
	assert.Equal(t, compare.Counts{FN2: 1}, run.Counts)
	assert.True(t, run.StartedAt.Equal(testutil.Epoch))

	cases, err := s.ReadCases(ctx, id)
	require.NoError(t, err)
	require.Len(t, cases, 2)
	assert.Equal(t, "Mun boađán.", cases[0].Text)
	assert.True(t, cases[0].Passed)
	assert.Equal(t, compare.TP, cases[0].Outcome)
	assert.Equal(t, 3, cases[0].Line)
	assert.False(t, cases[1].Passed)
	assert.Equal(t, compare.FN2, cases[1].Outcome)
}

func TestRecordRun_StoresCaseError(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	res := &harness.Result{
		File: "x.yaml",
		Cases: []harness.CaseResult{{
			Test: fixture.TestCase{Text: "{broken", Source: "x.yaml", Line: 1},
			Err:  errors.New("x.yaml:1: unclosed '{'"),
		}},
	}
	id, err := s.RecordRun(ctx, res)
	require.NoError(t, err)

	cases, err := s.ReadCases(ctx, id)
	require.NoError(t, err)
	require.Len(t, cases, 1)
	assert.Equal(t, "x.yaml:1: unclosed '{'", cases[0].Error)
	assert.Equal(t, compare.FN2, cases[0].Outcome)
}

func TestListRuns_NewestFirstWithLimit(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, file := range []string{"a-FAIL.yaml", "b-FAIL.yaml", "c-FAIL.yaml"} {
		_, err := s.RecordRun(ctx, createTestResult(file, "ok", "{x}${y}"))
		require.NoError(t, err)
	}

	runs, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c-FAIL.yaml", runs[0].File)
	assert.Equal(t, "b-FAIL.yaml", runs[1].File)

	all, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestListRuns_Empty(t *testing.T) {
	s := createTestStore(t)

	runs, err := s.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestCaseHistory(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first, err := s.RecordRun(ctx, createTestResult("se-FAIL.yaml", "same", "{x}${y}"))
	require.NoError(t, err)
	second, err := s.RecordRun(ctx, createTestResult("se-FAIL.yaml", "{x}${y}", "same"))
	require.NoError(t, err)

	hist, err := s.CaseHistory(ctx, "same")
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, second, hist[0].RunID)
	assert.False(t, hist[0].Passed)
	assert.Equal(t, first, hist[1].RunID)
	assert.True(t, hist[1].Passed)
	assert.True(t, hist[0].StartedAt.After(hist[1].StartedAt))
}

func TestReadRun_Missing(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadRun(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestUUIDv7Generator(t *testing.T) {
	g := UUIDv7Generator{}
	a, b := g.Generate(), g.Generate()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
	assert.Less(t, a, b, "v7 ids sort by creation time")
}
