package report

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gramtest/internal/compare"
	"github.com/roach88/gramtest/internal/fixture"
	"github.com/roach88/gramtest/internal/harness"
	"github.com/roach88/gramtest/internal/testutil"
)

// sampleRun produces one passing and two failing cases covering tp, fp1,
// fp2 and fn2.
func sampleRun(t *testing.T) []harness.CaseResult {
	t.Helper()

	fake := testutil.NewFakeChecker().
		Respond("Mun boahtán ihttin.", testutil.Found("boahtán", 4, 11, "boađán", "boahtan")).
		Respond("Son mannat dál.",
			testutil.Found("mannat", 4, 10, "mannan"),
			testutil.Found("dál", 11, 14, "dal"))

	texts := []string{
		"Mun {boahtán}${boađán} ihttin.",
		"Son {mannat}${manai} dál.",
		"Dat lea {buorre}€{buorrin}.",
	}
	cfg := &fixture.Config{File: "se-FAIL.yaml", Spec: "pipespec.xml"}
	for i, text := range texts {
		cfg.Tests = append(cfg.Tests, fixture.TestCase{Text: text, Source: "se-FAIL.yaml", Line: i + 1})
	}

	res, err := harness.New(fake, slog.New(slog.NewTextHandler(io.Discard, nil))).Run(context.Background(), cfg)
	require.NoError(t, err)
	return res.Cases
}

func render(t *testing.T, style Style, opts Options) []byte {
	t.Helper()

	cases := sampleRun(t)
	var buf bytes.Buffer
	r, err := New(style, &buf, opts)
	require.NoError(t, err)

	res := &harness.Result{File: "se-FAIL.yaml"}
	for _, c := range cases {
		res.Cases = append(res.Cases, c)
		res.Counts.Add(c.Classifications)
		r.Case(c, len(cases))
	}
	r.Summary(res)
	return buf.Bytes()
}

func TestRenderers_Golden(t *testing.T) {
	tests := []struct {
		name  string
		style Style
		opts  Options
	}{
		{"normal", StyleNormal, Options{}},
		{"normal_hide_passes", StyleNormal, Options{HidePasses: true}},
		{"compact", StyleCompact, Options{}},
		{"terse", StyleTerse, Options{}},
		{"final", StyleFinal, Options{}},
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Palette = NewPalette(false)
			g.Assert(t, tt.name, render(t, tt.style, tt.opts))
		})
	}
}

func TestSilentPrintsNothing(t *testing.T) {
	out := render(t, StyleSilent, Options{Palette: NewPalette(true)})
	assert.Empty(t, out)
}

func TestNormal_CaseError(t *testing.T) {
	var buf bytes.Buffer
	r, err := New(StyleNormal, &buf, Options{Palette: NewPalette(false)})
	require.NoError(t, err)

	r.Case(harness.CaseResult{
		Index: 0,
		Test:  fixture.TestCase{Text: "{broken", Source: "x.yaml", Line: 3},
		Err:   errors.New("x.yaml:3: unclosed '{'"),
	}, 1)

	assert.Equal(t, "[1/1] FAIL {broken\n    error: x.yaml:3: unclosed '{'\n", buf.String())
}

func TestNew_ZeroPaletteRendersPlain(t *testing.T) {
	plain := render(t, StyleNormal, Options{Palette: NewPalette(false)})
	assert.Equal(t, string(plain), string(render(t, StyleNormal, Options{})))
}

func TestSummary_ExplainsOutcomes(t *testing.T) {
	for _, style := range []Style{StyleNormal, StyleFinal} {
		t.Run(string(style), func(t *testing.T) {
			out := string(render(t, style, Options{}))
			for _, o := range compare.Outcomes {
				assert.Contains(t, out, o.Explanation())
			}
		})
	}
}

func TestPalette_Enabled(t *testing.T) {
	on := NewPalette(true)
	off := NewPalette(false)

	assert.Equal(t, "PASS", off.Status(true))
	assert.Equal(t, "fn2", off.Outcome(compare.FN2, "fn2"))
	assert.NotEqual(t, "PASS", on.Status(true))
	assert.Contains(t, on.Status(false), "FAIL")
	assert.Contains(t, on.Outcome(compare.TP, "tp"), "\x1b[")
}

func TestParseStyle(t *testing.T) {
	for _, s := range []string{"normal", "compact", "terse", "final", "silent"} {
		st, err := ParseStyle(s)
		require.NoError(t, err)
		assert.Equal(t, Style(s), st)
	}

	_, err := ParseStyle("verbose")
	assert.Error(t, err)

	_, err = New(Style("fancy"), io.Discard, Options{})
	assert.Error(t, err)
}

func TestUseColor(t *testing.T) {
	var buf bytes.Buffer
	assert.True(t, UseColor(ColorAlways, &buf))
	assert.False(t, UseColor(ColorNever, &buf))
	assert.False(t, UseColor(ColorAuto, &buf), "non-file writers are never terminals")
}
