package fixture

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func texts(tests []TestCase) []string {
	out := make([]string, len(tests))
	for i, tc := range tests {
		out[i] = tc.Text
	}
	return out
}

const primaryFixture = `Config:
  Spec: ../pipespec.xml
  Variants: [smegram-dev, smegram]

Tests:
  - "Mun {boahtán}${boađán} ihttin."
  - "Dat lea {buorre}€{buorrin}."
`

func TestParse_ValidFixture(t *testing.T) {
	f, err := Parse("se/test.yaml", []byte(primaryFixture))
	require.NoError(t, err)

	assert.True(t, f.HasConfig)
	assert.Equal(t, "../pipespec.xml", f.Settings.Spec)
	assert.Equal(t, []string{"smegram-dev", "smegram"}, f.Settings.Variants)
	require.Len(t, f.Tests, 2)
	assert.Equal(t, "Mun {boahtán}${boađán} ihttin.", f.Tests[0].Text)
	assert.Equal(t, "se/test.yaml", f.Tests[0].Source)
	assert.Equal(t, 6, f.Tests[0].Line)
	assert.Empty(t, f.Malformed)
}

func TestParse_EmptyDocument(t *testing.T) {
	f, err := Parse("empty.yaml", []byte(""))
	require.NoError(t, err)
	assert.Empty(t, f.Tests)
	assert.False(t, f.HasConfig)
}

func TestParse_NullTests(t *testing.T) {
	f, err := Parse("x.yaml", []byte("Config:\n  Spec: a.xml\nTests:\n"))
	require.NoError(t, err)
	assert.Empty(t, f.Tests)
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse("bad.yaml", []byte("Tests:\n  - \"unterminated\n  - [\n"))
	require.Error(t, err)

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "bad.yaml", parseErr.Path)
}

func TestParse_StructuralErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		message string
	}{
		{"top level list", "- a\n- b\n", "top level must be a mapping"},
		{"tests not a list", "Tests: hello\n", "Tests must be a list"},
		{"config not a mapping", "Config: [a]\n", "Config must be a mapping"},
		{"spec not a string", "Config:\n  Spec: 12\n", "Config"},
		{"empty spec", "Config:\n  Spec: \"\"\n", "Config"},
		{"variant not a string", "Config:\n  Spec: a.xml\n  Variants: [1, two]\n", "Config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("x.yaml", []byte(tt.content))
			require.Error(t, err)

			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestParse_UnknownConfigKeysTolerated(t *testing.T) {
	f, err := Parse("x.yaml", []byte("Config:\n  Spec: a.xml\n  Language: se\nTests:\n  - a\n"))
	require.NoError(t, err)
	assert.Equal(t, "a.xml", f.Settings.Spec)
}

func TestParse_MalformedEntriesSkipped(t *testing.T) {
	content := `Tests:
  - "first"
  - 42
  - {key: value}
  -
  - "last"
`
	f, err := Parse("x.yaml", []byte(content))
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "last"}, texts(f.Tests))
	require.Len(t, f.Malformed, 3)
	assert.Equal(t, "42", f.Malformed[0].Value)
	assert.Equal(t, 3, f.Malformed[0].Line)
	assert.Contains(t, f.Malformed[1].Value, "key: value")
	assert.Contains(t, f.Malformed[0].String(), "42 is not a string")
	assert.Contains(t, f.Malformed[0].String(), "x.yaml")
}

func TestParse_AliasResolved(t *testing.T) {
	content := `Tests:
  - &s "shared sentence"
  - *s
`
	f, err := Parse("x.yaml", []byte(content))
	require.NoError(t, err)
	assert.Equal(t, []string{"shared sentence", "shared sentence"}, texts(f.Tests))
}

func TestNotFixedPath(t *testing.T) {
	assert.Equal(t, filepath.Join("tests", "se-FAIL.notfixed.yaml"), NotFixedPath(filepath.Join("tests", "se-FAIL.yaml")))
	assert.Equal(t, "a.notfixed.yml", NotFixedPath("a.yml"))
}

func TestLoad_ResolvesSpecRelativeToFixture(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "test.yaml", primaryFixture)

	cfg, err := Load(Options{Files: []string{path}}, quietLogger())
	require.NoError(t, err)

	assert.Equal(t, path, cfg.File)
	assert.Equal(t, filepath.Join(dir, "..", "pipespec.xml"), cfg.Spec)
	assert.Equal(t, []string{"smegram-dev", "smegram"}, cfg.Variants)
	assert.Len(t, cfg.Tests, 2)
}

func TestLoad_KeepsAbsoluteSpec(t *testing.T) {
	spec := filepath.Join(t.TempDir(), "build", "se.zcheck")
	path := writeFixture(t, t.TempDir(), "test.yaml", "Config:\n  Spec: '"+spec+"'\nTests:\n  - a\n")

	cfg, err := Load(Options{Files: []string{path}}, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, spec, cfg.Spec)
}

func TestLoad_Overrides(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "test.yaml", primaryFixture)

	cfg, err := Load(Options{Files: []string{path}, Spec: "/build/pipespec.xml", Variant: "smespell"}, quietLogger())
	require.NoError(t, err)

	assert.Equal(t, "/build/pipespec.xml", cfg.Spec)
	assert.Equal(t, []string{"smespell"}, cfg.Variants)
}

func TestLoad_MissingSpec(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "test.yaml", "Tests:\n  - a\n")

	_, err := Load(Options{Files: []string{path}}, quietLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Spec is required")

	cfg, err := Load(Options{Files: []string{path}, Spec: "pipespec.xml"}, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, "pipespec.xml", cfg.Spec)
}

func TestLoad_NoFiles(t *testing.T) {
	_, err := Load(Options{}, quietLogger())
	require.Error(t, err)
}

func TestLoad_NotFixedMerge(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "test.yaml", primaryFixture)
	writeFixture(t, dir, "test.notfixed.yaml", "Tests:\n  - \"Son {mannat}${manai}.\"\n")

	with, err := Load(Options{Files: []string{path}, Total: true}, quietLogger())
	require.NoError(t, err)
	want := []string{
		"Mun {boahtán}${boađán} ihttin.",
		"Dat lea {buorre}€{buorrin}.",
		"Son {mannat}${manai}.",
	}
	if diff := cmp.Diff(want, texts(with.Tests)); diff != "" {
		t.Errorf("merged tests mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, filepath.Join(dir, "test.notfixed.yaml"), with.Tests[2].Source)

	without, err := Load(Options{Files: []string{path}}, quietLogger())
	require.NoError(t, err)
	if diff := cmp.Diff(want[:2], texts(without.Tests)); diff != "" {
		t.Errorf("unmerged tests mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_NotFixedMissingOrEmpty(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "test.yaml", primaryFixture)

	cfg, err := Load(Options{Files: []string{path}, Total: true}, quietLogger())
	require.NoError(t, err)
	assert.Len(t, cfg.Tests, 2)

	writeFixture(t, dir, "test.notfixed.yaml", "Tests: []\n")
	cfg, err = Load(Options{Files: []string{path}, Total: true}, quietLogger())
	require.NoError(t, err)
	assert.Len(t, cfg.Tests, 2)
}

func TestLoad_NotFixedInvalidIsFatal(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "test.yaml", primaryFixture)
	writeFixture(t, dir, "test.notfixed.yaml", "Tests: [\n")

	_, err := Load(Options{Files: []string{path}, Total: true}, quietLogger())
	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
}

func TestLoad_MultipleFilesInArgumentOrder(t *testing.T) {
	dir := t.TempDir()
	a := writeFixture(t, dir, "a.yaml", "Config:\n  Spec: pipespec.xml\nTests:\n  - a1\n  - a2\n")
	b := writeFixture(t, dir, "b.yaml", "Tests:\n  - b1\n")
	c := writeFixture(t, dir, "c.yaml", "Tests:\n  - c1\n  - c2\n")
	writeFixture(t, dir, "a.notfixed.yaml", "Tests:\n  - ignored\n")

	for _, total := range []bool{false, true} {
		cfg, err := Load(Options{Files: []string{a, b, c}, Total: total}, quietLogger())
		require.NoError(t, err)
		if diff := cmp.Diff([]string{"a1", "a2", "b1", "c1", "c2"}, texts(cfg.Tests)); diff != "" {
			t.Errorf("total=%v merged tests mismatch (-want +got):\n%s", total, diff)
		}
	}
}

func TestLoad_AdditionalFileInvalidIsFatal(t *testing.T) {
	dir := t.TempDir()
	a := writeFixture(t, dir, "a.yaml", "Config:\n  Spec: pipespec.xml\nTests:\n  - a1\n")
	b := writeFixture(t, dir, "b.yaml", "Tests: {\n")

	_, err := Load(Options{Files: []string{a, b}}, quietLogger())
	require.Error(t, err)
}

func TestLoad_CollectsMalformedAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeFixture(t, dir, "a.yaml", "Config:\n  Spec: pipespec.xml\nTests:\n  - a1\n  - 7\n")
	b := writeFixture(t, dir, "b.yaml", "Tests:\n  - true\n  - b1\n")

	cfg, err := Load(Options{Files: []string{a, b}}, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "b1"}, texts(cfg.Tests))
	require.Len(t, cfg.Malformed, 2)
	assert.Equal(t, a, cfg.Malformed[0].Path)
	assert.Equal(t, b, cfg.Malformed[1].Path)
}
