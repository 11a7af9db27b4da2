// Package migrate moves test cases that started passing out of a FAIL
// fixture and into its PASS sibling.
//
// Cases are matched against the parsed Tests entries of the FAIL file, so a
// sentence that happens to be a substring of another line is never touched.
// The PASS append is synced before the FAIL rewrite begins: a crash between
// the two leaves a duplicate in FAIL, which the next run removes, rather
// than losing the case.
package migrate

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/roach88/gramtest/internal/filelock"
	"github.com/roach88/gramtest/internal/fixture"
)

// Fixture pair markers.
const (
	FailMarker = "FAIL"
	PassMarker = "PASS"
)

// IsFailFixture reports whether the file name carries the FAIL marker.
func IsFailFixture(path string) bool {
	return strings.Contains(filepath.Base(path), FailMarker)
}

// PassPath returns the PASS sibling of a FAIL fixture. Only the file name is
// rewritten; directories containing the marker are left alone.
func PassPath(failPath string) string {
	dir, base := filepath.Split(failPath)
	return dir + strings.ReplaceAll(base, FailMarker, PassMarker)
}

// WriteError reports a failed fixture write. Test verdicts stay valid.
type WriteError struct {
	Op   string
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("migration %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Result describes one migration.
type Result struct {
	FailPath string
	PassPath string

	// Moved are the passing cases found in FAIL, in run order.
	Moved []string

	// Appended are the cases written to PASS. Cases already present in
	// PASS are not written again.
	Appended []string

	// Removed counts FAIL entries deleted.
	Removed int
}

// Migrator reconciles a FAIL/PASS fixture pair after a run.
type Migrator struct {
	logger *slog.Logger
}

// New creates a Migrator.
func New(logger *slog.Logger) *Migrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Migrator{logger: logger}
}

// Migrate moves the passing sentences out of failPath into its PASS sibling.
// It returns a nil Result when there is nothing to do: failPath has no FAIL
// marker, passing is empty, or none of passing is still listed in failPath.
func (m *Migrator) Migrate(failPath string, passing []string) (*Result, error) {
	if !IsFailFixture(failPath) || len(passing) == 0 {
		return nil, nil
	}

	lock := filelock.New(failPath)
	if err := lock.Lock(); err != nil {
		return nil, &WriteError{Op: "lock", Path: failPath, Err: err}
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			m.logger.Warn("failed to release fixture lock", "path", failPath, "error", err)
		}
	}()

	data, err := os.ReadFile(failPath)
	if err != nil {
		return nil, &WriteError{Op: "read", Path: failPath, Err: err}
	}
	doc, err := parseDocument(data)
	if err != nil {
		return nil, &WriteError{Op: "parse", Path: failPath, Err: err}
	}

	wanted := make(map[string]bool, len(passing))
	for _, s := range passing {
		wanted[key(s)] = true
	}

	tests := fixture.MappingValue(doc.root, fixture.KeyTests)
	var indices []int
	movedSet := make(map[string]bool)
	if tests != nil && tests.Kind == yaml.SequenceNode {
		for i, item := range tests.Content {
			if fixture.IsString(item) && wanted[key(item.Value)] {
				indices = append(indices, i)
				movedSet[key(item.Value)] = true
			}
		}
	}
	if len(indices) == 0 {
		m.logger.Debug("no passing cases left in FAIL fixture", "path", failPath)
		return nil, nil
	}

	result := &Result{FailPath: failPath, PassPath: PassPath(failPath), Removed: len(indices)}
	seen := make(map[string]bool)
	for _, s := range passing {
		k := key(s)
		if movedSet[k] && !seen[k] {
			seen[k] = true
			result.Moved = append(result.Moved, s)
		}
	}

	appended, err := appendToPass(result.PassPath, doc, result.Moved)
	if err != nil {
		return nil, &WriteError{Op: "append", Path: result.PassPath, Err: err}
	}
	result.Appended = appended
	m.logger.Info("appended passing cases", "path", result.PassPath, "count", len(appended))

	rewritten, err := removeEntries(data, doc, tests, indices)
	if err != nil {
		return result, &WriteError{Op: "rewrite", Path: failPath, Err: err}
	}
	if err := filelock.AtomicWrite(failPath, rewritten); err != nil {
		return result, &WriteError{Op: "rewrite", Path: failPath, Err: err}
	}
	m.logger.Info("removed passing cases", "path", failPath, "count", result.Removed)

	return result, nil
}

// key is the identity of a test sentence.
func key(s string) string {
	return norm.NFC.String(s)
}

type document struct {
	node *yaml.Node
	root *yaml.Node
}

func parseDocument(data []byte) (*document, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	root := fixture.DocumentRoot(&node)
	if root != nil && root.Kind != yaml.MappingNode {
		return nil, errors.New("top level must be a mapping")
	}
	return &document{node: &node, root: root}, nil
}

// encode renders a modified document with the fixture indentation.
func (d *document) encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d.node); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
