package fixture

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// NotFixedMarker is inserted before the extension to name the companion
// file holding cases that are known not to be fixed yet.
const NotFixedMarker = ".notfixed"

// Options select the fixture files and command line overrides for a run.
type Options struct {
	// Files are the fixture paths in argument order. The first is primary.
	Files []string

	// Total merges the primary file's .notfixed companion.
	Total bool

	// Spec overrides Config.Spec when set. It is used as given.
	Spec string

	// Variant replaces Config.Variants entirely when set.
	Variant string
}

// Config is the merged test configuration for one run.
// It is built once by Load and not modified afterwards.
type Config struct {
	// File is the primary fixture path.
	File string

	// Spec is the resolved pipeline specification path.
	Spec string

	// Variants are the requested variant names, possibly empty.
	Variants []string

	// Tests are the merged cases: primary, then .notfixed companion, then
	// additional files in argument order.
	Tests []TestCase

	// Malformed entries were skipped while merging.
	Malformed []MalformedEntry
}

// NotFixedPath returns the .notfixed companion of path in the same directory.
func NotFixedPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + NotFixedMarker + ext
}

// Load builds the merged configuration.
func Load(opts Options, logger *slog.Logger) (*Config, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(opts.Files) == 0 {
		return nil, fmt.Errorf("no fixture files given")
	}

	primary, err := ReadFile(opts.Files[0])
	if err != nil {
		return nil, err
	}

	cfg := &Config{File: primary.Path}

	switch {
	case opts.Spec != "":
		cfg.Spec = opts.Spec
	case filepath.IsAbs(primary.Settings.Spec):
		cfg.Spec = primary.Settings.Spec
	case primary.Settings.Spec != "":
		cfg.Spec = filepath.Join(filepath.Dir(primary.Path), primary.Settings.Spec)
	default:
		return nil, &ParseError{Path: primary.Path, Err: fmt.Errorf("%s.Spec is required unless a spec path is given", KeyConfig)}
	}

	if opts.Variant != "" {
		cfg.Variants = []string{opts.Variant}
	} else {
		cfg.Variants = append([]string(nil), primary.Settings.Variants...)
	}

	cfg.merge(primary)

	if opts.Total && len(opts.Files) == 1 {
		notFixed := NotFixedPath(primary.Path)
		f, err := ReadFile(notFixed)
		switch {
		case err == nil:
			logger.Debug("merging notfixed companion", "file", notFixed, "tests", len(f.Tests))
			cfg.merge(f)
		case errors.Is(err, os.ErrNotExist):
			logger.Debug("no notfixed companion", "file", notFixed)
		default:
			return nil, err
		}
	}

	if len(opts.Files) > 1 {
		for _, path := range opts.Files[1:] {
			f, err := ReadFile(path)
			if err != nil {
				return nil, err
			}
			logger.Debug("merging fixture", "file", path, "tests", len(f.Tests))
			cfg.merge(f)
		}
	}

	return cfg, nil
}

func (c *Config) merge(f *File) {
	c.Tests = append(c.Tests, f.Tests...)
	c.Malformed = append(c.Malformed, f.Malformed...)
}
