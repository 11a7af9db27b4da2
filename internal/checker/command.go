// Package checker launches the external grammar checker and decodes its
// responses.
package checker

import (
	"strings"

	"github.com/roach88/gramtest/internal/pipespec"
)

// DefaultBinary is the checker looked up on PATH when none is configured.
const DefaultBinary = "divvun-checker"

// Command describes one checker pipeline invocation.
type Command struct {
	// Binary is the checker executable.
	Binary string

	// Spec is the compiled specification path.
	Spec string

	// Variant is the resolved pipeline name.
	Variant string

	// Archive passes Spec with --archive instead of --spec.
	Archive bool
}

// NewCommand builds the invocation for a spec path and variant.
func NewCommand(binary, spec, variant string) Command {
	if binary == "" {
		binary = DefaultBinary
	}
	return Command{Binary: binary, Spec: spec, Variant: variant, Archive: pipespec.IsArchivePath(spec)}
}

// ForSpec builds the invocation for a located spec.
func ForSpec(binary string, spec *pipespec.Spec, variant string) Command {
	c := NewCommand(binary, spec.Path, variant)
	c.Archive = spec.IsArchive()
	return c
}

// Args returns the checker arguments.
func (c Command) Args() []string {
	flag := "--spec"
	if c.Archive {
		flag = "--archive"
	}
	return []string{flag, c.Spec, "--variant", c.Variant}
}

// String renders the command line for diagnostics.
func (c Command) String() string {
	return strings.Join(append([]string{c.Binary}, c.Args()...), " ")
}
