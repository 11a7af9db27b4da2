// Package pipespec reads compiled grammar checker pipeline specifications
// and resolves which pipeline variant a test run should use.
//
// A specification is either a plain pipespec.xml document or a zip archive
// (.zcheck, .zhfst) carrying a pipespec.xml member.
package pipespec

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Specification file extensions.
const (
	ExtArchive = ".zcheck"
	ExtHFST    = ".zhfst"
)

// memberName is the pipespec document inside an archive.
const memberName = "pipespec.xml"

// Spec describes the pipelines a compiled specification exposes.
type Spec struct {
	// Path is the specification file as given.
	Path string

	// Default is the pipeline used when no variant is requested.
	Default string

	// Available lists every pipeline name in document order.
	Available []string
}

// IsArchive reports whether the checker must be pointed at the spec
// with --archive rather than --spec.
func (s *Spec) IsArchive() bool {
	return IsArchivePath(s.Path)
}

// StripsDevSuffix reports whether requested variant names lose their
// "-dev" marker before matching. Only packaged hfst archives ship
// pipelines without the development suffix.
func (s *Spec) StripsDevSuffix() bool {
	return strings.EqualFold(filepath.Ext(s.Path), ExtHFST)
}

// Has reports whether name is one of the available pipelines.
func (s *Spec) Has(name string) bool {
	for _, a := range s.Available {
		if a == name {
			return true
		}
	}
	return false
}

// IsArchivePath reports whether path names a .zcheck archive.
func IsArchivePath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ExtArchive)
}

type pipespecDoc struct {
	XMLName     xml.Name      `xml:"pipespec"`
	DefaultPipe string        `xml:"default-pipe,attr"`
	Pipelines   []pipelineDoc `xml:"pipeline"`
}

type pipelineDoc struct {
	Name string `xml:"name,attr"`
}

// Locate reads the specification at path and returns its default and
// available pipelines.
func Locate(path string) (*Spec, error) {
	var (
		data []byte
		err  error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ExtArchive, ExtHFST:
		data, err = readArchiveMember(path)
	default:
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read pipeline spec %s: %w", path, err)
	}

	spec, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pipeline spec %s: %w", path, err)
	}
	spec.Path = path
	return spec, nil
}

func parse(data []byte) (*Spec, error) {
	var doc pipespecDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	spec := &Spec{Default: doc.DefaultPipe}
	for _, p := range doc.Pipelines {
		if p.Name == "" {
			continue
		}
		spec.Available = append(spec.Available, p.Name)
	}
	if len(spec.Available) == 0 {
		return nil, fmt.Errorf("no pipelines declared")
	}
	if spec.Default == "" {
		spec.Default = spec.Available[0]
	}
	return spec, nil
}

func readArchiveMember(path string) ([]byte, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	for _, f := range zr.File {
		if filepath.Base(f.Name) != memberName {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("archive has no %s", memberName)
}
