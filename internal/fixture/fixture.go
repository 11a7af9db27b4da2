// Package fixture reads YAML grammar test fixtures and merges them into the
// test configuration for one run.
//
// A fixture file looks like:
//
//	Config:
//	  Spec: ../pipespec.xml
//	  Variants: [smegram-dev]
//	Tests:
//	  - "Mun {boahtán}${boađán} ihttin."
package fixture

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Top level fixture keys.
const (
	KeyConfig = "Config"
	KeyTests  = "Tests"
)

// TestCase is one annotated sentence and where it came from.
type TestCase struct {
	Text   string
	Source string
	Line   int
}

// Settings is the Config section of a fixture file.
type Settings struct {
	Spec     string   `yaml:"Spec"`
	Variants []string `yaml:"Variants"`
}

// File is one parsed fixture file.
type File struct {
	Path      string
	Settings  Settings
	HasConfig bool
	Tests     []TestCase
	Malformed []MalformedEntry
}

// ReadFile parses the fixture at path. Syntax errors and structural errors
// in Config or Tests yield a *ParseError. Non-string test entries are
// collected in Malformed and left out of Tests.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}
	return Parse(path, data)
}

// Parse parses fixture content; path is used for diagnostics and TestCase.Source.
func Parse(path string, data []byte) (*File, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	f := &File{Path: path}
	root := DocumentRoot(&doc)
	if root == nil {
		return f, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("top level must be a mapping")}
	}

	if cfg := MappingValue(root, KeyConfig); cfg != nil && cfg.ShortTag() != "!!null" {
		settings, err := decodeSettings(cfg)
		if err != nil {
			return nil, &ParseError{Path: path, Err: err}
		}
		f.Settings = *settings
		f.HasConfig = true
	}

	tests := MappingValue(root, KeyTests)
	if tests == nil || tests.ShortTag() == "!!null" {
		return f, nil
	}
	if tests.Kind != yaml.SequenceNode {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("%s must be a list", KeyTests)}
	}

	for _, item := range tests.Content {
		n := resolve(item)
		if IsString(n) {
			f.Tests = append(f.Tests, TestCase{Text: n.Value, Source: path, Line: item.Line})
			continue
		}
		f.Malformed = append(f.Malformed, MalformedEntry{Path: path, Line: item.Line, Value: render(n)})
	}

	return f, nil
}

func decodeSettings(cfg *yaml.Node) (*Settings, error) {
	var raw any
	if err := cfg.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%s: %w", KeyConfig, err)
	}
	if err := validateSettings(raw); err != nil {
		return nil, err
	}

	var s Settings
	if err := cfg.Decode(&s); err != nil {
		return nil, fmt.Errorf("%s: %w", KeyConfig, err)
	}
	return &s, nil
}

// DocumentRoot returns the top level node of a parsed document, or nil for
// an empty document.
func DocumentRoot(doc *yaml.Node) *yaml.Node {
	if doc.Kind == yaml.DocumentNode {
		if len(doc.Content) == 0 {
			return nil
		}
		return resolve(doc.Content[0])
	}
	if doc.Kind == 0 {
		return nil
	}
	return doc
}

// MappingValue returns the value node stored under key, or nil.
func MappingValue(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return resolve(m.Content[i+1])
		}
	}
	return nil
}

// IsString reports whether n is a string scalar.
func IsString(n *yaml.Node) bool {
	n = resolve(n)
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!str"
}

func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func render(n *yaml.Node) string {
	if n.Kind == yaml.ScalarNode {
		return n.Value
	}
	out, err := yaml.Marshal(n)
	if err != nil {
		return fmt.Sprintf("<%s>", n.ShortTag())
	}
	return strings.TrimSpace(string(out))
}
