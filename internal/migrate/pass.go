package migrate

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/gramtest/internal/filelock"
	"github.com/roach88/gramtest/internal/fixture"
)

const defaultIndent = 2

// appendToPass adds sentences to the PASS fixture and returns those written.
// A missing PASS file is created with the FAIL file's Config section.
func appendToPass(passPath string, fail *document, sentences []string) ([]string, error) {
	data, err := os.ReadFile(passPath)
	if errors.Is(err, os.ErrNotExist) {
		content, err := newPassContent(fail, sentences)
		if err != nil {
			return nil, err
		}
		if err := filelock.AppendSync(passPath, content); err != nil {
			return nil, err
		}
		return sentences, nil
	}
	if err != nil {
		return nil, err
	}

	pass, err := parseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("cannot append to unparsable PASS fixture: %w", err)
	}

	tests := fixture.MappingValue(pass.root, fixture.KeyTests)
	present := make(map[string]bool)
	if tests != nil && tests.Kind == yaml.SequenceNode {
		for _, item := range tests.Content {
			if fixture.IsString(item) {
				present[key(item.Value)] = true
			}
		}
	}

	var toAdd []string
	for _, s := range sentences {
		if !present[key(s)] {
			present[key(s)] = true
			toAdd = append(toAdd, s)
		}
	}
	if len(toAdd) == 0 {
		return nil, nil
	}

	if suffix, ok := appendableSuffix(data, pass, tests, toAdd); ok && extendsTests(data, suffix, tests, toAdd) {
		return toAdd, filelock.AppendSync(passPath, suffix)
	}

	// The Tests list cannot be extended by appending lines; edit the tree.
	if pass.root == nil {
		pass.root = &yaml.Node{Kind: yaml.MappingNode}
		pass.node = &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{pass.root}}
	}
	seq := tests
	if seq == nil || seq.Kind != yaml.SequenceNode {
		seq = &yaml.Node{Kind: yaml.SequenceNode}
		setMappingValue(pass.root, fixture.KeyTests, seq)
	}
	for _, s := range toAdd {
		seq.Content = append(seq.Content, quotedNode(s))
	}
	out, err := pass.encode()
	if err != nil {
		return nil, err
	}
	return toAdd, filelock.AtomicWrite(passPath, out)
}

// appendableSuffix returns the text to append when Tests is the last block
// entry of a block mapping, so new list items can simply follow it.
func appendableSuffix(data []byte, doc *document, tests *yaml.Node, sentences []string) ([]byte, bool) {
	var buf bytes.Buffer
	if len(data) > 0 && !bytes.HasSuffix(data, []byte("\n")) {
		buf.WriteByte('\n')
	}

	switch {
	case doc.root == nil:
		buf.WriteString(fixture.KeyTests + ":\n")
		writeItems(&buf, defaultIndent, sentences)
		return buf.Bytes(), true
	case doc.root.Style&yaml.FlowStyle != 0:
		return nil, false
	case tests == nil:
		buf.WriteString(fixture.KeyTests + ":\n")
		writeItems(&buf, defaultIndent, sentences)
		return buf.Bytes(), true
	}

	if n := len(doc.root.Content); n < 2 || doc.root.Content[n-2].Value != fixture.KeyTests {
		return nil, false
	}

	switch {
	case tests.Kind == yaml.SequenceNode && tests.Style&yaml.FlowStyle == 0 && len(tests.Content) > 0:
		indent, ok := itemIndent(data, tests)
		if !ok {
			return nil, false
		}
		writeItems(&buf, indent, sentences)
	case tests.Kind == yaml.ScalarNode && tests.ShortTag() == "!!null" && tests.Value == "":
		writeItems(&buf, defaultIndent, sentences)
	default:
		return nil, false
	}
	return buf.Bytes(), true
}

// itemIndent is the indentation of the dash introducing the first list
// item, read from its source line. It reports false when that line does not
// start with the dash.
func itemIndent(data []byte, seq *yaml.Node) (int, bool) {
	lines := strings.Split(string(data), "\n")
	n := seq.Content[0].Line - 1
	if n < 0 || n >= len(lines) {
		return 0, false
	}
	line := lines[n]
	rest := strings.TrimLeft(line, " ")
	if !strings.HasPrefix(rest, "-") {
		return 0, false
	}
	return len(line) - len(rest), true
}

// extendsTests reports whether data followed by suffix parses to the old
// Tests entries followed by exactly the added sentences.
func extendsTests(data, suffix []byte, old *yaml.Node, added []string) bool {
	combined := make([]byte, 0, len(data)+len(suffix))
	combined = append(append(combined, data...), suffix...)
	doc, err := parseDocument(combined)
	if err != nil {
		return false
	}
	tests := fixture.MappingValue(doc.root, fixture.KeyTests)
	if tests == nil || tests.Kind != yaml.SequenceNode {
		return false
	}

	var before []*yaml.Node
	if old != nil && old.Kind == yaml.SequenceNode {
		before = old.Content
	}
	if len(tests.Content) != len(before)+len(added) {
		return false
	}
	for i, item := range before {
		if tests.Content[i].Value != item.Value {
			return false
		}
	}
	for i, s := range added {
		item := tests.Content[len(before)+i]
		if !fixture.IsString(item) || item.Value != s {
			return false
		}
	}
	return true
}

func writeItems(buf *bytes.Buffer, indent int, sentences []string) {
	pad := strings.Repeat(" ", indent)
	for _, s := range sentences {
		buf.WriteString(pad)
		buf.WriteString("- ")
		buf.WriteString(quote(s))
		buf.WriteByte('\n')
	}
}

func newPassContent(fail *document, sentences []string) ([]byte, error) {
	var buf bytes.Buffer
	if cfg := fixture.MappingValue(fail.root, fixture.KeyConfig); cfg != nil {
		header := &yaml.Node{Kind: yaml.MappingNode}
		setMappingValue(header, fixture.KeyConfig, cfg)
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(defaultIndent)
		if err := enc.Encode(header); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		buf.WriteByte('\n')
	}
	buf.WriteString(fixture.KeyTests + ":\n")
	writeItems(&buf, defaultIndent, sentences)
	return buf.Bytes(), nil
}

// quote renders s as a single line YAML double-quoted scalar.
func quote(s string) string {
	out, err := yaml.Marshal(quotedNode(s))
	if err != nil {
		return fmt.Sprintf("%q", s)
	}
	return strings.TrimSuffix(string(out), "\n")
}

func quotedNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Style: yaml.DoubleQuotedStyle, Value: s}
}

func setMappingValue(m *yaml.Node, k string, v *yaml.Node) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == k {
			m.Content[i+1] = v
			return
		}
	}
	m.Content = append(m.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, v)
}
