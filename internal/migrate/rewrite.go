package migrate

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// removeEntries deletes the Tests items at indices from the FAIL fixture.
//
// Block sequences are edited line by line so the rest of the file keeps its
// formatting and comments. Layouts where an item does not own whole lines
// fall back to re-encoding the document.
func removeEntries(data []byte, doc *document, tests *yaml.Node, indices []int) ([]byte, error) {
	lines := strings.SplitAfter(string(data), "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	drop, ok := itemLineSpans(lines, doc.root, tests, indices)
	if !ok {
		return reencodeWithout(doc, tests, indices)
	}

	var b strings.Builder
	b.Grow(len(data))
	for i, line := range lines {
		if !drop[i+1] {
			b.WriteString(line)
		}
	}
	return []byte(b.String()), nil
}

// itemLineSpans maps 1-based line numbers to delete. It reports false when
// the sequence layout cannot be edited by whole lines.
func itemLineSpans(lines []string, root, tests *yaml.Node, indices []int) (map[int]bool, bool) {
	if tests.Style&yaml.FlowStyle != 0 {
		return nil, false
	}
	items := tests.Content
	for i := 1; i < len(items); i++ {
		if items[i].Line <= items[i-1].Line {
			return nil, false
		}
	}

	drop := make(map[int]bool)
	for _, idx := range indices {
		item := items[idx]
		start := item.Line
		if start < 1 || start > len(lines) || !dashBefore(lines[start-1], item.Column) {
			return nil, false
		}

		end := len(lines) + 1
		if idx+1 < len(items) {
			end = items[idx+1].Line
		} else if next := nextKeyLine(root, item.Line); next > 0 {
			end = next
		}

		// Trailing blank and comment lines belong to whatever follows.
		for end-1 > start && isBlankOrComment(lines[end-2]) {
			end--
		}
		for l := start; l < end; l++ {
			drop[l] = true
		}
	}
	return drop, true
}

// dashBefore reports whether the item at column col is introduced by
// "- " on the same line.
func dashBefore(line string, col int) bool {
	rs := []rune(line)
	if col < 1 || col-1 > len(rs) {
		return false
	}
	prefix := strings.TrimRight(string(rs[:col-1]), " \t")
	return strings.HasSuffix(prefix, "-") && strings.TrimSpace(strings.TrimSuffix(prefix, "-")) == ""
}

// nextKeyLine returns the line of the first top level key after line, or 0.
func nextKeyLine(root *yaml.Node, line int) int {
	next := 0
	for i := 0; i < len(root.Content); i += 2 {
		l := root.Content[i].Line
		if l > line && (next == 0 || l < next) {
			next = l
		}
	}
	return next
}

func isBlankOrComment(line string) bool {
	t := strings.TrimSpace(line)
	return t == "" || strings.HasPrefix(t, "#")
}

func reencodeWithout(doc *document, tests *yaml.Node, indices []int) ([]byte, error) {
	remove := make(map[int]bool, len(indices))
	for _, i := range indices {
		remove[i] = true
	}
	kept := tests.Content[:0:0]
	for i, item := range tests.Content {
		if !remove[i] {
			kept = append(kept, item)
		}
	}
	tests.Content = kept
	return doc.encode()
}
