// Package errormarkup converts sentences with inline error annotations into
// plain text plus the list of marked errors.
//
// An annotation wraps the erroneous span in braces, follows it with an error
// type marker and a correction block:
//
//	Mun {boahtán}${boađán} ihttin.
//	{{dat}${dát} girji}£{noun,sg|dát girji///dát girjjit}
//
// The correction block holds optional error info before a '|' and one or
// more corrections separated by "///". Erroneous spans may nest.
package errormarkup

import (
	"fmt"
	"sort"
	"strings"
)

// Error types keyed by their markup marker.
var markers = map[rune]string{
	'$': "errorort",
	'¢': "errorortreal",
	'€': "errorlex",
	'£': "errormorphsyn",
	'¥': "errorsyn",
	'§': "errorlang",
	'∞': "errorformat",
}

const correctionSeparator = "///"

// Error is one annotated error.
type Error struct {
	// Form is the erroneous text as it appears in the plain sentence.
	Form string

	// Start and End are rune offsets into the plain sentence.
	Start int
	End   int

	// Type is the error type named by the marker (e.g. "errorort").
	Type string

	// Info is the optional error info preceding '|' in the correction block.
	Info string

	// Corrections lists the accepted corrections. An empty list means the
	// annotator expects the error to be flagged without a suggestion.
	Corrections []string
}

// HasCorrection reports whether s is one of the accepted corrections.
func (e Error) HasCorrection(s string) bool {
	for _, c := range e.Corrections {
		if c == s {
			return true
		}
	}
	return false
}

// Sentence is an annotated test sentence after conversion.
type Sentence struct {
	// Source is the sentence as written in the fixture.
	Source string

	// Text is the sentence with all markup removed.
	Text string

	// Errors are sorted by Start, longest span first.
	Errors []Error
}

// SyntaxError reports malformed markup.
type SyntaxError struct {
	Offset  int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("error markup at offset %d: %s", e.Offset, e.Message)
}

// Parse converts an annotated sentence.
func Parse(annotated string) (*Sentence, error) {
	rs := []rune(annotated)
	out := make([]rune, 0, len(rs))
	var (
		open []int
		errs []Error
	)

	for i := 0; i < len(rs); {
		switch r := rs[i]; r {
		case '{':
			open = append(open, len(out))
			i++
		case '}':
			if len(open) == 0 {
				return nil, &SyntaxError{Offset: i, Message: "unbalanced '}'"}
			}
			start := open[len(open)-1]
			open = open[:len(open)-1]

			if i+1 >= len(rs) {
				return nil, &SyntaxError{Offset: i, Message: "missing error marker"}
			}
			typ, ok := markers[rs[i+1]]
			if !ok {
				return nil, &SyntaxError{Offset: i + 1, Message: fmt.Sprintf("unknown error marker %q", rs[i+1])}
			}
			if i+2 >= len(rs) || rs[i+2] != '{' {
				return nil, &SyntaxError{Offset: i + 2, Message: "missing correction block"}
			}
			end := indexRune(rs, '}', i+3)
			if end < 0 {
				return nil, &SyntaxError{Offset: i + 2, Message: "unterminated correction block"}
			}

			info, corrections := parseCorrection(string(rs[i+3 : end]))
			errs = append(errs, Error{
				Form:        string(out[start:]),
				Start:       start,
				End:         len(out),
				Type:        typ,
				Info:        info,
				Corrections: corrections,
			})
			i = end + 1
		default:
			out = append(out, r)
			i++
		}
	}

	if len(open) > 0 {
		return nil, &SyntaxError{Offset: len(rs), Message: "unclosed '{'"}
	}

	sort.SliceStable(errs, func(a, b int) bool {
		if errs[a].Start != errs[b].Start {
			return errs[a].Start < errs[b].Start
		}
		return errs[a].End > errs[b].End
	})

	return &Sentence{
		Source: annotated,
		Text:   string(out),
		Errors: errs,
	}, nil
}

func parseCorrection(block string) (string, []string) {
	var info string
	if i := strings.Index(block, "|"); i >= 0 {
		info = strings.TrimSpace(block[:i])
		block = block[i+1:]
	}

	block = strings.TrimSpace(block)
	if block == "" {
		return info, nil
	}

	parts := strings.Split(block, correctionSeparator)
	corrections := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			corrections = append(corrections, p)
		}
	}
	return info, corrections
}

func indexRune(rs []rune, r rune, from int) int {
	for i := from; i < len(rs); i++ {
		if rs[i] == r {
			return i
		}
	}
	return -1
}
