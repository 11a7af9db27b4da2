package checker

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
)

// Error is one error reported by the checker.
//
// On the wire it is a positional array:
//
//	["form", start, end, "type", "explanation", ["suggestion", ...], "title"]
type Error struct {
	Form        string
	Start       int
	End         int
	Type        string
	Explanation string
	Suggestions []string
	Title       string
}

// HasSuggestion reports whether s is among the suggestions.
func (e Error) HasSuggestion(s string) bool {
	for _, sugg := range e.Suggestions {
		if sugg == s {
			return true
		}
	}
	return false
}

// UnmarshalJSON decodes the positional error array.
func (e *Error) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("checker error entry: %w", err)
	}
	if len(raw) < 4 {
		return fmt.Errorf("checker error entry: expected at least 4 fields, got %d", len(raw))
	}

	fields := []any{&e.Form, &e.Start, &e.End, &e.Type, &e.Explanation, &e.Suggestions, &e.Title}
	for i, msg := range raw {
		if i >= len(fields) {
			break
		}
		if err := json.Unmarshal(msg, fields[i]); err != nil {
			return fmt.Errorf("checker error entry field %d: %w", i, err)
		}
	}
	return nil
}

// MarshalJSON encodes the positional error array.
func (e Error) MarshalJSON() ([]byte, error) {
	suggestions := e.Suggestions
	if suggestions == nil {
		suggestions = []string{}
	}
	return json.Marshal([]any{e.Form, e.Start, e.End, e.Type, e.Explanation, suggestions, e.Title})
}

// Response is the checker output for one sentence.
type Response struct {
	Text string  `json:"text"`
	Errs []Error `json:"errs"`
}

// ParseResponse decodes checker stdout. The checker writes one JSON object
// per input paragraph; multiple objects are merged in order.
func ParseResponse(out []byte) (*Response, error) {
	resp := &Response{}
	found := false

	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var part Response
		if err := json.Unmarshal(line, &part); err != nil {
			return nil, fmt.Errorf("failed to decode checker output: %w", err)
		}
		found = true
		resp.Text += part.Text
		resp.Errs = append(resp.Errs, part.Errs...)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read checker output: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("checker produced no output")
	}
	return resp, nil
}
