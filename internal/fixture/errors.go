package fixture

import "fmt"

// ParseError reports a fixture file that is not valid structured data.
// It aborts the run.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse fixture %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// MalformedEntry is a test entry that is not a string. It is reported and
// skipped; the run continues.
type MalformedEntry struct {
	Path  string
	Line  int
	Value string
}

func (e MalformedEntry) String() string {
	return fmt.Sprintf("Error in %s:%d\n%s is not a string", e.Path, e.Line, e.Value)
}
