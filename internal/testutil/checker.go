// Package testutil provides deterministic stand-ins for tests: a scripted
// checker, a stepping clock and sequential id generation.
package testutil

import (
	"context"
	"sync"

	"github.com/roach88/gramtest/internal/checker"
)

// FakeChecker answers Check calls from a script keyed by plain text.
// Unscripted sentences get an empty response: the checker found nothing.
//
// Thread-safety: FakeChecker is safe for concurrent use.
type FakeChecker struct {
	mu        sync.Mutex
	responses map[string]*checker.Response
	failures  map[string]error
	calls     []string
}

// NewFakeChecker creates an empty script.
func NewFakeChecker() *FakeChecker {
	return &FakeChecker{
		responses: make(map[string]*checker.Response),
		failures:  make(map[string]error),
	}
}

// Respond scripts the errors reported for text.
func (f *FakeChecker) Respond(text string, errs ...checker.Error) *FakeChecker {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[text] = &checker.Response{Text: text, Errs: errs}
	return f
}

// Fail scripts an invocation failure for text.
func (f *FakeChecker) Fail(text string, err error) *FakeChecker {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[text] = err
	return f
}

// Check implements harness.Checker.
func (f *FakeChecker) Check(ctx context.Context, text string) (*checker.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, text)

	if err, ok := f.failures[text]; ok {
		return nil, err
	}
	if resp, ok := f.responses[text]; ok {
		return resp, nil
	}
	return &checker.Response{Text: text}, nil
}

// Calls returns the texts checked so far, in order.
func (f *FakeChecker) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Found builds a checker error with suggestions.
func Found(form string, start, end int, suggestions ...string) checker.Error {
	return checker.Error{
		Form:        form,
		Start:       start,
		End:         end,
		Type:        "typo",
		Suggestions: suggestions,
	}
}
