package checker

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a single checker invocation.
const DefaultTimeout = 60 * time.Second

// Invoker runs the checker process once per sentence.
// Create once per run and reuse for every case.
type Invoker struct {
	Command Command

	// Timeout bounds each invocation. Zero disables the bound.
	Timeout time.Duration

	Logger *slog.Logger
}

// NewInvoker creates an Invoker with DefaultTimeout.
func NewInvoker(cmd Command, logger *slog.Logger) *Invoker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Invoker{
		Command: cmd,
		Timeout: DefaultTimeout,
		Logger:  logger,
	}
}

// Check sends text to the checker on stdin and decodes its response.
func (inv *Invoker) Check(ctx context.Context, text string) (*Response, error) {
	if inv.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, inv.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, inv.Command.Binary, inv.Command.Args()...)
	cmd.Stdin = strings.NewReader(text + "\n")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	inv.Logger.Debug("invoking checker", "command", inv.Command.String(), "text", text)

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("checker %s: %w", inv.Command.Binary, ctxErr)
		}
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("checker %s failed: %w: %s", inv.Command.Binary, err, msg)
		}
		return nil, fmt.Errorf("checker %s failed: %w", inv.Command.Binary, err)
	}

	resp, err := ParseResponse(stdout.Bytes())
	if err != nil {
		return nil, err
	}
	return resp, nil
}
