// Package evaluator provides the reference Evaluator implementation:
// payload is a shell command line, run via sh -c and captured to
// completion. It is the scheduler's default collaborator when no other
// payload language is configured — the payload remains opaque to the
// engine and executor either way.
package evaluator

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Shell runs a task payload as a shell command line.
type Shell struct {
	// Shell is the interpreter binary, e.g. "sh". Empty defaults to "sh".
	Shell string
}

// NewShell builds a Shell evaluator using the system's sh.
func NewShell() *Shell {
	return &Shell{Shell: "sh"}
}

// Evaluate runs payload as "<shell> -c <payload>" and returns combined
// stdout+stderr, trimmed of leading and trailing whitespace. A non-zero exit is
// returned as an error including the captured output.
func (s *Shell) Evaluate(ctx context.Context, payload string) (string, error) {
	shell := s.Shell
	if shell == "" {
		shell = "sh"
	}

	cmd := exec.CommandContext(ctx, shell, "-c", payload)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%w: %s", err, strings.TrimSpace(out.String()))
	}
	return strings.TrimSpace(out.String()), nil
}
