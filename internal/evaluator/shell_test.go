package evaluator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShellEvaluateSuccess(t *testing.T) {
	s := NewShell()
	out, err := s.Evaluate(context.Background(), "echo hello")
	require.NoError(t, err)
	require.Equal(t, "hello", out)
}

func TestShellEvaluateFailure(t *testing.T) {
	s := NewShell()
	_, err := s.Evaluate(context.Background(), "exit 7")
	require.Error(t, err)
}
