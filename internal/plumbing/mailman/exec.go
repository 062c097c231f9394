package mailman

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

var runner commandRunner = realRunner{}

type commandRunner interface {
	Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error)
}

type realRunner struct{}

func (realRunner) Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return out, fmt.Errorf("mailman: %s: %w: %s", name, err, exitErr.Stderr)
		}
		return out, fmt.Errorf("mailman: %s: %w", name, err)
	}
	return out, nil
}

func run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error) {
	return runner.Run(ctx, stdin, name, args...)
}
