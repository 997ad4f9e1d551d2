package utils

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CommandRunner runs an external program and returns its standard output.
type CommandRunner interface {
	Run(ctx context.Context, dir string, name string, args ...string) (string, error)
}

// CommandExecutor runs commands through os/exec.
type CommandExecutor struct{}

// NewCommandExecutor creates a new command executor instance
func NewCommandExecutor() *CommandExecutor {
	return &CommandExecutor{}
}

// Run executes name with args in dir. A non-zero exit returns an error carrying stderr.
func (ce *CommandExecutor) Run(ctx context.Context, dir string, name string, args ...string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("empty command provided")
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return stdout.String(), fmt.Errorf("command '%s %s' failed: %w", name, strings.Join(args, " "), err)
		}
		return stdout.String(), fmt.Errorf("command '%s %s' failed: %s: %w", name, strings.Join(args, " "), msg, err)
	}

	return stdout.String(), nil
}
