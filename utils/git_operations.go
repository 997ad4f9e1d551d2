package utils

import (
	"context"
	"fmt"
	"strings"

	"github.com/aitests/aitests/logger"
)

// Change sources understood by GetChangedFiles.
const (
	ChangeSourceStaged   = "staged"
	ChangeSourceWorktree = "worktree"
)

// StatusEntry is one line of git's name-status or porcelain output.
type StatusEntry struct {
	Code string
	Path string
}

// GitOperations handles git-related operations
type GitOperations struct {
	workingDir string
	runner     CommandRunner
}

// NewGitOperations creates a new GitOperations instance. A nil runner uses os/exec.
func NewGitOperations(workingDir string, runner CommandRunner) *GitOperations {
	if runner == nil {
		runner = NewCommandExecutor()
	}
	return &GitOperations{workingDir: workingDir, runner: runner}
}

// WorkingDir returns the directory git commands run in.
func (g *GitOperations) WorkingDir() string {
	return g.workingDir
}

// CheckGitRepo checks if the current directory is a git repository
func (g *GitOperations) CheckGitRepo(ctx context.Context) error {
	if _, err := g.runner.Run(ctx, g.workingDir, "git", "rev-parse", "--git-dir"); err != nil {
		return fmt.Errorf("not a git repository")
	}
	return nil
}

// TopLevel returns the repository root, which change paths are relative to.
func (g *GitOperations) TopLevel(ctx context.Context) (string, error) {
	output, err := g.runner.Run(ctx, g.workingDir, "git", "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("failed to find repository root: %w", err)
	}
	return strings.TrimSpace(output), nil
}

// RunGitCommand runs git with args and returns its output.
// Failures are logged and reported as empty output.
func (g *GitOperations) RunGitCommand(ctx context.Context, args ...string) string {
	output, err := g.runner.Run(ctx, g.workingDir, "git", args...)
	if err != nil {
		logger.Error("Error running git command: git %s: %v", strings.Join(args, " "), err)
		return ""
	}
	return output
}

// GetChangedFiles lists changed paths with their status codes.
// The staged source reads `git diff --cached --name-status`; worktree reads `git status --porcelain`.
func (g *GitOperations) GetChangedFiles(ctx context.Context, changeSource string) []StatusEntry {
	if changeSource != ChangeSourceWorktree {
		return ParseStatusOutput(g.RunGitCommand(ctx, "diff", "--cached", "--name-status"))
	}

	entries := ParseStatusOutput(g.RunGitCommand(ctx, "status", "--porcelain"))
	for i := range entries {
		entries[i].Code = FoldPorcelainCode(entries[i].Code)
	}
	return entries
}

// FoldPorcelainCode reduces a porcelain XY pair to a single M, A or D.
// D in either column wins, then A in the index column, then M in either column.
// Renames, copies, conflicts and untracked files are returned unchanged.
func FoldPorcelainCode(code string) string {
	switch {
	case strings.ContainsAny(code, "RCU?"):
		return code
	case strings.Contains(code, "D"):
		return "D"
	case strings.HasPrefix(code, "A"):
		return "A"
	case strings.Contains(code, "M"):
		return "M"
	}
	return code
}

// ParseStatusOutput splits status output into entries. The status code is the first two characters
// of a line with whitespace trimmed; the path is the remainder, trimmed.
func ParseStatusOutput(output string) []StatusEntry {
	var entries []StatusEntry
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if len(line) < 2 {
			entries = append(entries, StatusEntry{Code: strings.TrimSpace(line)})
			continue
		}
		entries = append(entries, StatusEntry{
			Code: strings.TrimSpace(line[:2]),
			Path: strings.TrimSpace(line[2:]),
		})
	}
	return entries
}

// GetOriginalFileContent returns the content of path at HEAD, or nil when git cannot provide it.
func (g *GitOperations) GetOriginalFileContent(ctx context.Context, path string) *string {
	output, err := g.runner.Run(ctx, g.workingDir, "git", "show", "HEAD:"+path)
	if err != nil {
		logger.Warn("Could not retrieve original content for %s: %v", path, err)
		return nil
	}
	return &output
}
