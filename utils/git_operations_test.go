package utils

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedCall struct {
	dir  string
	name string
	args []string
}

type fakeRunner struct {
	outputs map[string]string
	errs    map[string]error
	calls   []recordedCall
}

func (r *fakeRunner) Run(_ context.Context, dir string, name string, args ...string) (string, error) {
	r.calls = append(r.calls, recordedCall{dir: dir, name: name, args: args})
	key := strings.Join(args, " ")
	if err, ok := r.errs[key]; ok {
		return "", err
	}
	return r.outputs[key], nil
}

func TestParseStatusOutput(t *testing.T) {
	entries := ParseStatusOutput("M  file1.txt\nA\tsrc/new.ts\n D worktree.ts\n\nD  file3.txt\r\n")

	assert.Equal(t, []StatusEntry{
		{Code: "M", Path: "file1.txt"},
		{Code: "A", Path: "src/new.ts"},
		{Code: "D", Path: "worktree.ts"},
		{Code: "D", Path: "file3.txt"},
	}, entries)
}

func TestParseStatusOutput_Empty(t *testing.T) {
	assert.Empty(t, ParseStatusOutput(""))
	assert.Empty(t, ParseStatusOutput("\n\n"))
}

func TestGetChangedFiles_StagedUsesCachedDiff(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{
		"diff --cached --name-status": "M\tapp.ts\n",
	}}
	git := NewGitOperations("/repo", runner)

	entries := git.GetChangedFiles(context.Background(), ChangeSourceStaged)

	assert.Equal(t, []StatusEntry{{Code: "M", Path: "app.ts"}}, entries)
	require.Len(t, runner.calls, 1)
	assert.Equal(t, "/repo", runner.calls[0].dir)
	assert.Equal(t, "git", runner.calls[0].name)
}

func TestGetChangedFiles_WorktreeUsesPorcelain(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{
		"status --porcelain": "A  new.ts\n",
	}}
	git := NewGitOperations("/repo", runner)

	entries := git.GetChangedFiles(context.Background(), ChangeSourceWorktree)

	assert.Equal(t, []StatusEntry{{Code: "A", Path: "new.ts"}}, entries)
}

func TestGetChangedFiles_WorktreeFoldsTwoColumnCodes(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{
		"status --porcelain": "MM src/a.js\nAM src/b.js\n M src/c.js\nAD src/d.js\nMD src/e.js\n?? notes.txt\nR  old.js -> new.js\n",
	}}
	git := NewGitOperations("/repo", runner)

	entries := git.GetChangedFiles(context.Background(), ChangeSourceWorktree)

	assert.Equal(t, []StatusEntry{
		{Code: "M", Path: "src/a.js"},
		{Code: "A", Path: "src/b.js"},
		{Code: "M", Path: "src/c.js"},
		{Code: "D", Path: "src/d.js"},
		{Code: "D", Path: "src/e.js"},
		{Code: "??", Path: "notes.txt"},
		{Code: "R", Path: "old.js -> new.js"},
	}, entries)
}

func TestGetChangedFiles_StagedKeepsCodes(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{
		"diff --cached --name-status": "MM\tsrc/a.js\n",
	}}
	git := NewGitOperations("/repo", runner)

	assert.Equal(t, []StatusEntry{{Code: "MM", Path: "src/a.js"}}, git.GetChangedFiles(context.Background(), ChangeSourceStaged))
}

func TestFoldPorcelainCode(t *testing.T) {
	cases := map[string]string{
		"M": "M", "MM": "M", "AM": "A", "A": "A", "D": "D", "AD": "D", "MD": "D",
		"??": "??", "R": "R", "UU": "UU",
	}
	for code, want := range cases {
		assert.Equal(t, want, FoldPorcelainCode(code), code)
	}
}

func TestRunGitCommand_FailureYieldsEmptyOutput(t *testing.T) {
	runner := &fakeRunner{errs: map[string]error{
		"diff --cached --name-status": errors.New("fatal: not a git repository"),
	}}
	git := NewGitOperations("/repo", runner)

	assert.Equal(t, "", git.RunGitCommand(context.Background(), "diff", "--cached", "--name-status"))
	assert.Empty(t, git.GetChangedFiles(context.Background(), ChangeSourceStaged))
}

func TestGetOriginalFileContent(t *testing.T) {
	runner := &fakeRunner{
		outputs: map[string]string{"show HEAD:src/app.ts": "old"},
		errs:    map[string]error{"show HEAD:src/new.ts": errors.New("exists on disk, but not in 'HEAD'")},
	}
	git := NewGitOperations("/repo", runner)

	content := git.GetOriginalFileContent(context.Background(), "src/app.ts")
	require.NotNil(t, content)
	assert.Equal(t, "old", *content)

	assert.Nil(t, git.GetOriginalFileContent(context.Background(), "src/new.ts"))
}

func TestTopLevel(t *testing.T) {
	git := NewGitOperations("/repo/src", &fakeRunner{outputs: map[string]string{
		"rev-parse --show-toplevel": "/repo\n",
	}})

	root, err := git.TopLevel(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "/repo", root)

	failing := NewGitOperations("/tmp", &fakeRunner{errs: map[string]error{
		"rev-parse --show-toplevel": errors.New("exit status 128"),
	}})
	_, err = failing.TopLevel(context.Background())
	assert.Error(t, err)
}

func TestCheckGitRepo(t *testing.T) {
	ok := NewGitOperations("/repo", &fakeRunner{})
	assert.NoError(t, ok.CheckGitRepo(context.Background()))

	notRepo := NewGitOperations("/tmp", &fakeRunner{errs: map[string]error{
		"rev-parse --git-dir": errors.New("exit status 128"),
	}})
	assert.Error(t, notRepo.CheckGitRepo(context.Background()))
}
