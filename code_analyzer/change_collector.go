package code_analyzer

import (
	"context"
	"path/filepath"

	"github.com/aitests/aitests/code_analyzer/contracts"
	"github.com/aitests/aitests/code_analyzer/models"
	"github.com/aitests/aitests/logger"
	"github.com/aitests/aitests/utils"
)

// GitClient is the subset of git operations change collection relies on.
type GitClient interface {
	GetChangedFiles(ctx context.Context, changeSource string) []utils.StatusEntry
	GetOriginalFileContent(ctx context.Context, path string) *string
}

// ChangeCollector turns source-control status into file objects with their contents.
type ChangeCollector struct {
	git          GitClient
	reader       contracts.IFileReader
	rootDir      string
	changeSource string
	contextFiles []string
}

func NewChangeCollector(git GitClient, reader contracts.IFileReader, rootDir string, changeSource string, contextFiles []string) contracts.IChangeCollector {
	return &ChangeCollector{
		git:          git,
		reader:       reader,
		rootDir:      rootDir,
		changeSource: changeSource,
		contextFiles: contextFiles,
	}
}

func (c *ChangeCollector) absolute(path string) string {
	if filepath.IsAbs(path) || c.rootDir == "" {
		return path
	}
	return filepath.Join(c.rootDir, path)
}

// GetChangedFiles classifies every status line as modified, added or deleted and appends the
// configured context files. Unknown status codes are ignored.
func (c *ChangeCollector) GetChangedFiles(ctx context.Context) models.Changes {
	var changes models.Changes

	for _, entry := range c.git.GetChangedFiles(ctx, c.changeSource) {
		if entry.Path == "" {
			continue
		}

		switch entry.Code {
		case "M":
			changes.Modified = append(changes.Modified, models.FileObject{
				Path:            entry.Path,
				Content:         c.reader.ReadFileContent(c.absolute(entry.Path)),
				OriginalContent: c.git.GetOriginalFileContent(ctx, entry.Path),
			})
		case "A":
			changes.Added = append(changes.Added, models.FileObject{
				Path:    entry.Path,
				Content: c.reader.ReadFileContent(c.absolute(entry.Path)),
			})
		case "D":
			changes.Deleted = append(changes.Deleted, models.FileObject{Path: entry.Path})
		default:
			logger.Debug("Ignoring %s with status %q", entry.Path, entry.Code)
		}
	}

	for _, contextFile := range c.contextFiles {
		content := c.reader.ReadFileContent(c.absolute(contextFile))
		if content == nil {
			logger.Warn("Context file %s could not be read and was skipped", contextFile)
			continue
		}
		changes.Context = append(changes.Context, models.FileObject{Path: contextFile, Content: content})
	}

	return changes
}
