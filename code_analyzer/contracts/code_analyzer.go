package contracts

import (
	"context"

	"github.com/aitests/aitests/code_analyzer/models"
)

type IPathResolver interface {
	Resolve(basePath string) (string, bool)
}

type IImportExtractor interface {
	ExtractImports(fileContent string, currentDir string) []string
}

type IFileReader interface {
	ReadFileContent(filePath string) *string
	ClearCache()
}

type IImportWalker interface {
	GetImportedFiles(filePath string, currentDepth int, maxDepth int, seen models.SeenFiles) []models.FileObject
}

type IChangeCollector interface {
	GetChangedFiles(ctx context.Context) models.Changes
}

type IOutliner interface {
	Outline(filePath string, sourceCode []byte) []string
}
