package code_analyzer

import (
	"path/filepath"

	"github.com/aitests/aitests/code_analyzer/contracts"
	"github.com/aitests/aitests/code_analyzer/models"
	"github.com/aitests/aitests/utils"
)

// ImportWalker follows relative imports from a file up to a depth bound.
type ImportWalker struct {
	reader    contracts.IFileReader
	extractor contracts.IImportExtractor
}

func NewImportWalker(reader contracts.IFileReader, extractor contracts.IImportExtractor) contracts.IImportWalker {
	return &ImportWalker{reader: reader, extractor: extractor}
}

// GetImportedFiles returns the files reachable from filePath through at most maxDepth-currentDepth+1
// import hops, each distinct file once, direct imports before their own imports.
// seen is shared across the whole walk and may be nil for a fresh one.
func (w *ImportWalker) GetImportedFiles(filePath string, currentDepth int, maxDepth int, seen models.SeenFiles) []models.FileObject {
	if seen == nil {
		seen = models.NewSeenFiles()
	}
	if currentDepth > maxDepth || seen.Has(filePath) {
		return nil
	}

	seen.Add(filePath)
	return w.collect(filePath, currentDepth, maxDepth, seen)
}

func (w *ImportWalker) collect(filePath string, depth int, maxDepth int, seen models.SeenFiles) []models.FileObject {
	content := w.reader.ReadFileContent(filePath)
	if content == nil {
		return nil
	}

	var files []models.FileObject
	for _, importPath := range w.extractor.ExtractImports(*content, filepath.Dir(filePath)) {
		if utils.IsDependencyPath(importPath) || seen.Has(importPath) {
			continue
		}

		importContent := w.reader.ReadFileContent(importPath)
		if importContent == nil {
			continue
		}

		seen.Add(importPath)
		files = append(files, models.FileObject{Path: importPath, Content: importContent})

		if depth+1 <= maxDepth {
			files = append(files, w.collect(importPath, depth+1, maxDepth, seen)...)
		}
	}

	return files
}
