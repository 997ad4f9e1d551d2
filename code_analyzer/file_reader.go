package code_analyzer

import (
	"github.com/aitests/aitests/code_analyzer/contracts"
	"github.com/aitests/aitests/logger"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/spf13/afero"
)

const DefaultReadCacheSize = 1024

// FileReader resolves a path and reads its text, remembering contents for the rest of the run.
type FileReader struct {
	fs       afero.Fs
	resolver contracts.IPathResolver
	cache    *lru.Cache[string, string]
}

// NewFileReader creates a reader. A cacheSize <= 0 disables the in-memory cache.
func NewFileReader(fs afero.Fs, resolver contracts.IPathResolver, cacheSize int) contracts.IFileReader {
	reader := &FileReader{fs: fs, resolver: resolver}

	if cacheSize > 0 {
		cache, err := lru.New[string, string](cacheSize)
		if err != nil {
			logger.Warn("failed to initialize file read cache: %v", err)
		} else {
			reader.cache = cache
		}
	}

	return reader
}

// ReadFileContent returns the content of filePath after extension resolution, or nil when the
// path cannot be resolved or read.
func (r *FileReader) ReadFileContent(filePath string) *string {
	resolvedPath, ok := r.resolver.Resolve(filePath)
	if !ok {
		logger.Warn("Could not resolve file path: %s", filePath)
		return nil
	}

	if r.cache != nil {
		if content, found := r.cache.Get(resolvedPath); found {
			return &content
		}
	}

	data, err := afero.ReadFile(r.fs, resolvedPath)
	if err != nil {
		logger.Error("Failed to read file: %s %v", filePath, err)
		return nil
	}

	content := string(data)
	if r.cache != nil {
		r.cache.Add(resolvedPath, content)
	}
	return &content
}

// ClearCache drops every remembered file content.
func (r *FileReader) ClearCache() {
	if r.cache != nil {
		r.cache.Purge()
	}
}
