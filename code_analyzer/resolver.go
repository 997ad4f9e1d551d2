package code_analyzer

import (
	"path/filepath"

	"github.com/aitests/aitests/code_analyzer/contracts"
	"github.com/spf13/afero"
)

// DefaultExtensions lists the probed extensions in priority order.
var DefaultExtensions = []string{".js", ".jsx", ".ts", ".tsx"}

// PathResolver maps an extension-less module specifier onto a file that exists.
type PathResolver struct {
	fs         afero.Fs
	extensions []string
}

// NewPathResolver creates a resolver over fs. An empty extension list means DefaultExtensions.
func NewPathResolver(fs afero.Fs, extensions []string) contracts.IPathResolver {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	return &PathResolver{fs: fs, extensions: extensions}
}

// Resolve returns basePath itself when it is a file, then basePath+ext, then basePath/index+ext.
func (r *PathResolver) Resolve(basePath string) (string, bool) {
	if basePath == "" {
		return "", false
	}

	if r.isFile(basePath) {
		return basePath, true
	}

	for _, ext := range r.extensions {
		candidate := basePath + ext
		if r.isFile(candidate) {
			return candidate, true
		}
	}

	if r.isDir(basePath) {
		for _, ext := range r.extensions {
			candidate := filepath.Join(basePath, "index"+ext)
			if r.isFile(candidate) {
				return candidate, true
			}
		}
	}

	return "", false
}

func (r *PathResolver) isFile(path string) bool {
	info, err := r.fs.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func (r *PathResolver) isDir(path string) bool {
	info, err := r.fs.Stat(path)
	return err == nil && info.IsDir()
}
