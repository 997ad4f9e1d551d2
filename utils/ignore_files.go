package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// dependencyDirs are package-manager install directories never followed by the import walk.
var dependencyDirs = []string{
	"node_modules",
	"bower_components",
	"jspm_packages",
	"vendor",
}

// IsDependencyPath reports whether any segment of path is a dependency directory.
func IsDependencyPath(path string) bool {
	parts := strings.FieldsFunc(filepath.ToSlash(path), func(r rune) bool { return r == '/' })
	for _, part := range parts {
		for _, dir := range dependencyDirs {
			if part == dir {
				return true
			}
		}
	}
	return false
}

// readGitignore reads the .gitignore file and returns the list of ignore patterns.
func readGitignore(fs afero.Fs, gitignorePath string) ([]string, error) {
	content, err := afero.ReadFile(fs, gitignorePath)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(string(content), "\n")
	var patterns []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			patterns = append(patterns, line)
		}
	}
	return patterns, nil
}

// IsGitIgnored checks if a file path matches any of the patterns in .gitignore.
func IsGitIgnored(path string, patterns []string) bool {
	path = filepath.ToSlash(path)
	for _, pattern := range patterns {
		trimmed := strings.TrimPrefix(pattern, "/")
		if trimmed == path {
			return true
		}
		if match, _ := filepath.Match(trimmed, path); match {
			return true
		}
		// Handle patterns like "dir/" that ignore entire directories
		if strings.HasSuffix(trimmed, "/") && strings.HasPrefix(path, trimmed) {
			return true
		}
	}
	return false
}

// AddToGitignore appends relPath to rootDir/.gitignore unless an existing pattern already covers it.
// It reports whether the file was changed.
func AddToGitignore(fs afero.Fs, rootDir string, relPath string) (bool, error) {
	gitignorePath := filepath.Join(rootDir, ".gitignore")
	relPath = filepath.ToSlash(relPath)

	patterns, err := readGitignore(fs, gitignorePath)
	if err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to read .gitignore: %w", err)
	}
	if IsGitIgnored(relPath, patterns) {
		return false, nil
	}

	existing, err := afero.ReadFile(fs, gitignorePath)
	if err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to read .gitignore: %w", err)
	}

	var builder strings.Builder
	builder.Write(existing)
	if len(existing) > 0 && !strings.HasSuffix(string(existing), "\n") {
		builder.WriteString("\n")
	}
	builder.WriteString(relPath)
	builder.WriteString("\n")

	if err := afero.WriteFile(fs, gitignorePath, []byte(builder.String()), 0644); err != nil {
		return false, fmt.Errorf("failed to write .gitignore: %w", err)
	}
	return true, nil
}
