package code_analyzer

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/aitests/aitests/code_analyzer/contracts"
)

// importPattern matches `import ... from '<path>'` and `require('<path>')`, single or double quoted.
var importPattern = regexp.MustCompile(`(?:import\s.*?from\s+['"](.*?)['"]|require\(['"](.*?)['"]\))`)

// ImportExtractor finds the local files referenced by static import and require statements.
type ImportExtractor struct {
	resolver    contracts.IPathResolver
	rootDir     string
	pathAliases map[string]string
	aliasKeys   []string
}

// NewImportExtractor creates an extractor. pathAliases maps a specifier prefix (for example "@app/")
// onto a directory relative to rootDir; it may be nil.
func NewImportExtractor(resolver contracts.IPathResolver, rootDir string, pathAliases map[string]string) contracts.IImportExtractor {
	keys := make([]string, 0, len(pathAliases))
	for k := range pathAliases {
		if k != "" {
			keys = append(keys, k)
		}
	}
	// longest prefix wins
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) == len(keys[j]) {
			return keys[i] < keys[j]
		}
		return len(keys[i]) > len(keys[j])
	})

	return &ImportExtractor{
		resolver:    resolver,
		rootDir:     rootDir,
		pathAliases: pathAliases,
		aliasKeys:   keys,
	}
}

// ExtractImports returns the resolved paths of the relative imports in fileContent, in source order.
// Bare package specifiers and specifiers that do not resolve to a file are dropped.
func (e *ImportExtractor) ExtractImports(fileContent string, currentDir string) []string {
	var imports []string

	for _, match := range importPattern.FindAllStringSubmatch(fileContent, -1) {
		specifier := match[1]
		if specifier == "" {
			specifier = match[2]
		}
		if specifier == "" {
			continue
		}

		target, ok := e.targetPath(specifier, currentDir)
		if !ok {
			continue
		}

		if resolved, ok := e.resolver.Resolve(target); ok {
			imports = append(imports, resolved)
		}
	}

	return imports
}

func (e *ImportExtractor) targetPath(specifier string, currentDir string) (string, bool) {
	if strings.HasPrefix(specifier, ".") {
		return absPath(filepath.Join(currentDir, specifier)), true
	}

	for _, alias := range e.aliasKeys {
		if strings.HasPrefix(specifier, alias) {
			rest := strings.TrimPrefix(specifier, alias)
			return absPath(filepath.Join(e.rootDir, e.pathAliases[alias], rest)), true
		}
	}

	return "", false
}

func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}
