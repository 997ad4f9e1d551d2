package code_analyzer

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aitests/aitests/code_analyzer/contracts"
	"github.com/aitests/aitests/embed_data"
	"github.com/aitests/aitests/logger"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Outliner condenses source files into their declarations with tree-sitter.
type Outliner struct{}

func NewOutliner() contracts.IOutliner {
	return &Outliner{}
}

func languageForPath(filePath string) string {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".js", ".jsx", ".mjs", ".cjs":
		return "javascript"
	case ".ts", ".mts", ".cts":
		return "typescript"
	case ".tsx":
		return "tsx"
	default:
		return ""
	}
}

// Outline returns tagged declarations such as "function: add" or "class: Cart".
// Unsupported languages, and sources whose parse yields nothing, fall back to the first line.
func (o *Outliner) Outline(filePath string, sourceCode []byte) []string {
	var lang *sitter.Language
	var query []byte

	switch languageForPath(filePath) {
	case "javascript":
		lang = javascript.GetLanguage()
		query = embed_data.JavascriptQuery
	case "typescript":
		lang = typescript.GetLanguage()
		query = embed_data.TypescriptQuery
	case "tsx":
		lang = tsx.GetLanguage()
		query = embed_data.TypescriptQuery
	default:
		return firstLine(sourceCode)
	}

	elements, err := runQueries(lang, query, sourceCode)
	if err != nil {
		logger.Warn("failed to outline %s: %v", filePath, err)
		return firstLine(sourceCode)
	}
	if len(elements) == 0 {
		return firstLine(sourceCode)
	}
	return elements
}

func runQueries(lang *sitter.Language, queryJSON []byte, sourceCode []byte) ([]string, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(lang)
	tree := parser.Parse(nil, sourceCode)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse source")
	}
	defer tree.Close()

	queries := make(map[string]string)
	if err := json.Unmarshal(queryJSON, &queries); err != nil {
		return nil, fmt.Errorf("failed to parse queries: %w", err)
	}

	tags := make([]string, 0, len(queries))
	for tag := range queries {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	type located struct {
		start   uint32
		element string
	}
	var found []located

	for _, tag := range tags {
		q, err := sitter.NewQuery([]byte(queries[tag]), lang)
		if err != nil {
			return nil, fmt.Errorf("failed to compile %s query: %w", tag, err)
		}

		cursor := sitter.NewQueryCursor()
		cursor.Exec(q, tree.RootNode())
		for {
			match, ok := cursor.NextMatch()
			if !ok {
				break
			}
			for _, capture := range match.Captures {
				found = append(found, located{
					start:   capture.Node.StartByte(),
					element: fmt.Sprintf("%s: %s", tag, capture.Node.Content(sourceCode)),
				})
			}
		}
		cursor.Close()
		q.Close()
	}

	sort.SliceStable(found, func(i, j int) bool { return found[i].start < found[j].start })

	elements := make([]string, 0, len(found))
	for _, f := range found {
		elements = append(elements, f.element)
	}
	return elements, nil
}

func firstLine(sourceCode []byte) []string {
	line, _, _ := strings.Cut(string(sourceCode), "\n")
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	return []string{line}
}
