package context_assembler

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	analyzer_contracts "github.com/aitests/aitests/code_analyzer/contracts"
	"github.com/aitests/aitests/code_analyzer/models"
	"github.com/aitests/aitests/context_assembler/contracts"
	"github.com/aitests/aitests/logger"
	token_contracts "github.com/aitests/aitests/token_management/contracts"
)

// ErrNoContext is returned by RequireContext when nothing was admitted into the budget.
var ErrNoContext = errors.New("no files found to generate tests")

const (
	defaultMaxImportDepth    = 1
	defaultContextTokenLimit = 3000
)

// Options carries the settings the pipeline reads, resolved once from configuration.
type Options struct {
	RootDir           string
	MaxImportDepth    int
	ContextTokenLimit int
	OutlineExcluded   bool
}

// ContextAssembler runs change collection, import walking, config gathering and budgeting.
type ContextAssembler struct {
	collector analyzer_contracts.IChangeCollector
	walker    analyzer_contracts.IImportWalker
	gatherer  contracts.IConfigFileGatherer
	budgeter  token_contracts.IContextBudgeter
	counter   token_contracts.ITokenCounter
	outliner  analyzer_contracts.IOutliner
	options   Options
}

// NewContextAssembler wires the pipeline. outliner may be nil, which disables outlines.
func NewContextAssembler(
	collector analyzer_contracts.IChangeCollector,
	walker analyzer_contracts.IImportWalker,
	gatherer contracts.IConfigFileGatherer,
	budgeter token_contracts.IContextBudgeter,
	counter token_contracts.ITokenCounter,
	outliner analyzer_contracts.IOutliner,
	options Options,
) contracts.IContextAssembler {
	if options.MaxImportDepth <= 0 {
		options.MaxImportDepth = defaultMaxImportDepth
	}
	if options.ContextTokenLimit <= 0 {
		options.ContextTokenLimit = defaultContextTokenLimit
	}

	return &ContextAssembler{
		collector: collector,
		walker:    walker,
		gatherer:  gatherer,
		budgeter:  budgeter,
		counter:   counter,
		outliner:  outliner,
		options:   options,
	}
}

// AssembleContext collects the changes once, walks the imports of every modified file that has
// both versions and of every added file, gathers config files and budgets all six categories.
func (a *ContextAssembler) AssembleContext(ctx context.Context) models.AssembledContext {
	changes := a.collector.GetChangedFiles(ctx)

	var importedFiles []models.FileObject
	for _, file := range changes.Modified {
		if file.OriginalContent == nil || file.Content == nil {
			continue
		}
		importedFiles = append(importedFiles, a.walk(file.Path)...)
	}
	for _, file := range changes.Added {
		importedFiles = append(importedFiles, a.walk(file.Path)...)
	}

	configFiles := a.gatherer.GatherProjectConfigFiles(ctx)

	result := a.budgeter.Budget(models.BudgetInput{
		ConfigFiles:   configFiles,
		ContextFiles:  changes.Context,
		AddedFiles:    changes.Added,
		ModifiedFiles: changes.Modified,
		DeletedFiles:  changes.Deleted,
		ImportedFiles: importedFiles,
	}, a.options.ContextTokenLimit)

	assembled := models.AssembledContext{
		Changes:       changes,
		ImportedFiles: importedFiles,
		ConfigFiles:   configFiles,
		Result:        result,
		Ceiling:       a.options.ContextTokenLimit,
	}

	if a.options.OutlineExcluded && a.outliner != nil {
		assembled.Outlines = a.outlineExcluded(result.ExcludedFiles, assembled.Remaining())
	}

	return assembled
}

// walk starts a fresh walk at depth 1 from a changed file.
func (a *ContextAssembler) walk(path string) []models.FileObject {
	root := path
	if !filepath.IsAbs(root) && a.options.RootDir != "" {
		root = filepath.Join(a.options.RootDir, path)
	}
	return a.walker.GetImportedFiles(root, 1, a.options.MaxImportDepth, models.NewSeenFiles())
}

// outlineExcluded condenses excluded files in exclusion order while their outlines fit into remaining.
func (a *ContextAssembler) outlineExcluded(excluded []models.FileObject, remaining int) []models.FileOutline {
	var outlines []models.FileOutline

	for _, file := range excluded {
		if file.Content == nil {
			continue
		}

		elements := a.outliner.Outline(file.Path, []byte(*file.Content))
		if len(elements) == 0 {
			continue
		}

		tokens := a.counter.CountTokens(file.Path + "\n" + strings.Join(elements, "\n"))
		if tokens > remaining {
			logger.Debug("Outline of %s (%d tokens) does not fit the remaining %d tokens", file.Path, tokens, remaining)
			continue
		}

		outlines = append(outlines, models.FileOutline{Path: file.Path, Elements: elements, TokenCount: tokens})
		remaining -= tokens
	}

	return outlines
}

// RequireContext reports ErrNoContext when the budget admitted no tokens at all.
func RequireContext(assembled models.AssembledContext) error {
	if assembled.Result.TotalTokens == 0 {
		return ErrNoContext
	}
	return nil
}
