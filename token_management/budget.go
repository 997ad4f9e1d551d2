package token_management

import (
	"github.com/aitests/aitests/code_analyzer/models"
	"github.com/aitests/aitests/token_management/contracts"
)

// ContextBudgeter packs candidate files into a token ceiling.
type ContextBudgeter struct {
	counter contracts.ITokenCounter
}

func NewContextBudgeter(counter contracts.ITokenCounter) contracts.IContextBudgeter {
	return &ContextBudgeter{counter: counter}
}

// Budget admits whole files greedily in category priority order (config, context, added, modified,
// deleted, imported) while the running total stays within ceiling. Files that do not fit are
// excluded and later, smaller files may still be admitted. Inputs are never mutated.
func (b *ContextBudgeter) Budget(input models.BudgetInput, ceiling int) models.BudgetResult {
	var result models.BudgetResult

	for _, category := range models.Categories {
		for _, file := range input.Files(category) {
			tokenCount := 0
			if file.Content != nil {
				tokenCount = b.counter.CountTokensWithin(*file.Content, file.Path, ceiling-result.TotalTokens)
			}

			annotated := file
			annotated.TokenCount = tokenCount

			if result.TotalTokens+tokenCount <= ceiling {
				result.IncludedFiles.Append(category, annotated)
				result.TotalTokens += tokenCount
			} else {
				result.ExcludedFiles = append(result.ExcludedFiles, annotated)
			}
		}
	}

	return result
}
