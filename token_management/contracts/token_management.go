package contracts

import "github.com/aitests/aitests/code_analyzer/models"

type ITokenManagement interface {
	UsedTokens(inputToken int, outputToken int)
	CalculateCost(providerName string, modelName string, inputToken int, outputToken int) float64
	DisplayTokens(chatProviderName string, chatModel string)
	GetCurrentTokenUsage() (total int, input int, output int)
	ClearToken()
}

type ITokenCounter interface {
	CountTokens(content string) int
	CountTokensWithin(content string, filePath string, tokensLeft int) int
}

type IContextBudgeter interface {
	Budget(input models.BudgetInput, ceiling int) models.BudgetResult
}
