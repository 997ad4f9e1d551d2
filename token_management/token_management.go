package token_management

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aitests/aitests/constants/lipgloss"
	"github.com/aitests/aitests/embed_data"
	"github.com/aitests/aitests/logger"
	"github.com/aitests/aitests/token_management/contracts"
)

// tokenManager accumulates the tokens reported by the completion provider.
type tokenManager struct {
	usedToken       int
	usedInputToken  int
	usedOutputToken int
}

type details struct {
	MaxTokens                      int     `json:"max_tokens"`
	MaxInputTokens                 int     `json:"max_input_tokens"`
	MaxOutputTokens                int     `json:"max_output_tokens"`
	InputCostPerMillionTokens      float64 `json:"input_cost_per_million_tokens,omitempty"`
	OutputCostPerMillionTokens     float64 `json:"output_cost_per_million_tokens,omitempty"`
	CacheReadInputMillionTokenCost float64 `json:"cache_read_input_million_token_cost,omitempty"`
	Mode                           string  `json:"mode"`
	SupportsFunctionCalling        bool    `json:"supports_function_calling,omitempty"`
}

type Models struct {
	ModelDetails map[string]details `json:"models"`
}

// NewTokenManager creates a new token manager
func NewTokenManager() contracts.ITokenManagement {
	return &tokenManager{}
}

// UsedTokens accumulates the token count for the session.
func (tm *tokenManager) UsedTokens(inputToken int, outputToken int) {
	tm.usedInputToken += inputToken
	tm.usedOutputToken += outputToken
	tm.usedToken += inputToken + outputToken
}

func (tm *tokenManager) DisplayTokens(chatProviderName string, chatModel string) {
	cost := tm.CalculateCost(chatProviderName, chatModel, tm.usedInputToken, tm.usedOutputToken)

	tokenInfo := fmt.Sprintf("Token Used: %d (Input: %d, Output: %d) - Cost: %.6f $ - Chat Model: %s",
		tm.usedToken, tm.usedInputToken, tm.usedOutputToken, cost, chatModel)

	fmt.Println(lipgloss.BoxStyle.Render(tokenInfo))
}

func (tm *tokenManager) GetCurrentTokenUsage() (total int, input int, output int) {
	return tm.usedToken, tm.usedInputToken, tm.usedOutputToken
}

func (tm *tokenManager) ClearToken() {
	tm.usedToken = 0
	tm.usedInputToken = 0
	tm.usedOutputToken = 0
}

func (tm *tokenManager) CalculateCost(providerName string, modelName string, inputToken int, outputToken int) float64 {
	modelDetails, err := getModelDetails(providerName, modelName)
	if err != nil {
		logger.Debug("%v", err)
		return 0
	}

	inputCost := float64(inputToken) * modelDetails.InputCostPerMillionTokens / 1000000.0
	outputCost := float64(outputToken) * modelDetails.OutputCostPerMillionTokens / 1000000.0

	return inputCost + outputCost
}

// MaxInputTokens returns the model's input window, or 0 when the model is unknown.
func MaxInputTokens(providerName string, modelName string) int {
	modelDetails, err := getModelDetails(providerName, modelName)
	if err != nil {
		return 0
	}
	return modelDetails.MaxInputTokens
}

func getModelDetails(providerName string, modelName string) (details, error) {
	providerName = strings.ToLower(providerName)
	modelName = strings.ToLower(modelName)

	models := Models{
		ModelDetails: make(map[string]details),
	}

	if err := json.Unmarshal(embed_data.ModelDetails, &models); err != nil {
		return details{}, fmt.Errorf("failed to parse model details: %w", err)
	}

	model, exists := models.ModelDetails[modelName]
	if !exists {
		return details{}, fmt.Errorf("model details price with name '%s' not found for provider '%s'", modelName, providerName)
	}

	return model, nil
}
