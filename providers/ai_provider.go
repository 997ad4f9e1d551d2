package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aitests/aitests/providers/contracts"
	"github.com/aitests/aitests/providers/gemini"
	"github.com/aitests/aitests/providers/ollama"
	"github.com/aitests/aitests/providers/openai"
	contracts2 "github.com/aitests/aitests/token_management/contracts"
)

// ErrNoAPIKey is returned when a hosted provider is selected without an API key.
var ErrNoAPIKey = errors.New("API key is not set")

// AIProviderConfig selects and configures the completion provider.
type AIProviderConfig struct {
	Provider        string  `mapstructure:"provider"`
	BaseURL         string  `mapstructure:"base_url"`
	Model           string  `mapstructure:"model"`
	Stream          bool    `mapstructure:"stream"`
	Temperature     float32 `mapstructure:"temperature"`
	MaxTokens       int     `mapstructure:"max_tokens"`
	ReasoningEffort string  `mapstructure:"reasoning_effort"`
	ApiKey          string  `mapstructure:"api_key"`
}

// ChatProviderFactory builds the provider named by config.Provider.
func ChatProviderFactory(config *AIProviderConfig, tokenManagement contracts2.ITokenManagement) (contracts.IChatAIProvider, error) {
	if config == nil {
		return nil, fmt.Errorf("missing AI provider configuration")
	}

	temperature := config.Temperature

	switch strings.ToLower(config.Provider) {
	case "openai", "":
		if config.ApiKey == "" {
			return nil, ErrNoAPIKey
		}
		return openai.NewOpenAIChatProvider(&openai.OpenAIConfig{
			BaseURL:         config.BaseURL,
			Model:           config.Model,
			ApiKey:          config.ApiKey,
			Temperature:     &temperature,
			ReasoningEffort: config.ReasoningEffort,
			MaxTokens:       config.MaxTokens,
			Stream:          config.Stream,
			TokenManagement: tokenManagement,
		}), nil
	case "ollama":
		return ollama.NewOllamaChatProvider(&ollama.OllamaConfig{
			BaseURL:         config.BaseURL,
			Model:           config.Model,
			Temperature:     temperature,
			MaxTokens:       config.MaxTokens,
			TokenManagement: tokenManagement,
		}), nil
	case "gemini":
		if config.ApiKey == "" {
			return nil, ErrNoAPIKey
		}
		return gemini.NewGeminiChatProvider(&gemini.GeminiConfig{
			BaseURL:         config.BaseURL,
			Model:           config.Model,
			ApiKey:          config.ApiKey,
			Temperature:     &temperature,
			MaxTokens:       config.MaxTokens,
			TokenManagement: tokenManagement,
		}), nil
	default:
		return nil, fmt.Errorf("provider '%s' is not supported (use openai, ollama or gemini)", config.Provider)
	}
}

// Complete drains a completion stream into a single string.
func Complete(ctx context.Context, provider contracts.IChatAIProvider, userInput string, prompt string) (string, error) {
	var builder strings.Builder
	for response := range provider.ChatCompletionRequest(ctx, userInput, prompt) {
		// providers close the stream right after an error
		if response.Err != nil {
			return "", response.Err
		}
		if response.Done {
			continue
		}
		builder.WriteString(response.Content)
	}
	return builder.String(), nil
}
