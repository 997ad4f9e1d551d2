package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/aitests/aitests/providers/contracts"
	"github.com/aitests/aitests/providers/models"
	contracts2 "github.com/aitests/aitests/token_management/contracts"
	"google.golang.org/genai"
)

// ContentGenerator is the part of the genai client the provider needs.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiConfig implements the chat provider on top of the official genai SDK.
type GeminiConfig struct {
	BaseURL         string
	Model           string
	ApiKey          string
	Temperature     *float32
	MaxTokens       int
	TokenManagement contracts2.ITokenManagement
	Generator       ContentGenerator
}

// NewGeminiChatProvider initializes a new Gemini provider. The genai client is created on the
// first request unless a Generator is supplied.
func NewGeminiChatProvider(config *GeminiConfig) contracts.IChatAIProvider {
	return &GeminiConfig{
		BaseURL:         config.BaseURL,
		Model:           config.Model,
		ApiKey:          config.ApiKey,
		Temperature:     config.Temperature,
		MaxTokens:       config.MaxTokens,
		TokenManagement: config.TokenManagement,
		Generator:       config.Generator,
	}
}

func (geminiProvider *GeminiConfig) generator(ctx context.Context) (ContentGenerator, error) {
	if geminiProvider.Generator != nil {
		return geminiProvider.Generator, nil
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  geminiProvider.ApiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if geminiProvider.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: geminiProvider.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	geminiProvider.Generator = client.Models
	return geminiProvider.Generator, nil
}

func (geminiProvider *GeminiConfig) ChatCompletionRequest(ctx context.Context, userInput string, prompt string) <-chan models.StreamResponse {
	responseChan := make(chan models.StreamResponse)

	go func() {
		defer close(responseChan)

		generator, err := geminiProvider.generator(ctx)
		if err != nil {
			responseChan <- models.StreamResponse{Err: err}
			return
		}

		config := &genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: prompt}}},
			Temperature:       geminiProvider.Temperature,
		}
		if geminiProvider.MaxTokens > 0 {
			config.MaxOutputTokens = int32(geminiProvider.MaxTokens)
		}

		resp, err := generator.GenerateContent(ctx, geminiProvider.Model,
			[]*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: userInput}}}},
			config,
		)
		if err != nil {
			responseChan <- models.StreamResponse{Err: fmt.Errorf("error sending request: %v", err)}
			return
		}

		if resp.UsageMetadata != nil && geminiProvider.TokenManagement != nil {
			geminiProvider.TokenManagement.UsedTokens(int(resp.UsageMetadata.PromptTokenCount), int(resp.UsageMetadata.CandidatesTokenCount))
		}

		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			responseChan <- models.StreamResponse{Err: fmt.Errorf("gemini returned no candidates")}
			return
		}

		var text strings.Builder
		for _, part := range resp.Candidates[0].Content.Parts {
			if part != nil {
				text.WriteString(part.Text)
			}
		}

		responseChan <- models.StreamResponse{Content: text.String()}
		responseChan <- models.StreamResponse{Done: true}
	}()

	return responseChan
}
