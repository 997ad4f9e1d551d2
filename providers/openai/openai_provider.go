package openai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aitests/aitests/providers/contracts"
	"github.com/aitests/aitests/providers/models"
	openai_models "github.com/aitests/aitests/providers/openai/models"
	contracts2 "github.com/aitests/aitests/token_management/contracts"
)

// OpenAIConfig implements the chat provider for OpenAI and OpenAI-compatible endpoints.
type OpenAIConfig struct {
	BaseURL         string
	Model           string
	ApiKey          string
	Temperature     *float32
	ReasoningEffort string
	MaxTokens       int
	Stream          bool
	TokenManagement contracts2.ITokenManagement
	HTTPClient      *http.Client
}

const (
	defaultBaseURL = "https://api.openai.com/v1"
	dataPrefix     = "data: "
	doneMarker     = "[DONE]"
)

// NewOpenAIChatProvider initializes a new OpenAI provider.
func NewOpenAIChatProvider(config *OpenAIConfig) contracts.IChatAIProvider {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	client := config.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	return &OpenAIConfig{
		BaseURL:         strings.TrimRight(baseURL, "/"),
		Model:           config.Model,
		ApiKey:          config.ApiKey,
		Temperature:     config.Temperature,
		ReasoningEffort: config.ReasoningEffort,
		MaxTokens:       config.MaxTokens,
		Stream:          config.Stream,
		TokenManagement: config.TokenManagement,
		HTTPClient:      client,
	}
}

func (openAIProvider *OpenAIConfig) ChatCompletionRequest(ctx context.Context, userInput string, prompt string) <-chan models.StreamResponse {
	responseChan := make(chan models.StreamResponse)

	go func() {
		defer close(responseChan)

		reqBody := openai_models.OpenAIChatCompletionRequest{
			Model: openAIProvider.Model,
			Messages: []openai_models.Message{
				{Role: "system", Content: prompt},
				{Role: "user", Content: userInput},
			},
			Stream:          openAIProvider.Stream,
			Temperature:     openAIProvider.Temperature,
			MaxTokens:       openAIProvider.MaxTokens,
			ReasoningEffort: openAIProvider.ReasoningEffort,
		}
		if openAIProvider.Stream {
			reqBody.StreamOptions = &openai_models.StreamOptions{IncludeUsage: true}
		}

		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			responseChan <- models.StreamResponse{Err: fmt.Errorf("error marshalling request body: %v", err)}
			return
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/chat/completions", openAIProvider.BaseURL), bytes.NewBuffer(jsonData))
		if err != nil {
			responseChan <- models.StreamResponse{Err: fmt.Errorf("error creating request: %v", err)}
			return
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", openAIProvider.ApiKey))

		resp, err := openAIProvider.HTTPClient.Do(req)
		if err != nil {
			if errors.Is(ctx.Err(), context.Canceled) {
				responseChan <- models.StreamResponse{Err: fmt.Errorf("request canceled: %v", err)}
				return
			}
			responseChan <- models.StreamResponse{Err: fmt.Errorf("error sending request: %v", err)}
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			var apiError models.AIError
			if err := json.Unmarshal(body, &apiError); err != nil || apiError.Error.Message == "" {
				responseChan <- models.StreamResponse{Err: fmt.Errorf("API request failed with status code '%d' - %s", resp.StatusCode, strings.TrimSpace(string(body)))}
				return
			}
			responseChan <- models.StreamResponse{Err: fmt.Errorf("API request failed with status code '%d' - %s", resp.StatusCode, apiError.Error.Message)}
			return
		}

		if !openAIProvider.Stream {
			openAIProvider.handleCompleteResponse(resp.Body, responseChan)
			return
		}

		openAIProvider.handleStreamResponse(resp.Body, responseChan)
	}()

	return responseChan
}

func (openAIProvider *OpenAIConfig) handleCompleteResponse(body io.Reader, responseChan chan<- models.StreamResponse) {
	var response openai_models.OpenAIChatCompletionResponse
	if err := json.NewDecoder(body).Decode(&response); err != nil {
		responseChan <- models.StreamResponse{Err: fmt.Errorf("error decoding response: %v", err)}
		return
	}

	openAIProvider.recordUsage(response.Usage)

	if len(response.Choices) > 0 {
		responseChan <- models.StreamResponse{Content: response.Choices[0].Message.Content}
	}
	responseChan <- models.StreamResponse{Done: true}
}

func (openAIProvider *OpenAIConfig) handleStreamResponse(body io.Reader, responseChan chan<- models.StreamResponse) {
	var markdownBuffer strings.Builder // Buffer to accumulate content until newline
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	flush := func() {
		if markdownBuffer.Len() > 0 {
			responseChan <- models.StreamResponse{Content: markdownBuffer.String()}
			markdownBuffer.Reset()
		}
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, dataPrefix) {
			continue
		}

		data := strings.TrimPrefix(line, dataPrefix)
		if data == doneMarker {
			flush()
			responseChan <- models.StreamResponse{Done: true}
			return
		}

		var chunk openai_models.OpenAIChatCompletionResponse
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			responseChan <- models.StreamResponse{Err: fmt.Errorf("error unmarshalling chunk: %v", err)}
			return
		}

		openAIProvider.recordUsage(chunk.Usage)

		for _, choice := range chunk.Choices {
			content := choice.Delta.Content
			if content == "" {
				continue
			}
			markdownBuffer.WriteString(content)
			if strings.Contains(content, "\n") {
				flush()
			}
		}
	}

	if err := scanner.Err(); err != nil {
		responseChan <- models.StreamResponse{Err: fmt.Errorf("error reading stream: %v", err)}
		return
	}

	flush()
	responseChan <- models.StreamResponse{Done: true}
}

func (openAIProvider *OpenAIConfig) recordUsage(usage *openai_models.Usage) {
	if usage == nil || openAIProvider.TokenManagement == nil {
		return
	}
	openAIProvider.TokenManagement.UsedTokens(usage.PromptTokens, usage.CompletionTokens)
}
