package providers

import (
	"context"
	"errors"
	"testing"

	"github.com/aitests/aitests/providers/gemini"
	"github.com/aitests/aitests/providers/models"
	"github.com/aitests/aitests/providers/ollama"
	"github.com/aitests/aitests/providers/openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatProviderFactory(t *testing.T) {
	provider, err := ChatProviderFactory(&AIProviderConfig{Provider: "OpenAI", Model: "gpt-4o", ApiKey: "sk"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &openai.OpenAIConfig{}, provider)

	provider, err = ChatProviderFactory(&AIProviderConfig{Provider: "ollama", Model: "llama3"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &ollama.OllamaConfig{}, provider)

	provider, err = ChatProviderFactory(&AIProviderConfig{Provider: "gemini", Model: "gemini-2.0-flash", ApiKey: "key"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &gemini.GeminiConfig{}, provider)
}

func TestChatProviderFactory_Errors(t *testing.T) {
	_, err := ChatProviderFactory(&AIProviderConfig{Provider: "openai"}, nil)
	assert.ErrorIs(t, err, ErrNoAPIKey)

	_, err = ChatProviderFactory(&AIProviderConfig{Provider: "gemini"}, nil)
	assert.ErrorIs(t, err, ErrNoAPIKey)

	_, err = ChatProviderFactory(&AIProviderConfig{Provider: "unknown", ApiKey: "k"}, nil)
	assert.ErrorContains(t, err, "not supported")

	_, err = ChatProviderFactory(nil, nil)
	assert.Error(t, err)
}

type scriptedProvider struct {
	chunks []models.StreamResponse
}

func (p scriptedProvider) ChatCompletionRequest(context.Context, string, string) <-chan models.StreamResponse {
	ch := make(chan models.StreamResponse, len(p.chunks))
	for _, chunk := range p.chunks {
		ch <- chunk
	}
	close(ch)
	return ch
}

func TestComplete(t *testing.T) {
	result, err := Complete(context.Background(), scriptedProvider{chunks: []models.StreamResponse{
		{Content: "a\n"}, {Content: "b"}, {Done: true},
	}}, "u", "s")
	require.NoError(t, err)
	assert.Equal(t, "a\nb", result)

	cause := errors.New("boom")
	_, err = Complete(context.Background(), scriptedProvider{chunks: []models.StreamResponse{{Err: cause}}}, "u", "s")
	assert.ErrorIs(t, err, cause)
}
