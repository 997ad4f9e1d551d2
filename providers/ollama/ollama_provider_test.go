package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aitests/aitests/providers/models"
	ollama_models "github.com/aitests/aitests/providers/ollama/models"
	"github.com/aitests/aitests/token_management"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(ch <-chan models.StreamResponse) ([]string, error) {
	var chunks []string
	for response := range ch {
		if response.Err != nil {
			return chunks, response.Err
		}
		if !response.Done {
			chunks = append(chunks, response.Content)
		}
	}
	return chunks, nil
}

func TestChatCompletionRequest_BuffersUntilNewline(t *testing.T) {
	var received ollama_models.OllamaChatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		fmt.Fprintln(w, `{"message":{"role":"assistant","content":"it('adds', "},"done":false}`)
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":"() => {});\n"},"done":false}`)
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":"// end"},"done":false}`)
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":""},"done":true,"prompt_eval_count":42,"eval_count":8}`)
	}))
	defer server.Close()

	tokens := token_management.NewTokenManager()
	provider := NewOllamaChatProvider(&OllamaConfig{
		BaseURL:         server.URL + "/api",
		Model:           "llama3",
		Temperature:     0.7,
		MaxTokens:       512,
		TokenManagement: tokens,
	})

	chunks, err := drain(provider.ChatCompletionRequest(context.Background(), "user prompt", "system prompt"))

	require.NoError(t, err)
	assert.Equal(t, []string{"it('adds', () => {});\n", "// end"}, chunks)
	assert.Equal(t, "llama3", received.Model)
	assert.True(t, received.Stream)
	require.NotNil(t, received.Options)
	assert.Equal(t, 512, received.Options.NumPredict)

	_, input, output := tokens.GetCurrentTokenUsage()
	assert.Equal(t, 42, input)
	assert.Equal(t, 8, output)
}

func TestChatCompletionRequest_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `model "missing" not found`)
	}))
	defer server.Close()

	provider := NewOllamaChatProvider(&OllamaConfig{BaseURL: server.URL, Model: "missing"})

	_, err := drain(provider.ChatCompletionRequest(context.Background(), "user", "system"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), `model "missing" not found`)
}
