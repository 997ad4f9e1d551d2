package token_management

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenManager_UsedTokensAccumulates(t *testing.T) {
	tm := NewTokenManager()

	tm.UsedTokens(100, 20)
	tm.UsedTokens(50, 5)

	total, input, output := tm.GetCurrentTokenUsage()
	assert.Equal(t, 175, total)
	assert.Equal(t, 150, input)
	assert.Equal(t, 25, output)

	tm.ClearToken()
	total, input, output = tm.GetCurrentTokenUsage()
	assert.Zero(t, total)
	assert.Zero(t, input)
	assert.Zero(t, output)
}

func TestTokenManager_CalculateCost(t *testing.T) {
	tm := NewTokenManager()

	// gpt-4o: 2.5$ per million input, 10$ per million output
	cost := tm.CalculateCost("openai", "gpt-4o", 1_000_000, 100_000)
	assert.InDelta(t, 3.5, cost, 1e-9)

	assert.Zero(t, tm.CalculateCost("openai", "unknown-model", 1000, 1000))
}

func TestMaxInputTokens(t *testing.T) {
	assert.Equal(t, 128000, MaxInputTokens("openai", "GPT-4o"))
	assert.Zero(t, MaxInputTokens("openai", "unknown-model"))
}
