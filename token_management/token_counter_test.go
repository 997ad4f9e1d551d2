package token_management

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingEncoder struct {
	calls int
}

func (e *countingEncoder) Encode(text string, _ []string, _ []string) []int {
	e.calls++
	return make([]int, len(text))
}

type panickingEncoder struct{}

func (panickingEncoder) Encode(string, []string, []string) []int {
	panic("broken table")
}

func TestCountTokens_EmptyContentSkipsEncoder(t *testing.T) {
	encoder := &countingEncoder{}
	counter := NewTokenCounter(encoder, "test", nil)

	assert.Equal(t, 0, counter.CountTokens(""))
	assert.Equal(t, 0, encoder.calls)
}

func TestCountTokens_DelegatesToEncoder(t *testing.T) {
	encoder := &countingEncoder{}
	counter := NewTokenCounter(encoder, "test", nil)

	assert.Equal(t, 11, counter.CountTokens("hello world"))
	assert.Equal(t, 1, encoder.calls)
}

func TestCountTokens_EncoderPanicYieldsZero(t *testing.T) {
	counter := NewTokenCounter(panickingEncoder{}, "test", nil)

	assert.NotPanics(t, func() {
		assert.Equal(t, 0, counter.CountTokens("const a = 1"))
	})
}

func TestCountTokens_NilEncoderYieldsZero(t *testing.T) {
	counter := NewTokenCounter(nil, "test", nil)

	assert.Equal(t, 0, counter.CountTokens("const a = 1"))
}

func TestCountTokensWithin_ReturnsFullCountWhenOverLimit(t *testing.T) {
	counter := NewTokenCounter(&countingEncoder{}, "test", nil)

	assert.Equal(t, 10, counter.CountTokensWithin("0123456789", "big.ts", 3))
}

func TestCountTokens_UsesPersistentCache(t *testing.T) {
	cache, err := NewCacheManager(t.TempDir())
	require.NoError(t, err)

	encoder := &countingEncoder{}
	counter := NewTokenCounter(encoder, "test", cache)

	assert.Equal(t, 5, counter.CountTokens("abcde"))
	assert.Equal(t, 5, counter.CountTokens("abcde"))
	assert.Equal(t, 1, encoder.calls)

	stats := cache.GetPerformanceStats()
	assert.Equal(t, int64(1), stats["cache_hits"])
	assert.Equal(t, int64(1), stats["cache_misses"])
}

func TestHeuristicEncoder(t *testing.T) {
	var enc heuristicEncoder

	assert.Len(t, enc.Encode("", nil, nil), 0)
	assert.Len(t, enc.Encode("abc", nil, nil), 1)
	assert.Len(t, enc.Encode("abcdefgh", nil, nil), 2)
	assert.Len(t, enc.Encode("abcdefghi", nil, nil), 3)
}
