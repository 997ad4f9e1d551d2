package token_management

import (
	"fmt"

	"github.com/aitests/aitests/logger"
	"github.com/aitests/aitests/token_management/contracts"
	"github.com/pkoukk/tiktoken-go"
)

const defaultEncoding = "cl100k_base"

// Encoder turns text into BPE token ids. *tiktoken.Tiktoken satisfies it.
type Encoder interface {
	Encode(text string, allowedSpecial []string, disallowedSpecial []string) []int
}

// heuristicEncoder approximates one token per four bytes when no BPE table is available.
type heuristicEncoder struct{}

func (heuristicEncoder) Encode(text string, _ []string, _ []string) []int {
	return make([]int, (len(text)+3)/4)
}

// NewEncoder returns the BPE encoding used by model, cl100k_base for unknown models,
// or a length heuristic when no table can be loaded. The second value names the encoding.
func NewEncoder(model string) (Encoder, string) {
	if model != "" {
		if enc, err := tiktoken.EncodingForModel(model); err == nil {
			if name, ok := tiktoken.MODEL_TO_ENCODING[model]; ok {
				return enc, name
			}
			return enc, "model:" + model
		}
	}

	enc, err := tiktoken.GetEncoding(defaultEncoding)
	if err != nil {
		logger.Warn("failed to load %s encoding, estimating tokens from length: %v", defaultEncoding, err)
		return heuristicEncoder{}, "heuristic"
	}
	return enc, defaultEncoding
}

// TokenCounter estimates model tokens for file contents.
type TokenCounter struct {
	encoder      Encoder
	encodingName string
	cache        *CacheManager
}

// NewTokenCounter creates a counter. cache may be nil.
func NewTokenCounter(encoder Encoder, encodingName string, cache *CacheManager) contracts.ITokenCounter {
	return &TokenCounter{encoder: encoder, encodingName: encodingName, cache: cache}
}

// CountTokens returns the estimated token count of content; 0 for empty content or estimator failure.
func (tc *TokenCounter) CountTokens(content string) int {
	if content == "" {
		return 0
	}

	if tc.cache != nil {
		if count, found := tc.cache.GetTokenCount(tc.encodingName, content); found {
			return count
		}
	}

	count, err := tc.encode(content)
	if err != nil {
		logger.Error("Error calculating tokens: %v", err)
		return 0
	}

	if tc.cache != nil {
		if err := tc.cache.SetTokenCount(tc.encodingName, content, count); err != nil {
			logger.Debug("failed to cache token count: %v", err)
		}
	}

	return count
}

// CountTokensWithin counts like CountTokens and logs when the file does not fit in tokensLeft.
// The full count is returned either way.
func (tc *TokenCounter) CountTokensWithin(content string, filePath string, tokensLeft int) int {
	count := tc.CountTokens(content)
	logger.Debug("Total input tokens for %s: %d", filePath, count)
	if count > tokensLeft {
		logger.Debug("File %s exceeds token limit: %d tokens, %d left", filePath, count, tokensLeft)
	}
	return count
}

func (tc *TokenCounter) encode(content string) (count int, err error) {
	if tc.encoder == nil {
		return 0, fmt.Errorf("no token encoder configured")
	}

	defer func() {
		if r := recover(); r != nil {
			count = 0
			err = fmt.Errorf("token encoder panicked: %v", r)
		}
	}()

	return len(tc.encoder.Encode(content, nil, nil)), nil
}
