package token_management

import (
	"crypto/md5"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/zeebo/xxh3"
)

func randomSources(n int) []string {
	charset := "abcdefghijklmnopqrstuvwxyz(){};=\n "
	sources := make([]string, n)
	for i := range sources {
		var b strings.Builder
		length := rand.Intn(4000) + 200
		for j := 0; j < length; j++ {
			b.WriteByte(charset[rand.Intn(len(charset))])
		}
		sources[i] = b.String()
	}
	return sources
}

// BenchmarkCacheKeyGeneration compares content hashing for token cache keys.
func BenchmarkCacheKeyGeneration(b *testing.B) {
	sources := randomSources(200)

	b.Run("MD5", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			hash := md5.Sum([]byte(sources[i%len(sources)]))
			_ = fmt.Sprintf("%x.cache", hash)
		}
	})

	b.Run("XXH3", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = fmt.Sprintf("%016x.cache", xxh3.HashString(sources[i%len(sources)]))
		}
	})
}

func BenchmarkCountTokensCached(b *testing.B) {
	cache, err := NewCacheManager(b.TempDir())
	if err != nil {
		b.Fatal(err)
	}
	sources := randomSources(50)
	counter := NewTokenCounter(charEncoder{}, "chars", cache)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		counter.CountTokens(sources[i%len(sources)])
	}
}
