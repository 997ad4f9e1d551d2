package token_management

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test cache manager setup and basic operations
func TestCacheManager_BasicOperations(t *testing.T) {
	tempDir := t.TempDir()

	cacheManager, err := NewCacheManager(tempDir)
	require.NoError(t, err)
	require.NotNil(t, cacheManager)
	assert.Equal(t, tempDir, cacheManager.CacheDir())

	count, found := cacheManager.GetTokenCount("cl100k_base", "const a = 1")
	assert.False(t, found)
	assert.Equal(t, 0, count)

	require.NoError(t, cacheManager.SetTokenCount("cl100k_base", "const a = 1", 6))

	count, found = cacheManager.GetTokenCount("cl100k_base", "const a = 1")
	assert.True(t, found)
	assert.Equal(t, 6, count)

	// same content under another encoding is a different entry
	_, found = cacheManager.GetTokenCount("o200k_base", "const a = 1")
	assert.False(t, found)
}

func TestCacheManager_CreatesDirectory(t *testing.T) {
	cacheDir := filepath.Join(t.TempDir(), "nested", "cache")

	_, err := NewCacheManager(cacheDir)
	require.NoError(t, err)

	info, err := os.Stat(cacheDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestFileCache_Delete(t *testing.T) {
	cacheManager, err := NewCacheManager(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, cacheManager.SetTokenCount("enc", "content", 3))
	require.NoError(t, cacheManager.fileCache.Delete(tokenCacheKey("enc", "content")))

	_, found := cacheManager.GetTokenCount("enc", "content")
	assert.False(t, found)

	// deleting a missing entry is not an error
	assert.NoError(t, cacheManager.fileCache.Delete(tokenCacheKey("enc", "missing")))
}

func TestCacheManager_CorruptEntryIsAMiss(t *testing.T) {
	cacheManager, err := NewCacheManager(t.TempDir())
	require.NoError(t, err)

	key := cacheManager.fileCache.generateCacheKey(tokenCacheKey("enc", "content"))
	require.NoError(t, os.WriteFile(filepath.Join(cacheManager.CacheDir(), key), []byte("not gob"), 0644))

	_, found := cacheManager.GetTokenCount("enc", "content")
	assert.False(t, found)
}

func TestCacheManager_ClearCache(t *testing.T) {
	cacheManager, err := NewCacheManager(t.TempDir())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, cacheManager.SetTokenCount("enc", fmt.Sprintf("content %d", i), i))
	}
	cacheManager.GetTokenCount("enc", "content 1")

	stats, err := cacheManager.GetCacheStats()
	require.NoError(t, err)
	assert.Equal(t, 5, stats["cache_files"])

	require.NoError(t, cacheManager.ClearCache())

	stats, err = cacheManager.GetCacheStats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats["cache_files"])
	assert.Equal(t, int64(0), stats["total_requests"])
}

func TestCacheManager_SmartCleanupByCount(t *testing.T) {
	cacheManager, err := NewCacheManager(t.TempDir())
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		require.NoError(t, cacheManager.SetTokenCount("enc", fmt.Sprintf("content %d", i), i))
	}

	result, err := cacheManager.SmartCleanupCache(CacheCleanupOptions{MaxFiles: 4})
	require.NoError(t, err)
	assert.Equal(t, 10, result["files_before_cleanup"])
	assert.Equal(t, 6, result["files_actually_deleted"])
	assert.Equal(t, 4, result["files_after_cleanup"])
}

func TestCacheManager_SmartCleanupDryRun(t *testing.T) {
	cacheManager, err := NewCacheManager(t.TempDir())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, cacheManager.SetTokenCount("enc", fmt.Sprintf("content %d", i), i))
	}

	result, err := cacheManager.SmartCleanupCache(CacheCleanupOptions{MaxFiles: 1, DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 2, result["files_marked_for_delete"])

	stats, err := cacheManager.GetCacheStats()
	require.NoError(t, err)
	assert.Equal(t, 3, stats["cache_files"])
}

func TestCacheManager_SmartCleanupByAge(t *testing.T) {
	cacheManager, err := NewCacheManager(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, cacheManager.fileCache.Set(tokenCacheKey("enc", "old"), CacheEntry{
		Count:         1,
		Encoding:      "enc",
		ContentLength: 3,
		Timestamp:     time.Now().Add(-48 * time.Hour),
	}))
	require.NoError(t, cacheManager.SetTokenCount("enc", "new", 1))

	result, err := cacheManager.SmartCleanupCache(CacheCleanupOptions{MaxAge: 24 * time.Hour})
	require.NoError(t, err)
	assert.Equal(t, 1, result["deleted_by_age"])

	_, found := cacheManager.GetTokenCount("enc", "old")
	assert.False(t, found)
	_, found = cacheManager.GetTokenCount("enc", "new")
	assert.True(t, found)
}

func TestCacheManager_ConcurrentAccess(t *testing.T) {
	cacheManager, err := NewCacheManager(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			content := strings.Repeat("x", i+1)
			assert.NoError(t, cacheManager.SetTokenCount("enc", content, i+1))
			count, found := cacheManager.GetTokenCount("enc", content)
			assert.True(t, found)
			assert.Equal(t, i+1, count)
		}(i)
	}
	wg.Wait()

	stats := cacheManager.GetPerformanceStats()
	assert.Equal(t, int64(20), stats["cache_hits"])
}
