package token_management

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/zeebo/xxh3"
)

// CacheEntry is one persisted token count.
type CacheEntry struct {
	Count         int
	Encoding      string
	ContentLength int
	Timestamp     time.Time
}

// FileCache stores gob-encoded entries as one file per key.
type FileCache struct {
	cacheDir string
	mutex    sync.RWMutex
}

// CacheStats tracks cache performance metrics
type CacheStats struct {
	TotalRequests int64
	CacheHits     int64
	CacheMisses   int64
	LastResetTime time.Time
	mutex         sync.RWMutex
}

// CacheManager persists token counts keyed by the hash of encoding and content.
type CacheManager struct {
	fileCache *FileCache
	stats     *CacheStats
}

// CacheCleanupOptions defines options for cache cleanup
type CacheCleanupOptions struct {
	MaxAge   time.Duration // Remove entries older than this
	MaxSize  int64         // Remove oldest entries if cache exceeds this size (bytes)
	MaxFiles int           // Remove oldest entries if cache exceeds this number of files
	DryRun   bool          // If true, only report what would be cleaned without actual deletion
}

// DefaultCleanupOptions keeps a week of entries, at most 20MB and 20000 files.
var DefaultCleanupOptions = CacheCleanupOptions{
	MaxAge:   7 * 24 * time.Hour,
	MaxSize:  20 * 1024 * 1024,
	MaxFiles: 20000,
}

// CacheDirName is the cache location relative to the project root.
const CacheDirName = ".cache/aitests"

// DefaultCacheDir returns the cache directory for a project root.
func DefaultCacheDir(rootDir string) string {
	return filepath.Join(rootDir, filepath.FromSlash(CacheDirName))
}

// NewCacheManager creates the cache directory if needed and prunes stale entries.
func NewCacheManager(cacheDir string) (*CacheManager, error) {
	if cacheDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current working directory: %w", err)
		}
		cacheDir = DefaultCacheDir(cwd)
	}

	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	cacheManager := &CacheManager{
		fileCache: &FileCache{cacheDir: cacheDir},
		stats: &CacheStats{
			LastResetTime: time.Now(),
		},
	}

	if _, err := cacheManager.SmartCleanupCache(DefaultCleanupOptions); err != nil {
		return nil, fmt.Errorf("failed to clean cache: %w", err)
	}

	return cacheManager, nil
}

// CacheDir returns the directory holding the cache files.
func (cm *CacheManager) CacheDir() string {
	return cm.fileCache.cacheDir
}

// generateCacheKey creates a unique cache file name for a key
func (fc *FileCache) generateCacheKey(key string) string {
	return fmt.Sprintf("%016x.cache", xxh3.HashString(key))
}

// getCachePath returns the full path to a cache file
func (fc *FileCache) getCachePath(cacheKey string) string {
	return filepath.Join(fc.cacheDir, cacheKey)
}

func readEntry(path string) (*CacheEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entry CacheEntry
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Get returns the entry stored under key.
func (fc *FileCache) Get(key string) (*CacheEntry, bool) {
	fc.mutex.RLock()
	defer fc.mutex.RUnlock()

	entry, err := readEntry(fc.getCachePath(fc.generateCacheKey(key)))
	if err != nil {
		return nil, false
	}
	return entry, true
}

// Set stores entry under key.
func (fc *FileCache) Set(key string, entry CacheEntry) error {
	fc.mutex.Lock()
	defer fc.mutex.Unlock()

	var buffer bytes.Buffer
	if err := gob.NewEncoder(&buffer).Encode(entry); err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	if err := os.WriteFile(fc.getCachePath(fc.generateCacheKey(key)), buffer.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	return nil
}

// Delete removes a cache entry
func (fc *FileCache) Delete(key string) error {
	fc.mutex.Lock()
	defer fc.mutex.Unlock()

	if err := os.Remove(fc.getCachePath(fc.generateCacheKey(key))); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete cache file: %w", err)
	}

	return nil
}

func tokenCacheKey(encoding string, content string) string {
	return encoding + "|" + content
}

// GetTokenCount returns a previously stored count for content under encoding.
func (cm *CacheManager) GetTokenCount(encoding string, content string) (int, bool) {
	entry, found := cm.fileCache.Get(tokenCacheKey(encoding, content))
	if !found || entry.Encoding != encoding || entry.ContentLength != len(content) {
		cm.stats.record(false)
		return 0, false
	}

	cm.stats.record(true)
	return entry.Count, true
}

// SetTokenCount stores the count for content under encoding.
func (cm *CacheManager) SetTokenCount(encoding string, content string, count int) error {
	return cm.fileCache.Set(tokenCacheKey(encoding, content), CacheEntry{
		Count:         count,
		Encoding:      encoding,
		ContentLength: len(content),
		Timestamp:     time.Now(),
	})
}

// GetCacheStats returns storage and performance statistics.
func (cm *CacheManager) GetCacheStats() (map[string]interface{}, error) {
	files, err := os.ReadDir(cm.fileCache.cacheDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}

	var totalSize int64
	var count int
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".cache") {
			continue
		}
		info, err := file.Info()
		if err != nil {
			continue
		}
		totalSize += info.Size()
		count++
	}

	stats := cm.GetPerformanceStats()
	stats["cache_files"] = count
	stats["total_size"] = totalSize
	stats["cache_dir"] = cm.fileCache.cacheDir

	return stats, nil
}

type cacheFileInfo struct {
	path     string
	size     int64
	entryAge time.Time
}

// SmartCleanupCache removes entries by age, then oldest first until size and count limits hold.
func (cm *CacheManager) SmartCleanupCache(options CacheCleanupOptions) (map[string]interface{}, error) {
	cm.fileCache.mutex.Lock()
	defer cm.fileCache.mutex.Unlock()

	files, err := os.ReadDir(cm.fileCache.cacheDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}

	var infos []cacheFileInfo
	var totalSize int64
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".cache") {
			continue
		}
		info, err := file.Info()
		if err != nil {
			continue
		}

		path := filepath.Join(cm.fileCache.cacheDir, file.Name())
		entryAge := info.ModTime()
		if entry, err := readEntry(path); err == nil {
			entryAge = entry.Timestamp
		}

		infos = append(infos, cacheFileInfo{path: path, size: info.Size(), entryAge: entryAge})
		totalSize += info.Size()
	}

	// oldest first
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].entryAge.Before(infos[j].entryAge)
	})

	marked := make(map[string]bool)
	var deletedSize int64
	var deletedByAge, deletedBySize, deletedByCount int

	if options.MaxAge > 0 {
		cutoff := time.Now().Add(-options.MaxAge)
		for _, f := range infos {
			if f.entryAge.Before(cutoff) {
				marked[f.path] = true
				deletedSize += f.size
				deletedByAge++
			}
		}
	}

	if options.MaxSize > 0 {
		currentSize := totalSize - deletedSize
		for _, f := range infos {
			if currentSize <= options.MaxSize {
				break
			}
			if marked[f.path] {
				continue
			}
			marked[f.path] = true
			deletedSize += f.size
			currentSize -= f.size
			deletedBySize++
		}
	}

	if options.MaxFiles > 0 {
		remaining := len(infos) - len(marked)
		for _, f := range infos {
			if remaining <= options.MaxFiles {
				break
			}
			if marked[f.path] {
				continue
			}
			marked[f.path] = true
			deletedSize += f.size
			remaining--
			deletedByCount++
		}
	}

	actuallyDeleted := 0
	if options.DryRun {
		actuallyDeleted = len(marked)
	} else {
		for path := range marked {
			if err := os.Remove(path); err == nil {
				actuallyDeleted++
			}
		}
	}

	return map[string]interface{}{
		"files_before_cleanup":    len(infos),
		"files_marked_for_delete": len(marked),
		"files_actually_deleted":  actuallyDeleted,
		"deleted_by_age":          deletedByAge,
		"deleted_by_size":         deletedBySize,
		"deleted_by_count":        deletedByCount,
		"files_after_cleanup":     len(infos) - actuallyDeleted,
		"size_to_delete_mb":       float64(deletedSize) / (1024 * 1024),
		"dry_run":                 options.DryRun,
	}, nil
}

// ClearCache removes every cache entry and resets the statistics.
func (cm *CacheManager) ClearCache() error {
	cm.fileCache.mutex.Lock()
	defer cm.fileCache.mutex.Unlock()

	files, err := os.ReadDir(cm.fileCache.cacheDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read cache directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".cache") {
			continue
		}
		if err := os.Remove(filepath.Join(cm.fileCache.cacheDir, file.Name())); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete cache file: %w", err)
		}
	}

	cm.ResetPerformanceStats()
	return nil
}
