package token_management

import (
	"time"
)

func (s *CacheStats) record(hit bool) {
	if s == nil {
		return
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.TotalRequests++
	if hit {
		s.CacheHits++
	} else {
		s.CacheMisses++
	}
}

func (s *CacheStats) snapshot() map[string]interface{} {
	if s == nil {
		return map[string]interface{}{
			"total_requests": int64(0),
			"cache_hits":     int64(0),
			"cache_misses":   int64(0),
			"hit_rate":       0.0,
			"uptime_human":   "0s",
		}
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	hitRate := 0.0
	if s.TotalRequests > 0 {
		hitRate = float64(s.CacheHits) / float64(s.TotalRequests) * 100
	}

	return map[string]interface{}{
		"total_requests": s.TotalRequests,
		"cache_hits":     s.CacheHits,
		"cache_misses":   s.CacheMisses,
		"hit_rate":       hitRate,
		"uptime_human":   time.Since(s.LastResetTime).Round(time.Millisecond).String(),
		"last_reset":     s.LastResetTime.Format(time.RFC3339),
	}
}

func (s *CacheStats) reset() {
	if s == nil {
		return
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.TotalRequests, s.CacheHits, s.CacheMisses = 0, 0, 0
	s.LastResetTime = time.Now()
}

// GetPerformanceStats reports token-cache hits and misses for this process.
// hit_rate is a percentage.
func (cm *CacheManager) GetPerformanceStats() map[string]interface{} {
	return cm.stats.snapshot()
}

// ResetPerformanceStats zeroes the hit and miss counters.
func (cm *CacheManager) ResetPerformanceStats() {
	cm.stats.reset()
}
