package cache

import (
	"errors"
	"time"
)

// Common errors for cache operations.
var (
	// ErrItemTooLarge is returned when an item exceeds the cache capacity.
	ErrItemTooLarge = errors.New("item too large for cache")

	// ErrCacheClosed is returned for operations on a closed cache.
	ErrCacheClosed = errors.New("cache is closed")
)

// Stats holds cache performance metrics.
type Stats struct {
	Capacity  int64 // Maximum capacity in bytes
	Size      int64 // Current size in bytes
	ItemCount int64 // Number of items in cache

	Hits      int64   // Number of cache hits
	Misses    int64   // Number of cache misses
	Evictions int64   // Number of evictions
	HitRate   float64 // hits / (hits + misses)

	LastAccess time.Time // Last access time
	LastEvict  time.Time // Last eviction time
}

// Config holds configuration for the synthesis cache.
type Config struct {
	// Memory tier (L1).
	MemoryCapacity int64 // Bytes

	// Disk tier (L2).
	DiskCapacity     int64  // Bytes
	DiskPath         string // Directory for cache files
	CompressionLevel int    // Zstd level; 0 disables compression

	// Items older than TTL are removed on cleanup. Zero disables expiry.
	TTL time.Duration
}

// DefaultConfig returns the default cache configuration.
func DefaultConfig() *Config {
	return &Config{
		MemoryCapacity:   32 * 1024 * 1024,  // 32MB
		DiskCapacity:     256 * 1024 * 1024, // 256MB
		CompressionLevel: 3,
		TTL:              7 * 24 * time.Hour,
	}
}
