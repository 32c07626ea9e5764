package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
)

// Manager coordinates the memory and disk tiers. Lookups check memory
// first; disk hits are promoted back into memory.
type Manager struct {
	memory *MemoryCache
	disk   *DiskCache
	config *Config
}

// NewManager creates a cache manager with the given configuration.
// A nil config uses DefaultConfig with the user cache directory.
func NewManager(config *Config) (*Manager, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.DiskPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("unable to resolve home directory: %w", err)
		}
		config.DiskPath = filepath.Join(homeDir, ".cache", "utter", "audio")
	}

	disk, err := NewDiskCache(config.DiskPath, config.DiskCapacity, config.CompressionLevel)
	if err != nil {
		return nil, fmt.Errorf("unable to create disk cache: %w", err)
	}

	m := &Manager{
		memory: NewMemoryCache(config.MemoryCapacity),
		disk:   disk,
		config: config,
	}

	if config.TTL > 0 {
		cutoff := time.Now().Add(-config.TTL)
		if removed := disk.RemoveOlderThan(cutoff); removed > 0 {
			log.Debug("expired cached audio", "removed", removed, "ttl", config.TTL)
		}
	}

	return m, nil
}

// Key derives the cache key from everything that affects the audio bytes.
func Key(text, engine, model, voice string, speed float64, format string) string {
	data := fmt.Sprintf("%s|%s|%s|%s|%.2f|%s", text, engine, model, voice, speed, format)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:16])
}

// Get retrieves cached audio, checking memory before disk.
func (m *Manager) Get(key string) ([]byte, bool) {
	if data, ok := m.memory.Get(key); ok {
		return data, true
	}
	if data, ok := m.disk.Get(key); ok {
		// Promote for faster repeat access within this run.
		if err := m.memory.Put(key, data); err != nil && err != ErrItemTooLarge {
			log.Debug("cache promotion failed", "err", err)
		}
		return data, true
	}
	return nil, false
}

// Put stores audio in both tiers. Disk failures are non-fatal; the result
// has already been produced and memory still holds it.
func (m *Manager) Put(key string, value []byte) error {
	if err := m.memory.Put(key, value); err != nil && err != ErrItemTooLarge {
		return fmt.Errorf("memory cache: %w", err)
	}
	if err := m.disk.Put(key, value); err != nil && err != ErrItemTooLarge {
		log.Debug("disk cache write failed", "err", err)
	}
	return nil
}

// Delete removes an entry from both tiers.
func (m *Manager) Delete(key string) error {
	if err := m.memory.Delete(key); err != nil {
		return err
	}
	return m.disk.Delete(key)
}

// Clear removes all entries from both tiers.
func (m *Manager) Clear() error {
	if err := m.memory.Clear(); err != nil {
		return err
	}
	return m.disk.Clear()
}

// Summary returns a short human-readable description of cache state.
func (m *Manager) Summary() string {
	disk := m.disk.Stats()
	return fmt.Sprintf("%d items, %s on disk (%s limit)",
		disk.ItemCount,
		humanize.Bytes(uint64(disk.Size)),
		humanize.Bytes(uint64(disk.Capacity)))
}

// Stats returns per-tier statistics.
func (m *Manager) Stats() (memory, disk Stats) {
	return m.memory.Stats(), m.disk.Stats()
}

// Close persists the disk index.
func (m *Manager) Close() error {
	if err := m.disk.Close(); err != nil {
		return fmt.Errorf("unable to close disk cache: %w", err)
	}
	return nil
}
