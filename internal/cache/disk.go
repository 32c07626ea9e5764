package cache

import (
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

const indexFilename = "audio.index"

// DiskCache is the persistent L2 tier. Entries survive across runs so
// repeated prompts do not hit the synthesis service again.
type DiskCache struct {
	basePath string
	capacity int64 // Maximum size in bytes
	size     int64 // Current size in bytes

	// Compression
	compressionLevel int
	encoder          *zstd.Encoder
	decoder          *zstd.Decoder

	// Index for fast lookups, persisted as gob alongside the data files.
	index map[string]*diskEntry

	mu sync.Mutex

	stats Stats
}

type diskEntry struct {
	Key          string
	FilePath     string
	Size         int64 // Size on disk (possibly compressed)
	OriginalSize int64
	Timestamp    time.Time
	LastAccess   time.Time
	Compressed   bool
}

// NewDiskCache creates a disk cache rooted at basePath.
// A compressionLevel of zero disables compression.
func NewDiskCache(basePath string, capacity int64, compressionLevel int) (*DiskCache, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("unable to create cache directory: %w", err)
	}

	dc := &DiskCache{
		basePath:         basePath,
		capacity:         capacity,
		compressionLevel: compressionLevel,
		index:            make(map[string]*diskEntry),
		stats:            Stats{Capacity: capacity},
	}

	if compressionLevel > 0 {
		var err error
		dc.encoder, err = zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(compressionLevel)))
		if err != nil {
			return nil, fmt.Errorf("unable to create zstd encoder: %w", err)
		}
		dc.decoder, err = zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("unable to create zstd decoder: %w", err)
		}
	}

	// A missing or corrupt index just means starting over.
	if err := dc.loadIndex(); err != nil {
		dc.index = make(map[string]*diskEntry)
	}
	for _, entry := range dc.index {
		dc.size += entry.Size
	}
	dc.stats.Size = dc.size
	dc.stats.ItemCount = int64(len(dc.index))

	return dc, nil
}

// Get retrieves cached audio from disk.
func (dc *DiskCache) Get(key string) ([]byte, bool) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	entry, ok := dc.index[key]
	if !ok {
		dc.stats.Misses++
		return nil, false
	}

	data, err := os.ReadFile(entry.FilePath)
	if err != nil {
		// File missing or unreadable; drop it from the index.
		dc.dropLocked(key, entry)
		dc.stats.Misses++
		return nil, false
	}

	if entry.Compressed && dc.decoder != nil {
		decompressed, err := dc.decoder.DecodeAll(data, nil)
		if err != nil {
			os.Remove(entry.FilePath)
			dc.dropLocked(key, entry)
			dc.stats.Misses++
			return nil, false
		}
		data = decompressed
	}

	entry.LastAccess = time.Now()
	dc.stats.Hits++
	dc.stats.LastAccess = entry.LastAccess
	return data, true
}

// Put stores audio on disk, compressing when it pays off.
func (dc *DiskCache) Put(key string, value []byte) error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	originalSize := int64(len(value))
	dataToWrite := value
	compressed := false

	// Only bother compressing payloads over 1KB, and only keep the
	// compressed form when it is actually smaller.
	if dc.encoder != nil && originalSize > 1024 {
		if c := dc.encoder.EncodeAll(value, nil); int64(len(c)) < originalSize {
			dataToWrite = c
			compressed = true
		}
	}

	diskSize := int64(len(dataToWrite))
	if diskSize > dc.capacity {
		return ErrItemTooLarge
	}

	if existing, ok := dc.index[key]; ok {
		os.Remove(existing.FilePath)
		dc.dropLocked(key, existing)
	}

	for dc.size+diskSize > dc.capacity && len(dc.index) > 0 {
		dc.evictOldestLocked()
	}

	filePath := dc.filePathFor(key)
	if err := writeFileAtomic(filePath, dataToWrite); err != nil {
		return fmt.Errorf("unable to write cache file: %w", err)
	}

	dc.index[key] = &diskEntry{
		Key:          key,
		FilePath:     filePath,
		Size:         diskSize,
		OriginalSize: originalSize,
		Timestamp:    time.Now(),
		LastAccess:   time.Now(),
		Compressed:   compressed,
	}
	dc.size += diskSize
	dc.stats.Size = dc.size
	dc.stats.ItemCount = int64(len(dc.index))
	return nil
}

// Delete removes an entry from the disk cache.
func (dc *DiskCache) Delete(key string) error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	if entry, ok := dc.index[key]; ok {
		os.Remove(entry.FilePath)
		dc.dropLocked(key, entry)
	}
	return nil
}

// Clear removes all entries and persists the empty index.
func (dc *DiskCache) Clear() error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	for _, entry := range dc.index {
		os.Remove(entry.FilePath)
	}
	dc.index = make(map[string]*diskEntry)
	dc.size = 0
	dc.stats.Size = 0
	dc.stats.ItemCount = 0
	return dc.saveIndex()
}

// Size returns the current on-disk size in bytes.
func (dc *DiskCache) Size() int64 {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	return dc.size
}

// Stats returns a snapshot of cache statistics.
func (dc *DiskCache) Stats() Stats {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	stats := dc.stats
	stats.Size = dc.size
	stats.ItemCount = int64(len(dc.index))
	if stats.Hits+stats.Misses > 0 {
		stats.HitRate = float64(stats.Hits) / float64(stats.Hits+stats.Misses)
	}
	return stats
}

// RemoveOlderThan drops entries stored before cutoff, returning the count.
func (dc *DiskCache) RemoveOlderThan(cutoff time.Time) int {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	removed := 0
	for key, entry := range dc.index {
		if entry.Timestamp.Before(cutoff) {
			os.Remove(entry.FilePath)
			dc.dropLocked(key, entry)
			removed++
		}
	}
	return removed
}

// Close persists the index.
func (dc *DiskCache) Close() error {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	return dc.saveIndex()
}

func (dc *DiskCache) dropLocked(key string, entry *diskEntry) {
	delete(dc.index, key)
	dc.size -= entry.Size
	dc.stats.Size = dc.size
	dc.stats.ItemCount = int64(len(dc.index))
}

func (dc *DiskCache) evictOldestLocked() {
	var oldestKey string
	var oldestTime time.Time
	for key, entry := range dc.index {
		if oldestKey == "" || entry.LastAccess.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.LastAccess
		}
	}
	if oldestKey == "" {
		return
	}
	entry := dc.index[oldestKey]
	os.Remove(entry.FilePath)
	dc.dropLocked(oldestKey, entry)
	dc.stats.Evictions++
	dc.stats.LastEvict = time.Now()
}

func (dc *DiskCache) filePathFor(key string) string {
	hash := sha256.Sum256([]byte(key))
	return filepath.Join(dc.basePath, hex.EncodeToString(hash[:16])+".audio")
}

func (dc *DiskCache) loadIndex() error {
	f, err := os.Open(filepath.Join(dc.basePath, indexFilename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()
	return gob.NewDecoder(f).Decode(&dc.index)
}

func (dc *DiskCache) saveIndex() error {
	indexPath := filepath.Join(dc.basePath, indexFilename)
	tempPath := indexPath + ".tmp"

	f, err := os.Create(tempPath)
	if err != nil {
		return err
	}
	err = gob.NewEncoder(f).Encode(dc.index)
	closeErr := f.Close()
	if err != nil {
		os.Remove(tempPath)
		return err
	}
	if closeErr != nil {
		os.Remove(tempPath)
		return closeErr
	}
	return os.Rename(tempPath, indexPath)
}

// writeFileAtomic writes via a temp file and rename so readers never see a
// partial cache entry.
func writeFileAtomic(path string, data []byte) error {
	tempPath := path + ".tmp"
	f, err := os.Create(tempPath)
	if err != nil {
		return err
	}
	_, werr := f.Write(data)
	cerr := f.Close()
	if werr != nil {
		os.Remove(tempPath)
		return werr
	}
	if cerr != nil {
		os.Remove(tempPath)
		return cerr
	}
	return os.Rename(tempPath, path)
}
