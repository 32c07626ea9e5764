// Package cache provides a two-level cache for synthesized audio.
//
// The memory tier serves repeats within a run; the disk tier persists
// across runs so identical prompts never hit the synthesis service twice.
// Disk entries are zstd-compressed when that makes them smaller and are
// indexed by a gob file saved on close.
package cache
