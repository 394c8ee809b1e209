// Package cache remembers analysis results per file so unchanged files can
// be skipped on subsequent runs. Staleness checks run cheapest first: file
// size, then modification time, then the configuration fingerprint, and
// finally the content digest. The digest is always recomputed before a hit
// is declared so same-size, same-mtime edits and clock skew cannot poison
// results.
//
// A FileCache is not safe for concurrent use. Callers confine it to a
// single coordinating goroutine.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"time"

	"github.com/adrg/xdg"

	errUtils "github.com/codewarden/warden/errors"
)

// Entry records what was known about one file when it was last analyzed.
type Entry struct {
	Digest         string `json:"digest"`
	Size           int64  `json:"size"`
	ModTime        int64  `json:"mtime"` // UnixNano
	ViolationCount int    `json:"violation_count"`
	AnalyzedAt     int64  `json:"analyzed_at"` // UnixNano
	Fingerprint    string `json:"fingerprint"`
}

// Statistics summarizes cache effectiveness. Hit and miss counters are
// persisted with the snapshot, so they accumulate across runs.
type Statistics struct {
	Entries int     `json:"entries"`
	Hits    uint64  `json:"hits"`
	Misses  uint64  `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

// FileCache is the in-memory cache plus its dirty state.
type FileCache struct {
	entries     map[string]Entry
	fingerprint string
	createdAt   int64 // UnixNano
	updatedAt   int64 // UnixNano
	hits        uint64
	misses      uint64
	dirty       bool
}

// New returns an empty cache.
func New() *FileCache {
	now := time.Now().UnixNano()
	return &FileCache{
		entries:   make(map[string]Entry),
		createdAt: now,
		updatedAt: now,
	}
}

// DefaultPath resolves the user-scoped cache location.
func DefaultPath() (string, error) {
	path, err := xdg.CacheFile("warden/cache.json")
	if err != nil {
		return "", errUtils.Build(errUtils.ErrCache).
			WithCause(err).
			WithHint("set XDG_CACHE_HOME to a writable directory").
			Err()
	}
	return path, nil
}

func (c *FileCache) touch() {
	c.updatedAt = time.Now().UnixNano()
	c.dirty = true
}

func (c *FileCache) miss() bool {
	c.misses++
	c.touch()
	return true
}

func (c *FileCache) hit() bool {
	c.hits++
	c.touch()
	return false
}

// NeedsAnalysis reports whether the file must be re-analyzed. Checks are
// ordered from cheapest to most expensive; the digest is recomputed on every
// otherwise-clean check. Only an actual digest read failure is an error.
func (c *FileCache) NeedsAnalysis(path, fingerprint string) (bool, error) {
	entry, ok := c.entries[path]
	if !ok {
		return c.miss(), nil
	}

	info, err := os.Stat(path)
	if err != nil {
		// A vanished file needs whatever the caller does about missing
		// files; it is not a cache error.
		return c.miss(), nil
	}
	if info.Size() != entry.Size {
		return c.miss(), nil
	}
	if info.ModTime().UnixNano() != entry.ModTime {
		return c.miss(), nil
	}
	if entry.Fingerprint != fingerprint {
		return c.miss(), nil
	}

	digest, err := digestFile(path)
	if err != nil {
		return true, err
	}
	if digest != entry.Digest {
		return c.miss(), nil
	}
	return c.hit(), nil
}

// UpdateEntry records a fresh analysis result for the file.
func (c *FileCache) UpdateEntry(path string, violationCount int, fingerprint string) error {
	info, err := os.Stat(path)
	if err != nil {
		return errUtils.Build(errUtils.ErrCache).
			WithCause(err).
			WithContext("file", path).
			Err()
	}
	digest, err := digestFile(path)
	if err != nil {
		return err
	}

	c.entries[path] = Entry{
		Digest:         digest,
		Size:           info.Size(),
		ModTime:        info.ModTime().UnixNano(),
		ViolationCount: violationCount,
		AnalyzedAt:     time.Now().UnixNano(),
		Fingerprint:    fingerprint,
	}
	c.touch()
	return nil
}

// SetFingerprint records the active configuration fingerprint at the store
// level so inspection tools can tell which rule set last wrote the cache.
func (c *FileCache) SetFingerprint(fingerprint string) {
	if c.fingerprint == fingerprint {
		return
	}
	c.fingerprint = fingerprint
	c.touch()
}

// Fingerprint returns the store-level configuration fingerprint, which may
// be empty for caches written before one was recorded.
func (c *FileCache) Fingerprint() string {
	return c.fingerprint
}

// Entry returns the stored entry for a path.
func (c *FileCache) Entry(path string) (Entry, bool) {
	entry, ok := c.entries[path]
	return entry, ok
}

// Len returns the number of cached entries.
func (c *FileCache) Len() int {
	return len(c.entries)
}

// Cleanup drops entries whose files no longer exist and returns how many
// were removed. Hit and miss counters are not affected.
func (c *FileCache) Cleanup() int {
	removed := 0
	for path := range c.entries {
		if _, err := os.Stat(path); err != nil {
			delete(c.entries, path)
			removed++
		}
	}
	if removed > 0 {
		c.touch()
	}
	return removed
}

// Clear drops every entry.
func (c *FileCache) Clear() {
	if len(c.entries) == 0 {
		return
	}
	c.entries = make(map[string]Entry)
	c.touch()
}

// Statistics reports entry count and the accumulated hit rate. The rate is
// 0 when nothing was ever looked up.
func (c *FileCache) Statistics() Statistics {
	stats := Statistics{
		Entries: len(c.entries),
		Hits:    c.hits,
		Misses:  c.misses,
	}
	if total := c.hits + c.misses; total > 0 {
		stats.HitRate = float64(c.hits) / float64(total)
	}
	return stats
}

func digestFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errUtils.Build(errUtils.ErrCache).
			WithCause(err).
			WithContext("file", path).
			Err()
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", errUtils.Build(errUtils.ErrCache).
			WithCause(err).
			WithContext("file", path).
			Err()
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
