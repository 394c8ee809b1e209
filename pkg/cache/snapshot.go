package cache

import (
	"encoding/json"
	"os"
	"path/filepath"

	errUtils "github.com/codewarden/warden/errors"
	log "github.com/codewarden/warden/pkg/logger"
)

// SnapshotVersion is the current on-disk format. Version 1 stored
// modification times in whole seconds; version 2 stores nanoseconds.
const SnapshotVersion = 2

type snapshot struct {
	Version     int              `json:"version"`
	Fingerprint string           `json:"fingerprint,omitempty"`
	CreatedAt   int64            `json:"created_at"` // UnixNano
	UpdatedAt   int64            `json:"updated_at"` // UnixNano
	Hits        uint64           `json:"hits"`
	Misses      uint64           `json:"misses"`
	Entries     map[string]Entry `json:"entries"`
}

// migrations upgrades a snapshot one version at a time. Each step receives
// a snapshot at version n and must leave it at version n+1.
var migrations = map[int]func(*snapshot){
	1: migrateV1MtimeToNanos,
}

func migrateV1MtimeToNanos(s *snapshot) {
	for path, entry := range s.Entries {
		entry.ModTime *= int64(1e9)
		entry.AnalyzedAt *= int64(1e9)
		s.Entries[path] = entry
	}
	s.Version = 2
}

// Load reads a cache snapshot from disk. A missing file yields an empty
// cache. An unreadable or structurally invalid file is an error; whether to
// degrade to an empty cache or abort is the caller's call, not this
// package's. An unknown version is likewise an error: silently
// reinterpreting a future format could poison results.
func Load(path string) (*FileCache, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, errUtils.Build(errUtils.ErrCache).
			WithCause(err).
			WithContext("path", path).
			Err()
	}

	var snap snapshot
	if err := json.Unmarshal(contents, &snap); err != nil {
		return nil, errUtils.Build(errUtils.ErrCache).
			WithCause(err).
			WithContext("path", path).
			WithHint("run `warden cache clear` to reset the cache").
			Err()
	}

	for snap.Version != SnapshotVersion {
		migrate, ok := migrations[snap.Version]
		if !ok {
			return nil, errUtils.Build(errUtils.ErrCacheVersion).
				WithContext("path", path).
				WithContext("version", snap.Version).
				WithHint("run `warden cache clear` to reset the cache").
				Err()
		}
		from := snap.Version
		migrate(&snap)
		log.Debug("migrated cache snapshot", "from", from, "to", snap.Version)
	}

	cache := New()
	if snap.Entries != nil {
		cache.entries = snap.Entries
	}
	cache.fingerprint = snap.Fingerprint
	cache.hits = snap.Hits
	cache.misses = snap.Misses
	// Version 1 snapshots carried no store metadata; New already stamped
	// both timestamps with the current time.
	if snap.CreatedAt > 0 {
		cache.createdAt = snap.CreatedAt
		cache.updatedAt = snap.UpdatedAt
		if cache.updatedAt < cache.createdAt {
			cache.updatedAt = cache.createdAt
		}
	}
	return cache, nil
}

// Save writes the cache back to disk when it changed. A clean cache is a
// no-op so read-only runs never touch the file. The snapshot is written to
// a temporary file and renamed into place.
func (c *FileCache) Save(path string) error {
	if !c.dirty {
		return nil
	}

	snap := snapshot{
		Version:     SnapshotVersion,
		Fingerprint: c.fingerprint,
		CreatedAt:   c.createdAt,
		UpdatedAt:   c.updatedAt,
		Hits:        c.hits,
		Misses:      c.misses,
		Entries:     c.entries,
	}
	contents, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return errUtils.Build(errUtils.ErrCache).WithCause(err).Err()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errUtils.Build(errUtils.ErrCache).
			WithCause(err).
			WithContext("dir", dir).
			Err()
	}
	tmp, err := os.CreateTemp(dir, "cache-*.json")
	if err != nil {
		return errUtils.Build(errUtils.ErrCache).WithCause(err).Err()
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(contents); err != nil {
		tmp.Close()
		return errUtils.Build(errUtils.ErrCache).WithCause(err).Err()
	}
	if err := tmp.Close(); err != nil {
		return errUtils.Build(errUtils.ErrCache).WithCause(err).Err()
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errUtils.Build(errUtils.ErrCache).
			WithCause(err).
			WithContext("path", path).
			Err()
	}

	c.dirty = false
	return nil
}
