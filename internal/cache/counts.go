// Package cache stores extractor results on disk so that repeated runs over
// an unchanged corpus skip extraction.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hyperifyio/sentlen/internal/corpus"
)

// Entry is the stored form of one extraction result.
type Entry struct {
	ID      string        `json:"id"`
	Variant string        `json:"variant"`
	Counts  corpus.Counts `json:"counts"`
	SavedAt time.Time     `json:"saved_at"`
}

// CountsCache stores counts keyed by a digest of the document content and
// the extraction settings.
type CountsCache struct {
	Dir string
	// StrictPerms, when true, enforces 0700 on the cache directory and 0600
	// on files.
	StrictPerms bool
}

func (c *CountsCache) ensureDir() error {
	if c == nil || c.Dir == "" {
		return errors.New("cache dir not configured")
	}
	perm := os.FileMode(0o755)
	if c.StrictPerms {
		perm = 0o700
	}
	if err := os.MkdirAll(c.Dir, perm); err != nil {
		return err
	}
	if c.StrictPerms {
		if info, err := os.Stat(c.Dir); err == nil && info.Mode()&0o777 != 0o700 {
			_ = os.Chmod(c.Dir, 0o700)
		}
	}
	return nil
}

// KeyFrom builds a cache key from the extraction settings and the raw
// document bytes.
func KeyFrom(settings string, content []byte) string {
	h := sha256.New()
	h.Write([]byte(settings))
	h.Write([]byte("\n\n"))
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}

func (c *CountsCache) pathFor(key string) string {
	return filepath.Join(c.Dir, key+".json")
}

// Get returns the cached entry for key. A missing or unreadable entry is a
// miss, not an error.
func (c *CountsCache) Get(_ context.Context, key string) (Entry, bool, error) {
	if err := c.ensureDir(); err != nil {
		return Entry{}, false, err
	}
	p := c.pathFor(key)
	b, err := os.ReadFile(p)
	if err != nil {
		return Entry{}, false, nil
	}
	var e Entry
	if err := json.Unmarshal(b, &e); err != nil || e.Counts.Sentences <= 0 {
		return Entry{}, false, nil
	}
	// Touch mtime for LRU eviction.
	now := time.Now()
	_ = os.Chtimes(p, now, now)
	return e, true, nil
}

// Save stores e under key.
func (c *CountsCache) Save(_ context.Context, key string, e Entry) error {
	if err := c.ensureDir(); err != nil {
		return err
	}
	if e.SavedAt.IsZero() {
		e.SavedAt = time.Now().UTC()
	}
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	mode := os.FileMode(0o644)
	if c.StrictPerms {
		mode = 0o600
	}
	return os.WriteFile(c.pathFor(key), b, mode)
}
