package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// FileCache stores one JSON document per key below a directory. The CLI uses
// it so repeated runs against an unchanged repository skip the layout.
//
// Graph keys are laid out by repository state so that every layout of one
// fingerprint sits in one directory:
//
//	<dir>/graph/<fingerprint>/<variant>.json
//	<dir>/<scope>/graph/<fingerprint>/<variant>.json   under a ScopedKeyer
//	<dir>/other/<sha256 of key>.json                   anything else
type FileCache struct {
	dir string
}

// Entry describes one stored document.
type Entry struct {
	Key string

	// Scope and Fingerprint are the parts of a graph key. Both are empty for
	// other keys.
	Scope       string
	Fingerprint string

	Size      int
	StoredAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the entry is past its lifetime at now.
func (e Entry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

type fileEntry struct {
	Key       string          `json:"key"`
	StoredAt  time.Time       `json:"stored_at"`
	ExpiresAt time.Time       `json:"expires_at,omitzero"`
	Data      json.RawMessage `json:"data"`
}

// NewFileCache creates a file cache in dir, creating the directory if needed.
func NewFileCache(dir string) (*FileCache, error) {
	dir = filepath.Clean(dir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *FileCache) Dir() string {
	return c.dir
}

// Get returns the document stored under key. Corrupt and expired entries are
// removed and reported as misses.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	e, err := decodeEntry(data)
	if err != nil {
		c.remove(path)
		return nil, false, nil
	}
	if e.Key != key {
		return nil, false, nil
	}
	if !e.ExpiresAt.IsZero() && time.Now().After(e.ExpiresAt) {
		c.remove(path)
		return nil, false, nil
	}
	return e.Data, true, nil
}

// Set stores data, which must be a JSON document. The file is written to a
// temporary name first so concurrent readers never see a partial entry.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if !json.Valid(data) {
		return fmt.Errorf("file cache: value for %s is not JSON", key)
	}
	e := fileEntry{Key: key, StoredAt: time.Now().UTC(), Data: data}
	if ttl > 0 {
		e.ExpiresAt = e.StoredAt.Add(ttl)
	}
	buf, err := json.Marshal(e)
	if err != nil {
		return err
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".entry-*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Delete removes key and its fingerprint directory once that is empty.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	path := c.path(key)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	c.prune(filepath.Dir(path))
	return nil
}

// Entries lists every readable entry, grouped by fingerprint and newest
// first within a group. A missing cache directory has no entries.
func (c *FileCache) Entries() ([]Entry, error) {
	var out []Entry
	err := c.walk(func(path string) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		e, err := decodeEntry(data)
		if err != nil {
			return nil
		}
		scope, fp, _, _ := SplitGraphKey(e.Key)
		out = append(out, Entry{
			Key:         e.Key,
			Scope:       scope,
			Fingerprint: fp,
			Size:        len(e.Data),
			StoredAt:    e.StoredAt,
			ExpiresAt:   e.ExpiresAt,
		})
		return nil
	})
	slices.SortStableFunc(out, func(a, b Entry) int {
		if d := strings.Compare(a.Fingerprint, b.Fingerprint); d != 0 {
			return d
		}
		return b.StoredAt.Compare(a.StoredAt)
	})
	return out, err
}

// Drop removes the layouts of every fingerprint starting with prefix, in any
// scope, and returns how many were deleted.
func (c *FileCache) Drop(ctx context.Context, prefix string) (int, error) {
	if prefix == "" {
		return 0, fmt.Errorf("file cache: empty fingerprint prefix")
	}
	entries, err := c.Entries()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range entries {
		if e.Fingerprint == "" || !strings.HasPrefix(e.Fingerprint, prefix) {
			continue
		}
		if err := c.Delete(ctx, e.Key); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Clear removes every entry and returns how many were deleted.
func (c *FileCache) Clear() (int, error) {
	n := 0
	if err := c.walk(func(string) error { n++; return nil }); err != nil {
		return 0, err
	}
	children, err := os.ReadDir(c.dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	for _, child := range children {
		if err := os.RemoveAll(filepath.Join(c.dir, child.Name())); err != nil {
			return 0, err
		}
	}
	return n, nil
}

// Close does nothing for the file cache.
func (c *FileCache) Close() error {
	return nil
}

func (c *FileCache) path(key string) string {
	scope, fp, variant, ok := SplitGraphKey(key)
	if !ok {
		sum := sha256.Sum256([]byte(key))
		return filepath.Join(c.dir, "other", hex.EncodeToString(sum[:])+".json")
	}
	return filepath.Join(c.dir, segment(scope), "graph", segment(fp), segment(variant)+".json")
}

// walk calls fn for every entry file below the cache root.
func (c *FileCache) walk(fn func(path string) error) error {
	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		return fn(path)
	})
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (c *FileCache) remove(path string) {
	_ = os.Remove(path)
	c.prune(filepath.Dir(path))
}

// prune removes empty directories from dir up to the cache root.
func (c *FileCache) prune(dir string) {
	for dir != c.dir && strings.HasPrefix(dir, c.dir) {
		if os.Remove(dir) != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}

func decodeEntry(data []byte) (fileEntry, error) {
	var e fileEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return e, err
	}
	if e.Key == "" {
		return e, fmt.Errorf("file cache: entry has no key")
	}
	return e, nil
}

// segment makes s safe as a single path element.
func segment(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, s)
	if s == "." || s == ".." {
		return "_" + s
	}
	return s
}

var _ Cache = (*FileCache)(nil)
