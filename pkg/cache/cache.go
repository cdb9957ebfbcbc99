// Package cache stores computed commit graphs keyed by repository state.
//
// A layout is a pure function of the repository refs, the commits they reach
// and the settings, so the pipeline derives a key from those inputs and
// reuses a stored result while none of them change. Backends:
//
//   - [NullCache]: never stores anything (--no-cache)
//   - [FileCache]: one JSON file per layout, grouped by repository state
//   - [RedisCache]: shared cache for the serve command
//   - [MongoCache]: durable document store for shared deployments
//
// Keys are built by a [Keyer]. Graph keys keep the repository fingerprint in
// clear so a backend can group the layouts of one repository state; see
// [SplitGraphKey]. [ScopedKeyer] prefixes keys so several repositories or
// tenants can share one backend.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the stored value and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// TTLGraph is the default lifetime of a cached graph.
const TTLGraph = 7 * 24 * time.Hour

// GraphKeyOpts are the inputs besides the repository fingerprint that change
// a layout.
type GraphKeyOpts struct {
	// Settings is a digest of the effective settings.
	Settings string `json:"settings"`

	// Version identifies the result format.
	Version int `json:"version"`
}

// Keyer derives cache keys.
type Keyer interface {
	// GraphKey returns the key of a layout for a repository state.
	GraphKey(fingerprint string, opts GraphKeyOpts) string
}

const graphPrefix = "graph:"

// DefaultKeyer builds "graph:<fingerprint>:<variant>" keys. The variant is a
// digest of [GraphKeyOpts], so every settings combination of one repository
// state shares the fingerprint part.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// GraphKey joins the fingerprint with the variant digest of opts.
func (DefaultKeyer) GraphKey(fingerprint string, opts GraphKeyOpts) string {
	data, _ := json.Marshal(opts)
	sum := sha256.Sum256(data)
	return graphPrefix + fingerprint + ":" + hex.EncodeToString(sum[:16])
}

// SplitGraphKey takes apart a key built by [DefaultKeyer], possibly behind a
// [ScopedKeyer] prefix. ok is false for any other key.
func SplitGraphKey(key string) (scope, fingerprint, variant string, ok bool) {
	i := strings.LastIndex(key, graphPrefix)
	if i < 0 {
		return "", "", "", false
	}
	fingerprint, variant, ok = strings.Cut(key[i+len(graphPrefix):], ":")
	if !ok || fingerprint == "" || variant == "" || strings.Contains(variant, ":") {
		return "", "", "", false
	}
	return key[:i], fingerprint, variant, true
}

// NullCache is a no-op cache used with --no-cache.
type NullCache struct{}

// NewNullCache returns a cache that never stores anything.
func NewNullCache() Cache {
	return NullCache{}
}

// Get always misses.
func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

// Set discards data.
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

// Delete does nothing.
func (NullCache) Delete(context.Context, string) error { return nil }

// Close does nothing.
func (NullCache) Close() error { return nil }

var _ Cache = NullCache{}
