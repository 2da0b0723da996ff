package resolver

import "github.com/busjaeger/reactor/internal/descriptor"

// CacheTag distinguishes independent caches keyed by the same coordinate
// triple, e.g. a parent lookup and a dependency-management import lookup
// for the same (groupId, artifactId, version) are cached separately.
type CacheTag int

const (
	CacheTagParent CacheTag = iota
	CacheTagImport
)

type cacheKey struct {
	groupID    string
	artifactID string
	version    string
	tag        CacheTag
}

// Cache is the per-invocation external-descriptor cache described by the
// concurrency model: write-once per key, accessed only from the single
// thread that owns the invocation. It is never shared across invocations.
type Cache struct {
	entries map[cacheKey]*descriptor.Raw
}

// NewCache returns an empty cache, one per graph-build invocation.
func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey]*descriptor.Raw)}
}

// Get returns the cached descriptor for the key, performing the sanity
// check that its source file matches expectedSourceFile when the latter is
// non-empty. On mismatch the entry is treated as a miss so the caller
// re-resolves externally rather than trusting a cache that could be
// masking a malformed workspace. No current caller passes a non-empty
// expectedSourceFile; see DESIGN.md.
func (c *Cache) Get(groupID, artifactID, version string, tag CacheTag, expectedSourceFile string) (*descriptor.Raw, bool) {
	d, ok := c.entries[cacheKey{groupID, artifactID, version, tag}]
	if !ok {
		return nil, false
	}
	if expectedSourceFile != "" && d.SourceFile != "" && d.SourceFile != expectedSourceFile {
		return nil, false
	}
	return d, true
}

// Put stores d under the key if the key is not already occupied. Later
// writes to an occupied key are silently dropped, matching the write-once
// policy: the cache never overwrites what it already resolved.
func (c *Cache) Put(groupID, artifactID, version string, tag CacheTag, d *descriptor.Raw) {
	key := cacheKey{groupID, artifactID, version, tag}
	if _, exists := c.entries[key]; exists {
		return
	}
	c.entries[key] = d
}
