package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
//
// A miss is reported as (nil, false, nil). Errors are reserved for backend
// failures, so callers can treat an erroring cache as a miss and carry on.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop every entry at once.
type Clearer interface {
	Clear(ctx context.Context) error
}

// =============================================================================
// Keys
// =============================================================================

// maxPlainKey is the longest item key embedded verbatim in a cache key.
const maxPlainKey = 128

// Keyer builds the cache key of an item's display label.
type Keyer interface {
	LabelKey(itemKey string) string
}

// DefaultKeyer produces keys of the form "label:<item key>". Long item keys
// are hashed.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) LabelKey(itemKey string) string {
	if len(itemKey) > maxPlainKey {
		return hashKey("label", itemKey)
	}
	return "label:" + itemKey
}

// ScopedKeyer prefixes another keyer's keys, so several launcher profiles
// (one per user or device) can share the file and redis tiers.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or the default keyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) LabelKey(itemKey string) string { return k.prefix + k.inner.LabelKey(itemKey) }

var (
	_ Keyer = DefaultKeyer{}
	_ Keyer = (*ScopedKeyer)(nil)
)
