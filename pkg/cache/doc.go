// Package cache provides the resource cache the launcher uses for display
// labels and icons.
//
// The layout algorithms never touch it: the CLI and the HTTP server look
// labels up by item key and fall back to the key itself on a miss.
//
// Backends:
//
//   - [MemoryCache]: bounded in-process LRU
//   - [FileCache]: JSON files under the XDG cache directory
//   - [RedisCache]: shared remote tier
//   - [NullCache]: caching disabled
//
// [Tiered] chains them, fastest first, and reports hits, misses and writes
// per tier through observability.Cache().
//
//	c := cache.NewTiered(
//	    cache.Tier{Name: "memory", Cache: cache.NewMemoryCache(256)},
//	    cache.Tier{Name: "file", Cache: fileCache},
//	)
//	key := cache.NewDefaultKeyer().LabelKey("com.example.mailMainAbilityentry")
//	label, ok, _ := c.Get(ctx, key)
package cache
