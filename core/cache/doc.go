// Package cache provides thread-safe in-process caching.
//
// LRUCache is a generic, fixed-capacity cache with least-recently-used
// eviction and an optional eviction callback:
//
//	c := cache.NewLRUCache[string, *Product](100)
//	c.Put("sku-1", product)
//	if p, found := c.Get("sku-1"); found {
//		fmt.Println(p.Name)
//	}
//
// Store builds on LRUCache to back the pipeline Caching behavior. It keeps
// serialized responses with a per-entry TTL and removes groups of entries by
// tag:
//
//	store := cache.NewStore(cache.WithCapacity(5000))
//	d := pipeline.NewDispatcher(pipeline.WithBehaviors(pipeline.Caching(store)))
//
//	// After a price change:
//	_ = store.Invalidate(ctx, "products")
//
// Expired entries are dropped lazily on read. For a cache shared across
// processes use integration/database/redis.CacheStore instead.
//
// Get, Put and Remove are O(1). The implementation combines a hash map with
// a doubly-linked list.
package cache
