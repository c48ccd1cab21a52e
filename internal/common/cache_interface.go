package common

import "time"

// CacheInterface is the read-through cache behind the roster search
// endpoints: an in-process implementation for single-node deployments and a
// Redis one selected by configuration.
type CacheInterface interface {
	// Get returns the cached value for key if present and unexpired.
	Get(key string) (interface{}, bool)

	// Set stores value under key for the given duration.
	Set(key string, value interface{}, duration time.Duration)

	// GetOrSet returns the cached value for key, or runs loader and caches
	// its result. A loader error is returned without caching anything.
	GetOrSet(key string, duration time.Duration, loader func() (any, error)) (interface{}, error)

	// Close releases any underlying connections.
	Close() error
}
