package cache

import (
	"github.com/flexprice/console/internal/config"
	"github.com/flexprice/console/internal/logger"
)

// CacheType represents the type of cache to use
type CacheType string

const (
	// CacheTypeInMemory represents an in-memory cache
	CacheTypeInMemory CacheType = "inmemory"
)

// Initialize builds the cache selected by cache.type. Unknown types fall back
// to the in-memory cache.
func Initialize(cfg *config.Configuration, log *logger.Logger) Cache {
	log.Infow("initializing cache", "type", cfg.Cache.Type, "enabled", cfg.Cache.Enabled)

	switch CacheType(cfg.Cache.Type) {
	case CacheTypeInMemory, "":
	default:
		log.Warnw("unsupported cache type, using in-memory cache", "type", cfg.Cache.Type)
	}

	return NewInMemoryCache(cfg)
}
