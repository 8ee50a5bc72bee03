package persistpager

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/samber/lo"
)

const (
	DefaultManagerCacheExpiration      = 10 * time.Minute
	DefaultManagerCacheCleanupInterval = 30 * time.Minute
)

// CachedManagerRegistry memoizes the managers resolved by another registry.
// Only found managers are cached; a miss is asked again on the next call.
type CachedManagerRegistry[Q any] struct {
	next  ManagerRegistry[Q]
	cache *gocache.Cache
}

// NewCachedManagerRegistry wraps next. Non-positive durations fall back to the defaults.
func NewCachedManagerRegistry[Q any](next ManagerRegistry[Q], expiration, cleanupInterval time.Duration) *CachedManagerRegistry[Q] {
	return &CachedManagerRegistry[Q]{
		next: next,
		cache: gocache.New(
			lo.Ternary(expiration > 0, expiration, DefaultManagerCacheExpiration),
			lo.Ternary(cleanupInterval > 0, cleanupInterval, DefaultManagerCacheCleanupInterval),
		),
	}
}

// GetManagerForClass implements ManagerRegistry.
func (r *CachedManagerRegistry[Q]) GetManagerForClass(ctx context.Context, objectClass ObjectClass) (Manager[Q], error) {
	key := string(objectClass)

	if value, found := r.cache.Get(key); found {
		if manager, ok := value.(Manager[Q]); ok {
			return manager, nil
		}

		Logger().WithField("object_class", objectClass).Error("wrong type assertion when getting cached manager")
		r.cache.Delete(key)
	}

	manager, err := r.next.GetManagerForClass(ctx, objectClass)
	if err != nil || lo.IsNil(manager) {
		return manager, err
	}

	r.cache.SetDefault(key, manager)

	return manager, nil
}

// Forget drops the cached managers of the given classes, or all of them when none is given.
func (r *CachedManagerRegistry[Q]) Forget(objectClasses ...ObjectClass) {
	if len(objectClasses) == 0 {
		r.cache.Flush()
		return
	}

	for _, objectClass := range objectClasses {
		r.cache.Delete(string(objectClass))
	}
}

var _ ManagerRegistry[any] = (*CachedManagerRegistry[any])(nil)
