package costlookup

import (
	"context"
	"fmt"
	"time"

	"github.com/de-tools/cost-atlas/pkg/models/domain"
	"github.com/de-tools/cost-atlas/pkg/store/cache"
)

const (
	resourceKeyPrefix = "costlookup:resource:"
	serviceKeyPrefix  = "costlookup:service:"
)

type resourceCacheValue struct {
	cost  domain.Cents
	known bool
}

type cachedResourceLookup struct {
	inner ResourceCostLookup
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedResourceLookup wraps a ResourceCostLookup with a TTL cache.
// Both hits and confirmed "no data" answers are cached; errors are not.
func NewCachedResourceLookup(inner ResourceCostLookup, c cache.Cache, ttl time.Duration) ResourceCostLookup {
	return &cachedResourceLookup{inner: inner, cache: c, ttl: ttl}
}

func (l *cachedResourceLookup) DailyResourceCost(
	ctx context.Context,
	resourceID string,
	serviceCode string,
	lookbackDays int,
) (domain.Cents, bool, error) {
	key := fmt.Sprintf("%s%s:%s:%d", resourceKeyPrefix, serviceCode, resourceID, lookbackDays)
	if v, ok := l.cache.Get(key); ok {
		if cached, ok := v.(resourceCacheValue); ok {
			return cached.cost, cached.known, nil
		}
	}

	cost, known, err := l.inner.DailyResourceCost(ctx, resourceID, serviceCode, lookbackDays)
	if err != nil {
		return 0, false, err
	}

	l.cache.Set(key, resourceCacheValue{cost: cost, known: known}, l.ttl)
	return cost, known, nil
}

type cachedServiceLookup struct {
	inner ServiceCostLookup
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedServiceLookup wraps a ServiceCostLookup with a TTL cache keyed
// by billing period.
func NewCachedServiceLookup(inner ServiceCostLookup, c cache.Cache, ttl time.Duration) ServiceCostLookup {
	return &cachedServiceLookup{inner: inner, cache: c, ttl: ttl}
}

func (l *cachedServiceLookup) ServiceCosts(
	ctx context.Context,
	period domain.Period,
) (map[string]domain.Cents, error) {
	key := fmt.Sprintf("%s%s:%s",
		serviceKeyPrefix,
		period.Start.Format("2006-01-02"),
		period.End.Format("2006-01-02"),
	)
	if v, ok := l.cache.Get(key); ok {
		if costs, ok := v.(map[string]domain.Cents); ok {
			return costs, nil
		}
	}

	costs, err := l.inner.ServiceCosts(ctx, period)
	if err != nil {
		return nil, err
	}

	l.cache.Set(key, costs, l.ttl)
	return costs, nil
}
