package cache

import (
	"context"
	"errors"
	"time"

	"github.com/matzehuels/deskgrid/pkg/observability"
)

// Tier is one named level of a Tiered cache.
type Tier struct {
	Name  string
	Cache Cache
}

// Tiered reads through its tiers in order, fastest first, and backfills
// the faster tiers on a hit further down. Writes go to every tier.
//
// A failing tier is treated as a miss on Get. Set and Delete try every
// tier and join the errors.
type Tiered struct {
	tiers []Tier
	// BackfillTTL is the expiry used when copying a hit into faster tiers.
	BackfillTTL time.Duration
}

// NewTiered builds a tiered cache. Tiers with a nil cache are skipped.
func NewTiered(tiers ...Tier) *Tiered {
	t := &Tiered{}
	for _, tier := range tiers {
		if tier.Cache != nil {
			t.tiers = append(t.tiers, tier)
		}
	}
	return t
}

// Tiers returns the tier names in lookup order.
func (t *Tiered) Tiers() []string {
	names := make([]string, len(t.tiers))
	for i, tier := range t.tiers {
		names[i] = tier.Name
	}
	return names
}

func (t *Tiered) Get(ctx context.Context, key string) ([]byte, bool, error) {
	hooks := observability.Cache()
	for i, tier := range t.tiers {
		data, ok, err := tier.Cache.Get(ctx, key)
		if err != nil || !ok {
			hooks.OnCacheMiss(ctx, tier.Name)
			continue
		}
		hooks.OnCacheHit(ctx, tier.Name)
		for _, faster := range t.tiers[:i] {
			if faster.Cache.Set(ctx, key, data, t.BackfillTTL) == nil {
				hooks.OnCacheSet(ctx, faster.Name, len(data))
			}
		}
		return data, true, nil
	}
	return nil, false, nil
}

func (t *Tiered) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	var errs []error
	for _, tier := range t.tiers {
		if err := tier.Cache.Set(ctx, key, data, ttl); err != nil {
			errs = append(errs, tierError(tier, err))
			continue
		}
		observability.Cache().OnCacheSet(ctx, tier.Name, len(data))
	}
	return errors.Join(errs...)
}

func (t *Tiered) Delete(ctx context.Context, key string) error {
	var errs []error
	for _, tier := range t.tiers {
		if err := tier.Cache.Delete(ctx, key); err != nil {
			errs = append(errs, tierError(tier, err))
		}
	}
	return errors.Join(errs...)
}

// Clear clears every tier that supports it.
func (t *Tiered) Clear(ctx context.Context) error {
	var errs []error
	for _, tier := range t.tiers {
		if c, ok := tier.Cache.(Clearer); ok {
			if err := c.Clear(ctx); err != nil {
				errs = append(errs, tierError(tier, err))
			}
		}
	}
	return errors.Join(errs...)
}

func (t *Tiered) Close() error {
	var errs []error
	for _, tier := range t.tiers {
		if err := tier.Cache.Close(); err != nil {
			errs = append(errs, tierError(tier, err))
		}
	}
	return errors.Join(errs...)
}

type tierErr struct {
	tier string
	err  error
}

func (e *tierErr) Error() string { return e.tier + ": " + e.err.Error() }
func (e *tierErr) Unwrap() error { return e.err }

func tierError(t Tier, err error) error { return &tierErr{tier: t.Name, err: err} }

var (
	_ Cache   = (*Tiered)(nil)
	_ Clearer = (*Tiered)(nil)
)
