package keyrate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/segyhp/claim-calculator/internal/repository"
	customError "github.com/segyhp/claim-calculator/pkg/errors"
)

const (
	CurrentRateKey   = "key_rate:current"
	LastKnownRateKey = "key_rate:last_known"
)

// CachedProvider serves the key rate from the cache while it is fresh and
// remembers the last successfully fetched rate for when the upstream fails.
type CachedProvider struct {
	upstream Provider
	cache    repository.Cache
	ttl      time.Duration
	logger   *zap.Logger
}

func NewCachedProvider(upstream Provider, cache repository.Cache, ttl time.Duration, logger *zap.Logger) *CachedProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedProvider{
		upstream: upstream,
		cache:    cache,
		ttl:      ttl,
		logger:   logger,
	}
}

func (p *CachedProvider) KeyRate(ctx context.Context) (decimal.Decimal, error) {
	if rate, ok := p.lookup(ctx, CurrentRateKey); ok {
		return rate, nil
	}

	rate, err := p.Refresh(ctx)
	if err == nil {
		return rate, nil
	}

	if last, ok := p.lookup(ctx, LastKnownRateKey); ok {
		p.logger.Warn("key rate upstream failed, using last known rate",
			zap.Error(err),
			zap.String("rate", last.String()),
		)
		return last, nil
	}

	return decimal.Zero, err
}

// Refresh fetches the rate from upstream and stores it in the cache.
// Cache write failures are logged and do not fail the refresh.
func (p *CachedProvider) Refresh(ctx context.Context) (decimal.Decimal, error) {
	rate, err := p.upstream.KeyRate(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("fetch key rate: %w", err)
	}

	value := rate.String()
	if err := p.cache.Set(ctx, CurrentRateKey, value, p.ttl); err != nil {
		p.logger.Warn("failed to cache key rate", zap.Error(customError.WrapCacheError(err)))
	}
	if err := p.cache.Set(ctx, LastKnownRateKey, value, 0); err != nil {
		p.logger.Warn("failed to store last known key rate", zap.Error(customError.WrapCacheError(err)))
	}

	return rate, nil
}

func (p *CachedProvider) lookup(ctx context.Context, key string) (decimal.Decimal, bool) {
	raw, err := p.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, customError.ErrCacheMiss) {
			p.logger.Warn("key rate cache read failed", zap.String("key", key), zap.Error(err))
		}
		return decimal.Zero, false
	}

	rate, err := decimal.NewFromString(raw)
	if err != nil {
		p.logger.Warn("discarding unparsable cached key rate", zap.String("key", key), zap.String("value", raw))
		return decimal.Zero, false
	}
	return rate, true
}
