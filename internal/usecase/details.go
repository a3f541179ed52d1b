package usecase

import (
	"context"
	"time"

	"DragonVeins/internal/domain/models"
	drepo "DragonVeins/internal/domain/repository"
	"DragonVeins/pkg/cache"
)

// DetailService serves single-coin detail lookups for the detail view,
// caching upstream responses for a short TTL.
type DetailService struct {
	feed  drepo.MarketFeed
	cache cache.Service
	ttl   time.Duration
}

// NewDetailService creates a detail service. c may be nil to disable caching.
func NewDetailService(feed drepo.MarketFeed, c cache.Service, ttl time.Duration) *DetailService {
	return &DetailService{feed: feed, cache: c, ttl: ttl}
}

// Coin returns the detail payload for one coin id, from cache when fresh.
func (d *DetailService) Coin(ctx context.Context, id string) (*models.CoinDetail, error) {
	key := "coin:detail:" + id

	if d.cache != nil {
		var cached models.CoinDetail
		// Cache trouble is not a lookup failure; any miss or error falls
		// through to upstream.
		if err := d.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	detail, err := d.feed.FetchCoin(ctx, id)
	if err != nil {
		return nil, err
	}

	if d.cache != nil {
		_ = d.cache.Set(ctx, key, detail, d.ttl)
	}
	return detail, nil
}
