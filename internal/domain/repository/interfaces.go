package repository

import (
	"context"

	"DragonVeins/internal/domain/models"
)

// MarketFeed is the upstream market-data source.
type MarketFeed interface {
	FetchMarkets(ctx context.Context) ([]models.CoinSnapshot, error)
	FetchCoin(ctx context.Context, id string) (*models.CoinDetail, error)
}

// EventSink receives derived activity events, best-effort.
type EventSink interface {
	Publish(ctx context.Context, ev models.ActivityEvent) error
	Close() error
}

type Metrics interface {
	RecordRefresh(outcome string)
	RecordFeedError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordFetchDuration(op string, seconds float64)
}
