package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"DragonVeins/internal/domain/models"
	"DragonVeins/pkg/cache"
)

type countingFeed struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *countingFeed) FetchMarkets(ctx context.Context) ([]models.CoinSnapshot, error) {
	return nil, nil
}

func (f *countingFeed) FetchCoin(ctx context.Context, id string) (*models.CoinDetail, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	detail := &models.CoinDetail{ID: id, Symbol: "btc", Name: "Bitcoin"}
	return detail, nil
}

func (f *countingFeed) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestDetailServiceCachesLookups(t *testing.T) {
	feed := &countingFeed{}
	mem := cache.NewMemoryCache()
	defer mem.Close()
	svc := NewDetailService(feed, mem, time.Minute)

	ctx := context.Background()
	first, err := svc.Coin(ctx, "bitcoin")
	if err != nil {
		t.Fatalf("first lookup: %v", err)
	}
	second, err := svc.Coin(ctx, "bitcoin")
	if err != nil {
		t.Fatalf("second lookup: %v", err)
	}

	if feed.callCount() != 1 {
		t.Fatalf("upstream calls = %d, want 1", feed.callCount())
	}
	if first.ID != second.ID || second.ID != "bitcoin" {
		t.Fatalf("cached detail mismatch: %q vs %q", first.ID, second.ID)
	}
}

func TestDetailServiceDistinctKeys(t *testing.T) {
	feed := &countingFeed{}
	mem := cache.NewMemoryCache()
	defer mem.Close()
	svc := NewDetailService(feed, mem, time.Minute)

	ctx := context.Background()
	if _, err := svc.Coin(ctx, "bitcoin"); err != nil {
		t.Fatalf("bitcoin: %v", err)
	}
	if _, err := svc.Coin(ctx, "ethereum"); err != nil {
		t.Fatalf("ethereum: %v", err)
	}
	if feed.callCount() != 2 {
		t.Fatalf("upstream calls = %d, want 2", feed.callCount())
	}
}

func TestDetailServiceNilCache(t *testing.T) {
	feed := &countingFeed{}
	svc := NewDetailService(feed, nil, time.Minute)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := svc.Coin(ctx, "bitcoin"); err != nil {
			t.Fatalf("lookup %d: %v", i, err)
		}
	}
	if feed.callCount() != 3 {
		t.Fatalf("upstream calls = %d, want 3 without cache", feed.callCount())
	}
}
