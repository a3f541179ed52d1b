package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"DragonVeins/internal/domain/models"
)

func snapshot(id, symbol string, price, change, volume float64) models.CoinSnapshot {
	return models.CoinSnapshot{
		ID:            id,
		Symbol:        symbol,
		Name:          id,
		CurrentPrice:  price,
		PriceChange24: change,
		TotalVolume:   volume,
	}
}

func newTestSession(t *testing.T, opts ...SessionOption) *Session {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return NewSession(ctx, SessionConfig{}, opts...)
}

func TestApplySnapshotDefaultsToBitcoin(t *testing.T) {
	s := newTestSession(t)

	s.ApplySnapshot([]models.CoinSnapshot{
		snapshot("ethereum", "eth", 3000, 1.0, 2e9),
		snapshot("bitcoin", "BTC", 50000, 6.2, 5e9),
	})

	if got := s.SelectedID(); got != "bitcoin" {
		t.Fatalf("selected = %q, want bitcoin", got)
	}
}

func TestApplySnapshotDefaultsToFirstWithoutBitcoin(t *testing.T) {
	s := newTestSession(t)

	s.ApplySnapshot([]models.CoinSnapshot{
		snapshot("solana", "sol", 150, 2.5, 1e9),
		snapshot("ethereum", "eth", 3000, 1.0, 2e9),
	})

	if got := s.SelectedID(); got != "solana" {
		t.Fatalf("selected = %q, want solana", got)
	}
}

func TestApplySnapshotKeepsOperatorSelection(t *testing.T) {
	s := newTestSession(t)

	s.ApplySnapshot([]models.CoinSnapshot{
		snapshot("bitcoin", "btc", 50000, 6.2, 5e9),
		snapshot("ethereum", "eth", 3000, -6.0, 2e9),
	})
	if err := s.SelectCoin("ethereum"); err != nil {
		t.Fatalf("select: %v", err)
	}

	s.ApplySnapshot([]models.CoinSnapshot{
		snapshot("bitcoin", "btc", 51000, 7.0, 5e9),
		snapshot("ethereum", "eth", 2900, -6.5, 2e9),
	})

	if got := s.SelectedID(); got != "ethereum" {
		t.Fatalf("selected = %q, want ethereum", got)
	}
}

func TestApplySnapshotEmitsActivityForSelected(t *testing.T) {
	s := newTestSession(t)

	ev := s.ApplySnapshot([]models.CoinSnapshot{
		snapshot("bitcoin", "btc", 50000, 6.2, 5e9),
	})
	if ev == nil {
		t.Fatal("expected activity event")
	}
	if ev.Symbol != "BTC" {
		t.Fatalf("symbol = %q, want BTC", ev.Symbol)
	}
	if ev.Mood.Label != "awakens" {
		t.Fatalf("mood = %q, want awakens", ev.Mood.Label)
	}
	if ev.Price != 50000 {
		t.Fatalf("price = %v, want 50000", ev.Price)
	}
}

func TestApplySnapshotSlumbersAfterSelection(t *testing.T) {
	s := newTestSession(t)

	s.ApplySnapshot([]models.CoinSnapshot{
		snapshot("bitcoin", "btc", 50000, 6.2, 5e9),
		snapshot("ethereum", "eth", 3000, -6.0, 2e9),
	})
	if err := s.SelectCoin("ethereum"); err != nil {
		t.Fatalf("select: %v", err)
	}

	ev := s.ApplySnapshot([]models.CoinSnapshot{
		snapshot("bitcoin", "btc", 50000, 6.2, 5e9),
		snapshot("ethereum", "eth", 3000, -6.0, 2e9),
	})
	if ev == nil {
		t.Fatal("expected activity event")
	}
	if ev.Mood.Label != "slumbers" {
		t.Fatalf("mood = %q, want slumbers", ev.Mood.Label)
	}
	if ev.Symbol != "ETH" {
		t.Fatalf("symbol = %q, want ETH", ev.Symbol)
	}
}

func TestActivityLogCapNewestFirst(t *testing.T) {
	s := newTestSession(t)

	for i := 0; i < 25; i++ {
		s.ApplySnapshot([]models.CoinSnapshot{
			snapshot("bitcoin", "btc", float64(50000+i), 1.0, 5e9),
		})
	}

	events := s.Activities(0, time.Time{})
	if len(events) != 20 {
		t.Fatalf("log size = %d, want 20", len(events))
	}
	// Newest cycle saw price 50024.
	if events[0].Price != 50024 {
		t.Fatalf("head price = %v, want 50024", events[0].Price)
	}
	if events[19].Price != 50005 {
		t.Fatalf("tail price = %v, want 50005", events[19].Price)
	}
	seen := make(map[string]bool, len(events))
	for _, ev := range events {
		if seen[ev.ID] {
			t.Fatalf("duplicate event id %s", ev.ID)
		}
		seen[ev.ID] = true
	}
}

func TestActivitiesLimitAndSince(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	current := base
	s := newTestSession(t, WithClock(func() time.Time { return current }))

	for i := 0; i < 5; i++ {
		current = base.Add(time.Duration(i) * 30 * time.Second)
		s.ApplySnapshot([]models.CoinSnapshot{
			snapshot("bitcoin", "btc", 50000, 1.0, 5e9),
		})
	}

	if got := s.Activities(2, time.Time{}); len(got) != 2 {
		t.Fatalf("limit 2 returned %d events", len(got))
	}
	since := base.Add(90 * time.Second)
	got := s.Activities(0, since)
	if len(got) != 2 {
		t.Fatalf("since filter returned %d events, want 2", len(got))
	}
	for _, ev := range got {
		if ev.Time.Before(since) {
			t.Fatalf("event at %v predates since %v", ev.Time, since)
		}
	}
}

func TestBurstCapAndIntensityClamp(t *testing.T) {
	s := newTestSession(t)

	for i := 0; i < 5; i++ {
		s.ApplySnapshot([]models.CoinSnapshot{
			snapshot("bitcoin", "btc", 50000, 1.0, 50e9),
		})
	}

	bursts := s.Bursts()
	if len(bursts) != 3 {
		t.Fatalf("bursts = %d, want 3", len(bursts))
	}
	for _, b := range bursts {
		if b.Intensity != 10 {
			t.Fatalf("intensity = %v, want clamped 10", b.Intensity)
		}
	}
}

func TestFlashExpiry(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	current := base
	s := newTestSession(t, WithClock(func() time.Time { return current }))

	s.ApplySnapshot([]models.CoinSnapshot{
		snapshot("bitcoin", "btc", 50000, 1.0, 5e9),
	})

	if got := s.Flashes(); len(got) != 1 {
		t.Fatalf("flashes = %d, want 1", len(got))
	}

	current = base.Add(2 * time.Second)
	if got := s.Flashes(); len(got) != 0 {
		t.Fatalf("flashes after ttl = %d, want 0", len(got))
	}
}

func TestFlashCap(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	current := base
	s := NewSession(ctx, SessionConfig{FlashTTL: 10 * time.Minute},
		WithClock(func() time.Time { return current }))

	for i := 0; i < 8; i++ {
		s.ApplySnapshot([]models.CoinSnapshot{
			snapshot("bitcoin", "btc", 50000, 1.0, 5e9),
		})
	}

	if got := s.Flashes(); len(got) != 5 {
		t.Fatalf("flashes = %d, want capped 5", len(got))
	}
}

func TestSelectCoinUnknown(t *testing.T) {
	s := newTestSession(t)

	s.ApplySnapshot([]models.CoinSnapshot{
		snapshot("bitcoin", "btc", 50000, 1.0, 5e9),
	})

	if err := s.SelectCoin("dogecoin"); err != ErrUnknownCoin {
		t.Fatalf("err = %v, want ErrUnknownCoin", err)
	}
	if got := s.SelectedID(); got != "bitcoin" {
		t.Fatalf("selection changed to %q on failed select", got)
	}
}

func TestClearSelectionRedefaultsNextCycle(t *testing.T) {
	s := newTestSession(t)

	s.ApplySnapshot([]models.CoinSnapshot{
		snapshot("ethereum", "eth", 3000, 1.0, 2e9),
		snapshot("bitcoin", "btc", 50000, 6.2, 5e9),
	})
	if err := s.SelectCoin("ethereum"); err != nil {
		t.Fatalf("select: %v", err)
	}
	s.ClearSelection()

	if ev := s.ApplySnapshot([]models.CoinSnapshot{
		snapshot("ethereum", "eth", 3000, 1.0, 2e9),
		snapshot("bitcoin", "btc", 50000, 6.2, 5e9),
	}); ev == nil {
		t.Fatal("expected activity event after re-default")
	}
	if got := s.SelectedID(); got != "bitcoin" {
		t.Fatalf("selected = %q, want bitcoin", got)
	}
}

func TestStoreReplacedWholesale(t *testing.T) {
	s := newTestSession(t)

	s.ApplySnapshot([]models.CoinSnapshot{
		snapshot("bitcoin", "btc", 50000, 1.0, 5e9),
		snapshot("ethereum", "eth", 3000, 1.0, 2e9),
	})
	s.ApplySnapshot([]models.CoinSnapshot{
		snapshot("bitcoin", "btc", 51000, 1.5, 5e9),
	})

	if _, ok := s.Coin("ethereum"); ok {
		t.Fatal("ethereum survived a snapshot that dropped it")
	}
	coin, ok := s.Coin("bitcoin")
	if !ok || coin.CurrentPrice != 51000 {
		t.Fatalf("bitcoin = %+v ok=%v, want price 51000", coin, ok)
	}
}

func TestCoinsQueryFilter(t *testing.T) {
	s := newTestSession(t)

	s.ApplySnapshot([]models.CoinSnapshot{
		{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin"},
		{ID: "ethereum", Symbol: "eth", Name: "Ethereum"},
		{ID: "bitcoin-cash", Symbol: "bch", Name: "Bitcoin Cash"},
	})

	got := s.Coins("bit")
	if len(got) != 2 {
		t.Fatalf("query bit returned %d coins, want 2", len(got))
	}
	if got := s.Coins("ETH"); len(got) != 1 || got[0].ID != "ethereum" {
		t.Fatalf("query ETH returned %+v", got)
	}
	if got := s.Coins(""); len(got) != 3 {
		t.Fatalf("empty query returned %d coins", len(got))
	}
}

func TestStateEnergyLevel(t *testing.T) {
	cases := []struct {
		change float64
		energy float64
		mood   string
	}{
		{6.2, 31, "awakens"},
		{-6.0, 30, "slumbers"},
		{25, 100, "awakens"},
		{0, 0, "flows"},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("change=%v", tc.change), func(t *testing.T) {
			s := newTestSession(t)
			s.ApplySnapshot([]models.CoinSnapshot{
				snapshot("bitcoin", "btc", 50000, tc.change, 5e9),
			})
			st := s.State()
			if st.Selected == nil {
				t.Fatal("expected selected coin")
			}
			if st.EnergyLevel != tc.energy {
				t.Fatalf("energy = %v, want %v", st.EnergyLevel, tc.energy)
			}
			if st.Mood.Label != tc.mood {
				t.Fatalf("mood = %q, want %q", st.Mood.Label, tc.mood)
			}
		})
	}
}

func TestStateEmptySession(t *testing.T) {
	s := newTestSession(t)

	st := s.State()
	if st.Selected != nil {
		t.Fatalf("selected = %+v, want nil", st.Selected)
	}
	if st.Mood.Label != "flows" {
		t.Fatalf("mood = %q, want flows", st.Mood.Label)
	}
	if st.EnergyLevel != 0 {
		t.Fatalf("energy = %v, want 0", st.EnergyLevel)
	}
}

func TestSubscribeNotifiesOnApply(t *testing.T) {
	s := newTestSession(t)

	ch, cancel := s.Subscribe()
	defer cancel()

	s.ApplySnapshot([]models.CoinSnapshot{
		snapshot("bitcoin", "btc", 50000, 1.0, 5e9),
	})

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("no notification after ApplySnapshot")
	}
}
