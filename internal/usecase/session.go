package usecase

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"DragonVeins/internal/domain/models"

	"github.com/google/uuid"
)

var ErrUnknownCoin = errors.New("session: unknown coin")

// SessionConfig bounds the derived-state buffers.
type SessionConfig struct {
	ActivityLogSize  int
	BurstLimit       int
	FlashLimit       int
	FlashTTL         time.Duration
	VolumeNormalizer float64
	MaxIntensity     float64
}

// Session owns the live dashboard state: the snapshot store, the operator
// selection and every buffer derived from the refresh stream. The store is
// replaced wholesale per successful fetch; readers always see the cross-asset
// view of a single cycle. All mutations happen under one lock, so the
// store-replace, default-selection, activity-append, burst-append sequence of
// a cycle is visible atomically.
type Session struct {
	mu  sync.RWMutex
	cfg SessionConfig
	ctx context.Context

	coins     map[string]models.CoinSnapshot
	order     []string
	selected  string
	updatedAt time.Time

	events  []models.ActivityEvent // newest-first
	bursts  []models.EnergyBurst   // newest-first
	flashes []models.ActivityFlash // newest-first

	subs map[chan struct{}]struct{}

	now     func() time.Time
	randPos func() (x, y float64)
}

// SessionOption configures Session.
type SessionOption func(*Session)

// WithClock injects a clock, for tests.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// WithFlashPosition injects the flash position source, for tests.
func WithFlashPosition(fn func() (float64, float64)) SessionOption {
	return func(s *Session) { s.randPos = fn }
}

// NewSession creates a session bound to ctx. Flash expiry timers stop
// mutating state once ctx is cancelled.
func NewSession(ctx context.Context, cfg SessionConfig, opts ...SessionOption) *Session {
	if cfg.ActivityLogSize <= 0 {
		cfg.ActivityLogSize = 20
	}
	if cfg.BurstLimit <= 0 {
		cfg.BurstLimit = 3
	}
	if cfg.FlashLimit <= 0 {
		cfg.FlashLimit = 5
	}
	if cfg.FlashTTL <= 0 {
		cfg.FlashTTL = time.Second
	}
	if cfg.VolumeNormalizer <= 0 {
		cfg.VolumeNormalizer = 1_000_000_000
	}
	if cfg.MaxIntensity <= 0 {
		cfg.MaxIntensity = 10
	}

	s := &Session{
		cfg:   cfg,
		ctx:   ctx,
		coins: make(map[string]models.CoinSnapshot),
		subs:  make(map[chan struct{}]struct{}),
		now:   time.Now,
		randPos: func() (float64, float64) {
			return rand.Float64() * 400, rand.Float64() * 300
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ApplySnapshot replaces the store with the result of one successful fetch
// cycle and derives the presentation state for the selected coin. It returns
// the activity event appended this cycle, or nil when no coin is selected or
// the selected coin is missing from the snapshot.
func (s *Session) ApplySnapshot(coins []models.CoinSnapshot) *models.ActivityEvent {
	now := s.now()

	s.mu.Lock()

	store := make(map[string]models.CoinSnapshot, len(coins))
	order := make([]string, 0, len(coins))
	for _, coin := range coins {
		store[coin.ID] = coin
		order = append(order, coin.ID)
	}
	s.coins = store
	s.order = order
	s.updatedAt = now

	// Default selection runs only while nothing is selected; refreshes never
	// override an existing choice.
	if s.selected == "" && len(coins) > 0 {
		s.selected = defaultSelection(coins)
	}

	var ev *models.ActivityEvent
	if coin, ok := s.coins[s.selected]; ok {
		mood := models.ClassifyMood(coin.PriceChange24)
		appended := models.ActivityEvent{
			ID:       uuid.NewString(),
			Time:     now,
			Symbol:   strings.ToUpper(coin.Symbol),
			Change24: coin.PriceChange24,
			Mood:     mood,
			Price:    coin.CurrentPrice,
		}
		s.events = append([]models.ActivityEvent{appended}, s.events...)
		if len(s.events) > s.cfg.ActivityLogSize {
			s.events = s.events[:s.cfg.ActivityLogSize]
		}
		ev = &appended

		s.appendBurst(coin, now)
		s.appendFlash(now)
	}

	s.mu.Unlock()

	s.notify()
	return ev
}

func defaultSelection(coins []models.CoinSnapshot) string {
	for _, coin := range coins {
		if strings.EqualFold(coin.Symbol, "btc") {
			return coin.ID
		}
	}
	return coins[0].ID
}

// appendBurst derives burst intensity from trading volume. Caller holds the lock.
func (s *Session) appendBurst(coin models.CoinSnapshot, now time.Time) {
	intensity := math.Min(coin.TotalVolume/s.cfg.VolumeNormalizer, s.cfg.MaxIntensity)
	s.bursts = append([]models.EnergyBurst{{
		ID:        uuid.NewString(),
		Intensity: intensity,
		CreatedAt: now,
	}}, s.bursts...)
	if len(s.bursts) > s.cfg.BurstLimit {
		s.bursts = s.bursts[:s.cfg.BurstLimit]
	}
}

// appendFlash adds a flash with its own expiry timer. Caller holds the lock.
func (s *Session) appendFlash(now time.Time) {
	x, y := s.randPos()
	flash := models.ActivityFlash{
		ID:        uuid.NewString(),
		X:         x,
		Y:         y,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.FlashTTL),
	}
	s.flashes = append([]models.ActivityFlash{flash}, s.flashes...)
	if len(s.flashes) > s.cfg.FlashLimit {
		s.flashes = s.flashes[:s.cfg.FlashLimit]
	}

	id := flash.ID
	time.AfterFunc(s.cfg.FlashTTL, func() {
		if s.ctx.Err() != nil {
			return
		}
		s.removeFlash(id)
	})
}

func (s *Session) removeFlash(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, f := range s.flashes {
		if f.ID == id {
			s.flashes = append(s.flashes[:i], s.flashes[i+1:]...)
			return
		}
	}
}

// SelectCoin changes the operator selection. The id must be present in the
// current snapshot.
func (s *Session) SelectCoin(id string) error {
	s.mu.Lock()
	if _, ok := s.coins[id]; !ok {
		s.mu.Unlock()
		return ErrUnknownCoin
	}
	s.selected = id
	s.mu.Unlock()

	s.notify()
	return nil
}

// ClearSelection drops the operator selection. The next refresh re-applies
// the default-selection policy.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	s.selected = ""
	s.mu.Unlock()

	s.notify()
}

// Coin returns the latest snapshot for one id.
func (s *Session) Coin(id string) (models.CoinSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	coin, ok := s.coins[id]
	return coin, ok
}

// Coins returns all snapshots in fetched (market-cap-descending) order,
// optionally filtered by a case-insensitive name/symbol substring.
func (s *Session) Coins(query string) []models.CoinSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query = strings.ToLower(query)
	out := make([]models.CoinSnapshot, 0, len(s.order))
	for _, id := range s.order {
		coin := s.coins[id]
		if query != "" &&
			!strings.Contains(strings.ToLower(coin.Name), query) &&
			!strings.Contains(strings.ToLower(coin.Symbol), query) {
			continue
		}
		out = append(out, coin)
	}
	return out
}

// SelectedID returns the selected coin id, empty when nothing is selected.
func (s *Session) SelectedID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// Selected returns the selected coin's snapshot if it has one.
func (s *Session) Selected() (models.CoinSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	coin, ok := s.coins[s.selected]
	return coin, ok
}

// Activities returns the activity log, newest-first. A limit <= 0 returns
// the whole log; events older than since are skipped when since is non-zero.
func (s *Session) Activities(limit int, since time.Time) []models.ActivityEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.ActivityEvent, 0, len(s.events))
	for _, ev := range s.events {
		if !since.IsZero() && ev.Time.Before(since) {
			continue
		}
		out = append(out, ev)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// Bursts returns the most recent energy bursts, newest-first.
func (s *Session) Bursts() []models.EnergyBurst {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.EnergyBurst, len(s.bursts))
	copy(out, s.bursts)
	return out
}

// Flashes returns the live flash descriptors, newest-first. Expired entries
// are filtered even if their removal timer has not fired yet.
func (s *Session) Flashes() []models.ActivityFlash {
	now := s.now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.ActivityFlash, 0, len(s.flashes))
	for _, f := range s.flashes {
		if now.Before(f.ExpiresAt) {
			out = append(out, f)
		}
	}
	return out
}

// State returns the presentation aggregate for the selected coin.
func (s *Session) State() models.DragonState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := models.DragonState{
		Mood:      models.MoodFlows,
		UpdatedAt: s.updatedAt,
	}
	if coin, ok := s.coins[s.selected]; ok {
		selected := coin
		st.Selected = &selected
		st.Mood = models.ClassifyMood(coin.PriceChange24)
		st.EnergyLevel = math.Min(math.Abs(coin.PriceChange24)*5, 100)
	}
	return st
}

// Subscribe registers a refresh notification channel for push consumers.
// The channel carries edge-triggered signals; slow receivers miss
// intermediate updates rather than blocking the refresh cycle.
func (s *Session) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		delete(s.subs, ch)
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) notify() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
