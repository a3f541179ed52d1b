package usecase

import (
	"context"
	"time"

	"DragonVeins/internal/service/coingecko"

	drepo "DragonVeins/internal/domain/repository"
	applogger "DragonVeins/pkg/logger"
)

// MarketPoller drives the refresh cycle: one immediate fetch on start, then
// one per interval. Scheduling is fixed-period, so a slow fetch may overlap
// the next tick; each cycle applies its result atomically or not at all.
type MarketPoller struct {
	feed     drepo.MarketFeed
	session  *Session
	sink     drepo.EventSink
	metrics  drepo.Metrics
	logger   *applogger.Logger
	interval time.Duration

	cancel context.CancelFunc
}

// NewMarketPoller creates a poller. sink may be nil when event publishing is
// disabled.
func NewMarketPoller(feed drepo.MarketFeed, session *Session, sink drepo.EventSink, metrics drepo.Metrics, logger *applogger.Logger, interval time.Duration) *MarketPoller {
	return &MarketPoller{
		feed:     feed,
		session:  session,
		sink:     sink,
		metrics:  metrics,
		logger:   logger,
		interval: interval,
	}
}

// Start launches the polling loop. It returns immediately; the loop runs
// until the given context or Shutdown cancels it.
func (p *MarketPoller) Start(ctx context.Context) error {
	ctx, p.cancel = context.WithCancel(ctx)

	go func() {
		// First cycle fires immediately so the dashboard is not empty for a
		// full interval after startup.
		go p.refresh(ctx)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				go p.refresh(ctx)
			}
		}
	}()

	return nil
}

// refresh runs one fetch cycle. A failed fetch leaves every piece of session
// state untouched; the next tick is the only retry.
func (p *MarketPoller) refresh(ctx context.Context) {
	coins, err := p.feed.FetchMarkets(ctx)
	if err != nil {
		kind := coingecko.ErrorKind(err)
		p.logger.Error("market refresh failed",
			applogger.Error(err),
			applogger.String("kind", kind),
		)
		p.metrics.RecordFeedError(kind)
		p.metrics.RecordRefresh("error")
		return
	}

	// A late result racing teardown must not mutate a dead session.
	if ctx.Err() != nil {
		p.metrics.RecordRefresh("discarded")
		return
	}

	ev := p.session.ApplySnapshot(coins)
	p.metrics.RecordRefresh("ok")

	if ev == nil {
		return
	}
	p.metrics.RecordLastPrice(ev.Symbol, ev.Price)
	p.logger.Debug("refresh applied",
		applogger.String("symbol", ev.Symbol),
		applogger.String("mood", ev.Mood.Label),
		applogger.Float64("change_24h", ev.Change24),
	)

	if p.sink != nil {
		if err := p.sink.Publish(ctx, *ev); err != nil {
			p.logger.Warn("activity publish failed", applogger.Error(err))
		}
	}
}

// Shutdown stops future cycles and closes the event sink. Cycles already in
// flight complete but their results are discarded.
func (p *MarketPoller) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	if p.sink != nil {
		return p.sink.Close()
	}
	return nil
}
