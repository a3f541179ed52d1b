package di

import (
	"context"
	"fmt"

	"DragonVeins/internal/domain/repository"
	"DragonVeins/internal/handler/api"
	"DragonVeins/internal/service/coingecko"
	"DragonVeins/internal/usecase"
	pkgcache "DragonVeins/pkg/cache"
	"DragonVeins/pkg/config"
	xhttp "DragonVeins/pkg/http"
	pkgkafka "DragonVeins/pkg/kafka"
	applogger "DragonVeins/pkg/logger"
	"DragonVeins/pkg/metrics"
	"DragonVeins/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCache creates the detail cache selected by config.
func ProvideCache(cfg *config.Config) (pkgcache.Service, error) {
	switch cfg.Cache.Backend {
	case "redis", "layered":
		redisCache, err := pkgcache.NewRedisCache(
			pkgcache.WithRedisHost(cfg.Cache.Redis.Host),
			pkgcache.WithRedisPort(cfg.Cache.Redis.Port),
			pkgcache.WithRedisPassword(cfg.Cache.Redis.Password),
			pkgcache.WithRedisDB(cfg.Cache.Redis.DB),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		if cfg.Cache.Backend == "layered" {
			return pkgcache.NewLayeredCache(redisCache), nil
		}
		return redisCache, nil
	default:
		return pkgcache.NewMemoryCache(), nil
	}
}

// ProvideEventSink creates the Kafka activity sink, or nil when events are
// disabled.
func ProvideEventSink(cfg *config.Config) (repository.EventSink, error) {
	if !cfg.Events.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Events.Brokers),
		pkgkafka.WithCompression(cfg.Events.Compression),
		pkgkafka.WithRequiredAcks(cfg.Events.RequiredAcks),
		pkgkafka.WithAsync(cfg.Events.Async),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return usecase.NewKafkaEventSink(producer, cfg.Events.Topic), nil
}

// ProvideMarketFeed creates the CoinGecko client.
func ProvideMarketFeed(cfg *config.Config, m repository.Metrics) repository.MarketFeed {
	return coingecko.New(
		cfg.CoinGecko.BaseURL,
		cfg.CoinGecko.Currency,
		cfg.CoinGecko.PerPage,
		cfg.CoinGecko.RequestTimeout,
		coingecko.WithRate(cfg.CoinGecko.RateCapacity, cfg.CoinGecko.RatePerSec),
		coingecko.WithMetrics(m),
	)
}

// ProvideSession creates the in-memory dashboard session. Its lifetime is
// the process lifetime, so the background context is the right owner.
func ProvideSession(cfg *config.Config) *usecase.Session {
	return usecase.NewSession(context.Background(), usecase.SessionConfig{
		ActivityLogSize:  cfg.Dragon.ActivityLogSize,
		BurstLimit:       cfg.Dragon.BurstLimit,
		FlashLimit:       cfg.Dragon.FlashLimit,
		FlashTTL:         cfg.Dragon.FlashTTL,
		VolumeNormalizer: cfg.Dragon.VolumeNormalizer,
		MaxIntensity:     cfg.Dragon.MaxIntensity,
	})
}

// ProvideDetailService creates the cached coin detail lookup.
func ProvideDetailService(feed repository.MarketFeed, c pkgcache.Service, cfg *config.Config) *usecase.DetailService {
	return usecase.NewDetailService(feed, c, cfg.Cache.DetailTTL)
}

// ProvidePoller creates the refresh loop.
func ProvidePoller(
	feed repository.MarketFeed,
	session *usecase.Session,
	sink repository.EventSink,
	m repository.Metrics,
	logger *applogger.Logger,
	cfg *config.Config,
) *usecase.MarketPoller {
	return usecase.NewMarketPoller(feed, session, sink, m, logger, cfg.CoinGecko.RefreshInterval)
}

// ProvideStreamHandler creates the WebSocket push handler.
func ProvideStreamHandler(logger *applogger.Logger, session *usecase.Session) *api.StreamHandler {
	return api.NewStreamHandler(logger, session)
}

// ProvideHandler creates the REST handler.
func ProvideHandler(
	logger *applogger.Logger,
	session *usecase.Session,
	details *usecase.DetailService,
	stream *api.StreamHandler,
) xhttp.Handler {
	return api.NewDragonEchoHandler(logger, session, details, stream)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	logger *applogger.Logger,
	poller *usecase.MarketPoller,
	handler xhttp.Handler,
	c pkgcache.Service,
) *server.App {
	return server.New(cfg, logger, poller, handler, c)
}
