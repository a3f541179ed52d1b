package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	CoinGecko struct {
		BaseURL         string        `yaml:"base_url"`
		Currency        string        `yaml:"currency"`
		PerPage         int           `yaml:"per_page"`
		RefreshInterval time.Duration `yaml:"refresh_interval"`
		RequestTimeout  time.Duration `yaml:"request_timeout"`
		RateCapacity    float64       `yaml:"rate_capacity"`
		RatePerSec      float64       `yaml:"rate_per_sec"`
	} `yaml:"coingecko"`
	Dragon struct {
		ActivityLogSize  int           `yaml:"activity_log_size"`
		BurstLimit       int           `yaml:"burst_limit"`
		FlashLimit       int           `yaml:"flash_limit"`
		FlashTTL         time.Duration `yaml:"flash_ttl"`
		VolumeNormalizer float64       `yaml:"volume_normalizer"`
		MaxIntensity     float64       `yaml:"max_intensity"`
	} `yaml:"dragon"`
	Cache struct {
		Backend   string        `yaml:"backend"`
		DetailTTL time.Duration `yaml:"detail_ttl"`
		Redis     struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Events struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Async        bool     `yaml:"async"`
	} `yaml:"events"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("COINGECKO_BASE_URL"); v != "" {
		c.CoinGecko.BaseURL = v
	}
	if v := os.Getenv("REFRESH_INTERVAL"); v != "" {
		if d, perr := time.ParseDuration(v); perr == nil {
			c.CoinGecko.RefreshInterval = d
		}
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if p, perr := strconv.Atoi(v); perr == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		c.Cache.Backend = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Cache.Redis.Host = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Events.Brokers = strings.Split(v, ",")
		c.Events.Enabled = true
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Events.Topic = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.CoinGecko.BaseURL == "" {
		c.CoinGecko.BaseURL = "https://api.coingecko.com/api/v3"
	}
	if c.CoinGecko.Currency == "" {
		c.CoinGecko.Currency = "usd"
	}
	if c.CoinGecko.PerPage == 0 {
		c.CoinGecko.PerPage = 50
	}
	if c.CoinGecko.RefreshInterval == 0 {
		c.CoinGecko.RefreshInterval = 30 * time.Second
	}
	if c.CoinGecko.RequestTimeout == 0 {
		c.CoinGecko.RequestTimeout = 15 * time.Second
	}
	if c.CoinGecko.RateCapacity == 0 {
		c.CoinGecko.RateCapacity = 10
	}
	if c.CoinGecko.RatePerSec == 0 {
		c.CoinGecko.RatePerSec = 0.5
	}
	if c.Dragon.ActivityLogSize == 0 {
		c.Dragon.ActivityLogSize = 20
	}
	if c.Dragon.BurstLimit == 0 {
		c.Dragon.BurstLimit = 3
	}
	if c.Dragon.FlashLimit == 0 {
		c.Dragon.FlashLimit = 5
	}
	if c.Dragon.FlashTTL == 0 {
		c.Dragon.FlashTTL = time.Second
	}
	if c.Dragon.VolumeNormalizer == 0 {
		c.Dragon.VolumeNormalizer = 1_000_000_000
	}
	if c.Dragon.MaxIntensity == 0 {
		c.Dragon.MaxIntensity = 10
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "memory"
	}
	if c.Cache.DetailTTL == 0 {
		c.Cache.DetailTTL = time.Minute
	}
	if c.Cache.Redis.Host == "" {
		c.Cache.Redis.Host = "localhost"
	}
	if c.Cache.Redis.Port == 0 {
		c.Cache.Redis.Port = 6379
	}
	if c.Events.Compression == "" {
		c.Events.Compression = "gzip"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.Cache.Backend {
	case "memory", "redis", "layered":
	default:
		return fmt.Errorf("cache.backend must be 'memory', 'redis' or 'layered', got '%s'", c.Cache.Backend)
	}
	if c.CoinGecko.RefreshInterval < time.Second {
		return fmt.Errorf("coingecko.refresh_interval must be at least 1s")
	}
	if c.CoinGecko.PerPage < 1 || c.CoinGecko.PerPage > 250 {
		return fmt.Errorf("coingecko.per_page must be between 1 and 250")
	}
	if c.Events.Enabled {
		if len(c.Events.Brokers) == 0 {
			return fmt.Errorf("events.brokers cannot be empty when events are enabled")
		}
		if c.Events.Topic == "" {
			return fmt.Errorf("events.topic is required when events are enabled")
		}
	}
	return nil
}
