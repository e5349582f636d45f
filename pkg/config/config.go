package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Location is a tracked real-estate market as it appears in YAML.
type Location struct {
	City    string `yaml:"city"`
	State   string `yaml:"state"`
	ZipCode string `yaml:"zip_code"`
}

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		SlowThreshold   time.Duration `yaml:"slow_threshold"`
		CORSOrigins     []string      `yaml:"cors_origins"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Logger struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logger"`
	RealEstate struct {
		APIKey       string        `yaml:"api_key"`
		Host         string        `yaml:"host"`
		BaseURL      string        `yaml:"base_url"`
		Timeout      time.Duration `yaml:"timeout"`
		RatePerSec   float64       `yaml:"rate_per_sec"`
		Burst        float64       `yaml:"burst"`
		SaleLimit    int           `yaml:"sale_limit"`
		RentLimit    int           `yaml:"rent_limit"`
		SoldLimit    int           `yaml:"sold_limit"`
		Locations    []Location    `yaml:"locations"`
		AggregateTTL time.Duration `yaml:"aggregate_timeout"`
	} `yaml:"realestate"`
	Finnhub struct {
		APIKey          string              `yaml:"api_key"`
		BaseURL         string              `yaml:"base_url"`
		Timeout         time.Duration       `yaml:"timeout"`
		RatePerSec      float64             `yaml:"rate_per_sec"`
		OverviewSymbols []string            `yaml:"overview_symbols"`
		Industries      map[string][]string `yaml:"industries"`
	} `yaml:"finnhub"`
	CoinGecko struct {
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
		PerPage int           `yaml:"per_page"`
	} `yaml:"coingecko"`
	Cache struct {
		Backend   string        `yaml:"backend"`
		Retention time.Duration `yaml:"retention"`
		Postgres  struct {
			DSN      string `yaml:"dsn"`
			MaxConns int32  `yaml:"max_conns"`
			MinConns int32  `yaml:"min_conns"`
		} `yaml:"postgres"`
		Redis struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
		Memory struct {
			MaxSize int `yaml:"max_size"`
		} `yaml:"memory"`
	} `yaml:"cache"`
	Sink struct {
		Backend string `yaml:"backend"`
	} `yaml:"sink"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			Enabled    bool          `yaml:"enabled"`
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host         string        `yaml:"host"`
		Port         int           `yaml:"port"`
		Database     string        `yaml:"database"`
		User         string        `yaml:"user"`
		Password     string        `yaml:"password"`
		UseHTTP      bool          `yaml:"use_http"`
		AsyncInsert  bool          `yaml:"async_insert"`
		DialTimeout  time.Duration `yaml:"dial_timeout"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"clickhouse"`
}

// Cache backends.
const (
	CacheBackendPostgres = "postgres"
	CacheBackendRedis    = "redis"
	CacheBackendMemory   = "memory"
	CacheBackendNone     = "none"
)

// Sink backends.
const (
	SinkBackendKafka      = "kafka"
	SinkBackendClickHouse = "clickhouse"
	SinkBackendNone       = "none"
)

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML bytes, fills defaults and validates.
func Parse(b []byte) (*Config, error) {
	c, err := decode(b)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	c, err := decode(b)
	if err != nil {
		return nil, err
	}

	// Override with environment variables
	c.applyEnv(os.Getenv)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func decode(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()
	return &c, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("RAPIDAPI_KEY"); v != "" {
		c.RealEstate.APIKey = v
	}
	if v := getenv("FINNHUB_API_KEY"); v != "" {
		c.Finnhub.APIKey = v
	}
	if v := getenv("POSTGRES_DSN"); v != "" {
		c.Cache.Postgres.DSN = v
	}
	if v := getenv("REDIS_HOST"); v != "" {
		c.Cache.Redis.Host = v
	}
	if v := getenv("CACHE_BACKEND"); v != "" {
		c.Cache.Backend = v
	}
	if v := getenv("SINK_BACKEND"); v != "" {
		c.Sink.Backend = v
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.CORSOrigins == nil {
		c.Server.CORSOrigins = []string{"*"}
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.Logger.Format == "" {
		c.Logger.Format = "json"
	}
	if c.Logger.Output == "" {
		c.Logger.Output = "stdout"
	}
	if c.RealEstate.Host == "" {
		c.RealEstate.Host = "us-real-estate.p.rapidapi.com"
	}
	if c.RealEstate.BaseURL == "" {
		c.RealEstate.BaseURL = "https://" + c.RealEstate.Host
	}
	if c.RealEstate.SaleLimit == 0 {
		c.RealEstate.SaleLimit = 50
	}
	if c.RealEstate.RentLimit == 0 {
		c.RealEstate.RentLimit = 50
	}
	if c.RealEstate.SoldLimit == 0 {
		c.RealEstate.SoldLimit = 30
	}
	if c.Finnhub.BaseURL == "" {
		c.Finnhub.BaseURL = "https://finnhub.io/api/v1"
	}
	if c.CoinGecko.BaseURL == "" {
		c.CoinGecko.BaseURL = "https://api.coingecko.com/api/v3"
	}
	if c.CoinGecko.PerPage == 0 {
		c.CoinGecko.PerPage = 10
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = CacheBackendNone
	}
	if c.Cache.Retention == 0 {
		c.Cache.Retention = 24 * time.Hour
	}
	if c.Sink.Backend == "" {
		c.Sink.Backend = SinkBackendNone
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "realestate.snapshots"
	}
	if c.ClickHouse.Database == "" {
		c.ClickHouse.Database = "findash"
	}
}

// Validate checks if the configuration is valid.
// Missing vendor keys are degraded mode and never fail validation.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.Cache.Backend {
	case CacheBackendPostgres:
		if c.Cache.Postgres.DSN == "" {
			return fmt.Errorf("cache.postgres.dsn is required for backend '%s'", c.Cache.Backend)
		}
	case CacheBackendRedis, CacheBackendMemory, CacheBackendNone:
	default:
		return fmt.Errorf("cache.backend must be one of postgres, redis, memory, none; got '%s'", c.Cache.Backend)
	}
	switch c.Sink.Backend {
	case SinkBackendKafka:
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers cannot be empty for sink '%s'", c.Sink.Backend)
		}
	case SinkBackendClickHouse:
		if c.ClickHouse.Host == "" {
			return fmt.Errorf("clickhouse.host is required for sink '%s'", c.Sink.Backend)
		}
	case SinkBackendNone:
	default:
		return fmt.Errorf("sink.backend must be one of kafka, clickhouse, none; got '%s'", c.Sink.Backend)
	}
	if c.Kafka.Consumer.Enabled && c.ClickHouse.Host == "" {
		return fmt.Errorf("kafka.consumer requires clickhouse.host")
	}
	if c.Cache.Retention < 0 {
		return fmt.Errorf("cache.retention must be positive")
	}
	for i, l := range c.RealEstate.Locations {
		if l.ZipCode == "" || l.City == "" || l.State == "" {
			return fmt.Errorf("realestate.locations[%d]: city, state and zip_code are required", i)
		}
	}
	return nil
}
