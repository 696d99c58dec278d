package config

import (
	"fmt"
	"os"
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
	Binance struct {
		BaseURL        string            `yaml:"base_url"`
		WebSocketURL   string            `yaml:"websocket_url"`
		Coins          map[string]string `yaml:"coins"` // friendly name -> exchange symbol
		RequestTimeout time.Duration     `yaml:"request_timeout"`
		CacheTTL       time.Duration     `yaml:"cache_ttl"`
		RateCapacity   float64           `yaml:"rate_capacity"`
		RateRefill     float64           `yaml:"rate_refill_per_sec"`
		StreamEnabled  bool              `yaml:"stream_enabled"`
		ReconnectDelay time.Duration     `yaml:"reconnect_delay"`
	} `yaml:"binance"`
	News struct {
		BaseURL   string        `yaml:"base_url"`
		AuthToken string        `yaml:"auth_token"`
		Timeout   time.Duration `yaml:"timeout"`
		CacheTTL  time.Duration `yaml:"cache_ttl"`
	} `yaml:"news"`
	Artifacts struct {
		Dir     string `yaml:"dir"`
		Memoize bool   `yaml:"memoize"`
	} `yaml:"artifacts"`
	Forecast struct {
		HistoryDays int           `yaml:"history_days"`
		MaxHorizon  int           `yaml:"max_horizon"`
		Timeout     time.Duration `yaml:"timeout"`
	} `yaml:"forecast"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Kafka struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic"`
		RequiredAcks int           `yaml:"required_acks"`
		Compression  string        `yaml:"compression"`
		MaxAttempts  int           `yaml:"max_attempts"`
		Linger       time.Duration `yaml:"linger"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		Async        bool          `yaml:"async"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled      bool          `yaml:"enabled"`
		Host         string        `yaml:"host"`
		Port         int           `yaml:"port"`
		Database     string        `yaml:"database"`
		User         string        `yaml:"user"`
		Password     string        `yaml:"password"`
		UseHTTP      bool          `yaml:"use_http"`
		AsyncInsert  bool          `yaml:"async_insert"`
		WaitForAsync bool          `yaml:"wait_for_async_insert"`
		DialTimeout  time.Duration `yaml:"dial_timeout"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"clickhouse"`
}

// DefaultCoins maps friendly coin names (and their tickers) to exchange symbols.
// Used when binance.coins is omitted from the config file.
var DefaultCoins = map[string]string{
	"bitcoin":     "BTCUSDT",
	"btc":         "BTCUSDT",
	"ethereum":    "ETHUSDT",
	"eth":         "ETHUSDT",
	"litecoin":    "LTCUSDT",
	"ltc":         "LTCUSDT",
	"binancecoin": "BNBUSDT",
	"bnb":         "BNBUSDT",
	"ripple":      "XRPUSDT",
	"xrp":         "XRPUSDT",
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

	if v := os.Getenv("NEWS_AUTH_TOKEN"); v != "" {
		c.News.AuthToken = v
	}
	if v := os.Getenv("ARTIFACTS_DIR"); v != "" {
		c.Artifacts.Dir = v
	}
	if v := os.Getenv("BINANCE_BASE_URL"); v != "" {
		c.Binance.BaseURL = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 5000
	}
	if c.Server.ReadTimeout <= 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout <= 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Binance.BaseURL == "" {
		c.Binance.BaseURL = "https://api.binance.com/api/v3"
	}
	if c.Binance.WebSocketURL == "" {
		c.Binance.WebSocketURL = "wss://stream.binance.com:9443/ws"
	}
	if len(c.Binance.Coins) == 0 {
		c.Binance.Coins = DefaultCoins
	}
	if c.Binance.RequestTimeout <= 0 {
		c.Binance.RequestTimeout = 8 * time.Second
	}
	if c.Binance.CacheTTL <= 0 {
		c.Binance.CacheTTL = 20 * time.Second
	}
	if c.Binance.RateCapacity <= 0 {
		c.Binance.RateCapacity = 10
	}
	if c.Binance.RateRefill <= 0 {
		c.Binance.RateRefill = 5
	}
	if c.Binance.ReconnectDelay <= 0 {
		c.Binance.ReconnectDelay = 5 * time.Second
	}
	if c.News.BaseURL == "" {
		c.News.BaseURL = "https://cryptopanic.com/api/v1"
	}
	if c.News.Timeout <= 0 {
		c.News.Timeout = 8 * time.Second
	}
	if c.News.CacheTTL <= 0 {
		c.News.CacheTTL = 60 * time.Second
	}
	if c.Forecast.HistoryDays <= 0 {
		c.Forecast.HistoryDays = 90
	}
	if c.Forecast.MaxHorizon <= 0 {
		c.Forecast.MaxHorizon = 30
	}
	if c.Forecast.Timeout <= 0 {
		c.Forecast.Timeout = 15 * time.Second
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Artifacts.Dir == "" {
		return fmt.Errorf("artifacts.dir is required")
	}
	if len(c.Binance.Coins) == 0 {
		return fmt.Errorf("binance.coins cannot be empty")
	}
	for coin, symbol := range c.Binance.Coins {
		if coin != strings.ToLower(coin) {
			return fmt.Errorf("binance.coins: coin name '%s' must be lower-case", coin)
		}
		if symbol == "" {
			return fmt.Errorf("binance.coins: symbol for '%s' is empty", coin)
		}
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers required when kafka is enabled")
	}
	if c.Kafka.Enabled && c.Kafka.Topic == "" {
		return fmt.Errorf("kafka.topic required when kafka is enabled")
	}
	if c.ClickHouse.Enabled && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host required when clickhouse is enabled")
	}
	return nil
}
