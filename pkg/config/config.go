package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	Scanner struct {
		Watchlist    []string      `yaml:"watchlist"`
		Interval     time.Duration `yaml:"interval" default:"1h"`
		LookbackDays int           `yaml:"lookback_days" default:"150" validate:"gte=14"`
		Workers      int           `yaml:"workers" default:"8" validate:"gte=1,lte=64"`
		MaxSignals   int           `yaml:"max_signals" default:"10" validate:"gte=1"`
	} `yaml:"scanner"`
	Thresholds struct {
		RSIOverbought    float64 `yaml:"rsi_overbought" default:"70" validate:"gt=0,lte=100"`
		RSIOversold      float64 `yaml:"rsi_oversold" default:"30" validate:"gte=0,lt=100"`
		ATRPercentileMin float64 `yaml:"atr_percentile_min" default:"50" validate:"gte=0,lte=100"`
		HVPercentileMin  float64 `yaml:"hv_percentile_min" default:"80" validate:"gte=0,lte=100"`
	} `yaml:"thresholds"`
	Regime struct {
		ExtremeMin float64 `yaml:"extreme_min" default:"90" validate:"gte=0,lte=100"`
		HighMin    float64 `yaml:"high_min" default:"70" validate:"gte=0,lte=100"`
		LowMax     float64 `yaml:"low_max" default:"20" validate:"gte=0,lte=100"`
	} `yaml:"regime"`
	Strength struct {
		RSIWeight    float64 `yaml:"rsi_weight" default:"0.35" validate:"gte=0"`
		BandWeight   float64 `yaml:"band_weight" default:"0.30" validate:"gte=0"`
		ATRWeight    float64 `yaml:"atr_weight" default:"0.20" validate:"gte=0"`
		RegimeWeight float64 `yaml:"regime_weight" default:"0.15" validate:"gte=0"`
	} `yaml:"strength"`
	Risk struct {
		StopATRMultiple   float64 `yaml:"stop_atr_multiple" default:"1.0" validate:"gt=0"`
		TargetATRMultiple float64 `yaml:"target_atr_multiple" default:"2.0" validate:"gt=0"`
		HoldingDays       int     `yaml:"holding_days" default:"30" validate:"gte=1"`
	} `yaml:"risk"`
	MarketData struct {
		BaseURL     string        `yaml:"base_url" default:"https://data.alpaca.markets"`
		APIKey      string        `yaml:"api_key"`
		APISecret   string        `yaml:"api_secret"`
		Timeout     time.Duration `yaml:"timeout" default:"15s"`
		MaxRetries  int           `yaml:"max_retries" default:"3" validate:"gte=0"`
		RequestsSec float64       `yaml:"requests_sec" default:"3" validate:"gt=0"`
	} `yaml:"market_data"`
	ClickHouse struct {
		Enabled     bool          `yaml:"enabled"`
		Host        string        `yaml:"host" default:"localhost"`
		Port        int           `yaml:"port" default:"9000"`
		Database    string        `yaml:"database" default:"volscan"`
		User        string        `yaml:"user" default:"default"`
		Password    string        `yaml:"password"`
		DialTimeout time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout time.Duration `yaml:"read_timeout" default:"10s"`
	} `yaml:"clickhouse"`
	Postgres struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host" default:"localhost"`
		Port     int    `yaml:"port" default:"5432"`
		Database string `yaml:"database" default:"volscan"`
		User     string `yaml:"user" default:"volscan"`
		Password string `yaml:"password"`
		SSLMode  string `yaml:"ssl_mode" default:"disable"`
	} `yaml:"postgres"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host" default:"localhost"`
		Port     int    `yaml:"port" default:"6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Kafka struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		SignalsTopic string        `yaml:"signals_topic" default:"volscan.signals"`
		RequiredAcks int           `yaml:"required_acks" default:"-1"`
		Compression  string        `yaml:"compression" default:"gzip"`
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
	} `yaml:"kafka"`
	Alerts struct {
		DiscordWebhookURL string `yaml:"discord_webhook_url"`
		SlackWebhookURL   string `yaml:"slack_webhook_url"`
		MinStrength       int    `yaml:"min_strength" default:"4" validate:"gte=1,lte=5"`
	} `yaml:"alerts"`
}

var validate = validator.New()

// Load reads and parses a YAML configuration file, fills defaults and
// validates thresholds. Invalid configuration is fatal at startup,
// before any scan runs.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if len(c.Scanner.Watchlist) == 0 {
		c.Scanner.Watchlist = append([]string(nil), Nasdaq100...)
	}

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

	if v := os.Getenv("MARKET_DATA_API_KEY"); v != "" {
		c.MarketData.APIKey = v
	}
	if v := os.Getenv("MARKET_DATA_API_SECRET"); v != "" {
		c.MarketData.APISecret = v
	}
	if v := os.Getenv("WATCHLIST"); v != "" {
		c.Scanner.Watchlist = strings.Split(v, ",")
	}
	if v := os.Getenv("POSTGRES_PASSWORD"); v != "" {
		c.Postgres.Password = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("DISCORD_WEBHOOK_URL"); v != "" {
		c.Alerts.DiscordWebhookURL = v
	}
	if v := os.Getenv("SLACK_WEBHOOK_URL"); v != "" {
		c.Alerts.SlackWebhookURL = v
	}
	if v := os.Getenv("ATR_PERCENTILE_MIN"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("ATR_PERCENTILE_MIN: %w", err)
		}
		c.Thresholds.ATRPercentileMin = f
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Validate checks struct tags plus the cross-field rules tags cannot express.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Thresholds.RSIOversold >= c.Thresholds.RSIOverbought {
		return fmt.Errorf("rsi_oversold (%.1f) must be below rsi_overbought (%.1f)",
			c.Thresholds.RSIOversold, c.Thresholds.RSIOverbought)
	}
	if c.Regime.HighMin >= c.Regime.ExtremeMin {
		return fmt.Errorf("regime high_min (%.1f) must be below extreme_min (%.1f)",
			c.Regime.HighMin, c.Regime.ExtremeMin)
	}
	if c.Regime.LowMax >= c.Regime.HighMin {
		return fmt.Errorf("regime low_max (%.1f) must be below high_min (%.1f)",
			c.Regime.LowMax, c.Regime.HighMin)
	}
	w := c.Strength
	if w.RSIWeight+w.BandWeight+w.ATRWeight+w.RegimeWeight <= 0 {
		return fmt.Errorf("strength weights must not all be zero")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers required when kafka is enabled")
	}
	return nil
}
