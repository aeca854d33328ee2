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
		CORSOrigins     []string      `yaml:"cors_origins"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Log struct {
		Level    string `yaml:"level"`
		Format   string `yaml:"format"`
		Output   string `yaml:"output"`
		Rotation struct {
			MaxSizeMB  int  `yaml:"max_size_mb"`
			MaxBackups int  `yaml:"max_backups"`
			MaxAgeDays int  `yaml:"max_age_days"`
			Compress   bool `yaml:"compress"`
		} `yaml:"rotation"`
	} `yaml:"log"`
	Source struct {
		Type        string        `yaml:"type"` // csv, xlsx, clickhouse, influx
		MonthlyPath string        `yaml:"monthly_path"`
		RecordsPath string        `yaml:"records_path"`
		CacheTTL    time.Duration `yaml:"cache_ttl"`
	} `yaml:"source"`
	Forecast struct {
		Horizon int    `yaml:"horizon"`
		Seed    uint64 `yaml:"seed"` // 0 keeps the forecaster stochastic
	} `yaml:"forecast"`
	Insights struct {
		TopK    int           `yaml:"top_k"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"insights"`
	RateLimit struct {
		Enabled bool    `yaml:"enabled"`
		RPS     float64 `yaml:"rps"`
		Burst   int     `yaml:"burst"`
	} `yaml:"ratelimit"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Influx struct {
		URL         string `yaml:"url"`
		Token       string `yaml:"token"`
		Org         string `yaml:"org"`
		Bucket      string `yaml:"bucket"`
		Measurement string `yaml:"measurement"`
	} `yaml:"influx"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML bytes, fills defaults and validates the result.
func Parse(b []byte) (*Config, error) {
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
	c.applyEnv(os.Getenv)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("FP_ENVIRONMENT"); v != "" {
		c.Environment = v
	}
	if v := getenv("FP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := getenv("FP_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := getenv("FP_SOURCE"); v != "" {
		c.Source.Type = v
	}
	if v := getenv("FP_MONTHLY_PATH"); v != "" {
		c.Source.MonthlyPath = v
	}
	if v := getenv("FP_RECORDS_PATH"); v != "" {
		c.Source.RecordsPath = v
	}
	if v := getenv("FP_FORECAST_SEED"); v != "" {
		if s, err := strconv.ParseUint(v, 10, 64); err == nil {
			c.Forecast.Seed = s
		}
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := getenv("INFLUX_URL"); v != "" {
		c.Influx.URL = v
	}
	if v := getenv("INFLUX_TOKEN"); v != "" {
		c.Influx.Token = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
		c.Redis.Enabled = true
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}
	if c.Forecast.Horizon == 0 {
		c.Forecast.Horizon = 60
	}
	if c.Insights.TopK == 0 {
		c.Insights.TopK = 3
	}
	if c.Insights.Timeout == 0 {
		c.Insights.Timeout = 10 * time.Second
	}
	if c.Influx.Measurement == "" {
		c.Influx.Measurement = "monthly_price"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.Source.Type {
	case "csv", "xlsx":
		if c.Source.MonthlyPath == "" {
			return fmt.Errorf("source.monthly_path is required for source.type '%s'", c.Source.Type)
		}
		if c.Source.RecordsPath == "" {
			return fmt.Errorf("source.records_path is required for source.type '%s'", c.Source.Type)
		}
	case "clickhouse":
		if c.ClickHouse.Host == "" {
			return fmt.Errorf("clickhouse.host is required for source.type 'clickhouse'")
		}
	case "influx":
		if c.Influx.URL == "" || c.Influx.Bucket == "" {
			return fmt.Errorf("influx.url and influx.bucket are required for source.type 'influx'")
		}
		if c.ClickHouse.Host == "" && c.Source.RecordsPath == "" {
			return fmt.Errorf("source.type 'influx' needs clickhouse.host or source.records_path for market records")
		}
	case "":
		return fmt.Errorf("source.type is required")
	default:
		return fmt.Errorf("source.type must be one of csv, xlsx, clickhouse, influx, got '%s'", c.Source.Type)
	}
	if c.Forecast.Horizon < 1 || c.Forecast.Horizon > 240 {
		return fmt.Errorf("forecast.horizon must be within 1..240, got %d", c.Forecast.Horizon)
	}
	if c.Insights.TopK < 1 {
		return fmt.Errorf("insights.top_k must be positive, got %d", c.Insights.TopK)
	}
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("kafka.topic is required when kafka is enabled")
		}
		if c.ClickHouse.Host == "" {
			return fmt.Errorf("clickhouse.host is required to store ingested records")
		}
	}
	if c.RateLimit.Enabled && c.RateLimit.RPS <= 0 {
		return fmt.Errorf("ratelimit.rps must be positive when rate limiting is enabled")
	}
	return nil
}
