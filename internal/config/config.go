package config

import (
	"fmt"
	"strings"
	"time"

	"figimapper/internal/figi"

	"github.com/spf13/viper"
)

// Checkpoint backends
const (
	CheckpointFile  = "file"
	CheckpointRedis = "redis"
	CheckpointNone  = "none"
)

// Config holds all configuration for the mapper. It is read once at startup.
type Config struct {
	// Mapping service
	APIKey            string        `mapstructure:"openfigi_api_key"`
	URL               string        `mapstructure:"openfigi_url"`
	APILimit          int           `mapstructure:"openfigi_api_limit"`
	NumThreads        int           `mapstructure:"openfigi_num_threads"`
	RequestTimeout    time.Duration `mapstructure:"openfigi_request_timeout"`
	RequestsPerSecond float64       `mapstructure:"openfigi_requests_per_second"`
	RetryCount        int           `mapstructure:"openfigi_retry_count"`

	// Proxies, selected by request scheme
	HTTPProxy  string `mapstructure:"http_proxy_url"`
	HTTPSProxy string `mapstructure:"https_proxy_url"`

	// Input and output
	IDType     string `mapstructure:"id_type"`
	InputFile  string `mapstructure:"input_file"`
	OutputFile string `mapstructure:"output_file"`

	// Checkpointing
	CheckpointBackend string        `mapstructure:"checkpoint_backend"`
	CheckpointPath    string        `mapstructure:"checkpoint_path"`
	CheckpointEvery   int           `mapstructure:"checkpoint_every"`
	CheckpointTTL     time.Duration `mapstructure:"checkpoint_ttl"`
	RedisAddr         string        `mapstructure:"redis_addr"`
	RedisPassword     string        `mapstructure:"redis_password"`
	RedisDB           int           `mapstructure:"redis_db"`

	// Observability
	LogLevel    string `mapstructure:"log_level"`
	LogPretty   bool   `mapstructure:"log_pretty"`
	MetricsAddr string `mapstructure:"metrics_addr"`
}

// envBindings maps config keys to their environment variables
var envBindings = map[string]string{
	"openfigi_api_key":             "OPENFIGI_API_KEY",
	"openfigi_url":                 "OPENFIGI_URL",
	"openfigi_api_limit":           "OPENFIGI_API_LIMIT",
	"openfigi_num_threads":         "OPENFIGI_NUM_THREADS",
	"openfigi_request_timeout":     "OPENFIGI_REQUEST_TIMEOUT",
	"openfigi_requests_per_second": "OPENFIGI_REQUESTS_PER_SECOND",
	"openfigi_retry_count":         "OPENFIGI_RETRY_COUNT",
	"http_proxy_url":               "HTTP_PROXY_URL",
	"https_proxy_url":              "HTTPS_PROXY_URL",
	"id_type":                      "ID_TYPE",
	"input_file":                   "INPUT_FILE",
	"output_file":                  "OUTPUT_FILE",
	"checkpoint_backend":           "CHECKPOINT_BACKEND",
	"checkpoint_path":              "CHECKPOINT_PATH",
	"checkpoint_every":             "CHECKPOINT_EVERY",
	"checkpoint_ttl":               "CHECKPOINT_TTL",
	"redis_addr":                   "REDIS_ADDR",
	"redis_password":               "REDIS_PASSWORD",
	"redis_db":                     "REDIS_DB",
	"log_level":                    "LOG_LEVEL",
	"log_pretty":                   "LOG_PRETTY",
	"metrics_addr":                 "METRICS_ADDR",
}

// Load reads configuration from environment variables and an optional config file.
// Environment variables take precedence over config file values.
//
// Environment variables:
//   - OPENFIGI_API_KEY (optional, anonymous access when empty)
//   - OPENFIGI_URL (default https://api.openfigi.com/v3/mapping)
//   - OPENFIGI_API_LIMIT (default 100 jobs per request)
//   - OPENFIGI_NUM_THREADS (default 3)
//   - OPENFIGI_REQUEST_TIMEOUT (default 30s)
//   - OPENFIGI_REQUESTS_PER_SECOND (default 0, unlimited)
//   - OPENFIGI_RETRY_COUNT (default 0)
//   - HTTP_PROXY_URL, HTTPS_PROXY_URL (optional)
//   - ID_TYPE (default ID_ISIN)
//   - INPUT_FILE (default stdin), OUTPUT_FILE (default results.xlsx)
//   - CHECKPOINT_BACKEND (file, redis or none; default file)
//   - CHECKPOINT_PATH (default OpenFIGI.checkpoint), CHECKPOINT_TTL
//   - CHECKPOINT_EVERY (default 10; negative disables the cadence, 0 is rejected)
//   - REDIS_ADDR, REDIS_PASSWORD, REDIS_DB (redis backend only)
//   - LOG_LEVEL (default info), LOG_PRETTY, METRICS_ADDR (optional)
func Load() (*Config, error) {
	v := viper.New()

	// Set up environment variable support
	v.SetEnvPrefix("")
	v.AutomaticEnv()

	v.SetDefault("openfigi_url", "https://api.openfigi.com/v3/mapping")
	v.SetDefault("openfigi_api_limit", 100)
	v.SetDefault("openfigi_num_threads", 3)
	v.SetDefault("openfigi_request_timeout", "30s")
	v.SetDefault("openfigi_requests_per_second", 0)
	v.SetDefault("openfigi_retry_count", 0)
	v.SetDefault("id_type", string(figi.IDTypeISIN))
	v.SetDefault("output_file", "results.xlsx")
	v.SetDefault("checkpoint_backend", CheckpointFile)
	v.SetDefault("checkpoint_path", "OpenFIGI.checkpoint")
	v.SetDefault("checkpoint_every", 10)
	v.SetDefault("checkpoint_ttl", "0s")
	v.SetDefault("redis_db", 0)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", false)

	// Optionally read from config file if it exists
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.figimapper")

	// Read config file (ignore if not found)
	_ = v.ReadInConfig()

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate reports every invalid field at once
func (c *Config) Validate() error {
	var invalid []string

	if c.URL == "" {
		invalid = append(invalid, "OPENFIGI_URL must not be empty")
	}
	if c.APILimit <= 0 {
		invalid = append(invalid, "OPENFIGI_API_LIMIT must be positive")
	}
	if c.NumThreads <= 0 {
		invalid = append(invalid, "OPENFIGI_NUM_THREADS must be positive")
	}
	if c.RequestTimeout <= 0 {
		invalid = append(invalid, "OPENFIGI_REQUEST_TIMEOUT must be positive")
	}
	if c.RequestsPerSecond < 0 {
		invalid = append(invalid, "OPENFIGI_REQUESTS_PER_SECOND must not be negative")
	}
	if c.RetryCount < 0 {
		invalid = append(invalid, "OPENFIGI_RETRY_COUNT must not be negative")
	}
	if c.CheckpointEvery == 0 {
		invalid = append(invalid, "CHECKPOINT_EVERY must be positive, or negative to disable")
	}
	if _, err := figi.ParseIDType(c.IDType); err != nil {
		invalid = append(invalid, fmt.Sprintf("ID_TYPE %q is not a known identifier type", c.IDType))
	}

	switch c.CheckpointBackend {
	case CheckpointFile, CheckpointNone:
	case CheckpointRedis:
		if c.RedisAddr == "" {
			invalid = append(invalid, "REDIS_ADDR is required for the redis checkpoint backend")
		}
	default:
		invalid = append(invalid, fmt.Sprintf("CHECKPOINT_BACKEND %q must be file, redis or none", c.CheckpointBackend))
	}

	if len(invalid) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(invalid, ", "))
	}
	return nil
}

// ParsedIDType returns the validated identifier type
func (c *Config) ParsedIDType() figi.IDType {
	t, _ := figi.ParseIDType(c.IDType)
	return t
}
