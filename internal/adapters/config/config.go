package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"stockpulse/pkg/errors"
)

type Config struct {
	App           AppConfig
	Server        ServerConfig
	Redis         RedisConfig
	AI            AIConfig
	News          NewsConfig
	MarketData    MarketDataConfig
	Cache         CacheConfig
	Pipeline      PipelineConfig
	ErrorTracking ErrorTrackingConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"stockpulse"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`
}

type ServerConfig struct {
	Port    int    `envconfig:"SERVER_PORT" default:"8080"`
	Version string `envconfig:"SERVER_VERSION" default:"1.0.0"`
}

type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type AIConfig struct {
	OpenAIKey       string  `envconfig:"OPENAI_API_KEY"`
	DeepSeekKey     string  `envconfig:"DEEPSEEK_API_KEY"`
	DefaultProvider string  `envconfig:"DEFAULT_AI_PROVIDER" default:"openai"`
	Model           string  `envconfig:"AI_MODEL" default:"gpt-4o-mini"`
	Temperature     float64 `envconfig:"AI_TEMPERATURE" default:"0.2"`
	MaxTokens       int     `envconfig:"AI_MAX_TOKENS" default:"4096"`
	ReqPerMinute    float64 `envconfig:"AI_REQUESTS_PER_MINUTE" default:"60"`

	RequestTimeout time.Duration `envconfig:"AI_REQUEST_TIMEOUT" default:"60s"`
}

type NewsConfig struct {
	APIKey   string `envconfig:"NEWS_API_KEY"`
	BaseURL  string `envconfig:"NEWS_API_BASE_URL" default:"https://newsapi.org/v2"`
	PageSize int    `envconfig:"NEWS_PAGE_SIZE" default:"10"`
	Domains  string `envconfig:"NEWS_DOMAINS" default:"bloomberg.com,reuters.com,cnbc.com,wsj.com,ft.com"`

	RequestTimeout time.Duration `envconfig:"NEWS_REQUEST_TIMEOUT" default:"10s"`
	ReqPerSecond   float64       `envconfig:"NEWS_REQUESTS_PER_SECOND" default:"1"`
}

type MarketDataConfig struct {
	BaseURL        string        `envconfig:"MARKET_DATA_BASE_URL" default:"https://query1.finance.yahoo.com"`
	RequestTimeout time.Duration `envconfig:"MARKET_DATA_REQUEST_TIMEOUT" default:"10s"`
	ReqPerSecond   float64       `envconfig:"MARKET_DATA_REQUESTS_PER_SECOND" default:"2"`
}

type CacheConfig struct {
	// Backend selects the result cache implementation: "memory" or "redis".
	Backend string        `envconfig:"CACHE_BACKEND" default:"memory"`
	TTL     time.Duration `envconfig:"CACHE_TTL" default:"1800s"`
}

// PipelineConfig bounds the supervisor loop and each worker agent turn.
type PipelineConfig struct {
	MaxSteps           int           `envconfig:"PIPELINE_MAX_STEPS" default:"8"`
	StockToolCalls     int           `envconfig:"PIPELINE_STOCK_TOOL_CALLS" default:"5"`
	NewsToolCalls      int           `envconfig:"PIPELINE_NEWS_TOOL_CALLS" default:"4"`
	TurnTimeout        time.Duration `envconfig:"PIPELINE_TURN_TIMEOUT" default:"90s"`
	ToolTimeout        time.Duration `envconfig:"PIPELINE_TOOL_TIMEOUT" default:"15s"`
	UseModelRouter     bool          `envconfig:"PIPELINE_MODEL_ROUTER" default:"false"`
	RouterMaxTokens    int           `envconfig:"PIPELINE_ROUTER_MAX_TOKENS" default:"16"`
	FormatterMaxTokens int           `envconfig:"PIPELINE_FORMATTER_MAX_TOKENS" default:"4096"`
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"false"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

// Load reads configuration from the environment, honoring a local .env file.
func Load() (*Config, error) {
	// .env is optional; real deployments use the process environment
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "process env config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cross-field constraints that envconfig tags cannot express.
func (c *Config) Validate() error {
	switch c.AI.DefaultProvider {
	case "openai":
		if c.AI.OpenAIKey == "" {
			return errors.Wrap(errors.ErrInvalidInput, "OPENAI_API_KEY is required for provider openai")
		}
	case "deepseek":
		if c.AI.DeepSeekKey == "" {
			return errors.Wrap(errors.ErrInvalidInput, "DEEPSEEK_API_KEY is required for provider deepseek")
		}
	default:
		return errors.Wrapf(errors.ErrInvalidInput, "unsupported AI provider: %s", c.AI.DefaultProvider)
	}

	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return errors.Wrapf(errors.ErrInvalidInput, "unsupported cache backend: %s", c.Cache.Backend)
	}

	if c.Pipeline.MaxSteps <= 0 {
		return errors.Wrap(errors.ErrInvalidInput, "pipeline max steps must be positive")
	}

	return nil
}
