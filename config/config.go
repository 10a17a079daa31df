package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is the full runtime configuration of the dashboard and the report CLI.
type Config struct {
	Env      string `envconfig:"APP_ENV" default:"dev"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	HTTP      HTTPConfig      `envconfig:"HTTP"`
	Reddit    RedditConfig    `envconfig:"REDDIT"`
	Sentiment SentimentConfig `envconfig:"SENTIMENT"`
	Session   SessionConfig   `envconfig:"SESSION"`
	Archive   ArchiveConfig   `envconfig:"ARCHIVE"`
	Valkey    ValkeyConfig    `envconfig:"VALKEY"`
	Kafka     KafkaConfig     `envconfig:"KAFKA"`
	AWS       AWSConfig       `envconfig:"AWS"`

	SectorPresetsFile string `envconfig:"SECTOR_PRESETS_FILE"`
	MaxUploadBytes    int64  `envconfig:"MAX_UPLOAD_BYTES" default:"10485760"`
}

type HTTPConfig struct {
	Addr           string        `envconfig:"ADDR" default:":8501"`
	ReadTimeout    time.Duration `envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout   time.Duration `envconfig:"WRITE_TIMEOUT" default:"60s"`
	AllowedOrigins []string      `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8501"`
}

type RedditConfig struct {
	ClientID     string        `envconfig:"CLIENT_ID"`
	ClientSecret string        `envconfig:"CLIENT_SECRET"`
	UserAgent    string        `envconfig:"USER_AGENT" default:"sentiboard/0.1"`
	FetchTimeout time.Duration `envconfig:"FETCH_TIMEOUT" default:"30s"`
	// BreakerFailures is the number of consecutive failed fetches before the
	// client stops calling Reddit for BreakerCooldown.
	BreakerFailures uint32        `envconfig:"BREAKER_FAILURES" default:"3"`
	BreakerCooldown time.Duration `envconfig:"BREAKER_COOLDOWN" default:"1m"`
}

type SentimentConfig struct {
	Backend string `envconfig:"BACKEND" default:"vader"` // vader, huggingface or openai

	HuggingFaceEndpoint string        `envconfig:"HF_ENDPOINT"`
	HuggingFaceToken    string        `envconfig:"HF_TOKEN"`
	OpenAIModel         string        `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	OpenAIKey           string        `envconfig:"OPENAI_API_KEY"`
	RemoteTimeout       time.Duration `envconfig:"REMOTE_TIMEOUT" default:"20s"`
}

type SessionConfig struct {
	TTL time.Duration `envconfig:"TTL" default:"2h"`
}

type ArchiveConfig struct {
	DynamoDBEnabled bool          `envconfig:"DYNAMODB_ENABLED" default:"false"`
	DynamoDBTable   string        `envconfig:"DYNAMODB_TABLE" default:"SentimentResults"`
	KafkaEnabled    bool          `envconfig:"KAFKA_ENABLED" default:"false"`
	KafkaTopic      string        `envconfig:"KAFKA_TOPIC" default:"labeled-posts"`
	Timeout         time.Duration `envconfig:"TIMEOUT" default:"10s"`
	DedupeTTL       time.Duration `envconfig:"DEDUPE_TTL" default:"24h"`
}

type ValkeyConfig struct {
	InitAddress string `envconfig:"INIT_ADDRESS"`
	Password    string `envconfig:"PASSWORD"`
	TLS         bool   `envconfig:"TLS" default:"false"`
}

type KafkaConfig struct {
	Broker string `envconfig:"BROKER" default:"localhost:29092"`
}

type AWSConfig struct {
	Region   string `envconfig:"REGION" default:"us-west-2"`
	Endpoint string `envconfig:"ENDPOINT"`
}

// Load reads the configuration from the process environment. Call LoadEnv
// first so values from the env file are visible.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("[Config] failed to process environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Sentiment.Backend {
	case "vader":
	case "huggingface":
		if c.Sentiment.HuggingFaceEndpoint == "" {
			return fmt.Errorf("[Config] SENTIMENT_HF_ENDPOINT is required for the huggingface backend")
		}
	case "openai":
		if c.Sentiment.OpenAIKey == "" {
			return fmt.Errorf("[Config] SENTIMENT_OPENAI_API_KEY is required for the openai backend")
		}
	default:
		return fmt.Errorf("[Config] unknown sentiment backend %q", c.Sentiment.Backend)
	}
	if c.Archive.KafkaEnabled && c.Kafka.Broker == "" {
		return fmt.Errorf("[Config] KAFKA_BROKER is required when the kafka archive is enabled")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("[Config] MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

// AppEnv returns APP_ENV defaulting to dev, the same lookup every command does
// before LoadEnv.
func AppEnv(lookup func(string) string) string {
	if env := lookup("APP_ENV"); env != "" {
		return env
	}
	return "dev"
}
