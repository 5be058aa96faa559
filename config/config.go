// Package config loads process configuration from .env files and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/poiesic/lexcorpus/ai"
	"github.com/poiesic/lexcorpus/extraction"
	"github.com/poiesic/lexcorpus/runner"
)

// Config is the complete process configuration.
type Config struct {
	AI      AIConfig
	Storage StorageConfig
	Runner  RunnerConfig
	Filter  FilterConfig

	LogLevel    string `envconfig:"LEXCORPUS_LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	MetricsAddr string `envconfig:"LEXCORPUS_METRICS_ADDR" default:""`
}

type AIConfig struct {
	APIKey              string `envconfig:"OPENAI_API_KEY"`
	Host                string `envconfig:"LEXCORPUS_API_HOST" default:"https://api.openai.com/v1" validate:"required,url"`
	ClassifierModel     string `envconfig:"LEXCORPUS_CLASSIFIER_MODEL" default:"gpt-4o-mini" validate:"required"`
	EmbeddingModel      string `envconfig:"LEXCORPUS_EMBEDDING_MODEL" default:"text-embedding-3-small" validate:"required"`
	EmbeddingDimensions int    `envconfig:"LEXCORPUS_EMBEDDING_DIMENSIONS" default:"1536" validate:"gt=0"`
}

type StorageConfig struct {
	DatabaseURL string `envconfig:"LEXCORPUS_DATABASE_URL"`
	Table       string `envconfig:"LEXCORPUS_TABLE" default:"lw_embeddings" validate:"required"`
	IndexDir    string `envconfig:"LEXCORPUS_INDEX_DIR" default:".lexcorpus/index" validate:"required"`
}

type RunnerConfig struct {
	MaxAttempts int           `envconfig:"LEXCORPUS_MAX_ATTEMPTS" default:"1000" validate:"gt=0"`
	RetryDelay  time.Duration `envconfig:"LEXCORPUS_RETRY_DELAY" default:"5s" validate:"gte=0"`
	MaxChars    int           `envconfig:"LEXCORPUS_MAX_CHARS" default:"12000" validate:"gte=0"`
	ChunkChars  int           `envconfig:"LEXCORPUS_CHUNK_CHARS" default:"4000" validate:"gt=0"`
	Concurrency int           `envconfig:"LEXCORPUS_CONCURRENCY" default:"1" validate:"gte=1"`
}

type FilterConfig struct {
	MinWords int `envconfig:"LEXCORPUS_MIN_WORDS" default:"300" validate:"gte=0"`
	MaxWords int `envconfig:"LEXCORPUS_MAX_WORDS" default:"25000" validate:"gtefield=MinWords"`
}

// Load reads envFiles (or ./.env when none are named), then the environment, and
// validates the result. Variables already set in the environment win over files.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read .env: %w", err)
		}
	} else if err := godotenv.Load(envFiles...); err != nil {
		return nil, fmt.Errorf("failed to read env files: %w", err)
	}

	cfg := new(Config)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

// AIConfig returns the provider configuration.
func (c *Config) AIConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithHost(c.AI.Host),
		ai.WithAPIKey(c.AI.APIKey),
		ai.WithClassifierModel(c.AI.ClassifierModel),
		ai.WithEmbeddingModel(c.AI.EmbeddingModel),
		ai.WithEmbeddingDimensions(c.AI.EmbeddingDimensions),
	)
}

// RunnerConfig returns the runner configuration for the classification task.
// Embedding runs chunk their input and do not truncate.
func (c *Config) RunnerConfig() *runner.Config {
	rc := runner.DefaultConfig()
	rc.MaxAttempts = c.Runner.MaxAttempts
	rc.RetryDelay = c.Runner.RetryDelay
	rc.MaxChars = c.Runner.MaxChars
	rc.Concurrency = c.Runner.Concurrency
	return rc
}

// DocumentFilter returns the word-range filter.
func (c *Config) DocumentFilter() *extraction.Filter {
	return &extraction.Filter{MinWords: c.Filter.MinWords, MaxWords: c.Filter.MaxWords}
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	level, _ := ParseLevel(c.LogLevel)
	return level
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", name)
	}
	return level, nil
}
