// Package config handles configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	// Data configuration
	Data DataConfig `yaml:"data"`

	// Subsampling configuration
	Sample SampleConfig `yaml:"sample"`

	// BM25 scoring parameters
	BM25 BM25Config `yaml:"bm25"`

	// Evaluation configuration
	Eval EvalConfig `yaml:"eval"`

	// Text normalization configuration
	Normalize NormalizeConfig `yaml:"normalize"`

	// Token cache configuration
	Cache CacheConfig `yaml:"cache"`

	// Event bus configuration
	Bus BusConfig `yaml:"bus"`

	// Logging configuration
	Log LogConfig `yaml:"log"`
}

// DataConfig holds input and output locations.
type DataConfig struct {
	ValidationPath string `envconfig:"PEVAL_VALIDATION_PATH" yaml:"validation_path"`
	OutputDir      string `envconfig:"PEVAL_OUTPUT_DIR" yaml:"output_dir"`
}

// SampleConfig holds deterministic subsampling settings.
type SampleConfig struct {
	Size int   `envconfig:"PEVAL_SAMPLE_SIZE" yaml:"size"` // 0 = use all rows
	Seed int64 `envconfig:"PEVAL_SAMPLE_SEED" yaml:"seed"`
}

// BM25Config holds the Okapi BM25 free parameters.
type BM25Config struct {
	K1 float64 `envconfig:"PEVAL_BM25_K1" yaml:"k1"`
	B  float64 `envconfig:"PEVAL_BM25_B" yaml:"b"`
}

// EvalConfig holds metric computation settings.
type EvalConfig struct {
	PrecisionCutoff int    `envconfig:"PEVAL_PRECISION_CUTOFF" yaml:"precision_cutoff"`
	ResultsFile     string `envconfig:"PEVAL_RESULTS_FILE" yaml:"results_file"`
}

// NormalizeConfig holds text normalization pipeline settings.
type NormalizeConfig struct {
	Workers   int `envconfig:"PEVAL_NORMALIZE_WORKERS" yaml:"workers"`
	BatchSize int `envconfig:"PEVAL_NORMALIZE_BATCH_SIZE" yaml:"batch_size"`
}

// CacheConfig holds token cache settings.
type CacheConfig struct {
	Type     string `envconfig:"PEVAL_CACHE_TYPE" yaml:"type"`
	Size     int    `envconfig:"PEVAL_CACHE_SIZE" yaml:"size"`
	TTL      int    `envconfig:"PEVAL_CACHE_TTL" yaml:"ttl"` // seconds, 0 = no expiry
	RedisURL string `envconfig:"PEVAL_REDIS_URL" yaml:"redis_url"`
}

// BusConfig holds event bus settings.
type BusConfig struct {
	Type            string `envconfig:"PEVAL_BUS_TYPE" yaml:"type"`
	KafkaBrokers    string `envconfig:"PEVAL_KAFKA_BROKERS" yaml:"kafka_brokers"`
	KafkaGroup      string `envconfig:"PEVAL_KAFKA_GROUP" yaml:"kafka_group"`
	EventLogEnabled bool   `envconfig:"PEVAL_BUS_EVENT_LOG" yaml:"event_log"`
	EventLogPath    string `envconfig:"PEVAL_BUS_EVENT_LOG_PATH" yaml:"event_log_path"` // empty = <output_dir>/events.jsonl
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `envconfig:"PEVAL_LOG_LEVEL" yaml:"level"`
	Format string `envconfig:"PEVAL_LOG_FORMAT" yaml:"format"`
}

// Load loads configuration from environment variables and optional config file.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	// Set defaults first
	setDefaults(cfg)

	// Load from YAML file if provided (overrides defaults)
	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	// Override with environment variables (highest priority)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("processing env config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables only.
func LoadFromEnv() (*Config, error) {
	return Load("")
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

func setDefaults(cfg *Config) {
	cfg.Data = DataConfig{
		ValidationPath: "validation_data.tsv",
		OutputDir:      "./outputs/task1",
	}

	cfg.Sample = SampleConfig{
		Size: 0,
		Seed: 1,
	}

	cfg.BM25 = BM25Config{
		K1: 1.5,
		B:  0.75,
	}

	cfg.Eval = EvalConfig{
		PrecisionCutoff: 100,
		ResultsFile:     "bm25_results.txt",
	}

	cfg.Normalize = NormalizeConfig{
		Workers:   4,
		BatchSize: 256,
	}

	cfg.Cache = CacheConfig{
		Type:     "memory",
		Size:     10000,
		TTL:      0,
		RedisURL: "redis://localhost:6379",
	}

	cfg.Bus = BusConfig{
		Type: "memory",
	}

	cfg.Log = LogConfig{
		Level:  "info",
		Format: "text",
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	var errs []string

	// Data validation
	if c.Data.ValidationPath == "" {
		errs = append(errs, "validation_path must not be empty")
	}

	if c.Data.OutputDir == "" {
		errs = append(errs, "output_dir must not be empty")
	}

	// Sample validation
	if c.Sample.Size < 0 {
		errs = append(errs, "sample size must not be negative")
	}

	// BM25 validation
	if c.BM25.K1 < 0 {
		errs = append(errs, "bm25 k1 must not be negative")
	}

	if c.BM25.B < 0 || c.BM25.B > 1 {
		errs = append(errs, "bm25 b must be between 0 and 1")
	}

	// Eval validation
	if c.Eval.PrecisionCutoff < 1 {
		errs = append(errs, "precision_cutoff must be positive")
	}

	if c.Eval.ResultsFile == "" {
		errs = append(errs, "results_file must not be empty")
	}

	// Normalize validation
	if c.Normalize.Workers < 1 {
		errs = append(errs, "normalize workers must be positive")
	}

	if c.Normalize.BatchSize < 1 {
		errs = append(errs, "normalize batch_size must be positive")
	}

	// Cache validation
	validCacheTypes := map[string]bool{"memory": true, "redis": true}
	if !validCacheTypes[c.Cache.Type] {
		errs = append(errs, fmt.Sprintf("invalid cache type: %s (must be memory or redis)", c.Cache.Type))
	}

	// Bus validation
	validBusTypes := map[string]bool{"memory": true, "kafka": true}
	if !validBusTypes[c.Bus.Type] {
		errs = append(errs, fmt.Sprintf("invalid bus type: %s (must be memory or kafka)", c.Bus.Type))
	}

	// Log validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("invalid log level: %s (must be debug, info, warn, or error)", c.Log.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Log.Format] {
		errs = append(errs, fmt.Sprintf("invalid log format: %s (must be text or json)", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Log.Level == "debug"
}
