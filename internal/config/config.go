package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"lobstat/internal/validation"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "LOBSTAT"

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Run       RunConfig       `yaml:"run" envconfig:"RUN"`
	Storage   StorageConfig   `yaml:"storage" envconfig:"STORAGE"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=stdout file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system locations
type PathsConfig struct {
	DataDir   string `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
	LogsDir   string `yaml:"logs_dir" envconfig:"LOGS_DIR" validate:"required"`
}

// RunConfig controls reconstruction and batch execution
type RunConfig struct {
	Workers     int           `yaml:"workers" envconfig:"WORKERS" validate:"gte=1,lte=512"`
	Source      string        `yaml:"source" envconfig:"SOURCE" validate:"oneof=itch taq"`
	Band        float64       `yaml:"band" envconfig:"BAND" validate:"gt=0,lt=1"`
	TickStep    int64         `yaml:"tick_step" envconfig:"TICK_STEP" validate:"gt=0"`
	MarketOpen  time.Duration `yaml:"market_open" envconfig:"MARKET_OPEN"`
	MarketClose time.Duration `yaml:"market_close" envconfig:"MARKET_CLOSE" validate:"gtfield=MarketOpen"`
	Step        time.Duration `yaml:"step" envconfig:"STEP" validate:"gt=0"`
	SeedPolicy  string        `yaml:"seed_policy" envconfig:"SEED_POLICY" validate:"oneof=backfill undefined wraparound"`
	ITCHUnit    time.Duration `yaml:"itch_time_unit" envconfig:"ITCH_TIME_UNIT" validate:"gt=0"`
	TAQUnit     time.Duration `yaml:"taq_time_unit" envconfig:"TAQ_TIME_UNIT" validate:"gt=0"`
	Holidays    []string      `yaml:"holidays" envconfig:"HOLIDAYS" validate:"dive,isodate"`
}

// StorageConfig selects where artifacts are kept
type StorageConfig struct {
	Backend string      `yaml:"backend" envconfig:"BACKEND" validate:"oneof=file s3"`
	S3      S3Config    `yaml:"s3" envconfig:"S3"`
	Redis   RedisConfig `yaml:"redis" envconfig:"REDIS"`
}

// S3Config contains S3-compatible bucket settings
type S3Config struct {
	Endpoint       string `yaml:"endpoint" envconfig:"ENDPOINT"`
	Region         string `yaml:"region" envconfig:"REGION"`
	Bucket         string `yaml:"bucket" envconfig:"BUCKET"`
	Prefix         string `yaml:"prefix" envconfig:"PREFIX"`
	AccessKey      string `yaml:"access_key" envconfig:"ACCESS_KEY"`
	SecretKey      string `yaml:"secret_key" envconfig:"SECRET_KEY"`
	ForcePathStyle bool   `yaml:"force_path_style" envconfig:"FORCE_PATH_STYLE"`
}

// RedisConfig enables the Redis artifact cache when Addr is set
type RedisConfig struct {
	Addr     string        `yaml:"addr" envconfig:"ADDR"`
	Password string        `yaml:"password" envconfig:"PASSWORD"`
	DB       int           `yaml:"db" envconfig:"DB" validate:"gte=0"`
	TTL      time.Duration `yaml:"ttl" envconfig:"TTL" validate:"gte=0"`
}

// TelemetryConfig contains tracing and metrics settings
type TelemetryConfig struct {
	ServiceName   string `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	TracesEnabled bool   `yaml:"traces_enabled" envconfig:"TRACES_ENABLED"`
	TracesFile    string `yaml:"traces_file" envconfig:"TRACES_FILE"`
	MetricsFile   string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "stdout",
			FilePath: "logs/lobstat.log",
		},
		Paths: PathsConfig{
			DataDir:   "data",
			OutputDir: "output",
			LogsDir:   "logs",
		},
		Run: RunConfig{
			Workers:     4,
			Source:      "taq",
			Band:        0.10,
			TickStep:    100,
			MarketOpen:  9*time.Hour + 40*time.Minute,
			MarketClose: 15*time.Hour + 50*time.Minute,
			Step:        time.Second,
			SeedPolicy:  "backfill",
			ITCHUnit:    time.Millisecond,
			TAQUnit:     time.Second,
		},
		Storage: StorageConfig{
			Backend: "file",
			Redis:   RedisConfig{TTL: 24 * time.Hour},
		},
		Telemetry: TelemetryConfig{
			ServiceName: "lobstat",
		},
	}
}

// Load resolves configuration from defaults, the first YAML file found and
// the environment. An explicit path must exist; an empty path searches the
// usual locations.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFromFile overlays the YAML file at path onto cfg
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// Validate checks field rules and cross-field constraints.
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return err
	}
	if c.Logging.Output != "stdout" && c.Logging.FilePath == "" {
		return fmt.Errorf("logging output %q needs a file path", c.Logging.Output)
	}
	if c.Storage.Backend == "s3" && c.Storage.S3.Bucket == "" {
		return fmt.Errorf("storage backend s3 needs a bucket")
	}
	return nil
}

// findConfigFile returns the first config file in the usual locations
func findConfigFile() string {
	for _, location := range []string{"config.yaml", "configs/config.yaml"} {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}
