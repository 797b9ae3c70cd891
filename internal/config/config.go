package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "eodingest/internal/errors"
)

// EnvPrefix namespaces every environment variable, e.g. EOD_LOGGING_LEVEL.
const EnvPrefix = "EOD"

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	Ingest    IngestConfig    `yaml:"ingest" envconfig:"INGEST"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`

	// Rotation of the log file.
	MaxSizeMB  int  `yaml:"max_size_mb" envconfig:"MAX_SIZE_MB" validate:"min=1"`
	MaxBackups int  `yaml:"max_backups" envconfig:"MAX_BACKUPS" validate:"min=0"`
	MaxAgeDays int  `yaml:"max_age_days" envconfig:"MAX_AGE_DAYS" validate:"min=0"`
	Compress   bool `yaml:"compress" envconfig:"COMPRESS"`
}

// TelemetryConfig controls tracing and the metrics snapshot.
type TelemetryConfig struct {
	Tracing     bool    `yaml:"tracing" envconfig:"TRACING"`
	TraceFile   string  `yaml:"trace_file" envconfig:"TRACE_FILE"`
	SampleRatio float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"min=0,max=1"`
	// MetricsFile receives a Prometheus text-format snapshot after each run.
	MetricsFile string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// IngestConfig holds the defaults for parsing runs.
type IngestConfig struct {
	Products []string `yaml:"products" envconfig:"PRODUCTS" validate:"dive,required,max=16"`
	Strict   bool     `yaml:"strict" envconfig:"STRICT"`
	// RegistryFile replaces the built-in product registry.
	RegistryFile string `yaml:"registry_file" envconfig:"REGISTRY_FILE"`
	// Workers bounds the number of files parsed at once in batch runs.
	Workers int `yaml:"workers" envconfig:"WORKERS" validate:"min=1,max=64"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	DataDir   string `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
}

// Load builds the configuration from, in increasing precedence: built-in
// defaults, the YAML file at configFile (if non-empty), and environment
// variables. envFile, when it exists, is loaded into the environment first
// without overriding variables that are already set.
func Load(configFile, envFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, err
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.NewConfigError(fmt.Sprintf("failed to load env file %s", envFile), err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg. Unknown keys are an error.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return apperrors.NewConfigError(fmt.Sprintf("failed to read config file %s", path), err)
	}
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return apperrors.NewConfigError(fmt.Sprintf("failed to parse config file %s", path), err)
	}
	return nil
}

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return apperrors.NewConfigError("config validation failed", err)
	}
	return nil
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:      DefaultLogLevel,
			Output:     "console",
			FilePath:   DefaultLogFile,
			MaxSizeMB:  MaxLogFileSizeMB,
			MaxBackups: MaxLogFileBackups,
			MaxAgeDays: MaxLogFileAgeDays,
		},
		Telemetry: TelemetryConfig{
			SampleRatio: 1.0,
		},
		Ingest: IngestConfig{
			Workers: DefaultWorkers,
		},
		Paths: PathsConfig{
			DataDir:   DefaultDataDir,
			OutputDir: DefaultOutputDir,
		},
	}
}
