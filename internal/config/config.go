package config

import (
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Dataset sources.
const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
	SourceSQLite   = "sqlite"
)

// Config holds server configuration. Environment variables provide the
// defaults; command-line flags override them.
type Config struct {
	Port           int           `env:"SALARY_PORT" envDefault:"8080"`
	ManifestPath   string        `env:"SALARY_MODEL_MANIFEST" envDefault:"models/manifest.yaml"`
	DatasetSource  string        `env:"SALARY_DATASET_SOURCE" envDefault:"csv"`
	DatasetPath    string        `env:"SALARY_DATASET_PATH" envDefault:"processed/cleaned_data.csv"`
	DatabaseURL    string        `env:"DATABASE_URL"`
	ValueColumn    string        `env:"SALARY_VALUE_COLUMN" envDefault:"ConvertedCompYearly"`
	HistogramBins  int           `env:"SALARY_HISTOGRAM_BINS" envDefault:"30"`
	TopCountries   int           `env:"SALARY_TOP_COUNTRIES" envDefault:"5"`
	RequestTimeout time.Duration `env:"SALARY_REQUEST_TIMEOUT" envDefault:"60s"`
	SlowRequest    time.Duration `env:"SALARY_SLOW_REQUEST" envDefault:"1s"`
	MigrateOnStart bool          `env:"SALARY_MIGRATE_ON_START" envDefault:"false"`

	LogLevel        string `env:"LOG_LEVEL" envDefault:"INFO"`
	ErrorSampleRate int    `env:"ERROR_SAMPLE_RATE" envDefault:"100"`
	OTELEnabled     bool   `env:"OTEL_ENABLED" envDefault:"false"`
	ServiceName     string `env:"OTEL_SERVICE_NAME" envDefault:"salarypredict"`
}

// Load parses the environment, then flags from args.
func Load(fs *flag.FlagSet, args []string) (Config, error) {
	if fs == nil {
		return Config{}, errors.New("flag parser is required")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs.IntVar(&cfg.Port, "port", cfg.Port, "HTTP listen port")
	fs.StringVar(&cfg.ManifestPath, "manifest", cfg.ManifestPath, "path to the model artifact manifest")
	fs.StringVar(&cfg.DatasetSource, "dataset-source", cfg.DatasetSource, "where the dataset is loaded from: csv, postgres or sqlite")
	fs.StringVar(&cfg.DatasetPath, "dataset", cfg.DatasetPath, "path to the cleaned dataset CSV")
	fs.StringVar(&cfg.DatabaseURL, "database", cfg.DatabaseURL, "database DSN for postgres or sqlite dataset sources")
	fs.StringVar(&cfg.ValueColumn, "value-column", cfg.ValueColumn, "column averaged by the analytics endpoints")
	fs.IntVar(&cfg.HistogramBins, "bins", cfg.HistogramBins, "default histogram bin count")
	fs.IntVar(&cfg.TopCountries, "top-countries", cfg.TopCountries, "countries shown in the top-countries chart")
	fs.DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "per-request timeout")
	fs.BoolVar(&cfg.MigrateOnStart, "migrate", cfg.MigrateOnStart, "apply dataset migrations before loading from a database")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")

	if args == nil {
		args = []string{}
	}
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.DatasetSource = strings.ToLower(strings.TrimSpace(cfg.DatasetSource))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late at start-up.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if strings.TrimSpace(c.ManifestPath) == "" {
		return fmt.Errorf("model manifest path is required")
	}

	switch c.DatasetSource {
	case SourceCSV:
		if strings.TrimSpace(c.DatasetPath) == "" {
			return fmt.Errorf("dataset path is required for the csv source")
		}
	case SourcePostgres, SourceSQLite:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("a database DSN is required for the %s source", c.DatasetSource)
		}
	default:
		return fmt.Errorf("unknown dataset source %q (must be one of: csv, postgres, sqlite)", c.DatasetSource)
	}

	if c.HistogramBins < 1 {
		return fmt.Errorf("histogram bins must be at least 1, got %d", c.HistogramBins)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	return nil
}
