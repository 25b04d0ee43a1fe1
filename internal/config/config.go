package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/fireveg/fireveg-etl/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DatabaseURL string
	LogLevel    string
	LogFormat   string

	// BatchSize caps the statements committed per store transaction.
	BatchSize int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	batchSize, err := parseBatchSize()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseURL: envOrDefault("DATABASE_URL", "postgres://localhost:5432/fireveg"),
		LogLevel:    envOrDefault("LOG_LEVEL", "info"),
		LogFormat:   envOrDefault("LOG_FORMAT", "json"),
		BatchSize:   batchSize,
	}
	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBatchSize() (int, error) {
	s := os.Getenv("BATCH_SIZE")
	if s == "" {
		return 1000, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, errors.New("invalid BATCH_SIZE")
	}
	return n, nil
}

// Mapping describes how one workbook's worksheets map onto the database
// tables. Each importer reads only the section it needs; absent sections
// stay nil.
type Mapping struct {
	Sites       *domain.SiteColumns          `yaml:"sites"`
	Visits      *domain.VisitColumns         `yaml:"visits"`
	Samples     *domain.SampleColumns        `yaml:"samples"`
	Quadrats    *domain.QuadratColumns       `yaml:"quadrats"`
	FireHistory []domain.FireEventColumns    `yaml:"fire_history"`
	Intensity   *domain.FireIntensityColumns `yaml:"intensity"`
	Traits      []domain.TraitColumns        `yaml:"traits"`
	Resprouting *domain.ResproutingColumns   `yaml:"resprouting"`

	// NFRRCategories translates fire response codes used by the
	// resprouting summary sheet into vocabulary categories.
	NFRRCategories []domain.NFRRCategory `yaml:"nfrr_categories"`

	References *ReferenceColumns `yaml:"references"`

	// RedundantSources lists dataset citations whose records duplicate
	// another imported dataset; matching records load with weight 0.
	RedundantSources []string `yaml:"redundant_sources"`
}

// ReferenceColumns locates the reference lookup tables: the worksheet and
// the code/citation columns, plus the canonical source label stamped into
// every record extracted from this workbook.
type ReferenceColumns struct {
	Sheet      string `yaml:"sheet"`
	Code       string `yaml:"code"`
	Citation   string `yaml:"citation"`
	MainSource string `yaml:"main_source"`
}

// LoadMapping parses a YAML column-mapping file.
func LoadMapping(path string) (*Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mapping file %s: %w", path, err)
	}
	var m Mapping
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse mapping file %s: %w", path, err)
	}
	return &m, nil
}
