package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Display model sources.
const (
	DisplaySourceIndex    = "index"
	DisplaySourcePostgres = "postgres"
)

// NavQuery holds all configuration for the navigation query tool.
type NavQuery struct {
	// Data directory holding <map>.map, BVH/ and Nav/
	DataPath string   `yaml:"data_path"`
	Maps     []string `yaml:"maps"`

	LogLevel string `yaml:"log_level"`

	// Loading
	Preload           bool `yaml:"preload"` // load every region at startup
	EagerHeightFields bool `yaml:"eager_height_fields"`
	LoadWorkers       int  `yaml:"load_workers"`

	// Where game object display ids are resolved: "index" uses the model
	// index only, "postgres" merges the gameobject_display_models table.
	DisplaySource string `yaml:"display_source"`

	// Database
	Database DatabaseConfig `yaml:"database"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Validate checks settings that have no usable default.
func (c NavQuery) Validate() error {
	if c.DataPath == "" {
		return fmt.Errorf("data_path is empty")
	}
	switch c.DisplaySource {
	case DisplaySourceIndex, DisplaySourcePostgres:
	default:
		return fmt.Errorf("unknown display_source %q", c.DisplaySource)
	}
	return nil
}

// DefaultNavQuery returns NavQuery config with sensible defaults.
func DefaultNavQuery() NavQuery {
	return NavQuery{
		DataPath:      "data",
		LogLevel:      "info",
		LoadWorkers:   4,
		DisplaySource: DisplaySourceIndex,
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "pathfind",
			Password: "pathfind",
			DBName:   "pathfind",
			SSLMode:  "disable",
		},
	}
}

// LoadNavQuery loads the query tool config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadNavQuery(path string) (NavQuery, error) {
	cfg := DefaultNavQuery()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}
