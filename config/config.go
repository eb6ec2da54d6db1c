// Package config loads the optional YAML configuration file from the
// user's home directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FileConfig mirrors ~/.feedmill/config.yaml. All fields are optional;
// zero values fall back to built-in defaults.
type FileConfig struct {
	Storage struct {
		Sources  string `yaml:"sources"`
		Articles string `yaml:"articles"`
	} `yaml:"storage"`
	Ingest struct {
		PollInterval string `yaml:"poll_interval"`
		FetchTimeout string `yaml:"fetch_timeout"`
	} `yaml:"ingest"`
}

// Load reads ~/.feedmill/config.yaml. A missing file is not an error; it
// yields an all-defaults config.
func Load() (*FileConfig, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return &FileConfig{}, nil
	}
	return LoadFrom(filepath.Join(home, ".feedmill", "config.yaml"))
}

// LoadFrom reads a config file at an explicit path. A missing file yields
// an all-defaults config.
func LoadFrom(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &FileConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// PollInterval returns the configured sweep interval, defaulting to one
// hour. Unparseable values also fall back to the default.
func (c *FileConfig) PollInterval() time.Duration {
	if d, err := time.ParseDuration(c.Ingest.PollInterval); err == nil && d > 0 {
		return d
	}
	return time.Hour
}

// FetchTimeout returns the configured per-request timeout, defaulting to
// ten seconds.
func (c *FileConfig) FetchTimeout() time.Duration {
	if d, err := time.ParseDuration(c.Ingest.FetchTimeout); err == nil && d > 0 {
		return d
	}
	return 10 * time.Second
}

// SourcesPath returns the source database path, defaulting to
// ~/.feedmill/sources.db.
func (c *FileConfig) SourcesPath() string {
	if c.Storage.Sources != "" {
		return c.Storage.Sources
	}
	return defaultPath("sources.db")
}

// ArticlesPath returns the article database path, defaulting to
// ~/.feedmill/articles.db.
func (c *FileConfig) ArticlesPath() string {
	if c.Storage.Articles != "" {
		return c.Storage.Articles
	}
	return defaultPath("articles.db")
}

func defaultPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, ".feedmill", name)
}
