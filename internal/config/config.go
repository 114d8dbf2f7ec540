// Package config handles mindcare configuration parsing and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/swamp-dev/mindcare/internal/analysis"
	"github.com/swamp-dev/mindcare/internal/store"
)

// FileName is the config file looked up by FindConfigFile.
const FileName = "mindcare.yaml"

// Config represents the mindcare.yaml configuration file.
type Config struct {
	Version   string          `yaml:"version"`
	Storage   StorageConfig   `yaml:"storage"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Server    ServerConfig    `yaml:"server"`
}

// StorageConfig selects the entry store backend.
type StorageConfig struct {
	Backend       string `yaml:"backend"` // sqlite, memory, redis, mongo
	Path          string `yaml:"path"`
	Codec         string `yaml:"codec"` // json, msgpack
	MaxBytes      int    `yaml:"max_bytes,omitempty"`
	RedisURL      string `yaml:"redis_url,omitempty"`
	RedisPrefix   string `yaml:"redis_prefix,omitempty"`
	MongoURI      string `yaml:"mongo_uri,omitempty"`
	MongoDatabase string `yaml:"mongo_database,omitempty"`
}

// AnalysisConfig selects the mood analysis provider.
type AnalysisConfig struct {
	Provider   string        `yaml:"provider"` // auto, demo, remote
	APIKey     string        `yaml:"api_key,omitempty"`
	BaseURL    string        `yaml:"base_url"`
	Model      string        `yaml:"model"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

// DashboardConfig controls the statistics view.
type DashboardConfig struct {
	Window int `yaml:"window"`
}

// ServerConfig controls the local JSON API.
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Storage: StorageConfig{
			Backend: "sqlite",
			Path:    "mindcare.db",
			Codec:   "json",
		},
		Analysis: AnalysisConfig{
			Provider:   "auto",
			BaseURL:    analysis.DefaultBaseURL,
			Model:      analysis.DefaultModel,
			Timeout:    analysis.DefaultTimeout,
			MaxRetries: 2,
		},
		Dashboard: DashboardConfig{
			Window: 30,
		},
		Server: ServerConfig{
			Addr:           "127.0.0.1:8080",
			AllowedOrigins: []string{"http://localhost:5173"},
			RequestTimeout: 30 * time.Second,
		},
	}
}

// Load reads and parses the mindcare.yaml config file.
func Load(path string) (*Config, error) {
	if path == "" {
		path = FileName
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the specified path. The API key is never
// written; it belongs in the environment.
func (c *Config) Save(path string) error {
	out := *c
	out.Analysis.APIKey = ""

	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// envOverrides maps environment variables to the settings they replace.
var envOverrides = []struct {
	env   string
	apply func(c *Config, v string)
}{
	{"GEMINI_API_KEY", func(c *Config, v string) { c.Analysis.APIKey = v }},
	{"MINDCARE_ANALYSIS_PROVIDER", func(c *Config, v string) { c.Analysis.Provider = v }},
	{"MINDCARE_ANALYSIS_MODEL", func(c *Config, v string) { c.Analysis.Model = v }},
	{"MINDCARE_STORAGE_BACKEND", func(c *Config, v string) { c.Storage.Backend = v }},
	{"MINDCARE_STORAGE_PATH", func(c *Config, v string) { c.Storage.Path = v }},
	{"MINDCARE_REDIS_URL", func(c *Config, v string) { c.Storage.RedisURL = v }},
	{"MINDCARE_MONGO_URI", func(c *Config, v string) { c.Storage.MongoURI = v }},
	{"MINDCARE_SERVER_ADDR", func(c *Config, v string) { c.Server.Addr = v }},
}

// ApplyEnv overlays values from the environment as seen by v, which must have
// AutomaticEnv enabled.
func (c *Config) ApplyEnv(v *viper.Viper) {
	for _, o := range envOverrides {
		if val := strings.TrimSpace(v.GetString(o.env)); val != "" {
			o.apply(c, val)
		}
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	validBackends := map[string]bool{"sqlite": true, "memory": true, "redis": true, "mongo": true}
	if !validBackends[c.Storage.Backend] {
		return fmt.Errorf("invalid storage backend: %s (must be sqlite, memory, redis, or mongo)", c.Storage.Backend)
	}

	validCodecs := map[string]bool{"json": true, "msgpack": true}
	if !validCodecs[c.Storage.Codec] {
		return fmt.Errorf("invalid storage codec: %s (must be json or msgpack)", c.Storage.Codec)
	}

	if c.Storage.Backend == "redis" && c.Storage.RedisURL == "" {
		return fmt.Errorf("storage backend redis requires redis_url")
	}
	if c.Storage.Backend == "mongo" && c.Storage.MongoURI == "" {
		return fmt.Errorf("storage backend mongo requires mongo_uri")
	}
	if c.Storage.MaxBytes < 0 {
		return fmt.Errorf("max_bytes must not be negative")
	}

	validProviders := map[string]bool{"auto": true, "demo": true, "remote": true}
	if !validProviders[c.Analysis.Provider] {
		return fmt.Errorf("invalid analysis provider: %s (must be auto, demo, or remote)", c.Analysis.Provider)
	}
	if c.Analysis.Provider == "remote" && c.Analysis.APIKey == "" {
		return fmt.Errorf("analysis provider remote requires an API key (set GEMINI_API_KEY)")
	}
	if c.Analysis.Timeout <= 0 {
		return fmt.Errorf("analysis timeout must be positive")
	}
	if c.Analysis.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative")
	}

	if c.Dashboard.Window < 1 {
		return fmt.Errorf("dashboard window must be at least 1")
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("server addr is required")
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("server request_timeout must be positive")
	}

	return nil
}

// StoreOptions converts the storage section for store.Open.
func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Backend:       c.Storage.Backend,
		Path:          c.Storage.Path,
		MaxBytes:      c.Storage.MaxBytes,
		RedisURL:      c.Storage.RedisURL,
		RedisPrefix:   c.Storage.RedisPrefix,
		MongoURI:      c.Storage.MongoURI,
		MongoDatabase: c.Storage.MongoDatabase,
	}
}

// AnalysisOptions converts the analysis section for analysis.New.
func (c *Config) AnalysisOptions() analysis.Config {
	return analysis.Config{
		Provider:   c.Analysis.Provider,
		APIKey:     c.Analysis.APIKey,
		BaseURL:    c.Analysis.BaseURL,
		Model:      c.Analysis.Model,
		Timeout:    c.Analysis.Timeout,
		MaxRetries: c.Analysis.MaxRetries,
	}
}

// FindConfigFile searches for mindcare.yaml in current and parent directories.
func FindConfigFile() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for dir := cwd; ; dir = filepath.Dir(dir) {
		configPath := filepath.Join(dir, FileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		if dir == filepath.Dir(dir) {
			break
		}
	}

	return "", fmt.Errorf("%s not found in %s or parent directories", FileName, cwd)
}
