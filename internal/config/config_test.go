package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != "1.0" {
		t.Errorf("expected version 1.0, got %s", cfg.Version)
	}

	if cfg.Storage.Backend != "sqlite" {
		t.Errorf("expected backend sqlite, got %s", cfg.Storage.Backend)
	}

	if cfg.Analysis.Provider != "auto" {
		t.Errorf("expected provider auto, got %s", cfg.Analysis.Provider)
	}

	if cfg.Dashboard.Window != 30 {
		t.Errorf("expected window 30, got %d", cfg.Dashboard.Window)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "invalid backend",
			modify:  func(c *Config) { c.Storage.Backend = "s3" },
			wantErr: true,
		},
		{
			name:    "invalid codec",
			modify:  func(c *Config) { c.Storage.Codec = "xml" },
			wantErr: true,
		},
		{
			name:    "redis without url",
			modify:  func(c *Config) { c.Storage.Backend = "redis" },
			wantErr: true,
		},
		{
			name: "redis with url",
			modify: func(c *Config) {
				c.Storage.Backend = "redis"
				c.Storage.RedisURL = "redis://localhost:6379/0"
			},
			wantErr: false,
		},
		{
			name:    "mongo without uri",
			modify:  func(c *Config) { c.Storage.Backend = "mongo" },
			wantErr: true,
		},
		{
			name:    "negative max bytes",
			modify:  func(c *Config) { c.Storage.MaxBytes = -1 },
			wantErr: true,
		},
		{
			name:    "invalid provider",
			modify:  func(c *Config) { c.Analysis.Provider = "gpt" },
			wantErr: true,
		},
		{
			name:    "remote without key",
			modify:  func(c *Config) { c.Analysis.Provider = "remote" },
			wantErr: true,
		},
		{
			name:    "zero timeout",
			modify:  func(c *Config) { c.Analysis.Timeout = 0 },
			wantErr: true,
		},
		{
			name:    "zero window",
			modify:  func(c *Config) { c.Dashboard.Window = 0 },
			wantErr: true,
		},
		{
			name:    "empty server addr",
			modify:  func(c *Config) { c.Server.Addr = "" },
			wantErr: true,
		},
		{
			name:    "valid demo provider",
			modify:  func(c *Config) { c.Analysis.Provider = "demo" },
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadAndSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)

	cfg := DefaultConfig()
	cfg.Storage.Codec = "msgpack"
	cfg.Analysis.Timeout = 3 * time.Second
	cfg.Analysis.APIKey = "secret"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "secret") {
		t.Error("API key must not be written to the config file")
	}
	if cfg.Analysis.APIKey != "secret" {
		t.Error("Save must not modify the receiver")
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if loaded.Storage.Codec != "msgpack" {
		t.Errorf("expected codec msgpack, got %s", loaded.Storage.Codec)
	}
	if loaded.Analysis.Timeout != 3*time.Second {
		t.Errorf("expected timeout 3s, got %s", loaded.Analysis.Timeout)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	data := "storage:\n  backend: memory\nanalysis:\n  timeout: 2s\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Storage.Backend != "memory" {
		t.Errorf("expected backend memory, got %s", cfg.Storage.Backend)
	}
	if cfg.Analysis.Timeout != 2*time.Second {
		t.Errorf("expected timeout 2s, got %s", cfg.Analysis.Timeout)
	}
	if cfg.Dashboard.Window != 30 {
		t.Errorf("expected default window kept, got %d", cfg.Dashboard.Window)
	}
}

func TestLoadNonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/mindcare.yaml")
	if err != nil {
		t.Fatalf("Load() should not error for missing file, got %v", err)
	}

	if cfg.Storage.Backend != "sqlite" {
		t.Errorf("expected default backend sqlite, got %s", cfg.Storage.Backend)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte("storage: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "AIza-test")
	t.Setenv("MINDCARE_STORAGE_BACKEND", "redis")
	t.Setenv("MINDCARE_REDIS_URL", "redis://cache:6379/1")
	t.Setenv("MINDCARE_ANALYSIS_PROVIDER", "")

	v := viper.New()
	v.AutomaticEnv()

	cfg := DefaultConfig()
	cfg.ApplyEnv(v)

	if cfg.Analysis.APIKey != "AIza-test" {
		t.Errorf("expected API key from env, got %q", cfg.Analysis.APIKey)
	}
	if cfg.Storage.Backend != "redis" || cfg.Storage.RedisURL != "redis://cache:6379/1" {
		t.Errorf("expected redis settings from env, got %+v", cfg.Storage)
	}
	if cfg.Analysis.Provider != "auto" {
		t.Errorf("empty env must not override, got %q", cfg.Analysis.Provider)
	}
}

func TestStoreAndAnalysisOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.MaxBytes = 1024
	cfg.Analysis.APIKey = "k"

	so := cfg.StoreOptions()
	if so.Backend != "sqlite" || so.Path != "mindcare.db" || so.MaxBytes != 1024 {
		t.Errorf("unexpected store options: %+v", so)
	}

	ao := cfg.AnalysisOptions()
	if ao.APIKey != "k" || ao.Timeout != cfg.Analysis.Timeout || ao.Provider != "auto" {
		t.Errorf("unexpected analysis options: %+v", ao)
	}
}

func TestFindConfigFile(t *testing.T) {
	dir := t.TempDir()
	subdir := filepath.Join(dir, "subdir")
	if err := os.MkdirAll(subdir, 0755); err != nil {
		t.Fatal(err)
	}

	configPath := filepath.Join(dir, FileName)
	if err := os.WriteFile(configPath, []byte("version: '1.0'"), 0644); err != nil {
		t.Fatal(err)
	}

	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	if err := os.Chdir(subdir); err != nil {
		t.Fatal(err)
	}

	found, err := FindConfigFile()
	if err != nil {
		t.Fatalf("FindConfigFile() error = %v", err)
	}

	if found != configPath {
		t.Errorf("expected %s, got %s", configPath, found)
	}
}
