package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the docstitch tool.
type Config struct {
	Backend  BackendConfig  `yaml:"backend"`
	Walk     WalkConfig     `yaml:"walk"`
	Annotate AnnotateConfig `yaml:"annotate"`
	Docs     DocsConfig     `yaml:"docs"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// BackendConfig holds settings for the text-generation backend.
type BackendConfig struct {
	Model          string  `yaml:"model"`
	BaseURL        string  `yaml:"base_url"`
	APIKeyEnv      string  `yaml:"api_key_env"` // Environment variable for API key
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	Temperature    float64 `yaml:"temperature"`
}

// WalkConfig holds file discovery patterns.
type WalkConfig struct {
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

// AnnotateConfig holds annotation pipeline settings.
type AnnotateConfig struct {
	Workers      int    `yaml:"workers"`
	CacheEnabled bool   `yaml:"cache_enabled"`
	CachePath    string `yaml:"cache_path"` // empty = <dir>/.docstitch/cache.db
}

// DocsConfig holds documentation rendering settings.
type DocsConfig struct {
	OutputDir string `yaml:"output_dir"`
	SkipInit  bool   `yaml:"skip_init"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			Model:          "freehuntx/qwen3-coder:8b",
			BaseURL:        "http://localhost:11434/v1",
			APIKeyEnv:      "OPENAI_API_KEY",
			TimeoutSeconds: 60,
			Temperature:    0.5,
		},
		Annotate: AnnotateConfig{
			Workers:      4,
			CacheEnabled: false,
		},
		Walk: WalkConfig{
			Includes: []string{"**/*.py"},
			Excludes: []string{"**/.git/**", "**/.venv/**", "**/venv/**", "**/env/**", "**/__pycache__/**", "**/node_modules/**"},
		},
		Docs: DocsConfig{
			OutputDir: "",
			SkipInit:  true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for docstitch.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "docstitch.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".docstitch", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// CacheDBPath returns the path to the generation cache database.
func CacheDBPath(dir string) string {
	return filepath.Join(dir, ".docstitch", "cache.db")
}

// EnsureWorkDir ensures the .docstitch directory exists.
func EnsureWorkDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".docstitch"), 0755)
}
