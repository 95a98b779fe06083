package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for kotok.
type Config struct {
	Tagger  TaggerConfig  `yaml:"tagger"`
	Batch   BatchConfig   `yaml:"batch"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// TaggerConfig selects and configures the morphological analyzer.
type TaggerConfig struct {
	Backend string        `yaml:"backend"` // "komoran", "remote", "whitespace"
	Reuse   bool          `yaml:"reuse"`   // share one tagger across calls instead of one per call
	Komoran KomoranConfig `yaml:"komoran"`
	Remote  RemoteConfig  `yaml:"remote"`
}

// KomoranConfig configures the konlpy Komoran helper process.
type KomoranConfig struct {
	Python         string `yaml:"python"`
	UserDictionary string `yaml:"user_dictionary"`
	ModelPath      string `yaml:"model_path"`
	MaxHeapSize    int    `yaml:"max_heap_size"` // MB, passed to the JVM
}

// RemoteConfig configures an HTTP tagging service.
type RemoteConfig struct {
	Endpoint       string `yaml:"endpoint"`
	APIKeyEnv      string `yaml:"api_key_env"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxRetries     int    `yaml:"max_retries"`
}

// BatchConfig holds batch tokenization configuration.
type BatchConfig struct {
	Includes       []string `yaml:"includes"`
	Excludes       []string `yaml:"excludes"`
	Encoding       string   `yaml:"encoding"` // "utf-8" or "euc-kr"
	SkipBlankLines bool     `yaml:"skip_blank_lines"`
}

// OutputConfig holds output configuration.
type OutputConfig struct {
	Format string `yaml:"format"` // "json" or "text"
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Verbosity int `yaml:"verbosity"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Tagger: TaggerConfig{
			Backend: "komoran",
			Reuse:   true,
			Komoran: KomoranConfig{
				Python:      "python3",
				MaxHeapSize: 1024,
			},
			Remote: RemoteConfig{
				Endpoint:       "http://localhost:8080",
				APIKeyEnv:      "KOTOK_API_KEY",
				TimeoutSeconds: 30,
				MaxRetries:     3,
			},
		},
		Batch: BatchConfig{
			Includes:       []string{"**/*.txt"},
			Excludes:       []string{"**/.git/**", "**/.kotok/**", "**/node_modules/**"},
			Encoding:       "utf-8",
			SkipBlankLines: true,
		},
		Output: OutputConfig{
			Format: "json",
		},
		Logging: LoggingConfig{
			Verbosity: 0,
		},
	}
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.Tagger.Backend {
	case "komoran", "remote", "whitespace":
	default:
		return fmt.Errorf("unsupported tagger backend: %q", c.Tagger.Backend)
	}
	switch c.Output.Format {
	case "json", "text":
	default:
		return fmt.Errorf("unsupported output format: %q", c.Output.Format)
	}
	if _, err := NormalizeEncoding(c.Batch.Encoding); err != nil {
		return err
	}
	if c.Tagger.Backend == "remote" && c.Tagger.Remote.Endpoint == "" {
		return fmt.Errorf("tagger.remote.endpoint is required for the remote backend")
	}
	if c.Logging.Verbosity < 0 {
		return fmt.Errorf("logging.verbosity must be >= 0, got %d", c.Logging.Verbosity)
	}
	return nil
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

// LoadFromDir loads configuration from a directory (looks for kotok.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "kotok.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".kotok", "config.yaml")
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

// StoreDBPath returns the path to the token store database.
func StoreDBPath(dir string) string {
	return filepath.Join(dir, ".kotok", "tokens.db")
}

// EnsureDataDir ensures the .kotok directory exists.
func EnsureDataDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".kotok"), 0755)
}

// NormalizeEncoding maps the accepted spellings of a file encoding to
// "utf-8" or "euc-kr". CP949 is read as EUC-KR.
func NormalizeEncoding(encoding string) (string, error) {
	switch strings.ToLower(encoding) {
	case "", "utf-8", "utf8":
		return "utf-8", nil
	case "euc-kr", "euckr", "cp949":
		return "euc-kr", nil
	default:
		return "", fmt.Errorf("unsupported batch encoding: %q", encoding)
	}
}
