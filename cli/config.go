package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/abiiranathan/pdfterms/embed"
	"github.com/abiiranathan/pdfterms/match"
	"gopkg.in/yaml.v3"
)

// ConfigEnv names the environment variable holding the config file path.
const ConfigEnv = "PDFTERMS_CONFIG"

// Config holds the configuration for the CLI and the server.
//
// Values come from DefaultConfig, then the YAML config file, then
// PDFTERMS_* environment variables, then command line flags.
type Config struct {
	// Max pages searched at a time.
	// Large values will increase CPU and memory usage.
	// Default is the number of CPUs.
	MaxConcurrency int `yaml:"concurrency"`

	// JSON or YAML file with the term groups of each category and question.
	TermsFile string `yaml:"terms_file"`

	// Directory the server resolves document paths against.
	DocumentsDir string `yaml:"documents_dir"`

	// ISO 639-1 language of the documents, used for normalization.
	Language string `yaml:"language"`

	// server port. default is 8080
	Port int `yaml:"port"`

	// Upper bound for one search started over HTTP. 0 disables it.
	SearchTimeout time.Duration `yaml:"search_timeout"`

	Log LogConfig `yaml:"log"`

	// Backend for semantic matching.
	Embedding embed.Config `yaml:"embedding"`

	// Default mode and threshold when none are given.
	Mode      string `yaml:"mode"`
	Threshold string `yaml:"threshold"`

	// Per invocation, set by flags only.
	Filename   string `yaml:"-"`
	Category   string `yaml:"-"`
	Question   string `yaml:"-"`
	Groups     string `yaml:"-"`
	GroupIndex int    `yaml:"-"`
	Normalize  bool   `yaml:"-"`
	Highlight  bool   `yaml:"-"`
}

// LogConfig controls structured logging level and output format.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() *Config {
	termsFile := "terms.json"
	if dir, err := os.UserConfigDir(); err == nil {
		termsFile = filepath.Join(dir, "pdfterms", "terms.json")
	}

	return &Config{
		MaxConcurrency: 10,
		TermsFile:      termsFile,
		Language:       "en",
		Port:           8080,
		SearchTimeout:  2 * time.Minute,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Embedding: embed.Config{
			Backend:    embed.BackendNone,
			Dimensions: embed.DefaultDimensions,
		},
		Mode: "exact",
	}
}

// ConfigPath returns the config file to load: $PDFTERMS_CONFIG, else
// pdfterms/config.yaml in the user config directory if it exists, else "".
func ConfigPath() string {
	if path := os.Getenv(ConfigEnv); path != "" {
		return path
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(dir, "pdfterms", "config.yaml")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// LoadConfig reads the YAML config file at path (if not empty) over the
// defaults and applies environment overrides.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides reads PDFTERMS_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) error {
	strs := map[string]*string{
		"PDFTERMS_TERMS_FILE":        &cfg.TermsFile,
		"PDFTERMS_DOCUMENTS_DIR":     &cfg.DocumentsDir,
		"PDFTERMS_LANGUAGE":          &cfg.Language,
		"PDFTERMS_LOG_LEVEL":         &cfg.Log.Level,
		"PDFTERMS_LOG_FORMAT":        &cfg.Log.Format,
		"PDFTERMS_EMBEDDING_BACKEND": &cfg.Embedding.Backend,
		"PDFTERMS_EMBEDDING_HOST":    &cfg.Embedding.Host,
		"PDFTERMS_EMBEDDING_MODEL":   &cfg.Embedding.Model,
		"PDFTERMS_EMBEDDING_TOKEN":   &cfg.Embedding.Token,
		"PDFTERMS_MODE":              &cfg.Mode,
		"PDFTERMS_THRESHOLD":         &cfg.Threshold,
	}
	for name, field := range strs {
		if v := os.Getenv(name); v != "" {
			*field = v
		}
	}

	ints := map[string]*int{
		"PDFTERMS_CONCURRENCY":          &cfg.MaxConcurrency,
		"PDFTERMS_PORT":                 &cfg.Port,
		"PDFTERMS_EMBEDDING_DIMENSIONS": &cfg.Embedding.Dimensions,
	}
	for name, field := range ints {
		if v := os.Getenv(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			*field = n
		}
	}

	if v := os.Getenv("PDFTERMS_SEARCH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("PDFTERMS_SEARCH_TIMEOUT: %w", err)
		}
		cfg.SearchTimeout = d
	}
	return nil
}

// Validate checks settings shared by all subcommands.
func (c *Config) Validate() error {
	if c.MaxConcurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.MaxConcurrency)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if _, err := match.ParseMode(c.Mode, c.Threshold); err != nil {
		return fmt.Errorf("default mode: %w", err)
	}
	return c.Embedding.Validate()
}

// EmbeddingConfig returns the embedding settings with the document
// language filled in.
func (c *Config) EmbeddingConfig() embed.Config {
	cfg := c.Embedding
	if cfg.Language == "" {
		cfg.Language = c.Language
	}
	return cfg
}
