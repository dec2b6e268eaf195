package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oyi-lang/phoron-asm/pkg/ctxlog"
	"github.com/oyi-lang/phoron-asm/pkg/diagnostics"
	"github.com/oyi-lang/phoron-asm/pkg/parser"
)

const (
	// ConfigFileName is looked up by FindConfig.
	ConfigFileName = "phoron.yml"
	// ConfigEnv names an explicit config file.
	ConfigEnv = "PHORON_CONFIG"
	// CacheEnv overrides the corpus cache directory.
	CacheEnv = "PHORON_CACHE"
)

// Config is the decoded phoron.yml.
type Config struct {
	Path        string                `yaml:"-"`
	Color       diagnostics.ColorMode `yaml:"color"`
	MaxErrors   int                   `yaml:"max_errors"`
	Suggestions *bool                 `yaml:"suggestions"`
	Log         LogConfig             `yaml:"log"`
	Corpus      CorpusConfig          `yaml:"corpus"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type CorpusConfig struct {
	Extensions []string `yaml:"extensions"`
	Workers    int      `yaml:"workers"`
	CacheDir   string   `yaml:"cache_dir"`
}

// DefaultConfig returns the settings used when no file is present.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.normalize()
	return cfg
}

// LoadConfig decodes the YAML file at path, rejecting unknown keys, and fills
// in defaults for anything left unset.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	defer file.Close()

	cfg := &Config{}
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parse %s: %w", abs, err)
	}
	cfg.Path = abs
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", abs, err)
	}
	return cfg, nil
}

// FindConfig walks up from dir looking for phoron.yml. It returns "" when
// no file is found.
func FindConfig(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("config: resolve %s: %w", dir, err)
	}
	for {
		candidate := filepath.Join(abs, ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", nil
		}
		abs = parent
	}
}

// ResolveConfig loads explicit when given, then $PHORON_CONFIG, then the
// nearest phoron.yml above dir, and falls back to defaults. The cache
// directory from $PHORON_CACHE wins over the file.
func ResolveConfig(explicit, dir string) (*Config, error) {
	path := strings.TrimSpace(explicit)
	if path == "" {
		path = strings.TrimSpace(os.Getenv(ConfigEnv))
	}
	if path == "" {
		found, err := FindConfig(dir)
		if err != nil {
			return nil, err
		}
		path = found
	}

	cfg := DefaultConfig()
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if cache := strings.TrimSpace(os.Getenv(CacheEnv)); cache != "" {
		cfg.Corpus.CacheDir = cache
	}
	return cfg, nil
}

func (c *Config) normalize() {
	if c.Color == "" {
		c.Color = diagnostics.ColorAuto
	}
	if c.MaxErrors == 0 {
		c.MaxErrors = parser.DefaultMaxErrors
	}
	if c.Suggestions == nil {
		on := true
		c.Suggestions = &on
	}
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Log.Level == "" {
		c.Log.Level = "warn"
	}
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if len(c.Corpus.Extensions) == 0 {
		c.Corpus.Extensions = []string{".pho", ".j"}
	}
	for i, ext := range c.Corpus.Extensions {
		ext = strings.TrimSpace(ext)
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.Corpus.Extensions[i] = ext
	}
	c.Corpus.CacheDir = strings.TrimSpace(c.Corpus.CacheDir)
}

// Validate checks enumerated settings and numeric bounds.
func (c *Config) Validate() error {
	if _, err := diagnostics.ParseColorMode(string(c.Color)); err != nil {
		return err
	}
	if c.MaxErrors < 0 {
		return fmt.Errorf("max_errors must not be negative, got %d", c.MaxErrors)
	}
	if _, err := ctxlog.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if !ctxlog.ValidFormat(c.Log.Format) {
		return fmt.Errorf("invalid log format %q (want text or json)", c.Log.Format)
	}
	if c.Corpus.Workers < 0 {
		return fmt.Errorf("corpus.workers must not be negative, got %d", c.Corpus.Workers)
	}
	for _, ext := range c.Corpus.Extensions {
		if ext == "" || ext == "." {
			return fmt.Errorf("corpus.extensions contains an empty extension")
		}
	}
	return nil
}

// ParserOptions maps the config onto parser settings.
func (c *Config) ParserOptions() parser.Options {
	return parser.Options{
		MaxErrors:          c.MaxErrors,
		DisableSuggestions: c.Suggestions != nil && !*c.Suggestions,
	}
}

// CacheDir returns the corpus cache directory, defaulting to
// <user cache dir>/phoron.
func (c *Config) CacheDir() (string, error) {
	if c.Corpus.CacheDir != "" {
		return c.Corpus.CacheDir, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("config: no cache directory: %w", err)
	}
	return filepath.Join(base, "phoron"), nil
}
