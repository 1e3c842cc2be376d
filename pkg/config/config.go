package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"

	"github.com/docpane/docpane/pkg/facets"
)

//go:embed config.toml.sample
var configTemplate string

// Config is the host site configuration for docpane.
type Config struct {
	Backend BackendConfig `toml:"backend"`
	Search  SearchConfig  `toml:"search"`
	// Groups lists the versioned documentation groups, in display order.
	Groups []facets.Group `toml:"groups"`
	// IndexPath is where the local search index lives, for deployments
	// that run without a hosted backend.
	IndexPath string `toml:"index_path,omitempty"`
}

// BackendConfig holds the hosted search service connection parameters.
type BackendConfig struct {
	URL        string `toml:"url"`
	APIKey     string `toml:"api_key"`
	Collection string `toml:"collection"`
}

// SearchConfig shapes search calls and the results page behavior.
type SearchConfig struct {
	// Locale is the active documentation locale, e.g. "en". Feeds the
	// language facet tag.
	Locale string `toml:"locale"`
	// PageSize is the number of hits fetched per page.
	PageSize int `toml:"page_size"`
	// Debounce is how long a query change waits before the search call
	// fires. Further changes within the window do not cancel earlier
	// timers; stale replies are dropped by the query guard instead.
	Debounce Duration `toml:"debounce"`
	// Filter is an explicit backend filter expression. When set, the
	// automatic version/locale facet tags are skipped entirely.
	Filter string `toml:"filter,omitempty"`
	// Params carries arbitrary additional backend search parameters.
	Params map[string]string `toml:"params,omitempty"`
}

// Duration wraps time.Duration for TOML round-tripping.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// GetDefaultConfig returns a configuration with all defaults applied and no
// backend configured.
func GetDefaultConfig() *Config {
	return &Config{
		Search: SearchConfig{
			Locale:   "en",
			PageSize: 10,
			Debounce: Duration{300 * time.Millisecond},
		},
	}
}

// LoadConfig reads the configuration file, applying defaults for missing
// values. A missing file yields the default configuration.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return GetDefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if cfg.Search.Locale == "" {
		cfg.Search.Locale = "en"
	}
	if cfg.Search.PageSize <= 0 {
		cfg.Search.PageSize = 10
	}
	if cfg.Search.Debounce.Duration <= 0 {
		cfg.Search.Debounce = Duration{300 * time.Millisecond}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cross-field constraints and normalizes the locale to its
// canonical BCP 47 form.
func (c *Config) Validate() error {
	tag, err := language.Parse(c.Search.Locale)
	if err != nil {
		return fmt.Errorf("invalid locale %q: %w", c.Search.Locale, err)
	}
	c.Search.Locale = tag.String()

	seen := make(map[string]bool, len(c.Groups))
	for _, g := range c.Groups {
		if g.Name == "" {
			return fmt.Errorf("documentation group without a name")
		}
		if seen[g.Name] {
			return fmt.Errorf("duplicate documentation group %q", g.Name)
		}
		seen[g.Name] = true
	}
	return nil
}

// SaveConfig writes the configuration as TOML.
func (c *Config) SaveConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(configPath, data, 0644)
}

// SaveTemplateConfig writes the annotated sample configuration, for the
// init command.
func (c *Config) SaveTemplateConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return os.WriteFile(configPath, []byte(configTemplate), 0644)
}

// GetDefaultDataDir returns the default data directory for the local index.
func GetDefaultDataDir() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	dir := filepath.Join(dataDir, "docpane")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating data directory %s: %w", dir, err)
	}
	return dir, nil
}

// GetDefaultIndexPath returns the default local index location.
func GetDefaultIndexPath() (string, error) {
	dataDir, err := GetDefaultDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "index.bleve"), nil
}

// GetConfigDir returns the configuration directory for docpane.
func GetConfigDir() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	dir := filepath.Join(configDir, "docpane")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return dir, nil
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}
