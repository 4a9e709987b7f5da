package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Catalog CatalogConfig `mapstructure:"catalog"`
	UI      UIConfig      `mapstructure:"ui"`
	Log     LogConfig     `mapstructure:"log"`
	Journal JournalConfig `mapstructure:"journal"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// CatalogConfig holds the remote catalog settings.
type CatalogConfig struct {
	BaseURL string `mapstructure:"base_url" validate:"required,url"`
	// Timeout of zero means requests never time out.
	Timeout time.Duration `mapstructure:"timeout" validate:"gte=0"`
	// FeaturedCategory names the second product collection; empty hides it.
	FeaturedCategory string `mapstructure:"featured_category"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	CurrencyPrefix string `mapstructure:"currency_prefix"`
}

// LogConfig holds the diagnostic log file settings.
type LogConfig struct {
	Path  string `mapstructure:"path" validate:"required"`
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
}

// JournalConfig holds the failure journal sqlite settings. An empty path disables it.
type JournalConfig struct {
	Path string `mapstructure:"path"`
}

// MetricsConfig holds the Prometheus listener. An empty address disables it.
type MetricsConfig struct {
	Addr string `mapstructure:"addr" validate:"omitempty,hostname_port"`
}

const envPrefix = "STOREFRONT"

// Default returns the configuration used when no file or env override is present.
func Default() Config {
	home := os.Getenv("HOME")
	return Config{
		Catalog: CatalogConfig{
			BaseURL:          "https://fakestoreapi.com",
			FeaturedCategory: "jewelery",
		},
		UI: UIConfig{CurrencyPrefix: "R$"},
		Log: LogConfig{
			Path:  filepath.Join(home, ".local", "state", "storefront", "storefront.log"),
			Level: "info",
		},
		Journal: JournalConfig{
			Path: filepath.Join(home, ".local", "share", "storefront", "journal.db"),
		},
	}
}

// Path returns the config file location. STOREFRONT_CONFIG overrides the default.
func Path() string {
	if p := os.Getenv(envPrefix + "_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "storefront", "config.toml")
}

// Load reads configuration from file and env. Env var overrides use prefix STOREFRONT_.
func Load() (Config, error) {
	v := viper.New()
	setValues(v.SetDefault, Default())

	v.SetConfigType("toml")
	v.SetConfigFile(Path())

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// read config file if present
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Save writes the provided config to disk, creating the config directory if needed.
func Save(cfg Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	setValues(v.Set, cfg)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func setValues(set func(string, any), c Config) {
	set("catalog.base_url", c.Catalog.BaseURL)
	set("catalog.timeout", c.Catalog.Timeout.String())
	set("catalog.featured_category", c.Catalog.FeaturedCategory)
	set("ui.currency_prefix", c.UI.CurrencyPrefix)
	set("log.path", c.Log.Path)
	set("log.level", c.Log.Level)
	set("journal.path", c.Journal.Path)
	set("metrics.addr", c.Metrics.Addr)
}
