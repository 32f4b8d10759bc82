package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	UI       UIConfig       `mapstructure:"ui"`
	Picker   PickerConfig   `mapstructure:"picker"`
	Log      LogConfig      `mapstructure:"log"`
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	Theme          string `mapstructure:"theme"`
	DateFormat     string `mapstructure:"date_format"`
	CurrencySymbol string `mapstructure:"currency_symbol"`
}

// PickerConfig holds defaults for hierarchy pickers.
type PickerConfig struct {
	Placeholder     string `mapstructure:"placeholder"`
	AutoFocusSearch bool   `mapstructure:"auto_focus_search"`
	AllowRootChoice bool   `mapstructure:"allow_root_choice"`
}

// LogConfig controls the log file. An empty path disables logging.
type LogConfig struct {
	Path  string `mapstructure:"path"`
	Level string `mapstructure:"level"`
}

func dataDir() string {
	return filepath.Join(os.Getenv("HOME"), ".local", "share", "fintree")
}

// Path is the config file location: $FINTREE_CONFIG or ~/.config/fintree/config.toml.
func Path() string {
	if p := os.Getenv("FINTREE_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "fintree", "config.toml")
}

// Load reads configuration from file and env. Env var overrides use prefix FINTREE_.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("database.path", filepath.Join(dataDir(), "fintree.db"))
	v.SetDefault("ui.theme", "mocha")
	v.SetDefault("ui.date_format", "2006-01-02")
	v.SetDefault("ui.currency_symbol", "€")
	v.SetDefault("picker.placeholder", "Search...")
	v.SetDefault("picker.auto_focus_search", false)
	v.SetDefault("picker.allow_root_choice", true)
	v.SetDefault("log.path", filepath.Join(dataDir(), "fintree.log"))
	v.SetDefault("log.level", "info")

	v.SetConfigType("toml")
	v.SetConfigFile(Path())

	v.SetEnvPrefix("FINTREE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// a missing file means defaults; a broken one is reported
	if _, err := os.Stat(Path()); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Save writes cfg to Path(), creating the config directory if needed.
func Save(cfg Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("ui.theme", cfg.UI.Theme)
	v.Set("ui.date_format", cfg.UI.DateFormat)
	v.Set("ui.currency_symbol", cfg.UI.CurrencySymbol)
	v.Set("picker.placeholder", cfg.Picker.Placeholder)
	v.Set("picker.auto_focus_search", cfg.Picker.AutoFocusSearch)
	v.Set("picker.allow_root_choice", cfg.Picker.AllowRootChoice)
	v.Set("log.path", cfg.Log.Path)
	v.Set("log.level", cfg.Log.Level)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
