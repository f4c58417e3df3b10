package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig
	Log      LogConfig
	UI       UIConfig
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// LogConfig holds logger settings. The TUI owns the terminal, so logs go to a file.
type LogConfig struct {
	Path  string
	Level string
}

// UIConfig holds presentation settings.
type UIConfig struct {
	DateFormat  string `mapstructure:"date_format"`
	Timezone    string
	DefaultSort string `mapstructure:"default_sort"`
}

// Load reads configuration from file and env. Env var overrides use prefix LEADERBOARD_.
// An explicit path (e.g. from --config) wins over LEADERBOARD_CONFIG.
func Load(path string) (Config, error) {
	v := viper.New()

	home := os.Getenv("HOME")
	v.SetDefault("database.path", filepath.Join(home, ".local", "share", "leaderboard", "leaderboard.db"))
	v.SetDefault("log.path", filepath.Join(home, ".local", "state", "leaderboard", "leaderboard.log"))
	v.SetDefault("log.level", "info")
	v.SetDefault("ui.date_format", "2006-01-02")
	v.SetDefault("ui.timezone", "UTC")
	v.SetDefault("ui.default_sort", "date")

	v.SetConfigType("toml")

	cfgPath := path
	if cfgPath == "" {
		cfgPath = os.Getenv("LEADERBOARD_CONFIG")
	}
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(home, ".config", "leaderboard"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("LEADERBOARD")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// a missing file is fine; one that exists but does not parse is not
		if !errors.As(err, &notFound) && cfgPath != "" {
			if _, statErr := os.Stat(cfgPath); statErr == nil {
				return Config{}, fmt.Errorf("read config %s: %w", cfgPath, err)
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// DefaultPath is where Save writes when no path is given.
func DefaultPath() string {
	if p := os.Getenv("LEADERBOARD_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "leaderboard", "config.toml")
}

// Save writes the provided config to path (DefaultPath when empty), creating
// the config directory if needed.
func Save(path string, cfg Config) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("log.path", cfg.Log.Path)
	v.Set("log.level", cfg.Log.Level)
	v.Set("ui.date_format", cfg.UI.DateFormat)
	v.Set("ui.timezone", cfg.UI.Timezone)
	v.Set("ui.default_sort", cfg.UI.DefaultSort)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
