package tui

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// UIConfig holds the presenter's appearance settings
type UIConfig struct {
	Color    string `mapstructure:"color"`
	MaxWidth int    `mapstructure:"max_width"`
}

// loadConfig reads the UI configuration from the XDG config directory and
// environment (AUDIODEX_UI_COLOR etc.), falling back to defaults.
func loadConfig() UIConfig {
	v := viper.New()

	v.SetDefault("ui.color", "2")
	v.SetDefault("ui.max_width", 72)

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Check XDG_CONFIG_HOME first, fallback to ~/.config
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		if homeDir, err := os.UserHomeDir(); err == nil {
			configHome = filepath.Join(homeDir, ".config")
		}
	}
	if configHome != "" {
		v.AddConfigPath(filepath.Join(configHome, "audiodex"))
	}

	v.SetEnvPrefix("AUDIODEX")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Missing config file is fine; defaults apply
	_ = v.ReadInConfig()

	return UIConfig{
		Color:    v.GetString("ui.color"),
		MaxWidth: v.GetInt("ui.max_width"),
	}
}
