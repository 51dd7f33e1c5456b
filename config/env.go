package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
)

// DefaultMinDurationMS is the minimum duration an entry must exceed to be
// surfaced. Anything at or below this is treated as a system/notification
// sound and filtered out.
const DefaultMinDurationMS int64 = 30000

// GetLibraryLocation returns the root of the media library to scan.
func GetLibraryLocation() string {
	// First check environment variable for custom location
	if customPath := os.Getenv("AUDIODEX_LIBRARY"); customPath != "" {
		return customPath
	}

	// Then the user's saved settings
	if saved := getUserLibraryLocation(); saved != "" {
		return saved
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if can't get home dir
		return filepath.Join(".", "music")
	}

	return filepath.Join(homeDir, "Music")
}

// GetMinDurationMS returns the duration cutoff in milliseconds.
func GetMinDurationMS() int64 {
	if v := os.Getenv("AUDIODEX_MIN_DURATION_MS"); v != "" {
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil && ms >= 0 {
			return ms
		}
	}
	return DefaultMinDurationMS
}

// UserSettings represents the user's personal settings
type UserSettings struct {
	LibraryLocation string `json:"libraryLocation"`
}

// SettingsFilePath returns the path to the settings file
func SettingsFilePath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".audiodex-settings.json")
}

// getUserLibraryLocation loads the user's preferred library location from the
// settings file, or "" to fall back to the default.
func getUserLibraryLocation() string {
	settingsPath := SettingsFilePath()

	if _, err := os.Stat(settingsPath); os.IsNotExist(err) {
		return ""
	}

	data, err := os.ReadFile(settingsPath)
	if err != nil {
		return ""
	}

	var settings UserSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return ""
	}

	return settings.LibraryLocation
}
