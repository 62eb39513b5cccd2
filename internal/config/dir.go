// Package config provides the configuration directory and user
// settings for filekitty.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Dir returns the filekitty configuration directory.
//
// Resolution:
//   - $FILEKITTY_CONFIG_HOME if set (explicit override)
//   - $XDG_CONFIG_HOME/filekitty if set (respects XDG on any platform)
//   - %AppData%/filekitty on Windows
//   - ~/.config/filekitty on macOS and Linux
func Dir() string {
	if dir := os.Getenv("FILEKITTY_CONFIG_HOME"); dir != "" {
		return dir
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "filekitty")
	}

	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "filekitty")
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "filekitty")
}
