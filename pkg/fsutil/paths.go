package fsutil

import (
	"os"
	"path/filepath"
)

const (
	// AppName is the name of the application used in paths
	AppName = "protoc-fetcher"
)

// GetCacheDir returns the platform-specific cache directory for the application
// On Linux: ~/.cache/protoc-fetcher/
// On macOS: ~/Library/Caches/protoc-fetcher/
// On Windows: %LocalAppData%\protoc-fetcher\
func GetCacheDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, AppName), nil
}

// GetConfigDir returns the platform-specific configuration directory for the application.
func GetConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, AppName), nil
}
