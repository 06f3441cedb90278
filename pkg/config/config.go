// Package config loads and saves the protoc-fetcher CLI configuration.
// The library in pkg/protoc does not read configuration; the CLI turns these
// settings into a Fetcher.
package config

import (
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/glorpus-work/protoc-fetcher/pkg/errors"
	"github.com/glorpus-work/protoc-fetcher/pkg/fsutil"
	"github.com/glorpus-work/protoc-fetcher/pkg/platform"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Settings Settings `yaml:"settings"`
}

// PlatformConfig overrides the target platform. Empty fields mean the host.
type PlatformConfig struct {
	OS   string `yaml:"os,omitempty"`
	Arch string `yaml:"arch,omitempty"`
}

// HooksConfig points at Tengo scripts run around each fetch.
type HooksConfig struct {
	PreFetch  string `yaml:"pre_fetch,omitempty"`
	PostFetch string `yaml:"post_fetch,omitempty"`
}

// Settings represents general application settings.
type Settings struct {
	// CacheDir is the output directory releases are unpacked into.
	CacheDir string `yaml:"cache_dir,omitempty"`

	// Version is used when no version argument is given on the command line.
	Version string `yaml:"version,omitempty"`

	// Network settings
	HTTPTimeout time.Duration `yaml:"http_timeout"`
	UserAgent   string        `yaml:"user_agent,omitempty"`

	Platform PlatformConfig `yaml:"platform,omitempty"`
	Hooks    HooksConfig    `yaml:"hooks,omitempty"`

	LogLevel  string `yaml:"log_level"`  // debug, info, warn, error
	LogFormat string `yaml:"log_format"` // text, json
}

// Default configuration values.
const (
	// DefaultHTTPTimeout bounds the whole archive download, body included.
	DefaultHTTPTimeout = 5 * time.Minute

	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"

	// YAMLIndent is the number of spaces to use for YAML indentation.
	YAMLIndent = 2

	configFileName = "config.yaml"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	cacheDir, err := fsutil.GetCacheDir()
	if err != nil {
		cacheDir = filepath.Join(os.TempDir(), fsutil.AppName)
	}

	return &Config{
		Settings: Settings{
			CacheDir:    cacheDir,
			HTTPTimeout: DefaultHTTPTimeout,
			LogLevel:    DefaultLogLevel,
			LogFormat:   DefaultLogFormat,
		},
	}
}

// LoadConfig loads configuration from a file. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errors.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config data")
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(errors.ErrConfigParse, err.Error())
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrConfigValidation, err.Error())
	}

	return &config, nil
}

// SaveConfig writes the configuration to path through a temporary file and a rename.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	if err := fsutil.EnsureFileDir(absPath); err != nil {
		return errors.Wrap(errors.ErrConfigDirectory, err.Error())
	}

	tempPath := absPath + ".tmp"
	file, err := fsutil.CreateFilePerm(tempPath, fsutil.FileModeDefault)
	if err != nil {
		return errors.Wrap(errors.ErrConfigFileCreate, err.Error())
	}

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(YAMLIndent)

	if err := encoder.Encode(c); err != nil {
		_ = file.Close()
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigEncode, err.Error())
	}

	_ = encoder.Close()
	_ = file.Close()

	if err := os.Rename(tempPath, absPath); err != nil {
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigFileRename, err.Error())
	}

	return nil
}

// ToYAML converts the config to YAML bytes.
func (c *Config) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrConfigEncode, err.Error())
	}
	return data, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.ErrConfigValidation
	}
	if err := validatePlatform(c.Settings.Platform); err != nil {
		return err
	}
	return validateSettings(c.Settings)
}

func validatePlatform(p PlatformConfig) error {
	if p.OS != "" && !slices.Contains(platform.ValidOS(), platform.NormalizeOS(p.OS)) {
		return errors.ErrInvalidOSValueWithDetails(p.OS, platform.ValidOS())
	}
	if p.Arch != "" && !slices.Contains(platform.ValidArch(), platform.NormalizeArch(p.Arch)) {
		return errors.ErrInvalidArchValueWithDetails(p.Arch, platform.ValidArch())
	}
	return nil
}

func validateSettings(s Settings) error {
	if s.HTTPTimeout < 0 {
		return errors.ErrHTTPTimeoutNegative
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[s.LogFormat] {
		return errors.ErrInvalidLogFormatWithDetails(s.LogFormat)
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(s.LogLevel)] {
		return errors.ErrInvalidLogLevelWithDetails(s.LogLevel)
	}
	return nil
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	configDir, err := fsutil.GetConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get user config directory")
	}
	return filepath.Join(configDir, configFileName), nil
}

// GetCacheDir returns the directory releases are cached under.
func (c *Config) GetCacheDir() string {
	return c.Settings.CacheDir
}

// TargetPlatform resolves the platform override against the host platform.
func (c *Config) TargetPlatform() platform.Platform {
	return platform.New(c.Settings.Platform.OS, c.Settings.Platform.Arch)
}

// applyDefaults fills in missing values with defaults.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Settings.CacheDir == "" {
		c.Settings.CacheDir = defaults.Settings.CacheDir
	}
	if c.Settings.HTTPTimeout == 0 {
		c.Settings.HTTPTimeout = defaults.Settings.HTTPTimeout
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = defaults.Settings.LogLevel
	}
	if c.Settings.LogFormat == "" {
		c.Settings.LogFormat = defaults.Settings.LogFormat
	}
}
