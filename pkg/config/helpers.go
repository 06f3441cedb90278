package config

import (
	"fmt"
	"time"

	"github.com/glorpus-work/protoc-fetcher/pkg/platform"
)

// Keys returns the configuration keys accepted by SetValue and GetValue, in display order.
func Keys() []string {
	return []string{
		"cache_dir",
		"version",
		"http_timeout",
		"user_agent",
		"log_level",
		"log_format",
		"platform.os",
		"platform.arch",
		"hooks.pre_fetch",
		"hooks.post_fetch",
	}
}

// SetValue sets a configuration value by key. c is only changed when the
// result validates.
func (c *Config) SetValue(key, value string) error {
	next := *c
	if err := next.setField(key, value); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

func (c *Config) setField(key, value string) error {
	switch key {
	case "cache_dir":
		c.Settings.CacheDir = value
	case "version":
		c.Settings.Version = value
	case "http_timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for %s: %s", key, value)
		}
		c.Settings.HTTPTimeout = d
	case "user_agent":
		c.Settings.UserAgent = value
	case "log_level":
		c.Settings.LogLevel = value
	case "log_format":
		c.Settings.LogFormat = value
	case "platform.os":
		c.Settings.Platform.OS = platform.NormalizeOS(value)
	case "platform.arch":
		c.Settings.Platform.Arch = platform.NormalizeArch(value)
	case "hooks.pre_fetch":
		c.Settings.Hooks.PreFetch = value
	case "hooks.post_fetch":
		c.Settings.Hooks.PostFetch = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}

// GetValue returns the value of key formatted as a string.
func (c *Config) GetValue(key string) (string, error) {
	switch key {
	case "cache_dir":
		return c.Settings.CacheDir, nil
	case "version":
		return c.Settings.Version, nil
	case "http_timeout":
		return c.Settings.HTTPTimeout.String(), nil
	case "user_agent":
		return c.Settings.UserAgent, nil
	case "log_level":
		return c.Settings.LogLevel, nil
	case "log_format":
		return c.Settings.LogFormat, nil
	case "platform.os":
		return c.Settings.Platform.OS, nil
	case "platform.arch":
		return c.Settings.Platform.Arch, nil
	case "hooks.pre_fetch":
		return c.Settings.Hooks.PreFetch, nil
	case "hooks.post_fetch":
		return c.Settings.Hooks.PostFetch, nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

// ToMap returns every setting keyed by its configuration key.
// This is useful for displaying the configuration.
func (c *Config) ToMap() map[string]string {
	result := make(map[string]string, len(Keys()))
	for _, key := range Keys() {
		value, _ := c.GetValue(key)
		result[key] = value
	}
	return result
}
