package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/glorpus-work/protoc-fetcher/pkg/errors"
	"github.com/glorpus-work/protoc-fetcher/pkg/fsutil"
	"github.com/glorpus-work/protoc-fetcher/pkg/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.Settings.LogLevel)
	assert.Equal(t, "text", cfg.Settings.LogFormat)
	assert.Equal(t, DefaultHTTPTimeout, cfg.Settings.HTTPTimeout)
	assert.NotEmpty(t, cfg.Settings.CacheDir)
	assert.Empty(t, cfg.Settings.Version)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	configContent := `settings:
  cache_dir: /tmp/protoc-cache
  version: "31.1"
  http_timeout: 45s
  user_agent: my-build/2.0
  log_level: debug
  platform:
    os: macos
    arch: aarch64
  hooks:
    post_fetch: /etc/protoc-fetcher/post-fetch.tengo`

	err := os.WriteFile(configPath, []byte(configContent), fsutil.FileModeDefault)
	require.NoError(t, err)

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "/tmp/protoc-cache", cfg.GetCacheDir())
	assert.Equal(t, "31.1", cfg.Settings.Version)
	assert.Equal(t, 45*time.Second, cfg.Settings.HTTPTimeout)
	assert.Equal(t, "my-build/2.0", cfg.Settings.UserAgent)
	assert.Equal(t, "debug", cfg.Settings.LogLevel)
	assert.Equal(t, "text", cfg.Settings.LogFormat)
	assert.Equal(t, platform.Platform{OS: "darwin", Arch: "arm64"}, cfg.TargetPlatform())
	assert.Equal(t, "/etc/protoc-fetcher/post-fetch.tengo", cfg.Settings.Hooks.PostFetch)
	assert.Empty(t, cfg.Settings.Hooks.PreFetch)
}

func TestLoadConfig_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	assert.ErrorIs(t, err, errors.ErrEmptyConfigPath)
}

func TestLoadConfigFromReader_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name:    "malformed yaml",
			content: "settings: [",
			wantErr: errors.ErrConfigParse,
		},
		{
			name:    "negative timeout",
			content: "settings:\n  http_timeout: -1s\n",
			wantErr: errors.ErrHTTPTimeoutNegative,
		},
		{
			name:    "unknown log level",
			content: "settings:\n  log_level: chatty\n",
			wantErr: errors.ErrInvalidLogLevel,
		},
		{
			name:    "unknown log format",
			content: "settings:\n  log_format: xml\n",
			wantErr: errors.ErrInvalidLogFormat,
		},
		{
			name:    "unsupported os",
			content: "settings:\n  platform:\n    os: plan9\n",
			wantErr: errors.ErrInvalidOSValue,
		},
		{
			name:    "unsupported arch",
			content: "settings:\n  platform:\n    arch: mips\n",
			wantErr: errors.ErrInvalidArchValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfigFromReader(strings.NewReader(tt.content))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoadConfigFromReader_EmptyInput(t *testing.T) {
	cfg, err := LoadConfigFromReader(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Settings, cfg.Settings)
}

func TestSaveConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Settings.Version = "30.2"
	cfg.Settings.LogLevel = "debug"
	cfg.Settings.Platform.OS = "linux"
	cfg.Settings.Platform.Arch = "s390x"

	configPath := filepath.Join(t.TempDir(), "nested", "dir", "config.yaml")

	require.NoError(t, cfg.SaveConfig(configPath))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "version: \"30.2\"")
	assert.NoFileExists(t, configPath+".tmp")

	loaded, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestSaveConfig_EmptyPath(t *testing.T) {
	assert.ErrorIs(t, DefaultConfig().SaveConfig(""), errors.ErrEmptyConfigPath)
}

func TestToYAML(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Settings.CacheDir = "/cache"

	data, err := cfg.ToYAML()
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "settings:")
	assert.Contains(t, out, "cache_dir: /cache")
	assert.Contains(t, out, "log_level: info")
	assert.NotContains(t, out, "platform:")
	assert.NotContains(t, out, "hooks:")
}

func TestValidate_Nil(t *testing.T) {
	var cfg *Config
	assert.ErrorIs(t, cfg.Validate(), errors.ErrConfigValidation)
}

func TestGetDefaultConfigPath(t *testing.T) {
	path, err := GetDefaultConfigPath()
	if err != nil {
		t.Skipf("no user config dir: %v", err)
	}
	assert.Equal(t, "config.yaml", filepath.Base(path))
	assert.Equal(t, fsutil.AppName, filepath.Base(filepath.Dir(path)))
}

func TestTargetPlatform_DefaultsToHost(t *testing.T) {
	assert.Equal(t, platform.CurrentPlatform(), DefaultConfig().TargetPlatform())
}
