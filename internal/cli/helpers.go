package cli

import (
	"fmt"
	"strings"

	"github.com/glorpus-work/protoc-fetcher/internal/logger"
	"github.com/glorpus-work/protoc-fetcher/pkg/config"
	"github.com/glorpus-work/protoc-fetcher/pkg/download"
	"github.com/glorpus-work/protoc-fetcher/pkg/errors"
	"github.com/glorpus-work/protoc-fetcher/pkg/hook"
	"github.com/glorpus-work/protoc-fetcher/pkg/platform"
	"github.com/glorpus-work/protoc-fetcher/pkg/protoc"
	goversion "github.com/hashicorp/go-version"
)

// These variables will be set by the main package
var (
	ConfigPath *string
	Verbose    *bool
	LogLevel   *string
	LogFormat  *string
)

// newDownloader builds the HTTP download manager from the configuration.
// Tests replace it to point at a local release host.
var newDownloader = func(cfg *config.Config) protoc.Downloader {
	return download.NewManager(cfg.Settings.HTTPTimeout, cfg.Settings.UserAgent)
}

// loadFileConfig reads the configuration file as stored, without flag overrides.
func loadFileConfig() (*config.Config, string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, "", err
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, configPath, nil
}

// loadConfig reads the configuration file, applies the global flags and
// initializes the logger from the result. The flags only affect this run;
// use loadFileConfig for anything that is saved back.
func loadConfig() (*config.Config, error) {
	cfg, configPath, err := loadFileConfig()
	if err != nil {
		return nil, err
	}

	if LogLevel != nil && *LogLevel != "" {
		cfg.Settings.LogLevel = *LogLevel
	}
	if Verbose != nil && *Verbose {
		cfg.Settings.LogLevel = "debug"
	}
	if LogFormat != nil && *LogFormat != "" {
		cfg.Settings.LogFormat = *LogFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrConfigValidation, err.Error())
	}

	logger.InitLogger(cfg.Settings.LogLevel, logger.OutputFormat(cfg.Settings.LogFormat))
	logger.DebugfWithFields(logger.Fields{"path": configPath}, "configuration loaded")
	return cfg, nil
}

func getConfigPath() (string, error) {
	if ConfigPath != nil && *ConfigPath != "" {
		return *ConfigPath, nil
	}
	path, err := config.GetDefaultConfigPath()
	if err != nil {
		return "", fmt.Errorf("failed to get default config path: %w", err)
	}
	return path, nil
}

// resolveVersion picks the version argument or falls back to the configured one.
func resolveVersion(args []string, cfg *config.Config) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if cfg.Settings.Version != "" {
		return cfg.Settings.Version, nil
	}
	return "", fmt.Errorf("no version given and no default version configured: %w", errors.ErrInvalidArgument)
}

// checkVersion warns about versions that are unlikely to name a release.
// The version is still used verbatim.
func checkVersion(version string) {
	if strings.HasPrefix(version, "v") {
		logger.Warn("Version starts with \"v\"; the release tag adds its own prefix", logger.Fields{
			"version": version,
			"tag":     "v" + version,
		})
		return
	}
	v, err := goversion.NewVersion(version)
	if err != nil {
		logger.Warn("Version does not look like a protoc release number", logger.Fields{
			"version": version,
			"error":   err.Error(),
		})
		return
	}
	if v.Prerelease() != "" {
		logger.Debug("Using a pre-release", logger.Fields{"version": version, "prerelease": v.Prerelease()})
	}
}

// targetPlatform applies --os/--arch flags on top of the configured override.
func targetPlatform(cfg *config.Config, osName, arch string) platform.Platform {
	p := cfg.TargetPlatform()
	if osName != "" {
		p.OS = platform.NormalizeOS(osName)
	}
	if arch != "" {
		p.Arch = platform.NormalizeArch(arch)
	}
	return p
}

// newFetcher builds a fetcher for p that reports progress through the logger.
func newFetcher(cfg *config.Config, p platform.Platform) *protoc.Fetcher {
	f := protoc.New(newDownloader(cfg), nil)
	f.Platform = p
	f.Hooks = logHooks()
	return f
}

func logHooks() protoc.Hooks {
	return protoc.Hooks{
		OnEvent: func(e protoc.Event) {
			fields := logger.Fields{"phase": string(e.Phase), "version": e.Version}
			switch e.Phase {
			case protoc.PhaseDownloading:
				fields["url"] = e.Msg
				logger.Info("Downloading protoc", fields)
			case protoc.PhaseCacheHit:
				fields["path"] = e.Msg
				logger.Info("Using cached protoc", fields)
			case protoc.PhaseDone:
				fields["path"] = e.Msg
				logger.Success("Installed protoc", fields)
			default:
				logger.Debug(e.Msg, fields)
			}
		},
	}
}

// loadHooks registers the hook scripts named in the configuration.
func loadHooks(m *hook.DefaultManager, cfg *config.Config) error {
	scripts := map[hook.Type]string{
		hook.PreFetch:  cfg.Settings.Hooks.PreFetch,
		hook.PostFetch: cfg.Settings.Hooks.PostFetch,
	}
	for _, t := range hook.Types() {
		if err := m.LoadFile(t, scripts[t]); err != nil {
			return err
		}
		if scripts[t] != "" {
			logger.Debug("Loaded hook", logger.Fields{"type": string(t), "path": scripts[t]})
		}
	}
	return nil
}
