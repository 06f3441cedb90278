package cli

import (
	"fmt"

	"github.com/glorpus-work/protoc-fetcher/internal/logger"
	"github.com/glorpus-work/protoc-fetcher/pkg/hook"
	"github.com/glorpus-work/protoc-fetcher/pkg/platform"
	"github.com/glorpus-work/protoc-fetcher/pkg/protoc"
	"github.com/spf13/cobra"
)

type fetchOptions struct {
	outDir       string
	os           string
	arch         string
	printVersion bool
	noHooks      bool
}

// NewFetchCmd creates the fetch command.
func NewFetchCmd() *cobra.Command {
	var opts fetchOptions

	cmd := &cobra.Command{
		Use:   "fetch [VERSION]",
		Short: "Download protoc and print the path to the binary",
		Long: `Download the protoc release for VERSION (e.g. 31.1) unless it is already
cached, then print the path to the binary on stdout. Without VERSION the
configured default version is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.outDir, "out-dir", "d", "", "directory to cache releases in (default: configured cache_dir)")
	cmd.Flags().StringVar(&opts.os, "os", "", "target operating system (default: host)")
	cmd.Flags().StringVar(&opts.arch, "arch", "", "target architecture (default: host)")
	cmd.Flags().BoolVar(&opts.printVersion, "print-version", false, "run the binary with --version afterwards")
	cmd.Flags().BoolVar(&opts.noHooks, "no-hooks", false, "skip the configured pre-fetch and post-fetch hooks")

	return cmd
}

func runFetch(cmd *cobra.Command, args []string, opts fetchOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	version, err := resolveVersion(args, cfg)
	if err != nil {
		return err
	}
	checkVersion(version)

	outDir := opts.outDir
	if outDir == "" {
		outDir = cfg.GetCacheDir()
	}

	p := targetPlatform(cfg, opts.os, opts.arch)
	f := newFetcher(cfg, p)

	hooks := hook.NewManager()
	if !opts.noHooks {
		if err := loadHooks(hooks, cfg); err != nil {
			return err
		}
	}

	expected, cached, err := f.Installed(version, outDir)
	if err != nil {
		return fmt.Errorf("failed to fetch protoc %s: %w", version, err)
	}
	hc := hook.Context{
		Version:    version,
		OS:         p.OS,
		Arch:       p.Arch,
		OutDir:     outDir,
		BinaryPath: expected,
		CacheHit:   cached,
	}
	if err := hooks.Execute(cmd.Context(), hook.PreFetch, hc); err != nil {
		return err
	}

	path, err := f.Fetch(cmd.Context(), version, outDir)
	if err != nil {
		return fmt.Errorf("failed to fetch protoc %s: %w", version, err)
	}

	hc.BinaryPath = path
	if err := hooks.Execute(cmd.Context(), hook.PostFetch, hc); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)

	if !opts.printVersion {
		return nil
	}
	if p != platform.CurrentPlatform() {
		logger.Warn("Not running a binary built for another platform", logger.Fields{"platform": p.String()})
		return nil
	}
	out, err := protoc.BinaryVersion(cmd.Context(), path)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
