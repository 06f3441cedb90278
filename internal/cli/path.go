package cli

import (
	"fmt"

	"github.com/glorpus-work/protoc-fetcher/internal/logger"
	"github.com/spf13/cobra"
)

// NewPathCmd creates the path command. It never touches the network.
func NewPathCmd() *cobra.Command {
	var outDir, osName, arch string
	var check bool

	cmd := &cobra.Command{
		Use:   "path [VERSION]",
		Short: "Print where protoc for VERSION is cached",
		Long:  "Print the expected path of the protoc binary without downloading anything",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			version, err := resolveVersion(args, cfg)
			if err != nil {
				return err
			}
			if outDir == "" {
				outDir = cfg.GetCacheDir()
			}

			f := newFetcher(cfg, targetPlatform(cfg, osName, arch))
			path, cached, err := f.Installed(version, outDir)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
			logger.Debug("Cache lookup", logger.Fields{"path": path, "cached": cached})
			if check && !cached {
				return fmt.Errorf("protoc %s is not cached at %s", version, path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out-dir", "d", "", "cache directory (default: configured cache_dir)")
	cmd.Flags().StringVar(&osName, "os", "", "target operating system (default: host)")
	cmd.Flags().StringVar(&arch, "arch", "", "target architecture (default: host)")
	cmd.Flags().BoolVar(&check, "check", false, "fail if the binary is not cached yet")

	return cmd
}
