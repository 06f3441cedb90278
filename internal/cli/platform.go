package cli

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/glorpus-work/protoc-fetcher/pkg/platform"
	"github.com/spf13/cobra"
)

// NewPlatformCmd creates the platform command.
func NewPlatformCmd() *cobra.Command {
	var osName, arch, version string
	var list bool

	cmd := &cobra.Command{
		Use:   "platform",
		Short: "Show the target platform and its release archive",
		Long:  "Show the resolved target platform, its release suffix and, with --version, the download URL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if list {
				return printSupportedPlatforms(cmd)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if version == "" {
				version = cfg.Settings.Version
			}

			p := targetPlatform(cfg, osName, arch)
			suffix, err := p.ReleaseSuffix()
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, TabWidth, ' ', 0)
			_, _ = fmt.Fprintf(tw, "platform\t%s\n", p)
			_, _ = fmt.Fprintf(tw, "suffix\t%s\n", suffix)
			if version != "" {
				u, err := newFetcher(cfg, p).ReleaseURL(version)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(tw, "url\t%s\n", u)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&osName, "os", "", "target operating system (default: host)")
	cmd.Flags().StringVar(&arch, "arch", "", "target architecture (default: host)")
	cmd.Flags().StringVar(&version, "version", "", "show the release URL for this version")
	cmd.Flags().BoolVar(&list, "list", false, "list every platform with a published release")

	return cmd
}

func printSupportedPlatforms(cmd *cobra.Command) error {
	platforms := platform.Supported()
	sort.Slice(platforms, func(i, j int) bool {
		return platforms[i].String() < platforms[j].String()
	})

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tw, "PLATFORM\tSUFFIX")
	for _, p := range platforms {
		suffix, err := p.ReleaseSuffix()
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", p, suffix)
	}

	// any other macOS architecture gets the universal binary
	other := platform.Platform{OS: platform.OSDarwin, Arch: "*"}
	suffix, err := other.ReleaseSuffix()
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(tw, "%s\t%s\n", other, suffix)
	return tw.Flush()
}
