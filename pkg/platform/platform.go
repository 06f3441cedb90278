package platform

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/glorpus-work/protoc-fetcher/pkg/errors"
)

// Platform is a target operating system and CPU architecture, using Go's
// GOOS/GOARCH vocabulary.
type Platform struct {
	OS   string `yaml:"os" json:"os"`
	Arch string `yaml:"arch" json:"arch"`
}

// CurrentPlatform returns the platform of the running process.
func CurrentPlatform() Platform {
	return Platform{
		OS:   NormalizeOS(runtime.GOOS),
		Arch: NormalizeArch(runtime.GOARCH),
	}
}

// New builds a Platform from possibly aliased names ("macos", "x86_64", ...).
// Empty values fall back to the current platform.
func New(os, arch string) Platform {
	p := CurrentPlatform()
	if os != "" {
		p.OS = NormalizeOS(os)
	}
	if arch != "" {
		p.Arch = NormalizeArch(arch)
	}
	return p
}

// String returns a string representation of the platform
func (p Platform) String() string {
	return fmt.Sprintf("%s/%s", p.OS, p.Arch)
}

// IsWindows reports whether binaries for p carry an .exe suffix.
func (p Platform) IsWindows() bool {
	return p.OS == OSWindows
}

// ExecutableName appends the platform's executable suffix to name.
func (p Platform) ExecutableName(name string) string {
	if p.IsWindows() {
		return name + ".exe"
	}
	return name
}

// releaseSuffixes maps platforms to the suffix used in protoc release archive
// names, e.g. protoc-31.1-linux-x86_64.zip.
var releaseSuffixes = map[Platform]string{
	{OS: OSLinux, Arch: ArchAMD64}:   "linux-x86_64",
	{OS: OSLinux, Arch: Arch386}:     "linux-x86_32",
	{OS: OSLinux, Arch: ArchARM64}:   "linux-aarch_64",
	{OS: OSLinux, Arch: ArchPPC64LE}: "linux-ppcle_64",
	{OS: OSLinux, Arch: ArchS390X}:   "linux-s390_64",
	{OS: OSDarwin, Arch: ArchAMD64}:  "osx-x86_64",
	{OS: OSDarwin, Arch: ArchARM64}:  "osx-aarch_64",
	{OS: OSWindows, Arch: ArchAMD64}: "win64",
	{OS: OSWindows, Arch: ArchARM64}: "win64",
	{OS: OSWindows, Arch: Arch386}:   "win32",
	{OS: OSWindows, Arch: ArchARM}:   "win32",
}

// darwinFallback is published for every macOS architecture.
const darwinFallback = "osx-universal_binary"

// ReleaseSuffix returns the archive name suffix for p, or an error wrapping
// errors.ErrUnsupportedPlatform.
func (p Platform) ReleaseSuffix() (string, error) {
	if suffix, ok := releaseSuffixes[p]; ok {
		return suffix, nil
	}
	if p.OS == OSDarwin && p.Arch != "" {
		return darwinFallback, nil
	}
	return "", fmt.Errorf("%w: %s", errors.ErrUnsupportedPlatform, p)
}

// Supported lists every platform with an exact entry in the release table.
func Supported() []Platform {
	out := make([]Platform, 0, len(releaseSuffixes))
	for p := range releaseSuffixes {
		out = append(out, p)
	}
	return out
}

// NormalizeOS normalizes OS names to Go's GOOS names
func NormalizeOS(os string) string {
	os = strings.ToLower(strings.TrimSpace(os))
	switch os {
	case "darwin", "macos", "osx", "mac":
		return OSDarwin
	case "win", "windows", "win32", "win64":
		return OSWindows
	default:
		return os
	}
}

// NormalizeArch normalizes architecture names to Go's GOARCH names
func NormalizeArch(arch string) string {
	arch = strings.ToLower(strings.TrimSpace(arch))
	switch arch {
	case "x86_64", "x64", "x86-64":
		return ArchAMD64
	case "x86", "i386", "i686", "x86_32":
		return Arch386
	case "arm64", "aarch64", "aarch_64":
		return ArchARM64
	case "armv7", "armv6", "armhf":
		return ArchARM
	case "ppcle_64", "ppc64el":
		return ArchPPC64LE
	case "s390_64":
		return ArchS390X
	default:
		return arch
	}
}
