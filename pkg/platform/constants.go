package platform

// Package platform provides constants and utilities for handling platform-specific
// information such as operating systems and architectures.

const (
	// OSWindows represents the Windows operating system.
	OSWindows = "windows"
	// OSLinux represents the Linux operating system.
	OSLinux = "linux"
	// OSDarwin represents the macOS operating system.
	OSDarwin = "darwin"

	// ArchAMD64 represents the AMD64 (x86_64) architecture.
	ArchAMD64 = "amd64"
	// Arch386 represents the 32-bit x86 architecture.
	Arch386 = "386"
	// ArchARM represents the ARM architecture (32-bit).
	ArchARM = "arm"
	// ArchARM64 represents the ARM64 (AArch64) architecture.
	ArchARM64 = "arm64"
	// ArchPPC64LE represents little-endian 64-bit POWER.
	ArchPPC64LE = "ppc64le"
	// ArchS390X represents IBM Z.
	ArchS390X = "s390x"
)

// ValidOS returns the operating systems protoc is published for.
func ValidOS() []string {
	return []string{
		OSWindows,
		OSLinux,
		OSDarwin,
	}
}

// ValidArch returns the architectures that appear in the release table.
func ValidArch() []string {
	return []string{
		ArchAMD64,
		Arch386,
		ArchARM,
		ArchARM64,
		ArchPPC64LE,
		ArchS390X,
	}
}
