// Package protoc downloads official protobuf compiler releases pinned to a
// version and caches the extracted binary on disk.
//
// The cache layout under the caller's output directory is
//
//	<outDir>/protoc-<version>/bin/protoc[.exe]
//
// and the presence of that file is the only thing consulted on later calls.
package protoc

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/glorpus-work/protoc-fetcher/pkg/archive"
	"github.com/glorpus-work/protoc-fetcher/pkg/download"
	pkgerrors "github.com/glorpus-work/protoc-fetcher/pkg/errors"
	"github.com/glorpus-work/protoc-fetcher/pkg/fsutil"
	"github.com/glorpus-work/protoc-fetcher/pkg/platform"
)

// ReleaseHost is where protobuf publishes its release archives.
const ReleaseHost = "https://github.com/protocolbuffers/protobuf/releases/download"

const binaryName = "protoc"

// Fetcher ties the download and archive managers together for one platform.
type Fetcher struct {
	DL       Downloader
	Archives Extractor
	Platform platform.Platform
	Hooks    Hooks
}

// New returns a Fetcher for the current platform. Nil collaborators are
// replaced by the default HTTP download manager and zip extractor.
func New(dl Downloader, ex Extractor) *Fetcher {
	if dl == nil {
		dl = download.NewManager(0, "")
	}
	if ex == nil {
		ex = archive.NewManager()
	}
	return &Fetcher{
		DL:       dl,
		Archives: ex,
		Platform: platform.CurrentPlatform(),
	}
}

// Protoc downloads the protoc release for version into a subdirectory of
// outDir, unless it is already there, and returns the path to the binary.
// Pass the version as published on the release page, e.g. "31.1", without a
// leading "v".
func Protoc(version, outDir string) (string, error) {
	return New(nil, nil).Fetch(context.Background(), version, outDir)
}

// ReleaseName returns the archive base name, e.g. protoc-31.1-linux-x86_64.
func (f *Fetcher) ReleaseName(version string) (string, error) {
	suffix, err := f.Platform.ReleaseSuffix()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("protoc-%s-%s", version, suffix), nil
}

// ReleaseURL returns the download URL of the release archive for version.
func (f *Fetcher) ReleaseURL(version string) (string, error) {
	name, err := f.ReleaseName(version)
	if err != nil {
		return "", &pkgerrors.FetchError{Kind: pkgerrors.ErrUnsupportedPlatform, Version: version, Err: err}
	}
	return releaseURL(version, name), nil
}

func releaseURL(version, releaseName string) string {
	return fmt.Sprintf("%s/v%s/%s.zip", ReleaseHost, version, releaseName)
}

// InstallDir returns the version-scoped directory the archive is unpacked into.
func InstallDir(version, outDir string) string {
	return filepath.Join(outDir, "protoc-"+version)
}

// BinaryPath returns where the protoc binary for version lives under outDir.
// It does not touch the filesystem.
func (f *Fetcher) BinaryPath(version, outDir string) (string, error) {
	if err := validateArgs(version, outDir); err != nil {
		return "", err
	}
	if _, err := f.Platform.ReleaseSuffix(); err != nil {
		return "", &pkgerrors.FetchError{Kind: pkgerrors.ErrUnsupportedPlatform, Version: version, Err: err}
	}
	return f.binaryPath(version, outDir), nil
}

func (f *Fetcher) binaryPath(version, outDir string) string {
	return filepath.Join(InstallDir(version, outDir), "bin", f.Platform.ExecutableName(binaryName))
}

// Installed reports whether the binary for version is already cached under outDir.
func (f *Fetcher) Installed(version, outDir string) (string, bool, error) {
	path, err := f.BinaryPath(version, outDir)
	if err != nil {
		return "", false, err
	}
	return path, fsutil.FileExists(path), nil
}

// Fetch returns the path of the cached protoc binary for version, downloading
// and extracting the release archive first if the binary is not present.
// The download is attempted once; failures come back as *errors.FetchError.
func (f *Fetcher) Fetch(ctx context.Context, version, outDir string) (string, error) {
	if err := validateArgs(version, outDir); err != nil {
		return "", err
	}

	releaseName, err := f.ReleaseName(version)
	if err != nil {
		return "", f.fail(&pkgerrors.FetchError{Kind: pkgerrors.ErrUnsupportedPlatform, Version: version, Err: err})
	}
	binPath := f.binaryPath(version, outDir)
	f.emit(PhaseResolved, version, "%s -> %s", f.Platform, releaseName)

	if fsutil.FileExists(binPath) {
		f.emit(PhaseCacheHit, version, "%s", binPath)
		return binPath, nil
	}

	archiveURL := releaseURL(version, releaseName)
	if err := f.install(ctx, version, outDir, releaseName, archiveURL, binPath); err != nil {
		return "", f.fail(err)
	}

	f.emit(PhaseDone, version, "%s", binPath)
	return binPath, nil
}

func (f *Fetcher) install(ctx context.Context, version, outDir, releaseName, archiveURL, binPath string) error {
	if err := fsutil.EnsureDir(outDir); err != nil {
		return &pkgerrors.FetchError{Kind: pkgerrors.ErrFilesystem, Version: version, Path: outDir, Err: err}
	}

	u, err := url.Parse(archiveURL)
	if err != nil {
		return &pkgerrors.FetchError{Kind: pkgerrors.ErrDownloadFailed, Version: version, URL: archiveURL, Err: err}
	}

	f.emit(PhaseDownloading, version, "%s", archiveURL)
	archivePath, err := f.DL.Fetch(ctx, download.Item{URL: u, Filename: releaseName + ".zip"}, download.Options{Dir: outDir})
	if err != nil {
		// failures writing into outDir are filesystem errors, not download errors
		if errors.Is(err, pkgerrors.ErrFilesystem) && !errors.Is(err, pkgerrors.ErrDownloadFailed) {
			return &pkgerrors.FetchError{Kind: pkgerrors.ErrFilesystem, Version: version, URL: archiveURL, Path: outDir, Err: err}
		}
		return &pkgerrors.FetchError{Kind: pkgerrors.ErrDownloadFailed, Version: version, URL: archiveURL, Err: err}
	}
	defer func() { _ = os.Remove(archivePath) }()

	installDir := InstallDir(version, outDir)
	f.emit(PhaseExtracting, version, "%s -> %s", archivePath, installDir)
	if err := f.Archives.ExtractAll(ctx, archivePath, installDir); err != nil {
		return &pkgerrors.FetchError{Kind: pkgerrors.ErrExtraction, Version: version, URL: archiveURL, Path: archivePath, Err: err}
	}

	f.emit(PhaseVerifying, version, "%s", binPath)
	if !fsutil.FileExists(binPath) {
		return &pkgerrors.FetchError{Kind: pkgerrors.ErrMissingBinary, Version: version, URL: archiveURL, Path: binPath}
	}

	if err := fsutil.MakeExecutable(binPath); err != nil {
		return &pkgerrors.FetchError{Kind: pkgerrors.ErrFilesystem, Version: version, Path: binPath, Err: err}
	}
	f.emit(PhasePermissionsSet, version, "%s", binPath)
	return nil
}

func validateArgs(version, outDir string) error {
	if version == "" {
		return &pkgerrors.FetchError{Kind: pkgerrors.ErrInvalidArgument, Err: fmt.Errorf("version cannot be empty")}
	}
	if outDir == "" {
		return &pkgerrors.FetchError{Kind: pkgerrors.ErrInvalidArgument, Version: version, Err: fmt.Errorf("output directory cannot be empty")}
	}
	return nil
}

func (f *Fetcher) fail(err error) error {
	version := ""
	if fe, ok := err.(*pkgerrors.FetchError); ok {
		version = fe.Version
	}
	f.emit(PhaseFailed, version, "%v", err)
	return err
}

func (f *Fetcher) emit(phase Phase, version, format string, args ...any) {
	if f.Hooks.OnEvent == nil {
		return
	}
	f.Hooks.OnEvent(Event{Phase: phase, Version: version, Msg: fmt.Sprintf(format, args...)})
}
