// Package archive provides utilities for extracting and creating release archives.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/protoc-fetcher/pkg/fsutil"
	"github.com/mholt/archives"
)

var (
	// ErrUnsupportedFormat is returned when a file is not a recognized archive.
	ErrUnsupportedFormat = errors.New("unsupported archive format")
	// ErrIllegalPath is returned for entries that would land outside the destination directory.
	ErrIllegalPath = errors.New("illegal path in archive")
)

// Manager handles archive extraction and creation operations.
type Manager struct{}

// NewManager creates a new Manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// ExtractAll extracts all files from an archive to the specified destination directory.
// Existing files in destDir are overwritten.
func (am *Manager) ExtractAll(ctx context.Context, archivePath, destDir string) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive file: %w", err)
	}
	defer func() { _ = file.Close() }()

	format, _, err := archives.Identify(ctx, filepath.Base(archivePath), file)
	if err != nil {
		if errors.Is(err, archives.NoMatch) {
			return fmt.Errorf("%w: %s", ErrUnsupportedFormat, archivePath)
		}
		return fmt.Errorf("failed to identify archive %s: %w", archivePath, err)
	}
	extractor, ok := format.(archives.Extractor)
	if !ok {
		return fmt.Errorf("%w: %s is compressed but not an archive", ErrUnsupportedFormat, archivePath)
	}

	// zip needs random access, so hand the file itself over rather than the identified stream
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind archive file: %w", err)
	}

	if err := os.MkdirAll(destDir, fsutil.DirModeDefault); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	err = extractor.Extract(ctx, file, func(_ context.Context, f archives.FileInfo) error {
		return am.extractEntry(f, destDir)
	})
	if err != nil {
		return fmt.Errorf("failed to extract %s: %w", archivePath, err)
	}
	return nil
}

// Create writes the contents of sourceDir into a zip archive at archivePath.
func (am *Manager) Create(ctx context.Context, sourceDir, archivePath string) error {
	absolutePath, err := filepath.Abs(sourceDir)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for source directory: %w", err)
	}

	entries, err := os.ReadDir(absolutePath)
	if err != nil {
		return fmt.Errorf("failed to read source directory: %w", err)
	}
	filenames := make(map[string]string, len(entries))
	for _, e := range entries {
		filenames[filepath.Join(absolutePath, e.Name())] = e.Name()
	}

	archiveFiles, err := archives.FilesFromDisk(ctx, nil, filenames)
	if err != nil {
		return fmt.Errorf("failed to read files from disk: %w", err)
	}

	file, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %w", archivePath, err)
	}
	defer func() {
		_ = file.Sync()
		_ = file.Close()
	}()

	if err := (archives.Zip{}).Archive(ctx, file, archiveFiles); err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	return nil
}

// extractEntry writes a single archive entry below destDir.
func (am *Manager) extractEntry(f archives.FileInfo, destDir string) error {
	targetPath := filepath.Join(destDir, filepath.FromSlash(f.NameInArchive))
	if !fsutil.IsWithin(destDir, targetPath) {
		return fmt.Errorf("%w: %s", ErrIllegalPath, f.NameInArchive)
	}
	// Symlinks written by earlier entries must not redirect later writes.
	if linked, err := crossesSymlink(destDir, filepath.Dir(targetPath)); err != nil {
		return err
	} else if linked {
		return fmt.Errorf("%w: %s passes through a symlink", ErrIllegalPath, f.NameInArchive)
	}

	if f.IsDir() {
		return os.MkdirAll(targetPath, fsutil.DirModeDefault)
	}
	if f.Mode()&fs.ModeSymlink != 0 {
		return am.writeSymlink(f, destDir, targetPath)
	}
	return am.writeRegularFile(f, targetPath)
}

// writeSymlink creates a symlink at targetPath. Zip stores the link target as
// the entry's content; other formats report it in LinkTarget.
func (am *Manager) writeSymlink(f archives.FileInfo, destDir, targetPath string) error {
	linkTarget := f.LinkTarget
	if linkTarget == "" {
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("failed to read symlink %s: %w", f.NameInArchive, err)
		}
		defer func() { _ = rc.Close() }()

		targetBytes, err := io.ReadAll(rc)
		if err != nil {
			return fmt.Errorf("failed to read symlink target %s: %w", f.NameInArchive, err)
		}
		linkTarget = string(targetBytes)
	}

	resolved := linkTarget
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(filepath.Dir(targetPath), resolved)
	}
	if !fsutil.IsWithin(destDir, resolved) {
		return fmt.Errorf("%w: symlink %s -> %s", ErrIllegalPath, f.NameInArchive, linkTarget)
	}
	if linked, err := crossesSymlink(destDir, resolved); err != nil {
		return err
	} else if linked {
		return fmt.Errorf("%w: symlink %s -> %s points through a symlink", ErrIllegalPath, f.NameInArchive, linkTarget)
	}

	if err := os.MkdirAll(filepath.Dir(targetPath), fsutil.DirModeDefault); err != nil {
		return fmt.Errorf("failed to create parent directory for symlink %s: %w", f.NameInArchive, err)
	}
	_ = os.Remove(targetPath)
	return os.Symlink(linkTarget, targetPath)
}

// writeRegularFile copies an archive entry to targetPath, keeping its permission bits.
func (am *Manager) writeRegularFile(f archives.FileInfo, targetPath string) error {
	srcFile, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to open archive entry %s: %w", f.NameInArchive, err)
	}
	defer func() { _ = srcFile.Close() }()

	if err := os.MkdirAll(filepath.Dir(targetPath), fsutil.DirModeDefault); err != nil {
		return fmt.Errorf("failed to create parent directory for %s: %w", f.NameInArchive, err)
	}

	perm := f.Mode().Perm()
	if perm == 0 {
		perm = fsutil.FileModeDefault
	}
	// Replace a symlink left at targetPath instead of writing through it.
	if info, err := os.Lstat(targetPath); err == nil && info.Mode()&fs.ModeSymlink != 0 {
		if err := os.Remove(targetPath); err != nil {
			return fmt.Errorf("failed to replace symlink %s: %w", targetPath, err)
		}
	}
	dstFile, err := fsutil.CreateFilePerm(targetPath, perm)
	if err != nil {
		return fmt.Errorf("failed to create destination file %s: %w", targetPath, err)
	}
	defer func() { _ = dstFile.Close() }()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return fmt.Errorf("failed to copy file %s: %w", f.NameInArchive, err)
	}
	if err := os.Chmod(targetPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions for %s: %w", targetPath, err)
	}
	return nil
}

// crossesSymlink reports whether any existing component of path below root,
// path itself included, is a symlink. Missing components end the walk.
func crossesSymlink(root, path string) (bool, error) {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(path))
	if err != nil {
		return false, fmt.Errorf("%w: %s", ErrIllegalPath, path)
	}
	if rel == "." {
		return false, nil
	}

	current := filepath.Clean(root)
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		current = filepath.Join(current, part)
		info, err := os.Lstat(current)
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("failed to inspect %s: %w", current, err)
		}
		if info.Mode()&fs.ModeSymlink != 0 {
			return true, nil
		}
	}
	return false, nil
}
