package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"time"

	pkgerrors "github.com/glorpus-work/protoc-fetcher/pkg/errors"
	"github.com/glorpus-work/protoc-fetcher/pkg/fsutil"
)

// DefaultUserAgent is sent when no user agent is configured.
const DefaultUserAgent = "protoc-fetcher/1.0"

// ManagerImpl is a plain HTTP download manager. It performs a single attempt
// per Fetch; there are no retries and no integrity checks.
type ManagerImpl struct {
	client    *http.Client
	userAgent string
}

// NewManager creates a new download manager with the given timeout and user agent.
// A zero timeout leaves the request bounded only by the transport's own limits.
func NewManager(timeout time.Duration, userAgent string) *ManagerImpl {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &ManagerImpl{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (m *ManagerImpl) WithHTTPClient(client *http.Client) *ManagerImpl {
	if client != nil {
		m.client = client
	}
	return m
}

// Fetch downloads a single item and returns the path to the downloaded file.
func (m *ManagerImpl) Fetch(ctx context.Context, item Item, opts Options) (string, error) {
	if item.URL == nil {
		return "", fmt.Errorf("nil URL: %w", pkgerrors.ErrDownloadFailed)
	}
	if opts.Dir == "" {
		return "", fmt.Errorf("download dir cannot be empty: %w", pkgerrors.ErrFilesystem)
	}
	if err := os.MkdirAll(opts.Dir, fsutil.DirModeDefault); err != nil {
		return "", fmt.Errorf("could not create download dir: %w: %w", pkgerrors.ErrFilesystem, err)
	}

	filename := selectFilename(item)
	absPath := filepath.Join(opts.Dir, filename)

	resp, err := m.doRequest(ctx, item)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	tmpPath, err := writeBodyToTemp(resp, opts.Dir)
	if err != nil {
		return "", err
	}
	if err := finalizeFile(tmpPath, absPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", err
	}
	return absPath, nil
}

func selectFilename(item Item) string {
	if item.Filename != "" {
		return item.Filename
	}
	if base := path.Base(item.URL.Path); base != "." && base != "/" {
		return base
	}
	return "download"
}

func (m *ManagerImpl) doRequest(ctx context.Context, item Item) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, item.URL.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w: %w", pkgerrors.ErrDownloadFailed, err)
	}
	req.Header.Set("User-Agent", m.userAgent)
	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", pkgerrors.ErrDownloadFailed, err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d: %w", resp.StatusCode, pkgerrors.ErrDownloadFailed)
	}
	return resp, nil
}

func writeBodyToTemp(resp *http.Response, dir string) (string, error) {
	tmp, err := os.CreateTemp(dir, "dl-*.tmp")
	if err != nil {
		return "", fmt.Errorf("could not create temp file: %w: %w", pkgerrors.ErrFilesystem, err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("could not read response body: %w: %w", pkgerrors.ErrDownloadFailed, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("could not sync file: %w: %w", pkgerrors.ErrFilesystem, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("could not close file: %w: %w", pkgerrors.ErrFilesystem, err)
	}
	return tmpPath, nil
}

func finalizeFile(tmpPath, absPath string) error {
	if err := fsutil.Move(tmpPath, absPath); err != nil {
		return fmt.Errorf("could not finalize file: %w: %w", pkgerrors.ErrFilesystem, err)
	}
	if err := os.Chmod(absPath, fsutil.FileModeSecure); err != nil {
		return fmt.Errorf("could not set permissions: %w: %w", pkgerrors.ErrFilesystem, err)
	}
	return nil
}
