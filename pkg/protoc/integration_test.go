package protoc

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/glorpus-work/protoc-fetcher/pkg/archive"
	"github.com/glorpus-work/protoc-fetcher/pkg/download"
	pkgerrors "github.com/glorpus-work/protoc-fetcher/pkg/errors"
	"github.com/glorpus-work/protoc-fetcher/test/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServerFetcher(t *testing.T) (*Fetcher, *testutil.ReleaseServer) {
	t.Helper()
	server := testutil.NewReleaseServer(t)
	dl := download.NewManager(10*time.Second, "").WithHTTPClient(server.Client())
	f := New(dl, archive.NewManager())
	f.Platform = linuxAMD64
	return f, server
}

func TestFetch_EndToEnd(t *testing.T) {
	f, server := newServerFetcher(t)
	server.AddProtocRelease(t, "31.1", "linux-x86_64")
	outDir := filepath.Join(t.TempDir(), "out")

	path, err := f.Fetch(context.Background(), "31.1", outDir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(outDir, "protoc-31.1", "bin", "protoc"), path)
	assert.Equal(t, []string{
		"https://github.com/protocolbuffers/protobuf/releases/download/v31.1/protoc-31.1-linux-x86_64.zip",
	}, server.Requests())
	assert.FileExists(t, filepath.Join(outDir, "protoc-31.1", "include", "google", "protobuf", "any.proto"))
	assert.NoFileExists(t, filepath.Join(outDir, "protoc-31.1-linux-x86_64.zip"))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.NotZero(t, info.Mode().Perm()&0o100, "owner execute bit must be set")
	}

	again, err := f.Fetch(context.Background(), "31.1", outDir)
	require.NoError(t, err)
	assert.Equal(t, path, again)
	assert.Len(t, server.Requests(), 1, "second fetch must not hit the network")
}

func TestFetch_EndToEnd_NotFound(t *testing.T) {
	f, server := newServerFetcher(t)
	outDir := t.TempDir()

	_, err := f.Fetch(context.Background(), "0.0.0", outDir)
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrDownloadFailed)
	assert.Contains(t, err.Error(), "404")
	assert.Len(t, server.Requests(), 1)

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFetch_EndToEnd_CorruptArchive(t *testing.T) {
	f, server := newServerFetcher(t)
	server.AddRaw(testutil.AssetKey("31.1", "linux-x86_64"), []byte("<html>not a zip</html>"))
	outDir := t.TempDir()

	_, err := f.Fetch(context.Background(), "31.1", outDir)
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrExtraction)
	assert.NoFileExists(t, filepath.Join(outDir, "protoc-31.1", "bin", "protoc"))
}

func TestFetch_EndToEnd_ArchiveWithoutBinary(t *testing.T) {
	f, server := newServerFetcher(t)
	server.AddRelease(t, "31.1", "linux-x86_64", map[string]string{
		"protoc/bin/protoc": testutil.ProtocScript("31.1"),
	})
	outDir := t.TempDir()

	_, err := f.Fetch(context.Background(), "31.1", outDir)
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrMissingBinary)
	assert.NoFileExists(t, filepath.Join(outDir, "protoc-31.1", "bin", "protoc"))
}

func TestFetch_EndToEnd_VersionsAreSeparate(t *testing.T) {
	f, server := newServerFetcher(t)
	server.AddProtocRelease(t, "30.2", "linux-x86_64")
	server.AddProtocRelease(t, "31.1", "linux-x86_64")
	outDir := t.TempDir()

	p1, err := f.Fetch(context.Background(), "30.2", outDir)
	require.NoError(t, err)
	p2, err := f.Fetch(context.Background(), "31.1", outDir)
	require.NoError(t, err)

	assert.NotEqual(t, p1, p2)
	assert.Len(t, server.Requests(), 2)
}

func TestBinaryVersion(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("the stand-in protoc is a shell script")
	}
	f, server := newServerFetcher(t)
	server.AddProtocRelease(t, "31.1", "linux-x86_64")

	path, err := f.Fetch(context.Background(), "31.1", t.TempDir())
	require.NoError(t, err)

	version, err := BinaryVersion(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "libprotoc 31.1", version)
}

func TestBinaryVersion_Missing(t *testing.T) {
	_, err := BinaryVersion(context.Background(), filepath.Join(t.TempDir(), "protoc"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--version")
}
