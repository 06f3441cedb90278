package fsutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDir(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
	}{
		{
			name: "creates new directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "newdir")
			},
		},
		{
			name: "creates nested directories",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "protoc-31.1", "bin")
			},
		},
		{
			name: "succeeds when directory already exists",
			setup: func(t *testing.T) string {
				return t.TempDir()
			},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			path := testCase.setup(t)

			require.NoError(t, EnsureDir(path))
			assert.DirExists(t, path)

			if runtime.GOOS != "windows" {
				info, err := os.Stat(path)
				require.NoError(t, err)
				assert.Equal(t, os.FileMode(DirModeDefault), info.Mode().Perm())
			}
		})
	}
}

func TestEnsureDir_FileInTheWay(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	assert.Error(t, EnsureDir(filepath.Join(file, "child")))
}

func TestEnsureFileDir(t *testing.T) {
	target := filepath.Join(t.TempDir(), "a", "b", "archive.zip")

	require.NoError(t, EnsureFileDir(target))
	assert.DirExists(t, filepath.Dir(target))
	assert.NoFileExists(t, target)
}

func TestAppDirs(t *testing.T) {
	if cacheDir, err := GetCacheDir(); err == nil {
		assert.Equal(t, AppName, filepath.Base(cacheDir))
	}
	if configDir, err := GetConfigDir(); err == nil {
		assert.Equal(t, AppName, filepath.Base(configDir))
	}
}
