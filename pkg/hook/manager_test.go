package hook_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/glorpus-work/protoc-fetcher/pkg/hook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext() hook.Context {
	return hook.Context{
		Version:    "31.1",
		OS:         "linux",
		Arch:       "amd64",
		OutDir:     "/tmp/out",
		BinaryPath: "/tmp/out/protoc-31.1/bin/protoc",
	}
}

func TestNewManager(t *testing.T) {
	manager := hook.NewManager()
	assert.NotNil(t, manager, "NewManager should return a non-nil manager")
	assert.False(t, manager.HasHook(hook.PostFetch))
}

func TestExecute_NoHookRegistered(t *testing.T) {
	manager := hook.NewManager()
	assert.NoError(t, manager.Execute(context.Background(), hook.PreFetch, testContext()))
}

func TestExecute_SeesFetchContext(t *testing.T) {
	manager := hook.NewManager()
	require.NoError(t, manager.AddHook(hook.Hook{
		Type: hook.PostFetch,
		Content: `
text := import("text")
err := ""
if protocVersion != "31.1" {
	err = "unexpected version " + protocVersion
} else if !text.has_suffix(binaryPath, "/bin/protoc") {
	err = "unexpected binary path " + binaryPath
} else if targetOS != "linux" || targetArch != "amd64" {
	err = "unexpected platform"
} else if hookType != "post-fetch" {
	err = "unexpected hook type"
} else if cacheHit {
	err = "unexpected cache hit"
}
`,
	}))

	assert.NoError(t, manager.Execute(context.Background(), hook.PostFetch, testContext()))
}

func TestExecute_CustomVars(t *testing.T) {
	manager := hook.NewManager()
	require.NoError(t, manager.AddHook(hook.Hook{
		Type:    hook.PreFetch,
		Content: `err := project == "demo" ? "" : "missing project var"`,
	}))

	hc := testContext()
	hc.Vars = map[string]interface{}{"project": "demo"}
	assert.NoError(t, manager.Execute(context.Background(), hook.PreFetch, hc))
}

func TestExecute_ScriptErrors(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		wantErr error
	}{
		{name: "string err", script: `err := "refusing " + protocVersion`, wantErr: hook.ErrHookScript},
		{name: "error value", script: `err := error("boom")`, wantErr: hook.ErrHookScript},
		{name: "compile error", script: `err := `, wantErr: hook.ErrHookExecution},
		{name: "runtime error", script: `x := 1 / 0`, wantErr: hook.ErrHookExecution},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manager := hook.NewManager()
			require.NoError(t, manager.AddHook(hook.Hook{Type: hook.PostFetch, Content: tt.script}))

			err := manager.Execute(context.Background(), hook.PostFetch, testContext())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestExecute_Cancelled(t *testing.T) {
	manager := hook.NewManager()
	require.NoError(t, manager.AddHook(hook.Hook{Type: hook.PreFetch, Content: `for {}`}))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := manager.Execute(ctx, hook.PreFetch, testContext())
	assert.ErrorIs(t, err, hook.ErrHookExecution)
}

func TestAddRemoveHook(t *testing.T) {
	manager := hook.NewManager()

	require.NoError(t, manager.AddHook(hook.Hook{Type: hook.PreFetch, Content: `// Test hook`}))
	assert.True(t, manager.HasHook(hook.PreFetch), "Should have hook after adding")

	require.NoError(t, manager.RemoveHook(hook.PreFetch))
	assert.False(t, manager.HasHook(hook.PreFetch), "Should not have hook after removal")

	assert.ErrorIs(t, manager.AddHook(hook.Hook{Content: "x := 1"}), hook.ErrHookTypeEmpty)
	assert.ErrorIs(t, manager.RemoveHook(""), hook.ErrHookTypeEmpty)
	assert.Error(t, manager.AddHook(hook.Hook{Type: "post-install", Content: "x := 1"}))
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	hookFile := filepath.Join(dir, "post-fetch.tengo")
	require.NoError(t, os.WriteFile(hookFile, []byte(`err := cacheHit ? "" : "expected cache hit"`), 0o644))

	manager := hook.NewManager()
	require.NoError(t, manager.LoadFile(hook.PostFetch, hookFile))
	assert.True(t, manager.HasHook(hook.PostFetch))

	hc := testContext()
	hc.CacheHit = true
	assert.NoError(t, manager.Execute(context.Background(), hook.PostFetch, hc))

	assert.NoError(t, manager.LoadFile(hook.PreFetch, ""))
	assert.False(t, manager.HasHook(hook.PreFetch))

	assert.ErrorIs(t, manager.LoadFile(hook.PreFetch, filepath.Join(dir, "missing.tengo")), hook.ErrHookLoad)
}

func TestTypes(t *testing.T) {
	assert.Equal(t, []hook.Type{hook.PreFetch, hook.PostFetch}, hook.Types())
}
