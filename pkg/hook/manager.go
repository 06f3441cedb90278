// Package hook runs user-supplied Tengo scripts before and after a fetch.
package hook

import (
	"context"
	"os"

	"github.com/glorpus-work/protoc-fetcher/pkg/errors"
)

// DefaultManager is the default implementation of Manager.
type DefaultManager struct {
	executor *TengoExecutor
}

// NewManager creates a new hook manager.
func NewManager() *DefaultManager {
	return &DefaultManager{
		executor: NewTengoExecutor(),
	}
}

// Execute runs the specified hook type with the given context.
func (m *DefaultManager) Execute(ctx context.Context, hookType Type, hc Context) error {
	if !m.HasHook(hookType) {
		return nil
	}
	if hc.Vars == nil {
		hc.Vars = make(map[string]interface{})
	}
	return m.executor.Execute(ctx, hookType, hc)
}

// AddHook adds a new hook, replacing any hook of the same type.
func (m *DefaultManager) AddHook(hook Hook) error {
	if err := validateType(hook.Type); err != nil {
		return err
	}
	m.executor.AddScript(hook.Type, hook.Content)
	return nil
}

// RemoveHook removes a hook of the specified type.
func (m *DefaultManager) RemoveHook(hookType Type) error {
	if err := validateType(hookType); err != nil {
		return err
	}
	m.executor.RemoveScript(hookType)
	return nil
}

// HasHook checks if a hook of the specified type exists.
func (m *DefaultManager) HasHook(hookType Type) bool {
	return m.executor.HasScript(hookType)
}

// LoadFile registers the script at path as the hook for hookType.
// An empty path is ignored.
func (m *DefaultManager) LoadFile(hookType Type, path string) error {
	if path == "" {
		return nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(ErrHookLoad, "%s: %v", path, err)
	}
	return m.AddHook(Hook{Type: hookType, Content: string(content)})
}

func validateType(hookType Type) error {
	switch hookType {
	case "":
		return ErrHookTypeEmpty
	case PreFetch, PostFetch:
		return nil
	default:
		return ErrUnsupportedHookType(hookType)
	}
}
