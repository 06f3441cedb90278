package hook

import (
	"context"
	"sync"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/glorpus-work/protoc-fetcher/pkg/errors"
)

// scriptModules are the tengo standard library modules a hook may import.
var scriptModules = []string{"fmt", "os", "text", "times"}

// TengoExecutor handles the execution of Tengo scripts.
type TengoExecutor struct {
	scripts map[Type]string
	mutex   sync.RWMutex
}

// NewTengoExecutor creates a new Tengo script executor.
func NewTengoExecutor() *TengoExecutor {
	return &TengoExecutor{
		scripts: make(map[Type]string),
	}
}

// Execute runs the script registered for hookType. A script signals failure
// by assigning a non-empty string or an error value to a variable named err.
func (e *TengoExecutor) Execute(ctx context.Context, hookType Type, hc Context) error {
	e.mutex.RLock()
	script, exists := e.scripts[hookType]
	e.mutex.RUnlock()
	if !exists {
		return nil
	}

	s := tengo.NewScript([]byte(script))
	s.SetImports(stdlib.GetModuleMap(scriptModules...))

	_ = s.Add("hookType", string(hookType))
	_ = s.Add("protocVersion", hc.Version)
	_ = s.Add("targetOS", hc.OS)
	_ = s.Add("targetArch", hc.Arch)
	_ = s.Add("outDir", hc.OutDir)
	_ = s.Add("binaryPath", hc.BinaryPath)
	_ = s.Add("cacheHit", hc.CacheHit)
	for k, v := range hc.Vars {
		if err := s.Add(k, v); err != nil {
			return errors.Wrapf(ErrHookExecution, "%s: variable %s: %v", hookType, k, err)
		}
	}

	compiled, err := s.RunContext(ctx)
	if err != nil {
		return errors.Wrapf(ErrHookExecution, "%s: %v", hookType, err)
	}

	errVar := compiled.Get("err")
	if errVar.IsUndefined() {
		return nil
	}
	if scriptErr := errVar.Error(); scriptErr != nil {
		return errors.Wrapf(ErrHookScript, "%s: %v", hookType, scriptErr)
	}
	if msg, ok := errVar.Value().(string); ok && msg != "" {
		return errors.Wrapf(ErrHookScript, "%s: %s", hookType, msg)
	}
	return nil
}

// AddScript adds or updates a script for the specified hook type.
func (e *TengoExecutor) AddScript(hookType Type, script string) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.scripts[hookType] = script
}

// RemoveScript removes the script for the specified hook type.
func (e *TengoExecutor) RemoveScript(hookType Type) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	delete(e.scripts, hookType)
}

// HasScript checks if a script exists for the specified hook type.
func (e *TengoExecutor) HasScript(hookType Type) bool {
	e.mutex.RLock()
	defer e.mutex.RUnlock()
	_, exists := e.scripts[hookType]
	return exists
}
