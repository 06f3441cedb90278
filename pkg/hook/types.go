package hook

import "context"

// Type names the point in a fetch at which a hook runs.
type Type string

// Supported hook types.
const (
	PreFetch  Type = "pre-fetch"
	PostFetch Type = "post-fetch"
)

// Types returns every supported hook type in execution order.
func Types() []Type {
	return []Type{PreFetch, PostFetch}
}

// Hook represents a hook script with its type and content.
type Hook struct {
	Type    Type
	Content string
}

// Context contains information passed to hooks.
type Context struct {
	Version    string
	OS         string
	Arch       string
	OutDir     string
	BinaryPath string
	// CacheHit is true when the binary was already present before the fetch.
	CacheHit bool
	Vars     map[string]interface{}
}

// Manager defines the interface for managing hooks.
type Manager interface {
	// Execute runs the hook of the given type, if one is registered.
	Execute(ctx context.Context, hookType Type, hc Context) error

	AddHook(hook Hook) error
	RemoveHook(hookType Type) error
	HasHook(hookType Type) bool
}
