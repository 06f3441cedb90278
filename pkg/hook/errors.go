package hook

import "fmt"

// Common hook errors.
var (
	// ErrHookTypeEmpty is returned when a hook type is empty.
	ErrHookTypeEmpty = fmt.Errorf("hook type cannot be empty")

	// ErrHookExecution is returned when a script fails to compile or run.
	ErrHookExecution = fmt.Errorf("error executing hook")

	// ErrHookScript is returned when a script reports failure through its err variable.
	ErrHookScript = fmt.Errorf("hook script error")

	// ErrHookLoad is returned when a hook file cannot be read.
	ErrHookLoad = fmt.Errorf("failed to load hook")
)

// ErrUnsupportedHookType is returned for hook types other than pre-fetch and post-fetch.
func ErrUnsupportedHookType(hookType Type) error {
	return fmt.Errorf("unsupported hook type: %s", hookType)
}
