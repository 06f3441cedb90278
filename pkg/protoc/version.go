package protoc

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// BinaryVersion runs "<path> --version" and returns its trimmed output,
// e.g. "libprotoc 31.1".
func BinaryVersion(ctx context.Context, path string) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, "--version")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("running %s --version: %w: %s", path, err, msg)
		}
		return "", fmt.Errorf("running %s --version: %w", path, err)
	}
	return strings.TrimSpace(stdout.String()), nil
}
