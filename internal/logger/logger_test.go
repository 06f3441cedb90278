package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// logTo initializes the logger at level and format and returns everything fn logged.
func logTo(t *testing.T, level string, format OutputFormat, fn func()) string {
	t.Helper()
	buf := &bytes.Buffer{}
	SetTestOutput(buf)
	t.Cleanup(UnsetTestOutput)

	logger = nil
	InitLogger(level, format)
	fn()
	return buf.String()
}

func TestTextOutput(t *testing.T) {
	out := logTo(t, "info", FormatText, func() {
		Info("Downloading protoc", Fields{"phase": "downloading", "version": "31.1"})
		Success("Installed protoc", Fields{"path": "/cache/protoc-31.1/bin/protoc"})
	})

	assert.Contains(t, out, `msg="Downloading protoc"`)
	assert.Contains(t, out, "phase=downloading")
	assert.Contains(t, out, "version=31.1")
	assert.Contains(t, out, "path=/cache/protoc-31.1/bin/protoc")
	assert.Contains(t, out, "status=success")
}

func TestJSONOutput(t *testing.T) {
	out := logTo(t, "info", FormatJSON, func() {
		Warn("Version starts with \"v\"", Fields{"version": "v31.1", "cached": false})
	})

	assert.Contains(t, out, `"level":"WARN"`)
	assert.Contains(t, out, `"version":"v31.1"`)
	assert.Contains(t, out, `"cached":false`)
}

func TestLevels(t *testing.T) {
	tests := []struct {
		level    string
		contains []string
		excludes []string
	}{
		{level: "debug", contains: []string{"lookup", "resolved linux-x86_64", "fetching", "slow", "broken"}},
		{level: "info", contains: []string{"fetching", "slow", "broken"}, excludes: []string{"lookup", "resolved"}},
		{level: "warn", contains: []string{"slow", "broken"}, excludes: []string{"fetching"}},
		{level: "error", contains: []string{"broken"}, excludes: []string{"slow"}},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			out := logTo(t, tt.level, FormatText, func() {
				DebugfWithFields(Fields{"cached": true}, "lookup %s", "31.1")
				Debugf("resolved %s", "linux-x86_64")
				Infof("fetching %s", "31.1")
				Warnf("%s download", "slow")
				Error("broken")
			})
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
			for _, notWant := range tt.excludes {
				assert.NotContains(t, out, notWant)
			}
		})
	}
}

func TestSetOutputFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	SetTestOutput(buf)
	defer UnsetTestOutput()

	logger = nil
	InitLogger("debug", FormatText)
	SetOutputFormat(FormatJSON)
	Debug("cache lookup")

	line := strings.TrimSpace(buf.String())
	require.True(t, strings.HasPrefix(line, "{"), "expected a JSON record, got %q", line)
	assert.Contains(t, line, `"level":"DEBUG"`, "level must survive a format switch")
}

func TestGetLogger_InitializesIfNil(t *testing.T) {
	logger = nil
	assert.NotNil(t, GetLogger())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestMergeFields_LaterWins(t *testing.T) {
	attrs := mergeFields(Fields{"phase": "resolved", "version": "31.1"}, Fields{"phase": "done"})
	require.Len(t, attrs, 4)

	got := map[interface{}]interface{}{}
	for i := 0; i < len(attrs); i += 2 {
		got[attrs[i]] = attrs[i+1]
	}
	assert.Equal(t, map[interface{}]interface{}{"phase": "done", "version": "31.1"}, got)
}
