// Package errors defines the error kinds returned by protoc-fetcher and small
// helpers for attaching context to them.
package errors

import (
	"fmt"
	"strings"
)

// Fetch error kinds.
var (
	// ErrUnsupportedPlatform is returned when no protoc release exists for the OS/architecture pair.
	ErrUnsupportedPlatform = fmt.Errorf("unsupported platform")
	// ErrDownloadFailed is returned for transport failures and non-200 responses.
	ErrDownloadFailed = fmt.Errorf("download failed")
	// ErrExtraction is returned when the release archive cannot be read or unpacked.
	ErrExtraction = fmt.Errorf("archive extraction failed")
	// ErrMissingBinary is returned when the archive unpacked but bin/protoc is not where it should be.
	ErrMissingBinary = fmt.Errorf("protoc binary missing from archive")
	// ErrFilesystem covers directory creation, permission and path failures.
	ErrFilesystem = fmt.Errorf("filesystem error")
	// ErrInvalidArgument is returned for an empty version or output directory.
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

// Config errors.
var (
	ErrEmptyConfigPath     = fmt.Errorf("config file path cannot be empty")
	ErrInvalidConfigPath   = fmt.Errorf("invalid config file path")
	ErrConfigParse         = fmt.Errorf("failed to parse config")
	ErrConfigValidation    = fmt.Errorf("invalid configuration")
	ErrConfigEncode        = fmt.Errorf("failed to encode config")
	ErrConfigDirectory     = fmt.Errorf("failed to create config directory")
	ErrConfigFileCreate    = fmt.Errorf("failed to create config file")
	ErrConfigFileRename    = fmt.Errorf("failed to rename temporary config file")
	ErrConfigFileExists    = fmt.Errorf("configuration file already exists (use --force to overwrite)")
	ErrHTTPTimeoutNegative = fmt.Errorf("http_timeout cannot be negative")
	ErrInvalidLogLevel     = fmt.Errorf("invalid log level")
	ErrInvalidLogFormat    = fmt.Errorf("invalid log format")
	ErrInvalidOSValue      = fmt.Errorf("invalid OS value")
	ErrInvalidArchValue    = fmt.Errorf("invalid architecture value")
)

// FetchError describes a failed fetch. Kind is one of the fetch error kinds
// above; URL and Path are set when they were known at the point of failure.
type FetchError struct {
	Kind    error
	Version string
	URL     string
	Path    string
	Err     error
}

func (e *FetchError) Error() string {
	var b strings.Builder
	b.WriteString("protoc")
	if e.Version != "" {
		b.WriteString(" ")
		b.WriteString(e.Version)
	}
	b.WriteString(": ")
	b.WriteString(e.Kind.Error())
	if e.URL != "" {
		fmt.Fprintf(&b, " (url %s)", e.URL)
	}
	if e.Path != "" {
		fmt.Fprintf(&b, " (path %s)", e.Path)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// ErrInvalidOSValueWithDetails is a helper to create a wrapped error with the invalid value and valid options.
func ErrInvalidOSValueWithDetails(value string, validOS []string) error {
	return fmt.Errorf("%w: %s. Valid values are: %v", ErrInvalidOSValue, value, validOS)
}

// ErrInvalidArchValueWithDetails is a helper to create a wrapped error with the invalid value and valid options.
func ErrInvalidArchValueWithDetails(value string, validArch []string) error {
	return fmt.Errorf("%w: %s. Valid values are: %v", ErrInvalidArchValue, value, validArch)
}

// ErrInvalidLogLevelWithDetails is a helper to create a wrapped error with the invalid level and valid options.
func ErrInvalidLogLevelWithDetails(level string) error {
	return fmt.Errorf("%w: '%s', must be one of: debug, info, warn, error", ErrInvalidLogLevel, level)
}

// ErrInvalidLogFormatWithDetails is a helper to create a wrapped error with the invalid format.
func ErrInvalidLogFormatWithDetails(format string) error {
	return fmt.Errorf("%w: '%s', must be one of: text, json", ErrInvalidLogFormat, format)
}
