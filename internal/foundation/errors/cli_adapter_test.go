package errors

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: 0,
		},
		{
			name:     "invalid target",
			err:      ValidationError("Pass one of possible target values: chromium, firefox").Build(),
			expected: 1,
		},
		{
			name:     "missing environment",
			err:      ConfigError("missing environment variables").Build(),
			expected: 1,
		},
		{
			name:     "bundle failure",
			err:      BundleError("esbuild failed").Build(),
			expected: 11,
		},
		{
			name:     "wrapped archive failure",
			err:      fmt.Errorf("pack: %w", ArchiveError("zip failed").Build()),
			expected: 11,
		},
		{
			name:     "internal failure",
			err:      InternalError("unexpected").Build(),
			expected: 10,
		},
		{
			name:     "unclassified error",
			err:      &customError{msg: "unknown error"},
			expected: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := adapter.ExitCodeFor(tt.err)
			if got != tt.expected {
				t.Errorf("ExitCodeFor() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{
			name:     "usage errors print their message only",
			err:      ValidationError("Pass one of possible task names: build, watch, pack").Build(),
			contains: "Pass one of possible task names: build, watch, pack",
		},
		{
			name:     "step errors include the cause",
			err:      WrapError(&customError{msg: "disk full"}, CategoryFileSystem, "copy assets").Build(),
			contains: "copy assets: disk full",
		},
		{
			name:     "internal errors are hidden without verbose",
			err:      InternalError("internal issue").Build(),
			contains: "Internal error occurred (use -v for details)",
		},
		{
			name:     "unclassified error",
			err:      &customError{msg: "unknown error"},
			contains: "Error: unknown error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := adapter.FormatError(tt.err)
			if !strings.Contains(got, tt.contains) {
				t.Errorf("FormatError() = %q, want to contain %q", got, tt.contains)
			}
		})
	}

	if got := adapter.FormatError(nil); got != "" {
		t.Errorf("FormatError(nil) = %q, want empty string", got)
	}
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	var out bytes.Buffer
	var code int
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	adapter.WithOutput(&out).WithExit(func(c int) { code = c })

	adapter.HandleError(ConfigError("missing environment variables: TON_WALLET_VERSION").Build())

	if code != ExitUsage {
		t.Errorf("exit code = %d, want %d", code, ExitUsage)
	}
	if got := out.String(); got != "missing environment variables: TON_WALLET_VERSION\n" {
		t.Errorf("stderr = %q", got)
	}
}

// customError is a test helper for unclassified errors
type customError struct {
	msg string
}

func (e *customError) Error() string {
	return e.msg
}
