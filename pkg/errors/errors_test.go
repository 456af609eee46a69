package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeToolUnavailable, "smartctl not found")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err.Code != ErrCodeToolUnavailable {
		t.Errorf("expected code %s, got %s", ErrCodeToolUnavailable, err.Code)
	}
	if err.Message != "smartctl not found" {
		t.Errorf("expected message 'smartctl not found', got %s", err.Message)
	}
	if err.Cause != nil {
		t.Errorf("expected nil cause, got %v", err.Cause)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("permission denied")
	err := Wrap(ErrCodeOSQuery, "failed to read /proc/modules", cause)

	if err.Code != ErrCodeOSQuery {
		t.Errorf("expected code %s, got %s", ErrCodeOSQuery, err.Code)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected cause to be wrapped")
	}
}

func TestWrapWithContext(t *testing.T) {
	cause := errors.New("exit status 2")
	ctx := map[string]any{
		"command":  "smartctl",
		"exitCode": 2,
	}

	err := WrapWithContext(ErrCodeToolExecution, "scan failed", cause, ctx)

	if err.Code != ErrCodeToolExecution {
		t.Errorf("expected code %s, got %s", ErrCodeToolExecution, err.Code)
	}
	if err.Context == nil {
		t.Fatal("expected context to be set")
	}
	if err.Context["command"] != "smartctl" {
		t.Errorf("expected command to be smartctl")
	}
}

func TestError(t *testing.T) {
	tests := []struct {
		name     string
		err      *StructuredError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(ErrCodeNotFound, "not found"),
			expected: "[NOT_FOUND] not found",
		},
		{
			name:     "error with cause",
			err:      Wrap(ErrCodeIO, "write failed", errors.New("disk full")),
			expected: "[IO_ERROR] write failed: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"structured", New(ErrCodeParse, "bad json"), ErrCodeParse},
		{"wrapped with fmt", fmt.Errorf("outer: %w", New(ErrCodeTimeout, "slow")), ErrCodeTimeout},
		{"plain error", errors.New("boom"), ErrCodeInternal},
		{"nil", nil, ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestIsCode(t *testing.T) {
	inner := New(ErrCodeCancelled, "cancelled")
	outer := Wrap(ErrCodeToolExecution, "smartctl interrupted", inner)

	if !IsCode(outer, ErrCodeToolExecution) {
		t.Error("expected outer code to match")
	}
	if !IsCode(outer, ErrCodeCancelled) {
		t.Error("expected inner code to match")
	}
	if IsCode(outer, ErrCodeIO) {
		t.Error("unexpected IO code match")
	}
	if IsCode(errors.New("plain"), ErrCodeIO) {
		t.Error("plain error should not match any code")
	}
}

func TestErrorCodes(t *testing.T) {
	codes := []ErrorCode{
		ErrCodeToolUnavailable,
		ErrCodeToolExecution,
		ErrCodeParse,
		ErrCodeOSQuery,
		ErrCodeIO,
		ErrCodeTimeout,
		ErrCodeCancelled,
		ErrCodeNotFound,
		ErrCodeInternal,
		ErrCodeInvalidRequest,
		ErrCodeRateLimitExceeded,
		ErrCodeUnavailable,
	}

	seen := make(map[ErrorCode]bool)
	for _, code := range codes {
		if string(code) == "" {
			t.Errorf("error code should not be empty: %v", code)
		}
		if seen[code] {
			t.Errorf("duplicate error code: %s", code)
		}
		seen[code] = true
	}
}
