// Package errors provides structured error types for better observability
// and programmatic error handling across the application.
//
// Probe-local failures are classified with one of the probe codes
// (ErrCodeToolUnavailable, ErrCodeToolExecution, ErrCodeParse, ErrCodeOSQuery)
// and absorbed into the probe result. Only ErrCodeIO and ErrCodeInvalidRequest
// are expected to reach a caller of the diagnostic run.
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeToolExecution,
//	    "smartctl scan failed",
//	    runErr,
//	    map[string]any{
//	        "command":  "smartctl",
//	        "exitCode": 2,
//	    },
//	)
package errors
