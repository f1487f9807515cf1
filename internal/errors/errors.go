// Package errors provides domain-specific error types and sentinel errors
// for the deployment toolchain.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrCLINotFound indicates the render CLI binary is not on PATH.
	ErrCLINotFound = errors.New("render CLI not found in PATH")

	// ErrDeployTimeout indicates the readiness wait hit its terminal timeout.
	ErrDeployTimeout = errors.New("deploy did not become ready before timeout")

	// ErrServiceNotReady indicates the service reported a non-live state.
	ErrServiceNotReady = errors.New("service not ready")

	// ErrHealthCheckFailed indicates the post-deploy health probe failed.
	ErrHealthCheckFailed = errors.New("health check failed")

	// ErrNotFound indicates a requested remote object was not found.
	ErrNotFound = errors.New("resource not found")
)

// MissingVarError reports a required environment variable that is unset
// or empty. The message names the variable so the operator knows exactly
// what to export.
type MissingVarError struct {
	Var string
}

func (e *MissingVarError) Error() string {
	return fmt.Sprintf("required environment variable %s is not set", e.Var)
}

// NewMissingVar creates a MissingVarError for the named variable.
func NewMissingVar(name string) *MissingVarError {
	return &MissingVarError{Var: name}
}

// IsMissingVar reports whether err is a MissingVarError and returns the
// variable name when it is.
func IsMissingVar(err error) (string, bool) {
	var mv *MissingVarError
	if errors.As(err, &mv) {
		return mv.Var, true
	}
	return "", false
}

// CLIError represents a failed external CLI invocation with enough context
// to diagnose it from logs: the command line, the exit code, and the
// (truncated) combined output.
type CLIError struct {
	Command  string
	Args     []string
	ExitCode int
	Output   string
	Err      error
}

const maxOutputInError = 2048

func (e *CLIError) Error() string {
	out := e.Output
	if len(out) > maxOutputInError {
		out = out[:maxOutputInError] + "... (truncated)"
	}
	out = strings.TrimSpace(out)
	if out != "" {
		return fmt.Sprintf("%s %s failed (exit %d): %v: %s",
			e.Command, strings.Join(e.Args, " "), e.ExitCode, e.Err, out)
	}
	return fmt.Sprintf("%s %s failed (exit %d): %v",
		e.Command, strings.Join(e.Args, " "), e.ExitCode, e.Err)
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError for a failed command invocation.
func NewCLIError(command string, args []string, exitCode int, output string, err error) *CLIError {
	return &CLIError{
		Command:  command,
		Args:     args,
		ExitCode: exitCode,
		Output:   output,
		Err:      err,
	}
}

// ProbeError represents an HTTP health probe failure with the probed URL
// and, when a response was received, its status code.
type ProbeError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *ProbeError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("probe %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("probe %s: %v", e.URL, e.Err)
}

func (e *ProbeError) Unwrap() error {
	return e.Err
}
