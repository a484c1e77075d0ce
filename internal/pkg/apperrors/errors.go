package apperrors

import (
	"errors"
	"fmt"
)

// Standard application errors
var (
	// ErrUnknownChain is returned when the chain identifier matches no registered alias or chain ID.
	ErrUnknownChain = errors.New("unknown chain")

	// ErrMissingAPIKey is returned when the environment variable holding the chain's API key is unset.
	ErrMissingAPIKey = errors.New("explorer API key not set")

	// ErrInvalidAddress is returned when the contract address is not a valid hex address.
	ErrInvalidAddress = errors.New("invalid contract address")

	// ErrNetwork is returned when the explorer request fails at the transport or HTTP level.
	ErrNetwork = errors.New("explorer request failed")

	// ErrExplorerRejected is returned when the explorer answers 200 but signals an error in the envelope.
	ErrExplorerRejected = errors.New("explorer rejected request")

	// ErrMalformedEnvelope is returned when the explorer response body cannot be decoded.
	ErrMalformedEnvelope = errors.New("malformed explorer response")

	// ErrEmptySource is returned when the response carries no source files.
	ErrEmptySource = errors.New("contract source is empty")

	// ErrUnsafePath is returned when a source file path would escape the project root.
	ErrUnsafePath = errors.New("unsafe source file path")

	// ErrPathExists is returned when the destination already exists and is not empty.
	ErrPathExists = errors.New("destination path already exists")

	// ErrInitFailed is returned when the project initialization tool exits non-zero.
	ErrInitFailed = errors.New("project initialization failed")
)

// ExplorerRejectedError carries the explorer's own error message and detail.
type ExplorerRejectedError struct {
	Message string
	Detail  string
}

func (e *ExplorerRejectedError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("explorer rejected request: %s - %s", e.Message, e.Detail)
	}
	return fmt.Sprintf("explorer rejected request: %s", e.Message)
}

func (e *ExplorerRejectedError) Unwrap() error { return ErrExplorerRejected }

// UnsafePathError names the offending path from the payload.
type UnsafePathError struct {
	Path string
}

func (e *UnsafePathError) Error() string {
	return fmt.Sprintf("unsafe source file path %q", e.Path)
}

func (e *UnsafePathError) Unwrap() error { return ErrUnsafePath }

// InitFailedError carries the initialization tool's exit code and stderr.
type InitFailedError struct {
	ExitCode int
	Stderr   string
}

func (e *InitFailedError) Error() string {
	return fmt.Sprintf("project initialization failed with exit code %d: %s", e.ExitCode, e.Stderr)
}

func (e *InitFailedError) Unwrap() error { return ErrInitFailed }
