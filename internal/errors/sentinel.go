package errors

import "errors"

// Sentinel errors for known conditions.
var (
	// ErrValidation indicates a descriptor or config schema validation failure.
	ErrValidation = errors.New("validation error")

	// ErrNotFound indicates a module, descriptor, or file was not found.
	ErrNotFound = errors.New("not found")

	// ErrPermission indicates a file could not be accessed.
	ErrPermission = errors.New("permission denied")

	// ErrWatch indicates the filesystem watcher failed.
	ErrWatch = errors.New("watch error")
)

// Exit codes for the modgraph CLI.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError = 1

	// ExitValidationError indicates a descriptor or config failed validation.
	ExitValidationError = 2

	// ExitPermissionDenied indicates a file could not be accessed.
	ExitPermissionDenied = 4

	// ExitNotFound indicates a module or file was not found.
	ExitNotFound = 5
)
