package cli

import (
	"github.com/ariel-frischer/webhook-notifier/internal/cli/shared"
)

// Exit codes for the webhook-notifier CLI (re-exported from shared)
const (
	// ExitSuccess indicates successful command execution
	ExitSuccess = shared.ExitSuccess

	// ExitValidationFailed indicates invalid input or configuration
	ExitValidationFailed = shared.ExitValidationFailed

	// ExitDeliveryFailed indicates at least one test delivery failed
	ExitDeliveryFailed = shared.ExitDeliveryFailed

	// ExitInvalidArguments indicates invalid command arguments
	ExitInvalidArguments = shared.ExitInvalidArguments

	// ExitMissingDependencies indicates required dependencies are missing
	ExitMissingDependencies = shared.ExitMissingDependency
)

// NewExitError creates a new exit error with the given code (re-exported from shared).
func NewExitError(code int) error {
	return shared.NewExitError(code)
}

// ExitCode returns the exit code from an error (re-exported from shared).
func ExitCode(err error) int {
	return shared.ExitCode(err)
}
