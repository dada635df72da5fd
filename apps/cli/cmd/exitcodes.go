package cmd

import (
	"errors"
	"net"

	"github.com/abdul-hamid-achik/hitpull/packages/core/requests"
)

// Exit codes for hitpull CLI
const (
	// ExitSuccess indicates the batch completed
	ExitSuccess = 0

	// ExitBatchFailure indicates a response was rejected or could not be routed
	ExitBatchFailure = 1

	// ExitRequestError indicates a request template failed to normalize
	ExitRequestError = 2

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitNetworkError indicates a network/connection error
	ExitNetworkError = 4

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

// exitError attaches an exit code to an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withExitCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}

	if kind, ok := requests.KindOf(err); ok {
		switch kind {
		case requests.KindHTTPError, requests.KindInvalidJSON:
			return ExitBatchFailure
		default:
			return ExitRequestError
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return ExitNetworkError
	}

	return ExitBatchFailure
}
