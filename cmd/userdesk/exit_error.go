package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/open-sspm/userdesk/internal/directory"
)

const (
	exitCodeFailure = 1
	// exitCodeRejected: the directory refused the request (bad credentials, unknown user).
	exitCodeRejected = 3
	// exitCodeUnavailable: the directory failed or could not be reached.
	exitCodeUnavailable = 4
	exitCodeCanceled    = 130

	reasonRejected    = "directory_rejected"
	reasonUnavailable = "directory_unavailable"
)

type exitError struct {
	code   int
	err    error
	reason string
	silent bool
}

func (e *exitError) Error() string {
	if e == nil {
		return ""
	}
	if e.err != nil {
		return e.err.Error()
	}
	return fmt.Sprintf("exit %d", e.code)
}

func (e *exitError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}

// directoryExitError gives a failed directory call its own exit status.
// Cancellation is passed through untouched.
func directoryExitError(err error) error {
	if err == nil || errors.Is(err, context.Canceled) {
		return err
	}
	var apiErr *directory.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode >= http.StatusBadRequest && apiErr.StatusCode < http.StatusInternalServerError {
		return &exitError{code: exitCodeRejected, err: err, reason: reasonRejected}
	}
	return &exitError{code: exitCodeUnavailable, err: err, reason: reasonUnavailable}
}

// plainMessage is the one-line error printed by interactive commands.
// Directory failures show what the service said rather than the request URL.
func plainMessage(err error) string {
	var apiErr *directory.APIError
	if !errors.As(err, &apiErr) {
		return err.Error()
	}
	if apiErr.Message != "" {
		return fmt.Sprintf("%s: %s", apiErr.Operation, apiErr.Message)
	}
	return fmt.Sprintf("%s: %s", apiErr.Operation, apiErr.Status)
}
