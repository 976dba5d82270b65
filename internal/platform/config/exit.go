package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
)

// Process exit codes used by the command-line tools.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// UsageError marks a failure caused by invalid flags or environment.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string { return e.Err.Error() }

func (e *UsageError) Unwrap() error { return e.Err }

// Usage wraps err as a UsageError. A nil err stays nil.
func Usage(err error) error {
	if err == nil {
		return nil
	}
	var usage *UsageError
	if errors.As(err, &usage) {
		return err
	}
	return &UsageError{Err: err}
}

// ExitCode maps a command error to a process exit code. Help requests exit
// cleanly.
func ExitCode(err error) int {
	var usage *UsageError
	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
		return ExitOK
	case errors.As(err, &usage):
		return ExitUsage
	default:
		return ExitFailure
	}
}

// Exit reports err on w and terminates the process with ExitCode(err).
func Exit(w io.Writer, err error) {
	code := ExitCode(err)
	if code != ExitOK && w != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
	}
	os.Exit(code)
}
