package cmd

import (
	"errors"

	"github.com/zjrosen/conceptnav/internal/artefact"
	"github.com/zjrosen/conceptnav/internal/registry"
)

// Process exit codes.
const (
	ExitSuccess           = 0
	ExitGeneralError      = 1
	ExitMalformedResponse = 2
	ExitInvalidBundle     = 3
	ExitConfigError       = 10
)

// ErrInvalidConfig wraps configuration load and validation failures.
var ErrInvalidConfig = errors.New("invalid configuration")

// ExitCodeForError returns the exit code for err. Unclassified errors map to
// ExitGeneralError.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, registry.ErrMalformedResponse):
		return ExitMalformedResponse
	case errors.Is(err, artefact.ErrInvalidBundle):
		return ExitInvalidBundle
	}
	return ExitGeneralError
}
