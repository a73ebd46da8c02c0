// Package exitcode maps command failures to process exit codes.
package exitcode

import (
	"context"
	stderrors "errors"
	"os"
	"strings"

	"github.com/felixgeelhaar/forecast/internal/errors"
)

// Code is a process exit status.
type Code int

const (
	Success      Code = 0
	GeneralError Code = 1
	// UsageError covers bad flags, arguments and unknown commands.
	UsageError Code = 2
	// ValidationFailed means the project document was rejected.
	ValidationFailed Code = 3
	// ConfigurationError covers unreadable input, bad configuration and
	// resources without a schedule.
	ConfigurationError Code = 4
	Interrupted        Code = 130
)

var descriptions = map[Code]string{
	Success:            "success",
	GeneralError:       "general error",
	UsageError:         "usage error (invalid flags or arguments)",
	ValidationFailed:   "project validation failed",
	ConfigurationError: "configuration error",
	Interrupted:        "interrupted",
}

func (c Code) String() string {
	if d, ok := descriptions[c]; ok {
		return d
	}
	return "unknown error"
}

// Exit terminates the process with c.
func (c Code) Exit() {
	os.Exit(int(c))
}

// cobra and pflag report usage problems as plain errors.
var usageMarkers = []string{
	"invalid argument",
	"unknown flag",
	"unknown shorthand flag",
	"unknown command",
	"required flag",
	"accepts ",
}

// For classifies err. Validation wins over configuration so a rejected
// project reports 3 even when wrapped.
func For(err error) Code {
	switch {
	case err == nil:
		return Success
	case errors.IsValidation(err):
		return ValidationFailed
	case stderrors.As(err, new(*errors.ForecastError)):
		return ConfigurationError
	case stderrors.Is(err, context.Canceled):
		return Interrupted
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range usageMarkers {
		if strings.Contains(msg, marker) {
			return UsageError
		}
	}
	return GeneralError
}
