package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Availability rule errors (RULE-001 to RULE-099)
	ErrCodeRuleSyntax        ErrorCode = "RULE-001"
	ErrCodeRuleTime          ErrorCode = "RULE-002"
	ErrCodeRuleDate          ErrorCode = "RULE-003"
	ErrCodeRuleWindowOrder   ErrorCode = "RULE-004"
	ErrCodeRuleUnschedulable ErrorCode = "RULE-005"

	// Task graph errors (GRAPH-001 to GRAPH-099)
	ErrCodeGraphDuplicate ErrorCode = "GRAPH-001"
	ErrCodeGraphGhost     ErrorCode = "GRAPH-002"
	ErrCodeGraphCycle     ErrorCode = "GRAPH-003"
	ErrCodeGraphTask      ErrorCode = "GRAPH-004"

	// Project errors (PROJECT-001 to PROJECT-099)
	ErrCodeProjectInvalid ErrorCode = "PROJECT-001"

	// Scheduling configuration errors (SCHED-001 to SCHED-099)
	ErrCodeScheduleMissing ErrorCode = "SCHED-001"

	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigInvalid ErrorCode = "CONFIG-001"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileNotFound   ErrorCode = "IO-001"
	ErrCodeFileReadFailed ErrorCode = "IO-002"
	ErrCodeFileUnmarshal  ErrorCode = "IO-005"
)

// Location is one frame of a validation error's location stack.
type Location struct {
	Description string
	Index       string
}

// String renders the frame the way it is shown to users.
func (l Location) String() string {
	if l.Index == "" {
		return "in: " + l.Description
	}
	return fmt.Sprintf("in: %s @ %s", l.Description, l.Index)
}

// ValidationError reports invalid input. It carries the root cause and the
// stack of locations it passed through, innermost first.
type ValidationError struct {
	Code     ErrorCode
	Cause    string
	Location []Location
}

// NewValidation creates a ValidationError with a single location frame.
func NewValidation(code ErrorCode, cause string, description string, index any) *ValidationError {
	return &ValidationError{
		Code:     code,
		Cause:    cause,
		Location: []Location{{Description: description, Index: formatIndex(index)}},
	}
}

// Validationf creates a ValidationError without a location frame.
func Validationf(code ErrorCode, format string, args ...any) *ValidationError {
	return &ValidationError{Code: code, Cause: fmt.Sprintf(format, args...)}
}

// Error renders the location chain outermost first, ending with the cause.
func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Location)+1)
	for i := len(e.Location) - 1; i >= 0; i-- {
		l := e.Location[i]
		if l.Index == "" {
			parts = append(parts, l.Description)
		} else {
			parts = append(parts, l.Description+" @ "+l.Index)
		}
	}
	parts = append(parts, e.Cause)
	return strings.Join(parts, ": ")
}

// Trail returns the displayable location frames, outermost first.
func (e *ValidationError) Trail() []string {
	out := make([]string, 0, len(e.Location))
	for i := len(e.Location) - 1; i >= 0; i-- {
		out = append(out, e.Location[i].String())
	}
	return out
}

// Format renders the cause followed by the trail, one frame per line.
func (e *ValidationError) Format() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Cause))
	for _, frame := range e.Trail() {
		b.WriteString("\n  ")
		b.WriteString(frame)
	}
	return b.String()
}

// Rethrow returns a copy of the error with an outer location frame pushed.
func (e *ValidationError) Rethrow(description string, index any) *ValidationError {
	location := make([]Location, len(e.Location), len(e.Location)+1)
	copy(location, e.Location)
	location = append(location, Location{Description: description, Index: formatIndex(index)})
	return &ValidationError{Code: e.Code, Cause: e.Cause, Location: location}
}

// Locate pushes a location frame when err is a ValidationError and returns
// any other error unchanged.
func Locate(err error, description string, index any) error {
	if err == nil {
		return nil
	}
	var verr *ValidationError
	if stderrors.As(err, &verr) {
		return verr.Rethrow(description, index)
	}
	return err
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var verr *ValidationError
	return stderrors.As(err, &verr)
}

func formatIndex(index any) string {
	switch v := index.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// ForecastError represents a configuration or environment fault with code,
// suggestions, and an optional cause. It is not a validation failure.
type ForecastError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	Cause       error
}

// Error implements the error interface
func (e *ForecastError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *ForecastError) Unwrap() error {
	return e.Cause
}

// New creates a new ForecastError
func New(code ErrorCode, message string) *ForecastError {
	return &ForecastError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new ForecastError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *ForecastError {
	return &ForecastError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *ForecastError) WithSuggestion(suggestion string) *ForecastError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *ForecastError) WithSuggestions(suggestions ...string) *ForecastError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// NewScheduleMissingError reports a task resource without an availability schedule.
func NewScheduleMissingError(resource string) *ForecastError {
	return New(ErrCodeScheduleMissing, fmt.Sprintf("no availability schedule for resource: %s", resource)).
		WithSuggestion(fmt.Sprintf("Add a 'schedules.%s' entry with at least one recurring include rule", resource)).
		WithSuggestion("Check the resource name on the task for typos")
}

// NewFileNotFoundError creates a file not found error
func NewFileNotFoundError(path string) *ForecastError {
	return New(ErrCodeFileNotFound, fmt.Sprintf("file not found: %s", path)).
		WithSuggestion("Check if the file path is correct").
		WithSuggestion("Verify the file exists and you have read permissions")
}

// NewFileUnmarshalError creates an unmarshal error
func NewFileUnmarshalError(path string, format string, cause error) *ForecastError {
	return Wrap(ErrCodeFileUnmarshal, fmt.Sprintf("failed to parse %s file: %s", format, path), cause).
		WithSuggestion("Check the file syntax and format").
		WithSuggestion(fmt.Sprintf("Ensure the file is valid %s", format))
}
