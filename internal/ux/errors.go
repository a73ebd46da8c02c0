package ux

import (
	stderrors "errors"
	"strings"

	"github.com/felixgeelhaar/forecast/internal/errors"
)

// RenderError formats err for the terminal. Validation errors list the
// locations they passed through, outermost first, and configuration errors
// their suggestions.
func RenderError(err error, s Styles) string {
	if err == nil {
		return ""
	}

	var b strings.Builder

	var verr *errors.ValidationError
	var ferr *errors.ForecastError
	switch {
	case stderrors.As(err, &ferr) && !isValidationCause(ferr):
		b.WriteString(s.Error.Render("✗ [" + string(ferr.Code) + "] " + ferr.Message))
		if ferr.Cause != nil {
			b.WriteString(": " + ferr.Cause.Error())
		}
		if len(ferr.Suggestions) > 0 {
			b.WriteString("\n\n" + s.Header.Render("Suggestions:"))
			for _, suggestion := range ferr.Suggestions {
				b.WriteString("\n  • " + suggestion)
			}
		}
	case stderrors.As(err, &verr):
		b.WriteString(s.Error.Render("✗ [" + string(verr.Code) + "] " + verr.Cause))
		for _, frame := range verr.Trail() {
			b.WriteString("\n  " + s.Muted.Render(frame))
		}
	default:
		b.WriteString(s.Error.Render("✗ " + err.Error()))
	}

	return b.String()
}

// isValidationCause reports whether ferr only wraps a validation error, in
// which case the validation error is the more useful thing to show.
func isValidationCause(ferr *errors.ForecastError) bool {
	return ferr.Cause != nil && errors.IsValidation(ferr.Cause)
}
