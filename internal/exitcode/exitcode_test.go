package exitcode

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/felixgeelhaar/forecast/internal/errors"
)

func TestFor(t *testing.T) {
	cycle := errors.NewValidation(errors.ErrCodeGraphCycle, "Circular dependency found A -> B -> A", "circular dependency found", "A")

	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"nil", nil, Success},
		{"validation error", cycle, ValidationFailed},
		{"located validation error", cycle.Rethrow("internalizing tasks", nil), ValidationFailed},
		{"wrapped validation error", fmt.Errorf("loading project: %w", cycle), ValidationFailed},
		{"missing schedule", errors.NewScheduleMissingError("Ops"), ConfigurationError},
		{"missing file", errors.NewFileNotFoundError("project.yaml"), ConfigurationError},
		{"cancelled", fmt.Errorf("simulate: %w", context.Canceled), Interrupted},
		{"unknown flag", stderrors.New("unknown flag: --bogus"), UsageError},
		{"bad flag value", stderrors.New(`invalid argument "x" for "--iterations" flag`), UsageError},
		{"required flag", stderrors.New(`required flag(s) "file" not set`), UsageError},
		{"arguments", stderrors.New("accepts 0 arg(s), received 1"), UsageError},
		{"other", stderrors.New("something broke"), GeneralError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, For(tt.err))
		})
	}
}

func TestCodeString(t *testing.T) {
	assert.Equal(t, "project validation failed", ValidationFailed.String())
	assert.Equal(t, "interrupted", Interrupted.String())
	assert.Equal(t, "unknown error", Code(99).String())
	assert.Equal(t, 130, int(Interrupted))
}
