package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to the errors Handler returns.
const (
	TextCodeValidation = "COMMAND_VALIDATION_FAILED"
	TextCodeCanceled   = "COMMAND_CONTEXT_CANCELED"
	TextCodeTimeout    = "COMMAND_CONTEXT_TIMEOUT"
	TextCodeContext    = "COMMAND_CONTEXT_ERROR"
	TextCodeExecution  = "COMMAND_EXECUTION_FAILED"
)

type failure struct {
	category goerrors.Category
	code     string
	message  string
	status   TelemetryStatus
}

var (
	validationFailure = failure{goerrors.CategoryValidation, TextCodeValidation, "command validation failed", TelemetryStatusRejected}
	executionFailure  = failure{goerrors.CategoryCommand, TextCodeExecution, "command execution failed", TelemetryStatusFailed}
	canceledFailure   = failure{goerrors.CategoryCommand, TextCodeCanceled, "command execution cancelled", TelemetryStatusContextError}
	timeoutFailure    = failure{goerrors.CategoryCommand, TextCodeTimeout, "command execution deadline exceeded", TelemetryStatusContextError}
	contextErrFailure = failure{goerrors.CategoryCommand, TextCodeContext, "command context error", TelemetryStatusContextError}
)

// wrap categorises err unless it already is a go-errors value.
func (f failure) wrap(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, f.category, f.message).WithTextCode(f.code)
}

func (f failure) apply(err error) (TelemetryStatus, error) {
	return f.status, f.wrap(err)
}

func contextFailure(err error) failure {
	switch {
	case errors.Is(err, context.Canceled):
		return canceledFailure
	case errors.Is(err, context.DeadlineExceeded):
		return timeoutFailure
	default:
		return contextErrFailure
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// settle classifies an execution. ctxErr is checked when exec returned nil so a
// late cancellation is not reported as success. Validation errors raised while
// executing count as rejections.
func settle(execErr, ctxErr error) (TelemetryStatus, error) {
	switch {
	case execErr == nil && ctxErr == nil:
		return TelemetryStatusSuccess, nil
	case execErr == nil:
		return contextFailure(ctxErr).apply(ctxErr)
	case isContextErr(execErr):
		return contextFailure(execErr).apply(execErr)
	case goerrors.IsCategory(execErr, goerrors.CategoryValidation):
		return validationFailure.apply(execErr)
	default:
		return executionFailure.apply(execErr)
	}
}
