package serving

import (
	"fmt"
	"net/http"
)

// notReadyError signals the model has not finished loading (503 mapping).
type notReadyError struct {
	model  string
	reason string
}

func (e notReadyError) Error() string {
	if e.reason != "" {
		return "model " + e.model + " is not ready: " + e.reason
	}
	return "model " + e.model + " is not ready yet"
}

func (e notReadyError) StatusCode() int { return http.StatusServiceUnavailable }

// ErrNotReady constructs a notReadyError. reason carries the recorded load
// failure when one exists.
func ErrNotReady(model, reason string) error { return notReadyError{model: model, reason: reason} }

// IsNotReady reports whether err indicates the model is not ready (503).
func IsNotReady(err error) bool {
	_, ok := err.(notReadyError)
	return ok
}

// loadError wraps a failure from the model's Load hook. Fatal for the
// process instance; not recoverable without a restart.
type loadError struct {
	model string
	err   error
}

func (e loadError) Error() string { return "failed to load model " + e.model + ": " + e.err.Error() }

func (e loadError) Unwrap() error { return e.err }

func (e loadError) StatusCode() int { return http.StatusServiceUnavailable }

// ErrLoad constructs a loadError.
func ErrLoad(model string, err error) error { return loadError{model: model, err: err} }

// IsLoadError reports whether err wraps a model load failure.
func IsLoadError(err error) bool {
	_, ok := err.(loadError)
	return ok
}

// invalidOperationError signals an unknown operation/method combination.
type invalidOperationError struct {
	op     string
	method string
}

func (e invalidOperationError) Error() string {
	return fmt.Sprintf("illegal model operation %q, method=%s", e.op, e.method)
}

func (e invalidOperationError) StatusCode() int { return http.StatusBadRequest }

// ErrInvalidOperation constructs an invalidOperationError.
func ErrInvalidOperation(op, method string) error {
	return invalidOperationError{op: op, method: method}
}

// IsInvalidOperation reports whether err indicates an unknown operation.
func IsInvalidOperation(err error) bool {
	_, ok := err.(invalidOperationError)
	return ok
}

// validationError signals a malformed request body (e.g. missing "inputs").
type validationError struct{ msg string }

func (e validationError) Error() string { return e.msg }

func (e validationError) StatusCode() int { return http.StatusBadRequest }

// ErrValidation constructs a validationError.
func ErrValidation(msg string) error { return validationError{msg: msg} }

// IsValidation reports whether err indicates a request validation failure.
func IsValidation(err error) bool {
	_, ok := err.(validationError)
	return ok
}

// invalidArgumentError signals a client error in dict-input expansion:
// unknown feature schema or missing request keys.
type invalidArgumentError struct{ msg string }

func (e invalidArgumentError) Error() string { return e.msg }

func (e invalidArgumentError) StatusCode() int { return http.StatusBadRequest }

// ErrInvalidArgument constructs an invalidArgumentError.
func ErrInvalidArgument(msg string) error { return invalidArgumentError{msg: msg} }

// IsInvalidArgument reports whether err indicates an invalid argument.
func IsInvalidArgument(err error) bool {
	_, ok := err.(invalidArgumentError)
	return ok
}

// inferenceError wraps a failure raised by predict/explain. Surfaced to the
// caller after best-effort telemetry emission.
type inferenceError struct {
	op  string
	err error
}

func (e inferenceError) Error() string { return e.op + " failed: " + e.err.Error() }

func (e inferenceError) Unwrap() error { return e.err }

func (e inferenceError) StatusCode() int { return http.StatusInternalServerError }

// ErrInference constructs an inferenceError.
func ErrInference(op string, err error) error { return inferenceError{op: op, err: err} }

// IsInference reports whether err wraps a predict/explain failure.
func IsInference(err error) bool {
	_, ok := err.(inferenceError)
	return ok
}
