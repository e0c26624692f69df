package velograph

import (
	"errors"
	"fmt"
	"strings"
)

// Standard sentinel errors for common operations.
var (
	// ErrNotFound is returned when a requested model does not exist in the registry.
	ErrNotFound = errors.New("velograph: model not found")

	// ErrConfiguration is matched by every ConfigurationError.
	ErrConfiguration = errors.New("velograph: configuration error")

	// ErrNotAllowed is returned when a model's meta flags forbid an operation.
	ErrNotAllowed = errors.New("velograph: operation not allowed")

	// ErrStoreApply is matched by every StoreApplyError.
	ErrStoreApply = errors.New("velograph: store failed to apply statement")
)

// NotFoundError represents an error when a model is not registered.
type NotFoundError struct {
	name string
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("velograph: model %q not found", e.name)
}

// Is reports whether the target error matches NotFoundError.
// This allows errors.Is(notFoundErr, ErrNotFound) to return true.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// Name returns the model name that was looked up.
func (e *NotFoundError) Name() string {
	return e.name
}

// NewNotFoundError returns a new NotFoundError for the given model name.
func NewNotFoundError(name string) *NotFoundError {
	return &NotFoundError{name: name}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}

// Reason classifies a ConfigurationError.
type Reason string

// Configuration error reasons.
const (
	// ReasonDuplicate: the same name was registered with a conflicting kind.
	ReasonDuplicate Reason = "duplicate"
	// ReasonArity: a template was specialized with the wrong number of arguments.
	ReasonArity Reason = "arity"
	// ReasonUnresolved: a forward reference was still unresolved when needed.
	ReasonUnresolved Reason = "unresolved"
	// ReasonFrozen: a model was modified after a derivation step read it.
	ReasonFrozen Reason = "frozen"
	// ReasonInvalid: the declaration itself is malformed.
	ReasonInvalid Reason = "invalid"
)

// ConfigurationError is reported at the point of use for declaration
// mistakes. It is fatal to the triggering operation only.
type ConfigurationError struct {
	Reason  Reason
	Model   string // Model name (if applicable)
	Field   string // Field name (if applicable)
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	var b strings.Builder
	b.WriteString("velograph: configuration error")
	if e.Reason != "" {
		b.WriteString(" (")
		b.WriteString(string(e.Reason))
		b.WriteString(")")
	}
	if e.Model != "" {
		b.WriteString(" on model ")
		b.WriteString(e.Model)
	}
	if e.Field != "" {
		b.WriteString(" field ")
		b.WriteString(e.Field)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for ConfigurationError.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// NewConfigurationError creates a new ConfigurationError.
func NewConfigurationError(reason Reason, model, field, message string) *ConfigurationError {
	return &ConfigurationError{
		Reason:  reason,
		Model:   model,
		Field:   field,
		Message: message,
	}
}

// IsConfigurationError reports whether the error is a ConfigurationError.
func IsConfigurationError(err error) bool {
	var e *ConfigurationError
	return errors.As(err, &e)
}

// HasReason reports whether err is a ConfigurationError with the given reason.
func HasReason(err error, reason Reason) bool {
	var e *ConfigurationError
	return errors.As(err, &e) && e.Reason == reason
}

// NotAllowedError is returned at the API boundary when a model's meta
// flags forbid the requested operation.
type NotAllowedError struct {
	Model string
	Op    string
}

// Error returns the error string.
func (e *NotAllowedError) Error() string {
	return fmt.Sprintf("velograph: %s is not allowed on %s", e.Op, e.Model)
}

// Is reports whether the target matches ErrNotAllowed.
func (e *NotAllowedError) Is(target error) bool {
	return target == ErrNotAllowed
}

// NewNotAllowedError returns a new NotAllowedError.
func NewNotAllowedError(model, op string) *NotAllowedError {
	return &NotAllowedError{Model: model, Op: op}
}

// IsNotAllowed returns true if the error is a NotAllowedError.
func IsNotAllowed(err error) bool {
	if err == nil {
		return false
	}
	var e *NotAllowedError
	return errors.As(err, &e)
}

// StoreApplyError wraps a failure of the graph store to apply one statement.
type StoreApplyError struct {
	Statement string // Statement name
	Err       error  // Underlying driver error
}

// Error returns the error string.
func (e *StoreApplyError) Error() string {
	return fmt.Sprintf("velograph: applying %s: %v", e.Statement, e.Err)
}

// Unwrap returns the underlying error.
func (e *StoreApplyError) Unwrap() error {
	return e.Err
}

// Is reports whether the target matches ErrStoreApply.
func (e *StoreApplyError) Is(target error) bool {
	return target == ErrStoreApply
}

// NewStoreApplyError returns a new StoreApplyError.
func NewStoreApplyError(statement string, err error) *StoreApplyError {
	return &StoreApplyError{Statement: statement, Err: err}
}

// IsStoreApplyError returns true if the error is a StoreApplyError.
func IsStoreApplyError(err error) bool {
	if err == nil {
		return false
	}
	var e *StoreApplyError
	return errors.As(err, &e)
}

// AggregateError represents multiple errors collected during an operation.
type AggregateError struct {
	Errors []error
}

// Error returns the error string.
func (e *AggregateError) Error() string {
	if len(e.Errors) == 0 {
		return "velograph: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	sb.WriteString("velograph: multiple errors:")
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "\n  [%d] %v", i+1, err)
	}
	return sb.String()
}

// Unwrap returns the collected errors for errors.Is and errors.As.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// NewAggregateError returns a new AggregateError if there are errors,
// otherwise returns nil.
func NewAggregateError(errs ...error) error {
	var filtered []error
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &AggregateError{Errors: filtered}
}
