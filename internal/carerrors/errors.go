// Package carerrors provides sentinel and custom error types for the pipeline.
package carerrors

import "fmt"

// ErrNotFound represents a "not found" error.
// Use when a requested resource doesn't exist; API boundaries that return
// optional results map it to an absent value rather than a failure.
var ErrNotFound = &NotFoundError{}

// NotFoundError is a sentinel error for resources that are not found.
type NotFoundError struct {
	Resource string
	Message  string
}

// NewNotFoundError creates a new NotFoundError with a custom message.
func NewNotFoundError(resource, message string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		Message:  message,
	}
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	if e.Resource != "" {
		return e.Resource + " not found"
	}

	return "resource not found"
}

// Is implements the error interface for error comparison.
func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)

	return ok
}

// ErrValidation represents a validation error.
// Use when an input record is malformed; batch callers reject the item
// locally and continue with the rest of the batch.
var ErrValidation = &ValidationError{}

// ValidationError is a sentinel error for validation failures.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a new ValidationError with a custom message.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	if e.Field != "" {
		return "validation failed for field: " + e.Field
	}

	return "validation error"
}

// Is implements the error interface for error comparison.
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)

	return ok
}

// ErrDimensionMismatch is the sentinel for embedding dimensionality errors.
// Use when a vector's length does not match the configured model dimension;
// on the search path the candidate is excluded, on store/query entry points
// the call is rejected.
var ErrDimensionMismatch = &DimensionMismatchError{}

// DimensionMismatchError is a sentinel error for invalid vector shapes.
type DimensionMismatchError struct {
	Got  int
	Want int
}

// NewDimensionMismatchError creates a DimensionMismatchError for the given shapes.
func NewDimensionMismatchError(got, want int) *DimensionMismatchError {
	return &DimensionMismatchError{Got: got, Want: want}
}

// Error implements the error interface.
func (e *DimensionMismatchError) Error() string {
	if e.Got != 0 || e.Want != 0 {
		return fmt.Sprintf("embedding dimension mismatch: got %d, want %d", e.Got, e.Want)
	}

	return "embedding dimension mismatch"
}

// Is implements the error interface for error comparison.
func (e *DimensionMismatchError) Is(target error) bool {
	_, ok := target.(*DimensionMismatchError)

	return ok
}

// ErrEncryption is the sentinel for cipher failures.
// A failed encryption is fatal for that write; the store must never fall
// back to persisting a plaintext-only row.
var ErrEncryption = &EncryptionError{}

// EncryptionError is a sentinel error for encrypt/decrypt failures.
type EncryptionError struct {
	Op      string
	Message string
}

// NewEncryptionError creates an EncryptionError for the given operation.
func NewEncryptionError(op, message string) *EncryptionError {
	return &EncryptionError{Op: op, Message: message}
}

// Error implements the error interface.
func (e *EncryptionError) Error() string {
	if e.Message != "" {
		if e.Op != "" {
			return e.Op + ": " + e.Message
		}

		return e.Message
	}

	return "encryption error"
}

// Is implements the error interface for error comparison.
func (e *EncryptionError) Is(target error) bool {
	_, ok := target.(*EncryptionError)

	return ok
}

// ErrExternalCapability is the sentinel for failed or timed-out calls to
// injected capabilities (embedding model, generation model, storage).
// Pipeline-level handling degrades to a fallback response, never a crash.
var ErrExternalCapability = &ExternalCapabilityError{}

// ExternalCapabilityError is a sentinel error for external call failures.
type ExternalCapabilityError struct {
	Capability string
	Message    string
}

// NewExternalCapabilityError creates an ExternalCapabilityError with a custom message.
func NewExternalCapabilityError(capability, message string) *ExternalCapabilityError {
	return &ExternalCapabilityError{Capability: capability, Message: message}
}

// Error implements the error interface.
func (e *ExternalCapabilityError) Error() string {
	if e.Message != "" {
		if e.Capability != "" {
			return e.Capability + ": " + e.Message
		}

		return e.Message
	}

	if e.Capability != "" {
		return e.Capability + ": external capability failed"
	}

	return "external capability failed"
}

// Is implements the error interface for error comparison.
func (e *ExternalCapabilityError) Is(target error) bool {
	_, ok := target.(*ExternalCapabilityError)

	return ok
}
