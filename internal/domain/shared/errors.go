package shared

import "strings"

// Error codes shared by every bounded context
const (
	CodeNotFound            = "NOT_FOUND"
	CodeAlreadyExists       = "ALREADY_EXISTS"
	CodeInvalidInput        = "INVALID_INPUT"
	CodeInvalidState        = "INVALID_STATE"
	CodeValidation          = "VALIDATION_ERROR"
	CodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so wrapped sentinels compare equal
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists       = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrInvalidInput        = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError(CodeUnauthorized, "Not authorized to perform this action")
	ErrForbidden           = NewDomainError(CodeForbidden, "Access to this resource is forbidden")
	ErrInvalidState        = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
)

// FieldError describes a single failed rule on one field
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError is a DomainError with per-field details.
// errors.As(err, &*DomainError) still matches through Unwrap.
type ValidationError struct {
	*DomainError
	Fields []FieldError
}

// NewValidationError creates a validation error from field errors
func NewValidationError(message string, fields ...FieldError) *ValidationError {
	return &ValidationError{
		DomainError: NewDomainError(CodeValidation, message),
		Fields:      fields,
	}
}

// Unwrap exposes the embedded DomainError
func (e *ValidationError) Unwrap() error {
	return e.DomainError
}

// FieldNames returns the distinct field names in the order they were reported
func (e *ValidationError) FieldNames() []string {
	seen := make(map[string]bool, len(e.Fields))
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if seen[f.Field] {
			continue
		}
		seen[f.Field] = true
		names = append(names, f.Field)
	}
	return names
}

// FieldsWithRule returns the names of fields that failed the given rule
func (e *ValidationError) FieldsWithRule(rule string) []string {
	names := make([]string, 0)
	for _, f := range e.Fields {
		if f.Rule == rule {
			names = append(names, f.Field)
		}
	}
	return names
}

// Detail joins field messages into a single human readable line
func (e *ValidationError) Detail() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return strings.Join(parts, "; ")
}
