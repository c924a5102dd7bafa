package abilitykit

import (
	"errors"
	"fmt"
)

// Sentinel errors for AbilityKit operations.
var (
	// ErrUnknownScope is returned when a permission declares a scope name
	// that is not in the scope catalog. Raised eagerly at decoration time.
	ErrUnknownScope = errors.New("abilitykit: unknown scope")

	// ErrUnsupportedSubject is returned when a check is attempted against a
	// subject type name the scope predicates do not support.
	ErrUnsupportedSubject = errors.New("abilitykit: unsupported subject type")

	// ErrUndefinedVariable is returned when a conditions template references
	// a variable path that does not resolve. Raised at decoration time.
	ErrUndefinedVariable = errors.New("abilitykit: undefined template variable")

	// ErrInvalidPermission is returned when a permission declaration is
	// structurally invalid (no actions, empty subject).
	ErrInvalidPermission = errors.New("abilitykit: invalid permission")

	// ErrNoUserID is returned when a user ID is not found in context or in
	// an HTTP request.
	ErrNoUserID = errors.New("abilitykit: no user ID")

	// ErrUserNotFound is returned by a Directory when the requested user
	// does not exist.
	ErrUserNotFound = errors.New("abilitykit: user not found")
)

// Error wraps a sentinel error with additional context.
type Error struct {
	Err     error  // Underlying sentinel error
	Message string // Additional context
	Scope   string // Scope name involved (if applicable)
	Subject string // Subject type name involved (if applicable)
	Role    string // Role involved (if applicable)
	UserID  string // User involved (if applicable)
	Path    string // Template variable path involved (if applicable)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is checks if the error matches a target error.
func (e *Error) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewError creates a new Error with context.
func NewError(err error, message string) *Error {
	return &Error{
		Err:     err,
		Message: message,
	}
}

// WithScope adds the scope name to the error.
func (e *Error) WithScope(scope string) *Error {
	e.Scope = scope
	return e
}

// WithSubject adds the subject type name to the error.
func (e *Error) WithSubject(subject string) *Error {
	e.Subject = subject
	return e
}

// WithRole adds role information to the error.
func (e *Error) WithRole(role string) *Error {
	e.Role = role
	return e
}

// WithUser adds user information to the error.
func (e *Error) WithUser(userID string) *Error {
	e.UserID = userID
	return e
}

// WithPath adds the template variable path to the error.
func (e *Error) WithPath(path string) *Error {
	e.Path = path
	return e
}

// IsUnknownScope checks if an error is due to an unknown scope name.
func IsUnknownScope(err error) bool {
	return errors.Is(err, ErrUnknownScope)
}

// IsUnsupportedSubject checks if an error is due to an unsupported subject type.
func IsUnsupportedSubject(err error) bool {
	return errors.Is(err, ErrUnsupportedSubject)
}

// IsUndefinedVariable checks if an error is due to an unresolvable template variable.
func IsUndefinedVariable(err error) bool {
	return errors.Is(err, ErrUndefinedVariable)
}

// IsInvalidPermission checks if an error is due to an invalid permission declaration.
func IsInvalidPermission(err error) bool {
	return errors.Is(err, ErrInvalidPermission)
}

// IsUserNotFound checks if an error is due to a missing user.
func IsUserNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}
