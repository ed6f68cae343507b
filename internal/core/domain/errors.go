package domain

import (
	"errors"
	"fmt"
)

const (
	FieldID           = "id"
	FieldName         = "name"
	FieldEmail        = "email"
	FieldCpf          = "cpf"
	FieldDateCreation = "date_creation"
	FieldDateEdition  = "date_edition"
)

// ValidationError reports a single field that failed a format, length or emptiness rule.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// DuplicateError reports a cpf or email already owned by another active user.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	switch e.Field {
	case FieldCpf:
		return "CPF already created"
	case FieldEmail:
		return "Email already created"
	default:
		return fmt.Sprintf("%s already created", e.Field)
	}
}

// NotFoundError reports an id with no active matching record.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return "The user does not exist"
}

// TypeMismatchError reports a batch element that is not a complete user.
type TypeMismatchError struct {
	Index int
}

func (e *TypeMismatchError) Error() string {
	return "The users array must have only users"
}

func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsDuplicateError(err error) bool {
	var target *DuplicateError
	return errors.As(err, &target)
}

func IsNotFoundError(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsTypeMismatchError(err error) bool {
	var target *TypeMismatchError
	return errors.As(err, &target)
}

// IsDomainError tells whether err is one of the caller-correctable kinds above.
func IsDomainError(err error) bool {
	return IsValidationError(err) || IsDuplicateError(err) || IsNotFoundError(err) || IsTypeMismatchError(err)
}
