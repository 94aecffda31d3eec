package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("product not found")
	ErrConflict = errors.New("a product with that asin already exists")

	ErrEmailTaken = errors.New("a user with that email already exists")
	ErrBadCreds   = errors.New("invalid email or password")
)

// ValidationError is raised before any mutation is staged; a payload that
// fails validation never touches the store.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

func Invalid(field, msg string) error { return &ValidationError{Field: field, Msg: msg} }

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
