package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means a lookup matched zero rows (or, for slugs, more than one)
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized means an inbox token did not match
	ErrUnauthorized = errors.New("unauthorized")
	// ErrSlugTaken means the store rejected a duplicate slug
	ErrSlugTaken = errors.New("slug already taken")
	// ErrUseAnonymousFlow means the generic builder was asked for an anonymous page
	ErrUseAnonymousFlow = errors.New("anonymous pages use the anonymous flow")
)

// ValidationError is a local input error; no store call was made
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// StorageError wraps any failure coming from the row store
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err carries a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsStorage reports whether err carries a StorageError
func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
