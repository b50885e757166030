package main

import (
	"errors"
	"fmt"
)

var (
	ErrBookNotFound = errors.New("book not found")

	// ErrInvalidState is wrapped by every lending transition failure.
	ErrInvalidState        = errors.New("invalid lending state")
	ErrBookAlreadyBorrowed = fmt.Errorf("%w: book already borrowed", ErrInvalidState)
	ErrBookNotBorrowed     = fmt.Errorf("%w: book not borrowed", ErrInvalidState)

	ErrCatalogIO    = errors.New("catalog storage failure")
	ErrCatalogParse = errors.New("catalog document is malformed")
)

type missingFieldError string

func (m missingFieldError) Error() string {
	return string(m) + " is required"
}

// IsValidationError reports whether err comes from a missing required field.
func IsValidationError(err error) bool {
	var mfe missingFieldError
	return errors.As(err, &mfe)
}
