package oxidb

import (
	"errors"
	"fmt"
)

// Error is returned when the server answers with an error response.
type Error struct {
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("oxidb: %s", e.Msg)
}

// DuplicateKeyError is returned when a write violates a unique index.
type DuplicateKeyError struct {
	Msg string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("oxidb: duplicate key: %s", e.Msg)
}

// IsDuplicateKey reports whether err is a unique index violation.
func IsDuplicateKey(err error) bool {
	var dup *DuplicateKeyError
	return errors.As(err, &dup)
}
