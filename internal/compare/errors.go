package compare

import (
	"errors"
	"fmt"
)

var ErrInsufficientInput = errors.New("insufficient input")

// InsufficientInputError is returned when a batch has fewer than two documents.
type InsufficientInputError struct {
	Got int
}

func (e *InsufficientInputError) Error() string {
	return fmt.Sprintf("compare needs at least 2 documents, got %d", e.Got)
}

func (e *InsufficientInputError) Is(target error) bool {
	return target == ErrInsufficientInput
}
