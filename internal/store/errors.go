package store

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("record not found")
)

// inputError carries a caller-facing message and matches ErrInvalidInput
type inputError struct {
	msg string
}

func (e *inputError) Error() string { return e.msg }

func (e *inputError) Unwrap() error { return ErrInvalidInput }

func invalidf(format string, args ...interface{}) error {
	return &inputError{msg: fmt.Sprintf(format, args...)}
}
