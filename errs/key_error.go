package errs

import (
	"fmt"
	"strings"

	"github.com/arloliu/pakref/format"
)

// KeyError attaches the offending key and file type to an error.
type KeyError struct {
	Key  format.Key
	Type format.FileType
	Err  error
}

// NewKeyError wraps err with the key and type that produced it.
func NewKeyError(key format.Key, typ format.FileType, err error) *KeyError {
	return &KeyError{Key: key, Type: typ, Err: err}
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("key %s (%s): %v", e.Key, e.Type, e.Err)
}

func (e *KeyError) Unwrap() error {
	return e.Err
}

// BatchError aggregates the recoverable failures of a batch resolve.
type BatchError struct {
	Errors []error
}

// Add appends err to the batch; nil errors are ignored.
func (b *BatchError) Add(err error) {
	if err != nil {
		b.Errors = append(b.Errors, err)
	}
}

// Len returns the number of collected errors.
func (b *BatchError) Len() int {
	return len(b.Errors)
}

// ErrOrNil returns b when it holds at least one error, nil otherwise.
func (b *BatchError) ErrOrNil() error {
	if b == nil || len(b.Errors) == 0 {
		return nil
	}

	return b
}

func (b *BatchError) Error() string {
	msgs := make([]string, len(b.Errors))
	for i, err := range b.Errors {
		msgs[i] = err.Error()
	}

	return fmt.Sprintf("%d entries failed: %s", len(b.Errors), strings.Join(msgs, "; "))
}

// Unwrap exposes every collected error to errors.Is and errors.As.
func (b *BatchError) Unwrap() []error {
	return b.Errors
}
