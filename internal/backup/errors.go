package backup

import (
	"errors"
	"fmt"
)

// ParseError is returned when the backup is not well-formed JSON.
type ParseError struct {
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("backup is not valid JSON: %v", e.Err)
}

// Unwrap returns the underlying decode error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// FormatError is returned when the backup is JSON but not a recognised
// payload shape, or a record in it is unusable.
type FormatError struct {
	// Message describes what was wrong.
	Message string

	// Index is the position of the offending record in the stores array,
	// or -1 when the problem is with the payload as a whole.
	Index int

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	msg := e.Message
	if e.Index >= 0 {
		msg = fmt.Sprintf("stores[%d]: %s", e.Index, msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("invalid backup format: %s: %v", msg, e.Err)
	}
	return "invalid backup format: " + msg
}

// Unwrap returns the underlying cause.
func (e *FormatError) Unwrap() error {
	return e.Err
}

// TransactionError is returned when a store write fails during import.
// The transaction has been rolled back; the store is unchanged.
type TransactionError struct {
	Mode Mode
	Err  error
}

// Error implements the error interface.
func (e *TransactionError) Error() string {
	return fmt.Sprintf("%s import rolled back: %v", e.Mode, e.Err)
}

// Unwrap returns the store error that aborted the transaction.
func (e *TransactionError) Unwrap() error {
	return e.Err
}

// IsParseError returns true if err is or wraps a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// IsFormatError returns true if err is or wraps a *FormatError.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}

// IsTransactionError returns true if err is or wraps a *TransactionError.
func IsTransactionError(err error) bool {
	var te *TransactionError
	return errors.As(err, &te)
}

func formatErrorf(index int, cause error, format string, args ...any) *FormatError {
	return &FormatError{Message: fmt.Sprintf(format, args...), Index: index, Err: cause}
}
