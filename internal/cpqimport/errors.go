package cpqimport

import (
	"errors"
	"fmt"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ValidationError reports an export that cannot be turned into a
// configuration. Field is empty when the document itself is malformed.
type ValidationError struct {
	Field  string
	Reason string
	Cause  error
}

func (e *ValidationError) Error() string {
	msg := e.Reason
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Cause != nil {
		return fmt.Sprintf("invalid CPQ export: %s: %v", msg, e.Cause)
	}
	return "invalid CPQ export: " + msg
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// IsValidationError reports whether err is or wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// fromValidation converts the first ozzo field error, in field order, into a
// ValidationError rooted at prefix.
func fromValidation(prefix string, err error) error {
	if err == nil {
		return nil
	}
	var fields validation.Errors
	if !errors.As(err, &fields) || len(fields) == 0 {
		return &ValidationError{Field: prefix, Reason: err.Error()}
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	field := keys[0]
	if prefix != "" {
		field = prefix + "." + field
	}
	return &ValidationError{Field: field, Reason: fields[keys[0]].Error()}
}
