package plate

import (
	"errors"
	"fmt"
)

type StoreErrorKind string

const (
	Unavailable      StoreErrorKind = "unavailable"
	RecordMissing    StoreErrorKind = "record-missing"
	AttributeMissing StoreErrorKind = "attribute-missing"
	MalformedValue   StoreErrorKind = "malformed-value"
	Overflow         StoreErrorKind = "overflow"
	Conflict         StoreErrorKind = "conflict"
)

var (
	ErrUnavailable      = &StoreError{Kind: Unavailable}
	ErrRecordMissing    = &StoreError{Kind: RecordMissing}
	ErrAttributeMissing = &StoreError{Kind: AttributeMissing}
	ErrMalformedValue   = &StoreError{Kind: MalformedValue}
	ErrOverflow         = &StoreError{Kind: Overflow}
	ErrConflict         = &StoreError{Kind: Conflict}
)

// StoreError is returned by every CounterStore failure. Op names the store
// operation that failed and Err carries the underlying cause, if any.
type StoreError struct {
	Kind StoreErrorKind
	Op   string
	Err  error
}

func NewStoreError(kind StoreErrorKind, op string, err error) *StoreError {
	return &StoreError{Kind: kind, Op: op, Err: err}
}

func (e *StoreError) Error() string {
	msg := "counter store " + string(e.Kind)
	if e.Op != "" {
		msg = fmt.Sprintf("%s: %s", e.Op, msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}

	return msg
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is matches any StoreError of the same kind, so errors.Is(err, ErrRecordMissing)
// holds regardless of Op or cause.
func (e *StoreError) Is(target error) bool {
	var other *StoreError
	if !errors.As(target, &other) {
		return false
	}

	return other.Kind == e.Kind
}

func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
