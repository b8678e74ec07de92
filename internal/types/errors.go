package types

import (
	"errors"
	"fmt"
)

// ErrRegistrySealed is returned when registering into a sealed registry or
// mutating a frozen object type.
var ErrRegistrySealed = errors.New("registry is sealed")

// DuplicateTypeNameError indicates a name registered twice with
// structurally different descriptors.
type DuplicateTypeNameError struct {
	Name string
}

func (e DuplicateTypeNameError) Error() string {
	return fmt.Sprintf("type %q is already registered with a different definition", e.Name)
}

// TypeMismatchError indicates a value or expression that does not fit the
// expected type.
type TypeMismatchError struct {
	Type   string
	Field  string
	Reason string
}

func (e TypeMismatchError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("type mismatch for %s field %q: %s", e.Type, e.Field, e.Reason)
	}
	return fmt.Sprintf("type mismatch for %s: %s", e.Type, e.Reason)
}

// HeterogeneousArrayError indicates array items of differing element types.
type HeterogeneousArrayError struct {
	Expected string
	Got      string
	Index    int
}

func (e HeterogeneousArrayError) Error() string {
	return fmt.Sprintf("array item %d has type %s, expected %s", e.Index, e.Got, e.Expected)
}

// InvalidNarrowingError indicates an "is" narrowing to a type that is not a
// declared subtype.
type InvalidNarrowingError struct {
	Type    string
	Subtype string
}

func (e InvalidNarrowingError) Error() string {
	return fmt.Sprintf("%s cannot be narrowed to %s", e.Type, e.Subtype)
}

// UnknownFieldError indicates a pointer, link property, tuple item or shape
// key that does not exist.
type UnknownFieldError struct {
	Type  string
	Field string
}

func (e UnknownFieldError) Error() string {
	return fmt.Sprintf("%s has no field %q", e.Type, e.Field)
}

// DisallowedParameterTypeError indicates a parameter declared with a type
// that cannot be passed as a query argument.
type DisallowedParameterTypeError struct {
	Param string
	Type  string
}

func (e DisallowedParameterTypeError) Error() string {
	return fmt.Sprintf("parameter $%s cannot have type %s", e.Param, e.Type)
}

// ExecutionErrorCode classifies executor-boundary failures.
type ExecutionErrorCode string

const (
	CardinalityViolation ExecutionErrorCode = "cardinality_violation"
	InvalidArgument      ExecutionErrorCode = "invalid_argument"
	MalformedResult      ExecutionErrorCode = "malformed_result"
	ExecutorFailure      ExecutionErrorCode = "executor_failure"
)

// ExecutionError is returned by the executor boundary.
type ExecutionError struct {
	Err   error
	Code  ExecutionErrorCode
	Query string
}

func (e ExecutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return string(e.Code)
}

func (e ExecutionError) Unwrap() error { return e.Err }

// IsCardinalityViolation reports whether err is an ExecutionError with the
// CardinalityViolation code.
func IsCardinalityViolation(err error) bool {
	var e ExecutionError
	return errors.As(err, &e) && e.Code == CardinalityViolation
}
