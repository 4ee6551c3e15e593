package rootfinding

import (
	"errors"
	"fmt"
)

// Sentinel kinds. Match them with errors.Is against any error returned by a
// strategy, the driver or the scanner.
var (
	// ErrInfeasible reports that the bracket precondition f(lower)*f(upper) < 0
	// does not hold. No iteration was performed.
	ErrInfeasible = errors.New("infeasible input")
	// ErrBracketViolation reports that a bound update could not preserve the
	// opposite-sign invariant of the bracket.
	ErrBracketViolation = errors.New("bracket invariant violated")
	// ErrSingularStep reports a zero or non-finite denominator in an open method,
	// or a step that produced a non-finite estimate.
	ErrSingularStep = errors.New("singular step")
	// ErrInvalidArgument reports unusable settings or scan arguments.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Error represents a root-finding failure with context
// that can be wrapped with additional information.
type Error struct {
	// Kind is one of the sentinel errors above.
	Kind error
	// Message describes the error that occurred.
	Message string
	// Op is the operation that caused the error.
	Op string
	// Component is the strategy or component where the error occurred.
	Component string
	// FLower and FUpper hold the function values at the bracket bounds when the
	// failure concerns a bracket.
	FLower, FUpper float64
	// Err is the underlying error that triggered this one, if any.
	Err error
}

// Error returns the string representation of the error.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var prefix string
	if e.Component != "" && e.Op != "" {
		prefix = fmt.Sprintf("%s: %s", e.Component, e.Op)
	} else if e.Component != "" {
		prefix = e.Component
	} else if e.Op != "" {
		prefix = e.Op
	}

	msg := e.Message
	if e.Kind != nil {
		if msg == "" {
			msg = e.Kind.Error()
		} else {
			msg = fmt.Sprintf("%v: %s", e.Kind, msg)
		}
	}

	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}

	if prefix != "" {
		return fmt.Sprintf("%s: %s", prefix, msg)
	}
	return msg
}

// Unwrap exposes both the kind and the underlying error to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e == nil {
		return nil
	}
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// WithOperation adds operation context to the error.
func (e *Error) WithOperation(op string) *Error {
	e.Op = op
	return e
}

// WithComponent adds component context to the error.
func (e *Error) WithComponent(component string) *Error {
	e.Component = component
	return e
}

// NewError creates a new error of the given kind.
func NewError(kind error, message string) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
	}
}

// NewErrorf creates a new error of the given kind with a formatted message.
func NewErrorf(kind error, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// Infeasible reports a bracket whose end values do not have opposite signs.
func Infeasible(component string, fLower, fUpper float64) *Error {
	return &Error{
		Kind:      ErrInfeasible,
		Message:   fmt.Sprintf("f(lower) = %g and f(upper) = %g do not have opposite signs", fLower, fUpper),
		Op:        "solve",
		Component: component,
		FLower:    fLower,
		FUpper:    fUpper,
	}
}

// AsError checks if an error is, or wraps, an *Error.
// If it is, it returns the error and true.
// Otherwise, it returns nil and false.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the sentinel kind carried by err, or nil when err is not a
// root-finding error.
func KindOf(err error) error {
	for _, kind := range []error{ErrInfeasible, ErrBracketViolation, ErrSingularStep, ErrInvalidArgument} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
