package operation

import "fmt"

// UnknownKindError is raised when an operation is instantiated with a kind
// that is not registered.
type UnknownKindError struct {
	Kind Kind
}

// Error implements error.
func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("unknown operation kind %v", e.Kind)
}

// UnexpectedCodeError is raised when a synthetic operation ends with an inner
// code that its caller cannot handle.
type UnexpectedCodeError struct {
	Kind  Kind
	Code  Code
	Inner InnerCode
}

// Error implements error.
func (e *UnexpectedCodeError) Error() string {
	if e.Code != CodeInner {
		return fmt.Sprintf("unexpected result of synthetic %v: %v", e.Kind, e.Code)
	}

	return fmt.Sprintf("unexpected result of synthetic %v: %d", e.Kind, e.Inner)
}

// BodyTypeError is raised when the body of an operation does not match the
// type expected by the constructor of its kind.
type BodyTypeError struct {
	Kind Kind
	Body Body
}

// Error implements error.
func (e *BodyTypeError) Error() string {
	return fmt.Sprintf("invalid body type '%T' for kind %v", e.Body, e.Kind)
}
