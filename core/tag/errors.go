package tag

import (
	"fmt"
	"reflect"

	"github.com/kochabx/hiding/errors"
)

var (
	ErrTargetMustBePointer = errors.InvalidConfig("defaults target must be a non-nil pointer to struct")
	ErrUnsupportedType     = errors.InvalidConfig("unsupported default type")
	ErrMaxDepthExceeded    = errors.InvalidConfig("max default recursion depth exceeded")
)

// FieldError reports the field whose default could not be applied.
type FieldError struct {
	Path  string
	Kind  reflect.Kind
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("default %q for %s (%s): %v", e.Value, e.Path, e.Kind, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
