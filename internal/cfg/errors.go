package cfg

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/sirkon/qualflow/internal/mir"
)

var (
	// ErrUnsupported is a cause of construction errors for control transfers graphs cannot model.
	ErrUnsupported = errors.New("unsupported control flow")

	// ErrMalformed is a cause of construction errors for ill-formed control structures.
	ErrMalformed = errors.New("malformed control structure")
)

// ConstructionError is returned when a method body cannot be lowered into a graph.
type ConstructionError struct {
	Loc    mir.Loc
	Reason string

	cause error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("%s: %s", e.cause, e.Reason)
}

// Cause to support [errors.Cause].
func (e *ConstructionError) Cause() error {
	return e.cause
}

func (e *ConstructionError) Unwrap() error {
	return e.cause
}

func unsupported(n mir.Node, format string, a ...any) error {
	return &ConstructionError{
		Loc:    n.Location(),
		Reason: fmt.Sprintf(format, a...),
		cause:  ErrUnsupported,
	}
}

func malformed(n mir.Node, format string, a ...any) error {
	return &ConstructionError{
		Loc:    n.Location(),
		Reason: fmt.Sprintf(format, a...),
		cause:  ErrMalformed,
	}
}
