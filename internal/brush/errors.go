package brush

import (
	"errors"
	"fmt"
)

// ErrInvalidProps is wrapped by every props validation failure.
var ErrInvalidProps = errors.New("invalid brush props")

// PropError describes a single invalid property.
type PropError struct {
	Field  string
	Reason string
}

func (e *PropError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Unwrap returns ErrInvalidProps.
func (e *PropError) Unwrap() error {
	return ErrInvalidProps
}
