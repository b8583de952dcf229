package coordinator

import (
	"errors"
	"fmt"
)

// ErrMissingInput marks an item whose media slot could not be resolved:
// an empty path or an absent/unreadable binary property.
var ErrMissingInput = errors.New("missing required input")

// ItemError attributes a failure to the item that triggered it. In strict
// mode it is what aborts the batch.
type ItemError struct {
	Index int
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item %d: %v", e.Index, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}
