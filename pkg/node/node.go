package node

import (
	"MuseLink/internal/engine"
	"context"
)

// Node defines the interface every workflow node must implement
type Node interface {
	// Name returns the unique node identifier
	Name() string

	// Execute processes the input items and returns one result per item
	Execute(ctx context.Context, input Input) (Output, error)

	// Validate checks if the node parameters are valid
	Validate(params map[string]interface{}) error
}

// Input carries the items and node-level parameters for one execution
type Input struct {
	Items  []*engine.Item         // Input items, processed in order
	Params map[string]interface{} // Node-level parameter defaults

	// ContinueOnFail records per-item failures instead of aborting the batch
	ContinueOnFail bool
}

// Output carries one result record per input item, in input order
type Output struct {
	Results []*engine.Result
}
