package lipsync

import (
	"MuseLink/internal/coordinator"
	"MuseLink/internal/engine"
	"MuseLink/pkg/node"
	"context"

	"go.uber.org/zap"
)

// LipSyncNode implements the Node interface for MuseTalk lip-sync jobs
type LipSyncNode struct {
	coord  *coordinator.Coordinator
	logger *zap.Logger
}

// New creates a new lipsync node instance
func New(coord *coordinator.Coordinator, logger *zap.Logger) *LipSyncNode {
	return &LipSyncNode{
		coord:  coord,
		logger: logger,
	}
}

// Name returns the unique identifier for this node
func (n *LipSyncNode) Name() string {
	return "lipsync"
}

// Validate checks if the node parameters are valid
func (n *LipSyncNode) Validate(params map[string]interface{}) error {
	_, err := DecodeParams(params)
	return err
}

// Execute runs one lip-sync job per input item, sequentially, in order.
// Per-item parameters are layered over the node-level defaults.
func (n *LipSyncNode) Execute(ctx context.Context, input node.Input) (node.Output, error) {
	resolve := func(item *engine.Item) (*coordinator.JobSpec, error) {
		p, err := DecodeParams(input.Params, item.Params)
		if err != nil {
			return nil, err
		}
		return p.JobSpec(), nil
	}

	results, err := n.coord.Run(ctx, input.Items, resolve, coordinator.RunOptions{
		ContinueOnFail: input.ContinueOnFail,
	})
	if err != nil {
		return node.Output{}, err
	}

	n.logger.Info("Lip-sync batch completed", zap.Int("items", len(results)))
	return node.Output{Results: results}, nil
}
