package sdk

import (
	"MuseLink/internal/config"
	"MuseLink/internal/coordinator"
	"MuseLink/internal/engine"
	"MuseLink/internal/gatekeeper"
	"MuseLink/internal/storage"
	"MuseLink/pkg/node"
	"MuseLink/pkg/node/lipsync"
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Client is the programmatic entry point for hosts embedding the node
// without going through the CLI. It wires storage, the gatekeeper client,
// the coordinator, and the node registry from one config.
type Client struct {
	registry *node.Registry
	cfg      *config.Config
	logger   *zap.Logger
}

// NewClient builds a fully wired client from config.
func NewClient(cfg *config.Config, logger *zap.Logger) (*Client, error) {
	backend, err := storage.NewStorage(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	binaries := engine.NewStore(backend, cfg.Retry, logger)
	gkClient := gatekeeper.NewClient(cfg.Gatekeeper, logger)
	coord := coordinator.New(gkClient, binaries, logger, 0, "")

	registry := node.NewRegistry()
	if err := registry.Register(lipsync.New(coord, logger)); err != nil {
		return nil, err
	}

	return &Client{
		registry: registry,
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// Registry exposes the node registry for hosts that dispatch by name.
func (c *Client) Registry() *node.Registry {
	return c.registry
}

// RunItems executes the lipsync node over a batch of items using the
// configured node-level parameter defaults.
func (c *Client) RunItems(ctx context.Context, items []*engine.Item, continueOnFail bool) ([]*engine.Result, error) {
	n, ok := c.registry.Get("lipsync")
	if !ok {
		return nil, fmt.Errorf("lipsync node not registered")
	}

	output, err := n.Execute(ctx, node.Input{
		Items:          items,
		Params:         c.cfg.Node,
		ContinueOnFail: continueOnFail,
	})
	if err != nil {
		return nil, err
	}
	return output.Results, nil
}
