package hcloud

import (
	"context"
	"errors"
	"fmt"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// ErrServerNotFound is returned when a server lookup finds nothing.
var ErrServerNotFound = errors.New("server not found")

// CreateServer submits a single server creation request.
//
// The returned server carries the identifier assigned by the API. The create
// action is not awaited; callers poll the server status instead.
func (c *RealClient) CreateServer(ctx context.Context, opts hcloud.ServerCreateOpts) (*hcloud.Server, error) {
	result, _, err := c.client.Server.Create(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create server %s: %w", opts.Name, err)
	}
	return result.Server, nil
}

// GetServer returns the server with the given ID.
func (c *RealClient) GetServer(ctx context.Context, id int64) (*hcloud.Server, error) {
	server, _, err := c.client.Server.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get server %d: %w", id, err)
	}
	if server == nil {
		return nil, fmt.Errorf("%w: %d", ErrServerNotFound, id)
	}
	return server, nil
}

// DeleteServer deletes the server with the given ID.
func (c *RealClient) DeleteServer(ctx context.Context, id int64) error {
	if _, _, err := c.client.Server.DeleteWithResult(ctx, &hcloud.Server{ID: id}); err != nil {
		return fmt.Errorf("failed to delete server %d: %w", id, err)
	}
	return nil
}
