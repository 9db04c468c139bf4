package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/hcloud-runner/internal/provisioning"
)

// runDelete removes the runner server and deregisters the runner.
func runDelete(ctx context.Context, env *environment) error {
	env.observer.Printf("Deleting runner %s on server %d", env.cfg.Name, env.cfg.ServerID)

	if err := env.reconciler.Delete(ctx, provisioning.DeleteRequest{Config: env.cfg}); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}

	env.observer.Printf("Runner %s removed", env.cfg.Name)
	return nil
}
