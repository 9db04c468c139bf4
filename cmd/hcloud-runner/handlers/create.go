package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/hcloud-runner/internal/provisioning"
)

// runCreate provisions a runner server and waits for the runner to register.
func runCreate(ctx context.Context, env *environment) error {
	tmpl, err := loadTemplate(env.cfg.CloudInitTemplate)
	if err != nil {
		return err
	}

	env.observer.Printf("Creating runner %s in %s (%s)", env.cfg.Name, env.cfg.Location, env.cfg.ServerType)

	result, err := env.reconciler.Create(ctx, provisioning.CreateRequest{
		Config:   env.cfg,
		Template: tmpl,
	})
	if err != nil {
		return fmt.Errorf("create failed: %w", err)
	}

	env.observer.Printf("Runner %s (id %d) is online on server %d", result.Label, result.RunnerID, result.ServerID)
	return nil
}
