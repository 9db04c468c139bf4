package provisioning

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/imamik/hcloud-runner/internal/config"
	"github.com/imamik/hcloud-runner/internal/platform/github"
	hcloudplatform "github.com/imamik/hcloud-runner/internal/platform/hcloud"
	"github.com/imamik/hcloud-runner/internal/util/retry"
)

// DeleteRequest identifies a runner and its server.
type DeleteRequest struct {
	Config *config.RunnerConfig
}

// Delete removes the server first and then deregisters the runner.
//
// Every server deletion failure is retried, including not-found responses.
// The runner lookup and removal are single attempts.
func (r *Reconciler) Delete(ctx context.Context, req DeleteRequest) error {
	cfg := req.Config
	if cfg.ServerID <= 0 {
		return newError(KindConfiguration, "delete server",
			fmt.Errorf("server id must be a positive integer, got %d", cfg.ServerID), "")
	}

	obs := r.observer().WithFields(map[string]string{
		"mode":      string(config.ModeDelete),
		"runner":    cfg.Name,
		"server_id": strconv.FormatInt(cfg.ServerID, 10),
	})
	start := time.Now()

	if err := r.deleteServer(ctx, obs, cfg); err != nil {
		return err
	}

	runner, err := r.lookupRunner(ctx, obs, cfg)
	if err != nil {
		return err
	}

	LogResourceDeleting(obs, PhaseRunnerDelete, "runner", runner.Name)
	err = r.Runners.DeleteRunner(ctx, runner.ID)
	r.Metrics.RecordAPICall("delete_runner", err)
	if err != nil {
		err = newError(KindFatalHostingAPI, "delete runner", err,
			hostingHint(cfg, err, "remove it manually at "+cfg.GitHub.RunnerURL(runner.ID)))
		LogPhaseFailed(obs, PhaseRunnerDelete, err)
		return err
	}
	LogResourceDeleted(obs, PhaseRunnerDelete, "runner", runner.Name)

	if err := r.Emitter.AppendSummary(deleteSummary(cfg, runner.ID)); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	LogPhaseComplete(obs, "delete", time.Since(start))
	return nil
}

func (r *Reconciler) deleteServer(ctx context.Context, obs Observer, cfg *config.RunnerConfig) error {
	LogResourceDeleting(obs, PhaseServerDelete, "server", strconv.FormatInt(cfg.ServerID, 10))
	start := time.Now()

	err := r.retryPolicy(obs, PhaseServerDelete, cfg.Waits.Delete, cfg.Waits.Interval).
		Do(ctx, func(int) error {
			err := r.Servers.DeleteServer(ctx, cfg.ServerID)
			r.Metrics.RecordAttempt(PhaseServerDelete, err)
			return err
		})
	r.Metrics.ObservePhase(PhaseServerDelete, time.Since(start), err)

	if err != nil {
		if retry.IsExhausted(err) {
			hint := fmt.Sprintf("delete server %d manually in the Hetzner Cloud Console %s", cfg.ServerID, ConsoleURL)
			if hcloudplatform.IsNotFound(err) {
				hint = fmt.Sprintf("server %d was not found, it may already be deleted", cfg.ServerID)
			}
			err = newError(KindPollTimeout, "delete server", err, hint)
		}
		LogPhaseFailed(obs, PhaseServerDelete, err)
		return err
	}
	LogResourceDeleted(obs, PhaseServerDelete, "server", strconv.FormatInt(cfg.ServerID, 10))
	return nil
}

func (r *Reconciler) lookupRunner(ctx context.Context, obs Observer, cfg *config.RunnerConfig) (*github.Runner, error) {
	runners, err := r.Runners.ListRunners(ctx)
	r.Metrics.RecordAPICall("list_runners", err)
	if err != nil {
		err = newError(KindFatalHostingAPI, "list runners", err, hostingHint(cfg, err, ""))
		LogPhaseFailed(obs, PhaseRunnerDelete, err)
		return nil, err
	}
	runner := github.FindRunner(runners, cfg.Name)
	if runner == nil {
		err = newError(KindFatalHostingAPI, "find runner",
			fmt.Errorf("%w: %s", github.ErrRunnerNotFound, cfg.Name),
			"check "+cfg.GitHub.RunnersURL())
		LogPhaseFailed(obs, PhaseRunnerDelete, err)
		return nil, err
	}
	return runner, nil
}

func deleteSummary(cfg *config.RunnerConfig, runnerID int64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Self-hosted runner `%s` removed\n\n", cfg.Name)
	b.WriteString("| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| Server ID | `%d` (deleted) |\n", cfg.ServerID)
	fmt.Fprintf(&b, "| Runner ID | `%d` (deregistered) |\n", runnerID)
	return b.String()
}
