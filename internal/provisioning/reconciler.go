package provisioning

import (
	"context"
	"time"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
	"github.com/rs/zerolog"

	"github.com/imamik/hcloud-runner/internal/metrics"
	"github.com/imamik/hcloud-runner/internal/platform/github"
	hcloudplatform "github.com/imamik/hcloud-runner/internal/platform/hcloud"
	"github.com/imamik/hcloud-runner/internal/util/retry"
)

// Phase names used in events and metrics.
const (
	PhaseRegistrationToken = "registration_token"
	PhaseServerCreate      = "server_create"
	PhaseServerWait        = "server_wait"
	PhaseRunnerWait        = "runner_wait"
	PhaseServerDelete      = "server_delete"
	PhaseRunnerDelete      = "runner_delete"
)

// ConsoleURL is where servers are managed in the Hetzner Cloud Console.
const ConsoleURL = "https://console.hetzner.cloud/"

// ServerAPI is the subset of the Hetzner Cloud API the reconciler uses.
type ServerAPI interface {
	CreateServer(ctx context.Context, opts hcloud.ServerCreateOpts) (*hcloud.Server, error)
	GetServer(ctx context.Context, id int64) (*hcloud.Server, error)
	DeleteServer(ctx context.Context, id int64) error
}

// RunnerAPI is the subset of the GitHub API the reconciler uses.
type RunnerAPI interface {
	CreateRegistrationToken(ctx context.Context) (*github.RegistrationToken, error)
	ListRunners(ctx context.Context) ([]github.Runner, error)
	DeleteRunner(ctx context.Context, id int64) error
}

// Emitter publishes step outputs and the job summary.
type Emitter interface {
	SetOutput(key, value string) error
	AppendSummary(markdown string) error
}

// Reconciler drives a runner server through its lifecycle. Every call is
// strictly sequential and each wait is bounded by an attempt budget.
type Reconciler struct {
	Servers  ServerAPI
	Runners  RunnerAPI
	Emitter  Emitter
	Observer Observer
	Metrics  *metrics.Recorder

	// Classifier decides which create failures are retried.
	// Defaults to hcloud.DefaultClassifier.
	Classifier hcloudplatform.Classifier

	// Sleep waits between attempts. Defaults to retry.Sleep.
	Sleep retry.SleepFunc
}

func (r *Reconciler) observer() Observer {
	if r.Observer == nil {
		return NewLogObserver(zerolog.Nop())
	}
	return r.Observer
}

func (r *Reconciler) classify(err error) hcloudplatform.Class {
	if r.Classifier == nil {
		return hcloudplatform.DefaultClassifier()(err)
	}
	return r.Classifier(err)
}

// retryPolicy returns a fixed-interval policy that logs every retried failure.
func (r *Reconciler) retryPolicy(obs Observer, phase string, attempts int, interval time.Duration) retry.Policy {
	return retry.Fixed(attempts, interval,
		retry.WithSleep(r.Sleep),
		retry.WithNotify(func(attempt int, err error) {
			LogAttemptFailed(obs, phase, attempt, attempts, err)
		}))
}

// pollPolicy returns a fixed-interval policy for status polls.
func (r *Reconciler) pollPolicy(attempts int, interval time.Duration) retry.Policy {
	return retry.Fixed(attempts, interval, retry.WithSleep(r.Sleep))
}
