// Package handlers contains the business logic for CLI commands.
//
// Handlers build the API clients, the logger and the metrics recorder from
// the loaded configuration and hand them to the provisioning reconciler.
package handlers

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"

	"github.com/imamik/hcloud-runner/internal/cloudinit"
	"github.com/imamik/hcloud-runner/internal/config"
	"github.com/imamik/hcloud-runner/internal/metrics"
	"github.com/imamik/hcloud-runner/internal/output"
	"github.com/imamik/hcloud-runner/internal/platform/github"
	"github.com/imamik/hcloud-runner/internal/platform/hcloud"
	"github.com/imamik/hcloud-runner/internal/provisioning"
	"github.com/imamik/hcloud-runner/internal/util/retry"
)

// AppName identifies this tool towards both APIs.
const AppName = "hcloud-runner"

var appVersion = "dev"

// SetVersion sets the version reported in API user agents.
func SetVersion(v string) {
	appVersion = v
}

// Factory function variables - can be replaced in tests.
var (
	loadConfig = config.Load

	newServerAPI = func(cfg *config.RunnerConfig, reg prometheus.Registerer) provisioning.ServerAPI {
		return hcloud.NewRealClient(cfg.HCloudToken,
			hcloud.WithEndpoint(cfg.HCloudEndpoint),
			hcloud.WithApplication(AppName, appVersion),
			hcloud.WithInstrumentation(reg),
		)
	}

	newRunnerAPI = func(cfg *config.RunnerConfig) (provisioning.RunnerAPI, error) {
		client, err := github.NewClient(cfg.GitHub.Owner, cfg.GitHub.Repo, github.Options{
			APIURL:    cfg.GitHub.APIURL,
			Token:     cfg.GitHubToken,
			UserAgent: AppName + "/" + appVersion,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	}

	newEmitter = func(cfg *config.RunnerConfig) provisioning.Emitter {
		return output.NewEmitter(cfg.GitHub.OutputPath, cfg.GitHub.SummaryPath)
	}

	loadTemplate = cloudinit.LoadTemplate

	logOutput io.Writer = os.Stderr

	sleep retry.SleepFunc = retry.Sleep
)

// environment is everything a mode handler needs.
type environment struct {
	cfg        *config.RunnerConfig
	observer   provisioning.Observer
	recorder   *metrics.Recorder
	reconciler *provisioning.Reconciler
}

// Run loads the configuration from v and executes the selected mode.
//
// Interrupt and SIGTERM cancel the running wait. Metrics are written to the
// metrics file whether the run succeeds or not.
func Run(ctx context.Context, v *viper.Viper) error {
	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}

	env, err := newEnvironment(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cfg.Mode {
	case config.ModeCreate:
		err = runCreate(ctx, env)
	case config.ModeDelete:
		err = runDelete(ctx, env)
	default:
		err = fmt.Errorf("unsupported mode %q", cfg.Mode)
	}

	if werr := env.recorder.WriteToFile(cfg.MetricsFile); werr != nil {
		env.observer.Printf("Warning: failed to write metrics: %v", werr)
	}
	return err
}

func newEnvironment(cfg *config.RunnerConfig) (*environment, error) {
	logger, err := provisioning.NewConsoleLogger(logOutput, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	observer := provisioning.NewLogObserver(logger)
	recorder := metrics.NewRecorder()

	runners, err := newRunnerAPI(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}

	return &environment{
		cfg:      cfg,
		observer: observer,
		recorder: recorder,
		reconciler: &provisioning.Reconciler{
			Servers:  newServerAPI(cfg, recorder.Registerer()),
			Runners:  runners,
			Emitter:  newEmitter(cfg),
			Observer: observer,
			Metrics:  recorder,
			Sleep:    sleep,
		},
	}, nil
}
