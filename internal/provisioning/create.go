package provisioning

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/hcloud-runner/internal/cloudinit"
	"github.com/imamik/hcloud-runner/internal/config"
	"github.com/imamik/hcloud-runner/internal/platform/github"
	hcloudplatform "github.com/imamik/hcloud-runner/internal/platform/hcloud"
	"github.com/imamik/hcloud-runner/internal/util/labels"
	"github.com/imamik/hcloud-runner/internal/util/retry"
)

// Output keys written in create mode.
const (
	OutputLabel    = "label"
	OutputServerID = "server_id"
)

// CreateRequest describes a runner to provision.
type CreateRequest struct {
	Config *config.RunnerConfig
	// Template is the cloud-init template. The embedded default is used when empty.
	Template cloudinit.Template
}

// CreateResult holds the identifiers of a provisioned runner.
type CreateResult struct {
	Label    string
	ServerID int64
	RunnerID int64

	// Public addresses of the running server, empty when disabled.
	IPv4 string
	IPv6 string
}

// Create provisions a server, waits until it runs and until its runner has
// registered with GitHub.
//
// The label and server_id outputs are emitted right after the server is
// accepted, before it is running, so that a later delete can clean up even if
// a wait times out.
func (r *Reconciler) Create(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	cfg := req.Config
	obs := r.observer().WithFields(map[string]string{"mode": string(config.ModeCreate), "runner": cfg.Name})
	start := time.Now()

	token, err := r.registrationToken(ctx, obs, cfg)
	if err != nil {
		return nil, err
	}

	opts, err := r.renderServer(cfg, req.Template, token.Token)
	if err != nil {
		LogPhaseFailed(obs, PhaseServerCreate, err)
		return nil, err
	}

	server, err := r.createServer(ctx, obs, cfg, opts)
	if err != nil {
		return nil, err
	}

	if err := r.Emitter.SetOutput(OutputLabel, cfg.Name); err != nil {
		return nil, fmt.Errorf("write output %s: %w", OutputLabel, err)
	}
	if err := r.Emitter.SetOutput(OutputServerID, strconv.FormatInt(server.ID, 10)); err != nil {
		return nil, fmt.Errorf("write output %s: %w", OutputServerID, err)
	}

	running, err := r.waitForServer(ctx, obs, cfg, server.ID)
	if err != nil {
		return nil, err
	}

	runner, err := r.waitForRunner(ctx, obs, cfg)
	if err != nil {
		return nil, err
	}

	result := &CreateResult{
		Label:    cfg.Name,
		ServerID: server.ID,
		RunnerID: runner.ID,
		IPv4:     hcloudplatform.ServerIPv4(running),
		IPv6:     hcloudplatform.ServerIPv6(running),
	}
	if err := r.Emitter.AppendSummary(createSummary(cfg, result)); err != nil {
		return nil, fmt.Errorf("write summary: %w", err)
	}
	LogPhaseComplete(obs, "create", time.Since(start))

	return result, nil
}

func (r *Reconciler) registrationToken(ctx context.Context, obs Observer, cfg *config.RunnerConfig) (*github.RegistrationToken, error) {
	LogPhaseStart(obs, PhaseRegistrationToken)
	token, err := r.Runners.CreateRegistrationToken(ctx)
	r.Metrics.RecordAPICall("create_registration_token", err)
	if err != nil {
		err = newError(KindFatalHostingAPI, "create registration token", err, hostingHint(cfg, err, ""))
		LogPhaseFailed(obs, PhaseRegistrationToken, err)
		return nil, err
	}
	obs.Event(Event{
		Type:    EventPhaseCompleted,
		Phase:   PhaseRegistrationToken,
		Message: "registration token issued",
		Fields:  map[string]string{"expires_at": token.ExpiresAt.Format(time.RFC3339)},
	})
	return token, nil
}

// renderServer builds the bootstrap payload and the server creation request.
func (r *Reconciler) renderServer(cfg *config.RunnerConfig, tmpl cloudinit.Template, token string) (hcloud.ServerCreateOpts, error) {
	if tmpl.Text == "" {
		tmpl = cloudinit.DefaultTemplate()
	}
	payload, err := cloudinit.Build(cloudinit.Params{
		RunnerDir:         cfg.RunnerDir,
		RunnerVersion:     cfg.RunnerVersion,
		RunnerName:        cfg.Name,
		RunnerLabels:      []string{cfg.Name},
		RegistrationToken: token,
		RepositoryURL:     cfg.GitHub.RepositoryURL(),
		PreRunnerScript:   cfg.PreRunnerScript,
	}, tmpl)
	if err != nil {
		return hcloud.ServerCreateOpts{}, newError(KindConfiguration, "render bootstrap payload", err, "")
	}

	opts, err := hcloudplatform.NewRequestBuilder(hcloudplatform.BaseRequest{
		Name:       cfg.Name,
		Image:      cfg.Image,
		ServerType: cfg.ServerType,
		Location:   cfg.Location,
		Labels: labels.NewLabelBuilder(cfg.Name).
			WithOwnerID(cfg.GitHub.OwnerID).
			WithRepositoryID(cfg.GitHub.RepositoryID).
			Build(),
		EnableIPv4: cfg.EnableIPv4,
		EnableIPv6: cfg.EnableIPv6,
		UserData:   payload.UserData,
	}).
		WithPrimaryIPv4(cfg.PrimaryIPv4).
		WithPrimaryIPv6(cfg.PrimaryIPv6).
		WithNetwork(cfg.Network).
		WithSSHKey(cfg.SSHKey).
		WithVolume(cfg.Volume).
		Build()
	if err != nil {
		return hcloud.ServerCreateOpts{}, newError(KindConfiguration, "render server request", err, "")
	}
	return opts, nil
}

// createServer submits the creation request until it is accepted, a fatal
// failure occurs or the create budget is spent.
func (r *Reconciler) createServer(ctx context.Context, obs Observer, cfg *config.RunnerConfig, opts hcloud.ServerCreateOpts) (*hcloud.Server, error) {
	LogResourceCreating(obs, PhaseServerCreate, "server", opts.Name)
	start := time.Now()

	var server *hcloud.Server
	err := r.retryPolicy(obs, PhaseServerCreate, cfg.Waits.Create, cfg.Waits.Interval).
		Do(ctx, func(int) error {
			s, err := r.Servers.CreateServer(ctx, opts)
			r.Metrics.RecordAttempt(PhaseServerCreate, err)
			if err == nil {
				server = s
				return nil
			}
			if r.classify(err) == hcloudplatform.ClassTransient {
				return newError(KindTransientProvider, "create server", err, "")
			}
			obs.Event(Event{
				Type:     EventResourceFailed,
				Phase:    PhaseServerCreate,
				Resource: opts.Name,
				Message:  fmt.Sprintf("server creation rejected: %v", err),
				Fields:   describeRequest(opts, err),
			})
			return retry.Fatal(newError(KindFatalProvider, "create server", err, ""))
		})
	r.Metrics.ObservePhase(PhaseServerCreate, time.Since(start), err)

	if err != nil && !retry.IsExhausted(err) {
		var fatal *retry.FatalError
		if errors.As(err, &fatal) {
			err = fatal.Err
		}
		LogPhaseFailed(obs, PhaseServerCreate, err)
		return nil, err
	}

	if server == nil || server.ID <= 0 {
		if retry.IsExhausted(err) {
			err = newError(KindPollTimeout, "create server", err,
				"no capacity for this server type and location, try another one or retry later")
		} else {
			err = newError(KindFatalProvider, "create server", errors.New("response carries no server id"), "")
		}
		LogPhaseFailed(obs, PhaseServerCreate, err)
		return nil, err
	}

	LogResourceCreated(obs, PhaseServerCreate, "server", server.Name, strconv.FormatInt(server.ID, 10))
	return server, nil
}

// waitForServer polls the server until its status is running and returns it.
func (r *Reconciler) waitForServer(ctx context.Context, obs Observer, cfg *config.RunnerConfig, id int64) (*hcloud.Server, error) {
	LogPhaseStart(obs, PhaseServerWait)
	start := time.Now()

	var server *hcloud.Server
	var status hcloud.ServerStatus
	err := r.pollPolicy(cfg.Waits.Server, cfg.Waits.Interval).Poll(ctx, func(attempt int) (bool, error) {
		obs.Progress(PhaseServerWait, attempt, cfg.Waits.Server)
		s, err := r.Servers.GetServer(ctx, id)
		r.Metrics.RecordAttempt(PhaseServerWait, err)
		if err != nil {
			LogAttemptFailed(obs, PhaseServerWait, attempt, cfg.Waits.Server, err)
			return false, err
		}
		server, status = s, s.Status
		return s.Status == hcloud.ServerStatusRunning, nil
	})
	r.Metrics.ObservePhase(PhaseServerWait, time.Since(start), err)

	if err != nil {
		if retry.IsExhausted(err) {
			err = newError(KindPollTimeout, "wait for server", err,
				fmt.Sprintf("server %d is %q, delete it with server_id=%d", id, status, id))
		}
		LogPhaseFailed(obs, PhaseServerWait, err)
		return nil, err
	}
	LogPhaseComplete(obs, PhaseServerWait, time.Since(start))
	return server, nil
}

// waitForRunner polls the runner list until a runner named like the server
// appears. A failed listing counts as a failed attempt.
func (r *Reconciler) waitForRunner(ctx context.Context, obs Observer, cfg *config.RunnerConfig) (*github.Runner, error) {
	LogPhaseStart(obs, PhaseRunnerWait)
	start := time.Now()

	var runner *github.Runner
	err := r.pollPolicy(cfg.Waits.Runner, cfg.Waits.Interval).Poll(ctx, func(attempt int) (bool, error) {
		obs.Progress(PhaseRunnerWait, attempt, cfg.Waits.Runner)
		runners, err := r.Runners.ListRunners(ctx)
		r.Metrics.RecordAPICall("list_runners", err)
		if err != nil {
			LogAttemptFailed(obs, PhaseRunnerWait, attempt, cfg.Waits.Runner, err)
			return false, err
		}
		runner = github.FindRunner(runners, cfg.Name)
		return runner != nil, nil
	})
	r.Metrics.ObservePhase(PhaseRunnerWait, time.Since(start), err)

	if err != nil {
		if retry.IsExhausted(err) {
			err = newError(KindPollTimeout, "wait for runner", err,
				"check /var/log/cloud-init-output.log on the server")
		}
		LogPhaseFailed(obs, PhaseRunnerWait, err)
		return nil, err
	}
	LogResourceCreated(obs, PhaseRunnerWait, "runner", runner.Name, strconv.FormatInt(runner.ID, 10))
	return runner, nil
}

// hostingHint prefixes hint with an explanation of the HTTP status GitHub
// answered with, if any.
func hostingHint(cfg *config.RunnerConfig, err error, hint string) string {
	var status string
	switch code := github.StatusCode(err); code {
	case 0:
		return hint
	case http.StatusUnauthorized:
		status = "GitHub rejected github_token (HTTP 401)"
	case http.StatusForbidden, http.StatusNotFound:
		status = fmt.Sprintf("GitHub returned HTTP %d, github_token needs administration write access to %s",
			code, cfg.GitHub.Repository())
	default:
		status = fmt.Sprintf("GitHub returned HTTP %d", code)
	}
	if hint == "" {
		return status
	}
	return status + "; " + hint
}

// describeRequest renders the creation request for logs. User data carries
// the registration token and is reduced to its size.
func describeRequest(opts hcloud.ServerCreateOpts, err error) map[string]string {
	fields := map[string]string{
		"name":        opts.Name,
		"user_data":   fmt.Sprintf("%d bytes", len(opts.UserData)),
		"error":       err.Error(),
		"error_code":  hcloudplatform.ErrorCode(err),
		"server_type": "",
		"image":       "",
		"location":    "",
	}
	if opts.ServerType != nil {
		fields["server_type"] = opts.ServerType.Name
	}
	if opts.Image != nil {
		fields["image"] = opts.Image.Name
	}
	if opts.Location != nil {
		fields["location"] = opts.Location.Name
	}
	if opts.PublicNet != nil {
		fields["enable_ipv4"] = strconv.FormatBool(opts.PublicNet.EnableIPv4)
		fields["enable_ipv6"] = strconv.FormatBool(opts.PublicNet.EnableIPv6)
		if opts.PublicNet.IPv4 != nil {
			fields["primary_ipv4"] = strconv.FormatInt(opts.PublicNet.IPv4.ID, 10)
		}
		if opts.PublicNet.IPv6 != nil {
			fields["primary_ipv6"] = strconv.FormatInt(opts.PublicNet.IPv6.ID, 10)
		}
	}
	var ids []string
	for _, n := range opts.Networks {
		ids = append(ids, strconv.FormatInt(n.ID, 10))
	}
	if len(ids) > 0 {
		fields["networks"] = strings.Join(ids, ",")
	}
	ids = ids[:0]
	for _, k := range opts.SSHKeys {
		ids = append(ids, strconv.FormatInt(k.ID, 10))
	}
	if len(ids) > 0 {
		fields["ssh_keys"] = strings.Join(ids, ",")
	}
	ids = ids[:0]
	for _, v := range opts.Volumes {
		ids = append(ids, strconv.FormatInt(v.ID, 10))
	}
	if len(ids) > 0 {
		fields["volumes"] = strings.Join(ids, ",")
	}
	return fields
}

func createSummary(cfg *config.RunnerConfig, res *CreateResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Self-hosted runner `%s` is ready\n\n", cfg.Name)
	b.WriteString("| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| Server ID | `%d` |\n", res.ServerID)
	fmt.Fprintf(&b, "| Server type | `%s` in `%s` |\n", cfg.ServerType, cfg.Location)
	fmt.Fprintf(&b, "| Image | `%s` |\n", cfg.Image)
	if res.IPv4 != "" {
		fmt.Fprintf(&b, "| Public IPv4 | `%s` |\n", res.IPv4)
	}
	if res.IPv6 != "" {
		fmt.Fprintf(&b, "| Public IPv6 | `%s` |\n", res.IPv6)
	}
	fmt.Fprintf(&b, "| Hetzner Cloud Console | %s, server `%s` (ID `%d`) |\n", ConsoleURL, cfg.Name, res.ServerID)
	fmt.Fprintf(&b, "| Runner | %s |\n", cfg.GitHub.RunnerURL(res.RunnerID))
	return b.String()
}
