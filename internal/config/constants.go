package config

import "time"

// Mode selects the provisioning protocol.
type Mode string

const (
	// ModeCreate provisions a server and waits for its runner to register.
	ModeCreate Mode = "create"
	// ModeDelete removes the server and deregisters its runner.
	ModeDelete Mode = "delete"
)

// Null is the sentinel value for unset optional identifiers.
const Null = "null"

// ReservedName cannot be used as a runner name.
const ReservedName = "hetzner"

// Input keys. Environment variables are INPUT_<KEY> in upper case.
const (
	KeyMode              = "mode"
	KeyName              = "name"
	KeyImage             = "image"
	KeyLocation          = "location"
	KeyServerType        = "server_type"
	KeyServerID          = "server_id"
	KeyEnableIPv4        = "enable_ipv4"
	KeyEnableIPv6        = "enable_ipv6"
	KeyNetwork           = "network"
	KeySSHKey            = "ssh_key"
	KeyVolume            = "volume"
	KeyPrimaryIPv4       = "primary_ipv4"
	KeyPrimaryIPv6       = "primary_ipv6"
	KeyRunnerDir         = "runner_dir"
	KeyRunnerVersion     = "runner_version"
	KeyPreRunnerScript   = "pre_runner_script"
	KeyCreateWait        = "create_wait"
	KeyDeleteWait        = "delete_wait"
	KeyRunnerWait        = "runner_wait"
	KeyServerWait        = "server_wait"
	KeyPollInterval      = "poll_interval"
	KeyGitHubToken       = "github_token"
	KeyHCloudToken       = "hcloud_token"
	KeyHCloudEndpoint    = "hcloud_endpoint"
	KeyCloudInitTemplate = "cloud_init_template"
	KeyMetricsFile       = "metrics_file"
	KeyLogLevel          = "log_level"
)

// GitHub workflow context keys, bound to the variables the Actions runner exports.
const (
	KeyGitHubRepository   = "github_repository"
	KeyGitHubRepositoryID = "github_repository_id"
	KeyGitHubOwnerID      = "github_repository_owner_id"
	KeyGitHubServerURL    = "github_server_url"
	KeyGitHubAPIURL       = "github_api_url"
	KeyGitHubOutput       = "github_output"
	KeyGitHubStepSummary  = "github_step_summary"
)

// Defaults mirror the action's documented input defaults.
const (
	DefaultImage          = "ubuntu-24.04"
	DefaultLocation       = "nbg1"
	DefaultServerType     = "cx22"
	DefaultRunnerDir      = "/actions-runner"
	DefaultRunnerVersion  = "latest"
	DefaultCreateWait     = 360
	DefaultDeleteWait     = 360
	DefaultRunnerWait     = 60
	DefaultServerWait     = 30
	DefaultPollInterval   = 10 * time.Second
	DefaultHCloudEndpoint = "https://api.hetzner.cloud/v1"
	DefaultGitHubServer   = "https://github.com"
	DefaultGitHubAPI      = "https://api.github.com"
	DefaultLogLevel       = "info"

	// GeneratedNamePrefix prefixes runner names generated when none is given.
	GeneratedNamePrefix = "gh-runner-"
)
