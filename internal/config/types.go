package config

import (
	"fmt"
	"strings"
	"time"
)

// RunnerConfig is the validated input set for one invocation.
type RunnerConfig struct {
	Mode Mode
	Name string

	// Server parameters
	Image      string
	Location   string
	ServerType string
	ServerID   int64 // Required in delete mode
	EnableIPv4 bool
	EnableIPv6 bool

	// Optional identifiers; nil stands for the "null" sentinel.
	Network     *int64
	SSHKey      *int64
	Volume      *int64
	PrimaryIPv4 *int64
	PrimaryIPv6 *int64

	// Runner installation
	RunnerDir       string
	RunnerVersion   string
	PreRunnerScript string

	Waits Waits

	// Credentials
	GitHubToken string
	HCloudToken string

	HCloudEndpoint    string
	CloudInitTemplate string // Optional path overriding the embedded template
	MetricsFile       string
	LogLevel          string

	GitHub GitHubContext
}

// Waits holds the attempt budgets of every asynchronous wait.
// Total wait time is roughly attempts × Interval.
type Waits struct {
	Create   int // Server creation attempts
	Delete   int // Server deletion attempts
	Server   int // Server status polls until running
	Runner   int // Runner list polls until registered
	Interval time.Duration
}

// GitHubContext describes the repository the runner is registered against.
type GitHubContext struct {
	Owner        string
	Repo         string
	RepositoryID string
	OwnerID      string
	ServerURL    string
	APIURL       string
	OutputPath   string
	SummaryPath  string
}

// Repository returns "owner/repo".
func (g GitHubContext) Repository() string {
	return g.Owner + "/" + g.Repo
}

// RepositoryURL returns the web URL the runner registers against.
func (g GitHubContext) RepositoryURL() string {
	return fmt.Sprintf("%s/%s", strings.TrimSuffix(g.ServerURL, "/"), g.Repository())
}

// RunnersURL returns the repository's runner settings page.
func (g GitHubContext) RunnersURL() string {
	return g.RepositoryURL() + "/settings/actions/runners"
}

// RunnerURL returns the settings page of a single runner.
func (g GitHubContext) RunnerURL(id int64) string {
	return fmt.Sprintf("%s/%d", g.RunnersURL(), id)
}
