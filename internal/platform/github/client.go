package github

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	ghAPI "github.com/cli/go-gh/v2/pkg/api"
)

// APIVersion is sent in the X-GitHub-Api-Version header.
const APIVersion = "2022-11-28"

// PerPage is the page size used when listing runners.
const PerPage = 100

// ErrRunnerNotFound is returned when no runner has the requested name.
var ErrRunnerNotFound = errors.New("runner not found")

// Options configures a Client.
type Options struct {
	// APIURL is the REST API base, e.g. https://api.github.com.
	APIURL    string
	Token     string
	Transport http.RoundTripper
	Timeout   time.Duration
	UserAgent string
}

// Client calls the runner endpoints of a single repository.
type Client struct {
	rest  *ghAPI.RESTClient
	base  string
	owner string
	repo  string
}

// NewClient returns a client for owner/repo.
func NewClient(owner, repo string, opts Options) (*Client, error) {
	if owner == "" || repo == "" {
		return nil, fmt.Errorf("owner and repository are required")
	}
	if opts.Token == "" {
		return nil, fmt.Errorf("a GitHub token is required")
	}
	base := strings.TrimSuffix(opts.APIURL, "/")
	u, err := url.Parse(base)
	if err != nil || u.Hostname() == "" {
		return nil, fmt.Errorf("invalid GitHub API URL %q", opts.APIURL)
	}

	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	headers := map[string]string{"X-GitHub-Api-Version": APIVersion}
	if opts.UserAgent != "" {
		headers["User-Agent"] = opts.UserAgent
	}

	rest, err := ghAPI.NewRESTClient(ghAPI.ClientOptions{
		Host:         u.Hostname(),
		AuthToken:    opts.Token,
		Transport:    transport,
		Headers:      headers,
		Timeout:      timeout,
		LogIgnoreEnv: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}
	return &Client{rest: rest, base: base, owner: owner, repo: repo}, nil
}

func (c *Client) repoURL(path string) string {
	return fmt.Sprintf("%s/repos/%s/%s/%s", c.base, c.owner, c.repo, path)
}

// StatusCode returns the HTTP status of a failed API call, or 0 when err did
// not come from an API response.
func StatusCode(err error) int {
	var httpErr *ghAPI.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}
