package github

import (
	"context"
	"fmt"
	"net/http"
)

// CreateRegistrationToken mints a token for registering a new runner.
func (c *Client) CreateRegistrationToken(ctx context.Context) (*RegistrationToken, error) {
	var token RegistrationToken
	if err := c.rest.DoWithContext(ctx, http.MethodPost, c.repoURL("actions/runners/registration-token"), nil, &token); err != nil {
		return nil, fmt.Errorf("create registration token: %w", err)
	}
	if token.Token == "" {
		return nil, fmt.Errorf("create registration token: empty token in response")
	}
	return &token, nil
}

// ListRunners returns all self-hosted runners of the repository.
func (c *Client) ListRunners(ctx context.Context) ([]Runner, error) {
	var runners []Runner
	for page := 1; ; page++ {
		var resp RunnersResponse
		endpoint := c.repoURL(fmt.Sprintf("actions/runners?per_page=%d&page=%d", PerPage, page))
		if err := c.rest.DoWithContext(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
			return nil, fmt.Errorf("list runners: %w", err)
		}
		runners = append(runners, resp.Runners...)
		if len(resp.Runners) < PerPage || len(runners) >= resp.TotalCount {
			return runners, nil
		}
	}
}

// FindRunner returns the runner whose name equals name exactly and that
// carries an ID, or nil.
func FindRunner(runners []Runner, name string) *Runner {
	for i := range runners {
		if runners[i].Name == name && runners[i].ID > 0 {
			return &runners[i]
		}
	}
	return nil
}

// DeleteRunner removes a runner from the repository.
func (c *Client) DeleteRunner(ctx context.Context, id int64) error {
	if err := c.rest.DoWithContext(ctx, http.MethodDelete, c.repoURL(fmt.Sprintf("actions/runners/%d", id)), nil, nil); err != nil {
		return fmt.Errorf("delete runner %d: %w", id, err)
	}
	return nil
}
