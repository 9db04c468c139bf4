package config

import (
	"fmt"
	"net/url"
	"regexp"
)

var (
	unsignedPattern   = regexp.MustCompile(`^[0-9]+$`)
	namePattern       = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)
	runnerDirPattern  = regexp.MustCompile(`^(/[^/]+)+$`)
	versionPattern    = regexp.MustCompile(`^(latest|skip|[0-9]+(\.[0-9]+)*)$`)
	repositoryPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+$`)
)

// ValidationError identifies the input that failed validation.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid input %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid input %s=%q: %s", e.Field, e.Value, e.Reason)
}

// Validate checks the semantic rules of a parsed configuration.
func (c *RunnerConfig) Validate() error {
	if c.Mode != ModeCreate && c.Mode != ModeDelete {
		return &ValidationError{Field: KeyMode, Value: string(c.Mode), Reason: "must be one of create, delete"}
	}

	// Required secrets
	if c.GitHubToken == "" {
		return &ValidationError{Field: KeyGitHubToken, Reason: "is required"}
	}
	if c.HCloudToken == "" {
		return &ValidationError{Field: KeyHCloudToken, Reason: "is required"}
	}

	if !namePattern.MatchString(c.Name) {
		return &ValidationError{Field: KeyName, Value: c.Name, Reason: "must match ^[a-zA-Z0-9_-]{1,64}$"}
	}
	if c.Name == ReservedName {
		return &ValidationError{Field: KeyName, Value: c.Name, Reason: "is reserved"}
	}

	if err := c.validateWaits(); err != nil {
		return err
	}

	if c.GitHub.Owner == "" || c.GitHub.Repo == "" {
		return &ValidationError{Field: KeyGitHubRepository, Value: c.GitHub.Repository(), Reason: "must be in owner/repo form"}
	}
	for key, raw := range map[string]string{
		KeyGitHubServerURL: c.GitHub.ServerURL,
		KeyGitHubAPIURL:    c.GitHub.APIURL,
		KeyHCloudEndpoint:  c.HCloudEndpoint,
	} {
		if err := validateURL(key, raw); err != nil {
			return err
		}
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	if c.Mode == ModeDelete && c.ServerID <= 0 {
		return &ValidationError{Field: KeyServerID, Value: fmt.Sprint(c.ServerID), Reason: "must be a numeric identifier"}
	}
	return nil
}

// validateServer checks the server and runner inputs in both modes.
func (c *RunnerConfig) validateServer() error {
	required := []struct{ key, val string }{
		{KeyImage, c.Image},
		{KeyLocation, c.Location},
		{KeyServerType, c.ServerType},
	}
	for _, r := range required {
		if r.val == "" {
			return &ValidationError{Field: r.key, Reason: "is required"}
		}
	}

	if !runnerDirPattern.MatchString(c.RunnerDir) {
		return &ValidationError{Field: KeyRunnerDir, Value: c.RunnerDir, Reason: "must be an absolute path without trailing slash"}
	}
	if !versionPattern.MatchString(c.RunnerVersion) {
		return &ValidationError{Field: KeyRunnerVersion, Value: c.RunnerVersion, Reason: "must be latest, skip or a version like 2.321.0"}
	}

	for key, id := range map[string]*int64{
		KeyNetwork:     c.Network,
		KeySSHKey:      c.SSHKey,
		KeyVolume:      c.Volume,
		KeyPrimaryIPv4: c.PrimaryIPv4,
		KeyPrimaryIPv6: c.PrimaryIPv6,
	} {
		if id != nil && *id <= 0 {
			return &ValidationError{Field: key, Value: fmt.Sprint(*id), Reason: "must be greater than zero"}
		}
	}
	return nil
}

func (c *RunnerConfig) validateWaits() error {
	for key, n := range map[string]int{
		KeyCreateWait: c.Waits.Create,
		KeyDeleteWait: c.Waits.Delete,
		KeyServerWait: c.Waits.Server,
		KeyRunnerWait: c.Waits.Runner,
	} {
		if n < 0 {
			return &ValidationError{Field: key, Value: fmt.Sprint(n), Reason: "must be a non-negative integer"}
		}
	}
	if c.Waits.Interval < 0 {
		return &ValidationError{Field: KeyPollInterval, Value: c.Waits.Interval.String(), Reason: "must not be negative"}
	}
	return nil
}

func validateURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &ValidationError{Field: key, Value: raw, Reason: "must be an http(s) URL"}
	}
	return nil
}
