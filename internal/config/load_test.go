package config

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validViper returns a viper instance holding a complete, valid input set.
func validViper(mode Mode) *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.Set(KeyMode, string(mode))
	v.Set(KeyName, "gh-runner-test")
	v.Set(KeyGitHubToken, "ghp_test")
	v.Set(KeyHCloudToken, "hcloud-test")
	v.Set(KeyGitHubRepository, "octocat/hello-world")
	v.Set(KeyGitHubRepositoryID, "1296269")
	v.Set(KeyGitHubOwnerID, "583231")
	if mode == ModeDelete {
		v.Set(KeyServerID, "4711")
	}
	return v
}

func TestLoad_ValidModes(t *testing.T) {
	t.Parallel()
	for _, mode := range []Mode{ModeCreate, ModeDelete} {
		t.Run(string(mode), func(t *testing.T) {
			t.Parallel()
			cfg, err := Load(validViper(mode))
			require.NoError(t, err)
			assert.Equal(t, mode, cfg.Mode)
			assert.Equal(t, "gh-runner-test", cfg.Name)
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()
	cfg, err := Load(validViper(ModeCreate))
	require.NoError(t, err)

	assert.Equal(t, DefaultImage, cfg.Image)
	assert.Equal(t, DefaultLocation, cfg.Location)
	assert.Equal(t, DefaultServerType, cfg.ServerType)
	assert.True(t, cfg.EnableIPv4)
	assert.True(t, cfg.EnableIPv6)
	assert.Nil(t, cfg.Network)
	assert.Nil(t, cfg.SSHKey)
	assert.Nil(t, cfg.Volume)
	assert.Nil(t, cfg.PrimaryIPv4)
	assert.Nil(t, cfg.PrimaryIPv6)
	assert.Equal(t, DefaultRunnerDir, cfg.RunnerDir)
	assert.Equal(t, DefaultRunnerVersion, cfg.RunnerVersion)
	assert.Equal(t, Waits{
		Create:   360,
		Delete:   360,
		Server:   30,
		Runner:   60,
		Interval: 10 * time.Second,
	}, cfg.Waits)
	assert.Equal(t, "octocat", cfg.GitHub.Owner)
	assert.Equal(t, "hello-world", cfg.GitHub.Repo)
	assert.Equal(t, DefaultGitHubAPI, cfg.GitHub.APIURL)
	assert.Equal(t, DefaultHCloudEndpoint, cfg.HCloudEndpoint)
	assert.Zero(t, cfg.ServerID, "server_id is ignored in create mode")
}

func TestLoad_OptionalIdentifiers(t *testing.T) {
	t.Parallel()
	v := validViper(ModeCreate)
	v.Set(KeyNetwork, "42")
	v.Set(KeySSHKey, "7")
	v.Set(KeyPrimaryIPv6, "99")

	cfg, err := Load(v)
	require.NoError(t, err)
	require.NotNil(t, cfg.Network)
	assert.Equal(t, int64(42), *cfg.Network)
	require.NotNil(t, cfg.SSHKey)
	assert.Equal(t, int64(7), *cfg.SSHKey)
	require.NotNil(t, cfg.PrimaryIPv6)
	assert.Equal(t, int64(99), *cfg.PrimaryIPv6)
	assert.Nil(t, cfg.Volume)
	assert.Nil(t, cfg.PrimaryIPv4)
}

func TestLoad_RejectsSingleInvalidField(t *testing.T) {
	t.Parallel()
	tests := []struct {
		key   string
		value string
		mode  Mode
	}{
		{KeyMode, "update", ModeCreate},
		{KeyMode, "", ModeCreate},
		{KeyCreateWait, "-1", ModeCreate},
		{KeyCreateWait, "ten", ModeCreate},
		{KeyDeleteWait, "1.5", ModeDelete},
		{KeyRunnerWait, "null", ModeCreate},
		{KeyServerWait, "", ModeCreate},
		{KeyNetwork, "abc", ModeCreate},
		{KeySSHKey, "-3", ModeCreate},
		{KeyVolume, "NULL", ModeCreate},
		{KeyPrimaryIPv4, "1.2.3.4", ModeCreate},
		{KeyPrimaryIPv6, "0", ModeCreate},
		{KeyEnableIPv4, "yes", ModeCreate},
		{KeyEnableIPv6, "True", ModeCreate},
		{KeyName, "has space", ModeCreate},
		{KeyName, strings.Repeat("a", 65), ModeCreate},
		{KeyName, "", ModeDelete},
		{KeyRunnerDir, "relative/path", ModeCreate},
		{KeyRunnerDir, "/actions-runner/", ModeCreate},
		{KeyRunnerDir, "/", ModeCreate},
		{KeyRunnerVersion, "v2.300.0", ModeCreate},
		{KeyRunnerVersion, "2.300.", ModeCreate},
		{KeyGitHubToken, "", ModeCreate},
		{KeyHCloudToken, "", ModeDelete},
		{KeyServerID, "abc", ModeDelete},
		{KeyServerID, "", ModeDelete},
		{KeyServerID, "0", ModeDelete},
		{KeyGitHubRepository, "no-slash", ModeCreate},
		{KeyGitHubAPIURL, "ftp://example.com", ModeCreate},
		{KeyPollInterval, "soon", ModeCreate},
		{KeyImage, "", ModeCreate},
		{KeyRunnerDir, "relative/", ModeDelete},
		{KeyRunnerDir, "/actions-runner/", ModeDelete},
		{KeyRunnerVersion, "not-a-version", ModeDelete},
		{KeyServerType, "", ModeDelete},
		{KeyLocation, "", ModeDelete},
		{KeyImage, "", ModeDelete},
		{KeyNetwork, "abc", ModeDelete},
		{KeyEnableIPv6, "maybe", ModeDelete},
		{KeyCreateWait, "-1", ModeDelete},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode)+"/"+tt.key+"="+tt.value, func(t *testing.T) {
			t.Parallel()
			v := validViper(tt.mode)
			v.Set(tt.key, tt.value)

			_, err := Load(v)
			require.Error(t, err)

			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr), "expected ValidationError, got %T", err)
			assert.Equal(t, tt.key, vErr.Field)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoad_ReservedName(t *testing.T) {
	t.Parallel()
	for _, mode := range []Mode{ModeCreate, ModeDelete} {
		v := validViper(mode)
		v.Set(KeyName, ReservedName)

		_, err := Load(v)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, KeyName, vErr.Field)
		assert.Equal(t, "is reserved", vErr.Reason)
	}
}

func TestLoad_GeneratesNameInCreateMode(t *testing.T) {
	t.Parallel()
	v := validViper(ModeCreate)
	v.Set(KeyName, "")

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(cfg.Name, GeneratedNamePrefix))
	assert.Len(t, cfg.Name, len(GeneratedNamePrefix)+8)
}

func TestLoad_DeleteModeAcceptsDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := Load(validViper(ModeDelete))
	require.NoError(t, err)
	assert.Equal(t, int64(4711), cfg.ServerID)
	assert.Equal(t, DefaultRunnerDir, cfg.RunnerDir)
}

func TestNewViper_Environment(t *testing.T) {
	t.Setenv("INPUT_MODE", "delete")
	t.Setenv("INPUT_NAME", "runner-1")
	t.Setenv("INPUT_SERVER_ID", "123")
	t.Setenv("INPUT_DELETE_WAIT", "5")
	t.Setenv("INPUT_GITHUB_TOKEN", "")
	t.Setenv("GITHUB_TOKEN", "ghs_fallback")
	t.Setenv("HCLOUD_TOKEN", "hc")
	t.Setenv("GITHUB_REPOSITORY", "octocat/hello-world")
	t.Setenv("GITHUB_API_URL", "https://ghe.example.com/api/v3")
	t.Setenv("GITHUB_OUTPUT", "/tmp/out")

	cfg, err := Load(NewViper())
	require.NoError(t, err)

	assert.Equal(t, ModeDelete, cfg.Mode)
	assert.Equal(t, "runner-1", cfg.Name)
	assert.Equal(t, int64(123), cfg.ServerID)
	assert.Equal(t, 5, cfg.Waits.Delete)
	assert.Equal(t, "ghs_fallback", cfg.GitHubToken)
	assert.Equal(t, "hc", cfg.HCloudToken)
	assert.Equal(t, "https://ghe.example.com/api/v3", cfg.GitHub.APIURL)
	assert.Equal(t, "/tmp/out", cfg.GitHub.OutputPath)
}

func TestValidationError_Error(t *testing.T) {
	t.Parallel()
	assert.Equal(t, `invalid input mode="x": must be one of create, delete`,
		(&ValidationError{Field: "mode", Value: "x", Reason: "must be one of create, delete"}).Error())
	assert.Equal(t, "invalid input hcloud_token: is required",
		(&ValidationError{Field: "hcloud_token", Reason: "is required"}).Error())
}

func TestGitHubContext_URLs(t *testing.T) {
	t.Parallel()
	g := GitHubContext{Owner: "octocat", Repo: "hello-world", ServerURL: "https://github.com/"}

	assert.Equal(t, "octocat/hello-world", g.Repository())
	assert.Equal(t, "https://github.com/octocat/hello-world", g.RepositoryURL())
	assert.Equal(t, "https://github.com/octocat/hello-world/settings/actions/runners", g.RunnersURL())
	assert.Equal(t, "https://github.com/octocat/hello-world/settings/actions/runners/17", g.RunnerURL(17))
}
