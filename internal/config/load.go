package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every input key to form its environment variable.
const EnvPrefix = "INPUT"

// envAliases binds keys to variables outside the INPUT_ namespace.
// The first variable that is set wins.
var envAliases = map[string][]string{
	KeyGitHubToken:        {"INPUT_GITHUB_TOKEN", "GITHUB_TOKEN"},
	KeyHCloudToken:        {"INPUT_HCLOUD_TOKEN", "HCLOUD_TOKEN"},
	KeyGitHubRepository:   {"GITHUB_REPOSITORY"},
	KeyGitHubRepositoryID: {"GITHUB_REPOSITORY_ID"},
	KeyGitHubOwnerID:      {"GITHUB_REPOSITORY_OWNER_ID"},
	KeyGitHubServerURL:    {"GITHUB_SERVER_URL"},
	KeyGitHubAPIURL:       {"GITHUB_API_URL"},
	KeyGitHubOutput:       {"GITHUB_OUTPUT"},
	KeyGitHubStepSummary:  {"GITHUB_STEP_SUMMARY"},
}

// NewViper returns a viper instance with defaults and environment bindings for every key.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	for key, envs := range envAliases {
		_ = v.BindEnv(append([]string{key}, envs...)...)
	}
	return v
}

// SetDefaults registers the documented input defaults.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyImage, DefaultImage)
	v.SetDefault(KeyLocation, DefaultLocation)
	v.SetDefault(KeyServerType, DefaultServerType)
	v.SetDefault(KeyEnableIPv4, "true")
	v.SetDefault(KeyEnableIPv6, "true")
	v.SetDefault(KeyNetwork, Null)
	v.SetDefault(KeySSHKey, Null)
	v.SetDefault(KeyVolume, Null)
	v.SetDefault(KeyPrimaryIPv4, Null)
	v.SetDefault(KeyPrimaryIPv6, Null)
	v.SetDefault(KeyRunnerDir, DefaultRunnerDir)
	v.SetDefault(KeyRunnerVersion, DefaultRunnerVersion)
	v.SetDefault(KeyCreateWait, strconv.Itoa(DefaultCreateWait))
	v.SetDefault(KeyDeleteWait, strconv.Itoa(DefaultDeleteWait))
	v.SetDefault(KeyRunnerWait, strconv.Itoa(DefaultRunnerWait))
	v.SetDefault(KeyServerWait, strconv.Itoa(DefaultServerWait))
	v.SetDefault(KeyPollInterval, DefaultPollInterval.String())
	v.SetDefault(KeyHCloudEndpoint, DefaultHCloudEndpoint)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyGitHubServerURL, DefaultGitHubServer)
	v.SetDefault(KeyGitHubAPIURL, DefaultGitHubAPI)
}

// Load reads every input from v, parses it and validates the result.
// The first invalid input is reported as a *ValidationError.
func Load(v *viper.Viper) (*RunnerConfig, error) {
	p := &parser{get: func(key string) string {
		return strings.TrimSpace(v.GetString(key))
	}}

	cfg := &RunnerConfig{
		Mode:       Mode(p.oneOf(KeyMode, string(ModeCreate), string(ModeDelete))),
		Name:       p.str(KeyName),
		Image:      p.str(KeyImage),
		Location:   p.str(KeyLocation),
		ServerType: p.str(KeyServerType),
		EnableIPv4: p.boolean(KeyEnableIPv4),
		EnableIPv6: p.boolean(KeyEnableIPv6),

		Network:     p.nullableID(KeyNetwork),
		SSHKey:      p.nullableID(KeySSHKey),
		Volume:      p.nullableID(KeyVolume),
		PrimaryIPv4: p.nullableID(KeyPrimaryIPv4),
		PrimaryIPv6: p.nullableID(KeyPrimaryIPv6),

		RunnerDir:       p.str(KeyRunnerDir),
		RunnerVersion:   p.str(KeyRunnerVersion),
		PreRunnerScript: v.GetString(KeyPreRunnerScript),

		Waits: Waits{
			Create:   p.count(KeyCreateWait),
			Delete:   p.count(KeyDeleteWait),
			Server:   p.count(KeyServerWait),
			Runner:   p.count(KeyRunnerWait),
			Interval: p.duration(KeyPollInterval),
		},

		GitHubToken: p.str(KeyGitHubToken),
		HCloudToken: p.str(KeyHCloudToken),

		HCloudEndpoint:    p.str(KeyHCloudEndpoint),
		CloudInitTemplate: p.str(KeyCloudInitTemplate),
		MetricsFile:       p.str(KeyMetricsFile),
		LogLevel:          p.str(KeyLogLevel),

		GitHub: GitHubContext{
			RepositoryID: p.str(KeyGitHubRepositoryID),
			OwnerID:      p.str(KeyGitHubOwnerID),
			ServerURL:    p.str(KeyGitHubServerURL),
			APIURL:       p.str(KeyGitHubAPIURL),
			OutputPath:   p.str(KeyGitHubOutput),
			SummaryPath:  p.str(KeyGitHubStepSummary),
		},
	}
	cfg.GitHub.Owner, cfg.GitHub.Repo = p.repository(KeyGitHubRepository)

	// Delete mode needs the server created earlier; create mode ignores it.
	if cfg.Mode == ModeDelete {
		cfg.ServerID = p.id(KeyServerID)
	}
	if p.err != nil {
		return nil, p.err
	}

	if cfg.Mode == ModeCreate && cfg.Name == "" {
		cfg.Name = GenerateName()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GenerateName returns a random runner name with the GeneratedNamePrefix.
func GenerateName() string {
	return GeneratedNamePrefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// parser converts raw inputs and keeps the first error it encounters.
type parser struct {
	get func(key string) string
	err error
}

func (p *parser) fail(key, value, reason string) {
	if p.err == nil {
		p.err = &ValidationError{Field: key, Value: value, Reason: reason}
	}
}

func (p *parser) str(key string) string {
	return p.get(key)
}

func (p *parser) oneOf(key string, allowed ...string) string {
	val := p.get(key)
	for _, a := range allowed {
		if val == a {
			return val
		}
	}
	p.fail(key, val, fmt.Sprintf("must be one of %s", strings.Join(allowed, ", ")))
	return val
}

func (p *parser) boolean(key string) bool {
	return p.oneOf(key, "true", "false") == "true"
}

// count parses a non-negative attempt budget.
func (p *parser) count(key string) int {
	val := p.get(key)
	if !unsignedPattern.MatchString(val) {
		p.fail(key, val, "must be a non-negative integer")
		return 0
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		p.fail(key, val, "out of range")
		return 0
	}
	return n
}

// id parses a positive resource identifier.
func (p *parser) id(key string) int64 {
	val := p.get(key)
	if !unsignedPattern.MatchString(val) {
		p.fail(key, val, "must be a numeric identifier")
		return 0
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		p.fail(key, val, "out of range")
		return 0
	}
	if n == 0 {
		p.fail(key, val, "must be greater than zero")
	}
	return n
}

// nullableID parses an optional identifier where "null" means unset.
func (p *parser) nullableID(key string) *int64 {
	val := p.get(key)
	if val == Null {
		return nil
	}
	if !unsignedPattern.MatchString(val) {
		p.fail(key, val, fmt.Sprintf("must be a numeric identifier or %q", Null))
		return nil
	}
	n := p.id(key)
	return &n
}

func (p *parser) duration(key string) time.Duration {
	val := p.get(key)
	d, err := time.ParseDuration(val)
	if err != nil {
		p.fail(key, val, "must be a duration such as 10s")
		return 0
	}
	if d < 0 {
		p.fail(key, val, "must not be negative")
	}
	return d
}

func (p *parser) repository(key string) (string, string) {
	val := p.get(key)
	if !repositoryPattern.MatchString(val) {
		p.fail(key, val, "must be in owner/repo form")
		return "", ""
	}
	owner, repo, _ := strings.Cut(val, "/")
	return owner, repo
}
